package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/homehero/heroctl/internal/api"
	"github.com/homehero/heroctl/internal/output"
)

var bookingsCmd = &cobra.Command{
	Use:     "bookings",
	Aliases: []string{"booking"},
	Short:   "Book services and manage your bookings",
}

var bookingsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List your bookings",
	Args:    cobra.NoArgs,
	RunE:    runBookingsList,
}

var bookingsAddCmd = &cobra.Command{
	Use:   "add <service-id>",
	Short: "Book a service",
	Long: `Book a service for a future date.

Example:
  heroctl bookings add 68a1f09e --date 2026-09-15`,
	Args: cobra.ExactArgs(1),
	RunE: runBookingsAdd,
}

var bookingsCancelCmd = &cobra.Command{
	Use:     "cancel <booking-id>",
	Aliases: []string{"rm"},
	Short:   "Cancel a booking",
	Args:    cobra.ExactArgs(1),
	RunE:    runBookingsCancel,
}

func init() {
	rootCmd.AddCommand(bookingsCmd)
	bookingsCmd.AddCommand(bookingsListCmd)
	bookingsCmd.AddCommand(bookingsAddCmd)
	bookingsCmd.AddCommand(bookingsCancelCmd)

	bookingsListCmd.Flags().Bool("json", false, "output as JSON")
	bookingsAddCmd.Flags().String("date", "", "booking date (YYYY-MM-DD)")
}

func runBookingsList(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	id, err := app.requireAuth(ctx)
	if err != nil {
		return err
	}

	app.nav.Navigate("/my-bookings")

	bookings, err := app.api.BookingsForUser(ctx, id.Email)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return printJSON(cmd, bookings)
	}

	if len(bookings) == 0 {
		app.printer.Info("No bookings yet")
		return nil
	}

	table := output.NewQuietTable([]string{"ID", "SERVICE", "DATE", "PRICE"}, app.printer.IsQuiet())
	for _, b := range bookings {
		name := b.ServiceID
		if b.Service != nil {
			name = b.Service.ServiceName
		}
		table.AddRow([]string{
			b.ID,
			app.printer.Bold(name),
			b.BookingDate,
			output.Money(b.Price),
		})
	}
	table.Render()
	return nil
}

func runBookingsAdd(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	id, err := app.requireAuth(ctx)
	if err != nil {
		return err
	}

	serviceID := args[0]
	app.nav.Navigate("/services/" + serviceID)

	service, err := app.api.GetService(ctx, serviceID)
	if err != nil {
		return err
	}

	date, _ := cmd.Flags().GetString("date")
	req := api.BookingRequest{
		UserEmail:   id.Email,
		ServiceID:   serviceID,
		BookingDate: date,
		Price:       service.Price,
	}
	if err := req.Validate(time.Now()); err != nil {
		return &output.CLIError{
			Summary:  err.Error(),
			ExitCode: output.ExitUsageError,
		}
	}

	booking, err := app.api.CreateBooking(ctx, req)
	if err != nil {
		return err
	}

	app.printer.Success("Booked %s for %s (%s)",
		service.ServiceName, booking.BookingDate, output.Money(booking.Price))
	return nil
}

func runBookingsCancel(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	if _, err := app.requireAuth(ctx); err != nil {
		return err
	}

	app.nav.Navigate("/my-bookings")

	if err := app.api.CancelBooking(ctx, args[0]); err != nil {
		return err
	}

	app.printer.Success("Booking %s cancelled", args[0])
	return nil
}
