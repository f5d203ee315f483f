package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/homehero/heroctl/internal/api"
	"github.com/homehero/heroctl/internal/models"
	"github.com/homehero/heroctl/internal/output"
)

var servicesCmd = &cobra.Command{
	Use:     "services",
	Aliases: []string{"service", "svc"},
	Short:   "Browse and manage service listings",
}

var servicesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List available services",
	Long: `List services in the marketplace, optionally filtered.

Examples:
  heroctl services list
  heroctl services list --search cleaning
  heroctl services list --min-price 20 --max-price 100
  heroctl services list --json`,
	Args: cobra.NoArgs,
	RunE: runServicesList,
}

var servicesTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the highest-rated services",
	Args:  cobra.NoArgs,
	RunE:  runServicesTop,
}

var servicesGetCmd = &cobra.Command{
	Use:   "get <service-id>",
	Short: "Show one service with its reviews",
	Args:  cobra.ExactArgs(1),
	RunE:  runServicesGet,
}

var servicesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "List a new service you provide",
	Long: `Create a service listing under the signed-in account.

Example:
  heroctl services add --name "Lawn Mowing" --category "Gardening" --price 35 \
    --description "Weekly lawn care" --image https://example.com/lawn.jpg`,
	Args: cobra.NoArgs,
	RunE: runServicesAdd,
}

var servicesUpdateCmd = &cobra.Command{
	Use:   "update <service-id>",
	Short: "Update one of your service listings",
	Args:  cobra.ExactArgs(1),
	RunE:  runServicesUpdate,
}

var servicesDeleteCmd = &cobra.Command{
	Use:     "delete <service-id>",
	Aliases: []string{"rm"},
	Short:   "Remove one of your service listings",
	Args:    cobra.ExactArgs(1),
	RunE:    runServicesDelete,
}

var servicesMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List the services you provide",
	Args:  cobra.NoArgs,
	RunE:  runServicesMine,
}

func init() {
	rootCmd.AddCommand(servicesCmd)
	servicesCmd.AddCommand(servicesListCmd)
	servicesCmd.AddCommand(servicesTopCmd)
	servicesCmd.AddCommand(servicesGetCmd)
	servicesCmd.AddCommand(servicesAddCmd)
	servicesCmd.AddCommand(servicesUpdateCmd)
	servicesCmd.AddCommand(servicesDeleteCmd)
	servicesCmd.AddCommand(servicesMineCmd)

	servicesListCmd.Flags().String("search", "", "filter by name or category")
	servicesListCmd.Flags().Float64("min-price", 0, "minimum price")
	servicesListCmd.Flags().Float64("max-price", 0, "maximum price")
	servicesListCmd.Flags().Bool("json", false, "output as JSON")

	servicesTopCmd.Flags().Bool("json", false, "output as JSON")
	servicesGetCmd.Flags().Bool("json", false, "output as JSON")
	servicesMineCmd.Flags().Bool("json", false, "output as JSON")

	addServiceFlags(servicesAddCmd)
	addServiceFlags(servicesUpdateCmd)
}

func addServiceFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "service name")
	cmd.Flags().String("category", "", "service category")
	cmd.Flags().Float64("price", 0, "price in dollars")
	cmd.Flags().String("description", "", "service description")
	cmd.Flags().String("image", "", "image URL")
}

func runServicesList(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	app.nav.Navigate("/services")

	search, _ := cmd.Flags().GetString("search")
	minPrice, _ := cmd.Flags().GetFloat64("min-price")
	maxPrice, _ := cmd.Flags().GetFloat64("max-price")

	services, err := app.api.ListServices(cmd.Context(), api.ServiceQuery{
		Search:   search,
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	})
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return printJSON(cmd, services)
	}
	return printServiceTable(app.printer, services)
}

func runServicesTop(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	app.nav.Navigate("/")

	services, err := app.api.TopRatedServices(cmd.Context())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return printJSON(cmd, services)
	}
	return printServiceTable(app.printer, services)
}

func runServicesGet(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	id := args[0]
	app.nav.Navigate("/services/" + id)

	service, err := app.api.GetService(cmd.Context(), id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return &output.CLIError{
				Summary:  fmt.Sprintf("service %s not found", id),
				ExitCode: output.ExitNotFound,
			}
		}
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return printJSON(cmd, service)
	}

	p := app.printer
	p.Header(service.ServiceName)
	p.Print("  id:          %s", service.ID)
	p.Print("  category:    %s", service.Category)
	p.Print("  price:       %s", output.Money(service.Price))
	p.Print("  provider:    %s <%s>", service.ProviderName, service.ProviderEmail)
	p.Print("  rating:      %s", p.Rating(service.AverageRating()))
	if service.Description != "" {
		p.Print("  description: %s", service.Description)
	}

	if len(service.Reviews) > 0 {
		p.Header("Reviews")
		for _, r := range service.Reviews {
			p.Print("  %s  %s", p.Rating(float64(r.Rating)), p.Dim(r.UserEmail))
			if r.Comment != "" {
				p.Print("    %s", r.Comment)
			}
		}
	}
	return nil
}

func runServicesAdd(cmd *cobra.Command, args []string) error {
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

	service, err := serviceFromFlags(cmd, models.Service{})
	if err != nil {
		return err
	}
	if service.ServiceName == "" || service.Category == "" || service.Price <= 0 {
		return &output.CLIError{
			Summary:  "name, category and a positive price are required",
			ExitCode: output.ExitUsageError,
		}
	}
	service.ProviderName = id.DisplayName
	service.ProviderEmail = id.Email
	service.ProviderImage = id.PhotoURL

	created, err := app.api.CreateService(ctx, service)
	if err != nil {
		return err
	}

	app.printer.Success("Service %s listed as %s", created.ServiceName, created.ID)
	return nil
}

func runServicesUpdate(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	if _, err := app.requireAuth(ctx); err != nil {
		return err
	}

	serviceID := args[0]
	app.nav.Navigate("/manage-services")

	current, err := app.api.GetService(ctx, serviceID)
	if err != nil {
		return err
	}

	updated, err := serviceFromFlags(cmd, *current)
	if err != nil {
		return err
	}

	result, err := app.api.UpdateService(ctx, serviceID, updated)
	if err != nil {
		return err
	}

	app.printer.Success("Service %s updated", result.ServiceName)
	return nil
}

func runServicesDelete(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	if _, err := app.requireAuth(ctx); err != nil {
		return err
	}

	app.nav.Navigate("/manage-services")

	if err := app.api.DeleteService(ctx, args[0]); err != nil {
		return err
	}

	app.printer.Success("Service %s deleted", args[0])
	return nil
}

func runServicesMine(cmd *cobra.Command, args []string) error {
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

	app.nav.Navigate("/manage-services")

	services, err := app.api.ServicesByProvider(ctx, id.Email)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return printJSON(cmd, services)
	}
	return printServiceTable(app.printer, services)
}

// serviceFromFlags overlays set flags onto base, leaving unset fields alone.
func serviceFromFlags(cmd *cobra.Command, base models.Service) (models.Service, error) {
	if cmd.Flags().Changed("name") {
		base.ServiceName, _ = cmd.Flags().GetString("name")
	}
	if cmd.Flags().Changed("category") {
		base.Category, _ = cmd.Flags().GetString("category")
	}
	if cmd.Flags().Changed("price") {
		base.Price, _ = cmd.Flags().GetFloat64("price")
	}
	if cmd.Flags().Changed("description") {
		base.Description, _ = cmd.Flags().GetString("description")
	}
	if cmd.Flags().Changed("image") {
		base.ImageURL, _ = cmd.Flags().GetString("image")
	}
	return base, nil
}

func printServiceTable(p *output.Printer, services []models.Service) error {
	if len(services) == 0 {
		p.Info("No services found")
		return nil
	}

	table := output.NewQuietTable([]string{"ID", "SERVICE", "CATEGORY", "PRICE", "RATING", "PROVIDER"}, p.IsQuiet())
	for _, s := range services {
		table.AddRow([]string{
			s.ID,
			p.Bold(s.ServiceName),
			s.Category,
			output.Money(s.Price),
			p.Rating(s.AverageRating()),
			s.ProviderName,
		})
	}
	table.Render()
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
