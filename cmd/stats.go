package cmd

import (
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/homehero/heroctl/internal/models"
	"github.com/homehero/heroctl/internal/output"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show your provider dashboard",
	Long: `Show aggregate statistics for the services you provide: totals,
average rating, and per-month booking and revenue trends.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().Bool("json", false, "output as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
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

	app.nav.Navigate("/provider-dashboard")

	var (
		stats    *models.ProviderStats
		services []models.Service
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = app.api.ProviderStats(gctx, id.Email)
		return err
	})
	g.Go(func() error {
		var err error
		services, err = app.api.ServicesByProvider(gctx, id.Email)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return printJSON(cmd, map[string]any{
			"stats":    stats,
			"services": services,
		})
	}

	p := app.printer
	p.Header("Provider Dashboard")
	p.Print("  services:       %d", stats.TotalServices)
	p.Print("  bookings:       %d", stats.TotalBookings)
	p.Print("  revenue:        %s", output.Money(stats.TotalRevenue))
	p.Print("  average rating: %s", p.Rating(stats.AverageRating))

	if len(stats.BookingsChartData) > 0 {
		p.Header("Bookings by Month")
		printChart(p, stats.BookingsChartData, false)
	}
	if len(stats.RevenueChartData) > 0 {
		p.Header("Revenue by Month")
		printChart(p, stats.RevenueChartData, true)
	}
	if len(stats.ServiceBookingsChartData) > 0 {
		p.Header("Bookings by Service")
		printChart(p, stats.ServiceBookingsChartData, false)
	}

	if len(services) > 0 {
		p.Header("Your Services")
		if err := printServiceTable(p, services); err != nil {
			return err
		}
	}
	return nil
}

func printChart(p *output.Printer, points []models.ChartPoint, money bool) {
	table := output.NewQuietTable([]string{"", "VALUE"}, p.IsQuiet())
	for _, pt := range points {
		value := output.Money(pt.Value)
		if !money {
			value = trimFloat(pt.Value)
		}
		table.AddRow([]string{pt.Label, value})
	}
	table.Render()
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
