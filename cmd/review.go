package cmd

import (
	"github.com/spf13/cobra"

	"github.com/homehero/heroctl/internal/models"
	"github.com/homehero/heroctl/internal/output"
)

var reviewCmd = &cobra.Command{
	Use:   "review <service-id>",
	Short: "Leave a review on a service",
	Long: `Rate a service you have used, from 1 to 5 stars.

Example:
  heroctl review 68a1f09e --rating 5 --comment "Fast and friendly"`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().Int("rating", 0, "rating from 1 to 5")
	reviewCmd.Flags().String("comment", "", "review text")
	_ = reviewCmd.MarkFlagRequired("rating")
}

func runReview(cmd *cobra.Command, args []string) error {
	rating, _ := cmd.Flags().GetInt("rating")
	if rating < 1 || rating > 5 {
		return &output.CLIError{
			Summary:  "rating must be between 1 and 5",
			ExitCode: output.ExitUsageError,
		}
	}

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

	comment, _ := cmd.Flags().GetString("comment")
	review := models.Review{
		UserEmail: id.Email,
		Rating:    rating,
		Comment:   comment,
	}

	if err := app.api.AddReview(ctx, serviceID, review); err != nil {
		return err
	}

	app.printer.Success("Review posted: %s", app.printer.Rating(float64(rating)))
	return nil
}
