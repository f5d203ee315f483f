package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/homehero/heroctl/internal/output"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your account profile",
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update your display name or photo",
	Long: `Update the signed-in account's profile.

Example:
  heroctl profile update --name "Sam Carter" --photo https://example.com/sam.png`,
	Args: cobra.NoArgs,
	RunE: runProfileUpdate,
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileUpdateCmd)

	profileUpdateCmd.Flags().String("name", "", "display name")
	profileUpdateCmd.Flags().String("photo", "", "profile photo URL")
}

func runProfileUpdate(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("name") && !cmd.Flags().Changed("photo") {
		return &output.CLIError{
			Summary:  "nothing to update",
			Detail:   "pass --name and/or --photo",
			ExitCode: output.ExitUsageError,
		}
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	current, err := app.requireAuth(ctx)
	if err != nil {
		return err
	}

	name := current.DisplayName
	photo := current.PhotoURL
	if cmd.Flags().Changed("name") {
		name, _ = cmd.Flags().GetString("name")
	}
	if cmd.Flags().Changed("photo") {
		photo, _ = cmd.Flags().GetString("photo")
	}

	id, err := app.provider.UpdateProfile(ctx, name, photo)
	if err != nil {
		return fmt.Errorf("profile update failed: %w", err)
	}

	app.printer.Success("Profile updated for %s", id.Email)
	return nil
}
