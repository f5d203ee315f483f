package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored session",
	Long: `Sign out of HomeHero.

The persisted token and provider credentials are removed. Running logout
without an active session is a no-op.`,
	Args: cobra.NoArgs,
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), resolveTimeout)
	defer cancel()

	// Let the initial resolution settle so sign-out cannot race it.
	if err := app.session.WaitUntilResolved(ctx); err != nil {
		return fmt.Errorf("session did not resolve: %w", err)
	}

	if err := app.session.SignOut(ctx); err != nil {
		return fmt.Errorf("sign-out failed: %w", err)
	}

	app.printer.Success("Signed out")
	return nil
}
