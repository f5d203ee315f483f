package cmd

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/homehero/heroctl/internal/identity"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)

	whoamiCmd.Flags().Bool("json", false, "output as JSON")
}

func runWhoami(cmd *cobra.Command, args []string) error {
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

	var expiry time.Time
	if token, err := app.store.Load(ctx); err == nil {
		if exp, err := identity.TokenExpiry(token); err == nil {
			expiry = exp
		}
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		info := map[string]any{
			"email":       id.Email,
			"displayName": id.DisplayName,
			"photoUrl":    id.PhotoURL,
			"lastSignIn":  id.LastSignInTime,
		}
		if !expiry.IsZero() {
			info["tokenExpiresAt"] = expiry
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	app.printer.Print("%s", app.printer.Bold(id.Email))
	if id.DisplayName != "" {
		app.printer.Print("  name:        %s", id.DisplayName)
	}
	if id.PhotoURL != "" {
		app.printer.Print("  photo:       %s", id.PhotoURL)
	}
	if !id.LastSignInTime.IsZero() {
		app.printer.Print("  last sign-in: %s", id.LastSignInTime.Local().Format(time.RFC1123))
	}
	if !expiry.IsZero() {
		app.printer.Print("  token expires: %s", expiry.Local().Format(time.RFC1123))
	}
	return nil
}
