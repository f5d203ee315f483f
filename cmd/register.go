package cmd

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/homehero/heroctl/internal/identity"
	"github.com/homehero/heroctl/internal/output"
)

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create a HomeHero account",
	Long: `Create a new account and sign in.

Examples:
  heroctl register user@example.com --name "Sam Carter"
  heroctl register user@example.com --name "Sam Carter" --photo https://example.com/sam.png`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().String("name", "", "display name")
	registerCmd.Flags().String("photo", "", "profile photo URL")
	registerCmd.Flags().String("password", "", "password (prompts when omitted; prefer the prompt)")
}

func runRegister(cmd *cobra.Command, args []string) error {
	email := args[0]
	name, _ := cmd.Flags().GetString("name")
	photo, _ := cmd.Flags().GetString("photo")

	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		var err error
		password, err = promptPassword("Password: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return &output.CLIError{
				Summary:  "passwords do not match",
				ExitCode: output.ExitUsageError,
			}
		}
	}

	if err := validatePassword(password); err != nil {
		return &output.CLIError{
			Summary:  err.Error(),
			ExitCode: output.ExitUsageError,
		}
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	id, err := app.provider.SignUp(cmd.Context(), email, password, name, photo)
	if err != nil {
		if errors.Is(err, identity.ErrEmailExists) {
			return &output.CLIError{
				Summary:    "an account with this email already exists",
				Suggestion: "run 'heroctl login' instead",
				ExitCode:   output.ExitAuthError,
			}
		}
		return fmt.Errorf("registration failed: %w", err)
	}

	app.printer.Success("Account created, signed in as %s", id.Email)
	return nil
}

// validatePassword mirrors the account creation form's rules.
func validatePassword(pwd string) error {
	if len(pwd) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	var hasUpper, hasLower bool
	for _, r := range pwd {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	return nil
}
