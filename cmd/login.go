package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/homehero/heroctl/internal/identity"
	"github.com/homehero/heroctl/internal/output"
)

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Sign in to HomeHero",
	Long: `Sign in with an email and password, or with a federated Google account.

The session is persisted, so subsequent commands run authenticated until
'heroctl logout'.

Examples:
  heroctl login user@example.com       # Prompt for password
  heroctl login --google               # Sign in via browser`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().Bool("google", false, "sign in with a Google account via browser")
	loginCmd.Flags().String("password", "", "password (prompts when omitted; prefer the prompt)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()

	google, _ := cmd.Flags().GetBool("google")
	if google {
		id, err := app.provider.SignInFederated(ctx, identity.FederatedOptions{
			OpenURL: func(url string) error {
				app.printer.Info("Visit this URL to sign in with Google:")
				app.printer.Print("  %s", url)
				return nil
			},
		})
		if err != nil {
			return fmt.Errorf("federated sign-in failed: %w", err)
		}
		app.printer.Success("Signed in as %s", id.Email)
		return nil
	}

	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		fmt.Fprint(cmd.OutOrStdout(), "Email: ")
		if _, err := fmt.Fscanln(cmd.InOrStdin(), &email); err != nil {
			return fmt.Errorf("reading email: %w", err)
		}
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return &output.CLIError{
			Summary:  "an email address is required",
			ExitCode: output.ExitUsageError,
		}
	}

	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password, err = promptPassword("Password: ")
		if err != nil {
			return err
		}
	}

	id, err := app.provider.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return &output.CLIError{
				Summary:    "invalid email or password",
				Suggestion: "check the address, or run 'heroctl register' to create an account",
				ExitCode:   output.ExitAuthError,
			}
		}
		return fmt.Errorf("sign-in failed: %w", err)
	}

	app.printer.Success("Signed in as %s", id.Email)
	return nil
}

// promptPassword reads a password without echo when stdin is a terminal.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(syscall.Stdin)
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(raw), nil
	}

	var password string
	if _, err := fmt.Fscanln(os.Stdin, &password); err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return password, nil
}
