// Package cmd contains all CLI commands for heroctl
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/homehero/heroctl/internal/api"
	"github.com/homehero/heroctl/internal/config"
	"github.com/homehero/heroctl/internal/gateway"
	"github.com/homehero/heroctl/internal/identity"
	"github.com/homehero/heroctl/internal/models"
	"github.com/homehero/heroctl/internal/output"
	"github.com/homehero/heroctl/internal/session"
	"github.com/homehero/heroctl/internal/tokenstore"
)

var (
	cfgFile    string
	verbose    bool
	quiet      bool
	colorFlag  string
	backendURL string
	cfg        *config.Config
	logger     *slog.Logger
	version    = "dev"
)

// resolveTimeout bounds how long a command waits for the initial session
// resolution before giving up.
const resolveTimeout = 10 * time.Second

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "heroctl",
	Short: "HomeHero service marketplace CLI",
	Long: `heroctl is a command line client for the HomeHero service marketplace.

Browse and manage service listings, book services, leave reviews and track
provider statistics. Sign in once; heroctl keeps the session alive and
refreshes the access token in the background.

Example usage:
  heroctl login                        # Sign in with email and password
  heroctl services list --search lawn  # Browse available services
  heroctl bookings add <service-id> --date 2026-09-15
  heroctl stats                        # Provider dashboard`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .heroctl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto", "color output: auto, always, never")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend-url", "", "backend API URL (overrides detection)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("backend.url", rootCmd.PersistentFlags().Lookup("backend-url"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	var err error

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if backendURL != "" {
		cfg.Backend.URL = backendURL
	}

	if cfg.Logging.Level == "debug" || verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	logger.Debug("configuration loaded",
		"backend_url", cfg.BaseURL(),
		"identity_url", cfg.Identity.URL,
		"token_file", cfg.Paths.TokenFile,
	)

	return nil
}

// newPrinter builds a Printer honoring --color, --quiet and config.
func newPrinter() (*output.Printer, error) {
	mode, err := output.ParseColorMode(colorFlag)
	if err != nil {
		return nil, err
	}
	return output.NewPrinterWithOptions(output.PrinterOptions{
		ColorMode:    mode,
		ConfigColors: cfg.Output.Colors,
		Quiet:        quiet,
	}), nil
}

// app wires the full client stack for one command invocation: persisted
// token and credential stores, the identity provider client, the session
// manager, and the backend API client dispatching through the gateway.
type app struct {
	printer  *output.Printer
	nav      *gateway.Tracker
	store    tokenstore.Store
	provider *identity.Client
	session  *session.Manager
	api      *api.Client
}

// newApp builds the stack and starts session resolution in the background.
func newApp() (*app, error) {
	printer, err := newPrinter()
	if err != nil {
		return nil, err
	}

	store := tokenstore.NewFileStore(cfg.Paths.TokenFile, logger)
	creds := identity.NewFileCredentials(cfg.Paths.CredentialsFile)
	provider := identity.NewClient(cfg.Identity.URL, creds, cfg.Identity.Timeout, logger)

	sess := session.NewManagerWithOptions(provider, store, logger, session.Options{
		RefreshInterval: cfg.Session.RefreshInterval,
	})

	nav := gateway.NewTracker("/")
	gw := gateway.New(store, nav, logger, gateway.Options{})
	apiClient := api.NewClient(cfg.BaseURL(), gw.Client(cfg.Backend.Timeout), sess, logger)

	a := &app{
		printer:  printer,
		nav:      nav,
		store:    store,
		provider: provider,
		session:  sess,
		api:      apiClient,
	}
	a.session.Initialize(context.Background())
	return a, nil
}

// Close stops the session manager's background refresh loop.
func (a *app) Close() {
	a.session.Close()
}

// requireAuth waits for session resolution and returns the signed-in
// identity, or a structured error telling the user to log in.
func (a *app) requireAuth(ctx context.Context) (*models.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	id, err := a.session.RequireAuth(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			return nil, output.AuthError("no active session")
		}
		return nil, output.AuthError(err.Error())
	}
	return id, nil
}
