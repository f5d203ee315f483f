// Package config provides Viper-based configuration management for heroctl.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend URLs selected by ResolveBaseURL.
const (
	// LocalBaseURL is the development backend.
	LocalBaseURL = "http://localhost:5000/api"
	// ProductionBaseURL is the hosted backend serving the deployed sites.
	ProductionBaseURL = "https://herohome-server.vercel.app/api"
)

// HostedDomains are deployment hostnames wired to the production backend.
var HostedDomains = []string{
	"homehero-8e501.web.app",
	"homehero-8e501.firebaseapp.com",
}

// Config represents the complete heroctl configuration.
type Config struct {
	Backend  BackendConfig  `mapstructure:"backend"`
	Identity IdentityConfig `mapstructure:"identity"`
	Session  SessionConfig  `mapstructure:"session"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Output   OutputConfig   `mapstructure:"output"`
}

// BackendConfig selects the REST backend.
type BackendConfig struct {
	// URL overrides environment detection when set.
	URL string `mapstructure:"url"`
	// Host is the deployment hostname used for environment detection
	// when URL is empty.
	Host    string        `mapstructure:"host"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// IdentityConfig points at the identity provider.
type IdentityConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig tunes the session manager.
type SessionConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// PathsConfig locates the persisted token and credential files.
type PathsConfig struct {
	TokenFile       string `mapstructure:"token_file"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Colors bool `mapstructure:"colors"`
}

// BaseURL resolves the effective backend URL for this configuration.
func (c *Config) BaseURL() string {
	return ResolveBaseURL(c.Backend.URL, c.Backend.Host)
}

// ResolveBaseURL picks the backend URL. An explicit override wins unless it
// just restates the local default; hosted deployment hostnames route to the
// production backend; everything else is local development.
func ResolveBaseURL(override, host string) string {
	if override != "" && override != LocalBaseURL {
		return override
	}
	for _, domain := range HostedDomains {
		if host == domain {
			return ProductionBaseURL
		}
	}
	if strings.Contains(host, "web.app") || strings.Contains(host, "firebaseapp.com") {
		return ProductionBaseURL
	}
	return LocalBaseURL
}

// Load reads configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".heroctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/heroctl")
	}

	v.SetEnvPrefix("HEROCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	stateDir := defaultStateDir()

	v.SetDefault("backend.url", "")
	v.SetDefault("backend.host", "")
	v.SetDefault("backend.timeout", 30*time.Second)

	v.SetDefault("identity.url", "https://identity.homehero.app")
	v.SetDefault("identity.timeout", 15*time.Second)

	v.SetDefault("session.refresh_interval", 50*time.Minute)

	v.SetDefault("paths.token_file", filepath.Join(stateDir, "token"))
	v.SetDefault("paths.credentials_file", filepath.Join(stateDir, "credentials.json"))

	v.SetDefault("logging.level", "info")
	v.SetDefault("output.colors", true)
}

// defaultStateDir is where tokens and credentials live between runs.
func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "heroctl")
	}
	return ".heroctl"
}

// validate checks configuration invariants.
func validate(cfg *Config) error {
	if cfg.Session.RefreshInterval <= 0 {
		return fmt.Errorf("session.refresh_interval must be positive, got %s", cfg.Session.RefreshInterval)
	}
	if cfg.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout cannot be negative")
	}
	if cfg.Identity.URL == "" {
		return fmt.Errorf("identity.url cannot be empty")
	}
	return nil
}
