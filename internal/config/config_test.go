package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		override string
		host     string
		want     string
	}{
		{"explicit override wins", "https://staging.example.com/api", "", "https://staging.example.com/api"},
		{"override restating local default is ignored", LocalBaseURL, "homehero-8e501.web.app", ProductionBaseURL},
		{"hosted web.app domain", "", "homehero-8e501.web.app", ProductionBaseURL},
		{"hosted firebaseapp domain", "", "homehero-8e501.firebaseapp.com", ProductionBaseURL},
		{"preview channel hostname", "", "homehero-8e501--pr42.web.app", ProductionBaseURL},
		{"unknown host falls back to local", "", "my-laptop.local", LocalBaseURL},
		{"nothing set", "", "", LocalBaseURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveBaseURL(tt.override, tt.host))
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, LocalBaseURL, cfg.BaseURL())
	assert.Equal(t, 50*time.Minute, cfg.Session.RefreshInterval)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.NotEmpty(t, cfg.Paths.TokenFile)
	assert.NotEmpty(t, cfg.Paths.CredentialsFile)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Output.Colors)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "heroctl.yaml")
	content := `
backend:
  url: https://staging.example.com/api
  timeout: 10s
session:
  refresh_interval: 5m
paths:
  token_file: /tmp/heroctl-test/token
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "https://staging.example.com/api", cfg.BaseURL())
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Session.RefreshInterval)
	assert.Equal(t, "/tmp/heroctl-test/token", cfg.Paths.TokenFile)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsInvalidRefreshInterval(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "heroctl.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("session:\n  refresh_interval: -1m\n"), 0o644))

	_, err := Load(cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh_interval")
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("HEROCTL_BACKEND_URL", "https://env.example.com/api")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com/api", cfg.BaseURL())
}
