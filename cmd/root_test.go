package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestConfig builds a config file pointing all state at a temp dir so
// tests never touch the real user session.
func writeTestConfig(t *testing.T, backendURL, identityURL string) string {
	t.Helper()

	dir := t.TempDir()
	if identityURL == "" {
		identityURL = "http://127.0.0.1:1"
	}
	content := fmt.Sprintf(`backend:
  url: %q
identity:
  url: %q
  timeout: 2s
paths:
  token_file: %q
  credentials_file: %q
output:
  colors: false
`,
		backendURL,
		identityURL,
		filepath.Join(dir, "token"),
		filepath.Join(dir, "credentials.json"),
	)

	path := filepath.Join(dir, "heroctl.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Persistent flag variables survive between Execute calls; reset them
	// so one test's --config cannot leak into the next.
	cfgFile = ""
	verbose = false
	quiet = false
	colorFlag = "auto"
	backendURL = ""

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, want := range []string{"heroctl", "login", "services", "bookings"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := execute(t, "frobnicate")
	if err == nil {
		t.Fatal("expected an error for an unknown command")
	}
}
