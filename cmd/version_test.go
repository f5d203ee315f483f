package cmd

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestVersion_Short(t *testing.T) {
	SetVersion("1.2.3")

	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatalf("version --short failed: %v", err)
	}
	if strings.TrimSpace(out) != "1.2.3" {
		t.Errorf("expected bare version, got %q", out)
	}
}

func TestVersion_JSON(t *testing.T) {
	SetVersion("1.2.3")
	SetBuildInfo("abc123", "2026-08-31")

	out, err := execute(t, "version", "--json", "--short=false")
	if err != nil {
		t.Fatalf("version --json failed: %v", err)
	}

	var info map[string]string
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("version output is not JSON: %v\n%s", err, out)
	}
	if info["version"] != "1.2.3" || info["commit"] != "abc123" {
		t.Errorf("unexpected version info: %v", info)
	}
}
