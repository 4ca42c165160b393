package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/averden/invoice-ninja-mcp/internal/config"
)

// isolateHome points the loader at an empty home directory and clears the
// environment overrides.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NINJA_URL", "")
	t.Setenv("NINJA_TOKEN", "")
	t.Setenv("NINJA_MCP_ADDR", "")
	t.Setenv("NINJA_MCP_TIMEOUT_SECONDS", "")
	return home
}

func TestLoadRequiresCredentials(t *testing.T) {
	isolateHome(t)

	_, err := config.Load()
	if !errors.Is(err, config.ErrMissingCredentials) {
		t.Fatalf("Load without credentials: err = %v, want ErrMissingCredentials", err)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	isolateHome(t)
	t.Setenv("NINJA_URL", "https://ninja.example.com/api/v1/")
	t.Setenv("NINJA_TOKEN", "secret-token")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://ninja.example.com/api/v1" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", cfg.BaseURL)
	}
	if cfg.APIToken != "secret-token" {
		t.Errorf("APIToken = %q", cfg.APIToken)
	}
	if cfg.ListenAddr != config.DefaultListenAddr {
		t.Errorf("ListenAddr = %q, want default %q", cfg.ListenAddr, config.DefaultListenAddr)
	}
	if cfg.RequestTimeoutSeconds != config.DefaultRequestTimeoutSeconds {
		t.Errorf("RequestTimeoutSeconds = %d, want default", cfg.RequestTimeoutSeconds)
	}
}

func TestLoadWritesAnnotatedTemplateOnFirstRun(t *testing.T) {
	home := isolateHome(t)
	t.Setenv("NINJA_URL", "https://ninja.example.com/api/v1")
	t.Setenv("NINJA_TOKEN", "tok")

	if _, err := config.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(home, ".ninja-mcp", "config.json"))
	if err != nil {
		t.Fatalf("template not written: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("template is empty")
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".ninja-mcp")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	fileContent := `// test settings
{
  "base_url": "https://file.example.com/api/v1",
  "api_token": "file-token",
  "listen_addr": ":9000",
  "request_timeout_seconds": 30
}
`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(fileContent), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("NINJA_TOKEN", "env-token")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://file.example.com/api/v1" {
		t.Errorf("BaseURL = %q, want file value", cfg.BaseURL)
	}
	if cfg.APIToken != "env-token" {
		t.Errorf("APIToken = %q, want env override", cfg.APIToken)
	}
	if cfg.ListenAddr != ":9000" {
		t.Errorf("ListenAddr = %q, want file value", cfg.ListenAddr)
	}
	if cfg.RequestTimeoutSeconds != 30 {
		t.Errorf("RequestTimeoutSeconds = %d, want 30", cfg.RequestTimeoutSeconds)
	}
}

func TestHeaders(t *testing.T) {
	cfg := &config.Config{APIToken: "tok"}
	h := cfg.Headers()
	if h["X-Api-Token"] != "tok" {
		t.Errorf("X-Api-Token = %q", h["X-Api-Token"])
	}
	if h["X-Requested-With"] != "XMLHttpRequest" {
		t.Errorf("X-Requested-With = %q", h["X-Requested-With"])
	}
	if h["Content-Type"] != "application/json" {
		t.Errorf("Content-Type = %q", h["Content-Type"])
	}

	// Mutating the returned map must not affect later calls.
	h["X-Api-Token"] = "changed"
	if cfg.Headers()["X-Api-Token"] != "tok" {
		t.Error("Headers returned a shared map")
	}
}
