package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the server needs to talk to Invoice Ninja and to
// serve MCP. It is constructed once at startup and passed by reference into
// every tool module; nothing mutates it afterwards.
type Config struct {
	// BaseURL is the Invoice Ninja API root, including the /api/v1 prefix,
	// e.g. "https://invoicing.example.com/api/v1".
	BaseURL string `json:"base_url"`
	// APIToken is the Invoice Ninja API token sent as X-Api-Token.
	APIToken string `json:"api_token"`
	// ListenAddr is the address the MCP HTTP transport binds to.
	ListenAddr string `json:"listen_addr"`
	// RequestTimeoutSeconds bounds every outbound API request.
	RequestTimeoutSeconds int `json:"request_timeout_seconds"`
}

const (
	// DefaultListenAddr is where the MCP transport serves unless overridden.
	DefaultListenAddr = ":8000"
	// DefaultRequestTimeoutSeconds is the per-request bound on API calls.
	DefaultRequestTimeoutSeconds = 10
)

// ErrMissingCredentials is returned by Load when the base URL or API token
// cannot be resolved from the environment or the settings file. It is the
// only fatal configuration error class; the caller should abort startup.
var ErrMissingCredentials = errors.New("NINJA_URL and NINJA_TOKEN must be set (environment or ~/.ninja-mcp/config.json)")

// configTemplate is the annotated settings file written on first run.
// Lines whose trimmed content starts with // are stripped before JSON
// parsing, allowing human-readable documentation inside the file.
const configTemplate = `// ninja-mcp configuration: ~/.ninja-mcp/config.json
//
// Environment variables take precedence over this file:
//   NINJA_URL, NINJA_TOKEN, NINJA_MCP_ADDR, NINJA_MCP_TIMEOUT_SECONDS
{
  // Invoice Ninja API root, including the /api/v1 prefix.
  "base_url": "",

  // Invoice Ninja API token (Settings → Account Management → API Tokens).
  "api_token": "",

  // Address for the MCP streamable HTTP transport.
  "listen_addr": ":8000",

  // Timeout applied to every outbound API request, in seconds.
  "request_timeout_seconds": 10
}
`

// configFilePath returns the path to ~/.ninja-mcp/config.json.
func configFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".ninja-mcp", "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load resolves the configuration. The settings file is read first (created
// with an annotated template on first run), then environment variables
// override individual fields. Missing credentials are fatal.
func Load() (*Config, error) {
	cfg := Config{
		ListenAddr:            DefaultListenAddr,
		RequestTimeoutSeconds: DefaultRequestTimeoutSeconds,
	}

	if path, err := configFilePath(); err == nil {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// First run: write the annotated template so users can discover options.
			if writeErr := writeDefault(path); writeErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
			}
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
			}
			if cfg.ListenAddr == "" {
				cfg.ListenAddr = DefaultListenAddr
			}
			if cfg.RequestTimeoutSeconds <= 0 {
				cfg.RequestTimeoutSeconds = DefaultRequestTimeoutSeconds
			}
		}
	}

	if v := os.Getenv("NINJA_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("NINJA_TOKEN"); v != "" {
		cfg.APIToken = v
	}
	if v := os.Getenv("NINJA_MCP_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("NINJA_MCP_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid NINJA_MCP_TIMEOUT_SECONDS %q", v)
		}
		cfg.RequestTimeoutSeconds = n
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" || cfg.APIToken == "" {
		return nil, ErrMissingCredentials
	}
	return &cfg, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// RequestTimeout returns the per-request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Headers returns the fixed header set Invoice Ninja v5 expects on every
// request. A fresh map is returned each call so callers cannot mutate the
// shared configuration.
func (c *Config) Headers() map[string]string {
	return map[string]string{
		"X-Api-Token":      c.APIToken,
		"X-Requested-With": "XMLHttpRequest",
		"Content-Type":     "application/json",
	}
}
