package tools

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/averden/invoice-ninja-mcp/internal/config"
	"github.com/averden/invoice-ninja-mcp/internal/ninja"
)

// testNow is the fixed clock used by tool tests.
var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

// newTestHandler wires a Handler to a fake Invoice Ninja server with a
// fixed clock.
func newTestHandler(t *testing.T, apiHandler http.Handler) *Handler {
	t.Helper()
	srv := httptest.NewServer(apiHandler)
	t.Cleanup(srv.Close)
	cfg := &config.Config{
		BaseURL:               srv.URL,
		APIToken:              "test-token",
		RequestTimeoutSeconds: 5,
	}
	return &Handler{
		api: ninja.New(cfg),
		now: func() time.Time { return testNow },
	}
}

// resultText extracts the single text content of a tool result.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) != 1 {
		t.Fatalf("unexpected result shape: %+v", res)
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want *mcp.TextContent", res.Content[0])
	}
	return tc.Text
}
