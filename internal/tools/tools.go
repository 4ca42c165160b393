// Package tools exposes the Invoice Ninja API as MCP tools. Each tool maps
// to one API call (or a short fixed sequence), reduces the response to a
// concise textual summary, and never lets an error escape past the tool
// boundary: failures become IsError text results.
package tools

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/averden/invoice-ninja-mcp/internal/ninja"
)

// Handler carries the shared dependencies for every tool: the API client
// and a clock. Tools hold no other state; independent calls may run
// concurrently.
type Handler struct {
	api *ninja.Client
	now func() time.Time
}

// NewHandler creates a Handler using the real clock.
func NewHandler(api *ninja.Client) *Handler {
	return &Handler{api: api, now: time.Now}
}

// RegisterAll registers every tool, resource, and prompt on the server.
func RegisterAll(s *mcp.Server, h *Handler) {
	registerClientTools(s, h)
	registerInvoiceTools(s, h)
	registerProductTools(s, h)
	registerSystemTools(s, h)
	registerProjectTools(s, h)
	registerTaskTools(s, h)
	registerPaymentTools(s, h)
	registerExpenseTools(s, h)
	registerReportTools(s, h)
	registerDocumentTools(s, h)
	registerResources(s)
	registerPrompts(s)
}

// textResult wraps a formatted string as a successful tool result.
func textResult(format string, a ...any) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, a...)}},
	}, nil, nil
}

// errorResult wraps a formatted string as an error-flagged tool result.
// The Go error stays nil: transport, upstream, and domain failures are
// reported to the caller as text, never as protocol errors.
func errorResult(format string, a ...any) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, a...)}},
	}, nil, nil
}

// statusFilter returns the entity status filter: active records only by
// default, broadened when the caller asks for archived ones.
func statusFilter(includeArchived bool) string {
	if includeArchived {
		return "active,archived,deleted"
	}
	return "active"
}

// listQuery builds the common list parameters.
func listQuery(status string, limit int, include string) url.Values {
	q := url.Values{}
	q.Set("status", status)
	q.Set("per_page", strconv.Itoa(limit))
	if include != "" {
		q.Set("include", include)
	}
	return q
}

// money formats an amount with thousands separators, e.g. "12,345.60",
// matching the upstream web UI's display format.
func money(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// displayName returns the embedded client's display name or a fallback when
// the relation was not included or is empty.
func displayName(c *ninja.Customer, fallback string) string {
	if c == nil || c.DisplayName == "" {
		return fallback
	}
	return c.DisplayName
}

// orDefault returns s, or fallback when s is empty.
func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
