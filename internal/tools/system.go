package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/averden/invoice-ninja-mcp/internal/ninja"
)

type noArgs struct{}

func registerSystemTools(s *mcp.Server, h *Handler) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_system_summary",
		Description: "Get a high-level summary of total outstanding balances from the client list.",
	}, h.getSystemSummary)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "ping",
		Description: "Simple health check to verify connectivity to Invoice Ninja.",
	}, h.ping)
}

func (h *Handler) getSystemSummary(ctx context.Context, req *mcp.CallToolRequest, args noArgs) (*mcp.CallToolResult, any, error) {
	var resp struct {
		Data []ninja.Customer `json:"data"`
	}
	q := listQuery("active", 100, "")
	if err := h.api.Get(ctx, "/clients", q, &resp); err != nil {
		return errorResult("Could not calculate summary: %v", err)
	}

	var totalOutstanding, totalRevenue float64
	for _, c := range resp.Data {
		totalOutstanding += c.Balance
		totalRevenue += c.PaidToDate
	}
	return textResult("Financial Snapshot:\n- Active Clients: %d\n- Total Outstanding: $%s\n- Total Revenue: $%s",
		len(resp.Data), money(totalOutstanding), money(totalRevenue))
}

func (h *Handler) ping(ctx context.Context, req *mcp.CallToolRequest, args noArgs) (*mcp.CallToolResult, any, error) {
	if err := h.api.Ping(ctx); err != nil {
		return errorResult("Connection error: %v", err)
	}
	return textResult("Successfully connected to Invoice Ninja!")
}
