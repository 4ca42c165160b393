package tools

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/averden/invoice-ninja-mcp/internal/ninja"
)

type getProductsArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of products to return (default 50)"`
}

func registerProductTools(s *mcp.Server, h *Handler) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_products",
		Description: "Fetch and list all products/services available in Invoice Ninja.",
	}, h.getProducts)
}

func (h *Handler) getProducts(ctx context.Context, req *mcp.CallToolRequest, args getProductsArgs) (*mcp.CallToolResult, any, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = 50
	}

	q := url.Values{}
	q.Set("per_page", strconv.Itoa(limit))

	var resp struct {
		Data []ninja.Product `json:"data"`
	}
	if err := h.api.Get(ctx, "/products", q, &resp); err != nil {
		return errorResult("Error fetching products: %v", err)
	}
	if len(resp.Data) == 0 {
		return textResult("No products/services found.")
	}

	out := []string{fmt.Sprintf("--- Found %d Products/Services ---", len(resp.Data))}
	for _, p := range resp.Data {
		out = append(out, fmt.Sprintf("- %s (ID: %s): $%s", orDefault(p.ProductKey, "N/A"), p.ID, money(p.Price)))
	}
	return textResult("%s", strings.Join(out, "\n"))
}
