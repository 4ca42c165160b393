package tools

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/averden/invoice-ninja-mcp/internal/ninja"
)

type getClientsArgs struct {
	Limit           int  `json:"limit,omitempty" jsonschema:"Maximum number of clients to return (default 10)"`
	IncludeArchived bool `json:"include_archived,omitempty" jsonschema:"Include archived and deleted clients (default false)"`
}

type getClientDetailsArgs struct {
	ClientName string `json:"client_name" jsonschema:"Client name to search for"`
}

type createClientArgs struct {
	Name       string `json:"name" jsonschema:"Company name"`
	Email      string `json:"email,omitempty" jsonschema:"Contact email address"`
	FirstName  string `json:"first_name,omitempty" jsonschema:"Contact first name"`
	LastName   string `json:"last_name,omitempty" jsonschema:"Contact last name"`
	Phone      string `json:"phone,omitempty" jsonschema:"Phone number"`
	Website    string `json:"website,omitempty" jsonschema:"Company website"`
	Address1   string `json:"address1,omitempty" jsonschema:"Street address"`
	City       string `json:"city,omitempty" jsonschema:"City"`
	PostalCode string `json:"postal_code,omitempty" jsonschema:"Postal code"`
}

func registerClientTools(s *mcp.Server, h *Handler) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_clients",
		Description: "Fetch a list of clients with their balances.",
	}, h.getClients)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_client_details",
		Description: "Search for a specific client and return their balance and contact info.",
	}, h.getClientDetails)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "create_client",
		Description: "Create a new client with full company and contact details.",
	}, h.createClient)
}

func (h *Handler) getClients(ctx context.Context, req *mcp.CallToolRequest, args getClientsArgs) (*mcp.CallToolResult, any, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = 10
	}

	var resp struct {
		Data []ninja.Customer `json:"data"`
	}
	q := listQuery(statusFilter(args.IncludeArchived), limit, "")
	if err := h.api.Get(ctx, "/clients", q, &resp); err != nil {
		return errorResult("Error fetching clients: %v", err)
	}
	if len(resp.Data) == 0 {
		return textResult("No clients found.")
	}

	out := []string{fmt.Sprintf("--- Found %d Clients ---", len(resp.Data))}
	for _, c := range resp.Data {
		out = append(out, fmt.Sprintf("- %s (ID: %s) | Balance: $%s", c.DisplayName, c.ID, money(c.Balance)))
	}
	return textResult("%s", strings.Join(out, "\n"))
}

func (h *Handler) getClientDetails(ctx context.Context, req *mcp.CallToolRequest, args getClientDetailsArgs) (*mcp.CallToolResult, any, error) {
	q := url.Values{}
	q.Set("name", args.ClientName)
	q.Set("status", "active")

	var resp struct {
		Data []ninja.Customer `json:"data"`
	}
	if err := h.api.Get(ctx, "/clients", q, &resp); err != nil {
		return errorResult("Error: %v", err)
	}
	if len(resp.Data) == 0 {
		return textResult("No client found matching %q.", args.ClientName)
	}

	c := resp.Data[0]
	return textResult("Client: %s\nID: %s\nCurrent Balance: $%s\nTotal Paid to Date: $%s",
		c.DisplayName, c.ID, money(c.Balance), money(c.PaidToDate))
}

func (h *Handler) createClient(ctx context.Context, req *mcp.CallToolRequest, args createClientArgs) (*mcp.CallToolResult, any, error) {
	if args.Name == "" {
		return errorResult("Error: name is required.")
	}

	// Contact fields describe the person, the rest the company.
	contact := map[string]any{}
	if args.Email != "" {
		contact["email"] = args.Email
	}
	if args.FirstName != "" {
		contact["first_name"] = args.FirstName
	}
	if args.LastName != "" {
		contact["last_name"] = args.LastName
	}
	if args.Phone != "" {
		contact["phone"] = args.Phone
	}

	payload := map[string]any{
		"name":        args.Name,
		"website":     args.Website,
		"phone":       args.Phone,
		"address1":    args.Address1,
		"city":        args.City,
		"postal_code": args.PostalCode,
		"contacts":    []map[string]any{},
	}
	if len(contact) > 0 {
		payload["contacts"] = []map[string]any{contact}
	}

	var resp struct {
		Data ninja.Customer `json:"data"`
	}
	if err := h.api.Post(ctx, "/clients", payload, &resp); err != nil {
		return errorResult("Request failed: %v", err)
	}
	return textResult("Success! Created %q (ID: %s) with full details.", args.Name, resp.Data.ID)
}
