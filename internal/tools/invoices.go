package tools

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/averden/invoice-ninja-mcp/internal/ninja"
)

type getInvoicesArgs struct {
	Status string `json:"status,omitempty" jsonschema:"Payment status filter: paid, unpaid, overdue, or all (default all)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of invoices to return (default 10)"`
}

type getInvoiceSummaryArgs struct {
	InvoiceNumber string `json:"invoice_number" jsonschema:"Invoice number to look up"`
}

type createInvoiceArgs struct {
	ClientID  string           `json:"client_id" jsonschema:"Client hashed ID"`
	LineItems []ninja.LineItem `json:"line_items" jsonschema:"Invoice line items"`
	DueDate   string           `json:"due_date,omitempty" jsonschema:"Due date in YYYY-MM-DD format"`
}

type sendReminderArgs struct {
	InvoiceID string `json:"invoice_id" jsonschema:"Invoice hashed ID"`
}

func registerInvoiceTools(s *mcp.Server, h *Handler) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_invoices",
		Description: "Fetch invoices filtered by payment status. Only retrieves active invoices (ignores deleted/archived).",
	}, h.getInvoices)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_invoice_summary",
		Description: "Returns the details and payment status for a specific invoice number.",
	}, h.getInvoiceSummary)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "create_invoice",
		Description: "Create a new draft invoice from line items.",
	}, h.createInvoice)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "send_reminder",
		Description: "Send an invoice reminder email to the client using the bulk action route.",
	}, h.sendReminder)
}

func (h *Handler) getInvoices(ctx context.Context, req *mcp.CallToolRequest, args getInvoicesArgs) (*mcp.CallToolResult, any, error) {
	status := args.Status
	if status == "" {
		status = "all"
	}
	switch status {
	case "paid", "unpaid", "overdue", "all":
	default:
		return errorResult("Error: status must be one of paid, unpaid, overdue, all.")
	}
	limit := args.Limit
	if limit <= 0 {
		limit = 10
	}

	q := listQuery("active", limit, "client")
	if status != "all" {
		q.Set("client_status", status)
	}

	var resp struct {
		Data []ninja.Invoice `json:"data"`
	}
	if err := h.api.Get(ctx, "/invoices", q, &resp); err != nil {
		return errorResult("Error fetching invoices: %v", err)
	}
	if len(resp.Data) == 0 {
		return textResult("No %s invoices found.", status)
	}

	out := []string{fmt.Sprintf("--- Found %d %s invoices ---", len(resp.Data), status)}
	for _, inv := range resp.Data {
		statusTag := "PAID"
		if inv.Balance > 0 {
			statusTag = fmt.Sprintf("Pending: $%s", money(inv.Balance))
		}
		out = append(out, fmt.Sprintf("[%s] (ID: %s) %s | %s | Due: %s",
			inv.Number, inv.ID, displayName(inv.Client, "N/A"), statusTag, orDefault(inv.DueDate, "No Due Date")))
	}
	return textResult("%s", strings.Join(out, "\n"))
}

func (h *Handler) getInvoiceSummary(ctx context.Context, req *mcp.CallToolRequest, args getInvoiceSummaryArgs) (*mcp.CallToolResult, any, error) {
	q := url.Values{}
	q.Set("number", args.InvoiceNumber)
	q.Set("include", "client")

	var resp struct {
		Data []ninja.Invoice `json:"data"`
	}
	if err := h.api.Get(ctx, "/invoices", q, &resp); err != nil {
		return errorResult("Error: %v", err)
	}
	if len(resp.Data) == 0 {
		return textResult("Invoice #%s not found.", args.InvoiceNumber)
	}

	inv := resp.Data[0]
	status := "PAID"
	if inv.Balance > 0 {
		status = "UNPAID"
	}
	return textResult("Summary for Invoice #%s:\n- Invoice ID: %s\n- Client: %s\n- Total Amount: $%s\n- Remaining Balance: $%s\n- Status: %s\n- Due Date: %s",
		args.InvoiceNumber, inv.ID, displayName(inv.Client, "N/A"),
		money(inv.Amount), money(inv.Balance), status, orDefault(inv.DueDate, "N/A"))
}

func (h *Handler) createInvoice(ctx context.Context, req *mcp.CallToolRequest, args createInvoiceArgs) (*mcp.CallToolResult, any, error) {
	if args.ClientID == "" || len(args.LineItems) == 0 {
		return errorResult("Error: client_id and line_items are required.")
	}

	payload := map[string]any{
		"client_id":  args.ClientID,
		"line_items": args.LineItems,
	}
	if args.DueDate != "" {
		payload["due_date"] = args.DueDate
	}

	var resp struct {
		Data ninja.Invoice `json:"data"`
	}
	if err := h.api.Post(ctx, "/invoices", payload, &resp); err != nil {
		return errorResult("Failed to create invoice: %v", err)
	}
	return textResult("Successfully created Invoice #%s (ID: %s) for total $%s. Due: %s",
		resp.Data.Number, resp.Data.ID, money(resp.Data.Amount), orDefault(resp.Data.DueDate, "N/A"))
}

func (h *Handler) sendReminder(ctx context.Context, req *mcp.CallToolRequest, args sendReminderArgs) (*mcp.CallToolResult, any, error) {
	if args.InvoiceID == "" {
		return errorResult("Error: invoice_id is required.")
	}

	extra := map[string]any{"email_type": "reminder1"}
	if err := h.api.Bulk(ctx, "invoices", "send_email", []string{args.InvoiceID}, extra); err != nil {
		return errorResult("Failed to send email: %v", err)
	}
	return textResult("Successfully queued invoice %s for emailing.", args.InvoiceID)
}
