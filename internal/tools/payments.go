package tools

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/averden/invoice-ninja-mcp/internal/ninja"
)

type getPaymentsArgs struct {
	ClientID string `json:"client_id,omitempty" jsonschema:"Filter by client hashed ID"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum number of payments to return (default 20)"`
}

type getPaymentDetailsArgs struct {
	PaymentID string `json:"payment_id" jsonschema:"Payment hashed ID"`
}

type recordPaymentArgs struct {
	ClientID             string   `json:"client_id" jsonschema:"Client making the payment"`
	Amount               float64  `json:"amount" jsonschema:"Payment amount"`
	InvoiceIDs           []string `json:"invoice_ids,omitempty" jsonschema:"Invoice IDs to apply the payment to"`
	Date                 string   `json:"date,omitempty" jsonschema:"Payment date YYYY-MM-DD (defaults to today)"`
	TransactionReference string   `json:"transaction_reference,omitempty" jsonschema:"External reference number"`
	Notes                string   `json:"notes,omitempty" jsonschema:"Private notes about the payment"`
}

type applyPaymentArgs struct {
	InvoiceID string  `json:"invoice_id" jsonschema:"Invoice hashed ID"`
	Amount    float64 `json:"amount" jsonschema:"Payment amount"`
	Date      string  `json:"date,omitempty" jsonschema:"Payment date YYYY-MM-DD"`
	Notes     string  `json:"notes,omitempty" jsonschema:"Private notes"`
}

func registerPaymentTools(s *mcp.Server, h *Handler) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_payments",
		Description: "Fetch payments with optional client filter, including applied invoices.",
	}, h.getPayments)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_payment_details",
		Description: "Get detailed information about a specific payment.",
	}, h.getPaymentDetails)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "record_payment",
		Description: "Record a payment from a client, optionally applied across invoices.",
	}, h.recordPayment)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "apply_payment_to_invoice",
		Description: "Record a payment directly against an invoice, using the invoice's client automatically.",
	}, h.applyPaymentToInvoice)
}

func (h *Handler) getPayments(ctx context.Context, req *mcp.CallToolRequest, args getPaymentsArgs) (*mcp.CallToolResult, any, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}

	q := listQuery("active", limit, "client,invoices")
	if args.ClientID != "" {
		q.Set("client_id", args.ClientID)
	}

	var resp struct {
		Data []ninja.Payment `json:"data"`
	}
	if err := h.api.Get(ctx, "/payments", q, &resp); err != nil {
		return errorResult("Error fetching payments: %v", err)
	}
	if len(resp.Data) == 0 {
		return textResult("No payments found.")
	}

	out := []string{fmt.Sprintf("--- Found %d Payments ---", len(resp.Data))}
	for _, p := range resp.Data {
		var nums []string
		for i, inv := range p.Invoices {
			if i == 3 {
				break
			}
			nums = append(nums, orDefault(inv.Number, "N/A"))
		}
		invoiceNums := "N/A"
		if len(nums) > 0 {
			invoiceNums = strings.Join(nums, ", ")
		}
		out = append(out, fmt.Sprintf("- $%.2f from %s (ID: %s) | Date: %s | Invoices: %s",
			p.Amount, displayName(p.Client, "Unknown"), p.ID, orDefault(p.Date, "N/A"), invoiceNums))
	}
	return textResult("%s", strings.Join(out, "\n"))
}

func (h *Handler) getPaymentDetails(ctx context.Context, req *mcp.CallToolRequest, args getPaymentDetailsArgs) (*mcp.CallToolResult, any, error) {
	q := url.Values{}
	q.Set("include", "client,invoices")

	var resp struct {
		Data ninja.Payment `json:"data"`
	}
	if err := h.api.Get(ctx, "/payments/"+args.PaymentID, q, &resp); err != nil {
		return errorResult("Error: %v", err)
	}
	p := resp.Data
	if p.ID == "" {
		return textResult("Payment %s not found.", args.PaymentID)
	}

	out := fmt.Sprintf("Payment Details:\n- ID: %s\n- Amount: $%.2f\n- Date: %s\n- Client: %s\n- Transaction Ref: %s\n- Notes: %s",
		args.PaymentID, p.Amount, orDefault(p.Date, "N/A"), displayName(p.Client, "Unknown"),
		orDefault(p.TransactionReference, "None"), truncate(orDefault(p.PrivateNotes, "None"), 100))

	if len(p.Invoices) > 0 {
		var lines []string
		for _, inv := range p.Invoices {
			lines = append(lines, fmt.Sprintf("  - Invoice #%s: $%.2f", orDefault(inv.Number, "N/A"), inv.Amount))
		}
		out += "\n- Applied to Invoices:\n" + strings.Join(lines, "\n")
	}
	return textResult("%s", out)
}

func (h *Handler) recordPayment(ctx context.Context, req *mcp.CallToolRequest, args recordPaymentArgs) (*mcp.CallToolResult, any, error) {
	if args.ClientID == "" || args.Amount <= 0 {
		return errorResult("Error: client_id and a positive amount are required.")
	}

	payload := map[string]any{
		"client_id": args.ClientID,
		"amount":    args.Amount,
	}
	if len(args.InvoiceIDs) > 0 {
		// Split the amount evenly across the given invoices.
		share := args.Amount / float64(len(args.InvoiceIDs))
		var invoices []map[string]any
		for _, id := range args.InvoiceIDs {
			invoices = append(invoices, map[string]any{"invoice_id": id, "amount": share})
		}
		payload["invoices"] = invoices
	}
	if args.Date != "" {
		payload["date"] = args.Date
	}
	if args.TransactionReference != "" {
		payload["transaction_reference"] = args.TransactionReference
	}
	if args.Notes != "" {
		payload["private_notes"] = args.Notes
	}

	var resp struct {
		Data ninja.Payment `json:"data"`
	}
	if err := h.api.Post(ctx, "/payments", payload, &resp); err != nil {
		return errorResult("Request failed: %v", err)
	}
	return textResult("Success! Recorded payment of $%.2f (ID: %s) from client %s.", args.Amount, resp.Data.ID, args.ClientID)
}

func (h *Handler) applyPaymentToInvoice(ctx context.Context, req *mcp.CallToolRequest, args applyPaymentArgs) (*mcp.CallToolResult, any, error) {
	if args.InvoiceID == "" || args.Amount <= 0 {
		return errorResult("Error: invoice_id and a positive amount are required.")
	}

	// Look up the invoice first to find its client and current balance.
	var invResp struct {
		Data ninja.Invoice `json:"data"`
	}
	if err := h.api.Get(ctx, "/invoices/"+args.InvoiceID, nil, &invResp); err != nil {
		return errorResult("Request failed: %v", err)
	}
	inv := invResp.Data
	if inv.ID == "" {
		return textResult("Invoice %s not found.", args.InvoiceID)
	}

	if args.Amount > inv.Balance {
		return textResult("Warning: Payment amount $%.2f exceeds invoice balance $%.2f. Use record_payment for overpayments.",
			args.Amount, inv.Balance)
	}

	payload := map[string]any{
		"client_id": inv.ClientID,
		"amount":    args.Amount,
		"invoices":  []map[string]any{{"invoice_id": args.InvoiceID, "amount": args.Amount}},
	}
	if args.Date != "" {
		payload["date"] = args.Date
	}
	if args.Notes != "" {
		payload["private_notes"] = args.Notes
	}

	if err := h.api.Post(ctx, "/payments", payload, nil); err != nil {
		return errorResult("Request failed: %v", err)
	}
	return textResult("Success! Applied $%.2f to invoice %s. New balance: $%.2f",
		args.Amount, args.InvoiceID, inv.Balance-args.Amount)
}
