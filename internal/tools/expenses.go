package tools

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/averden/invoice-ninja-mcp/internal/ninja"
)

type getExpenseCategoriesArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of categories to return (default 50)"`
}

type getExpensesArgs struct {
	ClientID   string `json:"client_id,omitempty" jsonschema:"Filter by client (for billable expenses)"`
	VendorID   string `json:"vendor_id,omitempty" jsonschema:"Filter by vendor"`
	CategoryID string `json:"category_id,omitempty" jsonschema:"Filter by expense category"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Maximum number of expenses to return (default 20)"`
}

type getExpenseDetailsArgs struct {
	ExpenseID string `json:"expense_id" jsonschema:"Expense hashed ID"`
}

type createExpenseArgs struct {
	Amount           float64 `json:"amount" jsonschema:"Expense amount"`
	Date             string  `json:"date" jsonschema:"Expense date (YYYY-MM-DD)"`
	CategoryID       string  `json:"category_id,omitempty" jsonschema:"Expense category ID"`
	VendorID         string  `json:"vendor_id,omitempty" jsonschema:"Vendor ID (who you paid)"`
	ClientID         string  `json:"client_id,omitempty" jsonschema:"Client ID (if billable to a client)"`
	PublicNotes      string  `json:"public_notes,omitempty" jsonschema:"Description visible on invoices"`
	PrivateNotes     string  `json:"private_notes,omitempty" jsonschema:"Internal notes"`
	ShouldBeInvoiced bool    `json:"should_be_invoiced,omitempty" jsonschema:"Mark as billable to client"`
}

type getExpenseSummaryArgs struct {
	StartDate string `json:"start_date,omitempty" jsonschema:"Filter from date (YYYY-MM-DD)"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"Filter to date (YYYY-MM-DD)"`
}

func registerExpenseTools(s *mcp.Server, h *Handler) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_expense_categories",
		Description: "Fetch all expense categories.",
	}, h.getExpenseCategories)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_expenses",
		Description: "Fetch expenses with optional client, vendor, and category filters.",
	}, h.getExpenses)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_expense_details",
		Description: "Get detailed information about a specific expense.",
	}, h.getExpenseDetails)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "create_expense",
		Description: "Create a new expense, optionally billable to a client.",
	}, h.createExpense)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_expense_summary",
		Description: "Summarise expenses grouped by category within an optional date range.",
	}, h.getExpenseSummary)
}

func (h *Handler) getExpenseCategories(ctx context.Context, req *mcp.CallToolRequest, args getExpenseCategoriesArgs) (*mcp.CallToolResult, any, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = 50
	}

	q := url.Values{}
	q.Set("per_page", strconv.Itoa(limit))

	var resp struct {
		Data []ninja.ExpenseCategory `json:"data"`
	}
	if err := h.api.Get(ctx, "/expense_categories", q, &resp); err != nil {
		return errorResult("Error fetching expense categories: %v", err)
	}
	if len(resp.Data) == 0 {
		return textResult("No expense categories found.")
	}

	out := []string{fmt.Sprintf("--- Found %d Expense Categories ---", len(resp.Data))}
	for _, cat := range resp.Data {
		out = append(out, fmt.Sprintf("- %s (ID: %s)", orDefault(cat.Name, "Unnamed"), cat.ID))
	}
	return textResult("%s", strings.Join(out, "\n"))
}

func (h *Handler) getExpenses(ctx context.Context, req *mcp.CallToolRequest, args getExpensesArgs) (*mcp.CallToolResult, any, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}

	q := listQuery("active", limit, "client,vendor,category")
	if args.ClientID != "" {
		q.Set("client_id", args.ClientID)
	}
	if args.VendorID != "" {
		q.Set("vendor_id", args.VendorID)
	}
	if args.CategoryID != "" {
		q.Set("category_id", args.CategoryID)
	}

	var resp struct {
		Data []ninja.Expense `json:"data"`
	}
	if err := h.api.Get(ctx, "/expenses", q, &resp); err != nil {
		return errorResult("Error fetching expenses: %v", err)
	}
	if len(resp.Data) == 0 {
		return textResult("No expenses found.")
	}

	out := []string{fmt.Sprintf("--- Found %d Expenses ---", len(resp.Data))}
	for _, e := range resp.Data {
		category := "Uncategorized"
		if e.Category != nil && e.Category.Name != "" {
			category = e.Category.Name
		}
		vendor := "No Vendor"
		if e.Vendor != nil && e.Vendor.Name != "" {
			vendor = e.Vendor.Name
		}
		clientStr := ""
		if e.Client != nil && e.Client.DisplayName != "" {
			clientStr = " | Billable to: " + e.Client.DisplayName
		}
		out = append(out, fmt.Sprintf("- $%.2f | %s | %s | %s%s (ID: %s)",
			e.Amount, category, vendor, orDefault(e.Date, "N/A"), clientStr, e.ID))
	}
	return textResult("%s", strings.Join(out, "\n"))
}

func (h *Handler) getExpenseDetails(ctx context.Context, req *mcp.CallToolRequest, args getExpenseDetailsArgs) (*mcp.CallToolResult, any, error) {
	q := url.Values{}
	q.Set("include", "client,vendor,category")

	var resp struct {
		Data ninja.Expense `json:"data"`
	}
	if err := h.api.Get(ctx, "/expenses/"+args.ExpenseID, q, &resp); err != nil {
		return errorResult("Error: %v", err)
	}
	e := resp.Data
	if e.ID == "" {
		return textResult("Expense %s not found.", args.ExpenseID)
	}

	category := "Uncategorized"
	if e.Category != nil && e.Category.Name != "" {
		category = e.Category.Name
	}
	vendor := "No Vendor"
	if e.Vendor != nil && e.Vendor.Name != "" {
		vendor = e.Vendor.Name
	}
	billable := "No"
	if e.ShouldBeInvoiced {
		billable = "Yes"
	}
	invoiced := "No"
	if e.InvoiceID != "" {
		invoiced = "Yes"
	}

	return textResult("Expense Details:\n- ID: %s\n- Amount: $%.2f\n- Date: %s\n- Category: %s\n- Vendor: %s\n- Client: %s\n- Billable: %s\n- Invoiced: %s\n- Notes: %s",
		args.ExpenseID, e.Amount, orDefault(e.Date, "N/A"), category, vendor,
		displayName(e.Client, "Not billable"), billable, invoiced,
		truncate(orDefault(e.PublicNotes, "None"), 100))
}

func (h *Handler) createExpense(ctx context.Context, req *mcp.CallToolRequest, args createExpenseArgs) (*mcp.CallToolResult, any, error) {
	if args.Amount <= 0 || args.Date == "" {
		return errorResult("Error: a positive amount and a date are required.")
	}

	payload := map[string]any{
		"amount":             args.Amount,
		"date":               args.Date,
		"should_be_invoiced": args.ShouldBeInvoiced,
	}
	if args.CategoryID != "" {
		payload["category_id"] = args.CategoryID
	}
	if args.VendorID != "" {
		payload["vendor_id"] = args.VendorID
	}
	if args.ClientID != "" {
		payload["client_id"] = args.ClientID
	}
	if args.PublicNotes != "" {
		payload["public_notes"] = args.PublicNotes
	}
	if args.PrivateNotes != "" {
		payload["private_notes"] = args.PrivateNotes
	}

	var resp struct {
		Data ninja.Expense `json:"data"`
	}
	if err := h.api.Post(ctx, "/expenses", payload, &resp); err != nil {
		return errorResult("Request failed: %v", err)
	}
	return textResult("Success! Created expense of $%.2f (ID: %s) on %s.", args.Amount, resp.Data.ID, args.Date)
}

func (h *Handler) getExpenseSummary(ctx context.Context, req *mcp.CallToolRequest, args getExpenseSummaryArgs) (*mcp.CallToolResult, any, error) {
	q := listQuery("active", 500, "category")

	var resp struct {
		Data []ninja.Expense `json:"data"`
	}
	if err := h.api.Get(ctx, "/expenses", q, &resp); err != nil {
		return errorResult("Error: %v", err)
	}
	if len(resp.Data) == 0 {
		return textResult("No expenses found.")
	}

	// String comparison works for YYYY-MM-DD dates.
	var filtered []ninja.Expense
	for _, e := range resp.Data {
		if args.StartDate != "" && e.Date < args.StartDate {
			continue
		}
		if args.EndDate != "" && e.Date > args.EndDate {
			continue
		}
		filtered = append(filtered, e)
	}
	if len(filtered) == 0 {
		return textResult("No expenses found in the specified date range.")
	}

	byCategory := map[string]float64{}
	var total float64
	for _, e := range filtered {
		category := "Uncategorized"
		if e.Category != nil && e.Category.Name != "" {
			category = e.Category.Name
		}
		byCategory[category] += e.Amount
		total += e.Amount
	}

	type catTotal struct {
		name   string
		amount float64
	}
	sorted := make([]catTotal, 0, len(byCategory))
	for name, amount := range byCategory {
		sorted = append(sorted, catTotal{name, amount})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].amount > sorted[j].amount })

	out := []string{"--- Expense Summary ---"}
	if args.StartDate != "" || args.EndDate != "" {
		out = append(out, fmt.Sprintf("Date Range: %s to %s",
			orDefault(args.StartDate, "beginning"), orDefault(args.EndDate, "now")))
	}
	out = append(out,
		fmt.Sprintf("Total Expenses: $%s", money(total)),
		fmt.Sprintf("Number of Expenses: %d", len(filtered)),
		"",
		"By Category:")
	for _, ct := range sorted {
		percent := 0.0
		if total > 0 {
			percent = ct.amount / total * 100
		}
		out = append(out, fmt.Sprintf("- %s: $%s (%.1f%%)", ct.name, money(ct.amount), percent))
	}
	return textResult("%s", strings.Join(out, "\n"))
}
