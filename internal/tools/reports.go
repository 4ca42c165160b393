package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/averden/invoice-ninja-mcp/internal/ninja"
	"github.com/averden/invoice-ninja-mcp/internal/timelog"
)

type getRevenueByClientArgs struct {
	StartDate string `json:"start_date,omitempty" jsonschema:"Filter from date (YYYY-MM-DD)"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"Filter to date (YYYY-MM-DD)"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Number of top clients to show (default 10)"`
}

type getRevenueReportArgs struct {
	StartDate string `json:"start_date,omitempty" jsonschema:"Filter from date (YYYY-MM-DD)"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"Filter to date (YYYY-MM-DD)"`
	GroupBy   string `json:"group_by,omitempty" jsonschema:"Grouping key: client, day, month, or year (default client)"`
}

func registerReportTools(s *mcp.Server, h *Handler) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_outstanding_by_client",
		Description: "Break down outstanding balances by client, ranked by amount.",
	}, h.getOutstandingByClient)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_overdue_aging",
		Description: "Aging report for overdue invoices, grouped into 1-30/31-60/61-90/90+ day bands.",
	}, h.getOverdueAging)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_revenue_by_client",
		Description: "Revenue breakdown by client from payments, with optional date range.",
	}, h.getRevenueByClient)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_revenue_report",
		Description: "Detailed revenue report grouped by client or by day/month/year.",
	}, h.getRevenueReport)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_profitability_summary",
		Description: "High-level profitability summary comparing revenue against expenses.",
	}, h.getProfitabilitySummary)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_business_dashboard",
		Description: "Comprehensive business dashboard with money, activity, and alert sections.",
	}, h.getBusinessDashboard)
}

func (h *Handler) getOutstandingByClient(ctx context.Context, req *mcp.CallToolRequest, args noArgs) (*mcp.CallToolResult, any, error) {
	var resp struct {
		Data []ninja.Customer `json:"data"`
	}
	if err := h.api.Get(ctx, "/clients", listQuery("active", 100, ""), &resp); err != nil {
		return errorResult("Error: %v", err)
	}

	var withBalance []ninja.Customer
	var total float64
	for _, c := range resp.Data {
		if c.Balance > 0 {
			withBalance = append(withBalance, c)
			total += c.Balance
		}
	}
	if len(withBalance) == 0 {
		return textResult("No outstanding balances found.")
	}
	sort.Slice(withBalance, func(i, j int) bool { return withBalance[i].Balance > withBalance[j].Balance })

	out := []string{
		"--- Outstanding Balances by Client ---",
		fmt.Sprintf("Total Outstanding: $%s", money(total)),
		fmt.Sprintf("Clients with Balance: %d", len(withBalance)),
		"",
	}
	for _, c := range withBalance {
		percent := 0.0
		if total > 0 {
			percent = c.Balance / total * 100
		}
		out = append(out, fmt.Sprintf("- %s: $%s (%.1f%%)", c.DisplayName, money(c.Balance), percent))
	}
	return textResult("%s", strings.Join(out, "\n"))
}

// agingBands are the fixed day ranges for the overdue report, in order.
var agingBands = []struct {
	label   string
	maxDays int
}{
	{"1-30 days", 30},
	{"31-60 days", 60},
	{"61-90 days", 90},
	{"90+ days", 1<<31 - 1},
}

// agingBand returns the index of the band daysOverdue falls into.
func agingBand(daysOverdue int) int {
	for i, band := range agingBands {
		if daysOverdue <= band.maxDays {
			return i
		}
	}
	return len(agingBands) - 1
}

func (h *Handler) getOverdueAging(ctx context.Context, req *mcp.CallToolRequest, args noArgs) (*mcp.CallToolResult, any, error) {
	q := listQuery("active", 100, "client")
	q.Set("client_status", "overdue")

	var resp struct {
		Data []ninja.Invoice `json:"data"`
	}
	if err := h.api.Get(ctx, "/invoices", q, &resp); err != nil {
		return errorResult("Error: %v", err)
	}
	if len(resp.Data) == 0 {
		return textResult("No overdue invoices found.")
	}

	type agingEntry struct {
		number  string
		client  string
		balance float64
		days    int
	}
	today := h.now().Truncate(24 * time.Hour)
	buckets := make([][]agingEntry, len(agingBands))
	var total float64

	for _, inv := range resp.Data {
		if inv.DueDate == "" {
			continue
		}
		due, err := time.Parse("2006-01-02", inv.DueDate)
		if err != nil {
			continue
		}
		days := int(today.Sub(due).Hours() / 24)
		if days <= 0 {
			// Not actually overdue yet.
			continue
		}

		band := agingBand(days)
		buckets[band] = append(buckets[band], agingEntry{
			number:  orDefault(inv.Number, "N/A"),
			client:  displayName(inv.Client, "Unknown"),
			balance: inv.Balance,
			days:    days,
		})
		total += inv.Balance
	}

	out := []string{
		"--- Overdue Aging Report ---",
		fmt.Sprintf("Total Overdue: $%s", money(total)),
		"",
	}
	for i, band := range agingBands {
		entries := buckets[i]
		if len(entries) == 0 {
			continue
		}
		var bandTotal float64
		for _, e := range entries {
			bandTotal += e.balance
		}
		out = append(out, fmt.Sprintf("%s: $%s (%d invoices)", band.label, money(bandTotal), len(entries)))
		show := entries
		if len(show) > 5 {
			show = show[:5]
		}
		for _, e := range show {
			out = append(out, fmt.Sprintf("  - [%s] %s: $%s (%d days)", e.number, e.client, money(e.balance), e.days))
		}
		if len(entries) > 5 {
			out = append(out, fmt.Sprintf("  ... and %d more", len(entries)-5))
		}
		out = append(out, "")
	}
	return textResult("%s", strings.Join(out, "\n"))
}

// fetchPayments loads payments with embedded clients, filtered to the given
// date range (inclusive; empty bounds are open).
func (h *Handler) fetchPayments(ctx context.Context, startDate, endDate string) ([]ninja.Payment, error) {
	var resp struct {
		Data []ninja.Payment `json:"data"`
	}
	if err := h.api.Get(ctx, "/payments", listQuery("active", 500, "client"), &resp); err != nil {
		return nil, err
	}

	var filtered []ninja.Payment
	for _, p := range resp.Data {
		if startDate != "" && p.Date < startDate {
			continue
		}
		if endDate != "" && p.Date > endDate {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered, nil
}

func dateRangeLine(startDate, endDate string) string {
	return fmt.Sprintf("Date Range: %s to %s", orDefault(startDate, "beginning"), orDefault(endDate, "now"))
}

func (h *Handler) getRevenueByClient(ctx context.Context, req *mcp.CallToolRequest, args getRevenueByClientArgs) (*mcp.CallToolResult, any, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = 10
	}

	payments, err := h.fetchPayments(ctx, args.StartDate, args.EndDate)
	if err != nil {
		return errorResult("Error: %v", err)
	}

	type clientTotal struct {
		name  string
		total float64
	}
	totals := map[string]*clientTotal{}
	for _, p := range payments {
		if p.Client == nil {
			continue
		}
		ct, ok := totals[p.Client.ID]
		if !ok {
			ct = &clientTotal{name: orDefault(p.Client.DisplayName, "Unknown")}
			totals[p.Client.ID] = ct
		}
		ct.total += p.Amount
	}
	if len(totals) == 0 {
		return textResult("No revenue recorded in the specified period.")
	}

	sorted := make([]*clientTotal, 0, len(totals))
	var totalRevenue float64
	for _, ct := range totals {
		sorted = append(sorted, ct)
		totalRevenue += ct.total
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].total > sorted[j].total })

	out := []string{"--- Revenue by Client ---"}
	if args.StartDate != "" || args.EndDate != "" {
		out = append(out, dateRangeLine(args.StartDate, args.EndDate))
	}
	show := min(limit, len(sorted))
	out = append(out,
		fmt.Sprintf("Total Revenue: $%s", money(totalRevenue)),
		fmt.Sprintf("Clients with Revenue: %d", len(sorted)),
		"",
		fmt.Sprintf("Top %d Clients:", show))
	for _, ct := range sorted[:show] {
		percent := 0.0
		if totalRevenue > 0 {
			percent = ct.total / totalRevenue * 100
		}
		out = append(out, fmt.Sprintf("- %s: $%s (%.1f%%)", ct.name, money(ct.total), percent))
	}
	return textResult("%s", strings.Join(out, "\n"))
}

// truncateDate reduces a YYYY-MM-DD payment date to the grouping key.
func truncateDate(date, groupBy string) string {
	switch groupBy {
	case "year":
		if len(date) >= 4 {
			return date[:4]
		}
	case "month":
		if len(date) >= 7 {
			return date[:7]
		}
	case "day":
		return date
	}
	return date
}

func (h *Handler) getRevenueReport(ctx context.Context, req *mcp.CallToolRequest, args getRevenueReportArgs) (*mcp.CallToolResult, any, error) {
	groupBy := orDefault(args.GroupBy, "client")
	switch groupBy {
	case "client", "day", "month", "year":
	default:
		return errorResult("Error: group_by must be one of client, day, month, year.")
	}

	payments, err := h.fetchPayments(ctx, args.StartDate, args.EndDate)
	if err != nil {
		return errorResult("Error: %v", err)
	}
	if len(payments) == 0 {
		return textResult("No payments found in the specified period.")
	}

	var totalRevenue float64
	for _, p := range payments {
		totalRevenue += p.Amount
	}

	out := []string{"--- Revenue Report ---"}
	if args.StartDate != "" || args.EndDate != "" {
		out = append(out, dateRangeLine(args.StartDate, args.EndDate))
	}
	out = append(out,
		fmt.Sprintf("Total Revenue: $%s", money(totalRevenue)),
		fmt.Sprintf("Number of Payments: %d", len(payments)),
		"")

	if groupBy == "client" {
		byClient := map[string]float64{}
		for _, p := range payments {
			byClient[displayName(p.Client, "Unknown")] += p.Amount
		}
		type clientTotal struct {
			name  string
			total float64
		}
		sorted := make([]clientTotal, 0, len(byClient))
		for name, amount := range byClient {
			sorted = append(sorted, clientTotal{name, amount})
		}
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].total > sorted[j].total })

		out = append(out, "By Client:")
		show := sorted
		if len(show) > 15 {
			show = show[:15]
		}
		for _, ct := range show {
			percent := 0.0
			if totalRevenue > 0 {
				percent = ct.total / totalRevenue * 100
			}
			out = append(out, fmt.Sprintf("  %s: $%s (%.1f%%)", ct.name, money(ct.total), percent))
		}
		if len(sorted) > 15 {
			out = append(out, fmt.Sprintf("  ... and %d more clients", len(sorted)-15))
		}
		return textResult("%s", strings.Join(out, "\n"))
	}

	// Date-truncation grouping: sum per key, keys sorted ascending.
	byPeriod := map[string]float64{}
	for _, p := range payments {
		if p.Date == "" {
			continue
		}
		byPeriod[truncateDate(p.Date, groupBy)] += p.Amount
	}
	keys := make([]string, 0, len(byPeriod))
	for k := range byPeriod {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out = append(out, fmt.Sprintf("By %s:", strings.ToUpper(groupBy[:1])+groupBy[1:]))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("  %s: $%s", k, money(byPeriod[k])))
	}
	return textResult("%s", strings.Join(out, "\n"))
}

func (h *Handler) getProfitabilitySummary(ctx context.Context, req *mcp.CallToolRequest, args noArgs) (*mcp.CallToolResult, any, error) {
	var clientsResp struct {
		Data []ninja.Customer `json:"data"`
	}
	if err := h.api.Get(ctx, "/clients", listQuery("active", 500, ""), &clientsResp); err != nil {
		return errorResult("Error: %v", err)
	}

	var totalRevenue, totalOutstanding float64
	for _, c := range clientsResp.Data {
		totalRevenue += c.PaidToDate
		totalOutstanding += c.Balance
	}

	var expensesResp struct {
		Data []ninja.Expense `json:"data"`
	}
	if err := h.api.Get(ctx, "/expenses", listQuery("active", 500, ""), &expensesResp); err != nil {
		return errorResult("Error: %v", err)
	}

	var totalExpenses float64
	for _, e := range expensesResp.Data {
		totalExpenses += e.Amount
	}

	profit := totalRevenue - totalExpenses
	margin := 0.0
	if totalRevenue > 0 {
		margin = profit / totalRevenue * 100
	}

	return textResult("%s", strings.Join([]string{
		"--- Profitability Summary ---",
		"",
		"Revenue:",
		fmt.Sprintf("  Collected: $%s", money(totalRevenue)),
		fmt.Sprintf("  Outstanding: $%s", money(totalOutstanding)),
		fmt.Sprintf("  Total Billed: $%s", money(totalRevenue+totalOutstanding)),
		"",
		"Expenses:",
		fmt.Sprintf("  Total: $%s", money(totalExpenses)),
		"",
		"Profit (Collected - Expenses):",
		fmt.Sprintf("  Amount: $%s", money(profit)),
		fmt.Sprintf("  Margin: %.1f%%", margin),
	}, "\n"))
}

func (h *Handler) getBusinessDashboard(ctx context.Context, req *mcp.CallToolRequest, args noArgs) (*mcp.CallToolResult, any, error) {
	// Sequential fan-out over the lists the dashboard reduces. Each call has
	// its own timeout; the first failure aborts the dashboard.
	var clientsResp struct {
		Data []ninja.Customer `json:"data"`
	}
	if err := h.api.Get(ctx, "/clients", listQuery("active", 100, ""), &clientsResp); err != nil {
		return errorResult("Error: %v", err)
	}

	overdueQ := listQuery("active", 100, "")
	overdueQ.Set("client_status", "overdue")
	var invoicesResp struct {
		Data []ninja.Invoice `json:"data"`
	}
	if err := h.api.Get(ctx, "/invoices", overdueQ, &invoicesResp); err != nil {
		return errorResult("Error: %v", err)
	}

	var expensesResp struct {
		Data []ninja.Expense `json:"data"`
	}
	if err := h.api.Get(ctx, "/expenses", listQuery("active", 500, ""), &expensesResp); err != nil {
		return errorResult("Error: %v", err)
	}

	var projectsResp struct {
		Data []ninja.Project `json:"data"`
	}
	if err := h.api.Get(ctx, "/projects", listQuery("active", 100, ""), &projectsResp); err != nil {
		return errorResult("Error: %v", err)
	}

	var tasksResp struct {
		Data []ninja.Task `json:"data"`
	}
	if err := h.api.Get(ctx, "/tasks", listQuery("active", 100, ""), &tasksResp); err != nil {
		return errorResult("Error: %v", err)
	}

	var totalRevenue, totalOutstanding float64
	for _, c := range clientsResp.Data {
		totalRevenue += c.PaidToDate
		totalOutstanding += c.Balance
	}
	var totalOverdue float64
	for _, inv := range invoicesResp.Data {
		totalOverdue += inv.Balance
	}
	var totalExpenses float64
	for _, e := range expensesResp.Data {
		totalExpenses += e.Amount
	}
	profit := totalRevenue - totalExpenses

	runningTimers := 0
	for _, t := range tasksResp.Data {
		if log, err := timelog.Parse(t.TimeLog); err == nil && log.Running() {
			runningTimers++
		}
	}

	out := []string{
		"=== BUSINESS DASHBOARD ===",
		"",
		"MONEY",
		fmt.Sprintf("  Revenue (collected): $%s", money(totalRevenue)),
		fmt.Sprintf("  Outstanding: $%s", money(totalOutstanding)),
		fmt.Sprintf("  Overdue: $%s", money(totalOverdue)),
		fmt.Sprintf("  Expenses: $%s", money(totalExpenses)),
		fmt.Sprintf("  Profit: $%s", money(profit)),
		"",
		"ACTIVITY",
		fmt.Sprintf("  Active Clients: %d", len(clientsResp.Data)),
		fmt.Sprintf("  Active Projects: %d", len(projectsResp.Data)),
		fmt.Sprintf("  Open Tasks: %d", len(tasksResp.Data)),
		fmt.Sprintf("  Running Timers: %d", runningTimers),
		fmt.Sprintf("  Overdue Invoices: %d", len(invoicesResp.Data)),
	}

	var alerts []string
	if totalOverdue > 0 {
		alerts = append(alerts, fmt.Sprintf("  ! $%s overdue", money(totalOverdue)))
	}
	if runningTimers > 0 {
		alerts = append(alerts, fmt.Sprintf("  ! %d timer(s) running", runningTimers))
	}
	if len(alerts) > 0 {
		out = append(out, "", "ALERTS")
		out = append(out, alerts...)
	}
	return textResult("%s", strings.Join(out, "\n"))
}
