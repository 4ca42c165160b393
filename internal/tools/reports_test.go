package tools

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// jsonResponder serves fixed JSON bodies keyed by path.
func jsonResponder(t *testing.T, responses map[string]string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := responses[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, body)
	})
}

func TestOverdueAgingPartitionsEveryInvoice(t *testing.T) {
	// testNow is 2026-08-30: due dates below land in the four bands.
	invoices := `{"data":[
		{"id":"i1","number":"0001","balance":100,"due_date":"2026-08-20","client":{"display_name":"Acme"}},
		{"id":"i2","number":"0002","balance":200,"due_date":"2026-07-15","client":{"display_name":"Globex"}},
		{"id":"i3","number":"0003","balance":300,"due_date":"2026-06-10","client":{"display_name":"Initech"}},
		{"id":"i4","number":"0004","balance":400,"due_date":"2025-12-01","client":{"display_name":"Umbrella"}},
		{"id":"i5","number":"0005","balance":999,"due_date":"2026-09-15","client":{"display_name":"NotDue"}}
	]}`
	h := newTestHandler(t, jsonResponder(t, map[string]string{"/invoices": invoices}))

	res, _, err := h.getOverdueAging(context.Background(), &mcp.CallToolRequest{}, noArgs{})
	if err != nil {
		t.Fatalf("getOverdueAging: %v", err)
	}
	text := resultText(t, res)

	// A future due date is not overdue and must be excluded from the total.
	if !strings.Contains(text, "Total Overdue: $1,000.00") {
		t.Errorf("total wrong in %q", text)
	}
	for _, want := range []string{
		"1-30 days: $100.00 (1 invoices)",
		"31-60 days: $200.00 (1 invoices)",
		"61-90 days: $300.00 (1 invoices)",
		"90+ days: $400.00 (1 invoices)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in %q", want, text)
		}
	}
	if strings.Contains(text, "NotDue") {
		t.Errorf("future invoice listed in %q", text)
	}
}

func TestAgingBandBoundaries(t *testing.T) {
	tests := []struct {
		days int
		want int
	}{
		{1, 0}, {30, 0}, {31, 1}, {60, 1}, {61, 2}, {90, 2}, {91, 3}, {400, 3},
	}
	for _, tt := range tests {
		if got := agingBand(tt.days); got != tt.want {
			t.Errorf("agingBand(%d) = %d, want %d", tt.days, got, tt.want)
		}
	}
}

func TestRevenueReportGroupsByMonthAscending(t *testing.T) {
	payments := `{"data":[
		{"id":"p1","amount":100,"date":"2026-03-10","client":{"id":"c1","display_name":"Acme"}},
		{"id":"p2","amount":50,"date":"2026-01-05","client":{"id":"c1","display_name":"Acme"}},
		{"id":"p3","amount":25,"date":"2026-03-20","client":{"id":"c2","display_name":"Globex"}}
	]}`
	h := newTestHandler(t, jsonResponder(t, map[string]string{"/payments": payments}))

	res, _, err := h.getRevenueReport(context.Background(), &mcp.CallToolRequest{}, getRevenueReportArgs{GroupBy: "month"})
	if err != nil {
		t.Fatalf("getRevenueReport: %v", err)
	}
	text := resultText(t, res)

	if !strings.Contains(text, "Total Revenue: $175.00") {
		t.Errorf("total wrong in %q", text)
	}
	jan := strings.Index(text, "2026-01: $50.00")
	mar := strings.Index(text, "2026-03: $125.00")
	if jan == -1 || mar == -1 {
		t.Fatalf("month buckets missing in %q", text)
	}
	if jan > mar {
		t.Error("month keys not sorted ascending")
	}
}

func TestRevenueReportDateFilter(t *testing.T) {
	payments := `{"data":[
		{"id":"p1","amount":100,"date":"2026-03-10","client":{"id":"c1","display_name":"Acme"}},
		{"id":"p2","amount":50,"date":"2025-11-05","client":{"id":"c1","display_name":"Acme"}}
	]}`
	h := newTestHandler(t, jsonResponder(t, map[string]string{"/payments": payments}))

	res, _, err := h.getRevenueReport(context.Background(), &mcp.CallToolRequest{},
		getRevenueReportArgs{StartDate: "2026-01-01", GroupBy: "year"})
	if err != nil {
		t.Fatalf("getRevenueReport: %v", err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "Total Revenue: $100.00") {
		t.Errorf("date filter not applied in %q", text)
	}
	if !strings.Contains(text, "2026: $100.00") {
		t.Errorf("year bucket missing in %q", text)
	}
}

func TestRevenueReportRejectsBadGroupBy(t *testing.T) {
	h := newTestHandler(t, jsonResponder(t, map[string]string{}))

	res, _, err := h.getRevenueReport(context.Background(), &mcp.CallToolRequest{}, getRevenueReportArgs{GroupBy: "week"})
	if err != nil {
		t.Fatalf("getRevenueReport: %v", err)
	}
	if !res.IsError {
		t.Error("expected IsError for unsupported group_by")
	}
}

func TestOutstandingByClientRanksByBalance(t *testing.T) {
	clients := `{"data":[
		{"id":"c1","display_name":"Acme","balance":50,"paid_to_date":100},
		{"id":"c2","display_name":"Globex","balance":150,"paid_to_date":0},
		{"id":"c3","display_name":"Settled","balance":0,"paid_to_date":500}
	]}`
	h := newTestHandler(t, jsonResponder(t, map[string]string{"/clients": clients}))

	res, _, err := h.getOutstandingByClient(context.Background(), &mcp.CallToolRequest{}, noArgs{})
	if err != nil {
		t.Fatalf("getOutstandingByClient: %v", err)
	}
	text := resultText(t, res)

	if !strings.Contains(text, "Total Outstanding: $200.00") {
		t.Errorf("total wrong in %q", text)
	}
	globex := strings.Index(text, "Globex")
	acme := strings.Index(text, "Acme")
	if globex == -1 || acme == -1 || globex > acme {
		t.Errorf("clients not ranked by balance in %q", text)
	}
	if strings.Contains(text, "Settled") {
		t.Errorf("zero-balance client listed in %q", text)
	}
}

func TestBusinessDashboard(t *testing.T) {
	responses := map[string]string{
		"/clients":  `{"data":[{"id":"c1","display_name":"Acme","balance":100,"paid_to_date":900}]}`,
		"/invoices": `{"data":[{"id":"i1","number":"0001","balance":75,"due_date":"2026-08-01"}]}`,
		"/expenses": `{"data":[{"id":"e1","amount":300,"date":"2026-08-10"}]}`,
		"/projects": `{"data":[{"id":"pr1","name":"Site"}]}`,
		"/tasks":    fmt.Sprintf(`{"data":[{"id":"t1","time_log":"[[%d]]"}]}`, testNow.Unix()-60),
	}
	h := newTestHandler(t, jsonResponder(t, responses))

	res, _, err := h.getBusinessDashboard(context.Background(), &mcp.CallToolRequest{}, noArgs{})
	if err != nil {
		t.Fatalf("getBusinessDashboard: %v", err)
	}
	text := resultText(t, res)

	for _, want := range []string{
		"Revenue (collected): $900.00",
		"Overdue: $75.00",
		"Profit: $600.00",
		"Running Timers: 1",
		"! 1 timer(s) running",
		"! $75.00 overdue",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in dashboard %q", want, text)
		}
	}
}

func TestMoneyFormatting(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{12.5, "12.50"},
		{1234.5, "1,234.50"},
		{1234567.89, "1,234,567.89"},
		{-9876.54, "-9,876.54"},
	}
	for _, tt := range tests {
		if got := money(tt.in); got != tt.want {
			t.Errorf("money(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
