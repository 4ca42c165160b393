package ninja_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/averden/invoice-ninja-mcp/internal/config"
	"github.com/averden/invoice-ninja-mcp/internal/ninja"
)

func decodeJSONBody(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func newTestClient(t *testing.T, handler http.Handler) *ninja.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := &config.Config{
		BaseURL:               srv.URL,
		APIToken:              "test-token",
		RequestTimeoutSeconds: 5,
	}
	return ninja.New(cfg)
}

func TestGetDecodesEnvelope(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/clients" {
			t.Errorf("path = %q, want /clients", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Token"); got != "test-token" {
			t.Errorf("X-Api-Token = %q", got)
		}
		if got := r.Header.Get("X-Requested-With"); got != "XMLHttpRequest" {
			t.Errorf("X-Requested-With = %q", got)
		}
		if got := r.URL.Query().Get("status"); got != "active" {
			t.Errorf("status = %q, want active", got)
		}
		w.Write([]byte(`{"data":[{"id":"abc","display_name":"Acme","balance":12.5}]}`))
	}))

	q := url.Values{}
	q.Set("status", "active")
	var resp struct {
		Data []ninja.Customer `json:"data"`
	}
	if err := c.Get(context.Background(), "/clients", q, &resp); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].DisplayName != "Acme" || resp.Data[0].Balance != 12.5 {
		t.Errorf("decoded = %+v", resp.Data)
	}
}

func TestNon2xxReturnsAPIError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"The given data was invalid."}`))
	}))

	err := c.Post(context.Background(), "/clients", map[string]any{"name": ""}, nil)
	var apiErr *ninja.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d", apiErr.Status)
	}
	if apiErr.Message != "The given data was invalid." {
		t.Errorf("Message = %q, want upstream message surfaced", apiErr.Message)
	}
}

func TestInvalidJSONIsAnError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": not json`))
	}))

	var resp struct {
		Data []ninja.Customer `json:"data"`
	}
	if err := c.Get(context.Background(), "/clients", nil, &resp); err == nil {
		t.Fatal("expected decode error, got nil")
	}
}

func TestBulkPayload(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := decodeJSONBody(r, &gotBody); err != nil {
			t.Fatalf("decoding bulk body: %v", err)
		}
		w.Write([]byte(`{}`))
	}))

	err := c.Bulk(context.Background(), "invoices", "send_email", []string{"inv1"}, map[string]any{"email_type": "reminder1"})
	if err != nil {
		t.Fatalf("Bulk: %v", err)
	}
	if gotPath != "/invoices/bulk" {
		t.Errorf("path = %q, want /invoices/bulk", gotPath)
	}
	if gotBody["action"] != "send_email" || gotBody["email_type"] != "reminder1" {
		t.Errorf("body = %v", gotBody)
	}
	ids, ok := gotBody["ids"].([]any)
	if !ok || len(ids) != 1 || ids[0] != "inv1" {
		t.Errorf("ids = %v", gotBody["ids"])
	}
}

func TestCancelledContextAbortsRequest(t *testing.T) {
	block := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Get(ctx, "/clients", nil, nil); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
