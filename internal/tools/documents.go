package tools

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/averden/invoice-ninja-mcp/internal/ninja"
)

type getDocumentsArgs struct {
	EntityType string `json:"entity_type" jsonschema:"Type of entity: invoices, expenses, projects, tasks, or clients"`
	EntityID   string `json:"entity_id" jsonschema:"The entity's hashed ID"`
}

type getDocumentDetailsArgs struct {
	DocumentID string `json:"document_id" jsonschema:"Document hashed ID"`
}

type searchDocumentsArgs struct {
	SearchTerm string `json:"search_term,omitempty" jsonschema:"Text to search for in document names"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 20)"`
}

// documentEntityTypes are the entities documents can be attached to.
var documentEntityTypes = map[string]bool{
	"invoices": true,
	"expenses": true,
	"projects": true,
	"tasks":    true,
	"clients":  true,
}

func registerDocumentTools(s *mcp.Server, h *Handler) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_documents",
		Description: "List documents attached to an entity (read-only).",
	}, h.getDocuments)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_document_details",
		Description: "Get detailed information about a specific document.",
	}, h.getDocumentDetails)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "search_documents",
		Description: "Search all documents across the system by name.",
	}, h.searchDocuments)
}

// humanSize renders a byte count as bytes, KB, or MB.
func humanSize(size int64) string {
	switch {
	case size >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	case size >= 1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}

// singular drops the trailing "s" from an entity type for messages.
func singular(entityType string) string {
	return strings.TrimSuffix(entityType, "s")
}

func (h *Handler) getDocuments(ctx context.Context, req *mcp.CallToolRequest, args getDocumentsArgs) (*mcp.CallToolResult, any, error) {
	if !documentEntityTypes[args.EntityType] {
		return errorResult("Error: entity_type must be one of invoices, expenses, projects, tasks, clients.")
	}

	q := url.Values{}
	q.Set("include", "documents")

	var resp struct {
		Data struct {
			ID        string           `json:"id"`
			Documents []ninja.Document `json:"documents"`
		} `json:"data"`
	}
	if err := h.api.Get(ctx, "/"+args.EntityType+"/"+args.EntityID, q, &resp); err != nil {
		return errorResult("Error fetching documents: %v", err)
	}
	if resp.Data.ID == "" {
		name := singular(args.EntityType)
		return textResult("%s %s not found.", strings.ToUpper(name[:1])+name[1:], args.EntityID)
	}
	if len(resp.Data.Documents) == 0 {
		return textResult("No documents attached to this %s.", singular(args.EntityType))
	}

	out := []string{
		fmt.Sprintf("--- Documents for %s %s ---", singular(args.EntityType), args.EntityID),
		fmt.Sprintf("Total: %d document(s)", len(resp.Data.Documents)),
		"",
	}
	for _, doc := range resp.Data.Documents {
		out = append(out,
			fmt.Sprintf("- %s", orDefault(doc.Name, "Unnamed")),
			fmt.Sprintf("  ID: %s", orDefault(doc.ID, "N/A")),
			fmt.Sprintf("  Type: %s | Size: %s", orDefault(doc.Type, "Unknown"), humanSize(doc.Size)))
	}
	return textResult("%s", strings.Join(out, "\n"))
}

func (h *Handler) getDocumentDetails(ctx context.Context, req *mcp.CallToolRequest, args getDocumentDetailsArgs) (*mcp.CallToolResult, any, error) {
	var resp struct {
		Data ninja.Document `json:"data"`
	}
	if err := h.api.Get(ctx, "/documents/"+args.DocumentID, nil, &resp); err != nil {
		return errorResult("Error: %v", err)
	}
	doc := resp.Data
	if doc.ID == "" {
		return textResult("Document %s not found.", args.DocumentID)
	}

	isPublic := "No"
	if doc.IsPublic {
		isPublic = "Yes"
	}
	created := "N/A"
	if doc.CreatedAt > 0 {
		created = time.Unix(doc.CreatedAt, 0).UTC().Format("2006-01-02 15:04")
	}

	out := []string{
		fmt.Sprintf("Document: %s", orDefault(doc.Name, "Unnamed")),
		fmt.Sprintf("- ID: %s", args.DocumentID),
		fmt.Sprintf("- Type: %s", orDefault(doc.Type, "Unknown")),
		fmt.Sprintf("- Size: %s", humanSize(doc.Size)),
	}
	if doc.Width > 0 && doc.Height > 0 {
		out = append(out, fmt.Sprintf("- Dimensions: %dx%d", doc.Width, doc.Height))
	}
	out = append(out,
		fmt.Sprintf("- Public: %s", isPublic),
		fmt.Sprintf("- Created: %s", created))
	return textResult("%s", strings.Join(out, "\n"))
}

func (h *Handler) searchDocuments(ctx context.Context, req *mcp.CallToolRequest, args searchDocumentsArgs) (*mcp.CallToolResult, any, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}

	q := url.Values{}
	q.Set("per_page", strconv.Itoa(limit))

	var resp struct {
		Data []ninja.Document `json:"data"`
	}
	if err := h.api.Get(ctx, "/documents", q, &resp); err != nil {
		return errorResult("Error: %v", err)
	}
	if len(resp.Data) == 0 {
		return textResult("No documents found.")
	}

	docs := resp.Data
	if args.SearchTerm != "" {
		needle := strings.ToLower(args.SearchTerm)
		var matched []ninja.Document
		for _, d := range docs {
			if strings.Contains(strings.ToLower(d.Name), needle) {
				matched = append(matched, d)
			}
		}
		if len(matched) == 0 {
			return textResult("No documents matching %q.", args.SearchTerm)
		}
		docs = matched
	}

	out := []string{fmt.Sprintf("--- Found %d Document(s) ---", len(docs))}
	for _, doc := range docs {
		out = append(out, fmt.Sprintf("- %s (ID: %s) | %s | %s",
			orDefault(doc.Name, "Unnamed"), orDefault(doc.ID, "N/A"),
			orDefault(doc.Type, "Unknown"), humanSize(doc.Size)))
	}
	return textResult("%s", strings.Join(out, "\n"))
}
