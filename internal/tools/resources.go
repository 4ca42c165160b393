package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const rateCardURI = "config://rate_card"

const rateCard = `=== RATE CARD ===

Standard Hourly Rate: $50/hr

This rate applies to all services including:
- Development
- Consulting
- Project work
- Support

All time is tracked and billed in 15-minute increments.
`

const dailyBriefing = `Please give me my daily business briefing. Check and report on:

1. **Running Timers**: Are there any tasks with timers currently running? (I may have forgotten to stop them)

2. **Overdue Invoices**: List any invoices that are past their due date and still unpaid.

3. **Outstanding Balances**: Show me which clients owe money and how much.

4. **Unbilled Hours**: Summarize any time I've logged that hasn't been invoiced yet.

5. **Active Projects**: Show my current active projects and their status (hours used vs budgeted).

Format this as a clear morning summary I can quickly scan. Highlight anything urgent that needs my attention today.
`

func registerResources(s *mcp.Server) {
	s.AddResource(&mcp.Resource{
		URI:         rateCardURI,
		Name:        "rate_card",
		Description: "The current hourly rate card for freelance services.",
		MIMEType:    "text/plain",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{URI: rateCardURI, MIMEType: "text/plain", Text: rateCard},
			},
		}, nil
	})
}

func registerPrompts(s *mcp.Server) {
	s.AddPrompt(&mcp.Prompt{
		Name:        "daily_briefing",
		Description: "Morning briefing prompt: running timers, overdue invoices, outstanding balances, unbilled hours, and active projects.",
	}, func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return &mcp.GetPromptResult{
			Description: "Daily business briefing",
			Messages: []*mcp.PromptMessage{
				{Role: "user", Content: &mcp.TextContent{Text: dailyBriefing}},
			},
		}, nil
	})
}
