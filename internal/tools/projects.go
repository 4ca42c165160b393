package tools

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/averden/invoice-ninja-mcp/internal/ninja"
	"github.com/averden/invoice-ninja-mcp/internal/timelog"
)

type getProjectsArgs struct {
	ClientID        string `json:"client_id,omitempty" jsonschema:"Filter by client hashed ID"`
	IncludeArchived bool   `json:"include_archived,omitempty" jsonschema:"Include archived and deleted projects (default false)"`
	Limit           int    `json:"limit,omitempty" jsonschema:"Maximum number of projects to return (default 20)"`
}

type getProjectDetailsArgs struct {
	ProjectID string `json:"project_id" jsonschema:"Project hashed ID"`
}

type createProjectArgs struct {
	ClientID      string  `json:"client_id" jsonschema:"Client hashed ID"`
	Name          string  `json:"name" jsonschema:"Project name"`
	BudgetedHours float64 `json:"budgeted_hours,omitempty" jsonschema:"Estimated hours for the project"`
	TaskRate      float64 `json:"task_rate,omitempty" jsonschema:"Hourly rate for tasks (overrides default)"`
	DueDate       string  `json:"due_date,omitempty" jsonschema:"Due date in YYYY-MM-DD format"`
	Notes         string  `json:"notes,omitempty" jsonschema:"Project description/notes"`
}

type updateProjectArgs struct {
	ProjectID     string   `json:"project_id" jsonschema:"Project hashed ID"`
	Name          *string  `json:"name,omitempty" jsonschema:"New project name"`
	BudgetedHours *float64 `json:"budgeted_hours,omitempty" jsonschema:"New hours budget"`
	TaskRate      *float64 `json:"task_rate,omitempty" jsonschema:"New hourly rate"`
	DueDate       *string  `json:"due_date,omitempty" jsonschema:"New due date in YYYY-MM-DD format"`
	Notes         *string  `json:"notes,omitempty" jsonschema:"New project notes"`
}

type getProjectSummaryArgs struct {
	ProjectID string `json:"project_id" jsonschema:"Project hashed ID"`
}

func registerProjectTools(s *mcp.Server, h *Handler) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_projects",
		Description: "Fetch projects with name, client, budgeted hours, and hours logged. Optionally filtered by client.",
	}, h.getProjects)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_project_details",
		Description: "Get detailed information about a specific project including budget status.",
	}, h.getProjectDetails)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "create_project",
		Description: "Create a new project for a client.",
	}, h.createProject)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "update_project",
		Description: "Update an existing project's details. Only provided fields are changed.",
	}, h.updateProject)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_project_summary",
		Description: "Get a comprehensive project summary: hours logged vs budgeted, per-task time breakdown, and billable amount.",
	}, h.getProjectSummary)
}

func (h *Handler) getProjects(ctx context.Context, req *mcp.CallToolRequest, args getProjectsArgs) (*mcp.CallToolResult, any, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}

	q := listQuery(statusFilter(args.IncludeArchived), limit, "client")
	if args.ClientID != "" {
		q.Set("client_id", args.ClientID)
	}

	var resp struct {
		Data []ninja.Project `json:"data"`
	}
	if err := h.api.Get(ctx, "/projects", q, &resp); err != nil {
		return errorResult("Error fetching projects: %v", err)
	}
	if len(resp.Data) == 0 {
		return textResult("No projects found.")
	}

	out := []string{fmt.Sprintf("--- Found %d Projects ---", len(resp.Data))}
	for _, p := range resp.Data {
		budget := fmt.Sprintf("%gh logged", p.CurrentHours)
		if p.BudgetedHours > 0 {
			budget = fmt.Sprintf("%g/%gh", p.CurrentHours, p.BudgetedHours)
		}
		out = append(out, fmt.Sprintf("- %s (ID: %s) | Client: %s | Hours: %s | Due: %s",
			orDefault(p.Name, "Unnamed"), p.ID, displayName(p.Client, "No Client"),
			budget, orDefault(p.DueDate, "No due date")))
	}
	return textResult("%s", strings.Join(out, "\n"))
}

func (h *Handler) getProjectDetails(ctx context.Context, req *mcp.CallToolRequest, args getProjectDetailsArgs) (*mcp.CallToolResult, any, error) {
	q := url.Values{}
	q.Set("include", "client")

	var resp struct {
		Data ninja.Project `json:"data"`
	}
	if err := h.api.Get(ctx, "/projects/"+args.ProjectID, q, &resp); err != nil {
		return errorResult("Error: %v", err)
	}
	p := resp.Data
	if p.ID == "" {
		return textResult("Project %s not found.", args.ProjectID)
	}

	var budgetStatus string
	if p.BudgetedHours > 0 {
		percentUsed := p.CurrentHours / p.BudgetedHours * 100
		budgetStatus = fmt.Sprintf("%.1f/%.1fh (%.0f%% used)", p.CurrentHours, p.BudgetedHours, percentUsed)
	} else {
		budgetStatus = fmt.Sprintf("%.1fh logged (no budget set)", p.CurrentHours)
	}

	notes := p.PublicNotes
	if notes == "" {
		notes = p.PrivateNotes
	}
	return textResult("Project: %s\n- ID: %s\n- Client: %s\n- Hours: %s\n- Task Rate: $%s/hr\n- Due Date: %s\n- Notes: %s",
		orDefault(p.Name, "Unnamed"), args.ProjectID, displayName(p.Client, "No Client"),
		budgetStatus, money(p.TaskRate), orDefault(p.DueDate, "No due date"),
		truncate(orDefault(notes, "None"), 100))
}

func (h *Handler) createProject(ctx context.Context, req *mcp.CallToolRequest, args createProjectArgs) (*mcp.CallToolResult, any, error) {
	if args.ClientID == "" || args.Name == "" {
		return errorResult("Error: client_id and name are required.")
	}

	payload := map[string]any{
		"client_id":      args.ClientID,
		"name":           args.Name,
		"budgeted_hours": args.BudgetedHours,
		"task_rate":      args.TaskRate,
		"public_notes":   args.Notes,
	}
	if args.DueDate != "" {
		payload["due_date"] = args.DueDate
	}

	var resp struct {
		Data ninja.Project `json:"data"`
	}
	if err := h.api.Post(ctx, "/projects", payload, &resp); err != nil {
		return errorResult("Request failed: %v", err)
	}
	return textResult("Success! Created project %q (ID: %s) for client %s.", args.Name, resp.Data.ID, args.ClientID)
}

func (h *Handler) updateProject(ctx context.Context, req *mcp.CallToolRequest, args updateProjectArgs) (*mcp.CallToolResult, any, error) {
	payload := map[string]any{}
	if args.Name != nil {
		payload["name"] = *args.Name
	}
	if args.BudgetedHours != nil {
		payload["budgeted_hours"] = *args.BudgetedHours
	}
	if args.TaskRate != nil {
		payload["task_rate"] = *args.TaskRate
	}
	if args.DueDate != nil {
		payload["due_date"] = *args.DueDate
	}
	if args.Notes != nil {
		payload["public_notes"] = *args.Notes
	}
	if len(payload) == 0 {
		return errorResult("No fields provided to update.")
	}

	if err := h.api.Put(ctx, "/projects/"+args.ProjectID, payload, nil); err != nil {
		return errorResult("Request failed: %v", err)
	}
	return textResult("Successfully updated project %s.", args.ProjectID)
}

func (h *Handler) getProjectSummary(ctx context.Context, req *mcp.CallToolRequest, args getProjectSummaryArgs) (*mcp.CallToolResult, any, error) {
	q := url.Values{}
	q.Set("include", "client")

	var projResp struct {
		Data ninja.Project `json:"data"`
	}
	if err := h.api.Get(ctx, "/projects/"+args.ProjectID, q, &projResp); err != nil {
		return errorResult("Error: %v", err)
	}
	p := projResp.Data
	if p.ID == "" {
		return textResult("Project %s not found.", args.ProjectID)
	}

	tq := listQuery("active", 100, "")
	tq.Set("project_id", args.ProjectID)
	var tasksResp struct {
		Data []ninja.Task `json:"data"`
	}
	if err := h.api.Get(ctx, "/tasks", tq, &tasksResp); err != nil {
		return errorResult("Error: %v", err)
	}

	now := h.now().Unix()
	var totalHours float64
	var runningTasks int
	var breakdown []string

	for _, t := range tasksResp.Data {
		desc := truncate(orDefault(t.Description, "No description"), 40)
		rate := t.Rate
		if rate == 0 {
			rate = p.TaskRate
		}

		log, err := timelog.Parse(t.TimeLog)
		if err != nil {
			breakdown = append(breakdown, fmt.Sprintf("  - %s: invalid time log", desc))
			continue
		}

		taskHours := timelog.Hours(log.TotalSeconds(now))
		totalHours += taskHours

		status := ""
		if log.Running() {
			runningTasks++
			status = " [RUNNING]"
		}
		breakdown = append(breakdown, fmt.Sprintf("  - %s%s: %.2fh ($%.2f)", desc, status, taskHours, taskHours*rate))
	}

	totalBillable := totalHours * p.TaskRate
	var budgetStatus string
	if p.BudgetedHours > 0 {
		percentUsed := totalHours / p.BudgetedHours * 100
		remaining := p.BudgetedHours - totalHours
		budgetStatus = fmt.Sprintf("%.2f/%.0fh (%.0f%% used, %.2fh remaining)", totalHours, p.BudgetedHours, percentUsed, remaining)
	} else {
		budgetStatus = fmt.Sprintf("%.2fh logged (no budget set)", totalHours)
	}

	out := []string{
		fmt.Sprintf("=== PROJECT SUMMARY: %s ===", orDefault(p.Name, "Unnamed")),
		"",
		fmt.Sprintf("Client: %s", displayName(p.Client, "No Client")),
		fmt.Sprintf("Task Rate: $%s/hr", money(p.TaskRate)),
		"",
		"HOURS",
		"  " + budgetStatus,
		"",
		"BILLABLE",
		fmt.Sprintf("  Total: $%.2f", totalBillable),
		"",
		fmt.Sprintf("TASKS (%d total, %d running)", len(tasksResp.Data), runningTasks),
	}

	if len(breakdown) > 0 {
		if len(breakdown) > 15 {
			out = append(out, breakdown[:15]...)
			out = append(out, fmt.Sprintf("  ... and %d more tasks", len(breakdown)-15))
		} else {
			out = append(out, breakdown...)
		}
	} else {
		out = append(out, "  No tasks yet")
	}
	return textResult("%s", strings.Join(out, "\n"))
}
