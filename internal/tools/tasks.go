package tools

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/averden/invoice-ninja-mcp/internal/ninja"
	"github.com/averden/invoice-ninja-mcp/internal/timelog"
)

type getTasksArgs struct {
	ClientID        string `json:"client_id,omitempty" jsonschema:"Filter by client hashed ID"`
	ProjectID       string `json:"project_id,omitempty" jsonschema:"Filter by project hashed ID"`
	IncludeArchived bool   `json:"include_archived,omitempty" jsonschema:"Include archived and deleted tasks (default false)"`
	Limit           int    `json:"limit,omitempty" jsonschema:"Maximum number of tasks to return (default 20)"`
}

type getTaskDetailsArgs struct {
	TaskID string `json:"task_id" jsonschema:"Task hashed ID"`
}

type createTaskArgs struct {
	Description string  `json:"description" jsonschema:"What the task is about"`
	ClientID    string  `json:"client_id,omitempty" jsonschema:"Associate with a client"`
	ProjectID   string  `json:"project_id,omitempty" jsonschema:"Associate with a project"`
	Rate        float64 `json:"rate,omitempty" jsonschema:"Hourly rate override"`
}

type startTaskArgs struct {
	TaskID string `json:"task_id" jsonschema:"Task hashed ID"`
}

type stopTaskArgs struct {
	TaskID string `json:"task_id" jsonschema:"Task hashed ID"`
}

type logTimeArgs struct {
	TaskID      string  `json:"task_id" jsonschema:"Task to log time to"`
	Hours       float64 `json:"hours" jsonschema:"Number of hours to log"`
	Description string  `json:"description,omitempty" jsonschema:"Optional note about what was done"`
}

type getBillableHoursArgs struct {
	ClientID  string `json:"client_id,omitempty" jsonschema:"Filter by client hashed ID"`
	ProjectID string `json:"project_id,omitempty" jsonschema:"Filter by project hashed ID"`
}

func registerTaskTools(s *mcp.Server, h *Handler) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_tasks",
		Description: "Fetch tasks with optional client/project filters, showing tracked hours and running timers.",
	}, h.getTasks)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_task_details",
		Description: "Get detailed information about a specific task including time logs.",
	}, h.getTaskDetails)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "create_task",
		Description: "Create a new task.",
	}, h.createTask)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "start_task",
		Description: "Start the timer on a task. Adds a new time entry with the current timestamp.",
	}, h.startTask)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "stop_task",
		Description: "Stop the timer on a running task. Completes the current time entry.",
	}, h.stopTask)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "log_time",
		Description: "Manually log time to a task as a completed entry ending now.",
	}, h.logTime)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_billable_hours",
		Description: "Summarise unbilled hours across tasks, optionally filtered by client or project. Running timers are flagged but not counted.",
	}, h.getBillableHours)
}

// fetchTask loads a single task record.
func (h *Handler) fetchTask(ctx context.Context, taskID string, include string) (ninja.Task, error) {
	q := url.Values{}
	if include != "" {
		q.Set("include", include)
	}
	var resp struct {
		Data ninja.Task `json:"data"`
	}
	if err := h.api.Get(ctx, "/tasks/"+taskID, q, &resp); err != nil {
		return ninja.Task{}, err
	}
	return resp.Data, nil
}

// putTimeLog writes an updated time log back to the task. The check-then-
// append sequence is not atomic upstream; two concurrent starts can both
// observe an idle task. Best effort only, the API has no compare-and-swap.
func (h *Handler) putTimeLog(ctx context.Context, taskID string, log timelog.Log, extra map[string]any) error {
	encoded, err := log.Encode()
	if err != nil {
		return err
	}
	payload := map[string]any{"time_log": encoded}
	for k, v := range extra {
		payload[k] = v
	}
	return h.api.Put(ctx, "/tasks/"+taskID, payload, nil)
}

func (h *Handler) getTasks(ctx context.Context, req *mcp.CallToolRequest, args getTasksArgs) (*mcp.CallToolResult, any, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}

	q := listQuery(statusFilter(args.IncludeArchived), limit, "client,project")
	if args.ClientID != "" {
		q.Set("client_id", args.ClientID)
	}
	if args.ProjectID != "" {
		q.Set("project_id", args.ProjectID)
	}

	var resp struct {
		Data []ninja.Task `json:"data"`
	}
	if err := h.api.Get(ctx, "/tasks", q, &resp); err != nil {
		return errorResult("Error fetching tasks: %v", err)
	}
	if len(resp.Data) == 0 {
		return textResult("No tasks found.")
	}

	now := h.now().Unix()
	out := []string{fmt.Sprintf("--- Found %d Tasks ---", len(resp.Data))}
	for _, t := range resp.Data {
		desc := truncate(orDefault(t.Description, "No description"), 50)
		client := displayName(t.Client, "No Client")
		project := "No Project"
		if t.Project != nil && t.Project.Name != "" {
			project = t.Project.Name
		}

		var hours float64
		statusIcon := "stopped"
		if log, err := timelog.Parse(t.TimeLog); err == nil {
			hours = timelog.Hours(log.TotalSeconds(now))
			if log.Running() {
				statusIcon = "RUNNING"
			}
		}
		out = append(out, fmt.Sprintf("- [%s] %s (ID: %s) | %s / %s | %.2fh",
			statusIcon, desc, t.ID, client, project, hours))
	}
	return textResult("%s", strings.Join(out, "\n"))
}

func (h *Handler) getTaskDetails(ctx context.Context, req *mcp.CallToolRequest, args getTaskDetailsArgs) (*mcp.CallToolResult, any, error) {
	t, err := h.fetchTask(ctx, args.TaskID, "client,project")
	if err != nil {
		return errorResult("Error: %v", err)
	}
	if t.ID == "" {
		return textResult("Task %s not found.", args.TaskID)
	}

	project := "No Project"
	if t.Project != nil && t.Project.Name != "" {
		project = t.Project.Name
	}

	log, err := timelog.Parse(t.TimeLog)
	if err != nil {
		return errorResult("Task %s has a malformed time log: %v", args.TaskID, err)
	}

	now := h.now().Unix()
	status := "Stopped"
	if log.Running() {
		status = "RUNNING"
	}
	hours := timelog.Hours(log.TotalSeconds(now))
	billable := hours * t.Rate

	out := fmt.Sprintf("Task: %s\n- ID: %s\n- Client: %s\n- Project: %s\n- Status: %s\n- Total Time: %.2fh\n- Rate: $%s/hr\n- Billable Amount: $%.2f",
		orDefault(t.Description, "No description"), args.TaskID,
		displayName(t.Client, "No Client"), project, status, hours, money(t.Rate), billable)

	if len(log) > 0 {
		var entries []string
		for i, iv := range log {
			seconds := iv.Seconds()
			if iv.Open() {
				seconds = now - iv.Start
			}
			entries = append(entries, fmt.Sprintf("  Entry %d: %s", i+1, timelog.FormatDuration(seconds)))
		}
		out += "\n- Time Entries:\n" + strings.Join(entries, "\n")
	}
	return textResult("%s", out)
}

func (h *Handler) createTask(ctx context.Context, req *mcp.CallToolRequest, args createTaskArgs) (*mcp.CallToolResult, any, error) {
	if args.Description == "" {
		return errorResult("Error: description is required.")
	}

	payload := map[string]any{
		"description": args.Description,
		"time_log":    "[]",
	}
	if args.ClientID != "" {
		payload["client_id"] = args.ClientID
	}
	if args.ProjectID != "" {
		payload["project_id"] = args.ProjectID
	}
	if args.Rate != 0 {
		payload["rate"] = args.Rate
	}

	var resp struct {
		Data ninja.Task `json:"data"`
	}
	if err := h.api.Post(ctx, "/tasks", payload, &resp); err != nil {
		return errorResult("Request failed: %v", err)
	}
	return textResult("Success! Created task %q (ID: %s)", args.Description, resp.Data.ID)
}

func (h *Handler) startTask(ctx context.Context, req *mcp.CallToolRequest, args startTaskArgs) (*mcp.CallToolResult, any, error) {
	t, err := h.fetchTask(ctx, args.TaskID, "")
	if err != nil {
		return errorResult("Error: %v", err)
	}

	log, err := timelog.Parse(t.TimeLog)
	if err != nil {
		return errorResult("Task %s has a malformed time log: %v", args.TaskID, err)
	}

	updated, err := log.Start(h.now().Unix())
	if errors.Is(err, timelog.ErrRunning) {
		return errorResult("Task %s is already running.", args.TaskID)
	}
	if err != nil {
		return errorResult("Error: %v", err)
	}

	if err := h.putTimeLog(ctx, args.TaskID, updated, nil); err != nil {
		return errorResult("Failed: %v", err)
	}
	return textResult("Started timer on task %s.", args.TaskID)
}

func (h *Handler) stopTask(ctx context.Context, req *mcp.CallToolRequest, args stopTaskArgs) (*mcp.CallToolResult, any, error) {
	t, err := h.fetchTask(ctx, args.TaskID, "")
	if err != nil {
		return errorResult("Error: %v", err)
	}

	log, err := timelog.Parse(t.TimeLog)
	if err != nil {
		return errorResult("Task %s has a malformed time log: %v", args.TaskID, err)
	}

	updated, session, err := log.Stop(h.now().Unix())
	if errors.Is(err, timelog.ErrNotRunning) {
		return errorResult("Task %s is not currently running.", args.TaskID)
	}
	if err != nil {
		return errorResult("Error: %v", err)
	}

	if err := h.putTimeLog(ctx, args.TaskID, updated, nil); err != nil {
		return errorResult("Failed: %v", err)
	}
	return textResult("Stopped timer on task %s. Session duration: %.2fh", args.TaskID, timelog.Hours(session))
}

func (h *Handler) logTime(ctx context.Context, req *mcp.CallToolRequest, args logTimeArgs) (*mcp.CallToolResult, any, error) {
	if args.Hours <= 0 {
		return errorResult("Error: hours must be positive.")
	}

	t, err := h.fetchTask(ctx, args.TaskID, "")
	if err != nil {
		return errorResult("Error: %v", err)
	}

	log, err := timelog.Parse(t.TimeLog)
	if err != nil {
		return errorResult("Task %s has a malformed time log: %v", args.TaskID, err)
	}

	// Record a closed entry for the given hours, ending now.
	end := h.now().Unix()
	start := end - int64(args.Hours*3600)
	updated, err := log.Append(start, end)
	if err != nil {
		return errorResult("Error: %v", err)
	}

	var extra map[string]any
	if args.Description != "" {
		extra = map[string]any{
			"description": strings.TrimSpace(fmt.Sprintf("%s\n[%gh] %s", t.Description, args.Hours, args.Description)),
		}
	}

	if err := h.putTimeLog(ctx, args.TaskID, updated, extra); err != nil {
		return errorResult("Failed: %v", err)
	}
	return textResult("Logged %gh to task %s.", args.Hours, args.TaskID)
}

func (h *Handler) getBillableHours(ctx context.Context, req *mcp.CallToolRequest, args getBillableHoursArgs) (*mcp.CallToolResult, any, error) {
	q := listQuery("active", 100, "client,project")
	if args.ClientID != "" {
		q.Set("client_id", args.ClientID)
	}
	if args.ProjectID != "" {
		q.Set("project_id", args.ProjectID)
	}

	var resp struct {
		Data []ninja.Task `json:"data"`
	}
	if err := h.api.Get(ctx, "/tasks", q, &resp); err != nil {
		return errorResult("Error: %v", err)
	}
	if len(resp.Data) == 0 {
		return textResult("No tasks found.")
	}

	var totalHours, totalBillable float64
	var running int
	var summaries []string

	for _, t := range resp.Data {
		// Skip tasks already attached to an invoice.
		if t.InvoiceID != "" {
			continue
		}

		log, err := timelog.Parse(t.TimeLog)
		if err != nil {
			continue
		}
		if log.Running() {
			running++
		}

		// Closed intervals only; a running timer contributes nothing until
		// it is stopped.
		taskHours := timelog.Hours(log.ClosedSeconds())
		if taskHours <= 0 {
			continue
		}
		totalHours += taskHours
		billable := taskHours * t.Rate
		totalBillable += billable

		desc := truncate(orDefault(t.Description, "No description"), 30)
		flag := ""
		if log.Running() {
			flag = " [running]"
		}
		summaries = append(summaries, fmt.Sprintf("- %s%s: %.2fh ($%.2f)", desc, flag, taskHours, billable))
	}

	out := []string{
		"--- Unbilled Hours Summary ---",
		fmt.Sprintf("Total Hours: %.2fh", totalHours),
		fmt.Sprintf("Total Billable: $%.2f", totalBillable),
	}
	if running > 0 {
		out = append(out, fmt.Sprintf("Running Timers: %d (not counted until stopped)", running))
	}
	out = append(out, "", "Tasks:")

	if len(summaries) > 10 {
		out = append(out, summaries[:10]...)
		out = append(out, fmt.Sprintf("... and %d more tasks", len(summaries)-10))
	} else {
		out = append(out, summaries...)
	}
	return textResult("%s", strings.Join(out, "\n"))
}
