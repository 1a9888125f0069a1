package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/chandirag/cli-task-manager/internal/db"
	"github.com/chandirag/cli-task-manager/internal/query"
	"github.com/chandirag/cli-task-manager/internal/search"
	"github.com/chandirag/cli-task-manager/internal/validate"
	"github.com/chandirag/cli-task-manager/pkg/models"
)

// NewServer creates a new MCP server exposing the task operations over
// stdio. Tool-level failures come back as tool error results, not
// transport errors.
func NewServer(database *db.DB) *server.MCPServer {
	s := server.NewMCPServer("Taskman", "0.1.0")

	s.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Create a new task."),
		mcp.WithString("name", mcp.Description("Task name"), mcp.Required()),
		mcp.WithString("priority", mcp.Description("Priority (Low|Medium|High)"), mcp.Required()),
		mcp.WithString("category", mcp.Description("Category label"), mcp.Required()),
		mcp.WithString("due_date", mcp.Description("Due date (YYYY-MM-DD, not in the past)"), mcp.Required()),
	), addTaskHandler(database))

	s.AddTool(mcp.NewTool("get_task",
		mcp.WithDescription("Get a single task by id."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), getTaskHandler(database))

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks with an optional filter or sort. At most one of priority, category, completed, due, or sort applies."),
		mcp.WithString("priority", mcp.Description("Filter by priority (Low|Medium|High)")),
		mcp.WithString("category", mcp.Description("Filter by category (case-insensitive)")),
		mcp.WithBoolean("completed", mcp.Description("Filter by completion state")),
		mcp.WithString("due", mcp.Description("Filter by due period (today|week|month)")),
		mcp.WithString("sort", mcp.Description("Sort by due date (asc|desc)")),
	), listTasksHandler(database))

	s.AddTool(mcp.NewTool("update_task",
		mcp.WithDescription("Partially update a task: only supplied fields change."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("name", mcp.Description("New name")),
		mcp.WithString("priority", mcp.Description("New priority (Low|Medium|High)")),
		mcp.WithString("category", mcp.Description("New category")),
		mcp.WithString("due_date", mcp.Description("New due date (YYYY-MM-DD, not in the past)")),
	), updateTaskHandler(database))

	s.AddTool(mcp.NewTool("complete_task",
		mcp.WithDescription("Mark a task completed. Completing an already-completed task succeeds."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), completeTaskHandler(database))

	s.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task by id."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), deleteTaskHandler(database))

	s.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the distinct category values across all tasks."),
	), listCategoriesHandler(database))

	s.AddTool(mcp.NewTool("search_tasks",
		mcp.WithDescription("Fuzzy-search tasks by name, category, and priority."),
		mcp.WithString("query", mcp.Description("Search text"), mcp.Required()),
	), searchTasksHandler(database))

	return s
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func addTaskHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := validate.Name(mcp.ParseString(request, "name", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		priority, err := validate.Priority(mcp.ParseString(request, "priority", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		category, err := validate.Category(mcp.ParseString(request, "category", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dueDate, err := validate.DueDate(mcp.ParseString(request, "due_date", ""), time.Now())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		t := models.NewTask(name, priority, category, dueDate)
		if err := database.CreateTask(ctx, t); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return taskResult(t)
	}
}

func getTaskHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		t, err := database.GetTask(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if t == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Task with id '%s' not found", id)), nil
		}

		return taskResult(t)
	}
}

func listTasksHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		engine := query.NewEngine(database)
		args, _ := request.Params.Arguments.(map[string]any)

		var tasks []*models.Task
		var err error
		switch {
		case stringArg(args, "priority") != "":
			var p models.Priority
			if p, err = validate.Priority(stringArg(args, "priority")); err == nil {
				tasks, err = engine.ByPriority(ctx, p)
			}
		case stringArg(args, "category") != "":
			tasks, err = engine.ByCategory(ctx, stringArg(args, "category"))
		case stringArg(args, "due") != "":
			var p query.Period
			if p, err = query.ParsePeriod(stringArg(args, "due")); err == nil {
				tasks, err = engine.ByPeriod(ctx, p)
			}
		case stringArg(args, "sort") != "":
			tasks, err = engine.SortedByDueDate(ctx, stringArg(args, "sort") != "desc")
		default:
			if completed, ok := args["completed"].(bool); ok {
				tasks, err = engine.ByCompletion(ctx, completed)
			} else {
				tasks, err = engine.All(ctx)
			}
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return tasksResult(tasks)
	}
}

func updateTaskHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		existing, err := database.GetTask(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if existing == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Task with id '%s' not found", id)), nil
		}

		args, _ := request.Params.Arguments.(map[string]any)
		var patch models.TaskPatch
		if raw, ok := args["name"].(string); ok {
			name, err := validate.Name(raw)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			patch.Name = &name
		}
		if raw, ok := args["priority"].(string); ok {
			priority, err := validate.Priority(raw)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			patch.Priority = &priority
		}
		if raw, ok := args["category"].(string); ok {
			category, err := validate.Category(raw)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			patch.Category = &category
		}
		if raw, ok := args["due_date"].(string); ok {
			dueDate, err := validate.DueDate(raw, time.Now())
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			patch.DueDate = &dueDate
		}

		updated := models.ApplyPatch(*existing, patch)
		if err := database.UpdateTask(ctx, &updated); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return taskResult(&updated)
	}
}

func completeTaskHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		t, err := database.CompleteTask(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if t == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Task with id '%s' not found", id)), nil
		}

		return taskResult(t)
	}
}

func deleteTaskHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		removed, err := database.DeleteTask(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !removed {
			return mcp.NewToolResultText(fmt.Sprintf("No task with id '%s'; nothing removed", id)), nil
		}

		return mcp.NewToolResultText("Task deleted successfully"), nil
	}
}

func listCategoriesHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		categories, err := database.ListCategories(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(map[string]interface{}{"categories": categories})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func searchTasksHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q := mcp.ParseString(request, "query", "")

		tasks, err := database.ListTasks(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		results := search.NewIndex(tasks).Search(q)
		matched := make([]*models.Task, 0, len(results))
		for _, r := range results {
			matched = append(matched, r.Task)
		}

		return tasksResult(matched)
	}
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func taskResult(t *models.Task) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func tasksResult(tasks []*models.Task) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(map[string]interface{}{"tasks": tasks})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
