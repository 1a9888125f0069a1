package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/chandirag/cli-task-manager/internal/db"
	"github.com/chandirag/cli-task-manager/internal/mcp"
	"github.com/chandirag/cli-task-manager/internal/query"
	"github.com/chandirag/cli-task-manager/internal/ui"
	"github.com/chandirag/cli-task-manager/internal/validate"
	"github.com/chandirag/cli-task-manager/pkg/models"
)

var (
	dbPath       string
	snapshotPath string
)

func main() {
	flag.StringVar(&dbPath, "db-path", ".taskman/tasks.db", "Path to database file")
	flag.StringVar(&snapshotPath, "snapshot-path", ".taskman/snapshot.jsonl", "Path to snapshot file")
	flag.Parse()

	var command string
	var args []string

	if flag.NArg() == 0 {
		selected, err := ui.RunMenu()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running menu: %v\n", err)
			os.Exit(1)
		}
		if selected == "" {
			os.Exit(0)
		}
		command = selected
		args = []string{}
	} else {
		command = flag.Arg(0)
		args = flag.Args()[1:]
	}

	var err error
	switch command {
	case "init":
		err = runInit(args)
	case "add":
		err = runAdd(args)
	case "list":
		err = runList(args)
	case "update":
		err = runUpdate(args)
	case "complete":
		err = runComplete(args)
	case "remove":
		err = runRemove(args)
	case "categories":
		err = runCategories(args)
	case "search":
		err = runSearch(args)
	case "mcp":
		err = runMCP(args)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openDB opens and migrates the database, with snapshot export hooked
// onto every write.
func openDB(ctx context.Context) (*db.DB, error) {
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := database.Init(ctx); err != nil {
		database.Close()
		return nil, err
	}
	database.EnableAutoSnapshot(snapshotPath)
	return database, nil
}

func runInit(args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	taskmanDir := filepath.Join(targetDir, ".taskman")
	if err := os.MkdirAll(taskmanDir, 0755); err != nil {
		return fmt.Errorf("failed to create .taskman directory: %w", err)
	}
	fmt.Println("✓ Created .taskman/ directory")

	gitignorePath := filepath.Join(taskmanDir, ".gitignore")
	if err := os.WriteFile(gitignorePath, []byte("tasks.db*\n"), 0644); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}
	fmt.Println("✓ Created .taskman/.gitignore")

	// Default paths if not overridden by flags
	finalDbPath := dbPath
	if dbPath == ".taskman/tasks.db" {
		finalDbPath = filepath.Join(taskmanDir, "tasks.db")
	}

	finalSnapshotPath := snapshotPath
	if snapshotPath == ".taskman/snapshot.jsonl" {
		finalSnapshotPath = filepath.Join(taskmanDir, "snapshot.jsonl")
	}

	database, err := db.Open(finalDbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := context.Background()
	if err := database.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	fmt.Printf("✓ Initialized database at %s\n", finalDbPath)

	// Restore from an existing snapshot
	if _, err := os.Stat(finalSnapshotPath); err == nil {
		if err := database.ImportSnapshot(ctx, finalSnapshotPath); err != nil {
			return fmt.Errorf("failed to import snapshot: %w", err)
		}
		fmt.Printf("✓ Imported snapshot from %s\n", finalSnapshotPath)
	}

	fmt.Println("✓ Taskman initialized successfully")
	return nil
}

func runAdd(args []string) error {
	addFlags := flag.NewFlagSet("add", flag.ContinueOnError)
	name := addFlags.String("name", "", "Task name")
	priority := addFlags.String("priority", "Medium", "Priority (Low|Medium|High)")
	category := addFlags.String("category", "", "Category label")
	due := addFlags.String("due", "", "Due date (YYYY-MM-DD)")
	if err := addFlags.Parse(args); err != nil {
		return err
	}

	taskName, err := validate.Name(*name)
	if err != nil {
		return err
	}
	taskPriority, err := validate.Priority(*priority)
	if err != nil {
		return err
	}
	taskCategory, err := validate.Category(*category)
	if err != nil {
		return err
	}
	dueDate, err := validate.DueDate(*due, time.Now())
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	t := models.NewTask(taskName, taskPriority, taskCategory, dueDate)
	if err := database.CreateTask(ctx, t); err != nil {
		return err
	}

	fmt.Printf("✓ Added task %s (%s)\n", t.Name, t.ID)
	return nil
}

func runList(args []string) error {
	listFlags := flag.NewFlagSet("list", flag.ContinueOnError)
	priorityFilter := listFlags.String("priority", "", "Filter by priority (Low|Medium|High)")
	categoryFilter := listFlags.String("category", "", "Filter by category (case-insensitive)")
	completedFilter := listFlags.String("completed", "", "Filter by completion state (true|false)")
	dueFilter := listFlags.String("due", "", "Filter by due period (today|week|month)")
	sortOrder := listFlags.String("sort", "", "Sort by due date (asc|desc)")
	if err := listFlags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	database, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	engine := query.NewEngine(database)

	var tasks []*models.Task
	switch {
	case *priorityFilter != "":
		p, err := validate.Priority(*priorityFilter)
		if err != nil {
			return err
		}
		tasks, err = engine.ByPriority(ctx, p)
		if err != nil {
			return err
		}
	case *categoryFilter != "":
		tasks, err = engine.ByCategory(ctx, *categoryFilter)
		if err != nil {
			return err
		}
	case *dueFilter != "":
		p, err := query.ParsePeriod(*dueFilter)
		if err != nil {
			return err
		}
		tasks, err = engine.ByPeriod(ctx, p)
		if err != nil {
			return err
		}
	case *completedFilter != "":
		completed, err := strconv.ParseBool(*completedFilter)
		if err != nil {
			return fmt.Errorf("invalid -completed value %q: %w", *completedFilter, err)
		}
		tasks, err = engine.ByCompletion(ctx, completed)
		if err != nil {
			return err
		}
	case *sortOrder != "":
		tasks, err = engine.SortedByDueDate(ctx, *sortOrder != "desc")
		if err != nil {
			return err
		}
	default:
		tasks, err = engine.All(ctx)
		if err != nil {
			return err
		}
	}

	printTasks(tasks)
	return nil
}

func runUpdate(args []string) error {
	updateFlags := flag.NewFlagSet("update", flag.ContinueOnError)
	id := updateFlags.String("id", "", "Task id")
	name := updateFlags.String("name", "", "New name")
	priority := updateFlags.String("priority", "", "New priority (Low|Medium|High)")
	category := updateFlags.String("category", "", "New category")
	due := updateFlags.String("due", "", "New due date (YYYY-MM-DD)")
	if err := updateFlags.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("-id is required")
	}

	var patch models.TaskPatch
	if *name != "" {
		value, err := validate.Name(*name)
		if err != nil {
			return err
		}
		patch.Name = &value
	}
	if *priority != "" {
		value, err := validate.Priority(*priority)
		if err != nil {
			return err
		}
		patch.Priority = &value
	}
	if *category != "" {
		value, err := validate.Category(*category)
		if err != nil {
			return err
		}
		patch.Category = &value
	}
	if *due != "" {
		value, err := validate.DueDate(*due, time.Now())
		if err != nil {
			return err
		}
		patch.DueDate = &value
	}

	ctx := context.Background()
	database, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	existing, err := database.GetTask(ctx, *id)
	if err != nil {
		return err
	}
	if existing == nil {
		fmt.Printf("No task with id %s\n", *id)
		return nil
	}

	updated := models.ApplyPatch(*existing, patch)
	if err := database.UpdateTask(ctx, &updated); err != nil {
		return err
	}

	fmt.Printf("✓ Updated task %s\n", updated.Name)
	return nil
}

func runComplete(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: taskman complete <id>")
	}

	ctx := context.Background()
	database, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	t, err := database.CompleteTask(ctx, args[0])
	if err != nil {
		return err
	}
	if t == nil {
		fmt.Printf("No task with id %s\n", args[0])
		return nil
	}

	fmt.Printf("✓ Completed task %s\n", t.Name)
	return nil
}

func runRemove(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: taskman remove <id>")
	}

	ctx := context.Background()
	database, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	removed, err := database.DeleteTask(ctx, args[0])
	if err != nil {
		return err
	}
	if !removed {
		fmt.Printf("No task with id %s; nothing removed\n", args[0])
		return nil
	}

	fmt.Println("✓ Task removed")
	return nil
}

func runCategories(args []string) error {
	ctx := context.Background()
	database, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	categories, err := database.ListCategories(ctx)
	if err != nil {
		return err
	}

	for _, c := range categories {
		fmt.Println(c)
	}
	return nil
}

func runSearch(args []string) error {
	ctx := context.Background()
	database, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	tasks, err := database.ListTasks(ctx)
	if err != nil {
		return err
	}

	return ui.RunSearch(tasks)
}

func runMCP(args []string) error {
	ctx := context.Background()
	database, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	s := mcp.NewServer(database)
	return mcp.Serve(s)
}

func printTasks(tasks []*models.Task) {
	fmt.Printf("%-30s %-8s %-15s %-12s %-6s %-36s\n", "NAME", "PRIORITY", "CATEGORY", "DUE", "DONE", "ID")
	fmt.Println("--------------------------------------------------------------------------------------------------------------")
	for _, t := range tasks {
		done := ""
		if t.IsCompleted {
			done = "✓"
		}
		fmt.Printf("%-30s %-8s %-15s %-12s %-6s %-36s\n",
			t.Name, t.Priority, t.Category, t.DueDate.Format(models.DateFormat), done, t.ID)
	}
}
