package db

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/chandirag/cli-task-manager/pkg/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Init(context.Background()); err != nil {
		t.Fatalf("Failed to init database: %v", err)
	}
	return db
}

func date(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse(models.DateFormat, value)
	if err != nil {
		t.Fatalf("Bad test date %s: %v", value, err)
	}
	return d
}

func TestTaskCRUD(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// 1. Create
	task := models.NewTask("Submit report", models.PriorityHigh, "Work", date(t, "2025-03-10"))
	if err := db.CreateTask(ctx, task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	if len(task.ID) != 36 {
		t.Errorf("Expected ID length 36, got %d (%s)", len(task.ID), task.ID)
	}
	if !strings.Contains(task.ID, "-") {
		t.Errorf("Expected ID to contain dashes, got %s", task.ID)
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Errorf("Expected CreatedAt and UpdatedAt to be set")
	}
	if task.UpdatedAt.Before(task.CreatedAt) {
		t.Errorf("Expected UpdatedAt >= CreatedAt")
	}
	if task.IsCompleted {
		t.Errorf("Expected new task to start open")
	}

	// 2. Get
	fetched, err := db.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	if fetched == nil {
		t.Fatalf("Task not found")
	}
	if fetched.Name != task.Name {
		t.Errorf("Expected name %s, got %s", task.Name, fetched.Name)
	}
	if fetched.Priority != models.PriorityHigh {
		t.Errorf("Expected priority High, got %s", fetched.Priority)
	}
	if !fetched.DueDate.Equal(date(t, "2025-03-10")) {
		t.Errorf("Expected due date 2025-03-10, got %s", fetched.DueDate)
	}

	// 3. Get with unknown id is a normal absence, not an error
	missing, err := db.GetTask(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("Failed to get missing task: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for missing task, got %v", missing)
	}

	// 4. Full update
	task.Name = "Submit quarterly report"
	task.Priority = models.PriorityMedium
	if err := db.UpdateTask(ctx, task); err != nil {
		t.Fatalf("Failed to update task: %v", err)
	}

	fetched, err = db.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	if fetched.Name != "Submit quarterly report" {
		t.Errorf("Expected updated name, got %s", fetched.Name)
	}
	if fetched.Priority != models.PriorityMedium {
		t.Errorf("Expected priority Medium, got %s", fetched.Priority)
	}

	// 5. Delete
	removed, err := db.DeleteTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to delete task: %v", err)
	}
	if !removed {
		t.Errorf("Expected delete to report a removed row")
	}

	fetched, err = db.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to get task after deletion: %v", err)
	}
	if fetched != nil {
		t.Errorf("Expected task to be deleted, but it still exists")
	}
}

func TestUniqueIDs(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 25; i++ {
		task := models.NewTask("Task", models.PriorityLow, "Misc", date(t, "2025-06-01"))
		if err := db.CreateTask(ctx, task); err != nil {
			t.Fatalf("Failed to create task %d: %v", i, err)
		}
		if seen[task.ID] {
			t.Fatalf("Duplicate id generated: %s", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestPartialUpdate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	task := models.NewTask("Buy milk", models.PriorityLow, "Errands", date(t, "2025-03-10"))
	if err := db.CreateTask(ctx, task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	// Patch only the priority
	existing, err := db.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	high := models.PriorityHigh
	updated := models.ApplyPatch(*existing, models.TaskPatch{Priority: &high})
	if err := db.UpdateTask(ctx, &updated); err != nil {
		t.Fatalf("Failed to update task: %v", err)
	}

	fetched, err := db.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	if fetched.Priority != models.PriorityHigh {
		t.Errorf("Expected priority High, got %s", fetched.Priority)
	}
	if fetched.Name != "Buy milk" {
		t.Errorf("Expected name unchanged, got %s", fetched.Name)
	}
	if fetched.Category != "Errands" {
		t.Errorf("Expected category unchanged, got %s", fetched.Category)
	}
	if !fetched.DueDate.Equal(date(t, "2025-03-10")) {
		t.Errorf("Expected due date unchanged, got %s", fetched.DueDate)
	}
	if fetched.IsCompleted {
		t.Errorf("Expected completion state unchanged")
	}
	if fetched.UpdatedAt.Before(fetched.CreatedAt) {
		t.Errorf("Expected UpdatedAt >= CreatedAt after update")
	}
}

func TestCompleteTaskIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	task := models.NewTask("Pay rent", models.PriorityHigh, "Bills", date(t, "2025-04-01"))
	if err := db.CreateTask(ctx, task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	// 1. First completion
	done, err := db.CompleteTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to complete task: %v", err)
	}
	if done == nil {
		t.Fatalf("Expected completed task, got nil")
	}
	if !done.IsCompleted {
		t.Errorf("Expected IsCompleted true")
	}

	// 2. Completing again is a no-op success
	done, err = db.CompleteTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Expected repeat completion to succeed, got %v", err)
	}
	if done == nil || !done.IsCompleted {
		t.Errorf("Expected task to remain completed")
	}

	// 3. Completing an unknown id is a normal absence
	done, err = db.CompleteTask(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("Failed to complete missing task: %v", err)
	}
	if done != nil {
		t.Errorf("Expected nil for missing task, got %v", done)
	}
}

func TestDeleteTaskRepeatIsFalse(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	task := models.NewTask("Water plants", models.PriorityLow, "Home", date(t, "2025-05-01"))
	if err := db.CreateTask(ctx, task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	removed, err := db.DeleteTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to delete task: %v", err)
	}
	if !removed {
		t.Errorf("Expected first delete to remove the task")
	}

	removed, err = db.DeleteTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Expected repeat delete to be error-free, got %v", err)
	}
	if removed {
		t.Errorf("Expected repeat delete to report false")
	}
}

func TestFilters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	t1 := models.NewTask("Submit report", models.PriorityHigh, "Work", date(t, "2025-03-10"))
	t2 := models.NewTask("Buy milk", models.PriorityLow, "Errands", date(t, "2025-03-11"))
	t3 := models.NewTask("Plan sprint", models.PriorityHigh, "work", date(t, "2025-03-12"))
	for _, task := range []*models.Task{t1, t2, t3} {
		if err := db.CreateTask(ctx, task); err != nil {
			t.Fatalf("Failed to create task: %v", err)
		}
	}
	if _, err := db.CompleteTask(ctx, t2.ID); err != nil {
		t.Fatalf("Failed to complete task: %v", err)
	}

	// 1. By priority
	high, err := db.ListTasksByPriority(ctx, models.PriorityHigh)
	if err != nil {
		t.Fatalf("Failed to filter by priority: %v", err)
	}
	if len(high) != 2 {
		t.Errorf("Expected 2 High tasks, got %d", len(high))
	}

	// 2. By category, case-insensitive
	work, err := db.ListTasksByCategory(ctx, "WORK")
	if err != nil {
		t.Fatalf("Failed to filter by category: %v", err)
	}
	if len(work) != 2 {
		t.Errorf("Expected 2 Work tasks regardless of case, got %d", len(work))
	}

	// 3. By completion
	completed, err := db.ListTasksByCompletion(ctx, true)
	if err != nil {
		t.Fatalf("Failed to filter by completion: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != t2.ID {
		t.Errorf("Expected only the completed task, got %d tasks", len(completed))
	}

	open, err := db.ListTasksByCompletion(ctx, false)
	if err != nil {
		t.Fatalf("Failed to filter by completion: %v", err)
	}
	if len(open) != 2 {
		t.Errorf("Expected 2 open tasks, got %d", len(open))
	}

	// 4. No matches is an empty result, not an error
	none, err := db.ListTasksByCategory(ctx, "Garden")
	if err != nil {
		t.Fatalf("Failed to filter by unknown category: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no tasks, got %d", len(none))
	}
}

func TestDueDateRangeBoundaries(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	atStart := models.NewTask("At start", models.PriorityLow, "Misc", date(t, "2025-03-10"))
	inside := models.NewTask("Inside", models.PriorityLow, "Misc", date(t, "2025-03-12"))
	atEnd := models.NewTask("At end", models.PriorityLow, "Misc", date(t, "2025-03-17"))
	before := models.NewTask("Before", models.PriorityLow, "Misc", date(t, "2025-03-09"))
	for _, task := range []*models.Task{atStart, inside, atEnd, before} {
		if err := db.CreateTask(ctx, task); err != nil {
			t.Fatalf("Failed to create task: %v", err)
		}
	}

	tasks, err := db.ListTasksByDueDateRange(ctx, date(t, "2025-03-10"), date(t, "2025-03-17"))
	if err != nil {
		t.Fatalf("Failed to query range: %v", err)
	}

	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks in [start, end), got %d", len(tasks))
	}
	if tasks[0].ID != atStart.ID {
		t.Errorf("Expected task due at start to be included first, got %s", tasks[0].Name)
	}
	if tasks[1].ID != inside.ID {
		t.Errorf("Expected inside task second, got %s", tasks[1].Name)
	}
}

func TestSortByDueDateRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// Created out of due-date order on purpose
	for _, due := range []string{"2025-03-14", "2025-03-10", "2025-03-12"} {
		task := models.NewTask("Due "+due, models.PriorityMedium, "Misc", date(t, due))
		if err := db.CreateTask(ctx, task); err != nil {
			t.Fatalf("Failed to create task: %v", err)
		}
	}

	asc, err := db.ListTasksSortedByDueDate(ctx, true)
	if err != nil {
		t.Fatalf("Failed to sort ascending: %v", err)
	}
	desc, err := db.ListTasksSortedByDueDate(ctx, false)
	if err != nil {
		t.Fatalf("Failed to sort descending: %v", err)
	}

	if len(asc) != 3 || len(desc) != 3 {
		t.Fatalf("Expected 3 tasks in both orders, got %d and %d", len(asc), len(desc))
	}

	for i := range asc {
		if asc[i].ID != desc[len(desc)-1-i].ID {
			t.Errorf("Expected descending order to be the reverse of ascending at index %d", i)
		}
	}

	for i := 1; i < len(asc); i++ {
		if asc[i].DueDate.Before(asc[i-1].DueDate) {
			t.Errorf("Ascending order violated at index %d", i)
		}
	}
}

func TestListCategoriesDistinct(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, category := range []string{"Work", "Errands", "Work", "Bills", "Errands"} {
		task := models.NewTask("Task in "+category, models.PriorityLow, category, date(t, "2025-06-01"))
		if err := db.CreateTask(ctx, task); err != nil {
			t.Fatalf("Failed to create task: %v", err)
		}
	}

	categories, err := db.ListCategories(ctx)
	if err != nil {
		t.Fatalf("Failed to list categories: %v", err)
	}

	want := []string{"Bills", "Errands", "Work"}
	if len(categories) != len(want) {
		t.Fatalf("Expected %d distinct categories, got %d (%v)", len(want), len(categories), categories)
	}
	for i, c := range want {
		if categories[i] != c {
			t.Errorf("Expected category %s at index %d, got %s", c, i, categories[i])
		}
	}
}

func TestEndToEndScenario(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// 1. Add
	task := models.NewTask("Submit report", models.PriorityHigh, "Work", date(t, "2025-03-10"))
	if err := db.CreateTask(ctx, task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	// 2. Listed
	all, err := db.ListTasks(ctx)
	if err != nil {
		t.Fatalf("Failed to list tasks: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(all))
	}

	// 3. Filter by category finds the same task
	work, err := db.ListTasksByCategory(ctx, "Work")
	if err != nil {
		t.Fatalf("Failed to filter by category: %v", err)
	}
	if len(work) != 1 || work[0].ID != task.ID {
		t.Fatalf("Expected the Work filter to return the task")
	}

	// 4. Complete, then completion filters split correctly
	if _, err := db.CompleteTask(ctx, task.ID); err != nil {
		t.Fatalf("Failed to complete task: %v", err)
	}

	completed, err := db.ListTasksByCompletion(ctx, true)
	if err != nil {
		t.Fatalf("Failed to filter completed: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != task.ID {
		t.Errorf("Expected completed filter to return the task")
	}

	open, err := db.ListTasksByCompletion(ctx, false)
	if err != nil {
		t.Fatalf("Failed to filter open: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("Expected no open tasks, got %d", len(open))
	}
}
