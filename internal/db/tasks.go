package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chandirag/cli-task-manager/pkg/models"
)

// CreateTask inserts a new task into the database.
// If t.ID is empty, a new UUID is generated. IsCompleted is forced to
// false on insert: tasks always start open.
func (db *DB) CreateTask(ctx context.Context, t *models.Task) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.IsCompleted = false

	query := `
		INSERT INTO tasks (id, name, priority, category, due_date, is_completed)
		VALUES (?, ?, ?, ?, ?, 0)
		RETURNING created_at, updated_at
	`
	err := db.QueryRowContext(ctx, query,
		t.ID, t.Name, t.Priority, t.Category, t.DueDate.Format(models.DateFormat),
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	db.triggerChange(ctx)
	return nil
}

// GetTask retrieves a task by its ID. Absence is not an error: the
// result is nil, nil when no task has the given id.
func (db *DB) GetTask(ctx context.Context, id string) (*models.Task, error) {
	query := `
		SELECT id, name, priority, category, due_date, is_completed, created_at, updated_at
		FROM tasks
		WHERE id = ?
	`
	t := &models.Task{}
	var dueDate string
	var completed int
	err := db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Priority, &t.Category, &dueDate, &completed, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	t.IsCompleted = completed == 1
	if t.DueDate, err = time.Parse(models.DateFormat, dueDate); err != nil {
		return nil, fmt.Errorf("failed to parse due date: %w", err)
	}
	return t, nil
}

// ListTasks returns every task. The order is unspecified; callers that
// need an ordering use one of the sorted queries.
func (db *DB) ListTasks(ctx context.Context) ([]*models.Task, error) {
	query := `
		SELECT id, name, priority, category, due_date, is_completed, created_at, updated_at
		FROM tasks
	`
	return db.queryTasks(ctx, query)
}

// ListTasksByPriority returns tasks with exactly the given priority.
func (db *DB) ListTasksByPriority(ctx context.Context, p models.Priority) ([]*models.Task, error) {
	query := `
		SELECT id, name, priority, category, due_date, is_completed, created_at, updated_at
		FROM tasks
		WHERE priority = ?
	`
	return db.queryTasks(ctx, query, p)
}

// ListTasksByCategory returns tasks whose category matches the given
// value. Matching is case-insensitive: "Work" and "work" are the same
// category.
func (db *DB) ListTasksByCategory(ctx context.Context, category string) ([]*models.Task, error) {
	query := `
		SELECT id, name, priority, category, due_date, is_completed, created_at, updated_at
		FROM tasks
		WHERE category = ? COLLATE NOCASE
	`
	return db.queryTasks(ctx, query, category)
}

// ListTasksByCompletion returns tasks filtered by completion state.
func (db *DB) ListTasksByCompletion(ctx context.Context, completed bool) ([]*models.Task, error) {
	flag := 0
	if completed {
		flag = 1
	}
	query := `
		SELECT id, name, priority, category, due_date, is_completed, created_at, updated_at
		FROM tasks
		WHERE is_completed = ?
	`
	return db.queryTasks(ctx, query, flag)
}

// ListTasksByDueDateRange returns tasks due within [start, end):
// a task due exactly at start is included, one due exactly at end is
// not. Results come back ascending by due date.
func (db *DB) ListTasksByDueDateRange(ctx context.Context, start, end time.Time) ([]*models.Task, error) {
	query := `
		SELECT id, name, priority, category, due_date, is_completed, created_at, updated_at
		FROM tasks
		WHERE due_date >= ? AND due_date < ?
		ORDER BY due_date ASC, created_at ASC, id ASC
	`
	return db.queryTasks(ctx, query, start.Format(models.DateFormat), end.Format(models.DateFormat))
}

// ListTasksSortedByDueDate returns all tasks ordered by due date.
// Equal due dates order by created_at, then id, so the result is
// deterministic across runs.
func (db *DB) ListTasksSortedByDueDate(ctx context.Context, ascending bool) ([]*models.Task, error) {
	direction := "DESC"
	if ascending {
		direction = "ASC"
	}
	query := fmt.Sprintf(`
		SELECT id, name, priority, category, due_date, is_completed, created_at, updated_at
		FROM tasks
		ORDER BY due_date %s, created_at %s, id %s
	`, direction, direction, direction)
	return db.queryTasks(ctx, query)
}

// ListCategories returns the distinct category values across all tasks,
// alphabetically.
func (db *DB) ListCategories(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT category FROM tasks ORDER BY category COLLATE NOCASE ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return categories, nil
}

// queryTasks is a helper to execute a query that returns a list of tasks.
func (db *DB) queryTasks(ctx context.Context, query string, args ...interface{}) ([]*models.Task, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		t := &models.Task{}
		var dueDate string
		var completed int
		err := rows.Scan(
			&t.ID, &t.Name, &t.Priority, &t.Category, &dueDate, &completed, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		t.IsCompleted = completed == 1
		if t.DueDate, err = time.Parse(models.DateFormat, dueDate); err != nil {
			return nil, fmt.Errorf("failed to parse due date: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return tasks, nil
}

// UpdateTask overwrites an existing task matched by id and refreshes
// updated_at. Callers resolve existence through GetTask first; an
// unknown id is reported as an error here, not a silent no-op.
func (db *DB) UpdateTask(ctx context.Context, t *models.Task) error {
	completed := 0
	if t.IsCompleted {
		completed = 1
	}

	query := `
		UPDATE tasks
		SET name = ?, priority = ?, category = ?, due_date = ?, is_completed = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		RETURNING updated_at
	`
	err := db.QueryRowContext(ctx, query,
		t.Name, t.Priority, t.Category, t.DueDate.Format(models.DateFormat), completed, t.ID,
	).Scan(&t.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("task not found: %s", t.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	db.triggerChange(ctx)
	return nil
}

// CompleteTask marks a task completed and returns the updated record.
// Completing an already-completed task is a no-op success. The result
// is nil, nil when no task has the given id.
func (db *DB) CompleteTask(ctx context.Context, id string) (*models.Task, error) {
	query := `
		UPDATE tasks
		SET is_completed = 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		RETURNING id, name, priority, category, due_date, is_completed, created_at, updated_at
	`
	t := &models.Task{}
	var dueDate string
	var completed int
	err := db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Priority, &t.Category, &dueDate, &completed, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	t.IsCompleted = completed == 1
	if t.DueDate, err = time.Parse(models.DateFormat, dueDate); err != nil {
		return nil, fmt.Errorf("failed to parse due date: %w", err)
	}

	db.triggerChange(ctx)
	return t, nil
}

// DeleteTask removes a task by its ID. It reports whether a row was
// removed; a missing id is a normal false result, never an error.
func (db *DB) DeleteTask(ctx context.Context, id string) (bool, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	db.triggerChange(ctx)
	return true, nil
}
