package db

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chandirag/cli-task-manager/pkg/models"
)

// EnableAutoSnapshot sets up a hook that automatically exports a snapshot
// to the given path after every successful write operation.
func (db *DB) EnableAutoSnapshot(path string) {
	db.SetOnChange(func(ctx context.Context) {
		// Hooks are best-effort: a failed export must not fail the
		// original write operation.
		_ = db.ExportSnapshot(ctx, path)
	})
}

// ExportSnapshot writes every task as one JSON line, atomically via a
// temporary file and rename. Lines are ordered by created_at then id so
// repeated exports of the same data are byte-identical.
func (db *DB) ExportSnapshot(ctx context.Context, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, "snapshot-*.jsonl")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempFile.Name())
		}
	}()

	tasks, err := db.queryTasks(ctx, `
		SELECT id, name, priority, category, due_date, is_completed, created_at, updated_at
		FROM tasks
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return fmt.Errorf("failed to query snapshot tasks: %w", err)
	}

	for _, t := range tasks {
		line, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to marshal task %s: %w", t.ID, err)
		}
		if _, err := tempFile.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("failed to write snapshot line: %w", err)
		}
	}

	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	filename := tempFile.Name()
	tempFile = nil // Prevent defer from removing it

	if err := os.Rename(filename, path); err != nil {
		os.Remove(filename)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// ImportSnapshot reads a JSONL snapshot and populates the database.
// Tasks are upserted by id inside a single transaction, preserving the
// snapshot's timestamps.
func (db *DB) ImportSnapshot(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var t models.Task
		if err := json.Unmarshal(line, &t); err != nil {
			return fmt.Errorf("failed to unmarshal task: %w", err)
		}

		completed := 0
		if t.IsCompleted {
			completed = 1
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO tasks (id, name, priority, category, due_date, is_completed, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				priority = excluded.priority,
				category = excluded.category,
				due_date = excluded.due_date,
				is_completed = excluded.is_completed,
				created_at = excluded.created_at,
				updated_at = excluded.updated_at`,
			t.ID, t.Name, t.Priority, t.Category, t.DueDate.Format(models.DateFormat),
			completed, t.CreatedAt, t.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to sync task %s: %w", t.Name, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	db.triggerChange(ctx)
	return nil
}
