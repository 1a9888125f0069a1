// Package validate holds the entry-point validation rules for task
// input. The storage and query layers never re-validate; every surface
// that constructs or patches a task composes these checks first.
package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/chandirag/cli-task-manager/pkg/models"
)

// Error reports why a piece of task input was rejected.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Name trims and returns the task name, rejecting empty input.
func Name(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", &Error{Field: "name", Reason: "must not be empty"}
	}
	return name, nil
}

// Category trims and returns the category label, rejecting empty input.
func Category(raw string) (string, error) {
	category := strings.TrimSpace(raw)
	if category == "" {
		return "", &Error{Field: "category", Reason: "must not be empty"}
	}
	return category, nil
}

// Priority matches the input against the closed priority set,
// ignoring case.
func Priority(raw string) (models.Priority, error) {
	for _, candidate := range models.Priorities {
		if strings.EqualFold(strings.TrimSpace(raw), string(candidate)) {
			return candidate, nil
		}
	}
	return "", &Error{Field: "priority", Reason: "must be one of Low, Medium, High"}
}

// DueDate parses a YYYY-MM-DD date and rejects dates before today.
// The comparison is at date granularity: today itself is valid.
func DueDate(raw string, now time.Time) (time.Time, error) {
	due, err := time.Parse(models.DateFormat, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, &Error{Field: "due date", Reason: "must be a date in YYYY-MM-DD form"}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if due.Before(today) {
		return time.Time{}, &Error{Field: "due date", Reason: "must not be in the past"}
	}
	return due, nil
}
