package models

import "time"

// DateFormat is the calendar-date layout used everywhere a due date is
// parsed or persisted. Time of day carries no meaning for due dates.
const DateFormat = "2006-01-02"

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists the valid priorities in ascending order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	for _, candidate := range Priorities {
		if p == candidate {
			return true
		}
	}
	return false
}

type Task struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Priority    Priority  `json:"priority"`
	Category    string    `json:"category"`
	DueDate     time.Time `json:"due_date"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask builds an unsaved task. The id and timestamps are assigned by
// the storage layer on create; tasks always start open.
func NewTask(name string, priority Priority, category string, dueDate time.Time) *Task {
	return &Task{
		Name:     name,
		Priority: priority,
		Category: category,
		DueDate:  dueDate,
	}
}

// TaskPatch carries the fields of a partial update. A nil field means
// "leave unchanged".
type TaskPatch struct {
	Name        *string
	Priority    *Priority
	Category    *string
	DueDate     *time.Time
	IsCompleted *bool
}

// ApplyPatch returns a copy of existing with only the supplied patch
// fields changed. The input task is never mutated.
func ApplyPatch(existing Task, patch TaskPatch) Task {
	if patch.Name != nil {
		existing.Name = *patch.Name
	}
	if patch.Priority != nil {
		existing.Priority = *patch.Priority
	}
	if patch.Category != nil {
		existing.Category = *patch.Category
	}
	if patch.DueDate != nil {
		existing.DueDate = *patch.DueDate
	}
	if patch.IsCompleted != nil {
		existing.IsCompleted = *patch.IsCompleted
	}
	return existing
}
