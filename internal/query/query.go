// Package query layers the view-building operations of the CLI over the
// storage engine: exact-match filters, due-date sorting, unique
// categories, and the named due-date periods.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/chandirag/cli-task-manager/internal/db"
	"github.com/chandirag/cli-task-manager/pkg/models"
)

// Period is a named shorthand for a due-date range starting at today's
// midnight.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodToday, PeriodWeek, PeriodMonth:
		return Period(s), nil
	}
	return "", fmt.Errorf("unknown period %q (want today, week, or month)", s)
}

type Engine struct {
	store *db.DB
	now   func() time.Time
}

func NewEngine(store *db.DB) *Engine {
	return &Engine{store: store, now: time.Now}
}

func (e *Engine) All(ctx context.Context) ([]*models.Task, error) {
	return e.store.ListTasks(ctx)
}

func (e *Engine) ByPriority(ctx context.Context, p models.Priority) ([]*models.Task, error) {
	return e.store.ListTasksByPriority(ctx, p)
}

func (e *Engine) ByCategory(ctx context.Context, category string) ([]*models.Task, error) {
	return e.store.ListTasksByCategory(ctx, category)
}

func (e *Engine) ByCompletion(ctx context.Context, completed bool) ([]*models.Task, error) {
	return e.store.ListTasksByCompletion(ctx, completed)
}

func (e *Engine) SortedByDueDate(ctx context.Context, ascending bool) ([]*models.Task, error) {
	return e.store.ListTasksSortedByDueDate(ctx, ascending)
}

func (e *Engine) Categories(ctx context.Context) ([]string, error) {
	return e.store.ListCategories(ctx)
}

// ByPeriod returns the tasks due within the named period, computed as
// [today's midnight, today's midnight + period length).
func (e *Engine) ByPeriod(ctx context.Context, p Period) ([]*models.Task, error) {
	start, end, err := periodRange(p, e.now())
	if err != nil {
		return nil, err
	}
	return e.store.ListTasksByDueDateRange(ctx, start, end)
}

// periodRange maps a period to its concrete half-open date range.
// "month" advances the month field rather than adding a fixed day
// count, so the window spans a true calendar month (28-31 days).
func periodRange(p Period, now time.Time) (time.Time, time.Time, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case PeriodToday:
		return start, start.AddDate(0, 0, 1), nil
	case PeriodWeek:
		return start, start.AddDate(0, 0, 7), nil
	case PeriodMonth:
		return start, start.AddDate(0, 1, 0), nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("unknown period %q", p)
}
