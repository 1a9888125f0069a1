package validate

import (
	"errors"
	"testing"
	"time"

	"github.com/chandirag/cli-task-manager/pkg/models"
)

func TestName(t *testing.T) {
	name, err := Name("  Buy milk  ")
	if err != nil {
		t.Fatalf("Expected valid name, got %v", err)
	}
	if name != "Buy milk" {
		t.Errorf("Expected trimmed name, got %q", name)
	}

	for _, bad := range []string{"", "   "} {
		if _, err := Name(bad); err == nil {
			t.Errorf("Expected %q to be rejected", bad)
		}
	}
}

func TestCategory(t *testing.T) {
	category, err := Category(" Work ")
	if err != nil {
		t.Fatalf("Expected valid category, got %v", err)
	}
	if category != "Work" {
		t.Errorf("Expected trimmed category, got %q", category)
	}

	if _, err := Category("  "); err == nil {
		t.Errorf("Expected blank category to be rejected")
	}
}

func TestPriority(t *testing.T) {
	cases := map[string]models.Priority{
		"Low":    models.PriorityLow,
		"medium": models.PriorityMedium,
		"HIGH":   models.PriorityHigh,
		" high ": models.PriorityHigh,
	}
	for input, want := range cases {
		got, err := Priority(input)
		if err != nil {
			t.Errorf("Expected %q to parse, got %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("Expected %q -> %s, got %s", input, want, got)
		}
	}

	if _, err := Priority("urgent"); err == nil {
		t.Errorf("Expected unknown priority to be rejected")
	}
}

func TestDueDate(t *testing.T) {
	now := time.Date(2025, time.March, 10, 15, 30, 0, 0, time.UTC)

	// 1. Today is valid even late in the day
	due, err := DueDate("2025-03-10", now)
	if err != nil {
		t.Fatalf("Expected today to be valid, got %v", err)
	}
	if due.Format(models.DateFormat) != "2025-03-10" {
		t.Errorf("Expected due date 2025-03-10, got %s", due)
	}

	// 2. Future is valid
	if _, err := DueDate("2025-12-31", now); err != nil {
		t.Errorf("Expected future date to be valid, got %v", err)
	}

	// 3. Past is rejected
	if _, err := DueDate("2025-03-09", now); err == nil {
		t.Errorf("Expected past date to be rejected")
	}

	// 4. Malformed input is rejected with a typed error
	_, err = DueDate("10/03/2025", now)
	if err == nil {
		t.Fatalf("Expected malformed date to be rejected")
	}
	var verr *Error
	if !errors.As(err, &verr) {
		t.Errorf("Expected *validate.Error, got %T", err)
	}
}
