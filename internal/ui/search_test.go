package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chandirag/cli-task-manager/pkg/models"
)

func searchFixture() []*models.Task {
	due := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	return []*models.Task{
		{ID: "1", Name: "Buy milk", Priority: models.PriorityLow, Category: "Errands", DueDate: due},
		{ID: "2", Name: "Pay rent", Priority: models.PriorityHigh, Category: "Bills", DueDate: due},
	}
}

func typeString(t *testing.T, m SearchModel, s string) SearchModel {
	t.Helper()
	for _, r := range s {
		model, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = model.(SearchModel)
	}
	return m
}

func TestSearchModelFiltersAsTyped(t *testing.T) {
	m := NewSearchModel(searchFixture())

	if len(m.results) != 2 {
		t.Fatalf("expected full set before typing, got %d", len(m.results))
	}

	// One keystroke is below the activation gate
	m = typeString(t, m, "m")
	if len(m.results) != 2 {
		t.Errorf("expected full set for 1-char query, got %d", len(m.results))
	}

	m = typeString(t, m, "ilk")
	if len(m.results) != 1 || m.results[0].Task.ID != "1" {
		t.Errorf("expected only 'Buy milk' after typing 'milk', got %d results", len(m.results))
	}
}

func TestSearchModelAbort(t *testing.T) {
	m := NewSearchModel(searchFixture())

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = model.(SearchModel)
	if !m.quitting {
		t.Error("expected quitting true after esc")
	}
	if cmd == nil {
		t.Error("expected quit command after esc")
	}
	if m.View() != "" {
		t.Error("expected empty view while quitting")
	}
}

func TestSearchModelView(t *testing.T) {
	m := typeString(t, NewSearchModel(searchFixture()), "rent")

	view := m.View()
	if !strings.Contains(view, "Pay rent") {
		t.Errorf("expected view to show the matching task, got %q", view)
	}
	if strings.Contains(view, "Buy milk") {
		t.Errorf("expected view to hide non-matching tasks, got %q", view)
	}
}
