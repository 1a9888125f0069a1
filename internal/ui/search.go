package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chandirag/cli-task-manager/internal/search"
	"github.com/chandirag/cli-task-manager/pkg/models"
)

var (
	resultStyle    = lipgloss.NewStyle().PaddingLeft(2)
	completedStyle = lipgloss.NewStyle().PaddingLeft(2).Faint(true).Strikethrough(true)
	countStyle     = lipgloss.NewStyle().Faint(true)
)

// SearchModel is the live-search loop: each keystroke re-queries a
// search index built once from a snapshot of the task set. Raw terminal
// mode is owned by the bubbletea program, so aborting with esc or
// ctrl+c always restores the terminal.
type SearchModel struct {
	input    textinput.Model
	index    *search.Index
	results  []search.Result
	quitting bool
}

func NewSearchModel(tasks []*models.Task) SearchModel {
	ti := textinput.New()
	ti.Placeholder = "Type to search tasks..."
	ti.Focus()

	index := search.NewIndex(tasks)
	return SearchModel{
		input:   ti,
		index:   index,
		results: index.Search(""),
	}
}

func (m SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.results = m.index.Search(m.input.Value())
	return m, cmd
}

func (m SearchModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(m.input.View())
	s.WriteString("\n\n")

	for _, r := range m.results {
		line := fmt.Sprintf("%-30s %-8s %-15s %s",
			r.Task.Name, r.Task.Priority, r.Task.Category,
			r.Task.DueDate.Format(models.DateFormat))
		if r.Task.IsCompleted {
			s.WriteString(completedStyle.Render(line))
		} else {
			s.WriteString(resultStyle.Render(line))
		}
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(countStyle.Render(fmt.Sprintf("%d task(s) · esc to quit", len(m.results))))
	s.WriteString("\n")

	return s.String()
}

// RunSearch starts an interactive search session over the given tasks.
func RunSearch(tasks []*models.Task) error {
	p := tea.NewProgram(NewSearchModel(tasks))
	_, err := p.Run()
	return err
}
