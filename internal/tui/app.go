// Package tui provides the interactive operation builder for mingo.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mingo-db/mingo/internal/runtime"
	"github.com/mingo-db/mingo/internal/tui/views"
)

// Launch starts the TUI bound to an executor. It returns when the user
// quits.
func Launch(exec *runtime.Executor) error {
	p := tea.NewProgram(NewModel(exec), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// Model hosts the active view.
type Model struct {
	view View
}

// NewModel creates the application model.
func NewModel(exec *runtime.Executor) Model {
	return Model{view: views.NewBuilderView(exec)}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return m.view.Init()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

// View renders the current view.
func (m Model) View() string {
	return m.view.View()
}

// View represents a TUI view (exported from views package).
type View = views.View
