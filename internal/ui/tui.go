// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the clock widget
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the TUI. Focus reporting is enabled so regaining terminal
// focus can trigger a forced re-phase of the hands.
func Run(model Model) *tea.Program {
	return tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus())
}
