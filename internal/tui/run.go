// Package tui is the interactive problems list shown by "scan --tui".
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stripelint/stripelint/internal/types"
)

// Run shows findings until the user quits.
func Run(findings []types.Finding, opts Options) error {
	m := NewModel(findings, opts)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
