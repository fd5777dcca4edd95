package tui

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stripelint/stripelint/internal/ignore"
)

// openEditor suspends the TUI and opens the selected file at its line in
// $EDITOR (vi when unset).
func (m Model) openEditor() tea.Cmd {
	f := m.selected()
	if f == nil {
		return func() tea.Msg { return statusMsg("No diagnostic selected") }
	}
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	args := append(parts[1:], fmt.Sprintf("+%d", f.Range.Line+1), m.resolve(f.URI))
	c := exec.Command(parts[0], args...)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		if err != nil {
			return statusMsg(fmt.Sprintf("Editor error: %v", err))
		}
		return statusMsg("Returned from editor")
	})
}

// ignoreFile appends the selected file to the root's ignore file.
func (m Model) ignoreFile() tea.Cmd {
	f := m.selected()
	if f == nil {
		return func() tea.Msg { return statusMsg("No diagnostic selected") }
	}
	uri := f.URI
	path := filepath.Join(m.opts.Root, ignore.FileName)
	return func() tea.Msg {
		if err := appendIgnore(path, uri); err != nil {
			return statusMsg(fmt.Sprintf("Ignore error: %v", err))
		}
		return statusMsg(fmt.Sprintf("Added %s to %s", uri, ignore.FileName))
	}
}

func appendIgnore(path, entry string) error {
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	for _, l := range strings.Split(string(existing), "\n") {
		if strings.TrimSpace(l) == entry {
			return nil
		}
	}
	fh, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer fh.Close()
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		if _, err := fh.WriteString("\n"); err != nil {
			return err
		}
	}
	_, err = fh.WriteString(entry + "\n")
	return err
}

// addToBaseline marks the selected diagnostic as known and saves the baseline.
func (m *Model) addToBaseline() tea.Cmd {
	f := m.selected()
	if f == nil {
		return func() tea.Msg { return statusMsg("No diagnostic selected") }
	}
	if m.isBaselined(*f) {
		return func() tea.Msg { return statusMsg("Already in baseline") }
	}
	m.opts.Baseline.Add(*f)
	m.rebuildTableRows()
	base := m.opts.Baseline
	path := m.opts.BaselinePath
	return func() tea.Msg {
		if err := base.Save(path); err != nil {
			return statusMsg(fmt.Sprintf("Baseline error: %v", err))
		}
		return statusMsg("Added to baseline")
	}
}

// copyLocation copies file:line:col of the selected diagnostic.
func (m Model) copyLocation() tea.Cmd {
	f := m.selected()
	if f == nil {
		return func() tea.Msg { return statusMsg("No diagnostic selected") }
	}
	loc := fmt.Sprintf("%s:%d:%d", f.URI, f.Range.Line+1, f.Range.StartCol+1)
	return func() tea.Msg {
		if err := clipboard.WriteAll(loc); err != nil {
			return statusMsg(fmt.Sprintf("Clipboard error: %v", err))
		}
		return statusMsg("Copied: " + loc)
	}
}

// copyDetails copies a plain-text description. The key itself is masked
// unless keys are shown.
func (m Model) copyDetails() tea.Cmd {
	f := m.selected()
	if f == nil {
		return func() tea.Msg { return statusMsg("No diagnostic selected") }
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "File: %s\n", f.URI)
	fmt.Fprintf(&sb, "Line: %d\n", f.Range.Line+1)
	fmt.Fprintf(&sb, "Columns: %d-%d\n", f.Range.StartCol+1, f.Range.EndCol)
	fmt.Fprintf(&sb, "Rule: %s\n", f.Rule)
	fmt.Fprintf(&sb, "Severity: %s\n", f.Severity)
	fmt.Fprintf(&sb, "Key: %s\n", m.displayMatch(*f))
	fmt.Fprintf(&sb, "Message: %s\n", f.Message)
	text := sb.String()
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return statusMsg(fmt.Sprintf("Clipboard error: %v", err))
		}
		return statusMsg("Copied diagnostic details to clipboard")
	}
}

func (m Model) savePrefs() tea.Cmd {
	p := m.prefs
	return func() tea.Msg {
		if err := SavePrefs(p); err != nil {
			return statusMsg(fmt.Sprintf("Could not save preferences: %v", err))
		}
		if p.HideSecrets {
			return statusMsg("Key values hidden")
		}
		return statusMsg("Key values shown")
	}
}
