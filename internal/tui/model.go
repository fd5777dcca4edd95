package tui

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stripelint/stripelint/internal/report"
	"github.com/stripelint/stripelint/internal/types"
)

const (
	SortDefault  = ""
	SortSeverity = "severity"
	SortPath     = "path"
	SortRule     = "rule"
)

const defaultStatus = "q: quit | ?: help | j/k: navigate | /: search | o: open | c: copy | b: baseline | i: ignore | r: rescan"

// Options configures a Model.
type Options struct {
	// Root resolves finding URIs to files for context and editing.
	Root         string
	Baseline     report.Baseline
	BaselinePath string
	Rescan       func() ([]types.Finding, error)
	Prefs        Prefs
}

// Model is the problems list: a table of findings over a detail pane.
type Model struct {
	table    table.Model
	viewport viewport.Model
	spinner  spinner.Model

	opts     Options
	findings []types.Finding
	filtered []types.Finding // nil means no filter
	prefs    Prefs

	quitting bool
	ready    bool
	scanning bool
	showHelp bool
	width    int
	height   int

	statusMessage string
	statusTimeout *time.Time
	lastScanTime  time.Time

	searchMode     bool
	searchInput    textinput.Model
	searchQuery    string
	severityFilter types.Severity

	sortColumn  string
	sortReverse bool

	contextLines int
}

type (
	findingsMsg []types.Finding
	statusMsg   string
)

func severityText(s types.Severity) string {
	switch s {
	case types.SeverityError:
		return "ERROR"
	case types.SeverityWarning:
		return "WARN"
	default:
		return string(s)
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// NewModel builds a model over findings.
func NewModel(findings []types.Finding, opts Options) Model {
	columns := []table.Column{
		{Title: "Sev", Width: 8},
		{Title: "Rule", Width: 16},
		{Title: "Location", Width: 40},
		{Title: "Match", Width: 30},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("15")).
		Bold(true).
		Padding(0, 1).
		Align(lipgloss.Left)
	s.Selected = lipgloss.NewStyle().
		Foreground(lipgloss.Color("232")).
		Background(lipgloss.Color("208")).
		Bold(true).
		Padding(0, 1)
	s.Cell = lipgloss.NewStyle().Padding(0, 1)
	t.SetStyles(s)

	// Line spinner avoids Braille characters that render poorly on some terminals
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	ti := textinput.New()
	ti.Placeholder = "Search path, rule, or message..."
	ti.CharLimit = 100
	ti.Width = 50
	ti.Prompt = "/ "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	if opts.Baseline.Items == nil {
		opts.Baseline.Items = map[string]bool{}
	}
	if opts.BaselinePath == "" {
		opts.BaselinePath = filepath.Join(opts.Root, report.DefaultBaselineFile)
	}

	m := Model{
		table:         t,
		spinner:       sp,
		searchInput:   ti,
		opts:          opts,
		findings:      findings,
		prefs:         opts.Prefs,
		lastScanTime:  time.Now(),
		contextLines:  3,
		statusMessage: defaultStatus,
	}
	m.rebuildTableRows()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *Model) rescan() tea.Cmd {
	fn := m.opts.Rescan
	return func() tea.Msg {
		if fn == nil {
			return statusMsg("Rescan not available")
		}
		fs, err := fn()
		if err != nil {
			return statusMsg(fmt.Sprintf("Scan error: %v", err))
		}
		return findingsMsg(fs)
	}
}

func (m *Model) isBaselined(f types.Finding) bool { return m.opts.Baseline.Has(f) }

func (m *Model) displayMatch(f types.Finding) string {
	if m.prefs.HideSecrets {
		return report.Mask(f.Match)
	}
	return f.Match
}

func (m *Model) applyFilters() {
	if m.searchQuery == "" && m.severityFilter == "" {
		m.filtered = nil
		m.rebuildTableRows()
		return
	}
	query := strings.ToLower(m.searchQuery)
	filtered := []types.Finding{}
	for _, f := range m.findings {
		if m.severityFilter != "" && f.Severity != m.severityFilter {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(f.URI), query) &&
			!strings.Contains(strings.ToLower(f.Rule), query) &&
			!strings.Contains(strings.ToLower(f.Message), query) {
			continue
		}
		filtered = append(filtered, f)
	}
	m.filtered = filtered
	m.rebuildTableRows()
}

func (m *Model) clearFilters() {
	m.searchQuery = ""
	m.severityFilter = ""
	m.searchInput.SetValue("")
	m.filtered = nil
	m.rebuildTableRows()
}

func (m *Model) displayFindings() []types.Finding {
	if m.filtered != nil {
		return m.filtered
	}
	return m.findings
}

func (m *Model) rebuildTableRows() {
	fs := m.displayFindings()
	rows := make([]table.Row, len(fs))
	for i, f := range fs {
		sev := severityText(f.Severity)
		if m.isBaselined(f) {
			sev = "(b) " + sev
		}
		loc := fmt.Sprintf("%s:%d:%d", f.URI, f.Range.Line+1, f.Range.StartCol+1)
		rows[i] = table.Row{sev, f.Rule, loc, m.displayMatch(f)}
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(fs) {
		m.table.SetCursor(0)
	}
	m.updateViewportContent()
}

func (m *Model) selected() *types.Finding {
	fs := m.displayFindings()
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(fs) {
		return nil
	}
	f := fs[idx]
	return &f
}

// jumpToNextSeverity moves to the next finding with the given severity,
// wrapping around (direction: 1=forward, -1=backward).
func (m *Model) jumpToNextSeverity(sev types.Severity, direction int) bool {
	fs := m.displayFindings()
	n := len(fs)
	if n == 0 {
		return false
	}
	cur := m.table.Cursor()
	for i := 1; i <= n; i++ {
		idx := ((cur+direction*i)%n + n) % n
		if fs[idx].Severity == sev {
			m.table.SetCursor(idx)
			m.updateViewportContent()
			return true
		}
	}
	return false
}

func (m *Model) cycleSortColumn() {
	switch m.sortColumn {
	case SortDefault:
		m.sortColumn = SortSeverity
	case SortSeverity:
		m.sortColumn = SortPath
	case SortPath:
		m.sortColumn = SortRule
	default:
		m.sortColumn = SortDefault
	}
	m.sortFindings()
}

func (m *Model) sortFindings() {
	less := func(a, b types.Finding) bool {
		switch m.sortColumn {
		case SortSeverity:
			if a.Severity.Rank() != b.Severity.Rank() {
				return a.Severity.Rank() > b.Severity.Rank()
			}
		case SortRule:
			if a.Rule != b.Rule {
				return a.Rule < b.Rule
			}
		}
		if a.URI != b.URI {
			return a.URI < b.URI
		}
		if a.Range.Line != b.Range.Line {
			return a.Range.Line < b.Range.Line
		}
		return a.Range.StartCol < b.Range.StartCol
	}
	sort.SliceStable(m.findings, func(i, j int) bool {
		if m.sortReverse {
			return less(m.findings[j], m.findings[i])
		}
		return less(m.findings[i], m.findings[j])
	})
	m.applyFilters()
}

func (m *Model) sortIndicator() string {
	if m.sortColumn == SortDefault {
		return ""
	}
	dir := "asc"
	if m.sortReverse {
		dir = "desc"
	}
	return fmt.Sprintf("  [sort: %s %s]", m.sortColumn, dir)
}

func (m *Model) expandContext() {
	if m.contextLines < 20 {
		m.contextLines += 2
		if m.contextLines > 20 {
			m.contextLines = 20
		}
		m.updateViewportContent()
	}
}

func (m *Model) contractContext() {
	if m.contextLines > 1 {
		m.contextLines -= 2
		if m.contextLines < 1 {
			m.contextLines = 1
		}
		m.updateViewportContent()
	}
}

func (m *Model) resolve(uri string) string {
	if filepath.IsAbs(uri) || m.opts.Root == "" {
		return uri
	}
	return filepath.Join(m.opts.Root, filepath.FromSlash(uri))
}

// readFileContext returns the lines around targetLine (1-based) and the
// number of the first returned line.
func readFileContext(path string, targetLine int, contextLines int) ([]string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	startLine := targetLine - contextLines
	if startLine < 1 {
		startLine = 1
	}
	endLine := targetLine + contextLines

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, sc.Text())
		}
		if lineNum > endLine {
			break
		}
	}
	return lines, startLine, sc.Err()
}

func highlightLine(line string, filename string) string {
	lexer := lexers.Match(filename)
	if lexer == nil {
		if ext := filepath.Ext(filename); ext != "" {
			lexer = lexers.Match("file" + ext)
		}
	}
	if lexer == nil {
		return line
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return line
	}
	iterator, err := lexer.Tokenise(nil, line)
	if err != nil {
		return line
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return line
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}
	f := m.selected()
	if f == nil {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(m.detail(*f))
}

func (m *Model) detail(f types.Finding) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Diagnostic") + "\n\n")
	if m.isBaselined(f) {
		b.WriteString(dimStyle.Italic(true).Render("BASELINED: this key is known and accepted."))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("File:"), f.URI)
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("Rule:"), f.Rule)
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("Severity:"), f.Severity)
	fmt.Fprintf(&b, "%s %d, columns %d-%d\n", keyStyle.Render("Line:"), f.Range.Line+1, f.Range.StartCol+1, f.Range.EndCol)
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("Key:"), m.displayMatch(f))
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("Message:"), f.Message)

	hint := fmt.Sprintf(" (+/- to expand/contract, showing %d lines)", m.contextLines*2+1)
	fmt.Fprintf(&b, "\n%s%s\n", keyStyle.Render("Context:"), dimStyle.Render(hint))

	target := f.Range.Line + 1
	lines, start, err := readFileContext(m.resolve(f.URI), target, m.contextLines)
	if err != nil || len(lines) == 0 {
		b.WriteString(dimStyle.Render("(file not readable)"))
		return b.String()
	}
	current := lipgloss.NewStyle().Background(lipgloss.Color("236"))
	for i, line := range lines {
		n := start + i
		if f.Match != "" && m.prefs.HideSecrets {
			line = strings.ReplaceAll(line, f.Match, report.Mask(f.Match))
		}
		text := highlightLine(line, f.URI)
		num := dimStyle.Render(fmt.Sprintf("%4d ", n))
		if n == target {
			shown := m.displayMatch(f)
			if shown != "" {
				text = strings.ReplaceAll(text, shown, matchStyle.Render(shown))
			}
			b.WriteString(num + current.Render(text) + "\n")
			continue
		}
		b.WriteString(num + text + "\n")
	}
	return b.String()
}

func (m *Model) setStatus(msg string, d time.Duration) {
	timeout := time.Now().Add(d)
	m.statusTimeout = &timeout
	m.statusMessage = msg
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if m.searchMode {
			switch msg.String() {
			case "enter":
				m.searchQuery = m.searchInput.Value()
				m.searchMode = false
				m.searchInput.Blur()
				return m, nil
			case "esc":
				m.searchMode = false
				m.searchInput.Blur()
				m.searchInput.SetValue(m.searchQuery)
				m.applyFilters()
				return m, nil
			default:
				m.searchInput, cmd = m.searchInput.Update(msg)
				m.searchQuery = m.searchInput.Value()
				m.applyFilters()
				return m, cmd
			}
		}
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "?":
			m.showHelp = true
			return m, nil
		case "/":
			m.searchMode = true
			m.searchInput.SetValue(m.searchQuery)
			m.searchInput.Focus()
			return m, textinput.Blink
		case "1":
			m.severityFilter = types.SeverityError
			m.applyFilters()
			m.setStatus("Showing errors only (Esc to clear)", 3*time.Second)
			return m, nil
		case "2":
			m.severityFilter = types.SeverityWarning
			m.applyFilters()
			m.setStatus("Showing warnings only (Esc to clear)", 3*time.Second)
			return m, nil
		case "esc":
			if m.searchQuery != "" || m.severityFilter != "" {
				m.clearFilters()
				m.setStatus("Filters cleared", 3*time.Second)
			}
			return m, nil
		case "n":
			if !m.jumpToNextSeverity(types.SeverityError, 1) {
				m.setStatus("No errors", 3*time.Second)
			}
			return m, nil
		case "N":
			if !m.jumpToNextSeverity(types.SeverityError, -1) {
				m.setStatus("No errors", 3*time.Second)
			}
			return m, nil
		case "s":
			m.cycleSortColumn()
			return m, nil
		case "S":
			m.sortReverse = !m.sortReverse
			m.sortFindings()
			return m, nil
		case "+", "=":
			m.expandContext()
			return m, nil
		case "-":
			m.contractContext()
			return m, nil
		case "h":
			m.prefs.HideSecrets = !m.prefs.HideSecrets
			m.rebuildTableRows()
			return m, m.savePrefs()
		case "o", "enter":
			return m, m.openEditor()
		case "c":
			return m, m.copyLocation()
		case "C":
			return m, m.copyDetails()
		case "b":
			return m, m.addToBaseline()
		case "i":
			return m, m.ignoreFile()
		case "r":
			if !m.scanning {
				m.scanning = true
				return m, m.rescan()
			}
			return m, nil
		case "g", "home":
			m.table.GotoTop()
			m.updateViewportContent()
			return m, nil
		case "G", "end":
			m.table.GotoBottom()
			m.updateViewportContent()
			return m, nil
		}
		m.table, cmd = m.table.Update(msg)
		m.updateViewportContent()
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		usable := m.width - 10
		sevWidth, ruleWidth := 10, 16
		rest := usable - sevWidth - ruleWidth
		locWidth := int(float64(rest) * 0.55)
		matchWidth := rest - locWidth
		if locWidth < 25 {
			locWidth = 25
		}
		if matchWidth < 20 {
			matchWidth = 20
		}
		cols := m.table.Columns()
		cols[0].Width = sevWidth
		cols[1].Width = ruleWidth
		cols[2].Width = locWidth
		cols[3].Width = matchWidth
		m.table.SetColumns(cols)

		available := m.height - lipgloss.Height(statusStyle.Render("")) - 1
		tableHeight := int(float64(available) * 0.45)
		viewportHeight := available - tableHeight - detailPaneBorderStyle.GetVerticalFrameSize() - 1
		m.table.SetWidth(m.width)
		m.table.SetHeight(tableHeight)
		if m.viewport.Height == 0 {
			m.viewport = viewport.New(m.width, viewportHeight)
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = viewportHeight
		}
		statusStyle = statusStyle.Width(m.width)
		m.updateViewportContent()
		return m, nil

	case findingsMsg:
		m.findings = msg
		m.scanning = false
		m.lastScanTime = time.Now()
		if m.sortColumn != SortDefault {
			m.sortFindings()
		} else {
			m.applyFilters()
		}
		m.setStatus(fmt.Sprintf("Rescan complete - %d diagnostics", len(m.findings)), 5*time.Second)
		return m, nil

	case statusMsg:
		m.scanning = false
		m.setStatus(string(msg), 3*time.Second)
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		if m.statusTimeout != nil && time.Now().After(*m.statusTimeout) {
			m.statusTimeout = nil
			m.statusMessage = defaultStatus
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}
	if m.scanning {
		box := popupStyle.Width(55).Align(lipgloss.Center).
			Render(fmt.Sprintf("%s  Rescanning...\n\nPlease wait", m.spinner.View()))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	if m.showHelp {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, popupStyle.Render(helpText))
	}

	fs := m.displayFindings()
	errs, warns := report.Counts(fs)
	var stats string
	if len(m.findings) == 0 {
		stats = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("[OK] No Stripe keys found")
	} else {
		var filter string
		if m.searchQuery != "" || m.severityFilter != "" {
			var parts []string
			if m.searchQuery != "" {
				parts = append(parts, fmt.Sprintf("search:'%s'", m.searchQuery))
			}
			if m.severityFilter != "" {
				parts = append(parts, "sev:"+severityText(m.severityFilter))
			}
			filter = fmt.Sprintf("  [FILTER: %s]", strings.Join(parts, ", "))
		}
		stats = fmt.Sprintf("Showing: %d/%d  |  %s %-4d  |  %s %-4d%s%s",
			len(fs), len(m.findings),
			sevErrorStyle.Render("Errors:"), errs,
			sevWarnStyle.Render("Warnings:"), warns,
			filter, m.sortIndicator())
	}
	header := lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 2).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("237")).
		Render(stats)

	tableView := tableBorderStyle.Width(m.width).Height(m.table.Height()).Render(m.table.View())

	var detail string
	if len(fs) == 0 {
		msg := "Nothing to review.\n\nPress 'r' to rescan\nPress '?' for help"
		if len(m.findings) > 0 {
			msg = "No diagnostics match filter.\n\nPress 'Esc' to clear filter"
		}
		detail = lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center, emptyTextStyle.Render(msg))
	} else {
		detail = m.viewport.View()
	}
	detailView := detailPaneBorderStyle.Width(m.width).Height(m.viewport.Height).Render(detail)

	status := m.statusMessage
	if m.searchMode {
		status = m.searchInput.View()
	} else {
		status = fmt.Sprintf("%s | scanned %s ago", status, formatDuration(time.Since(m.lastScanTime)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, tableView, detailView, statusStyle.Render(status))
}

const helpText = `stripelint problems

  j/k, up/down   move
  g/G            top / bottom
  n/N            next / previous error
  /              search
  1 / 2          errors / warnings only
  esc            clear filters
  s / S          cycle sort / reverse
  +/-            more / less context
  h              hide or show key values
  o, enter       open in $EDITOR
  c / C          copy location / details
  b              add to baseline
  i              add file to .stripelintignore
  r              rescan
  q              quit

press any key to close`
