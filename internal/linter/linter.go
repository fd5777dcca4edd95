package linter

import (
	"regexp"
	"strings"

	"github.com/stripelint/stripelint/internal/rules"
	"github.com/stripelint/stripelint/internal/types"
)

const (
	// MessageVCS is used when the workspace is under version control.
	MessageVCS = "This Stripe API key is in a file that is not git-ignored and could be committed. " +
		"Move it to an environment file listed in .gitignore. See https://stripe.com/docs/keys#safe-keys"
	// MessageNoVCS is used when no version control is active.
	MessageNoVCS = "This Stripe API key is stored in source. Keep keys out of code and out of version control. " +
		"See https://stripe.com/docs/keys#safe-keys"
)

// DefaultIgnore is the filename denylist every Linter applies. Configured
// entries extend it.
var DefaultIgnore = []string{".env"}

// suppressRe matches the inline markers as whole tokens, so
// "stripelint:ignored" and "stripelint:ignore-file" do not count.
var suppressRe = regexp.MustCompile(`stripelint:(ignore-next-line|ignore)($|[^\w-])`)

// Messages holds the diagnostic texts for both risk branches.
type Messages struct {
	VCS   string
	NoVCS string
}

// Options configures a Linter. Zero values fall back to defaults.
type Options struct {
	Rules    rules.Table
	Ignore   []string
	Messages Messages
	// InlineSuppression honours "stripelint:ignore" and
	// "stripelint:ignore-next-line" comments. Off by default.
	InlineSuppression bool
}

// Linter is safe for concurrent use; it holds no mutable state.
type Linter struct {
	rules  rules.Table
	ignore []string
	msgs   Messages
	inline bool
}

// New builds a Linter from opts.
func New(opts Options) *Linter {
	l := &Linter{rules: opts.Rules, msgs: opts.Messages, inline: opts.InlineSuppression}
	if len(l.rules) == 0 {
		l.rules = rules.Default()
	}
	l.ignore = append([]string(nil), DefaultIgnore...)
	for _, s := range opts.Ignore {
		if s != "" && !contains(l.ignore, s) {
			l.ignore = append(l.ignore, s)
		}
	}
	if l.msgs.VCS == "" {
		l.msgs.VCS = MessageVCS
	}
	if l.msgs.NoVCS == "" {
		l.msgs.NoVCS = MessageNoVCS
	}
	return l
}

// Default returns a Linter with the built-in table, denylist and messages.
func Default() *Linter { return New(Options{}) }

// Rules exposes the active rule table.
func (l *Linter) Rules() rules.Table { return l.rules }

// Ignore returns the filename denylist.
func (l *Linter) Ignore() []string { return append([]string(nil), l.ignore...) }

// Messages returns the diagnostic texts in use.
func (l *Linter) Messages() Messages { return l.msgs }

// InlineSuppression reports whether inline ignore markers are honoured.
func (l *Linter) InlineSuppression() bool { return l.inline }

// ShouldScan reports whether a document is worth scanning. Denylisted
// filenames are never scanned. Under version control only files that could
// be committed are scanned; without version control everything is.
func (l *Linter) ShouldScan(filename string, rc types.RiskContext) bool {
	for _, s := range l.ignore {
		if s != "" && strings.Contains(filename, s) {
			return false
		}
	}
	if rc.VCSActive && !rc.CommitRisk {
		return false
	}
	return true
}

// Scan returns one diagnostic per key match in text. The result is never nil.
// Lines carrying an ignore marker are dropped only with InlineSuppression.
func (l *Linter) Scan(text string, rc types.RiskContext) []types.Diagnostic {
	out := []types.Diagnostic{}
	if text == "" {
		return out
	}
	msg := l.msgs.NoVCS
	if rc.VCSActive {
		msg = l.msgs.VCS
	}
	skipNext := false
	for i, line := range strings.Split(text, "\n") {
		if skipNext {
			skipNext = false
			continue
		}
		if l.inline {
			if m := suppressRe.FindStringSubmatch(line); m != nil {
				skipNext = m[1] == "ignore-next-line"
				continue
			}
		}
		for _, m := range l.rules.FindLine(i, line) {
			out = append(out, l.diagnostic(m, msg))
		}
	}
	return out
}

func (l *Linter) diagnostic(m types.Match, msg string) types.Diagnostic {
	sev := types.SeverityWarning
	if r, ok := l.rules.Lookup(m.Rule); ok {
		sev = r.Severity(m.Text)
	}
	return types.Diagnostic{
		Range: types.Range{
			Line:     m.Line,
			StartCol: m.Start,
			EndCol:   m.Start + len([]rune(m.Text)),
		},
		Severity: sev,
		Message:  msg,
		Rule:     m.Rule,
		Match:    m.Text,
	}
}

// ClassifyCommitRisk reports whether path is among the working tree's
// changed paths. Membership is an exact string comparison.
func ClassifyCommitRisk(path string, changed []string) bool {
	for _, p := range changed {
		if p == path {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
