// Package session connects document lifecycle events to the linter and the
// diagnostic collection. It plays the part an editor host plays: every open,
// change or save re-lints the document and republishes its diagnostics, and
// a close removes them.
package session

import (
	"io"
	"log/slog"

	"github.com/stripelint/stripelint/internal/diagnostics"
	"github.com/stripelint/stripelint/internal/git"
	"github.com/stripelint/stripelint/internal/linter"
	"github.com/stripelint/stripelint/internal/types"
)

// Result describes one lint pass over a document.
type Result struct {
	URI         string
	Diagnostics []types.Diagnostic
	Risk        types.RiskContext
	// Scanned is false when the document was skipped by ShouldScan.
	Scanned bool
	// Changed reports whether the published set differs from the previous one.
	Changed bool
}

// Session is safe for concurrent use when its Provider is.
type Session struct {
	linter *linter.Linter
	vcs    git.Provider
	diags  *diagnostics.Collection
	log    *slog.Logger
}

// Option customises a Session.
type Option func(*Session)

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// New wires a session. A nil linter uses the defaults, a nil provider means
// no version control, and a nil collection gets a fresh one.
func New(l *linter.Linter, vcs git.Provider, c *diagnostics.Collection, opts ...Option) *Session {
	if l == nil {
		l = linter.Default()
	}
	if vcs == nil {
		vcs = git.None{}
	}
	if c == nil {
		c = diagnostics.NewCollection()
	}
	s := &Session{
		linter: l,
		vcs:    vcs,
		diags:  c,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Collection is the collection this session publishes to.
func (s *Session) Collection() *diagnostics.Collection { return s.diags }

// Linter is the linter this session runs.
func (s *Session) Linter() *linter.Linter { return s.linter }

// Risk is the risk context the session would use for uri.
func (s *Session) Risk(uri string) types.RiskContext { return git.Risk(s.vcs, uri) }

// Lint scans doc and publishes the outcome under doc.URI. A skipped document
// publishes an empty set so stale diagnostics disappear. Documents without a
// URI are ignored.
func (s *Session) Lint(doc types.Document) Result {
	if doc.URI == "" {
		return Result{}
	}
	rc := s.Risk(doc.URI)
	res := Result{URI: doc.URI, Risk: rc, Diagnostics: []types.Diagnostic{}}
	if s.linter.ShouldScan(doc.URI, rc) {
		res.Scanned = true
		res.Diagnostics = s.linter.Scan(doc.Text, rc)
	}
	res.Changed = s.diags.Publish(doc.URI, res.Diagnostics)
	s.log.Debug("linted document",
		"uri", doc.URI,
		"scanned", res.Scanned,
		"vcs", rc.VCSActive,
		"commit_risk", rc.CommitRisk,
		"diagnostics", len(res.Diagnostics),
		"changed", res.Changed,
	)
	return res
}

// Restore publishes a previously computed result without scanning, for
// callers that hold cached results for an unchanged document.
func (s *Session) Restore(prev Result) Result {
	if prev.URI == "" {
		return Result{}
	}
	if prev.Diagnostics == nil {
		prev.Diagnostics = []types.Diagnostic{}
	}
	prev.Changed = s.diags.Publish(prev.URI, prev.Diagnostics)
	return prev
}

func (s *Session) DidOpen(doc types.Document) Result   { return s.Lint(doc) }
func (s *Session) DidChange(doc types.Document) Result { return s.Lint(doc) }
func (s *Session) DidSave(doc types.Document) Result   { return s.Lint(doc) }

// DidClose forgets the document's diagnostics.
func (s *Session) DidClose(uri string) {
	if uri == "" {
		return
	}
	if s.diags.Delete(uri) {
		s.log.Debug("closed document", "uri", uri)
	}
}
