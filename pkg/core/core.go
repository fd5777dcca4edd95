package core

import (
	"context"
	"path/filepath"

	"github.com/stripelint/stripelint/internal/engine"
	"github.com/stripelint/stripelint/internal/git"
	"github.com/stripelint/stripelint/internal/linter"
	"github.com/stripelint/stripelint/internal/session"
	"github.com/stripelint/stripelint/internal/types"
)

// Re-export selected internal types as a stable public API surface.
type (
	Config      = engine.Config
	Result      = engine.Result
	Finding     = types.Finding
	Diagnostic  = types.Diagnostic
	Range       = types.Range
	Severity    = types.Severity
	RiskContext = types.RiskContext
	Provider    = git.Provider
)

const (
	SeverityWarning = types.SeverityWarning
	SeverityError   = types.SeverityError
)

// Lint computes the diagnostics for one document using the built-in rules.
// A nil provider means no version control.
func Lint(uri, text string, provider Provider) []Diagnostic {
	res := session.New(nil, provider, nil).Lint(types.Document{URI: uri, Text: text})
	if res.Diagnostics == nil {
		return []Diagnostic{}
	}
	return res.Diagnostics
}

// ShouldScan reports whether a document with this filename is scanned under rc.
func ShouldScan(filename string, rc RiskContext) bool {
	return linter.Default().ShouldScan(filename, rc)
}

// Scan runs the built-in rules over text without consulting version control.
func Scan(text string, rc RiskContext) []Diagnostic {
	return linter.Default().Scan(text, rc)
}

// ClassifyCommitRisk reports whether path is among changedPaths.
func ClassifyCommitRisk(path string, changedPaths []string) bool {
	return linter.ClassifyCommitRisk(path, changedPaths)
}

// Discover returns a provider for the first root inside a git repository,
// or a provider reporting no version control.
func Discover(roots ...string) Provider { return git.Discover(roots...) }

// ScanDir lints every eligible file under cfg.Root with the built-in rules.
func ScanDir(ctx context.Context, cfg Config) (Result, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return Result{}, err
	}
	cfg.Root = root
	sess := session.New(nil, git.Freeze(git.Discover(root)), nil)
	return engine.Run(ctx, cfg, sess)
}
