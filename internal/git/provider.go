package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"github.com/stripelint/stripelint/internal/linter"
	"github.com/stripelint/stripelint/internal/types"
)

// Provider is the version-control capability the linter depends on.
type Provider interface {
	IsActive() bool
	// ChangedPaths lists absolute paths with uncommitted working-tree
	// changes, untracked files included and ignored files excluded.
	ChangedPaths() []string
}

// None is the provider for workspaces without version control.
type None struct{}

func (None) IsActive() bool         { return false }
func (None) ChangedPaths() []string { return nil }

// Static is a fixed snapshot of a provider's answers.
type Static struct {
	Active bool
	Paths  []string
}

func (s Static) IsActive() bool         { return s.Active }
func (s Static) ChangedPaths() []string { return s.Paths }

// Freeze captures the provider's current state so a batch of files can be
// classified against one status read. A nil provider freezes to None.
func Freeze(p Provider) Static {
	if p == nil || !p.IsActive() {
		return Static{}
	}
	return Static{Active: true, Paths: p.ChangedPaths()}
}

// Risk computes the risk context for path. A nil or inactive provider yields
// the no-version-control context.
func Risk(p Provider, path string) types.RiskContext {
	if p == nil || !p.IsActive() {
		return types.RiskContext{}
	}
	return types.RiskContext{
		VCSActive:  true,
		CommitRisk: linter.ClassifyCommitRisk(path, p.ChangedPaths()),
	}
}

// Repo is a Provider backed by a repository on disk.
type Repo struct {
	repo *gogit.Repository
	root string
}

// Open opens the repository containing dir, searching parent directories.
func Open(dir string) (*Repo, error) {
	validDir, err := validateRoot(dir)
	if err != nil {
		return nil, err
	}
	r, err := gogit.PlainOpenWithOptions(validDir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", validDir, err)
	}
	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree for %s: %w", validDir, err)
	}
	return &Repo{repo: r, root: wt.Filesystem.Root()}, nil
}

// Root is the worktree root.
func (r *Repo) Root() string { return r.root }

func (r *Repo) IsActive() bool { return r != nil && r.repo != nil }

// ChangedPaths reads the worktree status. Read failures yield no paths, which
// makes every file look committed-clean rather than failing the scan.
func (r *Repo) ChangedPaths() []string {
	if !r.IsActive() {
		return nil
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil
	}
	st, err := wt.Status()
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(st))
	for p, fs := range st {
		if fs.Worktree == gogit.Unmodified && fs.Staging == gogit.Unmodified {
			continue
		}
		out = append(out, filepath.Join(r.root, filepath.FromSlash(p)))
	}
	sort.Strings(out)
	return out
}

// Discover opens the first root that is inside a repository. Later roots are
// not consulted once one resolves, and None is returned when none do.
func Discover(roots ...string) Provider {
	for _, root := range roots {
		if r, err := Open(root); err == nil {
			return r
		}
	}
	return None{}
}

// validateRoot validates and normalizes a repository search path.
func validateRoot(root string) (string, error) {
	if strings.ContainsRune(root, 0) {
		return "", errors.New("invalid path: contains null byte")
	}
	abs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access path %q: %w", root, err)
	}
	if !info.IsDir() {
		abs = filepath.Dir(abs)
	}
	return abs, nil
}
