package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/stripelint/stripelint/internal/cache"
	"github.com/stripelint/stripelint/internal/diagnostics"
	"github.com/stripelint/stripelint/internal/ignore"
	"github.com/stripelint/stripelint/internal/linter"
	"github.com/stripelint/stripelint/internal/session"
	"github.com/stripelint/stripelint/internal/types"
)

// Config controls scanning behavior including scope, performance, and filters.
type Config struct {
	Root            string
	IncludeGlobs    string
	ExcludeGlobs    string
	MaxBytes        int64
	Threads         int
	DefaultExcludes bool
	NoCache         bool
	DryRun          bool
	// Progress is called once per visited file. Calls are serialized.
	Progress func()
}

// Result contains findings and basic scan statistics.
type Result struct {
	// Findings carry URIs relative to the scan root in slash form.
	Findings     []types.Finding
	FilesScanned int
	FilesSkipped int
	CacheHits    int
	Duration     time.Duration
}

type job struct {
	rel  string
	data []byte
}

// Run walks cfg.Root and opens every eligible file in sess. Each document is
// published to the session's collection under its absolute path; the
// returned findings use root-relative paths.
func Run(ctx context.Context, cfg Config, sess *session.Session) (Result, error) {
	var result Result
	if ctx == nil {
		ctx = context.Background()
	}
	if sess == nil {
		sess = session.New(nil, nil, nil)
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return result, fmt.Errorf("resolve root: %w", err)
	}
	cfg.Root = root
	if cfg.Threads <= 0 {
		cfg.Threads = runtime.GOMAXPROCS(0)
	}

	sig := Signature(sess.Linter())
	db := cache.DB{Entries: map[string]cache.Entry{}}
	if !cfg.NoCache {
		if loaded, err := cache.Load(root); err == nil && loaded.Signature == sig {
			db = loaded
		}
	}
	db.Signature = sig

	ign, _ := ignore.Load(filepath.Join(root, ignore.FileName))
	started := time.Now()

	var (
		mu      sync.Mutex
		updated = map[string]cache.Entry{}
		out     []types.Finding
		wg      sync.WaitGroup
	)
	jobs := make(chan job, cfg.Threads*4)

	record := func(rel string, res session.Result, key string, hit bool) {
		mu.Lock()
		defer mu.Unlock()
		if res.Scanned {
			result.FilesScanned++
		} else {
			result.FilesSkipped++
		}
		if hit {
			result.CacheHits++
		} else if key != "" {
			updated[rel] = cache.NewEntry(key, res.Diagnostics, !res.Scanned)
		}
		for _, d := range res.Diagnostics {
			out = append(out, types.Finding{URI: rel, Diagnostic: d})
		}
		if cfg.Progress != nil {
			cfg.Progress()
		}
	}

	for i := 0; i < cfg.Threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				abs := filepath.Join(root, filepath.FromSlash(j.rel))
				if cfg.DryRun {
					record(j.rel, session.Result{URI: abs, Scanned: true}, "", false)
					continue
				}
				rc := sess.Risk(abs)
				key := cache.Key(j.data, rc)
				if !cfg.NoCache {
					if e, ok := db.Lookup(j.rel, key); ok {
						res := sess.Restore(session.Result{URI: abs, Diagnostics: e.Restore(j.data), Risk: rc, Scanned: !e.Skipped})
						record(j.rel, res, key, true)
						continue
					}
				}
				res := sess.Lint(types.Document{URI: abs, Text: string(j.data)})
				record(j.rel, res, key, false)
			}
		}()
	}

	walkErr := Walk(ctx, cfg, ign, func(rel string, data []byte) {
		select {
		case jobs <- job{rel: rel, data: data}:
		case <-ctx.Done():
		}
	})
	close(jobs)
	wg.Wait()

	diagnostics.SortFindings(out)
	if out == nil {
		out = []types.Finding{}
	}
	result.Findings = out
	result.Duration = time.Since(started)
	if walkErr != nil {
		return result, walkErr
	}

	if !cfg.NoCache && !cfg.DryRun && len(updated) > 0 {
		for k, v := range updated {
			db.Entries[k] = v
		}
		_ = cache.Save(root, db)
	}
	return result, nil
}

// Signature identifies the linter configuration that produced cached
// results: rule table, filename denylist, messages and inline suppression.
func Signature(l *linter.Linter) string {
	if l == nil {
		l = linter.Default()
	}
	var parts []string
	for _, r := range l.Rules() {
		parts = append(parts, r.ID, r.Pattern, r.ErrorWhen)
	}
	parts = append(parts, "ignore")
	parts = append(parts, l.Ignore()...)
	m := l.Messages()
	parts = append(parts, m.VCS, m.NoVCS, fmt.Sprint("inline=", l.InlineSuppression()))
	return cache.Signature(parts...)
}
