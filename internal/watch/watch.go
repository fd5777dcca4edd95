// Package watch turns filesystem notifications under a root directory into
// document events on a session: writes and creates re-lint the file, removes
// and renames close it.
package watch

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/stripelint/stripelint/internal/engine"
	"github.com/stripelint/stripelint/internal/session"
	"github.com/stripelint/stripelint/internal/types"
)

// Event reports a visible change to one document's diagnostics.
type Event struct {
	// Rel is the slash-separated path relative to the watched root.
	Rel    string
	Result session.Result
	// Closed is set when the document was removed or stopped qualifying.
	Closed bool
}

// Watcher feeds a session from fsnotify. Create it with New and drive it
// with Run.
type Watcher struct {
	root     string
	cfg      engine.Config
	filter   engine.Filter
	sess     *session.Session
	fsw      *fsnotify.Watcher
	onChange func(Event)
	log      *slog.Logger
}

// Options customises a Watcher.
type Options struct {
	// OnChange receives events whose published diagnostics changed. It is
	// called from the Run goroutine.
	OnChange func(Event)
	Logger   *slog.Logger
}

// New registers watches on cfg.Root and every directory the filters accept.
// Files are not linted until they change.
func New(cfg engine.Config, sess *session.Session, opts Options) (*Watcher, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, err
	}
	cfg.Root = root
	if sess == nil {
		sess = session.New(nil, nil, nil)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root:     root,
		cfg:      cfg,
		filter:   engine.NewFilter(cfg),
		sess:     sess,
		fsw:      fsw,
		onChange: opts.OnChange,
		log:      opts.Logger,
	}
	if w.onChange == nil {
		w.onChange = func(Event) {}
	}
	if w.log == nil {
		w.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close releases the underlying watches. Run closes them on return.
func (w *Watcher) Close() error { return w.fsw.Close() }

// Run processes notifications until ctx is done or the watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.log.Debug("watch overflow", "err", err)
				continue
			}
			return err
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	rel, ok := w.rel(ev.Name)
	if !ok {
		return
	}
	w.log.Debug("fs event", "path", rel, "op", ev.Op.String())
	switch {
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		w.close(ev.Name, rel)
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		info, err := os.Stat(ev.Name)
		if err != nil {
			w.close(ev.Name, rel)
			return
		}
		if info.IsDir() {
			if ev.Has(fsnotify.Create) {
				_ = w.addTree(ev.Name)
			}
			return
		}
		w.save(ev.Name, rel, info.Size())
	}
}

func (w *Watcher) save(abs, rel string, size int64) {
	if !w.filter.Path(rel, size) {
		w.close(abs, rel)
		return
	}
	b, err := os.ReadFile(abs)
	if err != nil || !w.filter.Content(rel, b) {
		w.close(abs, rel)
		return
	}
	res := w.sess.DidSave(types.Document{URI: abs, Text: string(b)})
	if res.Changed {
		w.onChange(Event{Rel: rel, Result: res})
	}
}

func (w *Watcher) close(abs, rel string) {
	if _, ok := w.sess.Collection().Get(abs); !ok {
		return
	}
	w.sess.DidClose(abs)
	w.onChange(Event{Rel: rel, Result: session.Result{URI: abs, Diagnostics: []types.Diagnostic{}}, Closed: true})
}

func (w *Watcher) rel(abs string) (string, bool) {
	rel, err := filepath.Rel(w.root, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if p != w.root {
			if rel, ok := w.rel(p); !ok || !w.filter.Dir(rel) {
				return filepath.SkipDir
			}
		}
		if err := w.fsw.Add(p); err != nil {
			return err
		}
		return nil
	})
}
