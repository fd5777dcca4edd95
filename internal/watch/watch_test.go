package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stripelint/stripelint/internal/engine"
	"github.com/stripelint/stripelint/internal/session"
)

func startWatcher(t *testing.T, dir string) (*session.Session, <-chan Event) {
	t.Helper()
	events := make(chan Event, 64)
	sess := session.New(nil, nil, nil)
	cfg := engine.Config{Root: dir, MaxBytes: 1 << 20, DefaultExcludes: true}
	w, err := New(cfg, sess, Options{OnChange: func(e Event) { events <- e }})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return sess, events
}

func waitFor(t *testing.T, events <-chan Event, cond func(Event) bool) Event {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e := <-events:
			if cond(e) {
				return e
			}
		case <-timeout:
			t.Fatal("timed out waiting for watch event")
			return Event{}
		}
	}
}

func TestWatcher_SaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	sess, events := startWatcher(t, dir)

	p := filepath.Join(dir, "config.js")
	require.NoError(t, os.WriteFile(p, []byte("const k = \"sk_test_abcdefghij\";\n"), 0o644))
	e := waitFor(t, events, func(e Event) bool { return len(e.Result.Diagnostics) == 1 })
	require.Equal(t, "config.js", e.Rel)
	require.Equal(t, 11, e.Result.Diagnostics[0].Range.StartCol)

	require.NoError(t, os.Remove(p))
	e = waitFor(t, events, func(e Event) bool { return e.Closed })
	require.Equal(t, "config.js", e.Rel)
	_, ok := sess.Collection().Get(e.Result.URI)
	require.False(t, ok)
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	_, events := startWatcher(t, dir)

	sub := filepath.Join(dir, "pkg", "api")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	// give the watcher a moment to register the new directories
	deadline := time.Now().Add(5 * time.Second)
	var got Event
	for time.Now().Before(deadline) {
		require.NoError(t, os.WriteFile(filepath.Join(sub, "keys.go"), []byte("// sk_live_0123456789abcdef\n"), 0o644))
		select {
		case got = <-events:
		case <-time.After(200 * time.Millisecond):
			continue
		}
		if len(got.Result.Diagnostics) == 1 {
			break
		}
	}
	require.Equal(t, "pkg/api/keys.go", got.Rel)
	require.Len(t, got.Result.Diagnostics, 1)
}

func TestWatcher_IgnoresExcludedDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules"), 0o755))
	_, events := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", "x.js"), []byte("sk_test_abcdefghij"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("sk_test_abcdefghij"), 0o644))
	e := waitFor(t, events, func(e Event) bool { return len(e.Result.Diagnostics) == 1 })
	require.Equal(t, "marker.txt", e.Rel)
}
