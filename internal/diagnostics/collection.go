// Package diagnostics owns the published diagnostic sets, one per document.
package diagnostics

import (
	"sort"
	"strconv"
	"sync"

	xxhash "github.com/cespare/xxhash/v2"

	"github.com/stripelint/stripelint/internal/types"
)

type entry struct {
	diags []types.Diagnostic
	sum   uint64
}

// Collection maps document URIs to their current diagnostics. Publish
// replaces an entry wholesale; sets are never merged.
type Collection struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{entries: map[string]entry{}}
}

// Publish replaces the diagnostics for uri and reports whether the visible
// set changed. Publishing an empty set keeps the document registered with no
// diagnostics.
func (c *Collection) Publish(uri string, diags []types.Diagnostic) bool {
	cp := make([]types.Diagnostic, len(diags))
	copy(cp, diags)
	sum := Fingerprint(cp)

	c.mu.Lock()
	defer c.mu.Unlock()
	prev, ok := c.entries[uri]
	c.entries[uri] = entry{diags: cp, sum: sum}
	return !ok || prev.sum != sum
}

// Get returns a copy of the diagnostics for uri.
func (c *Collection) Get(uri string) ([]types.Diagnostic, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[uri]
	if !ok {
		return nil, false
	}
	out := make([]types.Diagnostic, len(e.diags))
	copy(out, e.diags)
	return out, true
}

// Delete drops uri, as when its document is closed.
func (c *Collection) Delete(uri string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[uri]
	delete(c.entries, uri)
	return ok
}

// Clear removes every entry.
func (c *Collection) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]entry{}
}

// Len is the number of registered documents.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// URIs lists registered documents in sorted order.
func (c *Collection) URIs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.entries))
	for uri := range c.entries {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}

// All flattens the collection into findings sorted by URI, line and column.
func (c *Collection) All() []types.Finding {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []types.Finding
	for uri, e := range c.entries {
		for _, d := range e.diags {
			out = append(out, types.Finding{URI: uri, Diagnostic: d})
		}
	}
	SortFindings(out)
	return out
}

// SortFindings orders findings by URI, then line, then start column.
func SortFindings(fs []types.Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.URI != b.URI {
			return a.URI < b.URI
		}
		if a.Range.Line != b.Range.Line {
			return a.Range.Line < b.Range.Line
		}
		return a.Range.StartCol < b.Range.StartCol
	})
}

// Fingerprint hashes a diagnostic set. Equal sets in equal order hash equal.
func Fingerprint(diags []types.Diagnostic) uint64 {
	d := xxhash.New()
	var buf []byte
	for _, dg := range diags {
		buf = buf[:0]
		buf = strconv.AppendInt(buf, int64(dg.Range.Line), 10)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, int64(dg.Range.StartCol), 10)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, int64(dg.Range.EndCol), 10)
		buf = append(buf, '|')
		buf = append(buf, string(dg.Severity)...)
		buf = append(buf, '|')
		buf = append(buf, dg.Rule...)
		buf = append(buf, '|')
		buf = append(buf, dg.Match...)
		buf = append(buf, '|')
		buf = append(buf, dg.Message...)
		buf = append(buf, 0)
		_, _ = d.Write(buf)
	}
	return d.Sum64()
}
