// Package cache persists per-document scan results between runs so unchanged
// documents are not rescanned, and keeps the last scan for later viewing.
package cache

import (
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"strings"

	xxhash "github.com/cespare/xxhash/v2"

	"github.com/stripelint/stripelint/internal/git"
	"github.com/stripelint/stripelint/internal/types"
)

// Entry is the cached outcome for one document. Diagnostics are stored
// without their matched text so the cache never holds a key.
type Entry struct {
	Key         string             `json:"key"`
	Diagnostics []types.Diagnostic `json:"diagnostics"`
	// Skipped records that the linter declined to scan the document.
	Skipped bool `json:"skipped,omitempty"`
}

// DB maps a document path relative to the scan root to its cached entry.
type DB struct {
	// Signature identifies the rule table and messages the entries were
	// produced with; a mismatch invalidates the whole DB.
	Signature string           `json:"signature"`
	Entries   map[string]Entry `json:"entries"`
}

// defaultPath keeps the cache in the repository's git directory, even when
// root is a subdirectory, so it cannot be committed.
func defaultPath(root string) string {
	return git.StatePath(root, "stripelintcache.json")
}

// Load reads the cache for root. On any failure an empty DB is returned
// together with the error.
func Load(root string) (DB, error) {
	var db DB
	f, err := os.ReadFile(defaultPath(root))
	if err != nil {
		return DB{Entries: map[string]Entry{}}, err
	}
	if err := json.Unmarshal(f, &db); err != nil {
		return DB{Entries: map[string]Entry{}}, err
	}
	if db.Entries == nil {
		db.Entries = map[string]Entry{}
	}
	return db, nil
}

// Save writes the cache for root.
func Save(root string, db DB) error {
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	b, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(defaultPath(root), b, 0644)
}

// Lookup returns the cached entry for rel when key matches. The returned
// entry never carries nil diagnostics.
func (db DB) Lookup(rel, key string) (Entry, bool) {
	e, ok := db.Entries[rel]
	if !ok || e.Key != key {
		return Entry{}, false
	}
	if e.Diagnostics == nil {
		e.Diagnostics = []types.Diagnostic{}
	}
	return e, true
}

// NewEntry builds an entry for diags with every Match cleared.
func NewEntry(key string, diags []types.Diagnostic, skipped bool) Entry {
	stored := make([]types.Diagnostic, len(diags))
	for i, d := range diags {
		d.Match = ""
		stored[i] = d
	}
	return Entry{Key: key, Diagnostics: stored, Skipped: skipped}
}

// Restore returns the entry's diagnostics with Match read back from text,
// which must be the document the entry's key was computed from.
func (e Entry) Restore(text []byte) []types.Diagnostic {
	out := make([]types.Diagnostic, len(e.Diagnostics))
	if len(e.Diagnostics) == 0 {
		return out
	}
	lines := strings.Split(string(text), "\n")
	for i, d := range e.Diagnostics {
		if d.Range.Line < len(lines) {
			runes := []rune(lines[d.Range.Line])
			if d.Range.StartCol >= 0 && d.Range.StartCol <= d.Range.EndCol && d.Range.EndCol <= len(runes) {
				d.Match = string(runes[d.Range.StartCol:d.Range.EndCol])
			}
		}
		out[i] = d
	}
	return out
}

// Key derives a cache key from document text and its risk context. Both
// inputs determine the diagnostics, so both go into the key.
func Key(text []byte, rc types.RiskContext) string {
	d := xxhash.New()
	_, _ = d.Write(text)
	flags := []byte{'0', '0'}
	if rc.VCSActive {
		flags[0] = '1'
	}
	if rc.CommitRisk {
		flags[1] = '1'
	}
	_, _ = d.Write(flags)
	return hex(d.Sum64())
}

// Signature hashes configuration parts into a stable identifier.
func Signature(parts ...string) string {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(strconv.Itoa(len(p)))
		_, _ = d.WriteString(":")
		_, _ = d.WriteString(p)
	}
	return hex(d.Sum64())
}

func hex(sum uint64) string {
	var buf [16]byte
	const digits = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = digits[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}
