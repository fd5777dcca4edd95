// Package audit appends one JSON line per scan so a repository's exposure
// history can be reviewed later with "stripelint history". Records carry
// counts and locations only, never key text.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/stripelint/stripelint/internal/git"
	"github.com/stripelint/stripelint/internal/report"
	"github.com/stripelint/stripelint/internal/types"
)

// FileName is the log's name inside the repository's git directory.
const FileName = "stripelint_audit.jsonl"

// maxTop bounds the locations kept per record.
const maxTop = 10

// Record summarises one scan.
type Record struct {
	ID        string     `json:"id"`
	Time      time.Time  `json:"time"`
	Root      string     `json:"root"`
	Errors    int        `json:"errors"`
	Warnings  int        `json:"warnings"`
	New       int        `json:"new"`
	Baselined int        `json:"baselined"`
	Scanned   int        `json:"files_scanned"`
	Skipped   int        `json:"files_skipped"`
	Duration  string     `json:"duration"`
	Baseline  string     `json:"baseline,omitempty"`
	Locations []Location `json:"locations,omitempty"`
}

// Location points at a new finding without its match.
type Location struct {
	URI      string         `json:"uri"`
	Line     int            `json:"line"`
	Rule     string         `json:"rule"`
	Severity types.Severity `json:"severity"`
}

// Stats carries the scan counters recorded alongside findings.
type Stats struct {
	FilesScanned int
	FilesSkipped int
	Duration     time.Duration
}

// NewRecord builds the record for a scan. fresh is the subset of all not
// covered by the baseline.
func NewRecord(root string, all, fresh []types.Finding, stats Stats, baseline string) Record {
	errs, warns := report.Counts(all)
	rec := Record{
		ID:        "scan_" + strconv.FormatInt(time.Now().UnixNano(), 36),
		Time:      time.Now().UTC(),
		Root:      root,
		Errors:    errs,
		Warnings:  warns,
		New:       len(fresh),
		Baselined: len(all) - len(fresh),
		Scanned:   stats.FilesScanned,
		Skipped:   stats.FilesSkipped,
		Duration:  stats.Duration.Round(time.Millisecond).String(),
		Baseline:  baseline,
	}
	for _, f := range fresh {
		if len(rec.Locations) == maxTop {
			break
		}
		rec.Locations = append(rec.Locations, Location{URI: f.URI, Line: f.Range.Line + 1, Rule: f.Rule, Severity: f.Severity})
	}
	return rec
}

// Log is an append-only JSONL file.
type Log struct {
	path string
}

// Open returns the log for root. It lives in the repository's git directory
// when there is one so it is never committed.
func Open(root string) *Log {
	return &Log{path: git.StatePath(root, FileName)}
}

// Path is the file records are appended to.
func (l *Log) Path() string { return l.path }

// Append writes rec as one line.
func (l *Log) Append(rec Record) error {
	// owner-only: records name files that held keys
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(rec); err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}
	return nil
}

// Recent returns up to n records, newest first. n <= 0 returns all. A
// missing log is an empty history; reading stops at the first corrupt line.
func (l *Log) Recent(n int) ([]Record, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var recs []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4<<20)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			break
		}
		recs = append(recs, r)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	out := make([]Record, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		if n > 0 && len(out) == n {
			break
		}
		out = append(out, recs[i])
	}
	return out, nil
}
