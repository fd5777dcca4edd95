package report

import (
	"encoding/json"
	"os"
	"strconv"

	xxhash "github.com/cespare/xxhash/v2"

	"github.com/stripelint/stripelint/internal/types"
)

// DefaultBaselineFile is the baseline path used by the CLI.
const DefaultBaselineFile = "stripelint.baseline.json"

type Baseline struct {
	Items map[string]bool `json:"items"`
}

func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Items: map[string]bool{}}
	f, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	_ = json.Unmarshal(f, &b)
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	return b, nil
}

func SaveBaseline(path string, findings []types.Finding) error {
	b := Baseline{Items: map[string]bool{}}
	for _, f := range findings {
		b.Add(f)
	}
	return b.Save(path)
}

// Add marks f as known.
func (b *Baseline) Add(f types.Finding) {
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	b.Items[Key(f)] = true
}

// Has reports whether f is in the baseline.
func (b Baseline) Has(f types.Finding) bool { return b.Items[Key(f)] }

func (b Baseline) Save(path string) error {
	buf, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}

func FilterNewFindings(findings []types.Finding, base Baseline) []types.Finding {
	var out []types.Finding
	for _, f := range findings {
		if !base.Items[Key(f)] {
			out = append(out, f)
		}
	}
	return out
}

// Key identifies a finding independent of its position, so moving a known
// key within a file does not resurface it. The match enters only as a hash
// because baseline files are committed.
func Key(f types.Finding) string {
	return f.URI + "|" + f.Rule + "|" + strconv.FormatUint(xxhash.Sum64String(f.Match), 16)
}

// ShouldFail reports whether any finding reaches the failOn threshold:
// "warning", "error" or "none". Unknown values behave like "error".
func ShouldFail(findings []types.Finding, failOn string) bool {
	var th int
	switch failOn {
	case "none", "off":
		return false
	case "warning":
		th = types.SeverityWarning.Rank()
	default:
		th = types.SeverityError.Rank()
	}
	for _, f := range findings {
		if f.Severity.Rank() >= th {
			return true
		}
	}
	return false
}
