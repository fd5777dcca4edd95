package cache

import (
	"encoding/json"
	"os"
	"time"

	"github.com/stripelint/stripelint/internal/git"
	"github.com/stripelint/stripelint/internal/report"
	"github.com/stripelint/stripelint/internal/types"
)

// ScanResults stores the findings and metadata from a scan
type ScanResults struct {
	Findings  []types.Finding `json:"findings"`
	Timestamp time.Time       `json:"timestamp"`
	Root      string          `json:"root"`
	Count     int             `json:"count"`
}

func resultsPath(root string) string {
	return git.StatePath(root, "stripelint_last_scan.json")
}

// SaveResults saves scan results to cache. Matches are masked.
func SaveResults(root string, findings []types.Finding) error {
	masked := make([]types.Finding, len(findings))
	for i, f := range findings {
		if f.Match != "" {
			f.Match = report.Mask(f.Match)
		}
		masked[i] = f
	}
	results := ScanResults{
		Findings:  masked,
		Timestamp: time.Now(),
		Root:      root,
		Count:     len(findings),
	}
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(resultsPath(root), b, 0644)
}

// LoadResults loads the last scan results from cache
func LoadResults(root string) (ScanResults, error) {
	var results ScanResults
	f, err := os.ReadFile(resultsPath(root))
	if err != nil {
		return results, err
	}
	if err := json.Unmarshal(f, &results); err != nil {
		return results, err
	}
	return results, nil
}
