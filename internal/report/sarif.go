package report

import (
	"encoding/json"
	"io"

	"github.com/stripelint/stripelint/internal/git"
	"github.com/stripelint/stripelint/internal/rules"
	"github.com/stripelint/stripelint/internal/types"
)

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool       sarifTool         `json:"tool"`
	Results    []sarifResult     `json:"results"`
	Provenance []sarifProvenance `json:"versionControlProvenance,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID    string       `json:"ruleId"`
	RuleIndex int          `json:"ruleIndex"`
	Level     string       `json:"level"`
	Message   sarifMessage `json:"message"`
	Locations []sarifLoc   `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt    `json:"artifactLocation"`
	Region           sarifRegion `json:"region"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndColumn   int `json:"endColumn"`
}

type sarifProvenance struct {
	RepositoryURI string `json:"repositoryUri"`
	RevisionID    string `json:"revisionId,omitempty"`
	Branch        string `json:"branch,omitempty"`
}

// SARIFOptions carries run-level details for WriteSARIF.
type SARIFOptions struct {
	ToolVersion string
	Rules       rules.Table
	Metadata    git.Metadata
}

func sevToLevel(s types.Severity) string {
	switch s {
	case types.SeverityError:
		return "error"
	default:
		return "warning"
	}
}

// WriteSARIF writes findings as SARIF 2.1.0. Lines and columns are 1-based
// and endColumn is exclusive, as SARIF defines them.
func WriteSARIF(w io.Writer, findings []types.Finding, opts SARIFOptions) error {
	tbl := opts.Rules
	if len(tbl) == 0 {
		tbl = rules.Default()
	}
	driver := sarifDriver{
		Name:           "stripelint",
		Version:        opts.ToolVersion,
		InformationURI: "https://stripe.com/docs/keys#safe-keys",
	}
	index := map[string]int{}
	for i, r := range tbl {
		desc := r.Description
		if desc == "" {
			desc = r.ID
		}
		driver.Rules = append(driver.Rules, sarifRule{ID: r.ID, ShortDescription: sarifMessage{Text: desc}})
		index[r.ID] = i
	}
	run := sarifRun{Tool: sarifTool{Driver: driver}, Results: []sarifResult{}}
	for _, f := range findings {
		idx, ok := index[f.Rule]
		if !ok {
			// rule no longer configured; still report it
			idx = len(run.Tool.Driver.Rules)
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{ID: f.Rule, ShortDescription: sarifMessage{Text: f.Rule}})
			index[f.Rule] = idx
		}
		run.Results = append(run.Results, sarifResult{
			RuleID:    f.Rule,
			RuleIndex: idx,
			Level:     sevToLevel(f.Severity),
			Message:   sarifMessage{Text: f.Message},
			Locations: []sarifLoc{{
				PhysicalLocation: sarifPhys{
					ArtifactLocation: sarifArt{URI: f.URI},
					Region: sarifRegion{
						StartLine:   f.Range.Line + 1,
						StartColumn: f.Range.StartCol + 1,
						EndColumn:   f.Range.EndCol + 1,
					},
				},
			}},
		})
	}
	if md := opts.Metadata; md.Repo != "" {
		run.Provenance = []sarifProvenance{{RepositoryURI: md.Repo, RevisionID: md.Commit, Branch: md.Branch}}
	}
	doc := sarif{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs:    []sarifRun{run},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
