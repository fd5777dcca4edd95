package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stripelint/stripelint/internal/git"
	"github.com/stripelint/stripelint/internal/types"
)

func TestWriteSARIF_Regions(t *testing.T) {
	fs := []types.Finding{
		finding("src/app.js", 4, 11, "sk_test_abcdefghij", types.SeverityWarning),
		finding("src/app.js", 5, 0, "sk_live_ABCDEFGHIJ", types.SeverityError),
		{URI: "x.txt", Diagnostic: types.Diagnostic{Rule: "custom", Severity: types.SeverityWarning}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, fs, SARIFOptions{
		ToolVersion: "1.2.3",
		Metadata:    git.Metadata{Repo: "acme/shop", Commit: "abc", Branch: "main"},
	}))

	var doc struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Version string `json:"version"`
					Rules   []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				RuleIndex int    `json:"ruleIndex"`
				Level     string `json:"level"`
				Locations []struct {
					PhysicalLocation struct {
						Region struct {
							StartLine   int `json:"startLine"`
							StartColumn int `json:"startColumn"`
							EndColumn   int `json:"endColumn"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
			Provenance []struct {
				RepositoryURI string `json:"repositoryUri"`
			} `json:"versionControlProvenance"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)
	run := doc.Runs[0]
	assert.Equal(t, "1.2.3", run.Tool.Driver.Version)
	require.Len(t, run.Tool.Driver.Rules, 2)
	assert.Equal(t, "custom", run.Tool.Driver.Rules[1].ID)

	require.Len(t, run.Results, 3)
	r0 := run.Results[0].Locations[0].PhysicalLocation.Region
	assert.Equal(t, 5, r0.StartLine)
	assert.Equal(t, 12, r0.StartColumn)
	assert.Equal(t, 30, r0.EndColumn)
	assert.Equal(t, "warning", run.Results[0].Level)
	assert.Equal(t, "error", run.Results[1].Level)
	assert.Equal(t, 1, run.Results[2].RuleIndex)
	require.Len(t, run.Provenance, 1)
	assert.Equal(t, "acme/shop", run.Provenance[0].RepositoryURI)
}

func TestWriteSARIF_EmptyResultsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, nil, SARIFOptions{}))
	assert.Contains(t, buf.String(), `"results": []`)
	assert.NotContains(t, buf.String(), "versionControlProvenance")
}
