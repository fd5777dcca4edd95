package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stripelint/stripelint/internal/git"
)

func TestLint_NoVCS(t *testing.T) {
	diags := Lint("/p/config.js", `const k = "sk_test_abcdefghij";`, nil)
	require.Len(t, diags, 1)
	assert.Equal(t, Range{Line: 0, StartCol: 11, EndCol: 29}, diags[0].Range)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
}

func TestLint_VCSIgnoredFile(t *testing.T) {
	p := git.Static{Active: true}
	assert.Empty(t, Lint("/p/config.js", "sk_live_0123456789abcdef", p))
	assert.NotNil(t, Lint("/p/config.js", "sk_live_0123456789abcdef", p))

	p.Paths = []string{"/p/config.js"}
	diags := Lint("/p/config.js", "sk_live_0123456789abcdef", p)
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityError, diags[0].Severity)
}

func TestFacadeHelpers(t *testing.T) {
	assert.False(t, ShouldScan("/p/.env", RiskContext{}))
	assert.True(t, ShouldScan("/p/a.js", RiskContext{}))
	assert.True(t, ClassifyCommitRisk("/a", []string{"/a"}))
	assert.Len(t, Scan("pk_live_0123456789", RiskContext{}), 1)
	assert.False(t, Discover(t.TempDir()).IsActive())
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.js"), []byte("sk_test_abcdefghij\n"), 0o644))
	res, err := ScanDir(context.Background(), Config{Root: dir, MaxBytes: 1 << 20, NoCache: true})
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "a.js", res.Findings[0].URI)
}

func TestMarshalRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out.json")
	f, err := os.Create(p)
	require.NoError(t, err)
	in := []Finding{{URI: "a.js", Diagnostic: Diagnostic{Severity: SeverityError, Rule: "stripe_api_key"}}}
	require.NoError(t, MarshalFindings(f, in))
	require.NoError(t, f.Close())

	r, err := os.Open(p)
	require.NoError(t, err)
	defer r.Close()
	out, err := UnmarshalFindings(r)
	require.NoError(t, err)
	assert.Equal(t, in[0].URI, out[0].URI)
	assert.Equal(t, in[0].Severity, out[0].Severity)
}
