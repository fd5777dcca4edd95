package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stripelint/stripelint/internal/types"
)

func finding(uri string, line, col int, match string, sev types.Severity) types.Finding {
	return types.Finding{URI: uri, Diagnostic: types.Diagnostic{
		Range:    types.Range{Line: line, StartCol: col, EndCol: col + len(match)},
		Severity: sev,
		Message:  "keep keys safe",
		Rule:     "stripe_api_key",
		Match:    match,
	}}
}

func TestPrintText_NoFindings_ShowsFooter(t *testing.T) {
	var buf bytes.Buffer
	PrintText(&buf, nil, PrintOptions{Duration: 1200 * time.Millisecond, FilesScanned: 10})
	out := buf.String()
	if !strings.Contains(out, "No Stripe keys found") {
		t.Fatalf("expected friendly no-findings message; got: %q", out)
	}
	if !strings.Contains(out, "Files scanned: 10") {
		t.Fatalf("expected footer with files scanned; got: %q", out)
	}
}

func TestPrintText_WithFindings(t *testing.T) {
	var buf bytes.Buffer
	fs := []types.Finding{finding("a.go", 0, 11, "sk_test_abcdefghij", types.SeverityWarning)}
	PrintText(&buf, fs, PrintOptions{NoColor: true, ShowMessage: true})
	out := buf.String()
	if !strings.Contains(out, "Findings: 1") {
		t.Fatalf("expected findings header; got: %q", out)
	}
	if !strings.Contains(out, "a.go:1:12: warning: stripe_api_key sk_test_…ghij") {
		t.Fatalf("expected compiler-style row; got: %q", out)
	}
	if strings.Contains(out, "abcdefghij") {
		t.Fatalf("secret should be masked; got: %q", out)
	}
	if !strings.Contains(out, "keep keys safe") {
		t.Fatalf("expected message line; got: %q", out)
	}
}

func TestPrintTable_WithFindings(t *testing.T) {
	var buf bytes.Buffer
	fs := []types.Finding{finding("a.go", 2, 0, "sk_live_ABCDEFGHIJ1234", types.SeverityError)}
	PrintTable(&buf, fs, PrintOptions{NoColor: true})
	out := buf.String()
	if !strings.Contains(out, "SEVERITY") {
		t.Fatalf("expected table header with SEVERITY; got: %q", out)
	}
	if !strings.Contains(out, "stripe_api_key") {
		t.Fatalf("expected rule in table; got: %q", out)
	}
	if !strings.Contains(out, "a.go:3:1") {
		t.Fatalf("expected 1-based location; got: %q", out)
	}
}

func TestPrintTable_NoFindings_ShowsFooter(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, nil, PrintOptions{Duration: 1200 * time.Millisecond, FilesScanned: 10, FilesSkipped: 2})
	out := buf.String()
	if !strings.Contains(out, "No Stripe keys found") {
		t.Fatalf("expected friendly no-findings message; got: %q", out)
	}
	if !strings.Contains(out, "Files skipped (ignored or not at risk): 2") {
		t.Fatalf("expected skipped count; got: %q", out)
	}
}

func TestWriteJSON_NeverNull(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Fatalf("expected empty array, got %q", buf.String())
	}

	buf.Reset()
	if err := WriteJSON(&buf, []types.Finding{finding("a.go", 0, 1, "pk_test_0123456789", types.SeverityWarning)}); err != nil {
		t.Fatal(err)
	}
	var arr []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &arr); err != nil {
		t.Fatal(err)
	}
	if arr[0]["uri"] != "a.go" || arr[0]["severity"] != "warning" {
		t.Fatalf("unexpected JSON shape: %#v", arr[0])
	}
	if _, ok := arr[0]["range"].(map[string]any); !ok {
		t.Fatalf("expected nested range: %#v", arr[0])
	}
}

func TestMaskValue(t *testing.T) {
	cases := map[string]string{
		"short":                  "********",
		"sk_live_ABCDEFGHIJ1234": "sk_live_…1234",
		"pk_test_0123456789":     "pk_test_…6789",
	}
	for in, want := range cases {
		if got := Mask(in); got != want {
			t.Fatalf("Mask(%q)=%q want %q", in, got, want)
		}
	}
}
