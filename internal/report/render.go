package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/stripelint/stripelint/internal/diagnostics"
	"github.com/stripelint/stripelint/internal/types"
)

type PrintOptions struct {
	NoColor      bool
	Duration     time.Duration
	FilesScanned int
	FilesSkipped int
	// ShowMessage adds the diagnostic message under each text row.
	ShowMessage bool
}

// PrintTable renders findings in a bordered table followed by a summary.
func PrintTable(w io.Writer, findings []types.Finding, opts PrintOptions) {
	diagnostics.SortFindings(findings)
	if len(findings) == 0 {
		fmt.Fprintln(w, "No Stripe keys found ✅")
	} else {
		table := tablewriter.NewWriter(w)
		table.Header("Severity", "Rule", "Location", "Match")
		for _, f := range findings {
			_ = table.Append([]string{
				severityLabel(f.Severity, opts.NoColor),
				f.Rule,
				location(f),
				Mask(f.Match),
			})
		}
		_ = table.Render()
	}
	printSummary(w, findings, opts)
}

// PrintText renders one finding per line in a compiler-style layout:
// path:line:col: severity: rule match.
func PrintText(w io.Writer, findings []types.Finding, opts PrintOptions) {
	diagnostics.SortFindings(findings)
	if len(findings) == 0 {
		fmt.Fprintln(w, "No Stripe keys found ✅")
	} else {
		fmt.Fprintf(w, "Findings: %d\n", len(findings))
		for _, f := range findings {
			fmt.Fprintf(w, "%s: %s: %s %s\n", location(f), severityLabel(f.Severity, opts.NoColor), f.Rule, Mask(f.Match))
			if opts.ShowMessage && f.Message != "" {
				fmt.Fprintf(w, "    %s\n", f.Message)
			}
		}
	}
	printSummary(w, findings, opts)
}

// WriteJSON writes findings as an indented JSON array, never null.
func WriteJSON(w io.Writer, findings []types.Finding) error {
	if findings == nil {
		findings = []types.Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(findings)
}

// Counts tallies findings by severity.
func Counts(findings []types.Finding) (errs, warns int) {
	for _, f := range findings {
		switch f.Severity {
		case types.SeverityError:
			errs++
		default:
			warns++
		}
	}
	return errs, warns
}

func printSummary(w io.Writer, findings []types.Finding, opts PrintOptions) {
	if opts.Duration <= 0 && opts.FilesScanned <= 0 {
		return
	}
	errs, warns := Counts(findings)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Findings: %d (errors: %d, warnings: %d)\n", len(findings), errs, warns)
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
	if opts.FilesScanned > 0 {
		fmt.Fprintf(w, "Files scanned: %d\n", opts.FilesScanned)
	}
	if opts.FilesSkipped > 0 {
		fmt.Fprintf(w, "Files skipped (ignored or not at risk): %d\n", opts.FilesSkipped)
	}
}

// location formats 1-based line and column like compilers do.
func location(f types.Finding) string {
	return fmt.Sprintf("%s:%d:%d", f.URI, f.Range.Line+1, f.Range.StartCol+1)
}

// Mask hides the body of a key, keeping its class prefix and last four
// characters.
func Mask(s string) string {
	if len(s) <= 12 {
		return "********"
	}
	// keep the key prefix visible, it names the key class
	cut := strings.LastIndex(s[:12], "_") + 1
	if cut <= 0 {
		cut = 4
	}
	return s[:cut] + "…" + s[len(s)-4:]
}

func severityLabel(s types.Severity, noColor bool) string {
	if noColor {
		return string(s)
	}
	switch s {
	case types.SeverityError:
		return "\x1b[31merror\x1b[0m" // red
	default:
		return "\x1b[33mwarning\x1b[0m" // yellow
	}
}
