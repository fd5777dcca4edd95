// Package report renders diagnostics as tables, plain text, JSON or SARIF and
// handles baselines and exit-code policy.
package report
