// Package rules holds the declarative key pattern table used by the linter.
// Each rule pairs a regular expression with a severity rule, so new key
// shapes can be added from configuration without touching the scanner.
package rules
