// Package stripelint provides the command-line interface for stripelint.
// It wires the linter, git provider, session and reporters into subcommands
// (scan, lint, watch, rules, baseline, config, update), parses flags, and
// executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/stripelint/stripelint/cmd/stripelint"
//	func main() { stripelint.Execute() }
package stripelint
