// Package core provides a small, stable facade over stripelint's internal
// packages for editor plugins and other programs that embed the linter.
//
// Example:
//
//	diags := core.Lint("/src/app/config.js", text, core.Discover("/src/app"))
//	for _, d := range diags {
//		fmt.Println(d.Range.Line, d.Range.StartCol, d.Severity, d.Message)
//	}
package core
