package core_test

import (
	"fmt"

	"github.com/stripelint/stripelint/pkg/core"
)

// ExampleLint lints one document outside any repository.
func ExampleLint() {
	diags := core.Lint("/tmp/app/config.js", `const k = "sk_test_abcdefghij";`, nil)
	for _, d := range diags {
		fmt.Printf("%d:%d-%d %s\n", d.Range.Line, d.Range.StartCol, d.Range.EndCol, d.Severity)
	}
	// Output: 0:11-29 warning
}
