// Package engine runs the linter over a directory tree. It walks the tree
// with the configured filters, opens each eligible file as a document in a
// session and gathers the published diagnostics, reusing cached results for
// files whose content and risk context have not changed.
package engine
