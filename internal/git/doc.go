// Package git answers the one question the linter asks of version control:
// is this workspace tracked, and which paths have working-tree changes.
// Repositories are read with go-git, so no git binary is required.
package git
