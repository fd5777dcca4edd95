package git

import (
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// StateDir returns the git directory of the repository containing start. It
// is where stripelint keeps files that must never be committed. Outside a
// repository it falls back to start/.git when that directory exists, and
// otherwise returns "".
func StateDir(start string) string {
	if dir, err := validateRoot(start); err == nil {
		r, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
		if err == nil {
			if st, ok := r.Storer.(*filesystem.Storage); ok {
				return st.Filesystem().Root()
			}
		}
	}
	dot := filepath.Join(start, ".git")
	if st, err := os.Stat(dot); err == nil && st.IsDir() {
		return dot
	}
	return ""
}

// StatePath places name inside StateDir(root), or as a dot-file in root when
// there is no git directory.
func StatePath(root, name string) string {
	if dir := StateDir(root); dir != "" {
		return filepath.Join(dir, name)
	}
	return filepath.Join(root, "."+name)
}
