package engine

import (
	"bytes"
	"context"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/stripelint/stripelint/internal/ignore"
)

// IgnoreFileDirective anywhere in a file excludes the whole file.
const IgnoreFileDirective = "stripelint:ignore-file"

// Filter applies a Config's selection rules to individual paths. Walk uses
// it for whole trees; the watcher uses it for single files.
type Filter struct {
	cfg Config
	ign ignore.Matcher
}

// NewFilter loads the root's ignore file and returns a filter for cfg.
func NewFilter(cfg Config) Filter {
	ign, _ := ignore.Load(filepath.Join(cfg.Root, ignore.FileName))
	return Filter{cfg: cfg, ign: ign}
}

// Dir reports whether the directory at rel should be descended into.
func (f Filter) Dir(rel string) bool {
	if rel == "." || rel == "" {
		return true
	}
	if f.cfg.DefaultExcludes && isDefaultDirExcluded(path.Base(rel)) {
		return false
	}
	return !f.ign.Match(rel + "/")
}

// Path applies the metadata-only filters: globs, ignore file, size and
// default excludes.
func (f Filter) Path(rel string, size int64) bool {
	if !allowedByGlobs(rel, f.cfg) {
		return false
	}
	if f.ign.Match(rel) {
		return false
	}
	if f.cfg.MaxBytes > 0 && size > f.cfg.MaxBytes {
		return false
	}
	if f.cfg.DefaultExcludes && isDefaultFileExcluded(strings.ToLower(rel)) {
		return false
	}
	return true
}

// Content rejects opted-out and binary files.
func (f Filter) Content(rel string, b []byte) bool {
	if bytes.Contains(b, []byte(IgnoreFileDirective)) {
		return false
	}
	return !looksBinary(b) && !looksNonTextMIME(rel, b)
}

// Walk traverses the tree under cfg.Root and invokes handle for each eligible
// file with its slash-separated path relative to the root.
func Walk(ctx context.Context, cfg Config, ign ignore.Matcher, handle func(rel string, data []byte)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	flt := Filter{cfg: cfg, ign: ign}
	return walkTree(ctx, cfg.Root, flt, func(p, rel string, _ int64) {
		b, err := os.ReadFile(p)
		if err != nil {
			return
		}
		if !flt.Content(rel, b) {
			return
		}
		handle(rel, b)
	})
}

// walkTree visits every regular file accepted by flt's path filters.
func walkTree(ctx context.Context, root string, flt Filter, visit func(p, rel string, size int64)) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if !flt.Dir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if !flt.Path(rel, info.Size()) {
			return nil
		}
		visit(p, rel, info.Size())
		return nil
	})
}

func looksBinary(b []byte) bool {
	const sniff = 800
	n := sniff
	if len(b) < n {
		n = len(b)
	}
	return bytes.IndexByte(b[:n], 0) >= 0
}

// looksNonTextMIME uses the file extension and a tiny content sniff to skip
// clearly non-text content (e.g., images) in addition to NUL-byte detection.
func looksNonTextMIME(name string, b []byte) bool {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		if strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "video/") || strings.HasPrefix(ct, "audio/") {
			return true
		}
		if strings.Contains(ct, "zip") || strings.Contains(ct, "tar") || strings.Contains(ct, "gzip") {
			return true
		}
	}
	// PNG signature
	if len(b) >= 8 && string(b[:8]) == "\x89PNG\r\n\x1a\n" {
		return true
	}
	// ZIP local file header
	if len(b) >= 4 && string(b[:4]) == "PK\x03\x04" {
		return true
	}
	return false
}

// CountTargets estimates the number of files Run will visit without reading
// their contents. It is used to size progress output.
func CountTargets(cfg Config) (int, error) {
	count := 0
	err := walkTree(context.Background(), cfg.Root, NewFilter(cfg), func(string, string, int64) {
		count++
	})
	return count, err
}
