// Package ignore reads .stripelintignore files: one glob per line, '#'
// comments, a trailing '/' for directories and a leading '!' to re-include.
package ignore

import (
	"bufio"
	"bytes"
	"os"
	"path"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// FileName is the conventional ignore file at a scan root.
const FileName = ".stripelintignore"

type pattern struct {
	glob   string
	dir    bool
	negate bool
}

// Matcher decides whether a slash-separated relative path is ignored. The
// zero value matches nothing.
type Matcher struct {
	patterns []pattern
}

// Load reads an ignore file. A missing file yields an empty matcher and the
// read error.
func Load(p string) (Matcher, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return Matcher{}, err
	}
	return Parse(b), nil
}

// Parse builds a matcher from ignore file content.
func Parse(b []byte) Matcher {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return New(lines...)
}

// New builds a matcher from individual patterns.
func New(lines ...string) Matcher {
	var m Matcher
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		var p pattern
		if strings.HasPrefix(l, "!") {
			p.negate = true
			l = l[1:]
		}
		if strings.HasSuffix(l, "/") {
			p.dir = true
			l = strings.TrimSuffix(l, "/")
		}
		p.glob = strings.TrimPrefix(l, "/")
		if p.glob == "" || !doublestar.ValidatePattern(p.glob) {
			continue
		}
		m.patterns = append(m.patterns, p)
	}
	return m
}

// Len is the number of usable patterns.
func (m Matcher) Len() int { return len(m.patterns) }

// Match reports whether rel is ignored. The last matching pattern decides.
func (m Matcher) Match(rel string) bool {
	rel = strings.TrimPrefix(strings.ReplaceAll(rel, "\\", "/"), "./")
	ignored := false
	for _, p := range m.patterns {
		if p.matches(rel) {
			ignored = !p.negate
		}
	}
	return ignored
}

func (p pattern) matches(rel string) bool {
	if p.dir {
		// any leading directory of rel
		dir := path.Dir(rel)
		for dir != "." && dir != "/" {
			if globMatch(p.glob, dir) {
				return true
			}
			dir = path.Dir(dir)
		}
		return false
	}
	return globMatch(p.glob, rel)
}

// globMatch matches against the full path and, for patterns without a
// slash, against every path suffix so "*.pem" hits "certs/key.pem".
func globMatch(glob, rel string) bool {
	if ok, _ := doublestar.Match(glob, rel); ok {
		return true
	}
	if strings.Contains(glob, "/") {
		return false
	}
	ok, _ := doublestar.Match(glob, path.Base(rel))
	return ok
}
