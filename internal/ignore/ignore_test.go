package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIgnoreMatch(t *testing.T) {
	dir := t.TempDir()
	ig := filepath.Join(dir, FileName)
	content := "node_modules/\n*.pem\n# comment\n\nsecret.env\ndocs/**/*.md\n!docs/keep/README.md\n"
	if err := os.WriteFile(ig, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(ig)
	if err != nil {
		t.Fatal(err)
	}
	cases := map[string]bool{
		"node_modules/pkg/index.js":   true,
		"web/node_modules/x/y.js":     true,
		"certs/key.pem":               true,
		"secret.env":                  true,
		"src/app.go":                  false,
		"docs/guide/setup.md":         true,
		"docs/keep/README.md":         false,
		"node_modules_backup/file.js": false,
	}
	for p, want := range cases {
		if got := m.Match(p); got != want {
			t.Fatalf("Match(%q)=%v want %v", p, got, want)
		}
	}
}

func TestLoad_Missing(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), FileName))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if m.Match("anything.txt") {
		t.Fatal("empty matcher should match nothing")
	}
}

func TestNew_SkipsInvalid(t *testing.T) {
	m := New("[", "  ", "#x", "*.key")
	if m.Len() != 1 {
		t.Fatalf("expected 1 usable pattern, got %d", m.Len())
	}
	if !m.Match(`keys\prod.key`) {
		t.Fatal("expected backslash path to match")
	}
}
