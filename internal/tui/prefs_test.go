package tui

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPrefs_DefaultsAndRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if p := LoadPrefs(); !p.HideSecrets {
		t.Fatal("expected keys hidden by default")
	}
	if err := SavePrefs(Prefs{HideSecrets: false}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(home, ".stripelint", "tui_prefs.json")); err != nil {
		t.Fatalf("prefs file not written: %v", err)
	}
	if p := LoadPrefs(); p.HideSecrets {
		t.Fatal("expected saved preference to load")
	}
}

func TestPrefs_CorruptFileFallsBack(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".stripelint")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tui_prefs.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if p := LoadPrefs(); !p.HideSecrets {
		t.Fatal("expected defaults on corrupt prefs")
	}
}
