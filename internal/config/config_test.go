package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

func TestLoadFile_Basic(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "stripelint.yaml", `threads: 4
max_bytes: 123
fail_on: error
ignore: [".env", "fixtures/"]
rules:
  - id: stripe_restricted
    pattern: 'rk_(test|live)_[A-Za-z0-9]{10,64}'
    error_when: rk_live
messages:
  vcs: "add it to .gitignore"
`)
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Threads == nil || *cfg.Threads != 4 {
		t.Fatalf("expected threads=4, got %#v", cfg.Threads)
	}
	if cfg.MaxBytes == nil || *cfg.MaxBytes != 123 {
		t.Fatalf("expected max_bytes=123, got %#v", cfg.MaxBytes)
	}
	require.NotNil(t, cfg.FailOn)
	assert.Equal(t, "error", *cfg.FailOn)
	assert.Equal(t, []string{".env", "fixtures/"}, cfg.Ignore)
	require.Len(t, cfg.Rules, 1)
	assert.Equal(t, "stripe_restricted", cfg.Rules[0].ID)
	assert.Equal(t, "rk_live", cfg.Rules[0].ErrorWhen)
	require.NotNil(t, cfg.Messages)
	require.NotNil(t, cfg.Messages.VCS)
	assert.Nil(t, cfg.Messages.NoVCS)
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "bad.yml", "threads: [unterminated\n")
	_, err := LoadFile(p)
	assert.Error(t, err)
}

func TestLoadLocal_PrefersDotfile(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "stripelint.yaml", "threads: 1\n")
	writeTemp(t, dir, ".stripelint.yaml", "threads: 7\n")
	cfg, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("LoadLocal: %v", err)
	}
	if cfg.Threads == nil || *cfg.Threads != 7 {
		t.Fatalf("expected threads=7 from .stripelint.yaml, got %#v", cfg.Threads)
	}
}

func TestLoadLocal_NoConfig(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadLocal(dir); err == nil {
		t.Fatal("expected error when no local config exists")
	}
}

func TestLoadGlobal_XDG_Config(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "stripelint")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	writeTemp(t, cfgDir, "config.yml", "threads: 9\n")
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.Threads == nil || *cfg.Threads != 9 {
		t.Fatalf("expected threads=9 from global config, got %#v", cfg.Threads)
	}
}

func TestLoadGlobal_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "")
	if _, err := LoadGlobal(); err == nil {
		t.Fatal("expected error when no global config dir exists")
	}
}

func TestLoad_LocalOverridesGlobal(t *testing.T) {
	xdg := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(xdg, "stripelint"), 0o755))
	writeTemp(t, filepath.Join(xdg, "stripelint"), "config.yml", `threads: 2
fail_on: warning
ignore: [".env"]
messages:
  no_vcs: global text
`)
	t.Setenv("XDG_CONFIG_HOME", xdg)

	root := t.TempDir()
	writeTemp(t, root, ".stripelint.yml", `fail_on: error
ignore: ["testdata/"]
messages:
  vcs: local text
`)
	cfg := Load(root)
	require.NotNil(t, cfg.Threads)
	assert.Equal(t, 2, *cfg.Threads)
	assert.Equal(t, "error", *cfg.FailOn)
	assert.Equal(t, []string{".env", "testdata/"}, cfg.Ignore)
	require.NotNil(t, cfg.Messages)
	assert.Equal(t, "local text", *cfg.Messages.VCS)
	assert.Equal(t, "global text", *cfg.Messages.NoVCS)
}
