package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/stripelint/stripelint/internal/rules"
)

// FileConfig is the on-disk YAML configuration shape for stripelint.
type FileConfig struct {
	Include         *string  `yaml:"include,omitempty"`
	Exclude         *string  `yaml:"exclude,omitempty"`
	MaxBytes        *int64   `yaml:"max_bytes,omitempty"`
	Threads         *int     `yaml:"threads,omitempty"`
	NoColor         *bool    `yaml:"no_color,omitempty"`
	DefaultExcludes *bool    `yaml:"default_excludes,omitempty"`
	FailOn          *string  `yaml:"fail_on,omitempty"`
	NoCache         *bool    `yaml:"no_cache,omitempty"`
	Audit           *bool    `yaml:"audit,omitempty"`
	InlineIgnore    *bool    `yaml:"inline_ignore,omitempty"`
	Ignore          []string `yaml:"ignore,omitempty"`

	// Rules are appended to the built-in pattern table; an entry with a
	// built-in ID replaces it.
	Rules    []rules.Rule `yaml:"rules,omitempty"`
	Messages *Messages    `yaml:"messages,omitempty"`
}

// Messages overrides diagnostic texts.
type Messages struct {
	VCS   *string `yaml:"vcs,omitempty"`
	NoVCS *string `yaml:"no_vcs,omitempty"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LocalNames are the repo-local config file names, in search order.
var LocalNames = []string{".stripelint.yml", ".stripelint.yaml", "stripelint.yml", "stripelint.yaml"}

// LoadLocal searches for a repo-local config file in the given root.
func LoadLocal(repoRoot string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range LocalNames {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, errors.New("no config dir")
	}
	p := filepath.Join(base, "stripelint", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// Merge overlays local on global. Scalars from local win when set; rule and
// ignore lists are concatenated with local entries last.
func Merge(global, local FileConfig) FileConfig {
	out := global
	if local.Include != nil {
		out.Include = local.Include
	}
	if local.Exclude != nil {
		out.Exclude = local.Exclude
	}
	if local.MaxBytes != nil {
		out.MaxBytes = local.MaxBytes
	}
	if local.Threads != nil {
		out.Threads = local.Threads
	}
	if local.NoColor != nil {
		out.NoColor = local.NoColor
	}
	if local.DefaultExcludes != nil {
		out.DefaultExcludes = local.DefaultExcludes
	}
	if local.FailOn != nil {
		out.FailOn = local.FailOn
	}
	if local.NoCache != nil {
		out.NoCache = local.NoCache
	}
	if local.Audit != nil {
		out.Audit = local.Audit
	}
	if local.InlineIgnore != nil {
		out.InlineIgnore = local.InlineIgnore
	}
	if local.Messages != nil {
		m := Messages{}
		if global.Messages != nil {
			m = *global.Messages
		}
		if local.Messages.VCS != nil {
			m.VCS = local.Messages.VCS
		}
		if local.Messages.NoVCS != nil {
			m.NoVCS = local.Messages.NoVCS
		}
		out.Messages = &m
	}
	out.Ignore = append(append([]string(nil), global.Ignore...), local.Ignore...)
	out.Rules = append(append([]rules.Rule(nil), global.Rules...), local.Rules...)
	return out
}

// Load resolves the effective config for root: global, then local on top.
// Missing files are not errors.
func Load(root string) FileConfig {
	var g, l FileConfig
	if c, err := LoadGlobal(); err == nil {
		g = c
	}
	if c, err := LoadLocal(root); err == nil {
		l = c
	}
	return Merge(g, l)
}
