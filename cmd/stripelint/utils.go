package stripelint

import (
	"fmt"
	"runtime/debug"

	semver3 "github.com/blang/semver"
	semver "github.com/blang/semver/v4"
	"github.com/rhysd/go-github-selfupdate/selfupdate"

	"github.com/stripelint/stripelint/internal/config"
	"github.com/stripelint/stripelint/internal/engine"
	"github.com/stripelint/stripelint/internal/linter"
	"github.com/stripelint/stripelint/internal/rules"
	"github.com/stripelint/stripelint/internal/update"
)

func selfUpdate() error {
	v := version
	// Use build info if tag overridden at build-time
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(v) == 0 {
				v = s.Value
			}
		}
	}
	ver, err := semver.ParseTolerant(v)
	if err != nil {
		ver = semver.MustParse("0.0.0")
	}
	latest, err := selfupdate.UpdateSelf(semver3.MustParse(ver.String()), update.Repo)
	if err != nil {
		return err
	}
	if latest.Version.Equals(semver3.MustParse(ver.String())) {
		return errAlreadyLatest
	}
	return nil
}

// loadConfigs returns the repo-local and global config files for root.
// Missing files yield zero values.
func loadConfigs(root string) (local, global config.FileConfig) {
	if c, err := config.LoadGlobal(); err == nil {
		global = c
	}
	if c, err := config.LoadLocal(root); err == nil {
		local = c
	}
	return local, global
}

// buildLinter applies configured rules, denylist and messages on top of the
// built-in defaults. The CLI honours inline ignore markers unless config
// sets inline_ignore: false.
func buildLinter(fc config.FileConfig) (*linter.Linter, error) {
	tbl, err := rules.Default().Merge(fc.Rules)
	if err != nil {
		return nil, fmt.Errorf("config rules: %w", err)
	}
	opts := linter.Options{
		Rules:             tbl,
		Ignore:            fc.Ignore,
		InlineSuppression: fc.InlineIgnore == nil || *fc.InlineIgnore,
	}
	if fc.Messages != nil {
		if fc.Messages.VCS != nil {
			opts.Messages.VCS = *fc.Messages.VCS
		}
		if fc.Messages.NoVCS != nil {
			opts.Messages.NoVCS = *fc.Messages.NoVCS
		}
	}
	return linter.New(opts), nil
}

const defaultMaxBytes = 1 << 20

// engineConfig resolves walk settings with CLI > local > global precedence.
func engineConfig(root string, local, global config.FileConfig) engine.Config {
	maxBytes := pickInt64(flagMaxBytes, local.MaxBytes, global.MaxBytes)
	if maxBytes == 0 {
		maxBytes = defaultMaxBytes
	}
	return engine.Config{
		Root:            root,
		IncludeGlobs:    pickString(flagInclude, local.Include, global.Include),
		ExcludeGlobs:    pickString(flagExclude, local.Exclude, global.Exclude),
		MaxBytes:        maxBytes,
		Threads:         pickInt(flagThreads, local.Threads, global.Threads),
		DefaultExcludes: pickDefaultExcludes(local.DefaultExcludes, global.DefaultExcludes),
		NoCache:         pickBool(flagNoCache, local.NoCache, global.NoCache),
		DryRun:          flagDryRun,
	}
}

// pickDefaultExcludes lets config turn the built-in excludes off unless the
// flag was given explicitly.
func pickDefaultExcludes(local, global *bool) bool {
	if rootCmd.PersistentFlags().Changed("default-excludes") {
		return flagDefaultExcludes
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return flagDefaultExcludes
}

func pickFailOn(local, global *string) string {
	if v := pickString(flagFailOn, local, global); v != "" {
		return v
	}
	return "error"
}

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickInt(cli int, local, global *int) int {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickInt64(cli int64, local, global *int64) int64 {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}
