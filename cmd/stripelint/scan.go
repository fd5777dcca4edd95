package stripelint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stripelint/stripelint/internal/audit"
	"github.com/stripelint/stripelint/internal/cache"
	"github.com/stripelint/stripelint/internal/config"
	"github.com/stripelint/stripelint/internal/engine"
	"github.com/stripelint/stripelint/internal/git"
	"github.com/stripelint/stripelint/internal/report"
	"github.com/stripelint/stripelint/internal/session"
	"github.com/stripelint/stripelint/internal/tui"
	"github.com/stripelint/stripelint/internal/types"
)

var (
	flagPath     string
	flagInclude  string
	flagExclude  string
	flagMaxBytes int64
	flagText     bool
	flagTUI      bool
	flagBaseline string
	flagAudit    bool
	flagGuide    bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a directory for Stripe API keys",
		RunE:  runScan,
	}
	rootCmd.AddCommand(cmd)
	addWalkFlags(cmd)

	cmd.Flags().BoolVar(&flagText, "text", false, "output one finding per line instead of a table")
	cmd.Flags().BoolVar(&flagTUI, "tui", false, "browse findings interactively")
	cmd.Flags().StringVar(&flagBaseline, "baseline", report.DefaultBaselineFile, "baseline file of accepted findings (relative to the scan path)")
	cmd.Flags().BoolVar(&flagAudit, "audit", false, "append a record of this scan to the audit log")
	cmd.Flags().BoolVar(&flagGuide, "guide", false, "print the remediation message under each finding")
}

// addWalkFlags registers the path and filter flags shared by scan, watch and
// baseline.
func addWalkFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "path to scan")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 0, "skip files larger than this (default 1 MiB)")
}

// scanSetup is everything a directory scan needs, resolved from flags and
// config files.
type scanSetup struct {
	root   string
	local  config.FileConfig
	global config.FileConfig
	cfg    engine.Config
	sess   *session.Session
}

func runScan(cmd *cobra.Command, _ []string) error {
	s, err := newScanSetup(flagPath)
	if err != nil {
		return err
	}
	structured := flagJSON || flagSARIF

	if !structured {
		if updateBanner(cmd) {
			return nil
		}
		fmt.Fprintf(os.Stderr, "Scanning %s with %d rules...\n", s.root, len(s.sess.Linter().Rules()))
	}

	total, _ := engine.CountTargets(s.cfg)
	progressed := 0
	showProgress := total > 0 && !structured && !flagTUI
	if showProgress {
		s.cfg.Progress = func() {
			progressed++
			if progressed%10 == 0 || progressed == total {
				pct := float64(progressed) / float64(total) * 100
				fmt.Fprintf(os.Stderr, "\r[%d/%d] %.0f%%", progressed, total, pct)
			}
		}
	}
	res, err := engine.Run(cmd.Context(), s.cfg, s.sess)
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}
	if showProgress {
		fmt.Fprintln(os.Stderr)
	}

	basePath := flagBaseline
	if !filepath.IsAbs(basePath) {
		basePath = filepath.Join(s.root, basePath)
	}
	baseline, _ := report.LoadBaseline(basePath)
	newFindings := report.FilterNewFindings(res.Findings, baseline)
	if newFindings == nil {
		newFindings = []types.Finding{}
	} // no `null` in JSON

	if !flagDryRun {
		_ = cache.SaveResults(s.root, res.Findings)
	}
	if pickBool(flagAudit, s.local.Audit, s.global.Audit) && !flagDryRun {
		rec := audit.NewRecord(s.root, res.Findings, newFindings, audit.Stats{
			FilesScanned: res.FilesScanned,
			FilesSkipped: res.FilesSkipped,
			Duration:     res.Duration,
		}, basePath)
		if err := audit.Open(s.root).Append(rec); err != nil {
			fmt.Fprintln(os.Stderr, "audit warning:", err)
		}
	}

	noColor := !colorEnabled(pickBool(flagNoColor, s.local.NoColor, s.global.NoColor))
	printOpts := report.PrintOptions{
		NoColor:      noColor,
		Duration:     res.Duration,
		FilesScanned: res.FilesScanned,
		FilesSkipped: res.FilesSkipped,
		ShowMessage:  flagGuide,
	}
	switch {
	case flagSARIF:
		opts := report.SARIFOptions{
			ToolVersion: version,
			Rules:       s.sess.Linter().Rules(),
			Metadata:    git.RepoMetadata(s.root),
		}
		if err := report.WriteSARIF(cmd.OutOrStdout(), newFindings, opts); err != nil {
			return fmt.Errorf("sarif error: %w", err)
		}
	case flagJSON:
		if err := report.WriteJSON(cmd.OutOrStdout(), newFindings); err != nil {
			return err
		}
	case flagTUI:
		if !interactive() {
			return fmt.Errorf("--tui needs an interactive terminal")
		}
		err := tui.Run(newFindings, tui.Options{
			Root:         s.root,
			Baseline:     baseline,
			BaselinePath: basePath,
			Rescan:       s.rescan(cmd.Context()),
			Prefs:        tui.LoadPrefs(),
		})
		if err != nil {
			return err
		}
		return nil
	case flagText:
		report.PrintText(cmd.OutOrStdout(), newFindings, printOpts)
	default:
		report.PrintTable(cmd.OutOrStdout(), newFindings, printOpts)
	}

	if report.ShouldFail(newFindings, pickFailOn(s.local.FailOn, s.global.FailOn)) {
		os.Exit(1)
	}
	return nil
}

// newScanSetup resolves path, configs, linter and a frozen git provider.
func newScanSetup(path string) (*scanSetup, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	if st, err := os.Stat(abs); err != nil {
		return nil, err
	} else if !st.IsDir() {
		return nil, fmt.Errorf("%s is not a directory; use 'stripelint lint' for single files", path)
	}
	local, global := loadConfigs(abs)
	l, err := buildLinter(config.Merge(global, local))
	if err != nil {
		return nil, err
	}
	log := newLogger()
	vcs := git.Freeze(git.Discover(abs))
	log.Debug("git provider", "active", vcs.Active, "changed", len(vcs.Paths))
	return &scanSetup{
		root:   abs,
		local:  local,
		global: global,
		cfg:    engineConfig(abs, local, global),
		sess:   session.New(l, vcs, nil, session.WithLogger(log)),
	}, nil
}

// rescan re-reads git state and runs the scan again with fresh diagnostics.
func (s *scanSetup) rescan(ctx context.Context) func() ([]types.Finding, error) {
	return func() ([]types.Finding, error) {
		cfg := s.cfg
		cfg.Progress = nil
		sess := session.New(s.sess.Linter(), git.Freeze(git.Discover(s.root)), nil)
		res, err := engine.Run(ctx, cfg, sess)
		if err != nil {
			return nil, err
		}
		return res.Findings, nil
	}
}
