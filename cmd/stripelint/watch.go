package stripelint

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stripelint/stripelint/internal/engine"
	"github.com/stripelint/stripelint/internal/git"
	"github.com/stripelint/stripelint/internal/report"
	"github.com/stripelint/stripelint/internal/session"
	"github.com/stripelint/stripelint/internal/types"
	"github.com/stripelint/stripelint/internal/watch"
)

func init() {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Scan a directory, then re-lint files as they are saved",
		RunE:  runWatch,
	}
	rootCmd.AddCommand(cmd)
	addWalkFlags(cmd)
	cmd.Flags().BoolVar(&flagGuide, "guide", false, "print the remediation message under each finding")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	s, err := newScanSetup(flagPath)
	if err != nil {
		return err
	}
	s.cfg.DryRun = false
	noColor := !colorEnabled(pickBool(flagNoColor, s.local.NoColor, s.global.NoColor))
	out := cmd.OutOrStdout()

	res, err := engine.Run(cmd.Context(), s.cfg, s.sess)
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}
	report.PrintText(out, res.Findings, report.PrintOptions{
		NoColor:      noColor,
		Duration:     res.Duration,
		FilesScanned: res.FilesScanned,
		FilesSkipped: res.FilesSkipped,
	})

	// Saves change git status, so the watcher asks the repository each time
	// instead of using the snapshot the initial scan took.
	live := session.New(s.sess.Linter(), git.Discover(s.root), s.sess.Collection(), session.WithLogger(newLogger()))
	w, err := watch.New(s.cfg, live, watch.Options{
		Logger: newLogger(),
		OnChange: func(ev watch.Event) {
			stamp := time.Now().Format("15:04:05")
			if ev.Closed {
				fmt.Fprintf(out, "[%s] %s: closed\n", stamp, ev.Rel)
				return
			}
			fmt.Fprintf(out, "[%s] %s: %d problem(s)\n", stamp, ev.Rel, len(ev.Result.Diagnostics))
			findings := make([]types.Finding, 0, len(ev.Result.Diagnostics))
			for _, d := range ev.Result.Diagnostics {
				findings = append(findings, types.Finding{URI: ev.Rel, Diagnostic: d})
			}
			if len(findings) > 0 {
				report.PrintText(out, findings, report.PrintOptions{NoColor: noColor, ShowMessage: flagGuide})
			}
		},
	})
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", s.root)
	return w.Run(cmd.Context())
}
