package stripelint

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stripelint/stripelint/internal/config"
	"github.com/stripelint/stripelint/internal/git"
	"github.com/stripelint/stripelint/internal/report"
	"github.com/stripelint/stripelint/internal/session"
	"github.com/stripelint/stripelint/internal/types"
)

var (
	flagStdin    bool
	flagURI      string
	flagLintText bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "lint [files...]",
		Short: "Lint individual documents and print their diagnostics",
		Long: "Lint reads each named file, or one document from stdin with --stdin, and prints its diagnostics as JSON. " +
			"Editors can pipe unsaved buffers through 'stripelint lint --stdin --uri <path>'.",
		RunE: runLint,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().BoolVar(&flagStdin, "stdin", false, "read the document text from stdin")
	cmd.Flags().StringVar(&flagURI, "uri", "", "document path used for risk checks and the denylist when reading stdin")
	cmd.Flags().BoolVar(&flagLintText, "text", false, "print compiler-style lines instead of JSON")
}

func runLint(cmd *cobra.Command, args []string) error {
	if flagStdin && len(args) > 0 {
		return fmt.Errorf("--stdin cannot be combined with file arguments")
	}
	if !flagStdin && len(args) == 0 {
		return fmt.Errorf("no input: pass files or --stdin")
	}
	if flagStdin && flagURI == "" {
		return fmt.Errorf("--stdin requires --uri")
	}

	first := flagURI
	if !flagStdin {
		first = args[0]
	}
	anchor, err := filepath.Abs(filepath.Dir(first))
	if err != nil {
		return err
	}
	local, global := loadConfigs(anchor)
	l, err := buildLinter(config.Merge(global, local))
	if err != nil {
		return err
	}
	log := newLogger()
	sess := session.New(l, git.Freeze(git.Discover(anchor)), nil, session.WithLogger(log))

	var findings []types.Finding
	lintOne := func(uri string, text []byte) error {
		abs, err := filepath.Abs(uri)
		if err != nil {
			return err
		}
		res := sess.DidOpen(types.Document{URI: abs, Text: string(text)})
		log.Debug("linted", "uri", abs, "scanned", res.Scanned, "vcs", res.Risk.VCSActive, "commit_risk", res.Risk.CommitRisk)
		for _, d := range res.Diagnostics {
			findings = append(findings, types.Finding{URI: filepath.ToSlash(uri), Diagnostic: d})
		}
		return nil
	}

	if flagStdin {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		if err := lintOne(flagURI, b); err != nil {
			return err
		}
	} else {
		for _, name := range args {
			b, err := os.ReadFile(name)
			if err != nil {
				return err
			}
			if err := lintOne(name, b); err != nil {
				return err
			}
		}
	}

	if flagLintText {
		report.PrintText(cmd.OutOrStdout(), findings, report.PrintOptions{NoColor: true, ShowMessage: true})
	} else if err := report.WriteJSON(cmd.OutOrStdout(), findings); err != nil {
		return err
	}

	// Editors read diagnostics from stdout; only fail when asked to.
	if cmd.Flags().Changed("fail-on") && report.ShouldFail(findings, flagFailOn) {
		os.Exit(1)
	}
	return nil
}
