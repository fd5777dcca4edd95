package stripelint

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stripelint/stripelint/internal/engine"
	"github.com/stripelint/stripelint/internal/report"
)

func init() {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage baselines",
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Update baseline from current scan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newScanSetup(flagPath)
			if err != nil {
				return err
			}
			s.cfg.DryRun = false
			res, err := engine.Run(cmd.Context(), s.cfg, s.sess)
			if err != nil {
				return err
			}
			path := flagBaseline
			if !filepath.IsAbs(path) {
				path = filepath.Join(s.root, path)
			}
			if err := report.SaveBaseline(path, res.Findings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Baseline updated (%d findings).\n", len(res.Findings))
			return nil
		},
	}
	addWalkFlags(update)
	update.Flags().StringVar(&flagBaseline, "baseline", report.DefaultBaselineFile, "baseline file to write (relative to the scan path)")

	rootCmd.AddCommand(cmd)
	cmd.AddCommand(update)
}
