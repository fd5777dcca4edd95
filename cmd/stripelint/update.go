package stripelint

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stripelint/stripelint/internal/update"
)

var errAlreadyLatest = errors.New("already up to date")

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "update",
		Short: "Update stripelint to the latest GitHub release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := selfUpdate()
			switch {
			case errors.Is(err, errAlreadyLatest):
				fmt.Fprintf(cmd.OutOrStdout(), "stripelint v%s is already the latest release\n", version)
				return nil
			case err != nil:
				return fmt.Errorf("self-update: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Updated to latest release; re-run your command.")
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the stripelint version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "stripelint v%s\n", update.Parse(version))
			if latest, newer, _ := update.Check(version, flagNoUpdateCheck); newer {
				fmt.Fprintf(cmd.ErrOrStderr(), "(new version available: v%s)  run 'stripelint update' to upgrade\n", latest)
			}
			return nil
		},
	})
}

// updateBanner prints the new-version hint to stderr and, with --self-update,
// upgrades in place. It reports whether the caller should stop.
func updateBanner(cmd *cobra.Command) bool {
	if !flagNoUpdateCheck {
		if latest, newer, _ := update.Check(version, false); newer && latest != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "(new version available: v%s)  run 'stripelint update' to upgrade\n", latest)
		}
	}
	if flagSelfUpdate {
		if err := selfUpdate(); err == nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "updated to latest; re-run command")
			return true
		}
	}
	return false
}
