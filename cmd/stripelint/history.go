package stripelint

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/stripelint/stripelint/internal/audit"
)

var flagHistoryLimit int

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent scans recorded with scan --audit",
		RunE:  runHistory,
	}
	rootCmd.AddCommand(cmd)
	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "repository path")
	cmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "number of scans to show (0 = all)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	abs, err := filepath.Abs(flagPath)
	if err != nil {
		return err
	}
	recs, err := audit.Open(abs).Recent(flagHistoryLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}
	if len(recs) == 0 {
		fmt.Fprintln(out, "No audited scans yet. Run 'stripelint scan --audit' to record one.")
		return nil
	}
	table := tablewriter.NewWriter(out)
	table.Header("When", "Errors", "Warnings", "New", "Baselined", "Files", "Duration")
	for _, r := range recs {
		_ = table.Append([]string{
			r.Time.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(r.Errors),
			strconv.Itoa(r.Warnings),
			strconv.Itoa(r.New),
			strconv.Itoa(r.Baselined),
			strconv.Itoa(r.Scanned),
			r.Duration,
		})
	}
	return table.Render()
}
