package stripelint

import (
	"encoding/json"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/stripelint/stripelint/internal/config"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the active key rules, including ones added in config",
		RunE: func(cmd *cobra.Command, _ []string) error {
			abs, _ := filepath.Abs(".")
			local, global := loadConfigs(abs)
			l, err := buildLinter(config.Merge(global, local))
			if err != nil {
				return err
			}
			tbl := l.Rules()
			if flagJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(tbl)
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("ID", "Pattern", "Error When", "Description")
			for _, r := range tbl {
				errorWhen := r.ErrorWhen
				if errorWhen == "" {
					errorWhen = "-"
				}
				_ = table.Append([]string{r.ID, r.Pattern, errorWhen, r.Description})
			}
			return table.Render()
		},
	}
	rootCmd.AddCommand(cmd)
}
