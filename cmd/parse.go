package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"wrkbench/internal/report"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a saved wrk report and print it as JSON",
	Long:  "Parse a wrk text report from a file, or from stdin when no file or \"-\" is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		raw, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("read report: %w", err)
		}

		rec := report.Parse(string(raw))
		if rec.IsEmpty() {
			logger.Warn().Int("report_bytes", len(raw)).Msg("report matched no known patterns")
		}

		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}
