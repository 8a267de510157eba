package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/answer-extract/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract answers from every fixture file in a directory",
	Long: `Extract loads each fixture file in the fixtures directory, locates the
marker in every sample, and writes one result file per fixture to
<output-dir>/extracted/<fixture>-answers.yaml.

Fixtures that are older than their result file are skipped. A sample whose
marker is missing is recorded in the result file and makes the command
exit non-zero after all fixtures are processed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig().Extraction
		w := cmd.OutOrStdout()

		summary, err := extract.ExtractAll(cmd.Context(), cfg, w)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "\nextracted: %d, skipped: %d, failed: %d, not found: %d\n",
			summary.Extracted, summary.Skipped, summary.Failed, summary.NotFound)
		log.Infow("extraction finished", "total", summary.Total(), "not_found", summary.NotFound)

		if summary.HasFailures() {
			return fmt.Errorf("%d fixture(s) failed, %d marker(s) not found", summary.Failed, summary.NotFound)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
