package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/config"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/export"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/merge"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/storage"
)

var (
	exportFormat string
	exportPolicy string
	exportOutput string
)

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, jsonl or summary")
	exportCmd.Flags().StringVar(&exportPolicy, "policy", "", "Merge policy: drop-unscored, drop-unmatched or keep-all (default: merge_policy)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to this file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Join novelty scores onto documents and export them",
	Long: `Join the stored novelty results onto the ingested documents and write
one row per document.

Formats:
  csv      Tabular export with document metadata and a novelty column
  jsonl    One merged row per line
  summary  Distribution of the exported scores

Examples:
  nov export -o novelty.csv
  nov export --format jsonl --policy keep-all
  nov export --format summary --human`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	policy := cfg.Merge()
	if exportPolicy != "" {
		var err error
		if policy, err = merge.ParsePolicy(exportPolicy); err != nil {
			exitWithError(ExitError, "%v", err)
		}
	}

	store := mustLoadStore(repoRoot)
	records, err := storage.ReadRecords(config.ResultsPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "reading results: %v", err)
	}
	rows, err := merge.Merge(store.All(), records, policy)
	if err != nil {
		exitWithError(ExitError, "merging: %v", err)
	}

	if exportFormat == "summary" {
		s := export.Summarize(rows)
		if humanOutput {
			printSummaryHuman(s)
		} else {
			outputJSON(s)
		}
		return nil
	}

	var out io.Writer = os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			exitWithError(ExitError, "creating %s: %v", exportOutput, err)
		}
		defer f.Close()
		out = f
	}

	switch exportFormat {
	case "csv":
		err = export.WriteCSV(out, rows)
	case "jsonl":
		err = export.WriteJSONL(out, rows)
	default:
		exitWithError(ExitError, "unknown format %q (valid: csv, jsonl, summary)", exportFormat)
	}
	if err != nil {
		exitWithError(ExitError, "writing %s: %v", exportFormat, err)
	}
	return nil
}

func printSummaryHuman(s export.Summary) {
	fmt.Printf("Rows:    %d (%d scored, %d absent)\n", s.Rows, s.Scored, s.Absent)
	if s.Scored == 0 {
		return
	}
	fmt.Printf("Min:     %.6g\n", s.Min)
	fmt.Printf("Median:  %.6g\n", s.Median)
	fmt.Printf("Mean:    %.6g (sd %.6g)\n", s.Mean, s.StdDev)
	fmt.Printf("Max:     %.6g\n", s.Max)
}
