package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/novelty"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/storage"
)

var runsRecords bool

func init() {
	runsCmd.Flags().BoolVar(&runsRecords, "records", false, "Include every scored record")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show the latest scoring run",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

// RunsResult is the response for the runs command.
type RunsResult struct {
	*storage.RunInfo
	Records []novelty.Record `json:"records,omitempty"`
}

func runRuns(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	info, err := db.LatestRun()
	if err != nil {
		exitWithError(ExitError, "reading runs: %v", err)
	}
	if info == nil {
		exitWithError(ExitDataError, "no scoring run recorded\n\nRun 'nov score' first.")
	}

	result := RunsResult{RunInfo: info}
	if runsRecords {
		if result.Records, err = db.ScoresForRun(info.RunID); err != nil {
			exitWithError(ExitError, "reading scores: %v", err)
		}
	}

	if humanOutput {
		fmt.Printf("Run %s started %s, took %s\n", info.RunID, info.StartedAt.Format("2006-01-02 15:04:05"), info.Duration)
		for _, y := range info.Years {
			fmt.Printf("  %d  window %s  %6d documents  %6d scored\n", y.Year, y.Window, y.Documents, y.Scored)
		}
		for _, r := range result.Records {
			fmt.Printf("  %d  %d  %s\n", r.FocalYear, r.DocumentID, formatScore(r.Score))
		}
	} else {
		outputJSON(result)
	}
	return nil
}
