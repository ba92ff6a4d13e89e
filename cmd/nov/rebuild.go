package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/config"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query layer from source data",
	Long: `Rebuild the SQLite query database from the per-year JSONL documents.

Use this after pulling changes from git or if the database becomes corrupted.
Stored runs are kept.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
	Collapsed int    `json:"collapsed,omitempty"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	stats, err := db.RebuildFromJSONL(config.DocsPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding database: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query database with %d documents\n", stats.Documents)
		if stats.Collapsed > 0 {
			fmt.Printf("  %d documents share a key with an earlier one (run 'nov check')\n", stats.Collapsed)
		}
	} else {
		outputJSON(RebuildResult{
			Status:    "rebuilt",
			Documents: stats.Documents,
			Collapsed: stats.Collapsed,
		})
	}
	return nil
}
