package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/document"
)

var searchLimit int

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 50, "Maximum number of results")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search ingested documents",
	Long: `Full-text search over titles, authors and concepts of the ingested
documents.

Examples:
  nov search recycling
  nov search "supply chain" --limit 10 --human`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	docs, err := db.Search(args[0], searchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}
	if docs == nil {
		docs = []document.Document{}
	}

	if humanOutput {
		if len(docs) == 0 {
			fmt.Println("No documents found")
			return nil
		}
		for _, d := range docs {
			fmt.Printf("%d  %s\n", d.Year, truncateString(d.Metadata.Title, TitleMaxLen))
			fmt.Printf("      %s  (%d references, cited %d times)\n", d.Metadata.SourceID, len(d.References), d.Metadata.CitedByCount)
		}
	} else {
		outputJSON(docs)
	}
	return nil
}
