package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/config"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/openalex"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/storage"
)

var (
	fetchLimit         int
	fetchFrom          int
	fetchTo            int
	fetchSortCitations bool
)

func init() {
	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 0, "Maximum works per query (0 = all)")
	fetchCmd.Flags().IntVar(&fetchFrom, "from", 0, "First publication year (default: years.min)")
	fetchCmd.Flags().IntVar(&fetchTo, "to", 0, "Last publication year (default: years.max)")
	fetchCmd.Flags().BoolVar(&fetchSortCitations, "sort-citations", true, "Retrieve the most cited works first")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <query>...",
	Short: "Retrieve works from OpenAlex by title search",
	Long: `Retrieve works from OpenAlex whose titles match each query and append
them to .novelty/records.jsonl. Each record remembers the query it came from.

The contact address for the OpenAlex polite pool is read from openalex.mailto
in config.yml, or from OPENALEX_MAILTO (a .env file in the repository root is
loaded if present).

Examples:
  nov fetch "circular economy" --limit 300
  nov fetch "machine learning" "deep learning" --from 2018 --to 2022`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

// FetchResult is the response for the fetch command.
type FetchResult struct {
	Status  string         `json:"status"`
	Queries map[string]int `json:"queries"`
	Total   int            `json:"total"`
}

func runFetch(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	loadDotEnv(repoRoot)
	cfg := mustLoadConfig(repoRoot)

	from, to := cfg.Years.Min, cfg.Years.Max
	if fetchFrom > 0 {
		from = fetchFrom
	}
	if fetchTo > 0 {
		to = fetchTo
	}

	client := openalex.NewClient(
		openalex.WithMailto(cfg.OpenAlex.Mailto),
		openalex.WithRateLimit(cfg.OpenAlex.RateLimit),
		openalex.WithPerPage(cfg.OpenAlex.PerPage),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result := FetchResult{Status: "fetched", Queries: make(map[string]int, len(args))}
	for _, query := range args {
		works, err := client.SearchWorks(ctx, openalex.Query{
			Search:          query,
			FromYear:        from,
			ToYear:          to,
			Limit:           fetchLimit,
			SortByCitations: fetchSortCitations,
		})
		if err != nil {
			code := ExitError
			if openalex.IsRateLimited(err) {
				code = ExitDataError
			}
			exitWithError(code, "fetching %q: %v", query, err)
		}

		if err := storage.AppendRawRecords(config.RecordsPath(repoRoot), openalex.ToRawRecords(works, query)); err != nil {
			exitWithError(ExitError, "saving records: %v", err)
		}
		slog.Info("fetched works", "query", query, "works", len(works))
		result.Queries[query] = len(works)
		result.Total += len(works)
	}

	if humanOutput {
		for _, query := range args {
			fmt.Printf("%6d  %s\n", result.Queries[query], query)
		}
		fmt.Printf("Appended %d records to %s\n", result.Total, config.RecordsFile)
	} else {
		outputJSON(result)
	}
	return nil
}

// loadDotEnv loads .env from the repository root when it exists.
func loadDotEnv(repoRoot string) {
	err := godotenv.Load(filepath.Join(repoRoot, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("ignoring unreadable .env", "error", err)
	}
}
