package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/config"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/document"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/ingest"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/storage"
)

var ingestFiles []string

func init() {
	ingestCmd.Flags().StringSliceVar(&ingestFiles, "add", nil, "Append records from these JSONL files before ingesting")
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Canonicalize raw records into per-year documents",
	Long: `Convert every record in .novelty/records.jsonl into a document keyed by
its canonical identifier and write one file per publication year to
.novelty/docs/. Records without an identifier, without a year, outside the
configured year range, or already seen are skipped and counted.

The query database is rebuilt afterwards.

Examples:
  nov ingest
  nov ingest --add export-2024.jsonl`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

// IngestResult is the response for the ingest command.
type IngestResult struct {
	Status     string       `json:"status"`
	Stats      ingest.Stats `json:"stats"`
	Skipped    int          `json:"skipped"`
	ByYear     map[int]int  `json:"by_year"`
	Collisions int          `json:"id_collisions"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	recordsPath := config.RecordsPath(repoRoot)

	for _, path := range ingestFiles {
		recs, err := storage.ReadRawRecords(path)
		if err != nil {
			exitWithError(ExitDataError, "reading %s: %v", path, err)
		}
		if err := storage.AppendRawRecords(recordsPath, recs); err != nil {
			exitWithError(ExitError, "appending records: %v", err)
		}
		slog.Info("added records", "file", path, "records", len(recs))
	}

	raw, err := storage.ReadRawRecords(recordsPath)
	if err != nil {
		exitWithError(ExitDataError, "reading records: %v", err)
	}

	conv := ingest.NewConverter(cfg.YearRange(), cfg.IDHashBound, ingest.WithLogger(slog.Default()))
	docs := conv.ConvertAll(raw)

	// Years dropped from the range must not linger on disk.
	docsDir := config.DocsPath(repoRoot)
	if err := os.RemoveAll(docsDir); err != nil {
		exitWithError(ExitError, "clearing documents: %v", err)
	}
	byYear, err := storage.SaveByYear(docsDir, docs)
	if err != nil {
		exitWithError(ExitError, "writing documents: %v", err)
	}

	db := mustOpenDatabase(repoRoot)
	defer db.Close()
	rebuilt, err := db.RebuildFromJSONL(docsDir)
	if err != nil {
		exitWithError(ExitDataError, "rebuilding database: %v", err)
	}
	if rebuilt.Collapsed > 0 {
		slog.Warn("documents share a canonical key; the query database keeps the first",
			"collapsed", rebuilt.Collapsed)
	}

	stats := conv.Stats()
	result := IngestResult{
		Status:     "ingested",
		Stats:      stats,
		Skipped:    stats.Skipped(),
		ByYear:     byYear,
		Collisions: len(conv.Registry().Collisions()),
	}

	if humanOutput {
		printIngestHuman(result)
	} else {
		outputJSON(result)
	}
	return nil
}

func printIngestHuman(r IngestResult) {
	s := r.Stats
	outputHuman("Ingested %d of %d records (%d skipped)\n", s.Accepted, s.Records, r.Skipped)
	outputHuman("  missing id:     %d\n", s.MissingID)
	outputHuman("  missing year:   %d\n", s.MissingYear)
	outputHuman("  out of range:   %d\n", s.OutOfRange)
	outputHuman("  duplicates:     %d\n", s.Duplicates)
	outputHuman("  blank refs:     %d\n", s.BlankReferences)
	if r.Collisions > 0 {
		outputHuman("  id collisions:  %d (run 'nov check' for details)\n", r.Collisions)
	}

	years := make([]int, 0, len(r.ByYear))
	for y := range r.ByYear {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		fmt.Printf("%d: %d documents\n", y, r.ByYear[y])
	}
}

// convertRecords re-runs ingestion in memory, for commands that need the
// identifier registry.
func convertRecords(repoRoot string, cfg *config.Config) ([]document.Document, *ingest.Converter) {
	raw, err := storage.ReadRawRecords(config.RecordsPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "reading records: %v", err)
	}
	conv := ingest.NewConverter(cfg.YearRange(), cfg.IDHashBound, ingest.WithLogger(slog.Default()))
	return conv.ConvertAll(raw), conv
}
