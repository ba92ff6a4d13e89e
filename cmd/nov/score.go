package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/config"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/cooc"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/novelty"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/pipeline"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/storage"
)

var (
	scoreFrom    int
	scoreTo      int
	scoreWorkers int
)

func init() {
	scoreCmd.Flags().IntVar(&scoreFrom, "from", 0, "First focal year (default: focal_years.start)")
	scoreCmd.Flags().IntVar(&scoreTo, "to", 0, "Last focal year (default: focal_years.end)")
	scoreCmd.Flags().IntVar(&scoreWorkers, "workers", 0, "Focal years scored concurrently (default: workers)")
	rootCmd.AddCommand(scoreCmd)
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute novelty scores for the focal years",
	Long: `Score every document published in each focal year against the
co-occurrence graph of its comparison window, as configured in config.yml.

Results replace .novelty/results/<year>.jsonl for every focal year scored, and
the run is recorded in the query database.

Examples:
  nov score
  nov score --from 2020 --to 2022 --workers 8`,
	Args: cobra.NoArgs,
	RunE: runScore,
}

// ScoreResult is the response for the score command.
type ScoreResult struct {
	RunID     string                 `json:"run_id"`
	Duration  string                 `json:"duration"`
	Documents int                    `json:"documents"`
	Scored    int                    `json:"scored"`
	Years     []pipeline.YearSummary `json:"years"`
	Graphs    []cooc.Stats           `json:"graphs"`
}

func runScore(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	years, err := focalYears(cfg, scoreFrom, scoreTo)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	policy, err := cfg.NoveltyPolicy()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	engine, err := novelty.New(policy, novelty.WithLogger(slog.Default()))
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	workers := cfg.Workers
	if scoreWorkers > 0 {
		workers = scoreWorkers
	}
	runner, err := pipeline.NewRunner(engine, cfg.GraphOptions(), cfg.WindowPolicy(),
		pipeline.WithWorkers(workers),
		pipeline.WithBuildWorkers(workers),
		pipeline.WithLogger(slog.Default()),
	)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	store := mustLoadStore(repoRoot)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := runner.Run(ctx, store, years)
	if err != nil {
		exitWithError(ExitError, "scoring: %v", err)
	}

	if err := saveResults(config.ResultsPath(repoRoot), years, res); err != nil {
		exitWithError(ExitError, "saving results: %v", err)
	}

	db := mustOpenDatabase(repoRoot)
	defer db.Close()
	if err := db.SaveRun(res); err != nil {
		exitWithError(ExitError, "recording run: %v", err)
	}

	result := ScoreResult{
		RunID:     res.RunID,
		Duration:  res.Duration.Round(time.Millisecond).String(),
		Documents: len(res.Records),
		Scored:    res.Scored(),
		Years:     res.Years,
		Graphs:    res.Graphs,
	}
	if humanOutput {
		outputHuman("Run %s (%s)\n", result.RunID, result.Duration)
		for _, y := range result.Years {
			fmt.Printf("  %d  window %s  %6d documents  %6d scored\n", y.Year, y.Window, y.Documents, y.Scored)
		}
		outputHuman("Scored %d of %d documents\n", result.Scored, result.Documents)
	} else {
		outputJSON(result)
	}
	return nil
}

// focalYears applies --from/--to overrides to the configured focal years.
// An empty range is a configuration error.
func focalYears(cfg *config.Config, from, to int) ([]int, error) {
	start, end := cfg.FocalYears.Start, cfg.FocalYears.End
	if from != 0 {
		start = from
	}
	if to != 0 {
		end = to
	}
	years := pipeline.FocalYears(start, end)
	if len(years) == 0 {
		return nil, fmt.Errorf("%w: no focal years between %d and %d", config.ErrInvalidConfig, start, end)
	}
	return years, nil
}

// saveResults writes one file per focal year, including years without
// documents so stale results never survive a rerun.
func saveResults(dir string, years []int, res *pipeline.Result) error {
	byYear := make(map[int][]novelty.Record, len(years))
	for _, rec := range res.Records {
		byYear[rec.FocalYear] = append(byYear[rec.FocalYear], rec)
	}
	for _, y := range years {
		if err := storage.WriteRecords(dir, y, byYear[y]); err != nil {
			return err
		}
	}
	return nil
}
