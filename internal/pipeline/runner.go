// Package pipeline runs the novelty engine over a set of focal years.
//
// Focal years are independent of each other: each one reads the shared,
// read-only document store, obtains its comparison graph and scores its own
// documents. Years are processed concurrently; comparison graphs are built
// once per distinct window and shared.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/cooc"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/corpus"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/novelty"
)

// DefaultGraphCacheSize bounds the number of comparison graphs kept in memory.
const DefaultGraphCacheSize = 4

// ErrNoFocalYears is returned when Run is called without focal years.
var ErrNoFocalYears = errors.New("no focal years")

// Runner scores focal years against their comparison windows.
type Runner struct {
	engine       *novelty.Engine
	graphOpts    cooc.Options
	windows      WindowPolicy
	workers      int
	buildWorkers int
	cacheSize    int
	logger       *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets how many focal years are processed concurrently.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.workers = n
	}
}

// WithBuildWorkers sets how many goroutines build each comparison graph.
func WithBuildWorkers(n int) Option {
	return func(r *Runner) {
		r.buildWorkers = n
	}
}

// WithGraphCacheSize bounds the number of graphs retained during a run.
func WithGraphCacheSize(n int) Option {
	return func(r *Runner) {
		r.cacheSize = n
	}
}

// WithLogger sets the runner's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// NewRunner validates the window policy and returns a runner.
func NewRunner(engine *novelty.Engine, graphOpts cooc.Options, windows WindowPolicy, opts ...Option) (*Runner, error) {
	if err := windows.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		engine:       engine,
		graphOpts:    graphOpts,
		windows:      windows,
		workers:      1,
		buildWorkers: 1,
		cacheSize:    DefaultGraphCacheSize,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.workers = max(r.workers, 1)
	r.buildWorkers = max(r.buildWorkers, 1)
	r.cacheSize = max(r.cacheSize, 1)
	return r, nil
}

// YearSummary reports what happened for one focal year.
type YearSummary struct {
	Year      int         `json:"year"`
	Window    cooc.Window `json:"window"`
	Documents int         `json:"documents"`
	Scored    int         `json:"scored"`
}

// Result is the outcome of a run.
type Result struct {
	RunID     string           `json:"run_id"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration"`
	Years     []YearSummary    `json:"years"`
	Graphs    []cooc.Stats     `json:"graphs"`
	Records   []novelty.Record `json:"records"`
}

// Scored counts records carrying a score.
func (r *Result) Scored() int {
	n := 0
	for _, rec := range r.Records {
		if rec.Scored() {
			n++
		}
	}
	return n
}

type graphKey struct {
	window cooc.Window
	opts   cooc.Options
}

// Run scores every focal year once, however often it is listed. All windows
// are resolved before any work starts, so a configuration error fails the
// run without partial output.
func (r *Runner) Run(ctx context.Context, store *corpus.Store, focalYears []int) (*Result, error) {
	focalYears = uniqueYears(focalYears)
	if len(focalYears) == 0 {
		return nil, ErrNoFocalYears
	}

	windows := make([]cooc.Window, len(focalYears))
	for i, y := range focalYears {
		w, err := r.windows.For(y)
		if err != nil {
			return nil, fmt.Errorf("focal year %d: %w", y, err)
		}
		windows[i] = w
	}

	started := time.Now()
	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: started.UTC(),
		Years:     make([]YearSummary, len(focalYears)),
	}
	logger := r.logger.With("run_id", res.RunID)
	logger.Info("starting novelty run", "focal_years", len(focalYears), "workers", r.workers)

	cache, err := lru.New[graphKey, *cooc.Graph](r.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating graph cache: %w", err)
	}
	var builds singleflight.Group
	graphFor := func(ctx context.Context, w cooc.Window) (*cooc.Graph, error) {
		key := graphKey{window: w, opts: r.graphOpts}
		if g, ok := cache.Get(key); ok {
			return g, nil
		}
		v, err, _ := builds.Do(w.String(), func() (any, error) {
			if g, ok := cache.Get(key); ok {
				return g, nil
			}
			g, err := cooc.BuildParallel(ctx, store.InRange(w.Start, w.End), w, r.graphOpts, r.buildWorkers)
			if err != nil {
				return nil, err
			}
			cache.Add(key, g)
			logger.Debug("built comparison graph", "window", w.String(), "edges", g.Len(), "total", g.Total())
			return g, nil
		})
		if err != nil {
			return nil, err
		}
		return v.(*cooc.Graph), nil
	}

	perYear := make([][]novelty.Record, len(focalYears))
	graphStats := make([]cooc.Stats, len(focalYears))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, year := range focalYears {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			graph, err := graphFor(gctx, windows[i])
			if err != nil {
				return fmt.Errorf("building graph for %d: %w", year, err)
			}
			recs, err := r.engine.ScoreYear(year, store.ByYear(year), graph)
			if err != nil {
				return fmt.Errorf("scoring %d: %w", year, err)
			}

			scored := 0
			for _, rec := range recs {
				if rec.Scored() {
					scored++
				}
			}
			perYear[i] = recs
			graphStats[i] = graph.Stats()
			res.Years[i] = YearSummary{Year: year, Window: windows[i], Documents: len(recs), Scored: scored}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, recs := range perYear {
		res.Records = append(res.Records, recs...)
	}
	sort.SliceStable(res.Records, func(i, j int) bool {
		a, b := res.Records[i], res.Records[j]
		if a.FocalYear != b.FocalYear {
			return a.FocalYear < b.FocalYear
		}
		return a.DocumentID < b.DocumentID
	})
	sort.SliceStable(res.Years, func(i, j int) bool { return res.Years[i].Year < res.Years[j].Year })
	res.Graphs = uniqueStats(graphStats)
	res.Duration = time.Since(started)

	logger.Info("finished novelty run", "records", len(res.Records), "scored", res.Scored(), "duration", res.Duration)
	return res, nil
}

// uniqueYears returns the distinct years in ascending order.
func uniqueYears(years []int) []int {
	out := make([]int, 0, len(years))
	seen := make(map[int]bool, len(years))
	for _, y := range years {
		if !seen[y] {
			seen[y] = true
			out = append(out, y)
		}
	}
	sort.Ints(out)
	return out
}

// uniqueStats keeps one entry per window, ordered by window.
func uniqueStats(stats []cooc.Stats) []cooc.Stats {
	seen := make(map[cooc.Window]bool, len(stats))
	out := make([]cooc.Stats, 0, len(stats))
	for _, s := range stats {
		if seen[s.Window] {
			continue
		}
		seen[s.Window] = true
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Window.Start != out[j].Window.Start {
			return out[i].Window.Start < out[j].Window.Start
		}
		return out[i].Window.End < out[j].Window.End
	})
	return out
}
