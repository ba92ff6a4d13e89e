// Package novelty scores documents by how unusual their combinations of cited
// references are relative to a comparison co-occurrence graph.
//
// For every pair of a document's references the engine looks up the pair's
// weight in the comparison graph, turns it into a commonness value, combines
// the values with a rarity statistic and negates the result: documents built
// on rarer combinations score higher. Scores are at most 0.
package novelty

import (
	"log/slog"
	"sort"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/cooc"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/document"
)

// Record is the novelty outcome for one document in one focal year.
// A nil Score means the document could not be evaluated, which is distinct
// from a score of 0.
type Record struct {
	DocumentID uint64   `json:"document_id"`
	FocalYear  int      `json:"focal_year"`
	Score      *float64 `json:"score"`
	Pairs      int      `json:"pairs"` // reference pairs evaluated
	Known      int      `json:"known"` // references present in the comparison graph
}

// Scored reports whether the record carries a score.
func (r Record) Scored() bool {
	return r.Score != nil
}

// Engine computes novelty scores. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	policy Policy
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an engine, rejecting invalid policies.
func New(policy Policy, opts ...Option) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{policy: policy, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Policy returns the engine's scoring parameters.
func (e *Engine) Policy() Policy {
	return e.policy
}

// ScoreYear scores every document in docs published in focalYear against
// the comparison graph g. Records are ordered by document ID. The only error
// is a malformed comparison window.
func (e *Engine) ScoreYear(focalYear int, docs []document.Document, g *cooc.Graph) ([]Record, error) {
	if err := g.Window().Validate(); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(docs))
	scored := 0
	for _, d := range docs {
		if d.Year != focalYear {
			continue
		}
		rec := e.ScoreDocument(d, g)
		rec.FocalYear = focalYear
		if rec.Scored() {
			scored++
		}
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].DocumentID < records[j].DocumentID })

	e.logger.Debug("scored focal year",
		"year", focalYear,
		"window", g.Window().String(),
		"documents", len(records),
		"scored", scored,
	)
	return records, nil
}

// ScoreDocument scores a single document against g. FocalYear is set to the
// document's year.
func (e *Engine) ScoreDocument(d document.Document, g *cooc.Graph) Record {
	rec := Record{DocumentID: d.ID, FocalYear: d.Year}

	refs := document.NormalizeReferences(d.References)
	known := make([]uint64, 0, len(refs))
	for _, r := range refs {
		if g.HasNode(r) {
			known = append(known, r)
		}
	}
	rec.Known = len(known)
	if rec.Known == 0 {
		return rec
	}
	if e.policy.SkipUnknown {
		refs = known
	}

	selfLoops := g.Options().SelfLoops
	n := cooc.PairCount(len(refs), selfLoops)
	if n == 0 {
		return rec
	}

	values := make([]float64, 0, n)
	total := float64(g.Total())
	cooc.ForEachPair(refs, selfLoops, func(p cooc.Pair) {
		values = append(values, e.commonness(g.Weight(p.A, p.B), total))
	})

	score := negate(e.policy.Statistic.Apply(values))
	rec.Score = &score
	rec.Pairs = len(values)
	return rec
}

func (e *Engine) commonness(weight int64, total float64) float64 {
	if !e.policy.Density {
		return float64(weight)
	}
	if total == 0 {
		return 0
	}
	return float64(weight) / total
}

// negate flips the sign without producing -0.
func negate(v float64) float64 {
	return 0 - v
}

// ScoreWindow builds the comparison graph for w from docs and scores the
// focal-year documents against it.
func (e *Engine) ScoreWindow(focalYear int, docs []document.Document, w cooc.Window, opts cooc.Options) ([]Record, error) {
	g, err := cooc.Build(docs, w, opts)
	if err != nil {
		return nil, err
	}
	return e.ScoreYear(focalYear, docs, g)
}
