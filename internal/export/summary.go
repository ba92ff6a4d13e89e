package export

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/merge"
)

// Summary describes the score distribution of a merged dataset.
type Summary struct {
	Rows   int     `json:"rows"`
	Scored int     `json:"scored"`
	Absent int     `json:"absent"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
}

// Summarize computes descriptive statistics over the scored rows.
// Distribution fields are zero when nothing was scored.
func Summarize(rows []merge.Row) Summary {
	scores := merge.Scores(rows)
	s := Summary{
		Rows:   len(rows),
		Scored: len(scores),
		Absent: len(rows) - len(scores),
	}
	if len(scores) == 0 {
		return s
	}

	s.Min = floats.Min(scores)
	s.Max = floats.Max(scores)
	s.Mean, s.StdDev = stat.MeanStdDev(scores, nil)
	if len(scores) == 1 {
		s.StdDev = 0
	}

	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)
	s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	return s
}
