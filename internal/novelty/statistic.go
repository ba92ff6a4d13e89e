package novelty

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Kind selects how per-pair commonness values are combined.
type Kind int

const (
	KindPercentile Kind = iota
	KindMin
	KindMean
)

// DefaultPercentile is the rarity percentile used by the Lee et al. indicator.
const DefaultPercentile = 10.0

// Statistic combines the commonness of a document's reference pairs.
type Statistic struct {
	Kind Kind
	P    float64 // percentile in [0, 100], used by KindPercentile
}

// DefaultStatistic is the 10th percentile.
func DefaultStatistic() Statistic {
	return Statistic{Kind: KindPercentile, P: DefaultPercentile}
}

// ParseStatistic accepts "min", "mean", "percentile:P", "percentile(P)" and "pP".
func ParseStatistic(s string) (Statistic, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "min", "minimum":
		return Statistic{Kind: KindMin}, nil
	case "mean", "average":
		return Statistic{Kind: KindMean}, nil
	case "", "percentile":
		return DefaultStatistic(), nil
	}

	var raw string
	switch {
	case strings.HasPrefix(s, "percentile:"):
		raw = strings.TrimPrefix(s, "percentile:")
	case strings.HasPrefix(s, "percentile(") && strings.HasSuffix(s, ")"):
		raw = strings.TrimSuffix(strings.TrimPrefix(s, "percentile("), ")")
	case strings.HasPrefix(s, "p"):
		raw = strings.TrimPrefix(s, "p")
	default:
		return Statistic{}, fmt.Errorf("%w: unknown statistic %q", ErrInvalidPolicy, s)
	}

	p, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return Statistic{}, fmt.Errorf("%w: percentile %q: %v", ErrInvalidPolicy, raw, err)
	}
	st := Statistic{Kind: KindPercentile, P: p}
	if err := st.Validate(); err != nil {
		return Statistic{}, err
	}
	return st, nil
}

// Validate checks the percentile bounds.
func (s Statistic) Validate() error {
	switch s.Kind {
	case KindMin, KindMean:
		return nil
	case KindPercentile:
		if math.IsNaN(s.P) || s.P < 0 || s.P > 100 {
			return fmt.Errorf("%w: percentile %v outside [0, 100]", ErrInvalidPolicy, s.P)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown statistic kind %d", ErrInvalidPolicy, s.Kind)
}

func (s Statistic) String() string {
	switch s.Kind {
	case KindMin:
		return "min"
	case KindMean:
		return "mean"
	default:
		return "percentile:" + strconv.FormatFloat(s.P, 'g', -1, 64)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Statistic) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Statistic) UnmarshalText(b []byte) error {
	parsed, err := ParseStatistic(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Apply combines values, which must be non-empty. values is sorted in place.
//
// Percentiles use the empirical quantile: the smallest value whose
// cumulative share of the sample is at least P/100. P = 0 is the minimum.
func (s Statistic) Apply(values []float64) float64 {
	sort.Float64s(values)
	switch s.Kind {
	case KindMin:
		return values[0]
	case KindMean:
		return stat.Mean(values, nil)
	default:
		if s.P == 0 {
			return values[0]
		}
		return stat.Quantile(s.P/100, stat.Empirical, values, nil)
	}
}
