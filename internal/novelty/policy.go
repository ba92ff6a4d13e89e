package novelty

import (
	"errors"
	"fmt"
)

// ErrInvalidPolicy is returned for unusable scoring parameters.
var ErrInvalidPolicy = errors.New("invalid scoring policy")

// Policy holds the scoring parameters. The pair-generation rule (self-loops
// or not) comes from the comparison graph so that scoring and construction
// always agree.
type Policy struct {
	// Density divides pair weights by the graph's total edge weight,
	// making commonness a share in [0, 1]. When false raw weights are used.
	Density bool

	// SkipUnknown drops references that no comparison-window document cites
	// before pairs are formed. When false, unknown references take part and
	// their pairs have commonness 0. Either way a document none of whose
	// references are in the graph is unscored.
	SkipUnknown bool

	Statistic Statistic
}

// DefaultPolicy mirrors the historical configuration.
func DefaultPolicy() Policy {
	return Policy{
		Density:   true,
		Statistic: DefaultStatistic(),
	}
}

// Validate checks the policy.
func (p Policy) Validate() error {
	if err := p.Statistic.Validate(); err != nil {
		return fmt.Errorf("statistic: %w", err)
	}
	return nil
}
