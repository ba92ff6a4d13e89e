package pipeline

import (
	"errors"
	"fmt"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/cooc"
)

// ErrInvalidWindowPolicy is returned for unusable comparison window settings.
var ErrInvalidWindowPolicy = errors.New("invalid comparison window policy")

// WindowMode selects how a focal year's comparison window is derived.
type WindowMode string

const (
	// WindowFixed uses the same [Start, End] for every focal year.
	WindowFixed WindowMode = "fixed"
	// WindowTrailing uses the Span years ending at the focal year, or just
	// before it when IncludeFocal is false.
	WindowTrailing WindowMode = "trailing"
)

// WindowPolicy maps focal years to comparison windows.
type WindowPolicy struct {
	Mode         WindowMode
	Start        int
	End          int
	Span         int
	IncludeFocal bool
}

// Validate checks the policy independently of any focal year.
func (p WindowPolicy) Validate() error {
	switch p.Mode {
	case WindowFixed:
		if p.End < p.Start {
			return fmt.Errorf("%w: fixed window end %d before start %d", ErrInvalidWindowPolicy, p.End, p.Start)
		}
	case WindowTrailing:
		if p.Span < 1 {
			return fmt.Errorf("%w: trailing span %d must be at least 1", ErrInvalidWindowPolicy, p.Span)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidWindowPolicy, p.Mode)
	}
	return nil
}

// For returns the comparison window of focalYear.
func (p WindowPolicy) For(focalYear int) (cooc.Window, error) {
	if err := p.Validate(); err != nil {
		return cooc.Window{}, err
	}

	var w cooc.Window
	switch p.Mode {
	case WindowFixed:
		w = cooc.Window{Start: p.Start, End: p.End}
	case WindowTrailing:
		end := focalYear
		if !p.IncludeFocal {
			end--
		}
		w = cooc.Window{Start: end - p.Span + 1, End: end}
	}
	if err := w.Validate(); err != nil {
		return cooc.Window{}, err
	}
	return w, nil
}

// FocalYears returns the years start..end inclusive.
func FocalYears(start, end int) []int {
	if end < start {
		return nil
	}
	years := make([]int, 0, end-start+1)
	for y := start; y <= end; y++ {
		years = append(years, y)
	}
	return years
}
