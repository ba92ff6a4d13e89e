// Package merge joins novelty records back onto document metadata.
package merge

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/document"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/novelty"
)

// ErrUnknownPolicy is returned for an unrecognized merge policy name.
var ErrUnknownPolicy = errors.New("unknown merge policy")

// Policy decides which documents survive the join.
type Policy string

const (
	// DropUnscored keeps only documents with a score. This is the historical
	// left join followed by dropping rows whose novelty is missing.
	DropUnscored Policy = "drop-unscored"
	// DropUnmatched keeps documents that have a record, scored or absent.
	DropUnmatched Policy = "drop-unmatched"
	// KeepAll keeps every document; those without a record are absent.
	KeepAll Policy = "keep-all"
)

// DefaultPolicy is the historical behavior.
const DefaultPolicy = DropUnscored

// ParsePolicy converts a name into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case DropUnscored, DropUnmatched, KeepAll:
		return p, nil
	case "":
		return DefaultPolicy, nil
	}
	return "", fmt.Errorf("%w: %q (valid: %s, %s, %s)", ErrUnknownPolicy, s, DropUnscored, DropUnmatched, KeepAll)
}

// Row is a document with its novelty outcome.
type Row struct {
	Document  document.Document `json:"document"`
	FocalYear int               `json:"focal_year"`
	Score     *float64          `json:"novelty"`
	Matched   bool              `json:"matched"` // a novelty record existed for the document
}

// Merge joins records onto docs by document ID. When several records share
// an ID (scoring the same document in several focal years) the one whose
// focal year equals the document's year wins, then the latest focal year.
// Rows are ordered by (year, id).
func Merge(docs []document.Document, records []novelty.Record, policy Policy) ([]Row, error) {
	switch policy {
	case DropUnscored, DropUnmatched, KeepAll:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}

	byID := make(map[uint64][]novelty.Record, len(records))
	for _, r := range records {
		byID[r.DocumentID] = append(byID[r.DocumentID], r)
	}

	rows := make([]Row, 0, len(docs))
	for _, d := range docs {
		rec, ok := pick(byID[d.ID], d.Year)
		row := Row{Document: d, FocalYear: d.Year}
		if ok {
			row.Matched = true
			row.FocalYear = rec.FocalYear
			row.Score = rec.Score
		}

		switch {
		case policy == DropUnscored && row.Score == nil:
			continue
		case policy == DropUnmatched && !row.Matched:
			continue
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Document, rows[j].Document
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.ID < b.ID
	})
	return rows, nil
}

func pick(recs []novelty.Record, year int) (novelty.Record, bool) {
	if len(recs) == 0 {
		return novelty.Record{}, false
	}
	best := recs[0]
	for _, r := range recs[1:] {
		switch {
		case r.FocalYear == year && best.FocalYear != year:
			best = r
		case (r.FocalYear == year) == (best.FocalYear == year) && r.FocalYear > best.FocalYear:
			best = r
		}
	}
	return best, true
}

// Scores returns the non-absent scores of rows, in row order.
func Scores(rows []Row) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if r.Score != nil {
			out = append(out, *r.Score)
		}
	}
	return out
}
