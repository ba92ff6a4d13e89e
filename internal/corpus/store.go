// Package corpus holds the canonical documents of one pipeline run.
//
// A Store is populated once and never mutated afterwards, so it can be shared
// by concurrent readers without locking.
package corpus

import (
	"sort"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/document"
)

// Store is an immutable, year-indexed set of documents.
type Store struct {
	all    []document.Document
	byYear map[int][]document.Document
	years  []int
	index  map[uint64]int // first position of each ID in all
}

// New builds a store from docs. Documents are ordered by (year, id) so every
// accessor returns them deterministically regardless of input order.
func New(docs []document.Document) *Store {
	all := make([]document.Document, len(docs))
	copy(all, docs)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Year != all[j].Year {
			return all[i].Year < all[j].Year
		}
		return all[i].ID < all[j].ID
	})

	s := &Store{
		all:    all,
		byYear: make(map[int][]document.Document),
		index:  make(map[uint64]int, len(all)),
	}

	start := 0
	for i := 1; i <= len(all); i++ {
		if i == len(all) || all[i].Year != all[start].Year {
			year := all[start].Year
			s.byYear[year] = all[start:i:i]
			s.years = append(s.years, year)
			start = i
		}
	}
	for i, d := range all {
		if _, ok := s.index[d.ID]; !ok {
			s.index[d.ID] = i
		}
	}
	return s
}

// All returns every document ordered by (year, id). Callers must not modify
// the returned slice.
func (s *Store) All() []document.Document {
	return s.all
}

// ByYear returns the documents published in year.
func (s *Store) ByYear(year int) []document.Document {
	return s.byYear[year]
}

// InRange returns the documents with y0 <= year <= y1.
func (s *Store) InRange(y0, y1 int) []document.Document {
	lo := sort.Search(len(s.all), func(i int) bool { return s.all[i].Year >= y0 })
	hi := sort.Search(len(s.all), func(i int) bool { return s.all[i].Year > y1 })
	if lo >= hi {
		return nil
	}
	return s.all[lo:hi:hi]
}

// Years returns the distinct publication years present, ascending.
func (s *Store) Years() []int {
	return s.years
}

// Len returns the number of documents.
func (s *Store) Len() int {
	return len(s.all)
}

// Lookup returns the first document stored under id.
func (s *Store) Lookup(id uint64) (document.Document, bool) {
	i, ok := s.index[id]
	if !ok {
		return document.Document{}, false
	}
	return s.all[i], true
}

// Contains reports whether a document with the given key is loaded.
func (s *Store) Contains(id uint64) bool {
	_, ok := s.index[id]
	return ok
}
