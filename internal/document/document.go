// Package document defines the core domain types for scholarly works.
package document

import "sort"

// Document is a canonicalized scholarly work.
type Document struct {
	// Identity
	ID   uint64 `json:"id"`   // Canonical key of the external identifier
	Year int    `json:"year"` // Publication year

	// Cited works as canonical keys, sorted and de-duplicated.
	References []uint64 `json:"references"`

	// Descriptive payload, never interpreted by the scoring core.
	Metadata Metadata `json:"metadata"`
}

// Metadata holds optional descriptive fields carried through the pipeline.
// Missing strings are empty and missing counts are zero.
type Metadata struct {
	SourceID         string   `json:"source_id,omitempty"` // External identifier (e.g. OpenAlex work URL)
	Title            string   `json:"title,omitempty"`
	Type             string   `json:"type,omitempty"` // article, review, preprint, ...
	Authors          []string `json:"authors,omitempty"`
	Institutions     []string `json:"institutions,omitempty"`
	Concepts         Concepts `json:"concepts"`
	CitedByCount     int      `json:"cited_by_count,omitempty"`
	Publisher        string   `json:"publisher,omitempty"`
	OpenAccessStatus string   `json:"open_access_status,omitempty"`
	License          string   `json:"license,omitempty"`
	Query            string   `json:"query,omitempty"` // Search query the record was retrieved with
}

// Concepts are the three leading subject concepts of a work.
type Concepts struct {
	Subfield string `json:"subfield,omitempty"`
	Field    string `json:"field,omitempty"`
	Domain   string `json:"domain,omitempty"`
}

// NumAuthors returns the number of listed authors.
func (d Document) NumAuthors() int {
	return len(d.Metadata.Authors)
}

// Cites reports whether the document cites key.
func (d Document) Cites(key uint64) bool {
	i := sort.Search(len(d.References), func(i int) bool { return d.References[i] >= key })
	return i < len(d.References) && d.References[i] == key
}

// NormalizeReferences returns keys sorted ascending with duplicates removed.
// The input slice is not modified.
func NormalizeReferences(keys []uint64) []uint64 {
	if len(keys) == 0 {
		return []uint64{}
	}
	out := make([]uint64, len(keys))
	copy(out, keys)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}

// SameSource reports whether two documents sharing a key plausibly describe
// the same work. Documents whose external identifiers, titles or years
// disagree are treated as distinct works collapsed by a key collision.
func SameSource(a, b Document) bool {
	if a.Metadata.SourceID != "" && b.Metadata.SourceID != "" {
		return a.Metadata.SourceID == b.Metadata.SourceID
	}
	if a.Metadata.Title != "" && b.Metadata.Title != "" && a.Metadata.Title != b.Metadata.Title {
		return false
	}
	return a.Year == b.Year
}
