package corpus

import (
	"sort"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/canon"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/document"
)

// DanglingSampleSize caps the number of dangling references listed.
const DanglingSampleSize = 10

// DanglingRef is a citation of a work that is not in the loaded corpus.
type DanglingRef struct {
	DocumentID uint64 `json:"document_id"`
	Reference  uint64 `json:"reference"`
}

// DocumentCollision lists documents sharing a key but describing different works.
type DocumentCollision struct {
	Key       uint64   `json:"key"`
	SourceIDs []string `json:"source_ids"`
}

// ValidationResult is the advisory outcome of a corpus check. Dangling
// references are expected and never make a corpus invalid.
type ValidationResult struct {
	Documents        int                 `json:"documents"`
	References       int                 `json:"references"`
	Dangling         int                 `json:"dangling"`
	DanglingDistinct int                 `json:"dangling_distinct"`
	DanglingSample   []DanglingRef       `json:"dangling_sample"`
	Collisions       []DocumentCollision `json:"collisions"`
	IDCollisions     []canon.Collision   `json:"id_collisions"`
}

// OK reports whether no identity collision was found.
func (r ValidationResult) OK() bool {
	return len(r.Collisions) == 0 && len(r.IDCollisions) == 0
}

// ResolvedFraction returns the share of reference occurrences that point at
// a loaded document.
func (r ValidationResult) ResolvedFraction() float64 {
	if r.References == 0 {
		return 0
	}
	return float64(r.References-r.Dangling) / float64(r.References)
}

// Validate checks docs for dangling references and key collisions. The
// registry is optional; when given, identifier collisions recorded during
// ingestion are included.
func Validate(docs []document.Document, registry *canon.Registry) ValidationResult {
	res := ValidationResult{
		Documents:      len(docs),
		DanglingSample: []DanglingRef{},
		Collisions:     []DocumentCollision{},
		IDCollisions:   []canon.Collision{},
	}

	byKey := make(map[uint64][]document.Document, len(docs))
	for _, d := range docs {
		byKey[d.ID] = append(byKey[d.ID], d)
	}

	distinct := make(map[uint64]struct{})
	for _, d := range docs {
		for _, ref := range d.References {
			res.References++
			if _, ok := byKey[ref]; ok {
				continue
			}
			res.Dangling++
			distinct[ref] = struct{}{}
			res.DanglingSample = append(res.DanglingSample, DanglingRef{DocumentID: d.ID, Reference: ref})
		}
	}
	res.DanglingDistinct = len(distinct)

	sort.Slice(res.DanglingSample, func(i, j int) bool {
		a, b := res.DanglingSample[i], res.DanglingSample[j]
		if a.DocumentID != b.DocumentID {
			return a.DocumentID < b.DocumentID
		}
		return a.Reference < b.Reference
	})
	if len(res.DanglingSample) > DanglingSampleSize {
		res.DanglingSample = res.DanglingSample[:DanglingSampleSize]
	}

	for key, group := range byKey {
		if len(group) < 2 {
			continue
		}
		if !groupDiffers(group) {
			continue
		}
		ids := make([]string, 0, len(group))
		for _, d := range group {
			ids = append(ids, d.Metadata.SourceID)
		}
		sort.Strings(ids)
		res.Collisions = append(res.Collisions, DocumentCollision{Key: key, SourceIDs: ids})
	}
	sort.Slice(res.Collisions, func(i, j int) bool { return res.Collisions[i].Key < res.Collisions[j].Key })

	if registry != nil {
		res.IDCollisions = append(res.IDCollisions, registry.Collisions()...)
	}

	return res
}

// Validate runs Validate over every document in the store.
func (s *Store) Validate(registry *canon.Registry) ValidationResult {
	return Validate(s.all, registry)
}

func groupDiffers(group []document.Document) bool {
	for _, d := range group[1:] {
		if !document.SameSource(group[0], d) {
			return true
		}
	}
	return false
}
