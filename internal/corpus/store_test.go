package corpus

import (
	"reflect"
	"testing"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/canon"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/document"
)

func testDocs() []document.Document {
	return []document.Document{
		{ID: 30, Year: 2021, References: []uint64{10, 20}},
		{ID: 10, Year: 2020, References: []uint64{99}},
		{ID: 20, Year: 2020, References: []uint64{10}},
		{ID: 40, Year: 2023, References: []uint64{}},
	}
}

func ids(docs []document.Document) []uint64 {
	out := make([]uint64, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestStore_Ordering(t *testing.T) {
	s := New(testDocs())

	if got, want := ids(s.All()), []uint64{10, 20, 30, 40}; !reflect.DeepEqual(got, want) {
		t.Errorf("All() ids = %v, want %v", got, want)
	}
	if got, want := s.Years(), []int{2020, 2021, 2023}; !reflect.DeepEqual(got, want) {
		t.Errorf("Years() = %v, want %v", got, want)
	}
	if s.Len() != 4 {
		t.Errorf("Len() = %d, want 4", s.Len())
	}
}

func TestStore_ByYear(t *testing.T) {
	s := New(testDocs())

	tests := []struct {
		year int
		want []uint64
	}{
		{2020, []uint64{10, 20}},
		{2021, []uint64{30}},
		{2022, []uint64{}},
		{2023, []uint64{40}},
	}
	for _, tt := range tests {
		got := ids(s.ByYear(tt.year))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ByYear(%d) = %v, want %v", tt.year, got, tt.want)
		}
	}
}

func TestStore_ByYearIsolation(t *testing.T) {
	s := New(testDocs())
	y := s.ByYear(2020)
	// Appending to a year slice must not clobber the next year.
	_ = append(y, document.Document{ID: 999, Year: 2020})
	if got := ids(s.ByYear(2021)); !reflect.DeepEqual(got, []uint64{30}) {
		t.Errorf("ByYear(2021) after append = %v", got)
	}
}

func TestStore_InRange(t *testing.T) {
	s := New(testDocs())

	tests := []struct {
		y0, y1 int
		want   []uint64
	}{
		{2020, 2021, []uint64{10, 20, 30}},
		{2021, 2023, []uint64{30, 40}},
		{2022, 2022, []uint64{}},
		{2024, 2030, []uint64{}},
		{2021, 2020, []uint64{}},
	}
	for _, tt := range tests {
		got := ids(s.InRange(tt.y0, tt.y1))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("InRange(%d, %d) = %v, want %v", tt.y0, tt.y1, got, tt.want)
		}
	}
}

func TestStore_Lookup(t *testing.T) {
	s := New(testDocs())

	d, ok := s.Lookup(30)
	if !ok || d.Year != 2021 {
		t.Errorf("Lookup(30) = %+v, %v", d, ok)
	}
	if _, ok := s.Lookup(12345); ok {
		t.Error("Lookup(12345) found a document")
	}
	if !s.Contains(10) || s.Contains(11) {
		t.Error("Contains() mismatch")
	}
}

func TestStore_Empty(t *testing.T) {
	s := New(nil)
	if s.Len() != 0 || len(s.Years()) != 0 || len(s.All()) != 0 {
		t.Errorf("empty store not empty: len=%d years=%v", s.Len(), s.Years())
	}
}

func TestValidate_DanglingReferences(t *testing.T) {
	res := New(testDocs()).Validate(nil)

	if res.Documents != 4 {
		t.Errorf("Documents = %d, want 4", res.Documents)
	}
	if res.References != 4 {
		t.Errorf("References = %d, want 4", res.References)
	}
	if res.Dangling != 1 || res.DanglingDistinct != 1 {
		t.Errorf("Dangling = %d/%d, want 1/1", res.Dangling, res.DanglingDistinct)
	}
	if want := []DanglingRef{{DocumentID: 10, Reference: 99}}; !reflect.DeepEqual(res.DanglingSample, want) {
		t.Errorf("DanglingSample = %v, want %v", res.DanglingSample, want)
	}
	if !res.OK() {
		t.Error("dangling references must not make the corpus invalid")
	}
	if got := res.ResolvedFraction(); got != 0.75 {
		t.Errorf("ResolvedFraction() = %v, want 0.75", got)
	}
}

func TestValidate_SampleIsCapped(t *testing.T) {
	refs := make([]uint64, 0, 25)
	for i := uint64(0); i < 25; i++ {
		refs = append(refs, 1000+i)
	}
	res := Validate([]document.Document{{ID: 1, Year: 2020, References: refs}}, nil)
	if res.Dangling != 25 {
		t.Errorf("Dangling = %d, want 25", res.Dangling)
	}
	if len(res.DanglingSample) != DanglingSampleSize {
		t.Errorf("len(DanglingSample) = %d, want %d", len(res.DanglingSample), DanglingSampleSize)
	}
}

func TestValidate_Collisions(t *testing.T) {
	docs := []document.Document{
		{ID: 7, Year: 2020, Metadata: document.Metadata{SourceID: "W1", Title: "One"}},
		{ID: 7, Year: 2021, Metadata: document.Metadata{SourceID: "W2", Title: "Two"}},
		{ID: 8, Year: 2020, Metadata: document.Metadata{SourceID: "W3"}},
		{ID: 8, Year: 2020, Metadata: document.Metadata{SourceID: "W3"}},
	}

	reg := canon.NewRegistry(1)
	reg.Register("W1")
	reg.Register("W2")

	res := Validate(docs, reg)
	if res.OK() {
		t.Error("OK() = true with colliding documents")
	}
	want := []DocumentCollision{{Key: 7, SourceIDs: []string{"W1", "W2"}}}
	if !reflect.DeepEqual(res.Collisions, want) {
		t.Errorf("Collisions = %v, want %v", res.Collisions, want)
	}
	if len(res.IDCollisions) != 1 {
		t.Errorf("IDCollisions = %v, want 1 entry", res.IDCollisions)
	}
}
