package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/document"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/novelty"
)

func testDocs() []document.Document {
	return []document.Document{
		{ID: 11, Year: 2020, References: []uint64{1, 2}, Metadata: document.Metadata{SourceID: "W11", Title: "Graphs of citations"}},
		{ID: 12, Year: 2020, References: []uint64{}, Metadata: document.Metadata{SourceID: "W12"}},
		{ID: 21, Year: 2021, References: []uint64{2, 3, 4}, Metadata: document.Metadata{SourceID: "W21", Authors: []string{"Ada Lovelace"}}},
		{ID: 23, Year: 2023, References: []uint64{1}, Metadata: document.Metadata{SourceID: "W23"}},
	}
}

func TestRawRecords_AppendAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")

	first := []document.RawRecord{{ID: "W1", Year: document.IntPtr(2020), ReferencedWorks: []string{"W9"}}}
	second := []document.RawRecord{{ID: "W2"}, {ID: "W3", Year: document.IntPtr(2021)}}

	if err := AppendRawRecords(path, first); err != nil {
		t.Fatalf("AppendRawRecords() error = %v", err)
	}
	if err := AppendRawRecords(path, second); err != nil {
		t.Fatalf("AppendRawRecords() error = %v", err)
	}

	got, err := ReadRawRecords(path)
	if err != nil {
		t.Fatalf("ReadRawRecords() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ReadRawRecords() returned %d records, want 3", len(got))
	}
	if got[1].ID != "W2" || got[1].Year != nil {
		t.Errorf("record without year = %+v, want nil year", got[1])
	}
	if got[0].Year == nil || *got[0].Year != 2020 {
		t.Errorf("record year = %v, want 2020", got[0].Year)
	}
}

func TestReadRawRecords_Missing(t *testing.T) {
	got, err := ReadRawRecords(filepath.Join(t.TempDir(), "nope.jsonl"))
	if err != nil {
		t.Fatalf("ReadRawRecords() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ReadRawRecords() = %v, want empty", got)
	}
}

func TestReadRawRecords_BadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	content := `{"id":"W1"}` + "\n\n" + `{"id":` + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadRawRecords(path)
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("ReadRawRecords() error = %v, want parse error on line 3", err)
	}
}

func TestSaveByYear_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")

	counts, err := SaveByYear(dir, testDocs())
	if err != nil {
		t.Fatalf("SaveByYear() error = %v", err)
	}
	want := map[int]int{2020: 2, 2021: 1, 2023: 1}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("SaveByYear() counts = %v, want %v", counts, want)
	}

	years, err := Years(dir)
	if err != nil {
		t.Fatalf("Years() error = %v", err)
	}
	if !reflect.DeepEqual(years, []int{2020, 2021, 2023}) {
		t.Errorf("Years() = %v", years)
	}

	all, err := ReadAllDocs(dir)
	if err != nil {
		t.Fatalf("ReadAllDocs() error = %v", err)
	}
	if !reflect.DeepEqual(all, testDocs()) {
		t.Errorf("ReadAllDocs() = %+v, want %+v", all, testDocs())
	}
}

func TestReadRange_SkipsMissingYears(t *testing.T) {
	dir := t.TempDir()
	if _, err := SaveByYear(dir, testDocs()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		from, to int
		wantIDs  []uint64
	}{
		{2020, 2020, []uint64{11, 12}},
		{2021, 2023, []uint64{21, 23}},
		{2022, 2022, nil},
		{2010, 2030, []uint64{11, 12, 21, 23}},
	}
	for _, tt := range tests {
		docs, err := ReadRange(dir, tt.from, tt.to)
		if err != nil {
			t.Fatalf("ReadRange(%d, %d) error = %v", tt.from, tt.to, err)
		}
		var ids []uint64
		for _, d := range docs {
			ids = append(ids, d.ID)
		}
		if !reflect.DeepEqual(ids, tt.wantIDs) {
			t.Errorf("ReadRange(%d, %d) ids = %v, want %v", tt.from, tt.to, ids, tt.wantIDs)
		}
	}
}

func TestWriteYear_RejectsOtherYears(t *testing.T) {
	if err := WriteYear(t.TempDir(), 2021, testDocs()[:1]); err == nil {
		t.Error("WriteYear() expected error for a 2020 document in 2021")
	}
}

func TestYears_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2020.jsonl", "notes.jsonl", "2021.json", "2019.jsonl"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	years, err := Years(dir)
	if err != nil {
		t.Fatalf("Years() error = %v", err)
	}
	if !reflect.DeepEqual(years, []int{2019, 2020}) {
		t.Errorf("Years() = %v, want [2019 2020]", years)
	}
}

func TestRecords_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	score := -0.25
	zero := 0.0
	recs := []novelty.Record{
		{DocumentID: 30, FocalYear: 2021, Score: &score, Pairs: 3, Known: 2},
		{DocumentID: 10, FocalYear: 2021},
		{DocumentID: 20, FocalYear: 2020, Score: &zero, Pairs: 1, Known: 1},
	}

	if err := SaveRecordsByYear(dir, recs); err != nil {
		t.Fatalf("SaveRecordsByYear() error = %v", err)
	}
	got, err := ReadRecords(dir)
	if err != nil {
		t.Fatalf("ReadRecords() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ReadRecords() returned %d records, want 3", len(got))
	}

	if got[0].DocumentID != 20 || got[1].DocumentID != 10 || got[2].DocumentID != 30 {
		t.Errorf("order = %d, %d, %d; want 20, 10, 30", got[0].DocumentID, got[1].DocumentID, got[2].DocumentID)
	}
	if got[0].Score == nil || *got[0].Score != 0 {
		t.Errorf("zero score lost: %v", got[0].Score)
	}
	if got[1].Score != nil {
		t.Errorf("absent score became %v", *got[1].Score)
	}
}
