package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/canon"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/document"
)

func TestConverter_SkipsMalformedRecords(t *testing.T) {
	c := NewConverter(YearRange{Min: 2016, Max: 2024}, canon.DefaultBound)

	recs := []document.RawRecord{
		{ID: "", Year: document.IntPtr(2020)},
		{ID: "W-no-year"},
		{ID: "W-old", Year: document.IntPtr(2007)},
		{ID: "W-future", Year: document.IntPtr(2025)},
		{ID: "W-ok", Year: document.IntPtr(2020), ReferencedWorks: []string{"R1", "", "R2", "R1"}},
		{ID: "W-ok", Year: document.IntPtr(2020)},
	}

	docs := c.ConvertAll(recs)
	require.Len(t, docs, 1)

	s := c.Stats()
	assert.Equal(t, 6, s.Records)
	assert.Equal(t, 1, s.Accepted)
	assert.Equal(t, 1, s.MissingID)
	assert.Equal(t, 1, s.MissingYear)
	assert.Equal(t, 2, s.OutOfRange)
	assert.Equal(t, 1, s.Duplicates)
	assert.Equal(t, 1, s.BlankReferences)
	assert.Equal(t, 5, s.Skipped())
}

func TestConverter_CanonicalizesIdentity(t *testing.T) {
	c := NewConverter(YearRange{Min: 2016, Max: 2024}, canon.LegacyBound)

	doc, ok := c.Convert(document.RawRecord{
		ID:              "https://openalex.org/W2741809807",
		Year:            document.IntPtr(2018),
		ReferencedWorks: []string{"https://openalex.org/W1", "https://openalex.org/W1"},
		Title:           "A paper",
	})
	require.True(t, ok)

	assert.Equal(t, uint64(74233188), doc.ID)
	assert.Equal(t, 2018, doc.Year)
	assert.Equal(t, []uint64{12392989}, doc.References)
	assert.Equal(t, "https://openalex.org/W2741809807", doc.Metadata.SourceID)
	assert.Equal(t, "A paper", doc.Metadata.Title)
}

func TestConverter_EmptyReferences(t *testing.T) {
	c := NewConverter(YearRange{Min: 2000, Max: 2030}, canon.DefaultBound)
	doc, ok := c.Convert(document.RawRecord{ID: "W", Year: document.IntPtr(2020)})
	require.True(t, ok)
	assert.NotNil(t, doc.References)
	assert.Empty(t, doc.References)
}

func TestConverter_ReportsCollisions(t *testing.T) {
	reg := canon.NewRegistry(1)
	c := NewConverter(YearRange{Min: 2000, Max: 2030}, 1, WithRegistry(reg))

	c.ConvertAll([]document.RawRecord{
		{ID: "W1", Year: document.IntPtr(2020)},
		{ID: "W2", Year: document.IntPtr(2020)},
	})

	assert.Equal(t, 1, c.Stats().Collisions)
	assert.Same(t, reg, c.Registry())
	require.Len(t, reg.Collisions(), 1)
	assert.Equal(t, []string{"W1", "W2"}, reg.Collisions()[0].IDs)
}
