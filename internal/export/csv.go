// Package export writes merged novelty rows to various formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/merge"
)

// ListSeparator joins multi-valued columns such as authors.
const ListSeparator = "; "

// CSVHeader is the column order written by WriteCSV.
var CSVHeader = []string{
	"id", "source_id", "year", "focal_year", "title", "type",
	"cited_by_count", "num_authors", "num_references", "authors", "institutions",
	"subfield", "field", "domain",
	"publisher", "open_access_status", "license", "query",
	"novelty",
}

// WriteCSV writes rows with a header line. Absent novelty is an empty cell.
func WriteCSV(w io.Writer, rows []merge.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range rows {
		if err := cw.Write(csvRecord(r)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

func csvRecord(r merge.Row) []string {
	d := r.Document
	m := d.Metadata
	return []string{
		strconv.FormatUint(d.ID, 10),
		m.SourceID,
		strconv.Itoa(d.Year),
		strconv.Itoa(r.FocalYear),
		m.Title,
		m.Type,
		strconv.Itoa(m.CitedByCount),
		strconv.Itoa(d.NumAuthors()),
		strconv.Itoa(len(d.References)),
		strings.Join(m.Authors, ListSeparator),
		strings.Join(m.Institutions, ListSeparator),
		m.Concepts.Subfield,
		m.Concepts.Field,
		m.Concepts.Domain,
		m.Publisher,
		m.OpenAccessStatus,
		m.License,
		m.Query,
		formatScore(r.Score),
	}
}

// formatScore renders a score with the shortest exact representation.
func formatScore(s *float64) string {
	if s == nil {
		return ""
	}
	return strconv.FormatFloat(*s, 'g', -1, 64)
}
