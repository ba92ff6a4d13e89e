package document

// RawRecord is an ingestion record before canonicalization. Only ID, Year
// and ReferencedWorks are required by the core; everything else is payload.
type RawRecord struct {
	ID              string   `json:"id"`
	Year            *int     `json:"publication_year"` // nil when the source omitted it
	ReferencedWorks []string `json:"referenced_works"`

	Title            string   `json:"title,omitempty"`
	Type             string   `json:"type,omitempty"`
	Authors          []string `json:"authors,omitempty"`
	Institutions     []string `json:"institutions,omitempty"`
	Concepts         Concepts `json:"concepts"`
	CitedByCount     int      `json:"cited_by_count,omitempty"`
	Publisher        string   `json:"publisher,omitempty"`
	OpenAccessStatus string   `json:"open_access_status,omitempty"`
	License          string   `json:"license,omitempty"`
	Query            string   `json:"query,omitempty"`
}

// Metadata returns the descriptive payload of the record.
func (r RawRecord) Metadata() Metadata {
	return Metadata{
		SourceID:         r.ID,
		Title:            r.Title,
		Type:             r.Type,
		Authors:          r.Authors,
		Institutions:     r.Institutions,
		Concepts:         r.Concepts,
		CitedByCount:     r.CitedByCount,
		Publisher:        r.Publisher,
		OpenAccessStatus: r.OpenAccessStatus,
		License:          r.License,
		Query:            r.Query,
	}
}

// IntPtr returns a pointer to v. Handy for building records in code.
func IntPtr(v int) *int {
	return &v
}
