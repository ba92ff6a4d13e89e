package openalex

// WorksResponse is one page of the /works endpoint.
type WorksResponse struct {
	Meta    Meta   `json:"meta"`
	Results []Work `json:"results"`
}

// Meta carries pagination information.
type Meta struct {
	Count   int `json:"count"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// Work is the subset of an OpenAlex work used by the pipeline.
type Work struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	DisplayName     string       `json:"display_name"`
	PublicationYear *int         `json:"publication_year"`
	Type            string       `json:"type"`
	CitedByCount    int          `json:"cited_by_count"`
	Authorships     []Authorship `json:"authorships"`
	Concepts        []Concept    `json:"concepts"`
	ReferencedWorks []string     `json:"referenced_works"`
	HostVenue       *HostVenue   `json:"host_venue,omitempty"`
	PrimaryLocation *Location    `json:"primary_location,omitempty"`
	OpenAccess      *OpenAccess  `json:"open_access,omitempty"`
	License         string       `json:"license,omitempty"`
}

type Authorship struct {
	Author       Author        `json:"author"`
	Institutions []Institution `json:"institutions"`
}

type Author struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type Institution struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Concept is a tagged subject, ordered by relevance in the API response.
type Concept struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Level       int     `json:"level"`
	Score       float64 `json:"score"`
}

// HostVenue is the legacy venue object, still present on older snapshots.
type HostVenue struct {
	DisplayName string `json:"display_name"`
	Publisher   string `json:"publisher"`
}

type Location struct {
	License string  `json:"license"`
	Source  *Source `json:"source,omitempty"`
}

type Source struct {
	DisplayName          string `json:"display_name"`
	HostOrganizationName string `json:"host_organization_name"`
}

type OpenAccess struct {
	IsOA     bool   `json:"is_oa"`
	OAStatus string `json:"oa_status"`
}
