// Package openalex retrieves scholarly works from the OpenAlex API and maps
// them to raw ingestion records.
package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/document"
)

const (
	// BaseURL is the OpenAlex API base URL.
	BaseURL = "https://api.openalex.org"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is the polite-pool limit of 10 requests per second.
	RateLimit = 10.0

	// MaxPerPage is the largest page size the API accepts.
	MaxPerPage = 200

	// MailtoEnv names the environment variable holding the contact address
	// that places requests in the polite pool.
	MailtoEnv = "OPENALEX_MAILTO"
)

// Client is a rate-limited HTTP client for the OpenAlex works endpoint.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
	perPage    int
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithMailto sets the contact address sent with every request.
func WithMailto(mailto string) ClientOption {
	return func(c *Client) {
		if mailto != "" {
			c.mailto = mailto
		}
	}
}

// WithRateLimit sets the maximum number of requests per second.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithPerPage sets the page size, capped at MaxPerPage.
func WithPerPage(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.perPage = min(n, MaxPerPage)
		}
	}
}

// WithLogger sets the client's logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a new OpenAlex client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		perPage:    MaxPerPage,
		logger:     slog.Default(),
	}

	if mailto := os.Getenv(MailtoEnv); mailto != "" {
		c.mailto = mailto
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Query selects works by title search and publication year.
type Query struct {
	Search          string // matched against titles
	FromYear        int    // 0 = no lower bound
	ToYear          int    // 0 = no upper bound
	Limit           int    // maximum number of works, 0 = all
	SortByCitations bool   // most cited first
}

func (q Query) params() url.Values {
	filters := []string{"title.search:" + q.Search}
	if q.FromYear > 0 {
		filters = append(filters, fmt.Sprintf("from_publication_date:%04d-01-01", q.FromYear))
	}
	if q.ToYear > 0 {
		filters = append(filters, fmt.Sprintf("to_publication_date:%04d-12-31", q.ToYear))
	}
	v := url.Values{}
	v.Set("filter", strings.Join(filters, ","))
	if q.SortByCitations {
		v.Set("sort", "cited_by_count:desc")
	}
	return v
}

// SearchWorks pages through the works matching q until the results run out
// or q.Limit works have been collected.
func (c *Client) SearchWorks(ctx context.Context, q Query) ([]Work, error) {
	if strings.TrimSpace(q.Search) == "" {
		return nil, ErrEmptyQuery
	}

	perPage := c.perPage
	if q.Limit > 0 && q.Limit < perPage {
		perPage = q.Limit
	}

	var works []Work
	for page := 1; ; page++ {
		resp, err := c.fetchPage(ctx, q.params(), page, perPage)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		works = append(works, resp.Results...)
		c.logger.Debug("fetched OpenAlex page", "query", q.Search, "page", page, "results", len(resp.Results), "count", resp.Meta.Count)

		if q.Limit > 0 && len(works) >= q.Limit {
			return works[:q.Limit], nil
		}
		if len(resp.Results) < perPage || (resp.Meta.Count > 0 && len(works) >= resp.Meta.Count) {
			return works, nil
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, params url.Values, page, perPage int) (*WorksResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params.Set("page", strconv.Itoa(page))
	params.Set("per-page", strconv.Itoa(perPage))
	if c.mailto != "" {
		params.Set("mailto", c.mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/works?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp); err != nil {
		return nil, err
	}

	var out WorksResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &out, nil
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}
	return nil
}

// ToRawRecord maps a work to an ingestion record. The first three concepts
// fill subfield, field and domain in that order.
func ToRawRecord(w Work, query string) document.RawRecord {
	rec := document.RawRecord{
		ID:              w.ID,
		Year:            w.PublicationYear,
		ReferencedWorks: w.ReferencedWorks,
		Title:           w.Title,
		Type:            w.Type,
		CitedByCount:    w.CitedByCount,
		License:         w.License,
		Query:           query,
	}
	if rec.Title == "" {
		rec.Title = w.DisplayName
	}

	for _, a := range w.Authorships {
		rec.Authors = append(rec.Authors, a.Author.DisplayName)
		for _, inst := range a.Institutions {
			rec.Institutions = append(rec.Institutions, inst.DisplayName)
		}
	}

	concepts := []*string{&rec.Concepts.Subfield, &rec.Concepts.Field, &rec.Concepts.Domain}
	for i, dst := range concepts {
		if i < len(w.Concepts) {
			*dst = w.Concepts[i].DisplayName
		}
	}

	if w.HostVenue != nil {
		rec.Publisher = w.HostVenue.Publisher
	}
	if loc := w.PrimaryLocation; loc != nil {
		if rec.Publisher == "" && loc.Source != nil {
			rec.Publisher = loc.Source.HostOrganizationName
		}
		if rec.License == "" {
			rec.License = loc.License
		}
	}
	if w.OpenAccess != nil {
		rec.OpenAccessStatus = w.OpenAccess.OAStatus
	}
	return rec
}

// ToRawRecords maps every work, tagging each with query.
func ToRawRecords(works []Work, query string) []document.RawRecord {
	recs := make([]document.RawRecord, len(works))
	for i, w := range works {
		recs[i] = ToRawRecord(w, query)
	}
	return recs
}
