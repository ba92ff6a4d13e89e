// Package ingest turns raw bibliographic records into canonical documents.
package ingest

import (
	"log/slog"
	"strings"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/canon"
	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/document"
)

// YearRange is the inclusive range of accepted publication years.
type YearRange struct {
	Min int
	Max int
}

// Contains reports whether year lies inside the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.Min && year <= r.Max
}

// Stats counts what happened to each record during ingestion.
type Stats struct {
	Records         int `json:"records"`
	Accepted        int `json:"accepted"`
	MissingID       int `json:"missing_id"`
	MissingYear     int `json:"missing_year"`
	OutOfRange      int `json:"out_of_range"`
	Duplicates      int `json:"duplicates"`
	BlankReferences int `json:"blank_references"`
	Collisions      int `json:"collisions"`
}

// Skipped returns the number of records that did not produce a document.
func (s Stats) Skipped() int {
	return s.MissingID + s.MissingYear + s.OutOfRange + s.Duplicates
}

// Converter canonicalizes records. Every identifier it sees, document or
// reference, goes through one Registry so collisions surface in one place.
type Converter struct {
	years    YearRange
	registry *canon.Registry
	logger   *slog.Logger
	seen     map[string]struct{}
	stats    Stats
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger used for per-record diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = l
	}
}

// WithRegistry shares an existing registry, e.g. across several batches.
func WithRegistry(r *canon.Registry) Option {
	return func(c *Converter) {
		c.registry = r
	}
}

// NewConverter creates a converter accepting years in the given range and
// hashing identifiers modulo bound.
func NewConverter(years YearRange, bound uint64, opts ...Option) *Converter {
	c := &Converter{
		years:  years,
		logger: slog.Default(),
		seen:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = canon.NewRegistry(bound)
	}
	return c
}

// Convert canonicalizes a single record. The boolean is false when the record
// was skipped; the reason is reflected in Stats.
func (c *Converter) Convert(rec document.RawRecord) (document.Document, bool) {
	c.stats.Records++

	id := strings.TrimSpace(rec.ID)
	if id == "" {
		c.stats.MissingID++
		c.logger.Debug("skipping record without id")
		return document.Document{}, false
	}
	if rec.Year == nil {
		c.stats.MissingYear++
		c.logger.Debug("skipping record without year", "id", id)
		return document.Document{}, false
	}
	if !c.years.Contains(*rec.Year) {
		c.stats.OutOfRange++
		c.logger.Debug("skipping record outside date range", "id", id, "year", *rec.Year)
		return document.Document{}, false
	}
	if _, dup := c.seen[id]; dup {
		c.stats.Duplicates++
		return document.Document{}, false
	}
	c.seen[id] = struct{}{}

	key := c.register(id)

	refs := make([]uint64, 0, len(rec.ReferencedWorks))
	for _, ref := range rec.ReferencedWorks {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			c.stats.BlankReferences++
			continue
		}
		refs = append(refs, c.register(ref))
	}

	meta := rec.Metadata()
	meta.SourceID = id

	c.stats.Accepted++
	return document.Document{
		ID:         key,
		Year:       *rec.Year,
		References: document.NormalizeReferences(refs),
		Metadata:   meta,
	}, true
}

// ConvertAll canonicalizes records in order and returns accepted documents.
func (c *Converter) ConvertAll(recs []document.RawRecord) []document.Document {
	docs := make([]document.Document, 0, len(recs))
	for _, rec := range recs {
		if doc, ok := c.Convert(rec); ok {
			docs = append(docs, doc)
		}
	}
	return docs
}

func (c *Converter) register(id string) uint64 {
	key, collided := c.registry.Register(id)
	if collided {
		c.stats.Collisions++
		owner, _ := c.registry.Owner(key)
		c.logger.Warn("identifier collision", "key", key, "id", id, "owner", owner)
	}
	return key
}

// Stats returns the counters accumulated so far.
func (c *Converter) Stats() Stats {
	return c.stats
}

// Registry returns the identifier table built during conversion.
func (c *Converter) Registry() *canon.Registry {
	return c.registry
}
