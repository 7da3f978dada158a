// Package enrich joins catalog records with metadata provider posters.
//
// Enrichment never fails: a record whose lookup is impossible or fails keeps
// its catalog images and comes back without metadata.
package enrich

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petflix/petflix/internal/cache"
	"github.com/petflix/petflix/internal/task"
	"github.com/petflix/petflix/log"
	"github.com/petflix/petflix/source"
	"github.com/petflix/petflix/tmdb"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

const DefaultConcurrency = 16

// Record is a catalog record with resolved images. It is never persisted.
type Record struct {
	*source.Record
	Metadata    mo.Option[*tmdb.Metadata] `json:"metadata"`
	PosterURL   string                    `json:"poster_url"`
	BackdropURL string                    `json:"backdrop_url"`
}

// Provider is the metadata lookup the enricher depends on.
type Provider interface {
	Lookup(ctx context.Context, id, kind string) (mo.Option[*tmdb.Metadata], error)
	ImageURL(path, size string) string
}

// images is what a poster cache entry holds. The metadata rides along so a
// warm cache yields the same record as a cold one.
type images struct {
	Poster   string         `json:"poster"`
	Backdrop string         `json:"backdrop"`
	Metadata *tmdb.Metadata `json:"metadata,omitempty"`
}

// Enricher is safe for concurrent use.
type Enricher struct {
	provider    Provider
	cache       *cache.Store
	ttl         time.Duration
	concurrency int

	skip     atomic.Bool
	skipOnce sync.Once
}

type Option func(*Enricher)

// WithConcurrency bounds concurrent lookups.
func WithConcurrency(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithCache keeps resolved image URLs for ttl.
func WithCache(store *cache.Store, ttl time.Duration) Option {
	return func(e *Enricher) {
		e.cache = store
		e.ttl = ttl
	}
}

// New returns an enricher. A nil provider disables lookups.
func New(provider Provider, opts ...Option) *Enricher {
	e := &Enricher{
		provider:    provider,
		ttl:         cache.TTLVeryLong,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = cache.New()
	}
	return e
}

// PosterPrefix starts every resolved-images key.
const PosterPrefix = "poster:"

// PosterKey is the cache key of resolved images. Kind is part of it.
func PosterKey(kind, id string) string {
	return PosterPrefix + kind + ":" + id
}

// Enrich resolves every record concurrently and returns them in input order.
func (e *Enricher) Enrich(ctx context.Context, records []*source.Record) []Record {
	results := task.Map(ctx, records, e.concurrency, 0, func(ctx context.Context, r *source.Record) (Record, error) {
		return e.one(ctx, r), nil
	})

	out := make([]Record, len(records))
	for i, result := range results {
		if v, err := result.Get(); err == nil {
			out[i] = v
		} else {
			out[i] = fallback(records[i], mo.None[*tmdb.Metadata]())
		}
	}
	return out
}

// One enriches a single record.
func (e *Enricher) One(ctx context.Context, r *source.Record) Record {
	return e.one(ctx, r)
}

func (e *Enricher) one(ctx context.Context, r *source.Record) Record {
	if e.provider == nil || e.skip.Load() || !r.HasExternalID() {
		return fallback(r, mo.None[*tmdb.Metadata]())
	}

	kind := source.MetadataKind(r)
	key := PosterKey(kind, r.ExternalID)

	var cached images
	if e.cache.GetJSON(key, &cached) && cached.Metadata != nil {
		return withImages(r, mo.Some(cached.Metadata), cached)
	}

	meta, err := e.provider.Lookup(ctx, r.ExternalID, kind)
	if err != nil {
		if errors.Is(err, tmdb.ErrNoCredential) {
			e.skip.Store(true)
			e.skipOnce.Do(func() {
				log.Warnf("enrich: metadata lookups disabled: %v", err)
			})
		} else {
			log.Debugf("enrich: %s %s/%s: %v", r.ID, kind, r.ExternalID, err)
		}
		return fallback(r, mo.None[*tmdb.Metadata]())
	}

	m, ok := meta.Get()
	if !ok {
		return fallback(r, meta)
	}

	resolved := images{
		Poster:   e.provider.ImageURL(m.PosterPath, tmdb.PosterSize),
		Backdrop: e.provider.ImageURL(m.BackdropPath, tmdb.BackdropSize),
		Metadata: m,
	}
	if resolved.Poster != "" || resolved.Backdrop != "" {
		e.cache.PutJSON(key, resolved, e.ttl)
	}
	return withImages(r, meta, resolved)
}

func withImages(r *source.Record, meta mo.Option[*tmdb.Metadata], img images) Record {
	out := fallback(r, meta)
	if img.Poster != "" {
		out.PosterURL = img.Poster
	}
	if img.Backdrop != "" {
		out.BackdropURL = img.Backdrop
	}
	return out
}

// fallback uses the catalog images, each falling back to the other.
func fallback(r *source.Record, meta mo.Option[*tmdb.Metadata]) Record {
	return Record{
		Record:      r,
		Metadata:    meta,
		PosterURL:   lo.CoalesceOrEmpty(r.PosterRef, r.BackdropRef),
		BackdropURL: lo.CoalesceOrEmpty(r.BackdropRef, r.PosterRef),
	}
}
