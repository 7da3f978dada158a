// Package search finds records by running several strategies against a source and ranking the union.
//
// A search moves through fan-out, merge, dedupe and rank. Primary strategies run
// concurrently and settle independently; the local fallback only runs when they
// found nothing. Pagination of the ranked result is left to the caller.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/petflix/petflix/internal/task"
	"github.com/petflix/petflix/log"
	"github.com/petflix/petflix/source"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// ErrAllStrategiesFailed is returned when no strategy that ran succeeded.
var ErrAllStrategiesFailed = errors.New("all search strategies failed")

// Config holds the page-range caps, fan-out bounds and weights.
type Config struct {
	DirectPages   int
	TokenPages    int
	SynonymPages  int
	LatestPages   int
	CategoryPages int
	PageSize      int
	Concurrency   int
	Timeout       time.Duration
	Weights       Weights
}

// DefaultConfig returns the regression baseline.
func DefaultConfig() Config {
	return Config{
		DirectPages:   30,
		TokenPages:    10,
		SynonymPages:  5,
		LatestPages:   10,
		CategoryPages: 20,
		PageSize:      64,
		Concurrency:   12,
		Timeout:       8 * time.Second,
		Weights:       DefaultWeights,
	}
}

// Result is a deduplicated, ranked result set.
type Result struct {
	Keyword string `json:"keyword"`
	Hits    []Hit  `json:"hits"`
}

// Records returns the ranked records without scores.
func (r *Result) Records() []*source.Record {
	return lo.Map(r.Hits, func(h Hit, _ int) *source.Record {
		return h.Record
	})
}

// Engine is safe for concurrent use.
type Engine struct {
	config   Config
	synonyms Synonyms
	primary  []Strategy
	fallback []Strategy
}

// New builds the standard strategy set over src.
func New(src source.Source, config Config, synonyms Synonyms) *Engine {
	p := pager{
		src:         src,
		pageSize:    config.PageSize,
		concurrency: config.Concurrency,
		timeout:     config.Timeout,
	}
	return NewWithStrategies(config, synonyms,
		[]Strategy{
			Category{pager: p, Pages: config.CategoryPages},
			Direct{pager: p, Pages: config.DirectPages},
			Tokens{pager: p, Pages: config.TokenPages},
			Alternates{pager: p, Pages: config.SynonymPages},
		},
		[]Strategy{
			Local{pager: p, Pages: config.LatestPages},
		},
	)
}

// NewWithStrategies uses the given strategies. Fallback strategies run only when
// the primary ones produced no records.
func NewWithStrategies(config Config, synonyms Synonyms, primary, fallback []Strategy) *Engine {
	if synonyms == nil {
		synonyms = Synonyms{}
	}
	return &Engine{
		config:   config,
		synonyms: synonyms,
		primary:  primary,
		fallback: fallback,
	}
}

// Search runs an unscoped search.
func (e *Engine) Search(ctx context.Context, keyword string) (*Result, error) {
	return e.SearchScoped(ctx, keyword, Scope{})
}

// SearchScoped runs a search narrowed by scope.
func (e *Engine) SearchScoped(ctx context.Context, keyword string, scope Scope) (*Result, error) {
	q := NewQuery(keyword, e.synonyms, scope)
	result := &Result{Keyword: q.Keyword}
	if q.Keyword == "" {
		return result, nil
	}

	records, ran, failures := e.fanOut(ctx, q, e.primary)
	if len(records) == 0 && len(e.fallback) > 0 {
		var (
			fallbackRan      int
			fallbackFailures []error
		)
		records, fallbackRan, fallbackFailures = e.fanOut(ctx, q, e.fallback)
		ran += fallbackRan
		failures = append(failures, fallbackFailures...)
	}

	if ran > 0 && len(failures) == ran {
		return nil, fmt.Errorf("%w: %w", ErrAllStrategiesFailed, errors.Join(failures...))
	}

	records = lo.UniqBy(records, func(r *source.Record) string {
		return r.ID
	})
	result.Hits = e.config.Weights.Rank(records, q)
	return result, nil
}

// fanOut runs strategies concurrently and merges their records in strategy order.
// It reports how many strategies were applicable and the errors of those that failed.
func (e *Engine) fanOut(ctx context.Context, q Query, strategies []Strategy) ([]*source.Record, int, []error) {
	g := task.New[[]*source.Record](0, 0)
	for _, s := range strategies {
		g.Go(func(ctx context.Context) ([]*source.Record, error) {
			started := time.Now()
			records, err := s.Run(ctx, q)
			if err != nil {
				return nil, err
			}
			records = q.keep(records)
			log.Debugf("search: %s %q: %d records in %s", s.Name(), q.Keyword, len(records), time.Since(started))
			return records, nil
		})
	}

	var (
		merged   []*source.Record
		ran      int
		failures []error
	)
	for i, result := range g.Wait(ctx) {
		records, err := result.Get()
		switch {
		case errors.Is(err, ErrNotApplicable):
			continue
		case err != nil:
			ran++
			log.Warnf("search: strategy %s failed: %v", strategies[i].Name(), err)
			failures = append(failures, fmt.Errorf("%s: %w", strategies[i].Name(), err))
		default:
			ran++
			merged = append(merged, records...)
		}
	}
	return merged, ran, failures
}

// Suggest returns the alternates known for keyword, if any.
func (e *Engine) Suggest(keyword string) mo.Option[[]string] {
	alternates := e.synonyms.Lookup(keyword)
	if len(alternates) == 0 {
		return mo.None[[]string]()
	}
	return mo.Some(alternates)
}
