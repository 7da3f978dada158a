// Package catalog is the entry point callers use: browse, search and detail with
// caching, enrichment, pagination and stale-answer protection wired together.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/petflix/petflix/enrich"
	"github.com/petflix/petflix/internal/cache"
	"github.com/petflix/petflix/log"
	"github.com/petflix/petflix/paginate"
	"github.com/petflix/petflix/search"
	"github.com/petflix/petflix/source"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

const (
	DefaultPageSize      = 64
	DefaultAnimeCategory = "hoat-hinh"
)

// Request selects a page. From is the page the caller is currently on; zero means none.
type Request struct {
	Page     int
	From     int
	Category string
	Anime    bool
}

// Item is an enriched record with its search score, zero when browsing.
type Item struct {
	enrich.Record
	Score int `json:"score,omitempty"`
}

// Listing is one page of results.
type Listing struct {
	Keyword string        `json:"keyword,omitempty"`
	Items   []Item        `json:"items"`
	View    paginate.View `json:"pagination"`
}

// Empty reports whether the listing has no items.
func (l *Listing) Empty() bool {
	return len(l.Items) == 0
}

// DetailView is a detail record with resolved images.
type DetailView struct {
	enrich.Record
	Servers []*source.Server `json:"servers"`
}

// Service is safe for concurrent use.
type Service struct {
	source        source.Source
	engine        *search.Engine
	enricher      *enrich.Enricher
	store         *cache.Store
	guard         paginate.Guard
	tracker       *Tracker
	pageSize      int
	animeCategory string
	resultTTL     time.Duration
}

type Option func(*Service)

func WithGuard(g paginate.Guard) Option {
	return func(s *Service) { s.guard = g }
}

func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func WithAnimeCategory(slug string) Option {
	return func(s *Service) {
		if slug != "" {
			s.animeCategory = slug
		}
	}
}

// WithStore keeps ranked search results in store for ttl so paging does not search again.
func WithStore(store *cache.Store, ttl time.Duration) Option {
	return func(s *Service) {
		s.store = store
		s.resultTTL = ttl
	}
}

func New(src source.Source, engine *search.Engine, enricher *enrich.Enricher, opts ...Option) *Service {
	s := &Service{
		source:        src,
		engine:        engine,
		enricher:      enricher,
		guard:         paginate.Guard{MaxDelta: paginate.DefaultMaxDelta},
		tracker:       NewTracker(),
		pageSize:      DefaultPageSize,
		animeCategory: DefaultAnimeCategory,
		resultTTL:     cache.TTLShort,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = cache.New()
	}
	return s
}

// Store is the cache shared by the service.
func (s *Service) Store() *cache.Store {
	return s.store
}

// Browse lists the latest updates, a category, or the anime category.
func (s *Service) Browse(ctx context.Context, req Request) (*Listing, error) {
	if err := s.guard.Check(req.From, req.Page); err != nil {
		return nil, err
	}

	category := req.Category
	if req.Anime && category == "" {
		category = s.animeCategory
	}
	token := s.tracker.Begin("browse")

	page, err := s.source.ListPage(ctx, req.Page, category)
	if err != nil {
		return nil, fmt.Errorf("listing page %d: %w", req.Page, err)
	}

	view := paginate.FromUpstream(req.Page, len(page.Records), s.pageSize, page.Pagination)

	records := page.Records
	if req.Anime {
		records = lo.Filter(records, func(r *source.Record, _ int) bool {
			return source.IsAnime(r)
		})
	}

	enriched := s.enricher.Enrich(ctx, records)
	if !s.tracker.Commit(token) {
		return nil, ErrSuperseded
	}

	return &Listing{
		Items: lo.Map(enriched, func(r enrich.Record, _ int) Item {
			return Item{Record: r}
		}),
		View: view,
	}, nil
}

// Search runs the multi-strategy search and returns the requested page of the ranked result.
// An empty result is not an error.
func (s *Service) Search(ctx context.Context, keyword string, req Request) (*Listing, error) {
	if err := s.guard.Check(req.From, req.Page); err != nil {
		return nil, err
	}

	keyword = strings.Join(strings.Fields(keyword), " ")
	token := s.tracker.Begin("search")

	result, err := s.search(ctx, keyword, req.Anime)
	if err != nil {
		return nil, err
	}

	hits, view := paginate.Window(result.Hits, req.Page, s.pageSize)
	records := lo.Map(hits, func(h search.Hit, _ int) *source.Record {
		return h.Record
	})

	enriched := s.enricher.Enrich(ctx, records)
	if !s.tracker.Commit(token) {
		return nil, ErrSuperseded
	}

	items := make([]Item, len(enriched))
	for i, r := range enriched {
		items[i] = Item{Record: r, Score: hits[i].Score}
	}
	return &Listing{Keyword: keyword, Items: items, View: view}, nil
}

func (s *Service) search(ctx context.Context, keyword string, anime bool) (*search.Result, error) {
	scope := search.Scope{}
	scopeName := "all"
	if anime {
		scope = search.Scope{Category: s.animeCategory, Filter: source.IsAnime}
		scopeName = "anime"
	}

	key := "search:" + scopeName + ":" + strings.ToLower(keyword)
	var cached search.Result
	if s.store.GetJSON(key, &cached) {
		log.Debugf("catalog: search %q served from cache", keyword)
		return &cached, nil
	}

	result, err := s.engine.SearchScoped(ctx, keyword, scope)
	if err != nil {
		return nil, err
	}
	s.store.PutJSON(key, result, s.resultTTL)
	return result, nil
}

// Detail returns one record with its servers. Unknown ids yield source.ErrNotFound.
func (s *Service) Detail(ctx context.Context, id string) (*DetailView, error) {
	token := s.tracker.Begin("detail")

	detail, err := s.source.Detail(ctx, id)
	if err != nil {
		return nil, err
	}

	enriched := s.enricher.One(ctx, detail.Record)
	if !s.tracker.Commit(token) {
		return nil, ErrSuperseded
	}
	return &DetailView{Record: enriched, Servers: detail.Servers}, nil
}

// Alternates returns the alternate terms known for keyword, if any.
func (s *Service) Alternates(keyword string) mo.Option[[]string] {
	return s.engine.Suggest(keyword)
}
