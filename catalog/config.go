package catalog

import (
	"time"

	"github.com/petflix/petflix/config"
	"github.com/petflix/petflix/enrich"
	"github.com/petflix/petflix/internal/cache"
	"github.com/petflix/petflix/key"
	"github.com/petflix/petflix/log"
	"github.com/petflix/petflix/paginate"
	"github.com/petflix/petflix/search"
	"github.com/petflix/petflix/source/phimapi"
	"github.com/petflix/petflix/tmdb"
	"github.com/petflix/petflix/where"
	"github.com/spf13/viper"
)

// NewStore builds the shared cache from configuration.
// Only metadata lookups and resolved images reach the durable tier. Listing pages stay in memory.
func NewStore() *cache.Store {
	opts := []cache.Option{
		cache.WithMemoryLimit(viper.GetInt(key.CacheMemoryLimit)),
	}
	if viper.GetBool(key.CacheDurable) {
		opts = append(opts,
			cache.WithDurable(cache.NewGacheDurable(where.Store(), viper.GetInt(key.CacheDurableLimit))),
			cache.WithDurablePrefixes(tmdb.CachePrefix, enrich.PosterPrefix),
		)
	}
	store := cache.New(opts...)
	if n := store.Prune(); n > 0 {
		log.Debugf("catalog: pruned %d stale cache entries", n)
	}
	return store
}

// SearchConfig reads the search caps and weights.
func SearchConfig() search.Config {
	return search.Config{
		DirectPages:   viper.GetInt(key.SearchDirectPages),
		TokenPages:    viper.GetInt(key.SearchTokenPages),
		SynonymPages:  viper.GetInt(key.SearchSynonymPages),
		LatestPages:   viper.GetInt(key.SearchLatestPages),
		CategoryPages: viper.GetInt(key.SearchCategoryPages),
		PageSize:      viper.GetInt(key.CatalogPageSize),
		Concurrency:   viper.GetInt(key.SearchConcurrency),
		Timeout:       config.Timeout(),
		Weights: search.Weights{
			TitleExact:       viper.GetInt(key.SearchWeightTitleExact),
			TitleToken:       viper.GetInt(key.SearchWeightTitleToken),
			TitleAlternate:   viper.GetInt(key.SearchWeightTitleAlternate),
			DescriptionExact: viper.GetInt(key.SearchWeightDescriptionExact),
			DescriptionToken: viper.GetInt(key.SearchWeightDescriptionToken),
			Recent:           viper.GetInt(key.SearchWeightRecent),
			Modern:           viper.GetInt(key.SearchWeightModern),
		},
	}
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

// NewFromConfig wires the service from the current configuration.
func NewFromConfig() *Service {
	store := NewStore()

	src := phimapi.New(
		phimapi.WithBaseURL(viper.GetString(key.CatalogBaseURL)),
		phimapi.WithImageBase(viper.GetString(key.CatalogImageBase)),
		phimapi.WithPageSize(viper.GetInt(key.CatalogPageSize)),
		phimapi.WithTimeout(config.Timeout()),
		phimapi.WithCache(store, orDefault(config.Minutes(key.CacheTTLShort), cache.TTLShort)),
	)

	var provider enrich.Provider
	if viper.GetBool(key.MetadataEnabled) {
		provider = tmdb.New(
			tmdb.WithBaseURL(viper.GetString(key.MetadataBaseURL)),
			tmdb.WithImageBase(viper.GetString(key.MetadataImageBase)),
			tmdb.WithTimeout(config.Timeout()),
			tmdb.WithCache(store, orDefault(config.Minutes(key.CacheTTLLong), cache.TTLLong)),
		)
	}

	enricher := enrich.New(provider,
		enrich.WithConcurrency(viper.GetInt(key.EnrichConcurrency)),
		enrich.WithCache(store, orDefault(config.Minutes(key.CacheTTLVeryLong), cache.TTLVeryLong)),
	)

	engine := search.New(src, SearchConfig(), search.LoadSynonyms())

	return New(src, engine, enricher,
		WithStore(store, orDefault(config.Minutes(key.CacheTTLShort), cache.TTLShort)),
		WithPageSize(viper.GetInt(key.CatalogPageSize)),
		WithAnimeCategory(viper.GetString(key.CatalogAnimeCategory)),
		WithGuard(paginate.Guard{MaxDelta: viper.GetInt(key.PaginateMaxJump)}),
	)
}
