// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Primary catalog - these keys describe the upstream content source and its listing behaviour.
const (
	CatalogBaseURL       = "catalog.base_url"
	CatalogImageBase     = "catalog.image_base"
	CatalogPageSize      = "catalog.page_size"
	CatalogTimeout       = "catalog.timeout"
	CatalogRateLimit     = "catalog.rate_limit"
	CatalogAnimeCategory = "catalog.anime_category"
)

// Metadata provider - these keys govern enrichment lookups against the metadata API.
const (
	MetadataEnabled   = "metadata.enabled"
	MetadataBaseURL   = "metadata.base_url"
	MetadataImageBase = "metadata.image_base"
	MetadataToken     = "metadata.token"
)

// Cache store - these keys size the memory and durable tiers and set the TTL classes.
const (
	CacheDurable      = "cache.durable"
	CacheMemoryLimit  = "cache.memory_limit"
	CacheDurableLimit = "cache.durable_limit"
	CacheTTLShort     = "cache.ttl.short"
	CacheTTLLong      = "cache.ttl.long"
	CacheTTLVeryLong  = "cache.ttl.very_long"
)

// Enrichment pipeline.
const (
	EnrichConcurrency = "enrich.concurrency"
)

// Search engine - page-range caps, fan-out bound and relevance weights.
const (
	SearchDirectPages          = "search.direct_pages"
	SearchTokenPages           = "search.token_pages"
	SearchSynonymPages         = "search.synonym_pages"
	SearchLatestPages          = "search.latest_pages"
	SearchCategoryPages        = "search.category_pages"
	SearchConcurrency          = "search.concurrency"
	SearchShowQuerySuggestions = "search.show_query_suggestions"

	SearchWeightTitleExact       = "search.weights.title_exact"
	SearchWeightTitleToken       = "search.weights.title_token"
	SearchWeightTitleAlternate   = "search.weights.title_alternate"
	SearchWeightDescriptionExact = "search.weights.description_exact"
	SearchWeightDescriptionToken = "search.weights.description_token"
	SearchWeightRecent           = "search.weights.recent"
	SearchWeightModern           = "search.weights.modern"
)

// Pagination.
const (
	PaginateMaxJump = "paginate.max_jump"
)

// History Tracking - these keys configure the persistence of playback progress and recent queries.
const (
	HistorySave         = "history.save"
	HistoryUser         = "history.user"
	HistoryQueriesLimit = "history.queries_limit"
)

// Iconography.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment.
const (
	CliColored = "cli.colored"
)
