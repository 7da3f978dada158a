// Package query remembers recent search keywords and suggests them back.
package query

import (
	"strings"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/petflix/petflix/filesystem"
	"github.com/petflix/petflix/key"
	"github.com/petflix/petflix/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

type queryRecord struct {
	Rank     int       `json:"rank"`
	Query    string    `json:"query"`
	LastUsed time.Time `json:"last_used"`
}

var (
	mu     sync.Mutex
	now    = time.Now
	cacher = newCacher(where.Queries())

	suggestionCache = make(map[string][]*queryRecord)
)

func newCacher(path string) *gache.Cache[map[string]*queryRecord] {
	return gache.New[map[string]*queryRecord](
		&gache.Options{
			Path:       path,
			FileSystem: &filesystem.GacheFs{},
		},
	)
}

func load() map[string]*queryRecord {
	cached, expired, err := cacher.Get()
	if expired || err != nil || cached == nil {
		return make(map[string]*queryRecord)
	}
	return cached
}

// Remember records a keyword or bumps its rank. Blank keywords are ignored.
func Remember(q string) error {
	q = sanitize(q)
	if q == "" {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	cached := load()
	if record, ok := cached[q]; ok {
		record.Rank++
		record.LastUsed = now()
	} else {
		cached[q] = &queryRecord{Rank: 1, Query: q, LastUsed: now()}
	}

	clear(suggestionCache)
	return cacher.Set(cached)
}

// Recent returns the last distinct keywords, newest first, capped by history.queries_limit.
func Recent() []string {
	mu.Lock()
	records := lo.Values(load())
	mu.Unlock()

	slices.SortFunc(records, func(a, b *queryRecord) int {
		return b.LastUsed.Compare(a.LastUsed)
	})

	if limit := viper.GetInt(key.HistoryQueriesLimit); limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	return lo.Map(records, func(r *queryRecord, _ int) string {
		return r.Query
	})
}

// Forget removes one keyword.
func Forget(q string) error {
	mu.Lock()
	defer mu.Unlock()

	cached := load()
	delete(cached, sanitize(q))
	clear(suggestionCache)
	return cacher.Set(cached)
}

// Clear removes every remembered keyword.
func Clear() error {
	mu.Lock()
	defer mu.Unlock()

	clear(suggestionCache)
	return cacher.Set(make(map[string]*queryRecord))
}

// Suggest returns the most relevant remembered keyword for a partial input.
func Suggest(q string) mo.Option[string] {
	suggestions := SuggestMany(q)
	if len(suggestions) == 0 {
		return mo.None[string]()
	}
	return mo.Some(suggestions[0])
}

// SuggestMany returns remembered keywords fuzzily matching the input, by rank.
func SuggestMany(q string) []string {
	if !viper.GetBool(key.SearchShowQuerySuggestions) {
		return []string{}
	}

	q = sanitize(q)

	mu.Lock()
	defer mu.Unlock()

	records, ok := suggestionCache[q]
	if !ok {
		for _, record := range load() {
			if record.Query != q && fuzzy.Match(q, record.Query) {
				records = append(records, record)
			}
		}

		slices.SortFunc(records, func(a, b *queryRecord) int {
			return b.Rank - a.Rank
		})

		suggestionCache[q] = records
	}

	return lo.Map(records, func(r *queryRecord, _ int) string {
		return r.Query
	})
}

func sanitize(q string) string {
	return strings.TrimSpace(strings.ToLower(q))
}
