package cache

import (
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/petflix/petflix/filesystem"
)

const defaultDurableLimit = 512

type durableData struct {
	Entries map[string]Entry `json:"entries"`
}

// GacheDurable keeps every entry in one JSON file through gache and the afero backend.
// When the entry count exceeds the limit the oldest entries are dropped.
type GacheDurable struct {
	mu       sync.Mutex
	internal *gache.Cache[*durableData]
	limit    int
}

// NewGacheDurable opens (lazily) the file at path.
func NewGacheDurable(path string, limit int) *GacheDurable {
	if limit <= 0 {
		limit = defaultDurableLimit
	}
	return &GacheDurable{
		internal: gache.New[*durableData](&gache.Options{
			Path:       path,
			FileSystem: &filesystem.GacheFs{},
		}),
		limit: limit,
	}
}

func (g *GacheDurable) load() (*durableData, error) {
	data, expired, err := g.internal.Get()
	if err != nil {
		return nil, err
	}
	if expired || data == nil || data.Entries == nil {
		return &durableData{Entries: make(map[string]Entry)}, nil
	}
	return data, nil
}

func (g *GacheDurable) Load(key string) (Entry, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	data, err := g.load()
	if err != nil {
		return Entry{}, false, err
	}
	entry, ok := data.Entries[key]
	return entry, ok, nil
}

func (g *GacheDurable) Store(key string, entry Entry) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	data, err := g.load()
	if err != nil {
		return err
	}
	data.Entries[key] = entry
	if len(data.Entries) > g.limit {
		evictOldest(data.Entries, len(data.Entries)-g.limit)
	}
	return g.internal.Set(data)
}

func (g *GacheDurable) Delete(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	data, err := g.load()
	if err != nil {
		return err
	}
	if _, ok := data.Entries[key]; !ok {
		return nil
	}
	delete(data.Entries, key)
	return g.internal.Set(data)
}

func (g *GacheDurable) Clear() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.internal.Set(&durableData{Entries: make(map[string]Entry)})
}

// Prune removes entries that are stale at now.
func (g *GacheDurable) Prune(now time.Time) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	data, err := g.load()
	if err != nil {
		return 0, err
	}
	removed := 0
	for k, e := range data.Entries {
		if !e.Fresh(now) {
			delete(data.Entries, k)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, g.internal.Set(data)
}
