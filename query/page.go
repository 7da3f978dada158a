package query

import (
	"time"

	"github.com/metafates/gache"
	"github.com/petflix/petflix/filesystem"
	"github.com/petflix/petflix/where"
)

// pageMemory is how long a shown page keeps guarding the next jump.
const pageMemory = time.Hour

type pageRecord struct {
	Page    int       `json:"page"`
	ShownAt time.Time `json:"shown_at"`
}

var pages = gache.New[map[string]*pageRecord](&gache.Options{
	Path:       where.Pages(),
	FileSystem: &filesystem.GacheFs{},
})

func loadPages() map[string]*pageRecord {
	cached, expired, err := pages.Get()
	if expired || err != nil || cached == nil {
		return make(map[string]*pageRecord)
	}
	return cached
}

// View names a paged listing: the latest updates, a category or a search keyword.
func View(kind, name string, anime bool) string {
	view := kind
	if name = sanitize(name); name != "" {
		view += ":" + name
	}
	if anime {
		view += "+anime"
	}
	return view
}

// LastPage is the page last shown for view, or 0 when none was shown within the last hour.
func LastPage(view string) int {
	mu.Lock()
	defer mu.Unlock()

	record, ok := loadPages()[view]
	if !ok || now().Sub(record.ShownAt) > pageMemory {
		return 0
	}
	return record.Page
}

// ShowPage records that page of view was just shown.
func ShowPage(view string, page int) error {
	if page < 1 {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	cached := loadPages()
	for k, r := range cached {
		if now().Sub(r.ShownAt) > pageMemory {
			delete(cached, k)
		}
	}
	cached[view] = &pageRecord{Page: page, ShownAt: now()}
	return pages.Set(cached)
}

// ForgetPages drops every remembered page.
func ForgetPages() error {
	mu.Lock()
	defer mu.Unlock()
	return pages.Set(make(map[string]*pageRecord))
}
