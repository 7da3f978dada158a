package cache

import (
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/petflix/petflix/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type failingDurable struct{}

func (failingDurable) Load(string) (Entry, bool, error) { return Entry{}, false, errors.New("quota exceeded") }
func (failingDurable) Store(string, Entry) error        { return errors.New("quota exceeded") }
func (failingDurable) Delete(string) error              { return errors.New("quota exceeded") }
func (failingDurable) Clear() error                     { return errors.New("quota exceeded") }

type memDurable struct {
	mu      sync.Mutex
	entries map[string]Entry
	loads   int
}

func newMemDurable() *memDurable { return &memDurable{entries: make(map[string]Entry)} }

func (m *memDurable) Load(k string) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	e, ok := m.entries[k]
	return e, ok, nil
}
func (m *memDurable) Store(k string, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[k] = e
	return nil
}
func (m *memDurable) Delete(k string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, k)
	return nil
}
func (m *memDurable) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]Entry)
	return nil
}

func TestStore(t *testing.T) {
	Convey("Given a store with a fake clock", t, func() {
		clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
		store := New(WithClock(clock))

		Convey("A missing key is absent", func() {
			So(store.Get("nope").IsAbsent(), ShouldBeTrue)
		})

		Convey("When a value is put with a TTL", func() {
			store.Put("k", []byte("v"), time.Minute)

			Convey("It is retrievable immediately", func() {
				So(string(store.Get("k").MustGet()), ShouldEqual, "v")
			})

			Convey("Two successive gets agree", func() {
				first := store.Get("k")
				second := store.Get("k")
				So(string(first.MustGet()), ShouldEqual, string(second.MustGet()))
			})

			Convey("It is still fresh just before the TTL", func() {
				clock.Advance(time.Minute - time.Nanosecond)
				So(store.Get("k").IsPresent(), ShouldBeTrue)
			})

			Convey("It is absent once the TTL has elapsed", func() {
				clock.Advance(time.Minute + time.Nanosecond)
				So(store.Get("k").IsAbsent(), ShouldBeTrue)
			})

			Convey("Overwriting replaces the whole entry", func() {
				store.Put("k", []byte("w"), time.Hour)
				clock.Advance(2 * time.Minute)
				So(string(store.Get("k").MustGet()), ShouldEqual, "w")
			})

			Convey("Invalidate removes it", func() {
				store.Invalidate("k")
				So(store.Get("k").IsAbsent(), ShouldBeTrue)
			})
		})

		Convey("InvalidatePrefix only drops matching keys", func() {
			store.Put("tmdb:tv:1", []byte("a"), time.Hour)
			store.Put("tmdb:movie:1", []byte("b"), time.Hour)
			store.Put("detail:x", []byte("c"), time.Hour)
			store.InvalidatePrefix("tmdb:")
			So(store.Get("tmdb:tv:1").IsAbsent(), ShouldBeTrue)
			So(store.Get("tmdb:movie:1").IsAbsent(), ShouldBeTrue)
			So(store.Get("detail:x").IsPresent(), ShouldBeTrue)
		})

		Convey("JSON helpers round a value through the store", func() {
			store.PutJSON("j", map[string]int{"a": 1}, time.Hour)
			var got map[string]int
			So(store.GetJSON("j", &got), ShouldBeTrue)
			So(got["a"], ShouldEqual, 1)
		})

		Convey("Undecodable JSON counts as a miss", func() {
			store.Put("bad", []byte("{"), time.Hour)
			var got map[string]int
			So(store.GetJSON("bad", &got), ShouldBeFalse)
		})

		Convey("Prune drops only stale entries", func() {
			store.Put("short", []byte("1"), time.Minute)
			store.Put("long", []byte("2"), time.Hour)
			clock.Advance(2 * time.Minute)
			So(store.Prune(), ShouldEqual, 1)
			So(store.Len(), ShouldEqual, 1)
		})
	})

	Convey("Given a bounded memory tier", t, func() {
		clock := &fakeClock{now: time.Unix(0, 0)}
		store := New(WithClock(clock), WithMemoryLimit(2))

		store.Put("a", []byte("1"), time.Hour)
		clock.Advance(time.Second)
		store.Put("b", []byte("2"), time.Hour)
		clock.Advance(time.Second)
		store.Put("c", []byte("3"), time.Hour)

		Convey("The oldest entry is evicted", func() {
			So(store.Len(), ShouldEqual, 2)
			So(store.Get("a").IsAbsent(), ShouldBeTrue)
			So(store.Get("c").IsPresent(), ShouldBeTrue)
		})
	})

	Convey("Given a durable tier", t, func() {
		clock := &fakeClock{now: time.Unix(1000, 0)}
		durable := newMemDurable()
		store := New(WithClock(clock), WithDurable(durable))

		Convey("Puts reach the durable tier", func() {
			store.Put("k", []byte("v"), time.Hour)
			So(durable.entries, ShouldContainKey, "k")
		})

		Convey("A durable hit is promoted to memory", func() {
			durable.entries["k"] = Entry{Value: []byte("v"), StoredAt: clock.Now(), TTL: time.Hour}
			So(string(store.Get("k").MustGet()), ShouldEqual, "v")
			loads := durable.loads
			So(string(store.Get("k").MustGet()), ShouldEqual, "v")
			So(durable.loads, ShouldEqual, loads)
		})

		Convey("A promoted entry keeps its original age", func() {
			durable.entries["k"] = Entry{Value: []byte("v"), StoredAt: clock.Now(), TTL: time.Hour}
			_ = store.Get("k")
			clock.Advance(time.Hour)
			So(store.Get("k").IsAbsent(), ShouldBeTrue)
		})

		Convey("A stale durable entry is absent", func() {
			durable.entries["k"] = Entry{Value: []byte("v"), StoredAt: clock.Now().Add(-2 * time.Hour), TTL: time.Hour}
			So(store.Get("k").IsAbsent(), ShouldBeTrue)
		})

		Convey("InvalidateAll clears both tiers", func() {
			store.Put("k", []byte("v"), time.Hour)
			store.InvalidateAll()
			So(store.Get("k").IsAbsent(), ShouldBeTrue)
			So(durable.entries, ShouldBeEmpty)
		})
	})

	Convey("Given a durable tier restricted to lookup prefixes", t, func() {
		clock := &fakeClock{now: time.Unix(1000, 0)}
		durable := newMemDurable()
		store := New(WithClock(clock), WithDurable(durable), WithDurablePrefixes("tmdb:", "poster:"))

		Convey("A listing page stays in memory", func() {
			store.Put("/v1/api/danh-sach/phim-moi-cap-nhat?page=1", []byte("{}"), time.Hour)
			So(durable.entries, ShouldBeEmpty)
			So(store.Get("/v1/api/danh-sach/phim-moi-cap-nhat?page=1").IsPresent(), ShouldBeTrue)
		})

		Convey("A memory miss on a listing page never loads from disk", func() {
			So(store.Get("/v1/api/tim-kiem?keyword=x").IsAbsent(), ShouldBeTrue)
			So(durable.loads, ShouldEqual, 0)
		})

		Convey("Lookups reach the durable tier", func() {
			store.Put("tmdb:movie:10", []byte("{}"), time.Hour)
			store.Put("poster:tv:3", []byte("{}"), time.Hour)
			So(durable.entries, ShouldContainKey, "tmdb:movie:10")
			So(durable.entries, ShouldContainKey, "poster:tv:3")
		})
	})

	Convey("Given a durable tier that always fails", t, func() {
		store := New(WithDurable(failingDurable{}))

		Convey("Nothing panics and memory still serves", func() {
			So(func() { store.Put("k", []byte("v"), time.Hour) }, ShouldNotPanic)
			So(string(store.Get("k").MustGet()), ShouldEqual, "v")
			So(store.Get("other").IsAbsent(), ShouldBeTrue)
			So(func() { store.Invalidate("k") }, ShouldNotPanic)
			So(func() { store.InvalidateAll() }, ShouldNotPanic)
		})
	})
}

func TestGacheDurable(t *testing.T) {
	Convey("Given a gache file on the in-memory filesystem", t, func() {
		path := "/cache/petflix/" + t.Name() + ".json"
		now := time.Unix(5000, 0)

		Convey("Entries survive a new process", func() {
			first := NewGacheDurable(path+"1", 10)
			So(first.Store("k", Entry{Value: []byte("v"), StoredAt: now, TTL: time.Hour}), ShouldBeNil)

			second := NewGacheDurable(path+"1", 10)
			e, ok, err := second.Load("k")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(string(e.Value), ShouldEqual, "v")
		})

		Convey("The oldest entries are dropped over capacity", func() {
			d := NewGacheDurable(path+"2", 2)
			So(d.Store("a", Entry{StoredAt: now, TTL: time.Hour}), ShouldBeNil)
			So(d.Store("b", Entry{StoredAt: now.Add(time.Second), TTL: time.Hour}), ShouldBeNil)
			So(d.Store("c", Entry{StoredAt: now.Add(2 * time.Second), TTL: time.Hour}), ShouldBeNil)

			_, ok, _ := d.Load("a")
			So(ok, ShouldBeFalse)
			_, ok, _ = d.Load("c")
			So(ok, ShouldBeTrue)
		})

		Convey("Prune removes stale entries", func() {
			d := NewGacheDurable(path+"3", 10)
			So(d.Store("old", Entry{StoredAt: now.Add(-time.Hour), TTL: time.Minute}), ShouldBeNil)
			So(d.Store("new", Entry{StoredAt: now, TTL: time.Hour}), ShouldBeNil)
			n, err := d.Prune(now)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
		})

		Convey("Delete and Clear", func() {
			d := NewGacheDurable(path+"4", 10)
			So(d.Store("a", Entry{StoredAt: now, TTL: time.Hour}), ShouldBeNil)
			So(d.Delete("a"), ShouldBeNil)
			_, ok, _ := d.Load("a")
			So(ok, ShouldBeFalse)
			So(d.Delete("missing"), ShouldBeNil)
			So(d.Clear(), ShouldBeNil)
		})
	})
}

func TestKey(t *testing.T) {
	Convey("Key is independent of parameter order", t, func() {
		a := Key("/v1/api/tim-kiem", url.Values{"keyword": {"naruto"}, "page": {"2"}})
		b := Key("/v1/api/tim-kiem", url.Values{"page": {"2"}, "keyword": {"naruto"}})
		So(a, ShouldEqual, b)
		So(a, ShouldEqual, "/v1/api/tim-kiem?keyword=naruto&page=2")
		So(Key("/phim/x", nil), ShouldEqual, "/phim/x")
	})
}
