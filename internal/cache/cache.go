// Package cache is the two-tier key/value store in front of every upstream call.
//
// The memory tier lives as long as the process. The durable tier is optional,
// best-effort and never the only copy of anything. Entries are immutable once
// written and are considered absent as soon as their TTL has elapsed.
package cache

import (
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/petflix/petflix/log"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// TTL classes.
const (
	TTLShort    = 10 * time.Minute
	TTLLong     = 24 * time.Hour
	TTLVeryLong = 7 * 24 * time.Hour
)

const defaultMemoryLimit = 2048

// Clock is injected so expiry can be tested without sleeping.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock = ClockFunc(time.Now)

// Entry is a single cached value.
type Entry struct {
	Value    []byte        `json:"value"`
	StoredAt time.Time     `json:"stored_at"`
	TTL      time.Duration `json:"ttl"`
}

// Fresh reports whether the entry is still valid at now.
func (e Entry) Fresh(now time.Time) bool {
	return now.Sub(e.StoredAt) < e.TTL
}

// Durable is the persistent backing tier.
type Durable interface {
	Load(key string) (Entry, bool, error)
	Store(key string, entry Entry) error
	Delete(key string) error
	Clear() error
}

// Pruner is implemented by durable tiers that can drop stale entries eagerly.
type Pruner interface {
	Prune(now time.Time) (int, error)
}

// Store is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	mem     map[string]Entry
	limit   int
	clock   Clock
	durable Durable
	// persist limits the durable tier to keys with one of these prefixes.
	persist []string
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithDurable attaches a durable tier.
func WithDurable(d Durable) Option {
	return func(s *Store) { s.durable = d }
}

// WithDurablePrefixes restricts the durable tier to keys starting with one of
// prefixes. Other keys live in memory only. Without this option every key is persisted.
func WithDurablePrefixes(prefixes ...string) Option {
	return func(s *Store) { s.persist = append(s.persist, prefixes...) }
}

// WithMemoryLimit bounds the number of memory entries.
func WithMemoryLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

// New returns a Store with only the memory tier unless WithDurable is given.
func New(opts ...Option) *Store {
	s := &Store{
		mem:   make(map[string]Entry),
		limit: defaultMemoryLimit,
		clock: SystemClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get checks memory, then the durable tier. A durable hit is promoted.
func (s *Store) Get(key string) mo.Option[[]byte] {
	now := s.clock.Now()

	s.mu.RLock()
	entry, ok := s.mem[key]
	s.mu.RUnlock()
	if ok && entry.Fresh(now) {
		return mo.Some(entry.Value)
	}

	if !s.durableFor(key) {
		return mo.None[[]byte]()
	}

	entry, ok, err := s.durable.Load(key)
	if err != nil {
		log.Debugf("cache: durable load %q: %v", key, err)
		return mo.None[[]byte]()
	}
	if !ok || !entry.Fresh(now) {
		return mo.None[[]byte]()
	}

	s.remember(key, entry)
	return mo.Some(entry.Value)
}

// Put writes the memory tier and, best-effort, the durable tier.
func (s *Store) Put(key string, value []byte, ttl time.Duration) {
	entry := Entry{Value: value, StoredAt: s.clock.Now(), TTL: ttl}
	s.remember(key, entry)

	if !s.durableFor(key) {
		return
	}
	if err := s.durable.Store(key, entry); err != nil {
		log.Debugf("cache: durable store %q: %v", key, err)
	}
}

// GetJSON decodes a cached value into target. Decode errors count as a miss.
func (s *Store) GetJSON(key string, target any) bool {
	raw, ok := s.Get(key).Get()
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, target); err != nil {
		log.Debugf("cache: decode %q: %v", key, err)
		return false
	}
	return true
}

// PutJSON encodes v and stores it. Encode errors are dropped.
func (s *Store) PutJSON(key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Debugf("cache: encode %q: %v", key, err)
		return
	}
	s.Put(key, raw, ttl)
}

// Invalidate removes key from both tiers.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	delete(s.mem, key)
	s.mu.Unlock()

	if s.durableFor(key) {
		if err := s.durable.Delete(key); err != nil {
			log.Debugf("cache: durable delete %q: %v", key, err)
		}
	}
}

// InvalidatePrefix removes every memory entry whose key starts with prefix,
// and the same keys from the durable tier.
func (s *Store) InvalidatePrefix(prefix string) {
	s.mu.Lock()
	var keys []string
	for k := range s.mem {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
			delete(s.mem, k)
		}
	}
	s.mu.Unlock()

	for _, k := range keys {
		if !s.durableFor(k) {
			continue
		}
		if err := s.durable.Delete(k); err != nil {
			log.Debugf("cache: durable delete %q: %v", k, err)
		}
	}
}

// InvalidateAll empties both tiers.
func (s *Store) InvalidateAll() {
	s.mu.Lock()
	s.mem = make(map[string]Entry)
	s.mu.Unlock()

	if s.durable != nil {
		if err := s.durable.Clear(); err != nil {
			log.Debugf("cache: durable clear: %v", err)
		}
	}
}

// Prune drops stale entries from memory and, when supported, from the durable tier.
func (s *Store) Prune() int {
	now := s.clock.Now()

	s.mu.Lock()
	removed := 0
	for k, e := range s.mem {
		if !e.Fresh(now) {
			delete(s.mem, k)
			removed++
		}
	}
	s.mu.Unlock()

	if p, ok := s.durable.(Pruner); ok {
		n, err := p.Prune(now)
		if err != nil {
			log.Debugf("cache: durable prune: %v", err)
		}
		removed += n
	}
	return removed
}

// Len is the number of memory entries, stale ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.mem)
}

func (s *Store) durableFor(key string) bool {
	if s.durable == nil {
		return false
	}
	if len(s.persist) == 0 {
		return true
	}
	return lo.SomeBy(s.persist, func(prefix string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

func (s *Store) remember(key string, entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mem[key] = entry
	if len(s.mem) > s.limit {
		evictOldest(s.mem, len(s.mem)-s.limit)
	}
}

// evictOldest removes the n entries with the earliest StoredAt.
func evictOldest(m map[string]Entry, n int) {
	for ; n > 0; n-- {
		var (
			oldestKey string
			oldest    time.Time
			first     = true
		)
		for k, e := range m {
			if first || e.StoredAt.Before(oldest) {
				oldestKey, oldest, first = k, e.StoredAt, false
			}
		}
		delete(m, oldestKey)
	}
}

// Key builds the canonical cache key for an endpoint and its query parameters.
func Key(endpoint string, params url.Values) string {
	if len(params) == 0 {
		return endpoint
	}
	return endpoint + "?" + params.Encode()
}
