package catalog

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrSuperseded is returned instead of a result that a newer request for the same key has replaced.
var ErrSuperseded = errors.New("superseded by a newer request")

// Token identifies one request for a logical query key.
type Token struct {
	key string
	n   uint64
}

// Tracker hands out increasing tokens per key so a late answer can be told apart
// from the current one. In-flight work is never aborted.
type Tracker struct {
	mu     sync.Mutex
	latest map[string]*atomic.Uint64
}

func NewTracker() *Tracker {
	return &Tracker{latest: make(map[string]*atomic.Uint64)}
}

func (t *Tracker) counter(key string) *atomic.Uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.latest[key]
	if !ok {
		c = &atomic.Uint64{}
		t.latest[key] = c
	}
	return c
}

// Begin issues a token newer than every earlier one for key.
func (t *Tracker) Begin(key string) Token {
	return Token{key: key, n: t.counter(key).Add(1)}
}

// Commit reports whether token is still the newest for its key.
func (t *Tracker) Commit(token Token) bool {
	return t.counter(token.key).Load() == token.n
}
