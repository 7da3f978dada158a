package history

import (
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/petflix/petflix/filesystem"
	"github.com/petflix/petflix/log"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

type users = map[string]map[string]*Entry

// FileStore persists progress in one JSON file.
type FileStore struct {
	mu     sync.Mutex
	cacher *gache.Cache[users]
	now    func() time.Time

	subsMu sync.Mutex
	subs   map[string]map[int]func([]*Entry)
	nextID int
}

var _ Store = (*FileStore)(nil)

// NewFileStore opens the store at path lazily.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		cacher: gache.New[users](&gache.Options{
			Path:       path,
			FileSystem: &filesystem.GacheFs{},
		}),
		now:  time.Now,
		subs: make(map[string]map[int]func([]*Entry)),
	}
}

func (s *FileStore) load() (users, error) {
	cached, expired, err := s.cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(users), nil
	}
	return cached, nil
}

func (s *FileStore) SaveProgress(userID, itemID, episodeID string, p Progress) error {
	if userID == "" || itemID == "" || episodeID == "" {
		return ErrMissingField
	}

	s.mu.Lock()
	all, err := s.load()
	if err != nil {
		s.mu.Unlock()
		return err
	}

	entries, ok := all[userID]
	if !ok {
		entries = make(map[string]*Entry)
		all[userID] = entries
	}

	percentage := p.Percentage()
	// Re-opening an episode must not lose how far it was watched.
	if existing, ok := entries[itemID]; ok && existing.EpisodeID == episodeID {
		percentage = max(percentage, existing.WatchedPercentage)
	}

	entries[itemID] = &Entry{
		ItemID:            itemID,
		EpisodeID:         episodeID,
		Title:             p.Title,
		CurrentTime:       p.CurrentTime,
		Duration:          p.Duration,
		HasEmbed:          p.HasEmbed,
		WatchedPercentage: percentage,
		UpdatedAt:         s.now(),
	}

	err = s.cacher.Set(all)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notify(userID)
	return nil
}

func (s *FileStore) List(userID string) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return nil, err
	}
	return sorted(all[userID]), nil
}

func sorted(entries map[string]*Entry) []*Entry {
	list := lo.Values(entries)
	slices.SortFunc(list, func(a, b *Entry) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return list
}

func (s *FileStore) Delete(userID, itemID string) error {
	return s.mutate(userID, func(entries map[string]*Entry) bool {
		if _, ok := entries[itemID]; !ok {
			return false
		}
		delete(entries, itemID)
		return true
	})
}

func (s *FileStore) Clear(userID string) error {
	return s.mutate(userID, func(entries map[string]*Entry) bool {
		if len(entries) == 0 {
			return false
		}
		clear(entries)
		return true
	})
}

func (s *FileStore) mutate(userID string, fn func(map[string]*Entry) bool) error {
	s.mu.Lock()
	all, err := s.load()
	if err != nil {
		s.mu.Unlock()
		return err
	}

	entries := all[userID]
	if entries == nil || !fn(entries) {
		s.mu.Unlock()
		return nil
	}
	if len(entries) == 0 {
		delete(all, userID)
	}

	err = s.cacher.Set(all)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notify(userID)
	return nil
}

func (s *FileStore) Subscribe(userID string, fn func([]*Entry)) (cancel func()) {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	if s.subs[userID] == nil {
		s.subs[userID] = make(map[int]func([]*Entry))
	}
	s.subs[userID][id] = fn
	s.subsMu.Unlock()

	if entries, err := s.List(userID); err == nil {
		fn(entries)
	} else {
		log.Warnf("history: initial snapshot for %s: %v", userID, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			delete(s.subs[userID], id)
		})
	}
}

func (s *FileStore) notify(userID string) {
	s.subsMu.Lock()
	listeners := lo.Values(s.subs[userID])
	s.subsMu.Unlock()

	if len(listeners) == 0 {
		return
	}

	entries, err := s.List(userID)
	if err != nil {
		log.Warnf("history: snapshot for %s: %v", userID, err)
		return
	}
	for _, fn := range listeners {
		fn(entries)
	}
}
