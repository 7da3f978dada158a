// Package history keeps per-user playback progress.
package history

import (
	"errors"
	"time"
)

// ErrMissingField is returned when a user, item or episode id is empty.
var ErrMissingField = errors.New("user, item and episode ids are required")

// Progress is what a player reports for the episode being watched.
// Embedded players cannot report time, only that the episode was opened.
type Progress struct {
	CurrentTime int    `json:"current_time"`
	Duration    int    `json:"duration"`
	Title       string `json:"title"`
	HasEmbed    bool   `json:"has_embed,omitempty"`
}

// Percentage is the watched share of the episode, 0 when the duration is unknown.
func (p Progress) Percentage() float64 {
	if p.Duration <= 0 {
		return 0
	}
	return min(100, float64(p.CurrentTime)*100/float64(p.Duration))
}

// Entry is the last known progress of one item.
type Entry struct {
	ItemID            string    `json:"item_id"`
	EpisodeID         string    `json:"episode_id"`
	Title             string    `json:"title"`
	CurrentTime       int       `json:"current_time"`
	Duration          int       `json:"duration"`
	HasEmbed          bool      `json:"has_embed,omitempty"`
	WatchedPercentage float64   `json:"watched_percentage"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Store is a progress store keyed by user.
type Store interface {
	// SaveProgress records progress for the item, replacing the previous episode of it.
	SaveProgress(userID, itemID, episodeID string, p Progress) error

	// List returns the user's entries, most recently updated first.
	List(userID string) ([]*Entry, error)

	// Subscribe calls fn with the current entries and again after every change. Call cancel to stop.
	Subscribe(userID string, fn func([]*Entry)) (cancel func())

	// Delete removes one item. Unknown items are ignored.
	Delete(userID, itemID string) error

	// Clear removes every entry of the user.
	Clear(userID string) error
}
