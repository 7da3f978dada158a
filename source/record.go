package source

import (
	"strconv"
	"strings"
	"time"
)

// Kind is the broad classification of a record.
type Kind string

const (
	KindMovie     Kind = "movie"
	KindSeries    Kind = "series"
	KindAnimation Kind = "animation"
)

// Tag is a named, slugged label such as a country or a category.
type Tag struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Record is a normalized catalog entry.
type Record struct {
	// ID is the upstream slug. It is the cache and deduplication key.
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	OriginalTitle string    `json:"original_title"`
	Description   string    `json:"description,omitempty"`
	Year          int       `json:"year,omitempty"`
	Kind          Kind      `json:"kind"`
	Type          string    `json:"type,omitempty"`
	EpisodeTotal  string    `json:"episode_total,omitempty"`
	Quality       string    `json:"quality,omitempty"`
	Lang          string    `json:"lang,omitempty"`
	Countries     []Tag     `json:"countries,omitempty"`
	Categories    []Tag     `json:"categories,omitempty"`
	ExternalID    string    `json:"external_id,omitempty"`
	ExternalKind  string    `json:"external_kind,omitempty"`
	PosterRef     string    `json:"poster_ref,omitempty"`
	BackdropRef   string    `json:"backdrop_ref,omitempty"`
	Modified      time.Time `json:"modified,omitempty"`
}

func (r *Record) String() string {
	if r.Year > 0 {
		return r.Title + " (" + strconv.Itoa(r.Year) + ")"
	}
	return r.Title
}

// HasExternalID reports whether the record can be joined with metadata.
func (r *Record) HasExternalID() bool {
	return r.ExternalID != "" && r.ExternalID != "0"
}

// Episodes parses EpisodeTotal. Values such as "Full" or "" yield 0.
func (r *Record) Episodes() int {
	fields := strings.Fields(r.EpisodeTotal)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return n
}

// KindOf classifies a raw upstream type.
func KindOf(upstreamType string) Kind {
	switch strings.ToLower(upstreamType) {
	case "hoathinh":
		return KindAnimation
	case "series", "tvshows":
		return KindSeries
	default:
		return KindMovie
	}
}
