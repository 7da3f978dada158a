package phimapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/petflix/petflix/source"
	"github.com/samber/mo"
)

var errMalformed = errors.New("malformed payload")

// The catalog answers in several envelope shapes depending on the endpoint.
// Each path is tried in order and the first one holding an array wins.
var itemPaths = [][]string{
	{"data", "items"},
	{"items"},
	{"data"},
	{"data", "data"},
}

var paginationPaths = [][]string{
	{"pagination"},
	{"data", "pagination"},
	{"data", "params", "pagination"},
}

// lookup walks an object path. A missing or null value is not found.
func lookup(raw json.RawMessage, path []string) (json.RawMessage, bool) {
	for _, name := range path {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, false
		}
		next, ok := obj[name]
		if !ok {
			return nil, false
		}
		raw = next
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false
	}
	return raw, true
}

func isArray(raw json.RawMessage) bool {
	return len(raw) > 0 && raw[0] == '['
}

func isObject(raw json.RawMessage) bool {
	return len(raw) > 0 && raw[0] == '{'
}

// items extracts the record array from any known envelope. A valid envelope
// without any array yields no records, not an error.
func items(body []byte) ([]rawRecord, error) {
	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		return nil, errMalformed
	}

	var records []rawRecord
	if isArray(body) {
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	for _, path := range itemPaths {
		raw, ok := lookup(body, path)
		if !ok || !isArray(raw) {
			continue
		}
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, err
		}
		return records, nil
	}
	return nil, nil
}

func pagination(body []byte) mo.Option[source.Pagination] {
	for _, path := range paginationPaths {
		raw, ok := lookup(body, path)
		if !ok || !isObject(raw) {
			continue
		}
		var p rawPagination
		if err := json.Unmarshal(raw, &p); err != nil {
			continue
		}
		if p.empty() {
			continue
		}
		return mo.Some(p.normalize())
	}
	return mo.None[source.Pagination]()
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(n)
	return nil
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*f = flexString(str)
		return nil
	}
	*f = flexString(s)
	return nil
}

type rawPagination struct {
	CurrentPage       flexInt `json:"currentPage"`
	CurrentPageSnake  flexInt `json:"current_page"`
	TotalPages        flexInt `json:"totalPages"`
	TotalPagesSnake   flexInt `json:"total_page"`
	TotalItems        flexInt `json:"totalItems"`
	TotalItemsSnake   flexInt `json:"total_item"`
	TotalItemsPerPage flexInt `json:"totalItemsPerPage"`
}

func (p rawPagination) empty() bool {
	return p.TotalPages == 0 && p.TotalPagesSnake == 0 && p.TotalItems == 0 && p.TotalItemsSnake == 0
}

func (p rawPagination) normalize() source.Pagination {
	pick := func(a, b flexInt) int {
		if a != 0 {
			return int(a)
		}
		return int(b)
	}
	return source.Pagination{
		CurrentPage:  pick(p.CurrentPage, p.CurrentPageSnake),
		TotalPages:   pick(p.TotalPages, p.TotalPagesSnake),
		TotalItems:   pick(p.TotalItems, p.TotalItemsSnake),
		ItemsPerPage: int(p.TotalItemsPerPage),
	}
}

type rawRecord struct {
	Name         string       `json:"name"`
	Slug         string       `json:"slug"`
	OriginName   string       `json:"origin_name"`
	Content      string       `json:"content"`
	Type         string       `json:"type"`
	EpisodeTotal flexString   `json:"episode_total"`
	Quality      string       `json:"quality"`
	Lang         string       `json:"lang"`
	Year         flexInt      `json:"year"`
	PosterURL    string       `json:"poster_url"`
	ThumbURL     string       `json:"thumb_url"`
	Country      []source.Tag `json:"country"`
	Category     []source.Tag `json:"category"`
	TMDB         struct {
		ID   flexString `json:"id"`
		Type string     `json:"type"`
	} `json:"tmdb"`
	Modified struct {
		Time string `json:"time"`
	} `json:"modified"`
}

func (c *Client) record(r rawRecord) *source.Record {
	return &source.Record{
		ID:            r.Slug,
		Title:         strings.TrimSpace(r.Name),
		OriginalTitle: strings.TrimSpace(r.OriginName),
		Description:   stripTags(r.Content),
		Year:          int(r.Year),
		Kind:          source.KindOf(r.Type),
		Type:          r.Type,
		EpisodeTotal:  string(r.EpisodeTotal),
		Quality:       r.Quality,
		Lang:          r.Lang,
		Countries:     r.Country,
		Categories:    r.Category,
		ExternalID:    string(r.TMDB.ID),
		ExternalKind:  r.TMDB.Type,
		PosterRef:     ImageURL(c.imageBase, r.PosterURL),
		BackdropRef:   ImageURL(c.imageBase, r.ThumbURL),
		Modified:      parseTime(r.Modified.Time),
	}
}

func (c *Client) records(raw []rawRecord) []*source.Record {
	out := make([]*source.Record, 0, len(raw))
	for _, r := range raw {
		if r.Slug == "" {
			continue
		}
		out = append(out, c.record(r))
	}
	return out
}

// ImageURL resolves a catalog image reference against the image CDN.
// Absolute references are returned unchanged.
func ImageURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	case strings.HasPrefix(ref, "//"):
		return "https:" + ref
	default:
		return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(ref, "/")
	}
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func stripTags(s string) string {
	var (
		b     strings.Builder
		inTag bool
	)
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>' && inTag:
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

type rawEpisode struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Filename  string `json:"filename"`
	LinkEmbed string `json:"link_embed"`
	LinkM3U8  string `json:"link_m3u8"`
}

type rawServer struct {
	Name string       `json:"server_name"`
	Data []rawEpisode `json:"server_data"`
}

type rawDetail struct {
	Status   json.RawMessage `json:"status"`
	Movie    *rawRecord      `json:"movie"`
	Episodes []rawServer     `json:"episodes"`
}

// found reports whether the payload describes an existing record. The catalog
// answers unknown slugs with status false and no movie.
func (d rawDetail) found() bool {
	status := strings.ToLower(strings.Trim(string(bytes.TrimSpace(d.Status)), `"`))
	if status == "false" || status == "error" {
		return false
	}
	return d.Movie != nil && d.Movie.Slug != ""
}

func (c *Client) detail(d rawDetail) *source.Detail {
	detail := &source.Detail{Record: c.record(*d.Movie)}
	for _, s := range d.Episodes {
		server := &source.Server{Name: s.Name}
		for _, e := range s.Data {
			server.Episodes = append(server.Episodes, &source.Episode{
				Name:      e.Name,
				Slug:      e.Slug,
				Filename:  e.Filename,
				LinkEmbed: e.LinkEmbed,
				LinkM3U8:  e.LinkM3U8,
			})
		}
		detail.Servers = append(detail.Servers, server)
	}
	return detail
}
