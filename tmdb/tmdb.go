// Package tmdb looks up posters and descriptive metadata by external id.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/petflix/petflix/auth"
	"github.com/petflix/petflix/internal/cache"
	"github.com/petflix/petflix/log"
	"github.com/petflix/petflix/network"
	"github.com/petflix/petflix/source"
	"github.com/samber/mo"
)

const (
	DefaultBaseURL   = "https://api.themoviedb.org/3"
	DefaultImageBase = "https://image.tmdb.org/t/p"

	PosterSize   = "w342"
	BackdropSize = "w780"
)

// ErrNoCredential means no bearer token is configured. Retrying will not help.
var ErrNoCredential = errors.New("metadata provider: no credential")

// Metadata is the subset of the provider's answer the service uses.
type Metadata struct {
	ExternalID   string  `json:"external_id"`
	Kind         string  `json:"kind"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview,omitempty"`
	PosterPath   string  `json:"poster_path,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	VoteAverage  float64 `json:"vote_average,omitempty"`
}

type response struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
}

func (r response) metadata(id, kind string) *Metadata {
	m := &Metadata{
		ExternalID:   id,
		Kind:         kind,
		Title:        r.Title,
		Overview:     r.Overview,
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
		ReleaseDate:  r.ReleaseDate,
		VoteAverage:  r.VoteAverage,
	}
	if m.Title == "" {
		m.Title = r.Name
	}
	if m.ReleaseDate == "" {
		m.ReleaseDate = r.FirstAirDate
	}
	return m
}

// Client is safe for concurrent use.
type Client struct {
	baseURL   string
	imageBase string
	token     func() mo.Option[string]
	http      *http.Client
	cache     *cache.Store
	ttl       time.Duration
	timeout   time.Duration
}

// Option configures a Client.
type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

func WithImageBase(u string) Option {
	return func(c *Client) { c.imageBase = strings.TrimSuffix(u, "/") }
}

// WithToken replaces the credential lookup, auth.Token by default.
func WithToken(token func() mo.Option[string]) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithCache(store *cache.Store, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		c.ttl = ttl
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		imageBase: DefaultImageBase,
		token:     auth.Token,
		http:      network.Client,
		ttl:       cache.TTLLong,
		timeout:   8 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = cache.New()
	}
	return c
}

// CachePrefix starts every lookup key.
const CachePrefix = "tmdb:"

// CacheKey is the cache key of one lookup. Kind is part of it: movie 10 and tv 10 are unrelated.
func CacheKey(kind, id string) string {
	return CachePrefix + kind + ":" + id
}

// Lookup fetches the metadata of id as kind ("movie" or "tv").
// An id unknown to the provider is absent, not an error. Provider ids are
// numeric, so anything else is absent without a call.
func (c *Client) Lookup(ctx context.Context, id, kind string) (mo.Option[*Metadata], error) {
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return mo.None[*Metadata](), nil
	}
	if kind != source.MetadataTV {
		kind = source.MetadataMovie
	}

	token, ok := c.token().Get()
	if !ok {
		return mo.None[*Metadata](), ErrNoCredential
	}

	key := CacheKey(kind, id)
	var cached Metadata
	if c.cache.GetJSON(key, &cached) {
		return mo.Some(&cached), nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := "/" + kind + "/" + id
	header := http.Header{
		"Accept":        {"application/json"},
		"Authorization": {"Bearer " + token},
	}

	log.Debugf("tmdb: GET %s", endpoint)
	resp, err := network.Get(ctx, c.http, c.baseURL+endpoint+"?language=en-US", header)
	if err != nil {
		return mo.None[*Metadata](), fmt.Errorf("tmdb %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return mo.None[*Metadata](), nil
	case resp.StatusCode == http.StatusUnauthorized:
		return mo.None[*Metadata](), fmt.Errorf("tmdb %s: token rejected: %w", endpoint, ErrNoCredential)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return mo.None[*Metadata](), &source.UpstreamError{Status: resp.StatusCode, Endpoint: endpoint}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return mo.None[*Metadata](), fmt.Errorf("tmdb %s: %w", endpoint, err)
	}

	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return mo.None[*Metadata](), fmt.Errorf("tmdb %s: %w", endpoint, err)
	}
	if r.ID != 0 && strconv.Itoa(r.ID) != id {
		log.Warnf("tmdb: asked for %s, got id %d", id, r.ID)
	}

	m := r.metadata(id, kind)
	c.cache.PutJSON(key, m, c.ttl)
	return mo.Some(m), nil
}

// ImageURL builds an image URL from a provider path. An empty path yields "".
func (c *Client) ImageURL(path, size string) string {
	return ImageURL(c.imageBase, path, size)
}

func ImageURL(base, path, size string) string {
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimSuffix(base, "/") + "/" + size + path
}
