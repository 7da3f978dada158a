// Package phimapi adapts the phimapi JSON catalog to source.Source.
package phimapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/petflix/petflix/internal/cache"
	"github.com/petflix/petflix/log"
	"github.com/petflix/petflix/network"
	"github.com/petflix/petflix/source"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	DefaultBaseURL   = "https://phimapi.com"
	DefaultImageBase = "https://phimimg.com"
	DefaultPageSize  = 64
	DefaultTimeout   = 8 * time.Second
)

// Client is safe for concurrent use.
type Client struct {
	baseURL   string
	imageBase string
	pageSize  int
	timeout   time.Duration
	ttl       time.Duration
	http      *http.Client
	cache     *cache.Store
	breaker   *gobreaker.CircuitBreaker[[]byte]
}

// Option configures a Client.
type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

func WithImageBase(u string) Option {
	return func(c *Client) { c.imageBase = strings.TrimSuffix(u, "/") }
}

func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithTimeout bounds every single upstream call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCache makes every call cache-through, successes kept for ttl.
func WithCache(store *cache.Store, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		c.ttl = ttl
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New returns a client with a fresh circuit breaker. Without WithCache it keeps
// a private memory-only store.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		imageBase: DefaultImageBase,
		pageSize:  DefaultPageSize,
		timeout:   DefaultTimeout,
		ttl:       cache.TTLShort,
		http:      network.Client,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = cache.New()
	}
	c.breaker = newBreaker("phimapi")
	return c
}

// PageSize is the number of records requested per page.
func (c *Client) PageSize() int {
	return c.pageSize
}

func newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var upstream *source.UpstreamError
			switch {
			case err == nil:
				return true
			case errors.As(err, &upstream):
				return upstream.Status < http.StatusInternalServerError
			case errors.Is(err, context.Canceled):
				return true
			default:
				return false
			}
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("%s: circuit %s -> %s", name, from, to)
		},
	})
}

// get serves endpoint from the cache, or fetches it and stores the body once decode accepts it.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, decode func([]byte) error) error {
	key := cache.Key(endpoint, params)

	if raw, ok := c.cache.Get(key).Get(); ok {
		if err := decode(raw); err == nil {
			return nil
		}
		c.cache.Invalidate(key)
	}

	raw, err := c.fetch(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if err := decode(raw); err != nil {
		return err
	}

	c.cache.Put(key, raw, c.ttl)
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	return c.breaker.Execute(func() ([]byte, error) {
		log.Debugf("phimapi: GET %s", target)
		resp, err := network.Get(ctx, c.http, target, http.Header{"Accept": {"application/json"}})
		if err != nil {
			return nil, fmt.Errorf("phimapi %s: %w", endpoint, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &source.UpstreamError{Status: resp.StatusCode, Endpoint: endpoint}
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("phimapi %s: %w", endpoint, err)
		}
		return body, nil
	})
}
