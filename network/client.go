// Package network provides the shared HTTP client used for every upstream call.
package network

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/petflix/petflix/constant"
	"golang.org/x/time/rate"
)

// Client is shared across adapters. Per-call deadlines come from the request context,
// the client timeout is only a backstop.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: NewTransport(http.DefaultTransport.(*http.Transport).Clone(), nil),
}

func tune(t *http.Transport) *http.Transport {
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 200
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	return t
}

// Transport stamps the user agent and waits on an optional limiter before each request.
// The limiter may be swapped while requests are in flight.
type Transport struct {
	Base    http.RoundTripper
	limiter atomic.Pointer[rate.Limiter]
}

// NewTransport wraps base. A nil limiter means unlimited.
func NewTransport(base *http.Transport, limiter *rate.Limiter) *Transport {
	t := &Transport{Base: tune(base)}
	t.SetLimiter(limiter)
	return t
}

// SetLimiter replaces the limiter. Nil removes it.
func (t *Transport) SetLimiter(limiter *rate.Limiter) {
	t.limiter.Store(limiter)
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if limiter := t.limiter.Load(); limiter != nil {
		if err := limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	r := req.Clone(req.Context())
	if r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", constant.UserAgent)
	}
	return t.Base.RoundTrip(r)
}

// SetRateLimit replaces the limiter on the shared client. rps <= 0 removes it.
func SetRateLimit(rps int) {
	t, ok := Client.Transport.(*Transport)
	if !ok {
		return
	}
	if rps <= 0 {
		t.SetLimiter(nil)
		return
	}
	t.SetLimiter(rate.NewLimiter(rate.Limit(rps), rps))
}

// Get issues a GET bound to ctx.
func Get(ctx context.Context, client *http.Client, url string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if client == nil {
		client = Client
	}
	return client.Do(req)
}
