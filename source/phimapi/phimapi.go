package phimapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/petflix/petflix/log"
	"github.com/petflix/petflix/source"
)

const (
	latestEndpoint   = "/danh-sach/phim-moi-cap-nhat-v3"
	categoryEndpoint = "/v1/api/danh-sach/"
	searchEndpoint   = "/v1/api/tim-kiem"
	detailEndpoint   = "/phim/"
)

var _ source.Source = (*Client)(nil)

// ListPage returns the latest updates, or the category listing when category is set.
// A failing category listing falls back to the latest updates.
func (c *Client) ListPage(ctx context.Context, page int, category string) (*source.Page, error) {
	if page < 1 {
		return nil, source.ErrInvalidPage
	}

	if category == "" {
		return c.latest(ctx, page)
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(c.pageSize))
	params.Set("sort_field", "modified.time")
	params.Set("sort_type", "desc")

	result, err := c.page(ctx, categoryEndpoint+url.PathEscape(category), params)
	if err == nil {
		return result, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	log.Warnf("phimapi: category %q failed, falling back to latest: %v", category, err)
	result, fallbackErr := c.latest(ctx, page)
	if fallbackErr != nil {
		return nil, fmt.Errorf("category %s: %w", category, err)
	}
	return result, nil
}

func (c *Client) latest(ctx context.Context, page int) (*source.Page, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	return c.page(ctx, latestEndpoint, params)
}

// Search returns one page of keyword matches. An empty keyword makes no call.
func (c *Client) Search(ctx context.Context, keyword string, page, limit int) (*source.Page, error) {
	if page < 1 {
		return nil, source.ErrInvalidPage
	}

	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return &source.Page{}, nil
	}
	if limit <= 0 {
		limit = c.pageSize
	}

	params := url.Values{}
	params.Set("keyword", keyword)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sort_field", "modified.time")
	params.Set("sort_type", "desc")

	return c.page(ctx, searchEndpoint, params)
}

func (c *Client) page(ctx context.Context, endpoint string, params url.Values) (*source.Page, error) {
	result := &source.Page{}
	err := c.get(ctx, endpoint, params, func(body []byte) error {
		raw, err := items(body)
		if err != nil {
			return fmt.Errorf("phimapi %s: %w", endpoint, err)
		}
		result.Records = c.records(raw)
		result.Pagination = pagination(body)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Detail returns the record for id with its servers. Unknown ids yield source.ErrNotFound.
func (c *Client) Detail(ctx context.Context, id string) (*source.Detail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, source.ErrNotFound
	}

	var result *source.Detail
	err := c.get(ctx, detailEndpoint+url.PathEscape(id), nil, func(body []byte) error {
		var raw rawDetail
		if err := json.Unmarshal(body, &raw); err != nil {
			return fmt.Errorf("phimapi detail %s: %w", id, err)
		}
		if !raw.found() {
			return fmt.Errorf("%s: %w", id, source.ErrNotFound)
		}
		result = c.detail(raw)
		return nil
	})

	var upstream *source.UpstreamError
	if errors.As(err, &upstream) && upstream.Status == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", id, source.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
