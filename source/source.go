// Package source defines the catalog records and the contract every content source adapter satisfies.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/mo"
)

var (
	// ErrInvalidPage is returned for page numbers below 1.
	ErrInvalidPage = errors.New("page must be at least 1")

	// ErrNotFound is returned when the source does not know the requested id.
	ErrNotFound = errors.New("not found")
)

// UpstreamError is a non-2xx answer from the content source.
type UpstreamError struct {
	Status   int
	Endpoint string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: status %d", e.Endpoint, e.Status)
}

// Pagination is what the upstream reports about the listing it returned.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"totalItemsPerPage"`
}

// Page is one page of normalized records.
type Page struct {
	Records    []*Record
	Pagination mo.Option[Pagination]
}

// Source is a content catalog.
type Source interface {
	// ListPage returns one page of the latest updates, or of category when it is not empty.
	ListPage(ctx context.Context, page int, category string) (*Page, error)

	// Detail returns the full record for id, including its servers and episodes.
	Detail(ctx context.Context, id string) (*Detail, error)

	// Search returns one page of records matching keyword. An empty keyword yields an empty page.
	Search(ctx context.Context, keyword string, page, limit int) (*Page, error)
}
