// Package paginate decides how many pages a listing has and slices local result sets.
package paginate

import (
	"errors"
	"fmt"

	"github.com/petflix/petflix/source"
	"github.com/petflix/petflix/util"
	"github.com/samber/mo"
)

const (
	// MinEstimatedPages is the floor of an estimated page count.
	MinEstimatedPages = 50

	// Lookahead is how far past the current page an estimate reaches at least.
	Lookahead = 10

	// DefaultMaxDelta is how many pages a single jump may move.
	DefaultMaxDelta = 2
)

// ErrPageJump is matched by every *JumpError.
var ErrPageJump = errors.New("page jump too large")

// View describes the page being shown.
type View struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalPages int  `json:"total_pages"`
	TotalItems int  `json:"total_items"`
	Estimated  bool `json:"estimated"`
}

func (v View) HasPrev() bool { return v.Page > 1 }
func (v View) HasNext() bool { return v.Page < v.TotalPages }

// Contains reports whether page exists in this view's range.
func (v View) Contains(page int) bool {
	return page >= 1 && page <= v.TotalPages
}

func estimate(current int) int {
	return util.Max(MinEstimatedPages, current+Lookahead)
}

// FromUpstream derives the view of an upstream page holding count records.
//
// A reported total is trusted unless it claims a single page while the page is
// full, which the catalog does for listings it cannot count. Without a report a
// short page past the first is taken as the last one.
func FromUpstream(current, count, pageSize int, reported mo.Option[source.Pagination]) View {
	current = util.Max(current, 1)
	v := View{Page: current, PageSize: pageSize}

	if p, ok := reported.Get(); ok {
		total := util.Max(p.TotalPages, 1)
		if total == 1 && count >= pageSize {
			v.TotalPages = estimate(current)
			v.TotalItems = v.TotalPages * pageSize
			v.Estimated = true
			return v
		}

		items := p.TotalItems
		if items == 0 {
			items = count
		}
		v.TotalPages = util.Max(total, current)
		v.TotalItems = util.Max(items, count)
		return v
	}

	if count < pageSize && current > 1 {
		v.TotalPages = current
	} else {
		v.TotalPages = estimate(current)
	}
	v.TotalItems = v.TotalPages * pageSize
	v.Estimated = true
	return v
}

// Window returns the exact slice of items for page. Out of range pages are empty.
func Window[T any](items []T, page, pageSize int) ([]T, View) {
	if pageSize <= 0 {
		pageSize = len(items)
	}
	total := 1
	if pageSize > 0 {
		total = util.Max(1, (len(items)+pageSize-1)/pageSize)
	}

	v := View{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: total,
		TotalItems: len(items),
	}

	if page < 1 || page > total || len(items) == 0 {
		return []T{}, v
	}

	start := (page - 1) * pageSize
	end := util.Min(start+pageSize, len(items))
	return items[start:end], v
}

// JumpError rejects a page request too far from the current page.
type JumpError struct {
	From, To, MaxDelta int
}

func (e *JumpError) Error() string {
	return fmt.Sprintf("cannot jump from page %d to page %d, at most %d pages at a time", e.From, e.To, e.MaxDelta)
}

func (e *JumpError) Unwrap() error {
	return ErrPageJump
}

// Guard limits how far a single navigation may move. MaxDelta <= 0 disables the limit.
type Guard struct {
	MaxDelta int
}

// Check validates a move from current to requested before anything is fetched.
func (g Guard) Check(current, requested int) error {
	if requested < 1 {
		return source.ErrInvalidPage
	}
	if g.MaxDelta <= 0 || current < 1 {
		return nil
	}

	delta := requested - current
	if delta < 0 {
		delta = -delta
	}
	if delta > g.MaxDelta {
		return &JumpError{From: current, To: requested, MaxDelta: g.MaxDelta}
	}
	return nil
}

// Ellipsis marks a gap in a page strip.
const Ellipsis = 0

// Numbers lays out a page strip around current: the first page, delta pages on
// each side of current, the last page, and Ellipsis where pages are skipped.
func Numbers(current, total, delta int) []int {
	if total < 1 {
		return nil
	}

	strip := []int{1}
	if current-delta > 2 {
		strip = append(strip, Ellipsis)
	}
	for i := util.Max(2, current-delta); i <= util.Min(total-1, current+delta); i++ {
		strip = append(strip, i)
	}
	if current+delta < total-1 {
		strip = append(strip, Ellipsis, total)
	} else if total > 1 {
		strip = append(strip, total)
	}
	return strip
}
