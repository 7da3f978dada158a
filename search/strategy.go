package search

import (
	"context"
	"errors"
	"time"

	"github.com/petflix/petflix/internal/task"
	"github.com/petflix/petflix/source"
	"github.com/samber/lo"
)

// ErrNotApplicable is returned by a strategy that has nothing to do for a query.
// It does not count as a failure.
var ErrNotApplicable = errors.New("strategy not applicable")

// Strategy produces candidate records for a query.
type Strategy interface {
	Name() string
	Run(ctx context.Context, q Query) ([]*source.Record, error)
}

// pager fans out page requests. A failed or timed out page contributes nothing;
// the whole run fails only when every page failed.
type pager struct {
	src         source.Source
	pageSize    int
	concurrency int
	timeout     time.Duration
}

type pageCall func(ctx context.Context) (*source.Page, error)

func (p pager) collect(ctx context.Context, calls []pageCall) ([]*source.Record, error) {
	if len(calls) == 0 {
		return nil, nil
	}

	results := task.Map(ctx, calls, p.concurrency, p.timeout, func(ctx context.Context, call pageCall) (*source.Page, error) {
		return call(ctx)
	})

	pages := task.Values(results)
	if len(pages) == 0 {
		return nil, errors.Join(task.Errors(results)...)
	}
	return lo.FlatMap(pages, func(page *source.Page, _ int) []*source.Record {
		if page == nil {
			return nil
		}
		return page.Records
	}), nil
}

func (p pager) searches(terms []string, pages int) []pageCall {
	var calls []pageCall
	for _, term := range terms {
		for page := 1; page <= pages; page++ {
			calls = append(calls, func(ctx context.Context) (*source.Page, error) {
				return p.src.Search(ctx, term, page, p.pageSize)
			})
		}
	}
	return calls
}

func (p pager) listings(category string, pages int) []pageCall {
	calls := make([]pageCall, 0, pages)
	for page := 1; page <= pages; page++ {
		calls = append(calls, func(ctx context.Context) (*source.Page, error) {
			return p.src.ListPage(ctx, page, category)
		})
	}
	return calls
}

// Direct searches the keyword as typed.
type Direct struct {
	pager
	Pages int
}

func (Direct) Name() string { return "direct" }

func (s Direct) Run(ctx context.Context, q Query) ([]*source.Record, error) {
	if q.Keyword == "" {
		return nil, ErrNotApplicable
	}
	return s.collect(ctx, s.searches([]string{q.Keyword}, s.Pages))
}

// Tokens searches each word of a multi-word keyword.
type Tokens struct {
	pager
	Pages int
}

func (Tokens) Name() string { return "tokens" }

func (s Tokens) Run(ctx context.Context, q Query) ([]*source.Record, error) {
	if len(q.Tokens) < 2 {
		return nil, ErrNotApplicable
	}
	return s.collect(ctx, s.searches(q.Tokens, s.Pages))
}

// Alternates searches the synonyms of the keyword.
type Alternates struct {
	pager
	Pages int
}

func (Alternates) Name() string { return "synonyms" }

func (s Alternates) Run(ctx context.Context, q Query) ([]*source.Record, error) {
	if len(q.Alternates) == 0 {
		return nil, ErrNotApplicable
	}
	return s.collect(ctx, s.searches(q.Alternates, s.Pages))
}

// Category scans the scoped category and keeps records containing the keyword.
type Category struct {
	pager
	Pages int
}

func (Category) Name() string { return "category" }

func (s Category) Run(ctx context.Context, q Query) ([]*source.Record, error) {
	if q.Category == "" || q.Keyword == "" {
		return nil, ErrNotApplicable
	}
	records, err := s.collect(ctx, s.listings(q.Category, s.Pages))
	if err != nil {
		return nil, err
	}
	keyword := []string{normalize(q.Keyword)}
	return lo.Filter(records, func(r *source.Record, _ int) bool {
		return matches(r, keyword)
	}), nil
}

// Local scans the latest updates and keeps records matching any term.
type Local struct {
	pager
	Pages int
}

func (Local) Name() string { return "local" }

func (s Local) Run(ctx context.Context, q Query) ([]*source.Record, error) {
	terms := q.Terms()
	if len(terms) == 0 {
		return nil, ErrNotApplicable
	}
	records, err := s.collect(ctx, s.listings("", s.Pages))
	if err != nil {
		return nil, err
	}
	return lo.Filter(records, func(r *source.Record, _ int) bool {
		return matches(r, terms)
	}), nil
}
