// Package task runs independent units of work concurrently and collects every outcome.
//
// Unlike a plain errgroup, one failing task never cancels its siblings: each task
// settles on its own into a mo.Result, and results come back in submission order.
package task

import (
	"context"
	"time"

	"github.com/samber/mo"
	"golang.org/x/sync/errgroup"
)

// Func is a unit of work.
type Func[T any] func(ctx context.Context) (T, error)

// Group collects the outcome of every submitted Func.
type Group[T any] struct {
	limit   int
	timeout time.Duration
	tasks   []Func[T]
}

// New returns a group running at most limit tasks at once (limit <= 0 means unbounded).
// A positive timeout bounds each task separately.
func New[T any](limit int, timeout time.Duration) *Group[T] {
	return &Group[T]{limit: limit, timeout: timeout}
}

// Go queues fn. Nothing runs until Wait.
func (g *Group[T]) Go(fn Func[T]) {
	g.tasks = append(g.tasks, fn)
}

// Len is the number of queued tasks.
func (g *Group[T]) Len() int {
	return len(g.tasks)
}

// Wait runs every queued task and blocks until all of them settle.
func (g *Group[T]) Wait(ctx context.Context) []mo.Result[T] {
	results := make([]mo.Result[T], len(g.tasks))

	var eg errgroup.Group
	if g.limit > 0 {
		eg.SetLimit(g.limit)
	}

	for i, fn := range g.tasks {
		eg.Go(func() error {
			results[i] = g.run(ctx, fn)
			return nil
		})
	}

	_ = eg.Wait()
	g.tasks = nil
	return results
}

func (g *Group[T]) run(ctx context.Context, fn Func[T]) mo.Result[T] {
	if err := ctx.Err(); err != nil {
		return mo.Err[T](err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	return mo.TupleToResult(fn(ctx))
}

// Values returns the values of the successful results, in order.
func Values[T any](results []mo.Result[T]) []T {
	values := make([]T, 0, len(results))
	for _, r := range results {
		if v, err := r.Get(); err == nil {
			values = append(values, v)
		}
	}
	return values
}

// Errors returns the errors of the failed results, in order.
func Errors[T any](results []mo.Result[T]) []error {
	var errs []error
	for _, r := range results {
		if r.IsError() {
			errs = append(errs, r.Error())
		}
	}
	return errs
}

// Map runs fn over every item with the given bounds and returns the settled results in item order.
func Map[S, T any](ctx context.Context, items []S, limit int, timeout time.Duration, fn func(context.Context, S) (T, error)) []mo.Result[T] {
	g := New[T](limit, timeout)
	for _, item := range items {
		g.Go(func(ctx context.Context) (T, error) {
			return fn(ctx, item)
		})
	}
	return g.Wait(ctx)
}
