// Package workgroup runs related workers under one context.
package workgroup

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Group hands each worker the same context and collects the first error.
// Workers are not cancelled when a sibling fails; the shared context is the
// only stop signal.
type Group struct {
	ctx   context.Context
	group errgroup.Group
}

func WithContext(ctx context.Context) *Group {
	return &Group{ctx: ctx}
}

// Work starts fn as a worker.
func (g *Group) Work(fn func(context.Context) error) {
	g.group.Go(func() error {
		return fn(g.ctx)
	})
}

// Wait blocks until every worker returned and yields the first error.
func (g *Group) Wait() error {
	return g.group.Wait()
}
