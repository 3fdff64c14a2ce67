// Package fetch pulls one resource kind from the remote source into the local
// cache per fetcher. Failures of a single repository or tool are recorded in the
// batch report and skipped; only listing, cache read and cache write failures
// fail the whole fetch.
package fetch

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 4

type Options struct {
	// Concurrency bounds the per-repository remote calls in flight.
	Concurrency int
	Now         func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Concurrency < 1 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// forEach calls fn for every index in [0, n) with at most limit calls running.
// fn reports per-item failures through its own results, so the group never fails.
func forEach(ctx context.Context, n, limit int, fn func(ctx context.Context, i int)) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(gctx, i)
			return nil
		})
	}
	_ = g.Wait()
}
