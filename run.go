package coro

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run drives c to completion, calling fn for each value that the coroutine
// yields. fn runs on the calling goroutine, during the program's turn. If
// fn returns an error the coroutine is stopped and that error is returned;
// otherwise Run returns the coroutine's terminal error.
func Run[V any](c Coroutine[V], fn func(V) error) error {
	// The coroutine is run to completion, but fn might fail or panic in
	// which case we don't want to leave it suspended and interrupt it
	// instead.
	defer func() {
		if !c.Done() {
			c.Stop()
		}
	}()

	for c.Resume() {
		if err := fn(c.Recv()); err != nil {
			return err
		}
	}
	return c.Err()
}

// RunAll drives each coroutine to completion on its own goroutine, calling
// fn for each value yielded. Values from a single coroutine are delivered
// in order; fn must be safe for concurrent use across coroutines. The first
// error, whether from fn, a coroutine body, or ctx, cancels the rest, and
// every coroutine is stopped before RunAll returns.
func RunAll[V any](ctx context.Context, fn func(V) error, coros ...Coroutine[V]) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range coros {
		g.Go(func() error {
			defer func() {
				if !c.Done() {
					c.Stop()
				}
			}()

			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				if !c.Resume() {
					return c.Err()
				}
				if err := fn(c.Recv()); err != nil {
					return err
				}
			}
		})
	}
	return g.Wait()
}
