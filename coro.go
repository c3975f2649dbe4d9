package coro

import (
	"context"
	"sync/atomic"
)

// lastID numbers coroutine instances for trace records.
var lastID atomic.Uint64

// Coroutine instances expose the APIs allowing the program to drive the
// execution of coroutines.
//
// The type parameter V represents the type of values that the program
// receives from the coroutine at each of its yield points.
type Coroutine[V any] struct{ ctx *Context[V] }

// New creates a coroutine which executes body on a dedicated goroutine.
//
// The goroutine starts parked at the coroutine's entry point: no body code
// runs until the first call to Resume. Arguments are bound by closing over
// them in body; the *Context parameter is the body's handle to Yield.
//
// A coroutine holds its goroutine until it completes or is stopped. A
// program abandoning a coroutine before completion must call Stop or
// Shutdown to release it; letting the Coroutine go out of scope leaks the
// goroutine.
func New[V any](body func(*Context[V]) error, opts ...Option) Coroutine[V] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Context[V]{
		id:     lastID.Add(1),
		name:   o.name,
		resume: make(chan struct{}),
		yield:  make(chan struct{}),
		exited: make(chan struct{}),
	}
	if o.logger != nil {
		c.logger = o.logger.With("coroutine", c.id)
		if c.name != "" {
			c.logger = c.logger.With("name", c.name)
		}
	}

	go func() {
		defer close(c.exited)
		defer func() {
			c.running.Store(false)
			if v := recover(); v != nil {
				c.err = newPanicError(v)
			}
			c.done.Store(true)
			c.log("coroutine finished", "yields", c.yields, "err", c.err)
		}()

		<-c.resume
		if c.stop.Load() {
			return
		}
		c.running.Store(true)
		c.log("coroutine started")
		c.err = body(c)
	}()

	return Coroutine[V]{ctx: c}
}

// Resume executes the coroutine until its next yield point, or until
// completion. The method returns true if the coroutine entered a yield
// point, after which the program should call Recv to obtain the value that
// the coroutine yielded. It returns false once the coroutine completed;
// resuming a completed coroutine is a no-op that keeps returning false.
//
// Resume must not be called from the coroutine's own body, nor from two
// goroutines at the same time.
func (c Coroutine[V]) Resume() bool {
	ctx := c.ctx
	if ctx.done.Load() {
		return false
	}
	if ctx.running.Load() {
		panic("coro.Resume: coroutine is already running")
	}
	ctx.ready = false
	select {
	case ctx.resume <- struct{}{}:
	case <-ctx.exited:
		return false
	}
	select {
	case <-ctx.yield:
		return true
	case <-ctx.exited:
		return false
	}
}

// Recv returns the value from the coroutine's latest yield point. Calling
// the method multiple times between two resumes returns the same value each
// time.
//
// Recv panics if no value is pending: before the first call to Resume,
// after a call to Resume returned false, or after the coroutine was
// stopped.
func (c Coroutine[V]) Recv() V {
	if c.ctx.done.Load() || !c.ctx.ready {
		panic("coro.Recv: no value pending")
	}
	return c.ctx.recv
}

// Done returns true if the coroutine completed, either because it was
// stopped or because its body returned. It never blocks and is safe to call
// from any goroutine.
func (c Coroutine[V]) Done() bool { return c.ctx.done.Load() }

// Err returns the coroutine's terminal outcome: nil while it is still
// running, nil after a normal return or a stop, the error the body
// returned, or a *PanicError if the body panicked.
func (c Coroutine[V]) Err() error {
	if !c.ctx.done.Load() {
		return nil
	}
	return c.ctx.err
}

// Stop interrupts the coroutine and waits until its goroutine has exited.
// A coroutine parked at a yield point does not return from it; instead it
// unwinds its call stack, calling each defer statement in the inverse order
// that they were declared. If the body is running, Stop waits for it to
// reach its next yield point first; that wait is unbounded, use Shutdown to
// give it a deadline.
//
// Stop is idempotent and safe to call from any goroutine except the
// coroutine's own body. Stopping a completed coroutine has no effect.
func (c Coroutine[V]) Stop() {
	ctx := c.ctx
	ctx.stop.Store(true)
	ctx.log("coroutine stop requested")
	select {
	case ctx.resume <- struct{}{}:
	case <-ctx.exited:
	}
	<-ctx.exited
}

// Shutdown is Stop with a deadline: it requests cancellation and waits for
// the coroutine's goroutine to exit until ctx is done. It returns nil if
// the goroutine exited, or ctx.Err() if it was still running when ctx
// fired.
//
// The cancellation request stays armed after a failed Shutdown: the body
// still unwinds at its next yield point, and a later Stop, Resume or Join
// call observes the exit.
func (c Coroutine[V]) Shutdown(ctx context.Context) error {
	cc := c.ctx
	cc.stop.Store(true)
	cc.log("coroutine shutdown requested")
	select {
	case cc.resume <- struct{}{}:
	case <-cc.exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-cc.exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Join blocks until the coroutine completed, without requesting
// cancellation. It is meant for observers of a coroutine that is driven or
// stopped elsewhere; joining a coroutine that nothing resumes blocks
// forever.
func (c Coroutine[V]) Join() { <-c.ctx.exited }
