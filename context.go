package coro

import (
	"log/slog"
	"runtime"
	"sync/atomic"
)

// None is the unit type for coroutines whose suspension points carry no
// payload, only the transfer of control.
type None struct{}

// Context is the coroutine-side view of a coroutine: it is passed to the
// body as its only argument and carries the Yield operation. The program
// driving the coroutine holds the other view, the Coroutine returned by New.
//
// A Context must only be used by the body it was passed to, on the
// goroutine the body runs on. The corovet tool reports bodies that let
// their context escape into other goroutines.
type Context[V any] struct {
	id     uint64
	name   string
	logger *slog.Logger

	recv   V
	ready  bool
	yields int

	resume chan struct{}
	yield  chan struct{}
	exited chan struct{}

	running atomic.Bool
	stop    atomic.Bool
	done    atomic.Bool

	err error
}

// Yield publishes v to the program driving the coroutine and parks until
// the next call to Resume. The value stays readable through Recv until the
// coroutine is resumed again.
//
// Yield is also the coroutine's cancellation point. If Stop or Shutdown was
// called, Yield does not return: it unwinds the body's call stack, calling
// each defer statement in the inverse order that they were declared. The
// unwinding cannot be observed by the body's own recover calls.
//
// Yield panics if the coroutine already completed, or when called while the
// turn is not the body's (a context that escaped to the driving side).
func (c *Context[V]) Yield(v V) {
	if c.done.Load() {
		panic("coro.Yield: coroutine already completed")
	}
	if !c.running.Load() {
		panic("coro.Yield: not called during the coroutine's turn")
	}
	if c.stop.Load() {
		runtime.Goexit()
	}
	c.recv = v
	c.ready = true
	c.yields++
	c.log("coroutine yielded", "n", c.yields)
	c.running.Store(false)
	c.yield <- struct{}{}
	<-c.resume
	if c.stop.Load() {
		runtime.Goexit()
	}
	c.running.Store(true)
}

func (c *Context[V]) log(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
