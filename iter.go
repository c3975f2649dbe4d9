package coro

import "iter"

// Values returns an iterator over the values remaining in the coroutine,
// resuming it once per iteration step. Breaking out of the range stops the
// coroutine, so a partially consumed sequence does not leak its goroutine.
// After the range is over, Err reports the body's outcome.
func (c Coroutine[V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		defer func() {
			if !c.Done() {
				c.Stop()
			}
		}()

		for c.Resume() {
			if !yield(c.Recv()) {
				return
			}
		}
	}
}

// FromSeq creates a coroutine yielding the values of seq, turning any Go
// iterator into a steppable, stoppable sequence.
func FromSeq[V any](seq iter.Seq[V], opts ...Option) Coroutine[V] {
	return New(func(c *Context[V]) error {
		for v := range seq {
			c.Yield(v)
		}
		return nil
	}, opts...)
}

// Collect drives c to completion and returns all values it yielded.
func Collect[V any](c Coroutine[V]) ([]V, error) {
	var vs []V
	err := Run(c, func(v V) error {
		vs = append(vs, v)
		return nil
	})
	return vs, err
}
