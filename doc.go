// Package coro provides a synchronous coroutine primitive: a function that
// runs on its own goroutine while the program drives it step by step,
// receiving one value per step.
//
// A coroutine and the program driving it alternate strictly. At any instant
// only one side executes user code: the program blocks in Resume while the
// body runs, and the body blocks in Yield while the program runs. Each
// yield publishes a single pending value that the program reads with Recv
// before the next resume invalidates it.
//
//	c := coro.New(func(ctx *coro.Context[int]) error {
//		for i := 1; i <= 3; i++ {
//			ctx.Yield(i)
//		}
//		return nil
//	})
//	for c.Resume() {
//		fmt.Println(c.Recv())
//	}
//
// Cancellation is cooperative. Stop wakes a coroutine parked at a yield
// point and unwinds its call stack, running the body's deferred cleanup;
// a body busy between yields is only interrupted once it reaches the next
// one. A body's returned error or recovered panic is reported by Err after
// the resume that observed completion, never by crashing the program.
//
// Coroutines bridge to Go's native iterators through Values and FromSeq,
// and packs of coroutines can be driven together with Run and RunAll.
package coro
