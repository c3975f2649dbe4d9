// Package testdata seeds coroutine misuse for the analyzer tests. None of
// these functions is meant to run.
package testdata

import "github.com/stealthrocket/coro"

// ContextEscape starts a goroutine from the body that yields on its
// behalf.
func ContextEscape() coro.Coroutine[int] {
	return coro.New(func(ctx *coro.Context[int]) error {
		go func() {
			ctx.Yield(1)
		}()
		return nil
	})
}

// SelfDrive resumes and reads its own coroutine from inside the body.
func SelfDrive() {
	var c coro.Coroutine[int]
	c = coro.New(func(ctx *coro.Context[int]) error {
		ctx.Yield(1)
		c.Resume()
		return nil
	})
	c.Resume()
}

// SelfStop stops its own coroutine from inside the body, which can
// never complete.
func SelfStop() {
	var c coro.Coroutine[int]
	c = coro.New(func(ctx *coro.Context[int]) error {
		defer c.Stop()
		ctx.Yield(1)
		return nil
	})
	c.Resume()
}

// SelfCollect drains its own coroutine from inside the body.
func SelfCollect() {
	var c coro.Coroutine[int]
	c = coro.New(func(ctx *coro.Context[int]) error {
		_, err := coro.Collect(c)
		return err
	})
	c.Resume()
}

// Clean drives a well-behaved coroutine and must produce no findings.
func Clean() ([]int, error) {
	c := coro.New(func(ctx *coro.Context[int]) error {
		for i := 0; i < 3; i++ {
			ctx.Yield(i)
		}
		return nil
	})
	return coro.Collect(c)
}

// Nested drives an inner coroutine from the body of an outer one, which
// is legal and must produce no findings.
func Nested() ([]int, error) {
	outer := coro.New(func(ctx *coro.Context[int]) error {
		inner := coro.New(func(ictx *coro.Context[int]) error {
			ictx.Yield(10)
			return nil
		})
		vs, err := coro.Collect(inner)
		if err != nil {
			return err
		}
		for _, v := range vs {
			ctx.Yield(v)
		}
		return nil
	})
	return coro.Collect(outer)
}
