package coro

import (
	"context"
	"errors"
	"runtime"
	"slices"
	"sync/atomic"
	"testing"
)

func TestRun(t *testing.T) {
	c := New(squares(4))

	var values []int
	err := Run(c, func(v int) error {
		values = append(values, v)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(values, []int{1, 4, 9, 16}) {
		t.Errorf("wrong values yielded by coroutine: %#v", values)
	}
}

func TestRunEarlyError(t *testing.T) {
	errEnough := errors.New("enough")
	c := New(squares(100))

	n := 0
	err := Run(c, func(v int) error {
		if n++; n == 3 {
			return errEnough
		}
		return nil
	})
	if !errors.Is(err, errEnough) {
		t.Fatalf("wrong error: got %v, expect %v", err, errEnough)
	}
	if !c.Done() {
		t.Error("coroutine not stopped after the callback failed")
	}
}

func TestRunBodyError(t *testing.T) {
	errBoom := errors.New("boom")
	c := New(func(ctx *Context[int]) error {
		ctx.Yield(1)
		return errBoom
	})

	err := Run(c, func(int) error { return nil })
	if !errors.Is(err, errBoom) {
		t.Fatalf("wrong error: got %v, expect %v", err, errBoom)
	}
}

func TestRunCallbackPanic(t *testing.T) {
	c := New(squares(100))

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected the callback panic to propagate")
			}
		}()
		_ = Run(c, func(int) error { panic("boom") })
	}()

	if !c.Done() {
		t.Error("coroutine not stopped after the callback panicked")
	}
}

func TestRunAll(t *testing.T) {
	base := runtime.NumGoroutine()

	coros := []Coroutine[int]{
		New(squares(3)),
		New(squares(4)),
		New(squares(5)),
	}

	var total atomic.Int64
	err := RunAll(context.Background(), func(v int) error {
		total.Add(int64(v))
		return nil
	}, coros...)
	if err != nil {
		t.Fatal(err)
	}

	// 14 + 30 + 55: the square pyramidal numbers for 3, 4 and 5.
	if got := total.Load(); got != 99 {
		t.Errorf("wrong total: got %d, expect 99", got)
	}
	expectNumGoroutines(t, base, "after driving all coroutines")
}

func TestRunAllBodyError(t *testing.T) {
	errBoom := errors.New("boom")

	coros := []Coroutine[int]{
		New(squares(1000)),
		New(func(ctx *Context[int]) error {
			ctx.Yield(1)
			return errBoom
		}),
	}

	err := RunAll(context.Background(), func(int) error { return nil }, coros...)
	if !errors.Is(err, errBoom) {
		t.Fatalf("wrong error: got %v, expect %v", err, errBoom)
	}
	for i, c := range coros {
		if !c.Done() {
			t.Errorf("coroutine %d not stopped after the failure", i)
		}
	}
}

func TestRunAllContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	coros := []Coroutine[int]{New(squares(3)), New(squares(4))}

	err := RunAll(ctx, func(int) error { return nil }, coros...)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("wrong error: got %v, expect %v", err, context.Canceled)
	}
	for i, c := range coros {
		if !c.Done() {
			t.Errorf("coroutine %d not stopped after cancellation", i)
		}
	}
}
