package coro

import (
	"fmt"
	"runtime/debug"
)

// PanicError is the terminal error of a coroutine whose body panicked. It
// carries the recovered value and the stack of the coroutine's goroutine,
// captured at the panic site.
type PanicError struct {
	value any
	stack []byte
}

func newPanicError(v any) *PanicError {
	return &PanicError{value: v, stack: debug.Stack()}
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("coroutine panicked: %v", p.value)
}

// Value returns the value the body panicked with.
func (p *PanicError) Value() any { return p.value }

// Stack returns the stack of the coroutine's goroutine at the panic site,
// in the format of runtime/debug.Stack.
func (p *PanicError) Stack() []byte { return p.stack }

// Unwrap returns the panic value when it is itself an error, so that
// errors.Is and errors.As see through the capture.
func (p *PanicError) Unwrap() error {
	if err, ok := p.value.(error); ok {
		return err
	}
	return nil
}
