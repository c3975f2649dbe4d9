package coro

import "log/slog"

type options struct {
	name   string
	logger *slog.Logger
}

// Option configures a coroutine at construction time.
type Option func(*options)

// WithName attaches a name to the coroutine's trace records.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger enables debug tracing of the coroutine's lifecycle through
// logger. Tracing is off by default and has no cost when disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}
