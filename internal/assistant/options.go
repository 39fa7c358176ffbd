package assistant

import (
	"log/slog"
	"time"
)

// options holds the internal configuration for an Assistant.
type options struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option configures Open.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
}

// WithLogger sets the logger for both collections and the assistant.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock replaces the wall clock used for note timestamps and birthday
// arithmetic (useful for testing).
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
