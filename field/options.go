package field

import (
	"log/slog"
	"time"
)

// Option configures a field at construction.
type Option func(*settings)

type settings struct {
	format  string
	timeout time.Duration
	logger  *slog.Logger
	name    string
}

// WithFormat sets the display pattern used by writes (and, for time fields,
// reads). The pattern is only checked when a write or read uses it.
func WithFormat(pattern string) Option {
	return func(s *settings) { s.format = pattern }
}

// WithWaitTimeout overrides the engine's default timeout for the overlay wait.
func WithWaitTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger; the default is the package logger from obs.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithName sets the label used in errors and logs. NewDateField and
// NewTimeField default it to the widget id; other constructors use "unnamed".
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}
