package union

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Option configures a Union.
type Option func(*config)

type config struct {
	logger     *zap.Logger
	metrics    *Metrics
	nameFormat string
}

func defaultConfig() config {
	return config{
		logger:     zap.NewNop(),
		nameFormat: "%s-worker-%d",
	}
}

// WithLogger sets the logger used for member lifecycle events.
// A nil logger keeps the default no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records member lifecycle events into m.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithNameFormat sets the printf format used to name members.
// The format receives the union name and the 0-based sequence number, and
// must consume both so that every member gets a distinct name.
func WithNameFormat(format string) Option {
	if format == "" {
		panic("union: name format cannot be empty")
	}
	first := fmt.Sprintf(format, "u", int64(0))
	second := fmt.Sprintf(format, "u", int64(1))
	if strings.Contains(first, "%!") || first == second {
		panic(fmt.Sprintf("union: name format %q must use the union name and the sequence number", format))
	}

	return func(c *config) {
		c.nameFormat = format
	}
}
