package castree

import "log/slog"

// MaterializeOption configures a Materialize call.
type MaterializeOption func(*materializeConfig)

type materializeConfig struct {
	overwrite bool
	logger    *slog.Logger
}

// WithOverwrite replaces existing files instead of skipping them.
func WithOverwrite(enabled bool) MaterializeOption {
	return func(c *materializeConfig) {
		c.overwrite = enabled
	}
}

// WithMaterializeLogger sets the logger for materialize operations.
func WithMaterializeLogger(logger *slog.Logger) MaterializeOption {
	return func(c *materializeConfig) {
		c.logger = logger
	}
}
