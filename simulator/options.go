package simulator

import "github.com/go-logr/logr"

// Option configures a simulator at construction time.
type Option func(*simConfig)

type simConfig struct {
	log logr.Logger
}

// WithLogger attaches a structured logger for construction and
// diagnostic output. The default is logr.Discard().
func WithLogger(log logr.Logger) Option {
	return func(c *simConfig) { c.log = log }
}

func applyOptions(opts []Option) simConfig {
	cfg := simConfig{log: logr.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
