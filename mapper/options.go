package mapper

import (
	"github.com/gobwas/loadring/logging"
	"github.com/gobwas/loadring/metrics"
)

// Option configures mappers.
type Option func(*options)

type options struct {
	logger  logging.Logger
	metrics metrics.Collector
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewNop()
	}
	return o
}

// WithLogger sets a logger.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics sets a metrics collector.
func WithMetrics(c metrics.Collector) Option {
	return func(o *options) {
		o.metrics = c
	}
}
