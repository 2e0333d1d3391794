package loadring

import (
	"github.com/gobwas/loadring/logging"
	"github.com/gobwas/loadring/metrics"
	"github.com/gobwas/loadring/xrand"
)

// Option configures rings and selection utilities with optional
// dependencies.
type Option func(*options)

type options struct {
	logger   logging.Logger
	metrics  metrics.Collector
	rand     *xrand.Rand
	maxDraws int
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
	if o.rand == nil {
		o.rand = xrand.NewTime()
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

// WithRand sets a random source. Source might be shared between components.
func WithRand(r *xrand.Rand) Option {
	return func(o *options) {
		o.rand = r
	}
}

// WithSeed sets a random source seeded with given value.
// Useful for deterministic tests.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.rand = xrand.New(seed)
	}
}

// WithMaxIteratorDraws sets maximum number of random draws DistributionRing
// iterator makes per element before it gives up on sampling and returns
// remaining hosts in order. Non-positive value means the default.
func WithMaxIteratorDraws(n int) Option {
	return func(o *options) {
		o.maxDraws = n
	}
}
