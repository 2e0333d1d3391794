// Package hashfunc implements functions turning request keys into integer
// hash values suitable for ring lookups.
package hashfunc

import (
	"errors"

	"github.com/gobwas/loadring/logging"
	"github.com/gobwas/loadring/xrand"
)

var (
	// ErrUnsupported is returned by functions which can not produce the
	// requested kind of hash value.
	ErrUnsupported = errors.New("hashfunc: unsupported operation")

	// ErrNoRegexMatch is returned by URIRegex configured to fail when none of
	// its patterns match.
	ErrNoRegexMatch = errors.New("hashfunc: no regex matched")

	// ErrInvalidConfig is returned when hash function can not be built from
	// given configuration.
	ErrInvalidConfig = errors.New("hashfunc: invalid config")
)

// Function is a hash function over values of type T.
type Function[T any] interface {
	// Hash returns 32-bit hash of x.
	Hash(x T) (int32, error)

	// HashLong returns 64-bit hash of x.
	// It returns error wrapping ErrUnsupported if function has no 64-bit
	// variant.
	HashLong(x T) (int64, error)
}

// Option configures hash functions which need randomness or logging.
type Option func(*options)

type options struct {
	rand   *xrand.Rand
	logger logging.Logger
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.rand == nil {
		o.rand = xrand.NewTime()
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	return o
}

// WithRand sets random source used by the function.
func WithRand(r *xrand.Rand) Option {
	return func(o *options) {
		o.rand = r
	}
}

// WithSeed makes function use a random source seeded with given value.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.rand = xrand.New(seed)
	}
}

// WithLogger sets logger used by the function.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
