package hashfunc

import (
	"github.com/gobwas/loadring/xrand"
)

// Random returns random hash values ignoring its input.
// It never gives sticky routing: same input produces different values.
type Random[T any] struct {
	rand *xrand.Rand
}

// NewRandom returns random hash function.
// Random source might be set by WithRand or WithSeed options.
func NewRandom[T any](opts ...Option) *Random[T] {
	o := newOptions(opts)
	return &Random[T]{
		rand: o.rand,
	}
}

// NewSeededRandom returns random hash function with deterministic sequence of
// values.
func NewSeededRandom[T any](seed int64) *Random[T] {
	return NewRandom[T](WithSeed(seed))
}

// Hash implements Function.
func (r *Random[T]) Hash(T) (int32, error) {
	return r.rand.Int32(), nil
}

// HashLong implements Function.
func (r *Random[T]) HashLong(T) (int64, error) {
	return r.rand.Int64(), nil
}

// IsRandom reports that r never produces sticky values.
func (r *Random[T]) IsRandom() bool {
	return true
}

// IsRandom reports whether hash function f produces random values regardless
// of its input.
func IsRandom[T any](f Function[T]) bool {
	x, ok := f.(interface{ IsRandom() bool })
	return ok && x.IsRandom()
}
