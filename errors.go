package loadring

import "errors"

var (
	// ErrInvalidWeight is returned when points map contains negative weight.
	ErrInvalidWeight = errors.New("loadring: weight must not be negative")

	// ErrNilPointsMap is returned by ring factories given nil points map.
	ErrNilPointsMap = errors.New("loadring: points map is nil")

	// ErrNilRingFactory is returned when decorating ring has no factory to
	// build its inner ring.
	ErrNilRingFactory = errors.New("loadring: ring factory is nil")

	// ErrNilTracker is returned when component requires load information but
	// no tracker was given.
	ErrNilTracker = errors.New("loadring: load tracker is nil")

	// ErrInvalidBalanceFactor is returned when bounded load balance factor is
	// not greater than one.
	ErrInvalidBalanceFactor = errors.New("loadring: balance factor must be greater than 1")

	// ErrInvalidConfig is returned when ring parameters are malformed.
	ErrInvalidConfig = errors.New("loadring: invalid config")
)
