package loadring

import (
	"fmt"
	"math"
)

// RingFactory builds rings from points maps.
type RingFactory interface {
	NewRing(points PointsMap) (Ring, error)
}

// RingFactoryFunc is an adapter to allow the use of ordinary functions as
// RingFactory.
type RingFactoryFunc func(PointsMap) (Ring, error)

// NewRing implements RingFactory.
func (f RingFactoryFunc) NewRing(points PointsMap) (Ring, error) {
	return f(points)
}

// PointBasedFactory builds ConsistentHashRing instances.
type PointBasedFactory struct{}

// NewRing implements RingFactory.
func (PointBasedFactory) NewRing(points PointsMap) (Ring, error) {
	if points == nil {
		return nil, ErrNilPointsMap
	}
	r, err := NewConsistentHashRing(points)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// MultiProbeFactory builds MPConsistentHashRing instances.
// Zero fields mean defaults.
type MultiProbeFactory struct {
	NumProbes     int
	PointsPerHost int
}

// NewRing implements RingFactory.
func (f MultiProbeFactory) NewRing(points PointsMap) (Ring, error) {
	if points == nil {
		return nil, ErrNilPointsMap
	}
	probes := f.NumProbes
	if probes == 0 {
		probes = DefaultNumProbes
	}
	perHost := f.PointsPerHost
	if perHost == 0 {
		perHost = DefaultPointsPerHost
	}
	r, err := NewMPConsistentHashRing(points, probes, perHost)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// DistributionFactory builds DistributionRing instances.
type DistributionFactory struct {
	Options []Option
}

// NewRing implements RingFactory.
func (f DistributionFactory) NewRing(points PointsMap) (Ring, error) {
	if points == nil {
		return nil, ErrNilPointsMap
	}
	r, err := NewDistributionRing(points, f.Options...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// BoundedLoadFactory builds BoundedLoadRing instances decorating rings built
// by Inner.
type BoundedLoadFactory struct {
	Inner         RingFactory
	Loads         ConcurrencyTracker
	BalanceFactor float64
	Options       []Option
}

// NewRing implements RingFactory.
func (f BoundedLoadFactory) NewRing(points PointsMap) (Ring, error) {
	if points == nil {
		return nil, ErrNilPointsMap
	}
	r, err := NewBoundedLoadRing(f.Inner, points, f.Loads, f.BalanceFactor, f.Options...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Algorithm names ring implementation.
type Algorithm string

const (
	AlgorithmPointBased   Algorithm = "pointBased"
	AlgorithmMultiProbe   Algorithm = "multiProbe"
	AlgorithmDistribution Algorithm = "distributionBased"
)

// FactoryConfig describes which rings to build.
type FactoryConfig struct {
	// Algorithm is a ring algorithm. Empty value means AlgorithmPointBased.
	Algorithm Algorithm

	// NumProbes and PointsPerHost configure multi-probe rings.
	// Zero values mean defaults.
	NumProbes     int
	PointsPerHost int

	// BoundedLoadBalancingFactor enables bounded load decoration of rings
	// when greater than one. Non-positive value disables it.
	BoundedLoadBalancingFactor float64
}

// NewRingFactory returns factory building rings described by cfg. Loads are
// required only when bounded load is enabled.
//
// Balancing factor in range (0, 1] can not bound load meaningfully; it is
// ignored with a warning.
func NewRingFactory(cfg FactoryConfig, loads ConcurrencyTracker, opts ...Option) (RingFactory, error) {
	o := newOptions(opts)

	var f RingFactory
	switch cfg.Algorithm {
	case "", AlgorithmPointBased:
		f = PointBasedFactory{}
	case AlgorithmMultiProbe:
		if cfg.NumProbes < 0 || cfg.PointsPerHost < 0 {
			return nil, fmt.Errorf(
				"%w: negative multi-probe parameters: probes=%d points=%d",
				ErrInvalidConfig, cfg.NumProbes, cfg.PointsPerHost,
			)
		}
		f = MultiProbeFactory{
			NumProbes:     cfg.NumProbes,
			PointsPerHost: cfg.PointsPerHost,
		}
	case AlgorithmDistribution:
		f = DistributionFactory{
			Options: opts,
		}
	default:
		return nil, fmt.Errorf("%w: unknown ring algorithm: %q", ErrInvalidConfig, cfg.Algorithm)
	}

	bf := cfg.BoundedLoadBalancingFactor
	switch {
	case math.IsNaN(bf) || math.IsInf(bf, 0):
		return nil, fmt.Errorf("%w: %v", ErrInvalidBalanceFactor, bf)
	case bf <= 0:
		return f, nil
	case bf <= 1:
		o.logger.Warn(
			"bounded load balancing factor must be greater than 1; bounded load is disabled",
			"factor", bf,
		)
		return f, nil
	}
	if loads == nil {
		return nil, ErrNilTracker
	}
	return BoundedLoadFactory{
		Inner:         f,
		Loads:         loads,
		BalanceFactor: bf,
		Options:       opts,
	}, nil
}
