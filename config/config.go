// Package config contains YAML configuration of a service routing.
package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gobwas/loadring"
	"github.com/gobwas/loadring/hashfunc"
)

// ErrInvalid is returned when configuration fails validation.
var ErrInvalid = errors.New("config: invalid configuration")

// Service describes how requests to a service are routed.
type Service struct {
	// HashMethod is a request hash method name, one of hashfunc.MethodRandom
	// and hashfunc.MethodURIRegex. Empty value means random.
	HashMethod string `yaml:"hashMethod"`

	// HashConfig is passed as is to the hash function constructor.
	HashConfig map[string]any `yaml:"hashConfig"`

	Ring Ring `yaml:"ring"`
}

// Ring configures hash ring construction.
type Ring struct {
	Algorithm     loadring.Algorithm `yaml:"algorithm"`
	NumProbes     int                `yaml:"numProbes"`
	PointsPerHost int                `yaml:"pointsPerHost"`

	// BoundedLoadBalancingFactor enables bounded load when greater than one.
	// Zero disables it.
	BoundedLoadBalancingFactor float64 `yaml:"boundedLoadBalancingFactor"`
}

// Load reads and parses configuration file at path.
func Load(path string) (*Service, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return s, nil
}

// Parse parses and validates configuration data.
func Parse(data []byte) (*Service, error) {
	var s Service
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the configuration. It does not compile hash function
// configuration; that is done by HashFunction.
func (s *Service) Validate() error {
	switch s.HashMethod {
	case "", hashfunc.MethodRandom, hashfunc.MethodURIRegex:
	default:
		return fmt.Errorf("%w: unknown hash method %q", ErrInvalid, s.HashMethod)
	}
	r := s.Ring
	switch r.Algorithm {
	case "", loadring.AlgorithmPointBased, loadring.AlgorithmMultiProbe, loadring.AlgorithmDistribution:
	default:
		return fmt.Errorf("%w: unknown ring algorithm %q", ErrInvalid, r.Algorithm)
	}
	if r.NumProbes < 0 {
		return fmt.Errorf("%w: negative number of probes: %d", ErrInvalid, r.NumProbes)
	}
	if r.PointsPerHost < 0 {
		return fmt.Errorf("%w: negative points per host: %d", ErrInvalid, r.PointsPerHost)
	}
	f := r.BoundedLoadBalancingFactor
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return fmt.Errorf("%w: bad bounded load balancing factor: %v", ErrInvalid, f)
	}
	return nil
}

// BoundedLoad reports whether rings are decorated with bounded load.
func (s *Service) BoundedLoad() bool {
	return s.Ring.BoundedLoadBalancingFactor > 1
}

// HashFunction builds request hash function.
func (s *Service) HashFunction(opts ...hashfunc.Option) (hashfunc.Function[*url.URL], error) {
	return hashfunc.New(s.HashMethod, s.HashConfig, opts...)
}

// RingFactory builds ring factory. Tracker is required only when bounded
// load is enabled.
func (s *Service) RingFactory(tracker loadring.ConcurrencyTracker, opts ...loadring.Option) (loadring.RingFactory, error) {
	return loadring.NewRingFactory(loadring.FactoryConfig{
		Algorithm:                  s.Ring.Algorithm,
		NumProbes:                  s.Ring.NumProbes,
		PointsPerHost:              s.Ring.PointsPerHost,
		BoundedLoadBalancingFactor: s.Ring.BoundedLoadBalancingFactor,
	}, tracker, opts...)
}
