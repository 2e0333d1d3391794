package loadring

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/url"

	"github.com/cespare/xxhash/v2"

	"github.com/gobwas/loadring/hashfunc"
	"github.com/gobwas/loadring/logging"
	"github.com/gobwas/loadring/metrics"
	"github.com/gobwas/loadring/xrand"
)

// PowerOfTwo selects one of two ring candidates using load reported by
// hosts.
//
// Two hash values are derived from request. Host with load x is preferred
// over host with load y with probability y/(x+y). That is, less loaded host
// wins more often but heavier one is not starved. When load of any candidate
// is unknown, or both loads are zero, candidate is chosen by coin flip.
type PowerOfTwo struct {
	hash    hashfunc.Function[*url.URL]
	loads   LoadReporter
	rand    *xrand.Rand
	logger  logging.Logger
	metrics metrics.Collector
}

// NewPowerOfTwo creates PowerOfTwo selection using given request hash
// function and reported loads source.
func NewPowerOfTwo(hash hashfunc.Function[*url.URL], loads LoadReporter, opts ...Option) (*PowerOfTwo, error) {
	if hash == nil {
		return nil, fmt.Errorf("%w: hash function is nil", ErrInvalidConfig)
	}
	if loads == nil {
		return nil, ErrNilTracker
	}
	o := newOptions(opts)
	return &PowerOfTwo{
		hash:    hash,
		loads:   loads,
		rand:    o.rand,
		logger:  o.logger,
		metrics: o.metrics,
	}, nil
}

// Select returns host for the request. Hosts for which usable returns false
// are never returned. If chosen candidate is not usable, Select returns the
// first usable host from ring iterator started at the first candidate's
// hash. Nil usable means all hosts are usable.
//
// It returns false if there is no usable host. Non-nil error means request
// could not be hashed.
func (p *PowerOfTwo) Select(ring Ring, req *url.URL, usable func(string) bool) (string, bool, error) {
	h1, h2, err := p.hashes(req)
	if err != nil {
		return "", false, err
	}
	a, ok := ring.Get(h1)
	if !ok {
		return "", false, nil
	}
	b, ok := ring.Get(h2)
	if !ok {
		b = a
	}
	host := p.choose(a, b)
	if usable == nil || usable(host) {
		return host, true, nil
	}

	p.metrics.RecordPowerOfTwoFallback()
	p.logger.Debug(
		"power of two candidate is not usable; falling back to ring iteration",
		"host", host,
	)
	it := ring.Iterator(h1)
	for {
		host, ok := it.Next()
		if !ok {
			return "", false, nil
		}
		if usable(host) {
			return host, true, nil
		}
	}
}

// SelectClient returns client of a host selected for the request. Hosts
// missing in clients or present in excluded are not selected.
func SelectClient[C any](
	p *PowerOfTwo,
	ring Ring,
	req *url.URL,
	clients map[string]C,
	excluded map[string]struct{},
) (c C, ok bool, err error) {
	host, ok, err := p.Select(ring, req, func(host string) bool {
		if _, has := excluded[host]; has {
			return false
		}
		_, has := clients[host]
		return has
	})
	if err != nil || !ok {
		return c, false, err
	}
	return clients[host], true, nil
}

// hashes returns two hash values of the request. Halves of 64-bit hash are
// used when hash function supports it. Otherwise the second value is a mix
// of the first one.
func (p *PowerOfTwo) hashes(req *url.URL) (h1, h2 int32, err error) {
	v, err := p.hash.HashLong(req)
	if err == nil {
		return int32(v >> 32), int32(v), nil
	}
	if !errors.Is(err, hashfunc.ErrUnsupported) {
		return 0, 0, err
	}
	h1, err = p.hash.Hash(req)
	if err != nil {
		return 0, 0, err
	}
	return h1, mix(h1), nil
}

// choose returns one of a and b with probability inverse to their reported
// loads.
func (p *PowerOfTwo) choose(a, b string) string {
	if a == b {
		return a
	}
	x, okx := p.load(a)
	y, oky := p.load(b)
	if okx && oky && x+y > 0 {
		if p.rand.Float64()*float64(x+y) < float64(y) {
			return a
		}
		return b
	}
	if p.rand.Int63n(2) == 0 {
		return a
	}
	return b
}

func (p *PowerOfTwo) load(host string) (int64, bool) {
	n, ok := p.loads.ReportedLoad(host)
	if !ok || n < 0 {
		return 0, false
	}
	return int64(n), true
}

func mix(h int32) int32 {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(h))
	return int32(xxhash.Sum64(buf[:]))
}
