package loadring

import (
	"fmt"

	"github.com/gobwas/loadring/xrand"
)

const (
	// DefaultNumProbes is a default number of probes per lookup.
	DefaultNumProbes = 21

	// DefaultPointsPerHost is a default number of buckets per host.
	DefaultPointsPerHost = 1
)

// MPConsistentHashRing is a multi-probe consistent hashing ring.
//
// Each host is represented by pointsPerHost buckets only. Lookup hashes the
// key numProbes times with different seeds and selects the bucket with the
// minimum distance to any of the probes. Distance is divided by host weight,
// so heavier hosts are selected proportionally more often.
//
// Lookup costs O(numProbes * buckets) and uses no shared mutable state.
type MPConsistentHashRing struct {
	buckets   []bucket
	hosts     []string
	numProbes int
}

var _ Ring = (*MPConsistentHashRing)(nil)

// NewMPConsistentHashRing builds a multi-probe ring from points map.
// It returns error if numProbes or pointsPerHost are not positive, or if some
// weight is negative.
func NewMPConsistentHashRing(points PointsMap, numProbes, pointsPerHost int) (*MPConsistentHashRing, error) {
	if numProbes <= 0 {
		return nil, fmt.Errorf("%w: number of probes must be positive: %d", ErrInvalidConfig, numProbes)
	}
	if pointsPerHost <= 0 {
		return nil, fmt.Errorf("%w: points per host must be positive: %d", ErrInvalidConfig, pointsPerHost)
	}
	hosts, _, err := points.members()
	if err != nil {
		return nil, err
	}
	r := &MPConsistentHashRing{
		buckets:   make([]bucket, 0, len(hosts)*pointsPerHost),
		hosts:     hosts,
		numProbes: numProbes,
	}
	for _, host := range hosts {
		w := uint64(points[host])
		bucketHashes(host, pointsPerHost, func(h uint64) {
			r.buckets = append(r.buckets, bucket{
				host:   host,
				hash:   h,
				weight: w,
			})
		})
	}
	return r, nil
}

// Get implements Ring.
func (r *MPConsistentHashRing) Get(hash int32) (string, bool) {
	if len(r.buckets) == 0 {
		return "", false
	}
	return r.buckets[r.index(hash, nil)].host, true
}

// Iterator implements Ring.
//
// The first returned host is the one Get returns for the same hash. Other
// hosts are returned in pseudo-random order seeded by the hash. That is,
// iteration order does NOT reflect weighted rank of hosts beyond the first
// one. Use OrderedIterator if rank order matters.
func (r *MPConsistentHashRing) Iterator(hash int32) Iterator {
	first, ok := r.Get(hash)
	if !ok {
		return emptyIterator{}
	}
	rest := make([]string, 0, len(r.hosts))
	for _, host := range r.hosts {
		if host != first {
			rest = append(rest, host)
		}
	}
	xrand.Shuffle(int64(hash), len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})
	return &sliceIterator{
		hosts: append([]string{first}, rest...),
	}
}

// OrderedIterator returns iterator which returns hosts in the order of
// their rank for given hash. Each step repeats the full probe search over
// buckets of not yet visited hosts.
func (r *MPConsistentHashRing) OrderedIterator(hash int32) Iterator {
	if len(r.buckets) == 0 {
		return emptyIterator{}
	}
	return &orderedIterator{
		ring:    r,
		hash:    hash,
		visited: make(map[string]bool, len(r.hosts)),
	}
}

// IsStickyRoutingCapable implements Ring. It always returns true.
func (r *MPConsistentHashRing) IsStickyRoutingCapable() bool {
	return true
}

// IsEmpty implements Ring.
func (r *MPConsistentHashRing) IsEmpty() bool {
	return len(r.buckets) == 0
}

// Hosts returns hosts placed on the ring in sorted order.
func (r *MPConsistentHashRing) Hosts() []string {
	return append([]string(nil), r.hosts...)
}

// index returns index of the bucket closest to the probes of given hash.
// Buckets for which skip returns true are not considered. It returns -1 if
// all buckets were skipped.
func (r *MPConsistentHashRing) index(hash int32, skip func(bucket) bool) int {
	var (
		min   uint64
		index = -1
	)
	for i := 0; i < r.numProbes; i++ {
		h := probeHash(hash, i)
		for j, b := range r.buckets {
			if skip != nil && skip(b) {
				continue
			}
			if d := b.distance(h); index == -1 || d < min {
				min = d
				index = j
			}
		}
	}
	return index
}

type orderedIterator struct {
	ring    *MPConsistentHashRing
	hash    int32
	visited map[string]bool
}

func (it *orderedIterator) Next() (string, bool) {
	if len(it.visited) == len(it.ring.hosts) {
		return "", false
	}
	i := it.ring.index(it.hash, func(b bucket) bool {
		return it.visited[b.host]
	})
	if i == -1 {
		return "", false
	}
	host := it.ring.buckets[i].host
	it.visited[host] = true
	return host, true
}
