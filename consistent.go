package loadring

import (
	"slices"
	"sort"
)

// ConsistentHashRing is a point based consistent hashing ring.
//
// Host with weight w is placed on the ring as w points. Hash value is mapped
// to the first point with greater or equal hash, wrapping around to the
// first point of the ring.
//
// ConsistentHashRing is immutable and is safe for concurrent use.
type ConsistentHashRing struct {
	// hashes and hosts are parallel slices holding points sorted by hash.
	hashes []int32
	hosts  []string

	// members holds distinct hosts in sorted order.
	members []string
}

var _ Ring = (*ConsistentHashRing)(nil)

// NewConsistentHashRing builds a point based ring from points map.
// Nil or empty map produces an empty ring. It returns error if some weight
// is negative.
func NewConsistentHashRing(points PointsMap) (*ConsistentHashRing, error) {
	members, total, err := points.members()
	if err != nil {
		return nil, err
	}
	ps := make([]point, 0, total)
	for _, host := range members {
		pointHashes(host, points[host], func(h int32) {
			ps = append(ps, point{
				hash: h,
				host: host,
			})
		})
	}
	sort.Slice(ps, func(i, j int) bool {
		return ps[i].less(ps[j])
	})

	r := &ConsistentHashRing{
		hashes:  make([]int32, len(ps)),
		hosts:   make([]string, len(ps)),
		members: members,
	}
	for i, p := range ps {
		r.hashes[i] = p.hash
		r.hosts[i] = p.host
	}
	return r, nil
}

// Get implements Ring.
func (r *ConsistentHashRing) Get(hash int32) (string, bool) {
	if len(r.hashes) == 0 {
		return "", false
	}
	return r.hosts[r.index(hash)], true
}

// Iterator implements Ring.
//
// Returned iterator walks every point of the ring exactly once, starting
// from the point Get would use. That is, host with weight w is returned w
// times.
func (r *ConsistentHashRing) Iterator(hash int32) Iterator {
	if len(r.hashes) == 0 {
		return emptyIterator{}
	}
	return &pointIterator{
		hosts: r.hosts,
		start: r.index(hash),
	}
}

// IsStickyRoutingCapable implements Ring. It always returns true.
func (r *ConsistentHashRing) IsStickyRoutingCapable() bool {
	return true
}

// IsEmpty implements Ring.
func (r *ConsistentHashRing) IsEmpty() bool {
	return len(r.hashes) == 0
}

// Hosts returns distinct hosts placed on the ring in sorted order.
func (r *ConsistentHashRing) Hosts() []string {
	return append([]string(nil), r.members...)
}

// Size returns number of points on the ring.
func (r *ConsistentHashRing) Size() int {
	return len(r.hashes)
}

// index returns index of the first point with hash greater or equal to the
// given one. It wraps around to zero when hash is greater than any point.
func (r *ConsistentHashRing) index(hash int32) int {
	i, _ := slices.BinarySearch(r.hashes, hash)
	if i == len(r.hashes) {
		return 0
	}
	return i
}

type pointIterator struct {
	hosts []string
	start int
	n     int
}

func (it *pointIterator) Next() (string, bool) {
	if it.n == len(it.hosts) {
		return "", false
	}
	i := (it.start + it.n) % len(it.hosts)
	it.n++
	return it.hosts[i], true
}
