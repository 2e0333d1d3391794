package loadring

import (
	"github.com/gobwas/avl"

	"github.com/gobwas/loadring/logging"
	"github.com/gobwas/loadring/xrand"
)

// defaultDrawsPerHost is multiplied by the number of hosts to get default
// limit of draws per DistributionRing iterator element.
const defaultDrawsPerHost = 64

// DistributionRing is a ring without points. It selects hosts randomly with
// probability proportional to their weights, ignoring the hash value.
//
// DistributionRing is not capable of sticky routing: same hash is mapped to
// different hosts across calls.
type DistributionRing struct {
	// cdf is a tree of interval upper bounds of cumulative weight
	// distribution.
	cdf   avl.Tree // tree<interval>
	hosts []string
	total int64

	rand     *xrand.Rand
	logger   logging.Logger
	maxDraws int
}

var _ Ring = (*DistributionRing)(nil)

// NewDistributionRing builds a ring from weights distribution of points map.
// Random source is configured by WithRand or WithSeed options.
func NewDistributionRing(points PointsMap, opts ...Option) (*DistributionRing, error) {
	o := newOptions(opts)
	hosts, _, err := points.members()
	if err != nil {
		return nil, err
	}
	r := &DistributionRing{
		hosts:    hosts,
		rand:     o.rand,
		logger:   o.logger,
		maxDraws: o.maxDraws,
	}
	if r.maxDraws <= 0 {
		r.maxDraws = defaultDrawsPerHost * len(hosts)
	}
	for _, host := range hosts {
		r.total += int64(points[host])
		r.cdf, _ = r.cdf.Insert(interval{
			upper: r.total,
			host:  host,
		})
	}
	return r, nil
}

// Get implements Ring.
// Non-zero hash means that caller expects sticky routing, which
// DistributionRing can not provide; such calls are logged and served with
// random host anyway.
func (r *DistributionRing) Get(hash int32) (string, bool) {
	if r.total == 0 {
		return "", false
	}
	if hash != 0 {
		r.logger.Warn(
			"distribution ring is not sticky routing capable; ignoring hash",
			"hash", hash,
		)
	}
	return r.draw(), true
}

// Iterator implements Ring.
//
// Iterator draws hosts randomly, skipping already visited ones, until every
// host is visited once. Each element is drawn at most maxDraws times (see
// WithMaxIteratorDraws); after that the first not visited host in sorted
// order is returned.
func (r *DistributionRing) Iterator(int32) Iterator {
	if r.total == 0 {
		return emptyIterator{}
	}
	return &distributionIterator{
		ring:    r,
		visited: make(map[string]bool, len(r.hosts)),
	}
}

// IsStickyRoutingCapable implements Ring. It always returns false.
func (r *DistributionRing) IsStickyRoutingCapable() bool {
	return false
}

// IsEmpty implements Ring.
func (r *DistributionRing) IsEmpty() bool {
	return r.total == 0
}

// draw returns host whose cumulative weight interval contains a uniformly
// drawn value.
// r.total must be positive.
func (r *DistributionRing) draw() string {
	x := r.rand.Int63n(r.total)
	return r.cdf.Successor(search(x)).(interval).host
}

// interval is an upper (exclusive) bound of host's cumulative weight
// interval.
type interval struct {
	upper int64
	host  string
}

func (i interval) Compare(x avl.Item) int {
	return compare(i.upper, x.(interval).upper)
}

// search is a value searched in the tree of intervals. It never equals any
// interval, so its successor is the interval containing the value.
type search int64

func (s search) Compare(x avl.Item) int {
	if int64(s) < x.(interval).upper {
		return -1
	}
	return 1
}

type distributionIterator struct {
	ring    *DistributionRing
	visited map[string]bool
}

func (it *distributionIterator) Next() (string, bool) {
	r := it.ring
	if len(it.visited) == len(r.hosts) {
		return "", false
	}
	for i := 0; i < r.maxDraws; i++ {
		host := r.draw()
		if !it.visited[host] {
			it.visited[host] = true
			return host, true
		}
	}
	for _, host := range r.hosts {
		if !it.visited[host] {
			it.visited[host] = true
			return host, true
		}
	}
	return "", false
}
