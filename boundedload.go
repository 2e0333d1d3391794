package loadring

import (
	"fmt"
	"math"
	"math/bits"
	"sync"
	"sync/atomic"

	"github.com/gobwas/loadring/logging"
	"github.com/gobwas/loadring/xrand"
)

// ConcurrencyTracker reports number of in-flight requests per host.
type ConcurrencyTracker interface {
	Concurrency(host string) int
}

// BoundedLoadRing is a ring decorator which bounds load of every host.
//
// Capacity of the whole host set is ceil((L + 1) * balanceFactor), where L is
// the total number of in-flight requests and the one is the request being
// routed. Every host gets a share of capacity proportional to its weight.
// Request is routed to the host selected by the inner ring unless that host
// is at capacity; then it is routed to the first host under capacity in a
// pseudo-random order seeded by the hash value.
//
// Loads are read through the load snapshot, which is refreshed on every call
// unless another refresh is in progress. In that case the call proceeds with
// the current (possibly stale) snapshot and never blocks.
type BoundedLoadRing struct {
	ring          Ring
	loads         ConcurrencyTracker
	balanceFactor float64

	// hosts holds hosts with positive weight in sorted order.
	hosts []string
	// weights holds weight of every host.
	weights map[string]uint64
	// cumulative holds sum of weights of every host and all hosts preceding
	// it in r.hosts.
	cumulative  map[string]uint64
	totalWeight uint64

	// mu is held while snapshot is being refreshed.
	mu       sync.Mutex
	snapshot atomic.Pointer[loadSnapshot]

	logger logging.Logger
	trace  traceBoundedLoad
}

// loadSnapshot is an immutable view of hosts loads.
type loadSnapshot struct {
	loads         map[string]int
	totalCapacity int64
}

var _ Ring = (*BoundedLoadRing)(nil)

// NewBoundedLoadRing builds inner ring for points using factory and wraps it
// with bounded load logic. Loads of hosts are read from given tracker.
//
// It returns error if factory or tracker is nil, or balanceFactor is not
// greater than one.
func NewBoundedLoadRing(
	factory RingFactory,
	points PointsMap,
	loads ConcurrencyTracker,
	balanceFactor float64,
	opts ...Option,
) (*BoundedLoadRing, error) {
	if factory == nil {
		return nil, ErrNilRingFactory
	}
	if loads == nil {
		return nil, ErrNilTracker
	}
	if !(balanceFactor > 1) || math.IsInf(balanceFactor, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBalanceFactor, balanceFactor)
	}
	hosts, _, err := points.members()
	if err != nil {
		return nil, err
	}
	inner, err := factory.NewRing(points)
	if err != nil {
		return nil, err
	}
	o := newOptions(opts)
	r := &BoundedLoadRing{
		ring:          inner,
		loads:         loads,
		balanceFactor: balanceFactor,
		hosts:         hosts,
		weights:       make(map[string]uint64, len(hosts)),
		cumulative:    make(map[string]uint64, len(hosts)),
		logger:        o.logger,
	}
	for _, host := range hosts {
		w := uint64(points[host])
		r.totalWeight += w
		r.weights[host] = w
		r.cumulative[host] = r.totalWeight
	}
	r.trace = traceBoundedLoad{
		OnRefresh:  o.metrics.RecordSnapshotRefresh,
		OnRedirect: func(string, string) { o.metrics.RecordBoundedLoadRedirect() },
		OnOverflow: func(string) { o.metrics.RecordBoundedLoadOverflow() },
	}
	setupBoundedLoadTrace(r)

	r.refresh()

	return r, nil
}

// Get implements Ring.
// If every host is at capacity, Get returns the host selected by the inner
// ring.
func (r *BoundedLoadRing) Get(hash int32) (string, bool) {
	if len(r.hosts) == 0 {
		return "", false
	}
	r.refresh()
	host, _, ok := r.pick(r.snapshot.Load(), hash)
	return host, ok
}

// Iterator implements Ring.
//
// The first returned host is the one Get returns for the same hash. Other
// hosts follow in pseudo-random order seeded by the hash, hosts under
// capacity first. Every host is returned exactly once.
func (r *BoundedLoadRing) Iterator(hash int32) Iterator {
	if len(r.hosts) == 0 {
		return emptyIterator{}
	}
	r.refresh()
	s := r.snapshot.Load()

	first, nominal, ok := r.pick(s, hash)
	if !ok {
		return emptyIterator{}
	}
	var (
		free = make([]string, 0, len(r.hosts))
		full []string
	)
	free = append(free, first)
	for _, host := range r.shuffle(hash, nominal) {
		switch {
		case host == first:
		case r.isFull(s, host):
			full = append(full, host)
		default:
			free = append(free, host)
		}
	}
	return &sliceIterator{
		hosts: append(free, full...),
	}
}

// pick returns host for the hash according to the snapshot s and the
// nominal host selected by the inner ring.
func (r *BoundedLoadRing) pick(s *loadSnapshot, hash int32) (host, nominal string, ok bool) {
	nominal, ok = r.ring.Get(hash)
	if !ok {
		return "", "", false
	}
	if !r.isFull(s, nominal) {
		return nominal, nominal, true
	}
	for _, host := range r.shuffle(hash, nominal)[1:] {
		if !r.isFull(s, host) {
			r.trace.onRedirect(nominal, host)
			return host, nominal, true
		}
	}
	r.trace.onOverflow(nominal)
	r.logger.Debug(
		"all hosts are at capacity; using nominal host",
		"host", nominal,
		"total_capacity", s.totalCapacity,
	)
	return nominal, nominal, true
}

// IsStickyRoutingCapable implements Ring.
// It returns the inner ring's capability.
func (r *BoundedLoadRing) IsStickyRoutingCapable() bool {
	return r.ring.IsStickyRoutingCapable()
}

// IsEmpty implements Ring.
func (r *BoundedLoadRing) IsEmpty() bool {
	return len(r.hosts) == 0
}

// Inner returns decorated ring.
func (r *BoundedLoadRing) Inner() Ring {
	return r.ring
}

// Capacity returns capacity of the host according to the current load
// snapshot. It returns zero for hosts which are not on the ring.
func (r *BoundedLoadRing) Capacity(host string) int64 {
	return r.capacity(r.snapshot.Load(), host)
}

// TotalCapacity returns capacity of all hosts according to the current load
// snapshot.
func (r *BoundedLoadRing) TotalCapacity() int64 {
	return r.snapshot.Load().totalCapacity
}

// refresh replaces the load snapshot with a new one. It does nothing if
// another refresh is in progress.
func (r *BoundedLoadRing) refresh() {
	if !r.mu.TryLock() {
		r.trace.onRefresh(true)
		return
	}
	defer r.mu.Unlock()

	var (
		sum   int64
		loads = make(map[string]int, len(r.hosts))
	)
	for _, host := range r.hosts {
		n := r.loads.Concurrency(host)
		loads[host] = n
		sum += int64(n)
	}
	s := &loadSnapshot{
		loads:         loads,
		totalCapacity: totalCapacity(sum, r.balanceFactor),
	}
	if debug {
		assertCapacities(r, s)
	}
	r.snapshot.Store(s)
	r.trace.onRefresh(false)
}

// capacity returns share of s.totalCapacity for the host.
//
// Share is computed as difference of floored shares of the host's cumulative
// weight with and without the host's own weight. Thus capacities of all hosts
// sum up to exactly the total capacity and every host's capacity differs from
// its exact proportional share by less than one.
func (r *BoundedLoadRing) capacity(s *loadSnapshot, host string) int64 {
	w, has := r.weights[host]
	if !has {
		return 0
	}
	var (
		c   = uint64(s.totalCapacity)
		cum = r.cumulative[host]
	)
	n := int64(mulDiv(c, cum, r.totalWeight) - mulDiv(c, cum-w, r.totalWeight))
	if n < 1 {
		return 1
	}
	return n
}

func (r *BoundedLoadRing) isFull(s *loadSnapshot, host string) bool {
	return int64(s.loads[host]) >= r.capacity(s, host)
}

// shuffle returns hosts in pseudo-random order seeded by the hash. The
// nominal host is always the first one.
func (r *BoundedLoadRing) shuffle(hash int32, nominal string) []string {
	hosts := make([]string, 0, len(r.hosts))
	hosts = append(hosts, nominal)
	for _, host := range r.hosts {
		if host != nominal {
			hosts = append(hosts, host)
		}
	}
	rest := hosts[1:]
	xrand.Shuffle(int64(hash), len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})
	return hosts
}

func totalCapacity(load int64, balanceFactor float64) int64 {
	c := math.Ceil(float64(load+1) * balanceFactor)
	if c >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(c)
}

// mulDiv returns floor(a * b / c) without intermediate overflow.
// It requires b <= c.
func mulDiv(a, b, c uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	q, _ := bits.Div64(hi, lo, c)
	return q
}
