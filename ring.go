package loadring

import (
	"fmt"
	"math"
	"sort"
)

// maxTotalWeight is the maximum sum of weights of a ring.
const maxTotalWeight = math.MaxInt64 / 2

// Ring maps integer hash values onto hosts of a weighted host set.
// Implementations must be safe for concurrent use.
type Ring interface {
	// Get returns host for given hash value.
	// It returns false only when there are no hosts on the ring.
	Get(hash int32) (host string, ok bool)

	// Iterator returns iterator over ring members starting from the host
	// which Get would return for the same hash. Iterator is finite and can
	// not be restarted.
	Iterator(hash int32) Iterator

	// IsStickyRoutingCapable reports whether same hash is always mapped to
	// the same host.
	IsStickyRoutingCapable() bool

	// IsEmpty reports whether there are no hosts on the ring.
	IsEmpty() bool
}

// Iterator iterates over hosts of a ring.
type Iterator interface {
	// Next returns next host. It returns false when iteration is over.
	Next() (host string, ok bool)
}

// PointsMap maps host to its weight (number of points).
// Host with zero weight is not placed on a ring.
type PointsMap map[string]int

// members returns hosts with positive weight in sorted order and a sum of
// their weights. The sum must not exceed maxTotalWeight.
func (m PointsMap) members() (hosts []string, total int64, err error) {
	hosts = make([]string, 0, len(m))
	for host, w := range m {
		if w < 0 {
			return nil, 0, fmt.Errorf("%w: host %q has weight %d", ErrInvalidWeight, host, w)
		}
		if w == 0 {
			continue
		}
		if int64(w) > maxTotalWeight-total {
			return nil, 0, fmt.Errorf(
				"%w: total weight exceeds %d at host %q",
				ErrInvalidWeight, int64(maxTotalWeight), host,
			)
		}
		hosts = append(hosts, host)
		total += int64(w)
	}
	sort.Strings(hosts)
	return hosts, total, nil
}

// Collect drains iterator and returns all hosts it produced.
func Collect(it Iterator) []string {
	var hosts []string
	for {
		host, ok := it.Next()
		if !ok {
			return hosts
		}
		hosts = append(hosts, host)
	}
}

type sliceIterator struct {
	hosts []string
	pos   int
}

func (it *sliceIterator) Next() (string, bool) {
	if it.pos == len(it.hosts) {
		return "", false
	}
	host := it.hosts[it.pos]
	it.pos++
	return host, true
}

type emptyIterator struct{}

func (emptyIterator) Next() (string, bool) {
	return "", false
}
