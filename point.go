package loadring

// point represents a point on the point based ring.
type point struct {
	// hash is a position of the point on the ring.
	hash int32

	// host is a host owning the point.
	host string
}

// less orders points by hash value. Collided points are ordered by host to
// keep the ring independent from points map iteration order.
func (p point) less(x point) bool {
	if p.hash != x.hash {
		return p.hash < x.hash
	}
	return p.host < x.host
}

// bucket represents a host (or one of its duplicates) on the multi-probe
// ring.
type bucket struct {
	host   string
	hash   uint64
	weight uint64
}

// distance returns weighted distance between bucket and a probe value.
// Heavier buckets are "closer" to any probe.
func (b bucket) distance(v uint64) uint64 {
	var d uint64
	if b.hash > v {
		d = b.hash - v
	} else {
		d = v - b.hash
	}
	return d / b.weight
}

func compare(x0, x1 int64) int {
	if x0 < x1 {
		return -1
	}
	if x0 > x1 {
		return 1
	}
	return 0
}
