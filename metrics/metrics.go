// Package metrics contains collectors of operational metrics produced by
// rings and mappers.
package metrics

// Collector defines methods for recording routing metrics.
//
// Implementations must be goroutine safe and must not block: methods are
// called on the request path.
type Collector interface {
	// RecordBoundedLoadRedirect records a request redirected away from its
	// nominal host because the host was at capacity.
	RecordBoundedLoadRedirect()

	// RecordBoundedLoadOverflow records a request routed to its nominal host
	// even though every host was at capacity.
	RecordBoundedLoadOverflow()

	// RecordSnapshotRefresh records an attempt to refresh the load snapshot.
	// Skipped is true when another refresh was in progress.
	RecordSnapshotRefresh(skipped bool)

	// RecordUnmappedKeys records n keys which could not be mapped to a host.
	RecordUnmappedKeys(reason string, n int)

	// RecordPowerOfTwoFallback records a power of two selection which had to
	// fall back to ring iteration.
	RecordPowerOfTwoFallback()
}

// Nop discards all metrics.
type Nop struct{}

var _ Collector = Nop{}

// NewNop returns collector which discards all metrics.
func NewNop() Nop {
	return Nop{}
}

func (Nop) RecordBoundedLoadRedirect()     {}
func (Nop) RecordBoundedLoadOverflow()     {}
func (Nop) RecordSnapshotRefresh(bool)     {}
func (Nop) RecordUnmappedKeys(string, int) {}
func (Nop) RecordPowerOfTwoFallback()      {}
