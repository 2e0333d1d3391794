package mapper

import (
	"net/url"

	"github.com/gobwas/loadring"
	"github.com/gobwas/loadring/hashfunc"
)

// HashRingProvider provides rings and request hash function of services.
type HashRingProvider interface {
	// Rings returns partition id to ring mapping for the service of given
	// request uri.
	Rings(u *url.URL) (map[int]loadring.Ring, error)

	// RequestHashFunction returns hash function used to route requests of
	// the service.
	RequestHashFunction(service string) (hashfunc.Function[*url.URL], error)
}

// PartitionInfoProvider provides partitioning information of services.
type PartitionInfoProvider interface {
	PartitionAccessor(service string) (PartitionAccessor, error)
}

// PartitionAccessor resolves partition of a request.
type PartitionAccessor interface {
	// PartitionID returns partition id of request with given uri.
	// It returns error wrapping ErrPartitionAccess if partition can not be
	// resolved.
	PartitionID(u *url.URL) (int, error)

	// MaxPartitionID returns maximum partition id. Zero means that service
	// is not partitioned.
	MaxPartitionID() int
}

// StaticHashRingProvider serves fixed rings, hash function and partition
// accessor for any service.
type StaticHashRingProvider struct {
	rings    map[int]loadring.Ring
	hash     hashfunc.Function[*url.URL]
	accessor PartitionAccessor
}

var (
	_ HashRingProvider      = (*StaticHashRingProvider)(nil)
	_ PartitionInfoProvider = (*StaticHashRingProvider)(nil)
)

// NewStaticHashRingProvider creates provider with given rings indexed by
// partition id. Nil accessor means unpartitioned service.
func NewStaticHashRingProvider(
	rings map[int]loadring.Ring,
	hash hashfunc.Function[*url.URL],
	accessor PartitionAccessor,
) *StaticHashRingProvider {
	if accessor == nil {
		accessor = DefaultPartitionAccessor{}
	}
	return &StaticHashRingProvider{
		rings:    rings,
		hash:     hash,
		accessor: accessor,
	}
}

// Rings implements HashRingProvider.
func (p *StaticHashRingProvider) Rings(*url.URL) (map[int]loadring.Ring, error) {
	return p.rings, nil
}

// RequestHashFunction implements HashRingProvider.
func (p *StaticHashRingProvider) RequestHashFunction(string) (hashfunc.Function[*url.URL], error) {
	return p.hash, nil
}

// PartitionAccessor implements PartitionInfoProvider.
func (p *StaticHashRingProvider) PartitionAccessor(string) (PartitionAccessor, error) {
	return p.accessor, nil
}
