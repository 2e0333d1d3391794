// Package mapper implements scatter-gather mapping of request keys onto
// partitions and hosts.
package mapper

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/gobwas/loadring"
	"github.com/gobwas/loadring/hashfunc"
	"github.com/gobwas/loadring/logging"
	"github.com/gobwas/loadring/metrics"
)

// URIMapper maps batches of requests to hosts.
//
// Mapping is done in two passes. First, each request is assigned to a
// partition. Requests of unpartitioned services are assigned to the
// DefaultPartitionID. Second, requests of each partition are mapped to hosts
// of partition's ring. If service hash function is random, all requests of
// a partition are sent to a single randomly selected host. Otherwise each
// request is routed by its own hash.
//
// Requests which could not be mapped are collected in the result instead of
// failing the whole batch.
type URIMapper[K comparable] struct {
	rings      HashRingProvider
	partitions PartitionInfoProvider
	logger     logging.Logger
	metrics    metrics.Collector
}

// NewURIMapper creates mapper using given providers.
func NewURIMapper[K comparable](
	rings HashRingProvider,
	partitions PartitionInfoProvider,
	opts ...Option,
) *URIMapper[K] {
	o := newOptions(opts)
	return &URIMapper[K]{
		rings:      rings,
		partitions: partitions,
		logger:     o.logger,
		metrics:    o.metrics,
	}
}

// MapURIs maps requests to hosts. All requests must address the same
// service; service name is taken from the first request uri.
//
// It returns error if routing information of the service is not available,
// if more than one request has overridden partitions, or if an override has
// no partitions.
func (m *URIMapper[K]) MapURIs(pairs []URIKeyPair[K]) (*Result[K], error) {
	if len(pairs) == 0 {
		return newResult[K](), nil
	}
	for _, p := range pairs {
		if p.isOverride() && len(p.PartitionIDs) == 0 {
			return nil, ErrEmptyOverride
		}
	}
	sample := pairs[0].URI
	service, err := ServiceName(sample)
	if err != nil {
		return nil, err
	}
	accessor, err := m.partitions.PartitionAccessor(service)
	if err != nil {
		return nil, unavailable(service, "no partition accessor", err)
	}
	rings, err := m.rings.Rings(sample)
	if err != nil {
		return nil, unavailable(service, "no rings", err)
	}
	hash, err := m.rings.RequestHashFunction(service)
	if err != nil {
		return nil, unavailable(service, "no request hash function", err)
	}

	res := newResult[K]()
	byPartition, err := m.distributeToPartitions(pairs, accessor, res)
	if err != nil {
		return nil, err
	}
	if hashfunc.IsRandom(hash) {
		m.distributeToHostsNonSticky(byPartition, rings, hash, res)
	} else {
		m.distributeToHosts(byPartition, rings, hash, res)
	}
	for id, keys := range res.Unmapped {
		failed := len(res.hashFailures[id])
		if failed > 0 {
			m.metrics.RecordUnmappedKeys(string(ReasonHashFailed), failed)
		}
		if n := len(keys) - failed; n > 0 {
			m.metrics.RecordUnmappedKeys(string(reasonOf(id)), n)
		}
	}
	return res, nil
}

// NeedScatterGather reports whether requests to the service need to be
// mapped with MapURIs. That is, when service is partitioned or uses sticky
// routing.
func (m *URIMapper[K]) NeedScatterGather(service string) (bool, error) {
	accessor, err := m.partitions.PartitionAccessor(service)
	if err != nil {
		return false, unavailable(service, "no partition accessor", err)
	}
	if accessor.MaxPartitionID() > 0 {
		return true, nil
	}
	hash, err := m.rings.RequestHashFunction(service)
	if err != nil {
		return false, unavailable(service, "no request hash function", err)
	}
	_, sticky := hash.(*hashfunc.URIRegex)
	return sticky, nil
}

func (m *URIMapper[K]) distributeToPartitions(
	pairs []URIKeyPair[K],
	accessor PartitionAccessor,
	res *Result[K],
) (map[int][]URIKeyPair[K], error) {
	if accessor.MaxPartitionID() == 0 {
		return map[int][]URIKeyPair[K]{
			DefaultPartitionID: pairs,
		}, nil
	}
	if override, ok, err := partitionsOverride(pairs); err != nil {
		return nil, err
	} else if ok {
		m.logger.Debug(
			"using overridden partition ids",
			"partitions", override.PartitionIDs,
		)
		ret := make(map[int][]URIKeyPair[K], len(override.PartitionIDs))
		for _, id := range override.PartitionIDs {
			ret[id] = []URIKeyPair[K]{override}
		}
		return ret, nil
	}

	ret := make(map[int][]URIKeyPair[K])
	for _, p := range pairs {
		id, err := accessor.PartitionID(p.URI)
		if err != nil {
			m.logger.Debug(
				"can not find partition of request",
				"uri", p.URI,
				"error", err,
			)
			res.addUnmapped(UnmappedPartitionID, p.Key)
			continue
		}
		ret[id] = append(ret[id], p)
	}
	return ret, nil
}

func (m *URIMapper[K]) distributeToHosts(
	byPartition map[int][]URIKeyPair[K],
	rings map[int]loadring.Ring,
	hash hashfunc.Function[*url.URL],
	res *Result[K],
) {
	for _, id := range partitionIDs(byPartition) {
		pairs := byPartition[id]
		ring := rings[id]
		if ring == nil || ring.IsEmpty() {
			m.noHost(id, pairs, res)
			continue
		}
		for _, p := range pairs {
			h, err := hash.Hash(p.URI)
			if err != nil {
				m.logger.Warn(
					"can not hash request",
					"uri", p.URI,
					"partition", id,
					"error", err,
				)
				res.addHashFailure(id, keysOf([]URIKeyPair[K]{p})...)
				continue
			}
			host, ok := ring.Get(h)
			if !ok {
				m.noHost(id, []URIKeyPair[K]{p}, res)
				continue
			}
			res.addMapped(host, id, keysOf([]URIKeyPair[K]{p})...)
		}
	}
}

// distributeToHostsNonSticky maps all requests of a partition to a single
// host. If the same host is selected for multiple partitions, their keys are
// merged.
func (m *URIMapper[K]) distributeToHostsNonSticky(
	byPartition map[int][]URIKeyPair[K],
	rings map[int]loadring.Ring,
	hash hashfunc.Function[*url.URL],
	res *Result[K],
) {
	for _, id := range partitionIDs(byPartition) {
		pairs := byPartition[id]
		ring := rings[id]
		if ring == nil || ring.IsEmpty() {
			m.noHost(id, pairs, res)
			continue
		}
		h, err := hash.Hash(pairs[0].URI)
		if err != nil {
			// Random hash never fails. Fail safe anyway.
			res.addHashFailure(id, keysOf(pairs)...)
			continue
		}
		host, ok := ring.Get(h)
		if !ok {
			m.noHost(id, pairs, res)
			continue
		}
		res.addMapped(host, id, keysOf(pairs)...)
	}
}

func (m *URIMapper[K]) noHost(id int, pairs []URIKeyPair[K], res *Result[K]) {
	m.logger.Debug(
		"no host available in partition",
		"partition", id,
		"requests", len(pairs),
	)
	res.addUnmapped(id, keysOf(pairs)...)
}

// partitionsOverride returns request with overridden partitions, if any.
func partitionsOverride[K comparable](pairs []URIKeyPair[K]) (_ URIKeyPair[K], ok bool, err error) {
	for _, p := range pairs {
		if !p.isOverride() {
			continue
		}
		if len(pairs) > 1 {
			return p, false, ErrMultipleOverrides
		}
		return p, true, nil
	}
	return URIKeyPair[K]{}, false, nil
}

func partitionIDs[K comparable](byPartition map[int][]URIKeyPair[K]) []int {
	ids := make([]int, 0, len(byPartition))
	for id := range byPartition {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ServiceName returns name of the service addressed by uri. That is, the
// uri authority.
func ServiceName(u *url.URL) (string, error) {
	if u == nil || u.Host == "" {
		return "", fmt.Errorf("%w: %v", ErrNoServiceName, u)
	}
	return u.Host, nil
}
