package mapper

import (
	"net/url"
	"sort"
)

// UnmappedPartitionID is a partition id of keys whose partition could not be
// resolved.
const UnmappedPartitionID = -1

// Reason describes why key was not mapped to a host.
type Reason string

const (
	ReasonPartitionNotFound Reason = "partitionNotFound"
	ReasonNoHostInPartition Reason = "noHostInPartition"
	ReasonHashFailed        Reason = "hashFailed"
)

// URIKeyPair is a request uri and a key of resource it addresses.
type URIKeyPair[K comparable] struct {
	Key K
	URI *url.URL

	// PartitionIDs overrides partitioning of the request. When set, request
	// is sent to each of the given partitions and its Key is ignored. Only
	// one such request is allowed in a batch.
	PartitionIDs []int

	override bool
}

// NewURIKeyPair returns pair of the key and request uri.
func NewURIKeyPair[K comparable](key K, u *url.URL) URIKeyPair[K] {
	return URIKeyPair[K]{
		Key: key,
		URI: u,
	}
}

// NewPartitionsOverride returns request which is sent to all given
// partitions. Override with no partitions is rejected by MapURIs with
// ErrEmptyOverride.
func NewPartitionsOverride[K comparable](u *url.URL, partitionIDs ...int) URIKeyPair[K] {
	return URIKeyPair[K]{
		URI:          u,
		PartitionIDs: partitionIDs,
		override:     true,
	}
}

func (p URIKeyPair[K]) isOverride() bool {
	return p.override || p.PartitionIDs != nil
}

// Result is a result of keys mapping.
type Result[K comparable] struct {
	// Mapped maps host to the set of keys it should serve. Requests with
	// overridden partitions produce empty sets.
	Mapped map[string]map[K]struct{}

	// Unmapped maps partition id to the set of keys which could not be
	// mapped. Keys with unresolved partition are stored under
	// UnmappedPartitionID. Keys which could not be hashed are stored under
	// their partition id; UnmappedKeys reports them with ReasonHashFailed.
	Unmapped map[int]map[K]struct{}

	// HostPartitions maps host to the partition it was selected for. If host
	// serves multiple partitions, one of them is stored.
	HostPartitions map[string]int

	// hashFailures holds keys of Unmapped which could not be hashed.
	hashFailures map[int]map[K]struct{}
}

// UnmappedKey is a key which was not mapped to a host.
type UnmappedKey[K comparable] struct {
	Key         K
	PartitionID int
	Reason      Reason
}

func newResult[K comparable]() *Result[K] {
	return &Result[K]{
		Mapped:         make(map[string]map[K]struct{}),
		Unmapped:       make(map[int]map[K]struct{}),
		HostPartitions: make(map[string]int),
		hashFailures:   make(map[int]map[K]struct{}),
	}
}

// Hosts returns sorted list of mapped hosts.
func (r *Result[K]) Hosts() []string {
	hosts := make([]string, 0, len(r.Mapped))
	for host := range r.Mapped {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	return hosts
}

// UnmappedKeys returns unmapped keys ordered by partition id.
func (r *Result[K]) UnmappedKeys() []UnmappedKey[K] {
	ids := make([]int, 0, len(r.Unmapped))
	for id := range r.Unmapped {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var ret []UnmappedKey[K]
	for _, id := range ids {
		for key := range r.Unmapped[id] {
			reason := reasonOf(id)
			if _, failed := r.hashFailures[id][key]; failed {
				reason = ReasonHashFailed
			}
			ret = append(ret, UnmappedKey[K]{
				Key:         key,
				PartitionID: id,
				Reason:      reason,
			})
		}
	}
	return ret
}

func (r *Result[K]) addMapped(host string, partitionID int, keys ...K) {
	if _, has := r.HostPartitions[host]; !has {
		r.HostPartitions[host] = partitionID
	}
	set := r.Mapped[host]
	if set == nil {
		set = make(map[K]struct{}, len(keys))
		r.Mapped[host] = set
	}
	for _, key := range keys {
		set[key] = struct{}{}
	}
}

func (r *Result[K]) addUnmapped(partitionID int, keys ...K) {
	set := r.Unmapped[partitionID]
	if set == nil {
		set = make(map[K]struct{}, len(keys))
		r.Unmapped[partitionID] = set
	}
	for _, key := range keys {
		set[key] = struct{}{}
	}
}

func (r *Result[K]) addHashFailure(partitionID int, keys ...K) {
	r.addUnmapped(partitionID, keys...)
	set := r.hashFailures[partitionID]
	if set == nil {
		set = make(map[K]struct{}, len(keys))
		r.hashFailures[partitionID] = set
	}
	for _, key := range keys {
		set[key] = struct{}{}
	}
}

func reasonOf(partitionID int) Reason {
	if partitionID == UnmappedPartitionID {
		return ReasonPartitionNotFound
	}
	return ReasonNoHostInPartition
}

// keysOf returns keys of requests. Requests with overridden partitions have
// no keys.
func keysOf[K comparable](pairs []URIKeyPair[K]) []K {
	keys := make([]K, 0, len(pairs))
	for _, p := range pairs {
		if p.isOverride() {
			return nil
		}
		keys = append(keys, p.Key)
	}
	return keys
}
