package mapper

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/gobwas/loadring/hashfunc"
)

// DefaultPartitionID is the partition id of unpartitioned services.
const DefaultPartitionID = 0

// DefaultPartitionAccessor maps every request to the DefaultPartitionID.
type DefaultPartitionAccessor struct{}

// PartitionID implements PartitionAccessor.
func (DefaultPartitionAccessor) PartitionID(*url.URL) (int, error) {
	return DefaultPartitionID, nil
}

// MaxPartitionID implements PartitionAccessor.
func (DefaultPartitionAccessor) MaxPartitionID() int {
	return DefaultPartitionID
}

// keyExtractor extracts partition key from request uri with regex.
type keyExtractor struct {
	re *regexp.Regexp
}

func newKeyExtractor(keyRegex string) (keyExtractor, error) {
	re, err := regexp.Compile(keyRegex)
	if err != nil {
		return keyExtractor{}, fmt.Errorf("mapper: invalid partition key regex: %w", err)
	}
	if re.NumSubexp() == 0 {
		return keyExtractor{}, fmt.Errorf("mapper: partition key regex %q has no capture group", keyRegex)
	}
	return keyExtractor{re}, nil
}

func (x keyExtractor) key(u *url.URL) (string, error) {
	if u == nil {
		return "", fmt.Errorf("%w: nil uri", ErrPartitionAccess)
	}
	m := x.re.FindStringSubmatch(u.String())
	if m == nil {
		return "", fmt.Errorf("%w: uri %q does not match %q", ErrPartitionAccess, u, x.re)
	}
	return m[1], nil
}

// RangePartitionAccessor maps numeric partition keys onto partitions of
// equal key ranges.
type RangePartitionAccessor struct {
	keys  keyExtractor
	start int64
	size  int64
	count int
}

// NewRangePartitionAccessor creates accessor. Key is the first capture group
// of keyRegex matched against request uri. Key k belongs to partition
// (k-start)/size, which must be less than count.
func NewRangePartitionAccessor(keyRegex string, start, size int64, count int) (*RangePartitionAccessor, error) {
	if size <= 0 || count <= 0 {
		return nil, fmt.Errorf("mapper: invalid range partitioning: size=%d count=%d", size, count)
	}
	keys, err := newKeyExtractor(keyRegex)
	if err != nil {
		return nil, err
	}
	return &RangePartitionAccessor{
		keys:  keys,
		start: start,
		size:  size,
		count: count,
	}, nil
}

// PartitionID implements PartitionAccessor.
func (a *RangePartitionAccessor) PartitionID(u *url.URL) (int, error) {
	s, err := a.keys.key(u)
	if err != nil {
		return 0, err
	}
	k, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed key %q: %v", ErrPartitionAccess, s, err)
	}
	if k < a.start {
		return 0, fmt.Errorf("%w: key %d is out of range", ErrPartitionAccess, k)
	}
	id := (k - a.start) / a.size
	if id >= int64(a.count) {
		return 0, fmt.Errorf("%w: key %d is out of range", ErrPartitionAccess, k)
	}
	return int(id), nil
}

// MaxPartitionID implements PartitionAccessor.
func (a *RangePartitionAccessor) MaxPartitionID() int {
	return a.count - 1
}

// HashPartitionAccessor maps partition keys onto partitions by their MD5
// hash.
type HashPartitionAccessor struct {
	keys  keyExtractor
	count int
	md5   *hashfunc.MD5
}

// NewHashPartitionAccessor creates accessor. Key is the first capture group
// of keyRegex matched against request uri.
func NewHashPartitionAccessor(keyRegex string, count int) (*HashPartitionAccessor, error) {
	if count <= 0 {
		return nil, fmt.Errorf("mapper: invalid hash partitioning: count=%d", count)
	}
	keys, err := newKeyExtractor(keyRegex)
	if err != nil {
		return nil, err
	}
	return &HashPartitionAccessor{
		keys:  keys,
		count: count,
		md5:   new(hashfunc.MD5),
	}, nil
}

// PartitionID implements PartitionAccessor.
func (a *HashPartitionAccessor) PartitionID(u *url.URL) (int, error) {
	s, err := a.keys.key(u)
	if err != nil {
		return 0, err
	}
	h := int64(a.md5.Sum32(s))
	if h < 0 {
		h = -h
	}
	return int(h % int64(a.count)), nil
}

// MaxPartitionID implements PartitionAccessor.
func (a *HashPartitionAccessor) MaxPartitionID() int {
	return a.count - 1
}
