package loadring

import (
	"crypto/md5"
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// pointsPerDigest is a number of 32-bit point values taken from one MD5
// digest.
const pointsPerDigest = md5.Size / 4

// pointHashes calls fn with n point hash values of the host.
//
// Digest input is reseeded with the previous digest every pointsPerDigest
// points, so host with weight w costs w/4 digest operations. Values are
// read in big-endian order to be platform independent.
func pointHashes(host string, n int, fn func(int32)) {
	var (
		input = []byte(host)
		sum   [md5.Size]byte
	)
	for i := 0; i < n; i++ {
		j := i % pointsPerDigest
		if j == 0 {
			sum = md5.Sum(input)
			input = sum[:]
		}
		fn(int32(binary.BigEndian.Uint32(sum[j*4:])))
	}
}

// bucketHashes calls fn with n bucket hash values of the host. The first
// value is a hash of the host; every next one is a hash of the previous one.
func bucketHashes(host string, n int, fn func(uint64)) {
	var buf [8]byte
	h := xxh3.HashString(host)
	for i := 0; i < n; i++ {
		fn(h)
		binary.LittleEndian.PutUint64(buf[:], h)
		h = xxh3.Hash(buf[:])
	}
}

// probeHash returns hash of the key for i-th probe.
func probeHash(key int32, i int) uint64 {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(key))
	return xxh3.HashSeed(buf[:], uint64(i))
}
