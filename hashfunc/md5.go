package hashfunc

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"hash"
	"io"
	"sync"
)

// MD5 hashes string tokens with MD5 digest.
//
// Tokens are separated by zero byte which can not occur in UTF-8 text, so
// different token lists never produce the same digest input. Hash value is
// taken from the first four bytes of the digest in big-endian order, which
// makes it stable across platforms.
//
// The zero value for MD5 is ready to use. MD5 is goroutine safe.
type MD5 struct {
	// pool is a pool of reusable digests. Each digest is used by a single
	// call only.
	pool sync.Pool
}

var _ Function[[]string] = (*MD5)(nil)

// Hash implements Function.
func (h *MD5) Hash(tokens []string) (int32, error) {
	return h.Sum32(tokens...), nil
}

// HashLong implements Function.
// It always returns ErrUnsupported.
func (h *MD5) HashLong([]string) (int64, error) {
	return 0, fmt.Errorf("md5: 64-bit hash: %w", ErrUnsupported)
}

// Sum32 returns hash of given tokens.
func (h *MD5) Sum32(tokens ...string) int32 {
	var sum [md5.Size]byte
	h.digest(sum[:0], tokens)
	return int32(binary.BigEndian.Uint32(sum[:4]))
}

func (h *MD5) digest(dst []byte, tokens []string) []byte {
	d, _ := h.pool.Get().(hash.Hash)
	if d == nil {
		d = md5.New()
	}
	defer func() {
		d.Reset()
		h.pool.Put(d)
	}()
	for i, t := range tokens {
		if i > 0 {
			d.Write([]byte{0})
		}
		io.WriteString(d, t)
	}
	return d.Sum(dst)
}
