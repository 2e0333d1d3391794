package hashfunc

import (
	"github.com/cespare/xxhash/v2"
)

// XXHash hashes string tokens with 64-bit xxHash.
// Tokens are concatenated without any separator.
type XXHash struct{}

var _ Function[[]string] = XXHash{}

// Hash implements Function. It returns low 32 bits of the 64-bit hash.
func (x XXHash) Hash(tokens []string) (int32, error) {
	return int32(x.Sum64(tokens...)), nil
}

// HashLong implements Function.
func (x XXHash) HashLong(tokens []string) (int64, error) {
	return int64(x.Sum64(tokens...)), nil
}

// Sum64 returns xxHash of concatenated tokens.
func (XXHash) Sum64(tokens ...string) uint64 {
	if len(tokens) == 1 {
		return xxhash.Sum64String(tokens[0])
	}
	d := xxhash.New()
	for _, t := range tokens {
		d.WriteString(t)
	}
	return d.Sum64()
}
