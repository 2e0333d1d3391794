package xrand

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandSeeded(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Int32(), b.Int32())
		require.Equal(t, a.Int64(), b.Int64())
		require.Equal(t, a.Int63n(10), b.Int63n(10))
	}
}

func TestRandConcurrent(t *testing.T) {
	r := New(1)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				f := r.Float64()
				if f < 0 || f >= 1 {
					t.Errorf("unexpected float: %v", f)
					return
				}
				_ = r.Int31()
			}
		}()
	}
	wg.Wait()
}

func TestShuffleStable(t *testing.T) {
	perm := func() []int {
		xs := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
		Shuffle(-17, len(xs), func(i, j int) {
			xs[i], xs[j] = xs[j], xs[i]
		})
		return xs
	}
	require.Equal(t, perm(), perm())
	require.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, perm())
}

func TestShuffleSeedBits(t *testing.T) {
	perm := func(seed int64) []int {
		xs := make([]int, 20)
		for i := range xs {
			xs[i] = i
		}
		Shuffle(seed, len(xs), func(i, j int) {
			xs[i], xs[j] = xs[j], xs[i]
		})
		return xs
	}
	// Seeds congruent modulo 2^31-1 must still produce different orders.
	const m = 1<<31 - 1
	for _, seed := range []int64{0, 1, 42, -17} {
		require.NotEqual(t, perm(seed), perm(seed+m), "seed %d", seed)
	}
}

func BenchmarkShuffle(b *testing.B) {
	xs := make([]int, 64)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Shuffle(int64(i), len(xs), func(i, j int) {
			xs[i], xs[j] = xs[j], xs[i]
		})
	}
}
