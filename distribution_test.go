package loadring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistributionRingGetWarnsOnHash(t *testing.T) {
	logger := new(recordLogger)
	r, err := NewDistributionRing(PointsMap{"foo": 1, "bar": 1},
		WithSeed(42),
		WithLogger(logger),
	)
	require.NoError(t, err)
	assert.False(t, r.IsStickyRoutingCapable())

	_, ok := r.Get(0)
	require.True(t, ok)
	assert.Equal(t, 0, logger.count("warn"))

	_, ok = r.Get(42)
	require.True(t, ok)
	assert.Equal(t, 1, logger.count("warn"))
}

func TestDistributionRingIsNotSticky(t *testing.T) {
	r, err := NewDistributionRing(PointsMap{"foo": 1, "bar": 1}, WithSeed(42))
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		host, _ := r.Get(0)
		seen[host] = true
	}
	assert.Len(t, seen, 2)
}

func TestDistributionRingDeterministic(t *testing.T) {
	points := PointsMap{"foo": 1, "bar": 2, "baz": 3}
	r0, err := NewDistributionRing(points, WithSeed(7))
	require.NoError(t, err)
	r1, err := NewDistributionRing(points, WithSeed(7))
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		h0, _ := r0.Get(0)
		h1, _ := r1.Get(0)
		require.Equal(t, h0, h1)
	}
}

func TestDistributionRingIntervals(t *testing.T) {
	r, err := NewDistributionRing(PointsMap{
		"a": 1,
		"b": 2,
		"c": 3,
	})
	require.NoError(t, err)
	require.Equal(t, int64(6), r.total)

	// Intervals are [0,1) for a, [1,3) for b and [3,6) for c.
	for x, exp := range []string{"a", "b", "b", "c", "c", "c"} {
		act := r.cdf.Successor(search(int64(x))).(interval).host
		assert.Equal(t, exp, act, "value %d", x)
	}
}

func TestDistributionRingLargeWeights(t *testing.T) {
	r, err := NewDistributionRing(PointsMap{
		"a": 1 << 61,
		"b": 1 << 61,
	}, WithSeed(1))
	require.NoError(t, err)

	seen := make(map[string]int)
	for i := 0; i < 1000; i++ {
		host, ok := r.Get(0)
		require.True(t, ok)
		seen[host]++
	}
	assert.Len(t, seen, 2)

	// The last value of the ring belongs to the last interval.
	act := r.cdf.Successor(search(r.total - 1)).(interval).host
	assert.Equal(t, "b", act)
	assert.ElementsMatch(t, []string{"a", "b"}, Collect(r.Iterator(0)))
}

func TestDistributionRingIterator(t *testing.T) {
	for _, test := range []struct {
		name   string
		points PointsMap
		opts   []Option
	}{
		{
			name:   "uniform",
			points: PointsMap{"a": 1, "b": 1, "c": 1, "d": 1},
		},
		{
			name:   "skewed",
			points: PointsMap{"a": 1 << 20, "b": 1, "c": 1},
		},
		{
			name:   "capped",
			points: PointsMap{"a": 1 << 20, "b": 1, "c": 1},
			opts:   []Option{WithMaxIteratorDraws(1)},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			opts := append([]Option{WithSeed(42)}, test.opts...)
			r, err := NewDistributionRing(test.points, opts...)
			require.NoError(t, err)

			hosts := Collect(r.Iterator(0))
			require.Len(t, hosts, len(test.points))
			require.ElementsMatch(t, r.hosts, hosts)
		})
	}
}

func TestDistributionRingIteratorCapOrder(t *testing.T) {
	r, err := NewDistributionRing(
		PointsMap{"a": 1 << 30, "b": 1, "c": 1},
		WithSeed(42),
		WithMaxIteratorDraws(1),
	)
	require.NoError(t, err)

	// Drawing "b" or "c" is practically impossible, so the tail of iteration
	// falls back to the sorted order.
	hosts := Collect(r.Iterator(0))
	assert.Equal(t, []string{"a", "b", "c"}, hosts)
}
