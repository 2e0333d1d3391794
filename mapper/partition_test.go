package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangePartitionAccessor(t *testing.T) {
	a, err := NewRangePartitionAccessor(`/articles/(\d+)`, 100, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, 4, a.MaxPartitionID())

	for _, test := range []struct {
		uri string
		exp int
		err bool
	}{
		{uri: "d2://svc/articles/100", exp: 0},
		{uri: "d2://svc/articles/109", exp: 0},
		{uri: "d2://svc/articles/110", exp: 1},
		{uri: "d2://svc/articles/149", exp: 4},
		{uri: "d2://svc/articles/150", err: true},
		{uri: "d2://svc/articles/99", err: true},
		{uri: "d2://svc/users/1", err: true},
	} {
		t.Run(test.uri, func(t *testing.T) {
			id, err := a.PartitionID(mustParse(t, test.uri))
			if test.err {
				require.ErrorIs(t, err, ErrPartitionAccess)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.exp, id)
		})
	}
}

func TestNewRangePartitionAccessorErrors(t *testing.T) {
	_, err := NewRangePartitionAccessor(`(\d+)`, 0, 0, 1)
	assert.Error(t, err)
	_, err = NewRangePartitionAccessor(`(\d+)`, 0, 1, 0)
	assert.Error(t, err)
	_, err = NewRangePartitionAccessor(`\d+`, 0, 1, 1)
	assert.Error(t, err)
	_, err = NewRangePartitionAccessor(`(\d+`, 0, 1, 1)
	assert.Error(t, err)
}

func TestHashPartitionAccessor(t *testing.T) {
	a, err := NewHashPartitionAccessor(`/members/(\w+)`, 8)
	require.NoError(t, err)
	assert.Equal(t, 7, a.MaxPartitionID())

	seen := make(map[int]bool)
	for _, key := range []string{"alice", "bob", "carol", "dave", "eve", "frank", "grace", "heidi"} {
		u := mustParse(t, "d2://svc/members/"+key)
		id, err := a.PartitionID(u)
		require.NoError(t, err)
		require.GreaterOrEqual(t, id, 0)
		require.Less(t, id, 8)

		again, err := a.PartitionID(u)
		require.NoError(t, err)
		require.Equal(t, id, again)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 1)

	_, err = a.PartitionID(mustParse(t, "d2://svc/groups/x"))
	require.ErrorIs(t, err, ErrPartitionAccess)
}

func TestDefaultPartitionAccessor(t *testing.T) {
	var a DefaultPartitionAccessor
	id, err := a.PartitionID(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultPartitionID, id)
	assert.Zero(t, a.MaxPartitionID())
}
