package dataloader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// follow is a test row of a self-referential join entity.
type follow struct {
	ID        string
	Follower  string
	Following string
}

// profile is a test row.
type profile struct {
	ID     string
	Handle string
}

// =============================================================================
// OrderByKeys Tests
// =============================================================================

func TestOrderByKeys(t *testing.T) {
	t.Parallel()

	keyFn := func(p *profile) string { return p.ID }

	t.Run("all keys found", func(t *testing.T) {
		t.Parallel()
		keys := []string{"p1", "p2", "p3"}
		values := []*profile{
			{ID: "p3", Handle: "third"},
			{ID: "p1", Handle: "first"},
			{ID: "p2", Handle: "second"},
		}

		result, errs := OrderByKeys(keys, values, keyFn)

		require.Len(t, result, 3)
		require.Len(t, errs, 3)
		assert.Equal(t, "first", result[0].Handle)
		assert.Equal(t, "second", result[1].Handle)
		assert.Equal(t, "third", result[2].Handle)
		for _, err := range errs {
			assert.NoError(t, err)
		}
	})

	t.Run("some keys missing", func(t *testing.T) {
		t.Parallel()
		keys := []string{"p1", "p2", "p3", "p4"}
		values := []*profile{
			{ID: "p1", Handle: "first"},
			{ID: "p3", Handle: "third"},
		}

		result, errs := OrderByKeys(keys, values, keyFn)

		require.Len(t, result, 4)
		assert.Equal(t, "first", result[0].Handle)
		assert.Nil(t, result[1])
		assert.Equal(t, "third", result[2].Handle)
		assert.Nil(t, result[3])
		assert.NoError(t, errs[0])
		assert.ErrorIs(t, errs[1], ErrNotFound)
		assert.NoError(t, errs[2])
		assert.ErrorIs(t, errs[3], ErrNotFound)
	})

	t.Run("empty keys", func(t *testing.T) {
		t.Parallel()
		result, errs := OrderByKeys([]string{}, []*profile{}, keyFn)
		assert.Empty(t, result)
		assert.Empty(t, errs)
	})

	t.Run("duplicate keys", func(t *testing.T) {
		t.Parallel()
		keys := []string{"p1", "p1", "p2"}
		values := []*profile{
			{ID: "p1", Handle: "first"},
			{ID: "p2", Handle: "second"},
		}

		result, errs := OrderByKeys(keys, values, keyFn)

		require.Len(t, result, 3)
		assert.Equal(t, "first", result[0].Handle)
		assert.Equal(t, "first", result[1].Handle)
		assert.Equal(t, "second", result[2].Handle)
		for _, err := range errs {
			assert.NoError(t, err)
		}
	})
}

func TestOrderByKeysNoError(t *testing.T) {
	t.Parallel()
	result := OrderByKeysNoError([]string{"p1", "p2"}, []*profile{{ID: "p2", Handle: "second"}}, func(p *profile) string { return p.ID })
	require.Len(t, result, 2)
	assert.Nil(t, result[0])
	assert.Equal(t, "second", result[1].Handle)
}

// =============================================================================
// GroupByKey Tests
// =============================================================================

func TestGroupByKey(t *testing.T) {
	t.Parallel()

	rows := []*follow{
		{ID: "f1", Follower: "a", Following: "b"},
		{ID: "f2", Follower: "b", Following: "a"},
		{ID: "f3", Follower: "c", Following: "b"},
		{ID: "f4", Follower: "a", Following: "a"},
	}

	t.Run("roles are grouped independently", func(t *testing.T) {
		t.Parallel()
		followers := GroupByKey(rows, func(f *follow) string { return f.Following })
		following := GroupByKey(rows, func(f *follow) string { return f.Follower })

		require.Len(t, followers["b"], 2)
		assert.Equal(t, "f1", followers["b"][0].ID)
		assert.Equal(t, "f3", followers["b"][1].ID)
		require.Len(t, following["a"], 2)
		assert.Equal(t, "f1", following["a"][0].ID)
		assert.Equal(t, "f4", following["a"][1].ID)
		assert.Empty(t, followers["c"])
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, GroupByKey([]*follow{}, func(f *follow) string { return f.Follower }))
	})
}

func TestOrderGroupsByKeys(t *testing.T) {
	t.Parallel()
	groups := map[string][]*follow{
		"a": {{ID: "f1"}},
		"b": {{ID: "f2"}, {ID: "f3"}},
	}

	ordered := OrderGroupsByKeys([]string{"b", "z", "a"}, groups)

	require.Len(t, ordered, 3)
	assert.Len(t, ordered[0], 2)
	assert.Nil(t, ordered[1])
	assert.Equal(t, "f1", ordered[2][0].ID)
}

// =============================================================================
// Key Helpers Tests
// =============================================================================

func TestUnique(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"b", "a", "c"}, Unique([]string{"b", "a", "b", "c", "a"}))
	assert.Empty(t, Unique([]string(nil)))
}

func TestChunk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		keys []int
		size int
		want [][]int
	}{
		{name: "empty", keys: nil, size: 2, want: nil},
		{name: "single batch", keys: []int{1, 2}, size: 5, want: [][]int{{1, 2}}},
		{name: "exact", keys: []int{1, 2, 3, 4}, size: 2, want: [][]int{{1, 2}, {3, 4}}},
		{name: "remainder", keys: []int{1, 2, 3, 4, 5}, size: 2, want: [][]int{{1, 2}, {3, 4}, {5}}},
		{name: "no limit", keys: []int{1, 2, 3}, size: 0, want: [][]int{{1, 2, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Chunk(tt.keys, tt.size))
		})
	}
}
