package nodes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cube2222/relvar/relvar"
)

func TestBucketIndex(t *testing.T) {
	index := NewBucketIndex(relvar.UniqueKey{"id"})

	a := row(map[string]any{"id": 1, "v": "a"})
	b := row(map[string]any{"id": 1, "v": "b"})
	c := row(map[string]any{"id": 2, "v": "c"})

	assert.Equal(t, relvar.Key{relvar.NewNumber(1)}, index.Add(a))
	index.Add(b)
	index.Add(c)
	assert.Equal(t, 2, index.Buckets())
	assert.Equal(t, 3, index.Len())
	assert.Equal(t, []relvar.Row{a, b}, index.Lookup(index.KeyOf(a)))

	var keys []relvar.Key
	index.Ascend(func(key relvar.Key, rows []relvar.Row) bool {
		keys = append(keys, key)
		return true
	})
	assert.Equal(t, []relvar.Key{{relvar.NewNumber(1)}, {relvar.NewNumber(2)}}, keys)

	assert.True(t, index.Remove(b))
	assert.Equal(t, []relvar.Row{a}, index.Lookup(index.KeyOf(a)))
	assert.False(t, index.Remove(b))
	assert.False(t, index.Remove(row(map[string]any{"id": 3, "v": "x"})))

	assert.True(t, index.Remove(c))
	assert.Nil(t, index.Lookup(index.KeyOf(c)))
	assert.Equal(t, 1, index.Buckets())
	assert.Equal(t, 1, index.Len())
}
