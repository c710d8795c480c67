package nodes

import (
	"fmt"

	"github.com/google/btree"

	"github.com/cube2222/relvar/execution"
	"github.com/cube2222/relvar/relvar"
)

// BucketIndex groups the rows of one join side by their projection onto the
// overlap key.
type BucketIndex struct {
	key     relvar.UniqueKey
	buckets *btree.BTree
	rows    int
}

type bucket struct {
	relvar.Key
	rows []relvar.Row
}

func NewBucketIndex(key relvar.UniqueKey) *BucketIndex {
	return &BucketIndex{
		key:     key,
		buckets: btree.New(execution.BTreeDefaultDegree),
	}
}

func (index *BucketIndex) KeyOf(row relvar.Row) relvar.Key {
	return index.key.Of(row)
}

func (index *BucketIndex) get(key relvar.Key) *bucket {
	item := index.buckets.Get(key)
	if item == nil {
		return nil
	}
	itemTyped, ok := item.(*bucket)
	if !ok {
		panic(fmt.Sprintf("invalid bucket index item: %v", item))
	}
	return itemTyped
}

// Add puts the row into its bucket and returns the bucket key.
func (index *BucketIndex) Add(row relvar.Row) relvar.Key {
	key := index.key.Of(row)
	b := index.get(key)
	if b == nil {
		b = &bucket{Key: key}
		index.buckets.ReplaceOrInsert(b)
	}
	b.rows = append(b.rows, row)
	index.rows++
	return key
}

// Remove erases a single instance of the row from its bucket. Empty buckets
// are dropped. It reports whether the row was found.
func (index *BucketIndex) Remove(row relvar.Row) bool {
	key := index.key.Of(row)
	b := index.get(key)
	if b == nil {
		return false
	}
	for i := range b.rows {
		if b.rows[i].Equal(row) {
			b.rows = append(b.rows[:i], b.rows[i+1:]...)
			index.rows--
			if len(b.rows) == 0 {
				index.buckets.Delete(b)
			}
			return true
		}
	}
	return false
}

// Lookup returns the rows stored under key. The slice must not be modified.
func (index *BucketIndex) Lookup(key relvar.Key) []relvar.Row {
	b := index.get(key)
	if b == nil {
		return nil
	}
	return b.rows
}

// Buckets returns the number of non-empty buckets.
func (index *BucketIndex) Buckets() int {
	return index.buckets.Len()
}

// Len returns the number of rows in all buckets.
func (index *BucketIndex) Len() int {
	return index.rows
}

// Ascend calls fn for every bucket in key order, until fn returns false.
func (index *BucketIndex) Ascend(fn func(key relvar.Key, rows []relvar.Row) bool) {
	index.buckets.Ascend(func(item btree.Item) bool {
		b := item.(*bucket)
		return fn(b.Key, b.rows)
	})
}
