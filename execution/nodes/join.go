package nodes

import (
	"strings"

	"github.com/tidwall/btree"

	"github.com/cube2222/relvar/graph"
	"github.com/cube2222/relvar/relvar"
)

// Join is the natural join of two sources on the attributes they have in
// common, the overlap key. Without common attributes it's the cross product.
type Join struct {
	*relvar.View
	overlap     relvar.UniqueKey
	left, right *joinSide
	output      *relvar.Relvar
}

// joinSide mirrors the rows of one source, both by the source's unique key
// and bucketed by the overlap key.
type joinSide struct {
	source  relvar.Source
	isLeft  bool
	rows    *btree.BTreeG[relvar.Row]
	buckets *BucketIndex
	other   *joinSide
}

func newJoinSide(source relvar.Source, overlap relvar.UniqueKey, isLeft bool) *joinSide {
	key := source.UniqueKey()
	return &joinSide{
		source: source,
		isLeft: isLeft,
		rows: btree.NewBTreeGOptions(func(a, b relvar.Row) bool {
			return key.Compare(a, b) == -1
		}, btree.Options{
			NoLocks: true,
		}),
		buckets: NewBucketIndex(overlap),
	}
}

func (side *joinSide) add(row relvar.Row) {
	side.rows.Set(row)
	side.buckets.Add(row)
}

// remove drops the mirrored row with the same unique key and returns it.
func (side *joinSide) remove(key relvar.Row) (relvar.Row, bool) {
	row, ok := side.rows.Delete(key)
	if !ok {
		return nil, false
	}
	side.buckets.Remove(row)
	return row, true
}

// NewJoin joins left and right. The output is keyed by uniqueKey, or if it's
// empty, by the left key followed by the attributes of the right key which
// aren't part of the left one.
func NewJoin(left, right relvar.Source, uniqueKey relvar.UniqueKey, opts ...Option) (*Join, error) {
	loop, err := sharedLoop("join", left, right)
	if err != nil {
		return nil, err
	}

	leftSpec, rightSpec := left.Spec(), right.Spec()
	overlap := relvar.UniqueKey(leftSpec.Overlap(rightSpec))
	for _, name := range overlap {
		if !leftSpec[name].Equals(rightSpec[name]) {
			return nil, relvar.SchemaErrorf("join", "attribute '%s' is %s in %s but %s in %s", name, leftSpec[name], left.Name(), rightSpec[name], right.Name())
		}
	}

	if len(uniqueKey) == 0 {
		uniqueKey = left.UniqueKey()
		for _, name := range right.UniqueKey() {
			if !uniqueKey.Contains(name) {
				uniqueKey = append(uniqueKey, name)
			}
		}
	}

	output, err := relvar.New(
		loop,
		leftSpec.Merge(rightSpec),
		uniqueKey,
		outputOptions(
			opts,
			"join",
			[]relvar.Input{{Name: "left", Source: left}, {Name: "right", Source: right}},
			graph.Field{Name: "overlap", Value: "[" + strings.Join(overlap, ", ") + "]"},
		)...,
	)
	if err != nil {
		return nil, err
	}

	j := &Join{
		View:    relvar.NewView(output),
		overlap: overlap,
		left:    newJoinSide(left, overlap, true),
		right:   newJoinSide(right, overlap, false),
		output:  output,
	}
	j.left.other = j.right
	j.right.other = j.left

	leftSnapshot, leftSub := left.Watch(j.handlers(j.left))
	rightSnapshot, rightSub := right.Watch(j.handlers(j.right))
	j.Attach(leftSub, rightSub)

	for _, row := range leftSnapshot {
		j.left.add(row)
	}
	for _, row := range rightSnapshot {
		j.right.add(row)
	}
	var seed []relvar.Row
	for _, row := range leftSnapshot {
		seed = append(seed, j.matches(j.left, row)...)
	}
	output.Seed(seed)

	return j, nil
}

// Overlap returns the attributes the sources are joined on.
func (j *Join) Overlap() relvar.UniqueKey {
	out := make(relvar.UniqueKey, len(j.overlap))
	copy(out, j.overlap)
	return out
}

// LeftBuckets exposes the bucket index of the left side. It must not be modified.
func (j *Join) LeftBuckets() *BucketIndex {
	return j.left.buckets
}

// RightBuckets exposes the bucket index of the right side. It must not be modified.
func (j *Join) RightBuckets() *BucketIndex {
	return j.right.buckets
}

func (j *Join) handlers(side *joinSide) relvar.Handlers {
	return relvar.Handlers{
		Insert: func(rows []relvar.Row) error {
			return j.onInsert(side, rows)
		},
		Update: func(oldRows, newRows []relvar.Row) error {
			return j.onUpdate(side, oldRows, newRows)
		},
		Remove: func(rows []relvar.Row) error {
			return j.onRemove(side, rows)
		},
	}
}

func (j *Join) combine(side *joinSide, row, otherRow relvar.Row) relvar.Row {
	if side.isLeft {
		return row.Merge(otherRow)
	}
	return otherRow.Merge(row)
}

// matches returns the joined rows of row, which belongs to side, with all
// rows currently bucketed under the same overlap value on the other side.
func (j *Join) matches(side *joinSide, row relvar.Row) []relvar.Row {
	others := side.other.buckets.Lookup(side.buckets.KeyOf(row))
	out := make([]relvar.Row, len(others))
	for i := range others {
		out[i] = j.combine(side, row, others[i])
	}
	return out
}

// replace swaps oldRow for newRow on side. A row the source overwrote with
// newRow is retracted too.
func (j *Join) replace(changes *changeSet, side *joinSide, oldRow, newRow relvar.Row) {
	changes.remove(j.matches(side, oldRow)...)
	side.remove(oldRow)
	if displaced, ok := side.remove(newRow); ok {
		changes.remove(j.matches(side, displaced)...)
	}
	side.add(newRow)
	changes.set(j.matches(side, newRow)...)
}

func (j *Join) onInsert(side *joinSide, rows []relvar.Row) error {
	changes := newChangeSet(j.output)
	for _, row := range rows {
		// An insert may silently replace a row with the same key in the source.
		if oldRow, ok := side.rows.Get(row); ok {
			j.replace(changes, side, oldRow, row)
			continue
		}
		side.add(row)
		changes.set(j.matches(side, row)...)
	}
	return changes.apply()
}

func (j *Join) onRemove(side *joinSide, rows []relvar.Row) error {
	changes := newChangeSet(j.output)
	for _, row := range rows {
		stored, ok := side.remove(row)
		if !ok {
			continue
		}
		changes.remove(j.matches(side, stored)...)
	}
	return changes.apply()
}

func (j *Join) onUpdate(side *joinSide, oldRows, newRows []relvar.Row) error {
	changes := newChangeSet(j.output)
	for i := range oldRows {
		stored, ok := side.rows.Get(oldRows[i])
		if !ok {
			if displaced, ok := side.remove(newRows[i]); ok {
				changes.remove(j.matches(side, displaced)...)
			}
			side.add(newRows[i])
			changes.set(j.matches(side, newRows[i])...)
			continue
		}
		j.replace(changes, side, stored, newRows[i])
	}
	return changes.apply()
}
