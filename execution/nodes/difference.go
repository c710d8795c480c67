package nodes

import (
	"github.com/cube2222/relvar/relvar"
)

// Difference holds the rows of a which have no row with the same unique key
// in b. Membership is decided by the key alone, other attributes of the rows
// aren't compared.
//
// Both sources are read live when their changes are delivered, so changes
// committed to both sides before either is delivered still converge.
type Difference struct {
	*relvar.View
	a, b   relvar.Source
	key    relvar.UniqueKey
	output *relvar.Relvar
}

func NewDifference(a, b relvar.Source, opts ...Option) (*Difference, error) {
	loop, err := sharedLoop("difference", a, b)
	if err != nil {
		return nil, err
	}
	if !a.Spec().Equals(b.Spec()) {
		return nil, relvar.SchemaErrorf("difference", "specs of %s and %s differ: %s and %s", a.Name(), b.Name(), a.Spec(), b.Spec())
	}
	if !a.UniqueKey().Equals(b.UniqueKey()) {
		return nil, relvar.SchemaErrorf("difference", "unique keys of %s and %s differ: %s and %s", a.Name(), b.Name(), a.UniqueKey(), b.UniqueKey())
	}

	output, err := relvar.New(
		loop,
		a.Spec(),
		a.UniqueKey(),
		outputOptions(opts, "difference", []relvar.Input{{Name: "a", Source: a}, {Name: "b", Source: b}})...,
	)
	if err != nil {
		return nil, err
	}

	d := &Difference{
		View:   relvar.NewView(output),
		a:      a,
		b:      b,
		key:    a.UniqueKey(),
		output: output,
	}

	snapshotA, subA := a.Watch(relvar.Handlers{
		Insert: d.onInsertA,
		Update: d.onUpdateA,
		Remove: d.onRemoveA,
	})
	snapshotB, subB := b.Watch(relvar.Handlers{
		Insert: d.onInsertB,
		Update: d.onUpdateB,
		Remove: d.onRemoveB,
	})
	d.Attach(subA, subB)
	output.Seed(d.mergeWalk(snapshotA, snapshotB))

	return d, nil
}

// mergeWalk returns the rows of a with no key in b. Both have to be sorted by key.
func (d *Difference) mergeWalk(a, b []relvar.Row) []relvar.Row {
	var out []relvar.Row
	j := 0
	for _, row := range a {
		for j < len(b) && d.key.Compare(b[j], row) < 0 {
			j++
		}
		if j < len(b) && d.key.Compare(b[j], row) == 0 {
			continue
		}
		out = append(out, row)
	}
	return out
}

func (d *Difference) inB(row relvar.Row) bool {
	_, ok := d.b.Get(row)
	return ok
}

func (d *Difference) onInsertA(rows []relvar.Row) error {
	changes := newChangeSet(d.output)
	for _, row := range rows {
		if !d.inB(row) {
			changes.set(row)
		}
	}
	return changes.apply()
}

func (d *Difference) onRemoveA(rows []relvar.Row) error {
	changes := newChangeSet(d.output)
	changes.remove(rows...)
	return changes.apply()
}

// onUpdateA applies the pairs in order: the old row leaves the output, and
// the new one enters it unless b holds its key.
func (d *Difference) onUpdateA(oldRows, newRows []relvar.Row) error {
	changes := newChangeSet(d.output)
	for i := range oldRows {
		if d.inB(newRows[i]) {
			changes.remove(oldRows[i])
			continue
		}
		changes.replace(oldRows[i], newRows[i])
	}
	return changes.apply()
}

// evict removes the rows of a which now have a match in b.
func (d *Difference) evict(changes *changeSet, keys []relvar.Row) {
	changes.remove(keys...)
}

// admit inserts the rows of a which lost their match in b.
func (d *Difference) admit(changes *changeSet, keys []relvar.Row) {
	for _, key := range keys {
		if d.inB(key) {
			continue
		}
		if row, ok := d.a.Get(key); ok {
			changes.set(row)
		}
	}
}

func (d *Difference) onInsertB(rows []relvar.Row) error {
	changes := newChangeSet(d.output)
	d.evict(changes, rows)
	return changes.apply()
}

func (d *Difference) onRemoveB(rows []relvar.Row) error {
	changes := newChangeSet(d.output)
	d.admit(changes, rows)
	return changes.apply()
}

func (d *Difference) onUpdateB(oldRows, newRows []relvar.Row) error {
	changes := newChangeSet(d.output)
	for i := range oldRows {
		if d.key.Same(oldRows[i], newRows[i]) {
			continue
		}
		d.evict(changes, newRows[i:i+1])
		d.admit(changes, oldRows[i:i+1])
	}
	return changes.apply()
}
