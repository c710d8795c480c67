package nodes

import (
	"fmt"

	"github.com/cube2222/relvar/relvar"
)

// Union holds the rows of both of its sources. Rows with the same key in both
// sources aren't deduplicated beyond what the key enforces: the one written
// last wins.
type Union struct {
	*relvar.View
	a, b   relvar.Source
	output *relvar.Relvar
}

func NewUnion(a, b relvar.Source, opts ...Option) (*Union, error) {
	loop, err := sharedLoop("union", a, b)
	if err != nil {
		return nil, err
	}
	if !a.Spec().Equals(b.Spec()) {
		return nil, relvar.SchemaErrorf("union", "specs of %s and %s differ: %s and %s", a.Name(), b.Name(), a.Spec(), b.Spec())
	}
	if !a.UniqueKey().Equals(b.UniqueKey()) {
		return nil, relvar.SchemaErrorf("union", "unique keys of %s and %s differ: %s and %s", a.Name(), b.Name(), a.UniqueKey(), b.UniqueKey())
	}

	output, err := relvar.New(
		loop,
		a.Spec(),
		a.UniqueKey(),
		outputOptions(opts, "union", []relvar.Input{{Name: "a", Source: a}, {Name: "b", Source: b}})...,
	)
	if err != nil {
		return nil, err
	}

	u := &Union{
		View:   relvar.NewView(output),
		a:      a,
		b:      b,
		output: output,
	}

	handlers := relvar.Handlers{
		Insert: u.onInsert,
		Update: u.onUpdate,
		Remove: u.onRemove,
	}
	snapshotA, subA := a.Watch(handlers)
	snapshotB, subB := b.Watch(handlers)
	u.Attach(subA, subB)
	output.Seed(snapshotA)
	output.Seed(snapshotB)

	return u, nil
}

func (u *Union) onInsert(rows []relvar.Row) error {
	if _, err := u.output.Insert(rows); err != nil {
		return fmt.Errorf("couldn't insert into union: %w", err)
	}
	return nil
}

func (u *Union) onUpdate(oldRows, newRows []relvar.Row) error {
	if _, err := u.output.Update(oldRows, newRows); err != nil {
		return fmt.Errorf("couldn't update union: %w", err)
	}
	return nil
}

func (u *Union) onRemove(rows []relvar.Row) error {
	u.output.Remove(rows)
	return nil
}
