package nodes

import (
	"github.com/pkg/errors"
	"github.com/tidwall/btree"

	"github.com/cube2222/relvar/relvar"
)

// changeSet collects the changes an operator makes to its output while
// handling a single delivery. Changes are netted by the output's unique key,
// so a key touched many times ends up as at most one insert, update or
// remove, no matter the order in which they happened.
type changeSet struct {
	output  *relvar.Relvar
	pending *btree.BTreeG[*pendingRow]
}

// pendingRow is the state of a single output key. before is the row the
// output held when the key was first touched, after is the row it should
// hold once the changes are applied. nil means absent.
type pendingRow struct {
	key           relvar.Row
	before, after relvar.Row
}

func newChangeSet(output *relvar.Relvar) *changeSet {
	key := output.UniqueKey()
	return &changeSet{
		output: output,
		pending: btree.NewBTreeGOptions(func(a, b *pendingRow) bool {
			return key.Compare(a.key, b.key) == -1
		}, btree.Options{
			NoLocks: true,
		}),
	}
}

func (c *changeSet) entry(row relvar.Row) *pendingRow {
	if p, ok := c.pending.Get(&pendingRow{key: row}); ok {
		return p
	}
	p := &pendingRow{key: row}
	if stored, ok := c.output.Get(row); ok {
		p.before = stored
		p.after = stored
	}
	c.pending.Set(p)
	return p
}

// set makes row the output's row for its key.
func (c *changeSet) set(rows ...relvar.Row) {
	for _, row := range rows {
		c.entry(row).after = row
	}
}

// remove drops the output's row with the same key as row.
func (c *changeSet) remove(rows ...relvar.Row) {
	for _, row := range rows {
		c.entry(row).after = nil
	}
}

// replace swaps oldRow for newRow, which may have a different key.
func (c *changeSet) replace(oldRow, newRow relvar.Row) {
	if c.output.UniqueKey().Compare(oldRow, newRow) != 0 {
		c.remove(oldRow)
	}
	c.set(newRow)
}

// apply commits the netted changes to the output, with at most one
// notification of every kind.
func (c *changeSet) apply() error {
	var inserted, removed, updatedOld, updatedNew []relvar.Row
	c.pending.Scan(func(p *pendingRow) bool {
		switch {
		case p.before == nil && p.after != nil:
			inserted = append(inserted, p.after)
		case p.before != nil && p.after == nil:
			removed = append(removed, p.before)
		case p.before != nil && !p.before.Equal(p.after):
			updatedOld = append(updatedOld, p.before)
			updatedNew = append(updatedNew, p.after)
		}
		return true
	})

	if len(removed) > 0 {
		c.output.Remove(removed)
	}
	if len(updatedNew) > 0 {
		if _, err := c.output.Update(updatedOld, updatedNew); err != nil {
			return errors.Wrapf(err, "couldn't update %s", c.output.Name())
		}
	}
	if len(inserted) > 0 {
		if _, err := c.output.Insert(inserted); err != nil {
			return errors.Wrapf(err, "couldn't insert into %s", c.output.Name())
		}
	}
	return nil
}
