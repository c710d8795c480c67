package relvar

import (
	"crypto/rand"
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/tidwall/btree"

	"github.com/cube2222/relvar/execution"
	"github.com/cube2222/relvar/graph"
)

// Source is the read-only face of a relvar, the only thing operators and
// other non-owners get to see.
type Source interface {
	graph.Visualizer

	ID() ulid.ULID
	Name() string
	Loop() *execution.Loop
	Spec() Spec
	UniqueKey() UniqueKey
	// Depth is the length of the longest derivation path from a base relvar.
	Depth() int
	Len() int
	Get(key Row) (Row, bool)
	Scan(fn func(row Row) bool)
	Snapshot() []Row
	Subscribe(handlers Handlers) *Subscription
	// Watch returns the current rows together with a subscription which only
	// receives changes committed after them.
	Watch(handlers Handlers) ([]Row, *Subscription)
}

// Input names a source of a derived relvar, for visualization.
type Input struct {
	Name   string
	Source Source
}

// Relvar is a keyed, validated set of rows. Mutations are committed
// synchronously, subscribers are notified on a later turn of the loop.
type Relvar struct {
	id        ulid.ULID
	name      string
	loop      *execution.Loop
	spec      Spec
	uniqueKey UniqueKey
	index     *btree.BTreeG[Row]
	depth     int

	subscribers []*Subscription
	commits     uint64

	op     string
	fields []graph.Field
	inputs []Input
}

type Option func(r *Relvar)

func WithName(name string) Option {
	return func(r *Relvar) {
		r.name = name
	}
}

// WithOrigin records how a derived relvar was built. Its depth is derived
// from the inputs.
func WithOrigin(op string, inputs []Input, fields ...graph.Field) Option {
	return func(r *Relvar) {
		r.op = op
		r.inputs = inputs
		r.fields = fields
		for _, input := range inputs {
			if input.Source.Depth()+1 > r.depth {
				r.depth = input.Source.Depth() + 1
			}
		}
	}
}

func New(loop *execution.Loop, spec Spec, uniqueKey UniqueKey, opts ...Option) (*Relvar, error) {
	if err := uniqueKey.Validate(spec); err != nil {
		return nil, err
	}

	key := make(UniqueKey, len(uniqueKey))
	copy(key, uniqueKey)

	r := &Relvar{
		id:        ulid.MustNew(ulid.Now(), rand.Reader),
		loop:      loop,
		spec:      spec.Copy(),
		uniqueKey: key,
		index: btree.NewBTreeGOptions(func(a, b Row) bool {
			return key.Compare(a, b) == -1
		}, btree.Options{
			NoLocks: true,
		}),
		op: "relvar",
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.name == "" {
		r.name = fmt.Sprintf("%s_%s", r.op, r.id.String())
	}

	return r, nil
}

func (r *Relvar) ID() ulid.ULID {
	return r.id
}

func (r *Relvar) Name() string {
	return r.name
}

func (r *Relvar) Loop() *execution.Loop {
	return r.loop
}

func (r *Relvar) Spec() Spec {
	return r.spec.Copy()
}

func (r *Relvar) UniqueKey() UniqueKey {
	out := make(UniqueKey, len(r.uniqueKey))
	copy(out, r.uniqueKey)
	return out
}

func (r *Relvar) Depth() int {
	return r.depth
}

func (r *Relvar) Len() int {
	return r.index.Len()
}

func (r *Relvar) Validate(row Row) bool {
	return r.spec.Validate(row)
}

// Get looks up the row with the same unique key as key. Only the key
// attributes of key are used.
func (r *Relvar) Get(key Row) (Row, bool) {
	return r.index.Get(key)
}

// Scan calls fn for every row in unique key order, until fn returns false.
// It iterates over a snapshot, so fn may mutate the relvar.
func (r *Relvar) Scan(fn func(row Row) bool) {
	r.index.Copy().Scan(fn)
}

func (r *Relvar) Snapshot() []Row {
	out := make([]Row, 0, r.index.Len())
	r.Scan(func(row Row) bool {
		out = append(out, row)
		return true
	})
	return out
}

type mutation struct {
	done func()
}

type MutationOption func(m *mutation)

// OnDone registers a callback fired once the change has been delivered to
// all subscribers.
func OnDone(fn func()) MutationOption {
	return func(m *mutation) {
		m.done = fn
	}
}

func getMutation(opts []MutationOption) *mutation {
	m := &mutation{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (r *Relvar) validateAll(rows []Row) error {
	invalid := 0
	for _, row := range rows {
		if !r.spec.Validate(row) {
			invalid++
		}
	}
	if invalid > 0 {
		return &ValidationError{
			Relvar:  r.name,
			Invalid: invalid,
			Total:   len(rows),
		}
	}
	return nil
}

// Insert adds the rows, replacing any rows with the same unique key. If any
// row is invalid nothing is inserted and a *ValidationError is returned.
func (r *Relvar) Insert(rows []Row, opts ...MutationOption) (*Relvar, error) {
	m := getMutation(opts)
	if err := r.validateAll(rows); err != nil {
		return r, err
	}

	inserted := copyRows(rows)
	for _, row := range inserted {
		r.index.Set(row)
	}
	r.loop.Logger().Debug("committed insert", slog.String("relvar", r.name), slog.Int("rows", len(inserted)))

	r.notify(ChangeInsert, nil, inserted, m.done)
	return r, nil
}

// Update replaces the row identified by keys[i] with rows[i]. Keys which
// aren't present are skipped. The new rows are validated like on Insert.
func (r *Relvar) Update(keys, rows []Row, opts ...MutationOption) (*Relvar, error) {
	m := getMutation(opts)
	if len(keys) != len(rows) {
		return r, errors.Wrapf(ErrUpdateMismatch, "%s: got %d keys and %d rows to update", r.name, len(keys), len(rows))
	}
	if err := r.validateAll(rows); err != nil {
		return r, err
	}

	var oldRows, newRows []Row
	for i := range keys {
		oldRow, ok := r.index.Delete(keys[i])
		if !ok {
			continue
		}
		newRow := rows[i].Copy()
		r.index.Set(newRow)
		oldRows = append(oldRows, oldRow)
		newRows = append(newRows, newRow)
	}
	r.loop.Logger().Debug("committed update", slog.String("relvar", r.name), slog.Int("rows", len(newRows)), slog.Int("skipped", len(keys)-len(newRows)))

	if len(newRows) == 0 {
		r.notify(ChangeUpdate, nil, nil, m.done)
		return r, nil
	}
	r.notify(ChangeUpdate, oldRows, newRows, m.done)
	return r, nil
}

// Remove deletes the rows identified by keys. Keys which aren't present are skipped.
func (r *Relvar) Remove(keys []Row, opts ...MutationOption) *Relvar {
	m := getMutation(opts)

	var removed []Row
	for _, key := range keys {
		row, ok := r.index.Delete(key)
		if !ok {
			continue
		}
		removed = append(removed, row)
	}
	r.loop.Logger().Debug("committed remove", slog.String("relvar", r.name), slog.Int("rows", len(removed)), slog.Int("skipped", len(keys)-len(removed)))

	r.notify(ChangeRemove, nil, removed, m.done)
	return r
}

// Seed commits rows without validating them and without notifying anybody.
// It's meant for the owner of a derived relvar, to initialize it.
func (r *Relvar) Seed(rows []Row) {
	for _, row := range rows {
		r.index.Set(row.Copy())
	}
}

func (r *Relvar) Subscribe(handlers Handlers) *Subscription {
	sub := &Subscription{
		relvar:   r,
		handlers: handlers,
	}
	r.subscribers = append(r.subscribers, sub)
	return sub
}

func (r *Relvar) Watch(handlers Handlers) ([]Row, *Subscription) {
	sub := r.Subscribe(handlers)
	sub.since = r.commits
	return r.Snapshot(), sub
}

func (r *Relvar) OnInsert(fn func(rows []Row) error) *Subscription {
	return r.Subscribe(Handlers{Insert: fn})
}

func (r *Relvar) OnUpdate(fn func(oldRows, newRows []Row) error) *Subscription {
	return r.Subscribe(Handlers{Update: fn})
}

func (r *Relvar) OnRemove(fn func(rows []Row) error) *Subscription {
	return r.Subscribe(Handlers{Remove: fn})
}

func (r *Relvar) Subscribers() int {
	return len(r.subscribers)
}

func (r *Relvar) unsubscribe(sub *Subscription) {
	for i := range r.subscribers {
		if r.subscribers[i] == sub {
			r.subscribers = append(r.subscribers[:i], r.subscribers[i+1:]...)
			return
		}
	}
}

// notify defers the delivery of a change. Subscribers are resolved when the
// change is delivered, not when it's committed, except for watchers, which
// skip changes committed before they started watching. An empty change is
// not delivered, but done is still called.
func (r *Relvar) notify(kind ChangeKind, oldRows, rows []Row, done func()) {
	if len(rows) == 0 && done == nil {
		return
	}
	r.commits++
	commit := r.commits

	r.loop.Defer(r.depth, func() error {
		if len(rows) > 0 {
			subscribers := make([]*Subscription, len(r.subscribers))
			copy(subscribers, r.subscribers)

			r.loop.Logger().Debug("delivering change", slog.String("relvar", r.name), slog.String("kind", kind.String()), slog.Int("rows", len(rows)), slog.Int("subscribers", len(subscribers)))
			for _, sub := range subscribers {
				if sub.cancelled || sub.since >= commit {
					continue
				}
				if err := sub.deliver(kind, oldRows, rows); err != nil {
					return errors.Wrapf(err, "couldn't deliver %s of %d rows from %s", kind, len(rows), r.name)
				}
			}
		}
		if done != nil {
			done()
		}
		return nil
	})
}

func (r *Relvar) Visualize() *graph.Node {
	node := graph.NewNode(r.id.String(), r.op)
	node.AddField("name", r.name)
	node.AddField("key", r.uniqueKey.String())
	node.AddField("spec", r.spec.String())
	for _, field := range r.fields {
		node.AddField(field.Name, field.Value)
	}
	for _, input := range r.inputs {
		node.AddChild(input.Name, input.Source.Visualize())
	}
	return node
}
