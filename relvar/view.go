package relvar

import (
	"github.com/oklog/ulid/v2"

	"github.com/cube2222/relvar/execution"
	"github.com/cube2222/relvar/graph"
)

// View exposes a derived relvar to the outside world. Only the operator
// owning the underlying relvar may mutate it.
type View struct {
	relvar        *Relvar
	subscriptions []*Subscription
	closed        bool
}

func NewView(r *Relvar) *View {
	return &View{
		relvar: r,
	}
}

// Attach makes the view responsible for the given subscriptions on its sources.
func (v *View) Attach(subs ...*Subscription) {
	v.subscriptions = append(v.subscriptions, subs...)
}

// Close detaches the view from its sources. It won't receive any further changes.
func (v *View) Close() {
	if v.closed {
		return
	}
	v.closed = true
	for _, sub := range v.subscriptions {
		sub.Cancel()
	}
	v.subscriptions = nil
}

func (v *View) Closed() bool {
	return v.closed
}

func (v *View) ID() ulid.ULID { return v.relvar.ID() }
func (v *View) Name() string { return v.relvar.Name() }
func (v *View) Loop() *execution.Loop { return v.relvar.Loop() }
func (v *View) Spec() Spec { return v.relvar.Spec() }
func (v *View) UniqueKey() UniqueKey { return v.relvar.UniqueKey() }
func (v *View) Depth() int { return v.relvar.Depth() }
func (v *View) Len() int { return v.relvar.Len() }
func (v *View) Get(key Row) (Row, bool) { return v.relvar.Get(key) }
func (v *View) Scan(fn func(row Row) bool) { v.relvar.Scan(fn) }
func (v *View) Snapshot() []Row { return v.relvar.Snapshot() }
func (v *View) Subscribe(handlers Handlers) *Subscription { return v.relvar.Subscribe(handlers) }
func (v *View) Watch(handlers Handlers) ([]Row, *Subscription) {
	return v.relvar.Watch(handlers)
}
func (v *View) Visualize() *graph.Node { return v.relvar.Visualize() }

func (v *View) OnInsert(fn func(rows []Row) error) *Subscription {
	return v.relvar.OnInsert(fn)
}

func (v *View) OnUpdate(fn func(oldRows, newRows []Row) error) *Subscription {
	return v.relvar.OnUpdate(fn)
}

func (v *View) OnRemove(fn func(rows []Row) error) *Subscription {
	return v.relvar.OnRemove(fn)
}
