package relvar

import "fmt"

type ChangeKind int

const (
	ChangeInsert ChangeKind = iota
	ChangeUpdate
	ChangeRemove
)

func (kind ChangeKind) String() string {
	switch kind {
	case ChangeInsert:
		return "insert"
	case ChangeUpdate:
		return "update"
	case ChangeRemove:
		return "remove"
	default:
		return fmt.Sprintf("invalid change kind %d", int(kind))
	}
}

// Handlers receive the deltas of a relvar. Any of them may be nil.
// The row slices are shared between subscribers and must not be modified.
type Handlers struct {
	Insert func(rows []Row) error
	// Update gets the replaced rows and their replacements, pairwise.
	Update func(oldRows, newRows []Row) error
	Remove func(rows []Row) error
}

type Subscription struct {
	relvar    *Relvar
	handlers  Handlers
	since     uint64
	cancelled bool
}

// Cancel stops the delivery of any further changes, including the ones
// already committed but not yet delivered. Cancelling twice is a no-op.
func (s *Subscription) Cancel() {
	if s.cancelled {
		return
	}
	s.cancelled = true
	s.relvar.unsubscribe(s)
}

func (s *Subscription) Active() bool {
	return !s.cancelled
}

func (s *Subscription) deliver(kind ChangeKind, oldRows, rows []Row) error {
	switch kind {
	case ChangeInsert:
		if s.handlers.Insert != nil {
			return s.handlers.Insert(rows)
		}
	case ChangeUpdate:
		if s.handlers.Update != nil {
			return s.handlers.Update(oldRows, rows)
		}
	case ChangeRemove:
		if s.handlers.Remove != nil {
			return s.handlers.Remove(rows)
		}
	}
	return nil
}
