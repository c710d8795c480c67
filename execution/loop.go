package execution

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/btree"
)

const BTreeDefaultDegree = 12

// Scheduling decides the order in which deferred tasks run.
type Scheduling int

const (
	// SchedulingFIFO runs tasks in the order they were deferred.
	SchedulingFIFO Scheduling = iota
	// SchedulingTopological runs tasks with a lower priority first, and tasks of
	// equal priority in the order they were deferred. Relvars use their depth as
	// the priority, so a whole layer settles before the next one is notified.
	SchedulingTopological
)

func (s Scheduling) String() string {
	switch s {
	case SchedulingFIFO:
		return "fifo"
	case SchedulingTopological:
		return "topological"
	default:
		return fmt.Sprintf("invalid scheduling %d", int(s))
	}
}

func ParseScheduling(s string) (Scheduling, error) {
	switch s {
	case "", "fifo":
		return SchedulingFIFO, nil
	case "topological":
		return SchedulingTopological, nil
	default:
		return 0, fmt.Errorf("unknown scheduling mode '%s'", s)
	}
}

type Task func() error

type task struct {
	priority int
	seq      uint64
	fn       Task
}

func (t *task) Less(than btree.Item) bool {
	thanTyped, ok := than.(*task)
	if !ok {
		panic(fmt.Sprintf("invalid task comparison: %T", than))
	}

	if t.priority != thanTyped.priority {
		return t.priority < thanTyped.priority
	}
	return t.seq < thanTyped.seq
}

// Loop is a single-threaded task queue. Deferred tasks never run inside the
// call that deferred them, only when the owner of the loop drains it.
//
// Defer, Step and Drain must be called from the goroutine which owns the loop.
// Other goroutines hand work to the loop with Submit, which is picked up by Run.
type Loop struct {
	scheduling Scheduling
	logger     *slog.Logger

	tasks *btree.BTree
	seq   uint64

	submitted chan Task
	mu        sync.Mutex
	closed    bool
}

type LoopOption func(loop *Loop)

func WithScheduling(scheduling Scheduling) LoopOption {
	return func(loop *Loop) {
		loop.scheduling = scheduling
	}
}

func WithLogger(logger *slog.Logger) LoopOption {
	return func(loop *Loop) {
		loop.logger = logger
	}
}

func NewLoop(opts ...LoopOption) *Loop {
	loop := &Loop{
		scheduling: SchedulingFIFO,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		tasks:      btree.New(BTreeDefaultDegree),
		submitted:  make(chan Task, 128),
	}
	for _, opt := range opts {
		opt(loop)
	}
	return loop
}

func (l *Loop) Scheduling() Scheduling {
	return l.scheduling
}

func (l *Loop) Logger() *slog.Logger {
	return l.logger
}

// Defer enqueues fn to run on a later turn of the loop. The priority is only
// taken into account with SchedulingTopological.
func (l *Loop) Defer(priority int, fn Task) {
	if l.scheduling == SchedulingFIFO {
		priority = 0
	}
	l.seq++
	l.tasks.ReplaceOrInsert(&task{
		priority: priority,
		seq:      l.seq,
		fn:       fn,
	})
}

// Pending returns the number of deferred tasks which haven't run yet.
func (l *Loop) Pending() int {
	return l.tasks.Len()
}

// Step runs a single task. It reports whether a task was run.
func (l *Loop) Step() (bool, error) {
	item := l.tasks.DeleteMin()
	if item == nil {
		return false, nil
	}
	t := item.(*task)
	if err := t.fn(); err != nil {
		return true, fmt.Errorf("task %d failed: %w", t.seq, err)
	}
	return true, nil
}

// Drain runs tasks until there are none left, including the ones deferred by
// the tasks themselves. It stops at the first failing task, leaving the rest
// of the queue in place.
func (l *Loop) Drain() (int, error) {
	count := 0
	for {
		ran, err := l.Step()
		if ran {
			count++
		}
		if err != nil {
			return count, err
		}
		if !ran {
			return count, nil
		}
	}
}

// Submit hands fn to the goroutine running Run. It is safe for concurrent use.
func (l *Loop) Submit(ctx context.Context, fn Task) error {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return fmt.Errorf("loop is closed")
	}

	select {
	case l.submitted <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run serves submitted tasks, draining the queue after each one, until the
// context is cancelled or a task fails.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()
	}()

	if _, err := l.Drain(); err != nil {
		return err
	}
	for {
		select {
		case fn := <-l.submitted:
			if err := fn(); err != nil {
				return fmt.Errorf("submitted task failed: %w", err)
			}
			if _, err := l.Drain(); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}
