package queue

import (
	"github.com/distortos-go/kernel/internal/critical"
	"github.com/distortos-go/kernel/scheduler"
	"github.com/distortos-go/kernel/semaphore"
)

// Queue is a fixed-capacity FIFO ring buffer. The zero
// value is not usable; construct with New.
type Queue[T any] struct {
	items    []T
	readIdx  int
	writeIdx int

	space  *semaphore.Semaphore // free slots
	filled *semaphore.Semaphore // slots holding an unread element
}

// New constructs a queue with the given fixed capacity.
func New[T any](capacity uint) *Queue[T] {
	return &Queue[T]{
		items:  make([]T, capacity),
		space:  semaphore.New(capacity, capacity),
		filled: semaphore.New(0, capacity),
	}
}

// Capacity returns the queue's fixed capacity.
func (q *Queue[T]) Capacity() int { return len(q.items) }

// Push blocks until a free slot is available, then enqueues v.
func (q *Queue[T]) Push(v T) error {
	if err := q.space.Wait(); err != nil {
		return err
	}
	q.store(v)
	return q.filled.Post()
}

// TryPush enqueues v only if a free slot is immediately available.
func (q *Queue[T]) TryPush(v T) error {
	if err := q.space.TryWait(); err != nil {
		return err
	}
	q.store(v)
	return q.filled.Post()
}

// TryPushFor blocks until a free slot is available or ticks tick periods
// elapse, whichever comes first.
func (q *Queue[T]) TryPushFor(ticks uint64, v T) error {
	return q.TryPushUntil(scheduler.NowTick()+ticks, v)
}

// TryPushUntil blocks until a free slot is available or the given absolute
// tick deadline passes, whichever comes first.
func (q *Queue[T]) TryPushUntil(deadlineTick uint64, v T) error {
	if err := q.space.TryWaitUntil(deadlineTick); err != nil {
		return err
	}
	q.store(v)
	return q.filled.Post()
}

// Pop blocks until an element is available, then dequeues it.
func (q *Queue[T]) Pop() (T, error) {
	if err := q.filled.Wait(); err != nil {
		var zero T
		return zero, err
	}
	v := q.load()
	return v, q.space.Post()
}

// TryPop dequeues an element only if one is immediately available.
func (q *Queue[T]) TryPop() (T, error) {
	if err := q.filled.TryWait(); err != nil {
		var zero T
		return zero, err
	}
	v := q.load()
	return v, q.space.Post()
}

// TryPopFor blocks until an element is available or ticks tick periods
// elapse, whichever comes first.
func (q *Queue[T]) TryPopFor(ticks uint64) (T, error) {
	return q.TryPopUntil(scheduler.NowTick() + ticks)
}

// TryPopUntil blocks until an element is available or the given absolute
// tick deadline passes, whichever comes first.
func (q *Queue[T]) TryPopUntil(deadlineTick uint64) (T, error) {
	if err := q.filled.TryWaitUntil(deadlineTick); err != nil {
		var zero T
		return zero, err
	}
	v := q.load()
	return v, q.space.Post()
}

// store writes v into the next write slot and advances the write index,
// inside an interrupt-masking section: the transfer itself, not just the
// semaphore operations around it, must be atomic with respect to an ISR
// producer/consumer.
func (q *Queue[T]) store(v T) {
	sec := critical.Enter()
	q.items[q.writeIdx] = v
	q.writeIdx = (q.writeIdx + 1) % len(q.items)
	sec.Exit()
}

// load reads the next read slot, clears it so a reference-typed T does not
// keep a popped element alive, and advances the read index.
func (q *Queue[T]) load() T {
	sec := critical.Enter()
	v := q.items[q.readIdx]
	var zero T
	q.items[q.readIdx] = zero
	q.readIdx = (q.readIdx + 1) % len(q.items)
	sec.Exit()
	return v
}
