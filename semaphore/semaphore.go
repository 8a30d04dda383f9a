package semaphore

import (
	"fmt"
	"time"

	"github.com/distortos-go/kernel/diag"
	"github.com/distortos-go/kernel/internal/core"
	"github.com/distortos-go/kernel/internal/critical"
	"github.com/distortos-go/kernel/internal/waitlist"
	"github.com/distortos-go/kernel/kerrors"
	"github.com/distortos-go/kernel/scheduler"
)

// Semaphore is a counting semaphore with a saturating upper bound. The
// zero value is not usable; construct with New.
type Semaphore struct {
	count uint
	max   uint

	waiters waitlist.List

	// Label identifies this semaphore in diag.Profile output. Left blank,
	// a label derived from the semaphore's address is used instead.
	Label string
}

// New returns a semaphore with the given initial value and maximum value.
// initial must not exceed max.
func New(initial, max uint) *Semaphore {
	return &Semaphore{count: initial, max: max}
}

// Value returns the current counter value. It does not reflect waiters: a
// semaphore with waiters queued always reads zero, since a permit is
// handed directly to the highest-priority waiter rather than ever being
// added to the counter.
func (s *Semaphore) Value() uint {
	sec := critical.Enter()
	defer sec.Exit()
	return s.count
}

// Wait blocks the calling thread until a permit is available.
func (s *Semaphore) Wait() error {
	t := scheduler.CurrentThread()
	scheduler.Checkpoint(t)

	sec := critical.Enter()
	if s.count > 0 {
		s.count--
		sec.Exit()
		return nil
	}

	s.enqueue(t)
	scheduler.Reschedule()
	sec.Exit()

	started := time.Now()
	err := scheduler.Suspend(t)
	diag.Record(s.label(), time.Since(started).Nanoseconds())
	return err
}

// TryWait acquires a permit only if one is immediately available, without
// blocking.
func (s *Semaphore) TryWait() error {
	sec := critical.Enter()
	defer sec.Exit()

	if s.count > 0 {
		s.count--
		return nil
	}
	return kerrors.ErrAgain
}

// TryWaitFor blocks until a permit is available or ticks tick periods have
// elapsed, whichever comes first.
func (s *Semaphore) TryWaitFor(ticks uint64) error {
	return s.TryWaitUntil(scheduler.NowTick() + ticks)
}

// TryWaitUntil blocks until a permit is available or the given absolute
// tick deadline passes, whichever comes first.
func (s *Semaphore) TryWaitUntil(deadlineTick uint64) error {
	t := scheduler.CurrentThread()
	scheduler.Checkpoint(t)

	sec := critical.Enter()
	if s.count > 0 {
		s.count--
		sec.Exit()
		return nil
	}

	s.enqueue(t)
	scheduler.ArmTimeout(t, deadlineTick)
	scheduler.Reschedule()
	sec.Exit()

	started := time.Now()
	err := scheduler.Suspend(t)
	diag.Record(s.label(), time.Since(started).Nanoseconds())
	return err
}

// Post releases a permit: it is handed directly to the highest-priority
// waiter if one is queued, otherwise added to the counter.
// Posting at the maximum value reports kerrors.ErrOverflow, a saturating
// counter over silently dropping the post or
// panicking, since an ISR caller has no way to usefully recover either way.
// Safe to call from within an interrupt-masking section, i.e. from code
// standing in for an ISR.
func (s *Semaphore) Post() error {
	sec := critical.Enter()

	if node := s.waiters.RemoveFirst(); node != nil {
		scheduler.Unblock(node.Thread, nil)
		sec.Exit()
		return nil
	}

	if s.count >= s.max {
		sec.Exit()
		return kerrors.ErrOverflow
	}
	s.count++
	sec.Exit()
	return nil
}

// enqueue links t into the wait list and marks it Blocked. Callers must
// hold the interrupt-masking lock and must call scheduler.Reschedule
// afterwards.
func (s *Semaphore) enqueue(t *core.Thread) *core.WaitNode {
	node := &core.WaitNode{Thread: t}
	s.waiters.Insert(node)
	t.Wait = node
	t.State = core.Blocked
	return node
}

// label identifies this semaphore for diag.Record when the caller has not
// set one explicitly.
func (s *Semaphore) label() string {
	if s.Label != "" {
		return s.Label
	}
	return fmt.Sprintf("semaphore:%p", s)
}
