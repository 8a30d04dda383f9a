package mutex

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

// Type selects how a mutex behaves when its own owner calls Lock again.
type Type uint8

const (
	// Normal keeps no recursion count: a Lock by its owner reports
	// kerrors.ErrDeadlock, and an Unlock by a thread that does not own it
	// aborts through core.Throw.
	Normal Type = iota
	// ErrorChecking rejects a recursive Lock and a foreign Unlock with an
	// error instead of corrupting state.
	ErrorChecking
	// Recursive allows the owner to Lock repeatedly, requiring a matching
	// number of Unlock calls before another thread can acquire it.
	Recursive
)

// Protocol selects the priority-boosting rule applied to a mutex's owner.
type Protocol uint8

const (
	// None applies no boosting at all.
	None Protocol = iota
	// PriorityInheritance boosts the owner to the highest effective
	// priority currently waiting on the mutex, transitively through
	// chains of blocked owners.
	PriorityInheritance
	// PriorityProtect boosts the owner to a fixed ceiling the instant it
	// acquires the mutex, regardless of whether anyone is waiting.
	// Lock/TryLock* report kerrors.ErrInvalid instead of
	// locking if the ceiling is below the caller's own effective priority.
	PriorityProtect
)

// Mutex is a lock supporting the Normal/ErrorChecking/Recursive types and
// the None/PriorityInheritance/PriorityProtect protocols.
// The zero value is not usable; construct with New.
type Mutex struct {
	typ      Type
	protocol Protocol
	ceiling  core.Priority

	owner          *core.Thread
	recursionCount uint32

	waiters waitlist.List
	link    core.MutexLink
}

// New constructs a mutex. ceiling only matters when protocol is
// PriorityProtect; it is ignored otherwise.
func New(typ Type, protocol Protocol, ceiling core.Priority) *Mutex {
	m := &Mutex{typ: typ, protocol: protocol, ceiling: ceiling}
	m.link.MaxWaiterPriority = m.maxWaiterPriority
	return m
}

func (m *Mutex) maxWaiterPriority() core.Priority {
	switch m.protocol {
	case PriorityInheritance:
		return m.waiters.MaxPriority()
	case PriorityProtect:
		return m.ceiling
	default:
		return core.IdlePriority
	}
}

// Lock blocks the calling thread until it owns the mutex.
func (m *Mutex) Lock() error {
	return m.acquire(true, false, 0)
}

// TryLock acquires the mutex only if it is immediately available, without
// blocking.
func (m *Mutex) TryLock() error {
	return m.acquire(false, false, 0)
}

// TryLockFor blocks until the mutex is acquired or ticks tick periods
// elapse, whichever comes first.
func (m *Mutex) TryLockFor(ticks uint64) error {
	return m.acquire(true, true, scheduler.NowTick()+ticks)
}

// TryLockUntil blocks until the mutex is acquired or the given absolute
// tick deadline passes, whichever comes first.
func (m *Mutex) TryLockUntil(deadlineTick uint64) error {
	return m.acquire(true, true, deadlineTick)
}

func (m *Mutex) acquire(blocking, hasDeadline bool, deadlineTick uint64) error {
	t := scheduler.CurrentThread()
	scheduler.Checkpoint(t)

	sec := critical.Enter()

	if m.protocol == PriorityProtect && m.ceiling < t.EffectivePriority {
		sec.Exit()
		return kerrors.ErrInvalid
	}

	if m.owner == nil {
		m.claim(t)
		sec.Exit()
		return nil
	}

	if m.owner == t {
		err := m.relock()
		sec.Exit()
		return err
	}

	if !blocking {
		sec.Exit()
		return kerrors.ErrBusy
	}

	node := &core.WaitNode{Thread: t}
	m.waiters.Insert(node)
	node.Queue = m
	t.Wait = node
	t.State = core.Blocked

	// Adding a waiter may raise the highest waiting priority, which is
	// exactly the event priority inheritance boosts the owner on.
	m.afterWaitersChanged()

	if hasDeadline {
		scheduler.ArmTimeout(t, deadlineTick)
	}
	scheduler.Reschedule()
	sec.Exit()

	started := time.Now()
	err := scheduler.Suspend(t)
	diag.Record(m.label(), time.Since(started).Nanoseconds())
	return err
}

// label identifies this mutex for diag.Record.
func (m *Mutex) label() string {
	return fmt.Sprintf("mutex:%p", m)
}

// relock handles a Lock call made by the thread that already owns the
// mutex. A Normal mutex keeps no recursion bookkeeping at
// all and would deadlock the caller outright on real hardware; here that
// is reported as kerrors.ErrDeadlock rather than actually hanging, since a
// Go caller can always recover from a returned error but never from a
// call that simply never returns. A Recursive mutex reports
// kerrors.ErrOverflow instead of wrapping its counter once its recursion
// count (the first Lock plus every re-lock) has reached
// core.MaxRecursionCount.
func (m *Mutex) relock() error {
	if m.typ == Recursive {
		if m.recursionCount >= core.MaxRecursionCount {
			return kerrors.ErrOverflow
		}
		m.recursionCount++
		return nil
	}
	return kerrors.ErrDeadlock
}

// claim installs t as the new owner with a fresh recursion count and, for
// a boosting protocol, links the mutex into t's owned-mutex collection and
// recomputes t's effective priority.
func (m *Mutex) claim(t *core.Thread) {
	m.owner = t
	m.recursionCount = 1
	if m.protocol != None {
		t.AddOwnedMutex(&m.link)
		t.RecomputeEffectivePriority()
	}
}

// Unlock releases one level of ownership. Only the owning
// thread may call it. ErrorChecking and Recursive mutexes report
// kerrors.ErrPerm for a foreign unlock; Normal mutexes — which keep no
// owner-identity check on real hardware — throw instead, since returning
// an error and letting the caller proceed would hand a second thread
// ownership of state the real owner still believes it holds exclusively.
func (m *Mutex) Unlock() error {
	t := scheduler.CurrentThread()
	sec := critical.Enter()

	if m.owner != t {
		sec.Exit()
		if m.typ == Normal {
			core.Throw("mutex unlocked by a thread that does not own it")
		}
		return kerrors.ErrPerm
	}

	if m.typ == Recursive && m.recursionCount > 1 {
		m.recursionCount--
		sec.Exit()
		return nil
	}

	prevOwner := m.owner
	m.owner = nil
	m.recursionCount = 0

	if m.protocol != None {
		prevOwner.RemoveOwnedMutex(&m.link)
	}

	if node := m.waiters.RemoveFirst(); node != nil {
		next := node.Thread
		m.claim(next)
		scheduler.Unblock(next, nil)
	}

	// The previous owner loses its boost only once the new owner is
	// Runnable, so the reschedule this triggers picks the new owner rather
	// than an unrelated thread between the two priorities.
	if m.protocol != None && prevOwner.RecomputeEffectivePriority() {
		reseat(prevOwner)
	}

	sec.Exit()
	return nil
}

// Remove implements core.WaitQueue: detaches a timed-out or canceled
// waiter and re-evaluates the owner's boost, since the detached waiter may
// have been the one holding the highest priority. Callers must already hold the
// interrupt-masking lock.
func (m *Mutex) Remove(n *core.WaitNode) {
	m.waiters.Remove(n)
	m.afterWaitersChanged()
}

// Reinsert implements core.WaitQueue: repositions n after n.Thread's
// effective priority changed — a setPriority call landing on a blocked
// waiter — and re-evaluates the owner's boost. Callers must already hold
// the interrupt-masking lock.
func (m *Mutex) Reinsert(n *core.WaitNode) {
	m.waiters.Remove(n)
	m.waiters.Insert(n)
	n.Queue = m
	m.afterWaitersChanged()
}

// afterWaitersChanged recomputes the owner's effective priority and, if it
// changed, repositions the owner wherever it is currently queued. This is
// the entire priority-inheritance boost-propagation mechanism: reseat
// calling back into another mutex's Reinsert recurses into that mutex's
// afterWaitersChanged for its own owner in turn, walking the whole chain
// of blocked owners without an explicit loop.
func (m *Mutex) afterWaitersChanged() {
	if m.protocol != PriorityInheritance || m.owner == nil {
		return
	}
	if m.owner.RecomputeEffectivePriority() {
		reseat(m.owner)
	}
}

// reseat repositions t wherever it is currently queued after its effective
// priority changed out from under it: the wait list it is blocked on (via
// Queue.Reinsert) if Blocked, otherwise the ready list. Callers must
// already hold the interrupt-masking lock.
func reseat(t *core.Thread) {
	if t.State == core.Blocked && t.Wait != nil && t.Wait.Queue != nil {
		t.Wait.Queue.Reinsert(t.Wait)
		return
	}
	scheduler.ReseatReady(t)
}
