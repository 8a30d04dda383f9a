package scheduler

import (
	"sync/atomic"

	"github.com/distortos-go/kernel/internal/arch"
	"github.com/distortos-go/kernel/internal/core"
	"github.com/distortos-go/kernel/internal/critical"
	"github.com/distortos-go/kernel/internal/readylist"
	"github.com/distortos-go/kernel/internal/ticktimer"
	"github.com/distortos-go/kernel/kerrors"
)

var (
	current *core.Thread
	ready   readylist.List
	timers  ticktimer.Queue
	lastID  uint32
)

func allocateID() uint32 {
	return atomic.AddUint32(&lastID, 1)
}

// Bootstrap (re-)initializes the kernel and installs the calling goroutine
// as its first thread (conventionally "main") without going through the
// ready list: it is current from the moment it exists, exactly as a real
// RTOS's main thread runs immediately after kernel init rather than
// waiting to be scheduled. Calling Bootstrap again discards the ready
// list, timer queue and thread-ID counter, the same "power-cycle" reset a
// real target gets between test runs that a hosted process does not get
// for free.
func Bootstrap(name string, priority core.Priority) *core.Thread {
	sec := critical.Enter()
	defer sec.Exit()

	ready = readylist.List{}
	timers = ticktimer.Queue{}
	lastID = 0

	t := core.NewThread(allocateID(), name, priority)
	t.State = core.Runnable
	current = t
	return t
}

// Spawn creates a new thread running entry in its own goroutine, makes it
// Runnable, and triggers a reschedule: becoming Runnable is itself a
// reschedule point. entry only begins executing once the
// scheduler actually dispatches the thread.
func Spawn(name string, priority core.Priority, entry func()) *core.Thread {
	t := core.NewThread(allocateID(), name, priority)

	go func() {
		Checkpoint(t)
		entry()
		Terminate(t)
	}()

	sec := critical.Enter()
	t.State = core.Runnable
	ready.Insert(t)
	reschedule()
	sec.Exit()

	return t
}

// CurrentThread returns the thread the scheduler believes is running.
func CurrentThread() *core.Thread {
	sec := critical.Enter()
	defer sec.Exit()
	return current
}

// NowTick returns the current tick count.
func NowTick() uint64 {
	sec := critical.Enter()
	defer sec.Exit()
	return timers.Now()
}

// Checkpoint is the suspension-point preemption check every blocking API
// (wait*, lock*, sleep*, join, yield) performs on entry: if some other
// event already made a higher-priority thread current while t's goroutine
// kept running past that point (an artifact of not having real hardware
// preemption here — see package doc), t surrenders the CPU now instead of
// continuing to run. If t is already current, it only discards a resume
// token still pending for it (one sent by the dispatch that made it
// current), so that a later Suspend waits for a fresh dispatch.
func Checkpoint(t *core.Thread) {
	sec := critical.Enter()
	if current == t {
		select {
		case <-t.Resume:
		default:
		}
		sec.Exit()
		return
	}
	sec.Exit()
	<-t.Resume
}

// ArmTimeout registers an absolute-tick deadline for t's current wait.
// Callers must already hold the interrupt-masking lock.
func ArmTimeout(t *core.Thread, deadlineTick uint64) {
	timers.Add(t, deadlineTick)
}

// DisarmTimeout cancels a previously-armed deadline, used once a wait
// completes for a reason other than timeout. Callers must already hold the
// interrupt-masking lock.
func DisarmTimeout(t *core.Thread) {
	timers.Remove(t)
}

// Reschedule re-evaluates which thread should run. Callers must already
// hold the interrupt-masking lock.
func Reschedule() {
	reschedule()
}

// Suspend parks the calling goroutine until the scheduler dispatches t
// again, returning the reason it was resumed. Must be called without
// holding the interrupt-masking lock — callers call Reschedule/ArmTimeout
// first, release their section, then call Suspend.
func Suspend(t *core.Thread) error {
	<-t.Resume
	return t.WakeResult
}

// Unblock makes a Blocked thread Runnable again with the given wake
// reason and triggers a reschedule, since unblocking a thread may make it
// the highest-priority Runnable one. Callers must already hold the
// interrupt-masking lock and must have already detached t from whatever
// wait list it was on.
func Unblock(t *core.Thread, reason error) {
	timers.Remove(t)
	t.Wait = nil
	t.WakeResult = reason
	t.State = core.Runnable
	ready.Insert(t)
	reschedule()
}

// Yield offers the CPU to another Runnable thread of at least the caller's
// priority, implementing round-robin within a priority level.
func Yield() {
	sec := critical.Enter()
	t := current
	if t == nil {
		sec.Exit()
		return
	}
	ready.Insert(t)
	next := ready.RemoveFirst()
	if next == t {
		sec.Exit()
		return
	}
	current = next
	dispatch(next)
	sec.Exit()
	Checkpoint(t)
}

// SleepUntil blocks the calling thread until the given absolute tick.
// Unlike a timed wait, there is no wait list membership:
// sleeping is purely a timer-queue entry.
func SleepUntil(t *core.Thread, deadlineTick uint64) {
	sec := critical.Enter()
	t.State = core.Sleeping
	timers.Add(t, deadlineTick)
	reschedule()
	sec.Exit()
	Suspend(t)
}

// Terminate transitions t to Terminated and removes it from scheduling
// consideration. Aborts if t still holds any PI mutex: a thread that dies
// while owning a mutex would otherwise strand every waiter on it forever.
func Terminate(t *core.Thread) {
	if t.HasOwnedMutexes() {
		core.Throw("thread terminated while still holding a mutex")
	}
	sec := critical.Enter()
	t.State = core.Terminated
	if current == t {
		reschedule()
	}
	sec.Exit()
}

// SetPriority updates t's base priority, recomputes its effective priority, re-sorts
// whatever list t is currently queued in (ready list or a wait list), and
// propagates the change through a PI chain if t is blocked on one.
func SetPriority(t *core.Thread, p core.Priority) {
	sec := critical.Enter()

	queuedInReady := t.State == core.Runnable && t != current
	if queuedInReady {
		ready.Remove(t)
	}

	t.BasePriority = p
	changed := t.RecomputeEffectivePriority()

	if queuedInReady {
		ready.Insert(t)
	}

	if changed && t.State == core.Blocked && t.Wait != nil && t.Wait.Queue != nil {
		t.Wait.Queue.Reinsert(t.Wait)
	}

	reschedule()
	sec.Exit()
}

// ReseatReady repositions t within the ready list after its effective
// priority changed out from under it — the priority-inheritance boost
// propagation path in package mutex, which is the only other place
// EffectivePriority is mutated after a thread is already queued somewhere.
// A no-op if t is not currently sitting in the
// ready list (it is current, or not Runnable at all). Callers must already
// hold the interrupt-masking lock, same convention as Unblock/ArmTimeout.
func ReseatReady(t *core.Thread) {
	if t != current && t.State == core.Runnable {
		ready.Remove(t)
		ready.Insert(t)
	}
	reschedule()
}

// Cancel synchronously removes a thread from whatever it is blocked on and
// resumes it with kerrors.ErrCanceled. t must currently be Blocked.
func Cancel(t *core.Thread) {
	sec := critical.Enter()
	if t.State != core.Blocked {
		sec.Exit()
		return
	}
	if t.Wait != nil && t.Wait.Queue != nil {
		t.Wait.Queue.Remove(t.Wait)
	}
	Unblock(t, kerrors.ErrCanceled)
	sec.Exit()
}

// Tick advances the tick clock by one and wakes every thread whose
// deadline is now due, in deadline order, with a single reschedule at the
// end, so that threads sharing a deadline all become Runnable on the same
// tick.
func Tick() {
	sec := critical.Enter()
	due := timers.Advance()
	for _, t := range due {
		if t.State == core.Sleeping {
			t.WakeResult = nil
		} else {
			if t.Wait != nil && t.Wait.Queue != nil {
				t.Wait.Queue.Remove(t.Wait)
			}
			t.Wait = nil
			t.WakeResult = kerrors.ErrTimeout
		}
		t.State = core.Runnable
		ready.Insert(t)
	}
	if len(due) > 0 {
		reschedule()
	}
	sec.Exit()
}

// reschedule picks the next thread to run. Must be called with the
// interrupt-masking lock held. A strictly higher-priority ready thread
// always preempts; equal-or-lower priority never does (round-robin among
// equals is only ever driven by explicit Yield or a tick-driven wakeup).
func reschedule() {
	if current != nil && current.State == core.Runnable {
		top := ready.Peek()
		if top == nil || top.EffectivePriority <= current.EffectivePriority {
			return
		}
		next := ready.RemoveFirst()
		ready.Insert(current)
		current = next
		dispatch(next)
		return
	}

	next := ready.RemoveFirst()
	current = next
	if next != nil {
		dispatch(next)
	}
}

// dispatch hands t the right to run. The actual trigger is requested
// through the architecture port rather than poked at directly: on real
// hardware this is the only way to make a pending thread actually run
// (pending a supervisor exception), and the hosted port's implementation
// of that same request is what releases t's resume token.
func dispatch(t *core.Thread) {
	arch.Current.RequestContextSwitch(func() {
		select {
		case t.Resume <- struct{}{}:
		default:
		}
	})
}
