package thread

import (
	"github.com/distortos-go/kernel/internal/core"
	"github.com/distortos-go/kernel/internal/critical"
	"github.com/distortos-go/kernel/internal/waitlist"
	"github.com/distortos-go/kernel/scheduler"
)

// Thread is a handle to a kernel thread. Construct with New.
type Thread struct {
	tcb *core.Thread

	joiners waitlist.List
	done    bool
}

// New creates and starts a thread running entry at the given priority,
// Runnable from the moment it is created.
func New(name string, priority core.Priority, entry func()) *Thread {
	th := &Thread{}
	th.tcb = scheduler.Spawn(name, priority, func() {
		entry()
		th.markDone()
	})
	return th
}

// markDone wakes every thread blocked in Join, in priority order, exactly
// as a mutex unlock wakes its highest-priority waiter.
func (th *Thread) markDone() {
	sec := critical.Enter()
	th.done = true
	for {
		node := th.joiners.RemoveFirst()
		if node == nil {
			break
		}
		scheduler.Unblock(node.Thread, nil)
	}
	sec.Exit()
}

// Join blocks the calling thread until th's entry function returns.
// Joining an already-terminated thread returns immediately.
func (th *Thread) Join() error {
	t := scheduler.CurrentThread()
	scheduler.Checkpoint(t)

	sec := critical.Enter()
	if th.done {
		sec.Exit()
		return nil
	}

	node := &core.WaitNode{Thread: t}
	th.joiners.Insert(node)
	t.Wait = node
	t.State = core.Blocked

	scheduler.Reschedule()
	sec.Exit()

	return scheduler.Suspend(t)
}

// SetPriority changes th's base priority. If th currently holds an
// inheritance or protect mutex its effective priority is recomputed
// rather than overwritten outright, so a pending boost is never lost.
func (th *Thread) SetPriority(p core.Priority) {
	scheduler.SetPriority(th.tcb, p)
}

// Priority returns th's current base priority.
func (th *Thread) Priority() core.Priority {
	sec := critical.Enter()
	defer sec.Exit()
	return th.tcb.BasePriority
}

// EffectivePriority returns th's current effective (possibly
// boosted) priority.
func (th *Thread) EffectivePriority() core.Priority {
	sec := critical.Enter()
	defer sec.Exit()
	return th.tcb.EffectivePriority
}

// Sleep blocks the calling thread for ticks tick periods.
func Sleep(ticks uint64) {
	SleepUntil(scheduler.NowTick() + ticks)
}

// SleepUntil blocks the calling thread until the given absolute tick.
func SleepUntil(deadlineTick uint64) {
	t := scheduler.CurrentThread()
	scheduler.Checkpoint(t)
	scheduler.SleepUntil(t, deadlineTick)
}

// Yield offers the CPU to another thread of at least the caller's
// priority.
func Yield() {
	scheduler.Yield()
}
