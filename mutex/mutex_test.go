package mutex_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/distortos-go/kernel/internal/core"
	"github.com/distortos-go/kernel/kerrors"
	"github.com/distortos-go/kernel/mutex"
	"github.com/distortos-go/kernel/scheduler"
)

func TestLockUnlockBasic(t *testing.T) {
	scheduler.Bootstrap("main", 1)
	m := mutex.New(mutex.Normal, mutex.None, 0)

	if err := m.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := m.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
}

func TestTryLockBusy(t *testing.T) {
	scheduler.Bootstrap("main", 1)
	m := mutex.New(mutex.Normal, mutex.None, 0)

	if err := m.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}

	done := make(chan error, 1)
	scheduler.Spawn("other", 2, func() {
		done <- m.TryLock()
	})

	select {
	case err := <-done:
		if err != kerrors.ErrBusy {
			t.Fatalf("TryLock from non-owner = %v, want ErrBusy", err)
		}
	case <-time.After(time.Second):
		t.Fatal("TryLock did not return")
	}
}

func TestRecursiveMutex(t *testing.T) {
	scheduler.Bootstrap("main", 1)
	m := mutex.New(mutex.Recursive, mutex.None, 0)

	for i := 0; i < 3; i++ {
		if err := m.Lock(); err != nil {
			t.Fatalf("Lock #%d: %v", i, err)
		}
	}
	for i := 0; i < 2; i++ {
		if err := m.Unlock(); err != nil {
			t.Fatalf("Unlock #%d: %v", i, err)
		}
	}

	done := make(chan error, 1)
	scheduler.Spawn("other", 2, func() {
		done <- m.TryLock()
	})
	select {
	case err := <-done:
		if err != kerrors.ErrBusy {
			t.Fatalf("TryLock while still recursively held = %v, want ErrBusy", err)
		}
	case <-time.After(time.Second):
		t.Fatal("TryLock did not return")
	}

	if err := m.Unlock(); err != nil {
		t.Fatalf("final Unlock: %v", err)
	}
}

func TestErrorCheckingRejectsRecursionAndForeignUnlock(t *testing.T) {
	scheduler.Bootstrap("main", 1)
	m := mutex.New(mutex.ErrorChecking, mutex.None, 0)

	if err := m.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := m.Lock(); err != kerrors.ErrDeadlock {
		t.Fatalf("recursive Lock = %v, want ErrDeadlock", err)
	}

	done := make(chan error, 1)
	scheduler.Spawn("other", 2, func() {
		done <- m.Unlock()
	})
	select {
	case err := <-done:
		if err != kerrors.ErrPerm {
			t.Fatalf("foreign Unlock = %v, want ErrPerm", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Unlock did not return")
	}

	if err := m.Unlock(); err != nil {
		t.Fatalf("owner Unlock: %v", err)
	}
}

// TestPriorityInheritanceBinaryInversion: a
// low-priority owner is boosted to the priority of a higher-priority
// thread blocked on the mutex it owns, and must release before the
// blocked thread can ever complete.
func TestPriorityInheritanceBinaryInversion(t *testing.T) {
	scheduler.Bootstrap("main", 1)
	m := mutex.New(mutex.Normal, mutex.PriorityInheritance, 0)

	const lowPriority, highPriority core.Priority = 2, 10

	lockedByLow := make(chan struct{})
	releaseLow := make(chan struct{})
	var mu sync.Mutex
	var order []string

	low := scheduler.Spawn("low", lowPriority, func() {
		if err := m.Lock(); err != nil {
			t.Errorf("low: Lock: %v", err)
		}
		close(lockedByLow)
		<-releaseLow
		mu.Lock()
		order = append(order, "low")
		mu.Unlock()
		if err := m.Unlock(); err != nil {
			t.Errorf("low: Unlock: %v", err)
		}
	})

	<-lockedByLow

	scheduler.Spawn("high", highPriority, func() {
		if err := m.Lock(); err != nil {
			t.Errorf("high: Lock: %v", err)
		}
		mu.Lock()
		order = append(order, "high")
		mu.Unlock()
		if err := m.Unlock(); err != nil {
			t.Errorf("high: Unlock: %v", err)
		}
	})

	time.Sleep(10 * time.Millisecond)

	if got := low.EffectivePriority; got != highPriority {
		t.Fatalf("low.EffectivePriority while high is blocked = %d, want %d", got, highPriority)
	}

	// An unrelated medium-priority thread becoming runnable in between must
	// not disturb the boost or ever run ahead of the boosted owner.
	scheduler.Spawn("medium", 5, func() {
		mu.Lock()
		order = append(order, "medium")
		mu.Unlock()
	})
	time.Sleep(10 * time.Millisecond)

	close(releaseLow)
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(order) < 2 || order[0] != "low" || order[1] != "high" {
		t.Fatalf("completion order = %v, want low before high", order)
	}
}

// TestPriorityInheritanceChain: a linear
// chain of blocked owners, each waiting on the mutex held by the next,
// must propagate a single high-priority waiter's boost all the way to the
// root of the chain.
func TestPriorityInheritanceChain(t *testing.T) {
	scheduler.Bootstrap("main", 1)

	const depth = 4
	priorities := [depth]core.Priority{2, 3, 4, 10}

	mutexes := make([]*mutex.Mutex, depth-1)
	for i := range mutexes {
		mutexes[i] = mutex.New(mutex.Normal, mutex.PriorityInheritance, 0)
	}

	threads := make([]*core.Thread, depth)
	locked := make([]chan struct{}, depth)
	release := make(chan struct{})

	for i := 0; i < depth; i++ {
		i := i
		locked[i] = make(chan struct{})
		threads[i] = scheduler.Spawn(fmt.Sprintf("chain-%d", i), priorities[i], func() {
			if i < depth-1 {
				if err := mutexes[i].Lock(); err != nil {
					t.Errorf("chain-%d: Lock own mutex: %v", i, err)
				}
			}
			close(locked[i])
			if i > 0 {
				if err := mutexes[i-1].Lock(); err != nil {
					t.Errorf("chain-%d: Lock predecessor's mutex: %v", i, err)
				}
				if err := mutexes[i-1].Unlock(); err != nil {
					t.Errorf("chain-%d: Unlock predecessor's mutex: %v", i, err)
				}
			}
			<-release
			if i < depth-1 {
				if err := mutexes[i].Unlock(); err != nil {
					t.Errorf("chain-%d: Unlock own mutex: %v", i, err)
				}
			}
		})
		<-locked[i]
		time.Sleep(10 * time.Millisecond)
	}

	for i := 0; i < depth; i++ {
		<-locked[i]
	}
	time.Sleep(30 * time.Millisecond)

	if got := threads[0].EffectivePriority; got != priorities[depth-1] {
		t.Fatalf("root of chain EffectivePriority = %d, want %d (propagated through %d hops)",
			got, priorities[depth-1], depth-1)
	}

	close(release)
	time.Sleep(30 * time.Millisecond)
}

// TestSetPriorityOnBlockedWaiterPropagates:
// raising a blocked waiter's priority via setPriority must reposition it
// and re-propagate the boost to the owner it is waiting on.
func TestSetPriorityOnBlockedWaiterPropagates(t *testing.T) {
	scheduler.Bootstrap("main", 1)
	m := mutex.New(mutex.Normal, mutex.PriorityInheritance, 0)

	if err := m.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	owner := scheduler.CurrentThread()

	waiterLocked := make(chan struct{})
	waiter := scheduler.Spawn("waiter", 2, func() {
		if err := m.Lock(); err != nil {
			t.Errorf("waiter: Lock: %v", err)
		}
		close(waiterLocked)
		if err := m.Unlock(); err != nil {
			t.Errorf("waiter: Unlock: %v", err)
		}
	})

	time.Sleep(10 * time.Millisecond)
	if got := owner.EffectivePriority; got != 2 {
		t.Fatalf("owner.EffectivePriority after waiter blocks = %d, want 2", got)
	}

	scheduler.SetPriority(waiter, 9)
	time.Sleep(10 * time.Millisecond)

	if got := owner.EffectivePriority; got != 9 {
		t.Fatalf("owner.EffectivePriority after setPriority on blocked waiter = %d, want 9", got)
	}

	if err := m.Unlock(); err != nil {
		t.Fatalf("owner Unlock: %v", err)
	}
	<-waiterLocked
}

// TestPriorityProtectBoostsImmediately: the owner of a
// PriorityProtect mutex is boosted to the fixed ceiling the instant it
// acquires the mutex, independent of whether anyone is waiting.
func TestPriorityProtectBoostsImmediately(t *testing.T) {
	scheduler.Bootstrap("main", 2)
	m := mutex.New(mutex.Normal, mutex.PriorityProtect, 8)

	owner := scheduler.CurrentThread()
	if err := m.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if got := owner.EffectivePriority; got != 8 {
		t.Fatalf("EffectivePriority after PriorityProtect Lock = %d, want 8 (the ceiling)", got)
	}
	if err := m.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if got := owner.EffectivePriority; got != 2 {
		t.Fatalf("EffectivePriority after Unlock = %d, want 2 (back to base)", got)
	}
}

// TestRecursiveMutexOverflow covers the recursion ceiling: once
// core.MaxRecursionCount Lock calls are outstanding, one more Lock call must
// report kerrors.ErrOverflow instead of wrapping the counter.
func TestRecursiveMutexOverflow(t *testing.T) {
	scheduler.Bootstrap("main", 1)
	m := mutex.New(mutex.Recursive, mutex.None, 0)

	for i := 0; i < core.MaxRecursionCount; i++ {
		if err := m.Lock(); err != nil {
			t.Fatalf("Lock #%d: %v", i, err)
		}
	}

	if err := m.Lock(); err != kerrors.ErrOverflow {
		t.Fatalf("Lock past MaxRecursionCount = %v, want ErrOverflow", err)
	}

	for i := 0; i < core.MaxRecursionCount; i++ {
		if err := m.Unlock(); err != nil {
			t.Fatalf("Unlock #%d: %v", i, err)
		}
	}
}

// TestPriorityInheritanceChainWithTimedOutWaiter covers the hard case in
// priority-inheritance boost propagation: a waiter partway up a chain times
// out via TryLockFor while blocked, and the owner it was boosting must have
// its effective priority rolled back to whatever the remaining waiters still
// require, not left stuck at the timed-out waiter's priority.
func TestPriorityInheritanceChainWithTimedOutWaiter(t *testing.T) {
	scheduler.Bootstrap("main", 1)
	m := mutex.New(mutex.Normal, mutex.PriorityInheritance, 0)

	if err := m.Lock(); err != nil {
		t.Fatalf("owner Lock: %v", err)
	}
	owner := scheduler.CurrentThread()

	const lowWaiterPriority, highWaiterPriority core.Priority = 3, 9

	lowBlocked := make(chan struct{})
	lowDone := make(chan error, 1)
	scheduler.Spawn("low-waiter", lowWaiterPriority, func() {
		close(lowBlocked)
		lowDone <- m.TryLockFor(3)
	})
	<-lowBlocked
	time.Sleep(10 * time.Millisecond)

	if got := owner.EffectivePriority; got != lowWaiterPriority {
		t.Fatalf("owner.EffectivePriority after low-priority waiter blocks = %d, want %d", got, lowWaiterPriority)
	}

	highLocked := make(chan struct{})
	scheduler.Spawn("high-waiter", highWaiterPriority, func() {
		if err := m.Lock(); err != nil {
			t.Errorf("high-waiter: Lock: %v", err)
		}
		close(highLocked)
		if err := m.Unlock(); err != nil {
			t.Errorf("high-waiter: Unlock: %v", err)
		}
	})
	time.Sleep(10 * time.Millisecond)

	if got := owner.EffectivePriority; got != highWaiterPriority {
		t.Fatalf("owner.EffectivePriority after high-priority waiter blocks = %d, want %d", got, highWaiterPriority)
	}

	for i := 0; i < 5; i++ {
		scheduler.Tick()
	}

	if got := owner.EffectivePriority; got != highWaiterPriority {
		t.Fatalf("owner.EffectivePriority after low-priority waiter times out = %d, want %d (high waiter still queued)", got, highWaiterPriority)
	}

	if err := m.Unlock(); err != nil {
		t.Fatalf("owner Unlock: %v", err)
	}
	<-highLocked

	if got := owner.EffectivePriority; got != 1 {
		t.Fatalf("owner.EffectivePriority after releasing the mutex = %d, want 1 (base priority)", got)
	}

	// The timed-out waiter (priority 3) is Runnable from the deadline tick
	// on, but only runs once the owner has dropped back below it.
	select {
	case err := <-lowDone:
		if err != kerrors.ErrTimeout {
			t.Fatalf("low-waiter TryLockFor = %v, want ErrTimeout", err)
		}
	case <-time.After(time.Second):
		t.Fatal("low-waiter TryLockFor did not return after deadline")
	}
}

// TestPriorityProtectRejectsCeilingBelowCaller covers the
// configuration check: locking a PriorityProtect mutex whose ceiling is
// below the caller's own effective priority is a configuration error,
// reported once at lock time rather than silently under-boosting.
func TestPriorityProtectRejectsCeilingBelowCaller(t *testing.T) {
	scheduler.Bootstrap("main", 9)
	m := mutex.New(mutex.Normal, mutex.PriorityProtect, 5)

	if err := m.Lock(); err != kerrors.ErrInvalid {
		t.Fatalf("Lock with ceiling below caller priority = %v, want ErrInvalid", err)
	}
}
