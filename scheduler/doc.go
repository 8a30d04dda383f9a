// Package scheduler is the scheduler core: it
// owns the single source of truth for "who is running", the ready list, and
// the tick timer queue, and exposes the primitives every blocking
// primitive (semaphore, mutex, thread) is built from: Block-style
// wait-list registration, Unblock, Yield, CurrentThread, and Reschedule.
//
// Hosted execution model: this module runs as an ordinary Go program, not
// on bare Cortex-M silicon, so "the running thread" is modeled as one
// goroutine per core.Thread, gated by a per-thread resume token
// (core.Thread.Resume). At most one gated goroutine ever holds the token;
// every other thread's goroutine is parked on its own token inside
// Suspend/Checkpoint. All bookkeeping mutation happens inside
// internal/critical sections regardless of host vs. target. See DESIGN.md,
// package scheduler.
package scheduler
