// Package thread is the user-facing thread handle: create/start, join,
// sleep, and priority get/set, each a thin wrapper over package
// scheduler's core.Thread-level primitives. Grounded on
// the Go runtime scheduler's goroutine-launch shape: a Thread is
// created with its entry point already bound, exactly like a goroutine,
// and Join is implemented the same way package semaphore and package mutex
// implement blocking — an internal/waitlist.List of waiters woken once the
// thread's entry function returns.
package thread
