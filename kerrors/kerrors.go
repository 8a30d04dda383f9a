// Package kerrors defines the small, closed set of error kinds returned at
// the kernel API boundary. Kernel code
// never panics and never logs on a normal control path (only core.Throw,
// for a broken invariant, prints and panics); every primitive reports its
// outcome as one of these sentinel values (or nil for "ok"), composable
// with errors.Is.
package kerrors

import "errors"

var (
	// ErrAgain is returned by a non-blocking call that would otherwise block.
	ErrAgain = errors.New("kernel: operation would block")

	// ErrBusy is returned by tryLock when the mutex is already owned.
	ErrBusy = errors.New("kernel: resource busy")

	// ErrTimeout is returned when a deadline elapses before the wait is satisfied.
	ErrTimeout = errors.New("kernel: timed out")

	// ErrCanceled is returned to a waiter removed from a wait list other than by
	// normal wake or timeout.
	ErrCanceled = errors.New("kernel: wait canceled")

	// ErrPerm is returned for ownership or recursion-count violations
	// (unlock by non-owner, recursive underflow).
	ErrPerm = errors.New("kernel: operation not permitted")

	// ErrDeadlock is returned by an ErrorChecking mutex on re-lock by its owner.
	ErrDeadlock = errors.New("kernel: deadlock detected")

	// ErrOverflow is returned when a counter or recursion ceiling is exceeded.
	ErrOverflow = errors.New("kernel: overflow")

	// ErrInvalid is returned for a malformed argument or configuration
	// (e.g. a PriorityProtect ceiling below the caller's priority).
	ErrInvalid = errors.New("kernel: invalid argument")
)
