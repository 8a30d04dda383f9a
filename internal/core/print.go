package core

// Throw reports a broken kernel invariant. Kernel code has no throwing path
// and never logs on any normal
// control path; Throw exists only for the handful of conditions that mean
// the data model itself is inconsistent — a corrupted wait list, a mutex
// unlocked by a thread that never owned it bypassing the type checks, or a
// thread terminating while it still holds a mutex. This mirrors the runtime's minimal
// println-based fatal path (Throw/Gothrow in print1.go) rather than
// pulling in a logging library: the ambient stack here is "print one
// line and stop", not structured logging.
func Throw(reason string) {
	println("kernel: fatal:", reason)
	panic("kernel: fatal: " + reason)
}
