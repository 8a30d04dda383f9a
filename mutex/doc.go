// Package mutex implements a recursive/error-checking/normal mutex
// under the None, PriorityInheritance and PriorityProtect
// locking protocols. Priority inheritance is the centerpiece: an owner's
// effective priority is boosted to the highest of its waiters and the
// boost is propagated transitively through chains of blocked owners, the
// one piece of this module with no direct analog upstream (Go's
// sync.Mutex has no inheritance), so the propagation chain is original
// code written in the same idiom — wait-list splice mechanics
// generalized from the runtime semaphore's wakeup protocol — rather than
// adapted from any one existing function. Propagation scenarios (binary
// inversion, transitive chains, setPriority landing on a blocked waiter)
// follow the classic priority-inheritance mutex test suite shape.
package mutex
