// Package semaphore implements a counting semaphore: a
// non-negative counter with an upper bound, backed by internal/waitlist.
// Grounded on the runtime's Semacquire/Semrelease, adapted from "counter
// with an easy-case atomic CAS" to "counter plus priority-ordered wait
// list with direct permit transfer", so that a posted
// permit goes straight to the highest-priority waiter rather than ever
// touching the counter (the ordering guarantee a plain atomic counter
// cannot give).
package semaphore
