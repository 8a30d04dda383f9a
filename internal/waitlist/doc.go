// Package waitlist implements the generic blocked-thread list every
// synchronization object in this module is built on: a list
// ordered by effective priority, FIFO among equals. It generalizes the
// runtime semaphore wait queue's splice mechanics (which only ever append
// at the tail) to priority-ordered insertion, since this kernel's wait
// lists must wake the highest-priority waiter first, not the oldest.
package waitlist
