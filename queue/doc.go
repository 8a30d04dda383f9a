// Package queue implements a bounded FIFO queue: a
// fixed-capacity ring buffer coordinated by a pair of counting semaphores,
// one tracking free slots and one tracking filled slots, so Push blocks on
// a full queue and Pop blocks on an empty one with the same priority-
// ordered wakeup fairness as package semaphore.
//
// The push/pop sequence follows the classic pattern: wait on the semaphore
// for the direction being performed, run the transfer inside an
// interrupt-masking section, advance the ring index, then post the other
// semaphore. A C FIFO core typically shares one function between push and
// pop via a functor and a pair of semaphore pointers chosen by the caller;
// this package has no untyped element storage or functor indirection to
// generalize over, so it is expressed as two concrete methods, Push and
// Pop, over a type-parameterized ring buffer instead.
package queue
