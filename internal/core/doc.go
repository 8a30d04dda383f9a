// Package core holds the shared kernel data model: the thread
// control block (Thread), the intrusive wait-list membership token
// (WaitNode), and the intrusive owned-mutex link (MutexLink). It is the
// analog of the runtime's "type g struct" / "type sudog struct" split:
// every other package in this module (waitlist, readylist, ticktimer,
// scheduler, semaphore, mutex, thread) imports core for these types, and
// core imports none of them back, exactly the shape that split enforces
// between the scheduler and the semaphore implementation upstream.
package core
