// Package critical provides the interrupt-masking lock every kernel
// mutation runs under: a scoped acquisition that disables
// maskable interrupts on entry and restores the prior mask on every exit
// path. It is not re-entrant: on the hosted port a second Enter before the
// matching Exit blocks forever, so only outermost entry points call Enter
// and the mask state is not reference-counted. There is no other
// synchronization primitive
// between kernel code and simulated ISRs — every package in
// this module that touches shared kernel state (ready list, wait lists,
// timer queue, TCB fields, mutex/semaphore fields) does so only inside a
// Section obtained from Enter.
package critical
