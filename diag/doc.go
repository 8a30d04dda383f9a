// Package diag is the block-time diagnostics extension described in
// SPEC_FULL.md §4.8: semaphore, mutex and queue waits may optionally record
// how long the calling thread actually blocked, keyed by a caller-supplied
// object label, and the accumulated samples can be exported as a
// github.com/google/pprof/profile.Profile for inspection with
// `go tool pprof`. Grounded on the Go runtime's semaphore block-profile
// bookkeeping (Releasetime, Blockprofilerate, Blockevent, saveblockevent),
// which feeds the same kind of wait-duration sample into runtime/pprof's
// block profile — this package is the equivalent plumbing for the
// synchronization primitives in this module, using the public profile
// data structure directly rather than the runtime-internal format that
// bookkeeping feeds into.
package diag
