// Package readylist implements the scheduler's ready list:
// priority-ordered runnable threads, round-robin within a
// level. It picks the head of the highest non-empty priority bucket in
// O(1) using a bitmap over core.PriorityLevels scanned with math/bits, the
// same ready-bitmap technique real RTOS schedulers use, generalized from
// a single FIFO run queue to per-priority-level buckets.
package readylist
