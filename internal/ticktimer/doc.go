// Package ticktimer implements the monotonic tick clock and the ordered
// queue of sleeping/timed-waiting threads keyed by wakeup tick.
// Grounded on a tinygo-flavored sleep queue
// (andypeng2015-tinygo__scheduler_cores.go addSleepTask: insertion sorted
// by wakeup time) and QubicOS-Spark's tick broadcast
// (QubicOS-Spark__kernel.go TickTo/tickCond).
package ticktimer
