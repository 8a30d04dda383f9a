package ticktimer

import "github.com/distortos-go/kernel/internal/core"

// Queue is the monotonic tick counter plus the ordered queue of threads
// waiting for a deadline (sleepUntil, or a timed semaphore/mutex wait).
// Sorted ascending by WakeupTick so Advance pops every due thread in
// wakeup order without a full scan: multiple threads sharing a deadline
// must all wake on the same tick, and priority order among them is
// restored by the caller re-inserting them into the ready list, which is
// itself priority-ordered.
type Queue struct {
	now  uint64
	head *core.Thread
}

// Now returns the current tick count.
func (q *Queue) Now() uint64 { return q.now }

// Add inserts t into the timer queue, keyed by the given absolute deadline.
func (q *Queue) Add(t *core.Thread, deadline uint64) {
	t.WakeupTick = deadline
	var prev *core.Thread
	cur := q.head
	for cur != nil && cur.WakeupTick <= deadline {
		prev = cur
		cur = cur.TimerNext
	}
	t.TimerNext = cur
	if prev != nil {
		prev.TimerNext = t
	} else {
		q.head = t
	}
}

// Remove detaches t from the timer queue if present (used when a wait is
// satisfied before its deadline, or canceled).
func (q *Queue) Remove(t *core.Thread) {
	var prev *core.Thread
	cur := q.head
	for cur != nil {
		if cur == t {
			if prev != nil {
				prev.TimerNext = cur.TimerNext
			} else {
				q.head = cur.TimerNext
			}
			t.TimerNext = nil
			return
		}
		prev = cur
		cur = cur.TimerNext
	}
}

// Advance moves the clock forward by one tick and returns every thread
// whose deadline is now due, in ascending-deadline order, removing them
// from the queue.
func (q *Queue) Advance() []*core.Thread {
	q.now++
	var due []*core.Thread
	for q.head != nil && q.head.WakeupTick <= q.now {
		t := q.head
		q.head = t.TimerNext
		t.TimerNext = nil
		due = append(due, t)
	}
	return due
}
