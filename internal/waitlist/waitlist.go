package waitlist

import "github.com/distortos-go/kernel/internal/core"

// List is a priority-ordered, FIFO-among-equals list of blocked threads.
// The zero value is an empty list.
type List struct {
	head, tail *core.WaitNode
	len        int
}

// Len reports the number of waiters currently queued.
func (l *List) Len() int { return l.len }

// Empty reports whether the list has no waiters.
func (l *List) Empty() bool { return l.head == nil }

// Head returns the highest-priority waiter without removing it, or nil.
func (l *List) Head() *core.WaitNode { return l.head }

// Insert adds n in priority order: n.Thread.EffectivePriority descending,
// and after every existing node of equal priority. O(n).
func (l *List) Insert(n *core.WaitNode) {
	n.Queue = l
	pri := n.Thread.EffectivePriority

	var prev *core.WaitNode
	cur := l.head
	for cur != nil && cur.Thread.EffectivePriority >= pri {
		prev = cur
		cur = cur.Next
	}

	n.Prev = prev
	n.Next = cur
	if prev != nil {
		prev.Next = n
	} else {
		l.head = n
	}
	if cur != nil {
		cur.Prev = n
	} else {
		l.tail = n
	}
	l.len++
}

// RemoveFirst pops and returns the highest-priority waiter, or nil if empty.
func (l *List) RemoveFirst() *core.WaitNode {
	n := l.head
	if n == nil {
		return nil
	}
	l.Remove(n)
	return n
}

// Remove detaches n from the list in O(1), used by cancel and timeout.
// n must currently belong to l.
func (l *List) Remove(n *core.WaitNode) {
	if n.Prev != nil {
		n.Prev.Next = n.Next
	} else if l.head == n {
		l.head = n.Next
	}
	if n.Next != nil {
		n.Next.Prev = n.Prev
	} else if l.tail == n {
		l.tail = n.Prev
	}
	n.Next, n.Prev, n.Queue = nil, nil, nil
	l.len--
}

// Reinsert detaches n and re-inserts it, restoring priority order after
// n.Thread's effective priority changed.
func (l *List) Reinsert(n *core.WaitNode) {
	l.Remove(n)
	l.Insert(n)
}

// MaxPriority returns the highest effective priority currently queued, or
// core.IdlePriority if the list is empty. Mutexes use this as the
// MaxWaiterPriority callback on their core.MutexLink.
func (l *List) MaxPriority() core.Priority {
	if l.head == nil {
		return core.IdlePriority
	}
	return l.head.Thread.EffectivePriority
}
