package readylist

import (
	"math/bits"

	"github.com/distortos-go/kernel/internal/core"
)

const bitmapWords = (core.PriorityLevels + 63) / 64

// List is the priority-bucketed ready list: one circular, intrusive queue
// per priority level (round-robin within a level), plus a
// bitmap of non-empty levels so the highest non-empty bucket is found in
// O(1) instead of scanning all 256 levels.
type List struct {
	buckets [core.PriorityLevels]bucket
	bitmap  [bitmapWords]uint64
	count   int
}

type bucket struct {
	head, tail *core.Thread
}

// Len reports the total number of runnable threads queued (excluding the
// currently-running thread, which is not a member of the ready list).
func (l *List) Len() int { return l.count }

// Insert adds t at the tail of its priority level's bucket, recording the
// bucket on t.ReadyBucket for a later Remove to find it by:
// t.EffectivePriority may change again before t is removed.
func (l *List) Insert(t *core.Thread) {
	t.ReadyBucket = t.EffectivePriority
	b := &l.buckets[t.ReadyBucket]
	t.ReadyPrev = b.tail
	t.ReadyNext = nil
	if b.tail != nil {
		b.tail.ReadyNext = t
	} else {
		b.head = t
		l.setBit(t.ReadyBucket)
	}
	b.tail = t
	l.count++
}

// RemoveFirst pops the head of the highest non-empty priority bucket, or
// returns nil if the ready list is empty.
func (l *List) RemoveFirst() *core.Thread {
	pri, ok := l.highest()
	if !ok {
		return nil
	}
	t := l.buckets[pri].head
	l.Remove(t)
	return t
}

// Remove detaches t from whatever bucket it is linked into, found via
// t.ReadyBucket rather than t.EffectivePriority (see Insert).
func (l *List) Remove(t *core.Thread) {
	b := &l.buckets[t.ReadyBucket]
	if t.ReadyPrev != nil {
		t.ReadyPrev.ReadyNext = t.ReadyNext
	} else if b.head == t {
		b.head = t.ReadyNext
	}
	if t.ReadyNext != nil {
		t.ReadyNext.ReadyPrev = t.ReadyPrev
	} else if b.tail == t {
		b.tail = t.ReadyPrev
	}
	t.ReadyNext, t.ReadyPrev = nil, nil
	if b.head == nil {
		l.clearBit(t.ReadyBucket)
	}
	l.count--
}

// Peek returns the head of the highest non-empty bucket without removing it.
func (l *List) Peek() *core.Thread {
	pri, ok := l.highest()
	if !ok {
		return nil
	}
	return l.buckets[pri].head
}

func (l *List) setBit(p core.Priority) {
	l.bitmap[p/64] |= 1 << (uint(p) % 64)
}

func (l *List) clearBit(p core.Priority) {
	l.bitmap[p/64] &^= 1 << (uint(p) % 64)
}

// highest returns the highest priority level with a non-empty bucket.
func (l *List) highest() (core.Priority, bool) {
	for w := bitmapWords - 1; w >= 0; w-- {
		word := l.bitmap[w]
		if word == 0 {
			continue
		}
		bit := 63 - bits.LeadingZeros64(word)
		return core.Priority(w*64 + bit), true
	}
	return 0, false
}
