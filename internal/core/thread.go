package core

// WaitQueue is implemented by whatever object owns a wait list a thread is
// currently blocked on (internal/waitlist.List directly for a semaphore, or
// a *mutex.Mutex itself, which wraps a waitlist.List with priority-
// inheritance bookkeeping). It lets generic code — the timer-expiry and
// setPriority paths in package scheduler — remove or reinsert a thread
// without knowing which concrete synchronization object it is blocked on,
// the same way a Sudog is spliced out of a semaRoot by
// runtime/internal/sem/sema.go without the G needing to know what a
// semaRoot is.
type WaitQueue interface {
	// Remove detaches n from the queue in constant time via the thread's
	// own token, called by the timeout/cancel path.
	Remove(n *WaitNode)

	// Reinsert detaches and re-inserts n to restore priority order after
	// n.Thread's effective priority changed.
	Reinsert(n *WaitNode)
}

// WaitNode is the intrusive token a Thread uses to be a member of at most
// one wait list at a time, the analog of the runtime's Sudog.
type WaitNode struct {
	Thread *Thread
	Next   *WaitNode
	Prev   *WaitNode

	// Queue is the wait list n currently belongs to, nil when not linked.
	Queue WaitQueue
}

// MutexLink is the intrusive node a PI mutex uses to be a member of its
// owner's unordered owned-mutex collection. It is embedded directly inside
// the owning mutex.Mutex value; Thread only ever holds the head pointer, so
// there is no owner<->mutex reference cycle, and a mutex going out of scope
// while still owned never needs the owner to go find and unlink it.
type MutexLink struct {
	Next, Prev *MutexLink

	// MaxWaiterPriority reports the highest effective priority currently
	// waiting on the mutex this link is embedded in, or IdlePriority if
	// none. Set by mutex.New when the mutex is constructed; reading
	// it is how effective-priority recomputation stays agnostic of the
	// mutex package's internals.
	MaxWaiterPriority func() Priority
}

// Thread is the kernel's thread control block.
type Thread struct {
	ID   uint32
	Name string

	// BasePriority is the priority last set by the user.
	BasePriority Priority

	// EffectivePriority is max(BasePriority, highest boost from any PI
	// mutex this thread currently owns).
	EffectivePriority Priority

	State State

	// Wait is this thread's membership token in the wait list it is
	// blocked on, nil whenever State != Blocked.
	Wait *WaitNode

	// Owned is the head of the unordered collection of PI mutexes this
	// thread currently holds; insertion order carries no meaning.
	Owned *MutexLink

	// WakeResult carries the reason a blocked thread was resumed (nil,
	// kerrors.ErrTimeout, or kerrors.ErrCanceled), set by whoever calls
	// scheduler.Unblock and read once the thread resumes past Block.
	WakeResult error

	// Ready-list intrusive links (internal/readylist), valid only while
	// State == Runnable and the thread is not currently running.
	ReadyNext, ReadyPrev *Thread

	// ReadyBucket is the priority bucket t is linked into, recorded at
	// Insert time. Removal must index by this rather than by
	// EffectivePriority, since priority-inheritance boost propagation can
	// change EffectivePriority while t is still physically linked into the
	// bucket it was inserted at.
	ReadyBucket Priority

	// Timer-queue intrusive link (internal/ticktimer) and absolute wakeup
	// tick, valid only while the thread has a pending deadline.
	TimerNext  *Thread
	WakeupTick uint64

	// Resume is the scheduling gate: exactly one pending signal means "it
	// is now this thread's turn to run". See scheduler.Checkpoint.
	Resume chan struct{}
}

// NewThread allocates a TCB in the Created state. Callers (package thread)
// are responsible for giving it an ID, entry point and stack.
func NewThread(id uint32, name string, basePriority Priority) *Thread {
	return &Thread{
		ID:                id,
		Name:              name,
		BasePriority:      basePriority,
		EffectivePriority: basePriority,
		State:             Created,
		Resume:            make(chan struct{}, 1),
	}
}

// AddOwnedMutex links m into t's owned-mutex collection.
func (t *Thread) AddOwnedMutex(m *MutexLink) {
	m.Next = t.Owned
	m.Prev = nil
	if t.Owned != nil {
		t.Owned.Prev = m
	}
	t.Owned = m
}

// RemoveOwnedMutex unlinks m from t's owned-mutex collection.
func (t *Thread) RemoveOwnedMutex(m *MutexLink) {
	if m.Prev != nil {
		m.Prev.Next = m.Next
	} else if t.Owned == m {
		t.Owned = m.Next
	}
	if m.Next != nil {
		m.Next.Prev = m.Prev
	}
	m.Next, m.Prev = nil, nil
}

// RecomputeEffectivePriority sets EffectivePriority to the ceiling over
// every currently owned PI mutex's highest waiter, maxed with BasePriority.
// It returns whether the value changed.
func (t *Thread) RecomputeEffectivePriority() bool {
	ceiling := t.BasePriority
	for m := t.Owned; m != nil; m = m.Next {
		if m.MaxWaiterPriority == nil {
			continue
		}
		ceiling = Max(ceiling, m.MaxWaiterPriority())
	}
	if ceiling == t.EffectivePriority {
		return false
	}
	t.EffectivePriority = ceiling
	return true
}

// HasOwnedMutexes reports whether t is holding any PI mutex, used by the
// terminate path to refuse terminating a thread that still owns one.
func (t *Thread) HasOwnedMutexes() bool {
	return t.Owned != nil
}
