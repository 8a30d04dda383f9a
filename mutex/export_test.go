package mutex

import "github.com/distortos-go/kernel/internal/core"

// Owner exposes the mutex's current owner for white-box tests, the same
// role sync/export_test.go plays for *sync.Mutex internals in the
// standard library.
func (m *Mutex) Owner() *core.Thread { return m.owner }

// WaiterCount exposes the number of threads currently queued for Lock.
func (m *Mutex) WaiterCount() int { return m.waiters.Len() }
