package arch

import (
	"sync"

	"golang.org/x/sys/unix"
)

// hostedPort realizes Port on a POSIX host. "Maskable interrupts" are stood
// in for by two real signals: SIGALRM, the source of our tick clock, and
// SIGUSR1, the signal a simulated board-level ISR would raise to post a
// semaphore asynchronously. Masking them with unix.PthreadSigmask is the same shape as
// a futex-backed lockFutex/unlockFutex (tinygo-style
// __scheduler_cores.go), which pairs interrupt.Disable()/Restore() around a
// spinlock.
//
// Real masked-interrupt hardware gives nested enter/exit for free: a single
// core saves and restores one primask register, so two nested sections on
// the one core that can ever be executing never actually contend. A hosted
// process has no such uniprocessor guarantee — goroutines are real OS
// threads the Go runtime may run concurrently — so mu is held for the
// entire section, from MaskInterrupts to the matching RestoreInterrupts,
// making it genuine cross-goroutine mutual exclusion rather than just a
// counter. The kernel packages built on top (scheduler, semaphore, mutex)
// follow the discipline that only a small set of outermost entry points
// call critical.Enter at all; everything else assumes the lock is already
// held (see DESIGN.md, package scheduler), so mu is never re-locked by the
// same goroutine and does not need to be reentrant.
type hostedPort struct {
	mu sync.Mutex
}

var maskedSignals = unix.Sigset_t{}

func init() {
	// SIGALRM and SIGUSR1 stand in for the tick interrupt and an
	// ISR-originated post, respectively; see doc comment above.
	addSignal(&maskedSignals, unix.SIGALRM)
	addSignal(&maskedSignals, unix.SIGUSR1)
}

// Hosted returns the only Port implementation this module ships: a
// POSIX-signal-backed stand-in for real Cortex-M interrupt masking.
func Hosted() Port {
	return &hostedPort{}
}

func (p *hostedPort) MaskInterrupts() State {
	p.mu.Lock()
	_ = unix.PthreadSigmask(unix.SIG_BLOCK, &maskedSignals, nil)
	return 0
}

func (p *hostedPort) RestoreInterrupts(prior State) {
	_ = unix.PthreadSigmask(unix.SIG_UNBLOCK, &maskedSignals, nil)
	p.mu.Unlock()
}

func (p *hostedPort) RequestContextSwitch(resume func()) {
	// On hardware this pends a supervisor exception; hosted, the context
	// switch trigger is just releasing the target thread's resume token,
	// which the scheduler package supplies as resume.
	resume()
}

func addSignal(set *unix.Sigset_t, sig unix.Signal) {
	// unix.Sigset_t.Val is the platform-defined bit field (see
	// golang.org/x/sys/unix); x/sys exposes no helper to set a bit in it, so
	// we set it directly using the same encoding the kernel uses.
	bit := uint(sig) - 1
	set.Val[bit/64] |= 1 << (bit % 64)
}
