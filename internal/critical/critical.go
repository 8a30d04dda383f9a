package critical

import "github.com/distortos-go/kernel/internal/arch"

// Section is a scoped interrupt-masking lock acquisition. A C++ kernel
// typically relies on RAII for guaranteed release on every exit path,
// including exceptions; the idiomatic Go shape is this value returned
// from Enter, released with a deferred call to Exit:
//
//	s := critical.Enter()
//	defer s.Exit()
type Section struct {
	prior arch.State
}

// Enter masks interrupts and returns a Section that must be closed with
// Exit. Kernel code follows the convention that only a handful of
// outermost entry points call Enter at all (the nesting allowance is
// satisfied at the architecture level for ports that run on a
// genuine uniprocessor; see internal/arch/hosted.go for why the hosted
// port does not additionally need same-goroutine re-entrancy); everything
// else assumes a Section is already open and must not call Enter again
// before the matching Exit.
func Enter() Section {
	return Section{prior: arch.Current.MaskInterrupts()}
}

// Exit restores the interrupt mask captured by the matching Enter. Calling
// Exit more than once for the same Section is a programming error; the
// architecture port does not guard against it, exactly as a real
// mask/restore register pair would not.
func (s Section) Exit() {
	arch.Current.RestoreInterrupts(s.prior)
}
