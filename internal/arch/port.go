package arch

// State is the opaque interrupt-mask state returned by MaskInterrupts and
// consumed by RestoreInterrupts. Callers must treat it as opaque.
type State uint32

// Port is the architecture collaborator. It is not part
// of the synchronization core proper: the core only ever calls through this
// interface, never assumes a particular CPU.
type Port interface {
	// MaskInterrupts disables maskable interrupts and returns a State to
	// hand back to RestoreInterrupts. The hosted port always returns 0 and
	// does not support nesting: it holds a non-reentrant lock from
	// MaskInterrupts until RestoreInterrupts, which unmasks unconditionally.
	MaskInterrupts() State

	// RestoreInterrupts reinstates a previously captured mask state.
	RestoreInterrupts(prior State)

	// RequestContextSwitch schedules a context switch at the earliest safe
	// point. On real hardware this pends a supervisor exception; here it
	// releases the next thread's resume token.
	RequestContextSwitch(resume func())
}

// Current is the architecture port in effect for this build. There is
// exactly one implementation (Hosted) because this module never targets
// real Cortex-M hardware; board/driver layers that would select among
// multiple ports at compile time are out of scope.
var Current Port = Hosted()
