package core

// Compile-time configuration, selected at build time with no runtime
// parsing, mirrored from the runtime's use of plain untyped
// consts like maxstacksize/semTabSize rather than a config file parser.

// PriorityLevels is the number of distinct priority levels the ready list
// and every priority-ordered wait list support: [0, PriorityLevels).
const PriorityLevels = int(MaxPriority) + 1

// The three switches below name the optional mutex types and protocol.
// No package reads them: package mutex always compiles in every type and
// protocol, whatever their values.
const (
	// RecursiveMutexesEnabled names the Recursive mutex type switch.
	RecursiveMutexesEnabled = true

	// ErrorCheckingMutexesEnabled names the ErrorChecking type switch.
	ErrorCheckingMutexesEnabled = true

	// PriorityProtectEnabled names the PriorityProtect protocol switch.
	PriorityProtectEnabled = true
)

// DefaultTickPeriodNanoseconds is the nominal tick period. No package reads
// it: ticktimer.Queue counts ticks without any notion of their period, so
// units and period stay opaque to the kernel.
const DefaultTickPeriodNanoseconds = 1_000_000 // 1 kHz tick, a common RTOS default

// MaxRecursionCount bounds a Recursive mutex's recursion count (the first
// Lock plus every re-lock by its owner): a Lock that finds the count already
// at this value reports kerrors.ErrOverflow. On a real target
// this count lives in a narrow field alongside the rest of the TCB; 255
// keeps that same narrow-counter discipline on a hosted build.
const MaxRecursionCount = 255
