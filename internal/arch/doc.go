// Package arch is the architecture port: the set of
// primitives the kernel relies on but does not implement itself — masking
// maskable interrupts and requesting a context switch. On real hardware this is ARM Cortex-M
// assembly; this module only ever runs hosted, so the single implementation,
// Hosted, stands in for that assembly with a real OS primitive
// (golang.org/x/sys/unix signal masking) rather than a no-op, so tests
// exercise genuine mask/restore semantics. See DESIGN.md, internal/arch.
package arch
