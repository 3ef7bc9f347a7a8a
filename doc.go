// Package carena backs a host allocator arena with one contiguous,
// bump-allocated virtual address window.
//
// # Overview
//
// A continuous arena reserves a single large, size-aligned address window up
// front and satisfies the host allocator's extent requests from it, in strict
// address order. Every pointer the arena ever hands out falls inside the one
// fixed window known at initialization time. This is useful for:
//
//   - Hardware capability models that bound or revoke pointers against a
//     reference region
//   - O(1) "is this pointer mine" classification
//   - Keeping all allocations of a subsystem inside one auditable range
//
// # Basic Usage
//
//	m := carena.Initialize(host,
//		carena.WithWindowSize(1<<30),
//	)
//
//	// Thin pass-throughs to the host allocator, pinned to this arena
//	// with the host's per-thread cache disabled.
//	p := m.AllocateAligned(4096, 4096)
//	p = m.Reallocate(p, 8192)
//	m.Free(p)
//
//	// O(1) classification against the reserved window.
//	if m.Contains(p, 8192) {
//		// p came from this arena's window
//	}
//
// # Address-Space Discipline
//
// The window is reserved once, with no access rights and no physical backing,
// and is never released. Extents are carved from it by advancing a bump
// cursor that only ever moves forward: address space handed to the host
// allocator is never returned to the available pool, even after the host
// destroys or purges the extent. Destroyed extents are re-protected to the
// original guard state, so stray accesses fault deterministically instead of
// landing on recycled memory.
//
// # Thread Safety
//
// The host allocator may invoke the extent hooks from any number of threads
// with no coordination of its own. One process-wide mutex serializes every
// hook body, covering both the cursor update and the mapping syscalls.
// The pass-through allocation methods are safe for concurrent use.
//
// # Capability Hardware
//
// On hardware with compressed capability encodings, extent sizes and
// alignments are widened to the nearest exactly-representable values before
// the cursor advances, so a capability's enforced bounds never undershoot the
// mapped range. The capability runtime is consumed through the Capability
// interface; platforms without the hardware use the no-op implementation and
// run the identical core algorithm.
//
// # Error Model
//
// Exhausting the window, an OS refusal to map a candidate range, and
// fixed-address requests are ordinary failures reported to the host allocator
// as a null extent. Everything else - reservation failure, registration
// rejection, hook preconditions violated, a mapping failure inside destroy or
// purge - is treated as unrecoverable and panics.
package carena
