package carena

// The host allocator customizes an arena's memory source through a fixed
// table of extent hooks. Operations this arena cannot support are left nil,
// signaling the host allocator to fall back to its defaults or avoid them.
//
// Every hook body runs entirely under the Manager mutex: the host allocator
// may invoke hooks concurrently from any of its callers' threads.

// AllocFunc requests a new extent of size bytes at the given power-of-two
// alignment. newAddr, when nonzero, asks for a specific fixed address. The
// hook sets *zero and *commit to describe the returned memory. A zero return
// means the request cannot be satisfied.
type AllocFunc func(hooks *ExtentHooks, newAddr, size, alignment uintptr, zero, commit *bool, arena uint32) uintptr

// DallocFunc returns an extent to the hook owner. Unsupported here.
type DallocFunc func(hooks *ExtentHooks, addr, size uintptr, committed bool, arena uint32) bool

// DestroyFunc permanently retires an extent previously returned by the alloc
// hook.
type DestroyFunc func(hooks *ExtentHooks, addr, size uintptr, committed bool, arena uint32)

// CommitFunc and DecommitFunc toggle physical backing for part of an extent.
// Unsupported here.
type (
	CommitFunc   func(hooks *ExtentHooks, addr, size, offset, length uintptr, arena uint32) bool
	DecommitFunc func(hooks *ExtentHooks, addr, size, offset, length uintptr, arena uint32) bool
)

// PurgeFunc discards the contents of [addr+offset, addr+offset+length) inside
// an extent, leaving the range readable as zeroes on next use. The return
// value reports whether the pages were NOT purged; false means success.
type PurgeFunc func(hooks *ExtentHooks, addr, size, offset, length uintptr, arena uint32) bool

// SplitFunc and MergeFunc divide or join extents. Unsupported here.
type (
	SplitFunc func(hooks *ExtentHooks, addr, size, sizeA, sizeB uintptr, committed bool, arena uint32) bool
	MergeFunc func(hooks *ExtentHooks, addrA, sizeA, addrB, sizeB uintptr, committed bool, arena uint32) bool
)

// ExtentHooks is the callback table handed to the host allocator's
// arena-creation entry point. A nil field opts the arena out of that
// operation.
type ExtentHooks struct {
	Alloc       AllocFunc
	Dalloc      DallocFunc
	Destroy     DestroyFunc
	Commit      CommitFunc
	Decommit    DecommitFunc
	PurgeLazy   PurgeFunc
	PurgeForced PurgeFunc
	Split       SplitFunc
	Merge       MergeFunc
}

// extentAlloc carves the next extent out of the window. Fixed-address and
// zero-size requests are always declined. On success the returned memory is
// freshly mapped read/write, zero-filled, and its addresses were never handed
// out before.
func (m *Manager) extentAlloc(hooks *ExtentHooks, newAddr, size, alignment uintptr, zero, commit *bool, arena uint32) uintptr {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.log.Debug("extent alloc",
		"new_addr", hex(newAddr), "size", size, "alignment", alignment,
		"zero", *zero, "commit", *commit, "arena", arena)

	if newAddr != 0 || size == 0 {
		return 0
	}
	if !isPowerOfTwo(alignment) {
		panic("carena: extent alignment must be a power of two")
	}

	if m.caps.Enabled() {
		// Widen size and alignment to capability-representable values.
		// Widening only, never narrowing: a too-small bound would let the
		// consumer run past the capability's enforced limit undetected.
		alignMask := -alignment
		reprMask := m.caps.RepresentableAlignmentMask(size)
		reprSize := m.caps.RepresentableLength(size)

		if !isZeroOrPowerOfTwo(^reprMask + 1) {
			panic("carena: malformed representable alignment mask")
		}
		if reprSize < size {
			panic("carena: representable length below requested size")
		}

		size = reprSize
		alignment = -(alignMask & reprMask)
		if !isPowerOfTwo(alignment) {
			panic("carena: widened alignment is not a power of two")
		}
	}

	// Align up, not down, so memory already handed out is never reissued.
	candidate := alignUp(m.cursor, alignment)

	if !m.inAvailable(candidate, size) {
		m.log.Debug("extent alloc: window exhausted",
			"candidate", hex(candidate), "size", size, "cursor", hex(m.cursor))
		return 0
	}

	if err := commitRW(m.slice(candidate, size)); err != nil {
		m.log.Debug("extent alloc: mapping failed",
			"candidate", hex(candidate), "size", size, "error", err)
		return 0
	}

	*zero = true
	*commit = true
	m.cursor = candidate + size

	m.log.Debug("extent alloc: mapped",
		"addr", hex(candidate), "size", size, "cursor", hex(m.cursor))

	return candidate
}

// extentDestroy returns an extent to the guard state: no access, backing
// discarded. The cursor does not move; the extent's addresses stay retired
// for the process lifetime.
func (m *Manager) extentDestroy(hooks *ExtentHooks, addr, size uintptr, committed bool, arena uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.log.Debug("extent destroy",
		"addr", hex(addr), "size", size, "committed", committed, "arena", arena)

	if !m.inAllocated(addr, size) {
		panic("carena: destroy of a range outside the allocated region")
	}
	if err := guard(m.slice(addr, size)); err != nil {
		panic("carena: guard remap failed: " + err.Error())
	}
}

// extentPurgeLazy discards part of an extent. This platform has no deferred
// purge, so lazy purges are forced.
func (m *Manager) extentPurgeLazy(hooks *ExtentHooks, addr, size, offset, length uintptr, arena uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.log.Debug("extent purge_lazy",
		"addr", hex(addr), "size", size, "offset", offset, "length", length, "arena", arena)

	return m.purge(addr, size, offset, length)
}

// extentPurgeForced discards part of an extent immediately.
func (m *Manager) extentPurgeForced(hooks *ExtentHooks, addr, size, offset, length uintptr, arena uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.log.Debug("extent purge_forced",
		"addr", hex(addr), "size", size, "offset", offset, "length", length, "arena", arena)

	return m.purge(addr, size, offset, length)
}

// purge replaces [addr+offset, addr+offset+length) with fresh zero-filled
// backing. Caller holds the mutex. Always reports success; a mapping failure
// here is a programming or environment error, not a recoverable condition.
func (m *Manager) purge(addr, size, offset, length uintptr) bool {
	if offset > size || offset+length < offset || offset+length > size {
		panic("carena: purge range outside its extent")
	}
	if !m.inAllocated(addr, size) {
		panic("carena: purge of a range outside the allocated region")
	}
	start := addr + offset
	if !m.inAllocated(start, length) {
		panic("carena: purge sub-range outside the allocated region")
	}

	if err := refresh(m.slice(start, length)); err != nil {
		panic("carena: purge remap failed: " + err.Error())
	}

	return false
}
