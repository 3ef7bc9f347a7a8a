package carena

// Range predicates gating every hook's preconditions. All three read the
// shared cursor, so callers must hold the Manager mutex.

// inWindow reports whether [addr, addr+size) lies within the reserved
// window, endpoints inclusive, with no pointer-arithmetic wraparound.
func (m *Manager) inWindow(addr, size uintptr) bool {
	if m.mu.TryLock() {
		m.mu.Unlock()
		panic("carena: range check without the lock held")
	}

	start := addr
	end := addr + size
	if end < start {
		return false
	}

	if m.caps.Enabled() {
		// Diagnostic only; the capability hardware enforces the boundary.
		if !m.caps.Tagged(start) || !m.caps.Tagged(m.base) {
			panic("carena: untagged address in range check")
		}
	}

	return start >= m.base && start <= m.end &&
		end >= m.base && end <= m.end
}

// inAllocated reports whether [addr, addr+size) lies within the portion of
// the window already handed out to the host allocator.
func (m *Manager) inAllocated(addr, size uintptr) bool {
	return m.inWindow(addr, size) && addr+size <= m.cursor
}

// inAvailable reports whether [addr, addr+size) lies within the portion of
// the window never yet handed out.
func (m *Manager) inAvailable(addr, size uintptr) bool {
	return m.inWindow(addr, size) && addr >= m.cursor
}

// alignUp rounds v up to the next multiple of align. align must be a power
// of two. Wraps to a smaller value on overflow; callers catch that through
// the range predicates.
func alignUp(v, align uintptr) uintptr {
	return (v + align - 1) &^ (align - 1)
}

// isPowerOfTwo reports whether v has exactly one bit set.
func isPowerOfTwo(v uintptr) bool {
	return v != 0 && v&(v-1) == 0
}

// isZeroOrPowerOfTwo reports whether v has at most one bit set.
func isZeroOrPowerOfTwo(v uintptr) bool {
	return v&(v-1) == 0
}
