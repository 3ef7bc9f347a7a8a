package carena

// WindowBase returns the start address of the reserved window.
func (m *Manager) WindowBase() uintptr { return m.base }

// WindowSize returns the size of the reserved window in bytes.
func (m *Manager) WindowSize() uintptr { return m.end - m.base }

// AllocatedBytes returns the number of window bytes already handed out to
// the host allocator, including bytes skipped to satisfy extent alignment.
// Monotonically non-decreasing: destroy and purge never give bytes back.
func (m *Manager) AllocatedBytes() uintptr {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor - m.base
}

// AvailableBytes returns the number of window bytes never yet handed out.
func (m *Manager) AvailableBytes() uintptr {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.end - m.cursor
}

// Utilization returns the ratio of handed-out bytes to window size (0.0 to
// 1.0).
func (m *Manager) Utilization() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(m.cursor-m.base) / float64(m.end-m.base)
}

// Metrics returns a consistent snapshot of region statistics.
func (m *Manager) Metrics() RegionMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	size := m.end - m.base
	allocated := m.cursor - m.base
	return RegionMetrics{
		WindowBase:  m.base,
		WindowSize:  size,
		Allocated:   allocated,
		Available:   size - allocated,
		Utilization: float64(allocated) / float64(size),
		ArenaIndex:  m.arena,
	}
}

// RegionMetrics contains statistical information about the reserved window.
type RegionMetrics struct {
	WindowBase  uintptr // Start address of the window
	WindowSize  uintptr // Total window size in bytes
	Allocated   uintptr // Bytes handed out, alignment gaps included
	Available   uintptr // Bytes never yet handed out
	Utilization float64 // Ratio of handed-out bytes to window size (0.0-1.0)
	ArenaIndex  uint32  // Arena identifier assigned by the host allocator
}
