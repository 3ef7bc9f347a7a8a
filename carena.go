package carena

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"
)

// DefaultWindowSize is the default reserved window size (1 GiB).
const DefaultWindowSize = 1 << 30

// Manager owns one reserved address window and the arena registered against
// it. There is one Manager per process in the reference configuration; it is
// created by Initialize and lives until process exit. There is no teardown.
type Manager struct {
	mu sync.Mutex // serializes the cursor and all mapping syscalls

	mem []byte  // raw reservation, guard-protected at birth
	raw uintptr // address of mem[0]

	base   uintptr // window start, aligned to the window size
	end    uintptr // window end (base + window size)
	cursor uintptr // boundary between handed-out and untouched space

	host  HostAllocator
	hooks *ExtentHooks
	arena uint32

	caps Capability
	log  *slog.Logger
}

// Config holds Manager construction parameters. Use the Option helpers.
type Config struct {
	WindowSize uintptr
	Capability Capability
	Logger     *slog.Logger
}

// Option configures a Manager at initialization time.
type Option func(*Config)

func defaultConfig() *Config {
	return &Config{
		WindowSize: DefaultWindowSize,
		Capability: NoCapability{},
		Logger:     slog.Default(),
	}
}

// WithWindowSize sets the reserved window size. The size must be a power of
// two; the window is aligned to it.
func WithWindowSize(size uintptr) Option {
	return func(c *Config) { c.WindowSize = size }
}

// WithCapability sets the hardware capability runtime. The default is
// NoCapability, which disables representability widening and tag checks.
func WithCapability(caps Capability) Option {
	return func(c *Config) { c.Capability = caps }
}

// WithLogger sets the logger used for per-hook debug lines.
func WithLogger(log *slog.Logger) Option {
	return func(c *Config) { c.Logger = log }
}

var (
	globalMu sync.Mutex
	global   *Manager
)

// Initialize reserves the window, registers the arena with the host
// allocator, and installs the result as the process-wide Manager. It must be
// called exactly once, before any arena traffic exists; calling it twice
// panics. Reservation or registration failure is unrecoverable and panics.
func Initialize(host HostAllocator, opts ...Option) *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global != nil {
		panic("carena: already initialized")
	}
	m, err := newManager(host, opts...)
	if err != nil {
		panic(err)
	}
	global = m
	return m
}

// Default returns the Manager installed by Initialize. It panics if
// Initialize has not run.
func Default() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		panic("carena: not initialized")
	}
	return global
}

// newManager does the real work of Initialize. The window must be fully
// established before CreateArena runs: the host allocator may invoke the
// extent hooks synchronously, from inside the registration call.
func newManager(host HostAllocator, opts ...Option) (*Manager, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if host == nil {
		return nil, fmt.Errorf("carena: nil host allocator")
	}
	if !isPowerOfTwo(cfg.WindowSize) {
		return nil, fmt.Errorf("carena: window size %d is not a power of two", cfg.WindowSize)
	}

	// mmap carries no alignment constraint on most platforms, so reserve
	// twice the window and carve the aligned window out of the middle. The
	// excess stays guard-protected for the process lifetime.
	mem, err := reserve(int(2 * cfg.WindowSize))
	if err != nil {
		return nil, fmt.Errorf("carena: reserve %d bytes: %w", 2*cfg.WindowSize, err)
	}

	raw := uintptr(unsafe.Pointer(&mem[0]))
	base := alignUp(raw, cfg.WindowSize)

	m := &Manager{
		mem:    mem,
		raw:    raw,
		base:   base,
		end:    base + cfg.WindowSize,
		cursor: base,
		host:   host,
		caps:   cfg.Capability,
		log:    cfg.Logger,
	}
	m.hooks = &ExtentHooks{
		Alloc:       m.extentAlloc,
		Dalloc:      nil, // opt out
		Destroy:     m.extentDestroy,
		Commit:      nil, // opt out
		Decommit:    nil, // opt out
		PurgeLazy:   m.extentPurgeLazy,
		PurgeForced: m.extentPurgeForced,
		Split:       nil, // opt out
		Merge:       nil, // opt out
	}

	m.log.Debug("reserved arena window",
		"base", hex(m.base), "end", hex(m.end), "size", cfg.WindowSize)

	index, err := host.CreateArena(m.hooks)
	if err != nil {
		return nil, fmt.Errorf("carena: arena registration: %w", err)
	}
	m.arena = index

	return m, nil
}

// Hooks returns the hook table registered with the host allocator.
func (m *Manager) Hooks() *ExtentHooks { return m.hooks }

// ArenaIndex returns the arena identifier assigned by the host allocator.
func (m *Manager) ArenaIndex() uint32 { return m.arena }

// Contains reports whether [addr, addr+size) lies fully inside the reserved
// window. The window bounds are immutable after initialization, so this is a
// lock-free O(1) classification check.
func (m *Manager) Contains(addr, size uintptr) bool {
	end := addr + size
	if end < addr {
		return false
	}
	return addr >= m.base && end <= m.end
}

// AllocateAligned requests size bytes at the given power-of-two alignment
// from the host allocator, pinned to this arena with the per-thread cache
// disabled. Returns 0 if the host allocator cannot satisfy the request.
func (m *Manager) AllocateAligned(size, alignment uintptr) uintptr {
	if !isPowerOfTwo(alignment) {
		panic("carena: alignment must be a power of two")
	}
	addr := m.host.Mallocx(size, alignment, ArenaFlag(m.arena)|FlagNoTcache)
	if addr != 0 {
		m.checkAllocation(addr, size, alignment)
	}
	return addr
}

// Reallocate resizes a previous allocation through the host allocator.
// Returns 0 if the host allocator cannot satisfy the request, in which case
// the original allocation is untouched.
func (m *Manager) Reallocate(addr, size uintptr) uintptr {
	res := m.host.Rallocx(addr, size, ArenaFlag(m.arena)|FlagNoTcache)
	if res != 0 {
		m.checkAllocation(res, size, 0)
	}
	return res
}

// Free releases a previous allocation through the host allocator.
func (m *Manager) Free(addr uintptr) {
	m.host.Dallocx(addr, FlagNoTcache)
}

// checkAllocation holds the capability diagnostics run on every pointer the
// host allocator returns: the pointer must carry a valid tag, satisfy the
// requested alignment, and fall inside the reserved window with bounds at
// least as wide as the allocation. These are diagnostic checks; the
// capability hardware itself enforces the boundary.
func (m *Manager) checkAllocation(addr, size, alignment uintptr) {
	if !m.caps.Enabled() {
		return
	}
	if !m.caps.Tagged(addr) {
		panic("carena: host allocator returned an untagged pointer")
	}
	a := m.caps.Address(addr)
	if alignment != 0 && a&(alignment-1) != 0 {
		panic("carena: host allocator returned a misaligned pointer")
	}
	if a < m.base || a+size > m.end {
		panic("carena: host allocator returned a pointer outside the reserved window")
	}
	if base := m.caps.Base(addr); base > a {
		panic("carena: capability base above its address")
	}
	if length := m.caps.Length(addr); length != 0 && length < size {
		panic("carena: capability bounds narrower than the allocation")
	}
}

// slice returns the sub-range [addr, addr+size) of the reservation as a byte
// slice, for use with the mapping syscalls. The caller must have validated
// the range against the window first.
func (m *Manager) slice(addr, size uintptr) []byte {
	off := addr - m.raw
	return m.mem[off : off+size]
}

func hex(v uintptr) string {
	return fmt.Sprintf("%#x", v)
}
