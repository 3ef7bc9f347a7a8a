package carena

import (
	"errors"
	"os"
	"sync"
	"testing"
	"unsafe"
)

// fakeHost drives the hook table the way the real host allocator does: it
// requests page-granular extents through the alloc hook, retires them through
// the destroy hook, and may probe the hooks synchronously during arena
// creation.
type fakeHost struct {
	mu      sync.Mutex
	hooks   *ExtentHooks
	arena   uint32
	nextIdx uint32
	probe   bool // allocate a metadata extent inside CreateArena
	sizes   map[uintptr]uintptr
	pg      uintptr
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		nextIdx: 1,
		sizes:   make(map[uintptr]uintptr),
		pg:      uintptr(os.Getpagesize()),
	}
}

func (h *fakeHost) CreateArena(hooks *ExtentHooks) (uint32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if hooks == nil || hooks.Alloc == nil || hooks.Destroy == nil ||
		hooks.PurgeLazy == nil || hooks.PurgeForced == nil {
		return 0, errors.New("fakehost: incomplete hook table")
	}
	h.hooks = hooks
	h.arena = h.nextIdx
	h.nextIdx++

	if h.probe {
		// Arena metadata allocation, as the real host allocator performs
		// before its creation call returns.
		zero, commit := false, false
		if hooks.Alloc(hooks, 0, h.pg, h.pg, &zero, &commit, h.arena) == 0 {
			return 0, errors.New("fakehost: metadata extent allocation failed")
		}
	}

	return h.arena, nil
}

func (h *fakeHost) Mallocx(size, alignment uintptr, flags AllocFlags) uintptr {
	arena, ok := flags.Arena()
	if !ok || size == 0 {
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	esize := alignUp(size, h.pg)
	ealign := alignment
	if ealign < h.pg {
		ealign = h.pg
	}

	zero, commit := false, false
	addr := h.hooks.Alloc(h.hooks, 0, esize, ealign, &zero, &commit, arena)
	if addr == 0 {
		return 0
	}
	h.sizes[addr] = esize
	return addr
}

func (h *fakeHost) Rallocx(addr, size uintptr, flags AllocFlags) uintptr {
	arena, ok := flags.Arena()
	if !ok || addr == 0 || size == 0 {
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	oldSize, ok := h.sizes[addr]
	if !ok {
		return 0
	}
	if size <= oldSize {
		return addr
	}

	esize := alignUp(size, h.pg)
	zero, commit := false, false
	moved := h.hooks.Alloc(h.hooks, 0, esize, h.pg, &zero, &commit, arena)
	if moved == 0 {
		return 0
	}
	h.sizes[moved] = esize

	src := unsafe.Slice((*byte)(unsafe.Pointer(addr)), oldSize)
	dst := unsafe.Slice((*byte)(unsafe.Pointer(moved)), esize)
	copy(dst, src)

	delete(h.sizes, addr)
	h.hooks.Destroy(h.hooks, addr, oldSize, true, arena)
	return moved
}

func (h *fakeHost) Dallocx(addr uintptr, flags AllocFlags) {
	h.mu.Lock()
	defer h.mu.Unlock()

	size, ok := h.sizes[addr]
	if !ok {
		return
	}
	delete(h.sizes, addr)
	h.hooks.Destroy(h.hooks, addr, size, true, h.arena)
}

// newTestManager builds a Manager over a fresh fake host. Tests that need
// the singleton path use Initialize directly instead.
func newTestManager(t *testing.T, window uintptr, opts ...Option) (*Manager, *fakeHost) {
	t.Helper()
	host := newFakeHost()
	m, err := newManager(host, append([]Option{WithWindowSize(window)}, opts...)...)
	if err != nil {
		t.Fatalf("newManager(window=%d) failed: %v", window, err)
	}
	return m, host
}

// hookAlloc invokes the extent allocation hook the way the host does.
func hookAlloc(m *Manager, size, alignment uintptr) uintptr {
	zero, commit := false, false
	return m.hooks.Alloc(m.hooks, 0, size, alignment, &zero, &commit, m.arena)
}

func pageSize() uintptr {
	return uintptr(os.Getpagesize())
}
