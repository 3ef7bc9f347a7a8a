package carena

// HostAllocator is the external allocator whose arena machinery this package
// feeds. The Manager registers its hook table through CreateArena and routes
// its thin pass-through allocation calls through the per-request entry
// points, tagged with the arena index it received.
type HostAllocator interface {
	// CreateArena registers a hook table and returns the new arena's
	// identifier. The host allocator may invoke the hooks synchronously,
	// before CreateArena returns.
	CreateArena(hooks *ExtentHooks) (uint32, error)

	// Mallocx allocates size bytes at the given power-of-two alignment.
	// Returns 0 on failure.
	Mallocx(size, alignment uintptr, flags AllocFlags) uintptr

	// Rallocx resizes an existing allocation, possibly moving it. Returns 0
	// on failure, leaving the original allocation intact.
	Rallocx(addr, size uintptr, flags AllocFlags) uintptr

	// Dallocx frees an existing allocation.
	Dallocx(addr uintptr, flags AllocFlags)
}

// AllocFlags is the per-request flag word of the host allocator's allocation
// entry points. The arena index is encoded above the low flag bits, offset
// by one so a zero word means "no arena specified".
type AllocFlags uint64

// FlagNoTcache directs the host allocator to bypass its per-thread cache for
// this request.
const FlagNoTcache AllocFlags = 1 << 0

const arenaFlagShift = 8

// ArenaFlag encodes an arena index into a flag word.
func ArenaFlag(index uint32) AllocFlags {
	return AllocFlags(index+1) << arenaFlagShift
}

// Arena decodes the arena index from the flag word. ok is false when no
// arena was specified.
func (f AllocFlags) Arena() (index uint32, ok bool) {
	v := uint64(f) >> arenaFlagShift
	if v == 0 {
		return 0, false
	}
	return uint32(v - 1), true
}

// NoTcache reports whether the request bypasses the per-thread cache.
func (f AllocFlags) NoTcache() bool { return f&FlagNoTcache != 0 }
