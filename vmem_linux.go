//go:build linux

package carena

import "golang.org/x/sys/unix"

// Mapping primitives over the reserved window. Addresses and lengths must be
// page-granular; the host allocator's extent requests always are.

// reserve maps size bytes of anonymous address space with no access rights
// and no physical backing. Any access before an explicit commitRW faults.
func reserve(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_NONE,
		unix.MAP_ANON|unix.MAP_PRIVATE|unix.MAP_NORESERVE)
}

// commitRW grants read/write access to a reserved sub-range. The pages are
// demand-zeroed: they have never been touched since reservation, or were
// discarded by guard or refresh.
func commitRW(b []byte) error {
	return unix.Mprotect(b, unix.PROT_READ|unix.PROT_WRITE)
}

// guard returns a sub-range to the reservation state: no access, physical
// pages discarded.
func guard(b []byte) error {
	if err := unix.Mprotect(b, unix.PROT_NONE); err != nil {
		return err
	}
	return unix.Madvise(b, unix.MADV_DONTNEED)
}

// refresh discards a sub-range's contents and leaves it read/write with
// fresh zero-filled backing on next touch.
func refresh(b []byte) error {
	if err := unix.Madvise(b, unix.MADV_DONTNEED); err != nil {
		return err
	}
	return unix.Mprotect(b, unix.PROT_READ|unix.PROT_WRITE)
}
