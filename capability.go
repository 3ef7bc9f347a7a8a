package carena

// Capability abstracts the hardware capability runtime on platforms with
// compressed pointer encodings (CHERI and relatives). The methods are pure:
// they query or round values and have no side effects. The core extent
// algorithm is identical with or without the hardware; only the widening and
// tag diagnostics switch on Enabled.
type Capability interface {
	// Enabled reports whether capability hardware is present. When false,
	// no other method is consulted.
	Enabled() bool

	// Tagged reports whether addr carries a valid capability tag.
	Tagged(addr uintptr) bool

	// Address extracts the integer address of a capability.
	Address(addr uintptr) uintptr

	// Base extracts the lower bound of a capability.
	Base(addr uintptr) uintptr

	// Length extracts the bounds length of a capability. A zero length means
	// the runtime does not expose one.
	Length(addr uintptr) uintptr

	// RepresentableLength rounds length up to the nearest value the
	// compressed encoding can express exactly. Never returns less than
	// length.
	RepresentableLength(length uintptr) uintptr

	// RepresentableAlignmentMask returns the alignment mask required for a
	// region of the given length to be exactly representable. The mask has
	// all bits set except zero or more low-order bits.
	RepresentableAlignmentMask(length uintptr) uintptr
}

// NoCapability is the Capability implementation for hardware without
// compressed capability encodings. Rounding is the identity and every
// address is considered tagged.
type NoCapability struct{}

// Enabled always reports false.
func (NoCapability) Enabled() bool { return false }

// Tagged always reports true.
func (NoCapability) Tagged(uintptr) bool { return true }

// Address returns addr unchanged.
func (NoCapability) Address(addr uintptr) uintptr { return addr }

// Base returns addr unchanged.
func (NoCapability) Base(addr uintptr) uintptr { return addr }

// Length always returns zero: plain pointers carry no bounds.
func (NoCapability) Length(uintptr) uintptr { return 0 }

// RepresentableLength returns length unchanged.
func (NoCapability) RepresentableLength(length uintptr) uintptr { return length }

// RepresentableAlignmentMask returns the all-ones mask: any alignment is
// representable.
func (NoCapability) RepresentableAlignmentMask(uintptr) uintptr { return ^uintptr(0) }
