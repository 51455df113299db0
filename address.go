package gpubridge

import "fmt"

// DeviceAddress is an opaque 64-bit location in GPU-accessible memory.
//
// It is produced by a buffer allocator and stored verbatim in GPU records.
// A DeviceAddress is a weak reference: holding one never keeps the backing
// buffer alive, and it is valid only while that buffer is alive and has not
// been reused. The host never dereferences it.
type DeviceAddress uint64

// NullAddress marks an absent array. Shaders must not dereference it.
const NullAddress DeviceAddress = 0

// IsNull reports whether a is NullAddress.
func (a DeviceAddress) IsNull() bool { return a == NullAddress }

// Add returns the address offset bytes past a.
func (a DeviceAddress) Add(offset uint64) DeviceAddress {
	return a + DeviceAddress(offset)
}

// Aligned reports whether a is a multiple of align. align must be a power of two.
func (a DeviceAddress) Aligned(align uint64) bool {
	return uint64(a)&(align-1) == 0
}

// String formats the address as hex.
func (a DeviceAddress) String() string {
	if a == NullAddress {
		return "null"
	}
	return fmt.Sprintf("0x%016x", uint64(a))
}
