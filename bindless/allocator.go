package bindless

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpubridge"
)

// Errors returned by allocators and the builder.
var (
	// ErrBufferTooLarge is returned when an array exceeds the device's
	// maximum buffer size.
	ErrBufferTooLarge = errors.New("bindless: buffer exceeds maximum buffer size")

	// ErrAddressNotLive is returned when freeing or reading an address that
	// was never allocated or has already been freed.
	ErrAddressNotLive = errors.New("bindless: address not live")

	// ErrHeapExhausted is returned when a heap has no free range large
	// enough for an allocation.
	ErrHeapExhausted = errors.New("bindless: heap exhausted")

	// ErrNoHeapBase is returned when a heap is created without the device
	// address of its buffer.
	ErrNoHeapBase = errors.New("bindless: heap base address is required")

	// ErrHeapClosed is returned when using a closed heap.
	ErrHeapClosed = errors.New("bindless: heap closed")

	// ErrInvalidArray is returned for arrays whose data does not match
	// their stride and count.
	ErrInvalidArray = errors.New("bindless: invalid array")
)

// AddressAlign is the alignment of every allocation. It satisfies the
// buffer_reference_align of every shared record.
const AddressAlign = 16

// Allocation is one live range of device memory.
type Allocation struct {
	Address gpubridge.DeviceAddress
	Size    uint64
	Label   string
}

// String implements fmt.Stringer.
func (a Allocation) String() string {
	return fmt.Sprintf("%s@%v+%d", a.Label, a.Address, a.Size)
}

// Allocator places data in device-addressable memory.
//
// Implementations must be safe for concurrent use.
type Allocator interface {
	// Allocate copies data into a new allocation and returns its address.
	Allocate(label string, data []byte) (Allocation, error)

	// Free releases an allocation. Its address must no longer be read by
	// any pending GPU work.
	Free(a Allocation) error

	// MaxBufferSize is the largest single allocation the allocator accepts.
	MaxBufferSize() uint64
}

func checkSize(label string, n, limit uint64) error {
	if n == 0 {
		return fmt.Errorf("%w: %s: empty allocation", ErrInvalidArray, label)
	}
	if n > limit {
		return fmt.Errorf("%w: %s: %d bytes, limit %d", ErrBufferTooLarge, label, n, limit)
	}
	return nil
}
