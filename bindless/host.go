package bindless

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gpubridge"
	"github.com/gogpu/gpubridge/layout"
)

// HostBase is the first address handed out by a HostAllocator.
const HostBase gpubridge.DeviceAddress = 0x1_0000_0000

// HostAllocator keeps allocations in host memory and hands out
// monotonically increasing addresses that are never reused.
//
// HostAllocator is safe for concurrent use.
type HostAllocator struct {
	mu     sync.RWMutex
	next   gpubridge.DeviceAddress
	limit  uint64
	blocks map[gpubridge.DeviceAddress][]byte
}

// NewHostAllocator returns an allocator accepting buffers up to
// maxBufferSize bytes. Zero selects the default device limit.
func NewHostAllocator(maxBufferSize uint64) *HostAllocator {
	if maxBufferSize == 0 {
		maxBufferSize = gputypes.DefaultLimits().MaxBufferSize
	}
	return &HostAllocator{
		next:   HostBase,
		limit:  maxBufferSize,
		blocks: make(map[gpubridge.DeviceAddress][]byte),
	}
}

// MaxBufferSize implements Allocator.
func (h *HostAllocator) MaxBufferSize() uint64 { return h.limit }

// Allocate implements Allocator.
func (h *HostAllocator) Allocate(label string, data []byte) (Allocation, error) {
	n := uint64(len(data))
	if err := checkSize(label, n, h.limit); err != nil {
		return Allocation{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	addr := h.next
	h.next = h.next.Add(layout.AlignUp(n, AddressAlign))
	h.blocks[addr] = append([]byte(nil), data...)
	return Allocation{Address: addr, Size: n, Label: label}, nil
}

// Free implements Allocator.
func (h *HostAllocator) Free(a Allocation) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.blocks[a.Address]; !ok {
		return fmt.Errorf("%w: %v", ErrAddressNotLive, a)
	}
	delete(h.blocks, a.Address)
	return nil
}

// Read returns a copy of n bytes at addr, the way a shader would
// dereference it. addr may point inside an allocation; the range must not
// cross its end.
func (h *HostAllocator) Read(addr gpubridge.DeviceAddress, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("bindless: read of negative length %d at %v", n, addr)
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	for base, b := range h.blocks {
		if addr < base || uint64(addr-base) >= uint64(len(b)) {
			continue
		}
		off := uint64(addr - base)
		if off+uint64(n) > uint64(len(b)) {
			return nil, fmt.Errorf("bindless: read of %d bytes at %v crosses the end of its allocation", n, addr)
		}
		return append([]byte(nil), b[off:off+uint64(n)]...), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrAddressNotLive, addr)
}

// Live returns the number of live allocations.
func (h *HostAllocator) Live() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.blocks)
}
