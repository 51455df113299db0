package bindless

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpubridge"
	"github.com/gogpu/gpubridge/layout"
)

// DefaultHeapSize is the default heap size (64 MB).
const DefaultHeapSize = 64 << 20

// HeapConfig configures a HeapAllocator.
type HeapConfig struct {
	// Size is the heap buffer size in bytes. Defaults to DefaultHeapSize.
	Size uint64

	// Base is the device address of the heap buffer as reported by the
	// memory allocation layer that backs it. Required; it must be
	// AddressAlign-aligned.
	Base gpubridge.DeviceAddress

	// Label names the heap buffer. Defaults to "bindless-heap".
	Label string

	// MaxBufferSize caps single allocations. Defaults to the device's
	// default limit.
	MaxBufferSize uint64
}

// HeapStats contains heap usage statistics.
type HeapStats struct {
	// TotalBytes is the heap size.
	TotalBytes uint64

	// UsedBytes is the allocated size, including alignment padding.
	UsedBytes uint64

	// AvailableBytes is TotalBytes minus UsedBytes.
	AvailableBytes uint64

	// LargestFree is the largest single allocation that currently fits.
	LargestFree uint64

	// Allocations is the number of live allocations.
	Allocations int

	// Utilization is the fraction of the heap in use (0.0 to 1.0).
	Utilization float64
}

// String returns a human-readable string of heap stats.
func (s HeapStats) String() string {
	return fmt.Sprintf("Heap[%.1f%% used, %d/%d KB, %d allocations, largest free %d KB]",
		s.Utilization*100,
		s.UsedBytes/1024,
		s.TotalBytes/1024,
		s.Allocations,
		s.LargestFree/1024)
}

type span struct {
	off, size uint64
}

// HeapAllocator sub-allocates device memory from one storage buffer on a
// HAL device. Allocations are placed first-fit at AddressAlign and uploaded
// through the device queue; freed ranges are coalesced with their
// neighbours and reused.
//
// The HAL exposes no buffer device address query, so the caller supplies
// the heap buffer's device address in HeapConfig.Base and every returned
// address is that base plus the allocation's offset.
//
// HeapAllocator is safe for concurrent use.
type HeapAllocator struct {
	mu sync.RWMutex

	device hal.Device
	queue  hal.Queue
	buffer hal.Buffer

	base  gpubridge.DeviceAddress
	size  uint64
	limit uint64

	// free is sorted by offset and never holds adjacent spans.
	free []span
	live map[gpubridge.DeviceAddress]span
	used uint64

	closed bool
}

// NewHeapAllocator creates the heap buffer on device. Uploads go through
// queue.
func NewHeapAllocator(device hal.Device, queue hal.Queue, cfg HeapConfig) (*HeapAllocator, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("bindless: heap needs a device and a queue")
	}
	if cfg.Size == 0 {
		cfg.Size = DefaultHeapSize
	}
	cfg.Size = layout.AlignUp(cfg.Size, AddressAlign)
	if cfg.Base == gpubridge.NullAddress {
		return nil, ErrNoHeapBase
	}
	if !cfg.Base.Aligned(AddressAlign) {
		return nil, fmt.Errorf("bindless: heap base %v is not %d-byte aligned", cfg.Base, AddressAlign)
	}
	if cfg.Label == "" {
		cfg.Label = "bindless-heap"
	}
	if cfg.MaxBufferSize == 0 {
		cfg.MaxBufferSize = gputypes.DefaultLimits().MaxBufferSize
	}

	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: cfg.Label,
		Size:  cfg.Size,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("bindless: create heap buffer: %w", err)
	}
	gpubridge.Logger().Info("bindless: heap created", "label", cfg.Label, "size", cfg.Size, "base", cfg.Base.String())

	return &HeapAllocator{
		device: device,
		queue:  queue,
		buffer: buf,
		base:   cfg.Base,
		size:   cfg.Size,
		limit:  min(cfg.MaxBufferSize, cfg.Size),
		free:   []span{{0, cfg.Size}},
		live:   make(map[gpubridge.DeviceAddress]span),
	}, nil
}

// NewHeapAllocatorFromProvider creates a heap on the device shared by an
// external provider, such as a gogpu application. The provider must also
// implement HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue.
func NewHeapAllocatorFromProvider(provider gpucontext.DeviceProvider, cfg HeapConfig) (*HeapAllocator, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("bindless: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("bindless: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("bindless: provider HalQueue is not hal.Queue")
	}
	return NewHeapAllocator(device, queue, cfg)
}

// Buffer returns the heap buffer, for binding it to pipelines that need a
// descriptor-based view of the heap.
func (h *HeapAllocator) Buffer() hal.Buffer { return h.buffer }

// Base returns the device address of the first heap byte.
func (h *HeapAllocator) Base() gpubridge.DeviceAddress { return h.base }

// MaxBufferSize implements Allocator.
func (h *HeapAllocator) MaxBufferSize() uint64 { return h.limit }

// Allocate implements Allocator.
func (h *HeapAllocator) Allocate(label string, data []byte) (Allocation, error) {
	n := uint64(len(data))
	if err := checkSize(label, n, h.limit); err != nil {
		return Allocation{}, err
	}
	need := layout.AlignUp(n, AddressAlign)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return Allocation{}, ErrHeapClosed
	}
	i := slices.IndexFunc(h.free, func(s span) bool { return s.size >= need })
	if i < 0 {
		return Allocation{}, fmt.Errorf("%w: %s needs %d bytes, %d of %d available, largest range %d",
			ErrHeapExhausted, label, need, h.size-h.used, h.size, h.largestFreeLocked())
	}
	s := span{off: h.free[i].off, size: need}
	if h.free[i].size == need {
		h.free = slices.Delete(h.free, i, i+1)
	} else {
		h.free[i].off += need
		h.free[i].size -= need
	}

	if err := h.queue.WriteBuffer(h.buffer, s.off, data); err != nil {
		h.insertFreeLocked(s)
		return Allocation{}, fmt.Errorf("bindless: upload %s: %w", label, err)
	}

	addr := h.base.Add(s.off)
	h.live[addr] = s
	h.used += need
	gpubridge.Logger().Debug("bindless: allocated", "label", label, "address", addr.String(), "size", n)
	return Allocation{Address: addr, Size: n, Label: label}, nil
}

// Free implements Allocator.
func (h *HeapAllocator) Free(a Allocation) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHeapClosed
	}
	s, ok := h.live[a.Address]
	if !ok {
		return fmt.Errorf("%w: %v", ErrAddressNotLive, a)
	}
	delete(h.live, a.Address)
	h.used -= s.size
	h.insertFreeLocked(s)
	return nil
}

// insertFreeLocked returns s to the free list, merging it with adjacent
// spans. Caller must hold mu.
func (h *HeapAllocator) insertFreeLocked(s span) {
	i, _ := slices.BinarySearchFunc(h.free, s.off, func(f span, off uint64) int {
		switch {
		case f.off < off:
			return -1
		case f.off > off:
			return 1
		}
		return 0
	})
	h.free = slices.Insert(h.free, i, s)
	if i+1 < len(h.free) && h.free[i].off+h.free[i].size == h.free[i+1].off {
		h.free[i].size += h.free[i+1].size
		h.free = slices.Delete(h.free, i+1, i+2)
	}
	if i > 0 && h.free[i-1].off+h.free[i-1].size == h.free[i].off {
		h.free[i-1].size += h.free[i].size
		h.free = slices.Delete(h.free, i, i+1)
	}
}

func (h *HeapAllocator) largestFreeLocked() uint64 {
	var m uint64
	for _, s := range h.free {
		m = max(m, s.size)
	}
	return m
}

// Stats returns current heap usage statistics.
func (h *HeapAllocator) Stats() HeapStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var utilization float64
	if h.size > 0 {
		utilization = float64(h.used) / float64(h.size)
	}
	return HeapStats{
		TotalBytes:     h.size,
		UsedBytes:      h.used,
		AvailableBytes: h.size - h.used,
		LargestFree:    h.largestFreeLocked(),
		Allocations:    len(h.live),
		Utilization:    utilization,
	}
}

// Close destroys the heap buffer. Every address the heap handed out
// becomes invalid; the caller must ensure no GPU work still reads them.
func (h *HeapAllocator) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.device.DestroyBuffer(h.buffer)
	h.buffer = nil
	h.live = nil
	h.free = nil
	h.used = 0
	h.closed = true
}
