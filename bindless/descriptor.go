package bindless

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/gogpu/gpubridge"
	"github.com/gogpu/gpubridge/shared"
)

// Descriptor is one built scene: the SceneDescriptor record, its device
// address and the allocations it references. A Descriptor is immutable.
//
// The allocations must outlive every GPU submission that reads through the
// descriptor; see the package documentation.
type Descriptor struct {
	record   shared.SceneDescriptor
	address  gpubridge.DeviceAddress
	allocs   []Allocation
	snapshot uuid.UUID
}

// Record returns a copy of the descriptor record.
func (d *Descriptor) Record() shared.SceneDescriptor { return d.record }

// Address returns the device address of the uploaded record, for
// DispatchConstants.Scene.
func (d *Descriptor) Address() gpubridge.DeviceAddress { return d.address }

// Generation returns the builder generation the descriptor was built at.
func (d *Descriptor) Generation() uint32 { return d.record.Generation }

// Snapshot returns the unique id of this build.
func (d *Descriptor) Snapshot() uuid.UUID { return d.snapshot }

// Allocations returns every allocation the descriptor references, the
// record's own allocation last.
func (d *Descriptor) Allocations() []Allocation { return slices.Clone(d.allocs) }

// Bytes returns the encoded record.
func (d *Descriptor) Bytes() []byte {
	b := make([]byte, shared.SceneDescriptorSize)
	d.record.EncodeGPU(b)
	return b
}

// Release frees every allocation through a. Call it only after all GPU work
// reading through the descriptor has completed.
func (d *Descriptor) Release(a Allocator) error {
	var errs []error
	for _, al := range d.allocs {
		if err := a.Free(al); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// String implements fmt.Stringer.
func (d *Descriptor) String() string {
	r := d.record
	return fmt.Sprintf("Scene[gen %d at %v: %d materials, %d instances, %d geometries, %d vertices, %d indices]",
		r.Generation, d.address, r.MaterialCount, r.InstanceCount, r.GeometryCount, r.VertexCount, r.IndexCount)
}
