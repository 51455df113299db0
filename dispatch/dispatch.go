// Package dispatch builds the per-draw constants block that selects a scene
// and the records a draw reads from it.
//
// Indices are checked against the scene's counts here, on the host, before
// the block can be recorded into a command buffer. Shaders index the
// bindless arrays without a clamp.
package dispatch

import (
	"errors"
	"fmt"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/gpubridge/bindless"
	"github.com/gogpu/gpubridge/shared"
)

// NoIndex marks an unused index. It is never range-checked and shaders
// must test for it before indexing.
const NoIndex = ^uint32(0)

// DefaultPushConstantBudget is the push constant size every Vulkan device
// guarantees.
const DefaultPushConstantBudget = 128

var (
	// ErrIndexOutOfRange is returned when an index is not below the count of
	// its array.
	ErrIndexOutOfRange = errors.New("dispatch: index out of range")

	// ErrNoScene is returned when building constants without a scene.
	ErrNoScene = errors.New("dispatch: no scene descriptor")

	// ErrOverBudget is returned when the block does not fit the push
	// constant budget.
	ErrOverBudget = errors.New("dispatch: constants exceed push constant budget")
)

// IndexOutOfRangeError reports which index failed its bounds check.
type IndexOutOfRangeError struct {
	Array string
	Index uint32
	Count uint32
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("dispatch: %s index %d out of range [0, %d)", e.Array, e.Index, e.Count)
}

func (e *IndexOutOfRangeError) Unwrap() error { return ErrIndexOutOfRange }

// Option sets a field of the constants.
type Option func(*shared.DispatchConstants)

// Material selects the material record.
func Material(i uint32) Option {
	return func(c *shared.DispatchConstants) { c.MaterialIndex = i }
}

// Instance selects the instance record.
func Instance(i uint32) Option {
	return func(c *shared.DispatchConstants) { c.InstanceIndex = i }
}

// Geometry selects the geometry record.
func Geometry(i uint32) Option {
	return func(c *shared.DispatchConstants) { c.GeometryIndex = i }
}

// Flags adds flag bits, such as shared.FlagUnlit.
func Flags(f uint32) Option {
	return func(c *shared.DispatchConstants) { c.Flags |= f }
}

// ColorOverride replaces the material color and sets
// shared.FlagColorOverride.
func ColorOverride(rgba f32.Vec4) Option {
	return func(c *shared.DispatchConstants) {
		c.ColorOverride = rgba
		c.Flags |= shared.FlagColorOverride
	}
}

// Block is a validated constants block.
type Block struct {
	Constants shared.DispatchConstants
}

// Make builds the constants for one draw from scene d. Unset indices are
// NoIndex; set indices must be below the matching count of d.
func Make(d *bindless.Descriptor, opts ...Option) (Block, error) {
	if d == nil {
		return Block{}, ErrNoScene
	}
	c := shared.DispatchConstants{
		Scene:         d.Address(),
		MaterialIndex: NoIndex,
		InstanceIndex: NoIndex,
		GeometryIndex: NoIndex,
	}
	for _, opt := range opts {
		opt(&c)
	}

	rec := d.Record()
	checks := []struct {
		name         string
		index, count uint32
	}{
		{"material", c.MaterialIndex, rec.MaterialCount},
		{"instance", c.InstanceIndex, rec.InstanceCount},
		{"geometry", c.GeometryIndex, rec.GeometryCount},
	}
	for _, ck := range checks {
		if ck.index != NoIndex && ck.index >= ck.count {
			return Block{}, &IndexOutOfRangeError{Array: ck.name, Index: ck.index, Count: ck.count}
		}
	}
	return Block{Constants: c}, nil
}

// Bytes returns the block in its GPU layout.
func (b Block) Bytes() []byte {
	buf := make([]byte, shared.DispatchConstantsSize)
	b.Constants.EncodeGPU(buf)
	return buf
}

// CheckBudget reports whether the block fits limit bytes of push constants.
func CheckBudget(limit uint32) error {
	if shared.DispatchConstantsSize > limit {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrOverBudget, shared.DispatchConstantsSize, limit)
	}
	return nil
}
