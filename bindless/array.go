package bindless

import (
	"fmt"
	"math"

	"github.com/gogpu/gpubridge/codec"
	"github.com/gogpu/gpubridge/shared"
)

// Array is one homogeneous array of records in its GPU layout.
type Array struct {
	Name   string
	Stride uint32
	Count  int
	Data   []byte
}

// NewArray encodes elems back to back at stride.
func NewArray[E any, P interface {
	*E
	codec.Encoder
}](name string, stride uint32, elems []E) Array {
	return Array{
		Name:   name,
		Stride: stride,
		Count:  len(elems),
		Data:   codec.EncodeSlice[E, P](elems, int(stride)),
	}
}

// Materials returns the material array.
func Materials(m []shared.MaterialRecord) Array {
	return NewArray("materials", shared.MaterialRecordSize, m)
}

// Instances returns the instance array.
func Instances(in []shared.InstanceRecord) Array {
	return NewArray("instances", shared.InstanceRecordSize, in)
}

// Geometries returns the geometry array.
func Geometries(g []shared.GeometryRecord) Array {
	return NewArray("geometries", shared.GeometryRecordSize, g)
}

// Vertices returns the vertex array.
func Vertices(v []shared.Vertex) Array {
	return NewArray("vertices", shared.VertexSize, v)
}

// Indices returns the index array of u32 values.
func Indices(idx []uint32) Array {
	b := make([]byte, 4*len(idx))
	for i, v := range idx {
		codec.PutU32(b[4*i:], v)
	}
	return Array{Name: "indices", Stride: 4, Count: len(idx), Data: b}
}

// Empty reports whether a has no elements.
func (a Array) Empty() bool { return a.Count == 0 }

// Size returns the byte size of a.
func (a Array) Size() uint64 { return uint64(a.Stride) * uint64(a.Count) }

// Validate checks that a is internally consistent and fits in one buffer
// of at most limit bytes.
func (a Array) Validate(limit uint64) error {
	switch {
	case a.Count < 0:
		return fmt.Errorf("%w: %s: negative count %d", ErrInvalidArray, a.Name, a.Count)
	case uint64(a.Count) > math.MaxUint32:
		return fmt.Errorf("%w: %s: count %d does not fit a u32", ErrInvalidArray, a.Name, a.Count)
	case a.Count > 0 && a.Stride == 0:
		return fmt.Errorf("%w: %s: zero stride", ErrInvalidArray, a.Name)
	case uint64(len(a.Data)) != a.Size():
		return fmt.Errorf("%w: %s: %d bytes for %d elements of stride %d", ErrInvalidArray, a.Name, len(a.Data), a.Count, a.Stride)
	case a.Size() > limit:
		return fmt.Errorf("%w: %s: %d bytes, limit %d", ErrBufferTooLarge, a.Name, a.Size(), limit)
	}
	return nil
}
