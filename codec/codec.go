// Package codec reads and writes GPU scalar components in little-endian byte
// order. Generated host codecs and the runtime accessor are built on it.
//
// Every function is generic over the underlying type so that named types
// such as gpubridge.DeviceAddress pass through without conversions.
package codec

import (
	"encoding/binary"
	"math"
)

var le = binary.LittleEndian

// PutU32 writes v to b[0:4].
func PutU32[T ~uint32](b []byte, v T) { le.PutUint32(b, uint32(v)) }

// PutI32 writes v to b[0:4].
func PutI32[T ~int32](b []byte, v T) { le.PutUint32(b, uint32(v)) }

// PutF32 writes v to b[0:4].
func PutF32[T ~float32](b []byte, v T) { le.PutUint32(b, math.Float32bits(float32(v))) }

// PutU64 writes v to b[0:8].
func PutU64[T ~uint64](b []byte, v T) { le.PutUint64(b, uint64(v)) }

// PutI64 writes v to b[0:8].
func PutI64[T ~int64](b []byte, v T) { le.PutUint64(b, uint64(v)) }

// PutF64 writes v to b[0:8].
func PutF64[T ~float64](b []byte, v T) { le.PutUint64(b, math.Float64bits(float64(v))) }

// GetU32 reads b[0:4] into *p.
func GetU32[T ~uint32](b []byte, p *T) { *p = T(le.Uint32(b)) }

// GetI32 reads b[0:4] into *p.
func GetI32[T ~int32](b []byte, p *T) { *p = T(int32(le.Uint32(b))) }

// GetF32 reads b[0:4] into *p.
func GetF32[T ~float32](b []byte, p *T) { *p = T(math.Float32frombits(le.Uint32(b))) }

// GetU64 reads b[0:8] into *p.
func GetU64[T ~uint64](b []byte, p *T) { *p = T(le.Uint64(b)) }

// GetI64 reads b[0:8] into *p.
func GetI64[T ~int64](b []byte, p *T) { *p = T(int64(le.Uint64(b))) }

// GetF64 reads b[0:8] into *p.
func GetF64[T ~float64](b []byte, p *T) { *p = T(math.Float64frombits(le.Uint64(b))) }

// Encoder is implemented by generated host types.
type Encoder interface {
	EncodeGPU(b []byte)
}

// EncodeSlice lays out elems back to back with the given stride.
func EncodeSlice[E any, P interface {
	*E
	Encoder
}](elems []E, stride int) []byte {
	buf := make([]byte, len(elems)*stride)
	for i := range elems {
		P(&elems[i]).EncodeGPU(buf[i*stride:])
	}
	return buf
}
