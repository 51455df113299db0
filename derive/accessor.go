package derive

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/gpubridge"
	"github.com/gogpu/gpubridge/codec"
	"github.com/gogpu/gpubridge/layout"
)

// Accessor reads and writes the fields of one struct value stored in its
// GPU layout. Fields are addressed by host name; nested fields and array
// elements use paths such as "transforms.model" or "points[2]".
//
// An Accessor is a view: writes go straight to the underlying bytes.
type Accessor struct {
	l *layout.Layout
	b []byte
}

// NewAccessor returns an accessor over b, which must hold at least
// l.Size bytes.
func NewAccessor(l *layout.Layout, b []byte) (*Accessor, error) {
	if uint32(len(b)) < l.Size {
		return nil, fmt.Errorf("derive: %s needs %d bytes, have %d", l.Name, l.Size, len(b))
	}
	return &Accessor{l: l, b: b[:l.Size]}, nil
}

// Alloc returns an accessor over a new zeroed buffer.
func Alloc(l *layout.Layout) *Accessor {
	return &Accessor{l: l, b: make([]byte, l.Size)}
}

// Layout returns the layout the accessor addresses.
func (a *Accessor) Layout() *layout.Layout { return a.l }

// Bytes returns the underlying bytes.
func (a *Accessor) Bytes() []byte { return a.b }

type target struct {
	fl      layout.FieldLayout
	off     uint32
	indexed bool
}

func (a *Accessor) resolve(path string) (target, error) {
	l := a.l
	var off uint32
	segs := strings.Split(path, ".")
	for i, seg := range segs {
		name, idx, indexed, err := parseSegment(seg)
		if err != nil {
			return target{}, fmt.Errorf("%w: %s: %v", ErrNoField, path, err)
		}
		fl, ok := l.Field(name)
		if !ok {
			return target{}, fmt.Errorf("%w: %s.%s", ErrNoField, l.Name, name)
		}
		off += fl.Offset
		if indexed {
			if fl.Field.Len == 0 || idx >= fl.Field.Len {
				return target{}, fmt.Errorf("%w: %s: index %d out of bounds for %s[%d]", ErrNoField, path, idx, name, fl.Field.Len)
			}
			off += uint32(idx) * fl.Stride
		}
		if i == len(segs)-1 {
			return target{fl: fl, off: off, indexed: indexed}, nil
		}
		if fl.Sub == nil || (fl.Field.Len > 0 && !indexed) {
			return target{}, fmt.Errorf("%w: %s: %s is not a struct", ErrNoField, path, name)
		}
		l = fl.Sub
	}
	return target{}, fmt.Errorf("%w: empty path", ErrNoField)
}

func parseSegment(seg string) (name string, idx int, indexed bool, err error) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return seg, 0, false, nil
	}
	if !strings.HasSuffix(seg, "]") {
		return "", 0, false, fmt.Errorf("malformed segment %q", seg)
	}
	idx, err = strconv.Atoi(seg[open+1 : len(seg)-1])
	if err != nil || idx < 0 {
		return "", 0, false, fmt.Errorf("malformed index in %q", seg)
	}
	return seg[:open], idx, true, nil
}

// scalar resolves path to a single value of kind k.
func (a *Accessor) scalar(path string, k layout.Kind) ([]byte, error) {
	t, err := a.resolve(path)
	if err != nil {
		return nil, err
	}
	if t.fl.Field.Kind != k {
		return nil, fmt.Errorf("%w: %s is %v, not %v", ErrFieldKind, path, t.fl.Field.Kind, k)
	}
	if t.fl.Field.Len > 0 && !t.indexed {
		return nil, fmt.Errorf("%w: %s is an array; index it", ErrFieldKind, path)
	}
	return a.b[t.off:], nil
}

// Uint32 reads a u32 field.
func (a *Accessor) Uint32(path string) (uint32, error) {
	var v uint32
	b, err := a.scalar(path, layout.KindU32)
	if err == nil {
		codec.GetU32(b, &v)
	}
	return v, err
}

// SetUint32 writes a u32 field.
func (a *Accessor) SetUint32(path string, v uint32) error {
	b, err := a.scalar(path, layout.KindU32)
	if err == nil {
		codec.PutU32(b, v)
	}
	return err
}

// Int32 reads an i32 field.
func (a *Accessor) Int32(path string) (int32, error) {
	var v int32
	b, err := a.scalar(path, layout.KindI32)
	if err == nil {
		codec.GetI32(b, &v)
	}
	return v, err
}

// SetInt32 writes an i32 field.
func (a *Accessor) SetInt32(path string, v int32) error {
	b, err := a.scalar(path, layout.KindI32)
	if err == nil {
		codec.PutI32(b, v)
	}
	return err
}

// Float32 reads an f32 field.
func (a *Accessor) Float32(path string) (float32, error) {
	var v float32
	b, err := a.scalar(path, layout.KindF32)
	if err == nil {
		codec.GetF32(b, &v)
	}
	return v, err
}

// SetFloat32 writes an f32 field.
func (a *Accessor) SetFloat32(path string, v float32) error {
	b, err := a.scalar(path, layout.KindF32)
	if err == nil {
		codec.PutF32(b, v)
	}
	return err
}

// Uint64 reads a u64 field.
func (a *Accessor) Uint64(path string) (uint64, error) {
	var v uint64
	b, err := a.scalar(path, layout.KindU64)
	if err == nil {
		codec.GetU64(b, &v)
	}
	return v, err
}

// SetUint64 writes a u64 field.
func (a *Accessor) SetUint64(path string, v uint64) error {
	b, err := a.scalar(path, layout.KindU64)
	if err == nil {
		codec.PutU64(b, v)
	}
	return err
}

// Int64 reads an i64 field.
func (a *Accessor) Int64(path string) (int64, error) {
	var v int64
	b, err := a.scalar(path, layout.KindI64)
	if err == nil {
		codec.GetI64(b, &v)
	}
	return v, err
}

// SetInt64 writes an i64 field.
func (a *Accessor) SetInt64(path string, v int64) error {
	b, err := a.scalar(path, layout.KindI64)
	if err == nil {
		codec.PutI64(b, v)
	}
	return err
}

// Float64 reads an f64 field.
func (a *Accessor) Float64(path string) (float64, error) {
	var v float64
	b, err := a.scalar(path, layout.KindF64)
	if err == nil {
		codec.GetF64(b, &v)
	}
	return v, err
}

// SetFloat64 writes an f64 field.
func (a *Accessor) SetFloat64(path string, v float64) error {
	b, err := a.scalar(path, layout.KindF64)
	if err == nil {
		codec.PutF64(b, v)
	}
	return err
}

// Address reads a device address field.
func (a *Accessor) Address(path string) (gpubridge.DeviceAddress, error) {
	var v gpubridge.DeviceAddress
	b, err := a.scalar(path, layout.KindAddress)
	if err == nil {
		codec.GetU64(b, &v)
	}
	return v, err
}

// SetAddress writes a device address field.
func (a *Accessor) SetAddress(path string, v gpubridge.DeviceAddress) error {
	b, err := a.scalar(path, layout.KindAddress)
	if err == nil {
		codec.PutU64(b, v)
	}
	return err
}

// components resolves path to a vector or matrix of class c and returns the
// byte offset of every component.
func (a *Accessor) components(path string, c layout.Class) ([]uint32, error) {
	t, err := a.resolve(path)
	if err != nil {
		return nil, err
	}
	k := t.fl.Field.Kind
	if k.Class() != c || k.Width() != 4 || k == layout.KindStruct {
		return nil, fmt.Errorf("%w: %s is %v", ErrFieldKind, path, k)
	}
	if t.fl.Field.Len > 0 && !t.indexed {
		return nil, fmt.Errorf("%w: %s is an array; index it", ErrFieldKind, path)
	}
	offs := a.l.Convention.ComponentOffsets(k)
	for i := range offs {
		offs[i] += t.off
	}
	return offs, nil
}

// Floats reads every component of a float scalar, vector or column-major
// matrix field.
func (a *Accessor) Floats(path string) ([]float32, error) {
	offs, err := a.components(path, layout.ClassFloat)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(offs))
	for i, o := range offs {
		codec.GetF32(a.b[o:], &out[i])
	}
	return out, nil
}

// SetFloats writes every component of a float field. len(v) must equal the
// component count.
func (a *Accessor) SetFloats(path string, v ...float32) error {
	offs, err := a.components(path, layout.ClassFloat)
	if err != nil {
		return err
	}
	if len(v) != len(offs) {
		return fmt.Errorf("%w: %s has %d components, got %d", ErrFieldKind, path, len(offs), len(v))
	}
	for i, o := range offs {
		codec.PutF32(a.b[o:], v[i])
	}
	return nil
}

// Uints reads every component of a u32 scalar or vector field.
func (a *Accessor) Uints(path string) ([]uint32, error) {
	offs, err := a.components(path, layout.ClassUint)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(offs))
	for i, o := range offs {
		codec.GetU32(a.b[o:], &out[i])
	}
	return out, nil
}

// SetUints writes every component of a u32 field.
func (a *Accessor) SetUints(path string, v ...uint32) error {
	offs, err := a.components(path, layout.ClassUint)
	if err != nil {
		return err
	}
	if len(v) != len(offs) {
		return fmt.Errorf("%w: %s has %d components, got %d", ErrFieldKind, path, len(offs), len(v))
	}
	for i, o := range offs {
		codec.PutU32(a.b[o:], v[i])
	}
	return nil
}

// Ints reads every component of an i32 scalar or vector field.
func (a *Accessor) Ints(path string) ([]int32, error) {
	offs, err := a.components(path, layout.ClassSint)
	if err != nil {
		return nil, err
	}
	out := make([]int32, len(offs))
	for i, o := range offs {
		codec.GetI32(a.b[o:], &out[i])
	}
	return out, nil
}

// SetInts writes every component of an i32 field.
func (a *Accessor) SetInts(path string, v ...int32) error {
	offs, err := a.components(path, layout.ClassSint)
	if err != nil {
		return err
	}
	if len(v) != len(offs) {
		return fmt.Errorf("%w: %s has %d components, got %d", ErrFieldKind, path, len(offs), len(v))
	}
	for i, o := range offs {
		codec.PutI32(a.b[o:], v[i])
	}
	return nil
}

// Struct returns an accessor over a nested struct field.
func (a *Accessor) Struct(path string) (*Accessor, error) {
	t, err := a.resolve(path)
	if err != nil {
		return nil, err
	}
	if t.fl.Sub == nil {
		return nil, fmt.Errorf("%w: %s is %v", ErrFieldKind, path, t.fl.Field.Kind)
	}
	if t.fl.Field.Len > 0 && !t.indexed {
		return nil, fmt.Errorf("%w: %s is an array; index it", ErrFieldKind, path)
	}
	return NewAccessor(t.fl.Sub, a.b[t.off:])
}
