package derive

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gpubridge"
	"github.com/gogpu/gpubridge/layout"
)

func materialLayout(t *testing.T, c layout.Convention) *layout.Layout {
	t.Helper()
	return mustCompute(t, layout.NewStruct("Material",
		layout.Of("color", layout.KindVec4F),
		layout.Of("emissive", layout.KindVec3F),
		layout.Of("roughness", layout.KindF32),
		layout.Of("texture", layout.KindU32),
		layout.Of("next", layout.KindAddress),
		layout.Of("bias", layout.KindI32),
		layout.Of("model", layout.KindMat3F),
		layout.ArrayOf("tints", layout.KindVec3F, 2),
		layout.Of("mask", layout.KindVec2U),
		layout.Of("serial", layout.KindU64),
	), c)
}

func TestAccessorRoundTrip(t *testing.T) {
	for _, c := range []layout.Convention{layout.DefaultConvention, {Rules: layout.Std430, Int64: true}} {
		t.Run(c.String(), func(t *testing.T) {
			a := Alloc(materialLayout(t, c))

			must := func(err error) {
				t.Helper()
				if err != nil {
					t.Fatal(err)
				}
			}
			must(a.SetFloats("color", 0.25, 0.5, 0.75, 1))
			must(a.SetFloats("emissive", 1, 2, 3))
			must(a.SetFloat32("roughness", 0.3))
			must(a.SetUint32("texture", 7))
			must(a.SetAddress("next", 0xdead0000))
			must(a.SetInt32("bias", -4))
			must(a.SetFloats("model", 1, 2, 3, 4, 5, 6, 7, 8, 9))
			must(a.SetFloats("tints[1]", 9, 8, 7))
			must(a.SetUints("mask", 3, 4))
			must(a.SetUint64("serial", 1<<40))

			color, _ := a.Floats("color")
			emissive, _ := a.Floats("emissive")
			roughness, _ := a.Float32("roughness")
			texture, _ := a.Uint32("texture")
			next, _ := a.Address("next")
			bias, _ := a.Int32("bias")
			model, _ := a.Floats("model")
			tint1, _ := a.Floats("tints[1]")
			tint0, _ := a.Floats("tints[0]")
			mask, _ := a.Uints("mask")
			serial, _ := a.Uint64("serial")

			if !slices.Equal(color, []float32{0.25, 0.5, 0.75, 1}) || !slices.Equal(emissive, []float32{1, 2, 3}) {
				t.Errorf("color, emissive = %v, %v", color, emissive)
			}
			if roughness != 0.3 || texture != 7 || next != gpubridge.DeviceAddress(0xdead0000) || bias != -4 {
				t.Errorf("scalars = %v %v %v %v", roughness, texture, next, bias)
			}
			if !slices.Equal(model, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}) {
				t.Errorf("model = %v", model)
			}
			if !slices.Equal(tint1, []float32{9, 8, 7}) || !slices.Equal(tint0, []float32{0, 0, 0}) {
				t.Errorf("tints = %v, %v", tint0, tint1)
			}
			if !slices.Equal(mask, []uint32{3, 4}) || serial != 1<<40 {
				t.Errorf("mask, serial = %v, %v", mask, serial)
			}
		})
	}
}

func TestAccessorSignedAndDouble(t *testing.T) {
	s := layout.NewStruct("Sample",
		layout.Of("delta", layout.KindI64),
		layout.Of("weight", layout.KindF64),
		layout.Of("cell", layout.KindVec3I),
		layout.ArrayOf("offsets", layout.KindVec2I, 2),
	)
	c := layout.Convention{Rules: layout.Scalar, Int64: true, Float64: true}
	a := Alloc(mustCompute(t, s, c))

	for _, err := range []error{
		a.SetInt64("delta", -1<<40),
		a.SetFloat64("weight", 0.1),
		a.SetInts("cell", -1, 2, -3),
		a.SetInts("offsets[1]", 5, -6),
	} {
		if err != nil {
			t.Fatal(err)
		}
	}

	if got, err := a.Int64("delta"); err != nil || got != -1<<40 {
		t.Errorf("Int64(delta) = %v, %v, want %v", got, err, int64(-1<<40))
	}
	if got, err := a.Float64("weight"); err != nil || got != 0.1 {
		t.Errorf("Float64(weight) = %v, %v, want 0.1", got, err)
	}
	if got, err := a.Ints("cell"); err != nil || !slices.Equal(got, []int32{-1, 2, -3}) {
		t.Errorf("Ints(cell) = %v, %v, want [-1 2 -3]", got, err)
	}
	if got, _ := a.Ints("offsets[1]"); !slices.Equal(got, []int32{5, -6}) {
		t.Errorf("Ints(offsets[1]) = %v, want [5 -6]", got)
	}
	if got, _ := a.Ints("offsets[0]"); !slices.Equal(got, []int32{0, 0}) {
		t.Errorf("Ints(offsets[0]) = %v, want [0 0]", got)
	}

	tests := []struct {
		name string
		err  error
	}{
		{"int64 on double", a.SetInt64("weight", 1)},
		{"double on int64", a.SetFloat64("delta", 1)},
		{"ints on int64", a.SetInts("delta", 1)},
		{"ints component count", a.SetInts("cell", 1, 2)},
		{"uints on signed vector", a.SetUints("cell", 1, 2, 3)},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, ErrFieldKind) {
			t.Errorf("%s: error = %v, want %v", tt.name, tt.err, ErrFieldKind)
		}
	}
}

func TestAccessorWritesAtLayoutOffsets(t *testing.T) {
	l := mustCompute(t, probe(), layout.DefaultConvention)
	a := Alloc(l)
	if err := a.SetUint32("B", 0xAABBCCDD); err != nil {
		t.Fatal(err)
	}
	b := a.Bytes()
	if len(b) != 20 || b[16] != 0xDD || b[19] != 0xAA {
		t.Errorf("Bytes() = % x, want B at offset 16", b)
	}
}

func TestAccessorNested(t *testing.T) {
	mvp := layout.NewStruct("MVP", layout.Of("model", layout.KindMat4F), layout.Of("proj", layout.KindMat4F))
	uni := layout.NewStruct("Uniforms", layout.Of("frame", layout.KindU32), layout.Nested("mvp", mvp), layout.ArrayOf("hist", layout.KindStruct, 2))
	uni.Fields[2].Struct = mvp
	a := Alloc(mustCompute(t, uni, layout.DefaultConvention))

	ident := []float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	if err := a.SetFloats("mvp.proj", ident...); err != nil {
		t.Fatal(err)
	}
	if err := a.SetFloats("hist[1].model", ident...); err != nil {
		t.Fatal(err)
	}
	sub, err := a.Struct("mvp")
	if err != nil {
		t.Fatal(err)
	}
	got, _ := sub.Floats("proj")
	if !slices.Equal(got, ident) {
		t.Errorf("mvp.proj = %v", got)
	}
	hist, err := a.Struct("hist[1]")
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := hist.Floats("model"); !slices.Equal(got, ident) {
		t.Errorf("hist[1].model = %v", got)
	}
}

func TestAccessorErrors(t *testing.T) {
	l := materialLayout(t, layout.DefaultConvention)
	a := Alloc(l)

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unknown field", a.SetUint32("nope", 1), ErrNoField},
		{"wrong kind", a.SetUint32("roughness", 1), ErrFieldKind},
		{"array without index", a.SetFloats("tints", 1, 2, 3), ErrFieldKind},
		{"index out of bounds", a.SetFloats("tints[2]", 1, 2, 3), ErrNoField},
		{"index on scalar", a.SetUint32("texture[0]", 1), ErrNoField},
		{"malformed index", a.SetUint32("texture[x]", 1), ErrNoField},
		{"component count", a.SetFloats("color", 1, 2), ErrFieldKind},
		{"descend into scalar", a.SetUint32("texture.x", 1), ErrNoField},
		{"float on uint vector", a.SetFloats("mask", 1, 2), ErrFieldKind},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, tt.err, tt.want)
		}
	}
	if _, err := a.Struct("color"); !errors.Is(err, ErrFieldKind) {
		t.Errorf("Struct(color) error = %v, want ErrFieldKind", err)
	}
	if _, err := NewAccessor(l, make([]byte, 4)); err == nil {
		t.Error("NewAccessor() with a short buffer should fail")
	}
}
