package layout

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
)

func TestComputeScalarU32Vec3U32(t *testing.T) {
	s := NewStruct("Probe", Of("a", KindU32), Of("v", KindVec3F), Of("b", KindU32))

	l, err := Compute(s, Convention{Rules: Scalar})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	want := []struct {
		offset, size uint32
	}{{0, 4}, {4, 12}, {16, 4}}
	for i, w := range want {
		if l.Fields[i].Offset != w.offset || l.Fields[i].Size != w.size {
			t.Errorf("field %d = offset %d size %d, want offset %d size %d",
				i, l.Fields[i].Offset, l.Fields[i].Size, w.offset, w.size)
		}
	}
	if l.Fields[1].Align != 4 {
		t.Errorf("vec3f align = %d, want 4", l.Fields[1].Align)
	}
	if l.Align != 4 {
		t.Errorf("Align = %d, want 4", l.Align)
	}
	if l.Size != 20 {
		t.Errorf("Size = %d, want 20", l.Size)
	}
}

func TestComputeStd430U32Vec3U32(t *testing.T) {
	s := NewStruct("Probe", Of("a", KindU32), Of("v", KindVec3F), Of("b", KindU32))

	l, err := Compute(s, Convention{Rules: Std430})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if got, want := l.Offsets(), []uint32{0, 16, 28}; !slices.Equal(got, want) {
		t.Errorf("Offsets() = %v, want %v", got, want)
	}
	if l.Size != 32 || l.Align != 16 {
		t.Errorf("Size, Align = %d, %d, want 32, 16", l.Size, l.Align)
	}
}

func TestComputeShapes(t *testing.T) {
	tests := []struct {
		kind        Kind
		rules       Rules
		size, align uint32
	}{
		{KindF32, Scalar, 4, 4},
		{KindVec2F, Scalar, 8, 4},
		{KindVec3F, Scalar, 12, 4},
		{KindVec4F, Scalar, 16, 4},
		{KindMat2F, Scalar, 16, 4},
		{KindMat3F, Scalar, 36, 4},
		{KindMat4F, Scalar, 64, 4},
		{KindU64, Scalar, 8, 8},
		{KindAddress, Scalar, 8, 8},
		{KindVec2U, Std430, 8, 8},
		{KindVec3I, Std430, 12, 16},
		{KindVec4F, Std430, 16, 16},
		{KindMat2F, Std430, 16, 8},
		{KindMat3F, Std430, 48, 16},
		{KindMat4F, Std430, 64, 16},
		{KindAddress, Std430, 8, 8},
	}
	for _, tt := range tests {
		t.Run(tt.rules.String()+"/"+tt.kind.String(), func(t *testing.T) {
			l, err := Compute(NewStruct("S", Of("x", tt.kind)), Convention{Rules: tt.rules, Int64: true})
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			f := l.Fields[0]
			if f.Size != tt.size || f.Align != tt.align {
				t.Errorf("size, align = %d, %d, want %d, %d", f.Size, f.Align, tt.size, tt.align)
			}
		})
	}
}

func TestComputeArrays(t *testing.T) {
	s := NewStruct("Arrays", Of("count", KindU32), ArrayOf("points", KindVec3F, 4), ArrayOf("weights", KindF32, 3))

	scalar, err := Compute(s, Convention{Rules: Scalar})
	if err != nil {
		t.Fatalf("Compute(scalar) error = %v", err)
	}
	pts, _ := scalar.Field("points")
	if pts.Offset != 4 || pts.Stride != 12 || pts.Size != 48 {
		t.Errorf("scalar points = offset %d stride %d size %d, want 4 12 48", pts.Offset, pts.Stride, pts.Size)
	}
	if scalar.Size != 64 {
		t.Errorf("scalar Size = %d, want 64", scalar.Size)
	}

	std, err := Compute(s, Convention{Rules: Std430})
	if err != nil {
		t.Fatalf("Compute(std430) error = %v", err)
	}
	pts, _ = std.Field("points")
	w, _ := std.Field("weights")
	if pts.Offset != 16 || pts.Stride != 16 || pts.Size != 64 {
		t.Errorf("std430 points = offset %d stride %d size %d, want 16 16 64", pts.Offset, pts.Stride, pts.Size)
	}
	if w.Offset != 80 || w.Stride != 4 {
		t.Errorf("std430 weights = offset %d stride %d, want 80 4", w.Offset, w.Stride)
	}
	if std.Size != 96 {
		t.Errorf("std430 Size = %d, want 96", std.Size)
	}
}

func TestComputeNested(t *testing.T) {
	inner := NewStruct("Inner", Of("a", KindU32), Of("b", KindU64))
	outer := NewStruct("Outer", Of("x", KindU32), Nested("in", inner), Of("v", KindVec3F), ArrayOf("more", KindStruct, 2))
	outer.Fields[3].Struct = inner

	l, err := Compute(outer, DefaultConvention)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	in, _ := l.Field("in")
	if in.Sub == nil || in.Sub.Size != 16 || in.Sub.Align != 8 {
		t.Fatalf("inner layout = %+v, want size 16 align 8", in.Sub)
	}
	if got, want := l.Offsets(), []uint32{0, 8, 24, 40}; !slices.Equal(got, want) {
		t.Errorf("Offsets() = %v, want %v", got, want)
	}
	more, _ := l.Field("more")
	if more.Stride != 16 {
		t.Errorf("more stride = %d, want 16", more.Stride)
	}
	if l.Size != 72 || l.Align != 8 {
		t.Errorf("Size, Align = %d, %d, want 72, 8", l.Size, l.Align)
	}
}

func TestComputeRejectsUnrepresentable(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		conv Convention
	}{
		{"bool", KindBool, DefaultConvention},
		{"f16", KindF16, DefaultConvention},
		{"u8", KindU8, DefaultConvention},
		{"i16", KindI16, DefaultConvention},
		{"f64 without capability", KindF64, DefaultConvention},
		{"u64 without int64", KindU64, Convention{Rules: Scalar}},
		{"address without int64", KindAddress, Convention{Rules: Std430}},
		{"invalid", KindInvalid, DefaultConvention},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(NewStruct("Bad", Of("ok", KindU32), Of("x", tt.kind)), tt.conv)
			if !errors.Is(err, ErrDefinition) {
				t.Fatalf("Compute() error = %v, want ErrDefinition", err)
			}
			var de *DefinitionError
			if !errors.As(err, &de) || de.Struct != "Bad" || de.Field != "x" {
				t.Errorf("DefinitionError = %+v, want Bad.x", de)
			}
		})
	}
}

func TestComputeAcceptsCapabilities(t *testing.T) {
	s := NewStruct("Wide", Of("d", KindF64), Of("n", KindI64))
	l, err := Compute(s, Convention{Rules: Scalar, Int64: true, Float64: true})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if l.Size != 16 || l.Align != 8 {
		t.Errorf("Size, Align = %d, %d, want 16, 8", l.Size, l.Align)
	}
}

func TestComputeMalformed(t *testing.T) {
	self := NewStruct("Loop", Of("a", KindU32))
	self.Fields = append(self.Fields, Nested("again", self))

	tests := []struct {
		name string
		s    *Struct
	}{
		{"nil", nil},
		{"empty", NewStruct("Empty")},
		{"bad name", NewStruct("2x", Of("a", KindU32))},
		{"empty field", NewStruct("S", Of("", KindU32))},
		{"duplicate", NewStruct("S", Of("a", KindU32), Of("a", KindF32))},
		{"duplicate shader", NewStruct("S", Of("a", KindU32).Named("x"), Of("b", KindU32).Named("x"))},
		{"negative len", NewStruct("S", ArrayOf("a", KindU32, -1))},
		{"struct without def", NewStruct("S", Of("a", KindStruct))},
		{"target on scalar", NewStruct("S", Field{Name: "a", Kind: KindU32, Target: "X"})},
		{"recursive", self},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compute(tt.s, DefaultConvention); !errors.Is(err, ErrDefinition) {
				t.Errorf("Compute() error = %v, want ErrDefinition", err)
			}
		})
	}
}

func TestComputeRejectsOversize(t *testing.T) {
	big := NewStruct("Big", ArrayOf("data", KindU32, 1<<29))
	tests := []struct {
		name string
		s    *Struct
	}{
		{"array wraps", NewStruct("S", Of("head", KindU32), ArrayOf("data", KindVec4F, 1<<28), Of("tail", KindU32))},
		{"length above u32", NewStruct("S", ArrayOf("data", KindU32, 1<<32+1))},
		{"offset wraps", NewStruct("S", ArrayOf("data", KindU32, 1<<30-1), Of("a", KindU32), Of("b", KindU32))},
		{"nested array wraps", NewStruct("S", ArrayOf("blocks", KindStruct, 2), Of("tail", KindU32))},
		{"address past limit", NewStruct("S", ArrayOf("data", KindU32, 1<<30-1), Of("addr", KindAddress))},
		{"size rounds past limit", NewStruct("S", Of("addr", KindAddress), ArrayOf("data", KindU32, 1<<30-3))},
	}
	tests[3].s.Fields[0].Struct = big
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Compute(tt.s, DefaultConvention)
			if !errors.Is(err, ErrDefinition) {
				t.Errorf("Compute() = %v, %v, want ErrDefinition", l, err)
			}
		})
	}

	l, err := Compute(NewStruct("S", ArrayOf("data", KindU32, 1<<30-1)), DefaultConvention)
	if err != nil {
		t.Fatalf("Compute() of a layout just below the limit error = %v", err)
	}
	if l.Size != 1<<32-4 {
		t.Errorf("Size = %d, want %d", l.Size, uint32(1<<32-4))
	}
}

func TestComputeUnknownRules(t *testing.T) {
	if _, err := Compute(NewStruct("S", Of("a", KindU32)), Convention{}); err == nil {
		t.Error("Compute() with zero rules should fail")
	}
}

func TestComputeDeterministic(t *testing.T) {
	s := NewStruct("D", Of("a", KindU32), Of("m", KindMat3F), Ref("p", "D"), ArrayOf("v", KindVec2F, 5))
	first, err := Compute(s, DefaultConvention)
	if err != nil {
		t.Fatal(err)
	}
	for range 10 {
		again, err := Compute(s, DefaultConvention)
		if err != nil {
			t.Fatal(err)
		}
		if again.String() != first.String() {
			t.Fatalf("layout changed between runs:\n%s\n%s", first, again)
		}
	}
}

var representable = []Kind{
	KindF32, KindVec2F, KindVec3F, KindVec4F,
	KindI32, KindVec2I, KindVec3I, KindVec4I,
	KindU32, KindVec2U, KindVec3U, KindVec4U,
	KindMat2F, KindMat3F, KindMat4F,
	KindU64, KindI64, KindAddress,
}

// Random field sequences must always produce aligned, monotonic layouts.
func TestComputeInvariantsRandom(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
	for _, rules := range []Rules{Scalar, Std430} {
		conv := Convention{Rules: rules, Int64: true}
		for iter := range 500 {
			n := 1 + rng.IntN(len(names))
			s := &Struct{Name: "R"}
			for i := range n {
				f := Of(names[i], representable[rng.IntN(len(representable))])
				if rng.IntN(4) == 0 {
					f.Len = 1 + rng.IntN(4)
				}
				s.Fields = append(s.Fields, f)
			}
			l, err := Compute(s, conv)
			if err != nil {
				t.Fatalf("%v iter %d: Compute() error = %v", rules, iter, err)
			}
			if err := l.Check(); err != nil {
				t.Fatalf("%v iter %d: %v\n%s", rules, iter, err, l)
			}
		}
	}
}

func TestLayoutCheckDetectsViolations(t *testing.T) {
	l := &Layout{Name: "X", Size: 8, Align: 4, Fields: []FieldLayout{
		{Field: Of("a", KindU32), Offset: 0, Size: 4, Align: 4},
		{Field: Of("b", KindU32), Offset: 2, Size: 4, Align: 4},
	}}
	if err := l.Check(); err == nil {
		t.Error("Check() should reject overlapping fields")
	}
	l.Fields[1].Offset = 4
	l.Size = 10
	if err := l.Check(); err == nil {
		t.Error("Check() should reject a size that is not a multiple of the alignment")
	}
}
