package layout

import (
	"fmt"
	"strings"
)

// Kind is the shader-visible type of a field.
type Kind uint8

// Representable kinds.
const (
	KindInvalid Kind = iota

	KindF32
	KindVec2F
	KindVec3F
	KindVec4F

	KindI32
	KindVec2I
	KindVec3I
	KindVec4I

	KindU32
	KindVec2U
	KindVec3U
	KindVec4U

	// Column-major float matrices.
	KindMat2F
	KindMat3F
	KindMat4F

	// KindU64 and KindAddress need Convention.Int64.
	KindU64
	KindI64
	KindAddress

	// KindF64 needs Convention.Float64.
	KindF64

	KindStruct

	// Kinds a definition may name but no convention can represent.
	KindBool
	KindF16
	KindI8
	KindU8
	KindI16
	KindU16

	kindCount
)

// Class is the component class of a kind.
type Class uint8

const (
	ClassNone Class = iota
	ClassFloat
	ClassSint
	ClassUint
)

type kindInfo struct {
	name  string
	class Class
	width uint32 // bytes per component
	rows  uint32 // components per column
	cols  uint32
}

var kinds = [kindCount]kindInfo{
	KindInvalid: {name: "invalid"},
	KindF32:     {"f32", ClassFloat, 4, 1, 1},
	KindVec2F:   {"vec2f", ClassFloat, 4, 2, 1},
	KindVec3F:   {"vec3f", ClassFloat, 4, 3, 1},
	KindVec4F:   {"vec4f", ClassFloat, 4, 4, 1},
	KindI32:     {"i32", ClassSint, 4, 1, 1},
	KindVec2I:   {"vec2i", ClassSint, 4, 2, 1},
	KindVec3I:   {"vec3i", ClassSint, 4, 3, 1},
	KindVec4I:   {"vec4i", ClassSint, 4, 4, 1},
	KindU32:     {"u32", ClassUint, 4, 1, 1},
	KindVec2U:   {"vec2u", ClassUint, 4, 2, 1},
	KindVec3U:   {"vec3u", ClassUint, 4, 3, 1},
	KindVec4U:   {"vec4u", ClassUint, 4, 4, 1},
	KindMat2F:   {"mat2f", ClassFloat, 4, 2, 2},
	KindMat3F:   {"mat3f", ClassFloat, 4, 3, 3},
	KindMat4F:   {"mat4f", ClassFloat, 4, 4, 4},
	KindU64:     {"u64", ClassUint, 8, 1, 1},
	KindI64:     {"i64", ClassSint, 8, 1, 1},
	KindAddress: {"address", ClassUint, 8, 1, 1},
	KindF64:     {"f64", ClassFloat, 8, 1, 1},
	KindStruct:  {name: "struct"},
	KindBool:    {"bool", ClassNone, 4, 1, 1},
	KindF16:     {"f16", ClassFloat, 2, 1, 1},
	KindI8:      {"i8", ClassSint, 1, 1, 1},
	KindU8:      {"u8", ClassUint, 1, 1, 1},
	KindI16:     {"i16", ClassSint, 2, 1, 1},
	KindU16:     {"u16", ClassUint, 2, 1, 1},
}

func (k Kind) info() kindInfo {
	if k >= kindCount {
		return kinds[KindInvalid]
	}
	return kinds[k]
}

// String returns the canonical kind name, e.g. "vec3f".
func (k Kind) String() string {
	if k >= kindCount {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kinds[k].name
}

// Valid reports whether k is a known kind other than KindInvalid.
func (k Kind) Valid() bool { return k > KindInvalid && k < kindCount }

// Class returns the component class.
func (k Kind) Class() Class { return k.info().class }

// Width returns the size of one component in bytes.
func (k Kind) Width() uint32 { return k.info().width }

// Rows returns the component count of a vector, or of one matrix column.
func (k Kind) Rows() uint32 { return k.info().rows }

// Columns returns the matrix column count; 1 for scalars and vectors.
func (k Kind) Columns() uint32 { return k.info().cols }

// IsVector reports whether k is a 2, 3 or 4 component vector.
func (k Kind) IsVector() bool {
	i := k.info()
	return i.cols == 1 && i.rows > 1
}

// IsMatrix reports whether k is a matrix kind.
func (k Kind) IsMatrix() bool { return k.info().cols > 1 }

// Is64 reports whether k has 64-bit components.
func (k Kind) Is64() bool { return k.info().width == 8 }

// Components returns the total component count.
func (k Kind) Components() uint32 {
	i := k.info()
	return i.rows * i.cols
}

var kindAliases = map[string]Kind{
	"float": KindF32, "int": KindI32, "uint": KindU32,
	"vec2": KindVec2F, "vec3": KindVec3F, "vec4": KindVec4F,
	"ivec2": KindVec2I, "ivec3": KindVec3I, "ivec4": KindVec4I,
	"uvec2": KindVec2U, "uvec3": KindVec3U, "uvec4": KindVec4U,
	"mat2": KindMat2F, "mat3": KindMat3F, "mat4": KindMat4F,
	"vec2<f32>": KindVec2F, "vec3<f32>": KindVec3F, "vec4<f32>": KindVec4F,
	"vec2<i32>": KindVec2I, "vec3<i32>": KindVec3I, "vec4<i32>": KindVec4I,
	"vec2<u32>": KindVec2U, "vec3<u32>": KindVec3U, "vec4<u32>": KindVec4U,
	"mat2x2f": KindMat2F, "mat3x3f": KindMat3F, "mat4x4f": KindMat4F,
	"uint64_t": KindU64, "int64_t": KindI64, "double": KindF64,
	"float16_t": KindF16, "half": KindF16, "ptr": KindAddress, "deviceaddress": KindAddress,
}

// ParseKind parses a kind name. It accepts the canonical names returned by
// String as well as common GLSL and WGSL spellings.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k := KindF32; k < kindCount; k++ {
		if k != KindStruct && kinds[k].name == name {
			return k, nil
		}
	}
	if k, ok := kindAliases[name]; ok {
		return k, nil
	}
	return KindInvalid, fmt.Errorf("layout: unknown kind %q", s)
}
