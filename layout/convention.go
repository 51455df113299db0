package layout

import (
	"fmt"
	"strings"
)

// Rules selects the block layout rule set.
type Rules uint8

const (
	// Scalar aligns every component to its own size, as
	// GL_EXT_scalar_block_layout / VK_EXT_scalar_block_layout do.
	Scalar Rules = iota + 1

	// Std430 pads two-component vectors to twice their component size and
	// three- and four-component vectors to four times it.
	Std430
)

func (r Rules) String() string {
	switch r {
	case Scalar:
		return "scalar"
	case Std430:
		return "std430"
	default:
		return fmt.Sprintf("Rules(%d)", uint8(r))
	}
}

// ParseRules parses "scalar" or "std430".
func ParseRules(s string) (Rules, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scalar":
		return Scalar, nil
	case "std430":
		return Std430, nil
	}
	return 0, fmt.Errorf("layout: unknown rules %q", s)
}

// Convention is the full layout convention a derivation runs under. It must
// match the capabilities enabled where the shaders are compiled.
type Convention struct {
	Rules Rules

	// Int64 enables 64-bit integers and device addresses
	// (shaderInt64, GL_EXT_shader_explicit_arithmetic_types_int64).
	Int64 bool

	// Float64 enables double precision fields (shaderFloat64).
	Float64 bool
}

// DefaultConvention is scalar layout with 64-bit integers, the convention the
// shared type library is derived under.
var DefaultConvention = Convention{Rules: Scalar, Int64: true}

// String returns e.g. "scalar+int64".
func (c Convention) String() string {
	s := c.Rules.String()
	if c.Int64 {
		s += "+int64"
	}
	if c.Float64 {
		s += "+float64"
	}
	return s
}

// Representable reports why k cannot be used under c, or nil if it can.
func (c Convention) Representable(k Kind) error {
	switch {
	case !k.Valid():
		return fmt.Errorf("unknown kind %v", k)
	case k == KindBool:
		return fmt.Errorf("bool has no defined size across the host/shader boundary; use u32")
	case k == KindF16, k == KindI8, k == KindU8, k == KindI16, k == KindU16:
		return fmt.Errorf("%v needs 8/16-bit storage, which %v does not enable", k, c)
	case k == KindF64 && !c.Float64:
		return fmt.Errorf("f64 needs the float64 capability, which %v does not enable", c)
	case k.Is64() && k != KindF64 && !c.Int64:
		return fmt.Errorf("%v needs the int64 capability, which %v does not enable", k, c)
	}
	return nil
}

// shape returns alignment and size of a non-struct kind under c.
func (c Convention) shape(k Kind) (align, size uint32) {
	w, rows, cols := k.Width(), k.Rows(), k.Columns()
	if c.Rules == Scalar {
		return w, w * rows * cols
	}
	// std430: a matrix is an array of column vectors.
	var va uint32
	switch rows {
	case 1:
		va = w
	case 2:
		va = 2 * w
	default:
		va = 4 * w
	}
	if cols == 1 {
		return va, w * rows
	}
	stride := AlignUp(w*rows, va)
	return va, stride * cols
}

// ComponentOffsets returns the byte offset of every component of k relative
// to the start of the value, in column-major order. It is nil for
// KindStruct.
func (c Convention) ComponentOffsets(k Kind) []uint32 {
	if k == KindStruct || !k.Valid() {
		return nil
	}
	w, rows, cols := k.Width(), k.Rows(), k.Columns()
	colStride := c.ColumnStride(k)
	out := make([]uint32, 0, rows*cols)
	for col := range cols {
		for row := range rows {
			out = append(out, col*colStride+row*w)
		}
	}
	return out
}

// ColumnStride returns the distance between matrix columns, or the vector
// size for non-matrix kinds.
func (c Convention) ColumnStride(k Kind) uint32 {
	if !k.IsMatrix() {
		return k.Width() * k.Rows()
	}
	_, size := c.shape(k)
	return size / k.Columns()
}
