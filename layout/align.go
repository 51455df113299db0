package layout

import "golang.org/x/exp/constraints"

// AlignUp rounds v up to a multiple of align. An align of 0 returns v.
func AlignUp[T constraints.Unsigned](v, align T) T {
	if align == 0 {
		return v
	}
	return (v + align - 1) / align * align
}

// IsAligned reports whether v is a multiple of align.
func IsAligned[T constraints.Unsigned](v, align T) bool {
	return align == 0 || v%align == 0
}
