package layout

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// FieldLayout places one field inside a struct.
type FieldLayout struct {
	Field Field

	// Offset is the byte offset from the start of the struct.
	Offset uint32

	// Size is the total size, all array elements included.
	Size uint32

	Align uint32

	// Stride is the array element stride; 0 for non-array fields.
	Stride uint32

	// Sub is the nested layout of a KindStruct field.
	Sub *Layout
}

// ElemSize returns the size of one element (Size for non-arrays).
func (fl FieldLayout) ElemSize() uint32 {
	if fl.Field.Len > 0 {
		return fl.Stride
	}
	return fl.Size
}

// Layout is the derived memory layout of a struct. It is never authored.
type Layout struct {
	Name       string
	Convention Convention
	Size       uint32
	Align      uint32
	Fields     []FieldLayout
}

// Field returns the layout of the field with the given host name.
func (l *Layout) Field(name string) (FieldLayout, bool) {
	for _, f := range l.Fields {
		if f.Field.Name == name {
			return f, true
		}
	}
	return FieldLayout{}, false
}

// Offsets returns the field offsets in declaration order.
func (l *Layout) Offsets() []uint32 {
	out := make([]uint32, len(l.Fields))
	for i, f := range l.Fields {
		out[i] = f.Offset
	}
	return out
}

// Check verifies the layout invariants: offsets never decrease, fields do
// not overlap, every offset is aligned, and the size is a multiple of the
// struct alignment.
func (l *Layout) Check() error {
	var end uint64
	for i, f := range l.Fields {
		if i > 0 && f.Offset < l.Fields[i-1].Offset {
			return fmt.Errorf("layout: %s.%s: offset %d decreases", l.Name, f.Field.Name, f.Offset)
		}
		if uint64(f.Offset) < end {
			return fmt.Errorf("layout: %s.%s: offset %d overlaps previous field ending at %d", l.Name, f.Field.Name, f.Offset, end)
		}
		if !IsAligned(f.Offset, f.Align) {
			return fmt.Errorf("layout: %s.%s: offset %d not aligned to %d", l.Name, f.Field.Name, f.Offset, f.Align)
		}
		if f.Sub != nil {
			if err := f.Sub.Check(); err != nil {
				return err
			}
		}
		end = uint64(f.Offset) + uint64(f.Size)
	}
	if end > uint64(l.Size) {
		return fmt.Errorf("layout: %s: fields end at %d past size %d", l.Name, end, l.Size)
	}
	if !IsAligned(l.Size, l.Align) {
		return fmt.Errorf("layout: %s: size %d not a multiple of alignment %d", l.Name, l.Size, l.Align)
	}
	return nil
}

// String renders the layout as an offset table.
func (l *Layout) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%v) size=%d align=%d\n", l.Name, l.Convention, l.Size, l.Align)
	for _, f := range l.Fields {
		typ := f.Field.Kind.String()
		if f.Sub != nil {
			typ = f.Sub.Name
		}
		if f.Field.Len > 0 {
			typ = fmt.Sprintf("%s[%d] stride=%d", typ, f.Field.Len, f.Stride)
		}
		fmt.Fprintf(&b, "  %4d %-24s %s size=%d align=%d\n", f.Offset, f.Field.Shader(), typ, f.Size, f.Align)
	}
	return b.String()
}

var identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Compute derives the layout of s under c. The result depends only on the
// definition and the convention.
func Compute(s *Struct, c Convention) (*Layout, error) {
	if c.Rules != Scalar && c.Rules != Std430 {
		return nil, fmt.Errorf("layout: unknown rules %v", c.Rules)
	}
	return compute(s, c, nil)
}

func compute(s *Struct, c Convention, stack []string) (*Layout, error) {
	if s == nil {
		return nil, definitionError("?", "", "nil struct")
	}
	if !identRegex.MatchString(s.Name) {
		return nil, definitionError(s.Name, "", "invalid struct name")
	}
	for _, n := range stack {
		if n == s.Name {
			return nil, definitionError(s.Name, "", "recursive definition via %s", strings.Join(stack, " -> "))
		}
	}
	if len(s.Fields) == 0 {
		return nil, definitionError(s.Name, "", "struct has no fields")
	}
	stack = append(stack, s.Name)

	l := &Layout{Name: s.Name, Convention: c, Align: 1, Fields: make([]FieldLayout, 0, len(s.Fields))}
	seen := make(map[string]bool, len(s.Fields))
	seenShader := make(map[string]bool, len(s.Fields))
	var offset uint32
	for _, f := range s.Fields {
		if err := checkField(s.Name, f, seen, seenShader); err != nil {
			return nil, err
		}
		fl := FieldLayout{Field: f}
		var align, size uint32
		if f.Kind == KindStruct {
			sub, err := compute(f.Struct, c, stack)
			if err != nil {
				return nil, err
			}
			fl.Sub = sub
			align, size = sub.Align, sub.Size
		} else {
			if err := c.Representable(f.Kind); err != nil {
				return nil, definitionError(s.Name, f.Name, "%v", err)
			}
			align, size = c.shape(f.Kind)
		}
		total := uint64(size)
		if f.Len > 0 {
			fl.Stride = AlignUp(size, align)
			total = uint64(fl.Stride) * uint64(f.Len)
		}
		start := AlignUp(uint64(offset), uint64(align))
		end := start + total
		if total > math.MaxUint32 || end > math.MaxUint32 {
			return nil, definitionError(s.Name, f.Name, "layout exceeds %d bytes", uint64(math.MaxUint32))
		}
		fl.Offset, fl.Size, fl.Align = uint32(start), uint32(total), align
		l.Fields = append(l.Fields, fl)
		offset = uint32(end)
		l.Align = max(l.Align, align)
	}
	size := AlignUp(uint64(offset), uint64(l.Align))
	if size > math.MaxUint32 {
		return nil, definitionError(s.Name, "", "layout exceeds %d bytes", uint64(math.MaxUint32))
	}
	l.Size = uint32(size)
	return l, nil
}

func checkField(sname string, f Field, seen, seenShader map[string]bool) error {
	switch {
	case f.Name == "":
		return definitionError(sname, "", "field with empty name")
	case seen[f.Name]:
		return definitionError(sname, f.Name, "duplicate field name")
	case !identRegex.MatchString(f.Shader()):
		return definitionError(sname, f.Name, "invalid shader name %q", f.Shader())
	case seenShader[f.Shader()]:
		return definitionError(sname, f.Name, "duplicate shader name %q", f.Shader())
	case f.Len < 0:
		return definitionError(sname, f.Name, "negative array length %d", f.Len)
	case f.Kind == KindStruct && f.Struct == nil:
		return definitionError(sname, f.Name, "struct field without a definition")
	case f.Kind != KindStruct && f.Struct != nil:
		return definitionError(sname, f.Name, "%v field carries a struct definition", f.Kind)
	case f.Target != "" && f.Kind != KindAddress:
		return definitionError(sname, f.Name, "only address fields may name a target")
	}
	seen[f.Name] = true
	seenShader[f.Shader()] = true
	return nil
}
