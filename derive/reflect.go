package derive

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gogpu/gpubridge/layout"
)

// Validator independently computes the layout of emitted shader
// declarations and compares it with the host layouts.
type Validator interface {
	// Name identifies the validator in mismatch reports.
	Name() string

	// Validate checks every layout in ls against the structs declared in
	// the WGSL source. It returns a *DerivationMismatchError on divergence
	// and an error wrapping ErrValidatorUnavailable if it cannot run.
	Validate(wgsl string, ls []*layout.Layout) error
}

// wgslTypeLayout is the size and alignment of a WGSL type.
type wgslTypeLayout struct {
	size, align uint32
}

// wgslPrimitiveLayoutMap holds the WGSL host-shareable sizes and alignments
// of scalar and vector types. Matrices are derived from their column
// vectors.
var wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{
	"f32": {4, 4}, "i32": {4, 4}, "u32": {4, 4}, "f16": {2, 2},
	"atomic<u32>": {4, 4}, "atomic<i32>": {4, 4},

	"vec2<f32>": {8, 8}, "vec2f": {8, 8}, "vec3<f32>": {12, 16}, "vec3f": {12, 16}, "vec4<f32>": {16, 16}, "vec4f": {16, 16},
	"vec2<i32>": {8, 8}, "vec2i": {8, 8}, "vec3<i32>": {12, 16}, "vec3i": {12, 16}, "vec4<i32>": {16, 16}, "vec4i": {16, 16},
	"vec2<u32>": {8, 8}, "vec2u": {8, 8}, "vec3<u32>": {12, 16}, "vec3u": {12, 16}, "vec4<u32>": {16, 16}, "vec4u": {16, 16},
	"vec2<f16>": {4, 4}, "vec3<f16>": {6, 8}, "vec4<f16>": {8, 8},
}

var (
	// structBlockRegex matches struct declarations and captures the name and body.
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// memberRegex matches one member: optional attributes, name, colon, type.
	memberRegex = regexp.MustCompile(`^((?:@\w+\([^)]*\)\s*)*)(\w+)\s*:\s*(.+)$`)

	attrRegex = regexp.MustCompile(`@(\w+)\(\s*(\d+)\s*\)`)

	matRegex = regexp.MustCompile(`^mat([234])x([234])(?:<f32>|f)$`)

	lineCommentRegex = regexp.MustCompile(`//[^\n]*`)
)

type wgslMember struct {
	name, typ   string
	align, size uint32 // explicit @align/@size, 0 if absent
}

type wgslStruct struct {
	name    string
	members []wgslMember
}

type wgslMemberLayout struct {
	name                 string
	offset, size, stride uint32
}

type wgslStructLayout struct {
	wgslTypeLayout
	members []wgslMemberLayout
}

// parseWGSLStructs extracts struct declarations in source order.
func parseWGSLStructs(src string) ([]wgslStruct, error) {
	src = lineCommentRegex.ReplaceAllString(src, "")
	var out []wgslStruct
	for _, m := range structBlockRegex.FindAllStringSubmatch(src, -1) {
		s := wgslStruct{name: m[1]}
		for _, part := range splitAtTopLevelCommas(m[2]) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			fm := memberRegex.FindStringSubmatch(part)
			if fm == nil {
				return nil, fmt.Errorf("struct %s: cannot parse member %q", s.name, part)
			}
			mem := wgslMember{name: fm[2], typ: strings.Join(strings.Fields(fm[3]), "")}
			for _, a := range attrRegex.FindAllStringSubmatch(fm[1], -1) {
				n, _ := strconv.ParseUint(a[2], 10, 32)
				switch a[1] {
				case "align":
					mem.align = uint32(n)
				case "size":
					mem.size = uint32(n)
				}
			}
			s.members = append(s.members, mem)
		}
		out = append(out, s)
	}
	return out, nil
}

// splitAtTopLevelCommas splits s on commas outside angle brackets.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// resolveTypeLayout returns the size and alignment of a WGSL type name
// (whitespace removed). Runtime-sized arrays are not host-shareable here.
func resolveTypeLayout(t string, known map[string]*wgslStructLayout) (wgslTypeLayout, uint32, bool) {
	if l, ok := wgslPrimitiveLayoutMap[t]; ok {
		return l, 0, true
	}
	if s, ok := known[t]; ok {
		return s.wgslTypeLayout, 0, true
	}
	if m := matRegex.FindStringSubmatch(t); m != nil {
		cols, _ := strconv.Atoi(m[1])
		col := wgslPrimitiveLayoutMap["vec"+m[2]+"<f32>"]
		stride := layout.AlignUp(col.size, col.align)
		return wgslTypeLayout{size: stride * uint32(cols), align: col.align}, 0, true
	}
	if strings.HasPrefix(t, "array<") && strings.HasSuffix(t, ">") {
		parts := splitAtTopLevelCommas(t[len("array<") : len(t)-1])
		if len(parts) != 2 {
			return wgslTypeLayout{}, 0, false
		}
		elem, _, ok := resolveTypeLayout(parts[0], known)
		if !ok {
			return wgslTypeLayout{}, 0, false
		}
		n, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return wgslTypeLayout{}, 0, false
		}
		stride := layout.AlignUp(elem.size, elem.align)
		size := uint64(stride) * n
		if size > math.MaxUint32 {
			return wgslTypeLayout{}, 0, false
		}
		return wgslTypeLayout{size: uint32(size), align: elem.align}, stride, true
	}
	return wgslTypeLayout{}, 0, false
}

func computeStructLayout(s wgslStruct, known map[string]*wgslStructLayout) (*wgslStructLayout, error) {
	out := &wgslStructLayout{wgslTypeLayout: wgslTypeLayout{align: 1}}
	var offset uint64
	for _, m := range s.members {
		tl, stride, ok := resolveTypeLayout(m.typ, known)
		if !ok {
			return nil, fmt.Errorf("struct %s: member %s: unsupported type %s", s.name, m.name, m.typ)
		}
		if m.align != 0 {
			tl.align = m.align
		}
		if m.size != 0 {
			tl.size = m.size
		}
		offset = layout.AlignUp(offset, uint64(tl.align))
		if offset+uint64(tl.size) > math.MaxUint32 {
			return nil, fmt.Errorf("struct %s: member %s: offset %d exceeds the address range", s.name, m.name, offset)
		}
		out.members = append(out.members, wgslMemberLayout{name: m.name, offset: uint32(offset), size: tl.size, stride: stride})
		offset += uint64(tl.size)
		out.align = max(out.align, tl.align)
	}
	size := layout.AlignUp(offset, uint64(out.align))
	if size > math.MaxUint32 {
		return nil, fmt.Errorf("struct %s: size %d exceeds the address range", s.name, size)
	}
	out.size = uint32(size)
	return out, nil
}

// ReflectValidator recomputes struct layouts from the emitted WGSL text
// using the WGSL alignment and size rules. It shares no code with the
// layout package beyond rounding.
type ReflectValidator struct{}

// Name implements Validator.
func (ReflectValidator) Name() string { return "wgsl-reflect" }

// Validate implements Validator.
func (v ReflectValidator) Validate(wgsl string, ls []*layout.Layout) error {
	structs, err := parseWGSLStructs(wgsl)
	if err != nil {
		return &DerivationMismatchError{Validator: v.Name(), What: "parse", Detail: err.Error()}
	}
	known := make(map[string]*wgslStructLayout, len(structs))
	for _, s := range structs {
		sl, err := computeStructLayout(s, known)
		if err != nil {
			return &DerivationMismatchError{Validator: v.Name(), Struct: s.name, What: "type", Detail: err.Error()}
		}
		known[s.name] = sl
	}
	for _, l := range ls {
		if err := compareMembers(v.Name(), l, known[l.Name]); err != nil {
			return err
		}
	}
	return nil
}

// compareMembers compares a host layout with a shader-side one. A nil
// shader layout means the struct was not declared.
func compareMembers(validator string, l *layout.Layout, got *wgslStructLayout) error {
	mismatch := func(field, what string, want, have uint32) error {
		return &DerivationMismatchError{Validator: validator, Struct: l.Name, Field: field, What: what, Want: want, Got: have}
	}
	if got == nil {
		return &DerivationMismatchError{Validator: validator, Struct: l.Name, What: "missing", Detail: "struct not declared in shader source"}
	}
	if len(got.members) != len(l.Fields) {
		return mismatch("", "members", uint32(len(l.Fields)), uint32(len(got.members)))
	}
	for i, fl := range l.Fields {
		m := got.members[i]
		name := fl.Field.Shader()
		if m.name != "" && m.name != name {
			return &DerivationMismatchError{Validator: validator, Struct: l.Name, Field: name, What: "name",
				Detail: fmt.Sprintf("member %d is %q in shader", i, m.name)}
		}
		if m.offset != fl.Offset {
			return mismatch(name, "offset", fl.Offset, m.offset)
		}
		if m.size != 0 && m.size != fl.Size {
			return mismatch(name, "size", fl.Size, m.size)
		}
		if fl.Field.Len > 0 && m.stride != 0 && m.stride != fl.Stride {
			return mismatch(name, "stride", fl.Stride, m.stride)
		}
	}
	if got.size != 0 && got.size != l.Size {
		return mismatch("", "size", l.Size, got.size)
	}
	return nil
}
