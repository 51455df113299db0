package derive

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/gpubridge/layout"
)

// GLSL extensions the emitted declarations rely on.
const (
	ExtScalarBlockLayout = "GL_EXT_scalar_block_layout"
	ExtBufferReference   = "GL_EXT_buffer_reference"
	ExtInt64             = "GL_EXT_shader_explicit_arithmetic_types_int64"
)

var glslScalars = map[layout.Kind]string{
	layout.KindF32: "float", layout.KindVec2F: "vec2", layout.KindVec3F: "vec3", layout.KindVec4F: "vec4",
	layout.KindI32: "int", layout.KindVec2I: "ivec2", layout.KindVec3I: "ivec3", layout.KindVec4I: "ivec4",
	layout.KindU32: "uint", layout.KindVec2U: "uvec2", layout.KindVec3U: "uvec3", layout.KindVec4U: "uvec4",
	layout.KindMat2F: "mat2", layout.KindMat3F: "mat3", layout.KindMat4F: "mat4",
	layout.KindU64: "uint64_t", layout.KindI64: "int64_t", layout.KindF64: "double",
	layout.KindAddress: "uint64_t",
}

// ReferenceType returns the GLSL buffer_reference block name for arrays of
// the named struct.
func ReferenceType(target string) string { return target + "Array" }

func glslType(f layout.Field) string {
	switch {
	case f.Kind == layout.KindStruct:
		return f.Struct.Name
	case f.Kind == layout.KindAddress && f.Target != "":
		return ReferenceType(f.Target)
	}
	return glslScalars[f.Kind]
}

func blockRules(c layout.Convention) string {
	if c.Rules == layout.Std430 {
		return "std430"
	}
	return "scalar"
}

// GLSLDecl renders the GLSL struct declaration of l.
func GLSLDecl(l *layout.Layout) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// %s: %d bytes, align %d.\n", l.Name, l.Size, l.Align)
	fmt.Fprintf(&b, "struct %s {\n", l.Name)
	for _, fl := range l.Fields {
		decl := glslType(fl.Field) + " " + fl.Field.Shader()
		if fl.Field.Len > 0 {
			decl += fmt.Sprintf("[%d]", fl.Field.Len)
		}
		fmt.Fprintf(&b, "    %s; // offset %d\n", decl, fl.Offset)
	}
	b.WriteString("};\n")
	return b.String()
}

// GLSLExtensions returns the extensions the declarations of ls need.
func GLSLExtensions(ls []*layout.Layout, c layout.Convention) []string {
	var exts []string
	if c.Rules == layout.Scalar {
		exts = append(exts, ExtScalarBlockLayout)
	}
	var refs, wide bool
	walkFields(ls, func(f layout.Field) {
		refs = refs || (f.Kind == layout.KindAddress && f.Target != "")
		wide = wide || (f.Kind.Is64() && f.Kind != layout.KindF64)
	})
	if refs {
		exts = append(exts, ExtBufferReference)
	}
	if wide {
		exts = append(exts, ExtInt64)
	}
	return exts
}

// GLSLFile renders a complete include file for ls: extension directives,
// forward declarations of buffer references, struct declarations and the
// buffer_reference blocks that address fields point at.
func GLSLFile(ls []*layout.Layout, c layout.Convention) (string, error) {
	byName := make(map[string]*layout.Layout, len(ls))
	for _, l := range ls {
		byName[l.Name] = l
	}
	var targets []string
	walkFields(ls, func(f layout.Field) {
		if f.Kind == layout.KindAddress && f.Target != "" && !slices.Contains(targets, f.Target) {
			targets = append(targets, f.Target)
		}
	})
	slices.Sort(targets)

	var b strings.Builder
	b.WriteString("// Code generated by layoutgen. DO NOT EDIT.\n")
	fmt.Fprintf(&b, "// Layout convention: %v.\n\n", c)
	for _, ext := range GLSLExtensions(ls, c) {
		fmt.Fprintf(&b, "#extension %s : require\n", ext)
	}
	if len(targets) > 0 {
		b.WriteByte('\n')
		for _, t := range targets {
			fmt.Fprintf(&b, "layout(buffer_reference) buffer %s;\n", ReferenceType(t))
		}
	}
	for _, l := range ls {
		b.WriteByte('\n')
		b.WriteString(GLSLDecl(l))
	}
	for _, t := range targets {
		tl, ok := byName[t]
		if !ok {
			return "", fmt.Errorf("%w: address target %q has no layout", layout.ErrUnknownStruct, t)
		}
		fmt.Fprintf(&b, "\nlayout(buffer_reference, %s, buffer_reference_align = %d) readonly buffer %s {\n    %s m[];\n};\n",
			blockRules(c), tl.Align, ReferenceType(t), t)
	}
	return b.String(), nil
}

// walkFields visits every field of ls, nested layouts included.
func walkFields(ls []*layout.Layout, fn func(layout.Field)) {
	var walk func(*layout.Layout)
	walk = func(l *layout.Layout) {
		for _, fl := range l.Fields {
			fn(fl.Field)
			if fl.Sub != nil {
				walk(fl.Sub)
			}
		}
	}
	for _, l := range ls {
		walk(l)
	}
}
