package derive

import (
	"fmt"
	"strings"

	"github.com/gogpu/gpubridge/layout"
)

var wgslComponents = map[layout.Class]string{
	layout.ClassFloat: "f32",
	layout.ClassSint:  "i32",
	layout.ClassUint:  "u32",
}

// wgslType returns the WGSL type of one element of f.
//
// WGSL storage layout is std430-like, so under scalar rules vectors and
// matrices are emitted as plain arrays, which align to their component.
// 64-bit values have no WGSL type and travel as vec2<u32>.
func wgslType(f layout.Field, c layout.Convention) string {
	k := f.Kind
	switch {
	case k == layout.KindStruct:
		return f.Struct.Name
	case k.Is64():
		return "vec2<u32>"
	case k.Components() == 1:
		return wgslComponents[k.Class()]
	case c.Rules == layout.Scalar:
		return fmt.Sprintf("array<%s, %d>", wgslComponents[k.Class()], k.Components())
	case k.IsMatrix():
		return fmt.Sprintf("mat%dx%d<f32>", k.Columns(), k.Rows())
	default:
		return fmt.Sprintf("vec%d<%s>", k.Rows(), wgslComponents[k.Class()])
	}
}

// WGSLDecl renders the WGSL struct declaration of l.
func WGSLDecl(l *layout.Layout) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// %s: %d bytes, align %d.\n", l.Name, l.Size, l.Align)
	fmt.Fprintf(&b, "struct %s {\n", l.Name)
	for _, fl := range l.Fields {
		t := wgslType(fl.Field, l.Convention)
		if fl.Field.Len > 0 {
			t = fmt.Sprintf("array<%s, %d>", t, fl.Field.Len)
		}
		fmt.Fprintf(&b, "    %s: %s, // offset %d\n", fl.Field.Shader(), t, fl.Offset)
	}
	b.WriteString("}\n")
	return b.String()
}

// WGSLFile renders every declaration of ls into one WGSL source.
func WGSLFile(ls []*layout.Layout, c layout.Convention) string {
	var b strings.Builder
	b.WriteString("// Code generated by layoutgen. DO NOT EDIT.\n")
	fmt.Fprintf(&b, "// Layout convention: %v. 64-bit values are vec2<u32> (low, high).\n", c)
	for _, l := range ls {
		b.WriteByte('\n')
		b.WriteString(WGSLDecl(l))
	}
	return b.String()
}
