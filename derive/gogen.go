package derive

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/tools/imports"

	"github.com/gogpu/gpubridge/layout"
)

const codecImport = "github.com/gogpu/gpubridge/codec"

func codecSuffix(k layout.Kind) string {
	if k == layout.KindAddress {
		return "U64"
	}
	var c string
	switch k.Class() {
	case layout.ClassFloat:
		c = "F"
	case layout.ClassSint:
		c = "I"
	default:
		c = "U"
	}
	return fmt.Sprintf("%s%d", c, k.Width()*8)
}

func exported(name string) string {
	r, n := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[n:]
}

// offsetExpr joins a constant base with index terms, dropping a zero base.
func offsetExpr(base uint32, terms ...string) string {
	var parts []string
	if base != 0 {
		parts = append(parts, fmt.Sprint(base))
	}
	for _, t := range terms {
		if t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, "+")
}

type goWriter struct {
	b    strings.Builder
	conv layout.Convention
}

func (w *goWriter) line(format string, args ...any) {
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

// value writes the encode or decode statements of one element of fl.
func (w *goWriter) value(fl layout.FieldLayout, expr string, base uint32, arrayTerm, idx string, decode bool) {
	k := fl.Field.Kind
	if k == layout.KindStruct {
		method := "EncodeGPU"
		if decode {
			method = "DecodeGPU"
		}
		w.line("%s.%s(b[%s:])", expr, method, offsetExpr(base, arrayTerm))
		return
	}
	fn := "codec.Put" + codecSuffix(k)
	if decode {
		fn = "codec.Get" + codecSuffix(k)
	}
	component := func(e, off string) string {
		if decode {
			return fmt.Sprintf("%s(b[%s:], &%s)", fn, off, e)
		}
		return fmt.Sprintf("%s(b[%s:], %s)", fn, off, e)
	}
	if k.Components() == 1 {
		w.line("%s", component(expr, offsetExpr(base, arrayTerm)))
		return
	}
	width, rows := k.Width(), k.Rows()
	var term string
	if stride := w.conv.ColumnStride(k); !k.IsMatrix() || stride == width*rows {
		term = fmt.Sprintf("%d*%s", width, idx)
	} else {
		term = fmt.Sprintf("%d*(%s/%d)+%d*(%s%%%d)", stride, idx, rows, width, idx, rows)
	}
	w.line("for %s := range %s {", idx, expr)
	w.line("%s", component(expr+"["+idx+"]", offsetExpr(base, arrayTerm, term)))
	w.line("}")
}

func (w *goWriter) field(fl layout.FieldLayout, decode bool) {
	expr := "v." + fl.Field.Name
	if fl.Field.Len == 0 {
		w.value(fl, expr, fl.Offset, "", "i", decode)
		return
	}
	w.line("for i := range %s {", expr)
	w.value(fl, expr+"[i]", fl.Offset, fmt.Sprintf("%d*i", fl.Stride), "j", decode)
	w.line("}")
}

// GoDecl renders the layout constants and the EncodeGPU/DecodeGPU methods
// of l. The host type named l.Name must declare fields named after the
// definition's host names, using [N]T for vectors, [C*R]float32 for
// column-major matrices and the nested struct types for KindStruct fields.
func GoDecl(l *layout.Layout) string {
	w := &goWriter{conv: l.Convention}
	n := l.Name
	w.line("// %s GPU layout (%v).", n, l.Convention)
	w.line("const (")
	w.line("%sSize = %d", n, l.Size)
	w.line("%sAlign = %d", n, l.Align)
	w.line("")
	for _, fl := range l.Fields {
		w.line("%s%sOffset = %d", n, exported(fl.Field.Name), fl.Offset)
	}
	w.line(")")
	w.line("")

	w.line("// EncodeGPU writes v into b in its GPU layout. b must hold at least")
	w.line("// %sSize bytes; padding bytes are zeroed.", n)
	w.line("func (v *%s) EncodeGPU(b []byte) {", n)
	w.line("clear(b[:%sSize])", n)
	for _, fl := range l.Fields {
		w.field(fl, false)
	}
	w.line("}")
	w.line("")

	w.line("// DecodeGPU reads v from its GPU layout in b.")
	w.line("func (v *%s) DecodeGPU(b []byte) {", n)
	w.line("_ = b[%sSize-1]", n)
	for _, fl := range l.Fields {
		w.field(fl, true)
	}
	w.line("}")
	return w.b.String()
}

// GoFile assembles the Go declarations of units into one formatted source
// file of package pkg.
func GoFile(pkg string, units []*Unit) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("// Code generated by layoutgen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\nimport %q\n", pkg, codecImport)
	for _, u := range units {
		b.WriteByte('\n')
		b.WriteString(u.Go)
	}
	out, err := imports.Process(pkg+"_layout.go", b.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("derive: format generated Go: %w", err)
	}
	return out, nil
}

var kindIdents = map[layout.Kind]string{
	layout.KindF32: "KindF32", layout.KindVec2F: "KindVec2F", layout.KindVec3F: "KindVec3F", layout.KindVec4F: "KindVec4F",
	layout.KindI32: "KindI32", layout.KindVec2I: "KindVec2I", layout.KindVec3I: "KindVec3I", layout.KindVec4I: "KindVec4I",
	layout.KindU32: "KindU32", layout.KindVec2U: "KindVec2U", layout.KindVec3U: "KindVec3U", layout.KindVec4U: "KindVec4U",
	layout.KindMat2F: "KindMat2F", layout.KindMat3F: "KindMat3F", layout.KindMat4F: "KindMat4F",
	layout.KindU64: "KindU64", layout.KindI64: "KindI64", layout.KindAddress: "KindAddress", layout.KindF64: "KindF64",
	layout.KindStruct: "KindStruct", layout.KindBool: "KindBool", layout.KindF16: "KindF16",
	layout.KindI8: "KindI8", layout.KindU8: "KindU8", layout.KindI16: "KindI16", layout.KindU16: "KindU16",
}

func defVar(name string) string {
	r, n := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r)) + name[n:] + "Def"
}

// CatalogFile renders Go source declaring defs as layout.Struct values and
// a Catalog function returning them as a layout.Library. Nested structs
// must be among defs.
func CatalogFile(pkg string, defs []*layout.Struct) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("// Code generated by layoutgen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\nimport %q\n", pkg, "github.com/gogpu/gpubridge/layout")
	for _, s := range defs {
		fmt.Fprintf(&b, "\nvar %s = &layout.Struct{Name: %q, Fields: []layout.Field{\n", defVar(s.Name), s.Name)
		for _, f := range s.Fields {
			fmt.Fprintf(&b, "{Name: %q, ShaderName: %q, Kind: layout.%s", f.Name, f.Shader(), kindIdents[f.Kind])
			if f.Len > 0 {
				fmt.Fprintf(&b, ", Len: %d", f.Len)
			}
			if f.Struct != nil {
				fmt.Fprintf(&b, ", Struct: %s", defVar(f.Struct.Name))
			}
			if f.Target != "" {
				fmt.Fprintf(&b, ", Target: %q", f.Target)
			}
			b.WriteString("},\n")
		}
		b.WriteString("}}\n")
	}
	b.WriteString("\n// Catalog returns the cross-boundary definitions of this package.\nfunc Catalog() *layout.Library {\nreturn layout.NewLibrary(\n")
	for _, s := range defs {
		fmt.Fprintf(&b, "%s,\n", defVar(s.Name))
	}
	b.WriteString(")\n}\n")
	out, err := imports.Process(pkg+"_catalog.go", b.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("derive: format catalog: %w", err)
	}
	return out, nil
}
