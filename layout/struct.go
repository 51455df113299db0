package layout

import (
	"fmt"
	"strings"
)

// Field describes one member of a struct definition.
// Fields are immutable once their struct has been added to a Library.
type Field struct {
	// Name is the host-side name.
	Name string

	// ShaderName is the name used in shader declarations. Empty means Name.
	ShaderName string

	Kind Kind

	// Len is the fixed array length; 0 means the field is not an array.
	Len int

	// Struct is the nested definition for KindStruct fields.
	Struct *Struct

	// Target names the element struct a KindAddress field points at.
	// It only affects shader typing, never the layout.
	Target string
}

// Shader returns the shader-side field name.
func (f Field) Shader() string {
	if f.ShaderName != "" {
		return f.ShaderName
	}
	return f.Name
}

// IsArray reports whether f is a fixed-size array.
func (f Field) IsArray() bool { return f.Len > 0 }

// Struct is a named, ordered list of fields.
type Struct struct {
	Name   string
	Fields []Field
}

// NewStruct returns a struct definition.
func NewStruct(name string, fields ...Field) *Struct {
	return &Struct{Name: name, Fields: fields}
}

// Of declares a field of kind k.
func Of(name string, k Kind) Field { return Field{Name: name, Kind: k} }

// ArrayOf declares a fixed-size array field.
func ArrayOf(name string, k Kind, n int) Field { return Field{Name: name, Kind: k, Len: n} }

// Nested declares a struct-typed field.
func Nested(name string, s *Struct) Field { return Field{Name: name, Kind: KindStruct, Struct: s} }

// Ref declares a device address field pointing at an array of target.
func Ref(name, target string) Field { return Field{Name: name, Kind: KindAddress, Target: target} }

// Named returns a copy of f with its shader name set.
func (f Field) Named(shader string) Field {
	f.ShaderName = shader
	return f
}

// Clone returns a deep copy of s.
func (s *Struct) Clone() *Struct {
	if s == nil {
		return nil
	}
	c := &Struct{Name: s.Name, Fields: make([]Field, len(s.Fields))}
	for i, f := range s.Fields {
		if f.Struct != nil {
			f.Struct = f.Struct.Clone()
		}
		c.Fields[i] = f
	}
	return c
}

// Canonical returns a stable textual form of s, including nested structs.
// Two definitions have the same canonical form iff they describe the same
// cross-boundary contract.
func Canonical(s *Struct) string {
	var b strings.Builder
	writeCanonical(&b, s)
	return b.String()
}

func writeCanonical(b *strings.Builder, s *Struct) {
	if s == nil {
		b.WriteString("nil")
		return
	}
	fmt.Fprintf(b, "struct %s{", s.Name)
	for i, f := range s.Fields {
		if i > 0 {
			b.WriteByte(';')
		}
		fmt.Fprintf(b, "%s/%s:", f.Name, f.Shader())
		if f.Kind == KindStruct {
			writeCanonical(b, f.Struct)
		} else {
			b.WriteString(f.Kind.String())
		}
		if f.Len > 0 {
			fmt.Fprintf(b, "[%d]", f.Len)
		}
		if f.Target != "" {
			fmt.Fprintf(b, "->%s", f.Target)
		}
	}
	b.WriteByte('}')
}
