// Package gosrc reads layout definitions from Go source.
//
// A struct type becomes a definition when its declaration carries the
// //gpubridge:struct directive. Field kinds are inferred from Go types and
// may be overridden with a gpu struct tag:
//
//	//gpubridge:struct
//	type MaterialRecord struct {
//		Color     [4]float32 // vec4f
//		Emissive  [3]float32 // vec3f
//		Roughness float32
//		Tint      [4]float32 `gpu:"mat2"`
//		Weights   [3]float32 `gpu:"array"`
//		Next      gpubridge.DeviceAddress `gpu:"ref=MaterialRecord"`
//		Debug     string `gpu:"-"`
//	}
//
// Tag options, comma separated: a kind name (see layout.ParseKind),
// "array" to keep [N]T as an array of scalars, "name=x" to set the shader
// name, "ref=T" to type an address field, and "-" to skip a host-only field.
package gosrc

import (
	"fmt"
	"go/ast"
	"go/types"
	"path/filepath"
	"reflect"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/gogpu/gpubridge/derive"
	"github.com/gogpu/gpubridge/layout"
)

// Directive marks struct types to derive.
const Directive = "//gpubridge:struct"

// Package is one loaded Go package with its definitions.
type Package struct {
	Name    string
	Path    string
	Dir     string
	Library *layout.Library
}

// Load type-checks the packages matching patterns, relative to dir, and
// extracts their definitions. Packages without definitions are omitted.
func Load(dir string, patterns ...string) ([]*Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo,
		Dir: dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("gosrc: load: %w", err)
	}
	var out []*Package
	for _, p := range pkgs {
		if len(p.Errors) > 0 {
			return nil, fmt.Errorf("gosrc: %s: %v", p.PkgPath, p.Errors[0])
		}
		defs, err := FromPackage(p.Types, p.Syntax)
		if err != nil {
			return nil, err
		}
		if len(defs) == 0 {
			continue
		}
		lib := layout.NewLibrary()
		for _, d := range defs {
			if err := lib.Add(d); err != nil {
				return nil, fmt.Errorf("gosrc: %s: %w", p.PkgPath, err)
			}
		}
		pd := dir
		if len(p.GoFiles) > 0 {
			pd = filepath.Dir(p.GoFiles[0])
		}
		out = append(out, &Package{Name: p.Name, Path: p.PkgPath, Dir: pd, Library: lib})
	}
	return out, nil
}

// FromPackage returns the definitions of every directive-marked struct in
// files, in source order. pkg must be the type-checked package of files.
func FromPackage(pkg *types.Package, files []*ast.File) ([]*layout.Struct, error) {
	c := &converter{pkg: pkg, done: make(map[*types.TypeName]*layout.Struct)}
	var out []*layout.Struct
	for _, f := range files {
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok {
				continue
			}
			for _, spec := range gd.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok || !(hasDirective(gd.Doc) || hasDirective(ts.Doc)) {
					continue
				}
				obj, ok := pkg.Scope().Lookup(ts.Name.Name).(*types.TypeName)
				if !ok {
					return nil, fmt.Errorf("gosrc: %s: type not found", ts.Name.Name)
				}
				s, err := c.structOf(obj)
				if err != nil {
					return nil, err
				}
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func hasDirective(cg *ast.CommentGroup) bool {
	if cg == nil {
		return false
	}
	for _, c := range cg.List {
		if strings.TrimSpace(c.Text) == Directive {
			return true
		}
	}
	return false
}

type converter struct {
	pkg   *types.Package
	done  map[*types.TypeName]*layout.Struct
	stack []*types.TypeName
}

func (c *converter) structOf(obj *types.TypeName) (*layout.Struct, error) {
	if s, ok := c.done[obj]; ok {
		return s, nil
	}
	for _, o := range c.stack {
		if o == obj {
			return nil, fmt.Errorf("gosrc: %s: recursive struct", obj.Name())
		}
	}
	st, ok := obj.Type().Underlying().(*types.Struct)
	if !ok {
		return nil, fmt.Errorf("gosrc: %s: not a struct type", obj.Name())
	}
	c.stack = append(c.stack, obj)
	defer func() { c.stack = c.stack[:len(c.stack)-1] }()

	s := &layout.Struct{Name: obj.Name()}
	for i := range st.NumFields() {
		v := st.Field(i)
		tag, err := parseTag(reflect.StructTag(st.Tag(i)).Get("gpu"))
		if err != nil {
			return nil, fmt.Errorf("gosrc: %s.%s: %w", obj.Name(), v.Name(), err)
		}
		if tag.skip || v.Name() == "_" {
			continue
		}
		f, err := c.field(v.Type(), tag)
		if err != nil {
			return nil, fmt.Errorf("gosrc: %s.%s: %w", obj.Name(), v.Name(), err)
		}
		f.Name = v.Name()
		f.ShaderName = tag.name
		if f.ShaderName == "" {
			f.ShaderName = derive.ShaderName(v.Name())
		}
		if tag.ref != "" {
			if f.Kind != layout.KindAddress {
				return nil, fmt.Errorf("gosrc: %s.%s: ref= needs a DeviceAddress field", obj.Name(), v.Name())
			}
			f.Target = tag.ref
		}
		s.Fields = append(s.Fields, f)
	}
	c.done[obj] = s
	return s, nil
}

type tagOptions struct {
	kind  string
	name  string
	ref   string
	array bool
	skip  bool
}

func parseTag(tag string) (tagOptions, error) {
	var o tagOptions
	if tag == "" {
		return o, nil
	}
	for opt := range strings.SplitSeq(tag, ",") {
		opt = strings.TrimSpace(opt)
		switch {
		case opt == "-":
			o.skip = true
		case opt == "array":
			o.array = true
		case strings.HasPrefix(opt, "name="):
			o.name = strings.TrimPrefix(opt, "name=")
		case strings.HasPrefix(opt, "ref="):
			o.ref = strings.TrimPrefix(opt, "ref=")
		case opt == "":
		default:
			if o.kind != "" {
				return o, fmt.Errorf("two kinds in tag %q", tag)
			}
			o.kind = opt
		}
	}
	return o, nil
}

// scalarKind maps a Go scalar type to its kind.
func scalarKind(t types.Type) (layout.Kind, bool) {
	t = types.Unalias(t)
	if n, ok := t.(*types.Named); ok && n.Obj().Name() == "DeviceAddress" {
		return layout.KindAddress, true
	}
	b, ok := t.Underlying().(*types.Basic)
	if !ok {
		return layout.KindInvalid, false
	}
	switch b.Kind() {
	case types.Float32:
		return layout.KindF32, true
	case types.Int32:
		return layout.KindI32, true
	case types.Uint32:
		return layout.KindU32, true
	case types.Uint64:
		return layout.KindU64, true
	case types.Int64:
		return layout.KindI64, true
	case types.Float64:
		return layout.KindF64, true
	case types.Bool:
		return layout.KindBool, true
	case types.Uint8:
		return layout.KindU8, true
	case types.Int8:
		return layout.KindI8, true
	case types.Uint16:
		return layout.KindU16, true
	case types.Int16:
		return layout.KindI16, true
	}
	return layout.KindInvalid, false
}

var vectors = map[layout.Kind][5]layout.Kind{
	layout.KindF32: {2: layout.KindVec2F, 3: layout.KindVec3F, 4: layout.KindVec4F},
	layout.KindI32: {2: layout.KindVec2I, 3: layout.KindVec3I, 4: layout.KindVec4I},
	layout.KindU32: {2: layout.KindVec2U, 3: layout.KindVec3U, 4: layout.KindVec4U},
}

// element infers the kind of a value that is not itself an array of
// values: a scalar, a vector or matrix spelled as [N]T, or a struct.
func (c *converter) element(t types.Type, tag tagOptions) (layout.Field, bool, error) {
	t = types.Unalias(t)
	if k, ok := scalarKind(t); ok {
		return layout.Field{Kind: k}, true, nil
	}
	if n, ok := t.(*types.Named); ok {
		if _, isStruct := n.Underlying().(*types.Struct); isStruct {
			s, err := c.structOf(n.Obj())
			if err != nil {
				return layout.Field{}, false, err
			}
			return layout.Field{Kind: layout.KindStruct, Struct: s}, true, nil
		}
	}
	arr, ok := t.Underlying().(*types.Array)
	if !ok || tag.array {
		return layout.Field{}, false, nil
	}
	ek, ok := scalarKind(arr.Elem())
	if !ok {
		return layout.Field{}, false, nil
	}
	n := arr.Len()
	if ek == layout.KindF32 && n == 9 {
		return layout.Field{Kind: layout.KindMat3F}, true, nil
	}
	if ek == layout.KindF32 && n == 16 {
		return layout.Field{Kind: layout.KindMat4F}, true, nil
	}
	if vs, ok := vectors[ek]; ok && n >= 2 && n <= 4 {
		return layout.Field{Kind: vs[n]}, true, nil
	}
	return layout.Field{}, false, nil
}

func (c *converter) field(t types.Type, tag tagOptions) (layout.Field, error) {
	if tag.kind != "" {
		return c.tagged(t, tag)
	}
	if f, ok, err := c.element(t, tag); ok || err != nil {
		return f, err
	}
	arr, ok := types.Unalias(t).Underlying().(*types.Array)
	if !ok {
		return layout.Field{}, fmt.Errorf("unsupported type %v", t)
	}
	f, ok, err := c.element(arr.Elem(), tagOptions{})
	if err != nil {
		return layout.Field{}, err
	}
	if !ok {
		return layout.Field{}, fmt.Errorf("unsupported array element type %v", arr.Elem())
	}
	f.Len = int(arr.Len())
	return f, nil
}

// tagged applies an explicit kind. The Go type must hold exactly the
// kind's components, optionally as an outer array of such values.
func (c *converter) tagged(t types.Type, tag tagOptions) (layout.Field, error) {
	k, err := layout.ParseKind(tag.kind)
	if err != nil {
		return layout.Field{}, err
	}
	n, elem := flatten(t)
	ek, ok := scalarKind(elem)
	if !ok || ek.Class() != k.Class() || ek.Width() != k.Width() {
		return layout.Field{}, fmt.Errorf("element %v does not match %v", elem, k)
	}
	comps := int64(k.Components())
	switch {
	case len(n) == 0 && comps == 1:
		return layout.Field{Kind: k}, nil
	case len(n) == 1 && comps == 1:
		return layout.Field{Kind: k, Len: int(n[0])}, nil
	case len(n) == 1 && n[0] == comps:
		return layout.Field{Kind: k}, nil
	case len(n) == 2 && n[1] == comps && comps > 1:
		return layout.Field{Kind: k, Len: int(n[0])}, nil
	}
	return layout.Field{}, fmt.Errorf("type %v cannot hold %v", t, k)
}

// flatten returns the array lengths of t, outermost first, and the final
// element type.
func flatten(t types.Type) ([]int64, types.Type) {
	var lens []int64
	for {
		arr, ok := types.Unalias(t).Underlying().(*types.Array)
		if !ok {
			return lens, t
		}
		lens = append(lens, arr.Len())
		t = arr.Elem()
	}
}
