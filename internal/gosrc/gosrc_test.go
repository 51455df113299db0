package gosrc

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
	"testing"

	"github.com/gogpu/gpubridge/layout"
)

func check(t *testing.T, src string) ([]*layout.Struct, error) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "defs.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	pkg, err := (&types.Config{}).Check("example.com/defs", fset, []*ast.File{f}, nil)
	if err != nil {
		t.Fatalf("type-check: %v", err)
	}
	return FromPackage(pkg, []*ast.File{f})
}

const defsSrc = `package defs

type DeviceAddress uint64

type Transform struct {
	Model [16]float32
	Proj  [16]float32
}

//gpubridge:struct
type MaterialRecord struct {
	Color     [4]float32
	Emissive  [3]float32
	Roughness float32
	Tint      [4]float32 ` + "`gpu:\"mat2\"`" + `
	Weights   [3]float32 ` + "`gpu:\"array\"`" + `
	Next      DeviceAddress ` + "`gpu:\"ref=MaterialRecord\"`" + `
	Texture   uint32 ` + "`gpu:\"name=albedo_texture\"`" + `
	Debug     string ` + "`gpu:\"-\"`" + `
	Points    [2][3]float32
	Raw       uint64 ` + "`gpu:\"address\"`" + `
}

// Not derived.
type Plain struct{ X float32 }

//gpubridge:struct
type Scene struct {
	Xf      Transform
	History [2]Transform
	Mask    [2]uint32
	Offset  [3]int32
	Count   uint32
}
`

func TestFromPackage(t *testing.T) {
	defs, err := check(t, defsSrc)
	if err != nil {
		t.Fatalf("FromPackage() error = %v", err)
	}
	if len(defs) != 2 || defs[0].Name != "MaterialRecord" || defs[1].Name != "Scene" {
		t.Fatalf("defs = %v", defs)
	}

	want := []layout.Field{
		{Name: "Color", ShaderName: "color", Kind: layout.KindVec4F},
		{Name: "Emissive", ShaderName: "emissive", Kind: layout.KindVec3F},
		{Name: "Roughness", ShaderName: "roughness", Kind: layout.KindF32},
		{Name: "Tint", ShaderName: "tint", Kind: layout.KindMat2F},
		{Name: "Weights", ShaderName: "weights", Kind: layout.KindF32, Len: 3},
		{Name: "Next", ShaderName: "next", Kind: layout.KindAddress, Target: "MaterialRecord"},
		{Name: "Texture", ShaderName: "albedo_texture", Kind: layout.KindU32},
		{Name: "Points", ShaderName: "points", Kind: layout.KindVec3F, Len: 2},
		{Name: "Raw", ShaderName: "raw", Kind: layout.KindAddress},
	}
	got := defs[0].Fields
	if len(got) != len(want) {
		t.Fatalf("fields = %+v, want %d", got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	scene := defs[1].Fields
	if scene[0].Kind != layout.KindStruct || scene[0].Struct.Name != "Transform" || scene[0].ShaderName != "xf" {
		t.Errorf("Xf = %+v", scene[0])
	}
	if scene[1].Kind != layout.KindStruct || scene[1].Len != 2 || scene[1].Struct != scene[0].Struct {
		t.Errorf("History = %+v, want array of the shared Transform definition", scene[1])
	}
	if scene[0].Struct.Fields[0].Kind != layout.KindMat4F {
		t.Errorf("Transform.Model = %v, want mat4f", scene[0].Struct.Fields[0].Kind)
	}
	if scene[2].Kind != layout.KindVec2U || scene[3].Kind != layout.KindVec3I {
		t.Errorf("Mask, Offset = %v, %v", scene[2].Kind, scene[3].Kind)
	}

	lib := layout.NewLibrary(defs...)
	if err := lib.Resolve(); err != nil {
		t.Errorf("Resolve() error = %v", err)
	}
	if _, err := lib.ComputeAll(layout.DefaultConvention); err != nil {
		t.Errorf("ComputeAll() error = %v", err)
	}
}

func TestFromPackageErrors(t *testing.T) {
	tests := []struct {
		name, body, want string
	}{
		{"platform int", "X int", "unsupported type"},
		{"string", "X string", "unsupported type"},
		{"bad kind tag", "X float32 `gpu:\"vec9\"`", "unknown kind"},
		{"kind mismatch", "X [3]float32 `gpu:\"vec4\"`", "cannot hold"},
		{"class mismatch", "X [4]uint32 `gpu:\"vec4\"`", "does not match"},
		{"ref on scalar", "X uint32 `gpu:\"ref=Y\"`", "ref="},
		{"two kinds", "X float32 `gpu:\"f32,u32\"`", "two kinds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "package defs\n\n//gpubridge:struct\ntype S struct {\n\t" + tt.body + "\n}\n"
			_, err := check(t, src)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("FromPackage() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestFromPackageKeepsUnrepresentableKinds(t *testing.T) {
	// Representability is decided by the convention, not by the loader.
	defs, err := check(t, "package defs\n\n//gpubridge:struct\ntype S struct {\n\tOk bool\n\tSmall uint16\n}\n")
	if err != nil {
		t.Fatalf("FromPackage() error = %v", err)
	}
	if defs[0].Fields[0].Kind != layout.KindBool || defs[0].Fields[1].Kind != layout.KindU16 {
		t.Errorf("fields = %+v", defs[0].Fields)
	}
	if _, err := layout.Compute(defs[0], layout.DefaultConvention); err == nil {
		t.Error("Compute() should reject bool")
	}
}

func TestParseTag(t *testing.T) {
	o, err := parseTag("vec3, name=pos ,ref=Vertex")
	if err != nil {
		t.Fatal(err)
	}
	if o.kind != "vec3" || o.name != "pos" || o.ref != "Vertex" || o.skip || o.array {
		t.Errorf("parseTag() = %+v", o)
	}
}
