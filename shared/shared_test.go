package shared

import (
	"os"
	"slices"
	"strings"
	"testing"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/gpubridge"
	"github.com/gogpu/gpubridge/derive"
	"github.com/gogpu/gpubridge/internal/gosrc"
	"github.com/gogpu/gpubridge/layout"
)

func compileCatalog(t *testing.T) *derive.Output {
	t.Helper()
	c := derive.New(Convention, derive.WithValidators(derive.ReflectValidator{}))
	out, err := c.CompileLibrary(Catalog(), "shared")
	if err != nil {
		t.Fatalf("CompileLibrary() error = %v", err)
	}
	return out
}

func unit(t *testing.T, out *derive.Output, name string) *derive.Unit {
	t.Helper()
	for _, u := range out.Units {
		if u.Name == name {
			return u
		}
	}
	t.Fatalf("no unit %s", name)
	return nil
}

// normalize drops whitespace differences so that formatting does not fail
// a comparison of generated Go.
func normalize(s string) string { return strings.Join(strings.Fields(s), " ") }

func TestLayoutConstants(t *testing.T) {
	out := compileCatalog(t)
	tests := []struct {
		name        string
		size, align uint32
		offsets     []uint32
	}{
		{"MaterialRecord", MaterialRecordSize, MaterialRecordAlign, []uint32{
			MaterialRecordColorOffset, MaterialRecordEmissiveOffset, MaterialRecordRoughnessOffset,
			MaterialRecordMetallicOffset, MaterialRecordBaseColorTextureOffset,
		}},
		{"InstanceRecord", InstanceRecordSize, InstanceRecordAlign, []uint32{
			InstanceRecordTransformOffset, InstanceRecordGeometryIndexOffset, InstanceRecordMaterialIndexOffset,
		}},
		{"GeometryRecord", GeometryRecordSize, GeometryRecordAlign, []uint32{
			GeometryRecordFirstIndexOffset, GeometryRecordIndexCountOffset, GeometryRecordVertexOffsetOffset,
			GeometryRecordMaterialIndexOffset, GeometryRecordBoundsCenterOffset, GeometryRecordBoundsRadiusOffset,
		}},
		{"Vertex", VertexSize, VertexAlign, []uint32{
			VertexPositionOffset, VertexNormalOffset, VertexUVOffset, VertexColorOffset,
		}},
		{"SceneDescriptor", SceneDescriptorSize, SceneDescriptorAlign, []uint32{
			SceneDescriptorMaterialsOffset, SceneDescriptorInstancesOffset, SceneDescriptorGeometriesOffset,
			SceneDescriptorVerticesOffset, SceneDescriptorIndicesOffset,
			SceneDescriptorMaterialCountOffset, SceneDescriptorInstanceCountOffset, SceneDescriptorGeometryCountOffset,
			SceneDescriptorVertexCountOffset, SceneDescriptorIndexCountOffset, SceneDescriptorGenerationOffset,
			SceneDescriptorWorldToClipOffset,
		}},
		{"DispatchConstants", DispatchConstantsSize, DispatchConstantsAlign, []uint32{
			DispatchConstantsSceneOffset, DispatchConstantsMaterialIndexOffset, DispatchConstantsInstanceIndexOffset,
			DispatchConstantsGeometryIndexOffset, DispatchConstantsFlagsOffset, DispatchConstantsColorOverrideOffset,
		}},
		{"ModelViewProjection", ModelViewProjectionSize, ModelViewProjectionAlign, []uint32{
			ModelViewProjectionModelOffset, ModelViewProjectionViewOffset, ModelViewProjectionProjOffset,
		}},
		{"UniformObjects", UniformObjectsSize, UniformObjectsAlign, []uint32{UniformObjectsTransformsOffset}},
	}
	if len(tests) != len(out.Units) {
		t.Fatalf("catalog has %d definitions, test covers %d", len(out.Units), len(tests))
	}
	for _, tt := range tests {
		l := unit(t, out, tt.name).Layout
		if l.Size != tt.size || l.Align != tt.align {
			t.Errorf("%s: generated size/align %d/%d, derived %d/%d", tt.name, tt.size, tt.align, l.Size, l.Align)
		}
		if !slices.Equal(l.Offsets(), tt.offsets) {
			t.Errorf("%s: generated offsets %v, derived %v", tt.name, tt.offsets, l.Offsets())
		}
	}
}

func TestKnownLayouts(t *testing.T) {
	if SceneDescriptorSize != 128 || SceneDescriptorAlign != 8 {
		t.Errorf("SceneDescriptor = %d/%d, want 128/8", SceneDescriptorSize, SceneDescriptorAlign)
	}
	if DispatchConstantsSize != 40 || DispatchConstantsColorOverrideOffset != 24 {
		t.Errorf("DispatchConstants size %d, color_override at %d", DispatchConstantsSize, DispatchConstantsColorOverrideOffset)
	}
	// Scalar rules pack the vec3 directly after the vec4.
	if MaterialRecordEmissiveOffset != 16 || MaterialRecordRoughnessOffset != 28 {
		t.Errorf("MaterialRecord emissive/roughness at %d/%d, want 16/28",
			MaterialRecordEmissiveOffset, MaterialRecordRoughnessOffset)
	}
}

func TestGeneratedFilesUpToDate(t *testing.T) {
	out := compileCatalog(t)
	if out.GLSL != GLSL {
		t.Errorf("shaders/shared.glsl is stale; run go generate\nwant:\n%s", out.GLSL)
	}
	if out.WGSL != WGSL {
		t.Errorf("shaders/shared.wgsl is stale; run go generate\nwant:\n%s", out.WGSL)
	}
	src, err := os.ReadFile("zz_layout.go")
	if err != nil {
		t.Fatal(err)
	}
	if normalize(string(src)) != normalize(string(out.Go)) {
		t.Errorf("zz_layout.go is stale; run go generate")
	}

	cat, err := derive.CatalogFile("shared", Catalog().Definitions())
	if err != nil {
		t.Fatal(err)
	}
	src, err = os.ReadFile("zz_catalog.go")
	if err != nil {
		t.Fatal(err)
	}
	if normalize(string(src)) != normalize(string(cat)) {
		t.Errorf("zz_catalog.go is stale; run go generate")
	}
}

func TestManifest(t *testing.T) {
	m, err := Manifest()
	if err != nil {
		t.Fatalf("Manifest() error = %v", err)
	}
	out := compileCatalog(t)
	if err := m.Verify(out.Units); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
	if changed := m.Changed(out.Units); len(changed) != 0 {
		t.Errorf("Changed() = %v, want none; run go generate", changed)
	}
	if len(m.Units) != len(out.Units) {
		t.Errorf("manifest has %d units, catalog %d", len(m.Units), len(out.Units))
	}
}

func TestCatalogMatchesDeclarations(t *testing.T) {
	if testing.Short() {
		t.Skip("loads the package with the go command")
	}
	pkgs, err := gosrc.Load(".", ".")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(pkgs) != 1 {
		t.Fatalf("Load() = %d packages, want 1", len(pkgs))
	}
	got, want := pkgs[0].Library.Definitions(), Catalog().Definitions()
	if len(got) != len(want) {
		t.Fatalf("declarations %v, catalog %v", pkgs[0].Library.Names(), Catalog().Names())
	}
	for i := range want {
		if g, w := layout.Canonical(got[i]), layout.Canonical(want[i]); g != w {
			t.Errorf("declaration %d:\n got %s\nwant %s", i, g, w)
		}
	}
}

func TestEncodeMatchesLayout(t *testing.T) {
	out := compileCatalog(t)

	m := MaterialRecord{
		Color:            f32.Vec4{0.1, 0.2, 0.3, 1},
		Emissive:         f32.Vec3{4, 5, 6},
		Roughness:        0.75,
		Metallic:         0.25,
		BaseColorTexture: 9,
	}
	b := make([]byte, MaterialRecordSize)
	for i := range b {
		b[i] = 0xFF
	}
	m.EncodeGPU(b)
	a, err := derive.NewAccessor(unit(t, out, "MaterialRecord").Layout, b)
	if err != nil {
		t.Fatal(err)
	}
	color, _ := a.Floats("Color")
	emissive, _ := a.Floats("Emissive")
	rough, _ := a.Float32("Roughness")
	tex, _ := a.Uint32("BaseColorTexture")
	if !slices.Equal(color, m.Color[:]) || !slices.Equal(emissive, m.Emissive[:]) || rough != 0.75 || tex != 9 {
		t.Errorf("accessor read %v %v %v %v", color, emissive, rough, tex)
	}

	var back MaterialRecord
	back.DecodeGPU(b)
	if back != m {
		t.Errorf("DecodeGPU() = %+v, want %+v", back, m)
	}
}

func TestSceneDescriptorAddresses(t *testing.T) {
	out := compileCatalog(t)
	sd := SceneDescriptor{
		Materials:     0x1000,
		Indices:       0x9000,
		MaterialCount: 3,
		Generation:    7,
		WorldToClip:   Identity,
	}
	b := make([]byte, SceneDescriptorSize)
	sd.EncodeGPU(b)

	a, err := derive.NewAccessor(unit(t, out, "SceneDescriptor").Layout, b)
	if err != nil {
		t.Fatal(err)
	}
	mat, _ := a.Address("Materials")
	inst, _ := a.Address("Instances")
	idx, _ := a.Address("Indices")
	if mat != 0x1000 || !inst.IsNull() || idx != gpubridge.DeviceAddress(0x9000) {
		t.Errorf("addresses = %v %v %v", mat, inst, idx)
	}
	clip, _ := a.Floats("WorldToClip")
	if !slices.Equal(clip, Identity[:]) {
		t.Errorf("WorldToClip = %v", clip)
	}

	var back SceneDescriptor
	back.DecodeGPU(b)
	if back != sd {
		t.Errorf("DecodeGPU() = %+v, want %+v", back, sd)
	}
}

func TestUniformObjectsNested(t *testing.T) {
	proj := Identity
	proj[0] = 2
	u := UniformObjects{Transforms: NewModelViewProjection(Identity, Identity, proj)}
	b := make([]byte, UniformObjectsSize)
	u.EncodeGPU(b)

	var mvp ModelViewProjection
	mvp.DecodeGPU(b[UniformObjectsTransformsOffset:])
	if mvp != u.Transforms {
		t.Errorf("nested decode = %+v, want %+v", mvp, u.Transforms)
	}
}

func TestNewModelViewProjectionFlipsY(t *testing.T) {
	proj := Identity
	proj[5] = 1.5
	mvp := NewModelViewProjection(Identity, Identity, proj)
	if mvp.Proj[5] != -1.5 {
		t.Errorf("Proj[5] = %v, want -1.5", mvp.Proj[5])
	}
	if proj[5] != 1.5 {
		t.Error("NewModelViewProjection modified its argument")
	}
	if mvp.Model != Identity || mvp.View != Identity {
		t.Error("model and view must pass through unchanged")
	}
}

func TestMaterialFragmentUsesSharedDeclarations(t *testing.T) {
	for _, want := range []string{
		`#include "shared.glsl"`,
		"DispatchConstants dc;",
		"scene.materials.m[dc.material_index]",
	} {
		if !strings.Contains(MaterialFragment, want) {
			t.Errorf("material.frag.glsl missing %q", want)
		}
	}
	for _, field := range []string{"material_index", "color_override", "flags", "scene"} {
		if !strings.Contains(GLSL, " "+field+";") {
			t.Errorf("shared.glsl does not declare %s", field)
		}
	}
}
