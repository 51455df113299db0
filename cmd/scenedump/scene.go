package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/image/colornames"
	"golang.org/x/image/math/f32"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/gpubridge/bindless"
	"github.com/gogpu/gpubridge/dispatch"
	"github.com/gogpu/gpubridge/shared"
)

// Color is an RGBA color written in a scene file as a CSS color name,
// as #rrggbb or #rrggbbaa, or as a list of three or four components.
type Color f32.Vec4

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		v, err := parseColor(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*c = v
		return nil
	case yaml.SequenceNode:
		var comps []float32
		if err := value.Decode(&comps); err != nil {
			return err
		}
		if len(comps) != 3 && len(comps) != 4 {
			return fmt.Errorf("line %d: color needs 3 or 4 components, got %d", value.Line, len(comps))
		}
		*c = Color{comps[0], comps[1], comps[2], 1}
		if len(comps) == 4 {
			c[3] = comps[3]
		}
		return nil
	}
	return fmt.Errorf("line %d: invalid color", value.Line)
}

func parseColor(s string) (Color, error) {
	if hexs, ok := strings.CutPrefix(s, "#"); ok {
		b, err := hex.DecodeString(hexs)
		if err != nil || (len(b) != 3 && len(b) != 4) {
			return Color{}, fmt.Errorf("invalid hex color %q", s)
		}
		if len(b) == 3 {
			b = append(b, 0xff)
		}
		return Color{float32(b[0]) / 255, float32(b[1]) / 255, float32(b[2]) / 255, float32(b[3]) / 255}, nil
	}
	rgba, ok := colornames.Map[strings.ToLower(s)]
	if !ok {
		return Color{}, fmt.Errorf("unknown color name %q", s)
	}
	return Color{float32(rgba.R) / 255, float32(rgba.G) / 255, float32(rgba.B) / 255, float32(rgba.A) / 255}, nil
}

func (c Color) rgb() f32.Vec3 { return f32.Vec3{c[0], c[1], c[2]} }

// Material is one entry of the materials list.
type Material struct {
	Name      string  `yaml:"name"`
	Color     Color   `yaml:"color"`
	Emissive  *Color  `yaml:"emissive"`
	Roughness float32 `yaml:"roughness"`
	Metallic  float32 `yaml:"metallic"`
	Texture   uint32  `yaml:"texture"`
}

// Geometry is one entry of the geometries list.
type Geometry struct {
	FirstIndex   uint32   `yaml:"first_index"`
	IndexCount   uint32   `yaml:"index_count"`
	VertexOffset int32    `yaml:"vertex_offset"`
	Material     uint32   `yaml:"material"`
	Center       f32.Vec3 `yaml:"center"`
	Radius       float32  `yaml:"radius"`
}

// Instance is one entry of the instances list. The transform is a uniform
// scale followed by a translation.
type Instance struct {
	Geometry  uint32   `yaml:"geometry"`
	Material  uint32   `yaml:"material"`
	Translate f32.Vec3 `yaml:"translate"`
	Scale     *float32 `yaml:"scale"`
}

// Vertex is one entry of the vertices list.
type Vertex struct {
	Position f32.Vec3 `yaml:"position"`
	Normal   f32.Vec3 `yaml:"normal"`
	UV       f32.Vec2 `yaml:"uv"`
	Color    *Color   `yaml:"color"`
}

// Draw selects the records one draw reads. Omitted indices are not
// selected.
type Draw struct {
	Material      *uint32  `yaml:"material"`
	Instance      *uint32  `yaml:"instance"`
	Geometry      *uint32  `yaml:"geometry"`
	Flags         []string `yaml:"flags"`
	ColorOverride *Color   `yaml:"color_override"`
}

// Scene is a scene file.
type Scene struct {
	Label       string       `yaml:"label"`
	WorldToClip *[16]float32 `yaml:"world_to_clip"`
	Materials   []Material   `yaml:"materials"`
	Geometries  []Geometry   `yaml:"geometries"`
	Instances   []Instance   `yaml:"instances"`
	Vertices    []Vertex     `yaml:"vertices"`
	Indices     []uint32     `yaml:"indices"`
	Draws       []Draw       `yaml:"draws"`
}

// ReadScene decodes a scene file. Unknown keys are an error.
func ReadScene(r io.Reader) (*Scene, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Scene
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("scene: %w", err)
	}
	return &s, nil
}

// LoadScene reads the scene file at path.
func LoadScene(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadScene(f)
}

// Input converts s to the arrays of a scene build.
func (s *Scene) Input() bindless.SceneInput {
	materials := make([]shared.MaterialRecord, len(s.Materials))
	for i, m := range s.Materials {
		materials[i] = shared.MaterialRecord{
			Color:            f32.Vec4(m.Color),
			Roughness:        m.Roughness,
			Metallic:         m.Metallic,
			BaseColorTexture: m.Texture,
		}
		if m.Emissive != nil {
			materials[i].Emissive = m.Emissive.rgb()
		}
	}

	geometries := make([]shared.GeometryRecord, len(s.Geometries))
	for i, g := range s.Geometries {
		geometries[i] = shared.GeometryRecord{
			FirstIndex:    g.FirstIndex,
			IndexCount:    g.IndexCount,
			VertexOffset:  g.VertexOffset,
			MaterialIndex: g.Material,
			BoundsCenter:  g.Center,
			BoundsRadius:  g.Radius,
		}
	}

	instances := make([]shared.InstanceRecord, len(s.Instances))
	for i, in := range s.Instances {
		xf := shared.Identity
		if in.Scale != nil {
			xf[0], xf[5], xf[10] = *in.Scale, *in.Scale, *in.Scale
		}
		xf[12], xf[13], xf[14] = in.Translate[0], in.Translate[1], in.Translate[2]
		instances[i] = shared.InstanceRecord{Transform: xf, GeometryIndex: in.Geometry, MaterialIndex: in.Material}
	}

	vertices := make([]shared.Vertex, len(s.Vertices))
	for i, v := range s.Vertices {
		vertices[i] = shared.Vertex{Position: v.Position, Normal: v.Normal, UV: v.UV, Color: f32.Vec3{1, 1, 1}}
		if v.Color != nil {
			vertices[i].Color = v.Color.rgb()
		}
	}

	in := bindless.SceneInput{
		Materials:   bindless.Materials(materials),
		Instances:   bindless.Instances(instances),
		Geometries:  bindless.Geometries(geometries),
		Vertices:    bindless.Vertices(vertices),
		Indices:     bindless.Indices(s.Indices),
		WorldToClip: shared.Identity,
	}
	if s.WorldToClip != nil {
		in.WorldToClip = *s.WorldToClip
	}
	return in
}

var flagNames = map[string]uint32{
	"color_override": shared.FlagColorOverride,
	"unlit":          shared.FlagUnlit,
}

// Options returns the dispatch options of d.
func (d Draw) Options() ([]dispatch.Option, error) {
	var opts []dispatch.Option
	if d.Material != nil {
		opts = append(opts, dispatch.Material(*d.Material))
	}
	if d.Instance != nil {
		opts = append(opts, dispatch.Instance(*d.Instance))
	}
	if d.Geometry != nil {
		opts = append(opts, dispatch.Geometry(*d.Geometry))
	}
	for _, name := range d.Flags {
		f, ok := flagNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown draw flag %q", name)
		}
		opts = append(opts, dispatch.Flags(f))
	}
	if d.ColorOverride != nil {
		opts = append(opts, dispatch.ColorOverride(f32.Vec4(*d.ColorOverride)))
	}
	return opts, nil
}
