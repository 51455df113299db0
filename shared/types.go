package shared

import (
	"golang.org/x/image/math/f32"

	"github.com/gogpu/gpubridge"
)

//go:generate go run github.com/gogpu/gpubridge/cmd/layoutgen .

// Matrices are column-major [16]float32 values; element i*4+j is column i,
// row j.

// MaterialRecord describes the surface of one material.
//
//gpubridge:struct
type MaterialRecord struct {
	Color            f32.Vec4
	Emissive         f32.Vec3
	Roughness        float32
	Metallic         float32
	BaseColorTexture uint32
}

// InstanceRecord places one geometry in the world.
//
//gpubridge:struct
type InstanceRecord struct {
	Transform     [16]float32
	GeometryIndex uint32
	MaterialIndex uint32
}

// GeometryRecord is a range of the index array plus its bounding sphere.
//
//gpubridge:struct
type GeometryRecord struct {
	FirstIndex    uint32
	IndexCount    uint32
	VertexOffset  int32
	MaterialIndex uint32
	BoundsCenter  f32.Vec3
	BoundsRadius  float32
}

//gpubridge:struct
type Vertex struct {
	Position f32.Vec3
	Normal   f32.Vec3
	UV       f32.Vec2
	Color    f32.Vec3
}

// SceneDescriptor is the root record a shader reaches every bindless
// array through. Each address points at Count elements of its array, or is
// null when the array is empty.
//
//gpubridge:struct
type SceneDescriptor struct {
	Materials     gpubridge.DeviceAddress `gpu:"ref=MaterialRecord"`
	Instances     gpubridge.DeviceAddress `gpu:"ref=InstanceRecord"`
	Geometries    gpubridge.DeviceAddress `gpu:"ref=GeometryRecord"`
	Vertices      gpubridge.DeviceAddress `gpu:"ref=Vertex"`
	Indices       gpubridge.DeviceAddress
	MaterialCount uint32
	InstanceCount uint32
	GeometryCount uint32
	VertexCount   uint32
	IndexCount    uint32
	Generation    uint32
	WorldToClip   [16]float32
}

// DispatchConstants is the per-draw block: the scene to draw from and the
// record indices selected in it.
//
//gpubridge:struct
type DispatchConstants struct {
	Scene         gpubridge.DeviceAddress `gpu:"ref=SceneDescriptor"`
	MaterialIndex uint32
	InstanceIndex uint32
	GeometryIndex uint32
	Flags         uint32
	ColorOverride f32.Vec4
}

// Dispatch flags.
const (
	// FlagColorOverride makes shaders use ColorOverride instead of the
	// material color.
	FlagColorOverride uint32 = 1 << iota
	// FlagUnlit skips lighting.
	FlagUnlit
)

//gpubridge:struct
type ModelViewProjection struct {
	Model [16]float32
	View  [16]float32
	Proj  [16]float32
}

// UniformObjects is the per-frame uniform block.
//
//gpubridge:struct
type UniformObjects struct {
	Transforms ModelViewProjection
}

// Identity is the 4x4 identity matrix.
var Identity = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// NewModelViewProjection returns the transforms for a right-handed, Y-up
// camera. The projection's Y axis is flipped for Vulkan clip space, where
// Y points down.
func NewModelViewProjection(model, view, proj [16]float32) ModelViewProjection {
	proj[5] = -proj[5]
	return ModelViewProjection{Model: model, View: view, Proj: proj}
}
