// Package shared is the library of records that cross the host/shader
// boundary: bindless array elements, the scene descriptor, per-draw
// dispatch constants and per-frame uniforms.
//
// Every record is declared once, as a Go struct in types.go. layoutgen
// derives the rest from those declarations: the layout constants and
// EncodeGPU/DecodeGPU methods in zz_layout.go, the definitions returned by
// Catalog in zz_catalog.go, the GLSL and WGSL twins under shaders/ and the
// layout manifest. All of it uses the scalar convention with 64-bit
// integers enabled.
//
//	b := make([]byte, shared.MaterialRecordSize)
//	m := shared.MaterialRecord{Color: f32.Vec4{1, 0, 0, 1}, Roughness: 0.5}
//	m.EncodeGPU(b)
package shared
