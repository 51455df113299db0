package shared

import (
	"bytes"
	_ "embed"

	"github.com/gogpu/gpubridge/derive"
	"github.com/gogpu/gpubridge/layout"
)

// Convention is the layout convention every shared record is derived under.
var Convention = layout.DefaultConvention

// GLSL is the generated GLSL include declaring every record, with
// buffer_reference blocks for the typed address fields.
//
//go:embed shaders/shared.glsl
var GLSL string

// WGSL is the generated WGSL declaration of every record.
//
//go:embed shaders/shared.wgsl
var WGSL string

// MaterialFragment is a fragment shader that includes GLSL and reads its
// material through the scene descriptor selected by the dispatch constants.
//
//go:embed shaders/material.frag.glsl
var MaterialFragment string

//go:embed layout.toml
var manifest []byte

// Manifest returns the layout manifest recorded when the package was last
// generated.
func Manifest() (derive.Manifest, error) {
	return derive.ReadManifest(bytes.NewReader(manifest))
}
