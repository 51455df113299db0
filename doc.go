// Package gpubridge keeps data shared between Go and GPU shaders
// byte-compatible on both sides.
//
// # Overview
//
// A record that crosses the host/device boundary is declared once, as a Go
// struct marked with //gpubridge:struct. The layoutgen command derives its
// memory layout under one convention (scalar by default, std430 optionally)
// and generates from that single layout:
//
//   - layout constants and EncodeGPU/DecodeGPU methods for the Go type
//   - a GLSL include and a WGSL file declaring the same record
//   - a manifest of fingerprints and offsets that detects drift
//
// Every derivation is cross-checked against an independent shader-side
// layout computation and against the SPIR-V naga produces, and is rejected
// on any mismatch.
//
// # Packages
//
//   - layout: field kinds, conventions and the layout rule engine
//   - derive: the derivation compiler, emitters, validators and registry
//   - codec: little-endian helpers used by generated code
//   - shared: the records shared by host and shaders
//   - bindless: scene descriptors of device addresses and their allocators
//   - dispatch: per-draw constants selecting records from a scene
//   - config: the gpubridge.toml build configuration
//
// # Device addresses
//
// Records refer to each other through [DeviceAddress] values. An address is
// a weak reference: it does not keep its buffer alive, and the owner of the
// buffer must keep it alive until every GPU submission reading through the
// address has completed.
//
// # Logging
//
// gpubridge is silent by default. Call [SetLogger] to route its log records
// to any [log/slog] handler.
package gpubridge
