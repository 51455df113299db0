// Package derive turns layout definitions into synchronized host and
// shader artifacts.
//
// A [Compiler] computes the layout of a definition and emits three
// declarations from it: a GLSL struct, a WGSL struct and Go
// EncodeGPU/DecodeGPU methods with offset constants. Before a [Unit] is
// returned, every configured [Validator] recomputes the layout of the
// emitted WGSL on its own:
//
//   - [ReflectValidator] parses the WGSL text and applies the WGSL
//     alignment and size rules.
//   - [NagaValidator] compiles a probe shader with naga and reads the
//     Offset and ArrayStride decorations back out of the SPIR-V.
//
// [Compiler.CompileLibrary] also compiles the combined GLSL file with
// glslc through [GLSLValidator] and compares the SPIR-V the same way.
//
// Any difference is a [DerivationMismatchError]. It is never downgraded
// to a warning.
//
// Units are identified by a fingerprint of the canonical definition and
// the convention. A [Registry] stores them append-only, and a [Manifest]
// persists their layouts so that later builds can prove they still agree.
//
// [Accessor] reads and writes fields of a value in GPU layout by name at
// run time, for code that has no generated host type.
package derive
