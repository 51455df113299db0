// Package layout computes GPU memory layouts of struct definitions.
//
// A [Struct] is an ordered list of typed [Field] values. [Compute] places
// every field under a [Convention] and returns a [Layout] with byte offsets,
// sizes, alignments and array strides. The same definition under the same
// convention always yields the same layout, so host code and shader code
// derived from it agree on every offset.
//
// Two rule sets are supported:
//
//	            scalar          std430
//	u32         4 / align 4     4 / align 4
//	vec2f       8 / align 4     8 / align 8
//	vec3f      12 / align 4    12 / align 16
//	vec4f      16 / align 4    16 / align 16
//	mat3f      36 / align 4    48 / align 16
//	mat4f      64 / align 4    64 / align 16
//	u64/addr    8 / align 8     8 / align 8
//
// A struct aligns to its most aligned field and its size is rounded up to
// that alignment. Array elements repeat with a stride of the element size
// rounded up to the element alignment.
//
// Kinds that the convention cannot represent (bool, 8/16-bit types, and
// 64-bit types without the matching capability) fail with a
// [DefinitionError] when the layout is computed.
//
// A [Library] is the catalog of definitions shared between host and shader.
// It rejects two different definitions under one name.
package layout
