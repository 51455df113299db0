// Package bindless builds scene descriptors: every array a shader reads is
// uploaded into its own allocation and referenced from one SceneDescriptor
// record by device address, so a shader reaches all scene data through a
// single 64-bit pointer.
//
// # Address lifetime
//
// A Descriptor holds addresses, not ownership. Its allocations must stay
// live until every GPU submission that may read through the descriptor has
// completed. Builder never frees anything; call Descriptor.Release (or free
// Descriptor.Allocations yourself) once the GPU is done with the scene.
// Freeing earlier leaves the shader reading memory that may already hold
// another scene.
//
// # Allocators
//
// HeapAllocator sub-allocates from one storage buffer on a wgpu HAL device.
// HostAllocator simulates device memory in host RAM for tools and tests; it
// never reuses an address, so reading through a stale descriptor fails
// loudly instead of returning another scene's data.
package bindless
