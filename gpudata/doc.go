// Package gpudata describes the memory the renderer shares with the GPU.
//
// # Address spaces
//
// Every location is named by an [Address]: a 32-bit word whose top bits tag
// the memory space and whose low bits hold a word offset within it.
//
//   - Global: device memory and the authoring buffer of an image builder.
//   - Instance: a field of one instance's private data block.
//   - Shared: a field of the uniform block shared by all instances.
//
// Offsets count 32-bit words, not bytes.
//
// # Layouts and memory
//
// [MemoryLayout] packs typed fields into a record using a fixed alignment
// policy (see [DataType.Alignment]). [Memory] is the growable word buffer
// that primitives, transforms and colors are pushed into.
//
// Invariant violations (an offset overlapping the tag bits, a corrupted tag,
// a write past the end of a buffer) panic: they indicate a bug in the
// caller, never a runtime condition.
package gpudata
