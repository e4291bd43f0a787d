// Package tess converts vector paths into indexed triangle geometry.
//
// Two tessellators are provided:
//
//   - [FillTessellator] triangulates the interior of every contour with ear
//     clipping after flattening curves to the requested tolerance.
//   - [StrokeTessellator] extrudes the centerline of every contour into a
//     triangle strip. Vertices carry a unit extrusion normal; the stroke
//     width is applied later, on the GPU, so one geometry serves any width.
//
// Output goes through a [GeometryBuilder]. [BuffersBuilder] is the usual
// implementation: it appends to a [VertexBuffers] and converts each
// tessellator vertex with a caller-supplied constructor, which is where the
// renderer stamps per-vertex data such as a primitive address.
//
// Indices are 16 bits wide. A single VertexBuffers therefore holds at most
// 65535 vertices; exceeding that fails with [ErrTooManyVertices].
package tess
