// Package vgr is the core of a retained-mode 2D vector renderer.
//
// # Overview
//
// vgr turns vector shapes into GPU geometry once and then draws many
// instances of them cheaply. A vector image is recorded with a
// [VectorImageBuilder]: every fill and stroke writes a small primitive
// record (depth, color, transforms) into the image's own GPU memory, and
// [VectorImageBuilder.Build] tessellates the shapes into a shared
// [GeometryBuilder], stamping each vertex with the address of its
// primitive. The result is a [VectorImageInstance]; clones share geometry
// but own their memory, so each can have its own transforms and colors.
//
// A [LayerBuilder] batches instances: all instances of one image become a
// single [DrawCmd] per pass, uploaded back to back into one device
// allocation and ordered by depth.
//
// # Quick Start
//
//	dev := memory.New(256, 256)
//	ctx := vgr.NewContext(dev)
//
//	geom := ctx.NewGeometry()
//	b := ctx.NewVectorImage()
//	xf := b.AddTransform(gg.Identity())
//	red := b.AddColor(gg.RGB(1, 0, 0))
//	_, err := b.Fill(vgr.CircleShape{Center: gg.Pt(64, 64), Radius: 32},
//	    vgr.Fill(red), [2]vgr.TransformID{xf, xf})
//	inst, err := b.Build(geom)
//	err = ctx.SubmitGeometry(geom)
//
//	lb := ctx.NewLayer()
//	lb.Add(inst)
//	lb.Add(inst.CloneInstance())
//	layer, err := lb.Build(ctx)
//	err = vgr.RenderAll(ctx, layer)
//
// # GPU Memory
//
// Addresses, memory layouts and the encoded blocks live in package
// [github.com/gogpu/vgr/gpudata]. Tessellation lives in
// [github.com/gogpu/vgr/tess].
//
// # Devices
//
// The renderer drives a [Device]. Two implementations are provided:
// backend/memory keeps everything in host memory and rasterizes on the
// CPU, backend/wgpu drives a gogpu/wgpu HAL device.
//
// # Errors
//
// Unsupported patterns and shapes are reported with [ErrUnsupportedPattern]
// and [ErrUnsupportedShape]; tessellation failures with
// [*TessellationError]. Broken invariants, such as a corrupted address or a
// write past the end of a memory block, panic.
//
// # Logging
//
// vgr is silent by default. See [SetLogger].
package vgr
