// Package memory provides a vgr.Device that keeps GPU memory and geometry
// in host memory and rasterizes render passes on the CPU.
//
// It is the reference device: it checks every range it is handed against
// its allocations, resolves primitive addresses the way the shaders do,
// and draws each primitive with golang.org/x/image/vector. Fills and
// strokes are drawn without anti-aliasing normals and without depth
// buffering; within an instance, primitives are painted in ascending z.
//
// # Usage
//
//	dev := memory.New(256, 256, memory.WithClearColor(gg.RGB(1, 1, 1)))
//	ctx := vgr.NewContext(dev)
//	// build images and layers ...
//	if err := vgr.RenderAll(ctx, layer); err != nil {
//		return err
//	}
//	err := dev.WritePNG(w)
//
// The device registers itself with package backend as "memory".
package memory
