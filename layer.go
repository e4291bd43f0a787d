package vgr

import (
	"fmt"
	"slices"

	"github.com/gogpu/vgr/gpudata"
)

type layerInstance struct {
	instance *VectorImageInstance
	z        uint32
}

type layerImage struct {
	image     *VectorImage
	instances []layerInstance
}

// LayerBuilder groups vector image instances into batched draw commands.
//
// Instances of the same image are drawn with one command per pass. The
// builder assigns each added instance a z index; by default later
// instances are drawn on top.
type LayerBuilder struct {
	images []*layerImage
	index  map[VectorImageID]*layerImage
	z      uint32
	nextZ  ZFunc
	built  bool
}

// Add appends an instance to the layer. The instance memory is read when
// the layer is built, so later changes up to then are included.
func (b *LayerBuilder) Add(inst *VectorImageInstance) error {
	if b.built {
		return ErrBuilderConsumed
	}
	if inst == nil {
		return ErrNilInstance
	}
	img := inst.Base()
	if b.index == nil {
		b.index = make(map[VectorImageID]*layerImage)
	}
	li, ok := b.index[img.ID()]
	if ok && li.image != img {
		return fmt.Errorf("%w: image %d", ErrImageMismatch, img.ID())
	}
	if !ok {
		li = &layerImage{image: img}
		b.index[img.ID()] = li
		b.images = append(b.images, li)
	}
	li.instances = append(li.instances, layerInstance{instance: inst, z: b.z})
	next := b.nextZ
	if next == nil {
		next = NextZ
	}
	b.z = next(b.z, img.ZRange())
	return nil
}

// Len returns the number of instances added.
func (b *LayerBuilder) Len() int {
	var n int
	for _, li := range b.images {
		n += len(li.instances)
	}
	return n
}

// Build uploads every instance to device memory and returns the layer.
//
// For each image, instances are ordered by z (keeping insertion order for
// equal z) and uploaded back to back into one allocation, so instance k
// lives at base + k*MemPerInstance. Images are emitted in the order they
// were first added.
func (b *LayerBuilder) Build(ctx *Context) (*Layer, error) {
	if b.built {
		return nil, ErrBuilderConsumed
	}
	b.built = true

	dev := ctx.Device()
	layer := &Layer{}
	for _, li := range b.images {
		slices.SortStableFunc(li.instances, func(a, c layerInstance) int {
			switch {
			case a.z < c.z:
				return -1
			case a.z > c.z:
				return 1
			default:
				return 0
			}
		})

		img := li.image
		stride := img.MemPerInstance()
		n := uint32(len(li.instances)) //nolint:gosec // bounded by memory size
		base, err := b.upload(dev, li, stride, n)
		if err != nil {
			return nil, fmt.Errorf("vgr: layer image %d: %w", img.ID(), err)
		}

		cmd := DrawCmd{
			Geometry:       img.Geometry(),
			NumInstances:   n,
			BaseAddress:    base,
			InstanceStride: stride,
		}
		if img.ContainsFillOps() {
			layer.fillPass = append(layer.fillPass, cmd)
		}
		if img.ContainsStrokeOps() {
			layer.strokePass = append(layer.strokePass, cmd)
		}
	}

	Logger().Debug("vgr: layer built",
		"images", len(b.images),
		"fill_cmds", len(layer.fillPass),
		"stroke_cmds", len(layer.strokePass))
	return layer, nil
}

// upload allocates stride*n words and writes each instance to its slot.
func (b *LayerBuilder) upload(dev Device, li *layerImage, stride, n uint32) (gpudata.Address, error) {
	if stride == 0 {
		return gpudata.GlobalAddress(0), nil
	}
	size := uint64(stride) * uint64(n)
	if size > uint64(gpudata.MaxOffset) {
		return gpudata.Address{}, fmt.Errorf("%d instances of %d words exceed the address space", n, stride)
	}
	r, err := dev.Allocate(uint32(size))
	if err != nil {
		return gpudata.Address{}, fmt.Errorf("allocate %d words: %w", size, err)
	}
	if r.Len() != uint32(size) || r.Start().Type() != gpudata.Global {
		panic(fmt.Sprintf("vgr: device returned %v for a %d-word allocation", r, size))
	}

	base := r.Start()
	rest := r
	for _, in := range li.instances {
		slot := rest.Split(stride)
		if err := dev.Upload(slot, in.instance.memory); err != nil {
			return gpudata.Address{}, fmt.Errorf("upload to %v: %w", slot, err)
		}
	}
	Logger().Debug("vgr: uploaded instances", "range", r, "instances", n, "stride", stride)
	return base, nil
}

// Layer is an immutable list of draw commands per pass.
type Layer struct {
	fillPass   []DrawCmd
	strokePass []DrawCmd
}

// FillPass returns a copy of the fill commands.
func (l *Layer) FillPass() []DrawCmd { return slices.Clone(l.fillPass) }

// StrokePass returns a copy of the stroke commands.
func (l *Layer) StrokePass() []DrawCmd { return slices.Clone(l.strokePass) }

// RenderOpaqueFills draws the fill pass.
func (l *Layer) RenderOpaqueFills(ctx *Context) error {
	return renderPass(ctx, l.fillPass, opaquePass(VertexFill))
}

// RenderOpaqueStrokes draws the stroke pass.
func (l *Layer) RenderOpaqueStrokes(ctx *Context) error {
	return renderPass(ctx, l.strokePass, opaquePass(VertexStroke))
}

// RenderAll draws the fills of every layer, then the strokes of every
// layer.
func RenderAll(ctx *Context, layers ...*Layer) error {
	for _, l := range layers {
		if err := l.RenderOpaqueFills(ctx); err != nil {
			return err
		}
	}
	for _, l := range layers {
		if err := l.RenderOpaqueStrokes(ctx); err != nil {
			return err
		}
	}
	return nil
}

func renderPass(ctx *Context, cmds []DrawCmd, opts RenderPassOptions) error {
	Logger().Debug("vgr: render pass", "kind", opts.VertexKind, "cmds", len(cmds))
	if err := ctx.Device().RenderPass(slices.Clone(cmds), opts); err != nil {
		return fmt.Errorf("vgr: %s pass: %w", opts.VertexKind, err)
	}
	return nil
}
