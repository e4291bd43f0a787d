package vgr

import (
	"fmt"

	"github.com/gogpu/gg"

	"github.com/gogpu/vgr/gpudata"
	"github.com/gogpu/vgr/tess"
)

type fillCmd struct {
	shape Shape
	prim  gpudata.Address
}

type strokeCmd struct {
	shape Shape
	prim  gpudata.Address
	opts  tess.StrokeOptions
}

// VectorImageBuilder records the fills and strokes of one vector image.
//
// Every operation writes its primitive to the image memory immediately;
// shapes are tessellated by Build. Operations draw on top of the ones
// recorded before them. A builder is used once: after Build, Fill, Stroke
// and Build return ErrBuilderConsumed, and the transform, color and layout
// methods panic.
type VectorImageBuilder struct {
	id     VectorImageID
	config Config
	memory *gpudata.Memory

	fills   []fillCmd
	strokes []strokeCmd
	z       uint32

	sharedLayout   *gpudata.MemoryLayout
	instanceLayout *gpudata.MemoryLayout

	built bool
}

// ID returns the identifier the image will carry.
func (b *VectorImageBuilder) ID() VectorImageID { return b.id }

// Fill records a fill of shape and returns the address of its primitive.
//
// Only ColorPattern is supported; other patterns return
// ErrUnsupportedPattern without changing the builder.
func (b *VectorImageBuilder) Fill(shape Shape, style FillStyle, transforms [2]TransformID) (FillID, error) {
	if b.built {
		return FillID{}, ErrBuilderConsumed
	}
	color, err := colorOf(style.Pattern)
	if err != nil {
		return FillID{}, fmt.Errorf("vgr: fill: %w", err)
	}
	if err := checkShape(shape); err != nil {
		return FillID{}, fmt.Errorf("vgr: fill: %w", err)
	}

	addr := b.memory.Push(gpudata.FillPrimitive{
		Z:          b.nextZ(),
		Color:      color.addr,
		Transforms: transformAddrs(transforms),
	})
	b.fills = append(b.fills, fillCmd{shape: shape, prim: addr})
	return FillID{addr: addr}, nil
}

// Stroke records a stroke of shape and returns the address of its
// primitive. The options are captured by value; zero tolerance and miter
// limit are taken from the context configuration.
func (b *VectorImageBuilder) Stroke(shape Shape, style StrokeStyle, opts tess.StrokeOptions, transforms [2]TransformID) (StrokeID, error) {
	if b.built {
		return StrokeID{}, ErrBuilderConsumed
	}
	color, err := colorOf(style.Pattern)
	if err != nil {
		return StrokeID{}, fmt.Errorf("vgr: stroke: %w", err)
	}
	if err := checkShape(shape); err != nil {
		return StrokeID{}, fmt.Errorf("vgr: stroke: %w", err)
	}
	opts = b.config.strokeOptions(opts)
	if err := opts.Validate(); err != nil {
		return StrokeID{}, fmt.Errorf("vgr: stroke: %w", err)
	}

	addr := b.memory.Push(gpudata.StrokePrimitive{
		Z:          b.nextZ(),
		Width:      float32(opts.LineWidth),
		Color:      color.addr,
		Transforms: transformAddrs(transforms),
	})
	b.strokes = append(b.strokes, strokeCmd{shape: shape, prim: addr, opts: opts})
	return StrokeID{addr: addr}, nil
}

// AddTransform stores a transform in the image memory.
func (b *VectorImageBuilder) AddTransform(m gg.Matrix) TransformID {
	b.mustBeOpen("AddTransform")
	return TransformID{addr: b.memory.Push(gpudata.NewTransform(m))}
}

// SetTransform overwrites a transform added by AddTransform.
func (b *VectorImageBuilder) SetTransform(id TransformID, m gg.Matrix) {
	b.mustBeOpen("SetTransform")
	b.memory.Set(id.addr, gpudata.NewTransform(m))
}

// AddColor stores a color in the image memory.
func (b *VectorImageBuilder) AddColor(c gg.RGBA) ColorID {
	b.mustBeOpen("AddColor")
	return ColorID{addr: b.memory.Push(gpudata.NewColor(c))}
}

// SetColor overwrites a color added by AddColor.
func (b *VectorImageBuilder) SetColor(id ColorID, c gg.RGBA) {
	b.mustBeOpen("SetColor")
	b.memory.Set(id.addr, gpudata.NewColor(c))
}

// SharedLayout describes data shared by all instances of the image.
//
// Layouts are descriptors for callers that place their own data next to
// the image; vgr records them with the image but does not check writes
// against them.
func (b *VectorImageBuilder) SharedLayout() *gpudata.MemoryLayout {
	b.mustBeOpen("SharedLayout")
	return b.sharedLayout
}

// InstanceLayout describes per-instance data of the image.
func (b *VectorImageBuilder) InstanceLayout() *gpudata.MemoryLayout {
	b.mustBeOpen("InstanceLayout")
	return b.instanceLayout
}

func (b *VectorImageBuilder) mustBeOpen(method string) {
	if b.built {
		panic(fmt.Sprintf("vgr: %s: builder already built", method))
	}
}

func (b *VectorImageBuilder) nextZ() uint32 {
	z := b.z
	b.z++
	return z
}

// Build tessellates every recorded shape into geom and returns the first
// instance of the image.
//
// Fills are tessellated from the last recorded to the first, then strokes
// the same way, so geometry drawn on top comes first in the buffers. Every
// vertex carries the address of its primitive. On failure geom is left as
// it was and the error is a *TessellationError.
func (b *VectorImageBuilder) Build(geom *GeometryBuilder) (*VectorImageInstance, error) {
	if b.built {
		return nil, ErrBuilderConsumed
	}

	fillVerts, fillIdx := len(geom.Fill.Vertices), len(geom.Fill.Indices)
	strokeVerts, strokeIdx := len(geom.Stroke.Vertices), len(geom.Stroke.Indices)
	rollback := func() {
		geom.Fill.Truncate(fillVerts, fillIdx)
		geom.Stroke.Truncate(strokeVerts, strokeIdx)
	}

	ft := tess.NewFillTessellator()
	for i := len(b.fills) - 1; i >= 0; i-- {
		cmd := b.fills[i]
		err := b.tessellateFill(ft, cmd, geom)
		if err != nil {
			rollback()
			return nil, &TessellationError{Op: OpFill, Index: i, Shape: cmd.shape, Err: err}
		}
	}

	st := tess.NewStrokeTessellator()
	for i := len(b.strokes) - 1; i >= 0; i-- {
		cmd := b.strokes[i]
		err := b.tessellateStroke(st, cmd, geom)
		if err != nil {
			rollback()
			return nil, &TessellationError{Op: OpStroke, Index: i, Shape: cmd.shape, Err: err}
		}
	}

	b.built = true
	img := &VectorImage{
		id:             b.id,
		geometry:       geom.ID,
		zRange:         b.z,
		memPerInstance: uint32(b.memory.Len()), //nolint:gosec // bounded by the address offset field
		containsFill:   len(b.fills) > 0,
		containsStroke: len(b.strokes) > 0,
		sharedLayout:   b.sharedLayout.Clone(),
		instanceLayout: b.instanceLayout.Clone(),
	}

	Logger().Debug("vgr: vector image built",
		"image", img.id,
		"geometry", img.geometry,
		"fills", len(b.fills),
		"strokes", len(b.strokes),
		"fill_vertices", len(geom.Fill.Vertices)-fillVerts,
		"stroke_vertices", len(geom.Stroke.Vertices)-strokeVerts,
		"mem_per_instance", img.memPerInstance)

	inst := &VectorImageInstance{base: img, memory: b.memory}
	b.memory = nil
	b.fills, b.strokes = nil, nil
	return inst, nil
}

func (b *VectorImageBuilder) tessellateFill(ft *tess.FillTessellator, cmd fillCmd, geom *GeometryBuilder) error {
	elems, tol, err := shapeElements(cmd.shape)
	if err != nil {
		return err
	}
	opts := tess.FillOptions{Tolerance: b.config.fillTolerance(tol)}
	_, err = ft.TessellatePath(elems, opts, tess.NewBuffersBuilder(&geom.Fill, fillVertexCtor(cmd.prim)))
	return err
}

func (b *VectorImageBuilder) tessellateStroke(st *tess.StrokeTessellator, cmd strokeCmd, geom *GeometryBuilder) error {
	elems, _, err := shapeElements(cmd.shape)
	if err != nil {
		return err
	}
	_, err = st.TessellatePath(elems, cmd.opts, tess.NewBuffersBuilder(&geom.Stroke, strokeVertexCtor(cmd.prim)))
	return err
}

func colorOf(p Pattern) (ColorID, error) {
	switch p := p.(type) {
	case ColorPattern:
		return p.Color, nil
	default:
		return ColorID{}, fmt.Errorf("%w: %T", ErrUnsupportedPattern, p)
	}
}

func checkShape(s Shape) error {
	switch s.(type) {
	case PathShape, CircleShape:
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedShape, s)
	}
}

func transformAddrs(ids [2]TransformID) [2]gpudata.Address {
	return [2]gpudata.Address{ids[0].addr, ids[1].addr}
}

// VectorImage is the immutable description of a built vector image,
// shared by all of its instances.
type VectorImage struct {
	id             VectorImageID
	geometry       GeometryID
	zRange         uint32
	memPerInstance uint32
	containsFill   bool
	containsStroke bool
	sharedLayout   *gpudata.MemoryLayout
	instanceLayout *gpudata.MemoryLayout
}

// ID returns the image identifier.
func (img *VectorImage) ID() VectorImageID { return img.id }

// Geometry returns the geometry holding the image's vertices.
func (img *VectorImage) Geometry() GeometryID { return img.geometry }

// ZRange returns how many z indices the image consumes: one per fill or
// stroke.
func (img *VectorImage) ZRange() uint32 { return img.zRange }

// MemPerInstance returns the size in words of each instance's memory.
func (img *VectorImage) MemPerInstance() uint32 { return img.memPerInstance }

// ContainsFillOps reports whether the image has at least one fill.
func (img *VectorImage) ContainsFillOps() bool { return img.containsFill }

// ContainsStrokeOps reports whether the image has at least one stroke.
func (img *VectorImage) ContainsStrokeOps() bool { return img.containsStroke }

// SharedLayout returns a copy of the shared data layout.
func (img *VectorImage) SharedLayout() *gpudata.MemoryLayout { return img.sharedLayout.Clone() }

// InstanceLayout returns a copy of the per-instance data layout.
func (img *VectorImage) InstanceLayout() *gpudata.MemoryLayout { return img.instanceLayout.Clone() }

// VectorImageInstance is one drawable copy of a vector image. It owns its
// memory, so transforms and colors can differ between instances.
type VectorImageInstance struct {
	base   *VectorImage
	memory *gpudata.Memory
}

// CloneInstance returns a new instance of the same image with a copy of
// this instance's memory.
func (inst *VectorImageInstance) CloneInstance() *VectorImageInstance {
	return &VectorImageInstance{base: inst.base, memory: inst.memory.Clone()}
}

// Base returns the image this is an instance of.
func (inst *VectorImageInstance) Base() *VectorImage { return inst.base }

// Memory returns a copy of the instance memory.
func (inst *VectorImageInstance) Memory() []gpudata.Word {
	return inst.memory.Get(gpudata.GlobalAddress(0), inst.memory.Len())
}

// SetTransform overwrites a transform in this instance only.
func (inst *VectorImageInstance) SetTransform(id TransformID, m gg.Matrix) {
	inst.memory.Set(id.addr, gpudata.NewTransform(m))
}

// Transform reads a transform of this instance.
func (inst *VectorImageInstance) Transform(id TransformID) gg.Matrix {
	return gpudata.DecodeTransform(inst.memory.Get(id.addr, gpudata.TransformWords)).Matrix()
}

// SetColor overwrites a color in this instance only.
func (inst *VectorImageInstance) SetColor(id ColorID, c gg.RGBA) {
	inst.memory.Set(id.addr, gpudata.NewColor(c))
}

// Color reads a color of this instance.
func (inst *VectorImageInstance) Color(id ColorID) gg.RGBA {
	return gpudata.DecodeColor(inst.memory.Get(id.addr, gpudata.ColorWords)).RGBA()
}
