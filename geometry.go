package vgr

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/vgr/gpudata"
	"github.com/gogpu/vgr/tess"
)

// FillVertex is the GPU vertex of filled geometry.
type FillVertex struct {
	Position [2]float32
	Normal   [2]float32
	PrimID   int32 // raw gpudata.Address of the fill primitive
}

// StrokeVertex is the GPU vertex of stroked geometry.
type StrokeVertex struct {
	Position    [2]float32
	Normal      [2]float32
	Advancement float32
	PrimID      int32 // raw gpudata.Address of the stroke primitive
}

// Vertex strides in bytes.
const (
	FillVertexSize   = uint64(unsafe.Sizeof(FillVertex{}))
	StrokeVertexSize = uint64(unsafe.Sizeof(StrokeVertex{}))
)

// Shader locations of vertex attributes, shared by fill and stroke shaders.
const (
	LocationPosition    = 0
	LocationNormal      = 1
	LocationPrimID      = 2
	LocationAdvancement = 3
)

// FillVertexLayout describes FillVertex to a render pipeline.
func FillVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{{
		ArrayStride: FillVertexSize,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: LocationPosition},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: LocationNormal},
			{Format: gputypes.VertexFormatSint32, Offset: 16, ShaderLocation: LocationPrimID},
		},
	}}
}

// StrokeVertexLayout describes StrokeVertex to a render pipeline.
func StrokeVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{{
		ArrayStride: StrokeVertexSize,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: LocationPosition},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: LocationNormal},
			{Format: gputypes.VertexFormatFloat32, Offset: 16, ShaderLocation: LocationAdvancement},
			{Format: gputypes.VertexFormatSint32, Offset: 20, ShaderLocation: LocationPrimID},
		},
	}}
}

// GeometryBuilder accumulates the vertices of one or more vector images
// until it is submitted to the device.
type GeometryBuilder struct {
	ID     GeometryID
	Fill   tess.VertexBuffers[FillVertex]
	Stroke tess.VertexBuffers[StrokeVertex]
}

// IsEmpty reports whether no geometry has been added.
func (g *GeometryBuilder) IsEmpty() bool {
	return len(g.Fill.Vertices) == 0 && len(g.Stroke.Vertices) == 0
}

// fillVertexCtor stamps every fill vertex with the primitive address.
// NaN coordinates are invariant violations and panic.
func fillVertexCtor(prim gpudata.Address) tess.VertexConstructor[tess.FillVertex, FillVertex] {
	return func(v tess.FillVertex) FillVertex {
		mustFinite("fill position", v.Position.X, v.Position.Y)
		mustFinite("fill normal", v.Normal.X, v.Normal.Y)
		return FillVertex{
			Position: [2]float32{float32(v.Position.X), float32(v.Position.Y)},
			Normal:   [2]float32{float32(v.Normal.X), float32(v.Normal.Y)},
			PrimID:   int32(prim.Raw()), //nolint:gosec // bit pattern is what the shader reads
		}
	}
}

// strokeVertexCtor stamps every stroke vertex with the primitive address.
func strokeVertexCtor(prim gpudata.Address) tess.VertexConstructor[tess.StrokeVertex, StrokeVertex] {
	return func(v tess.StrokeVertex) StrokeVertex {
		mustFinite("stroke position", v.Position.X, v.Position.Y)
		mustFinite("stroke normal", v.Normal.X, v.Normal.Y)
		mustFinite("stroke advancement", v.Advancement)
		return StrokeVertex{
			Position:    [2]float32{float32(v.Position.X), float32(v.Position.Y)},
			Normal:      [2]float32{float32(v.Normal.X), float32(v.Normal.Y)},
			Advancement: float32(v.Advancement),
			PrimID:      int32(prim.Raw()), //nolint:gosec // bit pattern is what the shader reads
		}
	}
}

func mustFinite(what string, vals ...float64) {
	for _, v := range vals {
		if math.IsNaN(v) {
			panic(fmt.Sprintf("vgr: NaN %s", what))
		}
	}
}
