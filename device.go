package vgr

import (
	"fmt"

	"github.com/gogpu/vgr/gpudata"
)

// Device is the GPU backend the renderer drives.
//
// Calls reach the device in the order the renderer makes them. A device
// need not be safe for concurrent use.
type Device interface {
	// Allocate reserves size words of global GPU memory. The returned range
	// is global and exactly size words long.
	Allocate(size uint32) (gpudata.AddressRange, error)

	// Upload copies mem into the range. It fails if mem does not fit.
	Upload(r gpudata.AddressRange, mem *gpudata.Memory) error

	// SubmitGeometry makes the builder's vertices drawable under its ID.
	SubmitGeometry(g *GeometryBuilder) error

	// RenderPass draws the commands in order with the given pass state.
	RenderPass(cmds []DrawCmd, opts RenderPassOptions) error
}

// VertexKind selects the vertex format and pipeline of a render pass.
type VertexKind uint8

const (
	// VertexFill draws FillVertex geometry.
	VertexFill VertexKind = iota
	// VertexStroke draws StrokeVertex geometry.
	VertexStroke
)

func (k VertexKind) String() string {
	switch k {
	case VertexFill:
		return "fill"
	case VertexStroke:
		return "stroke"
	default:
		return fmt.Sprintf("VertexKind(%d)", k)
	}
}

// RenderPassOptions is the fixed pipeline state of one render pass.
type RenderPassOptions struct {
	VertexKind       VertexKind
	EnableBlending   bool
	EnableDepthWrite bool
	EnableDepthTest  bool
	Effect           EffectID
}

// opaquePass is the state of the opaque fill and stroke passes.
func opaquePass(kind VertexKind) RenderPassOptions {
	return RenderPassOptions{
		VertexKind:       kind,
		EnableBlending:   false,
		EnableDepthWrite: true,
		EnableDepthTest:  true,
		Effect:           0,
	}
}

// DrawCmd draws NumInstances instances of a geometry. Instance k reads its
// memory at BaseAddress + k*InstanceStride.
type DrawCmd struct {
	Geometry       GeometryID
	NumInstances   uint32
	BaseAddress    gpudata.Address
	InstanceStride uint32
}

// InstanceAddress returns the base address of instance k.
func (c DrawCmd) InstanceAddress(k uint32) gpudata.Address {
	return c.BaseAddress.Add(k * c.InstanceStride)
}
