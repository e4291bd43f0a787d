package vgr

import (
	"fmt"

	"github.com/gogpu/vgr/gpudata"
)

// VectorImageID identifies a vector image within a Context.
type VectorImageID uint32

// GeometryID identifies a GeometryBuilder within a Context.
type GeometryID uint32

// ImageID identifies a raster image used by ImagePattern.
type ImageID uint32

// EffectID identifies a render pass effect. Zero means no effect.
type EffectID uint32

// NumberID identifies a scalar value in GPU memory.
type NumberID uint32

// TransformID refers to a transform stored in a vector image's memory.
type TransformID struct{ addr gpudata.Address }

// Address returns where the transform lives in the image memory.
func (id TransformID) Address() gpudata.Address { return id.addr }

func (id TransformID) String() string { return fmt.Sprintf("transform@%v", id.addr) }

// ColorID refers to a color stored in a vector image's memory.
type ColorID struct{ addr gpudata.Address }

// Address returns where the color lives in the image memory.
func (id ColorID) Address() gpudata.Address { return id.addr }

func (id ColorID) String() string { return fmt.Sprintf("color@%v", id.addr) }

// FillID refers to the primitive of a fill operation.
type FillID struct{ addr gpudata.Address }

// Address returns the primitive address, which every vertex of the fill
// carries as its primitive id.
func (id FillID) Address() gpudata.Address { return id.addr }

// StrokeID refers to the primitive of a stroke operation.
type StrokeID struct{ addr gpudata.Address }

// Address returns the primitive address, which every vertex of the stroke
// carries as its primitive id.
func (id StrokeID) Address() gpudata.Address { return id.addr }
