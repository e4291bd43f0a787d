package gpudata

import (
	"math"

	"github.com/gogpu/gg"
)

// Transform is a 2D affine transform as stored in GPU memory:
// the six coefficients of gg.Matrix in row-major order followed by two
// padding words.
type Transform struct {
	m [6]float32
}

// TransformWords is the size of an encoded Transform.
const TransformWords = 8

// NewTransform converts m to its GPU representation.
func NewTransform(m gg.Matrix) Transform {
	return Transform{m: [6]float32{
		float32(m.A), float32(m.B), float32(m.C),
		float32(m.D), float32(m.E), float32(m.F),
	}}
}

// IdentityTransform is the identity transform.
func IdentityTransform() Transform { return NewTransform(gg.Identity()) }

// Words implements Block.
func (t Transform) Words() []Word {
	w := make([]Word, TransformWords)
	for i, v := range t.m {
		w[i] = math.Float32bits(v)
	}
	return w
}

// Matrix returns the transform as a gg.Matrix.
func (t Transform) Matrix() gg.Matrix {
	return gg.Matrix{
		A: float64(t.m[0]), B: float64(t.m[1]), C: float64(t.m[2]),
		D: float64(t.m[3]), E: float64(t.m[4]), F: float64(t.m[5]),
	}
}

// DecodeTransform reads a Transform from its encoded words.
func DecodeTransform(w []Word) Transform {
	var t Transform
	for i := range t.m {
		t.m[i] = math.Float32frombits(w[i])
	}
	return t
}

// Color is a linear RGBA color as four floats.
type Color struct {
	R, G, B, A float32
}

// ColorWords is the size of an encoded Color.
const ColorWords = 4

// NewColor converts c to its GPU representation.
func NewColor(c gg.RGBA) Color {
	return Color{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: float32(c.A)}
}

// Words implements Block.
func (c Color) Words() []Word {
	return []Word{
		math.Float32bits(c.R),
		math.Float32bits(c.G),
		math.Float32bits(c.B),
		math.Float32bits(c.A),
	}
}

// RGBA returns the color as a gg.RGBA.
func (c Color) RGBA() gg.RGBA {
	return gg.RGBA{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)}
}

// DecodeColor reads a Color from its encoded words.
func DecodeColor(w []Word) Color {
	return Color{
		R: math.Float32frombits(w[0]),
		G: math.Float32frombits(w[1]),
		B: math.Float32frombits(w[2]),
		A: math.Float32frombits(w[3]),
	}
}

// FillPrimitive is the GPU record of one fill operation:
//
//	[z, color, transform0, transform1]
type FillPrimitive struct {
	Z          uint32
	Color      Address
	Transforms [2]Address
}

// FillPrimitiveWords is the size of an encoded FillPrimitive.
const FillPrimitiveWords = 4

// Words implements Block.
func (p FillPrimitive) Words() []Word {
	return []Word{p.Z, p.Color.Raw(), p.Transforms[0].Raw(), p.Transforms[1].Raw()}
}

// DecodeFillPrimitive reads a FillPrimitive from its encoded words.
func DecodeFillPrimitive(w []Word) FillPrimitive {
	return FillPrimitive{
		Z:          w[0],
		Color:      AddressFromRaw(w[1]),
		Transforms: [2]Address{AddressFromRaw(w[2]), AddressFromRaw(w[3])},
	}
}

// StrokePrimitive is the GPU record of one stroke operation:
//
//	[z, width, color, transform0, transform1, pad, pad, pad]
type StrokePrimitive struct {
	Z          uint32
	Width      float32
	Color      Address
	Transforms [2]Address
}

// StrokePrimitiveWords is the size of an encoded StrokePrimitive.
const StrokePrimitiveWords = 8

// Words implements Block.
func (p StrokePrimitive) Words() []Word {
	return []Word{
		p.Z,
		math.Float32bits(p.Width),
		p.Color.Raw(),
		p.Transforms[0].Raw(),
		p.Transforms[1].Raw(),
		0, 0, 0,
	}
}

// DecodeStrokePrimitive reads a StrokePrimitive from its encoded words.
func DecodeStrokePrimitive(w []Word) StrokePrimitive {
	return StrokePrimitive{
		Z:          w[0],
		Width:      math.Float32frombits(w[1]),
		Color:      AddressFromRaw(w[2]),
		Transforms: [2]Address{AddressFromRaw(w[3]), AddressFromRaw(w[4])},
	}
}

// RawBlock is a block of preencoded words.
type RawBlock []Word

// Words implements Block.
func (b RawBlock) Words() []Word { return b }
