package vgr

import (
	"fmt"

	"github.com/gogpu/gg"
)

// Pattern is what a fill or stroke paints with.
//
// The set of patterns is closed: ColorPattern and ImagePattern.
type Pattern interface {
	isPattern()
}

// ColorPattern paints with a solid color stored in the image memory.
type ColorPattern struct {
	Color ColorID
}

// ImagePattern paints with a raster image mapped onto Rect.
// It is not supported by the builders yet.
type ImagePattern struct {
	Rect  Rect
	Image ImageID
}

func (ColorPattern) isPattern() {}
func (ImagePattern) isPattern() {}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Min, Max gg.Point
}

// FillStyle describes how a shape is filled.
type FillStyle struct {
	Pattern Pattern
}

// StrokeStyle describes how a shape is stroked. The width and the rest of
// the geometry live in tess.StrokeOptions.
type StrokeStyle struct {
	Pattern Pattern
}

// Fill returns a FillStyle painting with color.
func Fill(color ColorID) FillStyle {
	return FillStyle{Pattern: ColorPattern{Color: color}}
}

// Stroke returns a StrokeStyle painting with color.
func Stroke(color ColorID) StrokeStyle {
	return StrokeStyle{Pattern: ColorPattern{Color: color}}
}

// Shape is a geometric shape that can be filled or stroked.
//
// The set of shapes is closed: PathShape and CircleShape.
type Shape interface {
	isShape()
}

// PathShape is an arbitrary path flattened at Tolerance.
type PathShape struct {
	Path      *gg.Path
	Tolerance float64
}

// CircleShape is a circle flattened at Tolerance.
type CircleShape struct {
	Center    gg.Point
	Radius    float64
	Tolerance float64
}

func (PathShape) isShape()   {}
func (CircleShape) isShape() {}

// shapeElements returns the path elements and tolerance of a shape.
func shapeElements(s Shape) ([]gg.PathElement, float64, error) {
	switch s := s.(type) {
	case PathShape:
		if s.Path == nil {
			return nil, s.Tolerance, nil
		}
		return s.Path.Elements(), s.Tolerance, nil
	case CircleShape:
		p := gg.NewPath()
		p.Circle(s.Center.X, s.Center.Y, s.Radius)
		return p.Elements(), s.Tolerance, nil
	default:
		return nil, 0, fmt.Errorf("%w: %T", ErrUnsupportedShape, s)
	}
}

func describeShape(s Shape) string {
	switch s := s.(type) {
	case PathShape:
		if s.Path == nil {
			return "empty path"
		}
		return fmt.Sprintf("path of %d elements", len(s.Path.Elements()))
	case CircleShape:
		return fmt.Sprintf("circle at (%g, %g) r=%g", s.Center.X, s.Center.Y, s.Radius)
	default:
		return fmt.Sprintf("%T", s)
	}
}
