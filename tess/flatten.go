package tess

import (
	"math"

	"github.com/gogpu/gg"
)

// maxSubdivision bounds curve recursion; 2^16 segments per curve is far more
// than any sane tolerance asks for.
const maxSubdivision = 16

// contour is one flattened subpath.
type contour struct {
	points []gg.Point
	closed bool
}

// flatten converts path elements into polylines. Consecutive duplicate points
// are dropped, and a closed contour does not repeat its first point.
func flatten(elements []gg.PathElement, tol float64) ([]contour, error) {
	var (
		out     []contour
		cur     contour
		start   gg.Point
		prev    gg.Point
		started bool
	)

	finish := func() {
		if started {
			pts := cur.points
			if cur.closed && len(pts) > 1 && pts[len(pts)-1] == pts[0] {
				pts = pts[:len(pts)-1]
			}
			cur.points = pts
			out = append(out, cur)
		}
		cur = contour{}
		started = false
	}

	push := func(p gg.Point) {
		if n := len(cur.points); n > 0 && cur.points[n-1] == p {
			return
		}
		cur.points = append(cur.points, p)
	}

	// Drawing without a MoveTo starts at the last known point, the same
	// way a canvas path does.
	ensure := func() {
		if !started {
			started = true
			start = prev
			push(prev)
		}
	}

	for _, elem := range elements {
		switch e := elem.(type) {
		case gg.MoveTo:
			if !finitePoint(e.Point) {
				return nil, ErrInvalidPath
			}
			finish()
			started = true
			start, prev = e.Point, e.Point
			push(e.Point)

		case gg.LineTo:
			if !finitePoint(e.Point) {
				return nil, ErrInvalidPath
			}
			ensure()
			push(e.Point)
			prev = e.Point

		case gg.QuadTo:
			if !finitePoint(e.Control) || !finitePoint(e.Point) {
				return nil, ErrInvalidPath
			}
			ensure()
			flattenQuad(prev, e.Control, e.Point, tol, 0, push)
			prev = e.Point

		case gg.CubicTo:
			if !finitePoint(e.Control1) || !finitePoint(e.Control2) || !finitePoint(e.Point) {
				return nil, ErrInvalidPath
			}
			ensure()
			flattenCubic(prev, e.Control1, e.Control2, e.Point, tol, 0, push)
			prev = e.Point

		case gg.Close:
			if !started {
				continue
			}
			cur.closed = true
			prev = start
			finish()
		}
	}
	finish()
	return out, nil
}

// flattenQuad subdivides a quadratic curve at t=0.5 until the curve midpoint
// lies within tol of the chord midpoint. p0 is assumed already emitted.
func flattenQuad(p0, c, p1 gg.Point, tol float64, depth int, emit func(gg.Point)) {
	mid := gg.Pt(0.25*p0.X+0.5*c.X+0.25*p1.X, 0.25*p0.Y+0.5*c.Y+0.25*p1.Y)
	chord := gg.Pt(0.5*(p0.X+p1.X), 0.5*(p0.Y+p1.Y))
	dx, dy := mid.X-chord.X, mid.Y-chord.Y

	if dx*dx+dy*dy <= tol*tol || depth >= maxSubdivision {
		emit(p1)
		return
	}

	a := p0.Lerp(c, 0.5)
	b := c.Lerp(p1, 0.5)
	m := a.Lerp(b, 0.5)
	flattenQuad(p0, a, m, tol, depth+1, emit)
	flattenQuad(m, b, p1, tol, depth+1, emit)
}

// flattenCubic subdivides a cubic curve until both control points are within
// tolerance of the chord. The factor of 16 is the cubic error bound.
func flattenCubic(p0, c1, c2, p1 gg.Point, tol float64, depth int, emit func(gg.Point)) {
	ux := 3*c1.X - 2*p0.X - p1.X
	uy := 3*c1.Y - 2*p0.Y - p1.Y
	vx := 3*c2.X - p0.X - 2*p1.X
	vy := 3*c2.Y - p0.Y - 2*p1.Y

	if math.Max(ux*ux+uy*uy, vx*vx+vy*vy) <= 16*tol*tol || depth >= maxSubdivision {
		emit(p1)
		return
	}

	ab1 := p0.Lerp(c1, 0.5)
	ab2 := c1.Lerp(c2, 0.5)
	ab3 := c2.Lerp(p1, 0.5)
	bc1 := ab1.Lerp(ab2, 0.5)
	bc2 := ab2.Lerp(ab3, 0.5)
	m := bc1.Lerp(bc2, 0.5)

	flattenCubic(p0, ab1, bc1, m, tol, depth+1, emit)
	flattenCubic(m, bc2, ab3, p1, tol, depth+1, emit)
}

func finitePoint(p gg.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}
