package tess

import (
	"fmt"
	"math"
	"slices"

	"github.com/gogpu/gg"
)

// DefaultTolerance is the default maximum distance between a curve and its
// flattened approximation, in path units.
const DefaultTolerance = 0.1

// areaEpsilon is the signed area below which a contour is treated as empty.
const areaEpsilon = 1e-12

// FillVertex is a vertex produced by the fill tessellator.
type FillVertex struct {
	Position gg.Point

	// Normal points away from the interior. Moving every vertex of a
	// contour by its normal moves each edge outwards by one unit.
	Normal gg.Point
}

// FillOptions control fill tessellation.
type FillOptions struct {
	Tolerance float64
}

// DefaultFillOptions returns fill options with DefaultTolerance.
func DefaultFillOptions() FillOptions {
	return FillOptions{Tolerance: DefaultTolerance}
}

// WithTolerance returns a copy of o with the given tolerance.
func (o FillOptions) WithTolerance(tol float64) FillOptions {
	o.Tolerance = tol
	return o
}

// FillTessellator triangulates path interiors with the even-odd rule.
//
// Contours nested inside an odd number of other contours are holes: each
// is bridged into the ring of its immediate parent and the merged ring is
// triangulated by ear clipping. Contours that cross each other are not
// split at the intersections; a contour only partly inside another is
// painted on its own. A tessellator keeps scratch buffers between calls
// and is not safe for concurrent use.
type FillTessellator struct {
	pts  []gg.Point
	ring []int
	ids  []VertexID
}

// NewFillTessellator creates a fill tessellator.
func NewFillTessellator() *FillTessellator {
	return &FillTessellator{}
}

// fillRing is a flattened contour with non-zero area.
type fillRing struct {
	points []gg.Point
	area   float64
	depth  int
	parent int // enclosing ring for holes, -1 otherwise
}

// TessellatePath fills the given path elements into out.
//
// On error nothing is left in out from this call.
func (t *FillTessellator) TessellatePath(elements []gg.PathElement, opts FillOptions, out GeometryBuilder[FillVertex]) (Count, error) {
	if err := validTolerance(opts.Tolerance); err != nil {
		return Count{}, err
	}
	contours, err := flatten(elements, opts.Tolerance)
	if err != nil {
		return Count{}, err
	}

	rings := nestRings(contours)
	out.BeginGeometry()
	for i, r := range rings {
		if r.depth%2 == 1 {
			continue
		}
		var holes []int
		for j, h := range rings {
			if h.parent == i {
				holes = append(holes, j)
			}
		}
		if err := t.fillGroup(rings, i, holes, out); err != nil {
			out.AbortGeometry()
			return Count{}, fmt.Errorf("contour %d: %w", i, err)
		}
	}
	return out.EndGeometry(), nil
}

// nestRings drops degenerate contours and works out how deeply each ring
// is nested. A ring counts as inside another only when all of its points
// are.
func nestRings(contours []contour) []fillRing {
	var rings []fillRing
	for _, c := range contours {
		if len(c.points) < 3 {
			continue
		}
		area := signedArea(c.points)
		if math.Abs(area) <= areaEpsilon {
			continue
		}
		rings = append(rings, fillRing{points: c.points, area: area, parent: -1})
	}

	inside := make([][]bool, len(rings))
	for i := range rings {
		inside[i] = make([]bool, len(rings))
		for j := range rings {
			if i != j && math.Abs(rings[i].area) < math.Abs(rings[j].area) {
				inside[i][j] = ringInside(rings[i].points, rings[j].points)
			}
		}
	}
	for i := range rings {
		for j := range rings {
			if inside[i][j] {
				rings[i].depth++
			}
		}
	}
	for i := range rings {
		if rings[i].depth%2 == 0 {
			continue
		}
		for j := range rings {
			if inside[i][j] && rings[j].depth == rings[i].depth-1 {
				rings[i].parent = j
				break
			}
		}
	}
	return rings
}

func ringInside(inner, outer []gg.Point) bool {
	for _, p := range inner {
		if !pointInPolygon(p, outer) {
			return false
		}
	}
	return true
}

// fillGroup triangulates an outer ring together with its holes.
func (t *FillTessellator) fillGroup(rings []fillRing, outer int, holes []int, out GeometryBuilder[FillVertex]) error {
	t.pts = t.pts[:0]
	t.ids = t.ids[:0]

	// The outer ring is walked counter-clockwise so convex corners have a
	// positive cross product; holes are walked clockwise.
	t.ring = t.ring[:0]
	start, err := t.addRing(rings[outer], false, out)
	if err != nil {
		return err
	}
	for i := range rings[outer].points {
		t.ring = append(t.ring, start+i)
	}
	if rings[outer].area < 0 {
		slices.Reverse(t.ring)
	}

	holeRings := make([][]int, 0, len(holes))
	for _, h := range holes {
		start, err := t.addRing(rings[h], true, out)
		if err != nil {
			return err
		}
		hr := make([]int, len(rings[h].points))
		for i := range hr {
			hr[i] = start + i
		}
		if rings[h].area > 0 {
			slices.Reverse(hr)
		}
		holeRings = append(holeRings, hr)
	}
	if err := t.bridgeHoles(holeRings); err != nil {
		return err
	}

	for len(t.ring) > 3 {
		if t.clipEar(out) {
			continue
		}
		if !t.dropCollinear() {
			return ErrTriangulation
		}
	}
	a, b, c := t.pts[t.ring[0]], t.pts[t.ring[1]], t.pts[t.ring[2]]
	if b.Sub(a).Cross(c.Sub(b)) != 0 {
		out.AddTriangle(t.ids[t.ring[0]], t.ids[t.ring[1]], t.ids[t.ring[2]])
	}
	return nil
}

// addRing emits the vertices of r and returns the index of the first one
// in t.pts. Hole normals point into the hole.
func (t *FillTessellator) addRing(r fillRing, hole bool, out GeometryBuilder[FillVertex]) (int, error) {
	pts := r.points
	n := len(pts)
	ccw := (r.area > 0) != hole
	start := len(t.pts)
	for i := range pts {
		id, err := out.AddVertex(FillVertex{
			Position: pts[i],
			Normal:   fillNormal(pts[(i+n-1)%n], pts[i], pts[(i+1)%n], ccw),
		})
		if err != nil {
			return 0, err
		}
		t.pts = append(t.pts, pts[i])
		t.ids = append(t.ids, id)
	}
	return start, nil
}

// bridgeHoles splices every hole into t.ring through a pair of coincident
// edges, rightmost hole first.
func (t *FillTessellator) bridgeHoles(holes [][]int) error {
	maxX := func(h []int) int {
		best := 0
		for i, v := range h {
			if t.pts[v].X > t.pts[h[best]].X {
				best = i
			}
		}
		return best
	}
	slices.SortFunc(holes, func(a, b []int) int {
		xa, xb := t.pts[a[maxX(a)]].X, t.pts[b[maxX(b)]].X
		switch {
		case xa > xb:
			return -1
		case xa < xb:
			return 1
		}
		return 0
	})

	for k, h := range holes {
		m := maxX(h)
		h = append(slices.Clone(h[m:]), h[:m]...)
		at, ok := t.bridgeTarget(h[0], holes[k:])
		if !ok {
			return ErrTriangulation
		}
		splice := make([]int, 0, len(h)+2)
		splice = append(splice, h...)
		splice = append(splice, h[0], t.ring[at])
		t.ring = slices.Insert(t.ring, at+1, splice...)
	}
	return nil
}

// bridgeTarget returns the position in t.ring of the closest vertex that
// hole vertex v can reach through the interior without crossing the ring
// or an unbridged hole.
func (t *FillTessellator) bridgeTarget(v int, holes [][]int) (int, bool) {
	m := t.pts[v]
	n := len(t.ring)
	best, bestDist := -1, math.Inf(1)
	for i, r := range t.ring {
		p := t.pts[r]
		d := p.Sub(m).Dot(p.Sub(m))
		if d >= bestDist || p == m {
			continue
		}
		prev, next := t.pts[t.ring[(i+n-1)%n]], t.pts[t.ring[(i+1)%n]]
		if !inWedge(m, prev, p, next) || t.crossesRing(m, p, t.ring) {
			continue
		}
		blocked := false
		for _, h := range holes {
			if t.crossesRing(m, p, h) {
				blocked = true
				break
			}
		}
		if !blocked {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

// inWedge reports whether m lies in the interior angle at p of a
// counter-clockwise ring.
func inWedge(m, prev, p, next gg.Point) bool {
	in, out, dir := next.Sub(p), prev.Sub(p), m.Sub(p)
	if p.Sub(prev).Cross(next.Sub(p)) > 0 {
		return in.Cross(dir) >= 0 && dir.Cross(out) >= 0
	}
	return !(out.Cross(dir) > 0 && dir.Cross(in) > 0)
}

// crossesRing reports whether segment mp properly crosses an edge of ring
// that does not touch m or p.
func (t *FillTessellator) crossesRing(m, p gg.Point, ring []int) bool {
	for i := range ring {
		a, b := t.pts[ring[i]], t.pts[ring[(i+1)%len(ring)]]
		if a == m || a == p || b == m || b == p {
			continue
		}
		if segmentsCross(m, p, a, b) {
			return true
		}
	}
	return false
}

// clipEar removes the first ear found in the ring and emits its triangle.
func (t *FillTessellator) clipEar(out GeometryBuilder[FillVertex]) bool {
	m := len(t.ring)
	for i := range m {
		ia, ib, ic := t.ring[(i+m-1)%m], t.ring[i], t.ring[(i+1)%m]
		a, b, c := t.pts[ia], t.pts[ib], t.pts[ic]
		if b.Sub(a).Cross(c.Sub(b)) <= 0 {
			continue
		}
		if t.blocked(a, b, c) {
			continue
		}
		out.AddTriangle(t.ids[ia], t.ids[ib], t.ids[ic])
		t.ring = slices.Delete(t.ring, i, i+1)
		return true
	}
	return false
}

// blocked reports whether a reflex ring vertex lies in triangle abc.
func (t *FillTessellator) blocked(a, b, c gg.Point) bool {
	m := len(t.ring)
	for i, j := range t.ring {
		p := t.pts[j]
		if p == a || p == b || p == c {
			continue
		}
		prev, next := t.pts[t.ring[(i+m-1)%m]], t.pts[t.ring[(i+1)%m]]
		if p.Sub(prev).Cross(next.Sub(p)) > 0 {
			continue
		}
		if inTriangle(p, a, b, c) {
			return true
		}
	}
	return false
}

// dropCollinear removes one vertex lying on the line through its neighbours.
func (t *FillTessellator) dropCollinear() bool {
	m := len(t.ring)
	for i := range m {
		a, b, c := t.pts[t.ring[(i+m-1)%m]], t.pts[t.ring[i]], t.pts[t.ring[(i+1)%m]]
		if b.Sub(a).Cross(c.Sub(b)) == 0 {
			t.ring = slices.Delete(t.ring, i, i+1)
			return true
		}
	}
	return false
}

// fillNormal returns the outward miter normal at cur.
func fillNormal(prev, cur, next gg.Point, ccw bool) gg.Point {
	n0 := edgeNormal(cur.Sub(prev).Normalize(), ccw)
	n1 := edgeNormal(next.Sub(cur).Normalize(), ccw)
	denom := 1 + n0.Dot(n1)
	if denom < 1e-6 {
		return n0
	}
	return n0.Add(n1).Div(denom)
}

// edgeNormal returns the outward unit normal of an edge with direction d.
func edgeNormal(d gg.Point, ccw bool) gg.Point {
	if ccw {
		return gg.Pt(d.Y, -d.X)
	}
	return gg.Pt(-d.Y, d.X)
}

// signedArea is positive for counter-clockwise contours in a y-up frame.
func signedArea(pts []gg.Point) float64 {
	var sum float64
	for i := range pts {
		sum += pts[i].Cross(pts[(i+1)%len(pts)])
	}
	return sum / 2
}

// inTriangle reports whether p is inside or on counter-clockwise triangle abc.
func inTriangle(p, a, b, c gg.Point) bool {
	return b.Sub(a).Cross(p.Sub(a)) >= 0 &&
		c.Sub(b).Cross(p.Sub(b)) >= 0 &&
		a.Sub(c).Cross(p.Sub(c)) >= 0
}

// pointInPolygon reports whether p is inside poly by the even-odd rule.
func pointInPolygon(p gg.Point, poly []gg.Point) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// segmentsCross reports whether segments pq and ab intersect at a point
// interior to both, or overlap collinearly.
func segmentsCross(p, q, a, b gg.Point) bool {
	d1 := q.Sub(p).Cross(a.Sub(p))
	d2 := q.Sub(p).Cross(b.Sub(p))
	d3 := b.Sub(a).Cross(p.Sub(a))
	d4 := b.Sub(a).Cross(q.Sub(a))
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	onSegment := func(x, s, e gg.Point) bool {
		return x.X >= math.Min(s.X, e.X) && x.X <= math.Max(s.X, e.X) &&
			x.Y >= math.Min(s.Y, e.Y) && x.Y <= math.Max(s.Y, e.Y)
	}
	return (d1 == 0 && onSegment(a, p, q)) || (d2 == 0 && onSegment(b, p, q)) ||
		(d3 == 0 && onSegment(p, a, b)) || (d4 == 0 && onSegment(q, a, b))
}
