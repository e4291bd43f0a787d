package tess

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"
)

// LineCap is the shape at the ends of open contours.
type LineCap int

const (
	// ButtCap ends the stroke flush with the endpoint.
	ButtCap LineCap = iota
	// SquareCap extends the stroke by half its width past the endpoint.
	SquareCap
	// RoundCap ends the stroke with a half disc.
	RoundCap
)

// String returns the SVG name of the cap.
func (c LineCap) String() string {
	switch c {
	case ButtCap:
		return "butt"
	case SquareCap:
		return "square"
	case RoundCap:
		return "round"
	default:
		return fmt.Sprintf("LineCap(%d)", int(c))
	}
}

// LineJoin is the shape at corners between segments.
type LineJoin int

const (
	// MiterJoin extends both edges to a point, falling back to BevelJoin
	// beyond the miter limit.
	MiterJoin LineJoin = iota
	// BevelJoin cuts the corner with a straight edge.
	BevelJoin
	// RoundJoin rounds the corner with an arc.
	RoundJoin
)

// String returns the SVG name of the join.
func (j LineJoin) String() string {
	switch j {
	case MiterJoin:
		return "miter"
	case BevelJoin:
		return "bevel"
	case RoundJoin:
		return "round"
	default:
		return fmt.Sprintf("LineJoin(%d)", int(j))
	}
}

// DefaultMiterLimit is the SVG default miter limit.
const DefaultMiterLimit = 4.0

// maxArcSteps caps the number of segments in one round cap or join.
const maxArcSteps = 64

// StrokeOptions control stroke tessellation.
type StrokeOptions struct {
	// LineWidth is the full stroke width. It is not baked into vertex
	// positions; it only sets how finely round caps and joins are divided.
	LineWidth float64

	LineCap    LineCap
	LineJoin   LineJoin
	MiterLimit float64
	Tolerance  float64
}

// DefaultStrokeOptions returns 1-unit butt-capped, miter-joined strokes.
func DefaultStrokeOptions() StrokeOptions {
	return StrokeOptions{
		LineWidth:  1,
		LineCap:    ButtCap,
		LineJoin:   MiterJoin,
		MiterLimit: DefaultMiterLimit,
		Tolerance:  DefaultTolerance,
	}
}

// WithLineWidth returns a copy of o with the given width.
func (o StrokeOptions) WithLineWidth(w float64) StrokeOptions {
	o.LineWidth = w
	return o
}

// WithLineCap returns a copy of o with the given cap.
func (o StrokeOptions) WithLineCap(c LineCap) StrokeOptions {
	o.LineCap = c
	return o
}

// WithLineJoin returns a copy of o with the given join.
func (o StrokeOptions) WithLineJoin(j LineJoin) StrokeOptions {
	o.LineJoin = j
	return o
}

// WithMiterLimit returns a copy of o with the given miter limit.
func (o StrokeOptions) WithMiterLimit(limit float64) StrokeOptions {
	o.MiterLimit = limit
	return o
}

// WithTolerance returns a copy of o with the given tolerance.
func (o StrokeOptions) WithTolerance(tol float64) StrokeOptions {
	o.Tolerance = tol
	return o
}

// Validate reports whether the options can be tessellated.
func (o StrokeOptions) Validate() error {
	if err := validTolerance(o.Tolerance); err != nil {
		return err
	}
	if !(o.LineWidth >= 0) || math.IsInf(o.LineWidth, 0) {
		return fmt.Errorf("%w: line width %v", ErrInvalidOptions, o.LineWidth)
	}
	if !(o.MiterLimit >= 1) {
		return fmt.Errorf("%w: miter limit %v is below 1", ErrInvalidOptions, o.MiterLimit)
	}
	if o.LineCap < ButtCap || o.LineCap > RoundCap {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, o.LineCap)
	}
	if o.LineJoin < MiterJoin || o.LineJoin > RoundJoin {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, o.LineJoin)
	}
	return nil
}

// StrokeVertex is a vertex produced by the stroke tessellator.
//
// The final position is Position + Normal*width/2. Normal has unit length
// on straight edges, is longer at miters and is zero at the pivot of a
// bevel or round join.
type StrokeVertex struct {
	Position    gg.Point
	Normal      gg.Point
	Advancement float64
}

// StrokeTessellator extrudes path centerlines into triangles.
// It is not safe for concurrent use.
type StrokeTessellator struct {
	dirs []gg.Point
}

// NewStrokeTessellator creates a stroke tessellator.
func NewStrokeTessellator() *StrokeTessellator {
	return &StrokeTessellator{}
}

// TessellatePath strokes the given path elements into out.
//
// Contours that collapse to a single point produce nothing. On error nothing
// is left in out from this call.
func (t *StrokeTessellator) TessellatePath(elements []gg.PathElement, opts StrokeOptions, out GeometryBuilder[StrokeVertex]) (Count, error) {
	if err := opts.Validate(); err != nil {
		return Count{}, err
	}
	contours, err := flatten(elements, opts.Tolerance)
	if err != nil {
		return Count{}, err
	}

	out.BeginGeometry()
	for i, c := range contours {
		s := strokeState{out: out, opts: opts}
		t.strokeContour(&s, c)
		if s.err != nil {
			out.AbortGeometry()
			return Count{}, fmt.Errorf("contour %d: %w", i, s.err)
		}
	}
	return out.EndGeometry(), nil
}

func (t *StrokeTessellator) strokeContour(s *strokeState, c contour) {
	pts := c.points
	n := len(pts)
	if n < 2 {
		return
	}
	closed := c.closed && n >= 3

	nseg := n - 1
	if closed {
		nseg = n
	}
	t.dirs = t.dirs[:0]
	for i := range nseg {
		t.dirs = append(t.dirs, pts[(i+1)%n].Sub(pts[i]).Normalize())
	}

	var cur pair
	var closingNormal gg.Point
	if closed {
		closingNormal, _ = joinNormals(t.dirs[nseg-1], t.dirs[0], s.opts)
		_, cur = s.join(pts[0], t.dirs[nseg-1], t.dirs[0], 0)
	} else {
		cur = s.startCap(pts[0], t.dirs[0])
	}

	var adv float64
	for i := range nseg {
		a, b := pts[i], pts[(i+1)%n]
		adv += b.Sub(a).Length()

		var end, next pair
		switch {
		case i == nseg-1 && closed:
			end = s.pair(b, closingNormal, adv)
		case i == nseg-1:
			end = s.endCap(b, t.dirs[i], adv)
		default:
			end, next = s.join(b, t.dirs[i], t.dirs[i+1], adv)
		}
		s.quad(cur, end)
		cur = next
	}
}

// pair is the left and right vertex of a stroke cross-section.
type pair struct{ l, r VertexID }

// strokeState carries the output of one contour. The first error is kept
// and later calls become no-ops.
type strokeState struct {
	out  GeometryBuilder[StrokeVertex]
	opts StrokeOptions
	err  error
}

func (s *strokeState) vertex(p, normal gg.Point, adv float64) VertexID {
	if s.err != nil {
		return 0
	}
	id, err := s.out.AddVertex(StrokeVertex{Position: p, Normal: normal, Advancement: adv})
	if err != nil {
		s.err = err
	}
	return id
}

func (s *strokeState) triangle(a, b, c VertexID) {
	if s.err == nil {
		s.out.AddTriangle(a, b, c)
	}
}

func (s *strokeState) pair(p, normal gg.Point, adv float64) pair {
	return pair{
		l: s.vertex(p, normal, adv),
		r: s.vertex(p, normal.Mul(-1), adv),
	}
}

// quad joins two cross-sections with two triangles.
func (s *strokeState) quad(a, b pair) {
	s.triangle(a.l, a.r, b.l)
	s.triangle(a.r, b.r, b.l)
}

func (s *strokeState) startCap(p, d gg.Point) pair {
	n := leftNormal(d)
	switch s.opts.LineCap {
	case SquareCap:
		return pair{
			l: s.vertex(p, n.Sub(d), 0),
			r: s.vertex(p, n.Mul(-1).Sub(d), 0),
		}
	case RoundCap:
		pr := s.pair(p, n, 0)
		c := s.vertex(p, gg.Point{}, 0)
		s.arc(c, p, 0, pr.l, pr.r, n, n.Mul(-1), d.Mul(-1))
		return pr
	default:
		return s.pair(p, n, 0)
	}
}

func (s *strokeState) endCap(p, d gg.Point, adv float64) pair {
	n := leftNormal(d)
	switch s.opts.LineCap {
	case SquareCap:
		return pair{
			l: s.vertex(p, n.Add(d), adv),
			r: s.vertex(p, n.Mul(-1).Add(d), adv),
		}
	case RoundCap:
		pr := s.pair(p, n, adv)
		c := s.vertex(p, gg.Point{}, adv)
		s.arc(c, p, adv, pr.l, pr.r, n, n.Mul(-1), d)
		return pr
	default:
		return s.pair(p, n, adv)
	}
}

// join emits the corner at p between incoming direction d0 and outgoing d1.
// It returns the cross-section ending the incoming segment and the one
// starting the outgoing segment; they are the same for miters.
func (s *strokeState) join(p, d0, d1 gg.Point, adv float64) (in, out pair) {
	if m, ok := joinNormals(d0, d1, s.opts); ok {
		pr := s.pair(p, m, adv)
		return pr, pr
	}

	n0, n1 := leftNormal(d0), leftNormal(d1)
	in = s.pair(p, n0, adv)
	out = s.pair(p, n1, adv)
	c := s.vertex(p, gg.Point{}, adv)

	if s.opts.LineJoin != RoundJoin {
		s.triangle(c, in.l, out.l)
		s.triangle(c, in.r, out.r)
		return in, out
	}

	// The outer side of a left turn is the right side.
	if d0.Cross(d1) > 0 {
		s.triangle(c, in.l, out.l)
		s.arc(c, p, adv, in.r, out.r, n0.Mul(-1), n1.Mul(-1), d0)
	} else {
		s.triangle(c, in.r, out.r)
		s.arc(c, p, adv, in.l, out.l, n0, n1, d0)
	}
	return in, out
}

// arc fans triangles around pivot c from vertex `from` (normal u0) to vertex
// `to` (normal u1), sweeping the side whose midpoint faces forward.
func (s *strokeState) arc(c VertexID, p gg.Point, adv float64, from, to VertexID, u0, u1, forward gg.Point) {
	sweep := math.Atan2(u0.Cross(u1), u0.Dot(u1))
	if u0.Rotate(sweep/2).Dot(forward) < 0 {
		if sweep > 0 {
			sweep -= 2 * math.Pi
		} else {
			sweep += 2 * math.Pi
		}
	}

	steps := s.arcSteps(math.Abs(sweep))
	prev := from
	for k := 1; k < steps; k++ {
		v := s.vertex(p, u0.Rotate(sweep*float64(k)/float64(steps)), adv)
		s.triangle(c, prev, v)
		prev = v
	}
	s.triangle(c, prev, to)
}

// arcSteps returns how many segments approximate an arc of the given angle
// within tolerance at the stroke's radius.
func (s *strokeState) arcSteps(angle float64) int {
	r := s.opts.LineWidth / 2
	step := math.Pi / 2
	if s.opts.Tolerance < r {
		step = math.Min(step, 2*math.Acos(1-s.opts.Tolerance/r))
	}
	steps := int(math.Ceil(angle / step))
	return max(1, min(steps, maxArcSteps))
}

// joinNormals returns the miter normal for a corner and whether a miter
// join applies. Straight continuations always miter.
func joinNormals(d0, d1 gg.Point, opts StrokeOptions) (gg.Point, bool) {
	n0, n1 := leftNormal(d0), leftNormal(d1)
	denom := 1 + n0.Dot(n1)
	if denom < 1e-6 {
		return n0, false
	}
	m := n0.Add(n1).Div(denom)
	if math.Abs(d0.Cross(d1)) < 1e-9 {
		return m, true
	}
	if opts.LineJoin != MiterJoin || m.Length() > opts.MiterLimit {
		return n0, false
	}
	return m, true
}

// leftNormal rotates a unit direction a quarter turn counter-clockwise.
func leftNormal(d gg.Point) gg.Point {
	return gg.Pt(-d.Y, d.X)
}
