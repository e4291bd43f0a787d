package tess

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/gg"
)

func strokePath(t *testing.T, elems []gg.PathElement, opts StrokeOptions) (*VertexBuffers[StrokeVertex], Count) {
	t.Helper()
	var buf VertexBuffers[StrokeVertex]
	count, err := NewStrokeTessellator().TessellatePath(elems, opts,
		NewBuffersBuilder(&buf, func(v StrokeVertex) StrokeVertex { return v }))
	if err != nil {
		t.Fatalf("TessellatePath: %v", err)
	}
	return &buf, count
}

func segmentPath() []gg.PathElement {
	return []gg.PathElement{
		gg.MoveTo{Point: gg.Pt(0, 0)},
		gg.LineTo{Point: gg.Pt(10, 0)},
	}
}

// sharpPath turns back on itself at (10, 0) with an angle of about 6 degrees.
func sharpPath() []gg.PathElement {
	return []gg.PathElement{
		gg.MoveTo{Point: gg.Pt(0, 0)},
		gg.LineTo{Point: gg.Pt(10, 0)},
		gg.LineTo{Point: gg.Pt(0, 1)},
	}
}

func TestStrokeSegmentButt(t *testing.T) {
	buf, count := strokePath(t, segmentPath(), DefaultStrokeOptions())
	if count.Vertices != 4 || count.Indices != 6 {
		t.Fatalf("count = %+v, want 4 vertices, 6 indices", count)
	}

	want := []StrokeVertex{
		{Position: gg.Pt(0, 0), Normal: gg.Pt(0, 1), Advancement: 0},
		{Position: gg.Pt(0, 0), Normal: gg.Pt(0, -1), Advancement: 0},
		{Position: gg.Pt(10, 0), Normal: gg.Pt(0, 1), Advancement: 10},
		{Position: gg.Pt(10, 0), Normal: gg.Pt(0, -1), Advancement: 10},
	}
	for i, w := range want {
		got := buf.Vertices[i]
		if got.Position != w.Position || got.Normal.Distance(w.Normal) > 1e-12 || got.Advancement != w.Advancement {
			t.Errorf("vertex %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestStrokeSegmentSquareCap(t *testing.T) {
	buf, _ := strokePath(t, segmentPath(), DefaultStrokeOptions().WithLineCap(SquareCap))
	tests := []struct {
		i    int
		want gg.Point
	}{
		{0, gg.Pt(-1, 1)},
		{1, gg.Pt(-1, -1)},
		{2, gg.Pt(1, 1)},
		{3, gg.Pt(1, -1)},
	}
	for _, tt := range tests {
		if got := buf.Vertices[tt.i].Normal; got.Distance(tt.want) > 1e-12 {
			t.Errorf("vertex %d normal = %v, want %v", tt.i, got, tt.want)
		}
	}
}

func TestStrokeRoundCapStaysOnDisc(t *testing.T) {
	opts := DefaultStrokeOptions().WithLineCap(RoundCap).WithLineWidth(20)
	buf, count := strokePath(t, segmentPath(), opts)
	if count.Vertices <= 4 {
		t.Fatalf("round caps produced only %d vertices", count.Vertices)
	}
	for i, v := range buf.Vertices {
		l := v.Normal.Length()
		if l != 0 && math.Abs(l-1) > 1e-9 {
			t.Errorf("vertex %d normal length %v, want 0 or 1", i, l)
		}
		// Cap vertices never extend toward the segment interior.
		if v.Position == gg.Pt(0, 0) && v.Normal.X > 1e-9 {
			t.Errorf("start cap vertex %d points forward: %v", i, v.Normal)
		}
		if v.Position == gg.Pt(10, 0) && v.Normal.X < -1e-9 {
			t.Errorf("end cap vertex %d points backward: %v", i, v.Normal)
		}
	}
}

func TestStrokeClosedSquareMiter(t *testing.T) {
	buf, count := strokePath(t, makeSquarePath(), DefaultStrokeOptions())
	// One cross-section per corner, plus the closing one at the start.
	if count.Vertices != 10 || count.Indices != 24 {
		t.Fatalf("count = %+v, want 10 vertices, 24 indices", count)
	}
	for i, v := range buf.Vertices {
		if got := v.Normal.Length(); math.Abs(got-math.Sqrt2) > 1e-9 {
			t.Errorf("vertex %d miter length = %v, want sqrt(2)", i, got)
		}
	}
	if last := buf.Vertices[len(buf.Vertices)-1]; last.Advancement != 200 {
		t.Errorf("closing advancement = %v, want 200", last.Advancement)
	}
}

func TestStrokeJoins(t *testing.T) {
	tests := []struct {
		name     string
		opts     StrokeOptions
		vertices int
		indices  int
	}{
		{"miter within limit", DefaultStrokeOptions().WithMiterLimit(1000), 6, 12},
		{"miter beyond limit", DefaultStrokeOptions(), 9, 18},
		{"bevel", DefaultStrokeOptions().WithLineJoin(BevelJoin).WithMiterLimit(1000), 9, 18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, count := strokePath(t, sharpPath(), tt.opts)
			if count.Vertices != tt.vertices || count.Indices != tt.indices {
				t.Errorf("count = %+v, want %d vertices, %d indices", count, tt.vertices, tt.indices)
			}
		})
	}
}

func TestStrokeRoundJoinAddsArc(t *testing.T) {
	opts := DefaultStrokeOptions().WithLineJoin(RoundJoin).WithLineWidth(10)
	_, bevel := strokePath(t, sharpPath(), opts.WithLineJoin(BevelJoin))
	_, round := strokePath(t, sharpPath(), opts)
	if round.Vertices <= bevel.Vertices {
		t.Errorf("round join has %d vertices, bevel %d", round.Vertices, bevel.Vertices)
	}
	if round.Indices%3 != 0 {
		t.Errorf("indices %d not a multiple of 3", round.Indices)
	}
}

func TestStrokeAdvancementIncreases(t *testing.T) {
	buf, _ := strokePath(t, makeCirclePath(0, 0, 10), DefaultStrokeOptions())
	prev := -1.0
	for i, v := range buf.Vertices {
		if v.Advancement < prev {
			t.Fatalf("vertex %d advancement %v after %v", i, v.Advancement, prev)
		}
		prev = v.Advancement
	}
	if math.Abs(prev-2*math.Pi*10) > 0.5 {
		t.Errorf("total advancement = %v, want ~%v", prev, 2*math.Pi*10)
	}
}

func TestStrokeSinglePointIsEmpty(t *testing.T) {
	_, count := strokePath(t, []gg.PathElement{
		gg.MoveTo{Point: gg.Pt(5, 5)},
		gg.LineTo{Point: gg.Pt(5, 5)},
	}, DefaultStrokeOptions().WithLineCap(RoundCap))
	if count != (Count{}) {
		t.Errorf("count = %+v, want empty", count)
	}
}

func TestStrokeOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts StrokeOptions
		want error
	}{
		{"default", DefaultStrokeOptions(), nil},
		{"zero width", DefaultStrokeOptions().WithLineWidth(0), nil},
		{"negative width", DefaultStrokeOptions().WithLineWidth(-1), ErrInvalidOptions},
		{"NaN width", DefaultStrokeOptions().WithLineWidth(math.NaN()), ErrInvalidOptions},
		{"miter limit", DefaultStrokeOptions().WithMiterLimit(0.5), ErrInvalidOptions},
		{"tolerance", DefaultStrokeOptions().WithTolerance(0), ErrInvalidTolerance},
		{"cap", DefaultStrokeOptions().WithLineCap(LineCap(7)), ErrInvalidOptions},
		{"join", DefaultStrokeOptions().WithLineJoin(LineJoin(-1)), ErrInvalidOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStrokeTooManyVerticesRollsBack(t *testing.T) {
	buf := VertexBuffers[StrokeVertex]{Vertices: make([]StrokeVertex, MaxVertices-3)}
	_, err := NewStrokeTessellator().TessellatePath(segmentPath(), DefaultStrokeOptions(),
		NewBuffersBuilder(&buf, func(v StrokeVertex) StrokeVertex { return v }))
	if !errors.Is(err, ErrTooManyVertices) {
		t.Fatalf("err = %v, want ErrTooManyVertices", err)
	}
	if len(buf.Vertices) != MaxVertices-3 || len(buf.Indices) != 0 {
		t.Errorf("buffers not rolled back: %d vertices, %d indices", len(buf.Vertices), len(buf.Indices))
	}
}

func TestLineCapJoinString(t *testing.T) {
	if RoundCap.String() != "round" || BevelJoin.String() != "bevel" {
		t.Errorf("got %q, %q", RoundCap.String(), BevelJoin.String())
	}
	if LineCap(9).String() != "LineCap(9)" {
		t.Errorf("unknown cap = %q", LineCap(9).String())
	}
}
