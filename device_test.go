package vgr

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/gogpu/gg"

	"github.com/gogpu/vgr/gpudata"
)

type recordedUpload struct {
	r     gpudata.AddressRange
	words []gpudata.Word
}

type recordedPass struct {
	cmds []DrawCmd
	opts RenderPassOptions
}

// recordingDevice is a Device that records every call.
type recordingDevice struct {
	next       uint32
	allocs     []gpudata.AddressRange
	uploads    []recordedUpload
	geometries []GeometryID
	passes     []recordedPass

	allocErr  error
	uploadErr error
	submitErr error
	passErr   error
}

func newRecordingDevice() *recordingDevice {
	// Start away from zero so base addresses are distinguishable.
	return &recordingDevice{next: 64}
}

func (d *recordingDevice) Allocate(size uint32) (gpudata.AddressRange, error) {
	if d.allocErr != nil {
		return gpudata.AddressRange{}, d.allocErr
	}
	r := gpudata.NewAddressRange(gpudata.GlobalAddress(d.next), gpudata.GlobalAddress(d.next+size))
	d.next += size
	d.allocs = append(d.allocs, r)
	return r, nil
}

func (d *recordingDevice) Upload(r gpudata.AddressRange, mem *gpudata.Memory) error {
	if d.uploadErr != nil {
		return d.uploadErr
	}
	if uint32(mem.Len()) > r.Len() { //nolint:gosec // test sizes are small
		return fmt.Errorf("%d words do not fit %v", mem.Len(), r)
	}
	d.uploads = append(d.uploads, recordedUpload{r: r, words: slices.Clone(mem.Words())})
	return nil
}

func (d *recordingDevice) SubmitGeometry(g *GeometryBuilder) error {
	if d.submitErr != nil {
		return d.submitErr
	}
	d.geometries = append(d.geometries, g.ID)
	return nil
}

func (d *recordingDevice) RenderPass(cmds []DrawCmd, opts RenderPassOptions) error {
	if d.passErr != nil {
		return d.passErr
	}
	d.passes = append(d.passes, recordedPass{cmds: cmds, opts: opts})
	return nil
}

var errDevice = errors.New("device failure")

func identity() gg.Matrix { return gg.Identity() }

func red() gg.RGBA { return gg.RGB(1, 0, 0) }

func blue() gg.RGBA { return gg.RGB(0, 0, 1) }

// colorN returns a distinct color per i that survives float32 encoding.
func colorN(i int) gg.RGBA { return gg.RGBA{R: float64(i) / 4, A: 1} }

func squareShape() Shape {
	p := gg.NewPath()
	p.Rectangle(0, 0, 10, 10)
	return PathShape{Path: p, Tolerance: 0.1}
}

func lineShape() Shape {
	p := gg.NewPath()
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	return PathShape{Path: p, Tolerance: 0.1}
}

// buildImage records fills and strokes of a square with one transform and
// one color and builds the image into geom.
func buildImage(t *testing.T, ctx *Context, geom *GeometryBuilder, fills, strokes int) *VectorImageInstance {
	t.Helper()
	b := ctx.NewVectorImage()
	xf := b.AddTransform(identity())
	col := b.AddColor(red())
	for range fills {
		if _, err := b.Fill(squareShape(), Fill(col), [2]TransformID{xf, xf}); err != nil {
			t.Fatal(err)
		}
	}
	for range strokes {
		if _, err := b.Stroke(lineShape(), Stroke(col), defaultStroke(), [2]TransformID{xf, xf}); err != nil {
			t.Fatal(err)
		}
	}
	inst, err := b.Build(geom)
	if err != nil {
		t.Fatal(err)
	}
	return inst
}

func TestOpaquePassOptions(t *testing.T) {
	for _, kind := range []VertexKind{VertexFill, VertexStroke} {
		got := opaquePass(kind)
		want := RenderPassOptions{VertexKind: kind, EnableDepthWrite: true, EnableDepthTest: true}
		if got != want {
			t.Errorf("opaquePass(%v) = %+v, want %+v", kind, got, want)
		}
	}
}

func TestDrawCmdInstanceAddress(t *testing.T) {
	cmd := DrawCmd{BaseAddress: gpudata.GlobalAddress(100), InstanceStride: 16, NumInstances: 3}
	for k, want := range []uint32{100, 116, 132} {
		if got := cmd.InstanceAddress(uint32(k)); got != gpudata.GlobalAddress(want) {
			t.Errorf("InstanceAddress(%d) = %v, want global:%d", k, got, want)
		}
	}
}

func TestVertexKindString(t *testing.T) {
	if VertexFill.String() != "fill" || VertexStroke.String() != "stroke" {
		t.Errorf("got %q, %q", VertexFill, VertexStroke)
	}
	if VertexKind(5).String() != "VertexKind(5)" {
		t.Errorf("unknown kind = %q", VertexKind(5))
	}
}
