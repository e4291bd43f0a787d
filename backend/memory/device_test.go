package memory

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"slices"
	"testing"

	"github.com/gogpu/gg"

	"github.com/gogpu/vgr"
	"github.com/gogpu/vgr/backend"
	"github.com/gogpu/vgr/gpudata"
	"github.com/gogpu/vgr/tess"
)

var (
	white = color.RGBA{255, 255, 255, 255}
	red   = color.RGBA{255, 0, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
)

func rectShape(x, y, w, h float64) vgr.Shape {
	p := gg.NewPath()
	p.Rectangle(x, y, w, h)
	return vgr.PathShape{Path: p}
}

func newWhiteDevice() *Device {
	return New(100, 100, WithClearColor(gg.RGB(1, 1, 1)))
}

// drawScene builds one image with record, adds the instances returned by
// place to a layer and renders it.
func drawScene(t *testing.T, dev *Device, record func(b *vgr.VectorImageBuilder, xf vgr.TransformID), place func(inst *vgr.VectorImageInstance, xf vgr.TransformID) []*vgr.VectorImageInstance) {
	t.Helper()
	ctx := vgr.NewContext(dev)
	geom := ctx.NewGeometry()
	b := ctx.NewVectorImage()
	xf := b.AddTransform(gg.Identity())
	record(b, xf)
	inst, err := b.Build(geom)
	if err != nil {
		t.Fatal(err)
	}
	if err := ctx.SubmitGeometry(geom); err != nil {
		t.Fatal(err)
	}

	lb := ctx.NewLayer()
	insts := []*vgr.VectorImageInstance{inst}
	if place != nil {
		insts = place(inst, xf)
	}
	for _, in := range insts {
		if err := lb.Add(in); err != nil {
			t.Fatal(err)
		}
	}
	layer, err := lb.Build(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := vgr.RenderAll(ctx, layer); err != nil {
		t.Fatal(err)
	}
}

func checkPixels(t *testing.T, dev *Device, want map[[2]int]color.RGBA) {
	t.Helper()
	for p, c := range want {
		if got := dev.Image().RGBAAt(p[0], p[1]); got != c {
			t.Errorf("pixel %v = %v, want %v", p, got, c)
		}
	}
}

func TestDeviceFillsSquare(t *testing.T) {
	dev := newWhiteDevice()
	drawScene(t, dev, func(b *vgr.VectorImageBuilder, xf vgr.TransformID) {
		col := b.AddColor(gg.RGB(1, 0, 0))
		if _, err := b.Fill(rectShape(10, 10, 50, 50), vgr.Fill(col), [2]vgr.TransformID{xf, xf}); err != nil {
			t.Fatal(err)
		}
	}, nil)

	checkPixels(t, dev, map[[2]int]color.RGBA{
		{20, 30}: red,
		{12, 40}: red,
		{5, 5}:   white,
		{80, 80}: white,
	})
}

func TestDeviceDrawsInstancesWithOwnTransforms(t *testing.T) {
	dev := newWhiteDevice()
	drawScene(t, dev, func(b *vgr.VectorImageBuilder, xf vgr.TransformID) {
		col := b.AddColor(gg.RGB(0, 0, 1))
		b.Fill(rectShape(0, 0, 20, 20), vgr.Fill(col), [2]vgr.TransformID{xf, xf})
	}, func(inst *vgr.VectorImageInstance, xf vgr.TransformID) []*vgr.VectorImageInstance {
		moved := inst.CloneInstance()
		moved.SetTransform(xf, gg.Translate(40, 0))
		return []*vgr.VectorImageInstance{inst, moved}
	})

	checkPixels(t, dev, map[[2]int]color.RGBA{
		{5, 12}:  blue,
		{45, 12}: blue,
		{30, 10}: white,
		{50, 50}: white,
	})
}

func TestDevicePaintsInZOrder(t *testing.T) {
	dev := newWhiteDevice()
	drawScene(t, dev, func(b *vgr.VectorImageBuilder, xf vgr.TransformID) {
		r := b.AddColor(gg.RGB(1, 0, 0))
		bl := b.AddColor(gg.RGB(0, 0, 1))
		b.Fill(rectShape(0, 0, 60, 60), vgr.Fill(r), [2]vgr.TransformID{xf, xf})
		b.Fill(rectShape(30, 30, 60, 60), vgr.Fill(bl), [2]vgr.TransformID{xf, xf})
	}, nil)

	checkPixels(t, dev, map[[2]int]color.RGBA{
		{10, 40}: red,
		{40, 50}: blue,
		{80, 60}: blue,
	})
}

func TestDeviceStrokesLine(t *testing.T) {
	dev := newWhiteDevice()
	drawScene(t, dev, func(b *vgr.VectorImageBuilder, xf vgr.TransformID) {
		col := b.AddColor(gg.RGB(1, 0, 0))
		p := gg.NewPath()
		p.MoveTo(10, 50)
		p.LineTo(90, 50)
		opts := tess.DefaultStrokeOptions().WithLineWidth(6)
		if _, err := b.Stroke(vgr.PathShape{Path: p}, vgr.Stroke(col), opts, [2]vgr.TransformID{xf, xf}); err != nil {
			t.Fatal(err)
		}
	}, nil)

	checkPixels(t, dev, map[[2]int]color.RGBA{
		{50, 48}: red,
		{50, 51}: red,
		{50, 60}: white,
		{5, 50}:  white,
	})

	passes := dev.Passes()
	if len(passes) != 2 {
		t.Fatalf("got %d passes, want 2", len(passes))
	}
	if passes[0].Triangles != 0 || passes[1].Triangles != 2 {
		t.Errorf("triangles per pass = %d, %d, want 0, 2", passes[0].Triangles, passes[1].Triangles)
	}
}

func TestDeviceUploadAndRead(t *testing.T) {
	dev := New(4, 4)
	r, err := dev.Allocate(8)
	if err != nil {
		t.Fatal(err)
	}
	mem := gpudata.NewMemory(8)
	mem.Push(gpudata.RawBlock{1, 2, 3, 4})
	if err := dev.Upload(r, mem); err != nil {
		t.Fatal(err)
	}
	got, err := dev.Read(r)
	if err != nil {
		t.Fatal(err)
	}
	if want := []gpudata.Word{1, 2, 3, 4, 0, 0, 0, 0}; !slices.Equal(got, want) {
		t.Errorf("Read() = %v, want %v", got, want)
	}
}

func TestDeviceRangeErrors(t *testing.T) {
	dev := New(4, 4, WithBudget(16))
	r, err := dev.Allocate(4)
	if err != nil {
		t.Fatal(err)
	}
	big := gpudata.NewMemory(8)
	big.Push(gpudata.RawBlock{1, 2, 3, 4, 5, 6, 7, 8})
	small := gpudata.NewMemory(4)
	small.Push(gpudata.RawBlock{1, 2, 3, 4})
	unallocated := gpudata.NewAddressRange(gpudata.GlobalAddress(8), gpudata.GlobalAddress(12))

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"too large", dev.Upload(r, big), ErrRangeMismatch},
		{"not allocated", dev.Upload(unallocated, small), ErrRangeMismatch},
		{"read not allocated", func() error { _, err := dev.Read(unallocated); return err }(), ErrRangeMismatch},
		{"out of memory", func() error { _, err := dev.Allocate(16); return err }(), ErrOutOfMemory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("error = %v, want %v", tt.err, tt.want)
			}
		})
	}
}

func TestDeviceRenderPassChecksCommands(t *testing.T) {
	dev := New(4, 4)
	g := &vgr.GeometryBuilder{ID: 3}
	if err := dev.SubmitGeometry(g); err != nil {
		t.Fatal(err)
	}
	r, _ := dev.Allocate(16)

	tests := []struct {
		name string
		cmd  vgr.DrawCmd
		want error
	}{
		{"unknown geometry", vgr.DrawCmd{Geometry: 4, NumInstances: 1}, ErrUnknownGeometry},
		{"past allocation", vgr.DrawCmd{Geometry: 3, NumInstances: 3, InstanceStride: 8, BaseAddress: r.Start()}, ErrRangeMismatch},
		{"instance space", vgr.DrawCmd{Geometry: 3, NumInstances: 1, InstanceStride: 4, BaseAddress: gpudata.InstanceAddress(0)}, ErrRangeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := dev.RenderPass([]vgr.DrawCmd{tt.cmd}, vgr.RenderPassOptions{VertexKind: vgr.VertexFill})
			if !errors.Is(err, tt.want) {
				t.Errorf("RenderPass() = %v, want %v", err, tt.want)
			}
		})
	}
	if len(dev.Passes()) != 0 {
		t.Error("rejected passes were recorded")
	}

	ok := vgr.DrawCmd{Geometry: 3, NumInstances: 2, InstanceStride: 8, BaseAddress: r.Start()}
	if err := dev.RenderPass([]vgr.DrawCmd{ok}, vgr.RenderPassOptions{VertexKind: vgr.VertexStroke}); err != nil {
		t.Errorf("RenderPass(empty geometry) = %v", err)
	}
}

func TestDeviceLoad(t *testing.T) {
	dev := New(4, 4)
	r, _ := dev.Allocate(16)
	base := r.Start()

	if _, err := dev.load(base, 16, gpudata.SharedAddress(0), 4); !errors.Is(err, ErrBadAddress) {
		t.Errorf("load(shared) = %v, want ErrBadAddress", err)
	}
	if _, err := dev.load(base, 8, gpudata.GlobalAddress(4), 8); !errors.Is(err, ErrBadAddress) {
		t.Errorf("load(past instance) = %v, want ErrBadAddress", err)
	}
	if w, err := dev.load(base, 16, gpudata.InstanceAddress(4), 4); err != nil || len(w) != 4 {
		t.Errorf("load(instance) = %v, %v", w, err)
	}
}

func TestDeviceSubmitGeometryCopies(t *testing.T) {
	dev := New(4, 4)
	g := &vgr.GeometryBuilder{ID: 1}
	g.Fill.Vertices = []vgr.FillVertex{{PrimID: 7}}
	dev.SubmitGeometry(g)
	g.Fill.Vertices[0].PrimID = 9
	if got := dev.geoms[1].fill.Vertices[0].PrimID; got != 7 {
		t.Errorf("submitted vertex changed to prim %d", got)
	}
}

func TestDeviceResetAndStats(t *testing.T) {
	dev := New(4, 4, WithBudget(64))
	dev.Allocate(10)
	if s := dev.Stats(); s.Used != 10 || s.Allocations != 1 || s.Budget != 64 {
		t.Errorf("Stats() = %+v", s)
	}
	dev.Reset()
	r, err := dev.Allocate(4)
	if err != nil {
		t.Fatal(err)
	}
	words, _ := dev.Read(r)
	if r.Start() != gpudata.GlobalAddress(0) || !slices.Equal(words, []gpudata.Word{0, 0, 0, 0}) {
		t.Errorf("after Reset: %v holds %v", r, words)
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := vgr.DefaultConfig()
	cfg.Canvas.Width, cfg.Canvas.Height = 30, 20
	cfg.Canvas.Clear = [4]float64{0, 0, 1, 1}
	cfg.MemoryBudget = 128

	dev, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if b := dev.Image().Bounds(); b.Dx() != 30 || b.Dy() != 20 {
		t.Errorf("canvas %v, want 30x20", b)
	}
	if got := dev.Image().RGBAAt(3, 3); got != blue {
		t.Errorf("clear color = %v, want blue", got)
	}
	if dev.Stats().Budget != 128 {
		t.Errorf("budget = %d, want 128", dev.Stats().Budget)
	}

	cfg.Canvas.Width = 0
	if _, err := NewFromConfig(cfg); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("NewFromConfig(0 width) = %v, want ErrInvalidDimensions", err)
	}
}

func TestNewPanicsOnBadSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(0, 10) did not panic")
		}
	}()
	New(0, 10)
}

func TestWritePNG(t *testing.T) {
	dev := New(8, 6, WithClearColor(gg.RGB(1, 0, 0)))
	var buf bytes.Buffer
	if err := dev.WritePNG(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Errorf("decoded %v, want 8x6", b)
	}
	if got := color.RGBAModel.Convert(img.At(2, 2)); got != red {
		t.Errorf("decoded pixel = %v, want red", got)
	}
}

func TestRegistered(t *testing.T) {
	dev, err := backend.Open(Name, vgr.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := dev.(*Device); !ok {
		t.Errorf("backend.Open(%q) = %T", Name, dev)
	}
}
