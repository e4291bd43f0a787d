package memory

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"slices"

	"github.com/gogpu/gg"
	"golang.org/x/image/vector"

	"github.com/gogpu/vgr"
	"github.com/gogpu/vgr/backend"
	"github.com/gogpu/vgr/gpudata"
	"github.com/gogpu/vgr/internal/alloc"
	"github.com/gogpu/vgr/tess"
)

// Name is the registry name of the device.
const Name = "memory"

func init() {
	backend.Register(Name, func(cfg vgr.Config) (vgr.Device, error) {
		return NewFromConfig(cfg)
	})
}

// Pass records one RenderPass call.
type Pass struct {
	Options   vgr.RenderPassOptions
	Commands  []vgr.DrawCmd
	Triangles int
}

type geometry struct {
	fill   tess.VertexBuffers[vgr.FillVertex]
	stroke tess.VertexBuffers[vgr.StrokeVertex]
}

// Device is a host-memory vgr.Device.
//
// Device is not safe for concurrent use.
type Device struct {
	alloc  *alloc.Linear
	words  []gpudata.Word
	geoms  map[vgr.GeometryID]*geometry
	passes []Pass

	canvas *image.RGBA
	clear  gg.RGBA
	raster *vector.Rasterizer
}

var _ vgr.Device = (*Device)(nil)

// Option configures a Device.
type Option func(*Device)

// WithBudget sets the device memory size in words.
func WithBudget(words uint32) Option {
	return func(d *Device) {
		d.alloc = alloc.NewLinear(words)
	}
}

// WithClearColor sets the color Clear fills the canvas with.
func WithClearColor(c gg.RGBA) Option {
	return func(d *Device) {
		d.clear = c
	}
}

// New returns a device drawing to a width×height canvas, cleared to
// transparent black unless WithClearColor is given. It panics if either
// dimension is not positive.
func New(width, height int, opts ...Option) *Device {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("memory: canvas %dx%d", width, height))
	}
	d := &Device{
		alloc:  alloc.NewLinear(vgr.DefaultConfig().MemoryBudget),
		geoms:  make(map[vgr.GeometryID]*geometry),
		canvas: image.NewRGBA(image.Rect(0, 0, width, height)),
		raster: vector.NewRasterizer(width, height),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.Clear()
	return d
}

// NewFromConfig returns a device sized and cleared as cfg.Canvas says,
// with cfg.MemoryBudget words of memory.
func NewFromConfig(cfg vgr.Config) (*Device, error) {
	if cfg.Canvas.Width <= 0 || cfg.Canvas.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, cfg.Canvas.Width, cfg.Canvas.Height)
	}
	c := cfg.Canvas.Clear
	return New(cfg.Canvas.Width, cfg.Canvas.Height,
		WithBudget(cfg.MemoryBudget),
		WithClearColor(gg.RGBA2(c[0], c[1], c[2], c[3]))), nil
}

// Allocate reserves size words of device memory.
func (d *Device) Allocate(size uint32) (gpudata.AddressRange, error) {
	r, err := d.alloc.Allocate(size)
	if err != nil {
		return gpudata.AddressRange{}, err
	}
	if n := int(d.alloc.Used()); n > len(d.words) {
		d.words = append(d.words, make([]gpudata.Word, n-len(d.words))...)
	}
	vgr.Logger().Debug("memory: allocate", "range", r, "used", d.alloc.Used())
	return r, nil
}

// Upload copies mem to the start of r. The range must come from Allocate
// and be large enough to hold mem.
func (d *Device) Upload(r gpudata.AddressRange, mem *gpudata.Memory) error {
	if !d.alloc.Owns(r) {
		return fmt.Errorf("%w: %v was not allocated", ErrRangeMismatch, r)
	}
	if uint32(mem.Len()) > r.Len() { //nolint:gosec // memory is bounded by the address space
		return fmt.Errorf("%w: %d words do not fit %v", ErrRangeMismatch, mem.Len(), r)
	}
	copy(d.words[r.Start().Offset():], mem.Words())
	return nil
}

// SubmitGeometry copies the geometry's buffers. Submitting the same ID
// again replaces them.
func (d *Device) SubmitGeometry(g *vgr.GeometryBuilder) error {
	d.geoms[g.ID] = &geometry{
		fill: tess.VertexBuffers[vgr.FillVertex]{
			Vertices: slices.Clone(g.Fill.Vertices),
			Indices:  slices.Clone(g.Fill.Indices),
		},
		stroke: tess.VertexBuffers[vgr.StrokeVertex]{
			Vertices: slices.Clone(g.Stroke.Vertices),
			Indices:  slices.Clone(g.Stroke.Indices),
		},
	}
	return nil
}

// RenderPass draws cmds onto the canvas. Every command is checked before
// anything is drawn.
func (d *Device) RenderPass(cmds []vgr.DrawCmd, opts vgr.RenderPassOptions) error {
	for i, cmd := range cmds {
		if err := d.checkCmd(cmd); err != nil {
			return fmt.Errorf("command %d: %w", i, err)
		}
	}

	pass := Pass{Options: opts, Commands: slices.Clone(cmds)}
	for i, cmd := range cmds {
		n, err := d.drawCmd(cmd, opts.VertexKind)
		if err != nil {
			return fmt.Errorf("command %d: %w", i, err)
		}
		pass.Triangles += n
	}
	d.passes = append(d.passes, pass)
	vgr.Logger().Debug("memory: render pass", "kind", opts.VertexKind, "cmds", len(cmds), "triangles", pass.Triangles)
	return nil
}

func (d *Device) checkCmd(cmd vgr.DrawCmd) error {
	if _, ok := d.geoms[cmd.Geometry]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownGeometry, cmd.Geometry)
	}
	if cmd.InstanceStride == 0 || cmd.NumInstances == 0 {
		return nil
	}
	end := uint64(cmd.BaseAddress.Offset()) + uint64(cmd.InstanceStride)*uint64(cmd.NumInstances)
	if cmd.BaseAddress.Type() != gpudata.Global || end > uint64(d.alloc.Used()) {
		return fmt.Errorf("%w: %d instances of %d words at %v", ErrRangeMismatch,
			cmd.NumInstances, cmd.InstanceStride, cmd.BaseAddress)
	}
	return nil
}

// Read returns a copy of the words in r.
func (d *Device) Read(r gpudata.AddressRange) ([]gpudata.Word, error) {
	if !d.alloc.Owns(r) {
		return nil, fmt.Errorf("%w: %v was not allocated", ErrRangeMismatch, r)
	}
	return slices.Clone(d.words[r.Start().Offset():r.End().Offset()]), nil
}

// Image returns the canvas. It is drawn into by later passes.
func (d *Device) Image() *image.RGBA { return d.canvas }

// Clear fills the canvas with the clear color.
func (d *Device) Clear() {
	draw.Draw(d.canvas, d.canvas.Bounds(), image.NewUniform(d.clear.Color()), image.Point{}, draw.Src)
}

// Passes returns the passes drawn so far.
func (d *Device) Passes() []Pass { return slices.Clone(d.passes) }

// Stats returns memory usage.
func (d *Device) Stats() alloc.Stats { return d.alloc.Stats() }

// Reset releases all device memory and forgets recorded passes. Submitted
// geometry is kept.
func (d *Device) Reset() {
	d.alloc.Reset()
	d.words = d.words[:0]
	d.passes = nil
}

// WritePNG encodes the canvas as PNG.
func (d *Device) WritePNG(w io.Writer) error {
	return png.Encode(w, d.canvas)
}
