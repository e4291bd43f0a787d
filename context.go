package vgr

import (
	"fmt"

	"github.com/gogpu/vgr/gpudata"
)

// Context owns the device and hands out identifiers.
//
// Identifiers are never reused during the lifetime of a Context.
// A Context is not safe for concurrent use.
type Context struct {
	device Device
	config Config

	nextVectorImageID VectorImageID
	nextGeometryID    GeometryID
}

// NewContext creates a Context drawing through dev.
//
// Example:
//
//	dev := memory.New(800, 600)
//	ctx := vgr.NewContext(dev, vgr.WithFillTolerance(0.05))
func NewContext(dev Device, opts ...ContextOption) *Context {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Context{
		device: dev,
		config: o.config,
	}
}

// Device returns the device the context draws through.
func (c *Context) Device() Device { return c.device }

// Config returns the context configuration.
func (c *Context) Config() Config { return c.config }

// NewVectorImage starts recording a new vector image.
func (c *Context) NewVectorImage() *VectorImageBuilder {
	id := c.nextVectorImageID
	c.nextVectorImageID++
	return &VectorImageBuilder{
		id:             id,
		config:         c.config,
		memory:         gpudata.NewMemory(128),
		sharedLayout:   gpudata.NewMemoryLayout(gpudata.Shared),
		instanceLayout: gpudata.NewMemoryLayout(gpudata.Instance),
	}
}

// NewGeometry creates an empty geometry builder.
func (c *Context) NewGeometry() *GeometryBuilder {
	id := c.nextGeometryID
	c.nextGeometryID++
	return &GeometryBuilder{ID: id}
}

// NewLayer starts a new layer.
func (c *Context) NewLayer(opts ...LayerOption) *LayerBuilder {
	b := &LayerBuilder{nextZ: NextZ}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SubmitGeometry hands the geometry to the device.
func (c *Context) SubmitGeometry(g *GeometryBuilder) error {
	if g.IsEmpty() {
		Logger().Warn("vgr: submitting empty geometry", "geometry", g.ID)
	}
	Logger().Debug("vgr: submit geometry",
		"geometry", g.ID,
		"fill_vertices", len(g.Fill.Vertices),
		"fill_indices", len(g.Fill.Indices),
		"stroke_vertices", len(g.Stroke.Vertices),
		"stroke_indices", len(g.Stroke.Indices))
	if err := c.device.SubmitGeometry(g); err != nil {
		return fmt.Errorf("vgr: submit geometry %d: %w", g.ID, err)
	}
	return nil
}
