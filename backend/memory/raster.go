package memory

import (
	"fmt"
	"image"
	"slices"

	"github.com/gogpu/gg"

	"github.com/gogpu/vgr"
	"github.com/gogpu/vgr/gpudata"
)

// primitive is a resolved fill or stroke primitive of one instance.
type primitive struct {
	addr       gpudata.Address
	z          uint32
	width      float32
	color      gg.RGBA
	transforms [2]gg.Matrix
	triangles  []int // index of the first index of each triangle
}

// drawCmd draws every instance of cmd and returns the triangle count.
func (d *Device) drawCmd(cmd vgr.DrawCmd, kind vgr.VertexKind) (int, error) {
	g := d.geoms[cmd.Geometry]

	var (
		indices []uint16
		primOf  func(i uint16) int32
		posOf   func(i uint16, p *primitive) gg.Point
	)
	switch kind {
	case vgr.VertexFill:
		indices = g.fill.Indices
		primOf = func(i uint16) int32 { return g.fill.Vertices[i].PrimID }
		posOf = func(i uint16, _ *primitive) gg.Point {
			v := g.fill.Vertices[i]
			return gg.Pt(float64(v.Position[0]), float64(v.Position[1]))
		}
	case vgr.VertexStroke:
		indices = g.stroke.Indices
		primOf = func(i uint16) int32 { return g.stroke.Vertices[i].PrimID }
		posOf = func(i uint16, p *primitive) gg.Point {
			v := g.stroke.Vertices[i]
			half := p.width / 2
			return gg.Pt(float64(v.Position[0]+v.Normal[0]*half), float64(v.Position[1]+v.Normal[1]*half))
		}
	default:
		return 0, fmt.Errorf("memory: unknown vertex kind %v", kind)
	}
	if len(indices) == 0 {
		return 0, nil
	}

	var drawn int
	for k := range cmd.NumInstances {
		base := cmd.InstanceAddress(k)
		prims, err := d.primitives(base, cmd.InstanceStride, kind, indices, primOf)
		if err != nil {
			return drawn, fmt.Errorf("instance %d: %w", k, err)
		}
		for _, p := range prims {
			d.fillPrimitive(p, indices, posOf)
			drawn += len(p.triangles)
		}
	}
	return drawn, nil
}

// primitives groups triangles by primitive address and resolves each
// primitive against the instance memory at base, in ascending z.
func (d *Device) primitives(base gpudata.Address, stride uint32, kind vgr.VertexKind, indices []uint16, primOf func(uint16) int32) ([]*primitive, error) {
	byAddr := make(map[int32]*primitive)
	var prims []*primitive
	for t := 0; t+2 < len(indices); t += 3 {
		id := primOf(indices[t])
		p, ok := byAddr[id]
		if !ok {
			p = &primitive{addr: gpudata.AddressFromRaw(uint32(id))} //nolint:gosec // address bit pattern
			byAddr[id] = p
			prims = append(prims, p)
		}
		p.triangles = append(p.triangles, t)
	}

	for _, p := range prims {
		if err := d.resolve(base, stride, kind, p); err != nil {
			return nil, err
		}
	}
	slices.SortStableFunc(prims, func(a, b *primitive) int {
		switch {
		case a.z < b.z:
			return -1
		case a.z > b.z:
			return 1
		}
		return 0
	})
	return prims, nil
}

func (d *Device) resolve(base gpudata.Address, stride uint32, kind vgr.VertexKind, p *primitive) error {
	var (
		color      gpudata.Address
		transforms [2]gpudata.Address
	)
	if kind == vgr.VertexFill {
		w, err := d.load(base, stride, p.addr, gpudata.FillPrimitiveWords)
		if err != nil {
			return fmt.Errorf("fill primitive: %w", err)
		}
		fp := gpudata.DecodeFillPrimitive(w)
		p.z, color, transforms = fp.Z, fp.Color, fp.Transforms
	} else {
		w, err := d.load(base, stride, p.addr, gpudata.StrokePrimitiveWords)
		if err != nil {
			return fmt.Errorf("stroke primitive: %w", err)
		}
		sp := gpudata.DecodeStrokePrimitive(w)
		p.z, p.width, color, transforms = sp.Z, sp.Width, sp.Color, sp.Transforms
	}

	w, err := d.load(base, stride, color, gpudata.ColorWords)
	if err != nil {
		return fmt.Errorf("color: %w", err)
	}
	p.color = gpudata.DecodeColor(w).RGBA()
	for i, a := range transforms {
		w, err := d.load(base, stride, a, gpudata.TransformWords)
		if err != nil {
			return fmt.Errorf("transform %d: %w", i, err)
		}
		p.transforms[i] = gpudata.DecodeTransform(w).Matrix()
	}
	return nil
}

// load reads n words at addr, which is relative to the instance at base.
// Global and instance addresses both index the instance memory.
func (d *Device) load(base gpudata.Address, stride uint32, addr gpudata.Address, n uint32) ([]gpudata.Word, error) {
	if addr.Type() == gpudata.Shared {
		return nil, fmt.Errorf("%w: %v is in shared memory", ErrBadAddress, addr)
	}
	if addr.Offset()+n > stride {
		return nil, fmt.Errorf("%w: %v+%d outside a %d-word instance", ErrBadAddress, addr, n, stride)
	}
	start := base.Offset() + addr.Offset()
	return d.words[start : start+n], nil
}

// fillPrimitive rasterizes the triangles of p in one go so that
// overlapping triangles of the same primitive do not blend twice.
func (d *Device) fillPrimitive(p *primitive, indices []uint16, posOf func(uint16, *primitive) gg.Point) {
	m := p.transforms[1].Multiply(p.transforms[0])
	b := d.canvas.Bounds()
	d.raster.Reset(b.Dx(), b.Dy())
	for _, t := range p.triangles {
		a := m.TransformPoint(posOf(indices[t], p))
		c1 := m.TransformPoint(posOf(indices[t+1], p))
		c2 := m.TransformPoint(posOf(indices[t+2], p))
		// Same winding for every triangle, otherwise overlaps cancel.
		if c1.Sub(a).Cross(c2.Sub(a)) < 0 {
			c1, c2 = c2, c1
		}
		d.raster.MoveTo(float32(a.X), float32(a.Y))
		d.raster.LineTo(float32(c1.X), float32(c1.Y))
		d.raster.LineTo(float32(c2.X), float32(c2.Y))
		d.raster.ClosePath()
	}
	d.raster.Draw(d.canvas, b, image.NewUniform(p.color.Color()), image.Point{})
}
