package main

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/gogpu/vgr"
	"github.com/gogpu/vgr/tess"
)

// buildScene builds a background layer of tiled badges and a foreground
// layer with one star. Badges share one vector image and differ only in
// instance memory.
func buildScene(ctx *vgr.Context, width, height int) ([]*vgr.Layer, error) {
	geom := ctx.NewGeometry()

	badge := ctx.NewVectorImage()
	place := badge.AddTransform(gg.Identity())
	body := badge.AddColor(gg.Hex("#3b82f6"))
	ring := badge.AddColor(gg.Hex("#1e3a8a"))
	local := badge.AddTransform(gg.Identity())
	if _, err := badge.Fill(vgr.CircleShape{Radius: 20}, vgr.Fill(body), [2]vgr.TransformID{local, place}); err != nil {
		return nil, err
	}
	if _, err := badge.Stroke(vgr.CircleShape{Radius: 20}, vgr.Stroke(ring),
		tess.DefaultStrokeOptions().WithLineWidth(3), [2]vgr.TransformID{local, place}); err != nil {
		return nil, err
	}
	badgeInst, err := badge.Build(geom)
	if err != nil {
		return nil, err
	}

	star := ctx.NewVectorImage()
	starPlace := star.AddTransform(gg.Translate(float64(width)/2, float64(height)/2))
	gold := star.AddColor(gg.Hex("#facc15"))
	outline := star.AddColor(gg.RGB(0.1, 0.1, 0.1))
	starPath := starShape(float64(min(width, height))/4, 5)
	if _, err := star.Fill(vgr.PathShape{Path: starPath}, vgr.Fill(gold), [2]vgr.TransformID{starPlace, starPlace}); err != nil {
		return nil, err
	}
	opts := tess.DefaultStrokeOptions().WithLineWidth(4).WithLineJoin(tess.RoundJoin)
	if _, err := star.Stroke(vgr.PathShape{Path: starPath}, vgr.Stroke(outline), opts, [2]vgr.TransformID{starPlace, starPlace}); err != nil {
		return nil, err
	}
	starInst, err := star.Build(geom)
	if err != nil {
		return nil, err
	}

	if err := ctx.SubmitGeometry(geom); err != nil {
		return nil, err
	}

	bg := ctx.NewLayer()
	const spacing = 60
	for y := spacing / 2; y < height; y += spacing {
		for x := spacing / 2; x < width; x += spacing {
			inst := badgeInst.CloneInstance()
			inst.SetTransform(place, gg.Translate(float64(x), float64(y)))
			t := float64(x) / float64(width)
			inst.SetColor(body, gg.RGB(0.2+0.6*t, 0.5, 0.9-0.6*t))
			if err := bg.Add(inst); err != nil {
				return nil, err
			}
		}
	}
	background, err := bg.Build(ctx)
	if err != nil {
		return nil, err
	}

	fg := ctx.NewLayer()
	if err := fg.Add(starInst); err != nil {
		return nil, err
	}
	foreground, err := fg.Build(ctx)
	if err != nil {
		return nil, err
	}
	return []*vgr.Layer{background, foreground}, nil
}

// starShape returns a closed star with n points centered on the origin.
func starShape(r float64, n int) *gg.Path {
	p := gg.NewPath()
	for i := range 2 * n {
		rad := r
		if i%2 == 1 {
			rad = r * 0.45
		}
		a := float64(i)*math.Pi/float64(n) - math.Pi/2
		x, y := rad*math.Cos(a), rad*math.Sin(a)
		if i == 0 {
			p.MoveTo(x, y)
		} else {
			p.LineTo(x, y)
		}
	}
	p.Close()
	return p
}
