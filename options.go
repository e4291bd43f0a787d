package vgr

// ContextOption configures a Context during creation.
//
// Example:
//
//	cfg, err := vgr.LoadConfig("vgr.toml")
//	if err != nil {
//	    return err
//	}
//	ctx := vgr.NewContext(dev, vgr.WithConfig(cfg))
type ContextOption func(*contextOptions)

type contextOptions struct {
	config Config
}

func defaultOptions() contextOptions {
	return contextOptions{config: DefaultConfig()}
}

// WithConfig replaces the whole configuration of the Context.
func WithConfig(cfg Config) ContextOption {
	return func(o *contextOptions) {
		o.config = cfg
	}
}

// WithFillTolerance sets the tolerance used by shapes that leave theirs at
// zero.
func WithFillTolerance(tol float64) ContextOption {
	return func(o *contextOptions) {
		o.config.FillTolerance = tol
	}
}

// WithStrokeTolerance sets the tolerance used by stroke options that leave
// theirs at zero.
func WithStrokeTolerance(tol float64) ContextOption {
	return func(o *contextOptions) {
		o.config.StrokeTolerance = tol
	}
}

// ZFunc returns the z index of the next instance added to a layer, given
// the current one and the z range of the instance just added.
type ZFunc func(z, zRange uint32) uint32

// NextZ is the default ZFunc: every instance reserves its image's z range,
// so instances added later are drawn on top.
func NextZ(z, zRange uint32) uint32 {
	return z + zRange
}

// LayerOption configures a LayerBuilder.
type LayerOption func(*LayerBuilder)

// WithZFunc replaces how a layer assigns z indices to instances.
//
// Example:
//
//	// Every instance shares z 0; draw order falls back to insertion order.
//	lb := ctx.NewLayer(vgr.WithZFunc(func(z, _ uint32) uint32 { return z }))
func WithZFunc(f ZFunc) LayerOption {
	return func(b *LayerBuilder) {
		if f != nil {
			b.nextZ = f
		}
	}
}

// WithStartZ sets the z index of the first instance added to a layer.
func WithStartZ(z uint32) LayerOption {
	return func(b *LayerBuilder) {
		b.z = z
	}
}
