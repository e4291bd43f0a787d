package vgr

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/vgr/gpudata"
	"github.com/gogpu/vgr/tess"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("vgr: invalid config")

// Config holds renderer settings that are usually read from a file.
//
// A TOML file looks like:
//
//	fill_tolerance = 0.1
//	stroke_tolerance = 0.1
//	miter_limit = 4.0
//	memory_budget = 1048576
//
//	[canvas]
//	width = 800
//	height = 600
//	clear = [1.0, 1.0, 1.0, 1.0]
type Config struct {
	// FillTolerance is used for shapes that leave their tolerance at zero.
	FillTolerance float64 `toml:"fill_tolerance"`

	// StrokeTolerance is used for stroke options that leave it at zero.
	StrokeTolerance float64 `toml:"stroke_tolerance"`

	// MiterLimit is used for stroke options that leave it at zero.
	MiterLimit float64 `toml:"miter_limit"`

	// MemoryBudget is the size of device GPU memory in 32-bit words.
	MemoryBudget uint32 `toml:"memory_budget"`

	Canvas CanvasConfig `toml:"canvas"`
}

// CanvasConfig describes the render target of host-side devices.
type CanvasConfig struct {
	Width  int        `toml:"width"`
	Height int        `toml:"height"`
	Clear  [4]float64 `toml:"clear"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		FillTolerance:   tess.DefaultTolerance,
		StrokeTolerance: tess.DefaultTolerance,
		MiterLimit:      tess.DefaultMiterLimit,
		MemoryBudget:    1 << 20,
		Canvas: CanvasConfig{
			Width:  800,
			Height: 600,
			Clear:  [4]float64{1, 1, 1, 1},
		},
	}
}

// LoadConfig reads a TOML configuration file. Missing keys keep their
// DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("vgr: load config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes TOML data on top of DefaultConfig and validates the
// result. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("vgr: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal encodes the configuration as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate reports the first setting outside its domain.
func (c Config) Validate() error {
	switch {
	case !positiveFinite(c.FillTolerance):
		return fmt.Errorf("%w: fill_tolerance %v", ErrInvalidConfig, c.FillTolerance)
	case !positiveFinite(c.StrokeTolerance):
		return fmt.Errorf("%w: stroke_tolerance %v", ErrInvalidConfig, c.StrokeTolerance)
	case !(c.MiterLimit >= 1) || math.IsInf(c.MiterLimit, 0):
		return fmt.Errorf("%w: miter_limit %v", ErrInvalidConfig, c.MiterLimit)
	case c.MemoryBudget == 0 || c.MemoryBudget > gpudata.MaxOffset+1:
		return fmt.Errorf("%w: memory_budget %d outside (0, %d]", ErrInvalidConfig, c.MemoryBudget, gpudata.MaxOffset+1)
	case c.Canvas.Width <= 0 || c.Canvas.Height <= 0:
		return fmt.Errorf("%w: canvas %dx%d", ErrInvalidConfig, c.Canvas.Width, c.Canvas.Height)
	}
	for _, v := range c.Canvas.Clear {
		if !(v >= 0 && v <= 1) {
			return fmt.Errorf("%w: clear color component %v", ErrInvalidConfig, v)
		}
	}
	return nil
}

// strokeOptions fills zero-valued stroke settings from the configuration.
func (c Config) strokeOptions(opts tess.StrokeOptions) tess.StrokeOptions {
	if opts.Tolerance == 0 {
		opts.Tolerance = c.StrokeTolerance
	}
	if opts.MiterLimit == 0 {
		opts.MiterLimit = c.MiterLimit
	}
	return opts
}

func (c Config) fillTolerance(tol float64) float64 {
	if tol == 0 {
		return c.FillTolerance
	}
	return tol
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
