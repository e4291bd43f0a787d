package vgr

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/vgr/tess"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestParseConfig(t *testing.T) {
	data := `
fill_tolerance = 0.05
miter_limit = 8.0

[canvas]
width = 320
clear = [0.0, 0.0, 0.0, 1.0]
`
	cfg, err := ParseConfig([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultConfig()
	want.FillTolerance = 0.05
	want.MiterLimit = 8
	want.Canvas.Width = 320
	want.Canvas.Clear = [4]float64{0, 0, 0, 1}
	if cfg != want {
		t.Errorf("ParseConfig() = %+v, want %+v", cfg, want)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		invalid bool
	}{
		{"unknown key", "fill_tolerence = 0.1", false},
		{"bad syntax", "fill_tolerance = ", false},
		{"wrong type", `fill_tolerance = "small"`, false},
		{"zero tolerance", "fill_tolerance = 0.0", true},
		{"negative stroke tolerance", "stroke_tolerance = -1.0", true},
		{"miter limit below one", "miter_limit = 0.5", true},
		{"nan miter limit", "miter_limit = nan", true},
		{"zero budget", "memory_budget = 0", true},
		{"budget past address space", "memory_budget = 16777217", true},
		{"zero width", "[canvas]\nwidth = 0", true},
		{"clear out of range", "[canvas]\nclear = [2.0, 0.0, 0.0, 1.0]", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data))
			if err == nil {
				t.Fatal("ParseConfig() succeeded")
			}
			if got := errors.Is(err, ErrInvalidConfig); got != tt.invalid {
				t.Errorf("errors.Is(%v, ErrInvalidConfig) = %v, want %v", err, got, tt.invalid)
			}
		})
	}
}

func TestConfigMarshalRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrokeTolerance = 0.25
	cfg.Canvas.Height = 1024

	data, err := cfg.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "stroke_tolerance = 0.25") {
		t.Errorf("marshaled config lacks stroke_tolerance:\n%s", data)
	}
	got, err := ParseConfig(data)
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vgr.toml")
	if err := os.WriteFile(path, []byte("memory_budget = 4096\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MemoryBudget != 4096 {
		t.Errorf("MemoryBudget = %d, want 4096", cfg.MemoryBudget)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadConfig(missing) = %v, want ErrNotExist", err)
	}
	if err := os.WriteFile(path, []byte("miter_limit = 0.0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil || !strings.HasPrefix(err.Error(), path) {
		t.Errorf("LoadConfig(invalid) = %v, want error prefixed with the path", err)
	}
}

func TestConfigStrokeOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrokeTolerance = 0.3
	cfg.MiterLimit = 7

	tests := []struct {
		name string
		in   tess.StrokeOptions
		tol  float64
		mit  float64
	}{
		{"zero", tess.StrokeOptions{LineWidth: 1}, 0.3, 7},
		{"explicit", tess.StrokeOptions{LineWidth: 1, Tolerance: 0.01, MiterLimit: 2}, 0.01, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cfg.strokeOptions(tt.in)
			if got.Tolerance != tt.tol || got.MiterLimit != tt.mit || got.LineWidth != 1 {
				t.Errorf("strokeOptions() = %+v", got)
			}
		})
	}

	if cfg.fillTolerance(0) != cfg.FillTolerance || cfg.fillTolerance(0.7) != 0.7 {
		t.Error("fillTolerance does not fall back to the config")
	}
	if positiveFinite(math.Inf(1)) || positiveFinite(0) || !positiveFinite(1e-9) {
		t.Error("positiveFinite")
	}
}
