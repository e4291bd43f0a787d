// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/vgr"
)

type mockDevice struct{}

func (m *mockDevice) Poll(wait bool) {}
func (m *mockDevice) Destroy()       {}

type mockQueue struct{}

type mockAdapter struct{}

type mockProvider struct{}

func (mockProvider) Device() gpucontext.Device             { return &mockDevice{} }
func (mockProvider) Queue() gpucontext.Queue               { return &mockQueue{} }
func (mockProvider) Adapter() gpucontext.Adapter           { return &mockAdapter{} }
func (mockProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }

// wrongHAL exposes HAL accessors that return the wrong types.
type wrongHAL struct{ mockProvider }

func (wrongHAL) HalDevice() any { return "device" }
func (wrongHAL) HalQueue() any  { return nil }

func TestNewFromProviderWithoutHAL(t *testing.T) {
	tests := []struct {
		name string
		p    gpucontext.DeviceProvider
	}{
		{"no accessors", mockProvider{}},
		{"wrong types", wrongHAL{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewFromProvider(tt.p, vgr.DefaultConfig())
			if !errors.Is(err, ErrNoHAL) {
				t.Errorf("NewFromProvider() error = %v, want ErrNoHAL", err)
			}
			if d != nil {
				t.Error("NewFromProvider() returned a device")
			}
		})
	}
}

func TestDestroyedDevice(t *testing.T) {
	d := &Device{destroyed: true}
	if _, err := d.Allocate(4); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Allocate() = %v, want ErrDestroyed", err)
	}
	if err := d.RenderPass(nil, vgr.RenderPassOptions{}); !errors.Is(err, ErrDestroyed) {
		t.Errorf("RenderPass() = %v, want ErrDestroyed", err)
	}
	if err := d.SubmitGeometry(&vgr.GeometryBuilder{}); !errors.Is(err, ErrDestroyed) {
		t.Errorf("SubmitGeometry() = %v, want ErrDestroyed", err)
	}
	d.Destroy() // no-op
}

func TestRenderPassOutsideFrame(t *testing.T) {
	d := &Device{}
	if err := d.RenderPass(nil, vgr.RenderPassOptions{}); !errors.Is(err, ErrNoFrame) {
		t.Errorf("RenderPass() = %v, want ErrNoFrame", err)
	}
}
