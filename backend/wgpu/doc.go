// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu provides a vgr.Device on top of a gogpu/wgpu HAL device.
//
// GPU memory is one read-only storage buffer of 32-bit words; the shaders
// resolve primitive, color and transform addresses against the base of
// each instance exactly as vgr lays them out. Geometry becomes one vertex
// and one index buffer per kind. Render pipelines are created on demand,
// one per distinct set of pass options.
//
// # Frames
//
// The device draws into a caller-owned color view and a depth view of
// format Depth24PlusStencil8:
//
//	dev.BeginFrame(wgpu.Target{Color: view, Depth: depth, Width: w, Height: h})
//	err := vgr.RenderAll(ctx, layers...)
//	dev.EndFrame()
//
// The first pass of a frame clears both attachments. RenderPass outside a
// frame returns ErrNoFrame.
//
// # Device Sharing
//
// NewFromProvider takes the device from a gpucontext.DeviceProvider that
// also exposes HalDevice() and HalQueue(), as gogpu windows do.
package wgpu
