// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"

	"github.com/gogpu/vgr/internal/alloc"
)

// Package errors for the wgpu device.
var (
	// ErrOutOfMemory is returned by Allocate when the budget is exhausted.
	ErrOutOfMemory = alloc.ErrOutOfMemory

	// ErrNoFrame is returned by RenderPass outside BeginFrame/EndFrame.
	ErrNoFrame = errors.New("wgpu: no frame in progress")

	// ErrNoHAL is returned when a provider does not expose HAL types.
	ErrNoHAL = errors.New("wgpu: provider does not expose HAL device and queue")

	// ErrUnknownGeometry is returned when a draw command names geometry
	// that was never submitted.
	ErrUnknownGeometry = errors.New("wgpu: unknown geometry")

	// ErrRangeMismatch is returned when a range was not allocated by the
	// device or does not fit the data written to it.
	ErrRangeMismatch = errors.New("wgpu: range mismatch")

	// ErrUnsupportedEffect is returned for pass options with a non-zero effect.
	ErrUnsupportedEffect = errors.New("wgpu: unsupported effect")

	// ErrDestroyed is returned after Destroy.
	ErrDestroyed = errors.New("wgpu: device destroyed")
)
