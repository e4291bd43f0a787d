// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"honnef.co/go/safeish"

	"github.com/gogpu/vgr"
)

const (
	globalsSize = 16

	// Per-command parameters live in one uniform buffer, one slot per
	// command, at the minimum uniform offset alignment.
	drawParamsSize  = 16
	drawParamsAlign = 256

	// zScale maps z indices to depth: 1 - z*zScale.
	zScale = 1.0 / (1 << 20)
)

// globalsBytes encodes the Globals uniform for a width×height target.
func globalsBytes(width, height uint32) []byte {
	buf := make([]byte, globalsSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(float32(width)))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(float32(height)))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(zScale))
	// Padding bytes 12..15 remain zero.
	return buf
}

// drawParamsBytes encodes one DrawParams slot per command.
func drawParamsBytes(cmds []vgr.DrawCmd) []byte {
	buf := make([]byte, len(cmds)*drawParamsAlign)
	for i, cmd := range cmds {
		off := i * drawParamsAlign
		binary.LittleEndian.PutUint32(buf[off:], cmd.BaseAddress.Offset())
		binary.LittleEndian.PutUint32(buf[off+4:], cmd.InstanceStride)
	}
	return buf
}

// bufferBytes reinterprets s as bytes, padded to a multiple of four as
// queue writes require.
func bufferBytes[T any](s []T) []byte {
	b := safeish.SliceCast[[]byte](s)
	if r := len(b) % 4; r != 0 {
		padded := make([]byte, len(b)+4-r)
		copy(padded, b)
		return padded
	}
	return b
}

// pipelineKey identifies a render pipeline.
type pipelineKey struct {
	kind       vgr.VertexKind
	blend      bool
	depthWrite bool
	depthTest  bool
}

func keyOf(opts vgr.RenderPassOptions) (pipelineKey, error) {
	if opts.Effect != 0 {
		return pipelineKey{}, fmt.Errorf("%w: %d", ErrUnsupportedEffect, opts.Effect)
	}
	switch opts.VertexKind {
	case vgr.VertexFill, vgr.VertexStroke:
	default:
		return pipelineKey{}, fmt.Errorf("wgpu: unknown vertex kind %v", opts.VertexKind)
	}
	return pipelineKey{
		kind:       opts.VertexKind,
		blend:      opts.EnableBlending,
		depthWrite: opts.EnableDepthWrite,
		depthTest:  opts.EnableDepthTest,
	}, nil
}

func (k pipelineKey) String() string {
	s := "vgr_" + k.kind.String()
	if k.blend {
		s += "_blend"
	}
	if k.depthWrite {
		s += "_zwrite"
	}
	if k.depthTest {
		s += "_ztest"
	}
	return s
}

// depthCompare lets later draws at equal depth win, as the layer orders
// instances back to front.
func (k pipelineKey) depthCompare() gputypes.CompareFunction {
	if !k.depthTest {
		return gputypes.CompareFunctionAlways
	}
	return gputypes.CompareFunctionLessEqual
}

func (k pipelineKey) vertexLayout() []gputypes.VertexBufferLayout {
	if k.kind == vgr.VertexStroke {
		return vgr.StrokeVertexLayout()
	}
	return vgr.FillVertexLayout()
}
