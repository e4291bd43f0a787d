// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vgr"
)

//go:embed shaders/fill.wgsl
var fillShaderWGSL string

//go:embed shaders/stroke.wgsl
var strokeShaderWGSL string

func shaderSource(kind vgr.VertexKind) string {
	if kind == vgr.VertexStroke {
		return strokeShaderWGSL
	}
	return fillShaderWGSL
}

// compileSPIRV compiles WGSL to little-endian SPIR-V words.
func compileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

func (d *Device) shaderModule(kind vgr.VertexKind) (hal.ShaderModule, error) {
	if m, ok := d.shaders[kind]; ok {
		return m, nil
	}
	code, err := compileSPIRV(shaderSource(kind))
	if err != nil {
		return nil, fmt.Errorf("wgpu: %s shader: %w", kind, err)
	}
	m, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "vgr_" + kind.String(),
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: %s shader module: %w", kind, err)
	}
	d.shaders[kind] = m
	return m, nil
}
