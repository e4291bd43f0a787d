// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vgr"
	"github.com/gogpu/vgr/gpudata"
	"github.com/gogpu/vgr/internal/alloc"
)

// fenceTimeout bounds the wait for each submitted pass.
const fenceTimeout = 5 * time.Second

// Target is the pair of views a frame draws into.
type Target struct {
	Color  hal.TextureView
	Depth  hal.TextureView
	Width  uint32
	Height uint32
}

// Options configures New.
type Options struct {
	// Format is the color target format. Zero means BGRA8Unorm.
	Format gputypes.TextureFormat

	// Config supplies the memory budget and clear color.
	Config vgr.Config
}

type geometryBuffers struct {
	vertices [2]hal.Buffer // indexed by vgr.VertexKind
	indices  [2]hal.Buffer
	counts   [2]uint32
}

// Device is a vgr.Device backed by a HAL device.
//
// Device is not safe for concurrent use.
type Device struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat
	clear  gputypes.Color

	alloc   *alloc.Linear
	data    hal.Buffer
	globals hal.Buffer
	geoms   map[vgr.GeometryID]*geometryBuffers

	dataLayout hal.BindGroupLayout
	drawLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	dataGroup  hal.BindGroup
	shaders    map[vgr.VertexKind]hal.ShaderModule
	pipelines  map[pipelineKey]hal.RenderPipeline

	target  *Target
	cleared bool

	destroyed bool
}

var _ vgr.Device = (*Device)(nil)

// New creates the device memory buffer and bind group layouts on device.
// Pipelines are created on first use.
func New(device hal.Device, queue hal.Queue, opts Options) (*Device, error) {
	if opts.Format == gputypes.TextureFormatUndefined {
		opts.Format = gputypes.TextureFormatBGRA8Unorm
	}
	cfg := opts.Config
	if cfg.MemoryBudget == 0 {
		cfg.MemoryBudget = vgr.DefaultConfig().MemoryBudget
	}
	c := cfg.Canvas.Clear
	d := &Device{
		device:    device,
		queue:     queue,
		format:    opts.Format,
		clear:     gputypes.Color{R: c[0] * c[3], G: c[1] * c[3], B: c[2] * c[3], A: c[3]},
		alloc:     alloc.NewLinear(cfg.MemoryBudget),
		geoms:     make(map[vgr.GeometryID]*geometryBuffers),
		shaders:   make(map[vgr.VertexKind]hal.ShaderModule),
		pipelines: make(map[pipelineKey]hal.RenderPipeline),
	}
	if err := d.init(); err != nil {
		d.Destroy()
		return nil, fmt.Errorf("wgpu: %w", err)
	}
	vgr.Logger().Debug("wgpu: device ready", "format", d.format, "budget", d.alloc.Budget())
	return d, nil
}

// NewFromProvider creates a device sharing the provider's GPU. The
// provider must also expose HalDevice() and HalQueue().
func NewFromProvider(p gpucontext.DeviceProvider, cfg vgr.Config) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := p.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return New(device, queue, Options{Format: p.SurfaceFormat(), Config: cfg})
}

func (d *Device) init() error {
	var err error
	d.data, err = d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "vgr_gpu_memory",
		Size:  uint64(d.alloc.Budget()) * 4,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create memory buffer: %w", err)
	}
	d.globals, err = d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "vgr_globals",
		Size:  globalsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create globals buffer: %w", err)
	}
	if err := d.createLayouts(); err != nil {
		return err
	}
	d.dataGroup, err = d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "vgr_data_group",
		Layout: d.dataLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: d.data.NativeHandle(), Offset: 0, Size: uint64(d.alloc.Budget()) * 4,
			}},
			{Binding: 1, Resource: gputypes.BufferBinding{
				Buffer: d.globals.NativeHandle(), Offset: 0, Size: globalsSize,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create data bind group: %w", err)
	}
	return nil
}

// Allocate reserves size words of device memory.
func (d *Device) Allocate(size uint32) (gpudata.AddressRange, error) {
	if d.destroyed {
		return gpudata.AddressRange{}, ErrDestroyed
	}
	return d.alloc.Allocate(size)
}

// Upload writes mem to the start of r.
func (d *Device) Upload(r gpudata.AddressRange, mem *gpudata.Memory) error {
	if d.destroyed {
		return ErrDestroyed
	}
	if !d.alloc.Owns(r) {
		return fmt.Errorf("%w: %v was not allocated", ErrRangeMismatch, r)
	}
	if uint32(mem.Len()) > r.Len() { //nolint:gosec // memory is bounded by the address space
		return fmt.Errorf("%w: %d words do not fit %v", ErrRangeMismatch, mem.Len(), r)
	}
	if mem.Len() == 0 {
		return nil
	}
	d.queue.WriteBuffer(d.data, uint64(r.Start().Offset())*4, bufferBytes(mem.Words()))
	return nil
}

// SubmitGeometry uploads the geometry's vertex and index buffers,
// replacing any previously submitted under the same ID.
func (d *Device) SubmitGeometry(g *vgr.GeometryBuilder) error {
	if d.destroyed {
		return ErrDestroyed
	}
	bufs := &geometryBuffers{}
	fail := func(err error) error {
		d.destroyGeometry(bufs)
		return fmt.Errorf("wgpu: geometry %d: %w", g.ID, err)
	}

	if len(g.Fill.Indices) > 0 {
		if err := d.uploadKind(bufs, vgr.VertexFill, bufferBytes(g.Fill.Vertices), bufferBytes(g.Fill.Indices)); err != nil {
			return fail(err)
		}
		bufs.counts[vgr.VertexFill] = uint32(len(g.Fill.Indices)) //nolint:gosec // uint16 indices
	}
	if len(g.Stroke.Indices) > 0 {
		if err := d.uploadKind(bufs, vgr.VertexStroke, bufferBytes(g.Stroke.Vertices), bufferBytes(g.Stroke.Indices)); err != nil {
			return fail(err)
		}
		bufs.counts[vgr.VertexStroke] = uint32(len(g.Stroke.Indices)) //nolint:gosec // uint16 indices
	}

	if old, ok := d.geoms[g.ID]; ok {
		d.destroyGeometry(old)
	}
	d.geoms[g.ID] = bufs
	vgr.Logger().Debug("wgpu: geometry submitted", "id", g.ID,
		"fill_indices", bufs.counts[vgr.VertexFill], "stroke_indices", bufs.counts[vgr.VertexStroke])
	return nil
}

func (d *Device) uploadKind(bufs *geometryBuffers, kind vgr.VertexKind, vertices, indices []byte) error {
	vb, err := d.createAndUploadBuffer("vgr_"+kind.String()+"_vertices", vertices,
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	bufs.vertices[kind] = vb
	ib, err := d.createAndUploadBuffer("vgr_"+kind.String()+"_indices", indices,
		gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	bufs.indices[kind] = ib
	return nil
}

func (d *Device) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	d.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// BeginFrame starts drawing into t. The first pass clears it.
func (d *Device) BeginFrame(t Target) {
	d.target = &t
	d.cleared = false
	d.queue.WriteBuffer(d.globals, 0, globalsBytes(t.Width, t.Height))
}

// EndFrame finishes the frame. Passes already waited for completion.
func (d *Device) EndFrame() {
	d.target = nil
}

// RenderPass encodes one render pass drawing cmds, submits it and waits
// for it to finish.
func (d *Device) RenderPass(cmds []vgr.DrawCmd, opts vgr.RenderPassOptions) error {
	if d.destroyed {
		return ErrDestroyed
	}
	if d.target == nil {
		return ErrNoFrame
	}
	key, err := keyOf(opts)
	if err != nil {
		return err
	}
	for i, cmd := range cmds {
		if err := d.checkCmd(cmd); err != nil {
			return fmt.Errorf("command %d: %w", i, err)
		}
	}
	pipeline, err := d.pipeline(key)
	if err != nil {
		return err
	}

	var (
		params hal.Buffer
		groups []hal.BindGroup
	)
	defer func() {
		for _, g := range groups {
			d.device.DestroyBindGroup(g)
		}
		if params != nil {
			d.device.DestroyBuffer(params)
		}
	}()
	if len(cmds) > 0 {
		params, err = d.createAndUploadBuffer("vgr_draw_params", drawParamsBytes(cmds),
			gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
		if err != nil {
			return fmt.Errorf("wgpu: %w", err)
		}
		for i := range cmds {
			g, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
				Label:  "vgr_draw_group",
				Layout: d.drawLayout,
				Entries: []gputypes.BindGroupEntry{
					{Binding: 0, Resource: gputypes.BufferBinding{
						Buffer: params.NativeHandle(),
						Offset: uint64(i) * drawParamsAlign, //nolint:gosec // command count
						Size:   drawParamsSize,
					}},
				},
			})
			if err != nil {
				return fmt.Errorf("wgpu: create draw bind group: %w", err)
			}
			groups = append(groups, g)
		}
	}

	if err := d.encodeSubmit(pipeline, key.kind, cmds, groups); err != nil {
		return fmt.Errorf("wgpu: %s pass: %w", key, err)
	}
	d.cleared = true
	vgr.Logger().Debug("wgpu: render pass", "pipeline", key, "cmds", len(cmds))
	return nil
}

func (d *Device) checkCmd(cmd vgr.DrawCmd) error {
	if _, ok := d.geoms[cmd.Geometry]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownGeometry, cmd.Geometry)
	}
	if cmd.InstanceStride == 0 || cmd.NumInstances == 0 {
		return nil
	}
	end := uint64(cmd.BaseAddress.Offset()) + uint64(cmd.InstanceStride)*uint64(cmd.NumInstances)
	if cmd.BaseAddress.Type() != gpudata.Global || end > uint64(d.alloc.Used()) {
		return fmt.Errorf("%w: %d instances of %d words at %v", ErrRangeMismatch,
			cmd.NumInstances, cmd.InstanceStride, cmd.BaseAddress)
	}
	return nil
}

func (d *Device) encodeSubmit(pipeline hal.RenderPipeline, kind vgr.VertexKind, cmds []vgr.DrawCmd, groups []hal.BindGroup) error {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "vgr_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("vgr_pass"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	load := gputypes.LoadOpLoad
	if !d.cleared {
		load = gputypes.LoadOpClear
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "vgr_" + kind.String() + "_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       d.target.Color,
			LoadOp:     load,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: d.clear,
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              d.target.Depth,
			DepthLoadOp:       load,
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   1.0,
			StencilLoadOp:     load,
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: 0,
		},
	})

	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, d.dataGroup, nil)
	for i, cmd := range cmds {
		g := d.geoms[cmd.Geometry]
		if g.counts[kind] == 0 || cmd.NumInstances == 0 {
			continue
		}
		rp.SetBindGroup(1, groups[i], nil)
		rp.SetVertexBuffer(0, g.vertices[kind], 0)
		rp.SetIndexBuffer(g.indices[kind], gputypes.IndexFormatUint16, 0)
		rp.DrawIndexed(g.counts[kind], cmd.NumInstances, 0, 0, 0)
	}
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := d.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}
	return nil
}

// Stats returns memory usage.
func (d *Device) Stats() alloc.Stats { return d.alloc.Stats() }

// Reset releases all device memory. Submitted geometry is kept.
func (d *Device) Reset() { d.alloc.Reset() }

func (d *Device) destroyGeometry(g *geometryBuffers) {
	for k := range g.vertices {
		if g.vertices[k] != nil {
			d.device.DestroyBuffer(g.vertices[k])
		}
		if g.indices[k] != nil {
			d.device.DestroyBuffer(g.indices[k])
		}
	}
}

// Destroy releases every GPU resource in reverse creation order. The
// device is unusable afterwards.
func (d *Device) Destroy() {
	if d.destroyed {
		return
	}
	d.destroyed = true
	for _, p := range d.pipelines {
		d.device.DestroyRenderPipeline(p)
	}
	for _, m := range d.shaders {
		d.device.DestroyShaderModule(m)
	}
	for _, g := range d.geoms {
		d.destroyGeometry(g)
	}
	d.pipelines, d.shaders, d.geoms = nil, nil, nil
	if d.dataGroup != nil {
		d.device.DestroyBindGroup(d.dataGroup)
	}
	if d.pipeLayout != nil {
		d.device.DestroyPipelineLayout(d.pipeLayout)
	}
	if d.drawLayout != nil {
		d.device.DestroyBindGroupLayout(d.drawLayout)
	}
	if d.dataLayout != nil {
		d.device.DestroyBindGroupLayout(d.dataLayout)
	}
	if d.globals != nil {
		d.device.DestroyBuffer(d.globals)
	}
	if d.data != nil {
		d.device.DestroyBuffer(d.data)
	}
}
