package texquad

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/texquad/display"
	"github.com/gogpu/texquad/internal/shader"
)

// Renderer draws a textured, spinning quad to the TV and DRC outputs.
//
// All GPU resources are created by New and released by Destroy. Draw
// renders one frame: it polls the gamepad, moves the camera, uploads the
// MVP rows and the time uniform, and records one render pass per output.
//
// Architecture:
//
//	vertex buffers 0..5: position, tex_coord, mvp rows 0..3
//	bind group 0:        time uniform, texture, sampler
//	one pipeline per output texture format
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	device hal.Device
	queue  hal.Queue
	opts   options

	// Shader stages and pipeline objects.
	vertexShader hal.ShaderModule
	pixelShader  hal.ShaderModule
	bindLayout   hal.BindGroupLayout
	pipeLayout   hal.PipelineLayout
	pipelines    map[gputypes.TextureFormat]hal.RenderPipeline

	// Static quad geometry.
	positionBuf hal.Buffer
	texCoordBuf hal.Buffer

	// Per-frame data: one buffer per MVP row, and the time uniform.
	rowBufs    [4]hal.Buffer
	uniformBuf hal.Buffer

	texture   *quadTexture
	sampler   hal.Sampler
	bindGroup hal.BindGroup

	outputs     display.Outputs
	ownsOutputs bool

	// In-flight command buffer of the previous frame.
	pending      hal.CommandBuffer
	pendingIndex uint64

	camera     *Camera
	model      *Model
	projection mgl32.Mat4
	mvp        mgl32.Mat4
	launch     time.Time
	elapsed    float32
	frames     uint64
	ready      bool
	destroyed  bool
}

// New creates a renderer on device and queue. It compiles both shader
// stages, uploads the quad geometry and loads the texture.
//
// On failure every resource created so far is released and the error wraps
// ErrShaderCompile, ErrTextureLoad or the failing HAL call's error.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Renderer, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.assets = o.store()

	r := &Renderer{
		device:     device,
		queue:      queue,
		opts:       o,
		pipelines:  make(map[gputypes.TextureFormat]hal.RenderPipeline),
		camera:     NewCamera(),
		model:      NewModel(),
		projection: o.projection.Matrix(),
		launch:     o.now(),
	}
	if err := r.init(); err != nil {
		Logger().Error("texquad: renderer setup failed", "error", err)
		r.release()
		return nil, err
	}
	r.ready = true
	Logger().Info("texquad: renderer ready",
		"texture", o.texturePath,
		"outputs", len(r.outputs.All()))
	return r, nil
}

func (r *Renderer) init() error {
	steps := []func() error{
		r.createShaders,
		r.createLayouts,
		r.createGeometry,
		r.createTransformBuffers,
		r.createTexture,
		r.createSampler,
		r.createUniformBuffer,
		r.createBindGroup,
		r.createOutputs,
		r.createPipelines,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// createShaders compiles and creates the vertex and pixel stages.
func (r *Renderer) createShaders() error {
	vs, err := shader.Compile(shader.Vertex, "quad_vertex", r.opts.vertexWGSL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrShaderCompile, err)
	}
	ps, err := shader.Compile(shader.Fragment, "quad_pixel", r.opts.pixelWGSL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrShaderCompile, err)
	}

	if r.vertexShader, err = shader.CreateModule(r.device, vs); err != nil {
		return err
	}
	if r.pixelShader, err = shader.CreateModule(r.device, ps); err != nil {
		return err
	}
	return nil
}

// createLayouts creates the bind group and pipeline layouts.
//
//	Binding 0: TimeUniform (uniform buffer, fragment)
//	Binding 1: quad texture (texture_2d, fragment)
//	Binding 2: sampler (fragment)
func (r *Renderer) createLayouts() error {
	bindLayout, err := r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "quad_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create quad bind layout: %w", err)
	}
	r.bindLayout = bindLayout

	pipeLayout, err := r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "quad_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{r.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create quad pipeline layout: %w", err)
	}
	r.pipeLayout = pipeLayout
	return nil
}

// createGeometry uploads the static position and texcoord buffers.
func (r *Renderer) createGeometry() error {
	var err error
	r.positionBuf, err = r.createAndUploadBuffer("quad_positions", positionBytes(),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	r.texCoordBuf, err = r.createAndUploadBuffer("quad_texcoords", texCoordBytes(),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	return err
}

// createTransformBuffers allocates the four MVP row buffers. They are
// filled by every Draw.
func (r *Renderer) createTransformBuffers() error {
	for i := range r.rowBufs {
		buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
			Label: fmt.Sprintf("quad_mvp_row%d", i),
			Size:  rowBufferSize,
			Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create mvp row %d: %w", i, err)
		}
		r.rowBufs[i] = buf
	}
	return nil
}

func (r *Renderer) createTexture() error {
	tex, err := loadTexture(r.device, r.queue, r.opts.assets, r.opts.texturePath)
	if err != nil {
		return err
	}
	r.texture = tex
	return nil
}

// createSampler creates a clamped, linearly filtered sampler.
func (r *Renderer) createSampler() error {
	sampler, err := r.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "quad_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("create quad sampler: %w", err)
	}
	r.sampler = sampler
	return nil
}

func (r *Renderer) createUniformBuffer() error {
	var err error
	r.uniformBuf, err = r.createAndUploadBuffer("quad_time_uniform",
		EncodeTime(0, r.opts.byteOrder),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	return err
}

func (r *Renderer) createBindGroup() error {
	bindGroup, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "quad_bind",
		Layout: r.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: r.uniformBuf.NativeHandle(), Offset: 0, Size: timeUniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: r.texture.view.NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: r.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create quad bind group: %w", err)
	}
	r.bindGroup = bindGroup
	return nil
}

// createOutputs uses the configured outputs or creates offscreen ones.
func (r *Renderer) createOutputs() error {
	if r.opts.outputs != nil {
		r.outputs = *r.opts.outputs
	} else {
		outs, err := display.NewOffscreenOutputs(r.device, r.queue)
		if err != nil {
			return err
		}
		r.outputs = outs
		r.ownsOutputs = true
	}
	if len(r.outputs.All()) == 0 {
		return ErrNoOutputs
	}
	return nil
}

// createPipelines creates one render pipeline per output format.
func (r *Renderer) createPipelines() error {
	for _, t := range r.outputs.All() {
		format := t.Format()
		if _, ok := r.pipelines[format]; ok {
			continue
		}
		pipeline, err := r.createPipeline(format)
		if err != nil {
			return err
		}
		r.pipelines[format] = pipeline
	}
	return nil
}

func (r *Renderer) createPipeline(format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	pipeline, err := r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "quad_pipeline",
		Layout: r.pipeLayout,
		Vertex: hal.VertexState{
			Module:     r.vertexShader,
			EntryPoint: shader.Vertex.EntryPoint(),
			Buffers:    quadVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     r.pixelShader,
			EntryPoint: shader.Fragment.EntryPoint(),
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create quad pipeline (%v): %w", format, err)
	}
	return pipeline, nil
}

func (r *Renderer) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	if err := r.queue.WriteBuffer(buf, 0, data); err != nil {
		r.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("upload %s: %w", label, err)
	}
	return buf, nil
}

// Draw renders one frame to the TV and then the DRC output.
func (r *Renderer) Draw() error {
	if !r.ready {
		return ErrNotReady
	}
	r.reclaim()

	r.camera.Update(r.opts.input.Poll())
	r.model.Advance()
	r.mvp = ComputeMVP(r.projection, r.camera.View(), r.model.Matrix())
	for i, buf := range r.rowBufs {
		if err := r.queue.WriteBuffer(buf, 0, EncodeRow(r.mvp, i)); err != nil {
			return fmt.Errorf("upload mvp row %d: %w", i, err)
		}
	}

	r.elapsed = ElapsedSeconds(r.opts.now().Sub(r.launch))
	if err := r.queue.WriteBuffer(r.uniformBuf, 0, EncodeTime(r.elapsed, r.opts.byteOrder)); err != nil {
		return fmt.Errorf("upload time uniform: %w", err)
	}

	if err := r.encodeAndSubmit(); err != nil {
		return err
	}
	r.frames++

	var errs []error
	for _, t := range r.outputs.All() {
		if err := t.Present(r.queue); err != nil {
			Logger().Warn("texquad: present failed", "output", t.Name(), "error", err)
			errs = append(errs, err)
		}
	}
	Logger().Debug("texquad: frame",
		"frame", r.frames,
		"time", r.elapsed,
		"yaw", r.camera.Yaw,
		"pitch", r.camera.Pitch)
	return errors.Join(errs...)
}

// encodeAndSubmit records one render pass per output and submits them in a
// single command buffer.
func (r *Renderer) encodeAndSubmit() error {
	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "quad_frame"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("quad_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	targets := r.outputs.All()
	for i, t := range targets {
		view, err := t.Acquire()
		if err != nil {
			for _, prev := range targets[:i] {
				prev.Discard()
			}
			encoder.DiscardEncoding()
			return fmt.Errorf("acquire %s: %w", t.Name(), err)
		}
		rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: "quad_" + t.Name(),
			ColorAttachments: []hal.RenderPassColorAttachment{{
				View:       view,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: r.clearColor(t),
			}},
		})
		r.recordDraw(rp, r.pipelines[t.Format()])
		rp.End()
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		discardAll(targets)
		return fmt.Errorf("end encoding: %w", err)
	}
	index, err := r.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		r.device.FreeCommandBuffer(cmdBuf)
		discardAll(targets)
		return fmt.Errorf("submit: %w", err)
	}
	r.pending, r.pendingIndex = cmdBuf, index
	return nil
}

// recordDraw records the quad draw into an open render pass.
func (r *Renderer) recordDraw(rp hal.RenderPassEncoder, pipeline hal.RenderPipeline) {
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, r.bindGroup, nil)
	rp.SetVertexBuffer(0, r.positionBuf, 0)
	rp.SetVertexBuffer(1, r.texCoordBuf, 0)
	for i, buf := range r.rowBufs {
		rp.SetVertexBuffer(uint32(2+i), buf, 0)
	}
	rp.Draw(QuadVertexCount, 1, 0, 0)
}

func (r *Renderer) clearColor(t display.Target) gputypes.Color {
	if t == r.outputs.DRC {
		return r.opts.drcClear
	}
	return r.opts.tvClear
}

// reclaim frees the previous frame's command buffer once the GPU is done
// with it.
func (r *Renderer) reclaim() {
	if r.pending == nil {
		return
	}
	if r.queue.PollCompleted() < r.pendingIndex {
		if err := r.device.WaitIdle(); err != nil {
			Logger().Warn("texquad: wait idle failed", "error", err)
		}
	}
	r.device.FreeCommandBuffer(r.pending)
	r.pending = nil
}

func discardAll(targets []display.Target) {
	for _, t := range targets {
		t.Discard()
	}
}

// Destroy releases all GPU resources. Safe to call multiple times; calls
// after the first do nothing. Draw returns ErrNotReady afterwards.
func (r *Renderer) Destroy() {
	if r == nil || r.device == nil || r.destroyed {
		return
	}
	r.destroyed = true
	if err := r.device.WaitIdle(); err != nil {
		Logger().Warn("texquad: wait idle failed", "error", err)
	}
	r.ready = false
	r.release()
	Logger().Info("texquad: renderer destroyed", "frames", r.frames)
}

// release destroys every created resource in reverse creation order.
func (r *Renderer) release() {
	if r.pending != nil {
		r.device.FreeCommandBuffer(r.pending)
		r.pending = nil
	}
	for format, p := range r.pipelines {
		r.device.DestroyRenderPipeline(p)
		delete(r.pipelines, format)
	}
	if r.ownsOutputs {
		r.outputs.Destroy()
		r.ownsOutputs = false
	}
	r.outputs = display.Outputs{}
	if r.bindGroup != nil {
		r.device.DestroyBindGroup(r.bindGroup)
		r.bindGroup = nil
	}
	if r.uniformBuf != nil {
		r.device.DestroyBuffer(r.uniformBuf)
		r.uniformBuf = nil
	}
	if r.sampler != nil {
		r.device.DestroySampler(r.sampler)
		r.sampler = nil
	}
	if r.texture != nil {
		r.texture.destroy(r.device)
		r.texture = nil
	}
	for i, buf := range r.rowBufs {
		if buf != nil {
			r.device.DestroyBuffer(buf)
			r.rowBufs[i] = nil
		}
	}
	if r.texCoordBuf != nil {
		r.device.DestroyBuffer(r.texCoordBuf)
		r.texCoordBuf = nil
	}
	if r.positionBuf != nil {
		r.device.DestroyBuffer(r.positionBuf)
		r.positionBuf = nil
	}
	if r.pipeLayout != nil {
		r.device.DestroyPipelineLayout(r.pipeLayout)
		r.pipeLayout = nil
	}
	if r.bindLayout != nil {
		r.device.DestroyBindGroupLayout(r.bindLayout)
		r.bindLayout = nil
	}
	if r.pixelShader != nil {
		r.device.DestroyShaderModule(r.pixelShader)
		r.pixelShader = nil
	}
	if r.vertexShader != nil {
		r.device.DestroyShaderModule(r.vertexShader)
		r.vertexShader = nil
	}
}

// Camera returns the renderer's camera.
func (r *Renderer) Camera() *Camera { return r.camera }

// Model returns the quad's model state.
func (r *Renderer) Model() *Model { return r.model }

// MVP returns the matrix uploaded by the last Draw.
func (r *Renderer) MVP() mgl32.Mat4 { return r.mvp }

// Elapsed returns the time value uploaded by the last Draw, in seconds.
func (r *Renderer) Elapsed() float32 { return r.elapsed }

// Frames returns the number of frames drawn.
func (r *Renderer) Frames() uint64 { return r.frames }

// Outputs returns the TV and DRC targets.
func (r *Renderer) Outputs() display.Outputs { return r.outputs }

// TransformBuffers returns the four MVP row buffers.
func (r *Renderer) TransformBuffers() [4]hal.Buffer { return r.rowBufs }

// UniformBuffer returns the time uniform buffer.
func (r *Renderer) UniformBuffer() hal.Buffer { return r.uniformBuf }

// Texture returns the quad texture, or nil after Destroy.
func (r *Renderer) Texture() hal.Texture {
	if r.texture == nil {
		return nil
	}
	return r.texture.texture
}

// TextureSize returns the texture dimensions in pixels.
func (r *Renderer) TextureSize() (width, height uint32) {
	if r.texture == nil {
		return 0, 0
	}
	return r.texture.width, r.texture.height
}
