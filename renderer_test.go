package texquad

import (
	"bytes"
	"encoding/binary"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/texquad/asset"
	"github.com/gogpu/texquad/display"
	"github.com/gogpu/texquad/input"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		t.Fatal("no noop adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// readBuffer copies size bytes out of a mappable buffer.
func readBuffer(t *testing.T, device hal.Device, buf hal.Buffer, size uint64) []byte {
	t.Helper()
	m, err := device.MapBuffer(buf, 0, size)
	if err != nil {
		t.Fatalf("MapBuffer: %v", err)
	}
	defer func() { _ = device.UnmapBuffer(buf) }()
	return append([]byte(nil), unsafe.Slice((*byte)(m.Ptr), size)...)
}

// recordingDevice wraps a device so that render passes can be inspected.
type recordingDevice struct {
	hal.Device
	passes []*recordedPass
	freed  int
}

func (d *recordingDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	return &recordingEncoder{CommandEncoder: enc, dev: d}, nil
}

func (d *recordingDevice) FreeCommandBuffer(cb hal.CommandBuffer) {
	d.freed++
	d.Device.FreeCommandBuffer(cb)
}

type recordingEncoder struct {
	hal.CommandEncoder
	dev *recordingDevice
}

func (e *recordingEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	p := &recordedPass{
		RenderPassEncoder: e.CommandEncoder.BeginRenderPass(desc),
		label:             desc.Label,
	}
	if len(desc.ColorAttachments) > 0 {
		p.clear = desc.ColorAttachments[0].ClearValue
		p.loadOp = desc.ColorAttachments[0].LoadOp
	}
	e.dev.passes = append(e.dev.passes, p)
	return p
}

type recordedPass struct {
	hal.RenderPassEncoder
	label     string
	clear     gputypes.Color
	loadOp    gputypes.LoadOp
	pipeline  bool
	bindGroup bool
	slots     []uint32
	draws     [][4]uint32
	ended     bool
}

func (p *recordedPass) SetPipeline(pipeline hal.RenderPipeline) {
	p.pipeline = pipeline != nil
	p.RenderPassEncoder.SetPipeline(pipeline)
}

func (p *recordedPass) SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32) {
	p.bindGroup = index == 0 && group != nil
	p.RenderPassEncoder.SetBindGroup(index, group, offsets)
}

func (p *recordedPass) SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64) {
	p.slots = append(p.slots, slot)
	p.RenderPassEncoder.SetVertexBuffer(slot, buffer, offset)
}

func (p *recordedPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.draws = append(p.draws, [4]uint32{vertexCount, instanceCount, firstVertex, firstInstance})
	p.RenderPassEncoder.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *recordedPass) End() {
	p.ended = true
	p.RenderPassEncoder.End()
}

// failingTarget is a display target whose Acquire always fails.
type failingTarget struct {
	display.Target
	discarded bool
}

func (f *failingTarget) Acquire() (hal.TextureView, error) {
	return nil, errors.New("swapchain lost")
}

func (f *failingTarget) Discard() { f.discarded = true }

func TestNewNilDevice(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	if _, err := New(nil, queue); !errors.Is(err, ErrNilDevice) {
		t.Errorf("New(nil, queue) error = %v, want ErrNilDevice", err)
	}
	if _, err := New(device, nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("New(device, nil) error = %v, want ErrNilDevice", err)
	}
}

func TestNewDefaults(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r, err := New(device, queue)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Destroy()

	if w, h := r.TextureSize(); w != 64 || h != 64 {
		t.Errorf("TextureSize() = %dx%d, want 64x64", w, h)
	}
	if r.Texture() == nil {
		t.Error("Texture() = nil")
	}
	outs := r.Outputs()
	if outs.TV == nil || outs.DRC == nil {
		t.Fatal("default outputs missing")
	}
	if w, h := outs.TV.Size(); w != display.TVWidth || h != display.TVHeight {
		t.Errorf("TV size = %dx%d", w, h)
	}
	for i, buf := range r.TransformBuffers() {
		if buf == nil {
			t.Errorf("transform buffer %d is nil", i)
		}
	}
	if r.UniformBuffer() == nil {
		t.Error("UniformBuffer() = nil")
	}
	if r.Frames() != 0 {
		t.Errorf("Frames() = %d before Draw", r.Frames())
	}
}

func TestNewMissingTexture(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r, err := New(device, queue, WithTexturePath(asset.Scheme+"missing.tga"))
	if !errors.Is(err, ErrTextureLoad) {
		t.Fatalf("error = %v, want ErrTextureLoad", err)
	}
	if !errors.Is(err, asset.ErrNotFound) {
		t.Errorf("error = %v, want to wrap asset.ErrNotFound", err)
	}
	if r != nil {
		t.Error("renderer should be nil on failure")
	}
}

func TestNewBadShader(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	tests := []struct {
		name          string
		vertex, pixel string
	}{
		{"vertex syntax", "fn vs_main( {", ""},
		{"pixel syntax", "", "@fragment fn"},
		{"vertex entry point", "@fragment fn other() -> @location(0) vec4<f32> { return vec4<f32>(0.0); }", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(device, queue, WithShaderSource(tt.vertex, tt.pixel))
			if !errors.Is(err, ErrShaderCompile) {
				t.Fatalf("error = %v, want ErrShaderCompile", err)
			}
			if r != nil {
				t.Error("renderer should be nil on failure")
			}
		})
	}
}

func TestNewNoOutputs(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	if _, err := New(device, queue, WithOutputs(display.Outputs{})); !errors.Is(err, ErrNoOutputs) {
		t.Errorf("error = %v, want ErrNoOutputs", err)
	}
}

func TestDrawRecordsTwoPasses(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	rec := &recordingDevice{Device: device}
	r, err := New(rec, queue)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Destroy()

	if err := r.Draw(); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(rec.passes) != 2 {
		t.Fatalf("render passes = %d, want 2", len(rec.passes))
	}

	want := []struct {
		label string
		clear gputypes.Color
	}{
		{"quad_tv", gputypes.Color{R: 0, G: 0, B: 1, A: 1}},
		{"quad_drc", gputypes.Color{R: 1, G: 0, B: 1, A: 1}},
	}
	for i, p := range rec.passes {
		if p.label != want[i].label {
			t.Errorf("pass %d label = %q, want %q", i, p.label, want[i].label)
		}
		if p.clear != want[i].clear {
			t.Errorf("pass %d clear = %+v, want %+v", i, p.clear, want[i].clear)
		}
		if p.loadOp != gputypes.LoadOpClear {
			t.Errorf("pass %d load op = %v, want clear", i, p.loadOp)
		}
		if !p.pipeline || !p.bindGroup {
			t.Errorf("pass %d: pipeline=%v bindGroup=%v", i, p.pipeline, p.bindGroup)
		}
		if len(p.slots) != 6 {
			t.Errorf("pass %d vertex buffers = %v, want slots 0..5", i, p.slots)
		}
		for slot, got := range p.slots {
			if got != uint32(slot) {
				t.Errorf("pass %d slot[%d] = %d", i, slot, got)
			}
		}
		if len(p.draws) != 1 || p.draws[0] != [4]uint32{4, 1, 0, 0} {
			t.Errorf("pass %d draws = %v, want [[4 1 0 0]]", i, p.draws)
		}
		if !p.ended {
			t.Errorf("pass %d not ended", i)
		}
	}
}

func TestDrawPresentsBothOutputs(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	outs, err := display.NewOffscreenOutputs(device, queue)
	if err != nil {
		t.Fatalf("NewOffscreenOutputs: %v", err)
	}
	defer outs.Destroy()

	r, err := New(device, queue, WithOutputs(outs))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := r.Draw(); err != nil {
			t.Fatalf("Draw %d: %v", i, err)
		}
	}
	r.Destroy()

	if r.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", r.Frames())
	}
	for _, o := range []*display.Offscreen{outs.TV.(*display.Offscreen), outs.DRC.(*display.Offscreen)} {
		if o.Frames() != 3 {
			t.Errorf("%s presented %d frames, want 3", o.Name(), o.Frames())
		}
		// Caller-owned outputs survive the renderer.
		if o.Texture() == nil {
			t.Errorf("%s destroyed with the renderer", o.Name())
		}
	}
}

func TestDrawReclaimsCommandBuffers(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	rec := &recordingDevice{Device: device}
	r, err := New(rec, queue)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := r.Draw(); err != nil {
			t.Fatalf("Draw %d: %v", i, err)
		}
	}
	if rec.freed != 2 {
		t.Errorf("freed before Destroy = %d, want 2", rec.freed)
	}
	r.Destroy()
	if rec.freed != 3 {
		t.Errorf("freed after Destroy = %d, want 3", rec.freed)
	}
}

func TestDrawUploadsTransformRows(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	states := []input.State{
		{Left: input.Stick{Y: 1}, Right: input.Stick{X: 0.5, Y: 0.25}},
		{Left: input.Stick{X: -1}},
	}
	r, err := New(device, queue, WithInput(input.NewScript(states...)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Destroy()

	cam := NewCamera()
	model := NewModel()
	proj := DefaultProjection.Matrix()

	for frame, st := range states {
		if err := r.Draw(); err != nil {
			t.Fatalf("Draw: %v", err)
		}
		cam.Update(st)
		model.Advance()
		want := ComputeMVP(proj, cam.View(), model.Matrix())
		if got := r.MVP(); !near(got[:], want[:], 1e-5) {
			t.Fatalf("frame %d MVP =\n%v\nwant\n%v", frame, r.MVP(), want)
		}

		for i, buf := range r.TransformBuffers() {
			data := readBuffer(t, device, buf, rowBufferSize)
			row := MVPRow(want, i)
			for slot := 0; slot < rowSlots; slot++ {
				if got := DecodeRow(data, slot); !near(got[:], row[:], 1e-5) {
					t.Errorf("frame %d row %d slot %d = %v, want %v", frame, i, slot, got, row)
				}
			}
		}
	}
}

func TestDrawUploadsTime(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	clock := func() time.Time { return now }

	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			now = start
			r, err := New(device, queue, WithClock(clock), WithUniformByteOrder(order))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			defer r.Destroy()

			now = start.Add(1500*time.Millisecond + 700*time.Microsecond)
			if err := r.Draw(); err != nil {
				t.Fatalf("Draw: %v", err)
			}
			want := ElapsedSeconds(1500 * time.Millisecond)
			if r.Elapsed() != want {
				t.Errorf("Elapsed() = %v, want %v", r.Elapsed(), want)
			}
			data := readBuffer(t, device, r.UniformBuffer(), timeUniformSize)
			if got := DecodeTime(data, order); got != want {
				t.Errorf("uniform time = %v, want %v", got, want)
			}
		})
	}
}

func TestDrawAcquireFailure(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	outs, err := display.NewOffscreenOutputs(device, queue)
	if err != nil {
		t.Fatalf("NewOffscreenOutputs: %v", err)
	}
	defer outs.Destroy()
	drc := &failingTarget{Target: outs.DRC}

	r, err := New(device, queue, WithOutputs(display.Outputs{TV: outs.TV, DRC: drc}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Destroy()

	if err := r.Draw(); err == nil {
		t.Fatal("Draw should fail when an output cannot be acquired")
	}
	if r.Frames() != 0 {
		t.Errorf("Frames() = %d after failed Draw", r.Frames())
	}
	if err := outs.TV.Present(queue); !errors.Is(err, display.ErrNotAcquired) {
		t.Errorf("TV should have been discarded, Present error = %v", err)
	}
}

func TestDestroy(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r, err := New(device, queue)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Draw(); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	var logs bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))

	r.Destroy()
	r.Destroy()
	if n := strings.Count(logs.String(), "renderer destroyed"); n != 1 {
		t.Errorf("destroy logged %d times, want 1:\n%s", n, logs.String())
	}

	if err := r.Draw(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Draw after Destroy = %v, want ErrNotReady", err)
	}
	if r.Texture() != nil {
		t.Error("Texture() should be nil after Destroy")
	}
	for i, buf := range r.TransformBuffers() {
		if buf != nil {
			t.Errorf("transform buffer %d not released", i)
		}
	}

	var nilRenderer *Renderer
	nilRenderer.Destroy()
}

func TestDefaultClearColors(t *testing.T) {
	if TVClearColor != (gputypes.Color{R: 0, G: 0, B: 1, A: 1}) {
		t.Errorf("TVClearColor = %+v, want blue", TVClearColor)
	}
	if DRCClearColor != (gputypes.Color{R: 1, G: 0, B: 1, A: 1}) {
		t.Errorf("DRCClearColor = %+v, want magenta", DRCClearColor)
	}
}
