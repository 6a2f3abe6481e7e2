package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNoAdapter is returned when a backend exposes no usable adapter.
	ErrNoAdapter = errors.New("backend: no adapter")
)

// Device is an open logical device and its queue.
type Device struct {
	Name   string
	Device hal.Device
	Queue  hal.Queue
	Info   gputypes.AdapterInfo

	instance hal.Instance
	closed   bool
}

// Open creates an instance of the named backend and opens a device on its
// preferred adapter. An empty name selects the best available backend.
func Open(name string) (*Device, error) {
	if name == "" {
		name = DefaultName()
	}
	b := Get(name)
	if b == nil {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}

	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("backend %s: create instance: %w", name, err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: %s", ErrNoAdapter, name)
	}
	selected := pickAdapter(adapters)

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("backend %s: open device: %w", name, err)
	}

	slogger().Info("backend: device opened",
		"backend", name,
		"adapter", selected.Info.Name,
		"type", selected.Info.DeviceType)

	return &Device{
		Name:     name,
		Device:   openDev.Device,
		Queue:    openDev.Queue,
		Info:     selected.Info,
		instance: instance,
	}, nil
}

// CreateSurface creates a presentation surface on the device's instance.
func (d *Device) CreateSurface(displayHandle, windowHandle uintptr) (hal.Surface, error) {
	if d.closed {
		return nil, fmt.Errorf("backend %s: device closed", d.Name)
	}
	return d.instance.CreateSurface(displayHandle, windowHandle)
}

// Close waits for the GPU to go idle and releases the device and instance.
// Safe to call multiple times.
func (d *Device) Close() {
	if d == nil || d.closed {
		return
	}
	d.closed = true
	if err := d.Device.WaitIdle(); err != nil {
		slogger().Warn("backend: wait idle failed", "backend", d.Name, "error", err)
	}
	d.Device.Destroy()
	d.instance.Destroy()
}

// pickAdapter prefers a discrete, then integrated GPU, then whatever is first.
func pickAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	for _, want := range []gputypes.DeviceType{
		gputypes.DeviceTypeDiscreteGPU,
		gputypes.DeviceTypeIntegratedGPU,
	} {
		for i := range adapters {
			if adapters[i].Info.DeviceType == want {
				return &adapters[i]
			}
		}
	}
	return &adapters[0]
}

// nopHandler silently discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

func slogger() *slog.Logger { return loggerPtr.Load() }

// SetLogger sets the logger for device lifecycle events.
// Pass nil to disable logging.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}
