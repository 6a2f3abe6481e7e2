package backend

import (
	"slices"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/gogpu/wgpu/hal/software"
)

// Backend name constants.
const (
	BackendVulkan   = "vulkan"
	BackendMetal    = "metal"
	BackendDX12     = "dx12"
	BackendGLES     = "gles"
	BackendSoftware = "software"
	BackendNoop     = "noop"
)

// BackendFactory returns a HAL backend.
type BackendFactory func() hal.Backend

// Priority order for backend selection (first available wins).
// Hardware first, the CPU rasterizer next, noop last.
var backendPriority = []string{
	BackendVulkan, BackendMetal, BackendDX12, BackendGLES, BackendSoftware, BackendNoop,
}

// linked maps names to HAL variants that register themselves on import.
var linked = map[string]gputypes.Backend{
	BackendVulkan: gputypes.BackendVulkan,
	BackendMetal:  gputypes.BackendMetal,
	BackendDX12:   gputypes.BackendDX12,
	BackendGLES:   gputypes.BackendGL,
}

var backends = gpucontext.NewRegistry[hal.Backend](gpucontext.WithPriority(backendPriority...))

func init() {
	Register(BackendSoftware, func() hal.Backend { return software.API{} })
	Register(BackendNoop, func() hal.Backend { return noop.API{} })
}

// Register registers a backend factory with the given name.
// If a backend with the same name is already registered, it is replaced.
func Register(name string, factory BackendFactory) {
	backends.Register(name, factory)
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	backends.Unregister(name)
}

// discover registers platform backends linked into the binary. It runs on
// every lookup because HAL packages register from their own init functions,
// which may run after this package's.
func discover() {
	for name, variant := range linked {
		if backends.Has(name) {
			continue
		}
		if b, ok := hal.GetBackend(variant); ok {
			Register(name, func() hal.Backend { return b })
		}
	}
}

// Available returns the registered backend names in priority order.
func Available() []string {
	discover()
	names := backends.Available()
	slices.Sort(names)
	slices.SortStableFunc(names, func(a, b string) int {
		return rank(a) - rank(b)
	})
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	discover()
	return backends.Has(name)
}

// Get returns a backend by name, or nil if it is not registered.
func Get(name string) hal.Backend {
	discover()
	return backends.Get(name)
}

// DefaultName returns the name of the best available backend.
func DefaultName() string {
	discover()
	return backends.BestName()
}

// rank orders names by priority. Unknown names sort last.
func rank(name string) int {
	if i := slices.Index(backendPriority, name); i >= 0 {
		return i
	}
	return len(backendPriority)
}
