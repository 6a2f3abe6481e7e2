// Package shader compiles the renderer's WGSL stages with naga.
//
// Each stage is compiled on its own: parsed, lowered, validated and
// translated to SPIR-V. The WGSL text is kept alongside the SPIR-V words so
// the HAL backend can pick the representation it consumes.
package shader

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
	"github.com/gogpu/wgpu/hal"
)

// Stage is a programmable pipeline stage.
type Stage int

const (
	// Vertex is the vertex stage, entry point "vs_main".
	Vertex Stage = iota
	// Fragment is the pixel stage, entry point "fs_main".
	Fragment
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case Vertex:
		return "vertex"
	case Fragment:
		return "fragment"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// EntryPoint returns the function name the stage's module must export.
func (s Stage) EntryPoint() string {
	if s == Fragment {
		return "fs_main"
	}
	return "vs_main"
}

func (s Stage) irStage() ir.ShaderStage {
	if s == Fragment {
		return ir.StageFragment
	}
	return ir.StageVertex
}

// Compilation errors.
var (
	// ErrEmptySource is returned for an empty WGSL string.
	ErrEmptySource = errors.New("shader: empty source")

	// ErrEntryPoint is returned when the module lacks the stage's entry point.
	ErrEntryPoint = errors.New("shader: missing entry point")
)

// Source is a compiled shader stage.
type Source struct {
	Label string
	Stage Stage
	WGSL  string
	SPIRV []uint32
}

// Compile compiles WGSL source for one stage. Failures are logged with the
// stage and label before being returned.
func Compile(stage Stage, label, wgsl string) (*Source, error) {
	words, err := compile(stage, wgsl)
	if err != nil {
		err = fmt.Errorf("compile %s shader %q: %w", stage, label, err)
		slogger().Error("shader: compilation failed", "stage", stage.String(), "label", label, "error", err)
		return nil, err
	}
	slogger().Debug("shader: compiled", "stage", stage.String(), "label", label, "words", len(words))
	return &Source{Label: label, Stage: stage, WGSL: wgsl, SPIRV: words}, nil
}

func compile(stage Stage, wgsl string) ([]uint32, error) {
	if wgsl == "" {
		return nil, ErrEmptySource
	}
	ast, err := naga.Parse(wgsl)
	if err != nil {
		return nil, err
	}
	module, err := naga.LowerWithSource(ast, wgsl)
	if err != nil {
		return nil, fmt.Errorf("lowering error: %w", err)
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if len(verrs) > 0 {
		return nil, fmt.Errorf("validation failed: %w", verrs[0])
	}
	if !hasEntryPoint(module, stage) {
		return nil, fmt.Errorf("%w: %s", ErrEntryPoint, stage.EntryPoint())
	}
	spirvBytes, err := naga.GenerateSPIRV(module, spirv.Options{Version: spirv.Version1_3})
	if err != nil {
		return nil, err
	}
	return toWords(spirvBytes), nil
}

func hasEntryPoint(module *ir.Module, stage Stage) bool {
	for i := range module.EntryPoints {
		ep := &module.EntryPoints[i]
		if ep.Name == stage.EntryPoint() && ep.Stage == stage.irStage() {
			return true
		}
	}
	return false
}

// toWords converts a SPIR-V byte stream to little-endian 32-bit words.
func toWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words
}

// CreateModule creates a HAL shader module carrying both the WGSL text and
// the SPIR-V words.
func CreateModule(device hal.Device, src *Source) (hal.ShaderModule, error) {
	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: src.Label,
		Source: hal.ShaderSource{
			WGSL:  src.WGSL,
			SPIRV: src.SPIRV,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s shader module %q: %w", src.Stage, src.Label, err)
	}
	return module, nil
}
