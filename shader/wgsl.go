package shader

import (
	"fmt"
	"sync"

	"github.com/gogpu/naga"
)

// WgslConverter is the contract an external SPIR-V -> WGSL translator
// fulfills. The converter has process-wide lifecycle: install one with
// InitializeWgslConverter before creating SPIR-V shader modules on a
// backend that consumes WGSL, and tear it down with ShutdownWgslConverter.
type WgslConverter interface {
	// Initialize prepares the converter's process-wide state.
	Initialize() error
	// Shutdown releases the converter's process-wide state.
	Shutdown()
	// ConvertSPIRVToWGSL translates a SPIR-V word stream to WGSL source.
	// It is a pure function of the input words.
	ConvertSPIRVToWGSL(words []uint32) (string, error)
}

var (
	converterMu sync.Mutex
	converter   WgslConverter
)

// InitializeWgslConverter installs c as the process-wide SPIR-V -> WGSL
// translator, initializing it first. Replaces (and shuts down) any
// previously installed converter.
func InitializeWgslConverter(c WgslConverter) error {
	if err := c.Initialize(); err != nil {
		return fmt.Errorf("wgsl converter init: %w", err)
	}
	converterMu.Lock()
	defer converterMu.Unlock()
	if converter != nil {
		converter.Shutdown()
	}
	converter = c
	return nil
}

// ShutdownWgslConverter shuts down and uninstalls the process-wide
// converter. Safe to call with none installed.
func ShutdownWgslConverter() {
	converterMu.Lock()
	defer converterMu.Unlock()
	if converter != nil {
		converter.Shutdown()
		converter = nil
	}
}

// ConvertSPIRVToWGSL translates words through the installed converter.
// Module creation paths treat a conversion failure (including no converter
// being installed) as a shader compilation failure.
func ConvertSPIRVToWGSL(words []uint32) (string, error) {
	converterMu.Lock()
	c := converter
	converterMu.Unlock()
	if c == nil {
		return "", fmt.Errorf("no wgsl converter installed")
	}
	return c.ConvertSPIRVToWGSL(words)
}

// WgslModule is the parsed, lowered form of a WGSL shader: naga's
// intermediate representation, ready for a backend code generator.
type WgslModule struct {
	IR *naga.Module
}

// WgslFrontend parses and lowers WGSL source the same way the HAL backends
// do before handing it to a backend-specific code generator (HLSL, GLSL,
// MSL, ...). hal/noop uses it only to validate that the source compiles.
type WgslFrontend struct{}

// Compile parses source to an AST and lowers it to naga IR.
func (WgslFrontend) Compile(source string) (*WgslModule, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("wgsl parse: %w", err)
	}

	irModule, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("wgsl lower: %w", err)
	}

	return &WgslModule{IR: irModule}, nil
}
