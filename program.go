package nexus

import (
	"fmt"

	"github.com/gogpu/nexus/core"
	"github.com/gogpu/nexus/pipeline"
	"github.com/gogpu/nexus/shader"
)

// Program is an ordered set of shader stages (a vertex+fragment pair, or a
// single compute stage) whose bind group layouts have been merged into one
// layout a CommandList resolves pipelines against.
type Program struct {
	id       core.ProgramID
	core     *core.Program
	device   *Device
	released bool
}

// ref identifies this program for RenderPipelineCacheKey/LayoutCacheKey
// purposes; the pipeline package can't reference core.ProgramID directly.
func (p *Program) ref() pipeline.ProgramRef {
	return pipeline.ProgramRef(uint64(p.id.Raw()))
}

// mergedLayout returns the program's cross-stage merged bind group layout.
func (p *Program) mergedLayout() *shader.MergedLayout { return p.core.MergedLayout() }

// visibility returns the union of shader stages this program's modules
// occupy, used as every merged entry's Visibility since reflection doesn't
// track per-stage visibility once layouts are merged.
func (p *Program) visibility() shaderStages {
	var v shaderStages
	for _, m := range p.Stages() {
		if r := m.Reflection(); r != nil {
			v |= stageVisibility(r.Stage)
		}
	}
	return v
}

// Stages resolves the program's stage handles, in creation order. A module
// released since the program was created is omitted; a draw needing it
// fails pipeline construction rather than reviving the module.
func (p *Program) Stages() []*ShaderModule {
	ids := p.core.StageIDs()
	stages := make([]*ShaderModule, 0, len(ids))
	for _, id := range ids {
		if cs, err := p.device.core.ShaderModules().Get(id); err == nil {
			stages = append(stages, &ShaderModule{id: id, core: cs, device: p.device})
		}
	}
	return stages
}

// Label returns the program's debug label.
func (p *Program) Label() string { return p.core.Label() }

// Release marks the program as no longer in use. Programs hold no HAL
// resource of their own, so this only frees the device's registry slot.
func (p *Program) Release() {
	if p.released {
		return
	}
	p.released = true
	if p.device != nil {
		_, _ = p.device.core.Programs().Unregister(p.id)
	}
}

// CreateProgram merges the bind group layouts of the given shader stages
// (vertex+fragment, or a single compute stage) into one program-wide
// layout. Returns an error if two stages declare the same binding with
// incompatible types.
func (d *Device) CreateProgram(label string, modules ...*ShaderModule) (*Program, error) {
	if d.released {
		return nil, ErrReleased
	}
	if len(modules) == 0 {
		return nil, fmt.Errorf("nexus: program requires at least one shader module")
	}

	ids := make([]core.ShaderModuleID, 0, len(modules))
	for _, m := range modules {
		if m == nil {
			return nil, fmt.Errorf("nexus: program module is nil")
		}
		ids = append(ids, m.id)
	}

	progID, err := d.core.CreateProgram(label, ids)
	if err != nil {
		return nil, err
	}
	coreProg, err := d.core.Programs().Get(progID)
	if err != nil {
		return nil, err
	}

	return &Program{id: progID, core: coreProg, device: d}, nil
}
