package nexus

import (
	"github.com/gogpu/nexus/core"
	"github.com/gogpu/nexus/hal"
	"github.com/gogpu/nexus/shader"
)

// ShaderModule represents a compiled shader module, backed by the device's
// generational resource pool.
type ShaderModule struct {
	id       core.ShaderModuleID
	core     *core.ShaderModule
	device   *Device
	released bool
}

// Reflection returns the module's reflected binding layout, or nil if the
// module was created without SPIR-V reflection data.
func (m *ShaderModule) Reflection() *shader.Reflection { return m.core.Reflection() }

// Label returns the module's debug label.
func (m *ShaderModule) Label() string { return m.core.Label() }

// Release destroys the shader module and frees its pool slot. Programs
// referencing the module keep only its handle value; using them after this
// surfaces as a failed lookup at pipeline-build time.
func (m *ShaderModule) Release() {
	if m.released {
		return
	}
	m.released = true
	m.core.Destroy()
	if m.device != nil {
		_, _ = m.device.core.ShaderModules().Unregister(m.id)
	}
}

// halShaderModule returns the underlying HAL shader module.
func (m *ShaderModule) halShaderModule() hal.ShaderModule {
	if m.core == nil {
		return nil
	}
	return m.core.Raw()
}
