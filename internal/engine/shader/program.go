package shader

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/internal/engine/gpu"
)

// Program is a linked shader program with a uniform location cache.
type Program struct {
	dev       gpu.Device
	id        uint32
	locations map[string]int32
}

// Attach wraps an already linked program id.
func Attach(dev gpu.Device, id uint32) *Program {
	return &Program{dev: dev, id: id, locations: make(map[string]int32)}
}

// ID returns the program object name.
func (p *Program) ID() uint32 {
	return p.id
}

// Use makes the program current.
func (p *Program) Use() {
	p.dev.UseProgram(p.id)
}

// Location returns the cached uniform location; -1 if the uniform is inactive.
func (p *Program) Location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := p.dev.UniformLocation(p.id, name)
	p.locations[name] = loc
	return loc
}

// SetInt sets an int or sampler uniform. Inactive uniforms are ignored.
func (p *Program) SetInt(name string, v int32) {
	if loc := p.Location(name); loc >= 0 {
		p.dev.Uniform1i(loc, v)
	}
}

func (p *Program) SetFloat(name string, v float32) {
	if loc := p.Location(name); loc >= 0 {
		p.dev.Uniform1f(loc, v)
	}
}

func (p *Program) SetVec3(name string, v mgl32.Vec3) {
	if loc := p.Location(name); loc >= 0 {
		p.dev.Uniform3f(loc, v)
	}
}

func (p *Program) SetMat4(name string, m mgl32.Mat4) {
	if loc := p.Location(name); loc >= 0 {
		p.dev.UniformMatrix4f(loc, m)
	}
}

// Delete frees the program. The Program must not be used afterwards.
func (p *Program) Delete() {
	if p.id != 0 {
		p.dev.DeleteProgram(p.id)
		p.id = 0
	}
}
