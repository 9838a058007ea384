// Package mesh uploads indexed triangle geometry and draws it with its textures.
package mesh

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Faultbox/meshview/internal/engine/gpu"
	"github.com/Faultbox/meshview/internal/engine/texture"
)

var (
	ErrEmptyMesh       = errors.New("mesh has no vertices or indices")
	ErrNotTriangles    = errors.New("index count is not a multiple of 3")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrHandleCreation  = errors.New("device returned no object handle")
)

// Sampler receives the texture unit chosen for each sampler uniform.
type Sampler interface {
	SetInt(name string, value int32)
}

// Mesh is geometry resident on the device plus the textures it samples.
// Textures are borrowed; the Mesh never deletes them.
type Mesh struct {
	dev gpu.Device

	vertices []Vertex
	indices  []uint32
	textures []texture.Texture
	samplers []string

	vao, vbo, ebo uint32
	released      bool
}

// New validates the geometry and uploads it. On error nothing stays allocated.
func New(dev gpu.Device, vertices []Vertex, indices []uint32, textures []texture.Texture) (*Mesh, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return nil, ErrEmptyMesh
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrNotTriangles, len(indices))
	}
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("%w: indices[%d] = %d with %d vertices", ErrIndexOutOfRange, i, idx, len(vertices))
		}
	}

	m := &Mesh{
		dev:      dev,
		vertices: vertices,
		indices:  indices,
		textures: textures,
		samplers: samplerNames(textures),
	}
	if err := m.setup(); err != nil {
		return nil, err
	}
	return m, nil
}

// samplerNames numbers textures per role from 1 in list order.
func samplerNames(textures []texture.Texture) []string {
	counts := make(map[texture.Role]int)
	names := make([]string, len(textures))
	for i, t := range textures {
		counts[t.Role]++
		names[i] = t.Role.Uniform() + strconv.Itoa(counts[t.Role])
	}
	return names
}

func (m *Mesh) setup() error {
	m.vao = m.dev.GenVertexArray()
	m.vbo = m.dev.GenBuffer()
	m.ebo = m.dev.GenBuffer()
	if m.vao == 0 || m.vbo == 0 || m.ebo == 0 {
		m.deleteHandles()
		return fmt.Errorf("%w: vao=%d vbo=%d ebo=%d", ErrHandleCreation, m.vao, m.vbo, m.ebo)
	}

	m.dev.BindVertexArray(m.vao)

	m.dev.BindBuffer(gpu.ArrayBuffer, m.vbo)
	m.dev.BufferData(gpu.ArrayBuffer, vertexBytes(m.vertices))

	m.dev.BindBuffer(gpu.ElementArrayBuffer, m.ebo)
	m.dev.BufferData(gpu.ElementArrayBuffer, indexBytes(m.indices))

	for _, attr := range Layout {
		m.dev.VertexAttribPointer(attr)
	}

	m.dev.BindVertexArray(0)
	return nil
}

func (m *Mesh) deleteHandles() {
	if m.vao != 0 {
		m.dev.DeleteVertexArray(m.vao)
	}
	if m.vbo != 0 {
		m.dev.DeleteBuffer(m.vbo)
	}
	if m.ebo != 0 {
		m.dev.DeleteBuffer(m.ebo)
	}
	m.vao, m.vbo, m.ebo = 0, 0, 0
}

// Draw binds texture i to unit i, points its sampler uniform at that unit and
// issues one indexed draw. The sampler's program must be in use.
func (m *Mesh) Draw(s Sampler) {
	if m.released {
		return
	}

	for i, tex := range m.textures {
		m.dev.ActiveTexture(uint32(i))
		s.SetInt(m.samplers[i], int32(i))
		m.dev.BindTexture(tex.Handle)
	}

	m.dev.BindVertexArray(m.vao)
	m.dev.DrawTriangles(int32(len(m.indices)))
	m.dev.BindVertexArray(0)

	m.dev.ActiveTexture(0)
}

// Release frees the vertex array and buffers. Later calls do nothing.
func (m *Mesh) Release() {
	if m.released {
		return
	}
	m.deleteHandles()
	m.released = true
}

// SamplerNames returns the uniform names Draw sets, one per texture.
func (m *Mesh) SamplerNames() []string { return m.samplers }

// Vertices returns the vertex data. Callers must not modify it.
func (m *Mesh) Vertices() []Vertex { return m.vertices }

// Indices returns the triangle list. Callers must not modify it.
func (m *Mesh) Indices() []uint32 { return m.indices }

// Textures returns the textures in draw order. Callers must not modify it.
func (m *Mesh) Textures() []texture.Texture { return m.textures }

func (m *Mesh) VertexCount() int { return len(m.vertices) }
func (m *Mesh) IndexCount() int  { return len(m.indices) }

// Released reports whether Release has run.
func (m *Mesh) Released() bool { return m.released }
