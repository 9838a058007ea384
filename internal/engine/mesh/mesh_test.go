package mesh

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshview/internal/engine/gpu"
	"github.com/Faultbox/meshview/internal/engine/shader"
	"github.com/Faultbox/meshview/internal/engine/texture"
)

// cube returns 8 corner vertices and 12 triangles.
func cube() ([]Vertex, []uint32) {
	var vs []Vertex
	for i := 0; i < 8; i++ {
		p := mgl32.Vec3{float32(i & 1), float32(i >> 1 & 1), float32(i >> 2 & 1)}
		vs = append(vs, Vertex{Position: p, Normal: p.Sub(mgl32.Vec3{0.5, 0.5, 0.5}).Normalize()})
	}
	is := []uint32{
		0, 2, 1, 1, 2, 3, // -z
		4, 5, 6, 5, 7, 6, // +z
		0, 1, 4, 1, 5, 4, // -y
		2, 6, 3, 3, 6, 7, // +y
		0, 4, 2, 2, 4, 6, // -x
		1, 3, 5, 3, 7, 5, // +x
	}
	return vs, is
}

func TestVertexLayout(t *testing.T) {
	assert.Equal(t, int32(56), VertexSize)

	wantOffsets := []uintptr{0, 12, 24, 32, 44}
	wantComponents := []int32{3, 3, 2, 3, 3}
	require.Len(t, Layout, 5)
	for i, attr := range Layout {
		assert.Equal(t, uint32(i), attr.Slot)
		assert.Equal(t, wantOffsets[i], attr.Offset, "slot %d", i)
		assert.Equal(t, wantComponents[i], attr.Components, "slot %d", i)
		assert.Equal(t, VertexSize, attr.Stride)
	}
}

func TestNewUploadsCube(t *testing.T) {
	dev := gpu.NewRecorder()
	vs, is := cube()

	m, err := New(dev, vs, is, nil)
	require.NoError(t, err)

	assert.Equal(t, 8, m.VertexCount())
	assert.Equal(t, 36, m.IndexCount())

	vaos, bufs, _ := dev.Live()
	assert.Equal(t, 1, vaos)
	assert.Equal(t, 2, bufs)

	assert.Equal(t, Layout, dev.Attributes(m.vao))
	assert.Len(t, dev.BufferContents(m.vbo), 8*56)
	assert.Len(t, dev.BufferContents(m.ebo), 36*4)
	assert.Zero(t, dev.BoundVertexArray())

	// Vertex 7 is the (1,1,1) corner: check its packed position.
	vb := dev.BufferContents(m.vbo)[7*56:]
	for k := 0; k < 3; k++ {
		assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(vb[k*4:])))
	}
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(dev.BufferContents(m.ebo)[5*4:]))
	assert.Empty(t, dev.Faults)
}

func TestNewValidation(t *testing.T) {
	vs, is := cube()
	tests := []struct {
		name     string
		vertices []Vertex
		indices  []uint32
		wantErr  error
	}{
		{"no vertices", nil, is, ErrEmptyMesh},
		{"no indices", vs, nil, ErrEmptyMesh},
		{"partial triangle", vs, is[:4], ErrNotTriangles},
		{"index equals vertex count", vs, []uint32{0, 1, 8}, ErrIndexOutOfRange},
		{"index far out", vs[:3], []uint32{0, 1, 2, 0, 2, 1000}, ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := gpu.NewRecorder()
			_, err := New(dev, tt.vertices, tt.indices, nil)
			assert.ErrorIs(t, err, tt.wantErr)

			vaos, bufs, _ := dev.Live()
			assert.Zero(t, vaos+bufs, "nothing allocated on validation failure")
		})
	}
}

func TestNewHandleFailureCleansUp(t *testing.T) {
	dev := gpu.NewRecorder()
	dev.FailNext("buffer", 1)
	vs, is := cube()

	_, err := New(dev, vs, is, nil)
	assert.ErrorIs(t, err, ErrHandleCreation)

	vaos, bufs, _ := dev.Live()
	assert.Zero(t, vaos)
	assert.Zero(t, bufs)
	assert.Empty(t, dev.Faults)
}

func TestSamplerNamesCountPerRole(t *testing.T) {
	texs := []texture.Texture{
		{Handle: 10, Role: texture.RoleDiffuse},
		{Handle: 11, Role: texture.RoleDiffuse},
		{Handle: 12, Role: texture.RoleSpecular},
		{Handle: 13, Role: texture.RoleNormal},
		{Handle: 14, Role: texture.RoleDiffuse},
		{Handle: 15, Role: texture.RoleHeight},
	}
	vs, is := cube()
	m, err := New(gpu.NewRecorder(), vs, is, texs)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"texture_diffuse1",
		"texture_diffuse2",
		"texture_specular1",
		"texture_normal1",
		"texture_diffuse3",
		"texture_height1",
	}, m.SamplerNames())
}

func TestDrawBindsUnitsInOrder(t *testing.T) {
	dev := gpu.NewRecorder()
	texs := []texture.Texture{
		{Handle: 100, Role: texture.RoleDiffuse},
		{Handle: 101, Role: texture.RoleDiffuse},
		{Handle: 102, Role: texture.RoleSpecular},
	}
	vs, is := cube()
	m, err := New(dev, vs, is, texs)
	require.NoError(t, err)

	prog := shader.Attach(dev, 5)
	prog.Use()
	m.Draw(prog)

	require.Len(t, dev.Uniforms, 3)
	for i, want := range []string{"texture_diffuse1", "texture_diffuse2", "texture_specular1"} {
		assert.Equal(t, want, dev.Uniforms[i].Name)
		assert.Equal(t, int32(i), dev.Uniforms[i].Value)
		assert.Equal(t, uint32(5), dev.Uniforms[i].Program)
	}

	require.Len(t, dev.Draws, 1)
	draw := dev.Draws[0]
	assert.Equal(t, int32(36), draw.Count)
	assert.Equal(t, m.vao, draw.VertexArray)
	assert.Equal(t, m.ebo, draw.IndexBuffer)
	assert.Equal(t, map[uint32]uint32{0: 100, 1: 101, 2: 102}, draw.Units)

	assert.Zero(t, dev.ActiveUnit(), "unit 0 is active after draw")
	assert.Zero(t, dev.BoundVertexArray(), "vertex array unbound after draw")
	assert.Empty(t, dev.Faults)
}

func TestDrawWithoutTextures(t *testing.T) {
	dev := gpu.NewRecorder()
	vs, is := cube()
	m, err := New(dev, vs, is, nil)
	require.NoError(t, err)

	prog := shader.Attach(dev, 1)
	prog.Use()
	m.Draw(prog)
	m.Draw(prog)

	assert.Empty(t, dev.Uniforms)
	assert.Len(t, dev.Draws, 2)
}

func TestReleaseIsIdempotent(t *testing.T) {
	dev := gpu.NewRecorder()
	texs := []texture.Texture{{Handle: dev.GenTexture(), Role: texture.RoleDiffuse}}
	vs, is := cube()
	m, err := New(dev, vs, is, texs)
	require.NoError(t, err)

	m.Release()
	m.Release()
	assert.True(t, m.Released())

	vaos, bufs, texCount := dev.Live()
	assert.Zero(t, vaos)
	assert.Zero(t, bufs)
	assert.Equal(t, 1, texCount, "mesh does not own textures")
	assert.Empty(t, dev.Faults)

	prog := shader.Attach(dev, 1)
	prog.Use()
	m.Draw(prog)
	assert.Empty(t, dev.Draws)
}
