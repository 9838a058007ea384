package shader

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshview/internal/engine/gpu"
)

func TestProgramSetters(t *testing.T) {
	dev := gpu.NewRecorder()
	p := Attach(dev, 3)
	p.Use()
	assert.Equal(t, uint32(3), dev.CurrentProgram())

	p.SetInt("texture_diffuse1", 2)
	p.SetFloat("shininess", 32)
	p.SetVec3("sourceLightPos", mgl32.Vec3{0, 0, 10})
	p.SetMat4("model", mgl32.Translate3D(1, 2, 3))

	call, ok := dev.LastUniform("texture_diffuse1")
	require.True(t, ok)
	assert.Equal(t, int32(2), call.Value)
	assert.Equal(t, uint32(3), call.Program)

	call, _ = dev.LastUniform("shininess")
	assert.Equal(t, []float32{32}, call.Floats)

	call, _ = dev.LastUniform("sourceLightPos")
	assert.Equal(t, []float32{0, 0, 10}, call.Floats)

	call, _ = dev.LastUniform("model")
	require.Len(t, call.Floats, 16)
	assert.Equal(t, []float32{1, 2, 3}, call.Floats[12:15])

	assert.Empty(t, dev.Faults)
}

func TestProgramCachesLocations(t *testing.T) {
	dev := gpu.NewRecorder()
	p := Attach(dev, 1)
	p.Use()

	first := p.Location("view")
	p.SetMat4("view", mgl32.Ident4())
	p.SetMat4("view", mgl32.Ident4())
	assert.Equal(t, first, p.Location("view"))
	assert.Len(t, p.locations, 1)
}

func TestProgramUniformWithoutUse(t *testing.T) {
	dev := gpu.NewRecorder()
	a := Attach(dev, 1)
	b := Attach(dev, 2)

	a.Use()
	b.SetInt("texture_diffuse1", 0)
	assert.Len(t, dev.Faults, 1)
}

func TestProgramDelete(t *testing.T) {
	dev := gpu.NewRecorder()
	p := Attach(dev, 9)
	p.Use()

	p.Delete()
	p.Delete()
	assert.Equal(t, []uint32{9}, dev.DeletedPrograms)
	assert.Zero(t, p.ID())
	assert.Zero(t, dev.CurrentProgram())
}
