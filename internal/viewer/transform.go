package viewer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/internal/config"
)

// ModelMatrix places e at time t: translate, then uniform scale, then spin about Y.
func ModelMatrix(e config.ModelEntry, t float32) mgl32.Mat4 {
	m := mgl32.Translate3D(e.Position[0], e.Position[1], e.Position[2])
	if e.Scale != 0 && e.Scale != 1 {
		m = m.Mul4(mgl32.Scale3D(e.Scale, e.Scale, e.Scale))
	}
	if e.Spin != 0 {
		m = m.Mul4(mgl32.HomogRotate3DY(e.Spin * t))
	}
	return m
}

// LightPosition rotates the light about the Y axis against the spin of the
// model it lights, so the lit side sweeps across the surface.
func LightPosition(base mgl32.Vec3, angle float32) mgl32.Vec3 {
	if angle == 0 {
		return base
	}
	return mgl32.HomogRotate3DY(-angle).Mul4x1(base.Vec4(1)).Vec3()
}
