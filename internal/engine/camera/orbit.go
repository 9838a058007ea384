package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center mgl32.Vec3

	// Spherical coordinates
	Distance  float32
	RotationX float32 // pitch, radians
	RotationY float32 // yaw, radians

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32
	Fov             float32 // degrees
}

// NewOrbitCamera creates an orbit camera suited to models a few units across.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        5,
		RotationX:       0.5,
		MinDistance:     0.5,
		MaxDistance:     80,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		Fov:             DefaultZoom,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	rx, ry := float64(c.RotationX), float64(c.RotationY)
	offset := mgl32.Vec3{
		float32(math.Cos(rx) * math.Sin(ry)),
		float32(math.Sin(rx)),
		float32(math.Cos(rx) * math.Cos(ry)),
	}
	return c.Center.Add(offset.Mul(c.Distance))
}

func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Center, mgl32.Vec3{0, 1, 0})
}

func (c *OrbitCamera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), aspect, Near, Far)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(dx, dy float32) {
	c.RotationY -= dx * c.DragSensitivity
	c.RotationX = clamp(c.RotationX+dy*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom moves toward the center on positive delta, proportionally to distance.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance = clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// HandleMovement pans the center point relative to the current yaw.
func (c *OrbitCamera) HandleMovement(forward, right, up float32) {
	speed := c.Distance * 0.01

	sin, cos := float32(math.Sin(float64(c.RotationY))), float32(math.Cos(float64(c.RotationY)))
	c.Center[0] += (-sin*forward + cos*right) * speed
	c.Center[2] += (-cos*forward - sin*right) * speed
	c.Center[1] += up * speed
}

// FitToBounds centers on the box and backs off far enough to see all of it.
func (c *OrbitCamera) FitToBounds(lo, hi mgl32.Vec3) {
	c.Center = lo.Add(hi).Mul(0.5)

	radius := hi.Sub(lo).Len() / 2
	half := mgl32.DegToRad(c.Fov) / 2
	c.Distance = clamp(radius/float32(math.Sin(float64(half))), c.MinDistance, c.MaxDistance)

	c.RotationX = 0.4
	c.RotationY = 0
}
