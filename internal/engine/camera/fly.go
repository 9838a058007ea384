package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Fly camera defaults.
const (
	DefaultYaw         float32 = -90
	DefaultPitch       float32 = 0
	DefaultSpeed       float32 = 2.5
	DefaultSensitivity float32 = 0.1
	DefaultZoom        float32 = 45

	MaxPitch float32 = 89
	MinZoom  float32 = 1
	MaxZoom  float32 = 45
)

// FlyCamera is a free-look camera driven by Euler angles in degrees.
type FlyCamera struct {
	Pos     mgl32.Vec3
	WorldUp mgl32.Vec3

	Yaw   float32
	Pitch float32

	Speed       float32
	Sensitivity float32
	Zoom        float32 // vertical field of view

	front, right, up mgl32.Vec3
}

// NewFlyCamera creates a camera at pos looking down -Z.
func NewFlyCamera(pos mgl32.Vec3) *FlyCamera {
	c := &FlyCamera{
		Pos:         pos,
		WorldUp:     mgl32.Vec3{0, 1, 0},
		Yaw:         DefaultYaw,
		Pitch:       DefaultPitch,
		Speed:       DefaultSpeed,
		Sensitivity: DefaultSensitivity,
		Zoom:        DefaultZoom,
	}
	c.updateVectors()
	return c
}

// SetAngles sets yaw and pitch, clamping pitch, and recomputes the basis.
func (c *FlyCamera) SetAngles(yaw, pitch float32) {
	c.Yaw = yaw
	c.Pitch = clamp(pitch, -MaxPitch, MaxPitch)
	c.updateVectors()
}

func (c *FlyCamera) Position() mgl32.Vec3 { return c.Pos }

// Front returns the unit view direction.
func (c *FlyCamera) Front() mgl32.Vec3 { return c.front }

// RightVector returns the unit right direction.
func (c *FlyCamera) RightVector() mgl32.Vec3 { return c.right }

func (c *FlyCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Pos, c.Pos.Add(c.front), c.up)
}

func (c *FlyCamera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Zoom), aspect, Near, Far)
}

// ProcessKeyboard moves the camera along its basis for dt seconds.
func (c *FlyCamera) ProcessKeyboard(dir Movement, dt float32) {
	v := c.Speed * dt
	switch dir {
	case Forward:
		c.Pos = c.Pos.Add(c.front.Mul(v))
	case Backward:
		c.Pos = c.Pos.Sub(c.front.Mul(v))
	case Left:
		c.Pos = c.Pos.Sub(c.right.Mul(v))
	case Right:
		c.Pos = c.Pos.Add(c.right.Mul(v))
	case Up:
		c.Pos = c.Pos.Add(c.WorldUp.Mul(v))
	case Down:
		c.Pos = c.Pos.Sub(c.WorldUp.Mul(v))
	}
}

// ProcessMouseMovement turns the camera by a mouse offset. Positive dy looks up.
func (c *FlyCamera) ProcessMouseMovement(dx, dy float32, constrainPitch bool) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch += dy * c.Sensitivity
	if constrainPitch {
		c.Pitch = clamp(c.Pitch, -MaxPitch, MaxPitch)
	}
	c.updateVectors()
}

// ProcessMouseScroll narrows the field of view on positive dy.
func (c *FlyCamera) ProcessMouseScroll(dy float32) {
	c.Zoom = clamp(c.Zoom-dy, MinZoom, MaxZoom)
}

func (c *FlyCamera) updateVectors() {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	c.front = mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()
	c.right = c.front.Cross(c.WorldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()
}
