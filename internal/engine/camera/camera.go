// Package camera provides camera implementations for 3D rendering.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Clip planes shared by every camera.
const (
	Near float32 = 0.1
	Far  float32 = 100.0
)

// Camera is what the renderer needs from any camera.
type Camera interface {
	ViewMatrix() mgl32.Mat4
	Projection(aspect float32) mgl32.Mat4
	Position() mgl32.Vec3
}

// Movement is an abstract keyboard direction, independent of the window system.
type Movement int

const (
	Forward Movement = iota
	Backward
	Left
	Right
	Up
	Down
)

func (m Movement) String() string {
	switch m {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return "unknown"
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}
