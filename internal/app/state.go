package app

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/engine/camera"
	"github.com/Faultbox/meshview/internal/viewer"
)

// State is everything the loop mutates between frames.
type State struct {
	Fly    *camera.FlyCamera
	Orbit  *camera.OrbitCamera
	Active camera.Camera

	Clock *viewer.Clock
	DT    float32
	Time  float32

	// MouseCaptured mirrors the window's relative mouse mode; motion only
	// steers the camera while it is on.
	MouseCaptured bool
	Running       bool

	// CaptureRequested defers a screenshot until the frame has been drawn.
	CaptureRequested bool
}

func newState(cfg *config.Config) *State {
	cc := cfg.Camera
	fly := camera.NewFlyCamera(mgl32.Vec3(cc.Position))
	fly.SetAngles(cc.Yaw, cc.Pitch)
	if cc.Speed > 0 {
		fly.Speed = cc.Speed
	}
	if cc.Sensitivity > 0 {
		fly.Sensitivity = cc.Sensitivity
	}
	if cc.Zoom > 0 {
		fly.Zoom = max(camera.MinZoom, min(cc.Zoom, camera.MaxZoom))
	}

	orbit := camera.NewOrbitCamera()
	orbit.Fov = fly.Zoom

	s := &State{
		Fly:           fly,
		Orbit:         orbit,
		Active:        fly,
		Clock:         viewer.NewClock(cfg.Window.FPSLimit),
		MouseCaptured: true,
		Running:       true,
	}
	if cc.Mode == config.CameraOrbit {
		s.Active = orbit
	}
	return s
}

// toggleCamera switches between the fly and orbit cameras.
func (s *State) toggleCamera() {
	if s.Active == camera.Camera(s.Fly) {
		s.Active = s.Orbit
		return
	}
	s.Active = s.Fly
}
