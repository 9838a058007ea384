package viewer

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/meshview/internal/config"
)

// assertVecNear compares per component with an absolute tolerance, so values
// that should be zero may carry float noise.
func assertVecNear(t *testing.T, want, got mgl32.Vec3, delta float64) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, "component %d: got %v want %v", i, got, want)
	}
}

func TestModelMatrix(t *testing.T) {
	tests := []struct {
		name  string
		entry config.ModelEntry
		t     float32
		in    mgl32.Vec3
		want  mgl32.Vec3
	}{
		{"identity", config.ModelEntry{Scale: 1}, 5, mgl32.Vec3{1, 2, 3}, mgl32.Vec3{1, 2, 3}},
		{"translate", config.ModelEntry{Scale: 1, Position: [3]float32{0, 0, 10}}, 0, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{1, 0, 10}},
		{"scale then translate", config.ModelEntry{Scale: 50, Position: [3]float32{0, 0, 10}}, 0, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{50, 0, 10}},
		{"spin quarter turn", config.ModelEntry{Scale: 1, Spin: math.Pi / 2}, 1, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{"zero scale is unit", config.ModelEntry{}, 0, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mgl32.TransformCoordinate(tt.in, ModelMatrix(tt.entry, tt.t))
			assertVecNear(t, tt.want, got, 1e-5)
		})
	}
}

func TestLightPosition(t *testing.T) {
	base := mgl32.Vec3{0, 0, 10}
	assert.Equal(t, base, LightPosition(base, 0))

	got := LightPosition(base, math.Pi/2)
	assertVecNear(t, mgl32.Vec3{-10, 0, 0}, got, 1e-4)
	assert.InDelta(t, 10, got.Len(), 1e-4, "orbit keeps the radius")
}

func TestClockLimitsFrameRate(t *testing.T) {
	now := time.Unix(0, 0)
	var slept []time.Duration
	c := newClock(100, func() time.Time { return now }, func(d time.Duration) {
		slept = append(slept, d)
		now = now.Add(d)
	})
	assert.Equal(t, 10*time.Millisecond, c.Period())

	now = now.Add(4 * time.Millisecond)
	dt := c.Tick()
	assert.Equal(t, []time.Duration{6 * time.Millisecond}, slept)
	assert.InDelta(t, 0.010, dt, 1e-6)

	now = now.Add(25 * time.Millisecond)
	dt = c.Tick()
	assert.Len(t, slept, 1, "slow frames do not sleep")
	assert.InDelta(t, 0.025, dt, 1e-6)
	assert.InDelta(t, 0.035, c.Elapsed(), 1e-6)
}

func TestClockUnlimited(t *testing.T) {
	now := time.Unix(0, 0)
	c := newClock(0, func() time.Time { return now }, func(time.Duration) { t.Fatal("unlimited clock slept") })
	assert.Zero(t, c.Period())

	now = now.Add(time.Millisecond)
	assert.InDelta(t, 0.001, c.Tick(), 1e-6)
}
