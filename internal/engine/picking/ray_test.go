package picking

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func near(a, b mgl32.Vec3) bool {
	for i := range a {
		if mgl32.Abs(a[i]-b[i]) > 1e-4 {
			return false
		}
	}
	return true
}

func TestIntersectBox(t *testing.T) {
	lo, hi := mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}

	tests := []struct {
		name  string
		ray   Ray
		hit   bool
		wantT float32
	}{
		{"front", Ray{mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -1}}, true, 4},
		{"inside", Ray{mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}}, true, 1},
		{"behind", Ray{mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 1}}, false, 0},
		{"miss", Ray{mgl32.Vec3{3, 0, 5}, mgl32.Vec3{0, 0, -1}}, false, 0},
		{"parallel outside", Ray{mgl32.Vec3{0, 2, 5}, mgl32.Vec3{0, 0, -1}}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectBox(lo, hi)
			if hit != tt.hit {
				t.Fatalf("hit = %v, want %v", hit, tt.hit)
			}
			if hit && !mgl32.FloatEqual(got, tt.wantT) {
				t.Errorf("t = %v, want %v", got, tt.wantT)
			}
		})
	}
}

func TestIntersectPlaneY(t *testing.T) {
	r := Ray{Origin: mgl32.Vec3{1, 10, 2}, Direction: mgl32.Vec3{0, -1, 0}}
	p, ok := r.IntersectPlaneY(0)
	if !ok {
		t.Fatal("expected intersection")
	}
	if !near(p, mgl32.Vec3{1, 0, 2}) {
		t.Errorf("point = %v", p)
	}

	if _, ok := r.IntersectPlaneY(20); ok {
		t.Error("plane behind the origin should not hit")
	}
}

func TestScreenToRayCenter(t *testing.T) {
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(45), 1, 0.1, 100)
	inv := proj.Mul4(view).Inv()

	r := ScreenToRay(400, 400, 800, 800, inv)
	if !near(r.Direction, mgl32.Vec3{0, 0, -1}) {
		t.Errorf("direction = %v", r.Direction)
	}
	if _, hit := r.IntersectBox(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}); !hit {
		t.Error("center ray should hit the origin box")
	}
}
