package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestRounded(t *testing.T) {
	m := NewMesh([]Triangle{{
		mgl64.Vec3{0.04, 1.96, -0.05},
		mgl64.Vec3{1.111, 2.25, 3.349},
		mgl64.Vec3{0, 0, 0},
	}})
	rounded := m.Rounded()

	want := Triangle{
		mgl64.Vec3{0.0, 2.0, -0.1},
		mgl64.Vec3{1.1, 2.3, 3.3},
		mgl64.Vec3{0, 0, 0},
	}
	for c := 0; c < 3; c++ {
		for axis := 0; axis < 3; axis++ {
			got := rounded.Triangles[0][c][axis]
			if diff := got - want[c][axis]; diff > 1e-12 || diff < -1e-12 {
				t.Errorf("corner %d axis %d = %v, want %v", c, axis, got, want[c][axis])
			}
		}
	}
	// The source mesh is untouched.
	if m.Triangles[0][0].X() != 0.04 {
		t.Error("Rounded mutated the source mesh")
	}
}
