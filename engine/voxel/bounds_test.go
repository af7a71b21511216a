package voxel

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/MattNet/minetest-from-models/engine/mesh"
)

func TestComputeBoundsExpandsByOneStep(t *testing.T) {
	m := mesh.NewMesh([]mesh.Triangle{{
		mgl64.Vec3{0, 0, 0},
		mgl64.Vec3{2, 0, 1},
		mgl64.Vec3{0, 3, -1},
	}})
	bounds := ComputeBounds(m, 0.5)
	wantMin := mgl64.Vec3{-0.5, -0.5, -1.5}
	wantMax := mgl64.Vec3{2.5, 3.5, 1.5}
	if bounds.Min != wantMin {
		t.Errorf("Min = %v, want %v", bounds.Min, wantMin)
	}
	if bounds.Max != wantMax {
		t.Errorf("Max = %v, want %v", bounds.Max, wantMax)
	}
	// Every vertex lies strictly inside the expanded box.
	for _, tri := range m.Triangles {
		for _, v := range tri {
			if !bounds.Contains(v) {
				t.Errorf("vertex %v outside bounds", v)
			}
		}
	}
}

func TestComputeBoundsEmptyMesh(t *testing.T) {
	bounds := ComputeBounds(mesh.NewMesh(nil), 1)
	if bounds.Min != (mgl64.Vec3{}) || bounds.Max != (mgl64.Vec3{}) {
		t.Errorf("expected zero bounds for an empty mesh, got %v..%v", bounds.Min, bounds.Max)
	}
}
