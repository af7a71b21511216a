package voxel

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/MattNet/minetest-from-models/engine/mesh"
	"github.com/MattNet/minetest-from-models/engine/util"
)

// Bounds is the axis-aligned box enclosing the model, expanded by one
// lattice step on every side. The expansion guarantees that a column's ray
// endpoints lie strictly outside the model, so no surface crossing can
// coincide with a ray endpoint. Computed once, read-only afterwards.
type Bounds struct {
	Min, Max mgl64.Vec3
}

// ComputeBounds scans every vertex once and expands each axis extreme
// outward by step. An empty mesh yields the zero Bounds.
func ComputeBounds(m *mesh.Mesh, step float64) Bounds {
	if m.TriangleCount() == 0 {
		return Bounds{}
	}
	min := m.Triangles[0][0]
	max := m.Triangles[0][0]
	for _, tri := range m.Triangles {
		for _, v := range tri {
			for axis := 0; axis < 3; axis++ {
				if v[axis] < min[axis] {
					min[axis] = v[axis]
				}
				if v[axis] > max[axis] {
					max[axis] = v[axis]
				}
			}
		}
	}
	expand := mgl64.Vec3{step, step, step}
	return Bounds{Min: min.Sub(expand), Max: max.Add(expand)}
}

func (b Bounds) Contains(p mgl64.Vec3) bool {
	return util.InRange(p.X(), b.Min.X(), b.Max.X()) &&
		util.InRange(p.Y(), b.Min.Y(), b.Max.Y()) &&
		util.InRange(p.Z(), b.Min.Z(), b.Max.Z())
}

func (b Bounds) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}
