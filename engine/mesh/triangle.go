package mesh

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/MattNet/minetest-from-models/engine/util"
)

// A Triangle is three corners of a surface patch in model space.
// Triangles are value types and are never mutated after loading.
type Triangle [3]mgl64.Vec3

// A Mesh is an unordered triangle soup. Triangle order carries no meaning;
// the voxelizer treats the slice as a plain set.
type Mesh struct {
	Triangles []Triangle
}

func NewMesh(triangles []Triangle) *Mesh {
	return &Mesh{Triangles: triangles}
}

// Rounded returns a copy of the mesh with every vertex coordinate rounded
// to one decimal place. Snapping near-duplicate coordinates onto each other
// cuts down on borderline determinant cases in the intersection test, at
// the cost of up to 0.05 units of model fidelity per axis.
func (m *Mesh) Rounded() *Mesh {
	rounded := make([]Triangle, len(m.Triangles))
	for i, tri := range m.Triangles {
		for c := 0; c < 3; c++ {
			rounded[i][c] = mgl64.Vec3{
				util.RoundTo(tri[c].X(), 1),
				util.RoundTo(tri[c].Y(), 1),
				util.RoundTo(tri[c].Z(), 1),
			}
		}
	}
	return &Mesh{Triangles: rounded}
}

func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}
