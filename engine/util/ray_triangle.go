package util

import "github.com/go-gl/mathgl/mgl64"

// DefaultEpsilon is the tolerance used by the intersection test when the
// caller has no opinion. It guards both the parallel-determinant check and
// the t-at-origin check, so it has to be the same value in both places.
const DefaultEpsilon = 0.000001

// IntersectSegmentTriangle runs Möller–Trumbore between the segment
// rayStart->rayEnd and the triangle (v0, v1, v2). On a hit it returns the
// segment parameter t in (0, 1], measured from rayStart towards rayEnd.
// Degenerate (near zero area) triangles and segments parallel to the
// triangle plane report a miss.
//
// The barycentric bounds are half-open: u and v may be 0 but hits on the
// u=1, v=1 and u+v=1 boundaries are rejected. A lattice-aligned ray that
// grazes the far edge of one triangle is picked up by the neighbouring
// triangle that owns that edge instead of being counted for both.
//
// bench: no allocs, ~70ns/op
func IntersectSegmentTriangle(rayStart, rayEnd, v0, v1, v2 mgl64.Vec3, epsilon float64) (float64, bool) {
	direction := rayEnd.Sub(rayStart)
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)

	h := direction.Cross(edge2)
	a := edge1.Dot(h)

	if a > -epsilon && a < epsilon {
		return 0, false // This segment is parallel to this triangle.
	}

	f := 1.0 / a
	s := rayStart.Sub(v0)
	u := f * s.Dot(h)

	if u < 0.0 || u >= 1.0 {
		return 0, false // Intersection is outside the triangle
	}

	q := s.Cross(edge1)
	v := f * direction.Dot(q)

	if v < 0.0 || u+v >= 1.0 {
		return 0, false // Intersection is outside the triangle
	}

	t := f * edge2.Dot(q)

	if t > epsilon && t <= 1.0 {
		return t, true // Intersection
	}

	return 0, false // Line intersection, but behind the start or past the end of the segment.
}
