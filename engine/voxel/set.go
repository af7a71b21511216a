package voxel

import "sort"

// A Set is a sparse collection of occupied cells. Membership only, no
// per-voxel payload; memory scales with occupied cells, not with the
// volume of the scanned box. Inserting a member twice is a no-op.
//
// A Set is not safe for concurrent mutation; the voxelizer merges worker
// results into it under its own lock.
type Set struct {
	members map[Int3]struct{}
}

func NewSet() *Set {
	return &Set{members: make(map[Int3]struct{})}
}

func (s *Set) Add(p Int3) {
	s.members[p] = struct{}{}
}

func (s *Set) Contains(p Int3) bool {
	_, ok := s.members[p]
	return ok
}

func (s *Set) Len() int {
	return len(s.members)
}

// Members returns all occupied cells sorted by X, then Y, then Z, so
// serializer output and test failures are deterministic.
func (s *Set) Members() []Int3 {
	result := make([]Int3, 0, len(s.members))
	for p := range s.members {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
	return result
}

// Bounds returns the inclusive min and max corners over all members.
// ok is false for an empty set.
func (s *Set) Bounds() (min, max Int3, ok bool) {
	first := true
	for p := range s.members {
		if first {
			min, max = p, p
			first = false
			continue
		}
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}
	return min, max, !first
}
