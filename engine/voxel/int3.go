package voxel

import "github.com/go-gl/mathgl/mgl64"

type Int3 struct {
	X, Y, Z int32
}

func (i Int3) Add(other Int3) Int3 {
	return Int3{i.X + other.X, i.Y + other.Y, i.Z + other.Z}
}

func (i Int3) Sub(other Int3) Int3 {
	return Int3{i.X - other.X, i.Y - other.Y, i.Z - other.Z}
}

func (i Int3) Mul(factor int32) Int3 {
	i.X *= factor
	i.Y *= factor
	i.Z *= factor
	return i
}

func (i Int3) ToVec3() mgl64.Vec3 {
	return mgl64.Vec3{float64(i.X), float64(i.Y), float64(i.Z)}
}

func ManhattanDistance3(a, b Int3) int32 {
	return Abs(a.X-b.X) + Abs(a.Y-b.Y) + Abs(a.Z-b.Z)
}

func Abs(i int32) int32 {
	if i < 0 {
		return -i
	}
	return i
}
