package model

import "math"

// Vec3 представляет вектор или координаты в игровом мире.
// Value type, передаётся по значению (immutable).
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// NewVec3 создаёт Vec3 с указанными компонентами.
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add возвращает сумму векторов.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub возвращает разность векторов.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale умножает все компоненты на k.
func (v Vec3) Scale(k float64) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// Horizontal возвращает копию вектора с обнулённой Z компонентой.
func (v Vec3) Horizontal() Vec3 {
	v.Z = 0
	return v
}

// IsZero reports whether all components are exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// LengthSquared возвращает квадрат длины (без sqrt для hot path).
func (v Vec3) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Normalized returns the unit vector with the same direction.
// Zero vector stays zero.
func (v Vec3) Normalized() Vec3 {
	l := v.LengthSquared()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / math.Sqrt(l))
}

// DefaultFacing is used for objects that were never given a direction.
var DefaultFacing = Vec3{X: 0, Y: 1, Z: 0}

// Location — позиция объекта и направление взгляда.
type Location struct {
	Pos    Vec3
	Facing Vec3
}

// NewLocation создаёт Location. Нулевое направление заменяется DefaultFacing.
func NewLocation(pos, facing Vec3) Location {
	if facing.IsZero() {
		facing = DefaultFacing
	}
	return Location{Pos: pos, Facing: facing.Normalized()}
}

// WithPosition возвращает новый Location с обновлённой позицией (immutable pattern).
func (l Location) WithPosition(pos Vec3) Location {
	l.Pos = pos
	return l
}

// WithFacing возвращает новый Location с обновлённым направлением (immutable pattern).
// Zero facing keeps the previous direction.
func (l Location) WithFacing(facing Vec3) Location {
	if facing.IsZero() {
		return l
	}
	l.Facing = facing.Normalized()
	return l
}

// DistanceSquared возвращает квадрат расстояния до другой точки.
func (l Location) DistanceSquared(other Location) float64 {
	return l.Pos.Sub(other.Pos).LengthSquared()
}
