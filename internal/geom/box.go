package geom

import "math"

// Box is an axis-aligned bounding box.
type Box struct {
	Min Vec3
	Max Vec3
}

// Box2 is an axis-aligned bounding rectangle in 2D.
type Box2 struct {
	Min Vec2
	Max Vec2
}

// EmptyBox returns a box that extends no points; any Extend makes it valid.
func EmptyBox() Box {
	inf := math.Inf(1)
	return Box{Min: Vec3{inf, inf, inf}, Max: Vec3{-inf, -inf, -inf}}
}

// EmptyBox2 returns an empty 2D box.
func EmptyBox2() Box2 {
	inf := math.Inf(1)
	return Box2{Min: Vec2{inf, inf}, Max: Vec2{-inf, -inf}}
}

// IsEmpty reports whether the box contains no points.
func (b Box) IsEmpty() bool { return b.Min.X > b.Max.X }

// IsEmpty reports whether the box contains no points.
func (b Box2) IsEmpty() bool { return b.Min.X > b.Max.X }

// Extend grows the box to contain p.
func (b *Box) Extend(p Vec3) {
	b.Min.X = math.Min(b.Min.X, p.X)
	b.Min.Y = math.Min(b.Min.Y, p.Y)
	b.Min.Z = math.Min(b.Min.Z, p.Z)
	b.Max.X = math.Max(b.Max.X, p.X)
	b.Max.Y = math.Max(b.Max.Y, p.Y)
	b.Max.Z = math.Max(b.Max.Z, p.Z)
}

// Extend grows the box to contain p.
func (b *Box2) Extend(p Vec2) {
	b.Min.X = math.Min(b.Min.X, p.X)
	b.Min.Y = math.Min(b.Min.Y, p.Y)
	b.Max.X = math.Max(b.Max.X, p.X)
	b.Max.Y = math.Max(b.Max.Y, p.Y)
}

// Center returns the box centre.
func (b Box) Center() Vec3 {
	return Vec3{(b.Min.X + b.Max.X) / 2, (b.Min.Y + b.Max.Y) / 2, (b.Min.Z + b.Max.Z) / 2}
}

// Size returns the box extents along each axis.
func (b Box) Size() Vec3 {
	return Vec3{b.Max.X - b.Min.X, b.Max.Y - b.Min.Y, b.Max.Z - b.Min.Z}
}

// Size returns the box extents along each axis.
func (b Box2) Size() Vec2 {
	return Vec2{b.Max.X - b.Min.X, b.Max.Y - b.Min.Y}
}
