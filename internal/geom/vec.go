// Package geom provides the shared geometric value types used across the
// corridor pipeline: 2-D and 3-D vectors, planes, axis-aligned boxes and
// the triangulated mesh produced by the corridor mesher.
//
// All coordinates are in metres. The global frame is right-handed with
// Z pointing up; a cross-section's local plane is XZ with Y along the
// alignment tangent.
package geom

import "math"

// Vec2 represents a 2D point or vector (m)
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec3 represents a 3D point or vector (m)
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product v · w.
func (v Vec3) Dot(w Vec3) float64 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

// Cross returns the cross product v × w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

// Length returns the Euclidean norm of v.
func (v Vec3) Length() float64 { return math.Sqrt(v.Dot(v)) }

// Normalized returns v scaled to unit length. The zero vector is
// returned unchanged so degenerate triangles cannot poison normals
// with NaN.
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Lerp returns the linear interpolation between v and w at parameter t.
func (v Vec3) Lerp(w Vec3, t float64) Vec3 {
	return Vec3{
		v.X + (w.X-v.X)*t,
		v.Y + (w.Y-v.Y)*t,
		v.Z + (w.Z-v.Z)*t,
	}
}

// Add returns v + w.
func (v Vec2) Add(w Vec2) Vec2 { return Vec2{v.X + w.X, v.Y + w.Y} }

// Sub returns v - w.
func (v Vec2) Sub(w Vec2) Vec2 { return Vec2{v.X - w.X, v.Y - w.Y} }

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Dot returns the dot product v · w.
func (v Vec2) Dot(w Vec2) float64 { return v.X*w.X + v.Y*w.Y }

// Cross returns the scalar (z) component of the 2D cross product.
func (v Vec2) Cross(w Vec2) float64 { return v.X*w.Y - v.Y*w.X }

// Length returns the Euclidean norm of v.
func (v Vec2) Length() float64 { return math.Hypot(v.X, v.Y) }

// Normalized returns v scaled to unit length (zero vector unchanged).
func (v Vec2) Normalized() Vec2 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Lerp returns the linear interpolation between v and w at parameter t.
func (v Vec2) Lerp(w Vec2, t float64) Vec2 {
	return Vec2{v.X + (w.X-v.X)*t, v.Y + (w.Y-v.Y)*t}
}

// Plane is an infinite plane defined by an origin point, a unit normal
// and an in-plane up direction. Up is used to orient 2D coordinates of
// planar sections.
type Plane struct {
	Origin Vec3
	Normal Vec3
	Up     Vec3
}

// NewPlane builds a plane with normal and up orthonormalised.
func NewPlane(origin, normal, up Vec3) Plane {
	n := normal.Normalized()
	// Remove the normal component from up, then renormalise.
	u := up.Sub(n.Scale(up.Dot(n))).Normalized()
	if u.Length() == 0 {
		// Up was parallel to the normal; pick any perpendicular.
		u = n.Cross(Vec3{X: 1}).Normalized()
		if u.Length() == 0 {
			u = n.Cross(Vec3{Y: 1}).Normalized()
		}
	}
	return Plane{Origin: origin, Normal: n, Up: u}
}

// SignedDistance returns the signed distance from p to the plane.
func (pl Plane) SignedDistance(p Vec3) float64 {
	return p.Sub(pl.Origin).Dot(pl.Normal)
}

// Project maps a 3D point into the plane's 2D coordinate system
// (right = up × normal, up = Up).
func (pl Plane) Project(p Vec3) Vec2 {
	right := pl.Up.Cross(pl.Normal).Normalized()
	d := p.Sub(pl.Origin)
	return Vec2{X: d.Dot(right), Y: d.Dot(pl.Up)}
}
