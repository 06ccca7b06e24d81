// Package geom provides the geometric value types used by the aircraft
// model: points, affine transforms built on sdfx matrices, projection
// planes and a few plane helpers.
package geom

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Tolerance is the default absolute tolerance for geometric comparisons.
const Tolerance = 1e-10

// Point is a position or direction in 3D space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// P is shorthand for Point{x, y, z}.
func P(x, y, z float64) Point {
	return Point{X: x, Y: y, Z: z}
}

// FromVec converts an sdfx vector.
func FromVec(v v3.Vec) Point {
	return Point{X: v.X, Y: v.Y, Z: v.Z}
}

// Vec converts p to an sdfx vector.
func (p Point) Vec() v3.Vec {
	return v3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return FromVec(p.Vec().Add(q.Vec()))
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return FromVec(p.Vec().Sub(q.Vec()))
}

// Scale returns p * s.
func (p Point) Scale(s float64) Point {
	return FromVec(p.Vec().MulScalar(s))
}

// Dot returns the dot product.
func (p Point) Dot(q Point) float64 {
	return p.Vec().Dot(q.Vec())
}

// Cross returns the cross product p x q.
func (p Point) Cross(q Point) Point {
	return FromVec(p.Vec().Cross(q.Vec()))
}

// Length returns the Euclidean norm.
func (p Point) Length() float64 {
	return p.Vec().Length()
}

// Distance returns |p - q|.
func (p Point) Distance(q Point) float64 {
	return p.Sub(q).Length()
}

// Normalize returns the unit vector in the direction of p. The zero vector
// cannot be normalized.
func (p Point) Normalize() (Point, error) {
	l := p.Length()
	if l < Tolerance {
		return Point{}, fmt.Errorf("geom: cannot normalize zero-length vector %v", p)
	}
	return p.Scale(1 / l), nil
}

// Lerp interpolates linearly between p (t=0) and q (t=1).
func Lerp(p, q Point, t float64) Point {
	return p.Add(q.Sub(p).Scale(t))
}

// Bilerp interpolates over the quad p00, p10, p01, p11 where the first
// index follows u and the second v.
func Bilerp(p00, p10, p01, p11 Point, u, v float64) Point {
	return Lerp(Lerp(p00, p10, u), Lerp(p01, p11, u), v)
}

// Near reports whether p and q are within tol of each other.
func (p Point) Near(q Point, tol float64) bool {
	return p.Distance(q) <= tol
}

// IsFinite reports whether all coordinates are finite numbers.
func (p Point) IsFinite() bool {
	for _, c := range [3]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g, %g)", p.X, p.Y, p.Z)
}

// Centroid returns the arithmetic mean of pts, or the origin for none.
func Centroid(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var sum Point
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(pts)))
}

// TriangleArea returns the area of triangle abc.
func TriangleArea(a, b, c Point) float64 {
	return 0.5 * b.Sub(a).Cross(c.Sub(a)).Length()
}
