// Package kernel defines the parametric surface patches the tessellator
// samples and the triangle meshes it produces. Patches hide where their
// points come from, so the same sampling code serves wing skins and
// fuselage hulls.
package kernel

import (
	"math"

	"github.com/chazu/aerogeom/pkg/geom"
)

// Surface maps (eta, xsi) in [0, 1]^2 to a point in space.
type Surface interface {
	Point(eta, xsi float64) (geom.Point, error)
}

// SurfaceFunc adapts an ordinary function to Surface.
type SurfaceFunc func(eta, xsi float64) (geom.Point, error)

// Point calls f(eta, xsi).
func (f SurfaceFunc) Point(eta, xsi float64) (geom.Point, error) {
	return f(eta, xsi)
}

// Patch is one named surface of one segment. The identifiers end up in the
// cells of every triangle sampled from it.
type Patch struct {
	ComponentUID string
	SegmentUID   string
	SegmentIndex int
	OnTop        bool

	// Reversed flips the triangle winding so that normals follow
	// d/deta x d/dxsi instead of d/dxsi x d/deta.
	Reversed bool

	Surface Surface
}

// Box is an axis-aligned bounding box. The zero value is not empty; use
// EmptyBox to start accumulating.
type Box struct {
	Min geom.Point
	Max geom.Point
}

// EmptyBox returns a box that contains nothing.
func EmptyBox() Box {
	inf := math.Inf(1)
	return Box{
		Min: geom.P(inf, inf, inf),
		Max: geom.P(-inf, -inf, -inf),
	}
}

// Extend grows b to contain p.
func (b *Box) Extend(p geom.Point) {
	b.Min = geom.P(math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z))
	b.Max = geom.P(math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z))
}

// IsEmpty reports whether no point has been added.
func (b Box) IsEmpty() bool {
	return b.Min.X > b.Max.X
}

// Size returns the edge lengths of the box.
func (b Box) Size() geom.Point {
	if b.IsEmpty() {
		return geom.Point{}
	}
	return b.Max.Sub(b.Min)
}

// Contains reports whether p lies inside b or on its boundary.
func (b Box) Contains(p geom.Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Overlaps reports whether b and o share at least one point.
func (b Box) Overlaps(o Box) bool {
	return b.Min.X <= o.Max.X && o.Min.X <= b.Max.X &&
		b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y &&
		b.Min.Z <= o.Max.Z && o.Min.Z <= b.Max.Z
}

// BoxOf returns the bounding box of pts.
func BoxOf(pts ...geom.Point) Box {
	b := EmptyBox()
	for _, p := range pts {
		b.Extend(p)
	}
	return b
}
