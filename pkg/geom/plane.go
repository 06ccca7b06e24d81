package geom

import (
	"fmt"
	"math"
	"strings"
)

// Plane selects an axis-aligned plane, used both for projections and for
// component symmetry.
type Plane int

const (
	PlaneNone Plane = iota // no projection / no symmetry
	PlaneXY
	PlaneXZ
	PlaneYZ
)

func (p Plane) String() string {
	switch p {
	case PlaneNone:
		return "none"
	case PlaneXY:
		return "x-y"
	case PlaneXZ:
		return "x-z"
	case PlaneYZ:
		return "y-z"
	default:
		return fmt.Sprintf("Plane(%d)", int(p))
	}
}

// ParsePlane accepts "none", "xy", "x-y", "xz", "x-z", "yz", "y-z"
// (case-insensitive).
func ParsePlane(s string) (Plane, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "")) {
	case "", "none":
		return PlaneNone, nil
	case "xy":
		return PlaneXY, nil
	case "xz":
		return PlaneXZ, nil
	case "yz":
		return PlaneYZ, nil
	}
	return PlaneNone, fmt.Errorf("geom: unknown plane %q, expected none, x-y, x-z or y-z", s)
}

// Valid reports whether p is one of the declared planes.
func (p Plane) Valid() bool {
	return p >= PlaneNone && p <= PlaneYZ
}

// VectorArea returns the Newell area vector of a closed polygon; its length
// is the polygon's area and its direction the polygon normal.
func VectorArea(poly []Point) Point {
	var n Point
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		n = n.Add(a.Cross(b))
	}
	return n.Scale(0.5)
}

// ProjectedArea returns the area of poly projected onto plane. With
// PlaneNone the true (planar) area is returned. The result is never
// negative.
func ProjectedArea(poly []Point, plane Plane) float64 {
	if len(poly) < 3 {
		return 0
	}
	n := VectorArea(poly)
	switch plane {
	case PlaneXY:
		return math.Abs(n.Z)
	case PlaneXZ:
		return math.Abs(n.Y)
	case PlaneYZ:
		return math.Abs(n.X)
	default:
		return n.Length()
	}
}
