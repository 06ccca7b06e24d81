package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
)

// Transform is an affine 3D transform backed by an sdfx 4x4 matrix.
type Transform struct {
	m sdf.M44
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{m: sdf.Identity3d()}
}

// Translation returns a pure translation.
func Translation(t Point) Transform {
	return Transform{m: sdf.Translate3d(t.Vec())}
}

// Scaling returns a pure (non-uniform) scale.
func Scaling(s Point) Transform {
	return Transform{m: sdf.Scale3d(s.Vec())}
}

// Rotation rotates by Euler angles in degrees, applied X then Y then Z.
func Rotation(deg Point) Transform {
	x := deg.X * math.Pi / 180.0
	y := deg.Y * math.Pi / 180.0
	z := deg.Z * math.Pi / 180.0
	return Transform{m: sdf.RotateZ(z).Mul(sdf.RotateY(y)).Mul(sdf.RotateX(x))}
}

// TRS composes scale, then rotation, then translation.
func TRS(scale, rotationDeg, translation Point) Transform {
	return Translation(translation).Then(Rotation(rotationDeg)).Then(Scaling(scale))
}

// Then returns the transform applying inner first and t second, i.e. the
// matrix product t * inner.
func (t Transform) Then(inner Transform) Transform {
	return Transform{m: t.m.Mul(inner.m)}
}

// Apply transforms a position.
func (t Transform) Apply(p Point) Point {
	return FromVec(t.m.MulPosition(p.Vec()))
}

// ApplyAll transforms every point in pts, returning a new slice.
func (t Transform) ApplyAll(pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = t.Apply(p)
	}
	return out
}

// Mirror returns the reflection across plane. PlaneNone yields the identity.
func Mirror(plane Plane) Transform {
	switch plane {
	case PlaneXY:
		return Transform{m: sdf.MirrorXY()}
	case PlaneXZ:
		return Transform{m: sdf.MirrorXZ()}
	case PlaneYZ:
		return Transform{m: sdf.MirrorYZ()}
	default:
		return Identity()
	}
}
