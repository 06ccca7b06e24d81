// Package doctest provides aircraft documents shared by tests across
// packages.
package doctest

import (
	"time"

	"github.com/chazu/aerogeom/pkg/bspline"
	"github.com/chazu/aerogeom/pkg/document"
	"github.com/chazu/aerogeom/pkg/geom"
)

// Timestamp is the fixed header timestamp of every fixture.
var Timestamp = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// NACA0012 returns the symmetric airfoil with n points per side, trailing
// edge first.
func NACA0012(n int) []geom.Point {
	pts, err := document.NACA4("0012", n)
	if err != nil {
		panic(err)
	}
	return pts
}

// Circle returns n points on the unit circle in the y-z plane.
func Circle(n int) []geom.Point {
	return document.Circle(n)
}

// FoilSplines returns an upper and a lower cubic spline, six control points
// each, describing a thin unit-chord airfoil from trailing edge to leading
// edge and back.
func FoilSplines() (upper, lower *bspline.BSpline) {
	up := []geom.Point{
		geom.P(1, 0, 0), geom.P(0.8, 0, 0.03), geom.P(0.5, 0, 0.07),
		geom.P(0.2, 0, 0.07), geom.P(0, 0, 0.03), geom.P(0, 0, 0),
	}
	lo := []geom.Point{
		geom.P(0, 0, 0), geom.P(0, 0, -0.02), geom.P(0.2, 0, -0.04),
		geom.P(0.5, 0, -0.04), geom.P(0.8, 0, -0.02), geom.P(1, 0, 0),
	}
	var err error
	upper, err = bspline.New(3, bspline.ClampedUniformKnots(len(up), 3), up)
	if err != nil {
		panic(err)
	}
	lower, err = bspline.New(3, bspline.ClampedUniformKnots(len(lo), 3), lo)
	if err != nil {
		panic(err)
	}
	return upper, lower
}

// BrokenSpline returns a cubic spline with six control points but only
// nine knots.
func BrokenSpline() *bspline.BSpline {
	cps := make([]geom.Point, 6)
	for i := range cps {
		cps[i] = geom.P(float64(i)/5, 0, 0)
	}
	return &bspline.BSpline{
		Degree:        3,
		Knots:         []float64{0, 0, 0, 0, 0.5, 1, 1, 1, 1},
		ControlPoints: cps,
	}
}

// Wing W1 section layout: chord, leading-edge position.
var (
	W1Root = geom.P(0, 0, 0)
	W1Mid  = geom.P(1, 5, 0.2)
	W1Tip  = geom.P(2.5, 10, 0.5)
)

// W1 chords per section.
const (
	W1RootChord = 4.0
	W1MidChord  = 3.0
	W1TipChord  = 1.5
)

// W1ReferenceAreaXY is the trapezoidal area of W1 projected on x-y.
const W1ReferenceAreaXY = (W1RootChord+W1MidChord)/2*5 + (W1MidChord+W1TipChord)/2*5

// WingW1 returns the two-segment wing used throughout the tests.
func WingW1() document.WingDef {
	s := func(c float64) geom.Point { return geom.P(c, 1, c) }
	return document.WingDef{
		BodyDef: document.BodyDef{
			UID:       "W1",
			Name:      "Main wing",
			Symmetry:  geom.PlaneXZ,
			Transform: document.IdentityTransform(),
			Sections: []document.SectionDef{
				document.Section("W1_Sec1", "NACA0012", s(W1RootChord), geom.Point{}, W1Root),
				document.Section("W1_Sec2", "NACA0012", s(W1MidChord), geom.Point{}, W1Mid),
				document.Section("W1_Sec3", "NACA0012", s(W1TipChord), geom.Point{}, W1Tip),
			},
			Segments: []document.SegmentDef{
				document.Segment("W1_Seg1", "W1_Sec1", "W1_Sec2"),
				document.Segment("W1_Seg2", "W1_Sec2", "W1_Sec3"),
			},
		},
		ComponentSegments: []document.ComponentSegmentDef{
			{UID: "W1_CompSeg1", FromSegment: "W1_Seg1", ToSegment: "W1_Seg2"},
		},
	}
}

// FuselageF1 returns a two-segment circular fuselage along x.
func FuselageF1() document.FuselageDef {
	r := func(radius float64) geom.Point { return geom.P(1, radius, radius) }
	return document.FuselageDef{
		BodyDef: document.BodyDef{
			UID:       "F1",
			Name:      "Fuselage",
			Transform: document.IdentityTransform(),
			Sections: []document.SectionDef{
				document.Section("F1_Sec1", "Circle", r(1), geom.Point{}, geom.P(-5, 0, 0)),
				document.Section("F1_Sec2", "Circle", r(1.5), geom.Point{}, geom.P(0, 0, 0)),
				document.Section("F1_Sec3", "Circle", r(0.5), geom.Point{}, geom.P(10, 0, 0)),
			},
			Segments: []document.SegmentDef{
				document.Segment("F1_Seg1", "F1_Sec1", "F1_Sec2"),
				document.Segment("F1_Seg2", "F1_Sec2", "F1_Sec3"),
			},
		},
	}
}

// Aircraft returns a document with wing W1, fuselage F1 and the profiles
// NACA0012, Circle, SplineFoil (two splines) and BrokenSpline (malformed).
func Aircraft() *document.Document {
	upper, lower := FoilSplines()
	return document.NewBuilder("Test aircraft").
		UID("TestAircraft").
		Creator("aerogeom tests").
		Timestamp(Timestamp).
		PointProfile("NACA0012", NACA0012(21)...).
		PointProfile("Circle", Circle(32)...).
		SplineProfile("SplineFoil", upper, lower).
		SplineProfile("BrokenSpline", BrokenSpline()).
		Wing(WingW1()).
		Fuselage(FuselageF1()).
		MustBuild()
}

// PositionedWing returns a document with a single wing whose outer section
// is placed by a positioning (length 10, sweep 30, dihedral 5) rather than
// a translation.
func PositionedWing() *document.Document {
	w := document.WingDef{
		BodyDef: document.BodyDef{
			UID:       "PW",
			Transform: document.IdentityTransform(),
			Sections: []document.SectionDef{
				document.Section("PW_Root", "NACA0012", geom.P(2, 1, 2), geom.Point{}, geom.Point{}),
				document.Section("PW_Tip", "NACA0012", geom.P(1, 1, 1), geom.Point{}, geom.Point{}),
			},
			Positionings: []document.PositioningDef{
				{ToSection: "PW_Tip", FromSection: "PW_Root", Length: 10, Sweep: 30, Dihedral: 5},
			},
			Segments: []document.SegmentDef{document.Segment("PW_Seg1", "PW_Root", "PW_Tip")},
		},
	}
	return document.NewBuilder("Positioned").
		UID("Positioned").
		Timestamp(Timestamp).
		PointProfile("NACA0012", NACA0012(21)...).
		Wing(w).
		MustBuild()
}
