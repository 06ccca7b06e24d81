package aircraft

import (
	"math"
	"sort"
	"sync"

	"github.com/chazu/aerogeom/pkg/bspline"
	"github.com/chazu/aerogeom/pkg/document"
	"github.com/chazu/aerogeom/pkg/geom"
	"github.com/chazu/aerogeom/pkg/status"
)

// samplesPerSpline is how densely spline profiles are turned into the
// polyline used for surface evaluation.
const samplesPerSpline = 64

// Profile is a read-only view of a profile definition. The polyline and
// its leading/trailing edge split are computed on first use.
type Profile struct {
	def *document.ProfileDef

	once  sync.Once
	err   error
	poly  []geom.Point
	le    geom.Point
	te    geom.Point
	upper []geom.Point // leading edge to trailing edge
	lower []geom.Point // leading edge to trailing edge
	arc   []float64    // cumulative arc length of the closed polyline
}

func newProfile(def *document.ProfileDef) *Profile {
	return &Profile{def: def}
}

// UID returns the profile UID.
func (p *Profile) UID() string { return p.def.UID }

// SplineCount returns the number of B-splines; zero for point profiles.
func (p *Profile) SplineCount() int { return len(p.def.Splines) }

// Spline returns a copy of spline i (1-based) after validating it.
func (p *Profile) Spline(i int) (*bspline.BSpline, error) {
	const op = "aircraft.Profile.Spline"
	if i < 1 || i > len(p.def.Splines) {
		return nil, status.New(status.IndexOutOfRange, op, "spline index %d outside [1, %d]", i, len(p.def.Splines)).WithUID(p.def.UID)
	}
	s := &p.def.Splines[i-1]
	if err := s.Validate(); err != nil {
		return nil, status.From(status.InvalidParameter, op, err).WithUID(p.def.UID)
	}
	return s.Clone(), nil
}

// SplineSizes returns degree, control point count and knot count of spline
// i (1-based). A malformed spline fails with InvalidParameter so that the
// sizes always match what Spline returns.
func (p *Profile) SplineSizes(i int) (bspline.Sizes, error) {
	s, err := p.Spline(i)
	if err != nil {
		return bspline.Sizes{}, status.Annotate("aircraft.Profile.SplineSizes", err)
	}
	return s.Sizes(), nil
}

// LeadingEdge and TrailingEdge return the profile's chord end points.
func (p *Profile) LeadingEdge() (geom.Point, error) {
	if err := p.prepare(); err != nil {
		return geom.Point{}, err
	}
	return p.le, nil
}

func (p *Profile) TrailingEdge() (geom.Point, error) {
	if err := p.prepare(); err != nil {
		return geom.Point{}, err
	}
	return p.te, nil
}

func (p *Profile) prepare() error {
	p.once.Do(func() {
		p.poly, p.err = p.polyline()
		if p.err != nil {
			return
		}
		p.split()
		p.arcLength()
	})
	return p.err
}

func (p *Profile) polyline() ([]geom.Point, error) {
	const op = "aircraft.Profile.polyline"
	if !p.def.HasSplines() {
		if len(p.def.Points) < 3 {
			return nil, status.New(status.InvalidParameter, op, "profile has %d points, need at least 3", len(p.def.Points)).WithUID(p.def.UID)
		}
		return append([]geom.Point(nil), p.def.Points...), nil
	}
	var pts []geom.Point
	for i := range p.def.Splines {
		s := &p.def.Splines[i]
		if err := s.Validate(); err != nil {
			return nil, status.From(status.InvalidParameter, op, err).WithUID(p.def.UID)
		}
		sampled := s.Sample(samplesPerSpline)
		// consecutive splines share their joining point
		if len(pts) > 0 && pts[len(pts)-1].Near(sampled[0], 1e-9) {
			sampled = sampled[1:]
		}
		pts = append(pts, sampled...)
	}
	if len(pts) < 3 {
		return nil, status.New(status.InvalidParameter, op, "profile splines yield %d points", len(pts)).WithUID(p.def.UID)
	}
	return pts, nil
}

// split finds the trailing edge (midpoint of the first and last point) and
// the leading edge (the point farthest from it), then divides the polyline
// into an upper and a lower branch, both running leading edge to trailing
// edge.
func (p *Profile) split() {
	pts := p.poly
	first, last := pts[0], pts[len(pts)-1]
	p.te = geom.Lerp(first, last, 0.5)

	leIdx := 0
	best := -1.0
	for i, pt := range pts {
		if d := pt.Distance(p.te); d > best {
			best, leIdx = d, i
		}
	}
	p.le = pts[leIdx]

	a := make([]geom.Point, 0, leIdx+1)
	for i := leIdx; i >= 0; i-- {
		a = append(a, pts[i])
	}
	b := append([]geom.Point(nil), pts[leIdx:]...)

	if meanZ(a) >= meanZ(b) {
		p.upper, p.lower = a, b
	} else {
		p.upper, p.lower = b, a
	}
}

func meanZ(pts []geom.Point) float64 {
	if len(pts) == 0 {
		return 0
	}
	return geom.Centroid(pts).Z
}

func (p *Profile) arcLength() {
	n := len(p.poly)
	p.arc = make([]float64, n+1)
	for i := 0; i < n; i++ {
		p.arc[i+1] = p.arc[i] + p.poly[i].Distance(p.poly[(i+1)%n])
	}
}

// ChordPoint returns the point at relative chord position xsi.
func (p *Profile) ChordPoint(xsi float64) (geom.Point, error) {
	if err := p.prepare(); err != nil {
		return geom.Point{}, err
	}
	return geom.Lerp(p.le, p.te, xsi), nil
}

// UpperPoint returns the point on the upper branch above chord position xsi.
func (p *Profile) UpperPoint(xsi float64) (geom.Point, error) {
	if err := p.prepare(); err != nil {
		return geom.Point{}, err
	}
	return branchPoint(p.upper, p.le, p.te, xsi), nil
}

// LowerPoint returns the point on the lower branch below chord position xsi.
func (p *Profile) LowerPoint(xsi float64) (geom.Point, error) {
	if err := p.prepare(); err != nil {
		return geom.Point{}, err
	}
	return branchPoint(p.lower, p.le, p.te, xsi), nil
}

// branchPoint walks a branch (leading edge first) and returns the point
// whose projection on the chord equals xsi.
func branchPoint(branch []geom.Point, le, te geom.Point, xsi float64) geom.Point {
	chord := te.Sub(le)
	l2 := chord.Dot(chord)
	if l2 < geom.Tolerance || len(branch) == 1 {
		return branch[0]
	}
	proj := func(pt geom.Point) float64 { return pt.Sub(le).Dot(chord) / l2 }

	if xsi <= proj(branch[0]) {
		return branch[0]
	}
	for i := 1; i < len(branch); i++ {
		s0, s1 := proj(branch[i-1]), proj(branch[i])
		if (xsi >= s0 && xsi <= s1) || (xsi <= s0 && xsi >= s1) {
			if math.Abs(s1-s0) < geom.Tolerance {
				return branch[i]
			}
			return geom.Lerp(branch[i-1], branch[i], (xsi-s0)/(s1-s0))
		}
	}
	return branch[len(branch)-1]
}

// OuterPoint treats the profile as a closed curve and returns the point at
// relative arc length xsi, starting from the first point.
func (p *Profile) OuterPoint(xsi float64) (geom.Point, error) {
	if err := p.prepare(); err != nil {
		return geom.Point{}, err
	}
	n := len(p.poly)
	total := p.arc[n]
	if total < geom.Tolerance {
		return p.poly[0], nil
	}
	target := xsi * total
	for i := 1; i <= n; i++ {
		if target <= p.arc[i] {
			seg := p.arc[i] - p.arc[i-1]
			if seg < geom.Tolerance {
				return p.poly[i%n], nil
			}
			return geom.Lerp(p.poly[i-1], p.poly[i%n], (target-p.arc[i-1])/seg), nil
		}
	}
	return p.poly[0], nil
}

// Breakpoints returns the sorted xsi values at which surf changes
// direction on this profile, including 0 and 1. Between two breakpoints the
// surface is linear in xsi.
func (p *Profile) Breakpoints(surf Surface) ([]float64, error) {
	if err := p.prepare(); err != nil {
		return nil, err
	}
	xs := []float64{0, 1}
	switch surf {
	case SurfaceUpper, SurfaceLower:
		branch := p.upper
		if surf == SurfaceLower {
			branch = p.lower
		}
		chord := p.te.Sub(p.le)
		if l2 := chord.Dot(chord); l2 >= geom.Tolerance {
			for _, pt := range branch {
				xs = append(xs, pt.Sub(p.le).Dot(chord)/l2)
			}
		}
	case SurfaceOuter:
		total := p.arc[len(p.arc)-1]
		if total >= geom.Tolerance {
			for _, a := range p.arc {
				xs = append(xs, a/total)
			}
		}
	}
	return mergeStations(xs), nil
}

// mergeStations clamps to [0, 1], sorts and drops near-duplicates.
func mergeStations(xs []float64) []float64 {
	clamped := make([]float64, 0, len(xs))
	for _, x := range xs {
		clamped = append(clamped, clamp01(x))
	}
	sort.Float64s(clamped)
	out := clamped[:0]
	for _, x := range clamped {
		if len(out) > 0 && x-out[len(out)-1] < 1e-12 {
			continue
		}
		out = append(out, x)
	}
	if len(out) > 1 {
		out[0], out[len(out)-1] = 0, 1
	}
	return out
}
