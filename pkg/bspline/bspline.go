// Package bspline implements non-rational B-spline curves: validation of
// the degree/knot/control-point relation, evaluation by de Boor's
// algorithm, and uniform sampling.
package bspline

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/aerogeom/pkg/geom"
)

// ErrMalformed is wrapped by every validation failure.
var ErrMalformed = errors.New("bspline: malformed spline")

// BSpline is a B-spline curve of the given degree.
// Invariant (checked by Validate): len(Knots) == len(ControlPoints)+Degree+1
// and Knots is non-decreasing.
type BSpline struct {
	Degree        int          `json:"degree"`
	Knots         []float64    `json:"knots"`
	ControlPoints []geom.Point `json:"control_points"`
}

// Sizes is the shape of a spline as reported before its data is copied out.
type Sizes struct {
	Degree            int
	ControlPointCount int
	KnotCount         int
}

// New builds a validated spline. The slices are copied.
func New(degree int, knots []float64, cps []geom.Point) (*BSpline, error) {
	s := &BSpline{
		Degree:        degree,
		Knots:         append([]float64(nil), knots...),
		ControlPoints: append([]geom.Point(nil), cps...),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// FromAxes builds a spline from separate coordinate slices, the layout
// used by the DSL's :x :y :z form and by FillProfileSpline. All three must
// have the same length. The result is not validated.
func FromAxes(degree int, knots, xs, ys, zs []float64) (*BSpline, error) {
	if len(xs) != len(ys) || len(xs) != len(zs) {
		return nil, fmt.Errorf("%w: axis lengths differ (x=%d y=%d z=%d)", ErrMalformed, len(xs), len(ys), len(zs))
	}
	cps := make([]geom.Point, len(xs))
	for i := range xs {
		cps[i] = geom.P(xs[i], ys[i], zs[i])
	}
	return &BSpline{
		Degree:        degree,
		Knots:         append([]float64(nil), knots...),
		ControlPoints: cps,
	}, nil
}

// ClampedUniformKnots returns the open uniform knot vector on [0,1] for n
// control points of the given degree.
func ClampedUniformKnots(n, degree int) []float64 {
	if n <= degree || degree < 0 {
		return nil
	}
	m := n + degree + 1
	knots := make([]float64, m)
	inner := n - degree
	for i := 0; i < m; i++ {
		switch {
		case i <= degree:
			knots[i] = 0
		case i >= n:
			knots[i] = 1
		default:
			knots[i] = float64(i-degree) / float64(inner)
		}
	}
	return knots
}

// Validate checks the B-spline relation and knot ordering.
func (s *BSpline) Validate() error {
	if s.Degree < 0 {
		return fmt.Errorf("%w: negative degree %d", ErrMalformed, s.Degree)
	}
	n := len(s.ControlPoints)
	if n == 0 {
		return fmt.Errorf("%w: no control points", ErrMalformed)
	}
	if n <= s.Degree {
		return fmt.Errorf("%w: degree %d needs at least %d control points, got %d", ErrMalformed, s.Degree, s.Degree+1, n)
	}
	want := n + s.Degree + 1
	if len(s.Knots) != want {
		return fmt.Errorf("%w: %d control points of degree %d need %d knots, got %d", ErrMalformed, n, s.Degree, want, len(s.Knots))
	}
	for i, k := range s.Knots {
		if math.IsNaN(k) || math.IsInf(k, 0) {
			return fmt.Errorf("%w: knot %d is not finite", ErrMalformed, i)
		}
		if i > 0 && k < s.Knots[i-1] {
			return fmt.Errorf("%w: knots decrease at index %d (%g < %g)", ErrMalformed, i, k, s.Knots[i-1])
		}
	}
	lo, hi := s.Domain()
	if hi <= lo {
		return fmt.Errorf("%w: empty parameter domain [%g, %g]", ErrMalformed, lo, hi)
	}
	return nil
}

// Sizes reports degree, control point count and knot count.
func (s *BSpline) Sizes() Sizes {
	return Sizes{
		Degree:            s.Degree,
		ControlPointCount: len(s.ControlPoints),
		KnotCount:         len(s.Knots),
	}
}

// Domain returns the valid parameter interval [Knots[p], Knots[n]].
func (s *BSpline) Domain() (float64, float64) {
	n := len(s.ControlPoints)
	return s.Knots[s.Degree], s.Knots[n]
}

// findSpan returns k such that Knots[k] <= t < Knots[k+1], clamped to the
// last non-empty span at the domain end.
func (s *BSpline) findSpan(t float64) int {
	n := len(s.ControlPoints)
	p := s.Degree
	if t >= s.Knots[n] {
		k := n - 1
		for k > p && s.Knots[k] == s.Knots[k+1] {
			k--
		}
		return k
	}
	lo, hi := p, n
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if t < s.Knots[mid] {
			hi = mid
		} else {
			lo = mid
		}
	}
	return lo
}

// Evaluate returns the curve point at parameter t. t is clamped to the
// domain.
func (s *BSpline) Evaluate(t float64) geom.Point {
	lo, hi := s.Domain()
	t = math.Max(lo, math.Min(hi, t))

	p := s.Degree
	k := s.findSpan(t)

	d := make([]geom.Point, p+1)
	for j := 0; j <= p; j++ {
		d[j] = s.ControlPoints[k-p+j]
	}
	for r := 1; r <= p; r++ {
		for j := p; j >= r; j-- {
			i := k - p + j
			den := s.Knots[i+p-r+1] - s.Knots[i]
			alpha := 0.0
			if den != 0 {
				alpha = (t - s.Knots[i]) / den
			}
			d[j] = geom.Lerp(d[j-1], d[j], alpha)
		}
	}
	return d[p]
}

// EvaluateNormalized evaluates at u in [0,1] mapped onto the domain.
func (s *BSpline) EvaluateNormalized(u float64) geom.Point {
	lo, hi := s.Domain()
	return s.Evaluate(lo + u*(hi-lo))
}

// Sample returns n >= 2 points at uniformly spaced parameters across the
// domain, including both ends.
func (s *BSpline) Sample(n int) []geom.Point {
	if n < 2 {
		n = 2
	}
	out := make([]geom.Point, n)
	for i := 0; i < n; i++ {
		out[i] = s.EvaluateNormalized(float64(i) / float64(n-1))
	}
	return out
}

// Clone returns a deep copy.
func (s *BSpline) Clone() *BSpline {
	return &BSpline{
		Degree:        s.Degree,
		Knots:         append([]float64(nil), s.Knots...),
		ControlPoints: append([]geom.Point(nil), s.ControlPoints...),
	}
}

// Axes splits the control points into independent x, y and z slices.
func (s *BSpline) Axes() (xs, ys, zs []float64) {
	n := len(s.ControlPoints)
	xs = make([]float64, n)
	ys = make([]float64, n)
	zs = make([]float64, n)
	for i, cp := range s.ControlPoints {
		xs[i] = cp.X
		ys[i] = cp.Y
		zs[i] = cp.Z
	}
	return xs, ys, zs
}
