package bspline

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/aerogeom/pkg/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cubicSixPoints(t *testing.T) *BSpline {
	t.Helper()
	cps := []geom.Point{
		geom.P(0, 0, 0), geom.P(1, 2, 0), geom.P(2, 3, 1),
		geom.P(3, 3, 1), geom.P(4, 2, 0), geom.P(5, 0, 0),
	}
	s, err := New(3, ClampedUniformKnots(len(cps), 3), cps)
	require.NoError(t, err)
	return s
}

func TestSizesFollowRelation(t *testing.T) {
	s := cubicSixPoints(t)
	sz := s.Sizes()
	assert.Equal(t, 3, sz.Degree)
	assert.Equal(t, 6, sz.ControlPointCount)
	assert.Equal(t, 10, sz.KnotCount)
}

func TestValidateRejectsWrongKnotCount(t *testing.T) {
	cps := make([]geom.Point, 6)
	for i := range cps {
		cps[i] = geom.P(float64(i), 0, 0)
	}
	// 9 knots instead of 10
	knots := []float64{0, 0, 0, 0, 0.5, 1, 1, 1, 1}
	_, err := New(3, knots, cps)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
	assert.Contains(t, err.Error(), "need 10 knots, got 9")
}

func TestValidateCases(t *testing.T) {
	line := []geom.Point{geom.P(0, 0, 0), geom.P(1, 0, 0)}
	tests := []struct {
		name  string
		s     BSpline
		valid bool
	}{
		{"linear", BSpline{Degree: 1, Knots: []float64{0, 0, 1, 1}, ControlPoints: line}, true},
		{"degree zero", BSpline{Degree: 0, Knots: []float64{0, 0.5, 1}, ControlPoints: line}, true},
		{"negative degree", BSpline{Degree: -1, Knots: []float64{0, 1}, ControlPoints: line}, false},
		{"no control points", BSpline{Degree: 1, Knots: []float64{0, 1}}, false},
		{"too few control points", BSpline{Degree: 2, Knots: []float64{0, 0, 0, 1, 1}, ControlPoints: line}, false},
		{"decreasing knots", BSpline{Degree: 1, Knots: []float64{0, 1, 0.5, 1}, ControlPoints: line}, false},
		{"nan knot", BSpline{Degree: 1, Knots: []float64{0, 0, math.NaN(), 1}, ControlPoints: line}, false},
		{"empty domain", BSpline{Degree: 1, Knots: []float64{0, 1, 1, 1}, ControlPoints: line}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrMalformed)
			}
		})
	}
}

func TestEvaluateInterpolatesClampedEnds(t *testing.T) {
	s := cubicSixPoints(t)
	assert.True(t, s.Evaluate(0).Near(geom.P(0, 0, 0), 1e-12))
	assert.True(t, s.Evaluate(1).Near(geom.P(5, 0, 0), 1e-12))
	// outside the domain clamps
	assert.True(t, s.Evaluate(2).Near(geom.P(5, 0, 0), 1e-12))
}

func TestEvaluateLinearMidpoint(t *testing.T) {
	s, err := New(1, []float64{0, 0, 1, 1}, []geom.Point{geom.P(0, 0, 0), geom.P(2, 4, 6)})
	require.NoError(t, err)
	assert.True(t, s.Evaluate(0.5).Near(geom.P(1, 2, 3), 1e-12))
}

func TestEvaluateMatchesBezierForSingleSpan(t *testing.T) {
	// a clamped cubic with 4 control points is a cubic Bezier
	cps := []geom.Point{geom.P(0, 0, 0), geom.P(1, 2, 0), geom.P(3, 2, 0), geom.P(4, 0, 0)}
	s, err := New(3, []float64{0, 0, 0, 0, 1, 1, 1, 1}, cps)
	require.NoError(t, err)

	u := 0.3
	b0 := math.Pow(1-u, 3)
	b1 := 3 * u * math.Pow(1-u, 2)
	b2 := 3 * u * u * (1 - u)
	b3 := u * u * u
	want := cps[0].Scale(b0).Add(cps[1].Scale(b1)).Add(cps[2].Scale(b2)).Add(cps[3].Scale(b3))
	assert.True(t, s.Evaluate(u).Near(want, 1e-12), "got %v want %v", s.Evaluate(u), want)
}

func TestEvaluateIsContinuous(t *testing.T) {
	s := cubicSixPoints(t)
	const h = 1e-6
	for i := 0; i <= 100; i++ {
		u := float64(i) / 100
		a := s.EvaluateNormalized(u)
		b := s.EvaluateNormalized(math.Min(1, u+h))
		assert.Less(t, a.Distance(b), 1e-3, "jump at u=%g", u)
	}
}

func TestSample(t *testing.T) {
	s := cubicSixPoints(t)
	pts := s.Sample(11)
	require.Len(t, pts, 11)
	assert.True(t, pts[0].Near(geom.P(0, 0, 0), 1e-12))
	assert.True(t, pts[10].Near(geom.P(5, 0, 0), 1e-12))
	assert.Len(t, s.Sample(0), 2)
}

func TestFromAxesReadsEachAxis(t *testing.T) {
	xs := []float64{0, 1, 2}
	ys := []float64{10, 11, 12}
	zs := []float64{20, 21, 22}
	s, err := FromAxes(2, []float64{0, 0, 0, 1, 1, 1}, xs, ys, zs)
	require.NoError(t, err)
	assert.Equal(t, geom.P(1, 11, 21), s.ControlPoints[1])

	gx, gy, gz := s.Axes()
	assert.Equal(t, xs, gx)
	assert.Equal(t, ys, gy)
	assert.Equal(t, zs, gz)

	_, err = FromAxes(2, []float64{0, 0, 0, 1, 1, 1}, xs, ys[:2], zs)
	assert.ErrorIs(t, err, ErrMalformed)

	// shape errors are left to Validate
	s, err = FromAxes(3, []float64{0, 1}, xs, ys, zs)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Validate(), ErrMalformed)
}

func TestCloneIsDeep(t *testing.T) {
	s := cubicSixPoints(t)
	c := s.Clone()
	c.Knots[0] = -1
	c.ControlPoints[0] = geom.P(9, 9, 9)
	assert.Equal(t, 0.0, s.Knots[0])
	assert.Equal(t, geom.P(0, 0, 0), s.ControlPoints[0])
}

func TestClampedUniformKnots(t *testing.T) {
	assert.Equal(t, []float64{0, 0, 1, 1}, ClampedUniformKnots(2, 1))
	k := ClampedUniformKnots(6, 3)
	require.Len(t, k, 10)
	assert.InDelta(t, 1.0/3, k[4], 1e-12)
	assert.Nil(t, ClampedUniformKnots(2, 3))
}
