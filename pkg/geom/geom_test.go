package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func assertNear(t *testing.T, want, got Point) {
	t.Helper()
	if !want.Near(got, eps) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPointArithmetic(t *testing.T) {
	a := P(1, 2, 3)
	b := P(4, 5, 6)
	assertNear(t, P(5, 7, 9), a.Add(b))
	assertNear(t, P(-3, -3, -3), a.Sub(b))
	assertNear(t, P(2, 4, 6), a.Scale(2))
	assert.InDelta(t, 32.0, a.Dot(b), eps)
	assertNear(t, P(-3, 6, -3), a.Cross(b))
	assert.InDelta(t, math.Sqrt(14), a.Length(), eps)
}

func TestNormalizeZero(t *testing.T) {
	_, err := Point{}.Normalize()
	require.Error(t, err)

	n, err := P(0, 3, 4).Normalize()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, n.Length(), eps)
}

func TestLerpAndBilerp(t *testing.T) {
	assertNear(t, P(0.5, 0, 0), Lerp(P(0, 0, 0), P(1, 0, 0), 0.5))
	p := Bilerp(P(0, 0, 0), P(1, 0, 0), P(0, 1, 0), P(1, 1, 0), 0.25, 0.75)
	assertNear(t, P(0.25, 0.75, 0), p)
}

func TestTriangleAreaAndCentroid(t *testing.T) {
	assert.InDelta(t, 0.5, TriangleArea(P(0, 0, 0), P(1, 0, 0), P(0, 1, 0)), eps)
	assertNear(t, P(1, 1, 0), Centroid([]Point{P(0, 0, 0), P(2, 0, 0), P(2, 2, 0), P(0, 2, 0)}))
	assertNear(t, Point{}, Centroid(nil))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, P(1, 2, 3).IsFinite())
	assert.False(t, P(math.NaN(), 0, 0).IsFinite())
	assert.False(t, P(0, math.Inf(1), 0).IsFinite())
}

func TestTransformTRS(t *testing.T) {
	tr := TRS(P(2, 2, 2), P(0, 0, 90), P(10, 0, 0))
	// scale (1,0,0) -> (2,0,0), rotate 90 about z -> (0,2,0), translate -> (10,2,0)
	assertNear(t, P(10, 2, 0), tr.Apply(P(1, 0, 0)))
}

func TestTransformThenOrder(t *testing.T) {
	move := Translation(P(1, 0, 0))
	rot := Rotation(P(0, 0, 90))
	// rotate first, then move
	assertNear(t, P(1, 1, 0), move.Then(rot).Apply(P(1, 0, 0)))
	// move first, then rotate
	assertNear(t, P(0, 2, 0), rot.Then(move).Apply(P(1, 0, 0)))
}

func TestMirror(t *testing.T) {
	p := P(1, 2, 3)
	assertNear(t, P(1, 2, -3), Mirror(PlaneXY).Apply(p))
	assertNear(t, P(1, -2, 3), Mirror(PlaneXZ).Apply(p))
	assertNear(t, P(-1, 2, 3), Mirror(PlaneYZ).Apply(p))
	assertNear(t, p, Mirror(PlaneNone).Apply(p))
}

func TestParsePlane(t *testing.T) {
	tests := []struct {
		in   string
		want Plane
		ok   bool
	}{
		{"none", PlaneNone, true},
		{"", PlaneNone, true},
		{"x-y", PlaneXY, true},
		{"XZ", PlaneXZ, true},
		{"y-z", PlaneYZ, true},
		{"diagonal", PlaneNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePlane(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProjectedArea(t *testing.T) {
	// unit square tilted 60 degrees about x: true area 1, xy shadow 0.5
	c := math.Cos(math.Pi / 3)
	s := math.Sin(math.Pi / 3)
	sq := []Point{P(0, 0, 0), P(1, 0, 0), P(1, c, s), P(0, c, s)}

	assert.InDelta(t, 1.0, ProjectedArea(sq, PlaneNone), eps)
	assert.InDelta(t, 0.5, ProjectedArea(sq, PlaneXY), eps)
	assert.InDelta(t, s, ProjectedArea(sq, PlaneXZ), eps)
	assert.InDelta(t, 0.0, ProjectedArea(sq, PlaneYZ), eps)
	assert.Zero(t, ProjectedArea(sq[:2], PlaneNone))
}

func TestProjectedAreaIgnoresWinding(t *testing.T) {
	cw := []Point{P(0, 0, 0), P(0, 1, 0), P(1, 1, 0), P(1, 0, 0)}
	assert.InDelta(t, 1.0, ProjectedArea(cw, PlaneXY), eps)
}

// unitCube returns the faces of [0, 1]^3 as bilinear patches with outward
// normals.
func unitCube() [][4]Point {
	return [][4]Point{
		{P(1, 0, 0), P(1, 1, 0), P(1, 0, 1), P(1, 1, 1)}, // x = 1
		{P(0, 0, 0), P(0, 0, 1), P(0, 1, 0), P(0, 1, 1)}, // x = 0
		{P(0, 1, 0), P(0, 1, 1), P(1, 1, 0), P(1, 1, 1)}, // y = 1
		{P(0, 0, 0), P(1, 0, 0), P(0, 0, 1), P(1, 0, 1)}, // y = 0
		{P(0, 0, 1), P(1, 0, 1), P(0, 1, 1), P(1, 1, 1)}, // z = 1
		{P(0, 0, 0), P(0, 1, 0), P(1, 0, 0), P(1, 1, 0)}, // z = 0
	}
}

func TestBilinearAreaPlanar(t *testing.T) {
	for _, f := range unitCube() {
		assert.InDelta(t, 1.0, BilinearArea(f[0], f[1], f[2], f[3]), eps)
	}
	// a skewed parallelogram matches its Newell area
	p00, p10, p01, p11 := P(0, 0, 0), P(2, 0, 0), P(1, 3, 0), P(3, 3, 0)
	assert.InDelta(t, ProjectedArea([]Point{p00, p10, p11, p01}, PlaneNone), BilinearArea(p00, p10, p01, p11), eps)
}

func TestBilinearAreaTwisted(t *testing.T) {
	// z = uv over the unit square: |du x dv| = sqrt(1 + u^2 + v^2)
	got := BilinearArea(P(0, 0, 0), P(1, 0, 0), P(0, 1, 0), P(1, 1, 1))

	const n = 400
	var want float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			u := (float64(i) + 0.5) / n
			v := (float64(j) + 0.5) / n
			want += math.Sqrt(1 + u*u + v*v)
		}
	}
	want /= n * n
	assert.InDelta(t, want, got, 1e-5)

	flat := ProjectedArea([]Point{P(0, 0, 0), P(1, 0, 0), P(1, 1, 1), P(0, 1, 0)}, PlaneNone)
	assert.Greater(t, got, flat+1e-3, "twisted area must exceed the mean plane area")
}

func TestBilinearFluxEnclosesVolume(t *testing.T) {
	var flux float64
	for _, f := range unitCube() {
		flux += BilinearFlux(f[0], f[1], f[2], f[3])
	}
	assert.InDelta(t, 3.0, flux, eps)

	// moving the cube leaves the enclosed volume unchanged
	flux = 0
	shift := P(-4, 7, 2)
	for _, f := range unitCube() {
		flux += BilinearFlux(f[0].Add(shift), f[1].Add(shift), f[2].Add(shift), f[3].Add(shift))
	}
	assert.InDelta(t, 3.0, flux, 1e-9)
}

func TestFanFlux(t *testing.T) {
	ring := []Point{P(0, 0, 1), P(1, 0, 1), P(1, 1, 1), P(0, 1, 1)}
	assert.InDelta(t, 1.0, FanFlux(ring), eps)
	rev := []Point{ring[3], ring[2], ring[1], ring[0]}
	assert.InDelta(t, -1.0, FanFlux(rev), eps)
	assert.Zero(t, FanFlux(ring[:2]))
}

func TestSolidAngleWindsOnceInside(t *testing.T) {
	winding := func(q Point) float64 {
		var sum float64
		for _, f := range unitCube() {
			sum += SolidAngle(q, f[0], f[1], f[3])
			sum += SolidAngle(q, f[0], f[3], f[2])
		}
		return sum / (4 * math.Pi)
	}
	assert.InDelta(t, 1.0, winding(P(0.5, 0.5, 0.5)), 1e-9)
	assert.InDelta(t, 1.0, winding(P(0.9, 0.1, 0.2)), 1e-9)
	assert.InDelta(t, 0.0, winding(P(2, 0.5, 0.5)), 1e-9)
}
