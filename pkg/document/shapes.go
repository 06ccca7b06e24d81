package document

import (
	"fmt"
	"math"

	"github.com/chazu/aerogeom/pkg/geom"
)

// NACA4 returns the point list of a NACA four-digit airfoil such as "2412"
// with n points per side and a closed trailing edge. Points run from the
// trailing edge over the upper side to the leading edge and back along the
// lower side, in the x-z plane with unit chord.
func NACA4(code string, n int) ([]geom.Point, error) {
	if len(code) != 4 {
		return nil, fmt.Errorf("naca4: code %q must have 4 digits", code)
	}
	var d [4]int
	for i := range code {
		if code[i] < '0' || code[i] > '9' {
			return nil, fmt.Errorf("naca4: code %q must have 4 digits", code)
		}
		d[i] = int(code[i] - '0')
	}
	if n < 3 {
		return nil, fmt.Errorf("naca4: need at least 3 points per side, got %d", n)
	}
	m := float64(d[0]) / 100
	p := float64(d[1]) / 10
	t := float64(d[2]*10+d[3]) / 100
	if t == 0 {
		return nil, fmt.Errorf("naca4: code %q has zero thickness", code)
	}

	camber := func(x float64) (yc, slope float64) {
		switch {
		case m == 0 || p == 0:
			return 0, 0
		case x < p:
			return m / (p * p) * (2*p*x - x*x), 2 * m / (p * p) * (p - x)
		default:
			return m / ((1 - p) * (1 - p)) * ((1 - 2*p) + 2*p*x - x*x), 2 * m / ((1 - p) * (1 - p)) * (p - x)
		}
	}
	surface := func(x float64, upper bool) geom.Point {
		yt := 5 * t * (0.2969*math.Sqrt(x) - 0.1260*x - 0.3516*x*x + 0.2843*x*x*x - 0.1036*x*x*x*x)
		yc, dy := camber(x)
		theta := math.Atan(dy)
		if !upper {
			yt = -yt
		}
		return geom.P(x-yt*math.Sin(theta), 0, yc+yt*math.Cos(theta))
	}
	station := func(i int) float64 {
		// cosine spacing clusters points at both edges
		return 0.5 * (1 + math.Cos(math.Pi*float64(i)/float64(n-1)))
	}

	pts := make([]geom.Point, 0, 2*n-1)
	for i := 0; i < n; i++ {
		pts = append(pts, surface(station(i), true))
	}
	for i := n - 2; i >= 0; i-- {
		pts = append(pts, surface(station(i), false))
	}
	return pts, nil
}

// Circle returns n points on the unit circle in the y-z plane, starting at
// the top. The first point is not repeated.
func Circle(n int) []geom.Point {
	pts := make([]geom.Point, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = geom.P(0, math.Sin(a), math.Cos(a))
	}
	return pts
}
