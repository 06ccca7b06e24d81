package geom

import "math"

// Bilinear patches are given by their corners p00, p10, p01, p11, the
// first index following u and the second v, as in Bilerp. Their normal is
// d/du x d/dv.

// bilinearCells splits a patch per direction for BilinearArea.
const bilinearCells = 4

// Three point Gauss-Legendre rule on [0, 1].
var (
	gauss3Nodes   = [3]float64{0.5 - 0.3872983346207417, 0.5, 0.5 + 0.3872983346207417}
	gauss3Weights = [3]float64{5.0 / 18, 8.0 / 18, 5.0 / 18}
)

// Two point Gauss-Legendre rule on [0, 1].
var gauss2Nodes = [2]float64{0.5 - 0.28867513459481287, 0.5 + 0.28867513459481287}

// bilinearTangents returns d/du and d/dv at (u, v).
func bilinearTangents(p00, p10, p01, p11 Point, u, v float64) (du, dv Point) {
	du = Lerp(p10.Sub(p00), p11.Sub(p01), v)
	dv = Lerp(p01.Sub(p00), p11.Sub(p10), u)
	return du, dv
}

// BilinearArea integrates the area of a bilinear patch. A twisted patch is
// not planar, so its area exceeds the Newell area of its corner polygon.
// The integrand is smooth, and composite Gauss quadrature reaches about
// ten significant digits for twists up to right angles.
func BilinearArea(p00, p10, p01, p11 Point) float64 {
	const h = 1.0 / bilinearCells
	var area float64
	for i := 0; i < bilinearCells; i++ {
		for j := 0; j < bilinearCells; j++ {
			for a, ga := range gauss3Nodes {
				for b, gb := range gauss3Nodes {
					du, dv := bilinearTangents(p00, p10, p01, p11, (float64(i)+ga)*h, (float64(j)+gb)*h)
					area += gauss3Weights[a] * gauss3Weights[b] * du.Cross(dv).Length()
				}
			}
		}
	}
	return area * h * h
}

// BilinearFlux returns the flux of the position field through a bilinear
// patch, the integral of P . (dP/du x dP/dv). The integrand is a
// polynomial of degree two in u and v, so the two point rule is exact.
// Summed over a closed, outward oriented surface it is three times the
// enclosed volume.
func BilinearFlux(p00, p10, p01, p11 Point) float64 {
	var flux float64
	for _, u := range gauss2Nodes {
		for _, v := range gauss2Nodes {
			du, dv := bilinearTangents(p00, p10, p01, p11, u, v)
			flux += Bilerp(p00, p10, p01, p11, u, v).Dot(du.Cross(dv))
		}
	}
	return flux / 4
}

// FanFlux returns the flux of the position field through the fan of
// triangles joining the centroid of ring to each of its edges, oriented by
// the ring's winding. For a planar ring this is the flux through the
// polygon itself.
func FanFlux(ring []Point) float64 {
	if len(ring) < 3 {
		return 0
	}
	c := Centroid(ring)
	var flux float64
	for i := range ring {
		a, b := ring[i], ring[(i+1)%len(ring)]
		centre := c.Add(a).Add(b).Scale(1.0 / 3)
		flux += centre.Dot(a.Sub(c).Cross(b.Sub(c)))
	}
	return flux / 2
}

// SolidAngle returns the signed solid angle triangle abc subtends at q,
// positive when q lies behind the triangle's normal (b-a) x (c-a).
func SolidAngle(q, a, b, c Point) float64 {
	a, b, c = a.Sub(q), b.Sub(q), c.Sub(q)
	la, lb, lc := a.Length(), b.Length(), c.Length()
	num := a.Dot(b.Cross(c))
	den := la*lb*lc + a.Dot(b)*lc + a.Dot(c)*lb + b.Dot(c)*la
	return 2 * math.Atan2(num, den)
}
