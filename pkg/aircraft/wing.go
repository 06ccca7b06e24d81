package aircraft

import (
	"math"

	"github.com/chazu/aerogeom/pkg/geom"
	"github.com/chazu/aerogeom/pkg/status"
)

// Wing is a lifting surface with optional component segments.
type Wing struct {
	*body
	compSegs []*ComponentSegment
}

// ChordNormal returns the chord surface normal of segment (1-based).
func (w *Wing) ChordNormal(segment int, eta, xsi float64) (geom.Point, error) {
	const op = "aircraft.Wing.ChordNormal"
	s, err := w.Segment(segment)
	if err != nil {
		return geom.Point{}, status.Annotate(op, err)
	}
	n, err := s.ChordNormal(eta, xsi)
	if err != nil {
		return geom.Point{}, status.Annotate(op, err)
	}
	return n, nil
}

// ReferenceArea sums the chord surface areas of all segments projected on
// plane. PlaneNone integrates the chord surfaces themselves, which are
// twisted wherever inner and outer chords are not coplanar. Mirrored
// halves are not included.
func (w *Wing) ReferenceArea(plane geom.Plane) (float64, error) {
	const op = "aircraft.Wing.ReferenceArea"
	if !plane.Valid() {
		return 0, status.New(status.InvalidParameter, op, "unknown projection plane %d", int(plane)).WithUID(w.uid)
	}
	var area float64
	for _, s := range w.segments {
		lei, tei, leo, teo, err := s.edges()
		if err != nil {
			return 0, status.Annotate(op, err)
		}
		if plane == geom.PlaneNone {
			area += geom.BilinearArea(lei, tei, leo, teo)
			continue
		}
		area += geom.ProjectedArea([]geom.Point{lei, tei, teo, leo}, plane)
	}
	return area, nil
}

// Span returns the extent of the wing normal to its symmetry plane, both
// halves included. Wings without symmetry are measured along y.
func (w *Wing) Span() (float64, error) {
	const op = "aircraft.Wing.Span"
	axis := func(p geom.Point) float64 { return p.Y }
	switch w.symmetry {
	case geom.PlaneXY:
		axis = func(p geom.Point) float64 { return p.Z }
	case geom.PlaneYZ:
		axis = func(p geom.Point) float64 { return p.X }
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range w.segments {
		quad, err := s.ChordQuad()
		if err != nil {
			return 0, status.Annotate(op, err)
		}
		for _, p := range quad {
			lo = math.Min(lo, axis(p))
			hi = math.Max(hi, axis(p))
		}
	}
	if len(w.segments) == 0 {
		return 0, nil
	}
	if w.symmetry != geom.PlaneNone {
		return 2 * math.Max(math.Abs(lo), math.Abs(hi)), nil
	}
	return hi - lo, nil
}

// ComponentSegmentCount returns the number of component segments.
func (w *Wing) ComponentSegmentCount() int { return len(w.compSegs) }

// ComponentSegment returns the component segment at 1-based index.
func (w *Wing) ComponentSegment(index int) (*ComponentSegment, error) {
	if index < 1 || index > len(w.compSegs) {
		return nil, status.New(status.IndexOutOfRange, "aircraft.Wing.ComponentSegment",
			"component segment index %d outside [1, %d]", index, len(w.compSegs)).WithUID(w.uid)
	}
	return w.compSegs[index-1], nil
}

// ComponentSegmentByUID returns the component segment with uid.
func (w *Wing) ComponentSegmentByUID(uid string) (*ComponentSegment, error) {
	for _, cs := range w.compSegs {
		if cs.uid == uid {
			return cs, nil
		}
	}
	return nil, status.New(status.UnknownComponentSegment, "aircraft.Wing.ComponentSegmentByUID",
		"wing %s has no component segment %q", w.uid, uid).WithUID(uid)
}

// EtaXsi locates the segment whose chord surface lies closest to p, along
// with the (eta, xsi) of the foot point and whether p lies on the side the
// chord normal points to.
type EtaXsi struct {
	Segment int // 1-based
	Eta     float64
	Xsi     float64
	OnTop   bool
}

// SegmentEtaXsi inverts the chord surface mapping for p. Points that do not
// project into any segment fail with InvalidParameter.
func (w *Wing) SegmentEtaXsi(p geom.Point) (EtaXsi, error) {
	const op = "aircraft.Wing.SegmentEtaXsi"
	const slack = 1e-6

	best := EtaXsi{}
	bestDist := math.Inf(1)
	for _, s := range w.segments {
		lei, tei, leo, teo, err := s.edges()
		if err != nil {
			return EtaXsi{}, status.Annotate(op, err)
		}
		eta, xsi, ok := invertBilinear(lei, tei, leo, teo, p, maxInvertIterations)
		if !ok || eta < -slack || eta > 1+slack || xsi < -slack || xsi > 1+slack {
			continue
		}
		eta = clamp01(eta)
		xsi = clamp01(xsi)
		foot := geom.Bilerp(lei, tei, leo, teo, xsi, eta)
		n, err := s.ChordNormal(eta, xsi)
		if err != nil {
			return EtaXsi{}, status.Annotate(op, err)
		}
		off := p.Sub(foot).Dot(n)
		if d := math.Abs(off); d < bestDist {
			bestDist = d
			best = EtaXsi{Segment: s.index, Eta: eta, Xsi: xsi, OnTop: off > 0}
		}
	}
	if math.IsInf(bestDist, 1) {
		return EtaXsi{}, status.New(status.InvalidParameter, op, "point %v does not project onto any segment", p).WithUID(w.uid)
	}
	return best, nil
}

// maxInvertIterations bounds the Gauss-Newton search in SegmentEtaXsi.
const maxInvertIterations = 50

// invertBilinear finds (eta, xsi) whose point on the bilinear chord
// surface is the foot of p, by Gauss-Newton iteration. It reports false
// when the system is singular or the steps have not settled within
// maxIter iterations.
func invertBilinear(lei, tei, leo, teo, p geom.Point, maxIter int) (eta, xsi float64, ok bool) {
	const stepTol = 1e-12
	eta, xsi = 0.5, 0.5
	for iter := 0; iter < maxIter; iter++ {
		c := geom.Bilerp(lei, tei, leo, teo, xsi, eta)
		dEta := geom.Lerp(leo.Sub(lei), teo.Sub(tei), xsi)
		dXsi := geom.Lerp(tei.Sub(lei), teo.Sub(leo), eta)
		r := p.Sub(c)

		a11, a12, a22 := dEta.Dot(dEta), dEta.Dot(dXsi), dXsi.Dot(dXsi)
		b1, b2 := dEta.Dot(r), dXsi.Dot(r)
		det := a11*a22 - a12*a12
		if math.Abs(det) < geom.Tolerance {
			return 0, 0, false
		}
		de := (b1*a22 - b2*a12) / det
		dx := (a11*b2 - a12*b1) / det
		eta += de
		xsi += dx
		if math.Abs(de) < stepTol && math.Abs(dx) < stepTol {
			return eta, xsi, true
		}
	}
	return eta, xsi, false
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// ComponentSegmentPoint evaluates the chord surface of component segment
// uid at (eta, xsi).
func (w *Wing) ComponentSegmentPoint(uid string, eta, xsi float64) (geom.Point, error) {
	const op = "aircraft.Wing.ComponentSegmentPoint"
	cs, err := w.ComponentSegmentByUID(uid)
	if err != nil {
		return geom.Point{}, status.Annotate(op, err)
	}
	p, err := cs.Point(eta, xsi)
	if err != nil {
		return geom.Point{}, status.Annotate(op, err)
	}
	return p, nil
}
