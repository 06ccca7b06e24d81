package aircraft

import (
	"github.com/chazu/aerogeom/pkg/geom"
	"github.com/chazu/aerogeom/pkg/status"
)

// Segment is the ruled surface between two placed sections. Eta runs from
// the inner (from) section to the outer (to) section, xsi along the profile.
type Segment struct {
	uid       string
	index     int // 1-based
	component string
	kind      Kind
	inner     placedSection
	outer     placedSection
}

// UID returns the segment UID.
func (s *Segment) UID() string { return s.uid }

// Index returns the 1-based position of the segment in its component.
func (s *Segment) Index() int { return s.index }

// ComponentUID returns the owning component's UID.
func (s *Segment) ComponentUID() string { return s.component }

// InnerSectionUID and OuterSectionUID name the joined sections.
func (s *Segment) InnerSectionUID() string { return s.inner.uid }
func (s *Segment) OuterSectionUID() string { return s.outer.uid }

// Surfaces lists the surfaces a segment of this kind can evaluate.
func (s *Segment) Surfaces() []Surface {
	if s.kind == KindWing {
		return []Surface{SurfaceUpper, SurfaceLower, SurfaceChord}
	}
	return []Surface{SurfaceOuter}
}

// checkParams rejects eta or xsi outside [0, 1], including NaN.
func checkParams(op, uid string, eta, xsi float64) error {
	if !(eta >= 0 && eta <= 1) {
		return status.New(status.ParameterOutOfRange, op, "eta %g outside [0, 1]", eta).WithUID(uid)
	}
	if !(xsi >= 0 && xsi <= 1) {
		return status.New(status.ParameterOutOfRange, op, "xsi %g outside [0, 1]", xsi).WithUID(uid)
	}
	return nil
}

// sectionPoint evaluates surf on one placed section.
func (s *Segment) sectionPoint(ps placedSection, surf Surface, xsi float64) (geom.Point, error) {
	var (
		p   geom.Point
		err error
	)
	switch {
	case s.kind == KindWing && surf == SurfaceUpper:
		p, err = ps.profile.UpperPoint(xsi)
	case s.kind == KindWing && surf == SurfaceLower:
		p, err = ps.profile.LowerPoint(xsi)
	case s.kind == KindWing && surf == SurfaceChord:
		p, err = ps.profile.ChordPoint(xsi)
	case s.kind == KindFuselage && surf == SurfaceOuter:
		p, err = ps.profile.OuterPoint(xsi)
	default:
		return geom.Point{}, status.New(status.InvalidParameter, "", "%s has no %s surface", s.kind, surf)
	}
	if err != nil {
		return geom.Point{}, err
	}
	return ps.xf.Apply(p), nil
}

// Point evaluates surf at (eta, xsi).
func (s *Segment) Point(surf Surface, eta, xsi float64) (geom.Point, error) {
	const op = "aircraft.Segment.Point"
	if err := checkParams(op, s.uid, eta, xsi); err != nil {
		return geom.Point{}, err
	}
	return s.point(surf, eta, xsi)
}

// point skips the parameter check for internal callers that already did it.
func (s *Segment) point(surf Surface, eta, xsi float64) (geom.Point, error) {
	const op = "aircraft.Segment.Point"
	in, err := s.sectionPoint(s.inner, surf, xsi)
	if err != nil {
		return geom.Point{}, status.Annotate(op, err)
	}
	out, err := s.sectionPoint(s.outer, surf, xsi)
	if err != nil {
		return geom.Point{}, status.Annotate(op, err)
	}
	return geom.Lerp(in, out, eta), nil
}

// edges returns the leading and trailing edge points of both sections in
// global coordinates.
func (s *Segment) edges() (lei, tei, leo, teo geom.Point, err error) {
	if s.kind != KindWing {
		err = status.New(status.InvalidParameter, "aircraft.Segment.edges", "%s segments have no chord", s.kind).WithUID(s.uid)
		return
	}
	if lei, tei, err = s.inner.chord(); err != nil {
		return
	}
	leo, teo, err = s.outer.chord()
	return
}

// ChordNormal returns the unit normal of the chord surface at (eta, xsi),
// oriented along d/dxsi x d/deta.
func (s *Segment) ChordNormal(eta, xsi float64) (geom.Point, error) {
	const op = "aircraft.Segment.ChordNormal"
	if err := checkParams(op, s.uid, eta, xsi); err != nil {
		return geom.Point{}, err
	}
	lei, tei, leo, teo, err := s.edges()
	if err != nil {
		return geom.Point{}, status.Annotate(op, err)
	}
	dXsi := geom.Lerp(tei.Sub(lei), teo.Sub(leo), eta)
	dEta := geom.Lerp(leo.Sub(lei), teo.Sub(tei), xsi)
	n, err := dXsi.Cross(dEta).Normalize()
	if err != nil {
		return geom.Point{}, status.New(status.InternalError, op, "degenerate chord surface").WithUID(s.uid)
	}
	return n, nil
}

// ChordQuad returns the chord surface corners in the order inner leading
// edge, inner trailing edge, outer trailing edge, outer leading edge.
func (s *Segment) ChordQuad() ([]geom.Point, error) {
	lei, tei, leo, teo, err := s.edges()
	if err != nil {
		return nil, status.Annotate("aircraft.Segment.ChordQuad", err)
	}
	return []geom.Point{lei, tei, teo, leo}, nil
}

// Stations returns the xsi values where surf has a kink on either section,
// sorted, from 0 to 1. Sampling at these stations reproduces the surface
// exactly with bilinear patches.
func (s *Segment) Stations(surf Surface) ([]float64, error) {
	const op = "aircraft.Segment.Stations"
	if _, err := s.sectionPoint(s.inner, surf, 0); err != nil {
		return nil, status.Annotate(op, err)
	}
	in, err := s.inner.profile.Breakpoints(surf)
	if err != nil {
		return nil, status.Annotate(op, err)
	}
	out, err := s.outer.profile.Breakpoints(surf)
	if err != nil {
		return nil, status.Annotate(op, err)
	}
	return mergeStations(append(in, out...)), nil
}
