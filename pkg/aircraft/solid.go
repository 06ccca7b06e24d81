package aircraft

import (
	"math"

	"github.com/chazu/aerogeom/pkg/geom"
	"github.com/chazu/aerogeom/pkg/kernel"
	"github.com/chazu/aerogeom/pkg/status"
)

// wettedRows is the number of span-wise rows each skin patch is split into
// when part of it may lie inside a parent body.
const wettedRows = 64

// skin visits the bilinear patches of surf between the segment's exact
// stations, with u along xsi and v along eta.
func (s *Segment) skin(surf Surface, visit func(p00, p10, p01, p11 geom.Point)) error {
	xs, err := s.Stations(surf)
	if err != nil {
		return err
	}
	var prevIn, prevOut geom.Point
	for i, x := range xs {
		in, err := s.sectionPoint(s.inner, surf, x)
		if err != nil {
			return err
		}
		out, err := s.sectionPoint(s.outer, surf, x)
		if err != nil {
			return err
		}
		if i > 0 {
			visit(prevIn, in, prevOut, out)
		}
		prevIn, prevOut = in, out
	}
	return nil
}

// closedSkin visits every patch bounding the segment's solid between its
// two sections, with the sign that orients d/du x d/dv consistently: the
// upper skin as sampled, the lower skin reversed, and for a blunt trailing
// edge the face joining the two. Fuselages have one outer skin.
func (s *Segment) closedSkin(visit func(p00, p10, p01, p11 geom.Point, sign float64)) error {
	if s.kind == KindFuselage {
		return s.skin(SurfaceOuter, func(p00, p10, p01, p11 geom.Point) {
			visit(p00, p10, p01, p11, 1)
		})
	}
	for _, side := range []struct {
		surf Surface
		sign float64
	}{{SurfaceUpper, 1}, {SurfaceLower, -1}} {
		err := s.skin(side.surf, func(p00, p10, p01, p11 geom.Point) {
			visit(p00, p10, p01, p11, side.sign)
		})
		if err != nil {
			return err
		}
	}
	var te [4]geom.Point
	for i, pt := range []struct {
		ps   placedSection
		surf Surface
	}{{s.inner, SurfaceUpper}, {s.inner, SurfaceLower}, {s.outer, SurfaceUpper}, {s.outer, SurfaceLower}} {
		p, err := s.sectionPoint(pt.ps, pt.surf, 1)
		if err != nil {
			return err
		}
		te[i] = p
	}
	if !te[0].Near(te[1], geom.Tolerance) || !te[2].Near(te[3], geom.Tolerance) {
		visit(te[0], te[1], te[2], te[3], 1)
	}
	return nil
}

// ring returns the closed outline of one section of s at the segment's
// stations. Wings run along the upper side from leading to trailing edge
// and back along the lower side; fuselages follow the outer surface. This
// is the boundary the skin patches induce at eta = 0.
func (s *Segment) ring(ps placedSection) ([]geom.Point, error) {
	walk := func(surf Surface, reverse bool) ([]geom.Point, error) {
		xs, err := s.Stations(surf)
		if err != nil {
			return nil, err
		}
		pts := make([]geom.Point, len(xs))
		for i, x := range xs {
			if pts[i], err = s.sectionPoint(ps, surf, x); err != nil {
				return nil, err
			}
		}
		if reverse {
			for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
				pts[i], pts[j] = pts[j], pts[i]
			}
		}
		return pts, nil
	}
	if s.kind == KindFuselage {
		pts, err := walk(SurfaceOuter, false)
		if err != nil {
			return nil, err
		}
		return pts[:len(pts)-1], nil
	}
	upper, err := walk(SurfaceUpper, false)
	if err != nil {
		return nil, err
	}
	lower, err := walk(SurfaceLower, true)
	if err != nil {
		return nil, err
	}
	// both sides share the leading edge, and the trailing edge unless it
	// is blunt
	tail := lower[:len(lower)-1]
	if tail[0].Near(upper[len(upper)-1], geom.Tolerance) {
		tail = tail[1:]
	}
	return append(upper, tail...), nil
}

// Volume returns the volume enclosed by the wing skins and the root and tip
// sections. The skins are bilinear between exact stations, so the flux
// integral is exact for the polyline profiles. Mirrored halves are not
// included.
func (w *Wing) Volume() (float64, error) {
	const op = "aircraft.Wing.Volume"
	if len(w.segments) == 0 {
		return 0, nil
	}
	var flux float64
	for _, s := range w.segments {
		err := s.closedSkin(func(p00, p10, p01, p11 geom.Point, sign float64) {
			flux += sign * geom.BilinearFlux(p00, p10, p01, p11)
		})
		if err != nil {
			return 0, status.Annotate(op, err)
		}
	}
	first, last := w.segments[0], w.segments[len(w.segments)-1]
	root, err := first.ring(first.inner)
	if err != nil {
		return 0, status.Annotate(op, err)
	}
	tip, err := last.ring(last.outer)
	if err != nil {
		return 0, status.Annotate(op, err)
	}
	flux += geom.FanFlux(tip) - geom.FanFlux(root)
	return math.Abs(flux) / 3, nil
}

// WettedArea returns the skin area of the wing that lies outside every
// parent, typically the fuselages it is attached to. A blunt trailing edge
// counts as skin; root and tip sections do not. Mirrored wing halves are
// not included; mirrored parents are.
func (w *Wing) WettedArea(parents ...Component) (float64, error) {
	const op = "aircraft.Wing.WettedArea"
	var hulls []*hull
	for _, c := range parents {
		hs, err := hullsOf(c)
		if err != nil {
			return 0, status.Annotate(op, err)
		}
		hulls = append(hulls, hs...)
	}

	var area float64
	for _, s := range w.segments {
		err := s.closedSkin(func(p00, p10, p01, p11 geom.Point, _ float64) {
			area += wettedPart(p00, p10, p01, p11, hulls)
		})
		if err != nil {
			return 0, status.Annotate(op, err)
		}
	}
	return area, nil
}

// wettedPart is the area of a bilinear patch outside all hulls. Patches
// clear of every hull are integrated whole; the others row by row, each
// cell counted when its centre lies outside.
func wettedPart(p00, p10, p01, p11 geom.Point, hulls []*hull) float64 {
	pbox := kernel.BoxOf(p00, p10, p01, p11)
	var near []*hull
	for _, h := range hulls {
		if h.box.Overlaps(pbox) {
			near = append(near, h)
		}
	}
	if len(near) == 0 {
		return geom.BilinearArea(p00, p10, p01, p11)
	}

	var area float64
	for j := 0; j < wettedRows; j++ {
		v0 := float64(j) / wettedRows
		v1 := float64(j+1) / wettedRows
		q00 := geom.Bilerp(p00, p10, p01, p11, 0, v0)
		q10 := geom.Bilerp(p00, p10, p01, p11, 1, v0)
		q01 := geom.Bilerp(p00, p10, p01, p11, 0, v1)
		q11 := geom.Bilerp(p00, p10, p01, p11, 1, v1)
		centre := geom.Bilerp(q00, q10, q01, q11, 0.5, 0.5)
		inside := false
		for _, h := range near {
			if h.contains(centre) {
				inside = true
				break
			}
		}
		if !inside {
			area += geom.BilinearArea(q00, q10, q01, q11)
		}
	}
	return area
}

// hull is a closed triangulation of a component, for containment tests.
type hull struct {
	tris [][3]geom.Point
	box  kernel.Box
}

// hullsOf triangulates c, closing it at its first and last section, and
// adds the mirrored half of symmetric components as a second hull.
func hullsOf(c Component) ([]*hull, error) {
	segs := c.Segments()
	if len(segs) == 0 {
		return nil, nil
	}
	h := &hull{box: kernel.EmptyBox()}
	add := func(a, b, c geom.Point) {
		h.tris = append(h.tris, [3]geom.Point{a, b, c})
		h.box.Extend(a)
		h.box.Extend(b)
		h.box.Extend(c)
	}
	for _, s := range segs {
		err := s.closedSkin(func(p00, p10, p01, p11 geom.Point, sign float64) {
			if sign < 0 {
				add(p00, p11, p10)
				add(p00, p01, p11)
				return
			}
			add(p00, p10, p11)
			add(p00, p11, p01)
		})
		if err != nil {
			return nil, err
		}
	}
	first, last := segs[0], segs[len(segs)-1]
	root, err := first.ring(first.inner)
	if err != nil {
		return nil, err
	}
	tip, err := last.ring(last.outer)
	if err != nil {
		return nil, err
	}
	fan := func(ring []geom.Point, reverse bool) {
		ctr := geom.Centroid(ring)
		for i := range ring {
			a, b := ring[i], ring[(i+1)%len(ring)]
			if reverse {
				a, b = b, a
			}
			add(ctr, a, b)
		}
	}
	fan(root, true)
	fan(tip, false)

	hulls := []*hull{h}
	if mt, ok := MirroredTransform(c); ok {
		m := &hull{box: kernel.EmptyBox()}
		for _, t := range h.tris {
			a, b, c := mt.Apply(t[0]), mt.Apply(t[1]), mt.Apply(t[2])
			m.tris = append(m.tris, [3]geom.Point{a, c, b})
			m.box.Extend(a)
			m.box.Extend(b)
			m.box.Extend(c)
		}
		hulls = append(hulls, m)
	}
	return hulls, nil
}

// contains reports whether q lies inside the hull, by its winding number.
func (h *hull) contains(q geom.Point) bool {
	if !h.box.Contains(q) {
		return false
	}
	var omega float64
	for _, t := range h.tris {
		omega += geom.SolidAngle(q, t[0], t[1], t[2])
	}
	return math.Abs(omega) > 2*math.Pi
}
