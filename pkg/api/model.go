package api

import (
	"errors"

	"github.com/chazu/aerogeom/pkg/aircraft"
	"github.com/chazu/aerogeom/pkg/geom"
	"github.com/chazu/aerogeom/pkg/registry"
	"github.com/chazu/aerogeom/pkg/status"
	"github.com/chazu/aerogeom/pkg/tessellate"
)

// ComponentRef addresses a component by kind and either 1-based index or
// UID. A non-empty UID takes precedence.
type ComponentRef struct {
	Kind  aircraft.Kind
	Index int
	UID   string
}

// Wing refers to the wing at 1-based index i.
func Wing(i int) ComponentRef { return ComponentRef{Kind: aircraft.KindWing, Index: i} }

// WingUID refers to the wing with uid.
func WingUID(uid string) ComponentRef { return ComponentRef{Kind: aircraft.KindWing, UID: uid} }

// Fuselage refers to the fuselage at 1-based index i.
func Fuselage(i int) ComponentRef { return ComponentRef{Kind: aircraft.KindFuselage, Index: i} }

// FuselageUID refers to the fuselage with uid.
func FuselageUID(uid string) ComponentRef {
	return ComponentRef{Kind: aircraft.KindFuselage, UID: uid}
}

// resolve finds the component. An index that does not resolve is an
// unknown component, same as an unknown UID.
func (r ComponentRef) resolve(m *aircraft.Model) (aircraft.Component, error) {
	if r.UID != "" {
		return m.ComponentByUID(r.Kind, r.UID)
	}
	c, err := m.Component(r.Kind, r.Index)
	if errors.Is(err, status.IndexOutOfRange) {
		return nil, status.New(status.UnknownComponent, "api.resolve", "no %s at index %d", r.Kind, r.Index)
	}
	return c, err
}

func (r ComponentRef) wing(m *aircraft.Model) (*aircraft.Wing, error) {
	if r.Kind != aircraft.KindWing {
		return nil, status.New(status.InvalidParameter, "api.wing", "%s is not a wing", r.Kind)
	}
	c, err := r.resolve(m)
	if err != nil {
		return nil, err
	}
	return c.(*aircraft.Wing), nil
}

// ComponentCount returns the number of components of kind.
func (s *Service) ComponentCount(h registry.Handle, kind aircraft.Kind) (int, error) {
	return query(s, "api.ComponentCount", h, func(c *registry.Config) (int, error) {
		return c.Model().ComponentCount(kind), nil
	})
}

// ComponentUID returns the UID of the component of kind at 1-based index.
func (s *Service) ComponentUID(h registry.Handle, kind aircraft.Kind, index int) (string, error) {
	return query(s, "api.ComponentUID", h, func(c *registry.Config) (string, error) {
		comp, err := c.Model().Component(kind, index)
		if err != nil {
			return "", err
		}
		return comp.UID(), nil
	})
}

// SegmentCount returns the number of segments of the referenced component.
func (s *Service) SegmentCount(h registry.Handle, ref ComponentRef) (int, error) {
	return query(s, "api.SegmentCount", h, func(c *registry.Config) (int, error) {
		comp, err := ref.resolve(c.Model())
		if err != nil {
			return 0, err
		}
		return comp.SegmentCount(), nil
	})
}

// SegmentUID returns the UID of segment index (1-based).
func (s *Service) SegmentUID(h registry.Handle, ref ComponentRef, index int) (string, error) {
	return query(s, "api.SegmentUID", h, func(c *registry.Config) (string, error) {
		comp, err := ref.resolve(c.Model())
		if err != nil {
			return "", err
		}
		seg, err := comp.Segment(index)
		if err != nil {
			return "", err
		}
		return seg.UID(), nil
	})
}

// SegmentSections returns the UIDs of the inner and outer section joined
// by segment index (1-based).
func (s *Service) SegmentSections(h registry.Handle, ref ComponentRef, index int) (inner, outer string, err error) {
	pair, err := query(s, "api.SegmentSections", h, func(c *registry.Config) ([2]string, error) {
		comp, err := ref.resolve(c.Model())
		if err != nil {
			return [2]string{}, err
		}
		seg, err := comp.Segment(index)
		if err != nil {
			return [2]string{}, err
		}
		return [2]string{seg.InnerSectionUID(), seg.OuterSectionUID()}, nil
	})
	return pair[0], pair[1], err
}

// SegmentIndex returns the 1-based index of the segment with uid.
func (s *Service) SegmentIndex(h registry.Handle, ref ComponentRef, uid string) (int, error) {
	return query(s, "api.SegmentIndex", h, func(c *registry.Config) (int, error) {
		comp, err := ref.resolve(c.Model())
		if err != nil {
			return 0, err
		}
		seg, err := comp.SegmentByUID(uid)
		if err != nil {
			return 0, err
		}
		return seg.Index(), nil
	})
}

// EvaluatePoint returns the point at (eta, xsi) on surface surf of segment
// (1-based) of the referenced component.
func (s *Service) EvaluatePoint(h registry.Handle, surf aircraft.Surface, ref ComponentRef, segment int, eta, xsi float64) (geom.Point, error) {
	return query(s, "api.EvaluatePoint", h, func(c *registry.Config) (geom.Point, error) {
		comp, err := ref.resolve(c.Model())
		if err != nil {
			return geom.Point{}, err
		}
		return comp.EvaluatePoint(surf, segment, eta, xsi)
	})
}

// ChordNormal returns the unit normal of the chord surface of a wing
// segment at (eta, xsi).
func (s *Service) ChordNormal(h registry.Handle, ref ComponentRef, segment int, eta, xsi float64) (geom.Point, error) {
	return query(s, "api.ChordNormal", h, func(c *registry.Config) (geom.Point, error) {
		w, err := ref.wing(c.Model())
		if err != nil {
			return geom.Point{}, err
		}
		return w.ChordNormal(segment, eta, xsi)
	})
}

// ReferenceArea returns the chord surface area of the whole wing, projected
// on plane unless plane is geom.PlaneNone.
func (s *Service) ReferenceArea(h registry.Handle, ref ComponentRef, plane geom.Plane) (float64, error) {
	return query(s, "api.ReferenceArea", h, func(c *registry.Config) (float64, error) {
		w, err := ref.wing(c.Model())
		if err != nil {
			return 0, err
		}
		return w.ReferenceArea(plane)
	})
}

// WingSpan returns the span of the wing, both halves included.
func (s *Service) WingSpan(h registry.Handle, ref ComponentRef) (float64, error) {
	return query(s, "api.WingSpan", h, func(c *registry.Config) (float64, error) {
		w, err := ref.wing(c.Model())
		if err != nil {
			return 0, err
		}
		return w.Span()
	})
}

// WingVolume returns the volume enclosed by one half of the wing.
func (s *Service) WingVolume(h registry.Handle, ref ComponentRef) (float64, error) {
	return query(s, "api.WingVolume", h, func(c *registry.Config) (float64, error) {
		w, err := ref.wing(c.Model())
		if err != nil {
			return 0, err
		}
		return w.Volume()
	})
}

// WingWettedArea returns the skin area of one half of the wing outside
// every fuselage of the configuration.
func (s *Service) WingWettedArea(h registry.Handle, ref ComponentRef) (float64, error) {
	return query(s, "api.WingWettedArea", h, func(c *registry.Config) (float64, error) {
		w, err := ref.wing(c.Model())
		if err != nil {
			return 0, err
		}
		return w.WettedArea(c.Model().Fuselages()...)
	})
}

// SurfaceArea returns the wetted area of one side of the component,
// measured on its tessellation.
func (s *Service) SurfaceArea(h registry.Handle, ref ComponentRef, deflection float64) (float64, error) {
	return query(s, "api.SurfaceArea", h, func(c *registry.Config) (float64, error) {
		comp, err := ref.resolve(c.Model())
		if err != nil {
			return 0, err
		}
		return tessellate.SurfaceArea(comp, deflection)
	})
}

// SegmentEtaXsi maps a point back to the segment and chord coordinates of
// the wing.
func (s *Service) SegmentEtaXsi(h registry.Handle, ref ComponentRef, p geom.Point) (aircraft.EtaXsi, error) {
	return query(s, "api.SegmentEtaXsi", h, func(c *registry.Config) (aircraft.EtaXsi, error) {
		w, err := ref.wing(c.Model())
		if err != nil {
			return aircraft.EtaXsi{}, err
		}
		return w.SegmentEtaXsi(p)
	})
}

// ComponentSegmentCount returns the number of component segments of the
// wing.
func (s *Service) ComponentSegmentCount(h registry.Handle, ref ComponentRef) (int, error) {
	return query(s, "api.ComponentSegmentCount", h, func(c *registry.Config) (int, error) {
		w, err := ref.wing(c.Model())
		if err != nil {
			return 0, err
		}
		return w.ComponentSegmentCount(), nil
	})
}

// ComponentSegmentUID returns the UID of component segment index (1-based).
func (s *Service) ComponentSegmentUID(h registry.Handle, ref ComponentRef, index int) (string, error) {
	return query(s, "api.ComponentSegmentUID", h, func(c *registry.Config) (string, error) {
		w, err := ref.wing(c.Model())
		if err != nil {
			return "", err
		}
		cs, err := w.ComponentSegment(index)
		if err != nil {
			return "", err
		}
		return cs.UID(), nil
	})
}

// ComponentSegmentPoint evaluates the chord surface of a component segment.
func (s *Service) ComponentSegmentPoint(h registry.Handle, ref ComponentRef, uid string, eta, xsi float64) (geom.Point, error) {
	return query(s, "api.ComponentSegmentPoint", h, func(c *registry.Config) (geom.Point, error) {
		w, err := ref.wing(c.Model())
		if err != nil {
			return geom.Point{}, err
		}
		return w.ComponentSegmentPoint(uid, eta, xsi)
	})
}
