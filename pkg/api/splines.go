package api

import (
	"github.com/chazu/aerogeom/pkg/bspline"
	"github.com/chazu/aerogeom/pkg/registry"
	"github.com/chazu/aerogeom/pkg/status"
)

// ProfileSplineCount returns the number of B-splines of a profile; zero
// for point-list profiles.
func (s *Service) ProfileSplineCount(h registry.Handle, profileUID string) (int, error) {
	return query(s, "api.ProfileSplineCount", h, func(c *registry.Config) (int, error) {
		p, err := c.Model().Profile(profileUID)
		if err != nil {
			return 0, err
		}
		return p.SplineCount(), nil
	})
}

// ProfileSplineDataSizes reports degree, control point count and knot
// count of spline index (1-based).
func (s *Service) ProfileSplineDataSizes(h registry.Handle, profileUID string, index int) (bspline.Sizes, error) {
	return query(s, "api.ProfileSplineDataSizes", h, func(c *registry.Config) (bspline.Sizes, error) {
		p, err := c.Model().Profile(profileUID)
		if err != nil {
			return bspline.Sizes{}, err
		}
		return p.SplineSizes(index)
	})
}

// ProfileSplineData returns a copy of spline index (1-based).
func (s *Service) ProfileSplineData(h registry.Handle, profileUID string, index int) (*bspline.BSpline, error) {
	return query(s, "api.ProfileSplineData", h, func(c *registry.Config) (*bspline.BSpline, error) {
		p, err := c.Model().Profile(profileUID)
		if err != nil {
			return nil, err
		}
		return p.Spline(index)
	})
}

// FillProfileSpline copies spline index (1-based) into caller-allocated
// buffers and returns its degree. Each buffer must have exactly the length
// reported by ProfileSplineDataSizes: xs, ys and zs the control point
// count, knots the knot count.
func (s *Service) FillProfileSpline(h registry.Handle, profileUID string, index int, xs, ys, zs, knots []float64) (int, error) {
	const op = "api.FillProfileSpline"
	sp, err := s.ProfileSplineData(h, profileUID, index)
	if err != nil {
		return 0, status.Annotate(op, err)
	}
	sz := sp.Sizes()
	if len(xs) != sz.ControlPointCount || len(ys) != sz.ControlPointCount || len(zs) != sz.ControlPointCount {
		return 0, status.New(status.InvalidParameter, op,
			"control point buffers have lengths x=%d y=%d z=%d, want %d",
			len(xs), len(ys), len(zs), sz.ControlPointCount).WithUID(profileUID)
	}
	if len(knots) != sz.KnotCount {
		return 0, status.New(status.InvalidParameter, op,
			"knot buffer has length %d, want %d", len(knots), sz.KnotCount).WithUID(profileUID)
	}
	ax, ay, az := sp.Axes()
	copy(xs, ax)
	copy(ys, ay)
	copy(zs, az)
	copy(knots, sp.Knots)
	return sp.Degree, nil
}
