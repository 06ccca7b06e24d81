package export

import (
	"context"
	"fmt"
	"math"

	"github.com/chazu/aerogeom/pkg/aircraft"
	"github.com/chazu/aerogeom/pkg/geom"
	"github.com/chazu/aerogeom/pkg/kernel"
	"github.com/chazu/aerogeom/pkg/status"
)

// surfaceGrid is one segment surface as a degree (1, 1) B-spline: u runs
// along xsi over the segment's stations, v along eta over {0, 1}.
type surfaceGrid struct {
	name      string // e.g. "W1_Seg1 upper"
	component string
	segment   string
	index     int
	mirrored  bool
	u         []float64
	inner     []geom.Point // eta = 0, one per station
	outer     []geom.Point // eta = 1, one per station
}

// componentSurfaces samples every surface of every segment of c at its
// exact stations. Symmetric components get a reflected copy of each grid.
func componentSurfaces(ctx context.Context, op string, c aircraft.Component) ([]surfaceGrid, error) {
	var surfs []aircraft.Surface
	switch c.Kind() {
	case aircraft.KindWing:
		surfs = []aircraft.Surface{aircraft.SurfaceUpper, aircraft.SurfaceLower}
	default:
		surfs = []aircraft.Surface{aircraft.SurfaceOuter}
	}

	var grids []surfaceGrid
	for _, s := range c.Segments() {
		if err := checkCtx(ctx, op); err != nil {
			return nil, err
		}
		for _, sf := range surfs {
			g, err := sampleGrid(c, s, sf)
			if err != nil {
				return nil, status.From(status.GeometryExportFailed, op, err).
					WithUID(c.UID()).WithStage("surface " + s.UID())
			}
			grids = append(grids, g)
		}
	}
	if len(grids) == 0 {
		return nil, status.New(status.GeometryExportFailed, op, "component has no segments").
			WithUID(c.UID()).WithStage("surface")
	}

	if mt, ok := aircraft.MirroredTransform(c); ok {
		n := len(grids)
		for i := 0; i < n; i++ {
			m := grids[i]
			m.name += " mirrored"
			m.mirrored = true
			m.inner = mt.ApplyAll(m.inner)
			m.outer = mt.ApplyAll(m.outer)
			grids = append(grids, m)
		}
	}
	return grids, nil
}

func sampleGrid(c aircraft.Component, s *aircraft.Segment, sf aircraft.Surface) (surfaceGrid, error) {
	xs, err := s.Stations(sf)
	if err != nil {
		return surfaceGrid{}, err
	}
	if len(xs) < 2 {
		return surfaceGrid{}, fmt.Errorf("segment %s: %d stations", s.UID(), len(xs))
	}
	g := surfaceGrid{
		name:      s.UID() + " " + sf.String(),
		component: c.UID(),
		segment:   s.UID(),
		index:     s.Index(),
		u:         xs,
		inner:     make([]geom.Point, len(xs)),
		outer:     make([]geom.Point, len(xs)),
	}
	for i, x := range xs {
		if g.inner[i], err = s.Point(sf, 0, x); err != nil {
			return surfaceGrid{}, err
		}
		if g.outer[i], err = s.Point(sf, 1, x); err != nil {
			return surfaceGrid{}, err
		}
		if !g.inner[i].IsFinite() || !g.outer[i].IsFinite() {
			return surfaceGrid{}, fmt.Errorf("segment %s: non-finite point at xsi %g", s.UID(), x)
		}
	}
	return g, nil
}

// modelSurfaces collects the grids of all components, checking ctx between
// components.
func modelSurfaces(ctx context.Context, op string, m *aircraft.Model) ([][]surfaceGrid, error) {
	var out [][]surfaceGrid
	for _, c := range m.Components() {
		if err := checkCtx(ctx, op); err != nil {
			return nil, err
		}
		grids, err := componentSurfaces(ctx, op, c)
		if err != nil {
			return nil, err
		}
		out = append(out, grids)
	}
	return out, nil
}

// maxCoordinate is the largest absolute coordinate over all grids.
func maxCoordinate(all [][]surfaceGrid) float64 {
	b := kernel.EmptyBox()
	for _, grids := range all {
		for _, g := range grids {
			for _, p := range g.inner {
				b.Extend(p)
			}
			for _, p := range g.outer {
				b.Extend(p)
			}
		}
	}
	if b.IsEmpty() {
		return 0
	}
	return max(math.Abs(b.Min.X), math.Abs(b.Min.Y), math.Abs(b.Min.Z),
		math.Abs(b.Max.X), math.Abs(b.Max.Y), math.Abs(b.Max.Z))
}
