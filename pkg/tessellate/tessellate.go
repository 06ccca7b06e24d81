// Package tessellate samples aircraft components into triangle meshes. One
// mesh is produced per component; mirrored components carry their
// reflected half in the same mesh.
package tessellate

import (
	"math"

	"github.com/chazu/aerogeom/pkg/aircraft"
	"github.com/chazu/aerogeom/pkg/geom"
	"github.com/chazu/aerogeom/pkg/kernel"
	"github.com/chazu/aerogeom/pkg/status"
)

const (
	// DefaultMaxDepth bounds the bisection depth per initial interval.
	DefaultMaxDepth = 8

	// initialIntervals seeds the xsi sampling so that closed profiles,
	// whose ends coincide, are never judged flat.
	initialIntervals = 8
)

// Options controls tessellation.
type Options struct {
	// Deflection is the largest allowed distance between a surface
	// midpoint and the chord of its sampling interval. Must be positive.
	Deflection float64

	// MaxDepth limits bisection. Zero means DefaultMaxDepth.
	MaxDepth int

	// Mirror adds the reflected half of symmetric components.
	Mirror bool
}

func (o Options) depth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

func (o Options) check(op string) error {
	if !(o.Deflection > 0) || math.IsInf(o.Deflection, 1) {
		return status.New(status.InvalidParameter, op, "deflection must be positive, got %g", o.Deflection)
	}
	return nil
}

// Patches returns the surfaces of c in segment order. Wings contribute an
// upper and a lower skin per segment, fuselages their outer hull.
func Patches(c aircraft.Component) []kernel.Patch {
	var patches []kernel.Patch
	for _, s := range c.Segments() {
		surf := func(sf aircraft.Surface) kernel.Surface {
			return kernel.SurfaceFunc(func(eta, xsi float64) (geom.Point, error) {
				return s.Point(sf, eta, xsi)
			})
		}
		base := kernel.Patch{
			ComponentUID: c.UID(),
			SegmentUID:   s.UID(),
			SegmentIndex: s.Index(),
		}
		switch c.Kind() {
		case aircraft.KindWing:
			upper := base
			upper.OnTop = true
			upper.Surface = surf(aircraft.SurfaceUpper)
			lower := base
			lower.Reversed = true
			lower.Surface = surf(aircraft.SurfaceLower)
			patches = append(patches, upper, lower)
		case aircraft.KindFuselage:
			outer := base
			outer.Surface = surf(aircraft.SurfaceOuter)
			patches = append(patches, outer)
		}
	}
	return patches
}

// Component tessellates every patch of c into a single mesh.
func Component(c aircraft.Component, opts Options) (*kernel.Mesh, error) {
	const op = "tessellate.Component"
	if c == nil {
		return nil, status.New(status.UnknownComponent, op, "nil component")
	}
	if err := opts.check(op); err != nil {
		return nil, err
	}

	mesh := &kernel.Mesh{PartName: c.UID()}
	for _, p := range Patches(c) {
		pm, err := Patch(p, opts)
		if err != nil {
			return nil, status.Annotate(op, err)
		}
		mesh.Append(pm)
	}
	if mesh.IsEmpty() {
		return nil, status.New(status.GeometryExportFailed, op, "component has no surface to tessellate").
			WithUID(c.UID()).WithStage("tessellate")
	}

	if opts.Mirror {
		if mt, ok := aircraft.MirroredTransform(c); ok {
			mesh.Append(mesh.Mirrored(mt))
		}
	}
	mesh.ComputeNormals()
	return mesh, nil
}

// Model tessellates all components of m, wings first, in document order.
func Model(m *aircraft.Model, opts Options) ([]*kernel.Mesh, error) {
	if m == nil {
		return nil, nil
	}
	var meshes []*kernel.Mesh
	for _, c := range m.Components() {
		mesh, err := Component(c, opts)
		if err != nil {
			return nil, status.Annotate("tessellate.Model", err)
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// SurfaceArea is the area of the tessellated primary side of c.
func SurfaceArea(c aircraft.Component, deflection float64) (float64, error) {
	mesh, err := Component(c, Options{Deflection: deflection})
	if err != nil {
		return 0, status.Annotate("tessellate.SurfaceArea", err)
	}
	return mesh.Area(), nil
}

// Patch samples one patch. Xsi stations are refined by bisection until
// every interval's midpoint lies within the deflection of its chord on
// both boundary curves; the surface is ruled in eta, so the two boundary
// curves bound the error everywhere.
func Patch(p kernel.Patch, opts Options) (*kernel.Mesh, error) {
	const op = "tessellate.Patch"
	if err := opts.check(op); err != nil {
		return nil, err
	}
	if p.Surface == nil {
		return nil, status.New(status.InternalError, op, "patch has no surface").WithUID(p.SegmentUID)
	}

	sm := &sampler{patch: p, deflection: opts.Deflection}
	xs := make([]float64, 0, 4*initialIntervals)
	for i := 0; i < initialIntervals; i++ {
		a := float64(i) / initialIntervals
		b := float64(i+1) / initialIntervals
		if len(xs) == 0 {
			xs = append(xs, a)
		}
		if err := sm.refine(a, b, opts.depth(), &xs); err != nil {
			return nil, err
		}
	}
	return sm.mesh(xs)
}

type station struct {
	inner, outer geom.Point
}

type sampler struct {
	patch      kernel.Patch
	deflection float64
	cache      map[float64]station
}

func (sm *sampler) at(xsi float64) (station, error) {
	if st, ok := sm.cache[xsi]; ok {
		return st, nil
	}
	in, err := sm.patch.Surface.Point(0, xsi)
	if err != nil {
		return station{}, err
	}
	out, err := sm.patch.Surface.Point(1, xsi)
	if err != nil {
		return station{}, err
	}
	if !in.IsFinite() || !out.IsFinite() {
		return station{}, status.New(status.GeometryExportFailed, "tessellate.Patch",
			"non-finite surface point at xsi %g", xsi).WithUID(sm.patch.ComponentUID).WithStage("tessellate")
	}
	if sm.cache == nil {
		sm.cache = make(map[float64]station)
	}
	st := station{inner: in, outer: out}
	sm.cache[xsi] = st
	return st, nil
}

// refine appends the stations in (a, b] to xs, bisecting while the midpoint
// deviation exceeds the deflection.
func (sm *sampler) refine(a, b float64, depth int, xs *[]float64) error {
	sa, err := sm.at(a)
	if err != nil {
		return err
	}
	sb, err := sm.at(b)
	if err != nil {
		return err
	}
	m := 0.5 * (a + b)
	smid, err := sm.at(m)
	if err != nil {
		return err
	}
	dev := math.Max(
		smid.inner.Distance(geom.Lerp(sa.inner, sb.inner, 0.5)),
		smid.outer.Distance(geom.Lerp(sa.outer, sb.outer, 0.5)),
	)
	if dev <= sm.deflection || depth <= 0 {
		*xs = append(*xs, b)
		return nil
	}
	if err := sm.refine(a, m, depth-1, xs); err != nil {
		return err
	}
	return sm.refine(m, b, depth-1, xs)
}

// mesh builds two rows of vertices (eta 0 and 1) over the xsi stations and
// joins them with two triangles per interval.
func (sm *sampler) mesh(xs []float64) (*kernel.Mesh, error) {
	p := sm.patch
	m := &kernel.Mesh{PartName: p.ComponentUID}
	inner := make([]uint32, len(xs))
	outer := make([]uint32, len(xs))
	for i, x := range xs {
		st, err := sm.at(x)
		if err != nil {
			return nil, err
		}
		inner[i] = m.AddVertex(st.inner)
		outer[i] = m.AddVertex(st.outer)
	}

	cell := func(eta, xsi float64) kernel.Cell {
		return kernel.Cell{
			ComponentUID: p.ComponentUID,
			SegmentUID:   p.SegmentUID,
			SegmentIndex: p.SegmentIndex,
			Eta:          eta,
			Xsi:          xsi,
			OnTop:        p.OnTop,
		}
	}
	tri := func(a, b, c uint32, eta, xsi float64) {
		if p.Reversed {
			b, c = c, b
		}
		m.AddTriangle(a, b, c, cell(eta, xsi))
	}
	for i := 0; i+1 < len(xs); i++ {
		x0, x1 := xs[i], xs[i+1]
		// (0,x0) (0,x1) (1,x1) and (0,x0) (1,x1) (1,x0)
		tri(inner[i], inner[i+1], outer[i+1], 1.0/3, (x0+2*x1)/3)
		tri(inner[i], outer[i+1], outer[i], 2.0/3, (2*x0+x1)/3)
	}
	return m, nil
}
