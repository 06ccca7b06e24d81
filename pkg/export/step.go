package export

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chazu/aerogeom/pkg/aircraft"
	"github.com/chazu/aerogeom/pkg/metrics"
)

// ExportSTEP writes every component as a GEOMETRIC_SET of bilinear
// B_SPLINE_SURFACE_WITH_KNOTS entities in an ISO 10303-21 file.
func (e *Exporter) ExportSTEP(ctx context.Context, cfg Configuration, path string) error {
	const op = "export.STEP"
	timer := metrics.NewTimer()
	err := e.exportSTEP(ctx, op, cfg, path)
	return e.finish(FormatSTEP, path, timer, err)
}

func (e *Exporter) exportSTEP(ctx context.Context, op string, cfg Configuration, path string) error {
	if err := checkConfig(op, cfg); err != nil {
		return err
	}
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	m := cfg.Model()
	all, err := modelSurfaces(ctx, op, m)
	if err != nil {
		return err
	}
	comps := m.Components()
	return writeFileAtomic(op, path, func(w io.Writer) error {
		s := &stepData{}
		ctxID := s.context()
		var sets []int
		for i, grids := range all {
			if err := checkCtx(ctx, op); err != nil {
				return err
			}
			sets = append(sets, s.component(comps[i].UID(), grids))
		}
		s.add("GEOMETRICALLY_BOUNDED_SURFACE_SHAPE_REPRESENTATION(%s,%s,#%d)",
			stepString(cfg.UID()), refList(sets), ctxID)

		_, err := io.WriteString(w, stepHeader(m, cfg.UID(), filepath.Base(path))+s.String()+stepFooter)
		return err
	})
}

const stepFooter = "ENDSEC;\nEND-ISO-10303-21;\n"

func stepHeader(m *aircraft.Model, uid, file string) string {
	h := m.Header()
	author := h.Creator
	if author == "" {
		author = "aerogeom"
	}
	desc := h.Description
	if desc == "" {
		desc = uid
	}
	var b strings.Builder
	b.WriteString("ISO-10303-21;\nHEADER;\n")
	fmt.Fprintf(&b, "FILE_DESCRIPTION((%s),'2;1');\n", stepString(desc))
	fmt.Fprintf(&b, "FILE_NAME(%s,%s,(%s),(''),'aerogeom','aerogeom','');\n",
		stepString(file), stepString(timestamp(m).Format("2006-01-02T15:04:05")), stepString(author))
	b.WriteString("FILE_SCHEMA(('AUTOMOTIVE_DESIGN { 1 0 10303 214 1 1 1 1 }'));\n")
	b.WriteString("ENDSEC;\nDATA;\n")
	return b.String()
}

// stepData accumulates numbered entity instances.
type stepData struct {
	b    strings.Builder
	next int
}

func (s *stepData) add(format string, args ...any) int {
	s.next++
	fmt.Fprintf(&s.b, "#%d=", s.next)
	fmt.Fprintf(&s.b, format, args...)
	s.b.WriteString(";\n")
	return s.next
}

func (s *stepData) String() string { return s.b.String() }

// context writes SI units with a 1e-7 m uncertainty and returns the
// representation context id.
func (s *stepData) context() int {
	length := s.add("(LENGTH_UNIT() NAMED_UNIT(*) SI_UNIT($,.METRE.))")
	angle := s.add("(NAMED_UNIT(*) PLANE_ANGLE_UNIT() SI_UNIT($,.RADIAN.))")
	solid := s.add("(NAMED_UNIT(*) SI_UNIT($,.STERADIAN.) SOLID_ANGLE_UNIT())")
	unc := s.add("UNCERTAINTY_MEASURE_WITH_UNIT(LENGTH_MEASURE(%s),#%d,'distance_accuracy_value','confusion accuracy')",
		formatReal(1e-7), length)
	return s.add("(GEOMETRIC_REPRESENTATION_CONTEXT(3) GLOBAL_UNCERTAINTY_ASSIGNED_CONTEXT((#%d)) "+
		"GLOBAL_UNIT_ASSIGNED_CONTEXT((#%d,#%d,#%d)) REPRESENTATION_CONTEXT('aerogeom','3D'))",
		unc, length, angle, solid)
}

func (s *stepData) component(uid string, grids []surfaceGrid) int {
	var surfs []int
	for _, g := range grids {
		surfs = append(surfs, s.surface(g))
	}
	return s.add("GEOMETRIC_SET(%s,%s)", stepString(uid), refList(surfs))
}

// surface writes one degree (1, 1) surface. The control net is indexed
// [u][v], u along xsi and v along eta.
func (s *stepData) surface(g surfaceGrid) int {
	n := len(g.u)
	rows := make([]string, n)
	for i := range g.u {
		a := s.point(g.inner[i].X, g.inner[i].Y, g.inner[i].Z)
		b := s.point(g.outer[i].X, g.outer[i].Y, g.outer[i].Z)
		rows[i] = fmt.Sprintf("(#%d,#%d)", a, b)
	}
	mults := make([]string, n)
	knots := make([]string, n)
	for i, u := range g.u {
		mults[i] = "1"
		knots[i] = formatReal(u)
	}
	mults[0], mults[n-1] = "2", "2"
	return s.add("B_SPLINE_SURFACE_WITH_KNOTS(%s,1,1,(%s),.UNSPECIFIED.,.F.,.F.,.F.,(%s),(2,2),(%s),(0.,1.),.UNSPECIFIED.)",
		stepString(g.component+" "+g.name),
		strings.Join(rows, ","),
		strings.Join(mults, ","),
		strings.Join(knots, ","))
}

func (s *stepData) point(x, y, z float64) int {
	return s.add("CARTESIAN_POINT('',(%s,%s,%s))", formatReal(x), formatReal(y), formatReal(z))
}

func refList(ids []int) string {
	refs := make([]string, len(ids))
	for i, id := range ids {
		refs[i] = fmt.Sprintf("#%d", id)
	}
	return "(" + strings.Join(refs, ",") + ")"
}

// stepString quotes s as a STEP string literal. Characters outside
// printable ASCII are replaced.
func stepString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch {
		case r == '\'':
			b.WriteString("''")
		case r == '\\':
			b.WriteString(`\\`)
		case r < 0x20 || r > 0x7e:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
