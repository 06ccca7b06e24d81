package export

import (
	"context"
	"os"

	"github.com/chazu/aerogeom/pkg/aircraft"
	"github.com/chazu/aerogeom/pkg/geom"
	"github.com/chazu/aerogeom/pkg/metrics"
	"github.com/chazu/aerogeom/pkg/status"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// ExportPlanformDXF writes the outline of every wing segment's chord surface,
// projected onto the XY plane, as DXF lines. Symmetric wings contribute
// their mirrored half too.
func (e *Exporter) ExportPlanformDXF(ctx context.Context, cfg Configuration, path string) error {
	const op = "export.DXF"
	timer := metrics.NewTimer()
	err := e.exportDXF(ctx, op, cfg, path)
	return e.finish(FormatDXF, path, timer, err)
}

func (e *Exporter) exportDXF(ctx context.Context, op string, cfg Configuration, path string) error {
	if err := checkConfig(op, cfg); err != nil {
		return err
	}
	m := cfg.Model()
	n := m.ComponentCount(aircraft.KindWing)
	if n == 0 {
		return status.New(status.GeometryExportFailed, op, "configuration has no wings").
			WithUID(cfg.UID()).WithStage("planform")
	}

	var outlines [][]geom.Point
	for i := 1; i <= n; i++ {
		if err := checkCtx(ctx, op); err != nil {
			return err
		}
		w, err := m.Wing(i)
		if err != nil {
			return status.Annotate(op, err)
		}
		quads, err := planform(w)
		if err != nil {
			return status.From(status.GeometryExportFailed, op, err).WithUID(w.UID()).WithStage("planform")
		}
		outlines = append(outlines, quads...)
	}

	return saveAtomic(op, path, func(tmp *os.File) error {
		d := render.NewDXF(tmp.Name())
		for _, q := range outlines {
			for j := range q {
				a, b := q[j], q[(j+1)%len(q)]
				d.Line(&sdf.Line2{v2.Vec{X: a.X, Y: a.Y}, v2.Vec{X: b.X, Y: b.Y}})
			}
		}
		if err := d.Save(); err != nil {
			return status.Wrap(status.InternalError, op, err)
		}
		return nil
	})
}

// planform returns the chord quads of w, then their mirror images.
func planform(w *aircraft.Wing) ([][]geom.Point, error) {
	var quads [][]geom.Point
	for _, s := range w.Segments() {
		q, err := s.ChordQuad()
		if err != nil {
			return nil, err
		}
		quads = append(quads, q)
	}
	if mt, ok := aircraft.MirroredTransform(w); ok {
		for _, q := range quads {
			quads = append(quads, mt.ApplyAll(q))
		}
	}
	return quads, nil
}
