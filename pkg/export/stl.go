package export

import (
	"context"
	"errors"
	"math"
	"os"

	"github.com/chazu/aerogeom/pkg/aircraft"
	"github.com/chazu/aerogeom/pkg/kernel"
	"github.com/chazu/aerogeom/pkg/kernel/sdfx"
	"github.com/chazu/aerogeom/pkg/metrics"
	"github.com/chazu/aerogeom/pkg/status"
	"github.com/chazu/aerogeom/pkg/tessellate"
	"go.uber.org/zap"
)

// ExportMeshedComponentSTL tessellates one component, including its mirrored
// half, and writes it as binary STL.
func (e *Exporter) ExportMeshedComponentSTL(ctx context.Context, cfg Configuration, componentUID, path string, deflection float64) error {
	const op = "export.STL"
	timer := metrics.NewTimer()
	err := e.exportSTL(ctx, op, cfg, componentUID, path, deflection)
	return e.finish(FormatSTL, path, timer, err)
}

func (e *Exporter) exportSTL(ctx context.Context, op string, cfg Configuration, uid, path string, deflection float64) error {
	if err := checkConfig(op, cfg); err != nil {
		return err
	}
	if err := checkDeflection(op, deflection); err != nil {
		return err
	}
	_, mesh, err := meshComponent(ctx, op, cfg.Model(), uid, deflection)
	if err != nil {
		return err
	}
	return saveAtomic(op, path, func(tmp *os.File) error {
		if err := sdfx.SaveSTL(tmp.Name(), mesh); err != nil {
			if errors.Is(err, sdfx.ErrEmptyMesh) {
				return status.From(status.GeometryExportFailed, op, err).WithUID(uid).WithStage("stl")
			}
			return status.Wrap(status.InternalError, op, err)
		}
		return nil
	})
}

// ExportMeshedModelSTL tessellates every component of the configuration,
// mirrored halves included, and writes them together as one binary STL.
func (e *Exporter) ExportMeshedModelSTL(ctx context.Context, cfg Configuration, path string, deflection float64) error {
	const op = "export.STLModel"
	timer := metrics.NewTimer()
	err := e.exportModelSTL(ctx, op, cfg, path, deflection)
	return e.finish(FormatSTL, path, timer, err)
}

func (e *Exporter) exportModelSTL(ctx context.Context, op string, cfg Configuration, path string, deflection float64) error {
	if err := checkConfig(op, cfg); err != nil {
		return err
	}
	if err := checkDeflection(op, deflection); err != nil {
		return err
	}
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	meshes, err := tessellate.Model(cfg.Model(), tessellate.Options{Deflection: deflection, Mirror: true})
	if err != nil {
		if errors.Is(err, status.GeometryExportFailed) {
			return status.Annotate(op, err)
		}
		return status.From(status.GeometryExportFailed, op, err).WithStage("tessellate")
	}
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	all := &kernel.Mesh{}
	for _, m := range meshes {
		all.Append(m)
	}
	e.logger.Debug("model tessellated",
		zap.Int("components", len(meshes)),
		zap.Int("triangles", all.TriangleCount()),
		zap.Any("extent", all.Bounds().Size()))
	return saveAtomic(op, path, func(tmp *os.File) error {
		if err := sdfx.SaveSTL(tmp.Name(), all); err != nil {
			if errors.Is(err, sdfx.ErrEmptyMesh) {
				return status.From(status.GeometryExportFailed, op, err).WithStage("stl")
			}
			return status.Wrap(status.InternalError, op, err)
		}
		return nil
	})
}

func checkDeflection(op string, deflection float64) error {
	if !(deflection > 0) || math.IsInf(deflection, 1) {
		return status.New(status.InvalidParameter, op, "deflection must be positive and finite, got %g", deflection)
	}
	return nil
}

// meshComponent finds uid in m and tessellates it with its mirror image.
// The context is checked before and after tessellation.
func meshComponent(ctx context.Context, op string, m *aircraft.Model, uid string, deflection float64) (aircraft.Component, *kernel.Mesh, error) {
	if err := checkCtx(ctx, op); err != nil {
		return nil, nil, err
	}
	c, err := m.Find(uid)
	if err != nil {
		return nil, nil, status.Annotate(op, err)
	}
	mesh, err := tessellate.Component(c, tessellate.Options{Deflection: deflection, Mirror: true})
	if err != nil {
		if errors.Is(err, status.GeometryExportFailed) {
			return nil, nil, status.Annotate(op, err)
		}
		return nil, nil, status.From(status.GeometryExportFailed, op, err).WithUID(uid).WithStage("tessellate")
	}
	if err := checkCtx(ctx, op); err != nil {
		return nil, nil, err
	}
	return c, mesh, nil
}
