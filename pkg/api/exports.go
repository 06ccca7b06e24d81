package api

import (
	"context"

	"github.com/chazu/aerogeom/pkg/export"
	"github.com/chazu/aerogeom/pkg/registry"
)

// Exports hold h's shared lock for their whole run, so Close waits for them.

// ExportIGES writes configuration h to path as IGES.
func (s *Service) ExportIGES(ctx context.Context, h registry.Handle, path string) error {
	_, err := query(s, "api.ExportIGES", h, func(c *registry.Config) (struct{}, error) {
		return struct{}{}, s.exporter.ExportIGES(ctx, c, path)
	})
	return err
}

// ExportSTEP writes configuration h to path as STEP.
func (s *Service) ExportSTEP(ctx context.Context, h registry.Handle, path string) error {
	_, err := query(s, "api.ExportSTEP", h, func(c *registry.Config) (struct{}, error) {
		return struct{}{}, s.exporter.ExportSTEP(ctx, c, path)
	})
	return err
}

// ExportMeshedComponentVTK tessellates one component with the given
// deflection and writes it to path as VTK PolyData.
func (s *Service) ExportMeshedComponentVTK(ctx context.Context, h registry.Handle, componentUID, path string, deflection float64, mode export.Mode) error {
	_, err := query(s, "api.ExportMeshedComponentVTK", h, func(c *registry.Config) (struct{}, error) {
		return struct{}{}, s.exporter.ExportMeshedComponentVTK(ctx, c, componentUID, path, deflection, mode)
	})
	return err
}

// ExportMeshedComponentSTL tessellates one component and writes it to path
// as binary STL.
func (s *Service) ExportMeshedComponentSTL(ctx context.Context, h registry.Handle, componentUID, path string, deflection float64) error {
	_, err := query(s, "api.ExportMeshedComponentSTL", h, func(c *registry.Config) (struct{}, error) {
		return struct{}{}, s.exporter.ExportMeshedComponentSTL(ctx, c, componentUID, path, deflection)
	})
	return err
}

// ExportMeshedModelSTL tessellates every component of h and writes them
// to path as one binary STL.
func (s *Service) ExportMeshedModelSTL(ctx context.Context, h registry.Handle, path string, deflection float64) error {
	_, err := query(s, "api.ExportMeshedModelSTL", h, func(c *registry.Config) (struct{}, error) {
		return struct{}{}, s.exporter.ExportMeshedModelSTL(ctx, c, path, deflection)
	})
	return err
}

// ExportPlanformDXF writes the wing planforms of h to path as DXF.
func (s *Service) ExportPlanformDXF(ctx context.Context, h registry.Handle, path string) error {
	_, err := query(s, "api.ExportPlanformDXF", h, func(c *registry.Config) (struct{}, error) {
		return struct{}{}, s.exporter.ExportPlanformDXF(ctx, c, path)
	})
	return err
}
