package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/chazu/aerogeom/pkg/aircraft"
	"github.com/chazu/aerogeom/pkg/api"
	"github.com/chazu/aerogeom/pkg/export"
	"github.com/chazu/aerogeom/pkg/geom"
	"github.com/chazu/aerogeom/pkg/registry"
	"github.com/chazu/aerogeom/pkg/status"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Evaluate and validate a definition, printing a JSON summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return status.Wrap(status.InvalidDocument, "check", err)
			}
			result := c.svc.Check(string(src))
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
			if len(result.Errors) > 0 {
				return status.New(status.InvalidDocument, "check", "%d error(s) in %s", len(result.Errors), args[0])
			}
			return nil
		},
	}
}

func (c *cli) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "List components, segments and wing measures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := c.open(args[0])
			if err != nil {
				return err
			}
			defer c.svc.Close(h)

			out := cmd.OutOrStdout()
			uid, err := c.svc.ConfigurationUID(h)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "configuration %s\n", uid)

			for _, kind := range []aircraft.Kind{aircraft.KindWing, aircraft.KindFuselage} {
				n, err := c.svc.ComponentCount(h, kind)
				if err != nil {
					return err
				}
				for i := 1; i <= n; i++ {
					ref := api.ComponentRef{Kind: kind, Index: i}
					if err := c.describe(cmd, h, ref); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
}

func (c *cli) describe(cmd *cobra.Command, h registry.Handle, ref api.ComponentRef) error {
	out := cmd.OutOrStdout()
	uid, err := c.svc.ComponentUID(h, ref.Kind, ref.Index)
	if err != nil {
		return err
	}
	n, err := c.svc.SegmentCount(h, ref)
	if err != nil {
		return err
	}
	segs := make([]string, n)
	for i := range segs {
		if segs[i], err = c.svc.SegmentUID(h, ref, i+1); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "%s %d %s: segments %s\n", ref.Kind, ref.Index, uid, strings.Join(segs, ", "))
	for i, seg := range segs {
		inner, outer, err := c.svc.SegmentSections(h, ref, i+1)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  segment %s: %s -> %s\n", seg, inner, outer)
	}
	if ref.Kind != aircraft.KindWing {
		return nil
	}

	area, err := c.svc.ReferenceArea(h, ref, geom.PlaneXY)
	if err != nil {
		return err
	}
	span, err := c.svc.WingSpan(h, ref)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  reference area (x-y) %.6g, span %.6g\n", area, span)
	volume, err := c.svc.WingVolume(h, ref)
	if err != nil {
		return err
	}
	wetted, err := c.svc.WingWettedArea(h, ref)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  volume %.6g, wetted area %.6g\n", volume, wetted)

	ncs, err := c.svc.ComponentSegmentCount(h, ref)
	if err != nil {
		return err
	}
	css := make([]string, 0, ncs)
	for i := 1; i <= ncs; i++ {
		cs, err := c.svc.ComponentSegmentUID(h, ref, i)
		if err != nil {
			return err
		}
		css = append(css, cs)
	}
	if len(css) > 0 {
		fmt.Fprintf(out, "  component segments %s\n", strings.Join(css, ", "))
	}
	return nil
}

func (c *cli) pointCmd() *cobra.Command {
	var (
		kindName, component, surfaceName string
		segment                          int
		eta, xsi                         float64
		normal                           bool
	)
	cmd := &cobra.Command{
		Use:   "point FILE",
		Short: "Evaluate a surface point or chord normal at (eta, xsi)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := aircraft.ParseKind(kindName)
			if err != nil {
				return status.Wrap(status.InvalidParameter, "point", err)
			}
			surf, err := aircraft.ParseSurface(surfaceName)
			if err != nil {
				return status.Wrap(status.InvalidParameter, "point", err)
			}
			h, err := c.open(args[0])
			if err != nil {
				return err
			}
			defer c.svc.Close(h)

			ref := api.ComponentRef{Kind: kind, UID: component, Index: 1}
			var p geom.Point
			if normal {
				p, err = c.svc.ChordNormal(h, ref, segment, eta, xsi)
			} else {
				p, err = c.svc.EvaluatePoint(h, surf, ref, segment, eta, xsi)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.12g %.12g %.12g\n", p.X, p.Y, p.Z)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&kindName, "kind", "wing", "component kind: wing or fuselage")
	f.StringVar(&component, "component", "", "component UID (default: first of kind)")
	f.IntVar(&segment, "segment", 1, "segment index, 1-based")
	f.StringVar(&surfaceName, "surface", "chord", "upper, lower, chord or outer")
	f.Float64Var(&eta, "eta", 0, "span-wise coordinate in [0, 1]")
	f.Float64Var(&xsi, "xsi", 0, "chord-wise coordinate in [0, 1]")
	f.BoolVar(&normal, "normal", false, "print the chord normal instead of a point")
	return cmd
}

func (c *cli) splinesCmd() *cobra.Command {
	var data bool
	cmd := &cobra.Command{
		Use:   "splines FILE PROFILE",
		Short: "Report the B-splines of a profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := c.open(args[0])
			if err != nil {
				return err
			}
			defer c.svc.Close(h)

			out := cmd.OutOrStdout()
			profile := args[1]
			n, err := c.svc.ProfileSplineCount(h, profile)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "profile %s: %d spline(s)\n", profile, n)
			for i := 1; i <= n; i++ {
				sz, err := c.svc.ProfileSplineDataSizes(h, profile, i)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "spline %d: degree %d, %d control points, %d knots\n",
					i, sz.Degree, sz.ControlPointCount, sz.KnotCount)
				if !data {
					continue
				}
				sp, err := c.svc.ProfileSplineData(h, profile, i)
				if err != nil {
					return err
				}
				knots := lo.Map(sp.Knots, func(k float64, _ int) string { return fmt.Sprintf("%g", k) })
				fmt.Fprintf(out, "  knots %s\n", strings.Join(knots, " "))
				for _, p := range sp.ControlPoints {
					fmt.Fprintf(out, "  %g %g %g\n", p.X, p.Y, p.Z)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&data, "data", false, "print knots and control points")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var (
		format, out, component, modeName string
		deflection                       float64
		all                              bool
	)
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Export to IGES, STEP, VTK, STL or DXF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return status.New(status.InvalidParameter, "export", "--out is required")
			}
			if !cmd.Flags().Changed("deflection") {
				deflection = c.settings.Deflection
			}
			if modeName == "" {
				modeName = c.settings.VTKMode
			}
			mode, err := export.ParseMode(modeName)
			if err != nil {
				return status.Wrap(status.InvalidParameter, "export", err)
			}
			if all && component != "" {
				return status.New(status.InvalidParameter, "export", "--all and --component are exclusive")
			}

			h, err := c.open(args[0])
			if err != nil {
				return err
			}
			defer c.svc.Close(h)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			path := c.outputPath(out)

			f := export.Format(strings.ToLower(format))
			switch f {
			case export.FormatIGES:
				err = c.svc.ExportIGES(ctx, h, path)
			case export.FormatSTEP:
				err = c.svc.ExportSTEP(ctx, h, path)
			case export.FormatDXF:
				err = c.svc.ExportPlanformDXF(ctx, h, path)
			case export.FormatSTL:
				if all {
					err = c.svc.ExportMeshedModelSTL(ctx, h, path, deflection)
					break
				}
				err = c.exportMeshes(ctx, f, h, component, path, deflection, mode)
			case export.FormatVTK:
				err = c.exportMeshes(ctx, f, h, component, path, deflection, mode)
			default:
				return status.New(status.InvalidParameter, "export", "unknown format %q", format)
			}
			if err != nil {
				return err
			}
			c.logger.Debug("export done", zap.String("path", path))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&format, "format", "f", "step", "iges, step, vtk, stl or dxf")
	f.StringVarP(&out, "out", "o", "", "destination file")
	f.StringVar(&component, "component", "", "component UID for vtk and stl (default: every component, one file each)")
	f.Float64Var(&deflection, "deflection", 0, "tessellation deflection for vtk and stl (default from settings)")
	f.StringVar(&modeName, "mode", "", "vtk mode: simple or annotated (default from settings)")
	f.BoolVar(&all, "all", false, "stl only: write every component into one file")
	return cmd
}

// exportMeshes writes one component, or every component into files
// suffixed with its UID when component is empty.
func (c *cli) exportMeshes(ctx context.Context, format export.Format, h registry.Handle, component, path string, deflection float64, mode export.Mode) error {
	write := func(uid, path string) error {
		if format == export.FormatSTL {
			return c.svc.ExportMeshedComponentSTL(ctx, h, uid, path, deflection)
		}
		return c.svc.ExportMeshedComponentVTK(ctx, h, uid, path, deflection, mode)
	}
	if component != "" {
		return write(component, path)
	}
	var uids []string
	for _, kind := range []aircraft.Kind{aircraft.KindWing, aircraft.KindFuselage} {
		n, err := c.svc.ComponentCount(h, kind)
		if err != nil {
			return err
		}
		for i := 1; i <= n; i++ {
			uid, err := c.svc.ComponentUID(h, kind, i)
			if err != nil {
				return err
			}
			uids = append(uids, uid)
		}
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	if ext == "" {
		ext = "." + string(format)
	}
	for _, uid := range uids {
		if err := write(uid, base+"_"+uid+ext); err != nil {
			return err
		}
	}
	return nil
}
