// Package export writes aircraft geometry to IGES, STEP, VTK, STL and DXF
// files.
//
// Every writer renders into a temporary file beside the destination and
// renames it into place only on success, so a failed or cancelled export
// leaves the destination untouched. Output is deterministic: timestamps
// come from the document header, never from the clock, and components are
// visited wings first, each in document order.
package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chazu/aerogeom/pkg/aircraft"
	"github.com/chazu/aerogeom/pkg/metrics"
	"github.com/chazu/aerogeom/pkg/status"
	"go.uber.org/zap"
)

// Format names an output format.
type Format string

const (
	FormatIGES Format = "iges"
	FormatSTEP Format = "step"
	FormatVTK  Format = "vtk"
	FormatSTL  Format = "stl"
	FormatDXF  Format = "dxf"
)

// Mode selects how much metadata a VTK export carries.
type Mode int

const (
	// ModeSimple writes points and triangles only.
	ModeSimple Mode = iota
	// ModeAnnotated adds per-cell segment index, eta, xsi and upper/lower
	// flags, and vertex normals.
	ModeAnnotated
)

func (m Mode) String() string {
	switch m {
	case ModeSimple:
		return "simple"
	case ModeAnnotated:
		return "annotated"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "simple" and "annotated" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple", "":
		return ModeSimple, nil
	case "annotated":
		return ModeAnnotated, nil
	}
	return ModeSimple, fmt.Errorf("export: unknown VTK mode %q, expected simple or annotated", s)
}

// Configuration is what the exporters need from an open configuration.
type Configuration interface {
	UID() string
	Model() *aircraft.Model
}

// Exporter writes files and reports on them.
type Exporter struct {
	logger *zap.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Exporter.
func New(opts ...Option) *Exporter {
	e := &Exporter{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// timestamp returns the header timestamp in UTC, or the Unix epoch when the
// document has none.
func timestamp(m *aircraft.Model) time.Time {
	ts := m.Header().Timestamp
	if ts.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return ts.UTC()
}

// checkCtx reports a cancelled or expired context as InternalError wrapping
// the context error.
func checkCtx(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return status.Wrap(status.InternalError, op, err)
	}
	return nil
}

// finish logs and records the outcome of one export.
func (e *Exporter) finish(format Format, path string, timer *metrics.Timer, err error) error {
	metrics.RecordExport(string(format), err, timer.Duration())
	if err != nil {
		e.logger.Warn("export failed",
			zap.String("format", string(format)),
			zap.String("path", path),
			zap.Error(err))
		return err
	}
	e.logger.Info("export written",
		zap.String("format", string(format)),
		zap.String("path", path),
		zap.Duration("took", timer.Duration()))
	return nil
}

func checkConfig(op string, cfg Configuration) error {
	if cfg == nil || cfg.Model() == nil {
		return status.New(status.InvalidHandle, op, "no configuration")
	}
	return nil
}
