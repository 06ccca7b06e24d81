package export

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/xml"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/chazu/aerogeom/pkg/aircraft"
	"github.com/chazu/aerogeom/pkg/document"
	"github.com/chazu/aerogeom/pkg/document/doctest"
	"github.com/chazu/aerogeom/pkg/geom"
	"github.com/chazu/aerogeom/pkg/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	m *aircraft.Model
}

func (c testConfig) UID() string            { return c.m.Header().UID }
func (c testConfig) Model() *aircraft.Model { return c.m }

func configFor(t *testing.T, d *document.Document) testConfig {
	t.Helper()
	m, err := aircraft.Build(d)
	require.NoError(t, err)
	return testConfig{m: m}
}

func brokenConfig(t *testing.T) testConfig {
	t.Helper()
	d := doctest.Aircraft()
	d.Wings[0].Sections[2].ProfileUID = "BrokenSpline"
	return configFor(t, d)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestExportIGES(t *testing.T) {
	cfg := configFor(t, doctest.Aircraft())
	path := filepath.Join(t.TempDir(), "aircraft.igs")
	require.NoError(t, New().ExportIGES(context.Background(), cfg, path))

	text := readFile(t, path)
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	require.NotEmpty(t, lines)

	sections := map[byte]int{}
	surfaces := 0
	for i, l := range lines {
		require.Len(t, l, 80, "line %d", i+1)
		sections[l[72]]++
		if l[72] == 'D' && strings.TrimSpace(l[:8]) == "128" {
			surfaces++
		}
	}
	assert.Equal(t, 1, sections['S'])
	assert.Equal(t, 1, sections['T'])
	assert.Positive(t, sections['G'])
	assert.Positive(t, sections['P'])

	// W1: 2 segments x 2 sides x mirrored; F1: 2 segments. Two D lines each.
	assert.Equal(t, 2*(2*2*2+2), surfaces)
	assert.Contains(t, text, "15H20240101.120000")
	assert.Contains(t, text, "12Haircraft.igs")
}

func TestExportSTEP(t *testing.T) {
	cfg := configFor(t, doctest.Aircraft())
	path := filepath.Join(t.TempDir(), "aircraft.stp")
	require.NoError(t, New().ExportSTEP(context.Background(), cfg, path))

	text := readFile(t, path)
	assert.True(t, strings.HasPrefix(text, "ISO-10303-21;\nHEADER;\n"))
	assert.True(t, strings.HasSuffix(text, "END-ISO-10303-21;\n"))
	assert.Contains(t, text, "'2024-01-01T12:00:00'")
	assert.Contains(t, text, "GEOMETRIC_SET('W1',")
	assert.Contains(t, text, "GEOMETRIC_SET('F1',")
	assert.Contains(t, text, "GEOMETRICALLY_BOUNDED_SURFACE_SHAPE_REPRESENTATION('TestAircraft',")
	assert.Equal(t, 10, strings.Count(text, "B_SPLINE_SURFACE_WITH_KNOTS("))
	assert.Contains(t, text, "'W1 W1_Seg1 upper'")
	assert.Contains(t, text, "'W1 W1_Seg2 lower mirrored'")
}

func TestExportDeterministic(t *testing.T) {
	cfg := configFor(t, doctest.Aircraft())
	ex := New()
	ctx := context.Background()

	for _, tc := range []struct {
		name  string
		write func(path string) error
	}{
		{"iges", func(p string) error { return ex.ExportIGES(ctx, cfg, p) }},
		{"step", func(p string) error { return ex.ExportSTEP(ctx, cfg, p) }},
		{"vtk", func(p string) error {
			return ex.ExportMeshedComponentVTK(ctx, cfg, "W1", p, 0.01, ModeAnnotated)
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a := filepath.Join(t.TempDir(), "out")
			b := filepath.Join(t.TempDir(), "out")
			require.NoError(t, tc.write(a))
			require.NoError(t, tc.write(b))
			assert.Equal(t, readFile(t, a), readFile(t, b))
		})
	}
}

func TestExportVTK(t *testing.T) {
	cfg := configFor(t, doctest.Aircraft())
	dir := t.TempDir()
	ex := New()

	simple := filepath.Join(dir, "simple.vtp")
	require.NoError(t, ex.ExportMeshedComponentVTK(context.Background(), cfg, "W1", simple, 0.01, ModeSimple))
	var f vtkFile
	require.NoError(t, xml.Unmarshal([]byte(readFile(t, simple)), &f))
	piece := f.PolyData.Piece
	assert.Equal(t, "PolyData", f.Type)
	assert.Positive(t, piece.NumberOfPolys)
	assert.Nil(t, piece.CellData)
	assert.Nil(t, piece.PointData)
	require.Len(t, piece.Polys.Arrays, 2)
	assert.Len(t, strings.Fields(piece.Polys.Arrays[0].Data), 3*piece.NumberOfPolys)
	assert.Len(t, strings.Fields(piece.Points.Arrays[0].Data), 3*piece.NumberOfPoints)

	annotated := filepath.Join(dir, "annotated.vtp")
	require.NoError(t, ex.ExportMeshedComponentVTK(context.Background(), cfg, "W1", annotated, 0.01, ModeAnnotated))
	text := readFile(t, annotated)
	assert.Contains(t, text, "segment 1 W1_Seg1")
	assert.Contains(t, text, "created 2024-01-01T12:00:00Z")

	f = vtkFile{}
	require.NoError(t, xml.Unmarshal([]byte(text), &f))
	cells := f.PolyData.Piece.CellData
	require.NotNil(t, cells)
	names := make(map[string][]string)
	for _, a := range cells.Arrays {
		names[a.Name] = strings.Fields(a.Data)
	}
	for _, n := range []string{"segmentIndex", "eta", "xsi", "isOnTop", "isMirrored"} {
		assert.Len(t, names[n], f.PolyData.Piece.NumberOfPolys, n)
	}
	assert.Contains(t, names["isMirrored"], "0")
	assert.Contains(t, names["isMirrored"], "1")
	assert.Contains(t, names["isOnTop"], "0")
	assert.Contains(t, names["isOnTop"], "1")
	assert.Contains(t, names["segmentIndex"], "2")
	require.NotNil(t, f.PolyData.Piece.PointData)

	field := f.PolyData.FieldData
	require.NotNil(t, field)
	require.Len(t, field.Arrays, 2)
	uids := field.Arrays[0]
	assert.Equal(t, "String", uids.Type)
	assert.Equal(t, 2, uids.Tuples)
	assert.Equal(t, []string{"W1_Seg1", "W1_Seg2"}, decodeStrings(t, uids.Data))

	bounds := strings.Fields(field.Arrays[1].Data)
	require.Len(t, bounds, 6)
	ymin, err := strconv.ParseFloat(bounds[2], 64)
	require.NoError(t, err)
	ymax, err := strconv.ParseFloat(bounds[3], 64)
	require.NoError(t, err)
	// the mirrored half reaches to -y
	assert.InDelta(t, -doctest.W1Tip.Y, ymin, 1e-9)
	assert.InDelta(t, doctest.W1Tip.Y, ymax, 1e-9)
}

func decodeStrings(t *testing.T, data string) []string {
	t.Helper()
	var out []string
	var cur []byte
	for _, f := range strings.Fields(data) {
		v, err := strconv.Atoi(f)
		require.NoError(t, err)
		if v == 0 {
			out = append(out, string(cur))
			cur = nil
			continue
		}
		cur = append(cur, byte(v))
	}
	assert.Empty(t, cur, "unterminated string")
	return out
}

func TestJoinStrings(t *testing.T) {
	assert.Equal(t, "65 0 66 67 0", joinStrings([]string{"A", "BC"}))
	assert.Equal(t, "0", joinStrings([]string{""}))
	assert.Equal(t, "", joinStrings(nil))
}

func TestExportVTKErrors(t *testing.T) {
	cfg := configFor(t, doctest.Aircraft())
	ex := New()
	path := filepath.Join(t.TempDir(), "out.vtp")

	for _, d := range []float64{0, -1, math.NaN()} {
		err := ex.ExportMeshedComponentVTK(context.Background(), cfg, "W1", path, d, ModeSimple)
		assert.True(t, errors.Is(err, status.InvalidParameter), "deflection %g: %v", d, err)
	}
	err := ex.ExportMeshedComponentVTK(context.Background(), cfg, "Nope", path, 0.01, ModeSimple)
	assert.True(t, errors.Is(err, status.UnknownComponent), "%v", err)

	err = ex.ExportMeshedComponentVTK(context.Background(), cfg, "W1", path, 0.01, Mode(7))
	assert.True(t, errors.Is(err, status.InvalidParameter), "%v", err)

	err = ex.ExportMeshedComponentVTK(context.Background(), brokenConfig(t), "W1", path, 0.01, ModeSimple)
	var se *status.Error
	require.True(t, errors.As(err, &se), "%v", err)
	assert.Equal(t, status.GeometryExportFailed, se.Kind)
	assert.Equal(t, "W1", se.UID)
	assert.NotEmpty(t, se.Stage)

	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestExportSTL(t *testing.T) {
	cfg := configFor(t, doctest.Aircraft())
	ex := New()
	path := filepath.Join(t.TempDir(), "w1.stl")
	require.NoError(t, ex.ExportMeshedComponentSTL(context.Background(), cfg, "W1", path, 0.01))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 84)
	n := binary.LittleEndian.Uint32(data[80:84])
	assert.Positive(t, n)
	assert.Equal(t, 84+50*int(n), len(data))

	err = ex.ExportMeshedComponentSTL(context.Background(), cfg, "W1", path, 0)
	assert.True(t, errors.Is(err, status.InvalidParameter), "%v", err)
	err = ex.ExportMeshedComponentSTL(context.Background(), cfg, "Nope", path, 0.01)
	assert.True(t, errors.Is(err, status.UnknownComponent), "%v", err)
	err = ex.ExportMeshedComponentSTL(context.Background(), brokenConfig(t), "W1", path, 0.01)
	assert.True(t, errors.Is(err, status.GeometryExportFailed), "%v", err)

	// failures leave the earlier file in place
	again, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestExportModelSTL(t *testing.T) {
	cfg := configFor(t, doctest.Aircraft())
	ex := New()
	dir := t.TempDir()
	ctx := context.Background()

	triangles := func(path string) int {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Greater(t, len(data), 84)
		n := int(binary.LittleEndian.Uint32(data[80:84]))
		assert.Equal(t, 84+50*n, len(data))
		return n
	}
	require.NoError(t, ex.ExportMeshedComponentSTL(ctx, cfg, "W1", filepath.Join(dir, "w1.stl"), 0.01))
	require.NoError(t, ex.ExportMeshedComponentSTL(ctx, cfg, "F1", filepath.Join(dir, "f1.stl"), 0.01))
	all := filepath.Join(dir, "all.stl")
	require.NoError(t, ex.ExportMeshedModelSTL(ctx, cfg, all, 0.01))
	assert.Equal(t, triangles(filepath.Join(dir, "w1.stl"))+triangles(filepath.Join(dir, "f1.stl")), triangles(all))

	err := ex.ExportMeshedModelSTL(ctx, cfg, all, math.Inf(1))
	assert.True(t, errors.Is(err, status.InvalidParameter), "%v", err)
	err = ex.ExportMeshedModelSTL(ctx, brokenConfig(t), all, 0.01)
	assert.True(t, errors.Is(err, status.GeometryExportFailed), "%v", err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err = ex.ExportMeshedModelSTL(cancelled, cfg, all, 0.01)
	assert.True(t, errors.Is(err, context.Canceled), "%v", err)
}

func TestUnwritablePath(t *testing.T) {
	cfg := configFor(t, doctest.Aircraft())
	path := filepath.Join(t.TempDir(), "missing", "out.igs")
	err := New().ExportIGES(context.Background(), cfg, path)
	assert.True(t, errors.Is(err, status.InternalError), "%v", err)
	assert.True(t, errors.Is(err, os.ErrNotExist), "%v", err)
}

func TestFailedExportLeavesDestination(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aircraft.igs")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	err := New().ExportIGES(context.Background(), brokenConfig(t), path)
	var se *status.Error
	require.True(t, errors.As(err, &se), "%v", err)
	assert.Equal(t, status.GeometryExportFailed, se.Kind)
	assert.Equal(t, "W1", se.UID)
	assert.Equal(t, "surface W1_Seg2", se.Stage)

	assert.Equal(t, "previous", readFile(t, path))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files left behind")
}

func TestCancelledExport(t *testing.T) {
	cfg := configFor(t, doctest.Aircraft())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dir := t.TempDir()
	ex := New()

	errs := map[string]error{
		"iges": ex.ExportIGES(ctx, cfg, filepath.Join(dir, "a.igs")),
		"step": ex.ExportSTEP(ctx, cfg, filepath.Join(dir, "a.stp")),
		"vtk":  ex.ExportMeshedComponentVTK(ctx, cfg, "F1", filepath.Join(dir, "a.vtp"), 0.01, ModeSimple),
		"dxf":  ex.ExportPlanformDXF(ctx, cfg, filepath.Join(dir, "a.dxf")),
		"stl":  ex.ExportMeshedComponentSTL(ctx, cfg, "W1", filepath.Join(dir, "a.stl"), 0.01),
	}
	for name, err := range errs {
		assert.True(t, errors.Is(err, status.InternalError), "%s: %v", name, err)
		assert.True(t, errors.Is(err, context.Canceled), "%s: %v", name, err)
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNilConfiguration(t *testing.T) {
	err := New().ExportSTEP(context.Background(), nil, filepath.Join(t.TempDir(), "x.stp"))
	assert.True(t, errors.Is(err, status.InvalidHandle), "%v", err)
}

func TestExportPlanformDXF(t *testing.T) {
	cfg := configFor(t, doctest.Aircraft())
	path := filepath.Join(t.TempDir(), "planform.dxf")
	require.NoError(t, New().ExportPlanformDXF(context.Background(), cfg, path))
	text := readFile(t, path)
	assert.Contains(t, text, "LINE")
	assert.Contains(t, text, "EOF")

	w, err := cfg.m.Wing(1)
	require.NoError(t, err)
	quads, err := planform(w)
	require.NoError(t, err)
	require.Len(t, quads, 4)
	for _, p := range quads[2] {
		assert.LessOrEqual(t, p.Y, 0.0)
	}
}

func TestFormatReal(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0."},
		{1, "1."},
		{-3, "-3."},
		{1.5, "1.5"},
		{1e-7, "1.E-07"},
		{-2.5e20, "-2.5E+20"},
	}
	for _, tt := range tests {
		if got := formatReal(tt.in); got != tt.want {
			t.Errorf("formatReal(%g) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWrapParams(t *testing.T) {
	params := []string{hollerith("a long product name, with a comma"), "1", "2.5", strings.Repeat("x", 70)}
	lines := wrapParams(params, 64)
	for _, l := range lines {
		assert.LessOrEqual(t, len(l), 64)
	}
	assert.Equal(t, strings.Join(params, ",")+";", strings.Join(lines, ""))
	assert.Empty(t, hollerith(""))
	assert.Equal(t, "3Habc", hollerith("abc"))
}

func TestExportIGESNonASCIIUIDs(t *testing.T) {
	d := doctest.Aircraft()
	d.Header.UID = "Flugzeug-Ä"
	d.Wings[0].UID = "Flügel"
	d.Wings[0].Segments[0].UID = "Flügel_Segment1"
	d.Wings[0].ComponentSegments[0].FromSegment = "Flügel_Segment1"
	cfg := configFor(t, d)
	path := filepath.Join(t.TempDir(), "aircraft.igs")
	require.NoError(t, New().ExportIGES(context.Background(), cfg, path))

	text := readFile(t, path)
	for i, l := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		require.Len(t, l, 80, "line %d", i+1)
	}
	assert.Equal(t, len(text), utf8.RuneCountInString(text), "IGES output must be ASCII")
	assert.Contains(t, text, "Fl?gel_S")
}

func TestMaxCoordinate(t *testing.T) {
	assert.Zero(t, maxCoordinate(nil))
	grids := [][]surfaceGrid{
		{{inner: []geom.Point{geom.P(1, -7, 2)}, outer: []geom.Point{geom.P(3, 0, 0)}}},
		{{inner: []geom.Point{geom.P(0, 0, 0.5)}, outer: []geom.Point{geom.P(6.5, 4, -1)}}},
	}
	assert.Equal(t, 7.0, maxCoordinate(grids))
}

func TestIGESText(t *testing.T) {
	// IGES text is ASCII; other runes become one '?' each
	assert.Equal(t, "6HFl?gel", hollerith("Flügel"))
	assert.Equal(t, "?????_Se", label("Крыло_Seg1"))
	assert.Equal(t, "W1_Seg1", label("W1_Seg1"))
	assert.Equal(t, "tab?", label("tab\t"))
	for _, s := range []string{hollerith("航空機 wing"), label("航空機航空機航空機")} {
		assert.True(t, utf8.ValidString(s) && len(s) == utf8.RuneCountInString(s), "%q", s)
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Annotated")
	require.NoError(t, err)
	assert.Equal(t, ModeAnnotated, m)
	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeSimple, m)
	_, err = ParseMode("fancy")
	assert.Error(t, err)
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "'it''s'", stepString("it's"))
	assert.Equal(t, "'a?b'", stepString("a\nb"))
}

func TestAtomicWriteError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	err := writeFileAtomic("test", path, func(w io.Writer) error {
		return errors.New("boom")
	})
	assert.True(t, errors.Is(err, status.InternalError), "%v", err)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)

	require.NoError(t, writeFileAtomic("test", path, func(w io.Writer) error {
		_, err := w.Write(bytes.Repeat([]byte("a"), 10))
		return err
	}))
	assert.Equal(t, "aaaaaaaaaa", readFile(t, path))
}
