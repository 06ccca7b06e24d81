package export

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chazu/aerogeom/pkg/aircraft"
	"github.com/chazu/aerogeom/pkg/kernel"
	"github.com/chazu/aerogeom/pkg/metrics"
	"github.com/chazu/aerogeom/pkg/status"
)

type vtkFile struct {
	XMLName   xml.Name    `xml:"VTKFile"`
	Type      string      `xml:"type,attr"`
	Version   string      `xml:"version,attr"`
	ByteOrder string      `xml:"byte_order,attr"`
	Comment   string      `xml:",comment"`
	PolyData  vtkPolyData `xml:"PolyData"`
}

type vtkPolyData struct {
	FieldData *vtkArrays `xml:"FieldData,omitempty"`
	Piece     vtkPiece   `xml:"Piece"`
}

type vtkPiece struct {
	NumberOfPoints int       `xml:"NumberOfPoints,attr"`
	NumberOfPolys  int       `xml:"NumberOfPolys,attr"`
	PointData      *vtkData  `xml:"PointData,omitempty"`
	CellData       *vtkData  `xml:"CellData,omitempty"`
	Points         vtkArrays `xml:"Points"`
	Polys          vtkArrays `xml:"Polys"`
}

type vtkData struct {
	Normals string     `xml:"Normals,attr,omitempty"`
	Scalars string     `xml:"Scalars,attr,omitempty"`
	Arrays  []vtkArray `xml:"DataArray"`
}

type vtkArrays struct {
	Arrays []vtkArray `xml:"DataArray"`
}

type vtkArray struct {
	Type       string `xml:"type,attr"`
	Name       string `xml:"Name,attr,omitempty"`
	Components int    `xml:"NumberOfComponents,attr,omitempty"`
	Tuples     int    `xml:"NumberOfTuples,attr,omitempty"`
	Format     string `xml:"format,attr"`
	Data       string `xml:",chardata"`
}

// ExportMeshedComponentVTK tessellates one component, including its mirrored
// half, and writes it as VTK XML PolyData. ModeAnnotated adds per-triangle
// segment index, eta, xsi, upper side and mirror flags plus vertex normals.
func (e *Exporter) ExportMeshedComponentVTK(ctx context.Context, cfg Configuration, componentUID, path string, deflection float64, mode Mode) error {
	const op = "export.VTK"
	timer := metrics.NewTimer()
	err := e.exportVTK(ctx, op, cfg, componentUID, path, deflection, mode)
	return e.finish(FormatVTK, path, timer, err)
}

func (e *Exporter) exportVTK(ctx context.Context, op string, cfg Configuration, uid, path string, deflection float64, mode Mode) error {
	if err := checkConfig(op, cfg); err != nil {
		return err
	}
	if err := checkDeflection(op, deflection); err != nil {
		return err
	}
	if mode != ModeSimple && mode != ModeAnnotated {
		return status.New(status.InvalidParameter, op, "unknown VTK mode %s", mode)
	}
	c, mesh, err := meshComponent(ctx, op, cfg.Model(), uid, deflection)
	if err != nil {
		return err
	}

	doc := vtkDocument(mesh, mode)
	if mode == ModeAnnotated {
		doc.Comment = vtkComment(cfg.Model(), c)
		doc.PolyData.FieldData = fieldData(c, mesh)
	}
	return writeFileAtomic(op, path, func(w io.Writer) error {
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return err
		}
		enc := xml.NewEncoder(w)
		enc.Indent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	})
}

func vtkDocument(mesh *kernel.Mesh, mode Mode) vtkFile {
	nt := mesh.TriangleCount()
	offsets := make([]int, nt)
	for i := range offsets {
		offsets[i] = 3 * (i + 1)
	}
	piece := vtkPiece{
		NumberOfPoints: mesh.VertexCount(),
		NumberOfPolys:  nt,
		Points: vtkArrays{Arrays: []vtkArray{{
			Type: "Float64", Name: "Points", Components: 3, Format: "ascii",
			Data: joinFloats(mesh.Vertices),
		}}},
		Polys: vtkArrays{Arrays: []vtkArray{
			{Type: "Int64", Name: "connectivity", Format: "ascii", Data: joinInts(mesh.Indices)},
			{Type: "Int64", Name: "offsets", Format: "ascii", Data: joinInts(offsets)},
		}},
	}
	if mode == ModeAnnotated {
		piece.PointData = &vtkData{
			Normals: "normals",
			Arrays: []vtkArray{{
				Type: "Float64", Name: "normals", Components: 3, Format: "ascii",
				Data: joinFloats(mesh.Normals),
			}},
		}
		piece.CellData = cellData(mesh.Cells)
	}
	return vtkFile{
		Type:      "PolyData",
		Version:   "0.1",
		ByteOrder: "LittleEndian",
		PolyData:  vtkPolyData{Piece: piece},
	}
}

func cellData(cells []kernel.Cell) *vtkData {
	n := len(cells)
	seg := make([]int, n)
	eta := make([]float64, n)
	xsi := make([]float64, n)
	top := make([]int, n)
	mir := make([]int, n)
	for i, c := range cells {
		seg[i] = c.SegmentIndex
		eta[i] = c.Eta
		xsi[i] = c.Xsi
		if c.OnTop {
			top[i] = 1
		}
		if c.Mirrored {
			mir[i] = 1
		}
	}
	return &vtkData{
		Scalars: "segmentIndex",
		Arrays: []vtkArray{
			{Type: "Int32", Name: "segmentIndex", Format: "ascii", Data: joinInts(seg)},
			{Type: "Float64", Name: "eta", Format: "ascii", Data: joinFloats(eta)},
			{Type: "Float64", Name: "xsi", Format: "ascii", Data: joinFloats(xsi)},
			{Type: "UInt8", Name: "isOnTop", Format: "ascii", Data: joinInts(top)},
			{Type: "UInt8", Name: "isMirrored", Format: "ascii", Data: joinInts(mir)},
		},
	}
}

// fieldData carries the segment UIDs, indexed by segmentIndex-1, and the
// mesh bounds as xmin xmax ymin ymax zmin zmax.
func fieldData(c aircraft.Component, mesh *kernel.Mesh) *vtkArrays {
	segs := c.Segments()
	uids := make([]string, len(segs))
	for i, s := range segs {
		uids[i] = s.UID()
	}
	b := mesh.Bounds()
	bounds := []float64{b.Min.X, b.Max.X, b.Min.Y, b.Max.Y, b.Min.Z, b.Max.Z}
	return &vtkArrays{Arrays: []vtkArray{
		{Type: "String", Name: "segmentUID", Tuples: len(uids), Format: "ascii", Data: joinStrings(uids)},
		{Type: "Float64", Name: "bounds", Tuples: 1, Components: 6, Format: "ascii", Data: joinFloats(bounds)},
	}}
}

// joinStrings encodes strings the way ASCII VTK string arrays hold them:
// the byte values of each string followed by a zero.
func joinStrings(ss []string) string {
	var parts []string
	for _, s := range ss {
		for i := 0; i < len(s); i++ {
			parts = append(parts, strconv.Itoa(int(s[i])))
		}
		parts = append(parts, "0")
	}
	return strings.Join(parts, " ")
}

// vtkComment maps segment indices back to UIDs for human readers of the
// cell data.
func vtkComment(m *aircraft.Model, c aircraft.Component) string {
	lines := []string{
		"component " + c.UID(),
		"created " + timestamp(m).Format("2006-01-02T15:04:05Z"),
	}
	for _, s := range c.Segments() {
		lines = append(lines, fmt.Sprintf("segment %d %s", s.Index(), s.UID()))
	}
	// "--" may not appear inside an XML comment
	text := strings.Join(lines, "\n")
	for strings.Contains(text, "--") {
		text = strings.ReplaceAll(text, "--", "- -")
	}
	return "\n" + text + "\n"
}

func joinFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

func joinInts[T ~int | ~uint32](vs []T) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatInt(int64(v), 10)
	}
	return strings.Join(parts, " ")
}
