package export

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chazu/aerogeom/pkg/aircraft"
	"github.com/chazu/aerogeom/pkg/geom"
	"github.com/chazu/aerogeom/pkg/metrics"
	"github.com/chazu/aerogeom/pkg/status"
)

// IGES entity types used here.
const (
	igesGroup   = 402 // form 7: unordered group without back pointers
	igesName    = 406 // form 15: name property
	igesBSpline = 128 // rational B-spline surface
)

// ExportIGES writes every component as degree (1, 1) B-spline surfaces,
// one per segment surface, grouped per component and named by UID.
func (e *Exporter) ExportIGES(ctx context.Context, cfg Configuration, path string) error {
	const op = "export.IGES"
	timer := metrics.NewTimer()
	err := e.exportIGES(ctx, op, cfg, path)
	return e.finish(FormatIGES, path, timer, err)
}

func (e *Exporter) exportIGES(ctx context.Context, op string, cfg Configuration, path string) error {
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
		doc := newIGESDocument()
		for i, grids := range all {
			if err := checkCtx(ctx, op); err != nil {
				return err
			}
			doc.addComponent(comps[i].UID(), grids)
		}
		return doc.write(w, igesGlobals(m, cfg.UID(), filepath.Base(path), maxCoordinate(all)))
	})
}

type igesEntity struct {
	typ       int
	form      int
	params    []string
	label     string
	subscript int
}

type igesDocument struct {
	entities []igesEntity
}

func newIGESDocument() *igesDocument {
	return &igesDocument{}
}

// add appends ent and returns its directory entry pointer.
func (d *igesDocument) add(ent igesEntity) int {
	d.entities = append(d.entities, ent)
	return 2*len(d.entities) - 1
}

func (d *igesDocument) addName(name string) int {
	return d.add(igesEntity{
		typ:    igesName,
		form:   15,
		params: []string{"1", hollerith(name)},
		label:  "NAME",
	})
}

func (d *igesDocument) addComponent(uid string, grids []surfaceGrid) {
	var members []int
	for _, g := range grids {
		name := d.addName(g.component + " " + g.name)
		members = append(members, d.add(igesEntity{
			typ:       igesBSpline,
			params:    append(bsplineSurfaceParams(g), "0", "1", strconv.Itoa(name)),
			label:     label(g.segment),
			subscript: g.index,
		}))
	}
	name := d.addName(uid)
	params := []string{strconv.Itoa(len(members))}
	for _, de := range members {
		params = append(params, strconv.Itoa(de))
	}
	params = append(params, "0", "1", strconv.Itoa(name))
	d.add(igesEntity{typ: igesGroup, form: 7, params: params, label: label(uid)})
}

// bsplineSurfaceParams lays out entity 128 with u along xsi and v along
// eta. Weights are all one; the surface is polynomial.
func bsplineSurfaceParams(g surfaceGrid) []string {
	n := len(g.u)
	p := []string{
		strconv.Itoa(n - 1), "1", // K1, K2
		"1", "1", // M1, M2
		"0", "0", "1", "0", "0", // PROP1..5
	}
	p = append(p, formatReal(g.u[0]))
	for _, u := range g.u {
		p = append(p, formatReal(u))
	}
	p = append(p, formatReal(g.u[n-1]))
	p = append(p, "0.", "0.", "1.", "1.")
	for i := 0; i < 2*n; i++ {
		p = append(p, "1.")
	}
	for _, row := range [2][]geom.Point{g.inner, g.outer} {
		for _, pt := range row {
			p = append(p, formatReal(pt.X), formatReal(pt.Y), formatReal(pt.Z))
		}
	}
	return append(p, formatReal(g.u[0]), formatReal(g.u[n-1]), "0.", "1.")
}

// igesASCII replaces every rune outside printable ASCII with '?'. IGES
// files are ASCII and count Hollerith strings and columns in bytes.
func igesASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r < ' ' || r > '~' {
			return '?'
		}
		return r
	}, s)
}

// label is an 8 character entity label.
func label(s string) string {
	s = igesASCII(s)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func hollerith(s string) string {
	if s == "" {
		return ""
	}
	s = igesASCII(s)
	return fmt.Sprintf("%dH%s", len(s), s)
}

// formatReal formats v with a decimal point and an upper case exponent,
// which both IGES and STEP readers accept as a real.
func formatReal(v float64) string {
	if v == 0 {
		return "0."
	}
	s := strings.ToUpper(strconv.FormatFloat(v, 'g', -1, 64))
	if strings.Contains(s, ".") {
		return s
	}
	if i := strings.IndexByte(s, 'E'); i >= 0 {
		return s[:i] + "." + s[i:]
	}
	return s + "."
}

// igesGlobals returns the 25 global section parameters.
func igesGlobals(m *aircraft.Model, uid, file string, maxCoord float64) []string {
	h := m.Header()
	product := h.Name
	if product == "" {
		product = uid
	}
	author := h.Creator
	if author == "" {
		author = "aerogeom"
	}
	date := hollerith(timestamp(m).Format("20060102.150405"))
	return []string{
		hollerith(","), hollerith(";"),
		hollerith(product), hollerith(file),
		hollerith("aerogeom"), hollerith("aerogeom IGES writer"),
		"32", "38", "6", "308", "15",
		hollerith(product),
		"1.", "6", hollerith("M"), "1", "0.",
		date,
		formatReal(1e-7), formatReal(maxCoord),
		hollerith(author), hollerith(uid),
		"11", "0",
		date,
	}
}

// wrapParams splits params into lines of at most width characters,
// separated by commas and terminated by a semicolon. Tokens longer than a
// line are split across lines.
func wrapParams(params []string, width int) []string {
	var lines []string
	var cur strings.Builder
	for i, p := range params {
		sep := ","
		if i == len(params)-1 {
			sep = ";"
		}
		tok := p + sep
		if cur.Len()+len(tok) > width && cur.Len() > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		for len(tok) > width {
			lines = append(lines, tok[:width])
			tok = tok[width:]
		}
		cur.WriteString(tok)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

func (d *igesDocument) write(w io.Writer, globals []string) error {
	var out strings.Builder
	line := func(content string, section byte, seq int) {
		fmt.Fprintf(&out, "%-72s%c%7d\n", content, section, seq)
	}

	start := []string{"aerogeom IGES export"}
	for i, s := range start {
		line(s, 'S', i+1)
	}
	global := wrapParams(globals, 72)
	for i, g := range global {
		line(g, 'G', i+1)
	}

	// parameter lines first, to know the pointers
	var params []string
	pointers := make([]int, len(d.entities))
	counts := make([]int, len(d.entities))
	for i, ent := range d.entities {
		lines := wrapParams(append([]string{strconv.Itoa(ent.typ)}, ent.params...), 64)
		pointers[i] = len(params) + 1
		counts[i] = len(lines)
		de := 2*i + 1
		for _, l := range lines {
			params = append(params, fmt.Sprintf("%-64s%8d", l, de))
		}
	}

	for i, ent := range d.entities {
		line(fmt.Sprintf("%8d%8d%8d%8d%8d%8d%8d%8d%8s",
			ent.typ, pointers[i], 0, 0, 0, 0, 0, 0, "00000000"), 'D', 2*i+1)
		line(fmt.Sprintf("%8d%8d%8d%8d%8d%8s%8s%8s%8d",
			ent.typ, 0, 0, counts[i], ent.form, "", "", ent.label, ent.subscript), 'D', 2*i+2)
	}
	for i, p := range params {
		line(p, 'P', i+1)
	}
	line(fmt.Sprintf("S%7dG%7dD%7dP%7d", len(start), len(global), 2*len(d.entities), len(params)), 'T', 1)

	_, err := io.WriteString(w, out.String())
	if err != nil {
		return status.Wrap(status.InternalError, "export.IGES", err)
	}
	return nil
}
