package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/chazu/aerogeom/pkg/document"
	"github.com/chazu/aerogeom/pkg/geom"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(section "S1" :profile "P")`,
			expect: `(section "S1" "__kw_profile" "P")`,
		},
		{
			name:   "multiple keywords",
			input:  `(positioning :length 10 :sweep 30)`,
			expect: `(positioning "__kw_length" 10 "__kw_sweep" 30)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(component-segment "CS1")`,
			expect: `(component_segment "CS1")`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(vec3 -1 0 -0.5)`,
			expect: `(vec3 -1 0 -0.5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:symmetry :x-z`,
			expect: `"__kw_symmetry" "__kw_x-z"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Document building tests
// ---------------------------------------------------------------------------

const wingSource = `
;; two-segment wing with a component segment
(aircraft "Glider" :uid "G1" :creator "tests" :timestamp "2024-01-01T12:00:00Z" :version 3)

(profile "NACA0012" :points (naca4 "0012" :points 11))

(def root 4.0)

(wing "W1" :name "Main wing" :symmetry :x-z
  (section "W1_Sec1" :profile "NACA0012"
    :transform (transform :scale (vec3 root 1 root)))
  (section "W1_Sec2" :profile "NACA0012"
    :transform (transform :scale (vec3 3 1 3) :translation (vec3 1 5 0.2)))
  (section "W1_Sec3" :profile "NACA0012"
    :transform (transform :scale (vec3 1.5 1 1.5) :translation (vec3 2.5 10 0.5)))
  (segment "W1_Seg1" :from "W1_Sec1" :to "W1_Sec2")
  (segment "W1_Seg2" :from "W1_Sec2" :to "W1_Sec3")
  (component-segment "W1_CompSeg1" :from "W1_Seg1" :to "W1_Seg2"))
`

func evalOK(t *testing.T, source string) *document.Document {
	t.Helper()
	d, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if d == nil {
		t.Fatal("expected non-nil document")
	}
	return d
}

func evalFails(t *testing.T, source, want string) {
	t.Helper()
	d, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if d != nil {
		t.Fatal("expected nil document")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors")
	}
	if !strings.Contains(evalErrs[0].Message, want) {
		t.Errorf("error %q does not mention %q", evalErrs[0].Message, want)
	}
}

func TestWingDocument(t *testing.T) {
	d := evalOK(t, wingSource)

	if d.Header.Name != "Glider" || d.Header.UID != "G1" || d.Header.Creator != "tests" {
		t.Errorf("unexpected header %+v", d.Header)
	}
	if want := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC); !d.Header.Timestamp.Equal(want) {
		t.Errorf("timestamp = %s, want %s", d.Header.Timestamp, want)
	}
	if d.Header.Version != 3 {
		t.Errorf("version = %d, want 3", d.Header.Version)
	}

	p := d.Profile("NACA0012")
	if p == nil {
		t.Fatal("expected profile NACA0012")
	}
	if len(p.Points) != 21 {
		t.Errorf("expected 21 profile points, got %d", len(p.Points))
	}

	w := d.Wing("W1")
	if w == nil {
		t.Fatal("expected wing W1")
	}
	if w.Name != "Main wing" {
		t.Errorf("name = %q", w.Name)
	}
	if w.Symmetry != geom.PlaneXZ {
		t.Errorf("symmetry = %s, want x-z", w.Symmetry)
	}
	if len(w.Sections) != 3 || len(w.Segments) != 2 || len(w.ComponentSegments) != 1 {
		t.Fatalf("got %d sections, %d segments, %d component segments",
			len(w.Sections), len(w.Segments), len(w.ComponentSegments))
	}
	if got := w.Sections[0].Transform.Scale; got != geom.P(4, 1, 4) {
		t.Errorf("root scale = %v", got)
	}
	if got := w.Sections[1].Transform.Translation; got != geom.P(1, 5, 0.2) {
		t.Errorf("mid translation = %v", got)
	}
	if seg := w.Segments[1]; seg.FromSection != "W1_Sec2" || seg.ToSection != "W1_Sec3" {
		t.Errorf("segment 2 = %+v", seg)
	}
	if cs := w.ComponentSegments[0]; cs.FromSegment != "W1_Seg1" || cs.ToSegment != "W1_Seg2" {
		t.Errorf("component segment = %+v", cs)
	}

	if res := document.ValidateAll(d); !res.OK() {
		t.Errorf("document should validate, got %v", res.Errors)
	}
}

func TestSplineProfileAndPositioning(t *testing.T) {
	source := `
(profile "Foil" :splines (list
  (bspline :degree 3
           :knots (list 0 0 0 0 1 1 1 1)
           :points (list (vec3 1 0 0) (vec3 0.6 0 0.08) (vec3 0.1 0 0.06) (vec3 0 0 0)))
  (bspline :degree 1
           :points (list (vec3 0 0 0) (vec3 1 0 0)))))

(wing "PW"
  (section "Root" :profile "Foil")
  (section "Tip" :profile "Foil")
  (positioning :from "Root" :to "Tip" :length 10 :sweep 30 :dihedral 5)
  (segment "Seg" :from "Root" :to "Tip"))
`
	d := evalOK(t, source)

	p := d.Profile("Foil")
	if p == nil || len(p.Splines) != 2 {
		t.Fatalf("expected 2 splines, got %+v", p)
	}
	if got := p.Splines[0].Sizes(); got.Degree != 3 || got.ControlPointCount != 4 || got.KnotCount != 8 {
		t.Errorf("spline 1 sizes = %+v", got)
	}
	// default knots are clamped uniform
	if got := len(p.Splines[1].Knots); got != 4 {
		t.Errorf("spline 2 knot count = %d, want 4", got)
	}
	if err := p.Splines[1].Validate(); err != nil {
		t.Errorf("default knots should validate: %v", err)
	}

	w := d.Wing("PW")
	if len(w.Positionings) != 1 {
		t.Fatalf("expected one positioning, got %d", len(w.Positionings))
	}
	pos := w.Positionings[0]
	if pos.FromSection != "Root" || pos.ToSection != "Tip" || pos.Length != 10 || pos.Sweep != 30 || pos.Dihedral != 5 {
		t.Errorf("positioning = %+v", pos)
	}
	if got := w.Sections[0].Transform.Scale; got != geom.P(1, 1, 1) {
		t.Errorf("default scale = %v, want unit", got)
	}
}

func TestFuselageWithCircle(t *testing.T) {
	source := `
(profile "Circle" :points (circle :points 16))
(fuselage "F1" :transform (transform :translation (vec3 -5 0 0))
  (list
    (section "F1_Sec1" :profile "Circle")
    (section "F1_Sec2" :profile "Circle" :transform (transform :translation (vec3 10 0 0))))
  (segment "F1_Seg1" :from "F1_Sec1" :to "F1_Sec2"))
`
	d := evalOK(t, source)
	f := d.Fuselage("F1")
	if f == nil {
		t.Fatal("expected fuselage F1")
	}
	if len(f.Sections) != 2 {
		t.Errorf("nested list should be spliced, got %d sections", len(f.Sections))
	}
	if f.Transform.Translation != geom.P(-5, 0, 0) {
		t.Errorf("translation = %v", f.Transform.Translation)
	}
	if len(d.Profile("Circle").Points) != 16 {
		t.Errorf("expected 16 circle points")
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"section without profile", `(wing "W" (section "S"))`, "requires :profile"},
		{"bad wing child", `(wing "W" 42)`, "expected section"},
		{"component segment on fuselage", `(fuselage "F" (component-segment "CS" :from "a" :to "b"))`, "only allowed on wings"},
		{"vec3 arity", `(vec3 1 2)`, "exactly 3 arguments"},
		{"bad symmetry", `(wing "W" :symmetry :x-w)`, "unknown plane"},
		{"bad naca code", `(naca4 "12")`, "4 digits"},
		{"bad timestamp", `(aircraft "A" :timestamp "yesterday")`, "timestamp"},
		{"bspline without points", `(bspline :degree 2)`, "requires :points"},
		{"positioning without target", `(positioning :length 2)`, "requires :to"},
		{"bspline axes differ", `(bspline :x (list 0 1) :y (list 0) :z (list 0 0))`, "axis lengths differ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evalFails(t, tt.source, tt.want)
		})
	}
}

func TestSplineFromAxes(t *testing.T) {
	source := `(profile "Axes" :splines (list
  (bspline :degree 1 :x (list 1 0.5 0) :y (list 0 0 0) :z (list 0 0.1 0))
  (bspline :degree 1 :x (list 0 0.5 1) :y (list 0 0 0) :z (list 0 -0.1 0))))`
	d := evalOK(t, source)
	p := d.Profile("Axes")
	if p == nil || len(p.Splines) != 2 {
		t.Fatalf("expected 2 splines, got %+v", p)
	}
	s := p.Splines[0]
	if got := s.ControlPoints[1]; got != geom.P(0.5, 0, 0.1) {
		t.Errorf("control point 2 = %v, want (0.5, 0, 0.1)", got)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("default knots should validate: %v", err)
	}
}

func TestMalformedSplineIsKept(t *testing.T) {
	// Knot vector of the wrong length is representable; it is rejected on read.
	source := `(profile "Bad" :splines (list (bspline :degree 3 :knots (list 0 0 1 1)
  :points (list (vec3 0 0 0) (vec3 1 0 0) (vec3 2 0 0) (vec3 3 0 0)))))`
	d := evalOK(t, source)
	if err := d.Profile("Bad").Splines[0].Validate(); err == nil {
		t.Error("expected spline validation to fail")
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := NewEngine()
	var first *document.Document
	for i := 0; i < 3; i++ {
		d, evalErrs, err := eng.Evaluate(wingSource)
		if err != nil || len(evalErrs) > 0 {
			t.Fatalf("iteration %d: %v %v", i, err, evalErrs)
		}
		if first == nil {
			first = d
			continue
		}
		if len(d.Wings[0].Sections) != len(first.Wings[0].Sections) ||
			d.Profiles[0].Points[5] != first.Profiles[0].Points[5] {
			t.Errorf("iteration %d differs from first evaluation", i)
		}
	}
}
