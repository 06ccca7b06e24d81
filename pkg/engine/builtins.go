package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/chazu/aerogeom/pkg/bspline"
	"github.com/chazu/aerogeom/pkg/document"
	"github.com/chazu/aerogeom/pkg/geom"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms DSL source code before passing it to
// zygomys. It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: component-segment -> component_segment
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator).
//
//  3. ; line comments become // comments.
//
// All transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Only when the hyphen sits between identifier characters, so that
		// (- 10 5) and -0.5 survive.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

type sexpVec3 struct {
	p geom.Point
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.p.X, v.p.Y, v.p.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

type sexpSpline struct {
	s bspline.BSpline
}

func (s *sexpSpline) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(bspline :degree %d :points %d)", s.s.Degree, len(s.s.ControlPoints))
}
func (s *sexpSpline) Type() *zygo.RegisteredType { return nil }

type sexpTransform struct {
	t document.TransformDef
}

func (t *sexpTransform) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(transform :scale %v :rotation %v :translation %v)", t.t.Scale, t.t.Rotation, t.t.Translation)
}
func (t *sexpTransform) Type() *zygo.RegisteredType { return nil }

type sexpSection struct {
	def document.SectionDef
}

func (s *sexpSection) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(section %q)", s.def.UID)
}
func (s *sexpSection) Type() *zygo.RegisteredType { return nil }

type sexpPositioning struct {
	def document.PositioningDef
}

func (p *sexpPositioning) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(positioning :to %q)", p.def.ToSection)
}
func (p *sexpPositioning) Type() *zygo.RegisteredType { return nil }

type sexpSegment struct {
	def document.SegmentDef
}

func (s *sexpSegment) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(segment %q)", s.def.UID)
}
func (s *sexpSegment) Type() *zygo.RegisteredType { return nil }

type sexpComponentSegment struct {
	def document.ComponentSegmentDef
}

func (c *sexpComponentSegment) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(component-segment %q)", c.def.UID)
}
func (c *sexpComponentSegment) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_x-z) and plain strings ("x-z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

func toPlane(s zygo.Sexp) (geom.Plane, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return geom.PlaneNone, err
	}
	return geom.ParsePlane(name)
}

func toVec3(s zygo.Sexp) (geom.Point, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.p, nil
	}
	return geom.Point{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toTransform(s zygo.Sexp) (document.TransformDef, error) {
	if t, ok := s.(*sexpTransform); ok {
		return t.t, nil
	}
	return document.TransformDef{}, fmt.Errorf("expected transform, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

func toFloats(s zygo.Sexp) ([]float64, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(items))
	for i, item := range items {
		if out[i], err = toFloat64(item); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
	}
	return out, nil
}

func toPoints(s zygo.Sexp) ([]geom.Point, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]geom.Point, len(items))
	for i, item := range items {
		if out[i], err = toVec3(item); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
	}
	return out, nil
}

func pointList(pts []geom.Point) zygo.Sexp {
	items := make([]zygo.Sexp, len(pts))
	for i, p := range pts {
		items[i] = &sexpVec3{p: p}
	}
	return zygo.MakeList(items)
}

// flatten expands nested lists among body children so that generated
// sections can be spliced in with (map ...).
func flatten(args []zygo.Sexp) []zygo.Sexp {
	var out []zygo.Sexp
	for _, a := range args {
		switch a.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(a)
			if err == nil {
				out = append(out, flatten(items)...)
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

// ---------------------------------------------------------------------------
// Anonymous names
// ---------------------------------------------------------------------------

// anonCounter provides unique suffixes for entities declared without a uid.
var anonCounter uint64

func nextAnonName(kind string) string {
	n := atomic.AddUint64(&anonCounter, 1)
	return fmt.Sprintf("%s_anon_%d", kind, n)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the aircraft DSL builtins into a zygomys
// environment. The builtins populate doc during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, doc *document.Document) {

	// -----------------------------------------------------------------------
	// (aircraft "name" :uid "A1" :creator "me" :description "..."
	//           :timestamp "2024-01-01T00:00:00Z" :version 2)
	// -----------------------------------------------------------------------
	env.AddFunction("aircraft", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) > 0 {
			n, err := toString(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("aircraft: name: %w", err)
			}
			doc.Header.Name = n
		}
		for _, f := range []struct {
			key string
			dst *string
		}{
			{"uid", &doc.Header.UID},
			{"creator", &doc.Header.Creator},
			{"description", &doc.Header.Description},
		} {
			if v, ok := pa.kw[f.key]; ok {
				s, err := toString(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("aircraft: %s: %w", f.key, err)
				}
				*f.dst = s
			}
		}
		if v, ok := pa.kw["timestamp"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("aircraft: timestamp: %w", err)
			}
			ts, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("aircraft: timestamp: %w", err)
			}
			doc.Header.Timestamp = ts.UTC()
		}
		if v, ok := pa.kw["version"]; ok {
			n, err := toInt(v)
			if err != nil || n < 0 {
				return zygo.SexpNull, fmt.Errorf("aircraft: version must be a non-negative integer")
			}
			doc.Header.Version = uint64(n)
		}
		return &zygo.SexpStr{S: doc.Header.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			c[i] = f
		}
		return &sexpVec3{p: geom.P(c[0], c[1], c[2])}, nil
	})

	// -----------------------------------------------------------------------
	// (naca4 "2412" :points 21) -> list of vec3
	// -----------------------------------------------------------------------
	env.AddFunction("naca4", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("naca4 requires a 4-digit code")
		}
		code, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("naca4: code: %w", err)
		}
		n := 21
		if v, ok := pa.kw["points"]; ok {
			if n, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("naca4: points: %w", err)
			}
		}
		pts, err := document.NACA4(code, n)
		if err != nil {
			return zygo.SexpNull, err
		}
		return pointList(pts), nil
	})

	// -----------------------------------------------------------------------
	// (circle :points 32) -> list of vec3 on the unit circle in y-z
	// -----------------------------------------------------------------------
	env.AddFunction("circle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		n := 32
		if v, ok := pa.kw["points"]; ok {
			var err error
			if n, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("circle: points: %w", err)
			}
		}
		if n < 3 {
			return zygo.SexpNull, fmt.Errorf("circle: need at least 3 points, got %d", n)
		}
		return pointList(document.Circle(n)), nil
	})

	// -----------------------------------------------------------------------
	// (bspline :degree 3 :knots (list ...) :points (list (vec3 ...) ...))
	// (bspline :degree 3 :x (list ...) :y (list ...) :z (list ...))
	// Knots default to a clamped uniform vector. The spline is not
	// validated here; malformed splines are reported on read.
	// -----------------------------------------------------------------------
	env.AddFunction("bspline", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		degree := 3
		if v, ok := pa.kw["degree"]; ok {
			d, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bspline: degree: %w", err)
			}
			degree = d
		}
		var knots []float64
		if v, ok := pa.kw["knots"]; ok {
			var err error
			if knots, err = toFloats(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("bspline: knots: %w", err)
			}
		}

		var (
			s   *bspline.BSpline
			err error
		)
		if v, ok := pa.kw["points"]; ok {
			pts, perr := toPoints(v)
			if perr != nil {
				return zygo.SexpNull, fmt.Errorf("bspline: points: %w", perr)
			}
			s = &bspline.BSpline{Degree: degree, Knots: knots, ControlPoints: pts}
		} else {
			var axes [3][]float64
			for i, key := range []string{"x", "y", "z"} {
				v, ok := pa.kw[key]
				if !ok {
					return zygo.SexpNull, fmt.Errorf("bspline requires :points or :x :y :z")
				}
				if axes[i], err = toFloats(v); err != nil {
					return zygo.SexpNull, fmt.Errorf("bspline: %s: %w", key, err)
				}
			}
			if s, err = bspline.FromAxes(degree, knots, axes[0], axes[1], axes[2]); err != nil {
				return zygo.SexpNull, fmt.Errorf("bspline: %w", err)
			}
		}
		if _, ok := pa.kw["knots"]; !ok {
			s.Knots = bspline.ClampedUniformKnots(len(s.ControlPoints), s.Degree)
		}
		return &sexpSpline{s: *s}, nil
	})

	// -----------------------------------------------------------------------
	// (profile "NACA0012" :name "..." :points (list ...))
	// (profile "Foil" :splines (list (bspline ...) ...))
	// -----------------------------------------------------------------------
	env.AddFunction("profile", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("profile requires a uid")
		}
		uid, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("profile: uid: %w", err)
		}
		p := document.ProfileDef{UID: uid}
		if v, ok := pa.kw["name"]; ok {
			if p.Name, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("profile: name: %w", err)
			}
		}
		if v, ok := pa.kw["points"]; ok {
			if p.Points, err = toPoints(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("profile %s: points: %w", uid, err)
			}
		}
		if v, ok := pa.kw["splines"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("profile %s: splines: %w", uid, err)
			}
			for i, item := range items {
				sp, ok := item.(*sexpSpline)
				if !ok {
					return zygo.SexpNull, fmt.Errorf("profile %s: spline %d: expected bspline, got %T", uid, i+1, item)
				}
				p.Splines = append(p.Splines, sp.s)
			}
		}
		doc.Profiles = append(doc.Profiles, p)
		return &zygo.SexpStr{S: uid}, nil
	})

	// -----------------------------------------------------------------------
	// (transform :scale (vec3 ...) :rotation (vec3 ...) :translation (vec3 ...))
	// -----------------------------------------------------------------------
	env.AddFunction("transform", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		t := document.IdentityTransform()
		for _, f := range []struct {
			key string
			dst *geom.Point
		}{
			{"scale", &t.Scale},
			{"rotation", &t.Rotation},
			{"translation", &t.Translation},
		} {
			if v, ok := pa.kw[f.key]; ok {
				p, err := toVec3(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("transform: %s: %w", f.key, err)
				}
				*f.dst = p
			}
		}
		return &sexpTransform{t: t}, nil
	})

	// -----------------------------------------------------------------------
	// (section "S1" :profile "NACA0012" :transform (transform ...))
	// -----------------------------------------------------------------------
	env.AddFunction("section", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		s := document.SectionDef{Transform: document.IdentityTransform()}
		if len(pa.positional) > 0 {
			uid, err := toString(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("section: uid: %w", err)
			}
			s.UID = uid
		} else {
			s.UID = nextAnonName("section")
		}
		v, ok := pa.kw["profile"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("section %s requires :profile", s.UID)
		}
		var err error
		if s.ProfileUID, err = toString(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("section %s: profile: %w", s.UID, err)
		}
		if v, ok := pa.kw["name"]; ok {
			if s.Name, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("section %s: name: %w", s.UID, err)
			}
		}
		if v, ok := pa.kw["transform"]; ok {
			if s.Transform, err = toTransform(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("section %s: transform: %w", s.UID, err)
			}
		}
		return &sexpSection{def: s}, nil
	})

	// -----------------------------------------------------------------------
	// (positioning :from "S1" :to "S2" :length 10 :sweep 30 :dihedral 5)
	// -----------------------------------------------------------------------
	env.AddFunction("positioning", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var p document.PositioningDef
		var err error
		if len(pa.positional) > 0 {
			if p.UID, err = toString(pa.positional[0]); err != nil {
				return zygo.SexpNull, fmt.Errorf("positioning: uid: %w", err)
			}
		}
		v, ok := pa.kw["to"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("positioning requires :to")
		}
		if p.ToSection, err = toString(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("positioning: to: %w", err)
		}
		if v, ok := pa.kw["from"]; ok {
			if p.FromSection, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("positioning: from: %w", err)
			}
		}
		for _, f := range []struct {
			key string
			dst *float64
		}{
			{"length", &p.Length},
			{"sweep", &p.Sweep},
			{"dihedral", &p.Dihedral},
		} {
			if v, ok := pa.kw[f.key]; ok {
				if *f.dst, err = toFloat64(v); err != nil {
					return zygo.SexpNull, fmt.Errorf("positioning: %s: %w", f.key, err)
				}
			}
		}
		return &sexpPositioning{def: p}, nil
	})

	// -----------------------------------------------------------------------
	// (segment "Seg1" :from "S1" :to "S2")
	// -----------------------------------------------------------------------
	env.AddFunction("segment", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("segment requires a uid")
		}
		uid, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("segment: uid: %w", err)
		}
		s := document.SegmentDef{UID: uid}
		for _, f := range []struct {
			key string
			dst *string
		}{
			{"from", &s.FromSection},
			{"to", &s.ToSection},
			{"name", &s.Name},
		} {
			if v, ok := pa.kw[f.key]; ok {
				if *f.dst, err = toString(v); err != nil {
					return zygo.SexpNull, fmt.Errorf("segment %s: %s: %w", uid, f.key, err)
				}
			}
		}
		return &sexpSegment{def: s}, nil
	})

	// -----------------------------------------------------------------------
	// (component-segment "CS1" :from "Seg1" :to "Seg2")
	//
	// Registered as "component_segment"; the preprocessor converts the
	// kebab-case name.
	// -----------------------------------------------------------------------
	env.AddFunction("component_segment", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("component-segment requires a uid")
		}
		uid, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("component-segment: uid: %w", err)
		}
		cs := document.ComponentSegmentDef{UID: uid}
		for _, f := range []struct {
			key string
			dst *string
		}{
			{"from", &cs.FromSegment},
			{"to", &cs.ToSegment},
			{"name", &cs.Name},
		} {
			if v, ok := pa.kw[f.key]; ok {
				if *f.dst, err = toString(v); err != nil {
					return zygo.SexpNull, fmt.Errorf("component-segment %s: %s: %w", uid, f.key, err)
				}
			}
		}
		return &sexpComponentSegment{def: cs}, nil
	})

	// -----------------------------------------------------------------------
	// (wing "W1" :name "..." :symmetry :x-z :transform (transform ...)
	//       (section ...) (positioning ...) (segment ...) (component-segment ...))
	// -----------------------------------------------------------------------
	env.AddFunction("wing", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		body, extra, err := parseBody("wing", args, true)
		if err != nil {
			return zygo.SexpNull, err
		}
		doc.Wings = append(doc.Wings, document.WingDef{BodyDef: body, ComponentSegments: extra})
		return &zygo.SexpStr{S: body.UID}, nil
	})

	// -----------------------------------------------------------------------
	// (fuselage "F1" :transform (transform ...) (section ...) (segment ...))
	// -----------------------------------------------------------------------
	env.AddFunction("fuselage", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		body, _, err := parseBody("fuselage", args, false)
		if err != nil {
			return zygo.SexpNull, err
		}
		doc.Fuselages = append(doc.Fuselages, document.FuselageDef{BodyDef: body})
		return &zygo.SexpStr{S: body.UID}, nil
	})
}

// parseBody reads the arguments shared by wing and fuselage forms.
func parseBody(form string, args []zygo.Sexp, allowComponentSegments bool) (document.BodyDef, []document.ComponentSegmentDef, error) {
	pa := parseArgs(args)
	body := document.BodyDef{Transform: document.IdentityTransform()}
	var compSegs []document.ComponentSegmentDef

	if len(pa.positional) < 1 {
		return body, nil, fmt.Errorf("%s requires a uid", form)
	}
	uid, err := toString(pa.positional[0])
	if err != nil {
		return body, nil, fmt.Errorf("%s: uid: %w", form, err)
	}
	body.UID = uid

	if v, ok := pa.kw["name"]; ok {
		if body.Name, err = toString(v); err != nil {
			return body, nil, fmt.Errorf("%s %s: name: %w", form, uid, err)
		}
	}
	if v, ok := pa.kw["symmetry"]; ok {
		if body.Symmetry, err = toPlane(v); err != nil {
			return body, nil, fmt.Errorf("%s %s: symmetry: %w", form, uid, err)
		}
	}
	if v, ok := pa.kw["transform"]; ok {
		if body.Transform, err = toTransform(v); err != nil {
			return body, nil, fmt.Errorf("%s %s: transform: %w", form, uid, err)
		}
	}

	for i, child := range flatten(pa.positional[1:]) {
		switch c := child.(type) {
		case *sexpSection:
			body.Sections = append(body.Sections, c.def)
		case *sexpPositioning:
			body.Positionings = append(body.Positionings, c.def)
		case *sexpSegment:
			body.Segments = append(body.Segments, c.def)
		case *sexpComponentSegment:
			if !allowComponentSegments {
				return body, nil, fmt.Errorf("%s %s: component segments are only allowed on wings", form, uid)
			}
			compSegs = append(compSegs, c.def)
		default:
			return body, nil, fmt.Errorf("%s %s: child %d: expected section, positioning or segment, got %T (%s)",
				form, uid, i+1, child, child.SexpString(nil))
		}
	}
	return body, compSegs, nil
}
