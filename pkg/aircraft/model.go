package aircraft

import (
	"github.com/chazu/aerogeom/pkg/document"
	"github.com/chazu/aerogeom/pkg/geom"
	"github.com/chazu/aerogeom/pkg/status"
	"github.com/samber/lo"
)

// Model is the immutable component model of one document. Indices are
// stable for the lifetime of the model.
type Model struct {
	header    document.Header
	profiles  map[string]*Profile
	order     []string // profile uids in document order
	wings     []*Wing
	fuselages []*Fuselage
}

// Build derives the component model from a validated document. Profiles
// are evaluated lazily, so a malformed spline surfaces on first use rather
// than here.
func Build(doc *document.Document) (*Model, error) {
	const op = "aircraft.Build"
	if doc == nil {
		return nil, status.New(status.InvalidDocument, op, "nil document")
	}
	m := &Model{
		header:   doc.Header,
		profiles: make(map[string]*Profile, len(doc.Profiles)),
	}
	for i := range doc.Profiles {
		p := &doc.Profiles[i]
		m.profiles[p.UID] = newProfile(p)
		m.order = append(m.order, p.UID)
	}

	for i := range doc.Wings {
		wd := &doc.Wings[i]
		b, err := m.buildBody(&wd.BodyDef, KindWing)
		if err != nil {
			return nil, status.Annotate(op, err)
		}
		w := &Wing{body: b}
		for _, csd := range wd.ComponentSegments {
			from, okFrom := b.byUID[csd.FromSegment]
			to, okTo := b.byUID[csd.ToSegment]
			if !okFrom || !okTo || from > to {
				return nil, status.New(status.InvalidDocument, op,
					"component segment %s: bad segment range %s..%s", csd.UID, csd.FromSegment, csd.ToSegment).WithUID(wd.UID)
			}
			w.compSegs = append(w.compSegs, newComponentSegment(csd.UID, w.uid, b.segments[from:to+1]))
		}
		m.wings = append(m.wings, w)
	}
	for i := range doc.Fuselages {
		fd := &doc.Fuselages[i]
		b, err := m.buildBody(&fd.BodyDef, KindFuselage)
		if err != nil {
			return nil, status.Annotate(op, err)
		}
		m.fuselages = append(m.fuselages, &Fuselage{body: b})
	}
	return m, nil
}

func (m *Model) buildBody(bd *document.BodyDef, kind Kind) (*body, error) {
	placed := placeSections(bd, m.profiles)
	b := &body{
		uid:      bd.UID,
		name:     bd.Name,
		kind:     kind,
		symmetry: bd.Symmetry,
		byUID:    make(map[string]int, len(bd.Segments)),
	}
	for i, sd := range bd.Segments {
		in, okIn := placed[sd.FromSection]
		out, okOut := placed[sd.ToSection]
		if !okIn || !okOut || in.profile == nil || out.profile == nil {
			return nil, status.New(status.InvalidDocument, "aircraft.buildBody",
				"segment %s references an unresolved section or profile", sd.UID).WithUID(bd.UID)
		}
		b.segments = append(b.segments, &Segment{
			uid:       sd.UID,
			index:     i + 1,
			component: bd.UID,
			kind:      kind,
			inner:     in,
			outer:     out,
		})
		b.byUID[sd.UID] = i
	}
	return b, nil
}

// Header returns the document header the model was built from.
func (m *Model) Header() document.Header { return m.header }

// ComponentCount returns the number of components of kind.
func (m *Model) ComponentCount(kind Kind) int {
	switch kind {
	case KindWing:
		return len(m.wings)
	case KindFuselage:
		return len(m.fuselages)
	}
	return 0
}

// Component returns the component of kind at 1-based index.
func (m *Model) Component(kind Kind, index int) (Component, error) {
	n := m.ComponentCount(kind)
	if index < 1 || index > n {
		return nil, status.New(status.IndexOutOfRange, "aircraft.Component",
			"%s index %d outside [1, %d]", kind, index, n)
	}
	if kind == KindWing {
		return m.wings[index-1], nil
	}
	return m.fuselages[index-1], nil
}

// ComponentByUID returns the component of kind with uid.
func (m *Model) ComponentByUID(kind Kind, uid string) (Component, error) {
	for _, c := range m.componentsOf(kind) {
		if c.UID() == uid {
			return c, nil
		}
	}
	return nil, status.New(status.UnknownComponent, "aircraft.ComponentByUID", "no %s %q", kind, uid).WithUID(uid)
}

// Find returns the component with uid regardless of kind.
func (m *Model) Find(uid string) (Component, error) {
	c, ok := lo.Find(m.Components(), func(c Component) bool { return c.UID() == uid })
	if !ok {
		return nil, status.New(status.UnknownComponent, "aircraft.Find", "no component %q", uid).WithUID(uid)
	}
	return c, nil
}

// Components returns wings then fuselages, each in document order.
func (m *Model) Components() []Component {
	return append(m.componentsOf(KindWing), m.componentsOf(KindFuselage)...)
}

func (m *Model) componentsOf(kind Kind) []Component {
	switch kind {
	case KindWing:
		return lo.Map(m.wings, func(w *Wing, _ int) Component { return w })
	case KindFuselage:
		return lo.Map(m.fuselages, func(f *Fuselage, _ int) Component { return f })
	}
	return nil
}

// Wing returns the wing at 1-based index.
func (m *Model) Wing(index int) (*Wing, error) {
	if index < 1 || index > len(m.wings) {
		return nil, status.New(status.IndexOutOfRange, "aircraft.Wing", "wing index %d outside [1, %d]", index, len(m.wings))
	}
	return m.wings[index-1], nil
}

// WingByUID returns the wing with uid.
func (m *Model) WingByUID(uid string) (*Wing, error) {
	w, ok := lo.Find(m.wings, func(w *Wing) bool { return w.uid == uid })
	if !ok {
		return nil, status.New(status.UnknownComponent, "aircraft.WingByUID", "no wing %q", uid).WithUID(uid)
	}
	return w, nil
}

// Profile returns the profile with uid.
func (m *Model) Profile(uid string) (*Profile, error) {
	p, ok := m.profiles[uid]
	if !ok {
		return nil, status.New(status.UnknownProfile, "aircraft.Profile", "no profile %q", uid).WithUID(uid)
	}
	return p, nil
}

// ProfileUIDs lists profile UIDs in document order.
func (m *Model) ProfileUIDs() []string {
	return append([]string(nil), m.order...)
}

// MirroredTransform returns the reflection for a component's symmetry
// plane and whether the component is mirrored at all.
func MirroredTransform(c Component) (geom.Transform, bool) {
	if c.Symmetry() == geom.PlaneNone {
		return geom.Identity(), false
	}
	return geom.Mirror(c.Symmetry()), true
}

// Fuselages returns the fuselages in document order.
func (m *Model) Fuselages() []Component {
	return m.componentsOf(KindFuselage)
}
