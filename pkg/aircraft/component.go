package aircraft

import (
	"github.com/chazu/aerogeom/pkg/geom"
	"github.com/chazu/aerogeom/pkg/status"
)

// Component is what wings and fuselages have in common.
type Component interface {
	UID() string
	Name() string
	Kind() Kind
	Symmetry() geom.Plane
	SegmentCount() int
	Segment(index int) (*Segment, error)
	SegmentByUID(uid string) (*Segment, error)
	Segments() []*Segment
	Surfaces() []Surface
	EvaluatePoint(surf Surface, segment int, eta, xsi float64) (geom.Point, error)
}

// body implements the segment bookkeeping shared by wings and fuselages.
type body struct {
	uid      string
	name     string
	kind     Kind
	symmetry geom.Plane
	segments []*Segment
	byUID    map[string]int // segment uid -> 0-based index
}

func (b *body) UID() string          { return b.uid }
func (b *body) Name() string         { return b.name }
func (b *body) Kind() Kind           { return b.kind }
func (b *body) Symmetry() geom.Plane { return b.symmetry }
func (b *body) SegmentCount() int    { return len(b.segments) }

// Segments returns the segments in index order. The slice is a copy.
func (b *body) Segments() []*Segment {
	return append([]*Segment(nil), b.segments...)
}

func (b *body) Surfaces() []Surface {
	if b.kind == KindWing {
		return []Surface{SurfaceUpper, SurfaceLower, SurfaceChord}
	}
	return []Surface{SurfaceOuter}
}

// Segment returns the segment at 1-based index.
func (b *body) Segment(index int) (*Segment, error) {
	if index < 1 || index > len(b.segments) {
		return nil, status.New(status.IndexOutOfRange, "aircraft.Segment",
			"segment index %d outside [1, %d]", index, len(b.segments)).WithUID(b.uid)
	}
	return b.segments[index-1], nil
}

// SegmentByUID returns the segment with uid. Unknown UIDs are reported as
// IndexOutOfRange, the same as a bad index.
func (b *body) SegmentByUID(uid string) (*Segment, error) {
	i, ok := b.byUID[uid]
	if !ok {
		return nil, status.New(status.IndexOutOfRange, "aircraft.SegmentByUID",
			"no segment %q", uid).WithUID(b.uid)
	}
	return b.segments[i], nil
}

// EvaluatePoint evaluates surf on segment (1-based) at (eta, xsi).
func (b *body) EvaluatePoint(surf Surface, segment int, eta, xsi float64) (geom.Point, error) {
	const op = "aircraft.EvaluatePoint"
	s, err := b.Segment(segment)
	if err != nil {
		return geom.Point{}, status.Annotate(op, err)
	}
	p, err := s.Point(surf, eta, xsi)
	if err != nil {
		return geom.Point{}, status.Annotate(op, err)
	}
	return p, nil
}

// Fuselage is a fuselage component.
type Fuselage struct {
	*body
}

var (
	_ Component = (*Wing)(nil)
	_ Component = (*Fuselage)(nil)
)
