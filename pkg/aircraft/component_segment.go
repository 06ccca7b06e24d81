package aircraft

import (
	"sync"

	"github.com/chazu/aerogeom/pkg/geom"
	"github.com/chazu/aerogeom/pkg/status"
)

// ComponentSegment spans a contiguous run of wing segments. Its eta runs
// over the whole run, weighted by leading edge length.
type ComponentSegment struct {
	uid      string
	wing     string
	segments []*Segment

	once sync.Once
	cum  []float64 // cumulative leading edge length, len(segments)+1
	err  error
}

func newComponentSegment(uid, wing string, segs []*Segment) *ComponentSegment {
	return &ComponentSegment{uid: uid, wing: wing, segments: segs}
}

// prepare measures the leading edges on first use. Profiles are only
// evaluated here, so a malformed one fails the query, not the load.
func (cs *ComponentSegment) prepare() error {
	cs.once.Do(func() {
		cum := make([]float64, len(cs.segments)+1)
		for i, s := range cs.segments {
			lei, _, leo, _, err := s.edges()
			if err != nil {
				cs.err = status.Annotate("aircraft.ComponentSegment", err)
				return
			}
			cum[i+1] = cum[i] + lei.Distance(leo)
		}
		cs.cum = cum
	})
	return cs.err
}

// UID returns the component segment UID.
func (cs *ComponentSegment) UID() string { return cs.uid }

// WingUID returns the owning wing's UID.
func (cs *ComponentSegment) WingUID() string { return cs.wing }

// SegmentUIDs lists the spanned segments in order.
func (cs *ComponentSegment) SegmentUIDs() []string {
	out := make([]string, len(cs.segments))
	for i, s := range cs.segments {
		out[i] = s.uid
	}
	return out
}

// Locate maps a component segment eta to the spanned segment and its local
// eta.
func (cs *ComponentSegment) Locate(eta float64) (*Segment, float64, error) {
	if err := cs.prepare(); err != nil {
		return nil, 0, err
	}
	s, local := cs.locate(eta)
	return s, local, nil
}

func (cs *ComponentSegment) locate(eta float64) (*Segment, float64) {
	total := cs.cum[len(cs.cum)-1]
	last := len(cs.segments) - 1
	if total <= geom.Tolerance {
		// degenerate run: split eta evenly
		i := min(int(eta*float64(len(cs.segments))), last)
		return cs.segments[i], eta*float64(len(cs.segments)) - float64(i)
	}
	t := eta * total
	for i := 0; i < last; i++ {
		if t <= cs.cum[i+1] {
			l := cs.cum[i+1] - cs.cum[i]
			if l <= geom.Tolerance {
				return cs.segments[i], 0
			}
			return cs.segments[i], (t - cs.cum[i]) / l
		}
	}
	l := cs.cum[last+1] - cs.cum[last]
	if l <= geom.Tolerance {
		return cs.segments[last], 1
	}
	return cs.segments[last], clamp01((t - cs.cum[last]) / l)
}

// Point evaluates the chord surface at component segment coordinates.
func (cs *ComponentSegment) Point(eta, xsi float64) (geom.Point, error) {
	const op = "aircraft.ComponentSegment.Point"
	if err := checkParams(op, cs.uid, eta, xsi); err != nil {
		return geom.Point{}, err
	}
	s, local, err := cs.Locate(eta)
	if err != nil {
		return geom.Point{}, status.Annotate(op, err)
	}
	p, err := s.point(SurfaceChord, local, xsi)
	if err != nil {
		return geom.Point{}, status.Annotate(op, err)
	}
	return p, nil
}
