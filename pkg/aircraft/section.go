package aircraft

import (
	"math"

	"github.com/chazu/aerogeom/pkg/document"
	"github.com/chazu/aerogeom/pkg/geom"
)

// placedSection is a profile with its full transform into global
// coordinates: component transform, then positioning offset, then section
// transform.
type placedSection struct {
	uid     string
	profile *Profile
	xf      geom.Transform
}

// positioningOffsets returns the accumulated positioning translation of
// every section of b. Sections without a positioning sit at the origin.
// The chain is known to be acyclic after document validation.
func positioningOffsets(b *document.BodyDef) map[string]geom.Point {
	byTarget := make(map[string]document.PositioningDef, len(b.Positionings))
	for _, p := range b.Positionings {
		byTarget[p.ToSection] = p
	}

	offsets := make(map[string]geom.Point, len(b.Sections))
	var resolve func(uid string, depth int) geom.Point
	resolve = func(uid string, depth int) geom.Point {
		if off, ok := offsets[uid]; ok {
			return off
		}
		p, ok := byTarget[uid]
		if !ok || depth > len(b.Positionings) {
			return geom.Point{}
		}
		var base geom.Point
		if p.FromSection != "" {
			base = resolve(p.FromSection, depth+1)
		}
		off := base.Add(positioningVector(p))
		offsets[uid] = off
		return off
	}
	for _, s := range b.Sections {
		offsets[s.UID] = resolve(s.UID, 0)
	}
	return offsets
}

// positioningVector is length * (sin sweep, cos sweep cos dihedral,
// cos sweep sin dihedral) with angles in degrees.
func positioningVector(p document.PositioningDef) geom.Point {
	sw := p.Sweep * math.Pi / 180
	di := p.Dihedral * math.Pi / 180
	return geom.P(
		p.Length*math.Sin(sw),
		p.Length*math.Cos(sw)*math.Cos(di),
		p.Length*math.Cos(sw)*math.Sin(di),
	)
}

// placeSections resolves every section of b against the model's profiles.
func placeSections(b *document.BodyDef, profiles map[string]*Profile) map[string]placedSection {
	offsets := positioningOffsets(b)
	component := b.Transform.Matrix()
	out := make(map[string]placedSection, len(b.Sections))
	for _, s := range b.Sections {
		xf := component.Then(geom.Translation(offsets[s.UID])).Then(s.Transform.Matrix())
		out[s.UID] = placedSection{uid: s.UID, profile: profiles[s.ProfileUID], xf: xf}
	}
	return out
}

// chord returns the leading and trailing edge of the placed profile.
func (ps placedSection) chord() (le, te geom.Point, err error) {
	if le, err = ps.profile.LeadingEdge(); err != nil {
		return
	}
	if te, err = ps.profile.TrailingEdge(); err != nil {
		return
	}
	return ps.xf.Apply(le), ps.xf.Apply(te), nil
}
