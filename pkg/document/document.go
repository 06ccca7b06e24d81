package document

import (
	"time"

	"github.com/chazu/aerogeom/pkg/bspline"
	"github.com/chazu/aerogeom/pkg/geom"
)

// DefaultUnits is the length unit assumed by every document.
const DefaultUnits = "m"

// Header carries document-wide metadata.
type Header struct {
	Name        string    `json:"name"`
	UID         string    `json:"uid,omitempty"`
	Creator     string    `json:"creator,omitempty"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"` // used by exporters instead of the wall clock
	Units       string    `json:"units"`
	Version     uint64    `json:"version"`
}

// Document is the top-level aircraft definition.
type Document struct {
	Header    Header        `json:"header"`
	Profiles  []ProfileDef  `json:"profiles,omitempty"`
	Wings     []WingDef     `json:"wings,omitempty"`
	Fuselages []FuselageDef `json:"fuselages,omitempty"`
}

// New creates an empty Document with default settings.
func New(name string) *Document {
	return &Document{
		Header: Header{
			Name:  name,
			Units: DefaultUnits,
		},
	}
}

// ProfileDef is a cross-section shape in normalized coordinates. Wing
// profiles live in the x-z plane with the chord along x; fuselage profiles
// live in the y-z plane. Either Points or Splines is set.
type ProfileDef struct {
	UID     string            `json:"uid"`
	Name    string            `json:"name,omitempty"`
	Points  []geom.Point      `json:"points,omitempty"`
	Splines []bspline.BSpline `json:"splines,omitempty"`
}

// HasSplines reports whether the profile is given as B-splines.
func (p *ProfileDef) HasSplines() bool {
	return len(p.Splines) > 0
}

// TransformDef is a scale/rotation/translation triple. Rotation is in
// degrees.
type TransformDef struct {
	Scale       geom.Point `json:"scale"`
	Rotation    geom.Point `json:"rotation"`
	Translation geom.Point `json:"translation"`
}

// IdentityTransform returns a transform with unit scale.
func IdentityTransform() TransformDef {
	return TransformDef{Scale: geom.P(1, 1, 1)}
}

// Matrix returns the affine transform (scale, then rotate, then translate).
func (t TransformDef) Matrix() geom.Transform {
	return geom.TRS(t.Scale, t.Rotation, t.Translation)
}

// SectionDef places a profile in component coordinates.
type SectionDef struct {
	UID        string       `json:"uid"`
	Name       string       `json:"name,omitempty"`
	ProfileUID string       `json:"profile"`
	Transform  TransformDef `json:"transform"`
}

// PositioningDef offsets ToSection relative to FromSection (or the
// component origin when FromSection is empty). Angles are in degrees.
type PositioningDef struct {
	UID         string  `json:"uid,omitempty"`
	FromSection string  `json:"from,omitempty"`
	ToSection   string  `json:"to"`
	Length      float64 `json:"length"`
	Sweep       float64 `json:"sweep"`
	Dihedral    float64 `json:"dihedral"`
}

// SegmentDef joins two sections.
type SegmentDef struct {
	UID         string `json:"uid"`
	Name        string `json:"name,omitempty"`
	FromSection string `json:"from"`
	ToSection   string `json:"to"`
}

// ComponentSegmentDef spans the wing segments FromSegment..ToSegment
// (inclusive, in segment order).
type ComponentSegmentDef struct {
	UID         string `json:"uid"`
	Name        string `json:"name,omitempty"`
	FromSegment string `json:"from"`
	ToSegment   string `json:"to"`
}

// BodyDef holds what wings and fuselages share.
type BodyDef struct {
	UID          string           `json:"uid"`
	Name         string           `json:"name,omitempty"`
	Symmetry     geom.Plane       `json:"symmetry"`
	Transform    TransformDef     `json:"transform"`
	Sections     []SectionDef     `json:"sections"`
	Positionings []PositioningDef `json:"positionings,omitempty"`
	Segments     []SegmentDef     `json:"segments"`
}

// Section returns the section with the given UID, or nil.
func (b *BodyDef) Section(uid string) *SectionDef {
	for i := range b.Sections {
		if b.Sections[i].UID == uid {
			return &b.Sections[i]
		}
	}
	return nil
}

// SegmentIndex returns the 0-based index of the segment with uid, or -1.
func (b *BodyDef) SegmentIndex(uid string) int {
	for i := range b.Segments {
		if b.Segments[i].UID == uid {
			return i
		}
	}
	return -1
}

// WingDef is a lifting surface.
type WingDef struct {
	BodyDef
	ComponentSegments []ComponentSegmentDef `json:"component_segments,omitempty"`
}

// FuselageDef is a fuselage body.
type FuselageDef struct {
	BodyDef
}

// Profile returns the profile with the given UID, or nil.
func (d *Document) Profile(uid string) *ProfileDef {
	for i := range d.Profiles {
		if d.Profiles[i].UID == uid {
			return &d.Profiles[i]
		}
	}
	return nil
}

// Wing returns the wing with the given UID, or nil.
func (d *Document) Wing(uid string) *WingDef {
	for i := range d.Wings {
		if d.Wings[i].UID == uid {
			return &d.Wings[i]
		}
	}
	return nil
}

// Fuselage returns the fuselage with the given UID, or nil.
func (d *Document) Fuselage(uid string) *FuselageDef {
	for i := range d.Fuselages {
		if d.Fuselages[i].UID == uid {
			return &d.Fuselages[i]
		}
	}
	return nil
}

// ComponentCount returns the number of wings plus fuselages.
func (d *Document) ComponentCount() int {
	return len(d.Wings) + len(d.Fuselages)
}
