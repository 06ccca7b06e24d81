package document

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/aerogeom/pkg/bspline"
	"github.com/chazu/aerogeom/pkg/geom"
)

// Builder provides a fluent API for assembling documents in Go code.
type Builder struct {
	doc *Document
}

// NewBuilder starts a document with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{doc: New(name)}
}

// UID sets the document UID.
func (b *Builder) UID(uid string) *Builder {
	b.doc.Header.UID = uid
	return b
}

// Timestamp sets the header timestamp.
func (b *Builder) Timestamp(ts time.Time) *Builder {
	b.doc.Header.Timestamp = ts
	return b
}

// Creator sets the header creator.
func (b *Builder) Creator(creator string) *Builder {
	b.doc.Header.Creator = creator
	return b
}

// PointProfile adds a profile given by a point list.
func (b *Builder) PointProfile(uid string, pts ...geom.Point) *Builder {
	b.doc.Profiles = append(b.doc.Profiles, ProfileDef{UID: uid, Points: append([]geom.Point(nil), pts...)})
	return b
}

// SplineProfile adds a profile given by B-splines. The splines are copied
// unvalidated so that malformed data can be represented.
func (b *Builder) SplineProfile(uid string, splines ...*bspline.BSpline) *Builder {
	p := ProfileDef{UID: uid}
	for _, s := range splines {
		p.Splines = append(p.Splines, *s.Clone())
	}
	b.doc.Profiles = append(b.doc.Profiles, p)
	return b
}

// Wing adds a wing definition.
func (b *Builder) Wing(w WingDef) *Builder {
	b.doc.Wings = append(b.doc.Wings, w)
	return b
}

// Fuselage adds a fuselage definition.
func (b *Builder) Fuselage(f FuselageDef) *Builder {
	b.doc.Fuselages = append(b.doc.Fuselages, f)
	return b
}

// Build validates and returns the document. Blocking validation errors are
// joined into the returned error.
func (b *Builder) Build() (*Document, error) {
	res := ValidateAll(b.doc)
	if !res.OK() {
		errs := make([]error, len(res.Errors))
		for i, e := range res.Errors {
			errs[i] = e
		}
		return nil, fmt.Errorf("document %q: %w", b.doc.Header.Name, errors.Join(errs...))
	}
	return b.doc, nil
}

// MustBuild is Build that panics on error. For fixtures and examples.
func (b *Builder) MustBuild() *Document {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}

// Section is a convenience constructor for a section with a transform.
func Section(uid, profile string, scale, rotation, translation geom.Point) SectionDef {
	return SectionDef{
		UID:        uid,
		ProfileUID: profile,
		Transform:  TransformDef{Scale: scale, Rotation: rotation, Translation: translation},
	}
}

// Segment is a convenience constructor for a segment.
func Segment(uid, from, to string) SegmentDef {
	return SegmentDef{UID: uid, FromSection: from, ToSection: to}
}
