package document

import "fmt"

// minProfilePoints is the fewest points that can describe a closed profile.
const minProfilePoints = 3

// validateGeometry runs the geometric checks.
// Returns errors (blocking) and warnings (advisory) separately.
func validateGeometry(d *Document) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	errs = append(errs, validateProfilePoints(d)...)
	warnings = append(warnings, validateProfileSplines(d)...)

	for i := range d.Wings {
		w := &d.Wings[i]
		errs = append(errs, validateScales(&w.BodyDef, "wing "+w.UID)...)
		errs = append(errs, validatePositioningLengths(&w.BodyDef, "wing "+w.UID)...)
	}
	for i := range d.Fuselages {
		f := &d.Fuselages[i]
		errs = append(errs, validateScales(&f.BodyDef, "fuselage "+f.UID)...)
		errs = append(errs, validatePositioningLengths(&f.BodyDef, "fuselage "+f.UID)...)
	}
	return errs, warnings
}

func validateProfilePoints(d *Document) []ValidationError {
	var errs []ValidationError
	for _, p := range d.Profiles {
		if len(p.Points) == 0 {
			continue
		}
		if len(p.Points) < minProfilePoints {
			errs = append(errs, ValidationError{
				Path:     "profile " + p.UID,
				Message:  fmt.Sprintf("profile has %d points, need at least %d", len(p.Points), minProfilePoints),
				Severity: SeverityError,
			})
		}
		for i, pt := range p.Points {
			if !pt.IsFinite() {
				errs = append(errs, ValidationError{
					Path:     "profile " + p.UID,
					Message:  fmt.Sprintf("point %d is not finite", i+1),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateProfileSplines flags malformed splines without blocking the load.
// Reading such a spline later fails with InvalidParameter.
func validateProfileSplines(d *Document) []ValidationWarning {
	var warnings []ValidationWarning
	for _, p := range d.Profiles {
		for i := range p.Splines {
			if err := p.Splines[i].Validate(); err != nil {
				warnings = append(warnings, ValidationWarning{
					Path:    "profile " + p.UID,
					Message: fmt.Sprintf("spline %d: %v", i+1, err),
				})
			}
		}
	}
	return warnings
}

// validateScales checks that no transform collapses an axis.
func validateScales(b *BodyDef, path string) []ValidationError {
	var errs []ValidationError
	check := func(where string, t TransformDef) {
		s := t.Scale
		if s.X == 0 || s.Y == 0 || s.Z == 0 {
			errs = append(errs, ValidationError{
				Path:     where,
				Message:  fmt.Sprintf("scale %v has a zero component", s),
				Severity: SeverityError,
			})
		}
	}
	check(path, b.Transform)
	for _, s := range b.Sections {
		check(path+"/section "+s.UID, s.Transform)
	}
	return errs
}

func validatePositioningLengths(b *BodyDef, path string) []ValidationError {
	var errs []ValidationError
	for _, p := range b.Positionings {
		if p.Length < 0 {
			errs = append(errs, ValidationError{
				Path:     path + "/positioning " + p.ToSection,
				Message:  fmt.Sprintf("length is %.4f, must not be negative", p.Length),
				Severity: SeverityError,
			})
		}
	}
	return errs
}
