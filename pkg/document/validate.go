package document

import (
	"fmt"

	"github.com/samber/lo"
)

// ValidationSeverity indicates whether a validation finding blocks loading
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks loading
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Path     string             // e.g. "wing W1/segment W1_Seg2" (empty if document-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Path, e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	Path    string
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs the structural checks and returns the findings. An empty
// slice means the document is structurally valid. Read-only.
func Validate(d *Document) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateProfiles(d)...)
	errs = append(errs, validateComponentUIDs(d)...)
	for i := range d.Wings {
		w := &d.Wings[i]
		path := "wing " + w.UID
		errs = append(errs, validateBody(d, &w.BodyDef, path)...)
		errs = append(errs, validateComponentSegments(w, path)...)
	}
	for i := range d.Fuselages {
		f := &d.Fuselages[i]
		errs = append(errs, validateBody(d, &f.BodyDef, "fuselage "+f.UID)...)
	}
	return errs
}

// ValidateAll runs every tier (structural, geometric, advisory) and returns
// errors and warnings separately.
func ValidateAll(d *Document) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(d) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{Path: e.Path, Message: e.Message})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}

	geomErrs, geomWarnings := validateGeometry(d)
	result.Errors = append(result.Errors, geomErrs...)
	result.Warnings = append(result.Warnings, geomWarnings...)
	result.Warnings = append(result.Warnings, validateHeader(d)...)
	return result
}

func validateProfiles(d *Document) []ValidationError {
	var errs []ValidationError
	uids := lo.Map(d.Profiles, func(p ProfileDef, _ int) string { return p.UID })
	for _, dup := range lo.FindDuplicates(uids) {
		errs = append(errs, ValidationError{
			Path:     "profile " + dup,
			Message:  "duplicate profile uid",
			Severity: SeverityError,
		})
	}
	for _, p := range d.Profiles {
		path := "profile " + p.UID
		if p.UID == "" {
			errs = append(errs, ValidationError{Message: "profile without uid", Severity: SeverityError})
			continue
		}
		switch {
		case len(p.Points) == 0 && len(p.Splines) == 0:
			errs = append(errs, ValidationError{Path: path, Message: "profile has neither points nor splines", Severity: SeverityError})
		case len(p.Points) > 0 && len(p.Splines) > 0:
			errs = append(errs, ValidationError{Path: path, Message: "profile has both points and splines", Severity: SeverityError})
		}
	}
	return errs
}

// validateComponentUIDs checks that wing and fuselage UIDs are non-empty
// and unique across the whole document.
func validateComponentUIDs(d *Document) []ValidationError {
	var errs []ValidationError
	uids := make([]string, 0, d.ComponentCount())
	for _, w := range d.Wings {
		uids = append(uids, w.UID)
	}
	for _, f := range d.Fuselages {
		uids = append(uids, f.UID)
	}
	for _, uid := range uids {
		if uid == "" {
			errs = append(errs, ValidationError{Message: "component without uid", Severity: SeverityError})
		}
	}
	for _, dup := range lo.FindDuplicates(uids) {
		errs = append(errs, ValidationError{
			Path:     "component " + dup,
			Message:  "duplicate component uid",
			Severity: SeverityError,
		})
	}
	return errs
}

func validateBody(d *Document, b *BodyDef, path string) []ValidationError {
	var errs []ValidationError

	if len(b.Sections) == 0 {
		errs = append(errs, ValidationError{Path: path, Message: "no sections", Severity: SeverityError})
	}
	if len(b.Segments) == 0 {
		errs = append(errs, ValidationError{Path: path, Message: "no segments", Severity: SeverityWarning})
	}

	sectionUIDs := lo.Map(b.Sections, func(s SectionDef, _ int) string { return s.UID })
	for _, dup := range lo.FindDuplicates(sectionUIDs) {
		errs = append(errs, ValidationError{Path: path + "/section " + dup, Message: "duplicate section uid", Severity: SeverityError})
	}
	for _, s := range b.Sections {
		if s.UID == "" {
			errs = append(errs, ValidationError{Path: path, Message: "section without uid", Severity: SeverityError})
		}
		if d.Profile(s.ProfileUID) == nil {
			errs = append(errs, ValidationError{
				Path:     path + "/section " + s.UID,
				Message:  fmt.Sprintf("references non-existent profile %q", s.ProfileUID),
				Severity: SeverityError,
			})
		}
	}

	segmentUIDs := lo.Map(b.Segments, func(s SegmentDef, _ int) string { return s.UID })
	for _, dup := range lo.FindDuplicates(segmentUIDs) {
		errs = append(errs, ValidationError{Path: path + "/segment " + dup, Message: "duplicate segment uid", Severity: SeverityError})
	}
	for _, s := range b.Segments {
		spath := path + "/segment " + s.UID
		if s.UID == "" {
			errs = append(errs, ValidationError{Path: path, Message: "segment without uid", Severity: SeverityError})
		}
		if b.Section(s.FromSection) == nil {
			errs = append(errs, ValidationError{Path: spath, Message: fmt.Sprintf("from-section %q does not exist", s.FromSection), Severity: SeverityError})
		}
		if b.Section(s.ToSection) == nil {
			errs = append(errs, ValidationError{Path: spath, Message: fmt.Sprintf("to-section %q does not exist", s.ToSection), Severity: SeverityError})
		}
		if s.FromSection == s.ToSection {
			errs = append(errs, ValidationError{Path: spath, Message: "segment joins a section to itself", Severity: SeverityError})
		}
	}

	errs = append(errs, validatePositionings(b, path)...)
	return errs
}

// validatePositionings checks references and that the positioning chain is
// acyclic, using DFS with 3-color marking.
func validatePositionings(b *BodyDef, path string) []ValidationError {
	var errs []ValidationError
	parent := make(map[string]string)

	for _, p := range b.Positionings {
		ppath := path + "/positioning " + p.ToSection
		if b.Section(p.ToSection) == nil {
			errs = append(errs, ValidationError{Path: ppath, Message: fmt.Sprintf("to-section %q does not exist", p.ToSection), Severity: SeverityError})
			continue
		}
		if p.FromSection != "" && b.Section(p.FromSection) == nil {
			errs = append(errs, ValidationError{Path: ppath, Message: fmt.Sprintf("from-section %q does not exist", p.FromSection), Severity: SeverityError})
			continue
		}
		if _, dup := parent[p.ToSection]; dup {
			errs = append(errs, ValidationError{Path: ppath, Message: "section positioned more than once", Severity: SeverityError})
			continue
		}
		parent[p.ToSection] = p.FromSection
	}

	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int)
	for _, s := range b.Sections {
		uid := s.UID
		var chain []string
		for uid != "" && color[uid] == white {
			color[uid] = gray
			chain = append(chain, uid)
			uid = parent[uid]
		}
		if uid != "" && color[uid] == gray {
			errs = append(errs, ValidationError{
				Path:     path,
				Message:  fmt.Sprintf("positioning cycle through section %q", uid),
				Severity: SeverityError,
			})
		}
		for _, c := range chain {
			color[c] = black
		}
	}
	return errs
}

func validateComponentSegments(w *WingDef, path string) []ValidationError {
	var errs []ValidationError
	uids := lo.Map(w.ComponentSegments, func(c ComponentSegmentDef, _ int) string { return c.UID })
	for _, dup := range lo.FindDuplicates(uids) {
		errs = append(errs, ValidationError{Path: path + "/component-segment " + dup, Message: "duplicate component segment uid", Severity: SeverityError})
	}
	for _, cs := range w.ComponentSegments {
		cpath := path + "/component-segment " + cs.UID
		if cs.UID == "" {
			errs = append(errs, ValidationError{Path: path, Message: "component segment without uid", Severity: SeverityError})
		}
		from := w.SegmentIndex(cs.FromSegment)
		to := w.SegmentIndex(cs.ToSegment)
		if from < 0 {
			errs = append(errs, ValidationError{Path: cpath, Message: fmt.Sprintf("from-segment %q does not exist", cs.FromSegment), Severity: SeverityError})
		}
		if to < 0 {
			errs = append(errs, ValidationError{Path: cpath, Message: fmt.Sprintf("to-segment %q does not exist", cs.ToSegment), Severity: SeverityError})
		}
		if from >= 0 && to >= 0 && from > to {
			errs = append(errs, ValidationError{Path: cpath, Message: "from-segment comes after to-segment", Severity: SeverityError})
		}
	}
	return errs
}

func validateHeader(d *Document) []ValidationWarning {
	var warnings []ValidationWarning
	if d.Header.UID == "" {
		warnings = append(warnings, ValidationWarning{Message: "document has no uid; one will be generated on open"})
	}
	if d.Header.Timestamp.IsZero() {
		warnings = append(warnings, ValidationWarning{Message: "document has no timestamp; exports are stamped with the Unix epoch"})
	}
	return warnings
}
