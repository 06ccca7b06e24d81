package api

import (
	"github.com/chazu/aerogeom/pkg/aircraft"
	"github.com/chazu/aerogeom/pkg/document"
	"github.com/chazu/aerogeom/pkg/metrics"
	"go.uber.org/zap"
)

// Diagnostic is one evaluation or validation message.
type Diagnostic struct {
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// ComponentSummary describes one component of an evaluated document.
type ComponentSummary struct {
	UID      string   `json:"uid"`
	Name     string   `json:"name,omitempty"`
	Kind     string   `json:"kind"`
	Symmetry string   `json:"symmetry"`
	Segments []string `json:"segments"`
}

// EvalResult is what Check reports about DSL source.
type EvalResult struct {
	Header     document.Header    `json:"header"`
	Components []ComponentSummary `json:"components"`
	Profiles   []string           `json:"profiles"`
	Errors     []Diagnostic       `json:"errors"`
	Warnings   []Diagnostic       `json:"warnings"`
}

// Check evaluates and validates source without storing it. The slices of
// the result are never nil.
func (s *Service) Check(source string) EvalResult {
	result := EvalResult{
		Components: []ComponentSummary{},
		Profiles:   []string{},
		Errors:     []Diagnostic{},
		Warnings:   []Diagnostic{},
	}

	// Step 1: evaluate the source into a document.
	doc, evalErrs, err := s.engine.Evaluate(source)
	metrics.RecordEvaluation(err)
	if err != nil {
		s.logger.Warn("evaluation failed", zap.Error(err))
		result.Errors = append(result.Errors, Diagnostic{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, Diagnostic{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}
	result.Header = doc.Header

	// Step 2: validate it.
	res := document.ValidateAll(doc)
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, Diagnostic{Path: w.Path, Message: w.Message})
	}
	if !res.OK() {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, Diagnostic{Path: e.Path, Message: e.Message})
		}
		return result
	}

	// Step 3: build the component model and summarise it.
	m, err := aircraft.Build(doc)
	if err != nil {
		result.Errors = append(result.Errors, Diagnostic{Message: "building model: " + err.Error()})
		return result
	}
	for _, c := range m.Components() {
		sum := ComponentSummary{
			UID:      c.UID(),
			Name:     c.Name(),
			Kind:     c.Kind().String(),
			Symmetry: c.Symmetry().String(),
			Segments: []string{},
		}
		for _, seg := range c.Segments() {
			sum.Segments = append(sum.Segments, seg.UID())
		}
		result.Components = append(result.Components, sum)
	}
	result.Profiles = append(result.Profiles, m.ProfileUIDs()...)
	return result
}
