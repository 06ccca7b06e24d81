// Package api is the handle-based boundary of the geometry core. Every
// operation takes a configuration handle, resolves it before doing any
// work, and returns a kind-tagged error whose status.Code is the stable
// integer reported to callers.
package api

import (
	"errors"
	"time"

	"github.com/chazu/aerogeom/pkg/document"
	"github.com/chazu/aerogeom/pkg/engine"
	"github.com/chazu/aerogeom/pkg/export"
	"github.com/chazu/aerogeom/pkg/metrics"
	"github.com/chazu/aerogeom/pkg/registry"
	"github.com/chazu/aerogeom/pkg/status"
	"go.uber.org/zap"
)

// Service ties together the document store, the configuration registry,
// the DSL engine and the exporters.
type Service struct {
	store    *document.Store
	registry *registry.Registry
	engine   *engine.Engine
	exporter *export.Exporter
	logger   *zap.Logger

	evalTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger shared by the registry and the exporters.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEvalTimeout bounds DSL evaluation. Non-positive values keep the
// engine default.
func WithEvalTimeout(d time.Duration) Option {
	return func(s *Service) { s.evalTimeout = d }
}

// New creates a Service with an empty document store.
func New(opts ...Option) *Service {
	s := &Service{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.store = document.NewStore()
	s.registry = registry.New(s.store, registry.WithLogger(s.logger))
	s.engine = engine.NewEngine(engine.WithTimeout(s.evalTimeout))
	s.exporter = export.New(export.WithLogger(s.logger))
	return s
}

// Store exposes the document store, for callers that build documents in Go.
func (s *Service) Store() *document.Store { return s.store }

// AddDocument validates doc and stores it.
func (s *Service) AddDocument(doc *document.Document) (document.Handle, error) {
	return s.store.Add(doc)
}

// LoadSource evaluates DSL source and stores the resulting document.
// Evaluation errors are reported as InvalidDocument joining every error;
// timeouts and panics as InternalError.
func (s *Service) LoadSource(source string) (h document.Handle, err error) {
	const op = "api.LoadSource"
	defer func() { metrics.RecordEvaluation(err) }()

	doc, evalErrs, err := s.engine.Evaluate(source)
	if err != nil {
		return 0, status.Wrap(status.InternalError, op, err)
	}
	if len(evalErrs) > 0 {
		errs := make([]error, len(evalErrs))
		for i, e := range evalErrs {
			errs[i] = e
		}
		return 0, status.Wrap(status.InvalidDocument, op, errors.Join(errs...))
	}
	h, err = s.store.Add(doc)
	if err != nil {
		return 0, status.Annotate(op, err)
	}
	s.logger.Debug("document loaded", zap.Int("document", int(h)), zap.String("uid", doc.Header.UID))
	return h, nil
}

// RemoveDocument drops a stored document. Open configurations keep their
// own reference to it.
func (s *Service) RemoveDocument(h document.Handle) bool {
	return s.store.Remove(h)
}

// Open binds a stored document to a new configuration handle.
func (s *Service) Open(dh document.Handle) (registry.Handle, error) {
	return s.registry.Open(dh)
}

// Close releases h. Closing an unknown handle is a no-op.
func (s *Service) Close(h registry.Handle) {
	s.registry.Close(h)
}

// Handles lists the open configuration handles in ascending order.
func (s *Service) Handles() []registry.Handle { return s.registry.Handles() }

// ConfigurationUID returns the UID of the open configuration h.
func (s *Service) ConfigurationUID(h registry.Handle) (string, error) {
	return query(s, "api.ConfigurationUID", h, func(c *registry.Config) (string, error) {
		return c.UID(), nil
	})
}

// query runs fn under h's shared lock and records the outcome.
func query[T any](s *Service, op string, h registry.Handle, fn func(*registry.Config) (T, error)) (T, error) {
	var out T
	err := s.registry.With(h, func(c *registry.Config) error {
		v, err := fn(c)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	err = status.Annotate(op, err)
	metrics.RecordOperation(op, err)
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
