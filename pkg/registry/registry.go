// Package registry binds parsed documents to configuration handles. A
// configuration owns the component model built from its document; callers
// address it through a positive integer handle that is never reused.
//
// Each open configuration has its own RW lock. Queries hold the shared
// side for their duration, Close takes the exclusive side and therefore
// waits for in-flight queries on that handle only.
package registry

import (
	"slices"
	"sync"

	"github.com/chazu/aerogeom/pkg/aircraft"
	"github.com/chazu/aerogeom/pkg/document"
	"github.com/chazu/aerogeom/pkg/metrics"
	"github.com/chazu/aerogeom/pkg/status"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Handle identifies an open configuration. Valid handles are positive.
type Handle int

// Config is one open configuration.
type Config struct {
	handle    Handle
	uid       string
	docHandle document.Handle
	doc       *document.Document
	model     *aircraft.Model
}

// Handle returns the configuration handle.
func (c *Config) Handle() Handle { return c.handle }

// UID returns the document header UID, or a generated UUID when the
// header has none.
func (c *Config) UID() string { return c.uid }

// DocumentHandle returns the backing document handle.
func (c *Config) DocumentHandle() document.Handle { return c.docHandle }

// Document returns the backing document. Callers must not modify it.
func (c *Config) Document() *document.Document { return c.doc }

// Model returns the component model.
func (c *Config) Model() *aircraft.Model { return c.model }

type entry struct {
	rw     sync.RWMutex
	cfg    *Config
	closed bool
}

// Registry is the handle arena. It is safe for concurrent use.
type Registry struct {
	store  *document.Store
	logger *zap.Logger

	mu      sync.Mutex
	entries map[Handle]*entry
	bound   map[document.Handle]Handle
	stale   map[Handle]bool // handles already logged as stale
	next    Handle
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a registry over store.
func New(store *document.Store, opts ...Option) *Registry {
	r := &Registry{
		store:   store,
		logger:  zap.NewNop(),
		entries: make(map[Handle]*entry),
		bound:   make(map[document.Handle]Handle),
		stale:   make(map[Handle]bool),
		next:    1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open binds the document behind dh to a new configuration.
func (r *Registry) Open(dh document.Handle) (h Handle, err error) {
	const op = "registry.Open"
	defer func() { metrics.RecordOpen(err) }()

	doc, err := r.store.Get(dh)
	if err != nil {
		return 0, status.Annotate(op, err)
	}

	r.mu.Lock()
	if prev, ok := r.bound[dh]; ok {
		r.mu.Unlock()
		return 0, status.New(status.AlreadyOpen, op, "document %d already open as configuration %d", dh, prev)
	}
	// reserve the binding so a concurrent Open of the same document fails
	r.bound[dh] = 0
	r.mu.Unlock()

	model, err := aircraft.Build(doc)
	if err != nil {
		r.mu.Lock()
		delete(r.bound, dh)
		r.mu.Unlock()
		return 0, status.Wrap(status.InvalidDocument, op, err)
	}

	uid := doc.Header.UID
	if uid == "" {
		uid = uuid.NewString()
	}

	r.mu.Lock()
	h = r.next
	r.next++
	r.entries[h] = &entry{cfg: &Config{
		handle:    h,
		uid:       uid,
		docHandle: dh,
		doc:       doc,
		model:     model,
	}}
	r.bound[dh] = h
	r.mu.Unlock()

	r.logger.Info("configuration opened",
		zap.Int("handle", int(h)),
		zap.Int("document", int(dh)),
		zap.String("uid", uid),
		zap.Int("wings", model.ComponentCount(aircraft.KindWing)),
		zap.Int("fuselages", model.ComponentCount(aircraft.KindFuselage)),
	)
	return h, nil
}

// Close releases h and its document binding. Unknown or already closed
// handles are ignored. A closed handle is logged once; handles that were
// never issued are logged on every call and not remembered. Close waits
// for queries in flight on h.
func (r *Registry) Close(h Handle) {
	r.mu.Lock()
	e, ok := r.entries[h]
	if !ok {
		logged := r.stale[h]
		if h > 0 && h < r.next {
			r.stale[h] = true
		}
		r.mu.Unlock()
		if !logged {
			r.logger.Warn("close of unknown configuration handle", zap.Int("handle", int(h)))
		}
		return
	}
	delete(r.entries, h)
	delete(r.bound, e.cfg.docHandle)
	r.mu.Unlock()

	e.rw.Lock()
	e.closed = true
	e.rw.Unlock()

	metrics.RecordClose()
	r.logger.Info("configuration closed", zap.Int("handle", int(h)), zap.String("uid", e.cfg.uid))
}

func (r *Registry) lookup(op string, h Handle) (*entry, error) {
	if h <= 0 {
		return nil, status.New(status.InvalidHandle, op, "handle %d is not positive", h)
	}
	r.mu.Lock()
	e, ok := r.entries[h]
	r.mu.Unlock()
	if !ok {
		return nil, status.New(status.InvalidHandle, op, "configuration handle %d not open", h)
	}
	return e, nil
}

// Resolve returns the configuration for h. The result stays usable after
// Close, since models are immutable, but new queries should go through
// With so that Close can wait for them.
func (r *Registry) Resolve(h Handle) (*Config, error) {
	e, err := r.lookup("registry.Resolve", h)
	if err != nil {
		return nil, err
	}
	e.rw.RLock()
	defer e.rw.RUnlock()
	if e.closed {
		return nil, status.New(status.InvalidHandle, "registry.Resolve", "configuration handle %d closed", h)
	}
	return e.cfg, nil
}

// With runs fn with the configuration for h while holding its shared lock.
func (r *Registry) With(h Handle, fn func(*Config) error) error {
	const op = "registry.With"
	e, err := r.lookup(op, h)
	if err != nil {
		return err
	}
	e.rw.RLock()
	defer e.rw.RUnlock()
	if e.closed {
		return status.New(status.InvalidHandle, op, "configuration handle %d closed", h)
	}
	return fn(e.cfg)
}

// OpenCount returns the number of open configurations.
func (r *Registry) OpenCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Handles lists the open handles in ascending order.
func (r *Registry) Handles() []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := lo.Keys(r.entries)
	slices.Sort(out)
	return out
}
