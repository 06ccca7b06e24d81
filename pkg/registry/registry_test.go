package registry

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/chazu/aerogeom/pkg/aircraft"
	"github.com/chazu/aerogeom/pkg/document"
	"github.com/chazu/aerogeom/pkg/document/doctest"
	"github.com/chazu/aerogeom/pkg/status"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newRegistry(t *testing.T, opts ...Option) (*Registry, document.Handle) {
	t.Helper()
	store := document.NewStore()
	dh, err := store.Add(doctest.Aircraft())
	require.NoError(t, err)
	return New(store, opts...), dh
}

func TestOpenResolveClose(t *testing.T) {
	r, dh := newRegistry(t)

	h, err := r.Open(dh)
	require.NoError(t, err)
	assert.Positive(t, int(h))
	assert.Equal(t, 1, r.OpenCount())

	cfg, err := r.Resolve(h)
	require.NoError(t, err)
	assert.Equal(t, "TestAircraft", cfg.UID())
	assert.Equal(t, h, cfg.Handle())
	assert.Equal(t, dh, cfg.DocumentHandle())
	assert.NotNil(t, cfg.Document())
	assert.Equal(t, 1, cfg.Model().ComponentCount(aircraft.KindWing))

	r.Close(h)
	assert.Zero(t, r.OpenCount())
	_, err = r.Resolve(h)
	assert.True(t, errors.Is(err, status.InvalidHandle), "%v", err)
	err = r.With(h, func(*Config) error { return nil })
	assert.True(t, errors.Is(err, status.InvalidHandle))
}

func TestOpenErrors(t *testing.T) {
	r, dh := newRegistry(t)

	_, err := r.Open(dh + 100)
	assert.True(t, errors.Is(err, status.InvalidDocument), "%v", err)

	h, err := r.Open(dh)
	require.NoError(t, err)
	_, err = r.Open(dh)
	assert.True(t, errors.Is(err, status.AlreadyOpen), "%v", err)

	// closing releases the binding; the new handle is fresh
	r.Close(h)
	h2, err := r.Open(dh)
	require.NoError(t, err)
	assert.Greater(t, h2, h)
}

func TestInvalidHandles(t *testing.T) {
	r, _ := newRegistry(t)
	for _, h := range []Handle{0, -1, 42} {
		_, err := r.Resolve(h)
		assert.True(t, errors.Is(err, status.InvalidHandle), "handle %d: %v", h, err)
		assert.Equal(t, 1, status.Code(err))
	}
}

func TestGeneratedUID(t *testing.T) {
	store := document.NewStore()
	d := doctest.Aircraft()
	d.Header.UID = ""
	dh, err := store.Add(d)
	require.NoError(t, err)

	r := New(store)
	h, err := r.Open(dh)
	require.NoError(t, err)
	cfg, err := r.Resolve(h)
	require.NoError(t, err)
	_, err = uuid.Parse(cfg.UID())
	assert.NoError(t, err, "uid %q", cfg.UID())
}

func TestCloseIsIdempotentAndLogsOnce(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r, dh := newRegistry(t, WithLogger(zap.New(core)))

	h, err := r.Open(dh)
	require.NoError(t, err)
	r.Close(h)
	r.Close(h)
	r.Close(h)
	r.Close(-3)

	assert.Equal(t, 1, logs.FilterMessage("configuration opened").Len())
	assert.Equal(t, 1, logs.FilterMessage("configuration closed").Len())
	stale := logs.FilterMessage("close of unknown configuration handle")
	assert.Equal(t, 2, stale.Len(), "one warning per stale handle")
}

func TestCloseRemembersIssuedHandlesOnly(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r, dh := newRegistry(t, WithLogger(zap.New(core)))

	h, err := r.Open(dh)
	require.NoError(t, err)
	r.Close(h)

	for i := 0; i < 100; i++ {
		r.Close(h + Handle(1000+i))
		r.Close(-Handle(i))
	}
	r.Close(h)
	r.Close(h + 1)
	r.Close(h + 1)

	r.mu.Lock()
	assert.Equal(t, map[Handle]bool{h: true}, r.stale)
	r.mu.Unlock()
	// 200 unissued handles and two closes of h+1 warn every time, h warns once
	assert.Equal(t, 203, logs.FilterMessage("close of unknown configuration handle").Len())
}

func TestHandles(t *testing.T) {
	store := document.NewStore()
	r := New(store)
	var hs []Handle
	for i := 0; i < 3; i++ {
		dh, err := store.Add(doctest.Aircraft())
		require.NoError(t, err)
		h, err := r.Open(dh)
		require.NoError(t, err)
		hs = append(hs, h)
	}
	r.Close(hs[1])
	assert.Equal(t, []Handle{hs[0], hs[2]}, r.Handles())
}

func TestCloseWaitsForQueries(t *testing.T) {
	r, dh := newRegistry(t)
	h, err := r.Open(dh)
	require.NoError(t, err)

	inQuery := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = r.With(h, func(*Config) error {
			close(inQuery)
			<-release
			return nil
		})
	}()
	<-inQuery

	closed := make(chan struct{})
	go func() {
		r.Close(h)
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a query was in flight")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after the query finished")
	}
}

func TestConcurrentQueries(t *testing.T) {
	store := document.NewStore()
	r := New(store)
	var handles []Handle
	for i := 0; i < 4; i++ {
		dh, err := store.Add(doctest.Aircraft())
		require.NoError(t, err)
		h, err := r.Open(dh)
		require.NoError(t, err)
		handles = append(handles, h)
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h := handles[i%len(handles)]
			for j := 0; j < 50; j++ {
				err := r.With(h, func(c *Config) error {
					w, err := c.Model().Wing(1)
					if err != nil {
						return err
					}
					_, err = w.EvaluatePoint(aircraft.SurfaceUpper, 1, 0.5, 0.5)
					return err
				})
				if err != nil && !errors.Is(err, status.InvalidHandle) {
					t.Errorf("query: %v", err)
					return
				}
			}
		}(i)
	}
	// close half the handles while queries run
	r.Close(handles[0])
	r.Close(handles[2])
	wg.Wait()
	assert.Equal(t, []Handle{handles[1], handles[3]}, r.Handles())
}
