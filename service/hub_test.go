package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// journal records lifecycle calls across services
type journal struct {
	mu    sync.Mutex
	calls []string
}

func (j *journal) add(s string) {
	j.mu.Lock()
	j.calls = append(j.calls, s)
	j.mu.Unlock()
}

type stubService struct {
	name     string
	deps     []string
	j        *journal
	initErr  error
	startErr error
	stopErr  error
}

func (s *stubService) Name() string           { return s.name }
func (s *stubService) Dependencies() []string { return s.deps }

func (s *stubService) Init(context.Context) error {
	s.j.add("init:" + s.name)
	return s.initErr
}

func (s *stubService) Start(context.Context) error {
	s.j.add("start:" + s.name)
	return s.startErr
}

func (s *stubService) Stop() error {
	s.j.add("stop:" + s.name)
	return s.stopErr
}

func newStubHub(t *testing.T, j *journal, svcs ...*stubService) *Hub {
	t.Helper()
	h := NewHub(nil)
	for _, s := range svcs {
		s.j = j
		require.NoError(t, h.Register(s))
	}
	return h
}

func TestOrderRespectsDependencies(t *testing.T) {
	j := &journal{}
	h := newStubHub(t, j,
		&stubService{name: "ui", deps: []string{"audio", "narration"}},
		&stubService{name: "narration"},
		&stubService{name: "audio"},
		&stubService{name: "store"},
	)

	order, err := h.Order()
	require.NoError(t, err)
	assert.Equal(t, []string{"audio", "narration", "store", "ui"}, order)
}

func TestLifecycle(t *testing.T) {
	j := &journal{}
	h := newStubHub(t, j,
		&stubService{name: "b", deps: []string{"a"}},
		&stubService{name: "a"},
	)

	ctx := context.Background()
	require.NoError(t, h.InitAll(ctx))
	require.NoError(t, h.StartAll(ctx))
	require.NoError(t, h.StopAll())
	require.NoError(t, h.StopAll(), "second stop has nothing to do")

	assert.Equal(t, []string{"init:a", "init:b", "start:a", "start:b", "stop:b", "stop:a"}, j.calls)
}

func TestCycleDetected(t *testing.T) {
	h := newStubHub(t, &journal{},
		&stubService{name: "a", deps: []string{"b"}},
		&stubService{name: "b", deps: []string{"a"}},
	)
	_, err := h.Order()
	require.ErrorIs(t, err, ErrCycle)
	require.ErrorIs(t, h.InitAll(context.Background()), ErrCycle)
}

func TestUnregisteredDependency(t *testing.T) {
	h := newStubHub(t, &journal{}, &stubService{name: "a", deps: []string{"ghost"}})
	_, err := h.Order()
	require.ErrorContains(t, err, "ghost")
}

func TestDuplicateRegister(t *testing.T) {
	h := newStubHub(t, &journal{}, &stubService{name: "a"})
	require.Error(t, h.Register(&stubService{name: "a", j: &journal{}}))
}

// TestInitRollback verifies initialized services are stopped when a later Init fails
func TestInitRollback(t *testing.T) {
	j := &journal{}
	boom := errors.New("boom")
	h := newStubHub(t, j,
		&stubService{name: "a"},
		&stubService{name: "b"},
		&stubService{name: "c", initErr: boom},
	)

	err := h.InitAll(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"init:a", "init:b", "init:c", "stop:b", "stop:a"}, j.calls)
}

func TestStartRollback(t *testing.T) {
	j := &journal{}
	boom := errors.New("boom")
	h := newStubHub(t, j,
		&stubService{name: "a"},
		&stubService{name: "b", startErr: boom},
	)

	ctx := context.Background()
	require.NoError(t, h.InitAll(ctx))
	require.ErrorIs(t, h.StartAll(ctx), boom)
	require.NoError(t, h.StopAll())
	assert.Equal(t, []string{"init:a", "init:b", "start:a", "start:b", "stop:a"}, j.calls)
}

// TestStopAllJoinsErrors verifies every service is stopped despite failures
func TestStopAllJoinsErrors(t *testing.T) {
	j := &journal{}
	e1, e2 := errors.New("one"), errors.New("two")
	h := newStubHub(t, j,
		&stubService{name: "a", stopErr: e1},
		&stubService{name: "b", stopErr: e2},
	)

	ctx := context.Background()
	require.NoError(t, h.InitAll(ctx))
	require.NoError(t, h.StartAll(ctx))

	err := h.StopAll()
	require.ErrorIs(t, err, e1)
	require.ErrorIs(t, err, e2)
	assert.Equal(t, []string{"stop:b", "stop:a"}, j.calls[len(j.calls)-2:])
}

func TestMustGet(t *testing.T) {
	h := newStubHub(t, &journal{}, &stubService{name: "a"})
	assert.Equal(t, "a", MustGet[*stubService](h, "a").name)
	assert.Panics(t, func() { MustGet[*stubService](h, "missing") })
	assert.Equal(t, []string{"a"}, h.Names())

	svc, ok := h.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", svc.Name())
	_, ok = h.Get("missing")
	assert.False(t, ok)
}
