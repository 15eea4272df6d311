package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Hub is the runtime container for service instances
// Manages lifecycle and provides type-safe access
type Hub struct {
	mu       sync.RWMutex
	services map[string]Service
	sorted   []string // Topological order, computed on InitAll
	started  []string // Services that completed Start, for rollback
	log      *slog.Logger
}

// NewHub creates an empty service hub; log may be nil
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		services: make(map[string]Service),
		log:      log,
	}
}

// Register adds a service instance to the hub
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, exists := h.services[name]; exists {
		return fmt.Errorf("service already registered: %s", name)
	}

	h.services[name] = svc
	h.sorted = nil
	return nil
}

// Get retrieves a service by name
func (h *Hub) Get(name string) (Service, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	svc, ok := h.services[name]
	return svc, ok
}

// MustGet retrieves a service and casts to type T
// Panics if service not found or type mismatch
func MustGet[T any](h *Hub, name string) T {
	svc, ok := h.Get(name)
	if !ok {
		panic(fmt.Sprintf("service not found: %s", name))
	}

	typed, ok := svc.(T)
	if !ok {
		panic(fmt.Sprintf("service %s: type mismatch, got %T", name, svc))
	}
	return typed
}

// Order returns the resolved initialization order
func (h *Hub) Order() ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.resolve(); err != nil {
		return nil, err
	}
	return append([]string(nil), h.sorted...), nil
}

func (h *Hub) resolve() error {
	if h.sorted != nil {
		return nil
	}
	order, err := h.topologicalSort()
	if err != nil {
		return err
	}
	h.sorted = order
	return nil
}

// InitAll calls Init on all services in dependency order
// On failure, calls Stop on already-initialized services in reverse order
func (h *Hub) InitAll(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.resolve(); err != nil {
		return err
	}

	var initialized []string
	for _, name := range h.sorted {
		if err := h.services[name].Init(ctx); err != nil {
			for i := len(initialized) - 1; i >= 0; i-- {
				h.stopOne(initialized[i])
			}
			return fmt.Errorf("service %s init failed: %w", name, err)
		}
		initialized = append(initialized, name)
		h.log.Debug("service initialized", "service", name)
	}
	return nil
}

// StartAll calls Start on all services in topological order
// On failure, calls Stop on already-started services in reverse order
func (h *Hub) StartAll(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.resolve(); err != nil {
		return err
	}
	h.started = nil

	for _, name := range h.sorted {
		if err := h.services[name].Start(ctx); err != nil {
			for i := len(h.started) - 1; i >= 0; i-- {
				h.stopOne(h.started[i])
			}
			h.started = nil
			return fmt.Errorf("service %s start failed: %w", name, err)
		}
		h.started = append(h.started, name)
		h.log.Debug("service started", "service", name)
	}
	return nil
}

// StopAll calls Stop on all started services in reverse order
// Every service gets Stop called; errors are joined
func (h *Hub) StopAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var errs []error
	for i := len(h.started) - 1; i >= 0; i-- {
		if err := h.stopOne(h.started[i]); err != nil {
			errs = append(errs, err)
		}
	}
	h.started = nil
	return errors.Join(errs...)
}

func (h *Hub) stopOne(name string) error {
	svc, ok := h.services[name]
	if !ok {
		return nil
	}
	if err := svc.Stop(); err != nil {
		h.log.Warn("service stop failed", "service", name, "error", err)
		return fmt.Errorf("service %s stop: %w", name, err)
	}
	return nil
}

// topologicalSort computes initialization order using Kahn's algorithm
// Ties break by name so the order is deterministic
func (h *Hub) topologicalSort() ([]string, error) {
	inDegree := make(map[string]int)
	dependents := make(map[string][]string) // dep -> services that depend on it

	for name := range h.services {
		inDegree[name] = 0
	}

	for name, svc := range h.services {
		for _, dep := range svc.Dependencies() {
			if _, exists := h.services[dep]; !exists {
				return nil, fmt.Errorf("service %s depends on unregistered service: %s", name, dep)
			}
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	var result []string
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		result = append(result, name)

		var ready []string
		for _, dependent := range dependents[name] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
		sort.Strings(ready)
		queue = append(queue, ready...)
	}

	if len(result) != len(h.services) {
		return nil, ErrCycle
	}
	return result, nil
}

// ErrCycle is returned when service dependencies form a loop
var ErrCycle = errors.New("circular dependency detected in services")

// Names returns all registered service names, sorted
func (h *Hub) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.services))
	for name := range h.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
