package audio

import (
	"context"
	"sync"
	"sync/atomic"
)

type renderFunc func(EffectKind) (*Buffer, error)

// cacheEntry is a render in flight or finished; done closes when buf/err are set
type cacheEntry struct {
	done chan struct{}
	buf  *Buffer
	err  error
}

// effectCache memoizes rendered effects for the process lifetime
// Concurrent callers for one kind share a single render
type effectCache struct {
	mu      sync.Mutex
	entries map[EffectKind]*cacheEntry
	render  renderFunc
	renders atomic.Int64
}

func newEffectCache(render renderFunc) *effectCache {
	return &effectCache{
		entries: make(map[EffectKind]*cacheEntry),
		render:  render,
	}
}

// get returns the cached buffer, joins a pending render, or starts one
func (c *effectCache) get(ctx context.Context, kind EffectKind) (*Buffer, error) {
	c.mu.Lock()
	if e, ok := c.entries[kind]; ok {
		c.mu.Unlock()
		select {
		case <-e.done:
			return e.buf, e.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	e := &cacheEntry{done: make(chan struct{})}
	c.entries[kind] = e
	c.mu.Unlock()

	c.renders.Add(1)
	e.buf, e.err = c.render(kind)
	if e.err != nil {
		// Not cached; next caller retries
		c.mu.Lock()
		delete(c.entries, kind)
		c.mu.Unlock()
	}
	close(e.done)
	return e.buf, e.err
}

// ready returns the buffer only if a render already finished successfully
func (c *effectCache) ready(kind EffectKind) (*Buffer, bool) {
	c.mu.Lock()
	e, ok := c.entries[kind]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	select {
	case <-e.done:
		return e.buf, e.err == nil
	default:
		return nil, false
	}
}

// preload renders every kind, returning the first error
func (c *effectCache) preload(ctx context.Context) error {
	var first error
	for _, k := range EffectKinds() {
		if _, err := c.get(ctx, k); err != nil && first == nil {
			first = err
		}
	}
	return first
}
