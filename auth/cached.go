package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// LoadState is the lifecycle of a CachedSource.
type LoadState int

const (
	StateUninitialized LoadState = iota
	StateLoading
	StateReady
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("LoadState(%d)", int(s))
	}
}

// CachedSource loads a token lazily from an upstream source and reuses it.
// Concurrent callers share one load. A failed load is retried on the next call.
// With a TTL of zero the token never expires.
type CachedSource struct {
	source TokenSource
	ttl    time.Duration
	now    func() time.Time

	group singleflight.Group

	mu       sync.Mutex
	state    LoadState
	token    string
	err      error
	loadedAt time.Time
}

// NewCachedSource wraps source. It performs no I/O until the first Token call.
func NewCachedSource(source TokenSource, ttl time.Duration) *CachedSource {
	return &CachedSource{
		source: source,
		ttl:    ttl,
		now:    time.Now,
	}
}

// State reports the current lifecycle state.
func (c *CachedSource) State() LoadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the error of the last failed load, if the source is in StateFailed.
func (c *CachedSource) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateFailed {
		return nil
	}
	return c.err
}

// Token returns the cached token, loading it when absent or expired.
func (c *CachedSource) Token(ctx context.Context) (string, error) {
	if tok, ok := c.reusable(); ok {
		return tok, nil
	}

	ch := c.group.DoChan("token", func() (any, error) {
		return c.load(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Invalidate drops the cached token so the next call reloads it.
func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateUninitialized
	c.token = ""
	c.err = nil
}

func (c *CachedSource) reusable() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return "", false
	}
	if c.ttl > 0 && c.now().Sub(c.loadedAt) >= c.ttl {
		return "", false
	}
	return c.token, true
}

func (c *CachedSource) load(ctx context.Context) (string, error) {
	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()

	tok, err := c.source.Token(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateFailed
		c.err = err
		c.token = ""
		zap.S().Debugw("token_load_failed", "error", err)
		return "", fmt.Errorf("load token: %w", err)
	}
	c.state = StateReady
	c.err = nil
	c.token = tok
	c.loadedAt = c.now()
	zap.S().Debugw("token_loaded", "has_token", tok != "")
	return tok, nil
}
