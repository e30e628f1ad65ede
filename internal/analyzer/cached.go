package analyzer

import (
	"context"
	"fmt"
	"sync"

	"github.com/harrison/secrev/internal/cache"
)

// Warner receives cache failures, which never fail an analysis
type Warner interface {
	LogWarn(message string)
}

// Cached serves repeated chunks from the response cache and stores fresh
// responses. Failed analyses are not cached.
type Cached struct {
	Next     Analyzer
	Store    *cache.Store
	Provider string
	Model    string
	Logger   Warner

	mu     sync.Mutex
	hits   int
	misses int
}

// NewCached wraps next with store
func NewCached(next Analyzer, store *cache.Store, provider, model string, logger Warner) *Cached {
	return &Cached{Next: next, Store: store, Provider: provider, Model: model, Logger: logger}
}

// Analyze returns the cached response for displayPath and content or
// delegates to Next
func (c *Cached) Analyze(ctx context.Context, displayPath, content string) (string, error) {
	key := cache.Key(c.Provider, c.Model, displayPath, content)

	resp, ok, err := c.Store.Get(ctx, key)
	if err != nil {
		c.warn(fmt.Sprintf("Cache lookup failed for %s: %v", displayPath, err))
	} else if ok {
		c.count(true)
		return resp, nil
	}
	c.count(false)

	resp, err = c.Next.Analyze(ctx, displayPath, content)
	if err != nil {
		return "", err
	}

	if err := c.Store.Put(ctx, cache.Entry{Key: key, Provider: c.Provider, Model: c.Model, Response: resp}); err != nil {
		c.warn(fmt.Sprintf("Cache store failed for %s: %v", displayPath, err))
	}
	return resp, nil
}

// Counts returns the hits and misses seen so far
func (c *Cached) Counts() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *Cached) count(hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

func (c *Cached) warn(msg string) {
	if c.Logger != nil {
		c.Logger.LogWarn(msg)
	}
}
