// Package counts is a read-through cache for the badge counts (unread alerts,
// open todos) shared by every view. Successful transitions invalidate the
// affected kind so list views and badges observe the same numbers.
package counts

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Kind string

const (
	Alerts Kind = "alerts"
	Todos  Kind = "todos"
)

type Loader func(ctx context.Context) (int, error)

type entry struct {
	value int
	valid bool
	// gen advances on every invalidation; a load started under an older
	// generation must not populate the cache.
	gen uint64
}

type Cache struct {
	loaders map[Kind]Loader
	log     *zap.Logger
	group   singleflight.Group

	mu      sync.Mutex
	entries map[Kind]*entry
}

func New(loaders map[Kind]Loader, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		loaders: loaders,
		log:     log,
		entries: make(map[Kind]*entry),
	}
}

func (c *Cache) entry(k Kind) *entry {
	e, ok := c.entries[k]
	if !ok {
		e = &entry{}
		c.entries[k] = e
	}
	return e
}

// Get returns the cached count for k, loading it when absent. Concurrent
// callers for the same kind share one request.
func (c *Cache) Get(ctx context.Context, k Kind) (int, error) {
	load, ok := c.loaders[k]
	if !ok {
		return 0, fmt.Errorf("no loader for %q", k)
	}

	c.mu.Lock()
	e := c.entry(k)
	if e.valid {
		v := e.value
		c.mu.Unlock()
		return v, nil
	}
	gen := e.gen
	c.mu.Unlock()

	key := fmt.Sprintf("%s/%d", k, gen)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		n, err := load(ctx)
		if err != nil {
			return 0, err
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		e := c.entry(k)
		if e.gen == gen {
			e.value = n
			e.valid = true
		}
		return n, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// Invalidate drops the cached count for k. In-flight loads that began before
// the call still return to their callers but are not cached.
func (c *Cache) Invalidate(k Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(k)
	e.valid = false
	e.gen++
	c.log.Debug("count invalidated", zap.String("kind", string(k)))
}

// Peek returns the cached value without loading.
func (c *Cache) Peek(k Kind) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[k]
	if !ok || !e.valid {
		return 0, false
	}
	return e.value, true
}

// AlertsUnread is the badge view of Get: any failure reads as zero.
func AlertsUnread(ctx context.Context, c *Cache) int {
	return orZero(ctx, c, Alerts)
}

func TodosOpen(ctx context.Context, c *Cache) int {
	return orZero(ctx, c, Todos)
}

func orZero(ctx context.Context, c *Cache, k Kind) int {
	n, err := c.Get(ctx, k)
	if err != nil {
		c.log.Debug("count unavailable", zap.String("kind", string(k)), zap.Error(err))
		return 0
	}
	return n
}
