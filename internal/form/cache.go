// internal/form/cache.go
//
// FormRelayer – lazy form cache.
//
// Context
//   The public component resolves a form on every render and on every
//   submission.  Forms change rarely, so the cache loads each one on first
//   hit, deduplicates concurrent loads with singleflight, and evicts entries
//   idle past the TTL.  The admin component calls Invalidate after any save
//   so the next public hit sees fresh data.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/formrelayer/formrelayer/internal/metrics"
)

// Static defaults.
const (
	IdleTTL       = 10 * time.Minute
	EvictInterval = 1 * time.Minute
)

// Cache lazily loads forms by slug, stores them in a sync.Map, and evicts on
// idle TTL.
type Cache struct {
	repo        *Repository
	sfg         singleflight.Group
	m           sync.Map // slug → *entry
	idleTTL     time.Duration
	evictTicker *time.Ticker
}

type entry struct {
	form     *Form
	lastSeen int64 // UnixNano, atomically updated
}

// NewCache constructs a Cache and starts the background evictor.
func NewCache(repo *Repository, idleTTL time.Duration) *Cache {
	c := &Cache{
		repo:    repo,
		idleTTL: idleTTL,
	}
	c.evictTicker = time.NewTicker(EvictInterval)
	go c.evictLoop()
	return c
}

// Get returns the form for slug, loading it on demand.
func (c *Cache) Get(ctx context.Context, slug string) (*Form, error) {
	if v, ok := c.m.Load(slug); ok {
		ent := v.(*entry)
		atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
		return ent.form, nil
	}

	v, err, _ := c.sfg.Do(slug, func() (interface{}, error) {
		// Double-check after singleflight barrier.
		if v, ok := c.m.Load(slug); ok {
			ent := v.(*entry)
			atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
			return ent.form, nil
		}
		f, err := c.repo.BySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		c.m.Store(slug, &entry{form: f, lastSeen: time.Now().UnixNano()})
		metrics.FormLoadTotal.Inc()
		metrics.FormsCached.Inc()
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Form), nil
}

// Invalidate drops one slug (or every entry when slug is empty).  Called by
// the admin component after saves, trashes, and imports.
func (c *Cache) Invalidate(slug string) {
	if slug != "" {
		if _, loaded := c.m.LoadAndDelete(slug); loaded {
			metrics.FormsCached.Dec()
		}
		return
	}
	c.m.Range(func(k, _ any) bool {
		if _, loaded := c.m.LoadAndDelete(k); loaded {
			metrics.FormsCached.Dec()
		}
		return true
	})
}

// Close stops the evictor.
func (c *Cache) Close() {
	if c.evictTicker != nil {
		c.evictTicker.Stop()
	}
}

func (c *Cache) evictLoop() {
	for range c.evictTicker.C {
		cutoff := time.Now().Add(-c.idleTTL).UnixNano()
		c.m.Range(func(k, v any) bool {
			if atomic.LoadInt64(&v.(*entry).lastSeen) < cutoff {
				if _, loaded := c.m.LoadAndDelete(k); loaded {
					metrics.FormsCached.Dec()
				}
			}
			return true
		})
	}
}
