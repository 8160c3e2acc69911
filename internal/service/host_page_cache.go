package service

import (
	"strings"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

const (
	// DefaultHostPageTTL bounds how long a rendered page is served for a host.
	DefaultHostPageTTL = 20 * time.Minute
	// DefaultTemplateTTL bounds how long the raw index template is kept in memory.
	DefaultTemplateTTL = time.Hour
)

// Clock returns the current time.
type Clock func() time.Time

type stamped[V any] struct {
	value V
	at    time.Time
}

// timedCache stores values together with their write time. An entry is fresh while
// now-at < ttl; stale entries are dropped when read or swept. Expiry is driven by the
// injected clock only, ttlcache's own timers stay off.
type timedCache[V any] struct {
	items *ttlcache.Cache[string, stamped[V]]
	ttl   time.Duration
	now   Clock
	// mu orders writes against stale-entry removal so a fresh set is never dropped
	mu sync.Mutex
}

func newTimedCache[V any](ttl time.Duration, now Clock) *timedCache[V] {
	if now == nil {
		now = time.Now
	}
	return &timedCache[V]{
		items: ttlcache.New(
			ttlcache.WithDisableTouchOnHit[string, stamped[V]](),
		),
		ttl: ttl,
		now: now,
	}
}

func (c *timedCache[V]) get(key string) (V, bool) {
	var zero V
	item := c.items.Get(key)
	if item == nil {
		return zero, false
	}
	entry := item.Value()
	if !c.fresh(entry) {
		c.dropIfStale(key)
		return zero, false
	}
	return entry.value, true
}

func (c *timedCache[V]) set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.Set(key, stamped[V]{value: value, at: c.now()}, ttlcache.NoTTL)
}

func (c *timedCache[V]) delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.items.Has(key) {
		return false
	}
	c.items.Delete(key)
	return true
}

// dropIfStale removes key only if the entry stored now is still stale.
func (c *timedCache[V]) dropIfStale(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	item := c.items.Get(key)
	if item == nil || c.fresh(item.Value()) {
		return false
	}
	c.items.Delete(key)
	return true
}

func (c *timedCache[V]) sweep() int {
	removed := 0
	for key, item := range c.items.Items() {
		if !c.fresh(item.Value()) && c.dropIfStale(key) {
			removed++
		}
	}
	return removed
}

func (c *timedCache[V]) len() int {
	return c.items.Len()
}

func (c *timedCache[V]) fresh(entry stamped[V]) bool {
	return c.now().Sub(entry.at) < c.ttl
}

// HostPageCache holds the rendered index page per normalised host.
type HostPageCache struct {
	pages *timedCache[string]
}

// NewHostPageCache constructs a page cache. A nil clock means time.Now.
func NewHostPageCache(ttl time.Duration, now Clock) *HostPageCache {
	if ttl <= 0 {
		ttl = DefaultHostPageTTL
	}
	return &HostPageCache{pages: newTimedCache[string](ttl, now)}
}

// Get returns the cached page for host if it is still fresh.
func (c *HostPageCache) Get(host string) (string, bool) {
	return c.pages.get(host)
}

// Set stores a rendered page, stamping it with the current time.
func (c *HostPageCache) Set(host, html string) {
	c.pages.set(host, html)
}

// Delete drops the page for host and reports whether one was cached.
func (c *HostPageCache) Delete(host string) bool {
	return c.pages.delete(host)
}

// Sweep removes every stale page and returns how many were dropped.
func (c *HostPageCache) Sweep() int {
	return c.pages.sweep()
}

// Len returns the number of cached pages, stale ones included until swept.
func (c *HostPageCache) Len() int {
	return c.pages.len()
}

// Invalidate drops the page cached for domain and for every host under it, so a change
// to example.com also clears shop.example.com. It returns the number of pages dropped.
func (c *HostPageCache) Invalidate(domain string) int {
	if domain == "" {
		return 0
	}
	removed := 0
	suffix := "." + domain
	for _, key := range c.pages.items.Keys() {
		if key == domain || strings.HasSuffix(key, suffix) {
			if c.pages.delete(key) {
				removed++
			}
		}
	}
	return removed
}
