package openmeteo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/couchcryptid/bikelane-risk/internal/domain"
	"github.com/couchcryptid/bikelane-risk/internal/observability"
	"github.com/jonboulle/clockwork"
)

// CachedClient wraps a ForecastProvider with an in-memory LRU cache whose
// entries expire after a TTL.
type CachedClient struct {
	inner   domain.ForecastProvider
	cache   *lruCache
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewCachedClient creates a cache decorator around a forecast provider. A
// non-positive ttl keeps entries until they are evicted.
func NewCachedClient(inner domain.ForecastProvider, maxEntries int, ttl time.Duration, metrics *observability.Metrics) *CachedClient {
	return &CachedClient{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		ttl:     ttl,
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
	}
}

// Fetch returns a cached forecast when a fresh one exists for the same
// location and query.
func (c *CachedClient) Fetch(ctx context.Context, loc domain.Location, hours int, timezone string) (domain.Forecast, error) {
	key := fmt.Sprintf("%s|%.6f,%.6f|%d|%s", loc.ID, loc.Latitude, loc.Longitude, hours, timezone)
	now := c.clock.Now()
	if e, ok := c.cache.get(key); ok {
		if c.ttl <= 0 || now.Sub(e.storedAt) < c.ttl {
			c.metrics.ForecastCache.WithLabelValues("hit").Inc()
			return e.value, nil
		}
		c.cache.delete(key)
		c.metrics.ForecastCache.WithLabelValues("expired").Inc()
	} else {
		c.metrics.ForecastCache.WithLabelValues("miss").Inc()
	}

	f, err := c.inner.Fetch(ctx, loc, hours, timezone)
	if err != nil {
		return f, err
	}
	c.cache.put(key, cached{value: f, storedAt: now})
	return f, nil
}

type cached struct {
	value    domain.Forecast
	storedAt time.Time
}

// lruCache is a simple thread-safe LRU cache of forecasts.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value cached
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (cached, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return cached{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value cached) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.remove(e)
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
