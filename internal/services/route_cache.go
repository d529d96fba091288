package services

import (
	"fmt"
	"sync"

	"itinero/internal/models/trip_models"
)

// RouteCache memoizes route lookups across planning runs. It is bounded:
// once capacity is reached the oldest inserted entry is evicted. Keys round
// coordinates to six decimals so nearby floating-point noise still hits.
type RouteCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]RouteEstimate
	order    []string
}

const DefaultRouteCacheSize = 256

func NewRouteCache(capacity int) *RouteCache {
	if capacity <= 0 {
		capacity = DefaultRouteCacheSize
	}
	return &RouteCache{
		capacity: capacity,
		entries:  make(map[string]RouteEstimate, capacity),
	}
}

func RouteCacheKey(origin, destination trip_models.Coordinate, mode string) string {
	return fmt.Sprintf("%.6f,%.6f_%.6f,%.6f_%s",
		origin.Lat, origin.Lon, destination.Lat, destination.Lon, mode)
}

func (c *RouteCache) Get(key string) (RouteEstimate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	est, ok := c.entries[key]
	return est, ok
}

func (c *RouteCache) Put(key string, est RouteEstimate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = est
		return
	}

	c.entries[key] = est
	c.order = append(c.order, key)

	if len(c.order) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

func (c *RouteCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *RouteCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]RouteEstimate, c.capacity)
	c.order = nil
}
