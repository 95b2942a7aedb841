package pipeline

import (
	"sync"

	"itinerary-geometry/internal/geo"
	"itinerary-geometry/internal/resolver"
)

type outcome struct {
	coord geo.Coordinate
	ok    bool
}

// passCache holds the settled outcome of each key for one resolution pass.
// An entry is written once and never overwritten.
type passCache struct {
	mu      sync.Mutex
	entries map[resolver.Key]outcome
}

func newPassCache(n int) *passCache {
	return &passCache{entries: make(map[resolver.Key]outcome, n)}
}

func (c *passCache) settle(k resolver.Key, coord geo.Coordinate, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[k]; exists {
		return
	}
	c.entries[k] = outcome{coord: coord, ok: ok}
}

// get reports false for keys that failed or never settled.
func (c *passCache) get(k resolver.Key) (geo.Coordinate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o := c.entries[k]
	return o.coord, o.ok
}
