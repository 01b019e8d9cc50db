package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

var _ ImageCache = (*MemoryCache)(nil)

// Capacities used when a view is shown; aggregation views hold more items on
// screen, so they get the smaller per-image budget.
const (
	DefaultCapacity    = 64
	HighVolumeCapacity = 24
)

// MemoryCache is an LRU-bounded ImageCache.
type MemoryCache struct {
	mu  sync.Mutex
	lru *lru.Cache[string, []byte]
}

func NewMemoryCache(capacity int) (*MemoryCache, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	inner, err := lru.New[string, []byte](capacity)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{lru: inner}, nil
}

func (c *MemoryCache) Get(url string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(url)
}

func (c *MemoryCache) Set(url string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(url, data)
}

// Resize adjusts capacity for the active view, evicting oldest entries when
// shrinking.
func (c *MemoryCache) Resize(capacity int) {
	if capacity <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Resize(capacity)
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
