package whitelist

import (
	"sync"

	"github.com/sirupsen/logrus"

	"seekone/internal/runutil"
)

// CacheSize bounds how many distinct (source, budget) tables are kept.
const CacheSize = 10

type cacheKey struct {
	src    string
	budget Budget
}

// Cache memoizes Build by exact (source, budget) with LRU eviction.
type Cache struct {
	mu     sync.Mutex
	lru    *runutil.LRU[cacheKey, *Table]
	log    logrus.FieldLogger
	builds int
}

func NewCache(capacity int, log logrus.FieldLogger) *Cache {
	return &Cache{lru: runutil.NewLRU[cacheKey, *Table](capacity), log: log}
}

// Get returns the cached table for (src, budget), building it on a miss.
func (c *Cache) Get(src string, budget Budget) (*Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := cacheKey{src: src, budget: budget}
	if t, ok := c.lru.Get(k); ok {
		return t, nil
	}
	t, err := Build(src, budget, c.log)
	if err != nil {
		return nil, err
	}
	c.builds++
	c.lru.Put(k, t)
	return t, nil
}

// Builds reports how many tables were actually constructed.
func (c *Cache) Builds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.builds
}
