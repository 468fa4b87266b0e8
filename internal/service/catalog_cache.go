package service

import (
	"sync"
	"time"

	"github.com/convoplay/convoplay/internal/domain"
)

type catalogCache struct {
	mu       sync.RWMutex
	models   []domain.CatalogModel
	cachedAt time.Time
	ttl      time.Duration
}

func newCatalogCache(ttl time.Duration) *catalogCache {
	return &catalogCache{ttl: ttl}
}

func (c *catalogCache) Get() []domain.CatalogModel {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.models == nil || time.Since(c.cachedAt) > c.ttl {
		return nil
	}
	return c.models
}

func (c *catalogCache) Set(models []domain.CatalogModel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models = models
	c.cachedAt = time.Now()
}
