package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"project-service/internal/domain/project"
)

var (
	lruHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "project_cache_lru_hits_total",
		Help: "Project lookups served from the in-process cache.",
	})
	lruMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "project_cache_lru_misses_total",
		Help: "Project lookups that missed the in-process cache.",
	})
)

// LRUCache is a per-instance cache used when no Redis address is configured.
// Entries are cloned on the way in and out so callers can mutate freely.
type LRUCache struct {
	lru *expirable.LRU[string, *project.Project]
}

func NewLRUCache(size int, ttl time.Duration) *LRUCache {
	if size <= 0 {
		size = defaultSize
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &LRUCache{lru: expirable.NewLRU[string, *project.Project](size, nil, ttl)}
}

func (c *LRUCache) Get(_ context.Context, slug string) (*project.Project, bool) {
	p, ok := c.lru.Get(slugKey(slug))
	if !ok {
		lruMissesTotal.Inc()
		return nil, false
	}
	lruHitsTotal.Inc()
	return p.Clone(), true
}

func (c *LRUCache) Set(_ context.Context, p *project.Project) {
	if p == nil || p.Slug == "" {
		return
	}
	c.lru.Add(slugKey(p.Slug), p.Clone())
}

func (c *LRUCache) Invalidate(_ context.Context, slugs ...string) {
	for _, s := range slugs {
		if s != "" {
			c.lru.Remove(slugKey(s))
		}
	}
}

func (c *LRUCache) Len() int {
	return c.lru.Len()
}
