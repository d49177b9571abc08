package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"project-service/internal/domain/project"
)

var redisLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "project_cache_redis_lookups_total",
	Help: "Project lookups against Redis by result.",
}, []string{"result"})

// RedisCache shares project lookups across instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger Logger) *RedisCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func (r *RedisCache) Get(ctx context.Context, slug string) (*project.Project, bool) {
	data, err := r.client.Get(ctx, slugKey(slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		redisLookupsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		redisLookupsTotal.WithLabelValues("error").Inc()
		r.logger.Warnf("cache get %s: %v", slug, err)
		return nil, false
	}

	var p project.Project
	if err := json.Unmarshal(data, &p); err != nil {
		redisLookupsTotal.WithLabelValues("error").Inc()
		r.logger.Warnf("cache decode %s: %v", slug, err)
		return nil, false
	}

	redisLookupsTotal.WithLabelValues("hit").Inc()
	return &p, true
}

func (r *RedisCache) Set(ctx context.Context, p *project.Project) {
	if p == nil || p.Slug == "" {
		return
	}

	data, err := json.Marshal(p)
	if err != nil {
		r.logger.Warnf("cache encode %s: %v", p.Slug, err)
		return
	}

	if err := r.client.Set(ctx, slugKey(p.Slug), data, r.ttl).Err(); err != nil {
		r.logger.Warnf("cache set %s: %v", p.Slug, err)
	}
}

func (r *RedisCache) Invalidate(ctx context.Context, slugs ...string) {
	keys := make([]string, 0, len(slugs))
	for _, s := range slugs {
		if s != "" {
			keys = append(keys, slugKey(s))
		}
	}
	if len(keys) == 0 {
		return
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warnf("cache invalidate %v: %v", slugs, err)
	}
}

// Ping is used by the health endpoint.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
