package cache

import (
	"context"
	"time"

	"project-service/internal/domain/project"
)

const (
	keyPrefix = "project:slug:"

	defaultTTL  = 5 * time.Minute
	defaultSize = 512
)

// ProjectCache holds public project lookups keyed by slug. Implementations
// never return an error from Get: any failure is reported as a miss.
type ProjectCache interface {
	Get(ctx context.Context, slug string) (*project.Project, bool)
	Set(ctx context.Context, p *project.Project)
	Invalidate(ctx context.Context, slugs ...string)
}

// Logger is the subset of echo's logger the caches write through.
type Logger interface {
	Warnf(format string, args ...interface{})
}

func slugKey(slug string) string {
	return keyPrefix + slug
}
