package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func BenchmarkLRUCacheGet(b *testing.B) {
	c := NewLRUCache(1000, 10*time.Minute)
	ctx := context.Background()
	for i := 0; i < 1000; i++ {
		c.Set(ctx, testProject(fmt.Sprintf("project-%d", i)))
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		c.Get(ctx, fmt.Sprintf("project-%d", i%1000))
	}
}

func BenchmarkLRUCacheGetParallel(b *testing.B) {
	c := NewLRUCache(1000, 10*time.Minute)
	ctx := context.Background()
	for i := 0; i < 1000; i++ {
		c.Set(ctx, testProject(fmt.Sprintf("project-%d", i)))
	}

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			c.Get(ctx, fmt.Sprintf("project-%d", i%1000))
			i++
		}
	})
}

func BenchmarkLRUCacheSet(b *testing.B) {
	c := NewLRUCache(1000, 10*time.Minute)
	ctx := context.Background()
	p := testProject("project")

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		p.Slug = fmt.Sprintf("project-%d", i)
		c.Set(ctx, p)
	}
}
