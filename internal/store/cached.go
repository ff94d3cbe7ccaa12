package store

import (
	"context"

	"github.com/askdb/askdb/internal/cache"
	"github.com/askdb/askdb/internal/observability"
)

// CachedExecutor memoizes successful results by exact query text. A repeat
// of byte-identical SQL is served from the cache without touching the
// store; failed executions are never cached.
type CachedExecutor struct {
	Next  Executor
	Cache *cache.Cache[Result]
}

func NewCachedExecutor(next Executor, c *cache.Cache[Result]) *CachedExecutor {
	if c == nil {
		c = cache.New[Result]()
	}
	return &CachedExecutor{Next: next, Cache: c}
}

func (e *CachedExecutor) Execute(ctx context.Context, sqlText string) (Result, error) {
	if cached, ok := e.Cache.Get(sqlText); ok {
		observability.IncrementQueryCacheHits()
		return cached, nil
	}
	observability.IncrementQueryCacheMisses()

	result, err := e.Next.Execute(ctx, sqlText)
	if err != nil {
		return Result{}, err
	}
	e.Cache.Put(sqlText, result)
	return result, nil
}
