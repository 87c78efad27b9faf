package environment

import (
	"context"

	"corocheck/internal/core/errors"
)

// CachedEnvironment memoizes evaluations. Successful lookups and name
// errors are cached; faults are not, they end the run anyway.
type CachedEnvironment struct {
	inner Environment
	cache *evalCache

	hits, misses int
}

func NewCachedEnvironment(inner Environment, size int) *CachedEnvironment {
	return &CachedEnvironment{inner: inner, cache: newEvalCache(size)}
}

func (c *CachedEnvironment) Evaluate(ctx context.Context, expr string) (bool, error) {
	if res, ok := c.cache.get(expr); ok {
		c.hits++
		return res.coroutine, res.err
	}
	c.misses++

	coroutine, err := c.inner.Evaluate(ctx, expr)
	if err == nil || errors.IsCode(err, errors.CodeNameResolution) {
		c.cache.put(expr, evalResult{coroutine: coroutine, err: err})
	}
	return coroutine, err
}

// Stats returns cache hits and misses since construction.
func (c *CachedEnvironment) Stats() (hits, misses int) {
	return c.hits, c.misses
}

func (c *CachedEnvironment) Close() error {
	return c.inner.Close()
}
