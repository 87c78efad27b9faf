package environment

import "container/list"

type evalResult struct {
	coroutine bool
	err       error
}

type evalEntry struct {
	expr   string
	result evalResult
}

// evalCache keeps the most recently used evaluation results of one run.
// A run evaluates from a single goroutine, so it is not locked.
type evalCache struct {
	capacity int
	entries  map[string]*list.Element
	recency  *list.List // front is the latest use
}

func newEvalCache(capacity int) *evalCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &evalCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element, capacity),
		recency:  list.New(),
	}
}

func (c *evalCache) get(expr string) (evalResult, bool) {
	el, ok := c.entries[expr]
	if !ok {
		return evalResult{}, false
	}
	c.recency.MoveToFront(el)
	return el.Value.(*evalEntry).result, true
}

func (c *evalCache) put(expr string, res evalResult) {
	if el, ok := c.entries[expr]; ok {
		el.Value.(*evalEntry).result = res
		c.recency.MoveToFront(el)
		return
	}
	if c.recency.Len() >= c.capacity {
		oldest := c.recency.Back()
		c.recency.Remove(oldest)
		delete(c.entries, oldest.Value.(*evalEntry).expr)
	}
	c.entries[expr] = c.recency.PushFront(&evalEntry{expr: expr, result: res})
}

func (c *evalCache) len() int {
	return c.recency.Len()
}
