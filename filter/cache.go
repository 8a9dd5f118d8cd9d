package filter

import (
	"container/list"
	"sync"
)

// lru keeps the most recently used values up to a fixed capacity
type lru[V any] struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front is most recent
	index    map[string]*list.Element
}

type lruItem[V any] struct {
	key   string
	value V
}

func newLRU[V any](capacity int) *lru[V] {
	return &lru[V]{
		capacity: max(capacity, 1),
		order:    list.New(),
		index:    make(map[string]*list.Element),
	}
}

func (c *lru[V]) get(key string) (v V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*lruItem[V]).value, true
	}
	return v, false
}

// add stores value under key and reports the key it evicted, if any
func (c *lru[V]) add(key string, value V) (evicted string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, found := c.index[key]; found {
		el.Value.(*lruItem[V]).value = value
		c.order.MoveToFront(el)
		return "", false
	}

	c.index[key] = c.order.PushFront(&lruItem[V]{key: key, value: value})
	if c.order.Len() <= c.capacity {
		return "", false
	}

	oldest := c.order.Remove(c.order.Back()).(*lruItem[V])
	delete(c.index, oldest.key)
	return oldest.key, true
}

func (c *lru[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
