// Package internal provides the ordered associative cache that backs the TLB.
package internal

import "slices"

// An OrderedCache maps keys to values while maintaining the keys in a
// mutable recency order. The front of the order is the least-recently
// inserted or visited key, the back is the most recent. Lookup goes through
// a map; order maintenance is linear, which is acceptable at TLB sizes.
//
// No operation panics. Absent keys are reported through the bool return of
// Get and Contains, and Erase and Visit on absent keys are no-ops.
type OrderedCache[K comparable, V any] struct {
	values map[K]V
	order  []K
}

// NewOrderedCache creates an empty OrderedCache.
func NewOrderedCache[K comparable, V any]() *OrderedCache[K, V] {
	return &OrderedCache[K, V]{
		values: make(map[K]V),
	}
}

// Insert stores a key-value pair. A new key is appended to the back of the
// order. An existing key keeps its position and only the value is replaced.
func (c *OrderedCache[K, V]) Insert(key K, value V) {
	if _, found := c.values[key]; !found {
		c.order = append(c.order, key)
	}
	c.values[key] = value
}

// Get returns the value stored under the key. It does not disturb the order.
func (c *OrderedCache[K, V]) Get(key K) (V, bool) {
	value, found := c.values[key]
	return value, found
}

// Contains reports whether the key is present.
func (c *OrderedCache[K, V]) Contains(key K) bool {
	_, found := c.values[key]
	return found
}

// Erase removes the key from both the mapping and the order. It is a no-op
// if the key is absent.
func (c *OrderedCache[K, V]) Erase(key K) {
	if _, found := c.values[key]; !found {
		return
	}

	delete(c.values, key)

	i := slices.Index(c.order, key)
	c.order = append(c.order[:i], c.order[i+1:]...)
}

// Visit moves the key to the back of the order, marking it most recently
// used. It is a no-op if the key is absent.
func (c *OrderedCache[K, V]) Visit(key K) {
	i := slices.Index(c.order, key)
	if i < 0 {
		return
	}

	c.order = append(c.order[:i], c.order[i+1:]...)
	c.order = append(c.order, key)
}

// Order returns the keys from least recent to most recent. The returned
// slice is owned by the cache and must not be modified.
func (c *OrderedCache[K, V]) Order() []K {
	return c.order
}

// Size returns the number of entries in the cache.
func (c *OrderedCache[K, V]) Size() int {
	return len(c.values)
}
