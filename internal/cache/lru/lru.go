// Package lru keeps recently assembled feature collections in process
// memory, keyed by the request fingerprint, so repeated identical
// queries skip both Redis and reassembly.
package lru

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

type Cache struct {
	inner *lru.Cache[uint64, []byte]
}

func New(size int) (*Cache, error) {
	inner, err := lru.New[uint64, []byte](size)
	if err != nil {
		return nil, err
	}
	return &Cache{inner: inner}, nil
}

func (c *Cache) Get(key uint64) ([]byte, bool) {
	return c.inner.Get(key)
}

func (c *Cache) Add(key uint64, body []byte) {
	c.inner.Add(key, body)
}

// Purge drops every entry. Invalidation uses it: collection bodies do
// not record which mesh cells they contain, so a cell-level change
// cannot be mapped back to the requests that included it.
func (c *Cache) Purge() {
	c.inner.Purge()
}

func (c *Cache) Len() int {
	return c.inner.Len()
}
