package mocks

import (
	"context"
	"encoding/json"
	"time"

	"codequest/internal/platform/cache"
)

// MemoryCache is an in-process cache.Cache that round-trips values through JSON like the Redis one.
type MemoryCache struct {
	Items map[string][]byte
	Sets  int
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{Items: make(map[string][]byte)}
}

func (c *MemoryCache) Get(_ context.Context, key string, dest any) error {
	b, ok := c.Items[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(b, dest)
}

func (c *MemoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.Items[key] = b
	c.Sets++
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.Items, k)
	}
	return nil
}
