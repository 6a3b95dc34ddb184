package cache

import (
	"context"

	"github.com/mikey/callsheet-pipeline/internal/core"
)

// NoopCache is used when caching is disabled. Lookups always miss and
// writes are discarded, so every message is classified fresh.
type NoopCache struct{}

// NewNoopCache creates a cache that stores nothing
func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

// Get always reports a miss
func (c *NoopCache) Get(_ context.Context, _ string) (*core.Classification, bool) {
	return nil, false
}

// Set discards the entry
func (c *NoopCache) Set(_ context.Context, _ string, _ core.Classification) {}

// Delete does nothing
func (c *NoopCache) Delete(_ context.Context, _ string) error {
	return nil
}

// Cleanup does nothing
func (c *NoopCache) Cleanup(_ context.Context) error {
	return nil
}
