package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mikey/callsheet-pipeline/internal/core"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a cache entry is not found
	ErrNotFound = errors.New("cache entry not found")
)

// MemoryCache is an in-memory implementation of the ClassificationCache
// interface with TTL expiry and a bounded entry count
type MemoryCache struct {
	entries     map[string]*core.CacheEntry
	mu          sync.RWMutex
	logger      *zap.Logger
	ttl         time.Duration
	maxEntries  int
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMemoryCache creates a new in-memory classification cache. maxEntries
// bounds the cache size; when full, the entry closest to expiry is evicted.
func NewMemoryCache(logger *zap.Logger, ttl time.Duration, maxEntries int, cleanupFreq time.Duration) *MemoryCache {
	if maxEntries < 1 {
		maxEntries = 10000
	}
	c := &MemoryCache{
		entries:     make(map[string]*core.CacheEntry),
		logger:      logger,
		ttl:         ttl,
		maxEntries:  maxEntries,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	if cleanupFreq > 0 {
		go c.startCleanupTask()
	}

	return c
}

// Get retrieves a cached classification for a message
func (c *MemoryCache) Get(ctx context.Context, messageID string) (*core.Classification, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[messageID]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		return nil, false
	}

	classification := entry.Classification
	return &classification, true
}

// Set stores a classification for a message, replacing any existing entry
func (c *MemoryCache) Set(ctx context.Context, messageID string, classification core.Classification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[messageID]; !exists && len(c.entries) >= c.maxEntries {
		c.evictSoonestLocked()
	}

	now := time.Now()
	c.entries[messageID] = &core.CacheEntry{
		MessageID:      messageID,
		Classification: classification,
		CachedAt:       now,
		ExpiresAt:      now.Add(c.ttl),
	}
}

// Delete removes a cache entry
func (c *MemoryCache) Delete(ctx context.Context, messageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, messageID)
	return nil
}

// Cleanup removes expired entries
func (c *MemoryCache) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expired := 0
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			expired++
		}
	}

	c.logger.Debug("Cleaned up expired cache entries", zap.Int("expired_count", expired))
	return nil
}

// evictSoonestLocked drops the entry closest to expiry to make room
func (c *MemoryCache) evictSoonestLocked() {
	var victim string
	var soonest time.Time
	for key, entry := range c.entries {
		if victim == "" || entry.ExpiresAt.Before(soonest) {
			victim = key
			soonest = entry.ExpiresAt
		}
	}
	if victim != "" {
		delete(c.entries, victim)
	}
}

// startCleanupTask starts a background task to clean up expired entries
func (c *MemoryCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task
func (c *MemoryCache) Stop() {
	close(c.stopCh)
}
