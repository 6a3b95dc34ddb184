package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mikey/callsheet-pipeline/internal/adapters/cache"
	"github.com/mikey/callsheet-pipeline/internal/config"
	"github.com/mikey/callsheet-pipeline/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates classification caches based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCache creates a classification cache based on the configuration.
// When caching is disabled a no-op cache is returned so the engine never
// has to special-case a missing cache.
func (f *CacheFactory) CreateCache() (core.ClassificationCache, error) {
	if !f.cfg.GetBool("cache.enabled") {
		return cache.NewNoopCache(), nil
	}

	cacheType := f.cfg.GetString("cache.type")
	ttl, err := f.cfg.GetDuration("cache.ttl")
	if err != nil {
		return nil, fmt.Errorf("invalid cache TTL: %w", err)
	}
	cleanupFreq, err := f.cfg.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid cache cleanup frequency: %w", err)
	}

	switch cacheType {
	case "memory":
		maxEntries := f.cfg.GetInt("cache.max_entries")
		return cache.NewMemoryCache(f.logger, ttl, maxEntries, cleanupFreq), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("cache.sqlite_path")
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return cache.NewSQLiteCache(sqlitePath, f.logger, ttl, cleanupFreq)
	case "mysql":
		mysqlDSN := f.cfg.GetString("cache.mysql_dsn")
		return cache.NewMySQLCache(mysqlDSN, f.logger, ttl, cleanupFreq)
	case "redis":
		return cache.NewRedisCache(
			f.cfg.GetString("cache.redis_addr"),
			f.cfg.GetString("cache.redis_password"),
			f.cfg.GetInt("cache.redis_db"),
			f.logger,
			ttl,
		)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheType)
	}
}

// GetCacheTTL returns the configured cache TTL
func (f *CacheFactory) GetCacheTTL() (time.Duration, error) {
	return f.cfg.GetDuration("cache.ttl")
}

// IsCacheEnabled returns whether caching is enabled
func (f *CacheFactory) IsCacheEnabled() bool {
	return f.cfg.GetBool("cache.enabled")
}
