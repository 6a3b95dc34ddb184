package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/callsheet-pipeline/internal/core"
	"go.uber.org/zap"
)

// SQLiteCache is a SQLite implementation of the ClassificationCache
// interface, for single-node deployments that need the cache to survive
// restarts
type SQLiteCache struct {
	db          *sql.DB
	logger      *zap.Logger
	ttl         time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewSQLiteCache creates a new SQLite classification cache
func NewSQLiteCache(dbPath string, logger *zap.Logger, ttl time.Duration, cleanupFreq time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS classification_cache (
			message_id TEXT PRIMARY KEY,
			msg_type TEXT,
			priority TEXT,
			confidence REAL,
			urgency_level INTEGER,
			requires_attention BOOLEAN,
			cached_at TIMESTAMP,
			expires_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_expires_at ON classification_cache(expires_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	cache := &SQLiteCache{
		db:          db,
		logger:      logger,
		ttl:         ttl,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	if cleanupFreq > 0 {
		go cache.startCleanupTask()
	}

	return cache, nil
}

// Get retrieves a cached classification for a message
func (c *SQLiteCache) Get(ctx context.Context, messageID string) (*core.Classification, bool) {
	var msgType, priority string
	var confidence float64
	var urgencyLevel int
	var requiresAttention bool

	err := c.db.QueryRowContext(ctx, `
		SELECT msg_type, priority, confidence, urgency_level, requires_attention
		FROM classification_cache
		WHERE message_id = ? AND expires_at > datetime('now')
	`, messageID).Scan(&msgType, &priority, &confidence, &urgencyLevel, &requiresAttention)

	if err != nil {
		if err != sql.ErrNoRows {
			c.logger.Error("Failed to query cache", zap.Error(err), zap.String("message_id", messageID))
		}
		return nil, false
	}

	return &core.Classification{
		Type:              core.MessageType(msgType),
		Priority:          core.Priority(priority),
		Confidence:        confidence,
		UrgencyLevel:      urgencyLevel,
		RequiresAttention: requiresAttention,
	}, true
}

// Set stores a classification for a message
func (c *SQLiteCache) Set(ctx context.Context, messageID string, classification core.Classification) {
	now := time.Now()
	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO classification_cache
			(message_id, msg_type, priority, confidence, urgency_level, requires_attention, cached_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, messageID, string(classification.Type), string(classification.Priority),
		classification.Confidence, classification.UrgencyLevel, classification.RequiresAttention,
		now.Format(time.RFC3339), now.Add(c.ttl).Format(time.RFC3339))

	if err != nil {
		c.logger.Error("Failed to insert cache entry", zap.Error(err), zap.String("message_id", messageID))
	}
}

// Delete removes a cache entry
func (c *SQLiteCache) Delete(ctx context.Context, messageID string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM classification_cache
		WHERE message_id = ?
	`, messageID)

	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}

	return nil
}

// Cleanup removes expired entries
func (c *SQLiteCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM classification_cache
		WHERE expires_at <= datetime('now')
	`)

	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	if deleted, err := result.RowsAffected(); err == nil {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", deleted))
	}

	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *SQLiteCache) startCleanupTask() {
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

// Stop stops the background cleanup task and closes the database
func (c *SQLiteCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
