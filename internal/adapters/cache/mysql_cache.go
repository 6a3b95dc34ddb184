package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/callsheet-pipeline/internal/core"
	"go.uber.org/zap"
)

// MySQLCache is a MySQL implementation of the ClassificationCache interface
type MySQLCache struct {
	db          *sql.DB
	logger      *zap.Logger
	ttl         time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLCache creates a new MySQL classification cache
func NewMySQLCache(dsn string, logger *zap.Logger, ttl time.Duration, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS classification_cache (
			message_id VARCHAR(255) PRIMARY KEY,
			msg_type VARCHAR(32),
			priority VARCHAR(16),
			confidence FLOAT,
			urgency_level INT,
			requires_attention BOOLEAN,
			cached_at TIMESTAMP,
			expires_at TIMESTAMP,
			INDEX idx_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cache := &MySQLCache{
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
func (c *MySQLCache) Get(ctx context.Context, messageID string) (*core.Classification, bool) {
	var msgType, priority string
	var confidence float64
	var urgencyLevel int
	var requiresAttention bool

	err := c.db.QueryRowContext(ctx, `
		SELECT msg_type, priority, confidence, urgency_level, requires_attention
		FROM classification_cache
		WHERE message_id = ? AND expires_at > NOW()
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
func (c *MySQLCache) Set(ctx context.Context, messageID string, classification core.Classification) {
	now := time.Now()
	_, err := c.db.ExecContext(ctx, `
		REPLACE INTO classification_cache
			(message_id, msg_type, priority, confidence, urgency_level, requires_attention, cached_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, messageID, string(classification.Type), string(classification.Priority),
		classification.Confidence, classification.UrgencyLevel, classification.RequiresAttention,
		now, now.Add(c.ttl))

	if err != nil {
		c.logger.Error("Failed to insert cache entry", zap.Error(err), zap.String("message_id", messageID))
	}
}

// Delete removes a cache entry
func (c *MySQLCache) Delete(ctx context.Context, messageID string) error {
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
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM classification_cache
		WHERE expires_at <= NOW()
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
func (c *MySQLCache) startCleanupTask() {
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
func (c *MySQLCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}
