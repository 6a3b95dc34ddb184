// Package schedule owns the periodic maintenance jobs: model
// recalibration from accumulated feedback and expired cache entry cleanup.
package schedule

import (
	"context"
	"time"

	"github.com/mikey/callsheet-pipeline/internal/core"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// MaintenanceScheduler runs recalibration and cache cleanup on cron
// schedules. Recalibration also runs on demand inside the engine when the
// feedback buffer fills; the scheduled run covers quiet periods where the
// buffer never reaches the batch size.
type MaintenanceScheduler struct {
	engine *core.ClassificationEngine
	cache  core.ClassificationCache
	logger *zap.Logger
	cron   *cron.Cron

	recalibrationSpec string
	cleanupSpec       string
}

// NewMaintenanceScheduler creates a scheduler with the given cron specs.
// Specs use the standard five-field syntax or descriptors like "@every 1h".
func NewMaintenanceScheduler(
	engine *core.ClassificationEngine,
	cache core.ClassificationCache,
	logger *zap.Logger,
	recalibrationSpec string,
	cleanupSpec string,
) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		engine:            engine,
		cache:             cache,
		logger:            logger,
		cron:              cron.New(),
		recalibrationSpec: recalibrationSpec,
		cleanupSpec:       cleanupSpec,
	}
}

// Start registers the jobs and starts the cron runner
func (s *MaintenanceScheduler) Start() error {
	if s.recalibrationSpec != "" {
		if _, err := s.cron.AddFunc(s.recalibrationSpec, s.runRecalibration); err != nil {
			return err
		}
	}
	if s.cleanupSpec != "" && s.cache != nil {
		if _, err := s.cron.AddFunc(s.cleanupSpec, s.runCacheCleanup); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("Maintenance scheduler started",
		zap.String("recalibration", s.recalibrationSpec),
		zap.String("cache_cleanup", s.cleanupSpec))
	return nil
}

// Stop stops the cron runner and waits for running jobs to finish
func (s *MaintenanceScheduler) Stop() error {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Maintenance scheduler stopped")
	return nil
}

func (s *MaintenanceScheduler) runRecalibration() {
	pending := s.engine.FeedbackCount()
	if pending == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.engine.Recalibrate(ctx)
	state := s.engine.ModelState()
	s.logger.Info("Scheduled recalibration complete",
		zap.Int("feedback_entries", pending),
		zap.Float64("accuracy", state.Accuracy),
		zap.Time("last_training_time", state.LastTrainingTime))
}

func (s *MaintenanceScheduler) runCacheCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.cache.Cleanup(ctx); err != nil {
		s.logger.Error("Cache cleanup failed", zap.Error(err))
		return
	}
	s.logger.Debug("Cache cleanup complete")
}
