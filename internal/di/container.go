package di

import (
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/callsheet-pipeline/internal/config"
	"github.com/mikey/callsheet-pipeline/internal/core"
	"github.com/mikey/callsheet-pipeline/internal/factory"
	"github.com/mikey/callsheet-pipeline/internal/logging"
	"github.com/mikey/callsheet-pipeline/internal/ports"
	"github.com/mikey/callsheet-pipeline/internal/resilience"
	"github.com/mikey/callsheet-pipeline/internal/schedule"
	"github.com/mikey/callsheet-pipeline/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.NewDaemonLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewEnhancerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewExtractionFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewIntakeFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register circuit breaker configuration
	if err := container.Provide(func(cfg *config.Config) (resilience.BreakerConfig, error) {
		timeout, err := cfg.GetDuration("breaker.open_timeout")
		if err != nil {
			return resilience.BreakerConfig{}, fmt.Errorf("invalid breaker open timeout: %w", err)
		}
		return resilience.BreakerConfig{
			ConsecutiveFailures: uint32(cfg.GetInt("breaker.consecutive_failures")),
			OpenTimeout:         timeout,
		}, nil
	}); err != nil {
		return nil, err
	}

	// Register secondary classifier behind a circuit breaker
	if err := container.Provide(func(
		f *factory.ClassifierFactory,
		breakerCfg resilience.BreakerConfig,
		logger *zap.Logger,
	) (core.SecondaryClassifier, error) {
		classifier, err := f.CreateClassifier()
		if err != nil {
			return nil, err
		}
		return resilience.WrapClassifier(classifier, breakerCfg, logger), nil
	}); err != nil {
		return nil, err
	}

	// Register classification cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.ClassificationCache, error) {
		return f.CreateCache()
	}); err != nil {
		return nil, err
	}

	// Register analytics
	if err := container.Provide(core.NewAnalytics); err != nil {
		return nil, err
	}

	// Register classification engine
	if err := container.Provide(func(
		secondary core.SecondaryClassifier,
		cache core.ClassificationCache,
		analytics *core.Analytics,
		logger *zap.Logger,
		cfg *config.Config,
	) *core.ClassificationEngine {
		engineCfg := cfg.GetEngine()
		return core.NewClassificationEngine(secondary, cache, analytics, logger, core.EngineConfig{
			PatternWeight:     engineCfg.PatternWeight,
			SecondaryWeight:   engineCfg.SecondaryWeight,
			OverrideThreshold: engineCfg.OverrideThreshold,
			FeedbackBatchSize: engineCfg.FeedbackBatchSize,
			AccuracyIncrement: engineCfg.AccuracyIncrement,
			MaxAccuracy:       engineCfg.MaxAccuracy,
		})
	}); err != nil {
		return nil, err
	}

	// Register schedule enhancer behind a circuit breaker
	if err := container.Provide(func(
		f *factory.EnhancerFactory,
		breakerCfg resilience.BreakerConfig,
		logger *zap.Logger,
	) (core.ScheduleEnhancer, error) {
		enhancer, err := f.CreateEnhancer()
		if err != nil {
			return nil, err
		}
		return resilience.WrapEnhancer(enhancer, breakerCfg, logger), nil
	}); err != nil {
		return nil, err
	}

	// Register extraction pipeline
	if err := container.Provide(func(
		f *factory.ExtractionFactory,
		enhancer core.ScheduleEnhancer,
		breakerCfg resilience.BreakerConfig,
	) *core.DocumentExtractionPipeline {
		return f.CreatePipeline(enhancer, breakerCfg)
	}); err != nil {
		return nil, err
	}

	// Register intake analyzer
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *core.IntakeAnalyzer {
		allowedDomains := cfg.GetStringSlice("intake.allowed_domains")
		if len(allowedDomains) > 0 {
			logger.Info("Loaded allowed sender domains", zap.Strings("domains", allowedDomains))
		}
		return core.NewIntakeAnalyzer(allowedDomains)
	}); err != nil {
		return nil, err
	}

	// Register recommendation generator
	if err := container.Provide(core.NewRecommendationGenerator); err != nil {
		return nil, err
	}

	// Register batch coordinator
	if err := container.Provide(func(
		intake *core.IntakeAnalyzer,
		engine *core.ClassificationEngine,
		extraction *core.DocumentExtractionPipeline,
		recommender *core.RecommendationGenerator,
		logger *zap.Logger,
		cfg *config.Config,
	) *core.BatchCoordinator {
		return core.NewBatchCoordinator(intake, engine, extraction, recommender, logger, cfg.GetInt("batch.chunk_size"))
	}); err != nil {
		return nil, err
	}

	// Register maintenance scheduler
	if err := container.Provide(func(
		engine *core.ClassificationEngine,
		cache core.ClassificationCache,
		logger *zap.Logger,
		cfg *config.Config,
	) *schedule.MaintenanceScheduler {
		cleanupSpec := ""
		if cfg.GetBool("cache.enabled") {
			cleanupSpec = "@every " + cfg.GetString("cache.cleanup_frequency")
		}
		return schedule.NewMaintenanceScheduler(
			engine,
			cache,
			logger,
			cfg.GetString("recalibration.schedule"),
			cleanupSpec,
		)
	}); err != nil {
		return nil, err
	}

	// Register email intake
	if err := container.Provide(func(f *factory.IntakeFactory, coordinator *core.BatchCoordinator) (ports.EmailIntake, error) {
		return f.CreateIntake(coordinator)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
