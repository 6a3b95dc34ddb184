package factory

import (
	"fmt"

	"github.com/mikey/callsheet-pipeline/internal/adapters/anthropic"
	"github.com/mikey/callsheet-pipeline/internal/config"
	"github.com/mikey/callsheet-pipeline/internal/core"
	"github.com/mikey/callsheet-pipeline/internal/utils"
	"go.uber.org/zap"
)

// EnhancerFactory creates schedule enhancers
type EnhancerFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewEnhancerFactory creates a new enhancer factory
func NewEnhancerFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *EnhancerFactory {
	return &EnhancerFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateEnhancer creates a new schedule enhancer based on the
// configuration. The "none" provider returns nil, which makes the
// extraction pipeline skip the enhancement stage.
func (f *EnhancerFactory) CreateEnhancer() (core.ScheduleEnhancer, error) {
	enhancerConfig := f.cfg.GetEnhancer()

	switch enhancerConfig.Provider {
	case "none":
		return nil, nil
	case "anthropic":
		factory := anthropic.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateEnhancer()
	default:
		return nil, fmt.Errorf("unsupported enhancer provider: %s", enhancerConfig.Provider)
	}
}
