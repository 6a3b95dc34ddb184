package anthropic

import (
	"fmt"

	"github.com/mikey/callsheet-pipeline/internal/config"
	"github.com/mikey/callsheet-pipeline/internal/core"
	"github.com/mikey/callsheet-pipeline/internal/utils"
	"go.uber.org/zap"
)

// Factory creates Anthropic enhancers
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new Anthropic factory
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateEnhancer creates a new Anthropic enhancer
func (f *Factory) CreateEnhancer() (core.ScheduleEnhancer, error) {
	anthropicCfg := f.cfg.GetAnthropic()
	if anthropicCfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic enhancer requires an API key")
	}

	return NewAnthropicEnhancer(
		anthropicCfg.APIKey,
		anthropicCfg.ModelName,
		anthropicCfg.MaxTokens,
		anthropicCfg.MaxTextSize,
		f.logger,
		f.textProcessor,
	), nil
}
