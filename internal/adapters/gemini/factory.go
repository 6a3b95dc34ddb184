package gemini

import (
	"github.com/mikey/callsheet-pipeline/internal/config"
	"github.com/mikey/callsheet-pipeline/internal/utils"
	"go.uber.org/zap"
)

// Factory creates Gemini classifiers
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new Gemini factory
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifier creates a new Gemini classifier
func (f *Factory) CreateClassifier() (*GeminiClassifier, error) {
	geminiCfg := f.cfg.GetGemini()

	return NewGeminiClassifier(
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		geminiCfg.MaxBodySize,
		f.logger,
		f.textProcessor,
	)
}
