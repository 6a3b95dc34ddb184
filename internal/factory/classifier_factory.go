package factory

import (
	"fmt"

	"github.com/mikey/callsheet-pipeline/internal/adapters/bedrock"
	"github.com/mikey/callsheet-pipeline/internal/adapters/gemini"
	"github.com/mikey/callsheet-pipeline/internal/adapters/openai"
	"github.com/mikey/callsheet-pipeline/internal/adapters/rules"
	"github.com/mikey/callsheet-pipeline/internal/config"
	"github.com/mikey/callsheet-pipeline/internal/core"
	"github.com/mikey/callsheet-pipeline/internal/utils"
	"go.uber.org/zap"
)

// ClassifierFactory creates secondary classifiers
type ClassifierFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifier creates a new secondary classifier based on the
// configuration. The "none" provider returns nil, which makes the engine
// run pattern-only.
func (f *ClassifierFactory) CreateClassifier() (core.SecondaryClassifier, error) {
	classifierConfig := f.cfg.GetClassifier()

	switch classifierConfig.Provider {
	case "none":
		return nil, nil
	case "rules":
		return rules.NewClassifier(f.logger), nil
	case "bedrock":
		factory := bedrock.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateClassifier()
	case "gemini":
		factory := gemini.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateClassifier()
	case "openai":
		factory := openai.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateClassifier()
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", classifierConfig.Provider)
	}
}
