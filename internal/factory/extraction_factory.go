package factory

import (
	"github.com/mikey/callsheet-pipeline/internal/adapters/ocr"
	"github.com/mikey/callsheet-pipeline/internal/adapters/pdf"
	"github.com/mikey/callsheet-pipeline/internal/config"
	"github.com/mikey/callsheet-pipeline/internal/core"
	"github.com/mikey/callsheet-pipeline/internal/resilience"
	"go.uber.org/zap"
)

// ExtractionFactory creates the document extraction pipeline
type ExtractionFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewExtractionFactory creates a new extraction factory
func NewExtractionFactory(cfg *config.Config, logger *zap.Logger) *ExtractionFactory {
	return &ExtractionFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreatePipeline assembles the extraction pipeline: PDF reader, optional
// OCR engine and optional enhancer. The OCR engine is nil when disabled,
// which skips the OCR fallback stage.
func (f *ExtractionFactory) CreatePipeline(enhancer core.ScheduleEnhancer, breakerCfg resilience.BreakerConfig) *core.DocumentExtractionPipeline {
	extractionCfg := f.cfg.GetExtraction()

	reader := pdf.NewFitzReader(f.logger, extractionCfg.RenderDPI)

	var engine core.OCREngine
	if extractionCfg.OCREnabled {
		engine = ocr.NewTesseractEngine(extractionCfg.OCRLanguages, f.logger)
		engine = resilience.WrapOCR(engine, breakerCfg, f.logger)
	}

	return core.NewDocumentExtractionPipeline(
		reader,
		engine,
		enhancer,
		f.logger,
		core.ExtractionConfig{
			MinEmbeddedTextLen: extractionCfg.MinTextLength,
			MaxOCRPages:        extractionCfg.MaxOCRPages,
			MinOCRConfidence:   extractionCfg.MinOCRConfidence,
			EnhanceThreshold:   extractionCfg.EnhanceThreshold,
		},
	)
}
