package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrNoUsableText is returned when neither direct extraction nor OCR
// produced any text for a document
var ErrNoUsableText = errors.New("no usable text extracted from document")

// ExtractionConfig carries the tunable thresholds of the extraction pipeline
type ExtractionConfig struct {
	MinEmbeddedTextLen int
	MaxOCRPages        int
	MinOCRConfidence   float64
	EnhanceThreshold   float64
}

// DefaultExtractionConfig returns the stock extraction configuration
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		MinEmbeddedTextLen: 100,
		MaxOCRPages:        10,
		MinOCRConfidence:   0.5,
		EnhanceThreshold:   0.7,
	}
}

// DocumentExtractionPipeline turns attachment bytes into structured
// schedule fields through a layered strategy: direct text extraction, OCR
// fallback, heuristic field parsing, and optional model-assisted
// enhancement. Stage failures degrade quality rather than erroring; only a
// document with no text at all fails.
type DocumentExtractionPipeline struct {
	reader   DocumentReader
	ocr      OCREngine
	enhancer ScheduleEnhancer
	parser   *FieldParser
	logger   *zap.Logger
	cfg      ExtractionConfig
}

// NewDocumentExtractionPipeline creates an extraction pipeline. The OCR
// engine and the enhancer may each be nil; the corresponding stages are
// then skipped.
func NewDocumentExtractionPipeline(
	reader DocumentReader,
	ocr OCREngine,
	enhancer ScheduleEnhancer,
	logger *zap.Logger,
	cfg ExtractionConfig,
) *DocumentExtractionPipeline {
	return &DocumentExtractionPipeline{
		reader:   reader,
		ocr:      ocr,
		enhancer: enhancer,
		parser:   NewFieldParser(),
		logger:   logger,
		cfg:      cfg,
	}
}

// Extract runs the full extraction pipeline over one attachment
func (p *DocumentExtractionPipeline) Extract(ctx context.Context, data []byte, filename string) (*ExtractionResult, error) {
	doc, err := p.reader.Open(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoUsableText, err)
	}
	defer doc.Close()

	meta := doc.Meta()
	directText := p.directText(doc, meta.PageCount)

	text := directText
	method := MethodText
	usedOCR := false

	if len(strings.TrimSpace(directText)) < p.cfg.MinEmbeddedTextLen && p.ocr != nil {
		ocrText, ocrConfidence := p.runOCR(ctx, doc, meta.PageCount, filename)
		if ocrConfidence > p.cfg.MinOCRConfidence && strings.TrimSpace(ocrText) != "" {
			text = ocrText
			usedOCR = true
			if strings.TrimSpace(directText) != "" {
				method = MethodHybrid
			} else {
				method = MethodOCR
			}
		}
	}

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoUsableText, filename)
	}

	fields, confidence := p.parser.Parse(text, method)

	boost := 0.0
	enhanced := false
	if confidence < p.cfg.EnhanceThreshold && p.enhancer != nil {
		fields, confidence, boost, enhanced = p.enhance(ctx, text, fields, confidence)
	}

	result := &ExtractionResult{
		Fields:          fields,
		Confidence:      clamp01(confidence),
		Method:          method,
		ConfidenceBoost: boost,
	}
	result.QualityScore = p.qualityScore(result, meta, len(text), usedOCR, enhanced)

	p.logger.Debug("Document extracted",
		zap.String("filename", filename),
		zap.String("method", string(method)),
		zap.Float64("confidence", result.Confidence),
		zap.Float64("quality", result.QualityScore))

	return result, nil
}

// directText collects the embedded text of every page
func (p *DocumentExtractionPipeline) directText(doc Document, pageCount int) string {
	var sb strings.Builder
	for i := 0; i < pageCount; i++ {
		pageText, err := doc.PageText(i)
		if err != nil {
			continue
		}
		if strings.TrimSpace(pageText) != "" {
			sb.WriteString(pageText)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// runOCR rasterizes up to MaxOCRPages pages and recognizes them
// concurrently. Pages are rendered sequentially since the underlying
// document handle is not goroutine safe; recognition fans out. A failed
// page contributes empty text and zero confidence without affecting the
// others, and the aggregate text is reassembled in page order.
func (p *DocumentExtractionPipeline) runOCR(ctx context.Context, doc Document, pageCount int, filename string) (string, float64) {
	pages := pageCount
	if pages > p.cfg.MaxOCRPages {
		pages = p.cfg.MaxOCRPages
	}
	if pages <= 0 {
		return "", 0
	}

	images := make([][]byte, pages)
	for i := 0; i < pages; i++ {
		img, err := doc.PageImage(i)
		if err != nil {
			p.logger.Warn("Failed to render page for OCR",
				zap.String("filename", filename),
				zap.Int("page", i),
				zap.Error(err))
			continue
		}
		images[i] = img
	}

	results := make([]OCRPage, pages)
	var wg sync.WaitGroup
	for i := 0; i < pages; i++ {
		if images[i] == nil {
			continue
		}
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			page, err := p.ocr.RecognizePage(ctx, images[n])
			if err != nil {
				p.logger.Warn("OCR failed on page",
					zap.String("filename", filename),
					zap.Int("page", n),
					zap.Error(err))
				return
			}
			results[n] = *page
		}(i)
	}
	wg.Wait()

	var texts []string
	sum := 0.0
	recognized := 0
	for _, page := range results {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		texts = append(texts, page.Text)
		sum += page.Confidence
		recognized++
	}
	if recognized == 0 {
		return "", 0
	}

	return strings.Join(texts, "\f"), sum / float64(recognized) / 100.0
}

// enhance asks the configured enhancer to fill missing fields. Fields
// already populated by parsing are never overwritten, and any enhancer
// failure keeps the pre-enhancement result unchanged.
func (p *DocumentExtractionPipeline) enhance(ctx context.Context, text string, fields ScheduleFields, confidence float64) (ScheduleFields, float64, float64, bool) {
	enhanced, err := p.enhancer.EnhanceSchedule(ctx, text, fields)
	if err != nil {
		p.logger.Warn("Schedule enhancement failed, keeping parsed fields", zap.Error(err))
		return fields, confidence, 0, false
	}

	if fields.ShootingDate == "" {
		fields.ShootingDate = enhanced.ShootingDate
	}
	if fields.CallTime == "" {
		fields.CallTime = enhanced.CallTime
	}
	if fields.Location == "" {
		fields.Location = enhanced.Location
	}

	boost := 0.0
	if enhanced.Confidence > confidence {
		boost = enhanced.Confidence - confidence
		confidence = enhanced.Confidence
	}

	return fields, confidence, boost, true
}

// qualityScore derives the 0..1 quality metric from confidence, extraction
// method and field completeness
func (p *DocumentExtractionPipeline) qualityScore(result *ExtractionResult, meta DocumentMeta, textLen int, usedOCR, enhanced bool) float64 {
	score := result.Confidence * 0.6

	if textLen >= 200 {
		score += 0.1
	}
	if meta.PageCount > 0 && meta.PageCount <= 5 {
		score += 0.05
	}
	if meta.Creator != "" {
		score += 0.05
	}

	if usedOCR {
		score -= 0.05
	} else {
		score += 0.1
	}
	if enhanced {
		score += 0.1
	}
	if result.Fields.Complete() {
		score += 0.1
	}

	return clamp01(score)
}
