// Package ocr adapts gosseract (Tesseract) to the pipeline's OCREngine
// port.
package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikey/callsheet-pipeline/internal/core"
	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// TesseractEngine recognizes text in rendered page images. A fresh
// gosseract client is created per page since clients are not goroutine
// safe and the pipeline recognizes pages concurrently.
type TesseractEngine struct {
	languages []string
	logger    *zap.Logger
}

// NewTesseractEngine creates an engine. languages follows Tesseract's
// convention, e.g. "eng+pol".
func NewTesseractEngine(languages string, logger *zap.Logger) *TesseractEngine {
	langs := strings.Split(languages, "+")
	if len(langs) == 0 || langs[0] == "" {
		langs = []string{"eng"}
	}
	return &TesseractEngine{
		languages: langs,
		logger:    logger,
	}
}

// RecognizePage runs OCR over one page image and reports the text with
// Tesseract's mean confidence on its native 0-100 scale
func (e *TesseractEngine) RecognizePage(ctx context.Context, image []byte) (*core.OCRPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		return nil, fmt.Errorf("failed to set OCR languages: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("failed to load page image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("failed to recognize page: %w", err)
	}

	confidence := meanWordConfidence(client)

	e.logger.Debug("Page recognized",
		zap.Int("text_length", len(text)),
		zap.Float64("confidence", confidence))

	return &core.OCRPage{
		Text:       text,
		Confidence: confidence,
	}, nil
}

// meanWordConfidence averages the per-word confidences Tesseract reports.
// An empty page yields zero.
func meanWordConfidence(client *gosseract.Client) float64 {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}

	sum := 0.0
	for _, box := range boxes {
		sum += box.Confidence
	}
	return sum / float64(len(boxes))
}
