// Package pdf adapts go-fitz (MuPDF) to the pipeline's DocumentReader
// port: embedded text and metadata for direct extraction, page rendering
// for the OCR fallback.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
	"github.com/mikey/callsheet-pipeline/internal/core"
	"go.uber.org/zap"
)

// FitzReader opens PDF attachment bytes as documents
type FitzReader struct {
	logger *zap.Logger
	dpi    int
}

// NewFitzReader creates a reader. dpi controls the rasterization
// resolution for OCR; 300 is a sane default for printed call sheets.
func NewFitzReader(logger *zap.Logger, dpi int) *FitzReader {
	if dpi <= 0 {
		dpi = 300
	}
	return &FitzReader{logger: logger, dpi: dpi}
}

// Open parses the attachment bytes into a Document
func (r *FitzReader) Open(ctx context.Context, data []byte) (core.Document, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF document: %w", err)
	}

	meta := doc.Metadata()
	return &fitzDocument{
		doc: doc,
		dpi: float64(r.dpi),
		meta: core.DocumentMeta{
			PageCount:    doc.NumPage(),
			Title:        meta["title"],
			Creator:      meta["creator"],
			CreationDate: meta["creationDate"],
		},
	}, nil
}

// fitzDocument wraps an open MuPDF document. It is not goroutine safe;
// the extraction pipeline renders pages sequentially.
type fitzDocument struct {
	doc  *fitz.Document
	dpi  float64
	meta core.DocumentMeta
}

// Meta returns the document metadata
func (d *fitzDocument) Meta() core.DocumentMeta {
	return d.meta
}

// PageText returns the embedded text of page n
func (d *fitzDocument) PageText(n int) (string, error) {
	text, err := d.doc.Text(n)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from page %d: %w", n, err)
	}
	return text, nil
}

// PageImage renders page n to a PNG at the configured resolution
func (d *fitzDocument) PageImage(n int) ([]byte, error) {
	img, err := d.doc.ImageDPI(n, d.dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", n, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode page %d image: %w", n, err)
	}
	return buf.Bytes(), nil
}

// Close releases the underlying document resources
func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
