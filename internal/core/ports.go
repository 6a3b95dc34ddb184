package core

import (
	"context"
)

// SecondaryClassifier is the pluggable second scoring source fused with the
// pattern classifier. Implementations may be a second rule set, a remote
// model call, or a stub; the only contract is a confidence in [0,1] within
// bounded latency.
type SecondaryClassifier interface {
	// ClassifyEmail scores the combined subject+body text of an email
	ClassifyEmail(ctx context.Context, text string, signals IntakeSignals) (*Classification, error)
}

// EnhancedFields is what a schedule enhancer reports back. Empty strings
// mean the enhancer could not supply that field.
type EnhancedFields struct {
	ShootingDate string
	CallTime     string
	Location     string
	Confidence   float64
}

// ScheduleEnhancer fills missing schedule fields from the full extracted
// text when heuristic parsing came back with low confidence
type ScheduleEnhancer interface {
	EnhanceSchedule(ctx context.Context, text string, fields ScheduleFields) (*EnhancedFields, error)
}

// DocumentMeta is the document metadata collected during direct extraction
type DocumentMeta struct {
	PageCount    int
	Title        string
	Creator      string
	CreationDate string
}

// Document is an opened attachment ready for text extraction and
// rasterization. Callers must Close it when done.
type Document interface {
	// Meta returns the document metadata
	Meta() DocumentMeta

	// PageText returns the embedded text of page n (0-based)
	PageText(n int) (string, error)

	// PageImage renders page n to an image suitable for OCR
	PageImage(n int) ([]byte, error)

	// Close releases the underlying document resources
	Close() error
}

// DocumentReader opens attachment bytes as a Document
type DocumentReader interface {
	Open(ctx context.Context, data []byte) (Document, error)
}

// OCRPage is the recognized text of a single page with the engine's
// confidence on a 0-100 scale
type OCRPage struct {
	Text       string
	Confidence float64
}

// OCREngine recognizes text in a rendered page image
type OCREngine interface {
	RecognizePage(ctx context.Context, image []byte) (*OCRPage, error)
}

// ClassificationCache memoizes classifications by message id. Entries are
// replaced atomically, never partially mutated.
type ClassificationCache interface {
	// Get retrieves a cached classification for a message
	Get(ctx context.Context, messageID string) (*Classification, bool)

	// Set stores a classification for a message
	Set(ctx context.Context, messageID string, c Classification)

	// Delete removes a cache entry
	Delete(ctx context.Context, messageID string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
