package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BatchCoordinator drives the intake, classification, extraction and
// recommendation stages over a collection of emails with bounded
// concurrency. A single item's failure never aborts the batch: it becomes
// a result with populated errors and a manual-review recommendation.
type BatchCoordinator struct {
	intake      *IntakeAnalyzer
	engine      *ClassificationEngine
	extraction  *DocumentExtractionPipeline
	recommender *RecommendationGenerator
	logger      *zap.Logger
	chunkSize   int
}

// NewBatchCoordinator creates a batch coordinator. chunkSize bounds the
// number of emails processed concurrently; values below one fall back to
// the default of ten.
func NewBatchCoordinator(
	intake *IntakeAnalyzer,
	engine *ClassificationEngine,
	extraction *DocumentExtractionPipeline,
	recommender *RecommendationGenerator,
	logger *zap.Logger,
	chunkSize int,
) *BatchCoordinator {
	if chunkSize < 1 {
		chunkSize = 10
	}
	return &BatchCoordinator{
		intake:      intake,
		engine:      engine,
		extraction:  extraction,
		recommender: recommender,
		logger:      logger,
		chunkSize:   chunkSize,
	}
}

// ProcessBatch processes emails chunk by chunk. Each chunk's items run
// concurrently and the chunk is awaited before the next one starts.
// Results are collected positionally, so output order always matches
// input order regardless of completion order.
func (b *BatchCoordinator) ProcessBatch(ctx context.Context, emails []EmailContent) []EmailProcessingResult {
	results := make([]EmailProcessingResult, len(emails))

	for start := 0; start < len(emails); start += b.chunkSize {
		end := start + b.chunkSize
		if end > len(emails) {
			end = len(emails)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				results[n] = b.processOne(ctx, emails[n])
			}(i)
		}
		wg.Wait()
	}

	b.logger.Info("Batch processed",
		zap.Int("emails", len(emails)),
		zap.Int("chunk_size", b.chunkSize))

	return results
}

// ProcessEmail runs the full pipeline for a single email
func (b *BatchCoordinator) ProcessEmail(ctx context.Context, email EmailContent) EmailProcessingResult {
	return b.processOne(ctx, email)
}

func (b *BatchCoordinator) processOne(ctx context.Context, email EmailContent) (result EmailProcessingResult) {
	result = EmailProcessingResult{
		MessageID:    email.MessageID,
		ProcessingID: uuid.NewString(),
		ProcessedAt:  time.Now(),
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic while processing email",
				zap.String("message_id", email.MessageID),
				zap.Any("panic", r))
			result.Errors = append(result.Errors, fmt.Sprintf("processing panic: %v", r))
			result.Recommendations = b.recommender.ManualReview()
		}
	}()

	signals := b.intake.Analyze(email)
	classification := b.engine.Classify(ctx, email.MessageID, email, signals)
	result.Classification = &classification

	if shouldExtract(classification, email) {
		extraction, errs := b.extractAttachments(ctx, email)
		result.Extraction = extraction
		result.Errors = append(result.Errors, errs...)
	}

	result.Recommendations = b.recommender.Recommend(classification, result.Extraction)
	if result.Extraction == nil && len(result.Errors) > 0 {
		result.Recommendations = b.recommender.ManualReview()
	}

	return result
}

// shouldExtract gates the extraction stage: only classified production mail
// with document attachments is worth the OCR cost
func shouldExtract(c Classification, email EmailContent) bool {
	if c.Type == TypeSpam || c.Type == TypeUnknown {
		return false
	}
	return len(documentAttachments(email)) > 0
}

// extractAttachments runs the extraction pipeline over the email's document
// attachments and keeps the first usable result. Per-attachment failures
// are collected, not fatal.
func (b *BatchCoordinator) extractAttachments(ctx context.Context, email EmailContent) (*ExtractionResult, []string) {
	var errs []string
	for _, att := range documentAttachments(email) {
		extraction, err := b.extraction.Extract(ctx, att.Data, att.Filename)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", att.Filename, err))
			continue
		}
		return extraction, errs
	}
	return nil, errs
}

func documentAttachments(email EmailContent) []Attachment {
	var docs []Attachment
	for _, att := range email.Attachments {
		ext := strings.ToLower(filepath.Ext(att.Filename))
		if ext == ".pdf" || strings.Contains(strings.ToLower(att.MimeType), "pdf") {
			docs = append(docs, att)
		}
	}
	return docs
}
