package core

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EngineConfig carries the tunable fusion constants. The weights and the
// override threshold are configuration, not business rules.
type EngineConfig struct {
	PatternWeight     float64
	SecondaryWeight   float64
	OverrideThreshold float64
	FeedbackBatchSize int
	AccuracyIncrement float64
	MaxAccuracy       float64
}

// DefaultEngineConfig returns the stock fusion configuration
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		PatternWeight:     0.4,
		SecondaryWeight:   0.6,
		OverrideThreshold: 0.8,
		FeedbackBatchSize: 100,
		AccuracyIncrement: 0.01,
		MaxAccuracy:       0.98,
	}
}

// ClassificationEngine fuses the deterministic pattern classifier with a
// pluggable secondary classifier into one confidence-scored classification,
// memoized per message id
type ClassificationEngine struct {
	patterns  *PatternClassifier
	secondary SecondaryClassifier
	cache     ClassificationCache
	analytics *Analytics
	logger    *zap.Logger
	cfg       EngineConfig

	mu       sync.Mutex
	feedback []FeedbackEntry
	model    ModelState
}

// NewClassificationEngine creates a classification engine. The secondary
// classifier may be nil, in which case classification is pattern-only.
func NewClassificationEngine(
	secondary SecondaryClassifier,
	cache ClassificationCache,
	analytics *Analytics,
	logger *zap.Logger,
	cfg EngineConfig,
) *ClassificationEngine {
	return &ClassificationEngine{
		patterns:  NewPatternClassifier(),
		secondary: secondary,
		cache:     cache,
		analytics: analytics,
		logger:    logger,
		cfg:       cfg,
		model: ModelState{
			Name:     "production-email-classifier",
			Version:  "1.0",
			Accuracy: 0.85,
		},
	}
}

// Classify produces the fused classification for an email. A cache hit
// short-circuits both classifiers. Secondary classifier failures degrade
// to the pattern-only result and are never surfaced as errors.
func (e *ClassificationEngine) Classify(ctx context.Context, messageID string, email EmailContent, signals IntakeSignals) Classification {
	if cached, ok := e.cache.Get(ctx, messageID); ok {
		e.logger.Debug("Classification cache hit", zap.String("message_id", messageID))
		return *cached
	}

	text := email.Subject + "\n" + email.Body
	pattern := e.patterns.Classify(text)

	final := pattern
	if e.secondary != nil {
		secondary, err := e.secondary.ClassifyEmail(ctx, text, signals)
		if err != nil {
			e.logger.Warn("Secondary classifier unavailable, using pattern result",
				zap.String("message_id", messageID),
				zap.Error(err))
		} else {
			final = e.fuse(pattern, *secondary)
		}
	}

	e.cache.Set(ctx, messageID, final)
	if e.analytics != nil {
		e.analytics.Record(final)
	}

	e.logger.Debug("Email classified",
		zap.String("message_id", messageID),
		zap.String("type", string(final.Type)),
		zap.String("priority", string(final.Priority)),
		zap.Float64("confidence", final.Confidence))

	return final
}

// fuse combines the two classifier outputs using the configured weights
func (e *ClassificationEngine) fuse(pattern, secondary Classification) Classification {
	if !secondary.Type.IsValid() {
		secondary.Type = TypeUnknown
	}
	secondary.Confidence = clamp01(secondary.Confidence)

	combined := e.cfg.PatternWeight*pattern.Confidence + e.cfg.SecondaryWeight*secondary.Confidence
	if combined > 0.99 {
		combined = 0.99
	}

	finalType := pattern.Type
	if secondary.Confidence > e.cfg.OverrideThreshold {
		finalType = secondary.Type
	}

	level := pattern.UrgencyLevel
	if secondary.UrgencyLevel > level {
		level = secondary.UrgencyLevel
	}

	return Classification{
		Type:              finalType,
		Priority:          HigherPriority(pattern.Priority, secondary.Priority),
		Confidence:        combined,
		UrgencyLevel:      level,
		RequiresAttention: pattern.RequiresAttention || secondary.RequiresAttention,
	}
}

// ProvideFeedback records an operator correction. The corrected
// classification replaces the cached entry for that message, and every
// FeedbackBatchSize entries the model is recalibrated and the buffer
// cleared.
func (e *ClassificationEngine) ProvideFeedback(ctx context.Context, messageID string, corrected Classification, verdict FeedbackVerdict) {
	e.cache.Set(ctx, messageID, corrected)

	e.mu.Lock()
	e.feedback = append(e.feedback, FeedbackEntry{
		MessageID:  messageID,
		Corrected:  corrected,
		Verdict:    verdict,
		ReceivedAt: time.Now(),
	})
	pending := len(e.feedback) >= e.cfg.FeedbackBatchSize
	e.mu.Unlock()

	if pending {
		e.Recalibrate(ctx)
	}
}

// Recalibrate consumes the accumulated feedback buffer and bumps the model
// accuracy. It is also invoked by the host scheduler; with an empty buffer
// it is a no-op. The engine mutex is only held to swap the buffer, so
// classification of new messages is never blocked.
func (e *ClassificationEngine) Recalibrate(ctx context.Context) {
	e.mu.Lock()
	if len(e.feedback) == 0 {
		e.mu.Unlock()
		return
	}
	batch := e.feedback
	e.feedback = nil

	e.model.Accuracy += e.cfg.AccuracyIncrement
	if e.model.Accuracy > e.cfg.MaxAccuracy {
		e.model.Accuracy = e.cfg.MaxAccuracy
	}
	e.model.LastTrainingTime = time.Now()
	accuracy := e.model.Accuracy
	e.mu.Unlock()

	e.logger.Info("Model recalibrated",
		zap.Int("feedback_entries", len(batch)),
		zap.Float64("accuracy", accuracy))
}

// FeedbackCount returns the number of buffered feedback entries
func (e *ClassificationEngine) FeedbackCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.feedback)
}

// ModelState returns a copy of the current model calibration state
func (e *ClassificationEngine) ModelState() ModelState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
