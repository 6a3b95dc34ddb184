// Package resilience wraps the pipeline's external calls in circuit
// breakers so a misbehaving provider degrades results instead of stalling
// every message in a batch.
package resilience

import (
	"context"
	"time"

	"github.com/mikey/callsheet-pipeline/internal/core"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig carries the shared circuit breaker settings
type BreakerConfig struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// DefaultBreakerConfig returns the stock breaker settings
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		ConsecutiveFailures: 5,
		OpenTimeout:         60 * time.Second,
	}
}

func newBreaker(name string, cfg BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// ClassifierBreaker guards a SecondaryClassifier. While the breaker is
// open, ClassifyEmail fails fast and the engine falls back to the
// pattern-only result.
type ClassifierBreaker struct {
	inner   core.SecondaryClassifier
	breaker *gobreaker.CircuitBreaker
}

// WrapClassifier wraps a classifier in a circuit breaker. A nil classifier
// passes through unchanged.
func WrapClassifier(inner core.SecondaryClassifier, cfg BreakerConfig, logger *zap.Logger) core.SecondaryClassifier {
	if inner == nil {
		return nil
	}
	return &ClassifierBreaker{
		inner:   inner,
		breaker: newBreaker("secondary-classifier", cfg, logger),
	}
}

// ClassifyEmail delegates through the breaker
func (b *ClassifierBreaker) ClassifyEmail(ctx context.Context, text string, signals core.IntakeSignals) (*core.Classification, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.ClassifyEmail(ctx, text, signals)
	})
	if err != nil {
		return nil, err
	}
	return result.(*core.Classification), nil
}

// EnhancerBreaker guards a ScheduleEnhancer. While the breaker is open,
// extraction keeps its pre-enhancement result.
type EnhancerBreaker struct {
	inner   core.ScheduleEnhancer
	breaker *gobreaker.CircuitBreaker
}

// WrapEnhancer wraps an enhancer in a circuit breaker. A nil enhancer
// passes through unchanged.
func WrapEnhancer(inner core.ScheduleEnhancer, cfg BreakerConfig, logger *zap.Logger) core.ScheduleEnhancer {
	if inner == nil {
		return nil
	}
	return &EnhancerBreaker{
		inner:   inner,
		breaker: newBreaker("schedule-enhancer", cfg, logger),
	}
}

// EnhanceSchedule delegates through the breaker
func (b *EnhancerBreaker) EnhanceSchedule(ctx context.Context, text string, fields core.ScheduleFields) (*core.EnhancedFields, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.EnhanceSchedule(ctx, text, fields)
	})
	if err != nil {
		return nil, err
	}
	return result.(*core.EnhancedFields), nil
}

// OCRBreaker guards an OCREngine. While the breaker is open, pages
// contribute empty text and the direct-extraction text is used as is.
type OCRBreaker struct {
	inner   core.OCREngine
	breaker *gobreaker.CircuitBreaker
}

// WrapOCR wraps an OCR engine in a circuit breaker. A nil engine passes
// through unchanged.
func WrapOCR(inner core.OCREngine, cfg BreakerConfig, logger *zap.Logger) core.OCREngine {
	if inner == nil {
		return nil
	}
	return &OCRBreaker{
		inner:   inner,
		breaker: newBreaker("ocr-engine", cfg, logger),
	}
}

// RecognizePage delegates through the breaker
func (b *OCRBreaker) RecognizePage(ctx context.Context, image []byte) (*core.OCRPage, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.RecognizePage(ctx, image)
	})
	if err != nil {
		return nil, err
	}
	return result.(*core.OCRPage), nil
}
