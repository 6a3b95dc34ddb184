package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mikey/callsheet-pipeline/internal/core"
	"go.uber.org/zap"
)

type flakyClassifier struct {
	err   error
	calls int
}

func (f *flakyClassifier) ClassifyEmail(_ context.Context, _ string, _ core.IntakeSignals) (*core.Classification, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &core.Classification{Type: core.TypeScheduleUpdate, Confidence: 0.8}, nil
}

func TestWrapClassifier_NilPassesThrough(t *testing.T) {
	if got := WrapClassifier(nil, DefaultBreakerConfig(), zap.NewNop()); got != nil {
		t.Errorf("got %v, want nil for nil classifier", got)
	}
}

func TestClassifierBreaker_PassesResults(t *testing.T) {
	inner := &flakyClassifier{}
	wrapped := WrapClassifier(inner, DefaultBreakerConfig(), zap.NewNop())

	c, err := wrapped.ClassifyEmail(context.Background(), "text", core.IntakeSignals{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Type != core.TypeScheduleUpdate {
		t.Errorf("got type %q", c.Type)
	}
}

func TestClassifierBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cfg := BreakerConfig{ConsecutiveFailures: 3, OpenTimeout: time.Minute}
	inner := &flakyClassifier{err: errors.New("provider down")}
	wrapped := WrapClassifier(inner, cfg, zap.NewNop())

	for i := 0; i < 5; i++ {
		if _, err := wrapped.ClassifyEmail(context.Background(), "text", core.IntakeSignals{}); err == nil {
			t.Fatalf("call %d unexpectedly succeeded", i)
		}
	}

	// Once the breaker opens, calls fail fast without reaching the inner
	// classifier
	if inner.calls != 3 {
		t.Errorf("got %d inner calls, want 3 before the breaker opened", inner.calls)
	}
}

func TestEnhancerBreaker_PassesResults(t *testing.T) {
	inner := &stubEnhancer{result: &core.EnhancedFields{CallTime: "06:30", Confidence: 0.8}}
	wrapped := WrapEnhancer(inner, DefaultBreakerConfig(), zap.NewNop())

	got, err := wrapped.EnhanceSchedule(context.Background(), "text", core.ScheduleFields{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CallTime != "06:30" {
		t.Errorf("got call time %q", got.CallTime)
	}
}

type stubEnhancer struct {
	result *core.EnhancedFields
	err    error
}

func (s *stubEnhancer) EnhanceSchedule(_ context.Context, _ string, _ core.ScheduleFields) (*core.EnhancedFields, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestWrapEnhancer_NilPassesThrough(t *testing.T) {
	if got := WrapEnhancer(nil, DefaultBreakerConfig(), zap.NewNop()); got != nil {
		t.Errorf("got %v, want nil for nil enhancer", got)
	}
}
