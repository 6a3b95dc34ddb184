package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
)

type stubCache struct {
	mu      sync.Mutex
	entries map[string]Classification
	sets    int
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]Classification)}
}

func (c *stubCache) Get(_ context.Context, messageID string) (*Classification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[messageID]
	if !ok {
		return nil, false
	}
	return &entry, true
}

func (c *stubCache) Set(_ context.Context, messageID string, classification Classification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[messageID] = classification
	c.sets++
}

func (c *stubCache) Delete(_ context.Context, messageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, messageID)
	return nil
}

func (c *stubCache) Cleanup(_ context.Context) error { return nil }

type stubSecondary struct {
	result *Classification
	err    error
	calls  int
}

func (s *stubSecondary) ClassifyEmail(_ context.Context, _ string, _ IntakeSignals) (*Classification, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func testEngine(secondary SecondaryClassifier, cache ClassificationCache) *ClassificationEngine {
	return NewClassificationEngine(secondary, cache, nil, zap.NewNop(), DefaultEngineConfig())
}

func TestClassify_CacheHitShortCircuits(t *testing.T) {
	cache := newStubCache()
	cached := Classification{Type: TypeScheduleUpdate, Priority: PriorityHigh, Confidence: 0.9}
	cache.Set(context.Background(), "msg-1", cached)

	secondary := &stubSecondary{result: &Classification{Type: TypeSpam, Confidence: 0.95}}
	engine := testEngine(secondary, cache)

	got := engine.Classify(context.Background(), "msg-1", EmailContent{Subject: "spam spam"}, IntakeSignals{})
	if got != cached {
		t.Errorf("got %+v, want cached %+v", got, cached)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary classifier was called %d times on a cache hit", secondary.calls)
	}
}

func TestClassify_SecondaryFailureDegradesToPatternResult(t *testing.T) {
	cache := newStubCache()
	secondary := &stubSecondary{err: errors.New("provider down")}
	engine := testEngine(secondary, cache)

	got := engine.Classify(context.Background(), "msg-2", EmailContent{Subject: "Updated call sheet"}, IntakeSignals{})
	if got.Type != TypeScheduleUpdate {
		t.Errorf("got type %q, want %q from pattern fallback", got.Type, TypeScheduleUpdate)
	}
	if secondary.calls != 1 {
		t.Errorf("secondary classifier called %d times, want 1", secondary.calls)
	}
	// Degraded results are still cached
	if _, ok := cache.Get(context.Background(), "msg-2"); !ok {
		t.Errorf("expected degraded result to be cached")
	}
}

func TestClassify_NilSecondaryIsPatternOnly(t *testing.T) {
	engine := testEngine(nil, newStubCache())

	got := engine.Classify(context.Background(), "msg-3", EmailContent{Subject: "Updated call sheet"}, IntakeSignals{})
	if got.Type != TypeScheduleUpdate {
		t.Errorf("got type %q, want %q", got.Type, TypeScheduleUpdate)
	}
}

func TestFuse_WeightedConfidence(t *testing.T) {
	engine := testEngine(nil, newStubCache())

	fused := engine.fuse(
		Classification{Type: TypeScheduleUpdate, Priority: PriorityMedium, Confidence: 0.7, UrgencyLevel: 3},
		Classification{Type: TypeScheduleUpdate, Priority: PriorityHigh, Confidence: 0.6, UrgencyLevel: 5},
	)

	want := 0.4*0.7 + 0.6*0.6
	if diff := fused.Confidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("got confidence %v, want %v", fused.Confidence, want)
	}
	if fused.Priority != PriorityHigh {
		t.Errorf("got priority %q, want the higher %q", fused.Priority, PriorityHigh)
	}
	if fused.UrgencyLevel != 5 {
		t.Errorf("got urgency level %d, want max 5", fused.UrgencyLevel)
	}
}

func TestFuse_ConfidenceCap(t *testing.T) {
	engine := testEngine(nil, newStubCache())

	fused := engine.fuse(
		Classification{Type: TypeCancellation, Confidence: 1.0},
		Classification{Type: TypeCancellation, Confidence: 1.0},
	)
	if fused.Confidence != 0.99 {
		t.Errorf("got confidence %v, want capped 0.99", fused.Confidence)
	}
}

func TestFuse_SecondaryTypeOverride(t *testing.T) {
	engine := testEngine(nil, newStubCache())

	// Below the override threshold the pattern type stands
	kept := engine.fuse(
		Classification{Type: TypeGeneralProduction, Confidence: 0.6},
		Classification{Type: TypeCancellation, Confidence: 0.8},
	)
	if kept.Type != TypeGeneralProduction {
		t.Errorf("got type %q, want pattern type %q at threshold", kept.Type, TypeGeneralProduction)
	}

	// Above it the secondary wins
	overridden := engine.fuse(
		Classification{Type: TypeGeneralProduction, Confidence: 0.6},
		Classification{Type: TypeCancellation, Confidence: 0.81},
	)
	if overridden.Type != TypeCancellation {
		t.Errorf("got type %q, want secondary type %q above threshold", overridden.Type, TypeCancellation)
	}
}

func TestFuse_InvalidSecondaryType(t *testing.T) {
	engine := testEngine(nil, newStubCache())

	fused := engine.fuse(
		Classification{Type: TypeScheduleUpdate, Confidence: 0.7},
		Classification{Type: MessageType("nonsense"), Confidence: 0.95},
	)
	// Invalid secondary types are demoted to unknown, which can still win
	// the override but is reported as unknown
	if fused.Type != TypeUnknown {
		t.Errorf("got type %q, want %q", fused.Type, TypeUnknown)
	}
}

func TestProvideFeedback_ReplacesCachedClassification(t *testing.T) {
	cache := newStubCache()
	engine := testEngine(nil, cache)

	engine.Classify(context.Background(), "msg-4", EmailContent{Subject: "production note"}, IntakeSignals{})

	corrected := Classification{Type: TypeScheduleUpdate, Priority: PriorityHigh, Confidence: 0.95}
	engine.ProvideFeedback(context.Background(), "msg-4", corrected, FeedbackIncorrect)

	got, ok := cache.Get(context.Background(), "msg-4")
	if !ok {
		t.Fatalf("expected corrected classification in cache")
	}
	if *got != corrected {
		t.Errorf("got %+v, want %+v", *got, corrected)
	}
	if engine.FeedbackCount() != 1 {
		t.Errorf("got feedback count %d, want 1", engine.FeedbackCount())
	}
}

func TestProvideFeedback_TriggersRecalibrationAtBatchSize(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.FeedbackBatchSize = 5
	engine := NewClassificationEngine(nil, newStubCache(), nil, zap.NewNop(), cfg)

	before := engine.ModelState()

	for i := 0; i < cfg.FeedbackBatchSize; i++ {
		engine.ProvideFeedback(context.Background(), "msg", Classification{Type: TypeScheduleUpdate}, FeedbackCorrect)
	}

	after := engine.ModelState()
	wantAccuracy := before.Accuracy + cfg.AccuracyIncrement
	if diff := after.Accuracy - wantAccuracy; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("got accuracy %v, want %v", after.Accuracy, wantAccuracy)
	}
	if after.LastTrainingTime.IsZero() {
		t.Errorf("expected last training time to be set")
	}
	if engine.FeedbackCount() != 0 {
		t.Errorf("got feedback count %d, want 0 after recalibration", engine.FeedbackCount())
	}
}

func TestRecalibrate_EmptyBufferIsNoOp(t *testing.T) {
	engine := testEngine(nil, newStubCache())

	before := engine.ModelState()
	engine.Recalibrate(context.Background())
	after := engine.ModelState()

	if after.Accuracy != before.Accuracy {
		t.Errorf("accuracy changed from %v to %v on empty recalibration", before.Accuracy, after.Accuracy)
	}
	if !after.LastTrainingTime.IsZero() {
		t.Errorf("expected last training time to stay zero")
	}
}

func TestRecalibrate_AccuracyCapped(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.FeedbackBatchSize = 1
	engine := NewClassificationEngine(nil, newStubCache(), nil, zap.NewNop(), cfg)

	// Each feedback entry triggers an immediate recalibration
	for i := 0; i < 20; i++ {
		engine.ProvideFeedback(context.Background(), "msg", Classification{Type: TypeScheduleUpdate}, FeedbackCorrect)
	}

	state := engine.ModelState()
	if state.Accuracy > cfg.MaxAccuracy {
		t.Errorf("got accuracy %v, want at most %v", state.Accuracy, cfg.MaxAccuracy)
	}
	if diff := state.Accuracy - cfg.MaxAccuracy; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("got accuracy %v, want capped at %v", state.Accuracy, cfg.MaxAccuracy)
	}
}

func TestClassify_RecordsAnalytics(t *testing.T) {
	analytics := NewAnalytics()
	engine := NewClassificationEngine(nil, newStubCache(), analytics, zap.NewNop(), DefaultEngineConfig())

	engine.Classify(context.Background(), "msg-5", EmailContent{Subject: "Updated call sheet"}, IntakeSignals{})
	engine.Classify(context.Background(), "msg-6", EmailContent{Subject: "Shoot cancelled"}, IntakeSignals{})

	snapshot := analytics.Snapshot()
	if snapshot.TotalProcessed != 2 {
		t.Errorf("got total %d, want 2", snapshot.TotalProcessed)
	}
	if snapshot.Cancellations != 1 {
		t.Errorf("got cancellations %d, want 1", snapshot.Cancellations)
	}
}
