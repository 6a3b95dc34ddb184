package core

import (
	"reflect"
	"testing"
)

func TestRecommend_ChannelsByPriority(t *testing.T) {
	gen := NewRecommendationGenerator()

	tests := []struct {
		name         string
		priority     Priority
		wantChannels []string
		wantEscalate bool
	}{
		{"low", PriorityLow, []string{"email"}, false},
		{"medium", PriorityMedium, []string{"email"}, false},
		{"high", PriorityHigh, []string{"email", "push"}, false},
		{"urgent", PriorityUrgent, []string{"email", "sms", "push"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := gen.Recommend(Classification{Type: TypeScheduleUpdate, Priority: tt.priority, Confidence: 0.9}, nil)
			if !reflect.DeepEqual(rec.NotificationChannels, tt.wantChannels) {
				t.Errorf("got channels %v, want %v", rec.NotificationChannels, tt.wantChannels)
			}
			if rec.EscalationRequired != tt.wantEscalate {
				t.Errorf("got escalation %t, want %t", rec.EscalationRequired, tt.wantEscalate)
			}
		})
	}
}

func TestRecommend_AutoProcessGate(t *testing.T) {
	gen := NewRecommendationGenerator()

	confident := gen.Recommend(Classification{Type: TypeScheduleUpdate, Priority: PriorityMedium, Confidence: 0.85}, nil)
	if !confident.AutoProcess {
		t.Errorf("expected auto-process for confident classification")
	}

	borderline := gen.Recommend(Classification{Type: TypeScheduleUpdate, Priority: PriorityMedium, Confidence: 0.8}, nil)
	if borderline.AutoProcess {
		t.Errorf("confidence exactly at threshold must not auto-process")
	}

	attention := gen.Recommend(Classification{Type: TypeCancellation, Priority: PriorityUrgent, Confidence: 0.95, RequiresAttention: true}, nil)
	if attention.AutoProcess {
		t.Errorf("requires-attention classification must not auto-process")
	}
}

func TestRecommend_SuggestedActionsByType(t *testing.T) {
	gen := NewRecommendationGenerator()

	rec := gen.Recommend(Classification{Type: TypeScheduleUpdate, Priority: PriorityMedium, Confidence: 0.9}, nil)
	want := []string{"Parse schedule attachments", "Update calendar", "Calculate new routes"}
	if !reflect.DeepEqual(rec.SuggestedActions, want) {
		t.Errorf("got actions %v, want %v", rec.SuggestedActions, want)
	}

	cancel := gen.Recommend(Classification{Type: TypeCancellation, Priority: PriorityUrgent, Confidence: 0.9}, nil)
	wantCancel := []string{"Cancel calendar events", "Notify cast and crew", "Reschedule if applicable"}
	if !reflect.DeepEqual(cancel.SuggestedActions, wantCancel) {
		t.Errorf("got actions %v, want %v", cancel.SuggestedActions, wantCancel)
	}

	unknown := gen.Recommend(Classification{Type: TypeUnknown, Priority: PriorityLow, Confidence: 0.9}, nil)
	if len(unknown.SuggestedActions) != 0 {
		t.Errorf("got actions %v, want none for unmapped type", unknown.SuggestedActions)
	}
}

func TestRecommend_ManualReviewOnLowConfidence(t *testing.T) {
	gen := NewRecommendationGenerator()

	rec := gen.Recommend(Classification{Type: TypeScheduleUpdate, Priority: PriorityMedium, Confidence: 0.4}, nil)
	if !hasAction(rec, "Manual review required") {
		t.Errorf("expected manual review action for low confidence, got %v", rec.SuggestedActions)
	}
}

func TestRecommend_ManualReviewOnPoorExtraction(t *testing.T) {
	gen := NewRecommendationGenerator()

	extraction := &ExtractionResult{QualityScore: 0.3}
	rec := gen.Recommend(Classification{Type: TypeScheduleUpdate, Priority: PriorityMedium, Confidence: 0.9}, extraction)
	if !hasAction(rec, "Manual review required") {
		t.Errorf("expected manual review action for poor extraction quality, got %v", rec.SuggestedActions)
	}

	clean := gen.Recommend(Classification{Type: TypeScheduleUpdate, Priority: PriorityMedium, Confidence: 0.9}, &ExtractionResult{QualityScore: 0.8})
	if hasAction(clean, "Manual review required") {
		t.Errorf("unexpected manual review action for good extraction, got %v", clean.SuggestedActions)
	}
}

func TestManualReview_Fallback(t *testing.T) {
	gen := NewRecommendationGenerator()

	rec := gen.ManualReview()
	if rec.AutoProcess {
		t.Errorf("fallback must not auto-process")
	}
	if !hasAction(rec, "Manual review required") {
		t.Errorf("expected manual review action, got %v", rec.SuggestedActions)
	}
	if !reflect.DeepEqual(rec.NotificationChannels, []string{"email"}) {
		t.Errorf("got channels %v, want [email]", rec.NotificationChannels)
	}
}

func hasAction(rec Recommendations, action string) bool {
	for _, a := range rec.SuggestedActions {
		if a == action {
			return true
		}
	}
	return false
}
