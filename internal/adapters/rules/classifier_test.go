package rules

import (
	"context"
	"testing"

	"github.com/mikey/callsheet-pipeline/internal/core"
	"go.uber.org/zap"
)

func TestClassifyEmail_StrongScheduleSignals(t *testing.T) {
	classifier := NewClassifier(zap.NewNop())

	signals := core.IntakeSignals{
		SubjectKeywordCount:      3,
		ContainsScheduleKeywords: true,
		ContentFlags: core.ContentFlags{
			HasTimeReferences:     true,
			HasLocationReferences: true,
		},
		SenderTrust: core.SenderTrust{TrustScore: 1.0, Reputation: core.ReputationHigh},
		Attachments: core.AttachmentProfile{Total: 1, PDFCount: 1},
	}

	c, err := classifier.ClassifyEmail(context.Background(), "see attached", signals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Type != core.TypeScheduleUpdate {
		t.Errorf("got type %q, want %q", c.Type, core.TypeScheduleUpdate)
	}
	if c.Confidence < 0.6 {
		t.Errorf("got confidence %v, want at least 0.6", c.Confidence)
	}
}

func TestClassifyEmail_SuspiciousAttachmentsScoreAsSpam(t *testing.T) {
	classifier := NewClassifier(zap.NewNop())

	signals := core.IntakeSignals{
		SenderTrust: core.SenderTrust{Reputation: core.ReputationUnknown},
		Attachments: core.AttachmentProfile{Total: 1, SuspiciousCount: 1},
	}

	c, err := classifier.ClassifyEmail(context.Background(), "open the attachment", signals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Type != core.TypeSpam {
		t.Errorf("got type %q, want %q", c.Type, core.TypeSpam)
	}
}

func TestClassifyEmail_WeakSignalsStayUnknown(t *testing.T) {
	classifier := NewClassifier(zap.NewNop())

	signals := core.IntakeSignals{
		TextQuality: 0.9,
		SenderTrust: core.SenderTrust{TrustScore: 0.3, Reputation: core.ReputationLow},
	}

	c, err := classifier.ClassifyEmail(context.Background(), "hello there", signals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Type != core.TypeUnknown {
		t.Errorf("got type %q, want %q", c.Type, core.TypeUnknown)
	}
}

func TestClassifyEmail_TrustedSenderNextDayEscalatesToUrgent(t *testing.T) {
	classifier := NewClassifier(zap.NewNop())

	signals := core.IntakeSignals{
		SubjectKeywordCount:      2,
		ContainsScheduleKeywords: true,
		UrgencyIndicators:        []string{"urgent"},
		SenderTrust:              core.SenderTrust{TrustScore: 1.0, Reputation: core.ReputationHigh},
		Attachments:              core.AttachmentProfile{Total: 1, PDFCount: 1},
	}

	c, err := classifier.ClassifyEmail(context.Background(),
		"URGENT: Call sheet changed for tomorrow", signals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Priority != core.PriorityUrgent {
		t.Errorf("got priority %q, want %q", c.Priority, core.PriorityUrgent)
	}
	if c.UrgencyLevel < 9 {
		t.Errorf("got urgency level %d, want at least 9", c.UrgencyLevel)
	}
	if !c.RequiresAttention {
		t.Errorf("expected attention flag for a trusted next-day urgency call")
	}
}

func TestClassifyEmail_UntrustedSenderDoesNotEscalate(t *testing.T) {
	classifier := NewClassifier(zap.NewNop())

	signals := core.IntakeSignals{
		UrgencyIndicators: []string{"urgent"},
		SenderTrust:       core.SenderTrust{TrustScore: 0.3, Reputation: core.ReputationLow},
	}

	c, err := classifier.ClassifyEmail(context.Background(),
		"URGENT: Call sheet changed for tomorrow", signals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 0.25 + 0.2, no escalation below the trust floor
	if c.Priority != core.PriorityMedium {
		t.Errorf("got priority %q, want %q", c.Priority, core.PriorityMedium)
	}
	if c.UrgencyLevel != 5 {
		t.Errorf("got urgency level %d, want 5", c.UrgencyLevel)
	}
}

func TestClassifyEmail_UrgencyFromIndicators(t *testing.T) {
	classifier := NewClassifier(zap.NewNop())

	signals := core.IntakeSignals{
		UrgencyIndicators: []string{"urgent", "asap", "pilne"},
	}

	c, err := classifier.ClassifyEmail(context.Background(), "shoot moved to today", signals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 3 indicators (0.75) + same-day reference (0.3), clamped to 1
	if c.UrgencyLevel != 10 {
		t.Errorf("got urgency level %d, want 10", c.UrgencyLevel)
	}
	if c.Priority != core.PriorityUrgent {
		t.Errorf("got priority %q, want %q", c.Priority, core.PriorityUrgent)
	}
	if !c.RequiresAttention {
		t.Errorf("expected attention flag at level 10")
	}
}
