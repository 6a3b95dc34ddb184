package openai

import (
	"testing"

	"github.com/mikey/callsheet-pipeline/internal/core"
)

func TestParseClassificationJSON_CleanResponse(t *testing.T) {
	response, err := ParseClassificationJSON(`{"type":"schedule_update","priority":"high","confidence":0.85,"urgency_level":6,"requires_attention":false}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.Type != "schedule_update" {
		t.Errorf("got type %q", response.Type)
	}
	if response.Confidence != 0.85 {
		t.Errorf("got confidence %v", response.Confidence)
	}
	if response.UrgencyLevel != 6 {
		t.Errorf("got urgency level %d", response.UrgencyLevel)
	}
}

func TestParseClassificationJSON_EmbeddedInProse(t *testing.T) {
	text := "Here is my analysis:\n```json\n{\"type\":\"cancellation\",\"priority\":\"urgent\",\"confidence\":0.9,\"urgency_level\":9,\"requires_attention\":true}\n```\nLet me know if you need more."
	response, err := ParseClassificationJSON(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.Type != "cancellation" {
		t.Errorf("got type %q", response.Type)
	}
	if !response.RequiresAttention {
		t.Errorf("expected requires_attention to be parsed")
	}
}

func TestParseClassificationJSON_NoJSON(t *testing.T) {
	if _, err := ParseClassificationJSON("I cannot classify this email."); err == nil {
		t.Errorf("expected an error for a response without JSON")
	}
}

func TestToClassification_ClampsAndValidates(t *testing.T) {
	response := &ClassificationResponse{
		Type:         "made_up_type",
		Priority:     "extreme",
		Confidence:   1.7,
		UrgencyLevel: 42,
	}
	c := response.ToClassification()

	if c.Type != core.TypeUnknown {
		t.Errorf("got type %q, want %q for invalid input", c.Type, core.TypeUnknown)
	}
	if c.Priority != core.PriorityMedium {
		t.Errorf("got priority %q, want default %q", c.Priority, core.PriorityMedium)
	}
	if c.Confidence != 1 {
		t.Errorf("got confidence %v, want clamped 1", c.Confidence)
	}
	if c.UrgencyLevel != 10 {
		t.Errorf("got urgency level %d, want clamped 10", c.UrgencyLevel)
	}
}

func TestToClassification_NegativeValues(t *testing.T) {
	response := &ClassificationResponse{
		Type:         "spam",
		Priority:     "low",
		Confidence:   -0.2,
		UrgencyLevel: -3,
	}
	c := response.ToClassification()

	if c.Confidence != 0 {
		t.Errorf("got confidence %v, want clamped 0", c.Confidence)
	}
	if c.UrgencyLevel != 1 {
		t.Errorf("got urgency level %d, want floor 1", c.UrgencyLevel)
	}
	if c.Type != core.TypeSpam {
		t.Errorf("got type %q, want %q", c.Type, core.TypeSpam)
	}
}
