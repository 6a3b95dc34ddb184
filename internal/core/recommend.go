package core

// suggestedActions is the fixed action lookup table keyed by message type.
// Unmapped types get no actions.
var suggestedActions = map[MessageType][]string{
	TypeScheduleUpdate: {
		"Parse schedule attachments",
		"Update calendar",
		"Calculate new routes",
	},
	TypeLocationChange: {
		"Update route calculations",
		"Notify all participants",
		"Check equipment logistics",
	},
	TypeCancellation: {
		"Cancel calendar events",
		"Notify cast and crew",
		"Reschedule if applicable",
	},
	TypeWeatherAlert: {
		"Check updated forecast",
		"Assess outdoor scenes",
		"Prepare contingency schedule",
	},
	TypeCastChange: {
		"Update call sheet distribution",
		"Verify replacement availability",
	},
	TypeEquipmentUpdate: {
		"Confirm equipment logistics",
		"Update rental bookings",
	},
}

// manualReviewAction is appended whenever the pipeline is not confident
// enough to act on its own
const manualReviewAction = "Manual review required"

// RecommendationGenerator maps a classification and extraction quality to
// an action plan. Pure function, no I/O.
type RecommendationGenerator struct {
	autoProcessThreshold float64
	lowConfidence        float64
}

// NewRecommendationGenerator creates a generator with the stock thresholds
func NewRecommendationGenerator() *RecommendationGenerator {
	return &RecommendationGenerator{
		autoProcessThreshold: 0.8,
		lowConfidence:        0.5,
	}
}

// Recommend derives the processing decision for a classified email.
// The extraction result may be nil when no attachment was processed.
func (g *RecommendationGenerator) Recommend(c Classification, extraction *ExtractionResult) Recommendations {
	rec := Recommendations{
		AutoProcess:          c.Confidence > g.autoProcessThreshold && !c.RequiresAttention,
		NotificationChannels: []string{"email"},
	}

	switch c.Priority {
	case PriorityUrgent:
		rec.NotificationChannels = []string{"email", "sms", "push"}
		rec.EscalationRequired = true
	case PriorityHigh:
		rec.NotificationChannels = []string{"email", "push"}
	}

	if actions, ok := suggestedActions[c.Type]; ok {
		rec.SuggestedActions = append(rec.SuggestedActions, actions...)
	}
	if c.Confidence < g.lowConfidence || (extraction != nil && extraction.QualityScore < g.lowConfidence) {
		rec.SuggestedActions = append(rec.SuggestedActions, manualReviewAction)
	}

	return rec
}

// ManualReview returns the fallback plan used when an item fails entirely
func (g *RecommendationGenerator) ManualReview() Recommendations {
	return Recommendations{
		NotificationChannels: []string{"email"},
		SuggestedActions:     []string{manualReviewAction},
	}
}
