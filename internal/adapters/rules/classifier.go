// Package rules provides the default in-process secondary classifier. It
// scores intake signals instead of calling a remote model, so the pipeline
// works out of the box with no API keys.
package rules

import (
	"context"
	"math"
	"regexp"

	"github.com/mikey/callsheet-pipeline/internal/core"
	"go.uber.org/zap"
)

var (
	sameDayPattern = regexp.MustCompile(`(?i)\b(?:today|now|immediately?|dzisiaj|teraz)\b`)
	nextDayPattern = regexp.MustCompile(`(?i)\b(?:tomorrow|jutro)\b`)
)

// Urgency terms alone rarely clear the urgent threshold; a dated urgency
// call from a trusted sender does not wait for a second signal.
const (
	trustedSenderFloor = 0.5
	escalatedUrgency   = 0.85
)

// Classifier is a signal-weighted secondary classifier
type Classifier struct {
	logger *zap.Logger
}

// NewClassifier creates the default rule-based classifier
func NewClassifier(logger *zap.Logger) *Classifier {
	return &Classifier{logger: logger}
}

// ClassifyEmail scores an email from its intake signals. Unlike the
// pattern classifier it never looks at individual phrases; it weighs the
// aggregate signal profile, which makes it a genuinely independent second
// opinion for the fusion step.
func (c *Classifier) ClassifyEmail(ctx context.Context, text string, signals core.IntakeSignals) (*core.Classification, error) {
	schedule := 0.0
	if signals.ContainsScheduleKeywords {
		schedule += 0.3 + 0.05*math.Min(float64(signals.SubjectKeywordCount), 4)
	}
	if signals.ContentFlags.HasTimeReferences {
		schedule += 0.15
	}
	if signals.ContentFlags.HasLocationReferences {
		schedule += 0.1
	}
	if signals.Attachments.PDFCount > 0 {
		schedule += 0.15
	}
	schedule += 0.2 * signals.SenderTrust.TrustScore

	spam := 0.0
	if signals.Attachments.SuspiciousCount > 0 {
		spam += 0.5
	}
	if signals.SenderTrust.Reputation == core.ReputationUnknown {
		spam += 0.25
	}
	if !signals.ContainsScheduleKeywords && signals.TextQuality < 0.2 {
		spam += 0.15
	}

	msgType := core.TypeUnknown
	confidence := 0.3
	switch {
	case spam > 0.5 && spam > schedule:
		msgType = core.TypeSpam
		confidence = clamp(spam)
	case schedule >= 0.6:
		msgType = core.TypeScheduleUpdate
		confidence = clamp(schedule)
	case schedule >= 0.4:
		msgType = core.TypeGeneralProduction
		confidence = clamp(schedule)
	}

	urgency := 0.25 * float64(len(signals.UrgencyIndicators))
	sameDay := sameDayPattern.MatchString(text)
	nextDay := nextDayPattern.MatchString(text)
	if sameDay {
		urgency += 0.3
	}
	if nextDay {
		urgency += 0.2
	}
	if len(signals.UrgencyIndicators) > 0 && (sameDay || nextDay) &&
		signals.SenderTrust.TrustScore >= trustedSenderFloor && urgency < escalatedUrgency {
		urgency = escalatedUrgency
	}
	urgency = clamp(urgency)

	level := int(math.Ceil(urgency * 10))
	if level < 1 {
		level = 1
	}

	priority := core.PriorityMedium
	switch {
	case urgency > 0.8:
		priority = core.PriorityUrgent
	case urgency > 0.6:
		priority = core.PriorityHigh
	case urgency < 0.3:
		priority = core.PriorityLow
	}

	return &core.Classification{
		Type:              msgType,
		Priority:          priority,
		Confidence:        confidence,
		UrgencyLevel:      level,
		RequiresAttention: level >= 7,
	}, nil
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
