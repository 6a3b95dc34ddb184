package core

import (
	"math"
	"regexp"
)

// classificationRule binds a message type to its pattern family. Rules are
// evaluated once, in declaration order; the first type with at least one
// hit wins.
type classificationRule struct {
	Type     MessageType
	Patterns []*regexp.Regexp
}

var classificationRules = []classificationRule{
	{
		Type: TypeCancellation,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bcancel(?:led|ed|lation)?\b`),
			regexp.MustCompile(`(?i)\bcalled off\b`),
			regexp.MustCompile(`(?i)\bodwo[łl]an[eyoa]\b`),
			regexp.MustCompile(`(?i)\bnot (?:happening|proceeding)\b`),
		},
	},
	{
		Type: TypeScheduleUpdate,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bcall ?sheet\b`),
			regexp.MustCompile(`(?i)\bschedule (?:change|update|revised|updated)\b`),
			regexp.MustCompile(`(?i)\bshooting schedule\b`),
			regexp.MustCompile(`(?i)\bcall time\b`),
			regexp.MustCompile(`(?i)\bharmonogram\b`),
			regexp.MustCompile(`(?i)\bplan zdj[ęe][ćc]\b`),
		},
	},
	{
		Type: TypeLocationChange,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:new|changed|moved) location\b`),
			regexp.MustCompile(`(?i)\blocation (?:change|changed|moved|update)\b`),
			regexp.MustCompile(`(?i)\bzmiana lokalizacji\b`),
			regexp.MustCompile(`(?i)\brelocat(?:ed|ion)\b`),
		},
	},
	{
		Type: TypeWeatherAlert,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bweather (?:alert|warning|delay)\b`),
			regexp.MustCompile(`(?i)\b(?:storm|rain|snow|wind) (?:warning|forecast|delay)\b`),
			regexp.MustCompile(`(?i)\bpogoda\b`),
		},
	},
	{
		Type: TypeCastChange,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bcast (?:change|update|replacement)\b`),
			regexp.MustCompile(`(?i)\b(?:actor|actress|talent) (?:change|replaced|unavailable)\b`),
			regexp.MustCompile(`(?i)\brecast\b`),
		},
	},
	{
		Type: TypeEquipmentUpdate,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bequipment (?:update|change|delivery|rental)\b`),
			regexp.MustCompile(`(?i)\b(?:camera|lighting|grip|rig) (?:update|change|issue)\b`),
			regexp.MustCompile(`(?i)\bsprz[ęe]t\b`),
		},
	},
	{
		Type: TypeGeneralProduction,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bproduction\b`),
			regexp.MustCompile(`(?i)\b(?:crew|wardrobe|makeup|catering)\b`),
			regexp.MustCompile(`(?i)\bprodukcja\b`),
		},
	},
	{
		Type: TypeSpam,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:unsubscribe|limited offer|click here|free trial)\b`),
			regexp.MustCompile(`(?i)\b(?:winner|lottery|prize|casino)\b`),
			regexp.MustCompile(`(?i)\bviagra\b`),
		},
	},
}

var urgencyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\burgent\b`),
	regexp.MustCompile(`(?i)\basap\b`),
	regexp.MustCompile(`(?i)\bimmediate(?:ly)?\b`),
	regexp.MustCompile(`(?i)\bemergency\b`),
	regexp.MustCompile(`(?i)\bpilne\b`),
}

var (
	sameDayPattern = regexp.MustCompile(`(?i)\b(?:today|now|immediate|dzisiaj|teraz)\b`)
	nextDayPattern = regexp.MustCompile(`(?i)\b(?:tomorrow|urgent|jutro)\b`)
)

// PatternClassifier is the deterministic half of the classification engine
type PatternClassifier struct {
	rules []classificationRule
}

// NewPatternClassifier creates a classifier over the built-in rule table
func NewPatternClassifier() *PatternClassifier {
	return &PatternClassifier{rules: classificationRules}
}

// Classify scores text against the ordered rule table
func (p *PatternClassifier) Classify(text string) Classification {
	msgType := TypeUnknown
	confidence := 0.0

	for _, rule := range p.rules {
		hits := 0
		for _, pattern := range rule.Patterns {
			hits += len(pattern.FindAllStringIndex(text, -1))
		}
		if hits > 0 {
			msgType = rule.Type
			confidence = 0.6 + 0.1*float64(hits)
			if confidence > 0.9 {
				confidence = 0.9
			}
			break
		}
	}

	urgency := urgencyScore(text)
	level := urgencyLevel(urgency)

	return Classification{
		Type:              msgType,
		Priority:          priorityFor(urgency),
		Confidence:        confidence,
		UrgencyLevel:      level,
		RequiresAttention: level >= 7 || msgType == TypeCancellation,
	}
}

// urgencyScore is a weighted sum of urgency pattern hits plus time-proximity
// boosts, clamped to [0,1]
func urgencyScore(text string) float64 {
	score := 0.0
	for _, pattern := range urgencyPatterns {
		if pattern.MatchString(text) {
			score += 0.25
		}
	}
	if score > 1 {
		score = 1
	}

	if sameDayPattern.MatchString(text) {
		score += 0.3
	}
	if nextDayPattern.MatchString(text) {
		score += 0.2
	}

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

func priorityFor(urgency float64) Priority {
	switch {
	case urgency > 0.8:
		return PriorityUrgent
	case urgency > 0.6:
		return PriorityHigh
	case urgency < 0.3:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// urgencyLevel maps a 0..1 urgency score onto the 1..10 scale
func urgencyLevel(urgency float64) int {
	level := int(math.Ceil(urgency * 10))
	if level < 1 {
		level = 1
	}
	if level > 10 {
		level = 10
	}
	return level
}
