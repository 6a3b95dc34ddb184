package core

import (
	"regexp"
	"strings"
	"time"
)

var (
	labeledDatePattern = regexp.MustCompile(`(?i)(?:shoot(?:ing)? date|date|data zdj[ęe][ćc]|dnia)\s*[:\-]\s*(\d{1,2}[./-]\d{1,2}[./-]\d{2,4}|\d{4}-\d{2}-\d{2})`)
	bareDatePattern    = regexp.MustCompile(`\b(\d{1,2}[./-]\d{1,2}[./-]\d{2,4}|\d{4}-\d{2}-\d{2})\b`)
	labeledTimePattern = regexp.MustCompile(`(?i)(?:call ?time|crew call|on set|wezwanie)\s*[:\-]?\s*(\d{1,2}:\d{2}(?:\s?(?:am|pm))?)`)
	bareTimePattern    = regexp.MustCompile(`\b(\d{1,2}:\d{2})\b`)
	locationPattern    = regexp.MustCompile(`(?i)(?:location|venue|address|lokalizacja|miejsce)\s*[:\-]\s*(.+)`)
	scenePattern       = regexp.MustCompile(`(?i)\bscenes?\s*[#:]?\s*(\d+[A-Za-z]?)`)
	contactMailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	contactTelPattern  = regexp.MustCompile(`\+?\d[\d\s\-()]{7,}\d`)
)

// dateLayouts are the formats accepted when sanity-checking a parsed
// shooting date
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"02-01-2006",
	"2.1.2006",
	"02.01.06",
}

// FieldParser applies heuristic regex extraction of schedule fields to the
// text chosen by the extraction pipeline
type FieldParser struct{}

// NewFieldParser creates a field parser
func NewFieldParser() *FieldParser {
	return &FieldParser{}
}

// Parse extracts schedule fields from text and computes a base confidence
// from pattern hit density and field completeness. OCR-derived text starts
// from a lower base since recognition noise breaks the label patterns.
func (p *FieldParser) Parse(text string, method ExtractionMethod) (ScheduleFields, float64) {
	fields := ScheduleFields{
		ShootingDate: firstGroup(labeledDatePattern, text),
		CallTime:     firstGroup(labeledTimePattern, text),
		Location:     firstLine(firstGroup(locationPattern, text)),
	}

	if fields.ShootingDate == "" {
		fields.ShootingDate = firstGroup(bareDatePattern, text)
	}
	if fields.CallTime == "" {
		fields.CallTime = firstGroup(bareTimePattern, text)
	}

	for _, m := range scenePattern.FindAllStringSubmatch(text, 20) {
		fields.Scenes = appendUnique(fields.Scenes, m[1])
	}
	for _, m := range contactMailPattern.FindAllString(text, 10) {
		fields.Contacts = appendUnique(fields.Contacts, m)
	}
	for _, m := range contactTelPattern.FindAllString(text, 10) {
		fields.Contacts = appendUnique(fields.Contacts, strings.TrimSpace(m))
	}

	confidence := 0.2
	if method == MethodOCR {
		confidence = 0.15
	}
	if fields.ShootingDate != "" {
		confidence += 0.15
	}
	if fields.CallTime != "" {
		confidence += 0.15
	}
	if fields.Location != "" {
		confidence += 0.15
	}
	if len(fields.Scenes) > 0 {
		confidence += 0.05
	}
	if len(fields.Contacts) > 0 {
		confidence += 0.05
	}
	if fields.Complete() {
		confidence += 0.1
	}

	confidence = p.validate(fields, confidence)

	return fields, clamp01(confidence)
}

// validate applies basic sanity checks to the parsed fields. Failures lower
// the confidence instead of erroring so the caller still gets a result.
func (p *FieldParser) validate(fields ScheduleFields, confidence float64) float64 {
	if fields.ShootingDate != "" {
		if parsed, ok := parseScheduleDate(fields.ShootingDate); ok {
			if parsed.Before(time.Now().Truncate(24 * time.Hour)) {
				confidence -= 0.2
			}
		}
	}
	if fields.CallTime != "" && !validCallTime(fields.CallTime) {
		confidence -= 0.1
	}
	if confidence < 0.05 {
		confidence = 0.05
	}
	return confidence
}

func parseScheduleDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var callTimeFormat = regexp.MustCompile(`^\d{1,2}:\d{2}(?:\s?(?:am|pm|AM|PM))?$`)

func validCallTime(raw string) bool {
	return callTimeFormat.MatchString(strings.TrimSpace(raw))
}

func firstGroup(pattern *regexp.Regexp, text string) string {
	m := pattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
