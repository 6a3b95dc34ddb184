package core

import (
	"net/mail"
	"path/filepath"
	"regexp"
	"strings"
)

// Keyword groups scored against the subject line. Localized terms cover the
// Polish productions the pipeline was built for.
var (
	primaryKeywords = []string{
		"call sheet", "callsheet", "shooting schedule", "schedule",
		"call time", "shoot day",
	}
	domainKeywords = []string{
		"production", "filming", "shoot", "scene", "crew", "set",
		"location", "wardrobe", "makeup",
	}
	urgencyKeywords = []string{
		"urgent", "asap", "immediate", "emergency", "attention",
		"important", "pilne",
	}
	localizedKeywords = []string{
		"harmonogram", "plan zdjec", "plan zdjęć", "zdjecia", "zdjęcia",
		"plan dnia", "wezwanie",
	}
)

// webmailDomains are common public providers that earn a middling trust score
var webmailDomains = map[string]bool{
	"gmail.com":   true,
	"outlook.com": true,
	"hotmail.com": true,
	"yahoo.com":   true,
	"icloud.com":  true,
	"wp.pl":       true,
	"onet.pl":     true,
	"o2.pl":       true,
}

// productionTokens mark a sender domain as industry-adjacent
var productionTokens = []string{"production", "film", "media", "studio", "cinema"}

// suspiciousExtensions is the denylist of executable-like attachment extensions
var suspiciousExtensions = map[string]bool{
	".exe": true,
	".scr": true,
	".bat": true,
	".com": true,
	".pif": true,
	".vbs": true,
	".js":  true,
}

var (
	timeRefPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}:\d{2}\b`),
		regexp.MustCompile(`(?i)\b\d{1,2}\s?(?:am|pm)\b`),
		regexp.MustCompile(`(?i)\bcall\s*time\b`),
		regexp.MustCompile(`(?i)\bgodzina\b`),
	}
	locationRefPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:street|st\.|avenue|ave\.|ulica|ul\.|studio|stage|location|venue|address|hala|plan)\b`),
		regexp.MustCompile(`(?i)\b(?:warsaw|warszawa|krakow|kraków|lodz|łódź|gdansk|gdańsk|wroclaw|wrocław|london|berlin|prague)\b`),
		regexp.MustCompile(`\b\d{2}-\d{3}\b`),
	}
	contactRefPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+?\d[\d\s\-()]{7,}\d`),
		regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
	}
)

// IntakeAnalyzer scores raw email metadata for schedule-likelihood signals.
// Analyze is a pure function of its input and never fails: malformed input
// is treated as empty fields.
type IntakeAnalyzer struct {
	allowedDomains map[string]bool
	keywordGroups  [][]string
}

// NewIntakeAnalyzer creates an analyzer with the given sender allow-list
func NewIntakeAnalyzer(allowedDomains []string) *IntakeAnalyzer {
	allowed := make(map[string]bool, len(allowedDomains))
	for _, d := range allowedDomains {
		allowed[strings.ToLower(strings.TrimSpace(d))] = true
	}

	return &IntakeAnalyzer{
		allowedDomains: allowed,
		keywordGroups: [][]string{
			primaryKeywords,
			domainKeywords,
			urgencyKeywords,
			localizedKeywords,
		},
	}
}

// Analyze scores an email's subject, body, sender and attachments
func (a *IntakeAnalyzer) Analyze(email EmailContent) IntakeSignals {
	subject := strings.ToLower(email.Subject)
	body := strings.ToLower(email.Body)

	keywordCount := 0
	for _, group := range a.keywordGroups {
		for _, kw := range group {
			keywordCount += strings.Count(subject, kw)
		}
	}

	var urgencyHits []string
	for _, term := range urgencyKeywords {
		if strings.Contains(subject, term) || strings.Contains(body, term) {
			urgencyHits = append(urgencyHits, term)
		}
	}

	textQuality := float64(len(email.Body)) / 500.0
	if textQuality > 1.0 {
		textQuality = 1.0
	}

	return IntakeSignals{
		SubjectKeywordCount:      keywordCount,
		ContainsScheduleKeywords: keywordCount > 0,
		UrgencyIndicators:        urgencyHits,
		ContentFlags: ContentFlags{
			HasTimeReferences:     matchesAny(timeRefPatterns, email.Body),
			HasLocationReferences: matchesAny(locationRefPatterns, email.Body),
			HasContactInfo:        matchesAny(contactRefPatterns, email.Body),
		},
		TextQuality: textQuality,
		SenderTrust: a.scoreSender(email.Sender),
		Attachments: profileAttachments(email.Attachments),
	}
}

func matchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// scoreSender parses the address out of a raw "Name <addr>" header and
// assigns a trust score by domain
func (a *IntakeAnalyzer) scoreSender(sender string) SenderTrust {
	domain := senderDomain(sender)
	if domain == "" {
		return SenderTrust{Reputation: ReputationUnknown}
	}

	score := 0.3
	switch {
	case a.allowedDomains[domain]:
		score = 1.0
	case webmailDomains[domain]:
		score = 0.6
	case containsAnyToken(domain, productionTokens):
		score = 0.7
	}

	return SenderTrust{
		Domain:     domain,
		TrustScore: score,
		Reputation: reputationFor(score),
	}
}

func senderDomain(sender string) string {
	addr := sender
	if parsed, err := mail.ParseAddress(sender); err == nil {
		addr = parsed.Address
	}
	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return ""
	}
	return strings.ToLower(strings.Trim(addr[at+1:], "> "))
}

func containsAnyToken(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func reputationFor(score float64) SenderReputation {
	switch {
	case score >= 0.9:
		return ReputationHigh
	case score >= 0.5:
		return ReputationMedium
	case score > 0:
		return ReputationLow
	default:
		return ReputationUnknown
	}
}

// profileAttachments counts PDFs and denylisted extensions, and computes the
// average per-attachment quality contribution floored at zero
func profileAttachments(attachments []Attachment) AttachmentProfile {
	profile := AttachmentProfile{Total: len(attachments)}
	if len(attachments) == 0 {
		return profile
	}

	sum := 0.0
	for _, att := range attachments {
		ext := strings.ToLower(filepath.Ext(att.Filename))
		isPDF := ext == ".pdf" || strings.Contains(strings.ToLower(att.MimeType), "pdf")

		if isPDF {
			profile.PDFCount++
			sum += 0.5
		}
		if suspiciousExtensions[ext] {
			profile.SuspiciousCount++
			sum -= 0.3
		}
		if att.Size > 1000 {
			sum += 0.1
		}
	}

	quality := sum / float64(profile.Total)
	if quality < 0 {
		quality = 0
	}
	profile.Quality = quality

	return profile
}
