package core

import (
	"time"
)

// MessageType categorizes what a production email is about
type MessageType string

const (
	TypeScheduleUpdate    MessageType = "schedule_update"
	TypeLocationChange    MessageType = "location_change"
	TypeCancellation      MessageType = "cancellation"
	TypeWeatherAlert      MessageType = "weather_alert"
	TypeCastChange        MessageType = "cast_change"
	TypeEquipmentUpdate   MessageType = "equipment_update"
	TypeGeneralProduction MessageType = "general_production"
	TypeSpam              MessageType = "spam"
	TypeUnknown           MessageType = "unknown"
)

// IsValid reports whether t is one of the known message types
func (t MessageType) IsValid() bool {
	switch t {
	case TypeScheduleUpdate, TypeLocationChange, TypeCancellation,
		TypeWeatherAlert, TypeCastChange, TypeEquipmentUpdate,
		TypeGeneralProduction, TypeSpam, TypeUnknown:
		return true
	}
	return false
}

// Priority is the processing priority of a classified email
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank maps a priority onto the total order urgent > high > medium > low
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// HigherPriority returns the higher ranked of two priorities
func HigherPriority(a, b Priority) Priority {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Attachment is a single email attachment with its raw bytes
type Attachment struct {
	Filename string
	MimeType string
	Size     int64
	Data     []byte
}

// EmailContent represents an email message handed to the pipeline.
// It is immutable input: the pipeline never modifies it.
type EmailContent struct {
	MessageID      string
	Subject        string
	Body           string
	Sender         string
	Timestamp      time.Time
	HasAttachments bool
	Attachments    []Attachment
}

// ContentFlags records which signal families were detected in the email body
type ContentFlags struct {
	HasTimeReferences     bool
	HasLocationReferences bool
	HasContactInfo        bool
}

// SenderReputation buckets a sender trust score
type SenderReputation string

const (
	ReputationHigh    SenderReputation = "high"
	ReputationMedium  SenderReputation = "medium"
	ReputationLow     SenderReputation = "low"
	ReputationUnknown SenderReputation = "unknown"
)

// SenderTrust describes how much the pipeline trusts an email sender
type SenderTrust struct {
	Domain     string
	TrustScore float64
	Reputation SenderReputation
}

// AttachmentProfile summarizes an email's attachments
type AttachmentProfile struct {
	Total           int
	PDFCount        int
	SuspiciousCount int
	Quality         float64
}

// IntakeSignals is the result of scoring raw email metadata for
// schedule-likelihood signals
type IntakeSignals struct {
	SubjectKeywordCount      int
	ContainsScheduleKeywords bool
	UrgencyIndicators        []string
	ContentFlags             ContentFlags
	TextQuality              float64
	SenderTrust              SenderTrust
	Attachments              AttachmentProfile
}

// Classification is the fused verdict of the pattern and secondary classifiers
type Classification struct {
	Type              MessageType
	Priority          Priority
	Confidence        float64
	UrgencyLevel      int
	RequiresAttention bool
}

// ExtractionMethod records which extraction strategy produced the text
type ExtractionMethod string

const (
	MethodText   ExtractionMethod = "text"
	MethodOCR    ExtractionMethod = "ocr"
	MethodHybrid ExtractionMethod = "hybrid"
)

// ScheduleFields holds the structured schedule data parsed from a document
type ScheduleFields struct {
	ShootingDate string
	CallTime     string
	Location     string
	Scenes       []string
	Contacts     []string
}

// Complete reports whether the three headline fields are all present
func (f ScheduleFields) Complete() bool {
	return f.ShootingDate != "" && f.CallTime != "" && f.Location != ""
}

// ExtractionResult is the outcome of running the document extraction
// pipeline over one attachment
type ExtractionResult struct {
	Fields          ScheduleFields
	Confidence      float64
	Method          ExtractionMethod
	QualityScore    float64
	ConfidenceBoost float64
}

// Recommendations is the action plan derived from classification and
// extraction quality
type Recommendations struct {
	AutoProcess          bool
	NotificationChannels []string
	EscalationRequired   bool
	SuggestedActions     []string
}

// EmailProcessingResult is the per-message output of the pipeline
type EmailProcessingResult struct {
	MessageID       string
	ProcessingID    string
	Classification  *Classification
	Extraction      *ExtractionResult
	Recommendations Recommendations
	Errors          []string
	ProcessedAt     time.Time
}

// FeedbackVerdict grades a classification against operator review
type FeedbackVerdict string

const (
	FeedbackCorrect   FeedbackVerdict = "correct"
	FeedbackIncorrect FeedbackVerdict = "incorrect"
	FeedbackPartial   FeedbackVerdict = "partial"
)

// FeedbackEntry is one operator correction for a classified message
type FeedbackEntry struct {
	MessageID  string
	Corrected  Classification
	Verdict    FeedbackVerdict
	ReceivedAt time.Time
}

// ModelState tracks the secondary classifier's calibration over the
// process lifetime
type ModelState struct {
	Name             string
	Version          string
	Accuracy         float64
	LastTrainingTime time.Time
}

// CacheEntry is a cached classification keyed by message id
type CacheEntry struct {
	MessageID      string
	Classification Classification
	CachedAt       time.Time
	ExpiresAt      time.Time
}

// AnalyticsSnapshot aggregates processed-message counters for dashboards
type AnalyticsSnapshot struct {
	TotalProcessed    int
	ByType            map[MessageType]int
	ByPriority        map[Priority]int
	AverageConfidence float64
	UrgentCount       int
	LocationChanges   int
	Cancellations     int
}
