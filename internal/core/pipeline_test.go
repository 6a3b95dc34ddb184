package core_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mikey/callsheet-pipeline/internal/adapters/cache"
	"github.com/mikey/callsheet-pipeline/internal/adapters/rules"
	"github.com/mikey/callsheet-pipeline/internal/core"
	"go.uber.org/zap"
)

// Full-stack tests: the coordinator wired exactly like the default daemon
// (rule-based secondary classifier, no enhancer), with only the PDF reader
// and OCR engine replaced by fixtures.

type fixedDoc struct {
	meta      core.DocumentMeta
	pageText  []string
	pageImage [][]byte
}

func (d *fixedDoc) Meta() core.DocumentMeta { return d.meta }

func (d *fixedDoc) PageText(n int) (string, error) {
	if n < 0 || n >= len(d.pageText) {
		return "", errors.New("page out of range")
	}
	return d.pageText[n], nil
}

func (d *fixedDoc) PageImage(n int) ([]byte, error) {
	if n < 0 || n >= len(d.pageImage) {
		return nil, errors.New("page out of range")
	}
	return d.pageImage[n], nil
}

func (d *fixedDoc) Close() error { return nil }

type fixedReader struct {
	doc *fixedDoc
}

func (r *fixedReader) Open(_ context.Context, _ []byte) (core.Document, error) {
	return r.doc, nil
}

type fixedOCR struct {
	pages map[string]core.OCRPage
}

func (o *fixedOCR) RecognizePage(_ context.Context, image []byte) (*core.OCRPage, error) {
	page := o.pages[string(image)]
	return &page, nil
}

func callSheetText() string {
	date := time.Now().AddDate(0, 1, 0).Format("2006-01-02")
	return fmt.Sprintf("Shooting date: %s\nCall time: 06:30\nLocation: Studio Beta\n%s",
		date, strings.Repeat("production notes ", 20))
}

func defaultCoordinator(reader core.DocumentReader, ocr core.OCREngine) *core.BatchCoordinator {
	logger := zap.NewNop()
	intake := core.NewIntakeAnalyzer([]string{"knownstudio.pl"})
	engine := core.NewClassificationEngine(
		rules.NewClassifier(logger),
		cache.NewNoopCache(),
		nil,
		logger,
		core.DefaultEngineConfig(),
	)
	extraction := core.NewDocumentExtractionPipeline(reader, ocr, nil, logger, core.DefaultExtractionConfig())
	return core.NewBatchCoordinator(intake, engine, extraction, core.NewRecommendationGenerator(), logger, 1)
}

func hasChannel(channels []string, want string) bool {
	for _, c := range channels {
		if c == want {
			return true
		}
	}
	return false
}

func TestProcessEmail_UrgentNextDayCallSheetEscalates(t *testing.T) {
	reader := &fixedReader{doc: &fixedDoc{
		meta:     core.DocumentMeta{PageCount: 1, Creator: "CallSheet Pro"},
		pageText: []string{callSheetText()},
	}}
	coordinator := defaultCoordinator(reader, &fixedOCR{})

	email := core.EmailContent{
		MessageID: "cs-d14-urgent",
		Subject:   "URGENT: Call sheet changed for tomorrow",
		Sender:    "producer@knownstudio.pl",
		Body:      "Call time moved to 06:30 tomorrow at Studio Beta, ul. Filmowa 3, Warszawa.",
		Attachments: []core.Attachment{
			{Filename: "callsheet_day14.pdf", MimeType: "application/pdf", Size: 4096, Data: []byte("%PDF")},
		},
	}

	result := coordinator.ProcessEmail(context.Background(), email)

	c := result.Classification
	if c == nil {
		t.Fatalf("expected a classification")
	}
	if c.Type != core.TypeScheduleUpdate {
		t.Errorf("got type %q, want %q", c.Type, core.TypeScheduleUpdate)
	}
	if c.Priority != core.PriorityUrgent {
		t.Errorf("got priority %q, want %q", c.Priority, core.PriorityUrgent)
	}
	if !c.RequiresAttention {
		t.Errorf("expected attention flag for an urgent next-day change")
	}
	if result.Recommendations.AutoProcess {
		t.Errorf("attention-flagged email must not auto-process")
	}
	if !hasChannel(result.Recommendations.NotificationChannels, "sms") {
		t.Errorf("got channels %v, want sms included", result.Recommendations.NotificationChannels)
	}
	if !result.Recommendations.EscalationRequired {
		t.Errorf("expected escalation for urgent priority")
	}
	if result.Extraction == nil {
		t.Fatalf("expected the attached call sheet to be extracted")
	}
	if result.Extraction.Method != core.MethodText {
		t.Errorf("got method %q, want %q", result.Extraction.Method, core.MethodText)
	}
	if !result.Extraction.Fields.Complete() {
		t.Errorf("expected complete schedule fields, got %+v", result.Extraction.Fields)
	}
}

func TestProcessEmail_MarketingBlastStaysQuiet(t *testing.T) {
	coordinator := defaultCoordinator(&fixedReader{doc: &fixedDoc{}}, &fixedOCR{})

	email := core.EmailContent{
		MessageID: "mkt-1",
		Subject:   "Limited offer: win a free trial",
		Sender:    "deals@example-offers.biz",
		Body:      "Click here to claim your prize. Unsubscribe anytime.",
	}

	result := coordinator.ProcessEmail(context.Background(), email)

	c := result.Classification
	if c == nil {
		t.Fatalf("expected a classification")
	}
	if c.Type != core.TypeSpam && c.Type != core.TypeUnknown {
		t.Errorf("got type %q, want spam or unknown", c.Type)
	}
	if c.Confidence >= 0.6 {
		t.Errorf("got confidence %v, want below 0.6 for a marketing blast", c.Confidence)
	}
	if result.Recommendations.AutoProcess {
		t.Errorf("marketing email must not auto-process")
	}
	if result.Recommendations.EscalationRequired {
		t.Errorf("unexpected escalation for a marketing email")
	}
	if hasChannel(result.Recommendations.NotificationChannels, "sms") {
		t.Errorf("got channels %v, want no sms", result.Recommendations.NotificationChannels)
	}
	if result.Extraction != nil {
		t.Errorf("no attachment, expected no extraction result")
	}
}

func TestProcessEmail_ScannedCallSheetFallsBackToOCR(t *testing.T) {
	reader := &fixedReader{doc: &fixedDoc{
		meta:      core.DocumentMeta{PageCount: 1},
		pageText:  []string{""},
		pageImage: [][]byte{[]byte("scan0")},
	}}
	ocr := &fixedOCR{pages: map[string]core.OCRPage{
		"scan0": {Text: callSheetText(), Confidence: 88},
	}}
	coordinator := defaultCoordinator(reader, ocr)

	email := core.EmailContent{
		MessageID: "cs-d15-scan",
		Subject:   "Call sheet for day 15",
		Sender:    "coordinator@knownstudio.pl",
		Body:      "Scanned call sheet attached, call time details inside.",
		Attachments: []core.Attachment{
			{Filename: "scan_day15.pdf", MimeType: "application/pdf", Size: 240000, Data: []byte("%PDF")},
		},
	}

	result := coordinator.ProcessEmail(context.Background(), email)

	if result.Extraction == nil {
		t.Fatalf("expected the scanned call sheet to be extracted, errors: %v", result.Errors)
	}
	if result.Extraction.Method != core.MethodOCR {
		t.Errorf("got method %q, want %q", result.Extraction.Method, core.MethodOCR)
	}
	if !result.Extraction.Fields.Complete() {
		t.Errorf("expected complete schedule fields, got %+v", result.Extraction.Fields)
	}
	if result.Extraction.QualityScore <= 0 || result.Extraction.QualityScore > 1 {
		t.Errorf("got quality score %v, want within (0,1]", result.Extraction.QualityScore)
	}
	direct := &fixedReader{doc: &fixedDoc{
		meta:     core.DocumentMeta{PageCount: 1},
		pageText: []string{callSheetText()},
	}}
	directResult := defaultCoordinator(direct, &fixedOCR{}).ProcessEmail(context.Background(), email)
	if directResult.Extraction == nil {
		t.Fatalf("expected extraction for the embedded-text variant")
	}
	if result.Extraction.QualityScore >= directResult.Extraction.QualityScore {
		t.Errorf("OCR quality %v should be below embedded-text quality %v",
			result.Extraction.QualityScore, directResult.Extraction.QualityScore)
	}
}
