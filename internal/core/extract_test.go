package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

type stubDocument struct {
	meta      DocumentMeta
	pageText  []string
	pageImage [][]byte
	imageErr  error
	closed    bool
}

func (d *stubDocument) Meta() DocumentMeta { return d.meta }

func (d *stubDocument) PageText(n int) (string, error) {
	if n < 0 || n >= len(d.pageText) {
		return "", errors.New("page out of range")
	}
	return d.pageText[n], nil
}

func (d *stubDocument) PageImage(n int) ([]byte, error) {
	if d.imageErr != nil {
		return nil, d.imageErr
	}
	if n < 0 || n >= len(d.pageImage) {
		return nil, errors.New("page out of range")
	}
	return d.pageImage[n], nil
}

func (d *stubDocument) Close() error {
	d.closed = true
	return nil
}

type stubReader struct {
	doc *stubDocument
	err error
}

func (r *stubReader) Open(_ context.Context, _ []byte) (Document, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.doc, nil
}

type stubOCR struct {
	pages map[string]OCRPage
	err   error
	calls int
}

func (o *stubOCR) RecognizePage(_ context.Context, image []byte) (*OCRPage, error) {
	o.calls++
	if o.err != nil {
		return nil, o.err
	}
	page := o.pages[string(image)]
	return &page, nil
}

type stubEnhancer struct {
	result *EnhancedFields
	err    error
	calls  int
}

func (e *stubEnhancer) EnhanceSchedule(_ context.Context, _ string, _ ScheduleFields) (*EnhancedFields, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

func testPipeline(reader DocumentReader, ocr OCREngine, enhancer ScheduleEnhancer) *DocumentExtractionPipeline {
	return NewDocumentExtractionPipeline(reader, ocr, enhancer, zap.NewNop(), DefaultExtractionConfig())
}

func scheduleText() string {
	date := time.Now().AddDate(0, 1, 0).Format("2006-01-02")
	return fmt.Sprintf("Shooting date: %s\nCall time: 06:30\nLocation: Studio Alpha\n%s",
		date, strings.Repeat("production notes ", 20))
}

func TestExtract_DirectTextPath(t *testing.T) {
	doc := &stubDocument{
		meta:     DocumentMeta{PageCount: 1, Creator: "CallSheet Pro"},
		pageText: []string{scheduleText()},
	}
	ocr := &stubOCR{}
	pipeline := testPipeline(&stubReader{doc: doc}, ocr, nil)

	result, err := pipeline.Extract(context.Background(), []byte("pdf"), "day12.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Method != MethodText {
		t.Errorf("got method %q, want %q", result.Method, MethodText)
	}
	if !result.Fields.Complete() {
		t.Errorf("expected complete fields, got %+v", result.Fields)
	}
	if ocr.calls != 0 {
		t.Errorf("OCR was called %d times despite sufficient embedded text", ocr.calls)
	}
	if !doc.closed {
		t.Errorf("expected document handle to be closed")
	}
}

func TestExtract_OCRFallbackForScannedDocument(t *testing.T) {
	doc := &stubDocument{
		meta:      DocumentMeta{PageCount: 2},
		pageText:  []string{"", ""},
		pageImage: [][]byte{[]byte("img0"), []byte("img1")},
	}
	ocr := &stubOCR{pages: map[string]OCRPage{
		"img0": {Text: scheduleText(), Confidence: 91},
		"img1": {Text: "second page notes", Confidence: 88},
	}}
	pipeline := testPipeline(&stubReader{doc: doc}, ocr, nil)

	result, err := pipeline.Extract(context.Background(), []byte("pdf"), "scan.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Method != MethodOCR {
		t.Errorf("got method %q, want %q", result.Method, MethodOCR)
	}
	if ocr.calls != 2 {
		t.Errorf("got %d OCR calls, want 2", ocr.calls)
	}
	if result.Fields.CallTime != "06:30" {
		t.Errorf("got call time %q from OCR text, want %q", result.Fields.CallTime, "06:30")
	}
}

func TestExtract_HybridWhenSomeEmbeddedText(t *testing.T) {
	doc := &stubDocument{
		meta:      DocumentMeta{PageCount: 1},
		pageText:  []string{"short note"},
		pageImage: [][]byte{[]byte("img0")},
	}
	ocr := &stubOCR{pages: map[string]OCRPage{
		"img0": {Text: scheduleText(), Confidence: 95},
	}}
	pipeline := testPipeline(&stubReader{doc: doc}, ocr, nil)

	result, err := pipeline.Extract(context.Background(), []byte("pdf"), "mixed.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Method != MethodHybrid {
		t.Errorf("got method %q, want %q", result.Method, MethodHybrid)
	}
}

func TestExtract_LowOCRConfidenceKeepsDirectText(t *testing.T) {
	doc := &stubDocument{
		meta:      DocumentMeta{PageCount: 1},
		pageText:  []string{"short note"},
		pageImage: [][]byte{[]byte("img0")},
	}
	ocr := &stubOCR{pages: map[string]OCRPage{
		"img0": {Text: "garbled nonsense", Confidence: 20},
	}}
	pipeline := testPipeline(&stubReader{doc: doc}, ocr, nil)

	result, err := pipeline.Extract(context.Background(), []byte("pdf"), "noisy.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Method != MethodText {
		t.Errorf("got method %q, want %q when OCR confidence is below threshold", result.Method, MethodText)
	}
}

func TestExtract_NoUsableText(t *testing.T) {
	doc := &stubDocument{
		meta:      DocumentMeta{PageCount: 1},
		pageText:  []string{""},
		pageImage: [][]byte{[]byte("img0")},
	}
	ocr := &stubOCR{pages: map[string]OCRPage{
		"img0": {Text: "", Confidence: 0},
	}}
	pipeline := testPipeline(&stubReader{doc: doc}, ocr, nil)

	_, err := pipeline.Extract(context.Background(), []byte("pdf"), "blank.pdf")
	if !errors.Is(err, ErrNoUsableText) {
		t.Errorf("got error %v, want ErrNoUsableText", err)
	}
}

func TestExtract_UnreadableDocument(t *testing.T) {
	pipeline := testPipeline(&stubReader{err: errors.New("not a pdf")}, nil, nil)

	_, err := pipeline.Extract(context.Background(), []byte("junk"), "junk.pdf")
	if !errors.Is(err, ErrNoUsableText) {
		t.Errorf("got error %v, want ErrNoUsableText", err)
	}
}

func TestExtract_EnhancerFillsOnlyMissingFields(t *testing.T) {
	date := time.Now().AddDate(0, 1, 0).Format("2006-01-02")
	doc := &stubDocument{
		meta:     DocumentMeta{PageCount: 1},
		pageText: []string{"Shooting date: " + date + "\n" + strings.Repeat("filler text ", 20)},
	}
	enhancer := &stubEnhancer{result: &EnhancedFields{
		ShootingDate: "1999-01-01",
		CallTime:     "07:00",
		Location:     "Backlot B",
		Confidence:   0.9,
	}}
	pipeline := testPipeline(&stubReader{doc: doc}, nil, enhancer)

	result, err := pipeline.Extract(context.Background(), []byte("pdf"), "partial.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enhancer.calls != 1 {
		t.Fatalf("got %d enhancer calls, want 1", enhancer.calls)
	}
	if result.Fields.ShootingDate != date {
		t.Errorf("parsed shooting date %q was overwritten with %q", date, result.Fields.ShootingDate)
	}
	if result.Fields.CallTime != "07:00" {
		t.Errorf("got call time %q, want enhancer fill %q", result.Fields.CallTime, "07:00")
	}
	if result.Fields.Location != "Backlot B" {
		t.Errorf("got location %q, want enhancer fill %q", result.Fields.Location, "Backlot B")
	}
	if result.Confidence != 0.9 {
		t.Errorf("got confidence %v, want enhancer confidence 0.9", result.Confidence)
	}
	if result.ConfidenceBoost <= 0 {
		t.Errorf("got boost %v, want positive", result.ConfidenceBoost)
	}
}

func TestExtract_EnhancerSkippedWhenConfident(t *testing.T) {
	doc := &stubDocument{
		meta:     DocumentMeta{PageCount: 1},
		pageText: []string{scheduleText()},
	}
	enhancer := &stubEnhancer{result: &EnhancedFields{Confidence: 0.99}}
	pipeline := testPipeline(&stubReader{doc: doc}, nil, enhancer)

	result, err := pipeline.Extract(context.Background(), []byte("pdf"), "complete.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enhancer.calls != 0 {
		t.Errorf("got %d enhancer calls, want 0 when parsing is already confident", enhancer.calls)
	}
	if result.ConfidenceBoost != 0 {
		t.Errorf("got boost %v, want 0", result.ConfidenceBoost)
	}
}

func TestExtract_EnhancerFailureKeepsParsedResult(t *testing.T) {
	doc := &stubDocument{
		meta:     DocumentMeta{PageCount: 1},
		pageText: []string{"Location: Stage 4\n" + strings.Repeat("filler text ", 20)},
	}
	enhancer := &stubEnhancer{err: errors.New("model unavailable")}
	pipeline := testPipeline(&stubReader{doc: doc}, nil, enhancer)

	result, err := pipeline.Extract(context.Background(), []byte("pdf"), "fail.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Fields.Location != "Stage 4" {
		t.Errorf("got location %q, want parsed value kept", result.Fields.Location)
	}
	if result.ConfidenceBoost != 0 {
		t.Errorf("got boost %v, want 0 after enhancer failure", result.ConfidenceBoost)
	}
}

func TestExtract_MaxOCRPagesRespected(t *testing.T) {
	cfg := DefaultExtractionConfig()
	cfg.MaxOCRPages = 2

	pageCount := 5
	texts := make([]string, pageCount)
	images := make([][]byte, pageCount)
	pages := map[string]OCRPage{}
	for i := 0; i < pageCount; i++ {
		key := fmt.Sprintf("img%d", i)
		images[i] = []byte(key)
		pages[key] = OCRPage{Text: "page content " + key, Confidence: 90}
	}
	doc := &stubDocument{meta: DocumentMeta{PageCount: pageCount}, pageText: texts, pageImage: images}
	ocr := &stubOCR{pages: pages}

	pipeline := NewDocumentExtractionPipeline(&stubReader{doc: doc}, ocr, nil, zap.NewNop(), cfg)
	if _, err := pipeline.Extract(context.Background(), []byte("pdf"), "long.pdf"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ocr.calls != 2 {
		t.Errorf("got %d OCR calls, want 2 (page cap)", ocr.calls)
	}
}

func TestQualityScore_ClampedAndOrdered(t *testing.T) {
	doc := &stubDocument{
		meta:     DocumentMeta{PageCount: 1, Creator: "CallSheet Pro"},
		pageText: []string{scheduleText()},
	}
	pipeline := testPipeline(&stubReader{doc: doc}, nil, nil)

	result, err := pipeline.Extract(context.Background(), []byte("pdf"), "best.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.QualityScore < 0 || result.QualityScore > 1 {
		t.Errorf("quality score %v out of range", result.QualityScore)
	}
	// Complete fields, embedded text and metadata should score well
	if result.QualityScore < 0.7 {
		t.Errorf("got quality %v, want at least 0.7 for a clean document", result.QualityScore)
	}
}
