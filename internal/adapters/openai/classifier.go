package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mikey/callsheet-pipeline/internal/core"
	"github.com/mikey/callsheet-pipeline/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClassifier is an implementation of the SecondaryClassifier
// interface using OpenAI chat completions
type OpenAIClassifier struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	promptFormat  string
}

// ClassificationResponse represents the structured response from the model
type ClassificationResponse struct {
	Type              string  `json:"type"`
	Priority          string  `json:"priority"`
	Confidence        float64 `json:"confidence"`
	UrgencyLevel      int     `json:"urgency_level"`
	RequiresAttention bool    `json:"requires_attention"`
}

// NewOpenAIClassifier creates a new OpenAI classifier
func NewOpenAIClassifier(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OpenAIClassifier {
	return &OpenAIClassifier{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
		promptFormat:  classifierPrompt,
	}
}

const classifierPrompt = `You are a film production email classifier. Analyze the following email and determine what kind of production message it is.
Respond with a JSON object containing:
- type: one of schedule_update, location_change, cancellation, weather_alert, cast_change, equipment_update, general_production, spam, unknown
- priority: one of urgent, high, medium, low
- confidence: number between 0 and 1 (how confident you are in the type)
- urgency_level: integer between 1 and 10
- requires_attention: boolean (true if a human should look at this before anything is processed automatically)

Email text:
%s

Signals: subject keywords=%d, sender trust=%.2f, pdf attachments=%d

Respond only with the JSON object and nothing else.`

// ClassifyEmail classifies an email's combined subject and body text
func (c *OpenAIClassifier) ClassifyEmail(ctx context.Context, text string, signals core.IntakeSignals) (*core.Classification, error) {
	processed := c.textProcessor.ProcessText(text, c.maxBodySize)
	prompt := fmt.Sprintf(c.promptFormat, processed,
		signals.SubjectKeywordCount, signals.SenderTrust.TrustScore, signals.Attachments.PDFCount)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a film production email classifier. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	responseFormat := openai.ChatCompletionResponseFormat{
		Type: "json",
	}
	req.ResponseFormat = &responseFormat

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	parsed, err := ParseClassificationJSON(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return parsed.ToClassification(), nil
}

// ParseClassificationJSON parses a model response, tolerating prose around
// the JSON object by scanning for the outermost braces
func ParseClassificationJSON(responseText string) (*ClassificationResponse, error) {
	var response ClassificationResponse
	if err := json.Unmarshal([]byte(responseText), &response); err == nil {
		return &response, nil
	}

	jsonStart := -1
	jsonEnd := -1
	for i := 0; i < len(responseText); i++ {
		if responseText[i] == '{' {
			jsonStart = i
			break
		}
	}
	for i := len(responseText) - 1; i >= 0; i-- {
		if responseText[i] == '}' {
			jsonEnd = i + 1
			break
		}
	}

	if jsonStart < 0 || jsonEnd <= jsonStart {
		return nil, fmt.Errorf("failed to extract JSON from model response")
	}

	if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd]), &response); err != nil {
		return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
	}

	return &response, nil
}

// ToClassification converts the wire response into the domain type,
// clamping out-of-range values instead of failing
func (r *ClassificationResponse) ToClassification() *core.Classification {
	msgType := core.MessageType(r.Type)
	if !msgType.IsValid() {
		msgType = core.TypeUnknown
	}

	priority := core.Priority(r.Priority)
	switch priority {
	case core.PriorityUrgent, core.PriorityHigh, core.PriorityMedium, core.PriorityLow:
	default:
		priority = core.PriorityMedium
	}

	confidence := r.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	level := r.UrgencyLevel
	if level < 1 {
		level = 1
	}
	if level > 10 {
		level = 10
	}

	return &core.Classification{
		Type:              msgType,
		Priority:          priority,
		Confidence:        confidence,
		UrgencyLevel:      level,
		RequiresAttention: r.RequiresAttention,
	}
}
