package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/mikey/callsheet-pipeline/internal/core"
	"github.com/mikey/callsheet-pipeline/internal/utils"
	"go.uber.org/zap"
)

// AnthropicEnhancer is an implementation of the ScheduleEnhancer interface
// using the Anthropic messages API. It is only consulted when heuristic
// field parsing returns a low-confidence result.
type AnthropicEnhancer struct {
	client        anthropic.Client
	modelName     string
	maxTokens     int64
	maxTextSize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// enhanceResponse is the structured response expected from the model
type enhanceResponse struct {
	ShootingDate string  `json:"shooting_date"`
	CallTime     string  `json:"call_time"`
	Location     string  `json:"location"`
	Confidence   float64 `json:"confidence"`
}

const systemPrompt = `You extract film shooting schedule fields from call sheet text. Respond only with a JSON object:
{"shooting_date": "...", "call_time": "...", "location": "...", "confidence": 0.0-1.0}
Use empty strings for fields you cannot find. Never invent values.`

// NewAnthropicEnhancer creates a new Anthropic enhancer
func NewAnthropicEnhancer(
	apiKey string,
	modelName string,
	maxTokens int,
	maxTextSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *AnthropicEnhancer {
	return &AnthropicEnhancer{
		client:        anthropic.NewClient(option.WithAPIKey(apiKey)),
		modelName:     modelName,
		maxTokens:     int64(maxTokens),
		maxTextSize:   maxTextSize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// EnhanceSchedule asks the model to fill in the fields heuristic parsing
// missed. Fields already present are named in the prompt so the model can
// use them as anchors; the pipeline ignores them in the response.
func (e *AnthropicEnhancer) EnhanceSchedule(ctx context.Context, text string, fields core.ScheduleFields) (*core.EnhancedFields, error) {
	processed := e.textProcessor.ProcessText(text, e.maxTextSize)

	userPrompt := fmt.Sprintf(`Document text:
%s

Already known: shooting_date=%q call_time=%q location=%q
Fill in the missing fields.`, processed, fields.ShootingDate, fields.CallTime, fields.Location)

	message, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(e.modelName),
		MaxTokens: e.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}

	responseText := ""
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}
	if responseText == "" {
		return nil, fmt.Errorf("no text content in Anthropic response")
	}

	parsed, err := parseEnhanceResponse(responseText)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Schedule enhanced",
		zap.String("model", e.modelName),
		zap.Float64("confidence", parsed.Confidence))

	return &core.EnhancedFields{
		ShootingDate: parsed.ShootingDate,
		CallTime:     parsed.CallTime,
		Location:     parsed.Location,
		Confidence:   clamp01(parsed.Confidence),
	}, nil
}

func parseEnhanceResponse(responseText string) (*enhanceResponse, error) {
	var resp enhanceResponse
	if err := json.Unmarshal([]byte(responseText), &resp); err == nil {
		return &resp, nil
	}

	start := -1
	end := -1
	for i := 0; i < len(responseText); i++ {
		if responseText[i] == '{' {
			start = i
			break
		}
	}
	for i := len(responseText) - 1; i >= 0; i-- {
		if responseText[i] == '}' {
			end = i + 1
			break
		}
	}
	if start < 0 || end <= start {
		return nil, fmt.Errorf("failed to extract JSON from model response")
	}

	if err := json.Unmarshal([]byte(responseText[start:end]), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
	}
	return &resp, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
