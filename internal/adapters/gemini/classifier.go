package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	openaiadapter "github.com/mikey/callsheet-pipeline/internal/adapters/openai"
	"github.com/mikey/callsheet-pipeline/internal/core"
	"github.com/mikey/callsheet-pipeline/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClassifier is an implementation of the SecondaryClassifier
// interface using Google Gemini
type GeminiClassifier struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	promptFormat  string
}

// NewGeminiClassifier creates a new Gemini classifier
func NewGeminiClassifier(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*GeminiClassifier, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiClassifier{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
		promptFormat: `You are a film production email classifier. Analyze the following email and determine what kind of production message it is.
Respond with a JSON object containing:
- type: one of schedule_update, location_change, cancellation, weather_alert, cast_change, equipment_update, general_production, spam, unknown
- priority: one of urgent, high, medium, low
- confidence: number between 0 and 1 (how confident you are in the type)
- urgency_level: integer between 1 and 10
- requires_attention: boolean

Email text:
%s

Signals: subject keywords=%d, sender trust=%.2f, pdf attachments=%d

Respond only with the JSON object and nothing else.`,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClassifier) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// ClassifyEmail classifies an email's combined subject and body text
func (c *GeminiClassifier) ClassifyEmail(ctx context.Context, text string, signals core.IntakeSignals) (*core.Classification, error) {
	processed := c.textProcessor.ProcessText(text, c.maxBodySize)
	prompt := fmt.Sprintf(c.promptFormat, processed,
		signals.SubjectKeywordCount, signals.SenderTrust.TrustScore, signals.Attachments.PDFCount)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	parsed, err := openaiadapter.ParseClassificationJSON(responseText)
	if err != nil {
		return nil, err
	}

	return parsed.ToClassification(), nil
}
