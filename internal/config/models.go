package config

// ClassifierConfig represents the secondary classifier selection
type ClassifierConfig struct {
	Provider string
}

// EnhancerConfig represents the schedule enhancer selection
type EnhancerConfig struct {
	Provider string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// AnthropicConfig represents the configuration for the Anthropic enhancer
type AnthropicConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	MaxTextSize int
}

// ExtractionConfig represents the document extraction configuration
type ExtractionConfig struct {
	MinTextLength    int
	MaxOCRPages      int
	MinOCRConfidence float64
	EnhanceThreshold float64
	OCREnabled       bool
	OCRLanguages     string
	RenderDPI        int
}

// EngineConfig represents the classification fusion configuration
type EngineConfig struct {
	PatternWeight     float64
	SecondaryWeight   float64
	OverrideThreshold float64
	FeedbackBatchSize int
	AccuracyIncrement float64
	MaxAccuracy       float64
}

// GetClassifier returns the classifier selection configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		Provider: c.GetString("classifier.provider"),
	}
}

// GetEnhancer returns the enhancer selection configuration
func (c *Config) GetEnhancer() EnhancerConfig {
	return EnhancerConfig{
		Provider: c.GetString("enhancer.provider"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetAnthropic returns the Anthropic configuration
func (c *Config) GetAnthropic() AnthropicConfig {
	return AnthropicConfig{
		APIKey:      c.GetString("anthropic.api_key"),
		ModelName:   c.GetString("anthropic.model_name"),
		MaxTokens:   c.GetInt("anthropic.max_tokens"),
		MaxTextSize: c.GetInt("anthropic.max_text_size"),
	}
}

// GetExtraction returns the document extraction configuration
func (c *Config) GetExtraction() ExtractionConfig {
	return ExtractionConfig{
		MinTextLength:    c.GetInt("extraction.min_text_length"),
		MaxOCRPages:      c.GetInt("extraction.max_ocr_pages"),
		MinOCRConfidence: c.GetFloat64("extraction.min_ocr_confidence"),
		EnhanceThreshold: c.GetFloat64("extraction.enhance_threshold"),
		OCREnabled:       c.GetBool("extraction.ocr_enabled"),
		OCRLanguages:     c.GetString("extraction.ocr_languages"),
		RenderDPI:        c.GetInt("extraction.render_dpi"),
	}
}

// GetEngine returns the classification fusion configuration
func (c *Config) GetEngine() EngineConfig {
	return EngineConfig{
		PatternWeight:     c.GetFloat64("engine.pattern_weight"),
		SecondaryWeight:   c.GetFloat64("engine.secondary_weight"),
		OverrideThreshold: c.GetFloat64("engine.override_threshold"),
		FeedbackBatchSize: c.GetInt("engine.feedback_batch_size"),
		AccuracyIncrement: c.GetFloat64("engine.accuracy_increment"),
		MaxAccuracy:       c.GetFloat64("engine.max_accuracy"),
	}
}
