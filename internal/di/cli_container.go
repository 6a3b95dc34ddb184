package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/callsheet-pipeline/internal/adapters/cache"
	"github.com/mikey/callsheet-pipeline/internal/config"
	"github.com/mikey/callsheet-pipeline/internal/core"
	"github.com/mikey/callsheet-pipeline/internal/factory"
	"github.com/mikey/callsheet-pipeline/internal/logging"
	"github.com/mikey/callsheet-pipeline/internal/resilience"
	"github.com/mikey/callsheet-pipeline/internal/utils"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Classifier flags
	Provider    string
	MaxTokens   int
	Temperature float64
	TopP        float64
	MaxBodySize int

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string

	// Enhancer flags
	Enhancer        string
	AnthropicAPIKey string
	AnthropicModel  string

	// Extraction flags
	OCREnabled   bool
	OCRLanguages string

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Classifier flags
	flag.StringVar(&flags.Provider, "provider", "rules", "Secondary classifier provider (rules, bedrock, gemini, openai, none)")
	flag.IntVar(&flags.MaxTokens, "max-tokens", 1000, "Maximum tokens for model response")
	flag.Float64Var(&flags.Temperature, "temperature", 0.1, "Temperature for model generation")
	flag.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for model generation")
	flag.IntVar(&flags.MaxBodySize, "max-body-size", 4096, "Maximum email body size to send to the model")

	// Bedrock flags
	flag.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	flag.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	flag.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	flag.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	flag.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	flag.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4", "OpenAI model name")

	// Enhancer flags
	flag.StringVar(&flags.Enhancer, "enhancer", "none", "Schedule enhancer provider (none, anthropic)")
	flag.StringVar(&flags.AnthropicAPIKey, "anthropic-api-key", "", "API key for the Anthropic enhancer")
	flag.StringVar(&flags.AnthropicModel, "anthropic-model", "claude-3-5-haiku-latest", "Anthropic model name")

	// Extraction flags
	flag.BoolVar(&flags.OCREnabled, "ocr", true, "Enable OCR fallback for scanned documents")
	flag.StringVar(&flags.OCRLanguages, "ocr-languages", "eng+pol", "Tesseract language set for OCR")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "Input email (.eml) or document (.pdf) file (use stdin if not specified)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.NewCLILogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewEnhancerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewExtractionFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register secondary classifier without a circuit breaker; the CLI
	// processes one input and exits
	if err := container.Provide(func(f *factory.ClassifierFactory) (core.SecondaryClassifier, error) {
		return f.CreateClassifier()
	}); err != nil {
		return nil, err
	}

	// Register analytics
	if err := container.Provide(core.NewAnalytics); err != nil {
		return nil, err
	}

	// Register classification engine with no cache
	if err := container.Provide(func(
		secondary core.SecondaryClassifier,
		analytics *core.Analytics,
		logger *zap.Logger,
	) *core.ClassificationEngine {
		return core.NewClassificationEngine(secondary, cache.NewNoopCache(), analytics, logger, core.DefaultEngineConfig())
	}); err != nil {
		return nil, err
	}

	// Register schedule enhancer
	if err := container.Provide(func(f *factory.EnhancerFactory) (core.ScheduleEnhancer, error) {
		return f.CreateEnhancer()
	}); err != nil {
		return nil, err
	}

	// Register extraction pipeline
	if err := container.Provide(func(
		f *factory.ExtractionFactory,
		enhancer core.ScheduleEnhancer,
	) *core.DocumentExtractionPipeline {
		return f.CreatePipeline(enhancer, resilience.DefaultBreakerConfig())
	}); err != nil {
		return nil, err
	}

	// Register intake analyzer with no domain allowlist
	if err := container.Provide(func() *core.IntakeAnalyzer {
		return core.NewIntakeAnalyzer(nil)
	}); err != nil {
		return nil, err
	}

	// Register recommendation generator
	if err := container.Provide(core.NewRecommendationGenerator); err != nil {
		return nil, err
	}

	// Register batch coordinator
	if err := container.Provide(func(
		intake *core.IntakeAnalyzer,
		engine *core.ClassificationEngine,
		extraction *core.DocumentExtractionPipeline,
		recommender *core.RecommendationGenerator,
		logger *zap.Logger,
	) *core.BatchCoordinator {
		return core.NewBatchCoordinator(intake, engine, extraction, recommender, logger, 1)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set some cli specific settings
	v.Set("cli.verbose", flags.Verbose)

	// Set classifier provider
	v.Set("classifier.provider", flags.Provider)

	// Set provider-specific configuration
	switch flags.Provider {
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
		v.Set("bedrock.top_p", flags.TopP)
		v.Set("bedrock.max_body_size", flags.MaxBodySize)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
		v.Set("gemini.top_p", flags.TopP)
		v.Set("gemini.max_body_size", flags.MaxBodySize)
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.model_name", flags.OpenAIModelName)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
		v.Set("openai.top_p", flags.TopP)
		v.Set("openai.max_body_size", flags.MaxBodySize)
	}

	// Set enhancer configuration
	v.Set("enhancer.provider", flags.Enhancer)
	if flags.Enhancer == "anthropic" {
		v.Set("anthropic.api_key", flags.AnthropicAPIKey)
		v.Set("anthropic.model_name", flags.AnthropicModel)
	}

	// Set extraction configuration
	v.Set("extraction.ocr_enabled", flags.OCREnabled)
	v.Set("extraction.ocr_languages", flags.OCRLanguages)

	return config.NewFromViper(v)
}
