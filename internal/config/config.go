package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/callsheet-pipeline/")
	v.AddConfigPath("$HOME/.callsheet-pipeline")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("CALLSHEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Classifier provider defaults
	v.SetDefault("classifier.provider", "rules")

	// Enhancer defaults
	v.SetDefault("enhancer.provider", "none")

	// Server defaults
	v.SetDefault("server.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.domain", "localhost")
	v.SetDefault("server.max_message_bytes", 31457280)
	v.SetDefault("server.process_timeout", "60s")

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 1000)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)
	v.SetDefault("bedrock.max_body_size", 4096)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-pro")
	v.SetDefault("gemini.max_tokens", 1000)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_body_size", 4096)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)
	v.SetDefault("openai.max_body_size", 4096)

	// Anthropic defaults
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model_name", "claude-3-5-haiku-latest")
	v.SetDefault("anthropic.max_tokens", 1000)
	v.SetDefault("anthropic.max_text_size", 8192)

	// Classification engine defaults
	v.SetDefault("engine.pattern_weight", 0.4)
	v.SetDefault("engine.secondary_weight", 0.6)
	v.SetDefault("engine.override_threshold", 0.8)
	v.SetDefault("engine.feedback_batch_size", 100)
	v.SetDefault("engine.accuracy_increment", 0.01)
	v.SetDefault("engine.max_accuracy", 0.98)

	// Extraction defaults
	v.SetDefault("extraction.min_text_length", 100)
	v.SetDefault("extraction.max_ocr_pages", 10)
	v.SetDefault("extraction.min_ocr_confidence", 0.5)
	v.SetDefault("extraction.enhance_threshold", 0.7)
	v.SetDefault("extraction.ocr_enabled", true)
	v.SetDefault("extraction.ocr_languages", "eng+pol")
	v.SetDefault("extraction.render_dpi", 300)

	// Intake defaults
	v.SetDefault("intake.allowed_domains", []string{})

	// Batch defaults
	v.SetDefault("batch.chunk_size", 10)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.max_entries", 10000)
	v.SetDefault("cache.sqlite_path", "/data/classification_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/callsheet_pipeline")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)

	// Recalibration defaults
	v.SetDefault("recalibration.schedule", "@every 1h")

	// Circuit breaker defaults
	v.SetDefault("breaker.consecutive_failures", 5)
	v.SetDefault("breaker.open_timeout", "60s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
