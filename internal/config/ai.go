package config

import (
	"os"
	"time"
)

// GeminiModels defines which Gemini models to use for different tasks
type GeminiModels struct {
	// Summary is the short narrative shown next to a result (latency matters)
	Summary string `json:"summary" mapstructure:"summary"`

	// Document drafts the long-form compliance documents (quality over speed)
	Document string `json:"document" mapstructure:"document"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey            string       `json:"-" mapstructure:"api_key"` // Never serialize
	BaseURL           string       `json:"baseUrl" mapstructure:"base_url"`
	Models            GeminiModels `json:"models" mapstructure:"models"`
	TimeoutMS         int          `json:"timeoutMs" mapstructure:"timeout_ms"`
	SummaryMaxTokens  int          `json:"summaryMaxTokens" mapstructure:"summary_max_tokens"`
	DocumentMaxTokens int          `json:"documentMaxTokens" mapstructure:"document_max_tokens"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		BaseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		Models: GeminiModels{
			Summary:  getEnvOrDefault("GEMINI_MODEL_SUMMARY", "gemini-2.0-flash"),
			Document: getEnvOrDefault("GEMINI_MODEL_DOCUMENT", "gemini-2.0-flash"),
		},
		TimeoutMS:         30000, // documents run up to 5000 tokens
		SummaryMaxTokens:  500,
		DocumentMaxTokens: 5000,
	}
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full endpoint for a given model
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}

// Timeout returns TimeoutMS as a duration
func (c *AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
