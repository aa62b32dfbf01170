package config

import (
	"fmt"
	"os"
	"strings"
)

// ProviderKind selects the wire format used to talk to a model endpoint
type ProviderKind string

const (
	// ProviderOpenAI covers every OpenAI-compatible chat/completions
	// endpoint, including Gemini's compatibility surface.
	ProviderOpenAI ProviderKind = "openai"
	// ProviderAnthropic uses Anthropic's native messages API
	ProviderAnthropic ProviderKind = "anthropic"
)

// Config represents the complete application configuration
type Config struct {
	Trip            TripConfig             `toml:"trip"`
	Generation      GenerationConfig       `toml:"generation"`
	Models          map[string]ModelConfig `toml:"models"`
	PromptTemplates PromptTemplates        `toml:"prompt_templates"`
}

// TripConfig describes what the traveler wants. Requirements is passed
// through to the generator unmodified.
type TripConfig struct {
	Requirements     string `toml:"requirements"`
	RequirementsFile string `toml:"requirements_file"` // alternative to inline requirements
	Language         string `toml:"language"`
	Travelers        int    `toml:"travelers"`
}

// GenerationConfig holds generation-specific settings
type GenerationConfig struct {
	Provider  string `toml:"provider"`   // key into Models
	BlockSize int    `toml:"block_size"` // days per generator call (default 3)
	OutputDir string `toml:"output_dir"` // session directories live here
	PlansDir  string `toml:"plans_dir"`  // completed itineraries live here
}

// ModelConfig represents configuration for a single model endpoint
type ModelConfig struct {
	Provider           ProviderKind `toml:"provider"`
	BaseURL            string       `toml:"base_url"`
	ModelName          string       `toml:"model_name"`
	Temperature        float64      `toml:"temperature"`
	TopP               float64      `toml:"top_p"`
	MaxOutputTokens    int          `toml:"max_output_tokens"`
	RateLimitPerMinute int          `toml:"rate_limit_per_minute"`
	MaxRetries         int          `toml:"max_retries"`          // transport-level retries (default 3)
	HTTPTimeoutSeconds int          `toml:"http_timeout_seconds"` // default 120
	AnthropicVersion   string       `toml:"anthropic_version"`    // messages API version header
}

// PromptTemplates holds optional overrides for the built-in prompts
type PromptTemplates struct {
	SystemPrompt       string `toml:"system_prompt"`
	MetadataGeneration string `toml:"metadata_generation"`
	DayBlockGeneration string `toml:"day_block_generation"`
}

const (
	// MaxBlockSize caps days per generator call; larger blocks routinely
	// blow the model's output token budget.
	MaxBlockSize = 14
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Trip.Requirements == "" && c.Trip.RequirementsFile == "" {
		return fmt.Errorf("trip.requirements or trip.requirements_file is required")
	}
	if c.Generation.BlockSize < 1 {
		return fmt.Errorf("generation.block_size must be at least 1 (got %d)", c.Generation.BlockSize)
	}
	if c.Generation.BlockSize > MaxBlockSize {
		return fmt.Errorf("generation.block_size must not exceed %d (got %d)", MaxBlockSize, c.Generation.BlockSize)
	}
	if c.Generation.Provider == "" {
		return fmt.Errorf("generation.provider is required")
	}

	model, ok := c.Models[c.Generation.Provider]
	if !ok {
		return fmt.Errorf("models.%s is not configured (generation.provider points at it)", c.Generation.Provider)
	}
	if err := validateModelConfig(c.Generation.Provider, model); err != nil {
		return err
	}

	// Validate any additionally configured models so a later provider switch
	// does not fail at request time.
	for name, mc := range c.Models {
		if name == c.Generation.Provider {
			continue
		}
		if err := validateModelConfig(name, mc); err != nil {
			return err
		}
	}

	return nil
}

func validateModelConfig(name string, mc ModelConfig) error {
	switch mc.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("models.%s.provider must be %q or %q (got %q)", name, ProviderOpenAI, ProviderAnthropic, mc.Provider)
	}
	if mc.BaseURL == "" {
		return fmt.Errorf("models.%s.base_url is required", name)
	}
	if mc.ModelName == "" {
		return fmt.Errorf("models.%s.model_name is required", name)
	}
	if mc.Temperature < 0 || mc.Temperature > 2 {
		return fmt.Errorf("models.%s.temperature must be between 0 and 2", name)
	}
	if mc.TopP < 0 || mc.TopP > 1 {
		return fmt.Errorf("models.%s.top_p must be between 0 and 1", name)
	}
	if mc.MaxOutputTokens < 1 {
		return fmt.Errorf("models.%s.max_output_tokens must be at least 1", name)
	}
	if mc.RateLimitPerMinute < 1 {
		return fmt.Errorf("models.%s.rate_limit_per_minute must be at least 1", name)
	}
	return nil
}

// Secrets holds sensitive credentials loaded from environment variables
type Secrets struct {
	APIKeys map[string]string
}

// LoadSecrets loads API keys from environment variables
func LoadSecrets() *Secrets {
	secrets := &Secrets{
		APIKeys: make(map[string]string),
	}

	// Generic key works for any provider; specific keys override it
	if key := os.Getenv("API_KEY"); key != "" {
		secrets.APIKeys["generic"] = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		secrets.APIKeys["openai"] = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		secrets.APIKeys["anthropic"] = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		secrets.APIKeys["gemini"] = key
	}

	return secrets
}

// GetAPIKey returns the API key for a given base URL
func (s *Secrets) GetAPIKey(baseURL string) string {
	if strings.Contains(baseURL, "openai.com") {
		if key := s.APIKeys["openai"]; key != "" {
			return key
		}
	}
	if strings.Contains(baseURL, "anthropic.com") {
		if key := s.APIKeys["anthropic"]; key != "" {
			return key
		}
	}
	if strings.Contains(baseURL, "googleapis.com") {
		if key := s.APIKeys["gemini"]; key != "" {
			return key
		}
	}

	// Fall back to the generic key (local servers may need none at all)
	return s.APIKeys["generic"]
}

// ProviderName extracts a provider name from a base URL for rate limiting
// and metrics labels.
func ProviderName(baseURL string) string {
	if strings.Contains(baseURL, "openai.com") {
		return "openai"
	}
	if strings.Contains(baseURL, "anthropic.com") {
		return "anthropic"
	}
	if strings.Contains(baseURL, "googleapis.com") {
		return "gemini"
	}
	return baseURL
}
