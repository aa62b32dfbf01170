package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Load reads and parses the configuration file and environment variables
func Load(configPath string) (*Config, *Secrets, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	ApplyDefaults(&cfg)

	// An external requirements file takes the place of inline requirements
	if cfg.Trip.Requirements == "" && cfg.Trip.RequirementsFile != "" {
		reqData, err := os.ReadFile(cfg.Trip.RequirementsFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read requirements file: %w", err)
		}
		cfg.Trip.Requirements = strings.TrimSpace(string(reqData))
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, LoadSecrets(), nil
}

// ApplyDefaults sets default values for optional configuration fields
func ApplyDefaults(cfg *Config) {
	if cfg.Trip.Language == "" {
		cfg.Trip.Language = "English"
	}
	if cfg.Trip.Travelers == 0 {
		cfg.Trip.Travelers = 2
	}
	if cfg.Generation.BlockSize == 0 {
		cfg.Generation.BlockSize = 3
	}
	if cfg.Generation.OutputDir == "" {
		cfg.Generation.OutputDir = "output"
	}
	if cfg.Generation.PlansDir == "" {
		cfg.Generation.PlansDir = "plans"
	}
	if cfg.Generation.Provider == "" && len(cfg.Models) == 1 {
		for name := range cfg.Models {
			cfg.Generation.Provider = name
		}
	}

	for name, model := range cfg.Models {
		if model.Provider == "" {
			// Anthropic endpoints are the only non OpenAI-compatible ones
			if strings.Contains(model.BaseURL, "anthropic.com") {
				model.Provider = ProviderAnthropic
			} else {
				model.Provider = ProviderOpenAI
			}
		}
		if model.Temperature == 0 {
			model.Temperature = 0.7
		}
		if model.TopP == 0 {
			model.TopP = 1.0
		}
		if model.MaxOutputTokens == 0 {
			model.MaxOutputTokens = 8192
		}
		if model.RateLimitPerMinute == 0 {
			model.RateLimitPerMinute = 60
		}
		if model.MaxRetries == 0 {
			model.MaxRetries = 3
		}
		if model.HTTPTimeoutSeconds == 0 {
			model.HTTPTimeoutSeconds = 120
		}
		if model.Provider == ProviderAnthropic && model.AnthropicVersion == "" {
			model.AnthropicVersion = "2023-06-01"
		}
		cfg.Models[name] = model
	}
}
