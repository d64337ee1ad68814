package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ca-srg/cyberrag/internal/types"
	env "github.com/netflix/go-env"
)

// Type alias for Config
type Config = types.Config

const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"

	ComposerTemplate  = "template"
	ComposerBedrock   = "bedrock"
	ComposerGemini    = "gemini"
	ComposerAnthropic = "anthropic"
	ComposerOpenAI    = "openai"
)

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var config Config

	_, err := env.UnmarshalFromEnviron(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values and adjusts them to safe ranges
func validateConfig(config *Config) error {
	config.FetchMode = strings.ToLower(strings.TrimSpace(config.FetchMode))
	switch config.FetchMode {
	case "":
		config.FetchMode = FetchModeHTTP
	case FetchModeHTTP, FetchModeBrowser:
	default:
		return fmt.Errorf("FETCH_MODE must be %q or %q, got %q", FetchModeHTTP, FetchModeBrowser, config.FetchMode)
	}

	// Per-fetch timeout stays within 1s..60s
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = 15 * time.Second
	}
	if config.FetchTimeout < time.Second {
		config.FetchTimeout = time.Second
	}
	if config.FetchTimeout > time.Minute {
		config.FetchTimeout = time.Minute
	}

	if config.FetchRatePerHost <= 0 {
		config.FetchRatePerHost = 2
	}
	if config.FetchMaxBytes <= 0 {
		config.FetchMaxBytes = 4 << 20
	}

	if config.AnswerMaxChars <= 0 {
		config.AnswerMaxChars = 900
	}

	config.ComposerBackend = strings.ToLower(strings.TrimSpace(config.ComposerBackend))
	switch config.ComposerBackend {
	case "":
		config.ComposerBackend = ComposerTemplate
	case ComposerTemplate, ComposerBedrock:
	case ComposerGemini:
		if strings.TrimSpace(config.GeminiAPIKey) == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when COMPOSER_BACKEND=gemini")
		}
	case ComposerAnthropic:
		if strings.TrimSpace(config.AnthropicAPIKey) == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when COMPOSER_BACKEND=anthropic")
		}
	case ComposerOpenAI:
		if strings.TrimSpace(config.OpenAIAPIKey) == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when COMPOSER_BACKEND=openai")
		}
	default:
		return fmt.Errorf("unsupported COMPOSER_BACKEND %q", config.ComposerBackend)
	}

	if config.ServerPort <= 0 || config.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535")
	}
	if config.MCPServerPort <= 0 || config.MCPServerPort > 65535 {
		return fmt.Errorf("MCP_SERVER_PORT must be between 1 and 65535")
	}
	for _, origin := range strings.Split(config.ServerCORSOrigins, ",") {
		origin = strings.TrimSpace(origin)
		if origin == "" || origin == "*" {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("SERVER_CORS_ORIGINS entry %q must start with http:// or https://", origin)
		}
	}
	if config.ServerRatePerMin < 0 {
		config.ServerRatePerMin = 0
	}

	return nil
}
