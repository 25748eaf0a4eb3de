package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures the question-authoring model.
type Config struct {
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig shapes the backoff used by WithRetry.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig uses anthropic with the small models of every provider.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAnthropic,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-001"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 45 * time.Second,
	}
}

// ConfigFromEnv overlays QUIZADAPT_LLM_PROVIDER and the
// QUIZADAPT_<PROVIDER>_API_KEY / _MODEL / _BASE_URL variables on the
// defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	for name, dst := range map[string]*string{
		"QUIZADAPT_LLM_PROVIDER":       &cfg.Provider,
		"QUIZADAPT_ANTHROPIC_API_KEY":  &cfg.Anthropic.APIKey,
		"QUIZADAPT_ANTHROPIC_MODEL":    &cfg.Anthropic.Model,
		"QUIZADAPT_OPENAI_API_KEY":     &cfg.OpenAI.APIKey,
		"QUIZADAPT_OPENAI_MODEL":       &cfg.OpenAI.Model,
		"QUIZADAPT_OPENAI_BASE_URL":    &cfg.OpenAI.BaseURL,
		"QUIZADAPT_GEMINI_API_KEY":     &cfg.Gemini.APIKey,
		"QUIZADAPT_GEMINI_MODEL":       &cfg.Gemini.Model,
		"QUIZADAPT_OPENROUTER_API_KEY": &cfg.OpenRouter.APIKey,
		"QUIZADAPT_OPENROUTER_MODEL":   &cfg.OpenRouter.Model,
	} {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	return cfg
}

// DiscoverConfig falls back to the vendors' own key variables, trying
// GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY and OPENROUTER_API_KEY in
// that order.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	for _, c := range []struct {
		env, provider string
		key           *string
	}{
		{"GEMINI_API_KEY", ProviderGemini, &cfg.Gemini.APIKey},
		{"OPENAI_API_KEY", ProviderOpenAI, &cfg.OpenAI.APIKey},
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &cfg.Anthropic.APIKey},
		{"OPENROUTER_API_KEY", ProviderOpenRouter, &cfg.OpenRouter.APIKey},
	} {
		if v := os.Getenv(c.env); v != "" {
			cfg.Provider = c.provider
			*c.key = v
			return cfg, true
		}
	}
	return Config{}, false
}

// Resolve prefers the QUIZADAPT_ variables and falls back to DiscoverConfig
// when the selected provider has no key.
func Resolve() Config {
	cfg := ConfigFromEnv()
	if cfg.Validate() == nil {
		return cfg
	}
	if found, ok := DiscoverConfig(); ok {
		return found
	}
	return cfg
}

// Validate checks the selected provider has an API key.
func (c Config) Validate() error {
	var key string
	switch c.Provider {
	case ProviderAnthropic:
		key = c.Anthropic.APIKey
	case ProviderOpenAI:
		key = c.OpenAI.APIKey
	case ProviderGemini:
		key = c.Gemini.APIKey
	case ProviderOpenRouter:
		key = c.OpenRouter.APIKey
	case ProviderMock:
		return nil
	default:
		return fmt.Errorf("unknown llm provider %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("QUIZADAPT_%s_API_KEY is required for the %s provider", strings.ToUpper(c.Provider), c.Provider)
	}
	return nil
}
