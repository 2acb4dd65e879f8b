package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/akiasu-sonino/vt-present-describe-go/internal/constants"
	apperrors "github.com/akiasu-sonino/vt-present-describe-go/pkg/errors"
)

type Config struct {
	Provider   string `validate:"required,oneof=gemini openai"`
	Gemini     GeminiConfig
	OpenAI     OpenAIConfig
	Generation GenerationConfig
	Logging    LoggingConfig
}

type GeminiConfig struct {
	APIKey  string
	Model   string `validate:"required"`
	BaseURL string `validate:"omitempty,url"`
}

type OpenAIConfig struct {
	APIKey  string
	Model   string `validate:"required"`
	BaseURL string `validate:"omitempty,url"`
}

type GenerationConfig struct {
	RateLimitWait time.Duration `validate:"gte=0"`
	Preset        string        `validate:"required,oneof=creative precise balanced"`
	PromptStyle   string        `validate:"required,oneof=editor third_person"`
}

type LoggingConfig struct {
	Level string `validate:"required,oneof=debug info warn error"`
	File  string
	Debug bool
}

var validate = validator.New()

func Load() (*Config, error) {
	_ = godotenv.Load()

	provider := strings.ToLower(strings.TrimSpace(getEnv("GEN_PROVIDER", constants.ProviderGemini)))
	debug := os.Getenv(constants.DebugConfig.EnvKey) == constants.DebugConfig.EnabledValue

	level := strings.ToLower(getEnv("LOG_LEVEL", "error"))
	if debug {
		level = "debug"
	}

	wait, err := getEnvMillis("RATE_LIMIT_WAIT_MS", defaultWait(provider))
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := &Config{
		Provider: provider,
		Gemini: GeminiConfig{
			APIKey:  strings.TrimSpace(getEnv("GEMINI_API_KEY", "")),
			Model:   getEnv("GEMINI_MODEL", constants.ModelDefaults.Gemini),
			BaseURL: getEnv("GEMINI_BASE_URL", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey:  strings.TrimSpace(getEnv("OPENAI_API_KEY", "")),
			Model:   getEnv("OPENAI_MODEL", constants.ModelDefaults.OpenAI),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
		},
		Generation: GenerationConfig{
			RateLimitWait: wait,
			Preset:        strings.ToLower(getEnv("GEN_PRESET", "balanced")),
			PromptStyle:   strings.ToLower(getEnv("PROMPT_STYLE", "editor")),
		},
		Logging: LoggingConfig{
			Level: level,
			File:  getEnv("LOG_FILE", ""),
			Debug: debug,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := verrs[0].Namespace()
			return apperrors.NewConfigError(
				fmt.Sprintf("invalid value for %s (%s)", field, verrs[0].Tag()), field)
		}
		return apperrors.NewConfigError(err.Error(), "")
	}

	switch c.Provider {
	case constants.ProviderGemini:
		if c.Gemini.APIKey == "" {
			return apperrors.NewConfigError("GEMINI_API_KEY is required", "GEMINI_API_KEY")
		}
	case constants.ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return apperrors.NewConfigError("OPENAI_API_KEY is required", "OPENAI_API_KEY")
		}
	}
	return nil
}

func defaultWait(provider string) time.Duration {
	if provider == constants.ProviderOpenAI {
		return constants.RateLimitWait.OpenAI
	}
	return constants.RateLimitWait.Gemini
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvMillis(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	ms, err := strconv.Atoi(value)
	if err != nil {
		return 0, apperrors.NewConfigError(fmt.Sprintf("%s must be an integer number of milliseconds, got %q", key, value), key)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
