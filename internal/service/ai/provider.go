package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/akiasu-sonino/vt-present-describe-go/internal/config"
	"github.com/akiasu-sonino/vt-present-describe-go/internal/constants"
	apperrors "github.com/akiasu-sonino/vt-present-describe-go/pkg/errors"
)

// TextProvider turns one prompt into one completion.
type TextProvider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, prompt string) (ProviderResult, error)
}

// NewProvider builds the provider selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (TextProvider, error) {
	preset := ModelPreset(cfg.Generation.Preset)

	switch cfg.Provider {
	case constants.ProviderGemini:
		provider, err := NewGeminiProvider(ctx, cfg.Gemini, preset, logger)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case constants.ProviderOpenAI:
		provider, err := NewOpenAIProvider(cfg.OpenAI, preset, logger)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown provider %q", cfg.Provider), "GEN_PROVIDER")
	}
}
