package ai

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"github.com/akiasu-sonino/vt-present-describe-go/internal/domain"
	"github.com/akiasu-sonino/vt-present-describe-go/internal/prompt"
	apperrors "github.com/akiasu-sonino/vt-present-describe-go/pkg/errors"
)

// ProfileGenerator runs prompt building, the provider call and extraction
// for one payload.
type ProfileGenerator struct {
	provider TextProvider
	builder  *prompt.PromptBuilder
	style    prompt.Style
	wait     time.Duration
	logger   *zap.Logger
}

type GeneratorOption func(*ProfileGenerator)

// WithRateLimitWait sets the fixed delay before the provider call.
func WithRateLimitWait(d time.Duration) GeneratorOption {
	return func(g *ProfileGenerator) {
		g.wait = d
	}
}

func WithPromptStyle(style prompt.Style) GeneratorOption {
	return func(g *ProfileGenerator) {
		g.style = style
	}
}

func WithPromptBuilder(builder *prompt.PromptBuilder) GeneratorOption {
	return func(g *ProfileGenerator) {
		g.builder = builder
	}
}

func NewProfileGenerator(provider TextProvider, logger *zap.Logger, opts ...GeneratorOption) *ProfileGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &ProfileGenerator{
		provider: provider,
		builder:  prompt.DefaultPromptBuilder(),
		style:    prompt.StyleEditor,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate always returns a well-formed profile. Provider failures are
// treated as an empty completion and still go through ExtractProfile.
func (g *ProfileGenerator) Generate(ctx context.Context, payload domain.ChannelPayload) domain.GeneratedProfile {
	promptText, err := g.builder.Render(g.style, payload)
	if err != nil {
		g.logger.Warn("Failed to build prompt", zap.String("style", string(g.style)), zap.Error(err))
		return domain.EmptyProfile()
	}
	g.logger.Debug("Prompt built", zap.String("prompt", promptText))

	if err := g.waitForRateLimit(ctx); err != nil {
		g.logger.Warn("Rate limit wait interrupted", zap.Error(err))
		return domain.EmptyProfile()
	}

	start := time.Now()
	raw, err := g.complete(ctx, promptText)
	if err != nil {
		g.logger.Warn("AI generation failed, continuing with empty completion",
			zap.String("provider", g.provider.Name()),
			zap.String("model", g.provider.Model()),
			zap.String("failure", string(ClassifyFailure(err))),
			zap.Error(err),
		)
		raw = ""
	}

	profile := ExtractProfile(raw, g.logger)

	g.logger.Info("Profile generated",
		zap.String("provider", g.provider.Name()),
		zap.String("model", g.provider.Model()),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("completion_length", len(raw)),
		zap.Int("tag_count", len(profile.Tags)),
		zap.Bool("empty", profile.IsEmpty()),
	)

	return profile
}

func (g *ProfileGenerator) complete(ctx context.Context, promptText string) (string, error) {
	var (
		result  ProviderResult
		callErr error
		catcher panics.Catcher
	)

	catcher.Try(func() {
		result, callErr = g.provider.Generate(ctx, promptText)
	})

	if recovered := catcher.Recovered(); recovered != nil {
		return "", apperrors.NewProviderError("provider panicked", g.provider.Name(), g.provider.Model(), recovered.AsError())
	}
	if callErr != nil {
		return "", apperrors.NewProviderError("generation failed", g.provider.Name(), g.provider.Model(), callErr)
	}
	return result.Text, nil
}

func (g *ProfileGenerator) waitForRateLimit(ctx context.Context) error {
	if g.wait <= 0 {
		return nil
	}

	g.logger.Debug("Waiting before provider call", zap.Duration("wait", g.wait))

	timer := time.NewTimer(g.wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
