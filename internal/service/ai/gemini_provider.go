package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/akiasu-sonino/vt-present-describe-go/internal/config"
	apperrors "github.com/akiasu-sonino/vt-present-describe-go/pkg/errors"
)

// GeminiProvider calls the Gemini generateContent endpoint.
type GeminiProvider struct {
	client *genai.Client
	model  string
	preset ModelPreset
	logger *zap.Logger
}

func NewGeminiProvider(ctx context.Context, cfg config.GeminiConfig, preset ModelPreset, logger *zap.Logger) (*GeminiProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, apperrors.NewConfigError("GEMINI_API_KEY is required", "GEMINI_API_KEY")
	}
	if cfg.Model == "" {
		return nil, apperrors.NewConfigError("Gemini model is required", "GEMINI_MODEL")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  cfg.Model,
		preset: preset,
		logger: logger,
	}, nil
}

func (g *GeminiProvider) Name() string {
	return "Gemini"
}

func (g *GeminiProvider) Model() string {
	return g.model
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string) (ProviderResult, error) {
	if g.client == nil {
		return ProviderResult{}, fmt.Errorf("gemini client not initialized")
	}

	config := GetPresetConfig(g.preset)
	topK := float32(config.TopK)

	genConfig := &genai.GenerateContentConfig{
		Temperature:      &config.Temperature,
		TopP:             &config.TopP,
		TopK:             &topK,
		MaxOutputTokens:  int32(config.MaxOutputTokens),
		ResponseMIMEType: "application/json",
		ResponseSchema:   profileResponseSchema(),
	}

	g.logger.Debug("Generating with Gemini",
		zap.String("model", g.model),
		zap.String("preset", string(g.preset)),
	)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}, genConfig)
	if err != nil {
		g.logger.Debug("Gemini generation failed", zap.Error(err))
		return ProviderResult{}, err
	}

	g.logger.Debug("Gemini raw response", zap.Any("response", resp))

	text := strings.TrimSpace(extractTextFromGeminiResponse(resp))
	g.logger.Debug("Gemini response text", zap.String("text", text))
	if text == "" {
		return ProviderResult{}, fmt.Errorf("empty response from Gemini")
	}

	return ProviderResult{Text: text, Model: g.model}, nil
}

func profileResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"description": {Type: genai.TypeString},
			"tags": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required:         []string{"description", "tags"},
		PropertyOrdering: []string{"description", "tags"},
	}
}

func extractTextFromGeminiResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}

	var texts []string
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}

	return strings.Join(texts, "")
}
