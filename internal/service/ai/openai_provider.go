package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/akiasu-sonino/vt-present-describe-go/internal/config"
	"github.com/akiasu-sonino/vt-present-describe-go/internal/constants"
	apperrors "github.com/akiasu-sonino/vt-present-describe-go/pkg/errors"
)

// OpenAIProvider wraps the OpenAI chat completion client.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	preset ModelPreset
	logger *zap.Logger
}

// NewOpenAIProvider builds the client with SDK retries disabled. Extra
// request options are applied last.
func NewOpenAIProvider(cfg config.OpenAIConfig, preset ModelPreset, logger *zap.Logger, opts ...option.RequestOption) (*OpenAIProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, apperrors.NewConfigError("OPENAI_API_KEY is required", "OPENAI_API_KEY")
	}
	if cfg.Model == "" {
		return nil, apperrors.NewConfigError("OpenAI model is required", "OPENAI_MODEL")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	requestOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(cfg.BaseURL))
	}
	requestOpts = append(requestOpts, opts...)

	client := openai.NewClient(requestOpts...)
	return &OpenAIProvider{
		client: &client,
		model:  cfg.Model,
		preset: preset,
		logger: logger,
	}, nil
}

func (o *OpenAIProvider) Name() string {
	return "OpenAI"
}

func (o *OpenAIProvider) Model() string {
	return o.model
}

func (o *OpenAIProvider) Generate(ctx context.Context, prompt string) (ProviderResult, error) {
	if o.client == nil {
		return ProviderResult{}, fmt.Errorf("OpenAI client not initialized")
	}

	params := openai.ChatCompletionNewParams{
		Model: resolveChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(constants.OpenAISystemMessage),
			openai.UserMessage(prompt),
		},
	}

	// GPT-5 models reject sampling overrides and spend completion tokens on reasoning.
	if !isReasoningModel(o.model) {
		sampling := GetOpenAIPresetConfig(o.preset)
		params.MaxCompletionTokens = openai.Int(int64(sampling.MaxTokens))
		params.Temperature = openai.Float(float64(sampling.Temperature))
		params.TopP = openai.Float(float64(sampling.TopP))
	}

	o.logger.Debug("Generating with OpenAI",
		zap.String("model", o.model),
		zap.String("preset", string(o.preset)),
	)

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		o.logger.Debug("OpenAI generation failed", zap.Error(err))
		return ProviderResult{}, err
	}

	if len(resp.Choices) == 0 {
		return ProviderResult{}, fmt.Errorf("no choices in OpenAI response")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)

	o.logger.Debug("OpenAI response received",
		zap.Int("length", len(text)),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int64("cached_tokens", resp.Usage.PromptTokensDetails.CachedTokens),
		zap.String("text", text),
	)

	return ProviderResult{Text: text, Model: o.model}, nil
}

var reasoningModelPattern = regexp.MustCompile(`^(gpt-5|o\d)`)

func isReasoningModel(modelName string) bool {
	return reasoningModelPattern.MatchString(modelName)
}

func resolveChatModel(modelName string) openai.ChatModel {
	switch modelName {
	case "gpt-5-mini":
		return openai.ChatModelGPT5Mini
	case "gpt-5":
		return openai.ChatModelGPT5
	case "gpt-5-nano":
		return openai.ChatModelGPT5Nano
	case "gpt-4.1":
		return openai.ChatModelGPT4_1
	case "gpt-4.1-mini":
		return openai.ChatModelGPT4_1Mini
	case "gpt-4.1-nano":
		return openai.ChatModelGPT4_1Nano
	case "gpt-4o":
		return openai.ChatModelGPT4o
	case "gpt-4o-mini":
		return openai.ChatModelGPT4oMini
	default:
		return openai.ChatModel(modelName)
	}
}
