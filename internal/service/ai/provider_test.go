package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/akiasu-sonino/vt-present-describe-go/internal/config"
	apperrors "github.com/akiasu-sonino/vt-present-describe-go/pkg/errors"
)

const geminiReply = `{
  "candidates": [
    {
      "content": {
        "role": "model",
        "parts": [{"text": "{\"description\": \"歌が得意な配信者です。\", \"tags\": [\"歌\", \"雑談\"]}"}]
      },
      "finishReason": "STOP"
    }
  ]
}`

func newJSONServer(t *testing.T, status int, body string, captured *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeminiProviderGenerate(t *testing.T) {
	var request map[string]any
	srv := newJSONServer(t, http.StatusOK, geminiReply, &request)

	core, logs := observer.New(zapcore.DebugLevel)
	provider, err := NewGeminiProvider(context.Background(), config.GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-2.5-flash",
		BaseURL: srv.URL,
	}, PresetBalanced, zap.New(core))
	require.NoError(t, err)

	result, err := provider.Generate(context.Background(), "プロンプト")
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", result.Model)
	assert.Equal(t, []string{"歌", "雑談"}, ExtractProfile(result.Text, nil).Tags)

	assert.Contains(t, mustJSON(t, request), "プロンプト")
	assert.Contains(t, mustJSON(t, request), "application/json")

	assert.Equal(t, 1, logs.FilterMessage("Gemini raw response").Len())
	assert.Equal(t, 1, logs.FilterMessage("Gemini response text").Len())
}

func TestGeminiProviderDebugLoggingDoesNotChangeResult(t *testing.T) {
	srv := newJSONServer(t, http.StatusOK, geminiReply, nil)
	cfg := config.GeminiConfig{APIKey: "k", Model: "gemini-2.5-flash", BaseURL: srv.URL}

	core, _ := observer.New(zapcore.DebugLevel)
	verbose, err := NewGeminiProvider(context.Background(), cfg, PresetBalanced, zap.New(core))
	require.NoError(t, err)
	quiet, err := NewGeminiProvider(context.Background(), cfg, PresetBalanced, zap.NewNop())
	require.NoError(t, err)

	a, err := verbose.Generate(context.Background(), "p")
	require.NoError(t, err)
	b, err := quiet.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGeminiProviderAPIError(t *testing.T) {
	srv := newJSONServer(t, http.StatusBadRequest,
		`{"error": {"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}}`, nil)

	provider, err := NewGeminiProvider(context.Background(), config.GeminiConfig{
		APIKey: "bad", Model: "gemini-2.5-flash", BaseURL: srv.URL,
	}, PresetBalanced, nil)
	require.NoError(t, err)

	_, err = provider.Generate(context.Background(), "p")
	require.Error(t, err)
}

func TestGeminiProviderEmptyCandidates(t *testing.T) {
	srv := newJSONServer(t, http.StatusOK, `{"candidates": []}`, nil)

	provider, err := NewGeminiProvider(context.Background(), config.GeminiConfig{
		APIKey: "k", Model: "gemini-2.5-flash", BaseURL: srv.URL,
	}, PresetBalanced, nil)
	require.NoError(t, err)

	_, err = provider.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestNewGeminiProviderRequiresKey(t *testing.T) {
	_, err := NewGeminiProvider(context.Background(), config.GeminiConfig{Model: "gemini-2.5-flash"}, PresetBalanced, nil)

	var cfgErr *apperrors.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "GEMINI_API_KEY", cfgErr.Field)
}

const openAIReply = `{
  "id": "chatcmpl-test",
  "object": "chat.completion",
  "created": 1760000000,
  "model": "gpt-5-mini",
  "choices": [
    {
      "index": 0,
      "message": {"role": "assistant", "content": "  {\"description\": \"ゲーム実況が中心の配信者です。\", \"tags\": [\"ゲーム\"]}  "},
      "finish_reason": "stop"
    }
  ],
  "usage": {"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30}
}`

func TestOpenAIProviderGenerate(t *testing.T) {
	var request map[string]any
	srv := newJSONServer(t, http.StatusOK, openAIReply, &request)

	provider, err := NewOpenAIProvider(config.OpenAIConfig{
		APIKey:  "sk-test",
		Model:   "gpt-5-mini",
		BaseURL: srv.URL,
	}, PresetBalanced, zap.NewNop())
	require.NoError(t, err)

	result, err := provider.Generate(context.Background(), "プロンプト")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Text, "{"))
	assert.Equal(t, []string{"ゲーム"}, ExtractProfile(result.Text, nil).Tags)

	assert.Equal(t, "gpt-5-mini", request["model"])
	_, hasTemperature := request["temperature"]
	assert.False(t, hasTemperature, "gpt-5 models must not receive temperature")

	messages, ok := request["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)

	system := messages[0].(map[string]any)
	assert.Equal(t, "system", system["role"])
	assert.Equal(t, "You are a helpful assistant.", system["content"])

	user := messages[1].(map[string]any)
	assert.Equal(t, "user", user["role"])
	assert.Equal(t, "プロンプト", user["content"])
}

func TestOpenAIProviderSendsSamplingForNonReasoningModels(t *testing.T) {
	var request map[string]any
	srv := newJSONServer(t, http.StatusOK, openAIReply, &request)

	provider, err := NewOpenAIProvider(config.OpenAIConfig{
		APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: srv.URL,
	}, PresetPrecise, nil)
	require.NoError(t, err)

	_, err = provider.Generate(context.Background(), "p")
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", request["model"])
	assert.InDelta(t, 0.1, request["temperature"], 0.0001)
	assert.EqualValues(t, 1024, request["max_completion_tokens"])
}

func TestIsReasoningModel(t *testing.T) {
	for _, model := range []string{"gpt-5", "gpt-5-mini", "o1", "o3-mini", "o4-mini"} {
		assert.True(t, isReasoningModel(model), model)
	}
	for _, model := range []string{"gpt-4o-mini", "gpt-4.1", "omni-moderation-latest", "open-mistral", "o"} {
		assert.False(t, isReasoningModel(model), model)
	}
}

func TestOpenAIProviderAPIError(t *testing.T) {
	srv := newJSONServer(t, http.StatusUnauthorized,
		`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error", "code": "invalid_api_key"}}`, nil)

	provider, err := NewOpenAIProvider(config.OpenAIConfig{
		APIKey: "sk-bad", Model: "gpt-5-mini", BaseURL: srv.URL,
	}, PresetBalanced, nil)
	require.NoError(t, err)

	_, err = provider.Generate(context.Background(), "p")
	require.Error(t, err)
}

func TestOpenAIProviderNoChoices(t *testing.T) {
	srv := newJSONServer(t, http.StatusOK,
		`{"id": "x", "object": "chat.completion", "created": 0, "model": "gpt-5-mini", "choices": []}`, nil)

	provider, err := NewOpenAIProvider(config.OpenAIConfig{
		APIKey: "sk-test", Model: "gpt-5-mini", BaseURL: srv.URL,
	}, PresetBalanced, nil)
	require.NoError(t, err)

	_, err = provider.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestOpenAIProviderErrorDegradesThroughGenerator(t *testing.T) {
	srv := newJSONServer(t, http.StatusInternalServerError, `{"error": {"message": "server error"}}`, nil)

	provider, err := NewOpenAIProvider(config.OpenAIConfig{
		APIKey: "sk-test", Model: "gpt-5-mini", BaseURL: srv.URL,
	}, PresetBalanced, nil)
	require.NoError(t, err)

	got := NewProfileGenerator(provider, nil).Generate(context.Background(), testPayload)
	assert.Equal(t, `{"description":"","tags":[]}`, mustJSON(t, got))
}

func TestNewProviderSelectsImplementation(t *testing.T) {
	gemini, err := NewProvider(context.Background(), &config.Config{
		Provider:   "gemini",
		Gemini:     config.GeminiConfig{APIKey: "k", Model: "gemini-2.5-flash"},
		Generation: config.GenerationConfig{Preset: "balanced"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Gemini", gemini.Name())
	assert.Equal(t, "gemini-2.5-flash", gemini.Model())

	openaiProvider, err := NewProvider(context.Background(), &config.Config{
		Provider:   "openai",
		OpenAI:     config.OpenAIConfig{APIKey: "sk", Model: "gpt-5-mini"},
		Generation: config.GenerationConfig{Preset: "balanced"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "OpenAI", openaiProvider.Name())

	_, err = NewProvider(context.Background(), &config.Config{Provider: "other"}, nil)
	require.Error(t, err)

	_, err = NewProvider(context.Background(), &config.Config{
		Provider: "openai",
		OpenAI:   config.OpenAIConfig{Model: "gpt-5-mini"},
	}, nil)
	var cfgErr *apperrors.ConfigError
	require.True(t, errors.As(err, &cfgErr))
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
