package constants

import "time"

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var ModelDefaults = struct {
	Gemini string
	OpenAI string
}{
	Gemini: "gemini-2.5-flash",
	OpenAI: "gpt-5-mini",
}

// RateLimitWait is the fixed delay before the single provider call.
// There is no external rate control in the environments this runs in.
var RateLimitWait = struct {
	Gemini time.Duration
	OpenAI time.Duration
}{
	Gemini: 0,
	OpenAI: 2 * time.Second,
}

var OpenAISystemMessage = "You are a helpful assistant."

var DebugConfig = struct {
	EnvKey       string
	EnabledValue string
}{
	EnvKey:       "DEBUG_GEMINI_GEN",
	EnabledValue: "1",
}

var LogLimits = struct {
	ResponsePreview int
}{
	ResponsePreview: 200,
}
