package errors

import "fmt"

// Error codes
const (
	CodeConfig   = "CONFIG_ERROR"
	CodeProvider = "PROVIDER_ERROR"
	CodeInput    = "INPUT_ERROR"
	CodeParse    = "PARSE_ERROR"
)

type AppError struct {
	Message string
	Code    string
	Context map[string]any
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// ConfigError means no request can be formed. Callers treat it as fatal.
type ConfigError struct {
	*AppError
	Field string
}

func NewConfigError(message, field string) *ConfigError {
	return &ConfigError{
		AppError: &AppError{
			Message: message,
			Code:    CodeConfig,
			Context: map[string]any{
				"field": field,
			},
		},
		Field: field,
	}
}

type ProviderError struct {
	*AppError
	Provider string
	Model    string
}

func NewProviderError(message, provider, model string, cause error) *ProviderError {
	return &ProviderError{
		AppError: &AppError{
			Message: message,
			Code:    CodeProvider,
			Context: map[string]any{
				"provider": provider,
				"model":    model,
			},
			Cause: cause,
		},
		Provider: provider,
		Model:    model,
	}
}

type InputError struct {
	*AppError
}

func NewInputError(message string, cause error) *InputError {
	return &InputError{
		AppError: &AppError{
			Message: message,
			Code:    CodeInput,
			Cause:   cause,
		},
	}
}

type ParseError struct {
	*AppError
	Preview string
}

func NewParseError(message, preview string, cause error) *ParseError {
	return &ParseError{
		AppError: &AppError{
			Message: message,
			Code:    CodeParse,
			Context: map[string]any{
				"preview": preview,
			},
			Cause: cause,
		},
		Preview: preview,
	}
}
