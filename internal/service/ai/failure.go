package ai

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/openai/openai-go/v3"
)

// FailureKind labels a provider error for logging.
type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureRateLimited FailureKind = "rate_limited"
	FailureService     FailureKind = "service"
	FailureTimeout     FailureKind = "timeout"
	FailureCanceled    FailureKind = "canceled"
	FailureRequest     FailureKind = "request"
)

var (
	geminiStatusPattern = regexp.MustCompile(`Error (\d{3}),`)
	geminiCodePattern   = regexp.MustCompile(`"code":\s*(\d{3})`)
	leadingCodePattern  = regexp.MustCompile(`^(\d{3})\s`)
)

// ClassifyFailure maps an error to a FailureKind. Unknown errors are FailureRequest.
func ClassifyFailure(err error) FailureKind {
	if err == nil {
		return FailureNone
	}

	switch {
	case errors.Is(err, context.Canceled):
		return FailureCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return kindForStatus(apiErr.StatusCode)
	}

	msg := err.Error()
	if code, ok := statusFromMessage(msg); ok {
		return kindForStatus(code)
	}

	if strings.Contains(msg, "timeout") || strings.Contains(msg, "ETIMEDOUT") {
		return FailureTimeout
	}
	if strings.Contains(msg, "Rate limit") || strings.Contains(msg, "quota") {
		return FailureRateLimited
	}
	return FailureRequest
}

func kindForStatus(code int) FailureKind {
	switch {
	case code == 429:
		return FailureRateLimited
	case code >= 500 && code < 600:
		return FailureService
	default:
		return FailureRequest
	}
}

func statusFromMessage(msg string) (int, bool) {
	for _, pattern := range []*regexp.Regexp{geminiStatusPattern, geminiCodePattern, leadingCodePattern} {
		if matches := pattern.FindStringSubmatch(msg); len(matches) > 1 {
			if code, err := strconv.Atoi(matches[1]); err == nil {
				return code, true
			}
		}
	}
	return 0, false
}
