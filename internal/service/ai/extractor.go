package ai

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/akiasu-sonino/vt-present-describe-go/internal/constants"
	"github.com/akiasu-sonino/vt-present-describe-go/internal/domain"
	"github.com/akiasu-sonino/vt-present-describe-go/internal/util"
	apperrors "github.com/akiasu-sonino/vt-present-describe-go/pkg/errors"
)

var codeFencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// StripCodeFence trims text and, when it opens with a ``` marker, returns the
// trimmed body of the first fenced block. Text without a leading marker, or
// with no closing fence, comes back trimmed but otherwise unchanged.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	matches := codeFencePattern.FindStringSubmatch(trimmed)
	if len(matches) < 2 {
		return trimmed
	}
	return strings.TrimSpace(matches[1])
}

// ExtractProfile parses a completion into a profile. It never fails: any
// parse problem yields domain.EmptyProfile and a debug log entry.
func ExtractProfile(raw string, logger *zap.Logger) domain.GeneratedProfile {
	if logger == nil {
		logger = zap.NewNop()
	}

	text := StripCodeFence(raw)
	logger.Debug("Unfenced completion", zap.String("text", text))

	profile, err := decodeProfile(text)
	if err != nil {
		logger.Debug("JSON parse failed", zap.Error(err))
		return domain.EmptyProfile()
	}
	return profile
}

func decodeProfile(text string) (domain.GeneratedProfile, error) {
	preview := util.TruncateString(text, constants.LogLimits.ResponsePreview)

	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.UseNumber()

	var data map[string]any
	if err := decoder.Decode(&data); err != nil {
		return domain.GeneratedProfile{}, apperrors.NewParseError("invalid JSON", preview, err)
	}
	if _, err := decoder.Token(); err != io.EOF {
		return domain.GeneratedProfile{}, apperrors.NewParseError("trailing data after JSON object", preview, err)
	}
	if data == nil {
		return domain.GeneratedProfile{}, apperrors.NewParseError("completion is not a JSON object", preview, nil)
	}

	description := strings.TrimSpace(coerceString(data["description"]))
	description = util.CollapseNewlines(description)

	tags := []string{}
	if items, ok := data["tags"].([]any); ok {
		for _, item := range items {
			value, ok := scalarString(item)
			if !ok {
				continue
			}
			if tag := strings.TrimSpace(value); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	return domain.GeneratedProfile{Description: description, Tags: tags}, nil
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}

// scalarString reports false for null, arrays and objects.
func scalarString(value any) (string, bool) {
	switch value.(type) {
	case nil, []any, map[string]any:
		return "", false
	default:
		return coerceString(value), true
	}
}
