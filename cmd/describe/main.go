package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/akiasu-sonino/vt-present-describe-go/internal/config"
	"github.com/akiasu-sonino/vt-present-describe-go/internal/domain"
	"github.com/akiasu-sonino/vt-present-describe-go/internal/prompt"
	"github.com/akiasu-sonino/vt-present-describe-go/internal/service/ai"
	"github.com/akiasu-sonino/vt-present-describe-go/internal/util"
	apperrors "github.com/akiasu-sonino/vt-present-describe-go/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run reads one payload from stdin and writes one result object to stdout.
// The exit code is non-zero only for configuration and input failures.
func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	provider, err := ai.NewProvider(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to create AI provider", zap.String("provider", cfg.Provider), zap.Error(err))
		fmt.Fprintf(stderr, "Failed to create AI provider: %v\n", err)
		return 1
	}

	payload, err := readPayload(stdin)
	if err != nil {
		logger.Error("Failed to read payload", zap.Error(err))
		fmt.Fprintf(stderr, "Failed to read payload: %v\n", err)
		if writeErr := writeResult(stdout, domain.EmptyProfile()); writeErr != nil {
			logger.Error("Failed to write result", zap.Error(writeErr))
		}
		return 1
	}

	logger.Debug("Payload loaded",
		zap.String("name", payload.Name),
		zap.Int("channel_desc_length", len(payload.ChannelDesc)),
	)

	generator := ai.NewProfileGenerator(provider, logger,
		ai.WithRateLimitWait(cfg.Generation.RateLimitWait),
		ai.WithPromptStyle(prompt.Style(cfg.Generation.PromptStyle)),
	)

	profile := generator.Generate(ctx, payload)

	if err := writeResult(stdout, profile); err != nil {
		logger.Error("Failed to write result", zap.Error(err))
		return 1
	}
	return 0
}

func readPayload(r io.Reader) (domain.ChannelPayload, error) {
	var payload domain.ChannelPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return domain.ChannelPayload{}, apperrors.NewInputError("invalid JSON payload on stdin", err)
	}
	return payload, nil
}

// writeResult emits the profile without HTML escaping and without a trailing newline.
func writeResult(w io.Writer, profile domain.GeneratedProfile) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(profile); err != nil {
		return err
	}

	_, err := w.Write(bytes.TrimRight(buf.Bytes(), "\n"))
	return err
}
