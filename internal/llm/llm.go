// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm sends single-turn prompts to a hosted chat-completion API.
// Backends (OpenAI, Anthropic) implement Client so callers and tests can
// swap them freely.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/pkg/types"
)

var (
	// ErrMissingAPIKey is returned by New when no key is configured.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrEmptyResponse is returned when the model reply has no text.
	ErrEmptyResponse = errors.New("empty response from model")
)

// DefaultAnthropicModel replaces the OpenAI default model name when the
// Anthropic provider is selected without an explicit model.
const DefaultAnthropicModel = "claude-sonnet-4-5"

// Request is one prompt with its sampling settings.
type Request struct {
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Client completes a prompt and returns the trimmed reply text.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// New returns the client for cfg.Provider.
func New(cfg types.AIConfig) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%s: %w", providerName(cfg.Provider), ErrMissingAPIKey)
	}

	switch cfg.Provider {
	case "", types.ProviderOpenAI:
		return NewOpenAI(cfg), nil
	case types.ProviderAnthropic:
		return NewAnthropic(cfg), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

func providerName(p types.AIProvider) string {
	if p == "" {
		return string(types.ProviderOpenAI)
	}
	return string(p)
}

// reply trims text and maps an empty reply to ErrEmptyResponse.
func reply(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// loggingClient wraps a Client and records each call.
type loggingClient struct {
	next Client
	log  *zap.Logger
}

// WithLogging returns a Client that logs model, prompt size, latency, and
// failures of every call made through c.
func WithLogging(c Client, log *zap.Logger) Client {
	if log == nil {
		return c
	}
	return &loggingClient{next: c, log: log}
}

func (l *loggingClient) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := l.next.Complete(ctx, req)
	fields := []zap.Field{
		zap.String("model", req.Model),
		zap.Int("prompt_chars", len(req.Prompt)),
		zap.Int("max_tokens", req.MaxTokens),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		l.log.Warn("completion failed", append(fields, zap.Error(err))...)
		return "", err
	}
	l.log.Debug("completion", append(fields, zap.Int("reply_chars", len(out)))...)
	return out, nil
}
