package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// New validates cfg and builds the Client for its backend, wrapped with
// WithRetry when cfg.MaxAttempts > 1. Configuration errors are returned
// before any request is made.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		client Client
		err    error
	)
	switch cfg.Backend {
	case BackendDeepSeek, BackendOpenAI, BackendOpenRouter:
		client, err = NewOpenAIClient(cfg)
	case BackendOllama:
		client = NewOllamaClient(cfg)
	case BackendAnthropic:
		client = NewAnthropicClient(cfg)
	case BackendGemini:
		client, err = NewGeminiClient(ctx, cfg)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("model client ready",
		zap.String("backend", string(cfg.Backend)),
		zap.String("model", cfg.Model),
		zap.Int("max_attempts", cfg.MaxAttempts),
	)
	return WithRetry(client, cfg.MaxAttempts, logger), nil
}
