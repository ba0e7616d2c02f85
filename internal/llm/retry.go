package llm

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// IsTransient reports whether err is worth another attempt: transport
// failures, rate limiting and server-side errors. Cancellation, configuration
// errors and 4xx answers are final.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrMissingCredentials) || errors.Is(err, ErrUnknownBackend) {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Transient()
	}
	var ne net.Error
	return errors.As(err, &ne)
}

type retryClient struct {
	next     Client
	attempts int
	logger   *zap.Logger
	initial  time.Duration
	max      time.Duration
}

// WithRetry wraps c so that transient failures are retried with exponential
// backoff, up to attempts tries in total. attempts <= 1 returns c unchanged.
func WithRetry(c Client, attempts int, logger *zap.Logger) Client {
	if attempts <= 1 {
		return c
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &retryClient{
		next:     c,
		attempts: attempts,
		logger:   logger,
		initial:  500 * time.Millisecond,
		max:      10 * time.Second,
	}
}

func (r *retryClient) Invoke(ctx context.Context, messages []Message) (string, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.initial
	eb.MaxInterval = r.max
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(r.attempts-1)), ctx)

	var out string
	attempt := 0
	op := func() error {
		attempt++
		text, err := r.next.Invoke(ctx, messages)
		if err != nil {
			if !IsTransient(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		out = text
		return nil
	}
	notify := func(err error, wait time.Duration) {
		r.logger.Warn("model call failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.attempts),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return "", err
	}
	return out, nil
}
