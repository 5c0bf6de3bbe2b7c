package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// RetryConfig bounds how often opening a stream is retried.
type RetryConfig struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

type retryClient struct {
	next   Client
	config RetryConfig
	logger *zap.Logger
}

// WithRetry retries transient failures while opening a stream. Once a stream
// has been returned nothing is retried: chunks may already be on the wire.
func WithRetry(next Client, config RetryConfig, logger *zap.Logger) Client {
	if config.MaxTries <= 1 {
		return next
	}
	return &retryClient{next: next, config: config, logger: logger}
}

func (r *retryClient) Model() string {
	return r.next.Model()
}

func (r *retryClient) Stream(ctx context.Context, req Request) (Stream, error) {
	b := backoff.NewExponentialBackOff()
	if r.config.InitialInterval > 0 {
		b.InitialInterval = r.config.InitialInterval
	}
	if r.config.MaxInterval > 0 {
		b.MaxInterval = r.config.MaxInterval
	}

	stream, err := backoff.Retry(ctx, func() (Stream, error) {
		s, err := r.next.Stream(ctx, req)
		if err != nil && !IsRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		return s, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(r.config.MaxTries),
		backoff.WithNotify(func(err error, wait time.Duration) {
			r.logger.Warn("model stream failed, retrying",
				zap.String("model", r.next.Model()),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Unwrap()
		}
		return nil, err
	}
	return stream, nil
}
