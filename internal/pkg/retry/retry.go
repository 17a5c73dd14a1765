package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 3
	defaultDelay    = 500 * time.Millisecond
	defaultMaxDelay = 5 * time.Second
)

type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"1"`
	Delay    time.Duration `env:"DELAY" envDefault:"500ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"5s"`
}

// ToRetryOptions builds retry-go options; errors for which retryable returns false stop immediately
func (rc *RetryConfig) ToRetryOptions(ctx context.Context, retryable func(error) bool) []retry.Option {
	attempts := rc.Attempts
	if attempts == 0 {
		attempts = 1
	}

	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(rc.Delay),
		retry.MaxDelay(rc.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	}
	if retryable != nil {
		opts = append(opts, retry.RetryIf(retryable))
	}

	return opts
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}

// Do runs fn under the retry policy and returns its value
func Do[T any](ctx context.Context, rc *RetryConfig, retryable func(error) bool, fn func() (T, error)) (T, error) {
	if rc == nil {
		rc = DefaultRetryConfig()
	}
	return retry.DoWithData(fn, rc.ToRetryOptions(ctx, retryable)...)
}
