package llm

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
)

// ResilienceConfig bounds the retries and total time of a call.
type ResilienceConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Timeout      time.Duration
}

// DefaultResilience retries once and gives up after a minute.
var DefaultResilience = ResilienceConfig{
	MaxAttempts:  2,
	InitialDelay: time.Second,
	Timeout:      60 * time.Second,
}

// ResilientClient retries failed completions with exponential backoff inside
// an overall timeout.
type ResilientClient struct {
	inner Client
	cfg   ResilienceConfig
}

func NewResilientClient(inner Client, cfg ResilienceConfig) *ResilientClient {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultResilience.MaxAttempts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultResilience.Timeout
	}
	return &ResilientClient{inner: inner, cfg: cfg}
}

func (c *ResilientClient) Complete(ctx context.Context, req Request) (string, error) {
	r := retry.New[string](retry.Config{
		MaxAttempts:   c.cfg.MaxAttempts,
		InitialDelay:  c.cfg.InitialDelay,
		BackoffPolicy: retry.BackoffExponential,
	})
	t := timeout.New[string](timeout.Config{
		DefaultTimeout: c.cfg.Timeout,
	})

	return t.Execute(ctx, c.cfg.Timeout, func(ctx context.Context) (string, error) {
		return r.Do(ctx, func(ctx context.Context) (string, error) {
			return c.inner.Complete(ctx, req)
		})
	})
}
