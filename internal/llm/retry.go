package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

type retrying struct {
	inner Provider
	cfg   RetryConfig
	sleep func(context.Context, time.Duration) error
}

// WithRetry retries transient failures with jittered exponential backoff.
// Rate limits and unavailable providers are retried up to cfg.MaxAttempts;
// an invalid response is retried once; truncation and context errors are
// returned immediately.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &retrying{inner: p, cfg: cfg, sleep: sleepCtx}
}

func (r *retrying) ModelID() string { return r.inner.ModelID() }

func (r *retrying) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.cfg.MaxAttempts, 1)
	reshaped := false

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		var resp *Response
		resp, err = r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !retryable(err, &reshaped) || attempt == attempts-1 {
			return nil, err
		}
		if serr := r.sleep(ctx, r.wait(attempt, err)); serr != nil {
			return nil, serr
		}
	}
	return nil, err
}

// retryable reports whether err is worth another attempt. reshaped tracks
// whether the single invalid-response retry has been used.
func retryable(err error, reshaped *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var truncated *TruncatedError
	if errors.As(err, &truncated) {
		return false
	}
	var invalid *InvalidResponseError
	if errors.As(err, &invalid) {
		if *reshaped {
			return false
		}
		*reshaped = true
	}
	return true
}

func (r *retrying) wait(attempt int, err error) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	d := float64(r.cfg.InitialWait)
	for range attempt {
		d *= r.cfg.Multiplier
	}
	d = min(d, float64(r.cfg.MaxWait))
	d *= 0.8 + 0.4*rand.Float64()
	return time.Duration(d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
