package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// instantRetry wraps p with a retrier that records waits instead of sleeping.
func instantRetry(p Provider, attempts int) (Provider, *[]time.Duration) {
	var waits []time.Duration
	r := &retrying{
		inner: p,
		cfg: RetryConfig{
			MaxAttempts: attempts,
			InitialWait: 100 * time.Millisecond,
			MaxWait:     time.Second,
			Multiplier:  2,
		},
		sleep: func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		},
	}
	return r, &waits
}

var okJSON = MockResponse{Content: json.RawMessage(`{"ok":true}`)}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &UnavailableError{Err: errors.New("502")}},
		MockResponse{Err: &RateLimitError{RetryAfter: 3 * time.Second}},
		okJSON,
	)
	p, waits := instantRetry(mock, 3)

	resp, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Content))
	assert.Len(t, mock.Calls(), 3)

	require.Len(t, *waits, 2)
	assert.InDelta(t, float64(100*time.Millisecond), float64((*waits)[0]), float64(20*time.Millisecond))
	assert.Equal(t, 3*time.Second, (*waits)[1], "RetryAfter wins over backoff")
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	down := MockResponse{Err: &UnavailableError{Err: errors.New("down")}}
	mock := NewMockProvider(down, down, down, okJSON)
	p, _ := instantRetry(mock, 3)

	_, err := p.Generate(context.Background(), Request{})
	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Len(t, mock.Calls(), 3)
}

func TestRetryInvalidResponseOnlyOnce(t *testing.T) {
	bad := MockResponse{Err: &InvalidResponseError{Err: errors.New("not json")}}
	mock := NewMockProvider(bad, bad, okJSON)
	p, _ := instantRetry(mock, 5)

	_, err := p.Generate(context.Background(), Request{})
	var invalid *InvalidResponseError
	require.ErrorAs(t, err, &invalid)
	assert.Len(t, mock.Calls(), 2)
}

func TestRetryStopsOnPermanentErrors(t *testing.T) {
	for name, e := range map[string]error{
		"truncated": &TruncatedError{},
		"canceled":  context.Canceled,
		"deadline":  context.DeadlineExceeded,
	} {
		t.Run(name, func(t *testing.T) {
			mock := NewMockProvider(MockResponse{Err: e}, okJSON)
			p, waits := instantRetry(mock, 3)

			_, err := p.Generate(context.Background(), Request{})
			require.ErrorIs(t, err, e)
			assert.Len(t, mock.Calls(), 1)
			assert.Empty(t, *waits)
		})
	}
}

func TestRetryHonoursCancelledContextWhileWaiting(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &UnavailableError{}}, okJSON)
	p := WithRetry(mock, RetryConfig{MaxAttempts: 2, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Generate(ctx, Request{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, mock.Calls(), 1)
}

func TestBackoffIsCapped(t *testing.T) {
	r := &retrying{cfg: RetryConfig{InitialWait: time.Second, MaxWait: 4 * time.Second, Multiplier: 10}}
	for attempt := range 5 {
		d := r.wait(attempt, errors.New("x"))
		assert.LessOrEqual(t, d, time.Duration(float64(4*time.Second)*1.2))
		assert.Positive(t, d)
	}
}
