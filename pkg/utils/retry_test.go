package utils_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robalyx/overseer/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errFlood   = errors.New("too many requests: retry after 1")
	errBlocked = errors.New("forbidden: bot was blocked by the user")
)

// fastRetry keeps the backoff short enough for unit tests.
var fastRetry = utils.RetryOptions{
	MaxElapsedTime:  200 * time.Millisecond,
	InitialInterval: 5 * time.Millisecond,
	MaxInterval:     10 * time.Millisecond,
	MaxRetries:      3,
}

func TestWithRetry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		failures  int   // transient failures before the call succeeds
		permanent error // returned on the first call instead, if set
		wantCalls int
		wantErr   error
	}{
		{name: "no failures", failures: 0, wantCalls: 1},
		{name: "recovers after two failures", failures: 2, wantCalls: 3},
		{name: "recovers on last retry", failures: 3, wantCalls: 4},
		{name: "retries exhausted", failures: 10, wantCalls: 4, wantErr: errFlood},
		{name: "permanent error", permanent: errBlocked, wantCalls: 1, wantErr: errBlocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			got, err := utils.WithRetry(t.Context(), func() (string, error) {
				calls++
				if tt.permanent != nil {
					return "", utils.Permanent(tt.permanent)
				}
				if calls <= tt.failures {
					return "", errFlood
				}
				return "sent", nil
			}, fastRetry)

			assert.Equal(t, tt.wantCalls, calls)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "sent", got)
		})
	}
}

func TestWithRetryStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	calls := 0
	_, err := utils.WithRetry(ctx, func() (int, error) {
		calls++
		return 0, errFlood
	}, utils.RetryOptions{
		MaxElapsedTime:  time.Second,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     200 * time.Millisecond,
		MaxRetries:      5,
	})

	require.Error(t, err)
	assert.LessOrEqual(t, calls, 1)
}

func TestGetTelegramRetryOptions(t *testing.T) {
	t.Parallel()

	opts := utils.GetTelegramRetryOptions(5, 250, 4000)

	assert.Equal(t, uint64(5), opts.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, opts.InitialInterval)
	assert.Equal(t, 4*time.Second, opts.MaxInterval)
	assert.Equal(t, 30*time.Second, opts.MaxElapsedTime)
}
