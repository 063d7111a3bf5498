package retrylimit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func restError(code int, header http.Header) error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: code, Header: header}}
}

func fastConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   time.Millisecond,
		MaxDelay:       2 * time.Millisecond,
		RateLimitDelay: time.Millisecond,
		Multiplier:     2,
		Logger:         zap.NewNop(),
	}
}

func TestDoRetriesServerErrors(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, fastConfig(), func() error {
		calls++
		if calls < 3 {
			return restError(http.StatusBadGateway, nil)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnClientError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, fastConfig(), func() error {
		calls++
		return restError(http.StatusNotFound, nil)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestDoStopsOnFatal(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := Do(context.Background(), nil, fastConfig(), func() error {
		calls++
		return Fatal(boom)
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("connection reset")
	err := Do(context.Background(), nil, fastConfig(), func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, ErrAttemptsExhausted)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestDoRateLimitedThrottlesLimiter(t *testing.T) {
	lim := NewAdaptiveLimiter(10, 1, 20, 1, 0.5)
	calls := 0
	err := Do(context.Background(), lim, fastConfig(), func() error {
		calls++
		if calls == 1 {
			return restError(http.StatusTooManyRequests, http.Header{"Retry-After": []string{"0.001"}})
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 5.0, lim.Limit())
}

func TestDoHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig()
	cfg.InitialDelay = time.Hour
	cfg.MaxDelay = time.Hour

	calls := 0
	err := Do(ctx, nil, cfg, func() error {
		calls++
		cancel()
		return errors.New("temporary")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestLimiterBounds(t *testing.T) {
	lim := NewAdaptiveLimiter(50, 2, 10, 5, 0.1)
	assert.Equal(t, 10.0, lim.Limit())

	lim.Throttled()
	assert.Equal(t, 2.0, lim.Limit())

	lim.Success()
	assert.Equal(t, 2.0, lim.Limit(), "no increase inside the cooldown")
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, retryAfter(restError(429, http.Header{"Retry-After": []string{"1.5"}}), time.Second))
	assert.Equal(t, time.Second, retryAfter(restError(429, http.Header{}), time.Second))
	assert.Equal(t, time.Second, retryAfter(errors.New("x"), time.Second))
}
