package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Config configures Do.
type Config struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	RateLimitDelay time.Duration // used when a 429 carries no Retry-After
	Multiplier     float64
	Jitter         bool
	Logger         *zap.Logger
}

// DefaultConfig suits short fire-and-forget REST calls such as webhook posts.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    5,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       10 * time.Second,
		RateLimitDelay: time.Second,
		Multiplier:     2.0,
		Jitter:         true,
	}
}

// FatalError stops Do immediately.
type FatalError struct {
	Err error
}

func (f *FatalError) Error() string { return f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// Fatal marks err as not worth retrying.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// ErrAttemptsExhausted is wrapped by the error Do returns after the last
// attempt failed.
var ErrAttemptsExhausted = errors.New("retry attempts exhausted")

// Do calls fn until it succeeds, returns a fatal error, ctx ends or the
// attempts run out. Discord client errors other than 429 are fatal; 429 waits
// for Retry-After; 5xx and transport errors back off exponentially.
func Do(ctx context.Context, lim *AdaptiveLimiter, cfg Config, fn func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	log := cfg.Logger
	if log == nil {
		log = zap.L()
	}

	delay := cfg.InitialDelay
	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if lim != nil {
			if werr := lim.Wait(ctx); werr != nil {
				return werr
			}
		}

		err = fn()
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			if attempt > 1 {
				log.Debug("request succeeded after retry", zap.Int("attempts", attempt))
			}
			return nil
		}

		var fatal *FatalError
		if errors.As(err, &fatal) {
			return err
		}

		code := StatusCode(err)
		var wait time.Duration
		switch {
		case code == http.StatusTooManyRequests:
			if lim != nil {
				lim.Throttled()
			}
			wait = retryAfter(err, cfg.RateLimitDelay)
			log.Warn("request rate limited", zap.Int("attempt", attempt), zap.Duration("wait", wait))
		case code >= 400 && code < 500:
			return err
		default:
			if code >= 500 && lim != nil {
				lim.Throttled()
			}
			wait = delay
			if cfg.Jitter {
				wait = addJitter(wait)
			}
			log.Warn("request failed", zap.Int("attempt", attempt), zap.Int("status", code), zap.Duration("wait", wait), zap.Error(err))
			delay = min(time.Duration(float64(delay)*cfg.Multiplier), cfg.MaxDelay)
		}

		if attempt == cfg.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, cfg.MaxAttempts, err)
}

// StatusCode extracts the HTTP status of a Discord REST error, or 0.
func StatusCode(err error) int {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		return rest.Response.StatusCode
	}
	return 0
}

func retryAfter(err error, fallback time.Duration) time.Duration {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) || rest.Response == nil {
		return fallback
	}
	if secs, perr := strconv.ParseFloat(rest.Response.Header.Get("Retry-After"), 64); perr == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}

// addJitter adds up to 25% to delay.
func addJitter(delay time.Duration) time.Duration {
	if delay < 4 {
		return delay
	}
	return delay + rand.N(delay/4)
}
