package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

var (
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
	ErrContextCanceled    = errors.New("context canceled during retry")
)

// Config controls exponential backoff between attempts.
type Config struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int
	// InitialInterval is the first backoff interval.
	InitialInterval time.Duration
	// MaxInterval caps the backoff interval.
	MaxInterval time.Duration
	// Multiplier grows the interval after each retry.
	Multiplier float64
	// JitterFactor in [0,1] randomizes each interval by that fraction.
	JitterFactor float64
}

// DefaultConfig retries 5 times with 1s..30s exponential backoff.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:      5,
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

func (c *Config) normalized() *Config {
	out := *c
	if out.InitialInterval <= 0 {
		out.InitialInterval = time.Second
	}
	if out.MaxInterval <= 0 {
		out.MaxInterval = 30 * time.Second
	}
	if out.Multiplier <= 0 {
		out.Multiplier = 2.0
	}
	if out.JitterFactor < 0 {
		out.JitterFactor = 0
	}
	if out.JitterFactor > 1 {
		out.JitterFactor = 1
	}
	return &out
}

// Operation is the function to be retried.
type Operation func(ctx context.Context) error

// PermanentError wraps an error that must not be retried.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks an error as permanent so Do stops immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Result describes the outcome of a retried operation.
type Result struct {
	// Err is nil on success, the permanent error, ErrMaxRetriesExceeded,
	// or ErrContextCanceled.
	Err error
	// Attempts counts all attempts including the first.
	Attempts int
	// TotalDuration includes backoff waits.
	TotalDuration time.Duration
	// LastError is the error returned by the final attempt.
	LastError error
}

// Do runs op, retrying with exponential backoff per config until it
// succeeds, returns a permanent error, exhausts the retries, or the
// context ends.
func Do(ctx context.Context, config *Config, op Operation) *Result {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := config.normalized()

	start := time.Now()
	result := &Result{}
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result.Attempts = attempt + 1

		if ctx.Err() != nil {
			result.Err = ErrContextCanceled
			break
		}

		err := op(ctx)
		if err == nil {
			result.TotalDuration = time.Since(start)
			return result
		}
		lastErr = err

		var permErr *PermanentError
		if errors.As(err, &permErr) {
			result.Err = permErr.Err
			lastErr = permErr.Err
			break
		}

		if attempt == cfg.MaxRetries {
			result.Err = ErrMaxRetriesExceeded
			break
		}

		select {
		case <-ctx.Done():
			result.Err = ErrContextCanceled
			result.LastError = lastErr
			result.TotalDuration = time.Since(start)
			return result
		case <-time.After(backoffInterval(cfg, attempt)):
		}
	}

	result.LastError = lastErr
	result.TotalDuration = time.Since(start)
	return result
}

// backoffInterval is initial * multiplier^attempt with jitter, capped at
// MaxInterval.
func backoffInterval(cfg *Config, attempt int) time.Duration {
	interval := float64(cfg.InitialInterval) * math.Pow(cfg.Multiplier, float64(attempt))

	if cfg.JitterFactor > 0 {
		jitter := interval * cfg.JitterFactor
		interval += (rand.Float64()*2 - 1) * jitter
	}

	if interval > float64(cfg.MaxInterval) {
		interval = float64(cfg.MaxInterval)
	}
	if interval < 0 {
		interval = float64(cfg.InitialInterval)
	}
	return time.Duration(interval)
}
