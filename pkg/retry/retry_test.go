package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:      maxRetries,
		InitialInterval: 5 * time.Millisecond,
		MaxInterval:     50 * time.Millisecond,
		Multiplier:      2.0,
		JitterFactor:    0,
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.InitialInterval != time.Second {
		t.Errorf("InitialInterval = %v, want 1s", cfg.InitialInterval)
	}
	if cfg.MaxInterval != 30*time.Second {
		t.Errorf("MaxInterval = %v, want 30s", cfg.MaxInterval)
	}
	if cfg.Multiplier != 2.0 {
		t.Errorf("Multiplier = %v, want 2.0", cfg.Multiplier)
	}
}

func TestDo_Success(t *testing.T) {
	attempts := 0
	result := Do(context.Background(), fastConfig(3), func(ctx context.Context) error {
		attempts++
		return nil
	})

	if result.Err != nil {
		t.Errorf("Err = %v, want nil", result.Err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if result.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Attempts)
	}
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	attempts := 0
	result := Do(context.Background(), fastConfig(5), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if result.Err != nil {
		t.Errorf("Err = %v, want nil", result.Err)
	}
	if result.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", result.Attempts)
	}
}

func TestDo_MaxRetriesExceeded(t *testing.T) {
	opErr := errors.New("still failing")
	attempts := 0
	result := Do(context.Background(), fastConfig(2), func(ctx context.Context) error {
		attempts++
		return opErr
	})

	if !errors.Is(result.Err, ErrMaxRetriesExceeded) {
		t.Errorf("Err = %v, want ErrMaxRetriesExceeded", result.Err)
	}
	if !errors.Is(result.LastError, opErr) {
		t.Errorf("LastError = %v, want %v", result.LastError, opErr)
	}
	// Initial attempt plus 2 retries.
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDo_ZeroRetries(t *testing.T) {
	attempts := 0
	result := Do(context.Background(), fastConfig(0), func(ctx context.Context) error {
		attempts++
		return errors.New("fail")
	})

	if !errors.Is(result.Err, ErrMaxRetriesExceeded) {
		t.Errorf("Err = %v, want ErrMaxRetriesExceeded", result.Err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestDo_PermanentError(t *testing.T) {
	permErr := errors.New("bad request")
	attempts := 0
	result := Do(context.Background(), fastConfig(5), func(ctx context.Context) error {
		attempts++
		return Permanent(permErr)
	})

	if !errors.Is(result.Err, permErr) {
		t.Errorf("Err = %v, want %v", result.Err, permErr)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 for a permanent error", attempts)
	}
}

func TestDo_ContextAlreadyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	result := Do(ctx, fastConfig(3), func(ctx context.Context) error {
		attempts++
		return errors.New("fail")
	})

	if !errors.Is(result.Err, ErrContextCanceled) {
		t.Errorf("Err = %v, want ErrContextCanceled", result.Err)
	}
	if attempts != 0 {
		t.Errorf("attempts = %d, want 0 when context is already canceled", attempts)
	}
}

func TestDo_ContextCanceledDuringBackoff(t *testing.T) {
	cfg := &Config{
		MaxRetries:      5,
		InitialInterval: 5 * time.Second,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	result := Do(ctx, cfg, func(ctx context.Context) error {
		return errors.New("fail")
	})

	if !errors.Is(result.Err, ErrContextCanceled) {
		t.Errorf("Err = %v, want ErrContextCanceled", result.Err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Do took %v, expected early exit during backoff", elapsed)
	}
	if result.LastError == nil {
		t.Error("LastError should carry the attempt error")
	}
}

func TestDo_NilConfigUsesDefaults(t *testing.T) {
	result := Do(context.Background(), nil, func(ctx context.Context) error {
		return nil
	})

	if result.Err != nil {
		t.Errorf("Err = %v, want nil", result.Err)
	}
}

func TestPermanent(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should return nil")
	}

	base := errors.New("base")
	wrapped := Permanent(base)

	var permErr *PermanentError
	if !errors.As(wrapped, &permErr) {
		t.Fatal("Permanent should wrap in *PermanentError")
	}
	if !errors.Is(wrapped, base) {
		t.Error("Permanent should unwrap to the base error")
	}
	if wrapped.Error() != "base" {
		t.Errorf("Error() = %s, want base", wrapped.Error())
	}
}

func TestBackoffInterval(t *testing.T) {
	cfg := (&Config{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2.0,
		JitterFactor:    0,
	}).normalized()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, time.Second}, // capped
		{10, time.Second},
	}

	for _, tt := range tests {
		if got := backoffInterval(cfg, tt.attempt); got != tt.want {
			t.Errorf("backoffInterval(attempt=%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoffInterval_Jitter(t *testing.T) {
	cfg := (&Config{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.5,
	}).normalized()

	for i := 0; i < 100; i++ {
		got := backoffInterval(cfg, 0)
		if got < 50*time.Millisecond || got > 150*time.Millisecond {
			t.Fatalf("backoffInterval with 50%% jitter = %v, want within [50ms, 150ms]", got)
		}
	}
}

func TestConfig_Normalized(t *testing.T) {
	cfg := (&Config{JitterFactor: 2}).normalized()

	if cfg.InitialInterval != time.Second {
		t.Errorf("InitialInterval = %v, want 1s default", cfg.InitialInterval)
	}
	if cfg.MaxInterval != 30*time.Second {
		t.Errorf("MaxInterval = %v, want 30s default", cfg.MaxInterval)
	}
	if cfg.Multiplier != 2.0 {
		t.Errorf("Multiplier = %v, want 2.0 default", cfg.Multiplier)
	}
	if cfg.JitterFactor != 1 {
		t.Errorf("JitterFactor = %v, want clamped to 1", cfg.JitterFactor)
	}
}
