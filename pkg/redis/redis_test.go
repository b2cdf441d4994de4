package redis

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Host != "localhost" {
		t.Errorf("Host = %s, want localhost", cfg.Host)
	}
	if cfg.Port != 6379 {
		t.Errorf("Port = %d, want 6379", cfg.Port)
	}
	if cfg.PoolSize != 100 {
		t.Errorf("PoolSize = %d, want 100", cfg.PoolSize)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
}

func TestConfig_Addr(t *testing.T) {
	cfg := &Config{Host: "redis.internal", Port: 6380}

	if got := cfg.Addr(); got != "redis.internal:6380" {
		t.Errorf("Addr() = %s, want redis.internal:6380", got)
	}
}

func TestNewClient_ConnectFailure(t *testing.T) {
	cfg := &Config{
		Host:          "127.0.0.1",
		Port:          1, // nothing listens here
		MaxRetries:    1,
		RetryInterval: 10 * time.Millisecond,
		DialTimeout:   200 * time.Millisecond,
	}

	client, err := NewClient(context.Background(), cfg)
	if err == nil {
		client.Close()
		t.Fatal("Expected connection error")
	}
}

func TestNewClient_ContextCanceledDuringRetry(t *testing.T) {
	cfg := &Config{
		Host:          "127.0.0.1",
		Port:          1,
		MaxRetries:    10,
		RetryInterval: time.Second,
		DialTimeout:   100 * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := NewClient(ctx, cfg)
	if err == nil {
		t.Fatal("Expected error")
	}
	// Should bail out on cancel instead of sleeping through all retries.
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("NewClient took %v, expected early exit on cancel", elapsed)
	}
}

func TestScriptSHA_NotLoaded(t *testing.T) {
	client := &Client{scripts: make(map[string]string)}

	if _, ok := client.ScriptSHA("missing"); ok {
		t.Error("ScriptSHA should miss for a script that was never loaded")
	}
}

func TestIsNoScriptError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"noscript", errors.New("NOSCRIPT No matching script. Please use EVAL."), true},
		{"bare noscript", errors.New("NOSCRIPT"), true},
		{"other error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNoScriptError(tt.err); got != tt.want {
				t.Errorf("isNoScriptError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
