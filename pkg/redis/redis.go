package redis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration.
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Connection retry on startup
	MaxRetries    int
	RetryInterval time.Duration
}

// DefaultConfig returns a configuration suitable for local development.
func DefaultConfig() *Config {
	return &Config{
		Host:          "localhost",
		Port:          6379,
		DB:            0,
		PoolSize:      100,
		MinIdleConns:  10,
		DialTimeout:   5 * time.Second,
		ReadTimeout:   3 * time.Second,
		WriteTimeout:  3 * time.Second,
		MaxRetries:    3,
		RetryInterval: time.Second,
	}
}

// Addr returns the host:port address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Client wraps go-redis with script caching for the slot hold scripts.
type Client struct {
	rdb *redis.Client

	mu      sync.RWMutex
	scripts map[string]string // name -> sha
}

// NewClient connects to Redis, retrying per the config before giving up.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				rdb.Close()
				return nil, ctx.Err()
			case <-time.After(cfg.RetryInterval):
			}
		}
		if lastErr = rdb.Ping(ctx).Err(); lastErr == nil {
			return &Client{rdb: rdb, scripts: make(map[string]string)}, nil
		}
	}

	rdb.Close()
	return nil, fmt.Errorf("redis connect after %d attempts: %w", cfg.MaxRetries+1, lastErr)
}

// Ping checks that the connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// HealthCheck pings Redis with a bounded timeout.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := c.rdb.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("redis health check: %w", err)
	}
	if result != "PONG" {
		return fmt.Errorf("redis health check: unexpected response %q", result)
	}
	return nil
}

// LoadScript loads a Lua script into Redis and caches its SHA under name.
func (c *Client) LoadScript(ctx context.Context, name, script string) (string, error) {
	sha, err := c.rdb.ScriptLoad(ctx, script).Result()
	if err != nil {
		return "", fmt.Errorf("load script %s: %w", name, err)
	}

	c.mu.Lock()
	c.scripts[name] = sha
	c.mu.Unlock()
	return sha, nil
}

// ScriptSHA returns the cached SHA for a loaded script.
func (c *Client) ScriptSHA(name string) (string, bool) {
	c.mu.RLock()
	sha, ok := c.scripts[name]
	c.mu.RUnlock()
	return sha, ok
}

// EvalScript runs a cached script by name via EVALSHA, loading the script
// first (or reloading it after a NOSCRIPT, e.g. when Redis restarted).
func (c *Client) EvalScript(ctx context.Context, name, script string, keys []string, args ...interface{}) *redis.Cmd {
	sha, ok := c.ScriptSHA(name)
	if !ok {
		var err error
		if sha, err = c.LoadScript(ctx, name, script); err != nil {
			cmd := redis.NewCmd(ctx)
			cmd.SetErr(err)
			return cmd
		}
	}

	result := c.rdb.EvalSha(ctx, sha, keys, args...)
	if result.Err() != nil && isNoScriptError(result.Err()) {
		if sha, err := c.LoadScript(ctx, name, script); err == nil {
			return c.rdb.EvalSha(ctx, sha, keys, args...)
		}
	}
	return result
}

func isNoScriptError(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "NOSCRIPT")
}

// Get gets a value by key.
func (c *Client) Get(ctx context.Context, key string) *redis.StringCmd {
	return c.rdb.Get(ctx, key)
}

// Set sets a value with optional expiration.
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	return c.rdb.Set(ctx, key, value, expiration)
}

// SetNX sets a value only if the key does not exist.
func (c *Client) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	return c.rdb.SetNX(ctx, key, value, expiration)
}

// MGet gets multiple values in one round trip.
func (c *Client) MGet(ctx context.Context, keys ...string) *redis.SliceCmd {
	return c.rdb.MGet(ctx, keys...)
}
