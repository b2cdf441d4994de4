package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "algus-turf", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)

	assert.Equal(t, "turf_db", cfg.Database.DBName)
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)

	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "turf-booking-events", cfg.Kafka.Topic)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)

	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenTTL)
	assert.False(t, cfg.OTel.Enabled)

	assert.Equal(t, 10*time.Minute, cfg.Booking.PaymentTimeout)
	assert.False(t, cfg.Booking.SharedField)
	assert.Equal(t, 30*time.Second, cfg.Booking.TimeoutScanInterval)
	assert.Equal(t, 100, cfg.Booking.TimeoutBatchSize)

	assert.Equal(t, "mock", cfg.Payment.Gateway)
	assert.Equal(t, "inr", cfg.Payment.Currency)
	assert.Equal(t, 1.0, cfg.Payment.MockSuccessRate)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("BOOKING_PAYMENT_TIMEOUT", "5m")
	t.Setenv("BOOKING_SHARED_FIELD", "true")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Booking.PaymentTimeout)
	assert.True(t, cfg.Booking.SharedField)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := &DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "turf",
		Password: "secret",
		DBName:   "turf_db",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=turf password=secret dbname=turf_db sslmode=require",
		d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	r := &RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", r.Addr())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:     AppConfig{Name: "algus-turf", Environment: "development"},
			Server:  ServerConfig{Port: 8080},
			JWT:     JWTConfig{Secret: "dev-secret"},
			Booking: BookingConfig{PaymentTimeout: 10 * time.Minute},
			Payment: PaymentConfig{Gateway: "mock"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing app name",
			mutate:  func(c *Config) { c.App.Name = "" },
			wantErr: "app name is required",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.JWT.Secret = "" },
			wantErr: "JWT secret is required",
		},
		{
			name: "default jwt secret in production",
			mutate: func(c *Config) {
				c.App.Environment = "production"
				c.JWT.Secret = "your-secret-key-change-in-production"
			},
			wantErr: "JWT secret must be changed in production",
		},
		{
			name:    "zero payment timeout",
			mutate:  func(c *Config) { c.Booking.PaymentTimeout = 0 },
			wantErr: "payment timeout must be positive",
		},
		{
			name:    "stripe without key",
			mutate:  func(c *Config) { c.Payment.Gateway = "stripe" },
			wantErr: "stripe secret key is required",
		},
		{
			name: "stripe with key",
			mutate: func(c *Config) {
				c.Payment.Gateway = "stripe"
				c.Payment.StripeSecretKey = "sk_test_123"
			},
		},
		{
			name:    "unknown gateway",
			mutate:  func(c *Config) { c.Payment.Gateway = "paypal" },
			wantErr: "unknown payment gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
