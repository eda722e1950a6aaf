package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		DatabaseURL:        "postgres://localhost/evdash",
		HTTPPort:           5050,
		HealthPort:         8080,
		HealthCheckEnabled: true,
		CacheConfig: CacheConfig{
			Backend: CacheBackendNone,
			TTL:     time.Minute,
		},
		RateLimitConfig: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 10,
			Burst:             20,
		},
		SeedSource: "data/ElectricCarData.csv",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing database url",
			modify:  func(c *Config) { c.DatabaseURL = " " },
			wantErr: true,
		},
		{
			name:    "invalid http port",
			modify:  func(c *Config) { c.HTTPPort = 70000 },
			wantErr: true,
		},
		{
			name:    "invalid health port",
			modify:  func(c *Config) { c.HealthPort = 0 },
			wantErr: true,
		},
		{
			name: "invalid health port ignored when disabled",
			modify: func(c *Config) {
				c.HealthCheckEnabled = false
				c.HealthPort = 0
			},
			wantErr: false,
		},
		{
			name:    "unknown cache backend",
			modify:  func(c *Config) { c.CacheConfig.Backend = "memcached" },
			wantErr: true,
		},
		{
			name:    "redis without address",
			modify:  func(c *Config) { c.CacheConfig.Backend = CacheBackendRedis },
			wantErr: true,
		},
		{
			name: "memory cache without ttl",
			modify: func(c *Config) {
				c.CacheConfig.Backend = CacheBackendMemory
				c.CacheConfig.TTL = 0
			},
			wantErr: true,
		},
		{
			name:    "non-positive rate",
			modify:  func(c *Config) { c.RateLimitConfig.RequestsPerSecond = 0 },
			wantErr: true,
		},
		{
			name: "rate ignored when disabled",
			modify: func(c *Config) {
				c.RateLimitConfig.Enabled = false
				c.RateLimitConfig.Burst = 0
			},
			wantErr: false,
		},
		{
			name:    "s3 source without endpoint",
			modify:  func(c *Config) { c.SeedSource = "s3://datasets/cars.csv" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("APP_DATA_DIR", "testdata")
		t.Setenv("DB_DSN", "")
		t.Setenv("TRUST_PROXY_HEADERS", "")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 5050, cfg.HTTPPort)
		assert.Equal(t, "0.0.0.0:5050", cfg.HTTPAddr())
		assert.Equal(t, "testdata/ElectricCarData.csv", cfg.SeedSource)
		assert.Equal(t, CacheBackendNone, cfg.CacheConfig.Backend)
		assert.Equal(t, 5*time.Minute, cfg.CacheConfig.TTL)
		assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
		assert.Contains(t, cfg.DatabaseURL, "postgres://")
		assert.False(t, cfg.UsesMemoryStore())
		assert.False(t, cfg.TrustProxyHeaders)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("DB_DSN", "MEMORY")
		t.Setenv("HTTP_PORT", "9000")
		t.Setenv("CACHE_BACKEND", "Redis")
		t.Setenv("REDIS_ADDR", "localhost:6379")
		t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, http://127.0.0.1:3000,")
		t.Setenv("RATE_LIMIT_RPS", "2.5")
		t.Setenv("TRUST_PROXY_HEADERS", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.True(t, cfg.UsesMemoryStore())
		assert.Equal(t, 9000, cfg.HTTPPort)
		assert.Equal(t, CacheBackendRedis, cfg.CacheConfig.Backend)
		assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORSAllowedOrigins)
		assert.Equal(t, 2.5, cfg.RateLimitConfig.RequestsPerSecond)
		assert.True(t, cfg.TrustProxyHeaders)
	})

	t.Run("invalid override", func(t *testing.T) {
		t.Setenv("CACHE_BACKEND", "redis")
		t.Setenv("REDIS_ADDR", "")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("malformed numbers fall back to defaults", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "not-a-port")
		t.Setenv("SHUTDOWN_TIMEOUT", "soon")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 5050, cfg.HTTPPort)
		assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	})
}
