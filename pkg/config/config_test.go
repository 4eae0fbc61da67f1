package config

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupstay/pkg/logger"
)

func validConfig() *Config {
	return &Config{
		Port:              DefaultPort,
		RateLimitRequests: DefaultRateLimitRequests,
		RateLimitWindow:   DefaultRateLimitWindow,
		RequestTimeout:    DefaultRequestTimeout,
		IdempotencyTTL:    DefaultIdempotencyTTL,
		MaxRequestSize:    DefaultMaxRequestSize,
		ReadTimeout:       DefaultReadTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		ShutdownTimeout:   DefaultShutdownTimeout,
		DefaultScope:      DefaultDefaultScope,
		AlertLogCap:       DefaultAlertLogCap,
		AlertListLimit:    DefaultAlertListLimit,
		StoreDriver:       DefaultStoreDriver,
		Log:               logger.New(logger.Config{Output: io.Discard}),
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Port = "http" }, "Port must be between"},
		{"unknown driver", func(c *Config) { c.StoreDriver = "redis" }, "StoreDriver must be one of"},
		{"postgres without url", func(c *Config) { c.StoreDriver = DriverPostgres }, "PostgresURL cannot be empty"},
		{"postgres bad scheme", func(c *Config) {
			c.StoreDriver = DriverPostgres
			c.PostgresURL = "mysql://u:p@db/x"
		}, "PostgresURL must start with"},
		{"mongo bad uri", func(c *Config) {
			c.StoreDriver = DriverMongo
			c.MongoURI = "localhost:27017"
			c.MongoDatabaseName = "groupstay"
			c.MongoConnTimeout = time.Second
		}, "MongoURI must start with"},
		{"s3 without bucket", func(c *Config) { c.StoreDriver = DriverS3 }, "S3Bucket cannot be empty"},
		{"list limit above cap", func(c *Config) { c.AlertListLimit = 500 }, "AlertListLimit (500)"},
		{"kafka without topic", func(c *Config) { c.KafkaEnabled = true }, "KafkaAlertsTopic cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_NumbersEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "0"
	cfg.DefaultScope = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1. Port")
	assert.Contains(t, err.Error(), "2. DefaultScope")
}

func TestNormalizeAlertLimit(t *testing.T) {
	assert.Equal(t, 50, NormalizeAlertLimit(0, 50))
	assert.Equal(t, 50, NormalizeAlertLimit(-3, 50))
	assert.Equal(t, 7, NormalizeAlertLimit(7, 50))
	assert.Equal(t, MaxAlertListLimit, NormalizeAlertLimit(1000, 50))
}

func TestRedaction(t *testing.T) {
	assert.Equal(t, "mongodb://***:***@db:27017", redactMongoURI("mongodb://admin:hunter2@db:27017"))
	assert.NotContains(t, redactURL("postgres://app:hunter2@db/groupstay"), "hunter2")
	assert.Empty(t, redactURL(""))
}

func TestEnvGetters(t *testing.T) {
	t.Setenv("GROUPSTAY_TEST_NUM", "12")
	t.Setenv("GROUPSTAY_TEST_BAD_NUM", "twelve")
	t.Setenv("GROUPSTAY_TEST_DURATION", "90s")
	t.Setenv("GROUPSTAY_TEST_BOOL", "true")

	assert.Equal(t, 12, getEnvNum("GROUPSTAY_TEST_NUM", 1))
	assert.Equal(t, 1, getEnvNum("GROUPSTAY_TEST_BAD_NUM", 1))
	assert.Equal(t, 90*time.Second, getEnvDuration("GROUPSTAY_TEST_DURATION", time.Second))
	assert.True(t, getEnvBool("GROUPSTAY_TEST_BOOL", false))
	assert.Equal(t, "fallback", getEnvStr("GROUPSTAY_TEST_UNSET", "fallback"))
}

func TestParseEnv(t *testing.T) {
	var target struct {
		Endpoint string        `env:"GROUPSTAY_TEST_ENDPOINT"`
		Timeout  time.Duration `env:"GROUPSTAY_TEST_TIMEOUT" envDefault:"5s"`
	}
	t.Setenv("GROUPSTAY_TEST_ENDPOINT", "https://example.test")

	require.NoError(t, ParseEnv(&target))
	assert.Equal(t, "https://example.test", target.Endpoint)
	assert.Equal(t, 5*time.Second, target.Timeout)
	assert.True(t, strings.HasPrefix(target.Endpoint, "https://"))
}
