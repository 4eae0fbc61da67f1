package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"

	"groupstay/pkg/client"
	"groupstay/pkg/logger"
)

type Config struct {
	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	DefaultScope     string
	DefaultScopeName string
	AlertLogCap      int
	AlertListLimit   int

	StoreDriver string
	SQLitePath  string
	PostgresURL string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
	S3Prefix    string

	KafkaEnabled        bool
	KafkaAlertsTopic    string
	KafkaAlertsDLQTopic string
	KafkaConsumerGroup  string

	OTelEndpoint string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		DefaultScope:     getEnvStr(EnvDefaultScope, DefaultDefaultScope),
		DefaultScopeName: getEnvStr(EnvDefaultScopeName, DefaultDefaultScopeName),
		AlertLogCap:      getEnvNum(EnvAlertLogCap, DefaultAlertLogCap),
		AlertListLimit:   getEnvNum(EnvAlertListLimit, DefaultAlertListLimit),

		StoreDriver: getEnvStr(EnvStoreDriver, DefaultStoreDriver),
		SQLitePath:  getEnvStr(EnvSQLitePath, DefaultSQLitePath),
		PostgresURL: getEnvStr(EnvPostgresURL, ""),

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		S3Bucket:    getEnvStr(EnvS3Bucket, ""),
		S3Region:    getEnvStr(EnvS3Region, DefaultS3Region),
		S3Endpoint:  getEnvStr(EnvS3Endpoint, ""),
		S3PathStyle: getEnvBool(EnvS3PathStyle, false),
		S3Prefix:    getEnvStr(EnvS3Prefix, DefaultS3Prefix),

		KafkaEnabled:        getEnvBool(EnvKafkaEnabled, false),
		KafkaAlertsTopic:    getEnvStr(EnvKafkaAlertsTopic, DefaultKafkaAlertsTopic),
		KafkaAlertsDLQTopic: getEnvStr(EnvKafkaAlertsDLQTopic, DefaultKafkaAlertsDLQTopic),
		KafkaConsumerGroup:  getEnvStr(EnvKafkaConsumerGroup, DefaultKafkaConsumerGroup),

		OTelEndpoint: getEnvStr(EnvOTelEndpoint, ""),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    getEnvStr(EnvLogFormat, DefaultLogFormat),
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	drivers := []string{DriverMemory, DriverSQLite, DriverPostgres, DriverMongo, DriverS3}
	if !slices.Contains(drivers, cfg.StoreDriver) {
		errors = append(errors, fmt.Sprintf("StoreDriver must be one of %v, got: %s", drivers, cfg.StoreDriver))
	}

	switch cfg.StoreDriver {
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			errors = append(errors, "SQLitePath cannot be empty when StoreDriver is sqlite")
		}
	case DriverPostgres:
		if cfg.PostgresURL == "" {
			errors = append(errors, "PostgresURL cannot be empty when StoreDriver is postgres")
		} else if u, err := url.Parse(cfg.PostgresURL); err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
			errors = append(errors, fmt.Sprintf("PostgresURL must start with 'postgres://' or 'postgresql://', got: %s", redactURL(cfg.PostgresURL)))
		}
	case DriverMongo:
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty when StoreDriver is mongo")
		} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	case DriverS3:
		if cfg.S3Bucket == "" {
			errors = append(errors, "S3Bucket cannot be empty when StoreDriver is s3")
		}
	}

	if cfg.DefaultScope == "" {
		errors = append(errors, "DefaultScope cannot be empty")
	}
	if cfg.AlertLogCap <= 0 {
		errors = append(errors, fmt.Sprintf("AlertLogCap must be positive, got: %d", cfg.AlertLogCap))
	}
	if cfg.AlertListLimit <= 0 || cfg.AlertListLimit > cfg.AlertLogCap {
		errors = append(errors, fmt.Sprintf("AlertListLimit (%d) must be between 1 and AlertLogCap (%d)", cfg.AlertListLimit, cfg.AlertLogCap))
	}

	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.KafkaEnabled && cfg.KafkaAlertsTopic == "" {
		errors = append(errors, "KafkaAlertsTopic cannot be empty when Kafka is enabled")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"port", cfg.Port,
		"store_driver", cfg.StoreDriver,
		"sqlite_path", cfg.SQLitePath,
		"postgres_url", redactURL(cfg.PostgresURL),
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"s3_bucket", cfg.S3Bucket,
		"s3_endpoint", cfg.S3Endpoint,
		"default_scope", cfg.DefaultScope,
		"alert_log_cap", cfg.AlertLogCap,
		"alert_list_limit", cfg.AlertListLimit,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"kafka_enabled", cfg.KafkaEnabled,
		"kafka_alerts_topic", cfg.KafkaAlertsTopic,
		"otel_enabled", cfg.OTelEndpoint != "",
	)
}

// ParseEnv fills a struct tagged with `env:"..."` from the process
// environment. Used by components that own their settings.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}

// NormalizeAlertLimit maps a requested page size onto [1, MaxAlertListLimit],
// using fallback for non-positive requests.
func NormalizeAlertLimit(limit, fallback int) int {
	if limit <= 0 {
		limit = fallback
	}
	return min(limit, MaxAlertListLimit)
}
