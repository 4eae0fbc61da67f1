package kafka_config

import (
	"fmt"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"

	"groupstay/pkg/logger"
)

// Config holds broker, producer and consumer tuning. Every field is read
// from the environment.
type Config struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`

	ProducerMaxAttempts  int           `env:"KAFKA_PRODUCER_MAX_ATTEMPTS" envDefault:"3"`
	ProducerBatchTimeout time.Duration `env:"KAFKA_PRODUCER_BATCH_TIMEOUT" envDefault:"10ms"`
	ProducerRequireAcks  int           `env:"KAFKA_PRODUCER_REQUIRE_ACKS" envDefault:"-1"` // -1 = all, 0 = none, 1 = leader only
	ProducerCompression  string        `env:"KAFKA_PRODUCER_COMPRESSION" envDefault:"snappy"`
	ProducerAsync        bool          `env:"KAFKA_PRODUCER_ASYNC" envDefault:"false"`

	ConsumerStartOffset       int64         `env:"KAFKA_CONSUMER_START_OFFSET" envDefault:"-1"` // -1 = newest, -2 = oldest
	ConsumerMinBytes          int           `env:"KAFKA_CONSUMER_MIN_BYTES" envDefault:"1"`
	ConsumerMaxBytes          int           `env:"KAFKA_CONSUMER_MAX_BYTES" envDefault:"10485760"`
	ConsumerMaxWait           time.Duration `env:"KAFKA_CONSUMER_MAX_WAIT" envDefault:"500ms"`
	ConsumerCommitInterval    time.Duration `env:"KAFKA_CONSUMER_COMMIT_INTERVAL" envDefault:"1s"`
	ConsumerHeartbeatInterval time.Duration `env:"KAFKA_CONSUMER_HEARTBEAT_INTERVAL" envDefault:"3s"`
	ConsumerSessionTimeout    time.Duration `env:"KAFKA_CONSUMER_SESSION_TIMEOUT" envDefault:"10s"`
	ConsumerRebalanceTimeout  time.Duration `env:"KAFKA_CONSUMER_REBALANCE_TIMEOUT" envDefault:"60s"`
	ConsumerMaxRetries        int           `env:"KAFKA_CONSUMER_MAX_RETRIES" envDefault:"3"`
	ConsumerRetryBackoff      time.Duration `env:"KAFKA_CONSUMER_RETRY_BACKOFF" envDefault:"200ms"`

	EnableMiddleware bool `env:"KAFKA_ENABLE_MIDDLEWARE" envDefault:"true"`
}

// Load reads the Kafka configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse kafka env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	var errors []string

	if len(cfg.Brokers) == 0 {
		errors = append(errors, "At least one Kafka broker is required")
	}
	for i, broker := range cfg.Brokers {
		if broker == "" {
			errors = append(errors, fmt.Sprintf("Broker %d cannot be empty", i))
		}
	}

	if cfg.ProducerMaxAttempts <= 0 {
		errors = append(errors, fmt.Sprintf("ProducerMaxAttempts must be positive, got: %d", cfg.ProducerMaxAttempts))
	}
	if cfg.ProducerBatchTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ProducerBatchTimeout must be positive, got: %s", cfg.ProducerBatchTimeout))
	}

	compressions := []string{"none", "gzip", "snappy", "lz4", "zstd"}
	if !slices.Contains(compressions, cfg.ProducerCompression) {
		errors = append(errors, fmt.Sprintf("ProducerCompression must be one of %v, got: %s", compressions, cfg.ProducerCompression))
	}
	if !slices.Contains([]int{-1, 0, 1}, cfg.ProducerRequireAcks) {
		errors = append(errors, fmt.Sprintf("ProducerRequireAcks must be -1, 0, or 1, got: %d", cfg.ProducerRequireAcks))
	}

	if cfg.ConsumerStartOffset != -1 && cfg.ConsumerStartOffset != -2 {
		errors = append(errors, fmt.Sprintf("ConsumerStartOffset must be -1 (newest) or -2 (oldest), got: %d", cfg.ConsumerStartOffset))
	}
	if cfg.ConsumerMinBytes <= 0 || cfg.ConsumerMaxBytes < cfg.ConsumerMinBytes {
		errors = append(errors, fmt.Sprintf("ConsumerMinBytes (%d) must be positive and not above ConsumerMaxBytes (%d)", cfg.ConsumerMinBytes, cfg.ConsumerMaxBytes))
	}
	for name, d := range map[string]time.Duration{
		"ConsumerMaxWait":           cfg.ConsumerMaxWait,
		"ConsumerCommitInterval":    cfg.ConsumerCommitInterval,
		"ConsumerHeartbeatInterval": cfg.ConsumerHeartbeatInterval,
		"ConsumerSessionTimeout":    cfg.ConsumerSessionTimeout,
		"ConsumerRebalanceTimeout":  cfg.ConsumerRebalanceTimeout,
	} {
		if d <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}
	if cfg.ConsumerMaxRetries < 0 {
		errors = append(errors, fmt.Sprintf("ConsumerMaxRetries cannot be negative, got: %d", cfg.ConsumerMaxRetries))
	}
	if cfg.ConsumerRetryBackoff < 0 {
		errors = append(errors, fmt.Sprintf("ConsumerRetryBackoff cannot be negative, got: %s", cfg.ConsumerRetryBackoff))
	}

	if len(errors) > 0 {
		slices.Sort(errors)
		errMsg := "Kafka configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}
	return nil
}

func (cfg *Config) LogConfiguration(log *logger.Logger) {
	log.Info("Kafka configuration loaded successfully",
		"brokers", cfg.Brokers,
		"producer_max_attempts", cfg.ProducerMaxAttempts,
		"producer_batch_timeout", cfg.ProducerBatchTimeout,
		"producer_require_acks", cfg.ProducerRequireAcks,
		"producer_compression", cfg.ProducerCompression,
		"producer_async", cfg.ProducerAsync,
		"consumer_start_offset", cfg.ConsumerStartOffset,
		"consumer_max_retries", cfg.ConsumerMaxRetries,
		"consumer_retry_backoff", cfg.ConsumerRetryBackoff,
		"enable_middleware", cfg.EnableMiddleware,
	)
}
