package config

import "time"

const (
	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRateLimitRequests = 120
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultDefaultScope     = "default"
	DefaultDefaultScopeName = "Default Event"
	DefaultAlertLogCap      = 100
	DefaultAlertListLimit   = 50
	MaxAlertListLimit       = 100

	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverS3       = "s3"

	DefaultStoreDriver = DriverMemory
	DefaultSQLitePath  = "data/groupstay.db"

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "groupstay"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultS3Region = "us-east-1"
	DefaultS3Prefix = "ledger/"

	DefaultKafkaAlertsTopic    = "groupstay.alerts"
	DefaultKafkaAlertsDLQTopic = "groupstay.alerts.dlq"
	DefaultKafkaConsumerGroup  = "groupstay-alert-relay"
)
