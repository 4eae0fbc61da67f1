package config

const (
	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDefaultScope     = "DEFAULT_SCOPE"
	EnvDefaultScopeName = "DEFAULT_SCOPE_NAME"
	EnvAlertLogCap      = "ALERT_LOG_CAP"
	EnvAlertListLimit   = "ALERT_LIST_LIMIT"

	EnvStoreDriver = "STORE_DRIVER"
	EnvSQLitePath  = "SQLITE_PATH"
	EnvPostgresURL = "POSTGRES_URL"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvS3Bucket    = "S3_BUCKET"
	EnvS3Region    = "S3_REGION"
	EnvS3Endpoint  = "S3_ENDPOINT"
	EnvS3PathStyle = "S3_PATH_STYLE"
	EnvS3Prefix    = "S3_PREFIX"

	EnvKafkaEnabled        = "KAFKA_ENABLED"
	EnvKafkaAlertsTopic    = "KAFKA_ALERTS_TOPIC"
	EnvKafkaAlertsDLQTopic = "KAFKA_ALERTS_DLQ_TOPIC"
	EnvKafkaConsumerGroup  = "KAFKA_CONSUMER_GROUP"

	EnvOTelEndpoint = "OTEL_ENDPOINT"
)
