package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"groupstay/internal/notify"
	"groupstay/pkg/config"
	"groupstay/pkg/kafka"
	kafka_config "groupstay/pkg/kafka/config"
	kafka_middleware "groupstay/pkg/kafka/middleware"
	"groupstay/pkg/metrics"
)

const ServiceName = "alert-relay"

func main() {
	cfg := config.Load(ServiceName)

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.KafkaAlertsTopic,
		cfg.KafkaConsumerGroup,
		cfg.KafkaAlertsDLQTopic,
		notify.RelayHandler(cfg.Log),
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	m := metrics.New()
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware(m))
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{Addr: ":" + cfg.Port, Handler: mux, ReadTimeout: cfg.ReadTimeout}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cfg.Log.Error("Metrics server failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting alert relay",
		"topic", cfg.KafkaAlertsTopic,
		"group_id", cfg.KafkaConsumerGroup,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		cfg.Log.Error("Metrics server shutdown failed", "error", err)
	}
	lag := consumer.Lag()
	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Alert relay stopped", "lag", lag)
}
