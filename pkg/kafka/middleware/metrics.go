package kafka_middleware

import (
	"context"
	"time"

	"groupstay/pkg/kafka"
	"groupstay/pkg/metrics"
)

// MetricsProducerMiddleware records publish outcomes and latency.
func MetricsProducerMiddleware(m *metrics.Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		m.ObserveKafka(metrics.DirectionPublish, result(err), time.Since(start))
		return err
	}
}

// MetricsConsumerMiddleware records handler outcomes and latency. Retries
// count as separate observations.
func MetricsConsumerMiddleware(m *metrics.Metrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.ObserveKafka(metrics.DirectionConsume, result(err), time.Since(start))
		return err
	}
}

func result(err error) string {
	if err != nil {
		return metrics.ResultFailed
	}
	return metrics.ResultAccepted
}
