// Package notify connects the in-process event bus to the outside world:
// prometheus counters and the Kafka alert topic.
package notify

import (
	"context"
	"fmt"

	"groupstay/pkg/eventbus"
	"groupstay/pkg/kafka"
	"groupstay/pkg/logger"
	"groupstay/pkg/metrics"
	"groupstay/pkg/model"
)

const (
	EventTypeAlertRaised = "groupstay.alert.raised"
	SchemaVersion        = "1"
)

// AlertMessage is the JSON value written to the alerts topic.
type AlertMessage struct {
	EventID string      `json:"eventId"`
	Alert   model.Alert `json:"alert"`
}

// Publisher is the part of *kafka.Producer the alert forwarder uses.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// AlertsToKafka forwards alert.raised events to the alerts topic, keyed by
// event id so one event's alerts stay ordered within a partition.
func AlertsToKafka(pub Publisher, source string) eventbus.Handler {
	return func(ctx context.Context, ev eventbus.Event) error {
		alert, ok := ev.Payload.(model.Alert)
		if !ok {
			return fmt.Errorf("alert event %s: unexpected payload %T", ev.ID, ev.Payload)
		}

		msg, err := kafka.NewMessage().
			WithKey(ev.ScopeID).
			WithValue(AlertMessage{EventID: ev.ScopeID, Alert: alert}).
			WithEventID(ev.ID).
			WithEventType(EventTypeAlertRaised).
			WithScopeID(ev.ScopeID).
			WithSchemaVersion(SchemaVersion).
			WithSource(source).
			Build()
		if err != nil {
			return err
		}
		return pub.Publish(ctx, msg)
	}
}

// AlertMetrics counts raised alerts by type.
func AlertMetrics(m *metrics.Metrics) eventbus.Handler {
	return func(_ context.Context, ev eventbus.Event) error {
		if alert, ok := ev.Payload.(model.Alert); ok {
			m.ObserveAlert(string(alert.Type))
		}
		return nil
	}
}

// Subscribe wires the alert subscribers onto bus. pub may be nil when Kafka
// is disabled.
func Subscribe(bus *eventbus.Bus, m *metrics.Metrics, pub Publisher, source string, log *logger.Logger) []func() {
	unsubscribe := []func(){
		bus.Subscribe("alert-metrics", AlertMetrics(m), eventbus.TopicAlertRaised),
	}
	if pub != nil {
		unsubscribe = append(unsubscribe, bus.Subscribe("alert-kafka", AlertsToKafka(pub, source), eventbus.TopicAlertRaised))
		log.Info("Alert fan-out to Kafka enabled", "source", source)
	}
	return unsubscribe
}
