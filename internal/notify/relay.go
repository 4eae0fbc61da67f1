package notify

import (
	"context"

	"groupstay/pkg/kafka"
	"groupstay/pkg/logger"
)

// RelayHandler decodes alert messages and writes them to the structured
// log. Undecodable messages fail permanently and end up in the DLQ.
func RelayHandler(log *logger.Logger) kafka.MessageHandler {
	return func(_ context.Context, msg kafka.Message) error {
		var am AlertMessage
		if err := msg.DecodeValue(&am); err != nil {
			return err
		}
		if am.Alert.Type == "" {
			return kafka.NewPermanentError("alert message without type", kafka.ErrInvalidMessage)
		}

		log.Info("Alert received",
			"event_id", am.EventID,
			"alert_id", am.Alert.ID,
			"type", string(am.Alert.Type),
			"title", am.Alert.Title,
			"message", am.Alert.Message,
			"resource", am.Alert.Resource,
			"guest_name", am.Alert.GuestName,
			"kafka_event_id", msg.GetEventID(),
			"partition", msg.Partition,
			"offset", msg.Offset,
		)
		return nil
	}
}
