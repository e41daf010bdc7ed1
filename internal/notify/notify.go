package notify

import (
	"context"
	"strconv"

	"github.com/triskelion9/justdjangoecomm/internal/logging"
	"github.com/triskelion9/justdjangoecomm/internal/mykafka"
)

const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Notifier delivers user-facing messages. Fire-and-forget: callers never act
// on a delivery failure.
type Notifier interface {
	Notify(ctx context.Context, userID uint, message, severity string)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event interface{}) error
}

// KafkaNotifier logs the message and publishes it to the notification topic
// for downstream consumers (mail, push).
type KafkaNotifier struct {
	Producer EventPublisher
}

func (n *KafkaNotifier) Notify(ctx context.Context, userID uint, message, severity string) {
	l := logging.FromContext(ctx).With("notify", severity, "user_id", userID)
	l.Info(message)

	if n.Producer == nil {
		return
	}
	err := n.Producer.PublishEvent(ctx, mykafka.TopicNotificationEvents, strconv.FormatUint(uint64(userID), 10), map[string]interface{}{
		"type":     "notification",
		"userID":   userID,
		"message":  message,
		"severity": severity,
	})
	if err != nil {
		l.Warn("notification publish failed", "error", err)
	}
}
