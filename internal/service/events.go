package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/restaurant_pos/pkg/events"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

const publishTimeout = 5 * time.Second

// publish sends e after the change it describes has been committed. A
// broker failure is logged and never reported to the caller.
func publish(ctx context.Context, pub events.Publisher, topic string, e events.Event) {
	if pub == nil {
		return
	}
	l := logging.FromContext(ctx)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := pub.Publish(ctx, topic, e); err != nil {
		l.Warn("publish_event_error", "topic", topic, "type", e.Type, "key", e.Key, "error", err)
	}
}
