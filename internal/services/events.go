package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mblog/apiserver/internal/mq"
)

// Event channels for lifecycle notifications.
const (
	userEventsChannel = "user.events"
	postEventsChannel = "post.events"
)

// publishEvent sends a lifecycle event on the bus. Delivery is best
// effort: a publish failure is logged and never fails the triggering
// operation.
func publishEvent(ctx context.Context, bus *mq.Bus, logger *slog.Logger, channel string, event any) {
	if bus == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		logger.ErrorContext(ctx, "marshal event failed", "channel", channel, "error", err)
		return
	}
	if _, err := bus.Publish(ctx, channel, data, nil); err != nil {
		logger.ErrorContext(ctx, "publish event failed", "channel", channel, "error", err)
	}
}
