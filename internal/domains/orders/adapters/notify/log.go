package notify

import (
	"context"
	"log/slog"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/domain"
	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
)

var _ ports.Notifier = (*LogNotifier)(nil)

// LogNotifier writes every event to the structured log. It is the default sink when no broker
// is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, event domain.Event) error {
	n.logger.LogAttrs(ctx, slog.LevelInfo, "order event",
		slog.String("event", event.EventName()),
		slog.Int64("order.id", event.AggregateID()),
		slog.Time("occurred_at", event.OccurredAt()),
		slog.Any("payload", event),
	)
	return nil
}
