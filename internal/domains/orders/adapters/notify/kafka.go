package notify

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/domain"
	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
	platformkafka "github.com/Apurer/supplier-fulfillment/internal/platform/kafka"
)

var _ ports.Notifier = (*KafkaNotifier)(nil)

// Envelope is the wire format of an order event on the broker.
type Envelope struct {
	ID         string       `json:"id"`
	Type       string       `json:"type"`
	OrderID    int64        `json:"orderId"`
	OccurredAt time.Time    `json:"occurredAt"`
	Payload    domain.Event `json:"payload"`
}

// KafkaNotifier publishes events keyed by order id so consumers see one order's events in order.
type KafkaNotifier struct {
	writer platformkafka.MessageWriter
}

func NewKafkaNotifier(writer platformkafka.MessageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: writer}
}

func (n *KafkaNotifier) Notify(ctx context.Context, event domain.Event) error {
	envelope := Envelope{
		ID:         uuid.NewString(),
		Type:       event.EventName(),
		OrderID:    event.AggregateID(),
		OccurredAt: event.OccurredAt().UTC(),
		Payload:    event,
	}
	return platformkafka.PublishJSON(ctx, n.writer, strconv.FormatInt(event.AggregateID(), 10), envelope)
}
