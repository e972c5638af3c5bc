package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/domain"
)

var placedAt = time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)

func placedEvent(orderID int64) domain.OrderPlaced {
	return domain.OrderPlaced{
		BaseEvent:     domain.BaseEvent{Timestamp: placedAt, OrderID: orderID},
		Number:        "SO-20260502-0001ABCD",
		CustomerID:    42,
		TotalAmount:   100000,
		PaymentMethod: domain.MethodBankTransfer,
		ItemCount:     1,
	}
}

type capturingWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
}

func (w *capturingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

type sink struct {
	mu      sync.Mutex
	events  []domain.Event
	err     error
	release chan struct{}
}

func (s *sink) Notify(_ context.Context, event domain.Event) error {
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func (s *sink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestKafkaNotifier_PublishesEnvelopeKeyedByOrder(t *testing.T) {
	w := &capturingWriter{}
	n := NewKafkaNotifier(w)

	require.NoError(t, n.Notify(context.Background(), placedEvent(17)))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	require.Equal(t, "17", string(msg.Key))

	var decoded struct {
		ID         string          `json:"id"`
		Type       string          `json:"type"`
		OrderID    int64           `json:"orderId"`
		OccurredAt time.Time       `json:"occurredAt"`
		Payload    json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	require.NotEmpty(t, decoded.ID)
	require.Equal(t, "orders.order.placed", decoded.Type)
	require.Equal(t, int64(17), decoded.OrderID)
	require.True(t, placedAt.Equal(decoded.OccurredAt))
	require.JSONEq(t, `{"occurredAt":"2026-05-02T09:00:00Z","orderId":17,"number":"SO-20260502-0001ABCD",
		"customerId":42,"totalAmount":100000,"paymentMethod":"BANK_TRANSFER","itemCount":1}`, string(decoded.Payload))
}

func TestKafkaNotifier_SurfacesWriterErrors(t *testing.T) {
	boom := errors.New("leader not available")
	n := NewKafkaNotifier(&capturingWriter{err: boom})
	require.ErrorIs(t, n.Notify(context.Background(), placedEvent(1)), boom)
}

func TestLogNotifier(t *testing.T) {
	buf := &bytes.Buffer{}
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(buf, nil)))
	require.NoError(t, n.Notify(context.Background(), placedEvent(3)))
	require.Contains(t, buf.String(), `"event":"orders.order.placed"`)
	require.Contains(t, buf.String(), `"order.id":3`)
}

func TestFanout_JoinsErrorsAndKeepsDelivering(t *testing.T) {
	first := &sink{err: errors.New("first down")}
	second := &sink{}
	err := Fanout{first, nil, second}.Notify(context.Background(), placedEvent(1))
	require.ErrorContains(t, err, "first down")
	require.Equal(t, 1, first.count())
	require.Equal(t, 1, second.count())
}

func TestDispatcher_DeliversInBackgroundAndDrainsOnClose(t *testing.T) {
	s := &sink{}
	d := NewDispatcher(s, 8, nil)

	ctx, cancel := context.WithCancel(context.Background())
	for i := range 5 {
		require.NoError(t, d.Notify(ctx, placedEvent(int64(i+1))))
	}
	cancel()

	require.NoError(t, d.Close(context.Background()))
	require.Equal(t, 5, s.count())
	require.ErrorIs(t, d.Notify(context.Background(), placedEvent(9)), ErrDispatcherClosed)
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcher_DropsWhenQueueIsFull(t *testing.T) {
	s := &sink{release: make(chan struct{})}
	logs := &bytes.Buffer{}
	d := NewDispatcher(s, 1, slog.New(slog.NewJSONHandler(logs, nil)))

	// The worker may already hold the first event, so fill until the queue rejects one.
	var dropped bool
	for i := range 4 {
		if err := d.Notify(context.Background(), placedEvent(int64(i+1))); err != nil {
			require.ErrorIs(t, err, ErrQueueFull)
			dropped = true
			break
		}
	}
	require.True(t, dropped)

	close(s.release)
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcher_LogsSinkFailures(t *testing.T) {
	s := &sink{err: errors.New("broker down")}
	logs := &bytes.Buffer{}
	d := NewDispatcher(s, 4, slog.New(slog.NewJSONHandler(logs, nil)))

	require.NoError(t, d.Notify(context.Background(), placedEvent(1)))
	require.NoError(t, d.Close(context.Background()))
	require.Contains(t, logs.String(), "order event delivery failed")
	require.Contains(t, logs.String(), "broker down")
}

func TestDispatcher_CloseHonoursDeadline(t *testing.T) {
	s := &sink{release: make(chan struct{})}
	d := NewDispatcher(s, 4, nil)
	require.NoError(t, d.Notify(context.Background(), placedEvent(1)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)
	close(s.release)
}
