package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type capturingWriter struct {
	messages []kafka.Message
}

func (w *capturingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func TestNewClient(t *testing.T) {
	require.False(t, NewClient("").Enabled())
	require.False(t, NewClient(" , ").Enabled())

	client := NewClient("kafka-1:9092, kafka-2:9092,")
	require.True(t, client.Enabled())
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, client.Brokers)

	writer := client.NewWriter("fulfillment.events")
	require.Equal(t, "fulfillment.events", writer.Topic)
	require.IsType(t, &kafka.Hash{}, writer.Balancer)
}

func TestPublishJSON(t *testing.T) {
	w := &capturingWriter{}
	require.NoError(t, PublishJSON(context.Background(), w, "order-7", map[string]int{"qty": 2}))

	require.Len(t, w.messages, 1)
	require.Equal(t, "order-7", string(w.messages[0].Key))
	var decoded map[string]int
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &decoded))
	require.Equal(t, 2, decoded["qty"])
	require.False(t, w.messages[0].Time.IsZero())
}
