package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

// fakeWriter запоминает сообщения вместо отправки в брокер.
type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaNotifier_PublishesEvent(t *testing.T) {
	w := &fakeWriter{}
	n := &KafkaNotifier{writer: w, tracer: otel.Tracer("test-tracer")}

	event := CartChanged(5)
	event.DeviceID = "device-1"
	n.Notify(context.Background(), event)

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "device-1", string(msg.Key))
	assert.Equal(t, "X-Event-Kind", msg.Headers[0].Key)
	assert.Equal(t, KindCartChanged, string(msg.Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, 5, decoded.Count)

	n.Close()
	assert.True(t, w.closed)
}

func TestKafkaNotifier_SwallowsErrors(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	n := &KafkaNotifier{writer: w, tracer: otel.Tracer("test-tracer")}

	// Ошибка брокера не должна паниковать и не возвращается вызывающему
	n.Notify(context.Background(), Toast("주문이 접수되었습니다."))
	assert.Empty(t, w.messages)
}
