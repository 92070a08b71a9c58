package notify

import (
	"context"
	"encoding/json"
	"log"
	"shoppingts/internal/config"
	"shoppingts/internal/metrics"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// messageWriter - часть kafka.Writer, нужная нотификатору.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier публикует события витрины в топик Kafka.
// Ошибки публикации логируются и не доходят до вызывающего.
type KafkaNotifier struct {
	writer messageWriter
	tracer trace.Tracer // Для трассировки
}

// NewKafkaNotifier создает асинхронного продюсера: запрос пользователя не ждет брокера.
func NewKafkaNotifier(cfg config.KafkaConfig) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{}, // события одного устройства попадают в одну партицию
		Async:    true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Printf("Ошибка отправки %d событий в Kafka: %v", len(messages), err)
				metrics.NotificationsPublished.WithLabelValues("failed").Add(float64(len(messages)))
				return
			}
			metrics.NotificationsPublished.WithLabelValues("success").Add(float64(len(messages)))
		},
	}
	return &KafkaNotifier{writer: writer, tracer: otel.Tracer("kafka-notifier")}
}

func (k *KafkaNotifier) Notify(ctx context.Context, event Event) {
	ctx, span := k.tracer.Start(ctx, "KafkaNotifier.Notify")
	defer span.End()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Ошибка сериализации события %s: %v", event.Kind, err)
		return
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.DeviceID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "X-Event-Kind", Value: []byte(event.Kind)},
		},
	})
	if err != nil {
		log.Printf("Не удалось отправить событие %s в Kafka: %v", event.Kind, err)
		metrics.NotificationsPublished.WithLabelValues("failed").Inc()
	}
}

// Close дожидается отправки буфера и закрывает продюсера.
func (k *KafkaNotifier) Close() {
	if err := k.writer.Close(); err != nil {
		log.Printf("Ошибка закрытия Kafka writer: %v", err)
	}
}
