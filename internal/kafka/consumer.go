package kafka

import (
	"context"
	"encoding/json"
	"log"
	"shoppingts/internal/config"
	"shoppingts/internal/metrics"
	"shoppingts/internal/notify"
	"shoppingts/internal/validator"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Handler обрабатывает событие витрины. Ошибка означает временный сбой: событие будет повторено.
type Handler interface {
	HandleEvent(ctx context.Context, event notify.Event) error
}

// HandlerFunc позволяет использовать функцию как Handler.
type HandlerFunc func(ctx context.Context, event notify.Event) error

func (f HandlerFunc) HandleEvent(ctx context.Context, event notify.Event) error {
	return f(ctx, event)
}

// Forward передает события в Notifier (например, в лог).
func Forward(n notify.Notifier) Handler {
	return HandlerFunc(func(ctx context.Context, event notify.Event) error {
		n.Notify(ctx, event)
		return nil
	})
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer читает события витрины из Kafka и передает их обработчику.
type Consumer struct {
	reader     messageReader
	dlqWriter  messageWriter // Продюсер для отправки "битых" сообщений в DLQ
	handler    Handler
	tracer     trace.Tracer // Для трассировки
	maxRetries int          // Количество попыток для временных ошибок обработчика
	backoff    time.Duration
}

// NewConsumer создает новый экземпляр Consumer.
func NewConsumer(cfg config.KafkaConfig, handler Handler) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
		// Коммиты будут выполняться вручную после успешной обработки.
	})

	// Продюсер для DLQ
	dlqWriter := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.DLQTopic,
		Balancer: &kafka.LeastBytes{},
	}

	return &Consumer{
		reader:     reader,
		dlqWriter:  dlqWriter,
		handler:    handler,
		tracer:     otel.Tracer("kafka-consumer"),
		maxRetries: 3,
		backoff:    time.Second,
	}
}

// Run запускает цикл чтения сообщений из Kafka.
func (c *Consumer) Run(ctx context.Context) {
	log.Println("Kafka-консюмер запущен...")
	defer func() {
		if err := c.reader.Close(); err != nil {
			log.Printf("Ошибка закрытия Kafka-ридера: %v", err)
		}
		if err := c.dlqWriter.Close(); err != nil {
			log.Printf("Ошибка закрытия Kafka (DLQ) writer: %v", err)
		}
	}()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("Kafka-консюмер останавливается.")
				return
			}
			log.Printf("Ошибка чтения сообщения из Kafka: %v", err)
			continue
		}

		// Ошибка = сообщение не коммитим, Kafka доставит его повторно.
		if procErr := c.processMessage(ctx, msg); procErr != nil {
			log.Printf("Ошибка обработки события (устройство: %s): %v. Не коммитим.", string(msg.Key), procErr)
			continue
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			log.Printf("Ошибка коммита сообщения: %v", err)
		}
	}
}

// processMessage разбирает, проверяет и обрабатывает событие.
// Возвращает error только если обработку нужно повторить (контекст отменен во время ожидания).
// Невалидные события и события, обработчик которых исчерпал попытки, уходят в DLQ.
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	ctx, span := c.tracer.Start(ctx, "Consumer.processMessage")
	defer span.End()

	var event notify.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Printf("Невалидное JSON-сообщение, отправка в DLQ: %v", err)
		c.sendToDLQ(ctx, msg, "json_unmarshal_error", err)
		metrics.KafkaMessagesProcessed.WithLabelValues("dlq_validation").Inc()
		return nil
	}

	if err := validator.ValidateStruct(&event); err != nil {
		log.Printf("Ошибка валидации события %q, отправка в DLQ: %v", event.Kind, err)
		c.sendToDLQ(ctx, msg, "validation_error", err)
		metrics.KafkaMessagesProcessed.WithLabelValues("dlq_validation").Inc()
		return nil
	}

	var handleErr error
	for i := 0; i < c.maxRetries; i++ {
		handleErr = c.handler.HandleEvent(ctx, event)
		if handleErr == nil {
			break
		}
		log.Printf("Ошибка обработки события (попытка %d/%d): %v", i+1, c.maxRetries, handleErr)
		if i+1 < c.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff * time.Duration(i+1)): // Простой backoff
			}
		}
	}

	if handleErr != nil {
		log.Printf("Событие %s не обработано после %d попыток, отправка в DLQ.", event.Kind, c.maxRetries)
		c.sendToDLQ(ctx, msg, "handler_error", handleErr)
		metrics.KafkaMessagesProcessed.WithLabelValues("dlq_handler_error").Inc()
		return nil
	}

	metrics.KafkaMessagesProcessed.WithLabelValues("success").Inc()
	return nil
}

// sendToDLQ отправляет "битое" сообщение в DLQ топик.
func (c *Consumer) sendToDLQ(ctx context.Context, originalMsg kafka.Message, reason string, procErr error) {
	_, span := c.tracer.Start(ctx, "Consumer.sendToDLQ")
	defer span.End()

	// Отправляем сообщение в DLQ с доп. заголовками об ошибке
	err := c.dlqWriter.WriteMessages(ctx, kafka.Message{
		Key:   originalMsg.Key,
		Value: originalMsg.Value,
		Headers: []kafka.Header{
			{Key: "X-Original-Topic", Value: []byte(originalMsg.Topic)},
			{Key: "X-Error-Reason", Value: []byte(reason)},
			{Key: "X-Error-Details", Value: []byte(procErr.Error())},
		},
	})

	if err != nil {
		log.Printf("КРИТИЧНО: Не удалось отправить сообщение %s в DLQ: %v", string(originalMsg.Key), err)
		metrics.KafkaMessagesProcessed.WithLabelValues("dlq_failed_write").Inc()
	} else {
		log.Printf("Сообщение %s отправлено в DLQ (Причина: %s)", string(originalMsg.Key), reason)
	}
}
