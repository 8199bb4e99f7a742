// Package notify доставляет сигналы об успехе и неудаче операций витрины.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Kind описывает источник события.
type Kind string

const (
	KindCoupon   Kind = "coupon"
	KindGiftCard Kind = "gift_card"
	KindShipping Kind = "shipping"
	KindCheckout Kind = "checkout"
	KindOrder    Kind = "order"
)

// Event содержит человекочитаемый сигнал для слоя представления.
type Event struct {
	Kind      Kind      `json:"kind"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	SessionID string    `json:"session_id,omitempty"`
	OrderID   string    `json:"order_id,omitempty"`
	At        time.Time `json:"at"`
}

// Notifier принимает события.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// LogNotifier пишет события в журнал.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier создаёт LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify пишет событие в журнал: успех на уровне Info, неудачу на уровне Warn.
func (n *LogNotifier) Notify(ctx context.Context, e Event) error {
	fields := []zap.Field{
		zap.String("kind", string(e.Kind)),
		zap.Bool("success", e.Success),
		zap.String("session", e.SessionID),
		zap.String("order", e.OrderID),
	}
	if e.Success {
		n.logger.Info(e.Message, fields...)
	} else {
		n.logger.Warn(e.Message, fields...)
	}
	return nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier публикует события в топик Kafka. Ключом сообщения служит заказ или сессия,
// чтобы события одного заказа сохраняли порядок.
type KafkaNotifier struct {
	writer messageWriter
}

// NewKafkaNotifier создаёт публикатор событий для указанных брокеров.
// Запись асинхронная: Notify не ждёт брокер, ошибки доставки пишутся в журнал.
func NewKafkaNotifier(logger *zap.Logger, topic string, brokers ...string) *KafkaNotifier {
	return &KafkaNotifier{writer: newKafkaWriter(logger, topic, brokers...)}
}

func newKafkaWriter(logger *zap.Logger, topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		Async:                  true,
		BatchSize:              1,
		BatchTimeout:           10 * time.Millisecond,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("publish notification failed", zap.Error(err), zap.Int("messages", len(messages)))
			}
		},
	}
}

// Notify публикует событие. Сообщение получает заголовок event_kind.
func (n *KafkaNotifier) Notify(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	key := e.OrderID
	if key == "" {
		key = e.SessionID
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_kind", Value: []byte(e.Kind)},
		},
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Close закрывает соединение с брокерами.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

// Multi рассылает событие всем получателям и собирает их ошибки.
type Multi []Notifier

// Notify передаёт событие каждому получателю, даже если предыдущий вернул ошибку.
func (m Multi) Notify(ctx context.Context, e Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
