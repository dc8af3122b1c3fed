package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"github.com/Apurer/gifting-api/internal/domains/orders/ports"
)

// DefaultTopic receives order-created notification events.
const DefaultTopic = "orders.created.notification"

var (
	_ ports.Notifier = (*LogNotifier)(nil)
	_ ports.Notifier = (*KafkaNotifier)(nil)
)

// LogNotifier writes the rendered notification as a structured log record.
type LogNotifier struct {
	formatter *Formatter
	logger    *slog.Logger
}

func NewLogNotifier(formatter *Formatter, logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LogNotifier{formatter: formatter, logger: logger}
}

func (n *LogNotifier) NotifyOrderCreated(ctx context.Context, order *ports.OrderProjection) error {
	if order == nil || order.Entity == nil {
		return errors.New("order notification requires an order")
	}
	msg := n.formatter.Format(order)
	n.logger.LogAttrs(ctx, slog.LevelInfo, "order notification ready",
		slog.String("order.number", msg.OrderNumber),
		slog.String("whatsapp.url", msg.URL),
	)
	return nil
}

// Event is the JSON payload published for every created order.
type Event struct {
	OrderID     int64     `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	OrderType   string    `json:"orderType"`
	Status      string    `json:"status"`
	TotalAmount string    `json:"totalAmount"`
	Customer    string    `json:"customerName"`
	Phone       string    `json:"customerPhone"`
	Message     string    `json:"message"`
	WhatsAppURL string    `json:"whatsappUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// KafkaNotifier publishes order events through a synchronous producer keyed by order number.
type KafkaNotifier struct {
	producer  sarama.SyncProducer
	topic     string
	formatter *Formatter
}

func NewKafkaNotifier(producer sarama.SyncProducer, topic string, formatter *Formatter) *KafkaNotifier {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaNotifier{producer: producer, topic: topic, formatter: formatter}
}

func (n *KafkaNotifier) NotifyOrderCreated(_ context.Context, order *ports.OrderProjection) error {
	if order == nil || order.Entity == nil {
		return errors.New("order notification requires an order")
	}
	msg := n.formatter.Format(order)
	o := order.Entity
	payload, err := json.Marshal(Event{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		OrderType:   string(o.Type),
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount.StringFixed(2),
		Customer:    o.Customer.Name,
		Phone:       o.Customer.Phone,
		Message:     msg.Text,
		WhatsAppURL: msg.URL,
		CreatedAt:   order.Metadata.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	_, _, err = n.producer.SendMessage(&sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(o.OrderNumber),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}

// Close releases the underlying producer.
func (n *KafkaNotifier) Close() error {
	return n.producer.Close()
}

// NewSyncProducer dials brokers with acknowledgement from all in-sync replicas.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	return sarama.NewSyncProducer(brokers, config)
}
