package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/gifting-api/internal/domains/orders/domain"
	"github.com/Apurer/gifting-api/internal/domains/orders/ports"
	"github.com/Apurer/gifting-api/internal/shared/projection"
)

func sampleOrder() *ports.OrderProjection {
	delivery := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	return &ports.OrderProjection{
		Entity: &domain.Order{
			ID:          7,
			OrderNumber: "CHG-20260310-AB12CD34",
			Customer:    domain.Customer{Name: "Asha", Phone: "9876543210"},
			Delivery: domain.Delivery{
				Address: "12 MG Road",
				City:    "Bengaluru",
				Pincode: "560001",
				Date:    &delivery,
				Method:  domain.DeliveryCourier,
			},
			Type:                domain.TypeHamperArrangement,
			Status:              domain.StatusNew,
			SpecialInstructions: "Ring twice",
			TotalAmount:         decimal.RequireFromString("1318"),
			Items: []domain.OrderItem{
				{ProductName: "Photo Mug", Quantity: 2, LineTotal: decimal.RequireFromString("698")},
			},
			Hampers: []domain.OrderHamper{
				{HamperBoxName: "Classic", WithArrangement: true, LineTotal: decimal.RequireFromString("620")},
			},
		},
		Metadata: projection.Metadata{CreatedAt: time.Date(2026, 3, 10, 9, 5, 0, 0, time.UTC)},
	}
}

func TestFormatter_Text(t *testing.T) {
	text := NewFormatter("919999999999", nil).Text(sampleOrder())

	for _, want := range []string{
		"Order Number: *CHG-20260310-AB12CD34*",
		"Order Type: *Custom Hamper Arrangement*",
		"Status: *NEW*",
		"Total Amount: *₹1318.00*",
		"Method: *Courier Delivery*",
		"City: Bengaluru",
		"Pincode: 560001",
		"Delivery Date: 14-03-2026 18:30",
		"• Photo Mug x2 - ₹698.00",
		"• Classic - ₹620.00 (With Arrangement)",
		"Ring twice",
		"Order placed on: 10-03-2026 09:05",
	} {
		assert.Contains(t, text, want)
	}
	assert.NotContains(t, text, "Email:")
	assert.NotContains(t, text, "State:")
}

func TestFormatter_IsDeterministic(t *testing.T) {
	f := NewFormatter("919999999999", nil)
	assert.Equal(t, f.Text(sampleOrder()), f.Text(sampleOrder()))
}

func TestFormatter_URL(t *testing.T) {
	msg := NewFormatter("919999999999", nil).Format(sampleOrder())

	parsed, err := url.Parse(msg.URL)
	require.NoError(t, err)
	assert.Equal(t, "api.whatsapp.com", parsed.Host)
	assert.Equal(t, "/send", parsed.Path)
	assert.Equal(t, "919999999999", parsed.Query().Get("phone"))
	assert.Equal(t, msg.Text, parsed.Query().Get("text"))
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	n := NewLogNotifier(NewFormatter("919999999999", nil), logger)

	require.NoError(t, n.NotifyOrderCreated(context.Background(), sampleOrder()))
	assert.Contains(t, buf.String(), `"order.number":"CHG-20260310-AB12CD34"`)
	assert.True(t, strings.Contains(buf.String(), "api.whatsapp.com"))

	require.Error(t, n.NotifyOrderCreated(context.Background(), nil))
}

func TestKafkaNotifier_Publishes(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != DefaultTopic {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "CHG-20260310-AB12CD34" {
			return errors.New("unexpected key " + string(key))
		}
		raw, _ := msg.Value.Encode()
		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			return err
		}
		if event.TotalAmount != "1318.00" || event.OrderID != 7 {
			return errors.New("unexpected payload " + string(raw))
		}
		return nil
	})

	n := NewKafkaNotifier(producer, "", NewFormatter("919999999999", nil))
	require.NoError(t, n.NotifyOrderCreated(context.Background(), sampleOrder()))
	require.NoError(t, n.Close())
}

func TestKafkaNotifier_PropagatesFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	n := NewKafkaNotifier(producer, "custom.topic", NewFormatter("919999999999", nil))
	err := n.NotifyOrderCreated(context.Background(), sampleOrder())
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, n.Close())
}

func TestNewSyncProducer_RequiresBrokers(t *testing.T) {
	_, err := NewSyncProducer(nil)
	require.Error(t, err)
}
