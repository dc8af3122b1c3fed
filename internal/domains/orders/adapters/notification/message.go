package notification

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Apurer/gifting-api/internal/domains/orders/domain"
	"github.com/Apurer/gifting-api/internal/domains/orders/ports"
)

const (
	whatsAppSendURL = "https://api.whatsapp.com/send"
	dateLayout      = "02-01-2006 15:04"
	divider         = "━━━━━━━━━━━━━━━━━━━━\n"
)

// Message is the rendered summary of a created order.
type Message struct {
	OrderNumber string
	Text        string
	URL         string
}

// Formatter renders order summaries addressed to the business WhatsApp number.
type Formatter struct {
	businessNumber string
	location       *time.Location
}

// NewFormatter builds a formatter. A nil location renders timestamps as stored.
func NewFormatter(businessNumber string, location *time.Location) *Formatter {
	return &Formatter{businessNumber: strings.TrimSpace(businessNumber), location: location}
}

// Format renders the order text and its click-to-chat URL.
func (f *Formatter) Format(order *ports.OrderProjection) Message {
	text := f.Text(order)
	return Message{OrderNumber: order.Entity.OrderNumber, Text: text, URL: f.URL(text)}
}

// URL builds the click-to-chat link carrying text.
func (f *Formatter) URL(text string) string {
	return whatsAppSendURL + "?phone=" + url.QueryEscape(f.businessNumber) + "&text=" + url.QueryEscape(text)
}

// Text renders a deterministic summary of the order.
func (f *Formatter) Text(p *ports.OrderProjection) string {
	o := p.Entity
	var b strings.Builder

	b.WriteString("🎁 *NEW ORDER RECEIVED* 🎁\n\n")
	b.WriteString(divider + "\n")

	b.WriteString("📋 *Order Details*\n")
	b.WriteString("Order Number: *" + o.OrderNumber + "*\n")
	b.WriteString("Order Type: *" + orderTypeLabel(o.Type) + "*\n")
	b.WriteString("Status: *" + string(o.Status) + "*\n")
	b.WriteString("Total Amount: *₹" + o.TotalAmount.StringFixed(2) + "*\n\n")

	b.WriteString("👤 *Customer Information*\n")
	b.WriteString("Name: " + o.Customer.Name + "\n")
	b.WriteString("Phone: " + o.Customer.Phone + "\n")
	if o.Customer.Email != "" {
		b.WriteString("Email: " + o.Customer.Email + "\n")
	}
	b.WriteString("\n")

	b.WriteString("📦 *Delivery Information*\n")
	b.WriteString("Method: *" + deliveryMethodLabel(o.Delivery.Method) + "*\n")
	b.WriteString("Address: " + o.Delivery.Address + "\n")
	writeOptional(&b, "City", o.Delivery.City)
	writeOptional(&b, "State", o.Delivery.State)
	writeOptional(&b, "Pincode", o.Delivery.Pincode)
	if o.Delivery.Date != nil {
		b.WriteString("Delivery Date: " + f.timestamp(*o.Delivery.Date) + "\n")
	}
	b.WriteString("\n")

	if len(o.Items) > 0 {
		b.WriteString("🛍️ *Order Items*\n")
		for _, item := range o.Items {
			b.WriteString("• " + item.ProductName + " x" + strconv.Itoa(item.Quantity) + " - ₹" + item.LineTotal.StringFixed(2) + "\n")
		}
		b.WriteString("\n")
	}

	if len(o.Hampers) > 0 {
		b.WriteString("🎁 *Custom Hampers*\n")
		for _, h := range o.Hampers {
			b.WriteString("• " + h.HamperBoxName + " - ₹" + h.LineTotal.StringFixed(2))
			if h.WithArrangement {
				b.WriteString(" (With Arrangement)")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if o.SpecialInstructions != "" {
		b.WriteString("📝 *Special Instructions*\n")
		b.WriteString(o.SpecialInstructions + "\n\n")
	}

	b.WriteString(divider)
	b.WriteString("Order placed on: " + f.timestamp(p.Metadata.CreatedAt) + "\n")
	b.WriteString("\n_This is an automated order notification_")
	return b.String()
}

func (f *Formatter) timestamp(t time.Time) string {
	if f.location != nil {
		t = t.In(f.location)
	}
	return t.Format(dateLayout)
}

func writeOptional(b *strings.Builder, label, value string) {
	if value != "" {
		b.WriteString(label + ": " + value + "\n")
	}
}

func orderTypeLabel(t domain.Type) string {
	if t == domain.TypeHamperArrangement {
		return "Custom Hamper Arrangement"
	}
	return "Direct Purchase"
}

func deliveryMethodLabel(m domain.DeliveryMethod) string {
	if m == domain.DeliveryCourier {
		return "Courier Delivery"
	}
	return "Direct Delivery"
}
