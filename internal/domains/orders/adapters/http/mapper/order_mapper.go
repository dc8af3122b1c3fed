package mapper

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	ordertypes "github.com/Apurer/gifting-api/internal/domains/orders/application/types"
	"github.com/Apurer/gifting-api/internal/domains/orders/ports"
)

// deliveryDateLayouts are accepted for deliveryDate. Values without an offset are read in the
// server's location.
var deliveryDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// CreateOrder is the guest checkout payload.
type CreateOrder struct {
	CustomerName        string        `json:"customerName" binding:"required"`
	CustomerPhone       string        `json:"customerPhone" binding:"required,number,min=10,max=15"`
	CustomerEmail       string        `json:"customerEmail" binding:"omitempty,email"`
	DeliveryAddress     string        `json:"deliveryAddress" binding:"required"`
	DeliveryDate        string        `json:"deliveryDate"`
	SpecialInstructions string        `json:"specialInstructions"`
	DeliveryMethod      string        `json:"deliveryMethod"`
	OrderType           string        `json:"orderType"`
	City                string        `json:"city"`
	State               string        `json:"state"`
	Pincode             string        `json:"pincode"`
	OrderItems          []OrderItem   `json:"orderItems" binding:"dive"`
	OrderHampers        []OrderHamper `json:"orderHampers" binding:"dive"`
}

// OrderItem is one requested product line.
type OrderItem struct {
	ProductID         int64            `json:"productId" binding:"required"`
	Quantity          int              `json:"quantity" binding:"required"`
	UnitPrice         *decimal.Decimal `json:"unitPrice"`
	CustomizationData json.RawMessage  `json:"customizationData"`
}

// OrderHamper is one requested hamper line.
type OrderHamper struct {
	HamperBoxID     int64           `json:"hamperBoxId" binding:"required"`
	WithArrangement *bool           `json:"withArrangement" binding:"required"`
	HamperData      json.RawMessage `json:"hamperData" binding:"required"`
	HamperName      string          `json:"hamperName"`
	Screenshot      string          `json:"screenshot"`
}

// StatusUpdate is the admin payload for PUT /orders/:id/status.
type StatusUpdate struct {
	Status string `json:"status" binding:"required"`
}

// Order is the HTTP representation of a placed order.
type Order struct {
	ID                  int64             `json:"id"`
	OrderNumber         string            `json:"orderNumber"`
	CustomerName        string            `json:"customerName"`
	CustomerPhone       string            `json:"customerPhone"`
	CustomerEmail       string            `json:"customerEmail,omitempty"`
	DeliveryAddress     string            `json:"deliveryAddress"`
	DeliveryDate        *time.Time        `json:"deliveryDate,omitempty"`
	SpecialInstructions string            `json:"specialInstructions,omitempty"`
	TotalAmount         json.Number       `json:"totalAmount"`
	Status              string            `json:"status"`
	DeliveryMethod      string            `json:"deliveryMethod"`
	OrderType           string            `json:"orderType"`
	City                string            `json:"city,omitempty"`
	State               string            `json:"state,omitempty"`
	Pincode             string            `json:"pincode,omitempty"`
	OrderItems          []OrderItemLine   `json:"orderItems"`
	OrderHampers        []OrderHamperLine `json:"orderHampers"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

// OrderItemLine is a priced product line.
type OrderItemLine struct {
	ID                  int64           `json:"id"`
	ProductID           int64           `json:"productId"`
	ProductName         string          `json:"productName"`
	Quantity            int             `json:"quantity"`
	UnitPrice           json.Number     `json:"unitPrice"`
	CustomizationCharge json.Number     `json:"customizationCharge"`
	TotalPrice          json.Number     `json:"totalPrice"`
	CustomizationData   json.RawMessage `json:"customizationData,omitempty"`
}

// OrderHamperLine is a priced hamper line.
type OrderHamperLine struct {
	ID                int64           `json:"id"`
	HamperBoxID       int64           `json:"hamperBoxId"`
	HamperBoxName     string          `json:"hamperBoxName"`
	HamperBoxPrice    json.Number     `json:"hamperBoxPrice"`
	ItemsTotal        json.Number     `json:"itemsTotal"`
	TotalPrice        json.Number     `json:"totalPrice"`
	WithArrangement   bool            `json:"withArrangement"`
	ArrangementCharge json.Number     `json:"arrangementCharge"`
	HamperData        json.RawMessage `json:"hamperData,omitempty"`
	HamperName        string          `json:"hamperName,omitempty"`
	Screenshot        string          `json:"screenshot,omitempty"`
}

func amount(value decimal.Decimal) json.Number {
	return json.Number(value.StringFixed(2))
}

// ToCreateOrderInput converts the checkout payload. It fails only on an unreadable deliveryDate.
func ToCreateOrderInput(req CreateOrder, loc *time.Location) (ordertypes.CreateOrderInput, error) {
	deliveryDate, err := parseDeliveryDate(req.DeliveryDate, loc)
	if err != nil {
		return ordertypes.CreateOrderInput{}, err
	}
	input := ordertypes.CreateOrderInput{
		CustomerName:        strings.TrimSpace(req.CustomerName),
		CustomerPhone:       req.CustomerPhone,
		CustomerEmail:       req.CustomerEmail,
		DeliveryAddress:     req.DeliveryAddress,
		DeliveryDate:        deliveryDate,
		SpecialInstructions: req.SpecialInstructions,
		DeliveryMethod:      req.DeliveryMethod,
		OrderType:           req.OrderType,
		City:                req.City,
		State:               req.State,
		Pincode:             req.Pincode,
	}
	for _, item := range req.OrderItems {
		input.Items = append(input.Items, ordertypes.OrderItemInput{
			ProductID:         item.ProductID,
			Quantity:          item.Quantity,
			UnitPrice:         item.UnitPrice,
			CustomizationData: item.CustomizationData,
		})
	}
	for _, hamper := range req.OrderHampers {
		input.Hampers = append(input.Hampers, ordertypes.OrderHamperInput{
			HamperBoxID:     hamper.HamperBoxID,
			WithArrangement: hamper.WithArrangement != nil && *hamper.WithArrangement,
			HamperData:      hamper.HamperData,
			HamperName:      hamper.HamperName,
			Screenshot:      hamper.Screenshot,
		})
	}
	return input, nil
}

func parseDeliveryDate(value string, loc *time.Location) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range deliveryDateLayouts {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			return &parsed, nil
		}
	}
	return nil, fmt.Errorf("deliveryDate %q is not a valid date-time", value)
}

// FromProjection maps a stored order into its transport shape.
func FromProjection(p *ports.OrderProjection) Order {
	o := p.Entity
	out := Order{
		ID:                  o.ID,
		OrderNumber:         o.OrderNumber,
		CustomerName:        o.Customer.Name,
		CustomerPhone:       o.Customer.Phone,
		CustomerEmail:       o.Customer.Email,
		DeliveryAddress:     o.Delivery.Address,
		DeliveryDate:        o.Delivery.Date,
		SpecialInstructions: o.SpecialInstructions,
		TotalAmount:         amount(o.TotalAmount),
		Status:              string(o.Status),
		DeliveryMethod:      string(o.Delivery.Method),
		OrderType:           string(o.Type),
		City:                o.Delivery.City,
		State:               o.Delivery.State,
		Pincode:             o.Delivery.Pincode,
		OrderItems:          make([]OrderItemLine, 0, len(o.Items)),
		OrderHampers:        make([]OrderHamperLine, 0, len(o.Hampers)),
		CreatedAt:           p.Metadata.CreatedAt,
		UpdatedAt:           p.Metadata.UpdatedAt,
	}
	for _, item := range o.Items {
		out.OrderItems = append(out.OrderItems, OrderItemLine{
			ID:                  item.ID,
			ProductID:           item.ProductID,
			ProductName:         item.ProductName,
			Quantity:            item.Quantity,
			UnitPrice:           amount(item.UnitPrice),
			CustomizationCharge: amount(item.CustomizationCharge),
			TotalPrice:          amount(item.LineTotal),
			CustomizationData:   item.CustomizationData,
		})
	}
	for _, hamper := range o.Hampers {
		out.OrderHampers = append(out.OrderHampers, OrderHamperLine{
			ID:                hamper.ID,
			HamperBoxID:       hamper.HamperBoxID,
			HamperBoxName:     hamper.HamperBoxName,
			HamperBoxPrice:    amount(hamper.HamperBoxPrice),
			ItemsTotal:        amount(hamper.ItemsTotal),
			TotalPrice:        amount(hamper.LineTotal),
			WithArrangement:   hamper.WithArrangement,
			ArrangementCharge: amount(hamper.ArrangementCharge),
			HamperData:        hamper.HamperData,
			HamperName:        hamper.HamperName,
			Screenshot:        hamper.Screenshot,
		})
	}
	return out
}

func FromProjectionList(list []*ports.OrderProjection) []Order {
	out := make([]Order, 0, len(list))
	for _, p := range list {
		out = append(out, FromProjection(p))
	}
	return out
}
