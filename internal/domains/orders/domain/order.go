package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates order progression. Admins may set any known status.
type Status string

const (
	StatusNew        Status = "NEW"
	StatusConfirmed  Status = "CONFIRMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// DeliveryMethod is how the order reaches the customer.
type DeliveryMethod string

const (
	DeliveryDirect  DeliveryMethod = "DIRECT_DELIVERY"
	DeliveryCourier DeliveryMethod = "COURIER_DELIVERY"
)

// Type distinguishes plain purchases from hamper arrangements.
type Type string

const (
	TypeDirectPurchase    Type = "DIRECT_PURCHASE"
	TypeHamperArrangement Type = "HAMPER_ARRANGEMENT"
)

var (
	ErrInvalidStatus         = errors.New("order status is invalid")
	ErrInvalidDeliveryMethod = errors.New("delivery method is invalid")
	ErrInvalidOrderType      = errors.New("order type is invalid")
	ErrEmptyOrder            = errors.New("order must contain at least one item or hamper")
	ErrInvalidQuantity       = errors.New("quantity must be greater than zero")
)

// ParseStatus normalises a status name and rejects unknown values.
func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	switch status {
	case StatusNew, StatusConfirmed, StatusInProgress, StatusDelivered, StatusCancelled:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}

// ParseDeliveryMethod defaults to direct delivery when value is empty.
func ParseDeliveryMethod(value string) (DeliveryMethod, error) {
	method := DeliveryMethod(strings.ToUpper(strings.TrimSpace(value)))
	switch method {
	case "":
		return DeliveryDirect, nil
	case DeliveryDirect, DeliveryCourier:
		return method, nil
	default:
		return "", ErrInvalidDeliveryMethod
	}
}

// ParseType defaults to a direct purchase when value is empty.
func ParseType(value string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(value)))
	switch t {
	case "":
		return TypeDirectPurchase, nil
	case TypeDirectPurchase, TypeHamperArrangement:
		return t, nil
	default:
		return "", ErrInvalidOrderType
	}
}

// Customer is the guest contact captured at checkout.
type Customer struct {
	Name  string
	Phone string
	Email string
}

// Delivery describes where and when the order is delivered.
type Delivery struct {
	Address string
	City    string
	State   string
	Pincode string
	Date    *time.Time
	Method  DeliveryMethod
}

// Order is the placed order aggregate. Line prices are snapshots taken at creation.
type Order struct {
	ID                  int64
	OrderNumber         string
	Customer            Customer
	Delivery            Delivery
	Type                Type
	SpecialInstructions string
	Status              Status
	TotalAmount         decimal.Decimal
	Items               []OrderItem
	Hampers             []OrderHamper
}

// OrderItem is a product line.
type OrderItem struct {
	ID                  int64
	ProductID           int64
	ProductName         string
	Quantity            int
	UnitPrice           decimal.Decimal
	CustomizationCharge decimal.Decimal
	LineTotal           decimal.Decimal
	CustomizationData   json.RawMessage
}

// OrderHamper is a hamper line: a box, the items placed in it, and optional arrangement.
type OrderHamper struct {
	ID                int64
	HamperBoxID       int64
	HamperBoxName     string
	HamperBoxPrice    decimal.Decimal
	ItemsTotal        decimal.Decimal
	WithArrangement   bool
	ArrangementCharge decimal.Decimal
	LineTotal         decimal.Decimal
	HamperData        json.RawMessage
	HamperName        string
	Screenshot        string
}

// NewOrder starts an order in status NEW with no lines.
func NewOrder(customer Customer, delivery Delivery, orderType Type, instructions string) *Order {
	if delivery.Method == "" {
		delivery.Method = DeliveryDirect
	}
	if orderType == "" {
		orderType = TypeDirectPurchase
	}
	return &Order{
		Customer:            customer,
		Delivery:            delivery,
		Type:                orderType,
		SpecialInstructions: instructions,
		Status:              StatusNew,
		TotalAmount:         decimal.Zero,
	}
}

// AddItem appends a product line and adds it to the total.
func (o *Order) AddItem(item OrderItem) {
	o.Items = append(o.Items, item)
	o.TotalAmount = o.TotalAmount.Add(item.LineTotal)
}

// AddHamper appends a hamper line and adds it to the total.
func (o *Order) AddHamper(hamper OrderHamper) {
	o.Hampers = append(o.Hampers, hamper)
	o.TotalAmount = o.TotalAmount.Add(hamper.LineTotal)
}

// Recalculate recomputes the total from the lines.
func (o *Order) Recalculate() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal)
	}
	for _, hamper := range o.Hampers {
		total = total.Add(hamper.LineTotal)
	}
	o.TotalAmount = total
	return total
}

// UpdateStatus sets any known status.
func (o *Order) UpdateStatus(status Status) error {
	parsed, err := ParseStatus(string(status))
	if err != nil {
		return err
	}
	o.Status = parsed
	return nil
}
