package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/gifting-api/internal/domains/orders/domain"
	"github.com/Apurer/gifting-api/internal/domains/orders/ports"
)

// ErrInvalidInput signals the request violated an order invariant.
var ErrInvalidInput = errors.New("invalid order input")

// NotFoundError names the catalog entry an order line referenced but that does not resolve.
type NotFoundError struct {
	Resource   string
	Identifier int64
	err        error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with id: %d", e.Resource, e.Identifier)
}

func (e *NotFoundError) Unwrap() error { return e.err }

func productNotFound(id int64) error {
	return &NotFoundError{Resource: "Product", Identifier: id, err: ports.ErrProductNotFound}
}

func hamperBoxNotFound(id int64) error {
	return &NotFoundError{Resource: "HamperBox", Identifier: id, err: ports.ErrHamperBoxNotFound}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyOrder) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrInvalidDeliveryMethod) ||
		errors.Is(err, domain.ErrInvalidOrderType) ||
		errors.Is(err, domain.ErrInvalidHamperData) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
