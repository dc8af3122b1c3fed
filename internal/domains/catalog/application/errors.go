package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/gifting-api/internal/domains/catalog/domain"
)

// ErrInvalidInput signals the request violated a catalog invariant.
var ErrInvalidInput = errors.New("invalid catalog input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyCategoryName) ||
		errors.Is(err, domain.ErrInvalidDisplay) ||
		errors.Is(err, domain.ErrEmptyProductName) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrNegativeStock) ||
		errors.Is(err, domain.ErrNegativeCharge) ||
		errors.Is(err, domain.ErrInvalidProductType) ||
		errors.Is(err, domain.ErrInvalidOptionsSchema) ||
		errors.Is(err, domain.ErrEmptyHamperName) ||
		errors.Is(err, domain.ErrInvalidHamperBox) ||
		errors.Is(err, domain.ErrInvalidMaxItems) ||
		errors.Is(err, domain.ErrInvalidGrid) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
