package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// HamperSize is the size class of a hamper box.
type HamperSize string

const (
	HamperSizeSmall      HamperSize = "SMALL"
	HamperSizeMedium     HamperSize = "MEDIUM"
	HamperSizeLarge      HamperSize = "LARGE"
	HamperSizeExtraLarge HamperSize = "EXTRA_LARGE"
)

var (
	ErrEmptyHamperName  = errors.New("hamper box name is required")
	ErrInvalidHamperBox = errors.New("hamper box size is invalid")
	ErrInvalidMaxItems  = errors.New("hamper box max items must be greater than zero")
	ErrInvalidGrid      = errors.New("hamper box grid must not be negative")
)

// HamperBox is the container a customer fills in the hamper builder.
type HamperBox struct {
	ID          int64
	Name        string
	Description string
	Size        HamperSize
	Price       decimal.Decimal
	MaxItems    int
	ImageURL    string
	LengthCm    *decimal.Decimal
	WidthCm     *decimal.Decimal
	HeightCm    *decimal.Decimal
	GridRows    *int
	GridCols    *int
	Active      bool
}

// ParseHamperSize normalises a size class name.
func ParseHamperSize(value string) (HamperSize, error) {
	size := HamperSize(strings.ToUpper(strings.TrimSpace(value)))
	switch size {
	case HamperSizeSmall, HamperSizeMedium, HamperSizeLarge, HamperSizeExtraLarge:
		return size, nil
	default:
		return "", ErrInvalidHamperBox
	}
}

// Validate enforces the hamper box invariants.
func (h *HamperBox) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return ErrEmptyHamperName
	}
	if _, err := ParseHamperSize(string(h.Size)); err != nil {
		return err
	}
	if h.Price.IsNegative() {
		return ErrNegativePrice
	}
	if h.MaxItems <= 0 {
		return ErrInvalidMaxItems
	}
	if (h.GridRows != nil && *h.GridRows < 0) || (h.GridCols != nil && *h.GridCols < 0) {
		return ErrInvalidGrid
	}
	return nil
}

// Deactivate hides the box from the builder.
func (h *HamperBox) Deactivate() {
	h.Active = false
}
