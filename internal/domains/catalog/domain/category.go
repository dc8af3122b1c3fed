package domain

import (
	"errors"
	"strings"
)

var (
	ErrEmptyCategoryName = errors.New("category name is required")
	ErrInvalidDisplay    = errors.New("category display order must be greater or equal to zero")
)

// Category groups products in the storefront.
type Category struct {
	ID           int64
	Name         string
	Description  string
	ImageURL     string
	DisplayOrder int
	Active       bool
}

// NewCategory validates and builds an active category.
func NewCategory(name, description, imageURL string, displayOrder int) (*Category, error) {
	c := &Category{Description: description, ImageURL: imageURL, DisplayOrder: displayOrder, Active: true}
	if err := c.Rename(name); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Rename replaces the category name, trimming surrounding whitespace.
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyCategoryName
	}
	c.Name = name
	return nil
}

// Validate enforces the category invariants.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategoryName
	}
	if c.DisplayOrder < 0 {
		return ErrInvalidDisplay
	}
	return nil
}

// Deactivate hides the category without touching its products.
func (c *Category) Deactivate() {
	c.Active = false
}
