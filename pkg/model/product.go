// Package model defines the records held by the inventory and credential stores.
package model

import (
	"fmt"
	"math"
)

// DefaultLowStockThreshold is the quantity at or below which a product is low on stock
const DefaultLowStockThreshold = 10

// MaxQuantity is the largest quantity the snapshot format can hold
const MaxQuantity = math.MaxInt32

// Product is a single inventory record keyed by ID
type Product struct {
	Name     string  `json:"name"`
	ID       string  `json:"id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// NewProduct creates a product and validates it
func NewProduct(name, id string, quantity int, price float64) (Product, error) {
	p := Product{Name: name, ID: id, Quantity: quantity, Price: price}
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

// Validate checks that the product can be stored
func (p Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: product ID", ErrEmptyField)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: product name", ErrEmptyField)
	}
	if err := checkQuantity(p.Quantity); err != nil {
		return err
	}
	return checkPrice(p.Price)
}

// SetQuantity replaces the quantity. Negative values are rejected and the
// current quantity is kept.
func (p *Product) SetQuantity(quantity int) error {
	if err := checkQuantity(quantity); err != nil {
		return err
	}
	p.Quantity = quantity
	return nil
}

// SetPrice replaces the unit price. Negative values are rejected and the
// current price is kept.
func (p *Product) SetPrice(price float64) error {
	if err := checkPrice(price); err != nil {
		return err
	}
	p.Price = price
	return nil
}

// TotalValue returns quantity times unit price
func (p Product) TotalValue() float64 {
	return float64(p.Quantity) * p.Price
}

// IsLowStock reports whether the quantity is at or below threshold
func (p Product) IsLowStock(threshold int) bool {
	return p.Quantity <= threshold
}

func checkQuantity(quantity int) error {
	if quantity < 0 || quantity > MaxQuantity {
		return fmt.Errorf("%w: quantity %d", ErrInvalidValue, quantity)
	}
	return nil
}

func checkPrice(price float64) error {
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return fmt.Errorf("%w: price %v", ErrInvalidValue, price)
	}
	return nil
}
