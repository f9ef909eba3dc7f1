package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrProductNotFound is returned when a product id does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrDuplicateSKU is returned when a SKU is already taken.
	ErrDuplicateSKU = errors.New("sku already exists")
	// ErrInvalidProduct is returned for negative prices or stock.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrInvalidAdjustment is returned for unknown adjustment types or bad quantities.
	ErrInvalidAdjustment = errors.New("invalid inventory adjustment")
)

// Product is a sellable catalog entry with its on-hand stock.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	SKU         string          `gorm:"column:sku;not null;uniqueIndex" json:"sku"`
	Price       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"price"`
	Description string          `json:"description,omitempty"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	WeightGrams int             `gorm:"not null;default:0" json:"weight_grams,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AdjustmentType is the kind of stock movement recorded in the ledger.
type AdjustmentType string

const (
	AdjustmentAdd      AdjustmentType = "add"
	AdjustmentSubtract AdjustmentType = "subtract"
	AdjustmentSet      AdjustmentType = "set"
)

// ParseAdjustmentType validates s against the adjustment enum.
func ParseAdjustmentType(s string) (AdjustmentType, error) {
	switch t := AdjustmentType(s); t {
	case AdjustmentAdd, AdjustmentSubtract, AdjustmentSet:
		return t, nil
	}
	return "", fmt.Errorf("%w: type must be one of add, subtract, set", ErrInvalidAdjustment)
}

// ApplyAdjustment computes the stock after a movement. Stock never goes below zero.
func ApplyAdjustment(stock int, t AdjustmentType, quantity int) (int, error) {
	switch t {
	case AdjustmentAdd:
		if quantity <= 0 {
			return 0, fmt.Errorf("%w: quantity must be positive", ErrInvalidAdjustment)
		}
		return stock + quantity, nil
	case AdjustmentSubtract:
		if quantity <= 0 {
			return 0, fmt.Errorf("%w: quantity must be positive", ErrInvalidAdjustment)
		}
		return max(0, stock-quantity), nil
	case AdjustmentSet:
		if quantity < 0 {
			return 0, fmt.Errorf("%w: quantity must not be negative", ErrInvalidAdjustment)
		}
		return quantity, nil
	}
	return 0, fmt.Errorf("%w: unknown type %q", ErrInvalidAdjustment, t)
}

// InventoryHistory is one append-only ledger row. Rows are never updated or deleted.
type InventoryHistory struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ProductID     uint           `gorm:"not null;index" json:"product_id"`
	Type          AdjustmentType `gorm:"type:varchar(16);not null" json:"type"`
	Quantity      int            `gorm:"not null" json:"quantity"`
	PreviousStock int            `gorm:"not null" json:"previous_stock"`
	NewStock      int            `gorm:"not null" json:"new_stock"`
	Note          string         `json:"note,omitempty"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
}

// TableName keeps the ledger table name singular-free and explicit.
func (InventoryHistory) TableName() string {
	return "inventory_history"
}
