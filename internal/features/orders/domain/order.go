package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	catalog "order-hub/internal/features/catalog/domain"
	shipping "order-hub/internal/features/shipping/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrOrderNotFound is returned when the order does not exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrShippingNotFound is returned when an order has no shipping record.
	ErrShippingNotFound = errors.New("shipping record not found")
	// ErrEmptyOrder is returned when an order is placed without items.
	ErrEmptyOrder = errors.New("order must contain at least one item")
	// ErrInvalidStatus is returned for values outside the status enum.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrInvalidItem is returned for non-positive quantities or negative prices.
	ErrInvalidItem = errors.New("invalid order item")
	// ErrAlreadyShipped is returned when the carrier already accepted the shipment.
	ErrAlreadyShipped = errors.New("order has already been shipped")
)

// OrderStatus represents the current state of an order.
type OrderStatus string

const (
	// StatusPending is the state of a freshly placed order.
	StatusPending OrderStatus = "pending"
	// StatusConfirmed commits the order; stock is deducted on entering it.
	StatusConfirmed OrderStatus = "confirmed"
	// StatusShipping indicates the parcel is with the carrier.
	StatusShipping OrderStatus = "shipping"
	// StatusCompleted indicates the order was delivered.
	StatusCompleted OrderStatus = "completed"
	// StatusCancelled indicates the order was abandoned.
	StatusCancelled OrderStatus = "cancelled"
)

// AllStatuses returns the status enum in lifecycle order.
func AllStatuses() []OrderStatus {
	return []OrderStatus{StatusPending, StatusConfirmed, StatusShipping, StatusCompleted, StatusCancelled}
}

// ParseStatus validates s against the status enum.
func ParseStatus(s string) (OrderStatus, error) {
	for _, st := range AllStatuses() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w %q: must be one of pending, confirmed, shipping, completed, cancelled", ErrInvalidStatus, s)
}

// Order represents a customer order.
type Order struct {
	// ID is the surrogate key.
	ID uint `gorm:"primaryKey" json:"id"`
	// OrderNumber is the human readable identifier, e.g. ORD-2024-3F9A1C.
	OrderNumber string `gorm:"size:32;not null;uniqueIndex" json:"order_number"`
	// CustomerID references the buyer.
	CustomerID uint              `gorm:"not null;index" json:"customer_id"`
	Customer   *catalog.Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	// OrderDate is when the order was placed.
	OrderDate time.Time   `gorm:"not null;index" json:"order_date"`
	Status    OrderStatus `gorm:"type:varchar(16);not null;default:pending;index" json:"status"`
	// Subtotal is the sum of the item subtotals.
	Subtotal     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"subtotal"`
	ShippingCost decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"shipping_cost"`
	// Total is Subtotal plus ShippingCost.
	Total     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Items    []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Shipping *ShippingRecord `gorm:"foreignKey:OrderID" json:"shipping,omitempty"`
}

// OrderItem is one product line of an order.
type OrderItem struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	OrderID   uint             `gorm:"not null;index" json:"order_id"`
	ProductID uint             `gorm:"not null;index" json:"product_id"`
	Product   *catalog.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int              `gorm:"not null" json:"quantity"`
	// Price is the unit price at the time of ordering.
	Price    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"price"`
	Subtotal decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"subtotal"`
}

// ShippingRecord is the single delivery record of an order.
type ShippingRecord struct {
	ID             uint               `gorm:"primaryKey" json:"id"`
	OrderID        uint               `gorm:"not null;uniqueIndex" json:"order_id"`
	Carrier        shipping.CarrierID `gorm:"type:varchar(32);not null" json:"carrier"`
	TrackingNumber string             `json:"tracking_number,omitempty"`
	// Status is free text reported by staff or the carrier.
	Status           string     `gorm:"not null;default:pending" json:"status"`
	ShippingDate     *time.Time `json:"shipping_date,omitempty"`
	ExpectedDelivery *time.Time `json:"expected_delivery,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (ShippingRecord) TableName() string {
	return "shipping_records"
}

// NewOrderNumber returns ORD-<year>-<6 random hex characters>.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("ORD-%d-%s", now.Year(), strings.ToUpper(suffix))
}

// ComputeTotals fills every item subtotal, the order subtotal and the total.
func (o *Order) ComputeTotals() {
	subtotal := decimal.Zero
	for i := range o.Items {
		item := &o.Items[i]
		item.Subtotal = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(item.Subtotal)
	}
	o.Subtotal = subtotal
	o.Total = subtotal.Add(o.ShippingCost)
}
