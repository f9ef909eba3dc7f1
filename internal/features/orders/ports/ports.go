package ports

import (
	"context"
	"time"

	catalogports "order-hub/internal/features/catalog/ports"
	"order-hub/internal/features/orders/domain"
	shipping "order-hub/internal/features/shipping/domain"

	"github.com/shopspring/decimal"
)

// ListFilter narrows GET /orders. Zero values mean "no filter".
type ListFilter struct {
	// Status is an order status or "all".
	Status     string
	DateFrom   *time.Time
	DateTo     *time.Time
	CustomerID uint
	// Search matches the order number, customer name or customer phone.
	Search string
	Page   int
	Limit  int
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Normalized applies the default page and the default and maximum page size.
func (f ListFilter) Normalized() ListFilter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

// OrderPage is one page of orders plus the unpaged match count.
type OrderPage struct {
	Orders []domain.Order `json:"orders"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

// OrderRepository is the secondary port for order storage.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	CreateItems(ctx context.Context, items []domain.OrderItem) error
	List(ctx context.Context, filter ListFilter) ([]domain.Order, int64, error)
	// Get loads the order with customer, items, products and shipping.
	Get(ctx context.Context, id uint) (*domain.Order, error)
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	// GetForUpdate locks the order row and loads its items.
	GetForUpdate(ctx context.Context, id uint) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id uint, status domain.OrderStatus) error
	DeleteItems(ctx context.Context, orderID uint) error
	Delete(ctx context.Context, id uint) error
}

// ShippingRepository is the secondary port for shipping records.
type ShippingRepository interface {
	Create(ctx context.Context, record *domain.ShippingRecord) error
	Get(ctx context.Context, id uint) (*domain.ShippingRecord, error)
	GetByOrder(ctx context.Context, orderID uint) (*domain.ShippingRecord, error)
	Update(ctx context.Context, record *domain.ShippingRecord) error
	DeleteByOrder(ctx context.Context, orderID uint) error
}

// TransactionalRepositories groups the repositories bound to one transaction.
type TransactionalRepositories struct {
	Orders   OrderRepository
	Shipping ShippingRepository
	Catalog  catalogports.TransactionalRepositories
}

// TransactionScope runs fn inside a database transaction.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// CustomerInput identifies the buyer. An existing customer with the same
// phone number is reused.
type CustomerInput struct {
	Name     string
	Phone    string
	Address  string
	Ward     string
	District string
	Province string
	Email    string
}

// ItemInput is one requested order line. A zero price takes the product price.
type ItemInput struct {
	ProductID uint
	Quantity  int
	Price     decimal.Decimal
}

// CreateOrderInput is everything needed to place an order.
type CreateOrderInput struct {
	Customer     CustomerInput
	Items        []ItemInput
	ShippingCost decimal.Decimal
	Carrier      shipping.CarrierID
	Notes        string
}

// ShippingPatch holds the optional fields of a shipping record update.
type ShippingPatch struct {
	Carrier          *shipping.CarrierID
	TrackingNumber   *string
	Status           *string
	ShippingDate     *time.Time
	ExpectedDelivery *time.Time
}

// OrderService is the primary port for orders and fulfillment.
type OrderService interface {
	Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) (*OrderPage, error)
	Get(ctx context.Context, id uint) (*domain.Order, error)
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	SetStatus(ctx context.Context, id uint, status domain.OrderStatus) (*domain.Order, error)
	Delete(ctx context.Context, id uint) error

	GetShipping(ctx context.Context, orderID uint) (*domain.ShippingRecord, error)
	UpdateShipping(ctx context.Context, id uint, patch ShippingPatch) (*domain.ShippingRecord, error)

	ShipmentRequest(ctx context.Context, orderID uint) (*shipping.ShipmentRequest, error)
	Ship(ctx context.Context, orderID uint) (shipping.OperationResult, error)
}
