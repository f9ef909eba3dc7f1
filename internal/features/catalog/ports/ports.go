package ports

import (
	"context"

	"order-hub/internal/features/catalog/domain"

	"github.com/shopspring/decimal"
)

// CustomerRepository is the secondary port for customer storage.
type CustomerRepository interface {
	List(ctx context.Context) ([]domain.Customer, error)
	Get(ctx context.Context, id uint) (*domain.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
}

// ProductRepository is the secondary port for product storage.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id uint) (*domain.Product, error)
	// GetForUpdate loads the product and locks its row until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uint) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	SetStock(ctx context.Context, id uint, stock int) error
}

// InventoryLedger is the append-only stock movement log.
type InventoryLedger interface {
	Append(ctx context.Context, entry *domain.InventoryHistory) error
	ListByProduct(ctx context.Context, productID uint, limit int) ([]domain.InventoryHistory, error)
}

// TransactionalRepositories groups the repositories bound to one transaction.
type TransactionalRepositories struct {
	Customers CustomerRepository
	Products  ProductRepository
	Ledger    InventoryLedger
}

// TransactionScope runs fn inside a database transaction. A non-nil error
// from fn rolls the transaction back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// CustomerPatch holds the optional fields of a customer update.
type CustomerPatch struct {
	Name     *string
	Phone    *string
	Address  *string
	Ward     *string
	District *string
	Province *string
	Email    *string
}

// ProductPatch holds the optional fields of a product update. Stock is
// changed only through inventory adjustments.
type ProductPatch struct {
	Name        *string
	SKU         *string
	Price       *decimal.Decimal
	Description *string
	WeightGrams *int
}

// CatalogService is the primary port for customers, products and inventory.
type CatalogService interface {
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, id uint) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, customer *domain.Customer) error
	UpdateCustomer(ctx context.Context, id uint, patch CustomerPatch) (*domain.Customer, error)

	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id uint) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) error
	UpdateProduct(ctx context.Context, id uint, patch ProductPatch) (*domain.Product, error)

	Adjust(ctx context.Context, productID uint, kind domain.AdjustmentType, quantity int, note string) (*domain.InventoryHistory, error)
	History(ctx context.Context, productID uint, limit int) ([]domain.InventoryHistory, error)
}
