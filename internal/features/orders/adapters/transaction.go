package adapter

import (
	"context"

	catalog "order-hub/internal/features/catalog/adapters"
	"order-hub/internal/features/orders/domain"
	"order-hub/internal/features/orders/ports"

	"gorm.io/gorm"
)

// GormTransactionScope implements ports.TransactionScope.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn with order, shipping and catalog repositories bound to
// a single transaction.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos ports.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repositories(tx))
	})
}

// Repositories binds every repository used by the order service to db.
func Repositories(db *gorm.DB) ports.TransactionalRepositories {
	return ports.TransactionalRepositories{
		Orders:   NewGormOrderRepository(db),
		Shipping: NewGormShippingRepository(db),
		Catalog:  catalog.Repositories(db),
	}
}

// Models lists the order tables for migration. Catalog tables must be migrated first.
func Models() []any {
	return []any{&domain.Order{}, &domain.OrderItem{}, &domain.ShippingRecord{}}
}
