package adapter

import (
	"context"

	"order-hub/internal/features/catalog/domain"
	"order-hub/internal/features/catalog/ports"

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

// Execute runs fn with repositories bound to a single transaction.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos ports.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repositories(tx))
	})
}

// Repositories binds every catalog repository to db.
func Repositories(db *gorm.DB) ports.TransactionalRepositories {
	return ports.TransactionalRepositories{
		Customers: NewGormCustomerRepository(db),
		Products:  NewGormProductRepository(db),
		Ledger:    NewGormInventoryLedger(db),
	}
}

// Models lists the catalog tables for migration.
func Models() []any {
	return []any{&domain.Customer{}, &domain.Product{}, &domain.InventoryHistory{}}
}
