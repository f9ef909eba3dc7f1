package adapter

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"order-hub/internal/core/database/databasetest"
	"order-hub/internal/features/catalog/domain"
	"order-hub/internal/features/catalog/ports"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCustomerRepository(databasetest.SQLite(t, Models()...))

	first := &domain.Customer{Name: "An", Phone: "0901", Address: "1 Le Loi"}
	second := &domain.Customer{Name: "Binh", Phone: "0902", Address: "2 Le Loi"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	found, err := repo.FindByPhone(ctx, "0901")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	_, err = repo.FindByPhone(ctx, "0999")
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)

	_, err = repo.Get(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)

	err = repo.Create(ctx, &domain.Customer{Name: "An again", Phone: "0901", Address: "3 Le Loi"})
	assert.ErrorIs(t, err, domain.ErrDuplicatePhone)

	second.Phone = "0901"
	assert.ErrorIs(t, repo.Update(ctx, second), domain.ErrDuplicatePhone)
}

func TestProductRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(databasetest.SQLite(t, Models()...))

	p := &domain.Product{Name: "Tea", SKU: "TEA-1", Price: decimal.RequireFromString("45000"), Stock: 3}
	require.NoError(t, repo.Create(ctx, p))

	err := repo.Create(ctx, &domain.Product{Name: "Tea copy", SKU: "TEA-1", Price: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrDuplicateSKU)

	require.NoError(t, repo.SetStock(ctx, p.ID, 9))
	locked, err := repo.GetForUpdate(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, locked.Stock)
	assert.True(t, decimal.RequireFromString("45000").Equal(locked.Price))

	assert.ErrorIs(t, repo.SetStock(ctx, 999, 1), domain.ErrProductNotFound)

	locked.Name = "Green tea"
	locked.Stock = 0
	require.NoError(t, repo.Update(ctx, locked))
	got, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Green tea", got.Name)
	assert.Equal(t, 9, got.Stock, "update must not touch stock")
}

func TestInventoryLedger_NewestFirst(t *testing.T) {
	ctx := context.Background()
	ledger := NewGormInventoryLedger(databasetest.SQLite(t, Models()...))

	for i := 1; i <= 3; i++ {
		require.NoError(t, ledger.Append(ctx, &domain.InventoryHistory{ProductID: 1, Type: domain.AdjustmentAdd, Quantity: i, NewStock: i}))
	}
	require.NoError(t, ledger.Append(ctx, &domain.InventoryHistory{ProductID: 2, Type: domain.AdjustmentAdd, Quantity: 1}))

	entries, err := ledger.ListByProduct(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 3, entries[0].Quantity)
	assert.Equal(t, 2, entries[1].Quantity)

	all, err := ledger.ListByProduct(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGetForUpdate_Postgres(t *testing.T) {
	db, mock := databasetest.Postgres(t)
	repo := NewGormProductRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE "products"."id" = $1 ORDER BY "products"."id" LIMIT $2 FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "sku", "price", "stock"}).AddRow(7, "Tea", "TEA-1", "45000", 4))

	p, err := repo.GetForUpdate(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Stock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionScope_Rollback(t *testing.T) {
	ctx := context.Background()
	db := databasetest.SQLite(t, Models()...)
	scope := NewGormTransactionScope(db)

	err := scope.Execute(ctx, func(repos ports.TransactionalRepositories) error {
		if err := repos.Customers.Create(ctx, &domain.Customer{Name: "An", Phone: "0901", Address: "x"}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")

	list, err := NewGormCustomerRepository(db).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
