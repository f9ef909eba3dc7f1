package service

import (
	"context"
	"testing"

	"order-hub/internal/core/database/databasetest"
	adapter "order-hub/internal/features/catalog/adapters"
	"order-hub/internal/features/catalog/domain"
	"order-hub/internal/features/catalog/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *CatalogService {
	t.Helper()
	db := databasetest.SQLite(t, adapter.Models()...)
	return NewCatalogService(adapter.Repositories(db), adapter.NewGormTransactionScope(db))
}

func seedProduct(t *testing.T, s *CatalogService, sku string, stock int) *domain.Product {
	t.Helper()
	p := &domain.Product{Name: sku, SKU: sku, Price: decimal.NewFromInt(10000), Stock: stock}
	require.NoError(t, s.CreateProduct(context.Background(), p))
	return p
}

func TestCreateProduct_OpeningStockLedger(t *testing.T) {
	s := newTestService(t)
	p := seedProduct(t, s, "A", 10)

	history, err := s.History(context.Background(), p.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.AdjustmentSet, history[0].Type)
	assert.Equal(t, 10, history[0].NewStock)

	empty := seedProduct(t, s, "B", 0)
	history, err = s.History(context.Background(), empty.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestCreateProduct_Invalid(t *testing.T) {
	s := newTestService(t)

	err := s.CreateProduct(context.Background(), &domain.Product{Name: "x", SKU: "x", Stock: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)

	err = s.CreateProduct(context.Background(), &domain.Product{Name: "x", SKU: "x", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)
}

func TestAdjust(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	p := seedProduct(t, s, "A", 10)

	entry, err := s.Adjust(ctx, p.ID, domain.AdjustmentSubtract, 4, "damaged")
	require.NoError(t, err)
	assert.Equal(t, 10, entry.PreviousStock)
	assert.Equal(t, 6, entry.NewStock)

	entry, err = s.Adjust(ctx, p.ID, domain.AdjustmentSubtract, 50, "recount")
	require.NoError(t, err)
	assert.Equal(t, 0, entry.NewStock)

	entry, err = s.Adjust(ctx, p.ID, domain.AdjustmentAdd, 7, "restock")
	require.NoError(t, err)
	assert.Equal(t, 7, entry.NewStock)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)

	history, err := s.History(ctx, p.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "restock", history[0].Note)
}

func TestAdjust_InvalidLeavesStock(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	p := seedProduct(t, s, "A", 5)

	_, err := s.Adjust(ctx, p.ID, domain.AdjustmentAdd, 0, "")
	require.ErrorIs(t, err, domain.ErrInvalidAdjustment)

	_, err = s.Adjust(ctx, 999, domain.AdjustmentAdd, 1, "")
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)

	history, err := s.History(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestHistory_UnknownProduct(t *testing.T) {
	_, err := newTestService(t).History(context.Background(), 42, 10)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestUpdateCustomer_Partial(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	c := &domain.Customer{Name: "An", Phone: "0901", Address: "1 Le Loi", Email: "an@example.com"}
	require.NoError(t, s.CreateCustomer(ctx, c))

	address := "9 Hai Ba Trung"
	updated, err := s.UpdateCustomer(ctx, c.ID, ports.CustomerPatch{Address: &address})
	require.NoError(t, err)
	assert.Equal(t, "9 Hai Ba Trung", updated.Address)
	assert.Equal(t, "an@example.com", updated.Email)

	_, err = s.UpdateCustomer(ctx, 999, ports.CustomerPatch{})
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	p := seedProduct(t, s, "A", 3)
	seedProduct(t, s, "B", 0)

	price := decimal.RequireFromString("12500.50")
	updated, err := s.UpdateProduct(ctx, p.ID, ports.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.True(t, price.Equal(updated.Price))
	assert.Equal(t, 3, updated.Stock)

	taken := "B"
	_, err = s.UpdateProduct(ctx, p.ID, ports.ProductPatch{SKU: &taken})
	assert.ErrorIs(t, err, domain.ErrDuplicateSKU)

	negative := decimal.NewFromInt(-5)
	_, err = s.UpdateProduct(ctx, p.ID, ports.ProductPatch{Price: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)

	list, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Name)
}
