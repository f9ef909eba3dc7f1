package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"order-hub/internal/core/database/databasetest"
	catalogadapter "order-hub/internal/features/catalog/adapters"
	catalogdomain "order-hub/internal/features/catalog/domain"
	adapter "order-hub/internal/features/orders/adapters"
	"order-hub/internal/features/orders/domain"
	"order-hub/internal/features/orders/ports"
	shipping "order-hub/internal/features/shipping/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockShippingService is a mock implementation of the shipping facade.
type MockShippingService struct {
	mock.Mock
}

func (m *MockShippingService) Execute(ctx context.Context, carrier string, op shipping.Operation, payload shipping.Payload) shipping.OperationResult {
	args := m.Called(ctx, carrier, op, payload)
	return args.Get(0).(shipping.OperationResult)
}

func (m *MockShippingService) Carriers() []shipping.CarrierInfo {
	return nil
}

type fixture struct {
	db       *gorm.DB
	svc      *OrderService
	carriers *MockShippingService
	teaID    uint
	cakeID   uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	models := append(catalogadapter.Models(), adapter.Models()...)
	db := databasetest.SQLite(t, models...)

	carriers := new(MockShippingService)
	f := &fixture{
		db:       db,
		svc:      NewOrderService(adapter.Repositories(db), adapter.NewGormTransactionScope(db), carriers),
		carriers: carriers,
	}

	products := catalogadapter.NewGormProductRepository(db)
	tea := &catalogdomain.Product{Name: "Tea", SKU: "TEA", Price: decimal.NewFromInt(45000), Stock: 10, WeightGrams: 250}
	cake := &catalogdomain.Product{Name: "Cake", SKU: "CAKE", Price: decimal.NewFromInt(20000), Stock: 10}
	require.NoError(t, products.Create(context.Background(), tea))
	require.NoError(t, products.Create(context.Background(), cake))
	f.teaID, f.cakeID = tea.ID, cake.ID
	return f
}

func (f *fixture) input(phone string, items ...ports.ItemInput) ports.CreateOrderInput {
	return ports.CreateOrderInput{
		Customer:     ports.CustomerInput{Name: "An Nguyen", Phone: phone, Address: "1 Le Loi", District: "Quan 1", Province: "HCM"},
		Items:        items,
		ShippingCost: decimal.NewFromInt(30000),
		Carrier:      shipping.CarrierGHN,
		Notes:        "call first",
	}
}

func (f *fixture) stock(t *testing.T, id uint) int {
	t.Helper()
	p, err := catalogadapter.NewGormProductRepository(f.db).Get(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) ledger(t *testing.T, id uint) []catalogdomain.InventoryHistory {
	t.Helper()
	entries, err := catalogadapter.NewGormInventoryLedger(f.db).ListByProduct(context.Background(), id, 0)
	require.NoError(t, err)
	return entries
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.svc.Create(ctx, f.input("0901",
		ports.ItemInput{ProductID: f.teaID, Quantity: 2},
		ports.ItemInput{ProductID: f.cakeID, Quantity: 1, Price: decimal.NewFromInt(18000)},
	))
	require.NoError(t, err)

	assert.Regexp(t, `^ORD-\d{4}-[0-9A-F]{6}$`, order.OrderNumber)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, "108000", order.Subtotal.String())
	assert.Equal(t, "138000", order.Total.String())
	require.NotNil(t, order.Customer)
	assert.Equal(t, "0901", order.Customer.Phone)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "45000", order.Items[0].Price.String(), "zero price takes the product price")
	assert.Equal(t, "Tea", order.Items[0].Product.Name)
	require.NotNil(t, order.Shipping)
	assert.Equal(t, shipping.CarrierGHN, order.Shipping.Carrier)
	assert.Equal(t, "pending", order.Shipping.Status)

	second, err := f.svc.Create(ctx, f.input("0901", ports.ItemInput{ProductID: f.cakeID, Quantity: 1}))
	require.NoError(t, err)
	assert.Equal(t, order.CustomerID, second.CustomerID, "customer is reused by phone")
	assert.Equal(t, int64(1), f.count(t, &catalogdomain.Customer{}))

	assert.Equal(t, 10, f.stock(t, f.teaID), "creating an order does not touch stock")
}

func TestCreate_RetriesWhenPhoneTakenConcurrently(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var inserts int32
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:phone_race", func(tx *gorm.DB) {
		if tx.Statement.Table == "customers" && atomic.AddInt32(&inserts, 1) == 1 {
			_ = tx.AddError(gorm.ErrDuplicatedKey)
		}
	}))

	order, err := f.svc.Create(ctx, f.input("0901", ports.ItemInput{ProductID: f.teaID, Quantity: 1}))
	require.NoError(t, err)
	assert.Equal(t, "0901", order.Customer.Phone)
	assert.Equal(t, int32(2), atomic.LoadInt32(&inserts))
	assert.Equal(t, int64(1), f.count(t, &catalogdomain.Customer{}))
	assert.Equal(t, int64(1), f.count(t, &domain.Order{}))
	assert.Equal(t, int64(1), f.count(t, &domain.ShippingRecord{}))
}

func TestCreate_Rejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Create(ctx, f.input("0901"))
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)

	_, err = f.svc.Create(ctx, f.input("0901", ports.ItemInput{ProductID: f.teaID, Quantity: 0}))
	assert.ErrorIs(t, err, domain.ErrInvalidItem)

	_, err = f.svc.Create(ctx, f.input("0901", ports.ItemInput{ProductID: 999, Quantity: 1}))
	assert.ErrorIs(t, err, catalogdomain.ErrProductNotFound)

	assert.Zero(t, f.count(t, &catalogdomain.Customer{}), "failed create must not leave a customer behind")
	assert.Zero(t, f.count(t, &domain.Order{}))
}

func TestSetStatus_ConfirmDeductsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.svc.Create(ctx, f.input("0901",
		ports.ItemInput{ProductID: f.teaID, Quantity: 3},
		ports.ItemInput{ProductID: f.cakeID, Quantity: 5},
	))
	require.NoError(t, err)

	updated, err := f.svc.SetStatus(ctx, order.ID, domain.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)
	assert.Equal(t, 7, f.stock(t, f.teaID))
	assert.Equal(t, 5, f.stock(t, f.cakeID))

	teaLedger := f.ledger(t, f.teaID)
	require.Len(t, teaLedger, 1)
	assert.Equal(t, catalogdomain.AdjustmentSubtract, teaLedger[0].Type)
	assert.Equal(t, 3, teaLedger[0].Quantity)
	assert.Equal(t, 10, teaLedger[0].PreviousStock)
	assert.Equal(t, 7, teaLedger[0].NewStock)
	assert.Contains(t, teaLedger[0].Note, order.OrderNumber)
	require.Len(t, f.ledger(t, f.cakeID), 1)

	_, err = f.svc.SetStatus(ctx, order.ID, domain.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, 7, f.stock(t, f.teaID))
	assert.Equal(t, 5, f.stock(t, f.cakeID))
	assert.Equal(t, int64(2), f.count(t, &catalogdomain.InventoryHistory{}))

	_, err = f.svc.SetStatus(ctx, order.ID, domain.StatusShipping)
	require.NoError(t, err)
	assert.Equal(t, 7, f.stock(t, f.teaID))
}

func TestSetStatus_ConcurrentConfirm(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.svc.Create(ctx, f.input("0901", ports.ItemInput{ProductID: f.teaID, Quantity: 4}))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.SetStatus(ctx, order.ID, domain.StatusConfirmed)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 6, f.stock(t, f.teaID))
	assert.Len(t, f.ledger(t, f.teaID), 1)
}

func TestSetStatus_StockFloor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.svc.Create(ctx, f.input("0901", ports.ItemInput{ProductID: f.teaID, Quantity: 25}))
	require.NoError(t, err)

	_, err = f.svc.SetStatus(ctx, order.ID, domain.StatusConfirmed)
	require.NoError(t, err)

	assert.Equal(t, 0, f.stock(t, f.teaID))
	entries := f.ledger(t, f.teaID)
	require.Len(t, entries, 1)
	assert.Equal(t, 10, entries[0].PreviousStock)
	assert.Equal(t, 0, entries[0].NewStock)
}

func TestSetStatus_FailureRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.svc.Create(ctx, f.input("0901",
		ports.ItemInput{ProductID: f.teaID, Quantity: 3},
		ports.ItemInput{ProductID: f.cakeID, Quantity: 5},
	))
	require.NoError(t, err)

	var ledgerWrites int32
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:fail_second_ledger_row", func(tx *gorm.DB) {
		if tx.Statement.Table == "inventory_history" && atomic.AddInt32(&ledgerWrites, 1) == 2 {
			_ = tx.AddError(errors.New("injected failure"))
		}
	}))

	_, err = f.svc.SetStatus(ctx, order.ID, domain.StatusConfirmed)
	require.Error(t, err)

	got, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, 10, f.stock(t, f.teaID))
	assert.Equal(t, 10, f.stock(t, f.cakeID))
	assert.Zero(t, f.count(t, &catalogdomain.InventoryHistory{}))
}

func TestSetStatus_Invalid(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SetStatus(context.Background(), 1, domain.OrderStatus("lost"))
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.svc.SetStatus(context.Background(), 999, domain.StatusConfirmed)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestSetStatus_PostgresRollback(t *testing.T) {
	db, sqlMock := databasetest.Postgres(t)
	svc := NewOrderService(adapter.Repositories(db), adapter.NewGormTransactionScope(db), new(MockShippingService))

	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery(`SELECT \* FROM "orders" WHERE orders.id = \$1 LIMIT .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_number", "status"}).AddRow(1, "ORD-2024-ABCDEF", "pending"))
	sqlMock.ExpectQuery(`SELECT \* FROM "order_items" WHERE order_id = \$1 ORDER BY product_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "price"}).AddRow(1, 1, 7, 2, "1000"))
	sqlMock.ExpectExec(`UPDATE "orders" SET "status"=`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectQuery(`SELECT \* FROM "products" WHERE "products"."id" = \$1 .* FOR UPDATE`).
		WillReturnError(errors.New("lock timeout"))
	sqlMock.ExpectRollback()

	_, err := svc.SetStatus(context.Background(), 1, domain.StatusConfirmed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock timeout")
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.svc.Create(ctx, f.input("0901", ports.ItemInput{ProductID: f.teaID, Quantity: 1}))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, order.ID))
	assert.Zero(t, f.count(t, &domain.Order{}))
	assert.Zero(t, f.count(t, &domain.OrderItem{}))
	assert.Zero(t, f.count(t, &domain.ShippingRecord{}))

	assert.ErrorIs(t, f.svc.Delete(ctx, order.ID), domain.ErrOrderNotFound)
}

func TestDelete_FailureRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.svc.Create(ctx, f.input("0901", ports.ItemInput{ProductID: f.teaID, Quantity: 1}))
	require.NoError(t, err)

	require.NoError(t, f.db.Callback().Delete().Before("gorm:delete").Register("test:fail_order_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "orders" {
			_ = tx.AddError(errors.New("injected failure"))
		}
	}))

	require.Error(t, f.svc.Delete(ctx, order.ID))
	assert.Equal(t, int64(1), f.count(t, &domain.Order{}))
	assert.Equal(t, int64(1), f.count(t, &domain.OrderItem{}))
	assert.Equal(t, int64(1), f.count(t, &domain.ShippingRecord{}))
}

func TestList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.svc.Create(ctx, f.input("0901", ports.ItemInput{ProductID: f.teaID, Quantity: 1}))
	require.NoError(t, err)
	in := f.input("0988", ports.ItemInput{ProductID: f.cakeID, Quantity: 1})
	in.Customer.Name = "Binh Tran"
	second, err := f.svc.Create(ctx, in)
	require.NoError(t, err)
	_, err = f.svc.SetStatus(ctx, second.ID, domain.StatusConfirmed)
	require.NoError(t, err)

	page, err := f.svc.List(ctx, ports.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	require.Len(t, page.Orders, 2)
	assert.Equal(t, second.ID, page.Orders[0].ID, "newest first")
	assert.NotNil(t, page.Orders[0].Customer)
	assert.NotEmpty(t, page.Orders[0].Items)

	page, err = f.svc.List(ctx, ports.ListFilter{Status: "confirmed"})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, second.ID, page.Orders[0].ID)

	page, err = f.svc.List(ctx, ports.ListFilter{Search: "Binh"})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, int64(1), page.Total)

	page, err = f.svc.List(ctx, ports.ListFilter{Search: first.OrderNumber})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, first.ID, page.Orders[0].ID)

	page, err = f.svc.List(ctx, ports.ListFilter{CustomerID: first.CustomerID})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)

	page, err = f.svc.List(ctx, ports.ListFilter{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, ports.MaxLimit, page.Limit, "reports the applied page size")
	assert.Len(t, page.Orders, 2)

	page, err = f.svc.List(ctx, ports.ListFilter{Page: 2, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, first.ID, page.Orders[0].ID)

	_, err = f.svc.List(ctx, ports.ListFilter{Status: "lost"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestGetByNumber(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.svc.Create(ctx, f.input("0901", ports.ItemInput{ProductID: f.teaID, Quantity: 1}))
	require.NoError(t, err)

	got, err := f.svc.GetByNumber(ctx, order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.svc.GetByNumber(ctx, "ORD-0000-XXXXXX")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestUpdateShipping(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.svc.Create(ctx, f.input("0901", ports.ItemInput{ProductID: f.teaID, Quantity: 1}))
	require.NoError(t, err)
	record, err := f.svc.GetShipping(ctx, order.ID)
	require.NoError(t, err)

	carrier := shipping.CarrierJTExpress
	tracking := "JT000123"
	updated, err := f.svc.UpdateShipping(ctx, record.ID, ports.ShippingPatch{Carrier: &carrier, TrackingNumber: &tracking})
	require.NoError(t, err)
	assert.Equal(t, shipping.CarrierJTExpress, updated.Carrier)
	assert.Equal(t, "JT000123", updated.TrackingNumber)
	assert.Equal(t, "pending", updated.Status)

	bogus := shipping.CarrierID("dhl")
	_, err = f.svc.UpdateShipping(ctx, record.ID, ports.ShippingPatch{Carrier: &bogus})
	assert.ErrorIs(t, err, shipping.ErrUnknownCarrier)

	_, err = f.svc.UpdateShipping(ctx, 999, ports.ShippingPatch{})
	assert.ErrorIs(t, err, domain.ErrShippingNotFound)

	_, err = f.svc.GetShipping(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrShippingNotFound)
}

func TestShipmentRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.svc.Create(ctx, f.input("0901",
		ports.ItemInput{ProductID: f.teaID, Quantity: 2},
		ports.ItemInput{ProductID: f.cakeID, Quantity: 1},
	))
	require.NoError(t, err)

	req, err := f.svc.ShipmentRequest(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, req.OrderNumber)
	assert.Equal(t, "An Nguyen", req.Recipient.Name)
	assert.Equal(t, "HCM", req.Recipient.Province)
	assert.Equal(t, "140000", req.CODAmount.String())
	assert.Equal(t, "110000", req.Parcel.DeclaredValue.String())
	// Cake has no weight and counts as the default item weight.
	assert.Equal(t, 2*250+shipping.DefaultItemWeightGrams, req.Parcel.WeightGrams)
	require.Len(t, req.Items, 2)
	assert.Equal(t, "TEA", req.Items[0].SKU)
	assert.Equal(t, 250, req.Items[0].WeightGrams)
	assert.Equal(t, "call first", req.Note)
}

func TestBuildShipmentRequest_UnweightedItems(t *testing.T) {
	order := &domain.Order{
		OrderNumber: "ORD-2026-ABCDEF",
		Items: []domain.OrderItem{
			{ProductID: 1, Quantity: 2, Product: &catalogdomain.Product{Name: "Card", SKU: "CARD"}},
			{ProductID: 2, Quantity: 1, Product: &catalogdomain.Product{Name: "Mug", SKU: "MUG", WeightGrams: 300}},
			{ProductID: 3, Quantity: 1},
		},
	}

	req := BuildShipmentRequest(order)
	require.Len(t, req.Items, 3)
	assert.Equal(t, 0, req.Items[0].WeightGrams)
	assert.Equal(t, "Product 3", req.Items[2].Name)

	items := 0
	for _, it := range req.Items {
		items += shipping.OrDefault(it.WeightGrams, shipping.DefaultItemWeightGrams) * it.Quantity
	}
	assert.Equal(t, 2*500+300+500, req.Parcel.WeightGrams)
	assert.Equal(t, items, req.Parcel.WeightGrams)
}

func TestShip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.svc.Create(ctx, f.input("0901", ports.ItemInput{ProductID: f.teaID, Quantity: 1}))
	require.NoError(t, err)

	f.carriers.On("Execute", ctx, "ghn", shipping.OpCreateShipment, mock.MatchedBy(func(p shipping.Payload) bool {
		return p.Shipment != nil && p.Shipment.OrderNumber == order.OrderNumber
	})).Return(shipping.Succeeded("request succeeded", map[string]any{"order_code": "GHN1"}, 200)).Once()

	result, err := f.svc.Ship(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)

	record, err := f.svc.GetShipping(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, ShippingStatusCreated, record.Status)
	assert.NotNil(t, record.ShippingDate)

	_, err = f.svc.Ship(ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyShipped)
	f.carriers.AssertExpectations(t)
	f.carriers.AssertNumberOfCalls(t, "Execute", 1)
}

func TestShip_CarrierFailureKeepsRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.svc.Create(ctx, f.input("0901", ports.ItemInput{ProductID: f.teaID, Quantity: 1}))
	require.NoError(t, err)

	f.carriers.On("Execute", ctx, "ghn", shipping.OpCreateShipment, mock.Anything).
		Return(shipping.Failed(shipping.CodeNotConnected, "GHN API key is not configured", nil))

	result, err := f.svc.Ship(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)

	record, err := f.svc.GetShipping(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", record.Status)
	assert.Nil(t, record.ShippingDate)

	_, err = f.svc.Ship(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
