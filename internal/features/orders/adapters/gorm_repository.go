package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"order-hub/internal/core/database"
	"order-hub/internal/features/orders/domain"
	"order-hub/internal/features/orders/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements ports.OrderRepository.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a repository on db, which may be a transaction.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts the order row only. Items and shipping are written separately.
func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *GormOrderRepository) CreateItems(ctx context.Context, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error; err != nil {
		return fmt.Errorf("create order items: %w", err)
	}
	return nil
}

func (r *GormOrderRepository) filtered(ctx context.Context, f ports.ListFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Order{})

	if f.Status != "" && f.Status != "all" {
		q = q.Where("orders.status = ?", f.Status)
	}
	if f.DateFrom != nil {
		q = q.Where("orders.order_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("orders.order_date <= ?", *f.DateTo)
	}
	if f.CustomerID != 0 {
		q = q.Where("orders.customer_id = ?", f.CustomerID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + s + "%"
		q = q.Joins("JOIN customers ON customers.id = orders.customer_id").
			Where("orders.order_number LIKE ? OR customers.name LIKE ? OR customers.phone LIKE ?", like, like, like)
	}
	return q
}

// List returns one page of matching orders, newest first, and the total match count.
func (r *GormOrderRepository) List(ctx context.Context, f ports.ListFilter) ([]domain.Order, int64, error) {
	f = f.Normalized()

	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	var orders []domain.Order
	err := withRelations(r.filtered(ctx, f)).
		Select("orders.*").
		Order("orders.order_date DESC").
		Order("orders.id DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

func (r *GormOrderRepository) Get(ctx context.Context, id uint) (*domain.Order, error) {
	return r.first(withRelations(r.db.WithContext(ctx)).Where("orders.id = ?", id))
}

func (r *GormOrderRepository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return r.first(withRelations(r.db.WithContext(ctx)).Where("orders.order_number = ?", number))
}

func (r *GormOrderRepository) GetForUpdate(ctx context.Context, id uint) (*domain.Order, error) {
	order, err := r.first(database.ForUpdate(r.db.WithContext(ctx)).Where("orders.id = ?", id))
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("order_id = ?", id).Order("product_id").Find(&order.Items).Error; err != nil {
		return nil, fmt.Errorf("load items of order %d: %w", id, err)
	}
	return order, nil
}

func (r *GormOrderRepository) first(q *gorm.DB) (*domain.Order, error) {
	var order domain.Order
	if err := q.Take(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &order, nil
}

// UpdateStatus persists the status and bumps updated_at.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id uint, status domain.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("update status of order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *GormOrderRepository) DeleteItems(ctx context.Context, orderID uint) error {
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&domain.OrderItem{}).Error; err != nil {
		return fmt.Errorf("delete items of order %d: %w", orderID, err)
	}
	return nil
}

func (r *GormOrderRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Order{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func withRelations(q *gorm.DB) *gorm.DB {
	return q.Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Product").
		Preload("Shipping")
}

// GormShippingRepository implements ports.ShippingRepository.
type GormShippingRepository struct {
	db *gorm.DB
}

// NewGormShippingRepository creates a repository on db, which may be a transaction.
func NewGormShippingRepository(db *gorm.DB) *GormShippingRepository {
	return &GormShippingRepository{db: db}
}

func (r *GormShippingRepository) Create(ctx context.Context, record *domain.ShippingRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("create shipping record: %w", err)
	}
	return nil
}

func (r *GormShippingRepository) Get(ctx context.Context, id uint) (*domain.ShippingRecord, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *GormShippingRepository) GetByOrder(ctx context.Context, orderID uint) (*domain.ShippingRecord, error) {
	return r.first(r.db.WithContext(ctx).Where("order_id = ?", orderID))
}

func (r *GormShippingRepository) first(q *gorm.DB) (*domain.ShippingRecord, error) {
	var record domain.ShippingRecord
	if err := q.Take(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrShippingNotFound
		}
		return nil, fmt.Errorf("get shipping record: %w", err)
	}
	return &record, nil
}

func (r *GormShippingRepository) Update(ctx context.Context, record *domain.ShippingRecord) error {
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("update shipping record %d: %w", record.ID, err)
	}
	return nil
}

func (r *GormShippingRepository) DeleteByOrder(ctx context.Context, orderID uint) error {
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&domain.ShippingRecord{}).Error; err != nil {
		return fmt.Errorf("delete shipping of order %d: %w", orderID, err)
	}
	return nil
}
