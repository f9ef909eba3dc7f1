package adapter

import (
	"context"
	"errors"
	"fmt"

	"order-hub/internal/core/database"
	"order-hub/internal/features/catalog/domain"

	"gorm.io/gorm"
)

// GormCustomerRepository implements ports.CustomerRepository.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a repository on db, which may be a transaction.
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	var customers []domain.Customer
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

func (r *GormCustomerRepository) Get(ctx context.Context, id uint) (*domain.Customer, error) {
	var customer domain.Customer
	if err := r.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer %d: %w", id, err)
	}
	return &customer, nil
}

// FindByPhone returns the customer with the phone number.
func (r *GormCustomerRepository) FindByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).Where("phone = ?", phone).Order("id").First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("find customer by phone: %w", err)
	}
	return &customer, nil
}

func (r *GormCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicatePhone
		}
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (r *GormCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	if err := r.db.WithContext(ctx).Save(customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicatePhone
		}
		return fmt.Errorf("update customer %d: %w", customer.ID, err)
	}
	return nil
}

// GormProductRepository implements ports.ProductRepository.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a repository on db, which may be a transaction.
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := r.db.WithContext(ctx).Order("name").Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (r *GormProductRepository) Get(ctx context.Context, id uint) (*domain.Product, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *GormProductRepository) GetForUpdate(ctx context.Context, id uint) (*domain.Product, error) {
	return r.get(database.ForUpdate(r.db.WithContext(ctx)), id)
}

func (r *GormProductRepository) get(db *gorm.DB, id uint) (*domain.Product, error) {
	var product domain.Product
	if err := db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &product, nil
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateSKU
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *GormProductRepository) Update(ctx context.Context, product *domain.Product) error {
	err := r.db.WithContext(ctx).Model(product).Select("name", "sku", "price", "description", "weight_grams").Updates(product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateSKU
		}
		return fmt.Errorf("update product %d: %w", product.ID, err)
	}
	return nil
}

func (r *GormProductRepository) SetStock(ctx context.Context, id uint, stock int) error {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Update("stock", stock)
	if res.Error != nil {
		return fmt.Errorf("set stock of product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// GormInventoryLedger implements ports.InventoryLedger.
type GormInventoryLedger struct {
	db *gorm.DB
}

// NewGormInventoryLedger creates a ledger on db, which may be a transaction.
func NewGormInventoryLedger(db *gorm.DB) *GormInventoryLedger {
	return &GormInventoryLedger{db: db}
}

func (l *GormInventoryLedger) Append(ctx context.Context, entry *domain.InventoryHistory) error {
	if err := l.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append inventory history: %w", err)
	}
	return nil
}

// ListByProduct returns the newest entries first. limit <= 0 returns all.
func (l *GormInventoryLedger) ListByProduct(ctx context.Context, productID uint, limit int) ([]domain.InventoryHistory, error) {
	q := l.db.WithContext(ctx).Where("product_id = ?", productID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var entries []domain.InventoryHistory
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list inventory history: %w", err)
	}
	return entries, nil
}
