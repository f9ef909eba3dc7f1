package service

import (
	"context"
	"fmt"

	"order-hub/internal/core/logger"
	"order-hub/internal/features/catalog/domain"
	"order-hub/internal/features/catalog/ports"

	"go.uber.org/zap"
)

// CatalogService implements ports.CatalogService.
type CatalogService struct {
	repos ports.TransactionalRepositories
	tx    ports.TransactionScope
	log   *zap.Logger
}

// NewCatalogService creates a CatalogService. repos serve plain reads and
// writes; tx is used for stock movements.
func NewCatalogService(repos ports.TransactionalRepositories, tx ports.TransactionScope) *CatalogService {
	return &CatalogService{
		repos: repos,
		tx:    tx,
		log:   logger.Named("catalog"),
	}
}

func (s *CatalogService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.repos.Customers.List(ctx)
}

func (s *CatalogService) GetCustomer(ctx context.Context, id uint) (*domain.Customer, error) {
	return s.repos.Customers.Get(ctx, id)
}

func (s *CatalogService) CreateCustomer(ctx context.Context, customer *domain.Customer) error {
	customer.ID = 0
	return s.repos.Customers.Create(ctx, customer)
}

// UpdateCustomer applies the non-nil fields of patch.
func (s *CatalogService) UpdateCustomer(ctx context.Context, id uint, patch ports.CustomerPatch) (*domain.Customer, error) {
	customer, err := s.repos.Customers.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	setIf(&customer.Name, patch.Name)
	setIf(&customer.Phone, patch.Phone)
	setIf(&customer.Address, patch.Address)
	setIf(&customer.Ward, patch.Ward)
	setIf(&customer.District, patch.District)
	setIf(&customer.Province, patch.Province)
	setIf(&customer.Email, patch.Email)

	if err := s.repos.Customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repos.Products.List(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	return s.repos.Products.Get(ctx, id)
}

// CreateProduct inserts the product. A positive opening stock is recorded
// in the ledger as a "set" movement.
func (s *CatalogService) CreateProduct(ctx context.Context, product *domain.Product) error {
	if product.Stock < 0 || product.Price.IsNegative() {
		return fmt.Errorf("%w: stock and price must not be negative", domain.ErrInvalidProduct)
	}
	product.ID = 0

	return s.tx.Execute(ctx, func(repos ports.TransactionalRepositories) error {
		if err := repos.Products.Create(ctx, product); err != nil {
			return err
		}
		if product.Stock == 0 {
			return nil
		}
		return repos.Ledger.Append(ctx, &domain.InventoryHistory{
			ProductID:     product.ID,
			Type:          domain.AdjustmentSet,
			Quantity:      product.Stock,
			PreviousStock: 0,
			NewStock:      product.Stock,
			Note:          "opening stock",
		})
	})
}

// UpdateProduct applies the non-nil fields of patch.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, patch ports.ProductPatch) (*domain.Product, error) {
	product, err := s.repos.Products.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	setIf(&product.Name, patch.Name)
	setIf(&product.SKU, patch.SKU)
	setIf(&product.Description, patch.Description)
	setIf(&product.WeightGrams, patch.WeightGrams)
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidProduct)
		}
		product.Price = *patch.Price
	}

	if err := s.repos.Products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Adjust changes a product's stock and appends the ledger row in one transaction.
func (s *CatalogService) Adjust(ctx context.Context, productID uint, kind domain.AdjustmentType, quantity int, note string) (*domain.InventoryHistory, error) {
	var entry *domain.InventoryHistory
	err := s.tx.Execute(ctx, func(repos ports.TransactionalRepositories) error {
		var err error
		entry, err = AdjustStock(ctx, repos, productID, kind, quantity, note)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Stock adjusted",
		zap.Uint("product_id", productID),
		zap.String("type", string(kind)),
		zap.Int("previous_stock", entry.PreviousStock),
		zap.Int("new_stock", entry.NewStock),
		zap.String("ray_id", logger.RayID(ctx)),
	)
	return entry, nil
}

func (s *CatalogService) History(ctx context.Context, productID uint, limit int) ([]domain.InventoryHistory, error) {
	if _, err := s.repos.Products.Get(ctx, productID); err != nil {
		return nil, err
	}
	return s.repos.Ledger.ListByProduct(ctx, productID, limit)
}

// AdjustStock locks the product row, writes the new stock and appends the
// ledger row. repos must be bound to an open transaction.
func AdjustStock(ctx context.Context, repos ports.TransactionalRepositories, productID uint, kind domain.AdjustmentType, quantity int, note string) (*domain.InventoryHistory, error) {
	product, err := repos.Products.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}

	next, err := domain.ApplyAdjustment(product.Stock, kind, quantity)
	if err != nil {
		return nil, err
	}

	if err := repos.Products.SetStock(ctx, product.ID, next); err != nil {
		return nil, err
	}

	entry := &domain.InventoryHistory{
		ProductID:     product.ID,
		Type:          kind,
		Quantity:      quantity,
		PreviousStock: product.Stock,
		NewStock:      next,
		Note:          note,
	}
	if err := repos.Ledger.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
