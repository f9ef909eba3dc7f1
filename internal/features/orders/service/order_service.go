package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"order-hub/internal/core/logger"
	catalogdomain "order-hub/internal/features/catalog/domain"
	catalog "order-hub/internal/features/catalog/service"
	"order-hub/internal/features/orders/domain"
	"order-hub/internal/features/orders/ports"
	shipping "order-hub/internal/features/shipping/domain"
	shippingports "order-hub/internal/features/shipping/ports"

	"go.uber.org/zap"
)

// ShippingStatusCreated is written to the shipping record once the carrier
// accepted the shipment.
const ShippingStatusCreated = "created"

// OrderService implements ports.OrderService.
type OrderService struct {
	repos    ports.TransactionalRepositories
	tx       ports.TransactionScope
	carriers shippingports.ShippingService
	now      func() time.Time
	log      *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(repos ports.TransactionalRepositories, tx ports.TransactionScope, carriers shippingports.ShippingService) *OrderService {
	return &OrderService{
		repos:    repos,
		tx:       tx,
		carriers: carriers,
		now:      func() time.Time { return time.Now().UTC() },
		log:      logger.Named("orders"),
	}
}

// Create places an order in one transaction: customer lookup or insert by
// phone, order row, item rows and a pending shipping record.
func (s *OrderService) Create(ctx context.Context, in ports.CreateOrderInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	for _, item := range in.Items {
		if item.Quantity < 1 || item.Price.IsNegative() {
			return nil, fmt.Errorf("%w: quantity must be at least 1 and price must not be negative", domain.ErrInvalidItem)
		}
	}
	if in.ShippingCost.IsNegative() {
		return nil, fmt.Errorf("%w: shipping cost must not be negative", domain.ErrInvalidItem)
	}
	carrier := in.Carrier
	if carrier == "" {
		carrier = shipping.CarrierOther
	}

	now := s.now()
	order := &domain.Order{
		OrderNumber:  domain.NewOrderNumber(now),
		OrderDate:    now,
		Status:       domain.StatusPending,
		ShippingCost: in.ShippingCost,
		Notes:        in.Notes,
	}

	place := func(repos ports.TransactionalRepositories) error {
		order.ID = 0
		customer, err := findOrCreateCustomer(ctx, repos, in.Customer)
		if err != nil {
			return err
		}
		order.CustomerID = customer.ID

		order.Items = make([]domain.OrderItem, 0, len(in.Items))
		for _, item := range in.Items {
			product, err := repos.Catalog.Products.Get(ctx, item.ProductID)
			if err != nil {
				return err
			}
			price := item.Price
			if price.IsZero() {
				price = product.Price
			}
			order.Items = append(order.Items, domain.OrderItem{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				Price:     price,
			})
		}
		order.ComputeTotals()

		if err := repos.Orders.Create(ctx, order); err != nil {
			return err
		}
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
		}
		if err := repos.Orders.CreateItems(ctx, order.Items); err != nil {
			return err
		}
		return repos.Shipping.Create(ctx, &domain.ShippingRecord{
			OrderID: order.ID,
			Carrier: carrier,
			Status:  string(domain.StatusPending),
		})
	}
	err := s.tx.Execute(ctx, place)
	if errors.Is(err, catalogdomain.ErrDuplicatePhone) {
		// A concurrent order inserted the same new customer; it is committed now.
		err = s.tx.Execute(ctx, place)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("Order created",
		zap.String("order_number", order.OrderNumber),
		zap.Uint("customer_id", order.CustomerID),
		zap.String("total", order.Total.String()),
		zap.String("ray_id", logger.RayID(ctx)),
	)
	return s.repos.Orders.Get(ctx, order.ID)
}

func findOrCreateCustomer(ctx context.Context, repos ports.TransactionalRepositories, in ports.CustomerInput) (*catalogdomain.Customer, error) {
	customer, err := repos.Catalog.Customers.FindByPhone(ctx, in.Phone)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, catalogdomain.ErrCustomerNotFound) {
		return nil, err
	}

	customer = &catalogdomain.Customer{
		Name:     in.Name,
		Phone:    in.Phone,
		Address:  in.Address,
		Ward:     in.Ward,
		District: in.District,
		Province: in.Province,
		Email:    in.Email,
	}
	if err := repos.Catalog.Customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *OrderService) List(ctx context.Context, filter ports.ListFilter) (*ports.OrderPage, error) {
	if filter.Status != "" && filter.Status != "all" {
		if _, err := domain.ParseStatus(filter.Status); err != nil {
			return nil, err
		}
	}
	filter = filter.Normalized()
	orders, total, err := s.repos.Orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return &ports.OrderPage{Orders: orders, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *OrderService) Get(ctx context.Context, id uint) (*domain.Order, error) {
	return s.repos.Orders.Get(ctx, id)
}

func (s *OrderService) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return s.repos.Orders.GetByNumber(ctx, number)
}

// SetStatus moves the order to status. Entering confirmed from any other
// status deducts every item's quantity from stock and records a subtract
// movement per item. The whole change is one transaction holding the order
// and product row locks, so an order is deducted at most once.
func (s *OrderService) SetStatus(ctx context.Context, id uint, status domain.OrderStatus) (*domain.Order, error) {
	if _, err := domain.ParseStatus(string(status)); err != nil {
		return nil, err
	}

	var deducted int
	var previous domain.OrderStatus
	err := s.tx.Execute(ctx, func(repos ports.TransactionalRepositories) error {
		order, err := repos.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		previous = order.Status

		if err := repos.Orders.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		if status != domain.StatusConfirmed || previous == domain.StatusConfirmed {
			return nil
		}

		// Lock products in id order so concurrent confirmations cannot deadlock.
		items := slices.Clone(order.Items)
		slices.SortFunc(items, func(a, b domain.OrderItem) int { return cmp.Compare(a.ProductID, b.ProductID) })

		note := fmt.Sprintf("Order %s confirmed", order.OrderNumber)
		for _, item := range items {
			if _, err := catalog.AdjustStock(ctx, repos.Catalog, item.ProductID, catalogdomain.AdjustmentSubtract, item.Quantity, note); err != nil {
				return fmt.Errorf("deduct stock of product %d: %w", item.ProductID, err)
			}
			deducted++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Order status changed",
		zap.Uint("order_id", id),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
		zap.Int("items_deducted", deducted),
		zap.String("ray_id", logger.RayID(ctx)),
	)
	return s.repos.Orders.Get(ctx, id)
}

// Delete removes the shipping record, the items and the order in one transaction.
func (s *OrderService) Delete(ctx context.Context, id uint) error {
	err := s.tx.Execute(ctx, func(repos ports.TransactionalRepositories) error {
		if _, err := repos.Orders.GetForUpdate(ctx, id); err != nil {
			return err
		}
		if err := repos.Shipping.DeleteByOrder(ctx, id); err != nil {
			return err
		}
		if err := repos.Orders.DeleteItems(ctx, id); err != nil {
			return err
		}
		return repos.Orders.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("Order deleted", zap.Uint("order_id", id), zap.String("ray_id", logger.RayID(ctx)))
	return nil
}

func (s *OrderService) GetShipping(ctx context.Context, orderID uint) (*domain.ShippingRecord, error) {
	return s.repos.Shipping.GetByOrder(ctx, orderID)
}

// UpdateShipping applies the non-nil fields of patch to the record.
func (s *OrderService) UpdateShipping(ctx context.Context, id uint, patch ports.ShippingPatch) (*domain.ShippingRecord, error) {
	record, err := s.repos.Shipping.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Carrier != nil {
		carrier, err := shipping.ParseCarrierID(string(*patch.Carrier))
		if err != nil {
			return nil, err
		}
		record.Carrier = carrier
	}
	if patch.TrackingNumber != nil {
		record.TrackingNumber = *patch.TrackingNumber
	}
	if patch.Status != nil {
		record.Status = *patch.Status
	}
	if patch.ShippingDate != nil {
		record.ShippingDate = patch.ShippingDate
	}
	if patch.ExpectedDelivery != nil {
		record.ExpectedDelivery = patch.ExpectedDelivery
	}

	if err := s.repos.Shipping.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ShipmentRequest derives the carrier-agnostic shipment of an order. The
// COD amount is the order total and the declared value is the subtotal.
func (s *OrderService) ShipmentRequest(ctx context.Context, orderID uint) (*shipping.ShipmentRequest, error) {
	order, err := s.repos.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	req := BuildShipmentRequest(order)
	return &req, nil
}

// BuildShipmentRequest maps a fully loaded order onto a ShipmentRequest.
// Items without a weight count as DefaultItemWeightGrams in the parcel weight,
// matching what the carrier mappers send for them.
func BuildShipmentRequest(order *domain.Order) shipping.ShipmentRequest {
	req := shipping.ShipmentRequest{
		OrderNumber: order.OrderNumber,
		CODAmount:   order.Total,
		Note:        order.Notes,
		Parcel: shipping.Parcel{
			DeclaredValue: order.Subtotal,
		},
	}
	if c := order.Customer; c != nil {
		req.Recipient = shipping.Recipient{
			Name:     c.Name,
			Phone:    c.Phone,
			Address:  c.Address,
			Ward:     c.Ward,
			District: c.District,
			Province: c.Province,
		}
	}

	weight := 0
	for _, item := range order.Items {
		line := shipping.Item{
			Quantity: item.Quantity,
			Price:    item.Price,
		}
		if p := item.Product; p != nil {
			line.Name = p.Name
			line.SKU = p.SKU
			line.WeightGrams = p.WeightGrams
		} else {
			line.Name = fmt.Sprintf("Product %d", item.ProductID)
		}
		weight += shipping.OrDefault(line.WeightGrams, shipping.DefaultItemWeightGrams) * item.Quantity
		req.Items = append(req.Items, line)
	}
	req.Parcel.WeightGrams = weight
	return req
}

// Ship submits the order to its carrier. On success the shipping record is
// marked created and stamped with the shipping date. An order whose record is
// already created is refused with ErrAlreadyShipped.
func (s *OrderService) Ship(ctx context.Context, orderID uint) (shipping.OperationResult, error) {
	order, err := s.repos.Orders.Get(ctx, orderID)
	if err != nil {
		return shipping.OperationResult{}, err
	}
	if order.Shipping == nil {
		return shipping.OperationResult{}, domain.ErrShippingNotFound
	}
	if order.Shipping.Status == ShippingStatusCreated {
		return shipping.OperationResult{}, domain.ErrAlreadyShipped
	}

	req := BuildShipmentRequest(order)
	result := s.carriers.Execute(ctx, string(order.Shipping.Carrier), shipping.OpCreateShipment, shipping.Payload{Shipment: &req})
	if !result.Success {
		s.log.Warn("Shipment rejected",
			zap.String("order_number", order.OrderNumber),
			zap.String("carrier", string(order.Shipping.Carrier)),
			zap.String("code", string(result.Code)),
			zap.String("ray_id", logger.RayID(ctx)),
		)
		return result, nil
	}

	record := order.Shipping
	record.Status = ShippingStatusCreated
	if record.ShippingDate == nil {
		now := s.now()
		record.ShippingDate = &now
	}
	if err := s.repos.Shipping.Update(ctx, record); err != nil {
		return result, err
	}
	return result, nil
}
