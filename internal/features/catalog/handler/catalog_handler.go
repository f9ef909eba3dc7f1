package handler

import (
	"errors"
	"strconv"

	"order-hub/internal/core/logger"
	"order-hub/internal/core/server"
	"order-hub/internal/features/catalog/domain"
	"order-hub/internal/features/catalog/ports"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultHistoryLimit = 50

// CatalogHandler exposes customers, products and inventory over HTTP.
type CatalogHandler struct {
	service  ports.CatalogService
	validate *validator.Validate
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Register mounts the catalog routes.
func (h *CatalogHandler) Register(r fiber.Router) {
	r.Get("/customers", h.ListCustomers)
	r.Post("/customers", h.CreateCustomer)
	r.Get("/customers/:id", h.GetCustomer)
	r.Patch("/customers/:id", h.UpdateCustomer)

	r.Get("/products", h.ListProducts)
	r.Post("/products", h.CreateProduct)
	r.Get("/products/:id", h.GetProduct)
	r.Patch("/products/:id", h.UpdateProduct)
	r.Post("/products/:id/inventory", h.AdjustInventory)
	r.Get("/products/:id/inventory", h.InventoryHistory)
}

// CustomerRequest is the body of POST /customers.
type CustomerRequest struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Address  string `json:"address" validate:"required"`
	Ward     string `json:"ward"`
	District string `json:"district"`
	Province string `json:"province"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// CustomerPatchRequest is the body of PATCH /customers/:id.
type CustomerPatchRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Phone    *string `json:"phone" validate:"omitempty,min=1"`
	Address  *string `json:"address" validate:"omitempty,min=1"`
	Ward     *string `json:"ward"`
	District *string `json:"district"`
	Province *string `json:"province"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

// ProductRequest is the body of POST /products.
type ProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	SKU         string          `json:"sku" validate:"required"`
	Price       decimal.Decimal `json:"price" swaggertype:"string"`
	Description string          `json:"description"`
	Stock       int             `json:"stock" validate:"gte=0"`
	WeightGrams int             `json:"weight_grams" validate:"gte=0"`
}

// ProductPatchRequest is the body of PATCH /products/:id.
type ProductPatchRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1"`
	SKU         *string          `json:"sku" validate:"omitempty,min=1"`
	Price       *decimal.Decimal `json:"price" swaggertype:"string"`
	Description *string          `json:"description"`
	WeightGrams *int             `json:"weight_grams" validate:"omitempty,gte=0"`
}

// AdjustmentRequest is the body of POST /products/:id/inventory.
type AdjustmentRequest struct {
	Type     string `json:"type" validate:"required,oneof=add subtract set"`
	Quantity int    `json:"quantity" validate:"gte=0"`
	Note     string `json:"note"`
}

// ListCustomers godoc
// @Summary List customers
// @Description Newest first
// @Tags catalog
// @Produce json
// @Success 200 {array} domain.Customer
// @Router /customers [get]
func (h *CatalogHandler) ListCustomers(c *fiber.Ctx) error {
	customers, err := h.service.ListCustomers(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(customers)
}

// GetCustomer godoc
// @Summary Get a customer
// @Tags catalog
// @Produce json
// @Param id path int true "Customer id"
// @Success 200 {object} domain.Customer
// @Failure 404 {object} server.ErrorResponse
// @Router /customers/{id} [get]
func (h *CatalogHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	customer, err := h.service.GetCustomer(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(customer)
}

// CreateCustomer godoc
// @Summary Create a customer
// @Tags catalog
// @Accept json
// @Produce json
// @Param customer body CustomerRequest true "Customer"
// @Success 201 {object} domain.Customer
// @Failure 400 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Router /customers [post]
func (h *CatalogHandler) CreateCustomer(c *fiber.Ctx) error {
	var req CustomerRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	customer := &domain.Customer{
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
		Ward:     req.Ward,
		District: req.District,
		Province: req.Province,
		Email:    req.Email,
	}
	if err := h.service.CreateCustomer(c.UserContext(), customer); err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

// UpdateCustomer godoc
// @Summary Update a customer
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path int true "Customer id"
// @Param customer body CustomerPatchRequest true "Fields to change"
// @Success 200 {object} domain.Customer
// @Failure 400 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Router /customers/{id} [patch]
func (h *CatalogHandler) UpdateCustomer(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req CustomerPatchRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	customer, err := h.service.UpdateCustomer(c.UserContext(), id, ports.CustomerPatch(req))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(customer)
}

// ListProducts godoc
// @Summary List products
// @Description Ordered by name
// @Tags catalog
// @Produce json
// @Success 200 {array} domain.Product
// @Router /products [get]
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(products)
}

// GetProduct godoc
// @Summary Get a product
// @Tags catalog
// @Produce json
// @Param id path int true "Product id"
// @Success 200 {object} domain.Product
// @Failure 404 {object} server.ErrorResponse
// @Router /products/{id} [get]
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(product)
}

// CreateProduct godoc
// @Summary Create a product
// @Tags catalog
// @Accept json
// @Produce json
// @Param product body ProductRequest true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Router /products [post]
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	product := &domain.Product{
		Name:        req.Name,
		SKU:         req.SKU,
		Price:       req.Price,
		Description: req.Description,
		Stock:       req.Stock,
		WeightGrams: req.WeightGrams,
	}
	if err := h.service.CreateProduct(c.UserContext(), product); err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// UpdateProduct godoc
// @Summary Update a product
// @Description Stock is changed through the inventory endpoint
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path int true "Product id"
// @Param product body ProductPatchRequest true "Fields to change"
// @Success 200 {object} domain.Product
// @Failure 400 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Router /products/{id} [patch]
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req ProductPatchRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	product, err := h.service.UpdateProduct(c.UserContext(), id, ports.ProductPatch(req))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(product)
}

// AdjustInventory godoc
// @Summary Adjust stock
// @Description add and subtract need a positive quantity, subtract stops at zero, set replaces the stock
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path int true "Product id"
// @Param adjustment body AdjustmentRequest true "Adjustment"
// @Success 201 {object} domain.InventoryHistory
// @Failure 400 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Router /products/{id}/inventory [post]
func (h *CatalogHandler) AdjustInventory(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req AdjustmentRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	entry, err := h.service.Adjust(c.UserContext(), id, domain.AdjustmentType(req.Type), req.Quantity, req.Note)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// InventoryHistory godoc
// @Summary Stock movements
// @Description Newest first
// @Tags catalog
// @Produce json
// @Param id path int true "Product id"
// @Param limit query int false "Maximum rows" default(50)
// @Success 200 {array} domain.InventoryHistory
// @Failure 404 {object} server.ErrorResponse
// @Router /products/{id}/inventory [get]
func (h *CatalogHandler) InventoryHistory(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	limit := c.QueryInt("limit", defaultHistoryLimit)
	entries, err := h.service.History(c.UserContext(), id, limit)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(entries)
}

func (h *CatalogHandler) bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func (h *CatalogHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrCustomerNotFound), errors.Is(err, domain.ErrProductNotFound):
		return server.Fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateSKU), errors.Is(err, domain.ErrDuplicatePhone):
		return server.Fail(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidAdjustment), errors.Is(err, domain.ErrInvalidProduct):
		return server.Fail(c, fiber.StatusBadRequest, err.Error())
	}
	logger.Get().Error("Catalog request failed", zap.Error(err), zap.String("ray_id", server.RayID(c)))
	return server.Fail(c, fiber.StatusInternalServerError, "internal server error")
}

func pathID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}
