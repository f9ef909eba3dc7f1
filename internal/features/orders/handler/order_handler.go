package handler

import (
	"errors"
	"strconv"
	"time"

	"order-hub/internal/core/logger"
	"order-hub/internal/core/server"
	catalog "order-hub/internal/features/catalog/domain"
	"order-hub/internal/features/orders/domain"
	"order-hub/internal/features/orders/ports"
	shipping "order-hub/internal/features/shipping/domain"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests related to orders and their shipping records.
type OrderHandler struct {
	// service is the OrderService instance.
	service  ports.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new instance of OrderHandler.
func NewOrderHandler(s ports.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  s,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Register mounts the order and shipping record routes.
func (h *OrderHandler) Register(r fiber.Router) {
	r.Get("/order-statuses", h.ListStatuses)
	r.Get("/orders", h.ListOrders)
	r.Post("/orders", h.CreateOrder)
	r.Get("/orders/number/:orderNumber", h.GetOrderByNumber)
	r.Get("/orders/:id", h.GetOrder)
	r.Delete("/orders/:id", h.DeleteOrder)
	r.Patch("/orders/:id/status", h.UpdateStatus)
	r.Get("/orders/:id/shipment-request", h.ShipmentRequest)
	r.Post("/orders/:id/ship", h.Ship)

	r.Get("/shipping/:orderId", h.GetShipping)
	r.Patch("/shipping/:id", h.UpdateShipping)
}

// CustomerRequest identifies the buyer of a new order.
type CustomerRequest struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Address  string `json:"address" validate:"required"`
	Ward     string `json:"ward"`
	District string `json:"district"`
	Province string `json:"province"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// ItemRequest is one line of a new order. Omit price to use the product price.
type ItemRequest struct {
	ProductID uint            `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	Price     decimal.Decimal `json:"price" swaggertype:"string"`
}

// ShippingRequest carries the delivery choice of a new order.
type ShippingRequest struct {
	Cost    decimal.Decimal `json:"cost" swaggertype:"string"`
	Carrier string          `json:"carrier"`
}

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	Customer CustomerRequest `json:"customer"`
	Items    []ItemRequest   `json:"items" validate:"required,min=1,dive"`
	Shipping ShippingRequest `json:"shipping"`
	Notes    string          `json:"notes"`
}

// StatusRequest is the body of PATCH /orders/:id/status.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ShippingPatchRequest is the body of PATCH /shipping/:id.
type ShippingPatchRequest struct {
	Carrier          *string    `json:"carrier"`
	TrackingNumber   *string    `json:"tracking_number"`
	Status           *string    `json:"status" validate:"omitempty,min=1"`
	ShippingDate     *time.Time `json:"shipping_date"`
	ExpectedDelivery *time.Time `json:"expected_delivery"`
}

// ListStatuses godoc
// @Summary List order statuses
// @Tags orders
// @Produce json
// @Success 200 {array} string
// @Router /order-statuses [get]
func (h *OrderHandler) ListStatuses(c *fiber.Ctx) error {
	return c.JSON(domain.AllStatuses())
}

// ListOrders godoc
// @Summary List orders
// @Description Newest first, with customer, items and shipping
// @Tags orders
// @Produce json
// @Param status query string false "Order status or all"
// @Param date_from query string false "YYYY-MM-DD or RFC3339"
// @Param date_to query string false "YYYY-MM-DD (inclusive) or RFC3339"
// @Param customer_id query int false "Customer id"
// @Param search query string false "Order number, customer name or phone"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} ports.OrderPage
// @Failure 400 {object} server.ErrorResponse
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	filter := ports.ListFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 10),
	}
	if v := c.Query("customer_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid customer_id")
		}
		filter.CustomerID = uint(id)
	}
	var err error
	if filter.DateFrom, err = parseDate(c.Query("date_from"), false); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid date_from")
	}
	if filter.DateTo, err = parseDate(c.Query("date_to"), true); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid date_to")
	}

	page, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(page)
}

// GetOrder godoc
// @Summary Get an order
// @Tags orders
// @Produce json
// @Param id path int true "Order id"
// @Success 200 {object} domain.Order
// @Failure 404 {object} server.ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	order, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(order)
}

// GetOrderByNumber godoc
// @Summary Get an order by its number
// @Tags orders
// @Produce json
// @Param orderNumber path string true "Order number"
// @Success 200 {object} domain.Order
// @Failure 404 {object} server.ErrorResponse
// @Router /orders/number/{orderNumber} [get]
func (h *OrderHandler) GetOrderByNumber(c *fiber.Ctx) error {
	order, err := h.service.GetByNumber(c.UserContext(), c.Params("orderNumber"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(order)
}

// CreateOrder godoc
// @Summary Place an order
// @Description Reuses the customer with the same phone number, otherwise creates one
// @Tags orders
// @Accept json
// @Produce json
// @Param order body CreateOrderRequest true "Order"
// @Success 201 {object} domain.Order
// @Failure 400 {object} server.ErrorResponse
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	in := ports.CreateOrderInput{
		Customer:     ports.CustomerInput(req.Customer),
		ShippingCost: req.Shipping.Cost,
		Notes:        req.Notes,
	}
	if req.Shipping.Carrier != "" {
		carrier, err := shipping.ParseCarrierID(req.Shipping.Carrier)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		in.Carrier = carrier
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, ports.ItemInput(item))
	}

	order, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// DeleteOrder godoc
// @Summary Delete an order
// @Description Removes the shipping record, the items and the order together
// @Tags orders
// @Param id path int true "Order id"
// @Success 204
// @Failure 404 {object} server.ErrorResponse
// @Router /orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateStatus godoc
// @Summary Change an order's status
// @Description Moving to confirmed deducts stock once per order
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order id"
// @Param status body StatusRequest true "New status"
// @Success 200 {object} domain.Order
// @Failure 400 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Router /orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req StatusRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	order, err := h.service.SetStatus(c.UserContext(), id, status)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(order)
}

// ShipmentRequest godoc
// @Summary Preview the carrier shipment of an order
// @Tags orders
// @Produce json
// @Param id path int true "Order id"
// @Success 200 {object} shipping.ShipmentRequest
// @Failure 404 {object} server.ErrorResponse
// @Router /orders/{id}/shipment-request [get]
func (h *OrderHandler) ShipmentRequest(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	req, err := h.service.ShipmentRequest(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(req)
}

// Ship godoc
// @Summary Submit an order to its carrier
// @Tags orders
// @Produce json
// @Param id path int true "Order id"
// @Success 200 {object} shipping.OperationResult
// @Failure 400 {object} shipping.OperationResult
// @Failure 404 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Failure 502 {object} shipping.OperationResult
// @Router /orders/{id}/ship [post]
func (h *OrderHandler) Ship(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	result, err := h.service.Ship(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(result.HTTPStatus()).JSON(result)
}

// GetShipping godoc
// @Summary Get the shipping record of an order
// @Tags shipping
// @Produce json
// @Param orderId path int true "Order id"
// @Success 200 {object} domain.ShippingRecord
// @Failure 404 {object} server.ErrorResponse
// @Router /shipping/{orderId} [get]
func (h *OrderHandler) GetShipping(c *fiber.Ctx) error {
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return err
	}
	record, err := h.service.GetShipping(c.UserContext(), orderID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(record)
}

// UpdateShipping godoc
// @Summary Update a shipping record
// @Tags shipping
// @Accept json
// @Produce json
// @Param id path int true "Shipping record id"
// @Param shipping body ShippingPatchRequest true "Fields to change"
// @Success 200 {object} domain.ShippingRecord
// @Failure 400 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Router /shipping/{id} [patch]
func (h *OrderHandler) UpdateShipping(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req ShippingPatchRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	patch := ports.ShippingPatch{
		TrackingNumber:   req.TrackingNumber,
		Status:           req.Status,
		ShippingDate:     req.ShippingDate,
		ExpectedDelivery: req.ExpectedDelivery,
	}
	if req.Carrier != nil {
		carrier, err := shipping.ParseCarrierID(*req.Carrier)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		patch.Carrier = &carrier
	}

	record, err := h.service.UpdateShipping(c.UserContext(), id, patch)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(record)
}

func (h *OrderHandler) bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func (h *OrderHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrShippingNotFound):
		return server.Fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyShipped):
		return server.Fail(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrEmptyOrder),
		errors.Is(err, domain.ErrInvalidItem),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, shipping.ErrUnknownCarrier),
		errors.Is(err, catalog.ErrProductNotFound):
		return server.Fail(c, fiber.StatusBadRequest, err.Error())
	}
	logger.Get().Error("Order request failed", zap.Error(err), zap.String("ray_id", server.RayID(c)))
	return server.Fail(c, fiber.StatusInternalServerError, "internal server error")
}

func pathID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}

// parseDate accepts YYYY-MM-DD or RFC3339. A date-only upper bound covers
// the whole day.
func parseDate(v string, endOfDay bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
