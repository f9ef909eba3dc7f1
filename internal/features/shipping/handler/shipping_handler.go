package handler

import (
	"order-hub/internal/core/server"
	"order-hub/internal/features/shipping/domain"
	"order-hub/internal/features/shipping/ports"

	"github.com/gofiber/fiber/v2"
)

// ShippingHandler exposes the carrier facade over HTTP.
type ShippingHandler struct {
	service ports.ShippingService
}

// NewShippingHandler creates a new ShippingHandler.
func NewShippingHandler(service ports.ShippingService) *ShippingHandler {
	return &ShippingHandler{
		service: service,
	}
}

// Register mounts the shipping routes.
func (h *ShippingHandler) Register(r fiber.Router) {
	g := r.Group("/shipping-carriers")
	g.Get("/", h.ListCarrierIDs)
	g.Get("/info", h.CarrierInfo)
	g.Post("/:carrier/create-shipment", h.CreateShipment)
	g.Get("/:carrier/track/:trackingNumber", h.TrackShipment)
	g.Post("/:carrier/cancel/:trackingNumber", h.CancelShipment)
	g.Get("/:carrier/provinces", h.Provinces)
	g.Get("/:carrier/services", h.Services)
	g.Post("/:carrier/calculate-fee", h.CalculateFee)
}

// ListCarrierIDs godoc
// @Summary List carrier values
// @Description Returns every value accepted as a shipping carrier
// @Tags shipping
// @Produce json
// @Success 200 {array} string
// @Router /shipping-carriers [get]
func (h *ShippingHandler) ListCarrierIDs(c *fiber.Ctx) error {
	return c.JSON(domain.AllCarrierIDs())
}

// CarrierInfo godoc
// @Summary Carrier integrations
// @Description Lists live carriers with their API connection and tracking capability
// @Tags shipping
// @Produce json
// @Success 200 {array} domain.CarrierInfo
// @Router /shipping-carriers/info [get]
func (h *ShippingHandler) CarrierInfo(c *fiber.Ctx) error {
	return c.JSON(h.service.Carriers())
}

// CreateShipment godoc
// @Summary Create a shipment
// @Tags shipping
// @Accept json
// @Produce json
// @Param carrier path string true "Carrier id"
// @Param shipment body domain.ShipmentRequest true "Shipment"
// @Success 200 {object} domain.OperationResult
// @Failure 400 {object} domain.OperationResult
// @Failure 502 {object} domain.OperationResult
// @Router /shipping-carriers/{carrier}/create-shipment [post]
func (h *ShippingHandler) CreateShipment(c *fiber.Ctx) error {
	var req domain.ShipmentRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	return h.execute(c, domain.OpCreateShipment, domain.Payload{Shipment: &req})
}

// TrackShipment godoc
// @Summary Track a shipment
// @Description Carriers without a tracking API are tracked through AfterShip
// @Tags shipping
// @Produce json
// @Param carrier path string true "Carrier id"
// @Param trackingNumber path string true "Tracking number"
// @Success 200 {object} domain.OperationResult
// @Failure 400 {object} domain.OperationResult
// @Failure 502 {object} domain.OperationResult
// @Router /shipping-carriers/{carrier}/track/{trackingNumber} [get]
func (h *ShippingHandler) TrackShipment(c *fiber.Ctx) error {
	return h.execute(c, domain.OpTrackShipment, domain.Payload{TrackingNumber: c.Params("trackingNumber")})
}

// CancelShipment godoc
// @Summary Cancel a shipment
// @Tags shipping
// @Produce json
// @Param carrier path string true "Carrier id"
// @Param trackingNumber path string true "Tracking number"
// @Success 200 {object} domain.OperationResult
// @Failure 400 {object} domain.OperationResult
// @Failure 502 {object} domain.OperationResult
// @Router /shipping-carriers/{carrier}/cancel/{trackingNumber} [post]
func (h *ShippingHandler) CancelShipment(c *fiber.Ctx) error {
	return h.execute(c, domain.OpCancelShipment, domain.Payload{TrackingNumber: c.Params("trackingNumber")})
}

// Provinces godoc
// @Summary Carrier province list
// @Tags shipping
// @Produce json
// @Param carrier path string true "Carrier id"
// @Success 200 {object} domain.OperationResult
// @Router /shipping-carriers/{carrier}/provinces [get]
func (h *ShippingHandler) Provinces(c *fiber.Ctx) error {
	return h.execute(c, domain.OpGetProvinces, domain.Payload{})
}

// Services godoc
// @Summary Carrier service list
// @Tags shipping
// @Produce json
// @Param carrier path string true "Carrier id"
// @Success 200 {object} domain.OperationResult
// @Router /shipping-carriers/{carrier}/services [get]
func (h *ShippingHandler) Services(c *fiber.Ctx) error {
	return h.execute(c, domain.OpGetServices, domain.Payload{})
}

// CalculateFee godoc
// @Summary Quote a shipping fee
// @Tags shipping
// @Accept json
// @Produce json
// @Param carrier path string true "Carrier id"
// @Param fee body domain.FeeRequest true "Fee request"
// @Success 200 {object} domain.OperationResult
// @Failure 400 {object} domain.OperationResult
// @Failure 502 {object} domain.OperationResult
// @Router /shipping-carriers/{carrier}/calculate-fee [post]
func (h *ShippingHandler) CalculateFee(c *fiber.Ctx) error {
	var req domain.FeeRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	return h.execute(c, domain.OpCalculateFee, domain.Payload{Fee: &req})
}

func (h *ShippingHandler) execute(c *fiber.Ctx, op domain.Operation, payload domain.Payload) error {
	result := h.service.Execute(c.UserContext(), c.Params("carrier"), op, payload)
	return c.Status(result.HTTPStatus()).JSON(result)
}
