package ports

import (
	"context"
	"time"

	"order-hub/internal/features/shipping/domain"
)

// Carrier maps canonical requests to one carrier's REST dialect.
// Implementations are pure: they build calls but never perform I/O.
type Carrier interface {
	ID() domain.CarrierID
	CreateShipment(req domain.ShipmentRequest) domain.Call
	// TrackShipment reports false when the carrier exposes no tracking API.
	TrackShipment(trackingNumber string) (domain.Call, bool)
	CancelShipment(trackingNumber string) domain.Call
	Provinces() domain.Call
	Services() domain.Call
	CalculateFee(req domain.FeeRequest) domain.Call
}

// Executor performs one outbound HTTP call and normalises the outcome.
type Executor interface {
	Execute(ctx context.Context, req domain.Request) domain.OperationResult
}

// TrackingDelegate tracks parcels of carriers without a native tracking API.
type TrackingDelegate interface {
	Track(ctx context.Context, trackingNumber, slug string) domain.OperationResult
}

// MasterDataCache stores successful province/service lookups.
type MasterDataCache interface {
	Get(ctx context.Context, carrier domain.CarrierID, op domain.Operation) (domain.OperationResult, bool)
	Put(ctx context.Context, carrier domain.CarrierID, op domain.Operation, result domain.OperationResult, ttl time.Duration)
}

// ShippingService is the uniform shipping contract used by handlers and orders.
type ShippingService interface {
	Execute(ctx context.Context, carrier string, op domain.Operation, payload domain.Payload) domain.OperationResult
	Carriers() []domain.CarrierInfo
}
