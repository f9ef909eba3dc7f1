package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"order-hub/internal/core/logger"
	"order-hub/internal/features/shipping/domain"
	"order-hub/internal/features/shipping/ports"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ShippingService dispatches uniform shipping operations to carrier mappers.
type ShippingService struct {
	carriers    map[domain.CarrierID]ports.Carrier
	connections map[domain.CarrierID]domain.Connection
	executor    ports.Executor
	tracker     ports.TrackingDelegate

	cache    ports.MasterDataCache
	cacheTTL time.Duration

	validate *validator.Validate
	log      *zap.Logger
}

// NewShippingService creates the facade. connections holds the API key and
// base URL per carrier; a carrier without a key is not connected.
func NewShippingService(
	carriers map[domain.CarrierID]ports.Carrier,
	connections map[domain.CarrierID]domain.Connection,
	executor ports.Executor,
	tracker ports.TrackingDelegate,
) *ShippingService {
	return &ShippingService{
		carriers:    carriers,
		connections: connections,
		executor:    executor,
		tracker:     tracker,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		log:         logger.Named("shipping"),
	}
}

// WithMasterDataCache enables caching of province and service lists.
func (s *ShippingService) WithMasterDataCache(cache ports.MasterDataCache, ttl time.Duration) *ShippingService {
	s.cache = cache
	s.cacheTTL = ttl
	return s
}

// Execute runs op against the given carrier. It never returns a Go error;
// every outcome is an OperationResult.
func (s *ShippingService) Execute(ctx context.Context, carrier string, op domain.Operation, payload domain.Payload) domain.OperationResult {
	id := domain.CarrierID(carrier)
	mapper, ok := s.carriers[id]
	profile, known := domain.Profile(id)
	if !ok || !known {
		return domain.Failed(domain.CodeUnsupportedCarrier, fmt.Sprintf("carrier %q is not supported", carrier), nil)
	}

	if op == domain.OpTrackShipment && !profile.NativeTracking {
		if strings.TrimSpace(payload.TrackingNumber) == "" {
			return domain.Failed(domain.CodeInvalidPayload, "tracking number is required", nil)
		}
		s.log.Debug("Delegating tracking", zap.String("carrier", carrier), zap.String("slug", profile.TrackingSlug))
		return s.tracker.Track(ctx, payload.TrackingNumber, profile.TrackingSlug)
	}

	conn := s.connections[id]
	if !conn.Connected() {
		return domain.Failed(domain.CodeNotConnected, fmt.Sprintf("%s API is not connected", profile.DisplayName), nil)
	}

	call, result, ok := s.buildCall(mapper, op, payload)
	if !ok {
		return result
	}

	cacheable := s.cache != nil && (op == domain.OpGetProvinces || op == domain.OpGetServices)
	if cacheable {
		if cached, hit := s.cache.Get(ctx, id, op); hit {
			return cached
		}
	}

	result = s.executor.Execute(ctx, domain.Request{
		Upstream: carrier,
		Method:   call.Method,
		BaseURL:  conn.BaseURL,
		Path:     call.Path,
		Headers:  map[string]string{profile.Auth.Header: profile.Auth.Value(conn.APIKey)},
		Body:     call.Body,
	})

	if cacheable && result.Success {
		s.cache.Put(ctx, id, op, result, s.cacheTTL)
	}

	return result
}

// buildCall validates the payload and asks the mapper for the endpoint call.
func (s *ShippingService) buildCall(mapper ports.Carrier, op domain.Operation, payload domain.Payload) (domain.Call, domain.OperationResult, bool) {
	switch op {
	case domain.OpCreateShipment:
		if payload.Shipment == nil {
			return domain.Call{}, invalid("shipment data is required"), false
		}
		if err := s.validate.Struct(payload.Shipment); err != nil {
			return domain.Call{}, invalid("invalid shipment data", err.Error()), false
		}
		return mapper.CreateShipment(*payload.Shipment), domain.OperationResult{}, true

	case domain.OpTrackShipment:
		if strings.TrimSpace(payload.TrackingNumber) == "" {
			return domain.Call{}, invalid("tracking number is required"), false
		}
		call, ok := mapper.TrackShipment(payload.TrackingNumber)
		if !ok {
			return domain.Call{}, domain.Failed(domain.CodeUnsupportedCarrier, "carrier has no tracking API", nil), false
		}
		return call, domain.OperationResult{}, true

	case domain.OpCancelShipment:
		if strings.TrimSpace(payload.TrackingNumber) == "" {
			return domain.Call{}, invalid("tracking number is required"), false
		}
		return mapper.CancelShipment(payload.TrackingNumber), domain.OperationResult{}, true

	case domain.OpGetProvinces:
		return mapper.Provinces(), domain.OperationResult{}, true

	case domain.OpGetServices:
		return mapper.Services(), domain.OperationResult{}, true

	case domain.OpCalculateFee:
		if payload.Fee == nil {
			return domain.Call{}, invalid("fee data is required"), false
		}
		if err := s.validate.Struct(payload.Fee); err != nil {
			return domain.Call{}, invalid("invalid fee data", err.Error()), false
		}
		return mapper.CalculateFee(*payload.Fee), domain.OperationResult{}, true
	}

	return domain.Call{}, invalid(fmt.Sprintf("unknown operation %q", op)), false
}

func invalid(message string, detail ...string) domain.OperationResult {
	var d any
	if len(detail) > 0 {
		d = detail[0]
	}
	return domain.Failed(domain.CodeInvalidPayload, message, d)
}

// Carriers lists every live carrier with its connection state.
func (s *ShippingService) Carriers() []domain.CarrierInfo {
	infos := make([]domain.CarrierInfo, 0, len(s.carriers))
	for _, id := range domain.LiveCarrierIDs() {
		if _, ok := s.carriers[id]; !ok {
			continue
		}
		profile, _ := domain.Profile(id)
		infos = append(infos, domain.CarrierInfo{
			ID:             id,
			Name:           profile.DisplayName,
			APIConnected:   s.connections[id].Connected(),
			NativeTracking: profile.NativeTracking,
		})
	}
	return infos
}
