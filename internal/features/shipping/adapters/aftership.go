package adapter

import (
	"context"
	"net/http"
	"net/url"

	"order-hub/internal/core/logger"
	"order-hub/internal/features/shipping/domain"
	"order-hub/internal/features/shipping/ports"

	"go.uber.org/zap"
)

const (
	afterShipUpstream   = "aftership"
	afterShipKeyHeader  = "aftership-api-key"
	afterShipCodeExists = 4003
)

// AfterShipDelegate tracks parcels through the AfterShip aggregator.
// A tracking number must be registered before AfterShip returns its events,
// so Track registers unknown numbers on the fly.
type AfterShipDelegate struct {
	executor ports.Executor
	apiKey   string
	baseURL  string
	log      *zap.Logger
}

// NewAfterShipDelegate creates the delegate. An empty apiKey leaves it unconfigured.
func NewAfterShipDelegate(executor ports.Executor, apiKey, baseURL string) *AfterShipDelegate {
	return &AfterShipDelegate{
		executor: executor,
		apiKey:   apiKey,
		baseURL:  baseURL,
		log:      logger.Named("shipping.aftership"),
	}
}

type afterShipTracking struct {
	TrackingNumber string `json:"tracking_number"`
	Slug           string `json:"slug"`
	Title          string `json:"title"`
	Language       string `json:"language"`
}

type afterShipCreate struct {
	Tracking afterShipTracking `json:"tracking"`
}

// Track fetches the tracking of number under the courier slug:
// GET, then POST to register on 404, then GET again.
func (d *AfterShipDelegate) Track(ctx context.Context, trackingNumber, slug string) domain.OperationResult {
	if d.apiKey == "" {
		return domain.Failed(domain.CodeNotConfigured, "AfterShip API key is not configured", nil)
	}

	path := "/trackings/" + url.PathEscape(slug) + "/" + url.PathEscape(trackingNumber)

	check := d.call(ctx, http.MethodGet, path, nil)
	switch {
	case check.Success:
	case check.StatusCode == http.StatusNotFound:
		d.log.Info("Registering tracking number", zap.String("slug", slug), zap.String("tracking_number", trackingNumber))
		created := d.call(ctx, http.MethodPost, "/trackings", afterShipCreate{
			Tracking: afterShipTracking{
				TrackingNumber: trackingNumber,
				Slug:           slug,
				Title:          "Order " + trackingNumber,
				Language:       "vi",
			},
		})
		if !created.Success && !alreadyRegistered(created) {
			created.Message = "failed to register tracking on AfterShip"
			return created
		}
	default:
		check.Message = "failed to check tracking on AfterShip"
		return check
	}

	fetched := d.call(ctx, http.MethodGet, path, nil)
	if !fetched.Success {
		fetched.Message = "failed to fetch tracking from AfterShip"
		return fetched
	}

	return domain.Succeeded("tracking retrieved", envelopeData(fetched.Data), fetched.StatusCode)
}

func (d *AfterShipDelegate) call(ctx context.Context, method, path string, body any) domain.OperationResult {
	return d.executor.Execute(ctx, domain.Request{
		Upstream: afterShipUpstream,
		Method:   method,
		BaseURL:  d.baseURL,
		Path:     path,
		Headers:  map[string]string{afterShipKeyHeader: d.apiKey},
		Body:     body,
	})
}

// alreadyRegistered recognises the "tracking already exists" answer, which
// means a concurrent request registered the same number first.
func alreadyRegistered(result domain.OperationResult) bool {
	if result.StatusCode != http.StatusBadRequest && result.StatusCode != http.StatusConflict {
		return false
	}
	body, ok := result.Error.(map[string]any)
	if !ok {
		return false
	}
	meta, ok := body["meta"].(map[string]any)
	if !ok {
		return false
	}
	code, ok := meta["code"].(float64)
	return ok && int(code) == afterShipCodeExists
}

// envelopeData unwraps AfterShip's {meta, data} envelope.
func envelopeData(v any) any {
	if m, ok := v.(map[string]any); ok {
		if data, ok := m["data"]; ok {
			return data
		}
	}
	return v
}
