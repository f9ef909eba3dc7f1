package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"order-hub/internal/core/httpclient"
	"order-hub/internal/core/logger"
	"order-hub/internal/features/shipping/domain"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxResponseBytes caps how much of a carrier response is read.
const maxResponseBytes = 10 << 20

// HTTPExecutor performs carrier calls over HTTP with a per-upstream rate limit.
type HTTPExecutor struct {
	client *http.Client
	rps    rate.Limit
	burst  int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	log      *zap.Logger
}

// NewHTTPExecutor creates an executor. A non-positive rps disables throttling.
func NewHTTPExecutor(client *http.Client, rps int) *HTTPExecutor {
	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = rps
	}
	return &HTTPExecutor{
		client:   client,
		rps:      limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
		log:      logger.Named("shipping.executor"),
	}
}

func (e *HTTPExecutor) limiter(upstream string) *rate.Limiter {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.limiters[upstream]
	if !ok {
		l = rate.NewLimiter(e.rps, e.burst)
		e.limiters[upstream] = l
	}
	return l
}

// Execute performs the request and never returns a Go error: every outcome
// is folded into an OperationResult.
func (e *HTTPExecutor) Execute(ctx context.Context, req domain.Request) domain.OperationResult {
	endpoint := strings.TrimRight(req.BaseURL, "/") + req.Path
	fields := []zap.Field{
		zap.String("carrier", req.Upstream),
		zap.String("method", req.Method),
		zap.String("endpoint", req.Path),
	}

	if err := e.limiter(req.Upstream).Wait(ctx); err != nil {
		e.log.Warn("Carrier call throttled", append(fields, zap.Error(err))...)
		return domain.Failed(domain.CodeTransportError,
			fmt.Sprintf("connection to %s aborted: %v", req.Upstream, err), err.Error())
	}

	var body io.Reader
	if req.Body != nil && req.Method != http.MethodGet {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return domain.Failed(domain.CodeInvalidPayload, "failed to encode request body", err.Error())
		}
		body = bytes.NewReader(payload)
	}

	ctx = httpclient.WithUpstream(ctx, req.Upstream)
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return domain.Failed(domain.CodeTransportError, "failed to create request", err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := e.client.Do(httpReq)
	if err != nil {
		e.log.Error("Carrier call failed", append(fields, zap.Duration("duration", time.Since(start)), zap.Error(err))...)
		return domain.Failed(domain.CodeTransportError,
			fmt.Sprintf("connection to %s failed: %v", req.Upstream, err), err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	fields = append(fields, zap.Int("status_code", resp.StatusCode), zap.Duration("duration", time.Since(start)))
	if err != nil {
		e.log.Error("Carrier response unreadable", append(fields, zap.Error(err))...)
		result := domain.Failed(domain.CodeTransportError, "failed to read response", err.Error())
		result.StatusCode = resp.StatusCode
		return result
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e.log.Warn("Carrier returned error status", fields...)
		result := domain.Failed(domain.CodeCarrierError,
			fmt.Sprintf("%s API error: %s", req.Upstream, http.StatusText(resp.StatusCode)), decodeLoose(raw))
		result.StatusCode = resp.StatusCode
		return result
	}

	var data any
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			e.log.Warn("Carrier response is not JSON", append(fields, zap.Error(err))...)
			result := domain.Failed(domain.CodeDecodeError,
				fmt.Sprintf("%s returned an undecodable response", req.Upstream), string(raw))
			result.StatusCode = resp.StatusCode
			return result
		}
	}

	e.log.Debug("Carrier call completed", fields...)
	return domain.Succeeded("request succeeded", data, resp.StatusCode)
}

// decodeLoose returns the JSON-decoded body, or the raw text when it is not JSON.
func decodeLoose(raw []byte) any {
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}
	return string(raw)
}
