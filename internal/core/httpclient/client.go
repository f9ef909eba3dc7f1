package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"order-hub/internal/core/logger"
	"order-hub/internal/core/proxy"

	"go.uber.org/zap"
)

type upstreamKey struct{}

// WithUpstream labels outgoing requests made with ctx so that the
// transport logs name the remote party (e.g. "ghn", "aftership").
func WithUpstream(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, upstreamKey{}, name)
}

func upstream(ctx context.Context) string {
	if v, ok := ctx.Value(upstreamKey{}).(string); ok {
		return v
	}
	return "unknown"
}

// LoggingRoundTripper logs every outbound request with its duration and status.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
}

// RoundTrip executes the request and logs details.
// Header values are never logged since they carry carrier tokens.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	ctx := req.Context()

	fields := []zap.Field{
		zap.String("upstream", upstream(ctx)),
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
	}
	if rayID := logger.RayID(ctx); rayID != "" {
		fields = append(fields, zap.String("ray_id", rayID))
	}

	logger.Get().Debug("HTTP Request Started", fields...)

	resp, err := lrt.Proxied.RoundTrip(req)

	fields = append(fields, zap.Duration("duration", time.Since(start)))

	if err != nil {
		logger.Get().Error("HTTP Request Failed", append(fields, zap.Error(err))...)
		return nil, err
	}

	logger.Get().Debug("HTTP Request Completed", append(fields, zap.Int("status_code", resp.StatusCode))...)

	return resp, nil
}

// NewClient returns an http.Client with logging middleware.
// When proxy settings are enabled all traffic goes through that proxy.
func NewClient(timeout time.Duration, settings proxy.Settings) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if settings.HasProxy() {
		proxyURL, err := url.Parse(settings.FullURL())
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		logger.Get().Info("Outbound proxy enabled", zap.String("proxy", settings.HostPort()))
	}

	return &http.Client{
		Transport: &LoggingRoundTripper{
			Proxied: transport,
		},
		Timeout: timeout,
	}, nil
}
