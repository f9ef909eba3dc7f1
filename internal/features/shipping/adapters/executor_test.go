package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"order-hub/internal/features/shipping/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(rps int) *HTTPExecutor {
	return NewHTTPExecutor(&http.Client{Timeout: 2 * time.Second}, rps)
}

func TestHTTPExecutor_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/shipping-order/create", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("Token"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "ORD-1", body["client_order_code"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":200,"data":{"order_code":"GHN123"}}`))
	}))
	defer ts.Close()

	result := newTestExecutor(0).Execute(context.Background(), domain.Request{
		Upstream: "ghn",
		Method:   http.MethodPost,
		BaseURL:  ts.URL + "/",
		Path:     "/v2/shipping-order/create",
		Headers:  map[string]string{"Token": "secret"},
		Body:     map[string]string{"client_order_code": "ORD-1"},
	})

	require.True(t, result.Success)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	data := result.Data.(map[string]any)
	assert.Equal(t, "GHN123", data["data"].(map[string]any)["order_code"])
}

func TestHTTPExecutor_CarrierError(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected any
	}{
		{"json body is decoded", `{"message":"invalid token"}`, map[string]any{"message": "invalid token"}},
		{"raw text is preserved", `<html>gateway down</html>`, "<html>gateway down</html>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			result := newTestExecutor(0).Execute(context.Background(), domain.Request{
				Upstream: "ghtk", Method: http.MethodGet, BaseURL: ts.URL, Path: "/services/address/provinces",
			})

			assert.False(t, result.Success)
			assert.Equal(t, domain.CodeCarrierError, result.Code)
			assert.Equal(t, http.StatusUnauthorized, result.StatusCode)
			assert.Equal(t, tt.expected, result.Error)
			assert.NotEmpty(t, result.Message)
		})
	}
}

func TestHTTPExecutor_DecodeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer ts.Close()

	result := newTestExecutor(0).Execute(context.Background(), domain.Request{
		Upstream: "viettel_post", Method: http.MethodGet, BaseURL: ts.URL, Path: "/categories/listService",
	})

	assert.False(t, result.Success)
	assert.Equal(t, domain.CodeDecodeError, result.Code)
	assert.Equal(t, "not json", result.Error)
}

func TestHTTPExecutor_EmptyBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	result := newTestExecutor(0).Execute(context.Background(), domain.Request{
		Upstream: "jt_express", Method: http.MethodPut, BaseURL: ts.URL, Path: "/v1/orders/1/cancel",
	})

	assert.True(t, result.Success)
	assert.Nil(t, result.Data)
}

func TestHTTPExecutor_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	result := newTestExecutor(0).Execute(context.Background(), domain.Request{
		Upstream: "ghn", Method: http.MethodGet, BaseURL: url, Path: "/master-data/province",
	})

	assert.False(t, result.Success)
	assert.Equal(t, domain.CodeTransportError, result.Code)
	assert.Zero(t, result.StatusCode)
}

func TestHTTPExecutor_RateLimitHonoursContext(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	exec := newTestExecutor(1)
	req := domain.Request{Upstream: "ghn", Method: http.MethodGet, BaseURL: ts.URL, Path: "/"}

	first := exec.Execute(context.Background(), req)
	require.True(t, first.Success)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	second := exec.Execute(ctx, req)

	assert.False(t, second.Success)
	assert.Equal(t, domain.CodeTransportError, second.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	other := exec.Execute(context.Background(), domain.Request{Upstream: "ghtk", Method: http.MethodGet, BaseURL: ts.URL, Path: "/"})
	assert.True(t, other.Success, "limiters are per upstream")
}
