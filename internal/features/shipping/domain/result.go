package domain

import "net/http"

// ResultCode classifies a failed OperationResult.
type ResultCode string

const (
	CodeUnsupportedCarrier ResultCode = "unsupported_carrier"
	CodeNotConnected       ResultCode = "not_connected"
	CodeNotConfigured      ResultCode = "not_configured"
	CodeInvalidPayload     ResultCode = "invalid_payload"
	CodeTransportError     ResultCode = "transport_error"
	CodeCarrierError       ResultCode = "carrier_error"
	CodeDecodeError        ResultCode = "decode_error"
)

// IsUpstreamFailure reports whether the code comes from the remote side
// rather than from local configuration or input.
func (c ResultCode) IsUpstreamFailure() bool {
	switch c {
	case CodeTransportError, CodeCarrierError, CodeDecodeError:
		return true
	}
	return false
}

// OperationResult is the uniform envelope returned by every shipping operation.
type OperationResult struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Code    ResultCode `json:"code,omitempty"`
	Data    any        `json:"data,omitempty"`
	Error   any        `json:"error,omitempty"`
	// StatusCode is the upstream HTTP status, 0 when no call was made.
	StatusCode int `json:"-"`
}

// Succeeded builds a successful result.
func Succeeded(message string, data any, statusCode int) OperationResult {
	return OperationResult{Success: true, Message: message, Data: data, StatusCode: statusCode}
}

// Failed builds a failed result.
func Failed(code ResultCode, message string, detail any) OperationResult {
	return OperationResult{Success: false, Code: code, Message: message, Error: detail}
}

// HTTPStatus is the status code used when the result is returned over HTTP.
func (r OperationResult) HTTPStatus() int {
	switch {
	case r.Success:
		return http.StatusOK
	case r.Code.IsUpstreamFailure():
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}
