package dto

import "net/http"

// Error code constants shared with API consumers
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed here fall back to 500.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:    http.StatusInternalServerError,
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeNotFound:   http.StatusNotFound,

	// Validation of incoming payloads
	"NOT_FOUND":           http.StatusNotFound,
	"INVALID_INPUT":       http.StatusBadRequest,
	"INVALID_ITEMS":       http.StatusBadRequest,
	"INVALID_QUANTITY":    http.StatusBadRequest,
	"INVALID_PRODUCT":     http.StatusBadRequest,
	"INVALID_TRUCK":       http.StatusBadRequest,
	"INVALID_TRACKING":    http.StatusBadRequest,
	"INVALID_ORDER":       http.StatusBadRequest,
	"INVALID_WAREHOUSE":   http.StatusBadRequest,
	"INVALID_SHIPMENT_NO": http.StatusBadRequest,
	"DUPLICATE_ITEM":      http.StatusBadRequest,
	"UNKNOWN_STATUS":      http.StatusBadRequest,

	// Fulfillment state machine
	"SHIPMENT_EXISTS":    http.StatusConflict,
	"INVALID_TRANSITION": http.StatusUnprocessableEntity,
	"ADDRESS_LOCKED":     http.StatusUnprocessableEntity,
	"TRUCK_MISMATCH":     http.StatusUnprocessableEntity,
	"UNKNOWN_WAREHOUSE":  http.StatusUnprocessableEntity,

	// World connection lifecycle
	"NOT_CONNECTED":     http.StatusConflict,
	"ALREADY_CONNECTED": http.StatusConflict,
	"CONNECT_REJECTED":  http.StatusBadGateway,
	"WORLD_ERROR":       http.StatusBadGateway,
	"NO_RESPONSE":       http.StatusGatewayTimeout,
	"DELIVERY_FAILED":   http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
