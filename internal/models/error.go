package models

// ErrorResponse is the body returned for every failed request.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Error   string            `json:"error,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Error codes for API responses.
const (
	ErrCodeInvalidID        = "INVALID_ID"
	ErrCodeInvalidBody      = "INVALID_BODY"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeProductNotFound  = "PRODUCT_NOT_FOUND"
	ErrCodeProductExists    = "PRODUCT_EXISTS"
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)
