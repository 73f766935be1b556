package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when a conditional update loses the race
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeInvalidTransition is used when a document lifecycle move is illegal
	ErrCodeInvalidTransition = "ERR_INVALID_TRANSITION"
	// ErrCodeOrderNotEligible is used when an order is not ready to be billed
	ErrCodeOrderNotEligible = "ERR_ORDER_NOT_ELIGIBLE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Lifecycle conflicts -> 409, other business rules -> 422
	ErrCodeInvalidTransition: http.StatusConflict,
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeOrderNotEligible:  http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to standardized API codes.
// Domain aggregates raise SCREAMING_SNAKE codes; the HTTP layer speaks the
// ERR_ prefixed vocabulary above.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,

	// Lifecycle and eligibility
	"INVALID_STATE":      ErrCodeInvalidState,
	"INVALID_TRANSITION": ErrCodeInvalidTransition,
	"ORDER_NOT_ELIGIBLE": ErrCodeOrderNotEligible,
	"DOCUMENT_FROZEN":    ErrCodeInvalidState,
	"EMPTY_DOCUMENT":     ErrCodeInvalidState,
	"NOT_A_QUOTE":        ErrCodeInvalidState,
	"ALLOCATION_DELETED": ErrCodeInvalidState,
	"NO_ITEMS":           ErrCodeInvalidState,

	// Construction-time validation
	"INVALID_DOCUMENT_TYPE":   ErrCodeValidation,
	"INVALID_DOCUMENT_NUMBER": ErrCodeValidation,
	"INVALID_LINE_SOURCE":     ErrCodeValidation,
	"INVALID_LINE_TITLE":      ErrCodeValidation,
	"NEGATIVE_LINE_VALUE":     ErrCodeValidation,
	"INVALID_TAX_RATE":        ErrCodeValidation,
	"INVALID_DECIMAL":         ErrCodeValidation,
	"INVALID_PERIOD":          ErrCodeValidation,
	"INVALID_OWNER_TYPE":      ErrCodeValidation,
	"INVALID_OWNER":           ErrCodeValidation,
	"INVALID_LABEL":           ErrCodeValidation,
	"NEGATIVE_QUANTITY":       ErrCodeValidation,
	"NEGATIVE_VOLUME":         ErrCodeValidation,
	"INVALID_PRODUCT":         ErrCodeValidation,
	"INVALID_PRODUCT_NAME":    ErrCodeValidation,
	"INVALID_QUANTITY":        ErrCodeValidation,
	"INVALID_PRICE":           ErrCodeValidation,
	"INVALID_FEE":             ErrCodeValidation,
	"INVALID_ORDER_NUMBER":    ErrCodeValidation,
	"INVALID_CUSTOMER":        ErrCodeValidation,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
