package shared

// Sentinel errors raised by the domain layer. Handlers map the code to
// an HTTP status, so compare with errors.Is rather than string matching.
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// DomainError is a business rule violation with a stable machine code.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Error includes the code so logs and test failures identify the rule
// without unpacking the struct. Handlers render Code and Message
// separately.
func (e *DomainError) Error() string {
	return e.Code + ": " + e.Message
}
