package errors

import (
	"errors"
	"fmt"
)

var (
	// Order errors
	ErrOrderNotFound          = errors.New("order not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrWrongPaymentMethod     = errors.New("wrong payment method")
	ErrMissingAuthorization   = errors.New("invalid or missing authorization code")
	ErrAlreadyCaptured        = errors.New("order already captured")
	ErrAlreadyVoided          = errors.New("order already reversed")

	// Payment errors
	ErrAmountMismatch     = errors.New("amount mismatch")
	ErrBelowMinimumTotal  = errors.New("order total below gateway minimum")
	ErrMissingCardToken   = errors.New("missing card token")
	ErrMissingPaymentID   = errors.New("no transaction or capture id recorded for this order")
	ErrPaymentDeclined    = errors.New("payment declined by gateway")
	ErrRefundDeclined     = errors.New("refund declined by gateway")
	ErrGatewayUnavailable = errors.New("gateway unavailable")

	// Configuration errors
	ErrGatewayDisabled    = errors.New("gateway is not enabled")
	ErrMissingCredentials = errors.New("missing gateway API keys")

	// Idempotency / locking
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")
	ErrLockAcquisitionFailed   = errors.New("failed to acquire lock")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidInput     = errors.New("invalid input")
)

// DomainError wraps errors with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a field-level validation error.
type ValidationError struct {
	Field   string
	Message string
	Code    string
}

func (e *ValidationError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %q (%s)", e.Field, e.Message, e.Code)
	}
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// StateViolationError marks a precondition failure on a manual order action
// (capture or void). It is fatal to that single action; the order is left
// untouched and the action is never retried automatically.
type StateViolationError struct {
	Action string
	Reason error
}

func (e *StateViolationError) Error() string {
	return fmt.Sprintf("%s rejected: %v", e.Action, e.Reason)
}

func (e *StateViolationError) Unwrap() error {
	return e.Reason
}

// NewStateViolation creates a StateViolationError for the given action.
func NewStateViolation(action string, reason error) *StateViolationError {
	return &StateViolationError{Action: action, Reason: reason}
}
