package simplify

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes derived from the processor's error code and field
// errors. The state machine branches on these, never on raw messages.
type ErrorClass string

const (
	ClassValidation      ErrorClass = "validation"
	ClassAuthentication  ErrorClass = "authentication"
	ClassAlreadyCaptured ErrorClass = "already_captured"
	ClassSystem          ErrorClass = "system"
	ClassUnknown         ErrorClass = "unknown"
)

// FieldErrorCodeAlreadyCaptured is returned by the processor when a
// capture targets an authorization that was already settled on the
// gateway side.
const FieldErrorCodeAlreadyCaptured = "payment.already.captured"

// FieldError is one field-level problem inside an API error.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIError is an error the processor itself reported, as opposed to a
// transport failure reaching it.
type APIError struct {
	Status      int
	Code        string
	Message     string
	Reference   string
	FieldErrors []FieldError
}

func (e *APIError) Error() string {
	if len(e.FieldErrors) > 0 {
		parts := make([]string, 0, len(e.FieldErrors))
		for _, fe := range e.FieldErrors {
			parts = append(parts, fmt.Sprintf("%s: %q (%s)", fe.Field, fe.Message, fe.Code))
		}
		return fmt.Sprintf("simplify: %s: %s", e.Code, strings.Join(parts, " "))
	}
	return fmt.Sprintf("simplify: %s: %s", e.Code, e.Message)
}

// Class maps the raw error onto the classes the state machine handles.
func (e *APIError) Class() ErrorClass {
	if e.Code != string(ClassSystem) && e.hasFieldErrorCode(FieldErrorCodeAlreadyCaptured) {
		return ClassAlreadyCaptured
	}

	switch e.Code {
	case "validation":
		return ClassValidation
	case "authentication":
		return ClassAuthentication
	case "system":
		return ClassSystem
	default:
		return ClassUnknown
	}
}

// FirstFieldError returns the first field error, or nil. Refund
// failures surface only this one to the platform.
func (e *APIError) FirstFieldError() *FieldError {
	if len(e.FieldErrors) == 0 {
		return nil
	}
	return &e.FieldErrors[0]
}

func (e *APIError) hasFieldErrorCode(code string) bool {
	for _, fe := range e.FieldErrors {
		if fe.Code == code {
			return true
		}
	}
	return false
}

// AsAPIError unwraps err to an *APIError if one is in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
